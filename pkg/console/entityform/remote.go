package entityform

import (
	"context"
	"errors"
	"strings"

	"github.com/marcus/bizdesk/internal/api"
	"github.com/marcus/bizdesk/internal/models"
)

const existsPhrase = "already exists"

// applyRemoteError maps a failed submit onto the field errors. Messages for
// known fields win; a flat "already exists" message naming a field is
// attributed to it; anything else lands in the general slot.
func (f *Form) applyRemoteError(err error) {
	general := func(key, fallback string) {
		f.errs.Set(models.GeneralError, f.t(key, fallback))
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		general("errors.timeout", "The server took too long to respond. Please try again.")
		return
	case errors.Is(err, context.Canceled):
		general("errors.canceled", "The request was cancelled.")
		return
	}

	var se *api.StructuredError
	if !errors.As(err, &se) {
		general("errors.network", "Could not reach the server. Check your connection and try again.")
		return
	}
	if se.Malformed {
		general("errors.unexpected", "Something went wrong. Please try again.")
		return
	}

	mapped := false
	for _, fd := range f.fields {
		for _, tok := range append([]string{fd.Name}, fd.Aliases...) {
			msg, ok := se.FieldMessage(tok)
			if !ok {
				continue
			}
			f.errs.Set(fd.Name, f.remoteFieldMessage(fd, msg))
			mapped = true
			break
		}
	}
	if mapped {
		return
	}

	if strings.Contains(strings.ToLower(se.Message), existsPhrase) {
		if fd, ok := f.fieldNamedIn(se.Message); ok {
			f.errs.Set(fd.Name, f.existsMessage(fd))
			return
		}
	}

	switch {
	case se.Message != "":
		f.errs.Set(models.GeneralError, se.Message)
	case len(se.Fields) > 0:
		// errors for fields the form does not show
		f.errs.Set(models.GeneralError, se.FieldSummary())
	default:
		general("errors.unexpected", "Something went wrong. Please try again.")
	}
}

// remoteFieldMessage localizes known server phrases.
func (f *Form) remoteFieldMessage(fd Field, msg string) string {
	if strings.Contains(strings.ToLower(msg), existsPhrase) {
		return f.existsMessage(fd)
	}
	return msg
}

func (f *Form) existsMessage(fd Field) string {
	data := map[string]any{"Field": f.label(fd)}
	if msg, ok := f.deps.T.Lookup("errors."+fd.Name+".exists", data); ok {
		return msg
	}
	return f.deps.T.Tf("errors.exists", "{{.Field}} already exists", data)
}

// fieldNamedIn finds the field whose name, alias or label appears as a
// word in msg.
func (f *Form) fieldNamedIn(msg string) (Field, bool) {
	words := strings.FieldsFunc(strings.ToLower(msg), func(r rune) bool {
		return !(r == '_' || r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
	lower := " " + strings.Join(words, " ") + " "
	for _, fd := range f.fields {
		for _, tok := range fd.tokens() {
			tok = strings.ToLower(tok)
			if strings.Contains(lower, " "+tok+" ") {
				return fd, true
			}
		}
	}
	return Field{}, false
}
