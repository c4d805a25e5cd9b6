package widget

import (
	"strings"
	"unicode"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/sahilm/fuzzy"

	"github.com/marcus/bizdesk/pkg/console/modal"
)

// Option is one choice of a Select.
type Option struct {
	Value string
	Label string
}

// Select picks one value from a list. Left and right cycle; typing jumps to
// the best fuzzy match of everything typed since the last cycle.
type Select struct {
	Frame
	ID       string
	OnChange func(string)

	options []Option
	value   string
	// shown until options containing value arrive
	heldLabel string
	loading   bool
	query     string
	// placeholder for the empty choice
	placeholder string
}

// NewSelect returns a select. label is the field label; heldLabel is shown
// for value until the option list is loaded.
func NewSelect(id, label, value, heldLabel string, options []Option, onChange func(string)) *Select {
	return &Select{
		Frame:       Frame{Label: label},
		ID:          id,
		OnChange:    onChange,
		options:     options,
		value:       value,
		heldLabel:   heldLabel,
		placeholder: "—",
	}
}

// SetPlaceholder sets the text shown when nothing is chosen.
func (s *Select) SetPlaceholder(text string) { s.placeholder = text }

// SetLoading marks the options as in flight.
func (s *Select) SetLoading(loading bool) { s.loading = loading }

// Loading reports whether options are in flight.
func (s *Select) Loading() bool { return s.loading }

// SetOptions replaces the choices. The current value is kept even when it is
// not among them.
func (s *Select) SetOptions(options []Option) {
	s.options = options
	s.loading = false
}

// Options returns the current choices.
func (s *Select) Options() []Option { return s.options }

// Value returns the chosen value.
func (s *Select) Value() string { return s.value }

// Label returns the text displayed for the current value.
func (s *Select) Label() string {
	if s.value == "" {
		return ""
	}
	for _, o := range s.options {
		if o.Value == s.value {
			return o.Label
		}
	}
	if s.heldLabel != "" {
		return s.heldLabel
	}
	return s.value
}

func (s *Select) index() int {
	for i, o := range s.options {
		if o.Value == s.value {
			return i
		}
	}
	return -1
}

// Set chooses value and reports the change.
func (s *Select) Set(value string) {
	if value == s.value {
		return
	}
	s.value = value
	if s.OnChange != nil {
		s.OnChange(value)
	}
}

func (s *Select) cycle(step int) {
	s.query = ""
	if len(s.options) == 0 {
		return
	}
	i := s.index()
	if i == -1 {
		if step > 0 {
			i = 0
		} else {
			i = len(s.options) - 1
		}
	} else {
		i = (i + step + len(s.options)) % len(s.options)
	}
	s.Set(s.options[i].Value)
}

type optionSource []Option

func (o optionSource) String(i int) string { return o[i].Label }
func (o optionSource) Len() int            { return len(o) }

func (s *Select) typeAhead(r string) {
	s.query += r
	matches := fuzzy.FindFrom(s.query, optionSource(s.options))
	if len(matches) == 0 {
		// start over from the last rune
		s.query = r
		matches = fuzzy.FindFrom(s.query, optionSource(s.options))
	}
	if len(matches) > 0 {
		s.Set(s.options[matches[0].Index].Value)
	}
}

func (s *Select) Render(contentWidth int, focusID, hoverID string) modal.RenderedSection {
	focused := focusID == s.ID
	text := s.Label()
	style := modal.Body
	switch {
	case s.loading && text == "":
		text = "loading…"
		style = modal.MutedText
	case text == "":
		text = s.placeholder
		style = modal.MutedText
	}
	inner := max(1, contentWidth-4)
	text = ansi.Truncate(text, inner, "…")
	box := lipgloss.NewStyle().Background(lipgloss.Color("236"))
	if focused {
		box = box.Background(lipgloss.Color("238"))
	} else if hoverID == s.ID {
		box = box.Background(lipgloss.Color("237"))
	}
	pad := strings.Repeat(" ", max(0, inner-lipgloss.Width(text)))
	body := box.Render("‹ " + style.Render(text) + pad + " ›")

	content, row := s.compose(contentWidth, focused, body)
	return modal.RenderedSection{
		Content:    content,
		Focusables: []modal.FocusableInfo{{ID: s.ID, OffsetY: row, Width: contentWidth, Height: 1}},
	}
}

func (s *Select) Update(msg tea.Msg, focusID string) (string, tea.Cmd) {
	switch msg := msg.(type) {
	case modal.ClickMsg:
		if msg.ID != s.ID {
			return "", nil
		}
		if msg.X < 2 {
			s.cycle(-1)
		} else {
			s.cycle(1)
		}

	case modal.WheelMsg:
		if msg.ID == s.ID && focusID == s.ID {
			s.cycle(msg.Delta)
		}

	case tea.KeyMsg:
		if focusID != s.ID {
			return "", nil
		}
		switch msg.String() {
		case "left", "up":
			s.cycle(-1)
		case "right", "down", " ":
			s.cycle(1)
		case "backspace", "delete":
			s.query = ""
			s.Set("")
		default:
			if msg.Type == tea.KeyRunes && len(msg.Runes) == 1 && unicode.IsPrint(msg.Runes[0]) {
				s.typeAhead(string(msg.Runes))
			}
		}
	}
	return "", nil
}
