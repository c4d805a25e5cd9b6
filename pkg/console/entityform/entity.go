// Package entityform is the add/edit dialog shared by every entity type.
// An Entity describes the fields, rules and payload of one type; a Form
// drives the closed, editing and submitting states for it.
package entityform

import (
	"strings"

	"github.com/marcus/bizdesk/internal/models"
	"github.com/marcus/bizdesk/pkg/console/modal"
)

// Kind selects the widget used for a field.
type Kind int

const (
	KindText Kind = iota
	KindEmail
	KindPassword
	KindTextArea
	KindNumber
	KindPhone
	KindPhones
	KindSelect
	KindCheckbox
)

// Choice is a static select option. Label is a localization key.
type Choice struct {
	Value    string
	Key      string
	Fallback string
}

// Source loads select options from a collection.
type Source struct {
	Entity string
	Filter map[string]string
}

// key identifies the request for deduplication.
func (s Source) key() string {
	var sb strings.Builder
	sb.WriteString(s.Entity)
	for _, k := range sortedKeys(s.Filter) {
		sb.WriteString("&" + k + "=" + s.Filter[k])
	}
	return sb.String()
}

// Field is one input of an entity form.
type Field struct {
	Name    string
	Label   string // English label, also the fallback for fields.<Name>
	Kind    Kind
	Rules   string // validator tags, e.g. "required,dec_gt=0"
	Choices []Choice
	Source  *Source
	Min     string
	Max     string
	Step    string
	// Aliases are server field names that report errors for this field.
	Aliases []string
	// CreateOnly fields are hidden when editing.
	CreateOnly bool
}

// required reports whether the field must be filled.
func (f Field) required() bool {
	for _, r := range strings.Split(f.Rules, ",") {
		if r == "required" || r == "min=1" {
			return true
		}
	}
	return false
}

// tokens returns the names under which the server may refer to the field.
func (f Field) tokens() []string {
	out := append([]string{f.Name}, f.Aliases...)
	if label := strings.ToLower(f.Label); label != "" && label != f.Name {
		out = append(out, label)
	}
	return out
}

// PayloadFunc adjusts an outgoing payload.
type PayloadFunc func(payload map[string]any, values models.FormState, user models.User)

// Entity configures the form for one collection.
type Entity struct {
	// Name is the collection, e.g. "leads".
	Name string
	// Singular is the message key prefix, e.g. "lead".
	Singular string
	// Label is the English singular label, e.g. "Lead".
	Label   string
	Fields  []Field
	Columns []Column
	Size    modal.Size
	Payload PayloadFunc
}

// Field returns the field called name.
func (e Entity) Field(name string) (Field, bool) {
	for _, f := range e.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// visible returns the fields shown in mode.
func (e Entity) visible(mode Mode) []Field {
	out := make([]Field, 0, len(e.Fields))
	for _, f := range e.Fields {
		if f.CreateOnly && mode == ModeEdit {
			continue
		}
		out = append(out, f)
	}
	return out
}
