package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// StructuredError is a failed API response. Message carries the flat
// message (if any); Fields carries per-field messages. Malformed is set when
// the body could not be understood.
type StructuredError struct {
	Status    int
	Message   string
	Fields    map[string][]string
	Malformed bool
}

func (e *StructuredError) Error() string {
	switch {
	case e.Message != "":
		return fmt.Sprintf("api: %d: %s", e.Status, e.Message)
	case len(e.Fields) > 0:
		return fmt.Sprintf("api: %d: %s", e.Status, e.FieldSummary())
	case e.Malformed:
		return fmt.Sprintf("api: %d: malformed error body", e.Status)
	}
	return fmt.Sprintf("api: %d: %s", e.Status, http.StatusText(e.Status))
}

// FieldSummary joins the field messages as "field: msg, field: msg", sorted
// by field.
func (e *StructuredError) FieldSummary() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(e.Fields[k], "; "))
	}
	return strings.Join(parts, ", ")
}

// FieldMessage returns the first message for field.
func (e *StructuredError) FieldMessage(field string) (string, bool) {
	msgs := e.Fields[field]
	if len(msgs) == 0 {
		return "", false
	}
	return msgs[0], true
}

// keys that carry a flat message rather than a field
var messageKeys = map[string]bool{
	"message":          true,
	"detail":           true,
	"error":            true,
	"non_field_errors": true,
	"fields":           true,
	"errors":           true,
	"status":           true,
	"code":             true,
}

// ParseError decodes an error body. It accepts {"message","fields"},
// {"detail"} and flat {"field": ["msg"]} maps.
func ParseError(status int, body []byte) *StructuredError {
	e := &StructuredError{Status: status, Fields: map[string][]string{}}

	body = []byte(strings.TrimSpace(string(body)))
	if len(body) == 0 {
		return e
	}

	var raw any
	if err := json.Unmarshal(body, &raw); err != nil {
		e.Malformed = true
		return e
	}

	switch v := raw.(type) {
	case string:
		e.Message = v
	case []any:
		if msgs := messages(v); len(msgs) > 0 {
			e.Message = msgs[0]
		}
	case map[string]any:
		parseObject(e, v)
	}

	if e.Message == "" && len(e.Fields) == 0 {
		e.Malformed = true
	}
	return e
}

func parseObject(e *StructuredError, obj map[string]any) {
	for _, k := range []string{"message", "detail", "error"} {
		if s, ok := obj[k].(string); ok && s != "" {
			e.Message = s
			break
		}
	}
	if e.Message == "" {
		if msgs := messages(obj["non_field_errors"]); len(msgs) > 0 {
			e.Message = msgs[0]
		}
	}

	for _, key := range []string{"fields", "errors"} {
		if nested, ok := obj[key].(map[string]any); ok {
			for field, v := range nested {
				if msgs := messages(v); len(msgs) > 0 {
					e.Fields[field] = msgs
				}
			}
		}
	}

	for field, v := range obj {
		if messageKeys[field] {
			continue
		}
		if msgs := messages(v); len(msgs) > 0 {
			e.Fields[field] = msgs
		}
	}
}

// messages reads a string or a list of strings.
func messages(v any) []string {
	switch x := v.(type) {
	case string:
		if x == "" {
			return nil
		}
		return []string{x}
	case []any:
		out := make([]string, 0, len(x))
		for _, item := range x {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
