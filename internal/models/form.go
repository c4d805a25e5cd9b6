package models

import (
	"github.com/marcus/bizdesk/internal/phone"
)

// GeneralError is the FieldErrors key for messages not tied to a field.
const GeneralError = "general"

// FieldErrors maps a field name (or GeneralError) to a message.
type FieldErrors map[string]string

// Set records msg for field.
func (e FieldErrors) Set(field, msg string) {
	e[field] = msg
}

// Clear removes the message for field. Clearing an absent key is a no-op.
func (e FieldErrors) Clear(field string) {
	delete(e, field)
}

// Get returns the message for field.
func (e FieldErrors) Get(field string) string {
	return e[field]
}

// Has reports whether field has a message.
func (e FieldErrors) Has(field string) bool {
	_, ok := e[field]
	return ok
}

// Reset removes every message.
func (e FieldErrors) Reset() {
	for k := range e {
		delete(e, k)
	}
}

// FormState maps field names to in-progress input values: strings
// (numbers included), booleans and phone lists.
type FormState map[string]any

// String returns the string value of key.
func (s FormState) String(key string) string {
	v, _ := s[key].(string)
	return v
}

// Bool returns the boolean value of key.
func (s FormState) Bool(key string) bool {
	v, _ := s[key].(bool)
	return v
}

// Phones returns the phone list stored under key.
func (s FormState) Phones(key string) phone.List {
	v, _ := s[key].(phone.List)
	return v
}

// Set stores a value.
func (s FormState) Set(key string, v any) {
	s[key] = v
}

// Reset removes every value.
func (s FormState) Reset() {
	for k := range s {
		delete(s, k)
	}
}
