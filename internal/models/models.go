package models

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/marcus/bizdesk/internal/phone"
)

// Record is a server entity as decoded from JSON.
type Record map[string]any

// Page is one fetched collection.
type Page struct {
	Results []Record `json:"results"`
	Count   int      `json:"count"`
	Next    string   `json:"next,omitempty"`
}

// ID returns the record id as a string.
func (r Record) ID() string {
	return scalarString(r["id"])
}

// String returns a display string for key. Nested objects resolve to
// their display name.
func (r Record) String(key string) string {
	v, ok := r[key]
	if !ok || v == nil {
		return ""
	}
	if nested, ok := asRecord(v); ok {
		return nested.DisplayName()
	}
	return scalarString(v)
}

// Ref returns the id and label of a reference field. The server may send
// either a bare id or an {id, name} object.
func (r Record) Ref(key string) (id, label string) {
	v, ok := r[key]
	if !ok || v == nil {
		return "", ""
	}
	if nested, ok := asRecord(v); ok {
		return nested.ID(), nested.DisplayName()
	}
	return scalarString(v), ""
}

// Bool reads a boolean field, tolerating string encodings.
func (r Record) Bool(key string) bool {
	switch v := r[key].(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(v)
		return b
	case float64:
		return v != 0
	}
	return false
}

// Phones decodes a list of phone entries.
func (r Record) Phones(key string) phone.List {
	raw, ok := r[key]
	if !ok || raw == nil {
		return phone.List{}
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return phone.List{}
	}
	var l phone.List
	if err := json.Unmarshal(data, &l); err != nil {
		return phone.List{}
	}
	return l.Normalize()
}

// DisplayName picks the most human field available.
func (r Record) DisplayName() string {
	for _, k := range []string{"name", "title", "full_name"} {
		if s := scalarString(r[k]); s != "" {
			return s
		}
	}
	first, last := scalarString(r["first_name"]), scalarString(r["last_name"])
	if full := strings.TrimSpace(first + " " + last); full != "" {
		return full
	}
	if s := scalarString(r["email"]); s != "" {
		return s
	}
	return r.ID()
}

func asRecord(v any) (Record, bool) {
	switch m := v.(type) {
	case Record:
		return m, true
	case map[string]any:
		return Record(m), true
	}
	return nil, false
}

func scalarString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case json.Number:
		return x.String()
	case bool:
		return strconv.FormatBool(x)
	}
	return ""
}

// Role is the access level of a console user.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleAgent   Role = "agent"
)

// IsValidRole checks if a role is valid
func IsValidRole(r Role) bool {
	switch r {
	case RoleAdmin, RoleManager, RoleAgent:
		return true
	}
	return false
}

// User is the authenticated console user.
type User struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      Role   `json:"role"`
	CompanyID string `json:"company"`
	Language  string `json:"language,omitempty"`
}

// CanManageUsers reports whether the user may create or edit users.
func (u User) CanManageUsers() bool {
	return u.Role == RoleAdmin
}
