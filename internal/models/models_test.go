package models

import (
	"encoding/json"
	"testing"

	"github.com/marcus/bizdesk/internal/phone"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestIsValidRole tests all known roles and a few unknown ones
func TestIsValidRole(t *testing.T) {
	for _, r := range []Role{RoleAdmin, RoleManager, RoleAgent} {
		assert.True(t, IsValidRole(r), "expected %q to be valid", r)
	}
	for _, r := range []Role{"", "owner", "Admin"} {
		assert.False(t, IsValidRole(r), "expected %q to be invalid", r)
	}
}

func decode(t *testing.T, s string) Record {
	t.Helper()
	var r Record
	require.NoError(t, json.Unmarshal([]byte(s), &r))
	return r
}

func TestRecordAccessors(t *testing.T) {
	r := decode(t, `{
		"id": 12,
		"name": "Ali",
		"price": 10.5,
		"active": true,
		"status": {"id": "s1", "name": "New"},
		"owner": "u7",
		"phone_numbers": [
			{"number": "+966512345678", "type": "mobile", "is_primary": false},
			{"number": "+966511111111", "type": "work", "is_primary": false}
		]
	}`)

	assert.Equal(t, "12", r.ID())
	assert.Equal(t, "Ali", r.String("name"))
	assert.Equal(t, "10.5", r.String("price"))
	assert.Equal(t, "New", r.String("status"))
	assert.True(t, r.Bool("active"))
	assert.False(t, r.Bool("missing"))

	id, label := r.Ref("status")
	assert.Equal(t, "s1", id)
	assert.Equal(t, "New", label)

	id, label = r.Ref("owner")
	assert.Equal(t, "u7", id)
	assert.Empty(t, label)

	phones := r.Phones("phone_numbers")
	require.Len(t, phones, 2)
	assert.True(t, phones[0].IsPrimary, "normalized list promotes the first entry")
	assert.Equal(t, phone.TypeWork, phones[1].Type)
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Sara Ahmed", Record{"first_name": "Sara", "last_name": "Ahmed"}.DisplayName())
	assert.Equal(t, "Q3 push", Record{"title": "Q3 push"}.DisplayName())
	assert.Equal(t, "a@b.co", Record{"email": "a@b.co"}.DisplayName())
	assert.Equal(t, "9", Record{"id": float64(9)}.DisplayName())
}

func TestFieldErrors(t *testing.T) {
	e := FieldErrors{}
	e.Set("price", "Price is required")
	e.Set(GeneralError, "boom")
	assert.True(t, e.Has("price"))

	e.Clear("price")
	e.Clear("price")
	e.Clear("never-set")
	assert.False(t, e.Has("price"))
	assert.Equal(t, "boom", e.Get(GeneralError))

	e.Reset()
	assert.Empty(t, e)
}

func TestFormState(t *testing.T) {
	s := FormState{}
	s.Set("name", "Ali")
	s.Set("active", true)
	s.Set("phones", phone.List{}.Add(phone.Entry{Number: "+966512345678"}))

	assert.Equal(t, "Ali", s.String("name"))
	assert.True(t, s.Bool("active"))
	assert.Len(t, s.Phones("phones"), 1)
	assert.Empty(t, s.String("active"), "wrong type reads as zero value")

	s.Reset()
	assert.Empty(t, s)
}
