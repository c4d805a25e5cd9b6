package entityform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcus/bizdesk/internal/models"
)

func TestColumnFormat(t *testing.T) {
	rec := models.Record{
		"name":      "Bolt",
		"price":     "1234.5",
		"unit":      map[string]any{"id": "un-kg", "name": "Kilograms"},
		"category":  "cat-1",
		"is_active": true,
		"phone_numbers": []any{
			map[string]any{"number": "+966500000001", "type": "home"},
			map[string]any{"number": "+966500000002", "type": "mobile", "is_primary": true},
		},
	}
	tests := []struct {
		col  Column
		want string
	}{
		{Column{Field: "name"}, "Bolt"},
		{Column{Field: "price", Kind: ColMoney}, "$1,234.50"},
		{Column{Field: "unit", Kind: ColRef}, "Kilograms"},
		{Column{Field: "category", Kind: ColRef}, "cat-1"},
		{Column{Field: "is_active", Kind: ColBool}, "✓"},
		{Column{Field: "missing", Kind: ColBool}, ""},
		{Column{Field: "phone_numbers", Kind: ColPhone}, "+966500000002"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.col.Format(rec, "USD"), tt.col.Field)
	}
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "", FormatMoney("", "USD"))
	assert.Equal(t, "abc", FormatMoney("abc", "USD"))
	assert.Equal(t, "$0.99", FormatMoney("0.985", "USD"))
	assert.Equal(t, "12.00 XXY", FormatMoney("12", "XXY"))
}

func TestCatalog(t *testing.T) {
	seen := map[string]bool{}
	for _, e := range Catalog() {
		assert.False(t, seen[e.Name], "duplicate %s", e.Name)
		seen[e.Name] = true
		assert.NotEmpty(t, e.Fields, e.Name)
		assert.NotEmpty(t, e.Columns, e.Name)
		for _, c := range e.Columns {
			_, ok := e.Field(c.Field)
			assert.True(t, ok, "%s column %s has no field", e.Name, c.Field)
		}
		for _, f := range e.Fields {
			if f.Kind == KindSelect {
				assert.True(t, f.Source != nil || len(f.Choices) > 0, "%s.%s has no options", e.Name, f.Name)
			}
		}
	}

	e, ok := Lookup("lead")
	require.True(t, ok)
	assert.Equal(t, "leads", e.Name)
	_, ok = Lookup("widgets")
	assert.False(t, ok)
}

func TestVisibleFields(t *testing.T) {
	names := func(fs []Field) []string {
		out := []string{}
		for _, f := range fs {
			out = append(out, f.Name)
		}
		return out
	}
	assert.Contains(t, names(Users.visible(ModeCreate)), "password")
	assert.NotContains(t, names(Users.visible(ModeEdit)), "password")
}

func TestCheckRules(t *testing.T) {
	price, _ := Products.Field("price")
	rating, _ := Services.Field("rating")
	ownerPhone, _ := Owners.Field("phone")
	phones, _ := Leads.Field("phone_numbers")

	tests := []struct {
		field Field
		value any
		tag   string
	}{
		{price, "", "required"},
		{price, "  ", "required"},
		{price, "abc", "numeric"},
		{price, "-1", "dec_gt"},
		{price, "0.01", ""},
		{rating, "", ""},
		{rating, "5", ""},
		{rating, "5.01", "dec_lte"},
		{ownerPhone, "+966512345678", ""},
		{ownerPhone, "+9665", "dialphone"},
		{ownerPhone, "0512345678", "dialphone"},
		{phones, nil, "min"},
	}
	for _, tt := range tests {
		v, ok := check(tt.field, tt.value)
		assert.Equal(t, tt.tag == "", ok, "%s=%v", tt.field.Name, tt.value)
		assert.Equal(t, tt.tag, v.Tag, "%s=%v", tt.field.Name, tt.value)
	}
}
