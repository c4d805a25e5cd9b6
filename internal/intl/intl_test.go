package intl

import (
	"io/fs"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	en, err := New("EN ")
	require.NoError(t, err)
	assert.Equal(t, "en", en.Language().Code)
	assert.False(t, en.IsRTL())

	ar := MustNew("ar")
	assert.Equal(t, RTL, ar.Direction())
	assert.True(t, ar.IsRTL())

	_, err = New("xx")
	assert.ErrorIs(t, err, ErrUnsupportedLanguage)
	assert.Panics(t, func() { MustNew("xx") })
}

func TestTranslate(t *testing.T) {
	en := MustNew("en")
	assert.Equal(t, "Lead created", en.T("lead.created", "x"))
	assert.Equal(t, "Description", en.T("fields.description", "x"), "reserved words are fine as flat keys")
	assert.Equal(t, "Other", en.T("phones.types.other", "x"))
	assert.Equal(t, "fallback", en.T("no.such.key", "fallback"))
	assert.Equal(t, "Price must be greater than 0",
		en.Tf("errors.dec_gt", "", map[string]any{"Field": "Price", "Param": "0"}))
	assert.Equal(t, "Hello Sara", en.Tf("no.such.key", "Hello {{.Name}}", map[string]any{"Name": "Sara"}))

	ar := MustNew("ar")
	assert.Equal(t, "السعر مطلوب", ar.T("errors.price.required", "Price is required"))
}

func TestLookup(t *testing.T) {
	en := MustNew("en")
	msg, ok := en.Lookup("errors.email.exists", nil)
	assert.True(t, ok)
	assert.Equal(t, "This email is already in use", msg)

	_, ok = en.Lookup("errors.name.exists", nil)
	assert.False(t, ok)

	var nilT *Translator
	_, ok = nilT.Lookup("errors.email.exists", nil)
	assert.False(t, ok)
	assert.Equal(t, "fb", nilT.T("lead.created", "fb"))
	assert.False(t, nilT.IsRTL())
}

// Every locale defines the same keys as English.
func TestLocalesComplete(t *testing.T) {
	load := func(name string) map[string]any {
		data, err := fs.ReadFile(localeFS, "locales/"+name)
		require.NoError(t, err)
		var m map[string]any
		require.NoError(t, toml.Unmarshal(data, &m))
		return m
	}
	en := load("en.toml")
	for _, lang := range SupportedLanguages {
		if lang.Code == "en" {
			continue
		}
		other := load(lang.Code + ".toml")
		for k := range en {
			assert.Contains(t, other, k, "%s is missing %s", lang.Code, k)
		}
		for k := range other {
			assert.Contains(t, en, k, "%s has extra key %s", lang.Code, k)
		}
	}
}
