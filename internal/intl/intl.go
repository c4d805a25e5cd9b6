// Package intl localizes console strings. Every lookup carries an English
// fallback so a missing key degrades to readable text.
package intl

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/iota-uz/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.toml
var localeFS embed.FS

// ErrUnsupportedLanguage is returned for language codes not in SupportedLanguages.
var ErrUnsupportedLanguage = errors.New("unsupported language")

// Direction is the text direction of a language.
type Direction string

const (
	LTR Direction = "ltr"
	RTL Direction = "rtl"
)

type SupportedLanguage struct {
	Code        string
	VerboseName string
	Tag         language.Tag
	Dir         Direction
}

// SupportedLanguages lists the shipped locales.
var SupportedLanguages = []SupportedLanguage{
	{Code: "en", VerboseName: "English", Tag: language.English, Dir: LTR},
	{Code: "ar", VerboseName: "العربية", Tag: language.Arabic, Dir: RTL},
}

// LookupLanguage finds a supported language by code.
func LookupLanguage(code string) (SupportedLanguage, bool) {
	code = strings.ToLower(strings.TrimSpace(code))
	for _, l := range SupportedLanguages {
		if l.Code == code {
			return l, true
		}
	}
	return SupportedLanguage{}, false
}

var bundle = sync.OnceValues(func() (*i18n.Bundle, error) {
	b := i18n.NewBundle(language.English)
	b.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	entries, err := fs.ReadDir(localeFS, "locales")
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		p := path.Join("locales", e.Name())
		data, err := localeFS.ReadFile(p)
		if err != nil {
			return nil, err
		}
		if _, err := b.ParseMessageFileBytes(data, p); err != nil {
			return nil, fmt.Errorf("parse %s: %w", p, err)
		}
	}
	return b, nil
})

// Translator localizes strings for one language.
type Translator struct {
	lang      SupportedLanguage
	localizer *i18n.Localizer
}

// New returns a translator for the language code.
func New(code string) (*Translator, error) {
	lang, ok := LookupLanguage(code)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedLanguage, code)
	}
	b, err := bundle()
	if err != nil {
		return nil, err
	}
	return &Translator{
		lang:      lang,
		localizer: i18n.NewLocalizer(b, lang.Code, "en"),
	}, nil
}

// MustNew is New for callers with a known-good code.
func MustNew(code string) *Translator {
	t, err := New(code)
	if err != nil {
		panic(err)
	}
	return t
}

// Language returns the translator's language.
func (t *Translator) Language() SupportedLanguage {
	return t.lang
}

// Direction returns the text direction.
func (t *Translator) Direction() Direction {
	return t.lang.Dir
}

// T localizes key, returning fallback when the key is unknown.
func (t *Translator) T(key, fallback string) string {
	return t.Tf(key, fallback, nil)
}

// Tf localizes key with template data. Fallback may use the same
// {{.Name}} placeholders as the catalog entry.
func (t *Translator) Tf(key, fallback string, data map[string]any) string {
	if t == nil || t.localizer == nil {
		return fallback
	}
	// Localize reports a not-found error alongside the rendered default
	// message, so the text wins whenever there is one.
	msg, _ := t.localizer.Localize(&i18n.LocalizeConfig{
		MessageID:      key,
		TemplateData:   data,
		DefaultMessage: &i18n.Message{ID: key, Other: fallback},
	})
	if msg == "" {
		return fallback
	}
	return msg
}

// Lookup localizes key without a fallback. ok is false when no catalog
// (the requested language or English) defines key.
func (t *Translator) Lookup(key string, data map[string]any) (string, bool) {
	if t == nil || t.localizer == nil {
		return "", false
	}
	msg, err := t.localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    key,
		TemplateData: data,
	})
	if err != nil || msg == "" {
		return "", false
	}
	return msg, true
}

// IsRTL reports whether text should be right-aligned.
func (t *Translator) IsRTL() bool {
	return t != nil && t.lang.Dir == RTL
}
