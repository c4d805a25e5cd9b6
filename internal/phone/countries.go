// Package phone holds the country dial-code table and the phone number
// composition rules shared by the phone widgets and form validation.
package phone

import (
	_ "embed"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed countries.yaml
var countriesYAML []byte

var dialPattern = regexp.MustCompile(`^\+[1-9][0-9]{0,3}$`)

// Country is one row of the dial-code reference table.
type Country struct {
	ISO  string `yaml:"iso"`
	Name string `yaml:"name"`
	Dial string `yaml:"dial"`
}

// Flag returns the regional-indicator flag glyph for the country.
func (c Country) Flag() string {
	if len(c.ISO) != 2 {
		return ""
	}
	var sb strings.Builder
	for _, r := range strings.ToUpper(c.ISO) {
		if r < 'A' || r > 'Z' {
			return ""
		}
		sb.WriteRune(0x1F1E6 + (r - 'A'))
	}
	return sb.String()
}

// Table is an immutable country lookup table.
type Table struct {
	countries []Country
	byISO     map[string]Country
	dials     []string // distinct dial codes, longest first
}

var defaultTable = sync.OnceValues(func() (*Table, error) {
	var countries []Country
	if err := yaml.Unmarshal(countriesYAML, &countries); err != nil {
		return nil, fmt.Errorf("parse countries: %w", err)
	}
	return NewTable(countries)
})

// Default returns the embedded country table.
func Default() *Table {
	t, err := defaultTable()
	if err != nil {
		panic(err)
	}
	return t
}

// NewTable validates countries and builds a lookup table.
func NewTable(countries []Country) (*Table, error) {
	t := &Table{
		countries: make([]Country, 0, len(countries)),
		byISO:     make(map[string]Country, len(countries)),
	}
	seenDial := map[string]bool{}
	for _, c := range countries {
		c.ISO = strings.ToUpper(strings.TrimSpace(c.ISO))
		if len(c.ISO) != 2 {
			return nil, fmt.Errorf("country %q: iso code must have two letters", c.Name)
		}
		if !dialPattern.MatchString(c.Dial) {
			return nil, fmt.Errorf("country %s: invalid dial code %q", c.ISO, c.Dial)
		}
		if _, dup := t.byISO[c.ISO]; dup {
			return nil, fmt.Errorf("country %s: duplicate iso code", c.ISO)
		}
		t.byISO[c.ISO] = c
		t.countries = append(t.countries, c)
		if !seenDial[c.Dial] {
			seenDial[c.Dial] = true
			t.dials = append(t.dials, c.Dial)
		}
	}
	sort.SliceStable(t.dials, func(i, j int) bool {
		return len(t.dials[i]) > len(t.dials[j])
	})
	return t, nil
}

// All returns the countries in table order.
func (t *Table) All() []Country {
	out := make([]Country, len(t.countries))
	copy(out, t.countries)
	return out
}

// Lookup finds a country by ISO code.
func (t *Table) Lookup(iso string) (Country, bool) {
	c, ok := t.byISO[strings.ToUpper(iso)]
	return c, ok
}

// MatchDial returns the longest dial code that prefixes value.
func (t *Table) MatchDial(value string) (string, bool) {
	for _, d := range t.dials {
		if strings.HasPrefix(value, d) {
			return d, true
		}
	}
	return "", false
}

// countryForDial picks the preferred country when several share a code.
func (t *Table) countryForDial(dial, preferISO string) Country {
	if c, ok := t.Lookup(preferISO); ok && c.Dial == dial {
		return c
	}
	for _, c := range t.countries {
		if c.Dial == dial {
			return c
		}
	}
	return Country{}
}
