package phone

import (
	"strings"
	"unicode"
)

// Digit bounds for a composed number, dial code included (E.164 caps at 15).
const (
	MinDigits = 8
	MaxDigits = 15
)

// Digits strips every non-digit character.
func Digits(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// Compose joins a dial code and the subscriber digits.
func Compose(dial, digits string) string {
	return dial + Digits(digits)
}

// Parts is a decomposed phone value.
type Parts struct {
	Country Country
	Dial    string
	Digits  string
}

// Split decomposes value by longest dial-code prefix. When nothing matches,
// the default country's code is assumed and all digits are kept.
func (t *Table) Split(value, defaultISO string) Parts {
	value = strings.TrimFunc(value, unicode.IsSpace)
	if dial, ok := t.MatchDial(value); ok {
		return Parts{
			Country: t.countryForDial(dial, defaultISO),
			Dial:    dial,
			Digits:  Digits(strings.TrimPrefix(value, dial)),
		}
	}
	c, ok := t.Lookup(defaultISO)
	if !ok && len(t.countries) > 0 {
		c = t.countries[0]
	}
	return Parts{Country: c, Dial: c.Dial, Digits: Digits(value)}
}

// Valid reports whether value begins with a known dial code and carries
// between MinDigits and MaxDigits digits in total.
func (t *Table) Valid(value string) bool {
	dial, ok := t.MatchDial(value)
	if !ok {
		return false
	}
	rest := strings.TrimPrefix(value, dial)
	if rest == "" || Digits(rest) != rest {
		return false
	}
	n := len(Digits(value))
	return n >= MinDigits && n <= MaxDigits
}
