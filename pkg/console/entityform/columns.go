package entityform

import (
	"sort"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"github.com/marcus/bizdesk/internal/models"
)

// ColumnKind selects how a cell is formatted.
type ColumnKind int

const (
	ColText ColumnKind = iota
	ColRef
	ColMoney
	ColNumber
	ColBool
	ColPhone
)

// Column is one table column of an entity listing.
type Column struct {
	Field string
	Label string
	Width int
	Kind  ColumnKind
}

// Format renders the column's cell for rec. currency is an ISO 4217 code
// used by money columns.
func (c Column) Format(rec models.Record, currency string) string {
	switch c.Kind {
	case ColRef:
		id, label := rec.Ref(c.Field)
		if label != "" {
			return label
		}
		return id
	case ColMoney:
		return FormatMoney(rec.String(c.Field), currency)
	case ColBool:
		if rec.Bool(c.Field) {
			return "✓"
		}
		return ""
	case ColPhone:
		if p, ok := rec.Phones(c.Field).Primary(); ok {
			return p.Number
		}
		return rec.String("phone")
	}
	return rec.String(c.Field)
}

// FormatMoney renders a decimal amount in currency. Unparseable amounts are
// returned unchanged.
func FormatMoney(amount, currency string) string {
	if amount == "" {
		return ""
	}
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return amount
	}
	cur := money.GetCurrency(currency)
	if cur == nil {
		return d.StringFixed(2) + " " + currency
	}
	minor := d.Shift(int32(cur.Fraction)).Round(0).IntPart()
	return money.New(minor, cur.Code).Display()
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
