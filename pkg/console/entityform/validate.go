package entityform

import (
	"errors"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/marcus/bizdesk/internal/intl"
	"github.com/marcus/bizdesk/internal/phone"
)

// validate is the rule engine for form fields. Besides the stock tags it
// knows dialphone (a number starting with a known dial code, 8 to 15 digits
// in all) and decimal comparisons on numeric strings (dec_gt, dec_gte,
// dec_lte).
var validate = sync.OnceValue(func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	must := func(err error) {
		if err != nil {
			panic(err)
		}
	}
	must(v.RegisterValidation("dialphone", func(fl validator.FieldLevel) bool {
		return phone.Default().Valid(fl.Field().String())
	}))
	must(v.RegisterValidation("dec_gt", decimalRule(decimal.Decimal.GreaterThan)))
	must(v.RegisterValidation("dec_gte", decimalRule(decimal.Decimal.GreaterThanOrEqual)))
	must(v.RegisterValidation("dec_lte", decimalRule(decimal.Decimal.LessThanOrEqual)))
	return v
})

func decimalRule(cmp func(decimal.Decimal, decimal.Decimal) bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		value, err := decimal.NewFromString(strings.TrimSpace(fl.Field().String()))
		if err != nil {
			return false
		}
		bound, err := decimal.NewFromString(fl.Param())
		if err != nil {
			return false
		}
		return cmp(value, bound)
	}
}

// violation is the first rule a value broke.
type violation struct {
	Tag   string
	Param string
}

// check runs the field's rules against v. Strings are trimmed first.
func check(f Field, v any) (violation, bool) {
	if f.Rules == "" {
		return violation{}, true
	}
	if s, ok := v.(string); ok {
		v = strings.TrimSpace(s)
	}
	if v == nil {
		v = ""
	}
	err := validate().Var(v, f.Rules)
	if err == nil {
		return violation{}, true
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return violation{Tag: verrs[0].Tag(), Param: verrs[0].Param()}, false
	}
	return violation{Tag: "invalid"}, false
}

var ruleFallbacks = map[string]string{
	"required":  "{{.Field}} is required",
	"min":       "{{.Field}} is too short",
	"email":     "Enter a valid email address",
	"dialphone": "Enter a valid phone number with country code",
	"numeric":   "{{.Field}} must be a number",
	"dec_gt":    "{{.Field}} must be greater than {{.Param}}",
	"dec_gte":   "{{.Field}} must be at least {{.Param}}",
	"dec_lte":   "{{.Field}} must be at most {{.Param}}",
	"max":       "{{.Field}} is too long",
	"datetime":  "{{.Field}} must be a date (YYYY-MM-DD)",
}

// ruleMessage localizes a violation, preferring errors.<field>.<tag> over
// the generic errors.<tag>.
func ruleMessage(t *intl.Translator, f Field, label string, v violation) string {
	data := map[string]any{"Field": label, "Param": v.Param}
	if msg, ok := t.Lookup("errors."+f.Name+"."+v.Tag, data); ok {
		return msg
	}
	fallback, ok := ruleFallbacks[v.Tag]
	if !ok {
		fallback = "{{.Field}} is invalid"
	}
	return t.Tf("errors."+v.Tag, fallback, data)
}
