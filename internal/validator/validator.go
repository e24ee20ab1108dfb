// Package validator checks submitted form data against a schema.Form.
//
// Validate is pure: it reads the form and the payload and returns either nil
// or an *Error holding one message per failing field. Every field is checked,
// so the error describes the whole payload rather than the first failure.
package validator

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/Prashu2024/form-builder-backend/internal/schema"
)

// FieldErrors maps a field name to a single human readable message.
type FieldErrors map[string]string

// Error is returned by Validate when at least one field failed.
type Error struct {
	Fields FieldErrors
}

func (e *Error) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = name + ": " + e.Fields[name]
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Validate checks data against form in field declaration order.
func Validate(form *schema.Form, data map[string]any) error {
	errs := make(FieldErrors)
	for i := range form.Fields {
		f := &form.Fields[i]
		if msg := checkField(f, data[f.Name]); msg != "" {
			errs[f.Name] = msg
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return &Error{Fields: errs}
}

// HasValue reports whether v counts as filled in: nil, blank strings and
// empty lists do not.
func HasValue(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(x) != ""
	case []any:
		return len(x) > 0
	case []string:
		return len(x) > 0
	}
	return true
}

// checkField returns the message for the last failing check, or "".
func checkField(f *schema.Field, v any) string {
	if !HasValue(v) {
		if f.Required {
			return f.Label + " is required"
		}
		return ""
	}
	switch f.Type {
	case schema.TypeText, schema.TypeTextarea:
		return checkText(f, v)
	case schema.TypeNumber:
		return checkNumber(f, v)
	case schema.TypeSelect:
		return checkSelect(f, v)
	case schema.TypeMultiSelect:
		return checkMultiSelect(f, v)
	case schema.TypeDate:
		return checkDate(f, v)
	case schema.TypeSwitch:
		return checkSwitch(v)
	}
	return ""
}

func checkText(f *schema.Field, v any) string {
	s, ok := v.(string)
	if !ok {
		return "Must be a text value"
	}
	r := f.Rules()
	n := utf8.RuneCountInString(s)
	msg := ""
	if lo, ok := positive(r.MinLength); ok && n < lo {
		msg = fmt.Sprintf("Minimum %d characters required", lo)
	}
	if hi, ok := positive(r.MaxLength); ok && n > hi {
		msg = fmt.Sprintf("Maximum %d characters allowed", hi)
	}
	if re := f.Pattern(); re != nil && !re.MatchString(s) {
		msg = r.RegexMessage
		if msg == "" {
			msg = "Invalid format"
		}
	}
	return msg
}

func checkNumber(f *schema.Field, v any) string {
	n, ok := toFloat(v)
	if !ok {
		return "Must be a valid number"
	}
	r := f.Rules()
	msg := ""
	if r.Min != nil && n < *r.Min {
		msg = "Minimum value is " + formatNumber(*r.Min)
	}
	if r.Max != nil && n > *r.Max {
		msg = "Maximum value is " + formatNumber(*r.Max)
	}
	return msg
}

func checkSelect(f *schema.Field, v any) string {
	s, ok := v.(string)
	if !ok || !f.HasOption(s) {
		return "Invalid selection"
	}
	return ""
}

func checkMultiSelect(f *schema.Field, v any) string {
	items, ok := toList(v)
	if !ok {
		return "Must be a list of values"
	}
	for _, item := range items {
		s, ok := item.(string)
		if !ok || !f.HasOption(s) {
			return "Invalid selection"
		}
	}
	r := f.Rules()
	msg := ""
	if lo, ok := positive(r.MinSelected); ok && len(items) < lo {
		msg = fmt.Sprintf("Select at least %d option(s)", lo)
	}
	if hi, ok := positive(r.MaxSelected); ok && len(items) > hi {
		msg = fmt.Sprintf("Select at most %d option(s)", hi)
	}
	return msg
}

func checkDate(f *schema.Field, v any) string {
	s, ok := v.(string)
	if !ok {
		return "Invalid date format"
	}
	t, err := schema.ParseTimestamp(s)
	if err != nil {
		return "Invalid date format"
	}
	if lo, ok := f.MinDate(); ok && t.Before(lo) {
		return "Date must be after " + f.Rules().MinDate
	}
	return ""
}

func checkSwitch(v any) string {
	if _, ok := v.(bool); !ok {
		return "Must be a boolean value"
	}
	return ""
}

// positive treats a zero or negative bound as unset.
func positive(p *int) (int, bool) {
	if p == nil || *p <= 0 {
		return 0, false
	}
	return *p, true
}

func toFloat(v any) (float64, bool) {
	var n float64
	switch x := v.(type) {
	case float64:
		n = x
	case float32:
		n = float64(x)
	case int:
		n = float64(x)
	case int64:
		n = float64(x)
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return 0, false
		}
		n = f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, false
		}
		n = f
	default:
		return 0, false
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

func toList(v any) ([]any, bool) {
	switch x := v.(type) {
	case []any:
		return x, true
	case []string:
		out := make([]any, len(x))
		for i, s := range x {
			out[i] = s
		}
		return out, true
	}
	return nil, false
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
