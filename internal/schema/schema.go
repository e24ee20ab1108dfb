// Package schema holds the declarative form definition that submissions are
// validated against. A Form is built once at start-up and never mutated.
package schema

import (
	"regexp"
	"time"
)

// FieldType is the closed set of input kinds a form field can declare.
type FieldType string

const (
	TypeText        FieldType = "text"
	TypeNumber      FieldType = "number"
	TypeSelect      FieldType = "select"
	TypeMultiSelect FieldType = "multi-select"
	TypeDate        FieldType = "date"
	TypeTextarea    FieldType = "textarea"
	TypeSwitch      FieldType = "switch"
)

// Valid reports whether t is one of the known field types.
func (t FieldType) Valid() bool {
	switch t {
	case TypeText, TypeNumber, TypeSelect, TypeMultiSelect, TypeDate, TypeTextarea, TypeSwitch:
		return true
	}
	return false
}

// HasOptions reports whether fields of this type choose from an option list.
func (t FieldType) HasOptions() bool {
	return t == TypeSelect || t == TypeMultiSelect
}

type Option struct {
	Label string `json:"label" yaml:"label"`
	Value string `json:"value" yaml:"value"`
}

// Rules is the type-specific constraint block of a field. Only the keys that
// apply to the field's type are consulted.
type Rules struct {
	MinLength    *int     `json:"minLength,omitempty" yaml:"minLength,omitempty"`
	MaxLength    *int     `json:"maxLength,omitempty" yaml:"maxLength,omitempty"`
	Regex        string   `json:"regex,omitempty" yaml:"regex,omitempty"`
	RegexMessage string   `json:"regexMessage,omitempty" yaml:"regexMessage,omitempty"`
	Min          *float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max          *float64 `json:"max,omitempty" yaml:"max,omitempty"`
	MinSelected  *int     `json:"minSelected,omitempty" yaml:"minSelected,omitempty"`
	MaxSelected  *int     `json:"maxSelected,omitempty" yaml:"maxSelected,omitempty"`
	MinDate      string   `json:"minDate,omitempty" yaml:"minDate,omitempty"`
}

type Field struct {
	Name        string    `json:"name" yaml:"name"`
	Type        FieldType `json:"type" yaml:"type"`
	Label       string    `json:"label" yaml:"label"`
	Placeholder string    `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	Required    bool      `json:"required" yaml:"required"`
	Options     []Option  `json:"options,omitempty" yaml:"options,omitempty"`
	Validation  *Rules    `json:"validation,omitempty" yaml:"validation,omitempty"`

	pattern *regexp.Regexp
	minDate time.Time
	hasMin  bool
}

// Pattern returns the anchored regular expression compiled from
// Validation.Regex, or nil when the field has none.
func (f *Field) Pattern() *regexp.Regexp {
	return f.pattern
}

// MinDate returns the parsed lower date bound.
func (f *Field) MinDate() (time.Time, bool) {
	return f.minDate, f.hasMin
}

// HasOption reports whether v equals the value of one of the field's options.
func (f *Field) HasOption(v string) bool {
	for _, o := range f.Options {
		if o.Value == v {
			return true
		}
	}
	return false
}

// Rules never returns nil so callers can read constraints without checking.
func (f *Field) Rules() Rules {
	if f.Validation == nil {
		return Rules{}
	}
	return *f.Validation
}

// Form is an ordered, immutable list of fields plus display metadata.
type Form struct {
	Title       string  `json:"title" yaml:"title"`
	Description string  `json:"description" yaml:"description"`
	Fields      []Field `json:"fields" yaml:"fields"`
}

// Field looks a field up by name.
func (f *Form) Field(name string) (*Field, bool) {
	for i := range f.Fields {
		if f.Fields[i].Name == name {
			return &f.Fields[i], true
		}
	}
	return nil, false
}

// FieldNames returns field names in declaration order.
func (f *Form) FieldNames() []string {
	names := make([]string, len(f.Fields))
	for i, fd := range f.Fields {
		names[i] = fd.Name
	}
	return names
}
