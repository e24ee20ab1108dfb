package schema

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed employee_onboarding.yaml
var employeeOnboarding []byte

// Default returns the built-in Employee Onboarding form.
func Default() *Form {
	f, err := Parse(employeeOnboarding)
	if err != nil {
		panic("schema: embedded form is invalid: " + err.Error())
	}
	return f
}

// Load reads a form definition from a YAML or JSON file.
func Load(path string) (*Form, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("schema: read %s: %w", path, err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("schema: %s: %w", path, err)
	}
	return f, nil
}

// Parse decodes a form definition and checks it is well formed. JSON input is
// accepted since it is a subset of YAML.
func Parse(data []byte) (*Form, error) {
	var f Form
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode form: %w", err)
	}
	if err := f.compile(); err != nil {
		return nil, err
	}
	return &f, nil
}

func (f *Form) compile() error {
	if len(f.Fields) == 0 {
		return errors.New("form has no fields")
	}
	seen := make(map[string]bool, len(f.Fields))
	for i := range f.Fields {
		fd := &f.Fields[i]
		if fd.Name == "" {
			return fmt.Errorf("field %d: name is empty", i)
		}
		if seen[fd.Name] {
			return fmt.Errorf("field %q: duplicate name", fd.Name)
		}
		seen[fd.Name] = true
		if err := fd.compile(); err != nil {
			return fmt.Errorf("field %q: %w", fd.Name, err)
		}
	}
	return nil
}

func (fd *Field) compile() error {
	if !fd.Type.Valid() {
		return fmt.Errorf("unknown type %q", fd.Type)
	}
	if fd.Label == "" {
		return errors.New("label is empty")
	}
	if fd.Type.HasOptions() && len(fd.Options) == 0 {
		return fmt.Errorf("%s field needs options", fd.Type)
	}
	r := fd.Rules()
	if r.Regex != "" {
		re, err := regexp.Compile(`^(?:` + r.Regex + `)$`)
		if err != nil {
			return fmt.Errorf("regex: %w", err)
		}
		fd.pattern = re
	}
	if r.MinDate != "" {
		t, err := ParseTimestamp(r.MinDate)
		if err != nil {
			return fmt.Errorf("minDate: %w", err)
		}
		fd.minDate, fd.hasMin = t, true
	}
	if r.MinLength != nil && r.MaxLength != nil && *r.MinLength > *r.MaxLength {
		return errors.New("minLength exceeds maxLength")
	}
	if r.Min != nil && r.Max != nil && *r.Min > *r.Max {
		return errors.New("min exceeds max")
	}
	if r.MinSelected != nil && r.MaxSelected != nil && *r.MinSelected > *r.MaxSelected {
		return errors.New("minSelected exceeds maxSelected")
	}
	return nil
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999Z0700",
	"2006-01-02T15:04:05.999999999Z07",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04Z0700",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999Z0700",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// ParseTimestamp parses an ISO-8601 date or timestamp. A trailing "Z" means
// UTC; values without an offset are read as UTC. Offsets may be extended
// (+05:30), basic (+0530) or hours only (+05), and the T and Z designators
// may be lowercase.
func ParseTimestamp(s string) (time.Time, error) {
	orig := s
	if len(s) > 10 && s[10] == 't' {
		s = s[:10] + "T" + s[11:]
	}
	if strings.HasSuffix(s, "z") {
		s = s[:len(s)-1] + "Z"
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("not an ISO-8601 timestamp: %q", orig)
}
