// Package seed generates plausible submissions for a form. It backs the
// seed command used to load test data and exercise large listings.
package seed

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/Prashu2024/form-builder-backend/internal/schema"
)

var (
	firstNames = []string{"Alice", "Bob", "Charlie", "Diana", "Eve", "Frank", "Grace", "Hank", "Ivy", "Jack", "Karen", "Leo", "Mona", "Nick", "Olivia", "Paul", "Quinn", "Rosa", "Sam", "Tina"}
	lastNames  = []string{"Smith", "Johnson", "Williams", "Brown", "Jones", "Garcia", "Miller", "Davis", "Rodriguez", "Martinez", "Wilson", "Anderson", "Taylor", "Thomas", "Moore", "Jackson", "Martin", "Lee", "Harris", "Clark"}
	words      = []string{"team", "player", "curious", "builder", "reliable", "learner", "focused", "friendly", "pragmatic", "remote", "mentor", "shipping", "quality", "design", "systems"}
)

const defaultMinDate = "2024-01-01"

// Generator is not safe for concurrent use. Give each goroutine its own.
type Generator struct {
	form *schema.Form
	rng  *rand.Rand
}

func New(form *schema.Form, seed int64) *Generator {
	return &Generator{form: form, rng: rand.New(rand.NewSource(seed))}
}

// Payload builds the i-th submission. Optional fields are filled about half
// of the time. It fails only when a required text field has a pattern none
// of the candidate values match.
func (g *Generator) Payload(i int) (map[string]any, error) {
	first := firstNames[g.rng.Intn(len(firstNames))]
	last := lastNames[g.rng.Intn(len(lastNames))]

	data := make(map[string]any, len(g.form.Fields))
	for fi := range g.form.Fields {
		f := &g.form.Fields[fi]
		if !f.Required && g.rng.Intn(2) == 0 {
			continue
		}
		v, ok := g.value(f, i, first, last)
		if !ok {
			if f.Required {
				return nil, fmt.Errorf("cannot generate a value for %q", f.Name)
			}
			continue
		}
		data[f.Name] = v
	}
	return data, nil
}

func (g *Generator) value(f *schema.Field, i int, first, last string) (any, bool) {
	r := f.Rules()
	switch f.Type {
	case schema.TypeText, schema.TypeTextarea:
		return g.text(f, i, first, last)
	case schema.TypeNumber:
		lo, hi := 0.0, 100.0
		if r.Min != nil {
			lo = *r.Min
		}
		if r.Max != nil {
			hi = *r.Max
		}
		return g.number(lo, hi)
	case schema.TypeSelect:
		if len(f.Options) == 0 {
			return nil, false
		}
		return f.Options[g.rng.Intn(len(f.Options))].Value, true
	case schema.TypeMultiSelect:
		return g.choices(f)
	case schema.TypeDate:
		start, ok := f.MinDate()
		if !ok {
			start, _ = time.Parse(time.DateOnly, defaultMinDate)
		}
		return start.AddDate(0, 0, g.rng.Intn(730)).Format(time.DateOnly), true
	case schema.TypeSwitch:
		return g.rng.Intn(4) != 0, true
	}
	return nil, false
}

// number prefers a whole number inside [lo, hi] and falls back to a
// fractional one when the range holds no integer.
func (g *Generator) number(lo, hi float64) (any, bool) {
	if hi < lo {
		return nil, false
	}
	ilo, ihi := math.Ceil(lo), math.Floor(hi)
	if ihi < ilo {
		return lo + g.rng.Float64()*(hi-lo), true
	}
	n := ilo + math.Floor(g.rng.Float64()*(ihi-ilo+1))
	return math.Min(n, ihi), true
}

func (g *Generator) text(f *schema.Field, i int, first, last string) (any, bool) {
	candidates := []string{
		first + " " + last,
		fmt.Sprintf("%s.%s.%d@example.com", strings.ToLower(first), strings.ToLower(last), i),
		g.sentence(),
	}
	if strings.Contains(strings.ToLower(f.Name), "mail") {
		candidates[0], candidates[1] = candidates[1], candidates[0]
	}
	if f.Type == schema.TypeTextarea {
		candidates[0], candidates[2] = candidates[2], candidates[0]
	}

	r := f.Rules()
	for _, c := range candidates {
		n := len([]rune(c))
		if r.MinLength != nil && *r.MinLength > 0 && n < *r.MinLength {
			continue
		}
		if r.MaxLength != nil && *r.MaxLength > 0 && n > *r.MaxLength {
			c = string([]rune(c)[:*r.MaxLength])
		}
		if re := f.Pattern(); re != nil && !re.MatchString(c) {
			continue
		}
		return c, true
	}
	return nil, false
}

func (g *Generator) sentence() string {
	n := 4 + g.rng.Intn(8)
	parts := make([]string, n)
	for i := range parts {
		parts[i] = words[g.rng.Intn(len(words))]
	}
	return strings.ToUpper(parts[0][:1]) + strings.Join(parts, " ")[1:] + "."
}

func (g *Generator) choices(f *schema.Field) (any, bool) {
	if len(f.Options) == 0 {
		return nil, false
	}
	r := f.Rules()
	lo, hi := 1, len(f.Options)
	if r.MinSelected != nil && *r.MinSelected > 0 {
		lo = *r.MinSelected
	}
	if r.MaxSelected != nil && *r.MaxSelected > 0 && *r.MaxSelected < hi {
		hi = *r.MaxSelected
	}
	if lo > hi {
		return nil, false
	}
	k := lo + g.rng.Intn(hi-lo+1)
	picked := make([]any, k)
	for j, idx := range g.rng.Perm(len(f.Options))[:k] {
		picked[j] = f.Options[idx].Value
	}
	return picked, true
}
