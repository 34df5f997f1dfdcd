// Package validation evaluates declarative per-route field rules and
// aggregates every failure into one response.
package validation

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Location says where a field is read from.
type Location string

const (
	InBody  Location = "body"
	InParam Location = "params"
	InQuery Location = "query"
)

// Predicate reports whether a value passes. present is false when the field is
// absent or null.
type Predicate func(value any, present bool) bool

// Field names a value in one request location. Body names may be dotted paths.
type Field struct {
	In   Location
	Name string
}

// Body addresses a JSON or form body field.
func Body(name string) Field { return Field{In: InBody, Name: name} }

// Param addresses a route parameter.
func Param(name string) Field { return Field{In: InParam, Name: name} }

// Query addresses a query string parameter.
func Query(name string) Field { return Field{In: InQuery, Name: name} }

// Rule is one predicate with its message, attached to a field.
type Rule struct {
	Field    Field
	Message  string
	check    func(value any, present, textual bool) bool
	optional bool
}

// Optional returns a copy of the rule that only runs when the field is present.
func (r Rule) Optional() Rule {
	r.optional = true
	return r
}

// passes evaluates the rule. textual is true when the value arrived as text
// (params, query, form bodies) rather than as a typed JSON value.
func (r Rule) passes(value any, present, textual bool) bool {
	if r.optional && !present {
		return true
	}
	return r.check(value, present, textual)
}

// Must attaches an arbitrary predicate.
func (f Field) Must(check Predicate, message string) Rule {
	return Rule{Field: f, Message: message, check: func(v any, present, _ bool) bool {
		return check(v, present)
	}}
}

func (f Field) typed(check func(value any, present, textual bool) bool, message string) Rule {
	return Rule{Field: f, Message: message, check: check}
}

// Required fails on absent, null or blank values.
func (f Field) Required(message string) Rule {
	return f.Must(func(v any, present bool) bool {
		if !present {
			return false
		}
		if s, ok := v.(string); ok {
			return strings.TrimSpace(s) != ""
		}
		return true
	}, message)
}

// String requires a string value.
func (f Field) String(message string) Rule {
	return f.Must(func(v any, present bool) bool {
		_, ok := v.(string)
		return present && ok
	}, message)
}

// Int requires an integral number. Numeric strings are accepted only for
// text sources, so a JSON "3" fails here instead of at body decoding.
func (f Field) Int(message string) Rule {
	return f.typed(func(v any, present, textual bool) bool {
		n, ok := number(v, textual)
		return present && ok && n == math.Trunc(n)
	}, message)
}

// Number requires any numeric value, with the same string handling as Int.
func (f Field) Number(message string) Rule {
	return f.typed(func(v any, present, textual bool) bool {
		_, ok := number(v, textual)
		return present && ok
	}, message)
}

// Bool requires a boolean; "true"/"false" strings are accepted for text sources.
func (f Field) Bool(message string) Rule {
	return f.typed(func(v any, present, textual bool) bool {
		switch t := v.(type) {
		case bool:
			return present
		case string:
			_, err := strconv.ParseBool(t)
			return present && textual && err == nil
		}
		return false
	}, message)
}

// StringArray requires an array whose elements are all strings.
func (f Field) StringArray(message string) Rule {
	return f.Must(func(v any, present bool) bool {
		arr, ok := v.([]any)
		if !present || !ok {
			return false
		}
		for _, item := range arr {
			if _, ok := item.(string); !ok {
				return false
			}
		}
		return true
	}, message)
}

// Length bounds a string's rune count; max <= 0 means no upper bound.
func (f Field) Length(min, max int, message string) Rule {
	return f.Must(func(v any, present bool) bool {
		s, ok := v.(string)
		if !present || !ok {
			return false
		}
		n := utf8.RuneCountInString(s)
		return n >= min && (max <= 0 || n <= max)
	}, message)
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Email requires a syntactically valid address.
func (f Field) Email(message string) Rule {
	return f.Matches(emailRegex, message)
}

// Matches requires a string matching re.
func (f Field) Matches(re *regexp.Regexp, message string) Rule {
	return f.Must(func(v any, present bool) bool {
		s, ok := v.(string)
		return present && ok && re.MatchString(s)
	}, message)
}

// UUID requires a canonical UUID string.
func (f Field) UUID(message string) Rule {
	return f.Must(func(v any, present bool) bool {
		s, ok := v.(string)
		if !present || !ok || len(s) != 36 {
			return false
		}
		_, err := uuid.Parse(s)
		return err == nil
	}, message)
}

// Date requires an RFC 3339 timestamp or a YYYY-MM-DD date.
func (f Field) Date(message string) Rule {
	return f.Must(func(v any, present bool) bool {
		s, ok := v.(string)
		if !present || !ok {
			return false
		}
		_, err := ParseDate(s)
		return err == nil
	}, message)
}

// OneOf requires the value to be one of the allowed strings.
func (f Field) OneOf(message string, allowed ...string) Rule {
	set := make(map[string]struct{}, len(allowed))
	for _, a := range allowed {
		set[a] = struct{}{}
	}
	return f.Must(func(v any, present bool) bool {
		s, ok := v.(string)
		if !present || !ok {
			return false
		}
		_, in := set[s]
		return in
	}, message)
}

// Range requires a number within [min, max].
func (f Field) Range(min, max float64, message string) Rule {
	return f.typed(func(v any, present, textual bool) bool {
		n, ok := number(v, textual)
		return present && ok && n >= min && n <= max
	}, message)
}

// ParseDate accepts the formats the Date rule admits.
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse(time.DateOnly, s)
}

func number(v any, textual bool) (float64, bool) {
	if _, isString := v.(string); isString && !textual {
		return 0, false
	}
	return toNumber(v)
}

func toNumber(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, !math.IsNaN(t) && !math.IsInf(t, 0)
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case json.Number:
		n, err := t.Float64()
		return n, err == nil
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return n, err == nil && !math.IsNaN(n) && !math.IsInf(n, 0)
	}
	return 0, false
}
