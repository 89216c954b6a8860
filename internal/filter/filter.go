// Package filter narrows in-memory record collections by a free-text query,
// enum selects and an optional CEL expression, and computes aggregates over
// the unfiltered base.
//
// Filtering is pure: records are never mutated, the result is always a new
// slice, and the relative order of the input is preserved.
package filter

import (
	"strings"
)

// All is the enum sentinel meaning "no constraint on this field".
const All = "all"

// Record is anything the filter can inspect.
type Record interface {
	// FieldValue returns the enum value of a named field. ok is false when
	// the record has no such field.
	FieldValue(name string) (value string, ok bool)

	// SearchText returns the designated free-text fields (name, description,
	// tags...).
	SearchText() []string
}

// EnumFilter constrains one field to an exact value.
type EnumFilter struct {
	Field string
	Value string
}

// Active reports whether the filter imposes a constraint. An empty value
// counts as the sentinel.
func (e EnumFilter) Active() bool {
	return e.Value != "" && e.Value != All
}

// Criteria is the combined set of filter inputs. All active parts compose
// with logical AND.
type Criteria struct {
	Query string       // case-insensitive substring over SearchText
	Enums []EnumFilter // exact, case-sensitive field equality
	Expr  *Expression  // optional CEL predicate
}

// Active reports whether c constrains anything at all.
func (c Criteria) Active() bool {
	if c.Query != "" || c.Expr != nil {
		return true
	}
	for _, e := range c.Enums {
		if e.Active() {
			return true
		}
	}
	return false
}

// With returns a copy of c with the enum filter for field set to value,
// replacing any previous filter on the same field.
func (c Criteria) With(field, value string) Criteria {
	enums := make([]EnumFilter, 0, len(c.Enums)+1)
	replaced := false
	for _, e := range c.Enums {
		if e.Field == field {
			if !replaced {
				enums = append(enums, EnumFilter{Field: field, Value: value})
				replaced = true
			}
			continue
		}
		enums = append(enums, e)
	}
	if !replaced {
		enums = append(enums, EnumFilter{Field: field, Value: value})
	}
	c.Enums = enums
	return c
}

// Value returns the value selected for field, or All when unconstrained.
func (c Criteria) Value(field string) string {
	for _, e := range c.Enums {
		if e.Field == field && e.Active() {
			return e.Value
		}
	}
	return All
}

// Apply returns the records matching every active criterion, in their
// original relative order. The returned slice never aliases records.
func Apply[R Record](records []R, c Criteria) []R {
	result := make([]R, 0, len(records))
	query := strings.ToLower(c.Query)

	for _, r := range records {
		if !matches(r, c, query) {
			continue
		}
		result = append(result, r)
	}

	return result
}

// Matches reports whether a single record satisfies c.
func Matches(r Record, c Criteria) bool {
	return matches(r, c, strings.ToLower(c.Query))
}

func matches(r Record, c Criteria, lowerQuery string) bool {
	// Query first: a miss excludes regardless of the rest
	if lowerQuery != "" && !matchesQuery(r, lowerQuery) {
		return false
	}

	for _, e := range c.Enums {
		if !e.Active() {
			continue
		}
		v, ok := r.FieldValue(e.Field)
		if !ok || v != e.Value {
			return false
		}
	}

	if c.Expr != nil && !c.Expr.Matches(r) {
		return false
	}

	return true
}

// matchesQuery checks whether any designated text field contains query.
func matchesQuery(r Record, lowerQuery string) bool {
	for _, text := range r.SearchText() {
		if strings.Contains(strings.ToLower(text), lowerQuery) {
			return true
		}
	}
	return false
}
