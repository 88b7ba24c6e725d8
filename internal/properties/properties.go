// Package properties validates profile and event property maps before they
// are handed to the SDK.
package properties

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// ErrUnsupportedValue is returned for values the SDK cannot store.
var ErrUnsupportedValue = errors.New("unsupported property value")

// Date is a calendar date for profile properties such as DOB.
type Date struct {
	Year  int
	Month int
	Day   int
}

// DateOf returns the date part of t.
func DateOf(t time.Time) Date {
	return Date{Year: t.Year(), Month: int(t.Month()), Day: t.Day()}
}

// String renders the date as YYYY-MM-DD.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// Properties maps property names to values. Allowed values are ints,
// floats, bools, strings, Dates and slices of the scalar types.
type Properties map[string]any

// ValueError reports a property whose value type is not allowed.
type ValueError struct {
	Key  string
	Type string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("%s: %q has type %s", ErrUnsupportedValue, e.Key, e.Type)
}

func (e *ValueError) Unwrap() error {
	return ErrUnsupportedValue
}

// Validate returns a *ValueError for the first disallowed key in sorted
// order, or nil.
func (p Properties) Validate() error {
	for _, k := range p.sortedKeys() {
		if !allowed(p[k]) {
			return &ValueError{Key: k, Type: fmt.Sprintf("%T", p[k])}
		}
	}
	return nil
}

// Normalize validates p and returns a copy ready for JSON encoding. Dates
// are rendered with Date.String.
func (p Properties) Normalize() (map[string]any, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	out := make(map[string]any, len(p))
	for k, v := range p {
		switch x := v.(type) {
		case Date:
			out[k] = x.String()
		case *Date:
			out[k] = x.String()
		default:
			out[k] = v
		}
	}
	return out, nil
}

func (p Properties) sortedKeys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func allowed(v any) bool {
	switch x := v.(type) {
	case int, int32, int64, float32, float64, bool, string, Date,
		[]int, []int32, []int64, []float32, []float64, []bool, []string:
		return true
	case *Date:
		return x != nil
	case []any:
		// JSON arrays decode to []any.
		for _, e := range x {
			if !scalar(e) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func scalar(v any) bool {
	switch v.(type) {
	case int, int32, int64, float32, float64, bool, string:
		return true
	default:
		return false
	}
}
