package schema

import (
	"math"
	"slices"
	"strconv"
	"strings"

	"accidentsev/internal/model"
)

// DomainKind tags the variant of a Domain
type DomainKind string

const (
	KindNumericRange DomainKind = "numeric_range"
	KindIntEnum      DomainKind = "int_enum"
	KindStringEnum   DomainKind = "string_enum"
	KindFreeString   DomainKind = "free_string"
)

// Domain is the set of values a field accepts
type Domain interface {
	Kind() DomainKind
	// Numeric reports whether values are integers/floats on the wire
	Numeric() bool
	// Contains checks an already-normalized value (float64 or string)
	Contains(v any) bool
}

// NumericRange accepts integral numbers within [Min, Max]
type NumericRange struct {
	Min, Max int
}

func (NumericRange) Kind() DomainKind { return KindNumericRange }
func (NumericRange) Numeric() bool    { return true }

func (d NumericRange) Contains(v any) bool {
	f, ok := asNumber(v)
	if !ok || f != math.Trunc(f) {
		return false
	}
	return f >= float64(d.Min) && f <= float64(d.Max)
}

// IntEnum accepts one of a fixed set of integer codes
type IntEnum struct {
	Values []int
}

func (IntEnum) Kind() DomainKind { return KindIntEnum }
func (IntEnum) Numeric() bool    { return true }

func (d IntEnum) Contains(v any) bool {
	f, ok := asNumber(v)
	if !ok || f != math.Trunc(f) {
		return false
	}
	return slices.Contains(d.Values, int(f))
}

// StringEnum accepts one of a fixed set of string codes
type StringEnum struct {
	Values []string
}

func (StringEnum) Kind() DomainKind { return KindStringEnum }
func (StringEnum) Numeric() bool    { return false }

func (d StringEnum) Contains(v any) bool {
	return slices.Contains(d.Values, model.ValueString(v))
}

// FreeString accepts any non-blank string
type FreeString struct{}

func (FreeString) Kind() DomainKind { return KindFreeString }
func (FreeString) Numeric() bool    { return false }

func (FreeString) Contains(v any) bool {
	return strings.TrimSpace(model.ValueString(v)) != ""
}

// Enumerated reports whether the domain is a finite code list
func Enumerated(d Domain) bool {
	k := d.Kind()
	return k == KindIntEnum || k == KindStringEnum
}

func asNumber(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, !math.IsNaN(t)
	case int:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	}
	return 0, false
}

func intRange(lo, hi int) []int {
	out := make([]int, 0, hi-lo+1)
	for i := lo; i <= hi; i++ {
		out = append(out, i)
	}
	return out
}
