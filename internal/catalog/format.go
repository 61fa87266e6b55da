package catalog

import (
	"strconv"
	"strings"

	"accidentsev/internal/model"
)

// Separator joins a code and its label in a selection token
const Separator = " — "

// Format renders an option as "code — label"
func Format(code model.Code, label string) string {
	return code.String() + Separator + label
}

// ParseSelection recovers the code from a "code — label" token. The left part
// becomes an integer only when it re-serializes to the same text, so "01",
// "2A" and "<=30" stay strings. Input without a separator is returned as is.
func ParseSelection(formatted string) model.Code {
	left, _, found := strings.Cut(formatted, Separator)
	if !found {
		return model.StringCode(formatted)
	}
	if n, err := strconv.Atoi(left); err == nil && strconv.Itoa(n) == left {
		return model.IntCode(n)
	}
	return model.StringCode(left)
}
