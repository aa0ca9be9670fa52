// Package label defines the fixed set of stage categories a reviewer can
// assign to a record.
package label

import (
	"fmt"
	"strings"
)

// Category is a stage label stored verbatim in the label column.
type Category string

const (
	Reviewing  Category = "Reviewing"
	Passed     Category = "Passed"
	Bounceback Category = "Bounceback"
	AutoReply  Category = "Auto-Reply"
)

// all is ordered the way categories are presented to the reviewer.
var all = []Category{Reviewing, Passed, Bounceback, AutoReply}

// All returns the categories in display order.
func All() []Category {
	out := make([]Category, len(all))
	copy(out, all)
	return out
}

// Strings returns the categories as plain strings in display order.
func Strings() []string {
	out := make([]string, len(all))
	for i, c := range all {
		out[i] = string(c)
	}
	return out
}

// String implements fmt.Stringer.
func (c Category) String() string {
	return string(c)
}

// Valid reports whether s is exactly one of the known categories.
func Valid(s string) bool {
	for _, c := range all {
		if string(c) == s {
			return true
		}
	}
	return false
}

// Parse resolves s to a category, ignoring case and surrounding whitespace.
func Parse(s string) (Category, error) {
	s = strings.TrimSpace(s)
	for _, c := range all {
		if strings.EqualFold(string(c), s) {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category %q (valid: %s)", s, strings.Join(Strings(), ", "))
}
