// Package strings holds small helpers for name and comment lists.
package strings

import (
	"slices"
	"strings"
)

// Compact trims every value and drops blanks and repeats, keeping the first
// occurrence of each.
func Compact(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// SortedUnique is Compact followed by a lexical sort.
func SortedUnique(values []string) []string {
	out := Compact(values)
	slices.Sort(out)
	return out
}

// LongestFirst is Compact ordered by descending length, ties kept in input
// order. Replacing in this order stops a short value from splitting a longer
// one that contains it.
func LongestFirst(values []string) []string {
	out := Compact(values)
	slices.SortStableFunc(out, func(a, b string) int { return len(b) - len(a) })
	return out
}
