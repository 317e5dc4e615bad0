// Package similarity scores how alike two strings are at the character level.
package similarity

import (
	"github.com/pmezard/go-difflib/difflib"
)

// Ratio returns 2*M/T where M is the number of characters in matching blocks
// and T the total number of characters in both strings. Two empty strings
// are identical (1.0).
func Ratio(a, b string) float64 {
	if a == b {
		return 1.0
	}
	m := difflib.NewMatcher(runes(a), runes(b))
	return m.Ratio()
}

func runes(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}
