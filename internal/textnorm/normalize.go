// Package textnorm folds text for tolerant substring comparisons.
//
// Account numbers are printed with inconsistent spacing and hyphenation
// ("123-456-789", "123 456789"), so both the needle and the haystack are
// normalized before containment tests.
package textnorm

import (
	"strings"
	"unicode"
)

// Normalize removes all whitespace and hyphen characters, preserving the
// order and case of the remaining runes.
func Normalize(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '-' {
			return -1
		}
		return r
	}, s)
}
