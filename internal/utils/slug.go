package utils

import (
	"strings"
	"unicode"
)

// NormalizeUsername lower-cases candidate and collapses every whitespace run
// into a single hyphen. Leading and trailing runs are kept as hyphens.
func NormalizeUsername(candidate string) string {
	var b strings.Builder
	b.Grow(len(candidate))

	inSpace := false
	for _, r := range strings.ToLower(candidate) {
		if unicode.IsSpace(r) {
			if !inSpace {
				b.WriteByte('-')
				inSpace = true
			}
			continue
		}
		inSpace = false
		b.WriteRune(r)
	}

	return b.String()
}
