package reconcile

import (
	"strings"
	"unicode"
)

// Normalize canonicalizes a free-text transaction description for comparison:
// lower-cased, punctuation stripped, runs of whitespace collapsed to a single
// space, and trimmed. Idempotent; empty input normalizes to "".
func Normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	space := false
	for _, r := range strings.ToLower(text) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(r)
		case unicode.IsSpace(r):
			space = true
		}
		// anything else (punctuation, symbols) is dropped
	}
	return b.String()
}
