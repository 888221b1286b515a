package reconcile

import (
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// Similarity scores how alike two descriptions are, in [0, 1], as
// 1 - editDistance/maxLen over the normalized strings. Two descriptions that
// both normalize to "" are identical, so 1.0. Symmetric in its arguments.
func Similarity(a, b string) float64 {
	na, nb := Normalize(a), Normalize(b)
	maxLen := utf8.RuneCountInString(na)
	if l := utf8.RuneCountInString(nb); l > maxLen {
		maxLen = l
	}
	if maxLen == 0 {
		return 1.0
	}
	dist := levenshtein.ComputeDistance(na, nb)
	return 1 - float64(dist)/float64(maxLen)
}
