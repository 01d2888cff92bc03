// Package textnorm canonicalizes free-form answers so that comparisons
// ignore case, Unicode presentation forms and surrounding whitespace.
package textnorm

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Normalize folds case, applies NFKC and collapses runs of whitespace.
// Full-width forms ("ＰＡＲＩＳ") and ligatures compare equal to their
// plain counterparts.
func Normalize(s string) string {
	s = norm.NFKC.String(s)
	s = cases.Fold().String(s)
	return strings.Join(strings.Fields(s), " ")
}

// Set normalizes every entry of answers, dropping empties and duplicates
// while keeping first-seen order.
func Set(answers []string) []string {
	out := make([]string, 0, len(answers))
	seen := make(map[string]struct{}, len(answers))
	for _, a := range answers {
		n := Normalize(a)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
