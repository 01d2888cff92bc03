package matcher

import (
	"github.com/pmezard/go-difflib/difflib"
)

// Similarity returns the Ratcliff/Obershelp ratio of a and b in [0, 1],
// compared rune by rune: 2*M/T where M is the number of matching runes
// and T the total length of both strings.
func Similarity(a, b string) float64 {
	ra, rb := runeStrings(a), runeStrings(b)
	if len(ra) == 0 && len(rb) == 0 {
		return 1
	}
	m := difflib.NewMatcherWithJunk(ra, rb, false, nil)
	return m.Ratio()
}

func runeStrings(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}
