package trend

import "github.com/AhmedHasab/eyelhekaya/pkg/textnorm"

// Dedupe caps the number of candidates per normalized title at maxPerTitle
// (minimum 1), keeping earlier occurrences. Input order is preserved, so the
// result is stable for identical input orderings.
func Dedupe(cands []Candidate, maxPerTitle int) []Candidate {
	if maxPerTitle < 1 {
		maxPerTitle = 1
	}

	seen := make(map[string]int, len(cands))
	out := make([]Candidate, 0, len(cands))
	for _, c := range cands {
		key := textnorm.Normalize(c.Title)
		if seen[key] >= maxPerTitle {
			continue
		}
		seen[key]++
		out = append(out, c)
	}
	return out
}
