package trend

import (
	"math/rand"
	"sort"
)

// TopN sorts candidates by final score descending (stable, so equal scores
// keep their aggregation order) and returns the first n.
func TopN(cands []Candidate, n int) []Candidate {
	out := make([]Candidate, len(cands))
	copy(out, cands)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].FinalScore > out[j].FinalScore
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// WeightedPick draws one candidate with probability proportional to its final
// score. When every score is zero it degrades to a uniform draw. The rand
// source is injected so tests can pin the sequence. Returns false only for an
// empty slate.
func WeightedPick(cands []Candidate, rng *rand.Rand) (Candidate, bool) {
	if len(cands) == 0 {
		return Candidate{}, false
	}

	total := 0
	for _, c := range cands {
		if c.FinalScore > 0 {
			total += c.FinalScore
		}
	}
	if total == 0 {
		return cands[rng.Intn(len(cands))], true
	}

	roll := rng.Intn(total)
	for _, c := range cands {
		if c.FinalScore <= 0 {
			continue
		}
		roll -= c.FinalScore
		if roll < 0 {
			return c, true
		}
	}
	return cands[len(cands)-1], true
}
