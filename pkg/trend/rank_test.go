package trend

import (
	"math/rand"
	"testing"
)

func TestTopNOrdersAndTruncates(t *testing.T) {
	cands := []Candidate{
		{Title: "c", FinalScore: 30},
		{Title: "a", FinalScore: 90},
		{Title: "b", FinalScore: 60},
		{Title: "d", FinalScore: 60},
	}

	got := TopN(cands, 3)
	if len(got) != 3 {
		t.Fatalf("TopN returned %d candidates, want 3", len(got))
	}
	if got[0].Title != "a" {
		t.Errorf("top candidate = %q, want a", got[0].Title)
	}
	// Stable sort: b came before d in the input, both score 60.
	if got[1].Title != "b" || got[2].Title != "d" {
		t.Errorf("equal-score order = %q, %q; want b, d", got[1].Title, got[2].Title)
	}

	// Input must not be reordered.
	if cands[0].Title != "c" {
		t.Errorf("TopN mutated its input")
	}
}

func TestTopNZeroMeansAll(t *testing.T) {
	cands := []Candidate{{FinalScore: 1}, {FinalScore: 2}}
	if got := TopN(cands, 0); len(got) != 2 {
		t.Errorf("TopN(cands, 0) returned %d candidates, want all 2", len(got))
	}
}

func TestWeightedPickFollowsScores(t *testing.T) {
	cands := []Candidate{
		{Title: "winner", FinalScore: 10},
		{Title: "zero-a", FinalScore: 0},
		{Title: "zero-b", FinalScore: 0},
	}
	rng := rand.New(rand.NewSource(1))

	for i := 0; i < 1000; i++ {
		c, ok := WeightedPick(cands, rng)
		if !ok {
			t.Fatal("WeightedPick reported empty slate")
		}
		if c.Title != "winner" {
			t.Fatalf("draw %d picked %q; zero-score candidates must never win", i, c.Title)
		}
	}
}

func TestWeightedPickAllZeroIsUniform(t *testing.T) {
	cands := []Candidate{
		{Title: "a"}, {Title: "b"}, {Title: "c"},
	}
	rng := rand.New(rand.NewSource(42))

	hits := make(map[string]int)
	for i := 0; i < 3000; i++ {
		c, ok := WeightedPick(cands, rng)
		if !ok {
			t.Fatal("WeightedPick reported empty slate")
		}
		hits[c.Title]++
	}
	for _, title := range []string{"a", "b", "c"} {
		if hits[title] == 0 {
			t.Errorf("candidate %q never drawn in uniform fallback", title)
		}
	}
}

func TestWeightedPickEmpty(t *testing.T) {
	rng := rand.New(rand.NewSource(0))
	if _, ok := WeightedPick(nil, rng); ok {
		t.Error("WeightedPick(nil) reported a pick")
	}
}
