package trend

import "testing"

func TestDedupeKeepsFirstOccurrence(t *testing.T) {
	cands := []Candidate{
		{Title: "قضية سفاح الجيزة", Market: "EG", FinalScore: 80},
		{Title: "قضيه سفاح الجيزه", Market: "SA", FinalScore: 70}, // ة/ه variant of the first
		{Title: "اختفاء غامض في عمان", Market: "JO", FinalScore: 60},
	}

	got := Dedupe(cands, 1)
	if len(got) != 2 {
		t.Fatalf("Dedupe returned %d candidates, want 2", len(got))
	}
	if got[0].Market != "EG" {
		t.Errorf("first survivor from market %s, want EG (first occurrence)", got[0].Market)
	}
	if got[1].Title != "اختفاء غامض في عمان" {
		t.Errorf("second survivor = %q, want the distinct title", got[1].Title)
	}
}

func TestDedupeMaxPerTitle(t *testing.T) {
	cands := []Candidate{
		{Title: "Same Story", Market: "EG"},
		{Title: "same story", Market: "SA"},
		{Title: "SAME STORY", Market: "AE"},
	}

	got := Dedupe(cands, 2)
	if len(got) != 2 {
		t.Fatalf("Dedupe with cap 2 returned %d candidates, want 2", len(got))
	}
	if got[0].Market != "EG" || got[1].Market != "SA" {
		t.Errorf("survivors = %s, %s; want EG, SA in input order", got[0].Market, got[1].Market)
	}

	// A cap below 1 still keeps one per title.
	got = Dedupe(cands, 0)
	if len(got) != 1 {
		t.Fatalf("Dedupe with cap 0 returned %d candidates, want 1", len(got))
	}
}

func TestDedupeEmpty(t *testing.T) {
	if got := Dedupe(nil, 1); len(got) != 0 {
		t.Errorf("Dedupe(nil) returned %d candidates, want 0", len(got))
	}
}
