// Package classify assigns story categories by weighted keyword matching
// against normalized titles.
package classify

import (
	"sort"
	"strings"

	"github.com/AhmedHasab/eyelhekaya/pkg/textnorm"
)

// Category labels one narrative story type.
type Category string

const (
	Crime Category = "crime"
	Death Category = "death"
	War   Category = "war"
	Spy   Category = "spy"
)

// AllCategories returns every category in canonical table order. The order
// doubles as the tie-breaker when two categories score equally.
func AllCategories() []Category {
	return []Category{Crime, Death, War, Spy}
}

const (
	// keywordWeight scales a matched keyword's rune length into a score.
	keywordWeight = 2
	// keywordCap bounds the contribution of any single keyword.
	keywordCap = 30
	// hintDivisor halves the weight of matches found only in hint keywords.
	hintDivisor = 2
	// minScore is the threshold a category must reach to be kept.
	minScore = 8
	// maxLabels caps how many categories a single title can carry.
	maxLabels = 3
)

var categoryKeywords = map[Category][]string{
	Crime: {
		"جريمة", "قضية قتل", "سرقة", "اختطاف", "مجرم", "جنائية", "تحقيق صحفي",
		"crime", "murder", "heist",
	},
	Death: {
		"وفاة", "رحيل", "مقتل", "توفي", "ملابسات وفاة", "ظروف غامضة",
		"death", "passed away",
	},
	War: {
		"حرب", "معركة", "عسكري", "غزو", "جبهة", "وثائقي حرب",
		"war", "battle", "invasion",
	},
	Spy: {
		"جاسوس", "تجسس", "مخابرات", "عميل سري", "استخبارات", "عملية سرية",
		"spy", "espionage",
	},
}

func init() {
	// Matching happens against normalized titles, so the table itself must be
	// in normalized form.
	for cat, kws := range categoryKeywords {
		for i := range kws {
			kws[i] = textnorm.Normalize(kws[i])
		}
		categoryKeywords[cat] = kws
	}
}

// Classify returns up to three category labels for a title, strongest first.
// Optional hints (for example the discovery query that produced the title)
// are matched at half weight. An empty title or a title with no keyword hits
// yields nil.
func Classify(title string, hints ...string) []Category {
	normTitle := textnorm.Normalize(title)
	if normTitle == "" {
		return nil
	}

	normHints := make([]string, 0, len(hints))
	for _, h := range hints {
		if nh := textnorm.Normalize(h); nh != "" {
			normHints = append(normHints, nh)
		}
	}

	type scored struct {
		cat   Category
		score int
		order int
	}

	var kept []scored
	for order, cat := range AllCategories() {
		score := 0
		for _, kw := range categoryKeywords[cat] {
			w := keywordScore(kw)
			if contains(normTitle, kw) {
				score += w
				continue
			}
			for _, h := range normHints {
				if contains(h, kw) {
					score += w / hintDivisor
					break
				}
			}
		}
		if score >= minScore {
			kept = append(kept, scored{cat: cat, score: score, order: order})
		}
	}

	sort.Slice(kept, func(i, j int) bool {
		if kept[i].score != kept[j].score {
			return kept[i].score > kept[j].score
		}
		return kept[i].order < kept[j].order
	})

	if len(kept) > maxLabels {
		kept = kept[:maxLabels]
	}

	labels := make([]Category, len(kept))
	for i, s := range kept {
		labels[i] = s.cat
	}
	if len(labels) == 0 {
		return nil
	}
	return labels
}

func keywordScore(kw string) int {
	w := len([]rune(kw)) * keywordWeight
	if w > keywordCap {
		return keywordCap
	}
	return w
}

func contains(haystack, needle string) bool {
	return needle != "" && strings.Contains(haystack, needle)
}
