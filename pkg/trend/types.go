// Package trend is the scoring engine: it fans signal fetches out across
// markets and queries, merges the results into ranked story candidates, and
// blends operator ratings with fresh trend scores.
package trend

import (
	"time"

	"github.com/AhmedHasab/eyelhekaya/pkg/classify"
	"github.com/AhmedHasab/eyelhekaya/pkg/signal"
)

// Market is one country/region the fetchers localize queries to. Weight is
// the market's share of its group allocation.
type Market struct {
	Code   string  `json:"code"`
	Name   string  `json:"name"`
	Weight float64 `json:"weight"`
}

// Query is one discovery search phrase tied to a story category.
type Query struct {
	Category classify.Category `json:"category"`
	Text     string            `json:"text"`
}

// Candidate is a prospective story produced by one discovery run. Candidates
// are transient: they live in the day cache and nowhere else.
type Candidate struct {
	Title        string                    `json:"title"`
	URL          string                    `json:"url,omitempty"`
	Market       string                    `json:"market"`
	MarketWeight float64                   `json:"market_weight"`
	Categories   []classify.Category       `json:"categories,omitempty"`
	SubScores    map[signal.SourceKind]int `json:"sub_scores"`
	FinalScore   int                       `json:"final_score"`
	CreatedAt    time.Time                 `json:"created_at"`
}

// Story is one operator-owned list entry. The engine reads it and computes
// scores; it never mutates or persists the list itself.
type Story struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Score    int    `json:"score"`
	Done     bool   `json:"done"`
	Category string `json:"category,omitempty"`
	Notes    string `json:"notes,omitempty"`
	Added    string `json:"added,omitempty"`
}

// RankedStory pairs a story with its freshly blended scores.
type RankedStory struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	PersonalScore int    `json:"personal_score"`
	TrendScore    int    `json:"trend_score"`
	FinalScore    int    `json:"final_score"`
}
