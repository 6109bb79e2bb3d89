// Package signal wraps the external data sources that feed the scoring
// pipeline. Each fetcher degrades to a neutral fallback on failure instead of
// returning an error, so one broken upstream never takes down a whole
// discovery batch.
package signal

import "time"

// SourceKind identifies which external source a measurement came from.
type SourceKind string

const (
	KindNews     SourceKind = "news"
	KindVideo    SourceKind = "video"
	KindInterest SourceKind = "interest"
)

// FallbackScore is the neutral sub-score reported when a source call fails
// or its response cannot be parsed.
const FallbackScore = 20

// TrendSignal is one external measurement on the common 0-100 scale.
type TrendSignal struct {
	SourceKind      SourceKind `json:"source_kind"`
	RawValue        float64    `json:"raw_value"`
	NormalizedScore int        `json:"normalized_score"`
}

// Clamp bounds a score to the [0,100] scale shared by all sub-scores.
func Clamp(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// NewsItem is one headline from a news search.
type NewsItem struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet,omitempty"`
	Link    string `json:"link,omitempty"`
}

// NewsResult is the outcome of one news search call. Degraded marks a failed
// or unparsable call; callers substitute FallbackScore for the match count.
type NewsResult struct {
	MatchCount int
	Items      []NewsItem
	Degraded   bool
}

// VideoItem is one video hit with its view statistics.
type VideoItem struct {
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	ViewCount   int64     `json:"view_count"`
	PublishedAt time.Time `json:"published_at"`
}

// VideoResult is the outcome of one video search call.
type VideoResult struct {
	Items    []VideoItem
	Degraded bool
}

// Best returns the item with the highest view count, or nil if the result
// holds no items.
func (r VideoResult) Best() *VideoItem {
	if len(r.Items) == 0 {
		return nil
	}
	best := &r.Items[0]
	for i := range r.Items[1:] {
		if r.Items[i+1].ViewCount > best.ViewCount {
			best = &r.Items[i+1]
		}
	}
	return best
}

// TotalViews sums view counts across all items.
func (r VideoResult) TotalViews() int64 {
	var total int64
	for _, it := range r.Items {
		total += it.ViewCount
	}
	return total
}

// InterestResult is the outcome of one interest-over-time call. Score is
// already normalized to [0,100].
type InterestResult struct {
	Score    int
	Degraded bool
}
