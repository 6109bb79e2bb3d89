package trend

import (
	"math"

	"github.com/AhmedHasab/eyelhekaya/pkg/signal"
)

// Blend weights. These are design constants, not tunables: every candidate in
// a batch must be scored with the same weights or relative ranking stops
// being reproducible.
const (
	// Discovery mode: external search attention vs. video traction.
	DiscoverySearchWeight = 0.6
	DiscoveryVideoWeight  = 0.4

	// Re-scoring mode: operator's personal rating vs. fresh trend score.
	RescorePersonalWeight = 0.4
	RescoreTrendWeight    = 0.6

	// CountLogScale converts log10 of a raw count into the 0-100 scale.
	// log10(count+10)*20 saturates at 100 around count 10^5.
	CountLogScale = 20
)

// ScoreFromCount maps a raw item or view count onto [0,100] through a log
// scale, so very large counts saturate smoothly instead of dominating.
func ScoreFromCount(count int64) int {
	if count <= 0 {
		return 0
	}
	return signal.Clamp(int(math.Round(math.Log10(float64(count)+10) * CountLogScale)))
}

// DiscoveryScore blends the search-attention sub-score with the video
// sub-score into one final integer score.
func DiscoveryScore(searchScore, videoScore int) int {
	s := float64(signal.Clamp(searchScore))*DiscoverySearchWeight +
		float64(signal.Clamp(videoScore))*DiscoveryVideoWeight
	return signal.Clamp(int(math.Round(s)))
}

// RescoreBlend blends an operator's personal rating with a computed trend
// score into one final integer score.
func RescoreBlend(personalScore, trendScore int) int {
	s := float64(signal.Clamp(personalScore))*RescorePersonalWeight +
		float64(signal.Clamp(trendScore))*RescoreTrendWeight
	return signal.Clamp(int(math.Round(s)))
}

// searchSubScore merges the news and interest sub-scores into the single
// search-attention figure that discovery scoring expects. With both sources
// degraded it lands on the neutral fallback.
func searchSubScore(newsScore, interestScore int) int {
	return signal.Clamp(int(math.Round(float64(newsScore+interestScore) / 2)))
}
