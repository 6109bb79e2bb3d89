package trend

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/AhmedHasab/eyelhekaya/internal/cache"
	"github.com/AhmedHasab/eyelhekaya/internal/metrics"
	"github.com/AhmedHasab/eyelhekaya/pkg/classify"
	"github.com/AhmedHasab/eyelhekaya/pkg/signal"
	"github.com/AhmedHasab/eyelhekaya/pkg/textnorm"
)

// Cache actions, also the day-key prefixes in the result cache.
const (
	ActionDiscoverLong  = "trend_long"
	ActionDiscoverShort = "trend_short"
)

// ErrNoCandidates reports that a run produced zero candidates after
// deduplication. It is a distinct outcome, not a transport failure.
var ErrNoCandidates = errors.New("no candidates")

// ErrInvalidInput reports a structurally bad request, rejected before any
// external call.
var ErrInvalidInput = errors.New("invalid input")

// NewsFetcher searches news headlines for a query in a market.
type NewsFetcher interface {
	Search(ctx context.Context, query, market string) signal.NewsResult
}

// VideoFetcher searches videos for a query in a market.
type VideoFetcher interface {
	Search(ctx context.Context, query, market string, maxResults, windowDays int) signal.VideoResult
}

// InterestFetcher reports search interest over time for a query in a market.
type InterestFetcher interface {
	Fetch(ctx context.Context, query, market string) signal.InterestResult
}

// Options tune a single engine instance. Zero values pick defaults.
type Options struct {
	TopN               int  // max candidates returned per discovery run
	MaxPerTitle        int  // dedup cap per normalized title
	MaxVideoResults    int  // search page size per video call
	Concurrency        int  // bounded fan-out across (market, query) tasks
	WindowDaysLong     int  // default recency window for long-form discovery
	WindowDaysShort    int  // default recency window for short-form discovery
	RetainWithoutVideo bool // keep candidates that found no video item
	RescoreLimit       int  // default maxResults for re-scoring
}

func (o Options) withDefaults() Options {
	if o.TopN <= 0 {
		o.TopN = 20
	}
	if o.MaxPerTitle <= 0 {
		o.MaxPerTitle = 1
	}
	if o.MaxVideoResults <= 0 {
		o.MaxVideoResults = 5
	}
	if o.Concurrency <= 0 {
		o.Concurrency = 4
	}
	if o.WindowDaysLong <= 0 {
		o.WindowDaysLong = 365
	}
	if o.WindowDaysShort <= 0 {
		o.WindowDaysShort = 90
	}
	if o.RescoreLimit <= 0 {
		o.RescoreLimit = 10
	}
	return o
}

// Engine runs the discovery and re-scoring pipelines.
type Engine struct {
	cache    *cache.Cache
	news     NewsFetcher
	video    VideoFetcher
	interest InterestFetcher

	markets      []Market
	longQueries  []Query
	shortQueries []Query
	opts         Options
	now          func() time.Time
}

// NewEngine creates an engine over the given fetchers, market list and query
// lists. now may be nil for wall-clock time.
func NewEngine(c *cache.Cache, news NewsFetcher, video VideoFetcher, interest InterestFetcher,
	markets []Market, longQueries, shortQueries []Query, opts Options, now func() time.Time) *Engine {
	if now == nil {
		now = time.Now
	}
	return &Engine{
		cache:        c,
		news:         news,
		video:        video,
		interest:     interest,
		markets:      markets,
		longQueries:  longQueries,
		shortQueries: shortQueries,
		opts:         opts.withDefaults(),
		now:          now,
	}
}

// DiscoverLong returns ranked long-form story candidates for the given
// recency window (0 = default). Results are served from the day cache when
// fresh.
func (e *Engine) DiscoverLong(ctx context.Context, windowDays int) ([]Candidate, error) {
	if windowDays <= 0 {
		windowDays = e.opts.WindowDaysLong
	}
	return e.discover(ctx, ActionDiscoverLong, e.longQueries, windowDays)
}

// DiscoverShort returns ranked short-form story candidates.
func (e *Engine) DiscoverShort(ctx context.Context, windowDays int) ([]Candidate, error) {
	if windowDays <= 0 {
		windowDays = e.opts.WindowDaysShort
	}
	return e.discover(ctx, ActionDiscoverShort, e.shortQueries, windowDays)
}

func (e *Engine) discover(ctx context.Context, action string, queries []Query, windowDays int) ([]Candidate, error) {
	key := cache.DayKey(action, e.now())

	var cached []Candidate
	if ok, err := e.cache.Get(ctx, key, &cached); err != nil {
		return nil, fmt.Errorf("read %s cache: %w", action, err)
	} else if ok {
		return cached, nil
	}

	metrics.IncDiscovery(action)
	cands := e.aggregate(ctx, queries, windowDays)
	cands = Dedupe(cands, e.opts.MaxPerTitle)
	if len(cands) == 0 {
		return nil, ErrNoCandidates
	}
	cands = TopN(cands, e.opts.TopN)

	if err := e.cache.Put(ctx, key, cands); err != nil {
		fmt.Fprintf(os.Stderr, "cache write %s: %v\n", key, err)
	}
	return cands, nil
}

// aggregate fans (market x query) tasks out with bounded concurrency. Each
// task is independent: a failed or empty task contributes nothing and never
// cancels its siblings. Results keep task order so dedup stays stable.
func (e *Engine) aggregate(ctx context.Context, queries []Query, windowDays int) []Candidate {
	type task struct {
		market Market
		query  Query
	}

	var tasks []task
	for _, m := range e.markets {
		for _, q := range queries {
			tasks = append(tasks, task{market: m, query: q})
		}
	}

	results := make([]*Candidate, len(tasks))
	var wg sync.WaitGroup
	sem := make(chan struct{}, e.opts.Concurrency)

	for i, t := range tasks {
		wg.Add(1)
		go func(i int, t task) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[i] = e.buildCandidate(ctx, t.market, t.query, windowDays)
		}(i, t)
	}
	wg.Wait()

	var cands []Candidate
	for _, r := range results {
		if r != nil {
			cands = append(cands, *r)
		}
	}
	return cands
}

// buildCandidate runs the three signal fetches for one (market, query) pair
// and folds them into a candidate, or nil when retention rules drop the pair.
func (e *Engine) buildCandidate(ctx context.Context, m Market, q Query, windowDays int) *Candidate {
	news := e.news.Search(ctx, q.Text, m.Code)
	interest := e.interest.Fetch(ctx, q.Text, m.Code)
	video := e.video.Search(ctx, q.Text, m.Code, e.opts.MaxVideoResults, windowDays)

	newsScore := ScoreFromCount(int64(news.MatchCount))
	if news.Degraded {
		newsScore = signal.FallbackScore
	}
	search := searchSubScore(newsScore, interest.Score)

	title := q.Text
	url := ""
	videoScore := 0
	best := video.Best()
	if best != nil {
		title = best.Title
		url = best.URL
		videoScore = ScoreFromCount(best.ViewCount)
	} else if !e.opts.RetainWithoutVideo {
		return nil
	}

	final := DiscoveryScore(search, videoScore)
	if best == nil && search == 0 {
		// Nothing measured anything; the pair carries no information.
		return nil
	}

	return &Candidate{
		Title:        title,
		URL:          url,
		Market:       m.Code,
		MarketWeight: m.Weight,
		Categories:   classify.Classify(title, q.Text, string(q.Category)),
		SubScores: map[signal.SourceKind]int{
			signal.KindNews:     newsScore,
			signal.KindInterest: interest.Score,
			signal.KindVideo:    videoScore,
		},
		FinalScore: final,
		CreatedAt:  e.now().UTC(),
	}
}

// Rescore blends each not-done story's personal rating with a freshly
// computed trend score and returns the top maxResults, best first.
// maxResults of 0 uses the configured default; negative values and a nil
// story list are rejected.
func (e *Engine) Rescore(ctx context.Context, stories []Story, maxResults int) ([]RankedStory, error) {
	if stories == nil {
		return nil, fmt.Errorf("%w: stories list is required", ErrInvalidInput)
	}
	if maxResults < 0 {
		return nil, fmt.Errorf("%w: maxResults must be positive, got %d", ErrInvalidInput, maxResults)
	}
	if maxResults == 0 {
		maxResults = e.opts.RescoreLimit
	}

	metrics.RescoreRuns.Inc()

	ranked := make([]RankedStory, 0, len(stories))
	for _, story := range stories {
		if story.Done || story.Name == "" {
			continue
		}
		trendScore := e.trendScoreFor(ctx, story.Name)
		ranked = append(ranked, RankedStory{
			ID:            story.ID,
			Name:          story.Name,
			PersonalScore: signal.Clamp(story.Score),
			TrendScore:    trendScore,
			FinalScore:    RescoreBlend(story.Score, trendScore),
		})
	}
	if len(ranked) == 0 {
		return nil, ErrNoCandidates
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].FinalScore > ranked[j].FinalScore
	})
	if len(ranked) > maxResults {
		ranked = ranked[:maxResults]
	}
	return ranked, nil
}

// storedTrend is the per-title cache payload.
type storedTrend struct {
	TrendScore  int   `json:"trend_score"`
	SearchScore int   `json:"search_score"`
	VideoScore  int   `json:"video_score"`
	TotalViews  int64 `json:"total_views"`
}

// trendScoreFor computes (or recalls) today's trend score for one title.
// The key is the normalized title plus calendar day, with no market
// dimension: a story's trend standing is global from the operator's side.
func (e *Engine) trendScoreFor(ctx context.Context, name string) int {
	key := cache.DayKey(textnorm.Normalize(name), e.now())

	var stored storedTrend
	if ok, err := e.cache.Get(ctx, key, &stored); err == nil && ok {
		return stored.TrendScore
	}

	market := e.primaryMarket()
	news := e.news.Search(ctx, name, market)
	interest := e.interest.Fetch(ctx, name, market)
	video := e.video.Search(ctx, name, market, e.opts.MaxVideoResults, e.opts.WindowDaysLong)

	newsScore := ScoreFromCount(int64(news.MatchCount))
	if news.Degraded {
		newsScore = signal.FallbackScore
	}
	search := searchSubScore(newsScore, interest.Score)

	// Re-scoring weighs the whole body of uploads on the subject, not just
	// the single best upload.
	totalViews := video.TotalViews()
	videoScore := ScoreFromCount(totalViews)

	stored = storedTrend{
		TrendScore:  DiscoveryScore(search, videoScore),
		SearchScore: search,
		VideoScore:  videoScore,
		TotalViews:  totalViews,
	}
	if err := e.cache.Put(ctx, key, stored); err != nil {
		fmt.Fprintf(os.Stderr, "cache write %s: %v\n", key, err)
	}
	return stored.TrendScore
}

// ForceRefresh drops today's aggregation cache entries so the next discovery
// call re-runs the full fetch fan-out.
func (e *Engine) ForceRefresh(ctx context.Context) error {
	day := e.now()
	return e.cache.Invalidate(ctx,
		cache.DayKey(ActionDiscoverLong, day),
		cache.DayKey(ActionDiscoverShort, day),
	)
}

// Pick draws one candidate from today's long-form slate, weighted by final
// score.
func (e *Engine) Pick(ctx context.Context, rng *rand.Rand) (Candidate, error) {
	cands, err := e.DiscoverLong(ctx, 0)
	if err != nil {
		return Candidate{}, err
	}
	c, ok := WeightedPick(cands, rng)
	if !ok {
		return Candidate{}, ErrNoCandidates
	}
	return c, nil
}

func (e *Engine) primaryMarket() string {
	if len(e.markets) > 0 {
		return e.markets[0].Code
	}
	return "EG"
}
