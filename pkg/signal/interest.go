package signal

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"os"
	"time"

	"golang.org/x/time/rate"

	"github.com/AhmedHasab/eyelhekaya/internal/metrics"
)

// Interest-over-time blend: the average tells how sustained attention is,
// the peak how high it spiked.
const (
	interestAvgWeight  = 0.6
	interestPeakWeight = 0.4
)

// Interest fetches a search-interest-over-time series for a query from the
// trends proxy and condenses it into one [0,100] score.
type Interest struct {
	client  *http.Client
	limiter *rate.Limiter
	baseURL string
}

// NewInterest creates an interest fetcher for the given proxy endpoint.
func NewInterest(baseURL string, timeout time.Duration) *Interest {
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Interest{
		client:  &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Limit(2), 4),
		baseURL: baseURL,
	}
}

// Fetch returns the interest score for query in market. Failures degrade to
// the neutral fallback score.
func (i *Interest) Fetch(ctx context.Context, query, market string) InterestResult {
	score, err := i.fetch(ctx, query, market)
	if err != nil {
		metrics.IncFetchError(string(KindInterest))
		fmt.Fprintf(os.Stderr, "  interest %q (%s): %v\n", query, market, err)
		return InterestResult{Score: FallbackScore, Degraded: true}
	}
	return InterestResult{Score: score}
}

func (i *Interest) fetch(ctx context.Context, query, market string) (int, error) {
	if i.baseURL == "" {
		return 0, fmt.Errorf("interest: proxy URL not configured")
	}
	if err := i.limiter.Wait(ctx); err != nil {
		return 0, err
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("country", market)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, i.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return 0, fmt.Errorf("create interest request: %w", err)
	}
	req.Header.Set("User-Agent", "eyelhekaya/1.0")

	resp, err := i.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("fetch interest: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("interest status %d", resp.StatusCode)
	}

	var body struct {
		Series []float64 `json:"series"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("decode interest series: %w", err)
	}
	if len(body.Series) == 0 {
		return 0, fmt.Errorf("interest: empty series")
	}

	return SeriesScore(body.Series), nil
}

// SeriesScore condenses an interest-over-time series into a clamped score:
// round(avg*0.6 + peak*0.4).
func SeriesScore(series []float64) int {
	if len(series) == 0 {
		return 0
	}
	var sum, peak float64
	for _, v := range series {
		sum += v
		if v > peak {
			peak = v
		}
	}
	avg := sum / float64(len(series))
	return Clamp(int(math.Round(avg*interestAvgWeight + peak*interestPeakWeight)))
}
