package signal

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"golang.org/x/time/rate"

	"github.com/AhmedHasab/eyelhekaya/internal/metrics"
)

const defaultNewsBaseURL = "https://news.google.com/rss/search"

// News searches the Google News RSS endpoint for headlines matching a query,
// localized to a market.
type News struct {
	client  *http.Client
	parser  *gofeed.Parser
	limiter *rate.Limiter
	baseURL string
}

// NewNews creates a news fetcher. baseURL may be empty to use the default
// endpoint.
func NewNews(baseURL string, timeout time.Duration) *News {
	if baseURL == "" {
		baseURL = defaultNewsBaseURL
	}
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &News{
		client:  &http.Client{Timeout: timeout},
		parser:  gofeed.NewParser(),
		limiter: rate.NewLimiter(rate.Limit(2), 4),
		baseURL: baseURL,
	}
}

// Search returns the headlines matching query in the given market. Any
// failure yields a degraded result instead of an error so the caller's batch
// keeps going.
func (n *News) Search(ctx context.Context, query, market string) NewsResult {
	res, err := n.search(ctx, query, market)
	if err != nil {
		metrics.IncFetchError(string(KindNews))
		fmt.Fprintf(os.Stderr, "  news %q (%s): %v\n", query, market, err)
		return NewsResult{Degraded: true}
	}
	return res
}

func (n *News) search(ctx context.Context, query, market string) (NewsResult, error) {
	if err := n.limiter.Wait(ctx); err != nil {
		return NewsResult{}, err
	}

	lang := marketLanguage(market)
	params := url.Values{}
	params.Set("q", query)
	params.Set("gl", market)
	params.Set("hl", lang)
	params.Set("ceid", market+":"+lang)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return NewsResult{}, fmt.Errorf("create news request: %w", err)
	}
	req.Header.Set("User-Agent", "eyelhekaya/1.0")

	resp, err := n.client.Do(req)
	if err != nil {
		return NewsResult{}, fmt.Errorf("fetch news: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return NewsResult{}, fmt.Errorf("news status %d", resp.StatusCode)
	}

	parsed, err := n.parser.Parse(resp.Body)
	if err != nil {
		return NewsResult{}, fmt.Errorf("parse news feed: %w", err)
	}

	items := make([]NewsItem, 0, len(parsed.Items))
	for _, entry := range parsed.Items {
		items = append(items, NewsItem{
			Title:   entry.Title,
			Snippet: strings.TrimSpace(entry.Description),
			Link:    entry.Link,
		})
	}

	return NewsResult{MatchCount: len(items), Items: items}, nil
}

// marketLanguage picks the feed language for a market code. Arabic-speaking
// markets read Arabic feeds, the rest default to English.
func marketLanguage(market string) string {
	switch market {
	case "EG", "SA", "YE", "IQ", "LY", "LB", "SY", "MA", "JO", "AE", "KW", "QA", "TN", "DZ", "SD", "OM", "BH":
		return "ar"
	default:
		return "en"
	}
}
