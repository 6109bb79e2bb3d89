package signal

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/AhmedHasab/eyelhekaya/internal/metrics"
)

const defaultVideoBaseURL = "https://www.googleapis.com/youtube/v3"

// statsBatchSize is the YouTube API limit on ids per statistics request.
const statsBatchSize = 50

// Video searches the YouTube Data API for the most-viewed videos matching a
// query in a market, then enriches them with view counts via the batched
// statistics endpoint.
type Video struct {
	client  *http.Client
	limiter *rate.Limiter
	apiKey  string
	baseURL string
}

// NewVideo creates a video fetcher. baseURL may be empty to use the public
// API endpoint.
func NewVideo(apiKey, baseURL string, timeout time.Duration) *Video {
	if baseURL == "" {
		baseURL = defaultVideoBaseURL
	}
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Video{
		client:  &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Limit(2), 4),
		apiKey:  apiKey,
		baseURL: baseURL,
	}
}

// Search returns videos for query in market, newest-window first by view
// count. maxResults caps the search page; windowDays bounds how old a video
// may be. Failures degrade to an empty result.
func (v *Video) Search(ctx context.Context, query, market string, maxResults, windowDays int) VideoResult {
	res, err := v.search(ctx, query, market, maxResults, windowDays)
	if err != nil {
		metrics.IncFetchError(string(KindVideo))
		fmt.Fprintf(os.Stderr, "  video %q (%s): %v\n", query, market, err)
		return VideoResult{Degraded: true}
	}
	return res
}

func (v *Video) search(ctx context.Context, query, market string, maxResults, windowDays int) (VideoResult, error) {
	if v.apiKey == "" {
		return VideoResult{}, fmt.Errorf("video: API key required (set YOUTUBE_API_KEY)")
	}
	if maxResults <= 0 {
		maxResults = 5
	}
	if windowDays <= 0 {
		windowDays = 365
	}
	if err := v.limiter.Wait(ctx); err != nil {
		return VideoResult{}, err
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -windowDays)

	params := url.Values{}
	params.Set("key", v.apiKey)
	params.Set("part", "snippet")
	params.Set("q", query)
	params.Set("type", "video")
	params.Set("order", "viewCount")
	params.Set("regionCode", market)
	params.Set("maxResults", strconv.Itoa(maxResults))
	params.Set("publishedAfter", cutoff.Format(time.RFC3339))

	var result ytSearchResult
	if err := v.getJSON(ctx, v.baseURL+"/search?"+params.Encode(), &result); err != nil {
		return VideoResult{}, fmt.Errorf("video search: %w", err)
	}

	var (
		items []VideoItem
		ids   []string
		idIdx = make(map[string]int)
	)
	for _, item := range result.Items {
		videoID := item.ID.VideoID
		if videoID == "" {
			continue
		}
		published := item.Snippet.PublishedAt
		if !published.IsZero() && published.Before(cutoff) {
			continue
		}
		idIdx[videoID] = len(items)
		ids = append(ids, videoID)
		items = append(items, VideoItem{
			Title:       item.Snippet.Title,
			URL:         "https://www.youtube.com/watch?v=" + videoID,
			PublishedAt: published,
		})
	}

	// View counts come from a separate batched statistics call.
	for start := 0; start < len(ids); start += statsBatchSize {
		end := min(start+statsBatchSize, len(ids))

		statsParams := url.Values{}
		statsParams.Set("key", v.apiKey)
		statsParams.Set("part", "statistics")
		statsParams.Set("id", strings.Join(ids[start:end], ","))

		var stats ytVideoResult
		if err := v.getJSON(ctx, v.baseURL+"/videos?"+statsParams.Encode(), &stats); err != nil {
			return VideoResult{}, fmt.Errorf("video statistics: %w", err)
		}
		for _, video := range stats.Items {
			if idx, ok := idIdx[video.ID]; ok {
				items[idx].ViewCount = video.Statistics.ViewCount
			}
		}
	}

	return VideoResult{Items: items}, nil
}

func (v *Video) getJSON(ctx context.Context, reqURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "eyelhekaya/1.0")

	resp, err := v.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

type ytSearchResult struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
		Snippet struct {
			Title       string    `json:"title"`
			PublishedAt time.Time `json:"publishedAt"`
		} `json:"snippet"`
	} `json:"items"`
}

type ytVideoResult struct {
	Items []struct {
		ID         string `json:"id"`
		Statistics struct {
			ViewCount int64 `json:"viewCount,string"`
		} `json:"statistics"`
	} `json:"items"`
}
