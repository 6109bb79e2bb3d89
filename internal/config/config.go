package config

import (
	"fmt"
	"math"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration.
type Config struct {
	Database  DatabaseConfig  `yaml:"database"`
	Server    ServerConfig    `yaml:"server"`
	Markets   MarketsConfig   `yaml:"markets"`
	Queries   QueriesConfig   `yaml:"queries"`
	Fetch     FetchConfig     `yaml:"fetch"`
	Discovery DiscoveryConfig `yaml:"discovery"`
	Schedule  ScheduleConfig  `yaml:"schedule"`
	Notify    NotifyConfig    `yaml:"notify"`
}

// DatabaseConfig configures the SQLite result cache.
type DatabaseConfig struct {
	Path string `yaml:"path"`
	TTL  string `yaml:"ttl"`
}

// ParseTTL returns the cache TTL as a duration, defaulting to 24h.
func (d DatabaseConfig) ParseTTL() time.Duration {
	t, err := time.ParseDuration(d.TTL)
	if err != nil || t <= 0 {
		return 24 * time.Hour
	}
	return t
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// MarketsConfig splits the market list into a weighted home group and a
// weighted global group.
type MarketsConfig struct {
	Home   MarketGroup `yaml:"home"`
	Global MarketGroup `yaml:"global"`
}

// MarketGroup is a set of markets sharing a fixed slice of the total signal
// budget. Member weights must sum to the group allocation.
type MarketGroup struct {
	Allocation float64  `yaml:"allocation"`
	Markets    []Market `yaml:"markets"`
}

// Market is one country/region entry.
type Market struct {
	Code   string  `yaml:"code"`
	Name   string  `yaml:"name"`
	Weight float64 `yaml:"weight"`
}

// QueriesConfig holds the discovery search phrases per production format.
type QueriesConfig struct {
	Long  []Query `yaml:"long"`
	Short []Query `yaml:"short"`
}

// Query is one search phrase tagged with its story category.
type Query struct {
	Category string `yaml:"category"`
	Text     string `yaml:"text"`
}

// FetchConfig configures the external signal fetchers.
type FetchConfig struct {
	YouTubeAPIKey   string `yaml:"youtube_api_key"`
	TrendsProxyURL  string `yaml:"trends_proxy_url"`
	NewsBaseURL     string `yaml:"news_base_url"`
	VideoBaseURL    string `yaml:"video_base_url"`
	TimeoutSeconds  int    `yaml:"timeout_seconds"`
	Concurrency     int    `yaml:"concurrency"`
	MaxVideoResults int    `yaml:"max_video_results"`
}

// Timeout returns the per-call timeout.
func (f FetchConfig) Timeout() time.Duration {
	if f.TimeoutSeconds <= 0 {
		return 15 * time.Second
	}
	return time.Duration(f.TimeoutSeconds) * time.Second
}

// DiscoveryConfig tunes the aggregation pipeline.
type DiscoveryConfig struct {
	TopN               int  `yaml:"top_n"`
	MaxPerTitle        int  `yaml:"max_per_title"`
	WindowDaysLong     int  `yaml:"window_days_long"`
	WindowDaysShort    int  `yaml:"window_days_short"`
	RetainWithoutVideo bool `yaml:"retain_without_video"`
	RescoreLimit       int  `yaml:"rescore_limit"`
}

// ScheduleConfig configures the cache pre-warm daemon.
type ScheduleConfig struct {
	PrewarmInterval string `yaml:"prewarm_interval"`
}

// ParsePrewarmInterval returns the pre-warm interval, defaulting to 24h.
func (s ScheduleConfig) ParsePrewarmInterval() time.Duration {
	d, err := time.ParseDuration(s.PrewarmInterval)
	if err != nil || d <= 0 {
		return 24 * time.Hour
	}
	return d
}

// NotifyConfig configures outbound result notifications.
type NotifyConfig struct {
	MinScore float64       `yaml:"min_score"`
	Slack    SlackConfig   `yaml:"slack"`
	Discord  DiscordConfig `yaml:"discord"`
	Webhook  WebhookConfig `yaml:"webhook"`
}

// SlackConfig for Slack webhook notifications.
type SlackConfig struct {
	Enabled    bool   `yaml:"enabled"`
	WebhookURL string `yaml:"webhook_url"`
}

// DiscordConfig for Discord webhook notifications.
type DiscordConfig struct {
	Enabled    bool   `yaml:"enabled"`
	WebhookURL string `yaml:"webhook_url"`
}

// WebhookConfig for generic webhook notifications.
type WebhookConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url"`
	Secret  string `yaml:"secret"`
}

// Default returns a Config with the stock market split and query lists.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{Path: "./hekaya.db", TTL: "24h"},
		Server:   ServerConfig{Port: 8080},
		Markets: MarketsConfig{
			Home: MarketGroup{
				Allocation: 0.8,
				Markets: []Market{
					{Code: "EG", Name: "مصر", Weight: 0.1},
					{Code: "SA", Name: "السعودية", Weight: 0.1},
					{Code: "YE", Name: "اليمن", Weight: 0.1},
					{Code: "IQ", Name: "العراق", Weight: 0.1},
					{Code: "LY", Name: "ليبيا", Weight: 0.1},
					{Code: "LB", Name: "لبنان", Weight: 0.1},
					{Code: "SY", Name: "سوريا", Weight: 0.1},
					{Code: "MA", Name: "المغرب", Weight: 0.1},
				},
			},
			Global: MarketGroup{
				Allocation: 0.2,
				Markets: []Market{
					{Code: "US", Name: "أمريكا", Weight: 0.04},
					{Code: "CO", Name: "كولومبيا", Weight: 0.04},
					{Code: "KR", Name: "كوريا الجنوبية", Weight: 0.04},
					{Code: "BR", Name: "البرازيل", Weight: 0.04},
					{Code: "AU", Name: "أستراليا", Weight: 0.04},
				},
			},
		},
		Queries: QueriesConfig{
			Long: []Query{
				{Category: "crime", Text: "جريمة غامضة تم كشفها تقرير وثائقي"},
				{Category: "crime", Text: "قضية قتل شهيرة تحقيق صحفي"},
				{Category: "death", Text: "وفاة لاعب كرة شهير ملابسات"},
				{Category: "death", Text: "وفاة فنان عربي ظروف غامضة"},
				{Category: "war", Text: "وثائقي عن حرب عربية معركة كبرى"},
				{Category: "war", Text: "تاريخ معركة حاسمة وثائقي"},
				{Category: "spy", Text: "قصة جاسوس تم كشفه"},
				{Category: "spy", Text: "عملية مخابرات سرية تم كشفها"},
			},
			Short: []Query{
				{Category: "crime", Text: "قصة جريمة غريبة جدا في دقيقة"},
				{Category: "death", Text: "قصة وفاة غريبة لشخصية مشهورة"},
				{Category: "war", Text: "قصة معركة في دقيقة"},
				{Category: "spy", Text: "أغرب قصة جاسوس في التاريخ"},
			},
		},
		Fetch: FetchConfig{
			TimeoutSeconds:  15,
			Concurrency:     4,
			MaxVideoResults: 5,
		},
		Discovery: DiscoveryConfig{
			TopN:               20,
			MaxPerTitle:        1,
			WindowDaysLong:     365,
			WindowDaysShort:    90,
			RetainWithoutVideo: true,
			RescoreLimit:       10,
		},
		Schedule: ScheduleConfig{PrewarmInterval: "24h"},
		Notify:   NotifyConfig{MinScore: 70},
	}
}

// Load reads configuration from a YAML file, applies env var overrides and
// validates market weights.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

const weightEpsilon = 1e-6

// Validate checks the market weight invariants: each group's member weights
// sum to its allocation, and the allocations sum to 1.
func (c *Config) Validate() error {
	groups := map[string]MarketGroup{
		"home":   c.Markets.Home,
		"global": c.Markets.Global,
	}
	for name, g := range groups {
		if len(g.Markets) == 0 {
			return fmt.Errorf("market group %s has no markets", name)
		}
		var sum float64
		for _, m := range g.Markets {
			if m.Code == "" {
				return fmt.Errorf("market group %s has an entry without a code", name)
			}
			if m.Weight < 0 {
				return fmt.Errorf("market %s has negative weight %v", m.Code, m.Weight)
			}
			sum += m.Weight
		}
		if math.Abs(sum-g.Allocation) > weightEpsilon {
			return fmt.Errorf("market group %s weights sum to %v, want allocation %v", name, sum, g.Allocation)
		}
	}

	total := c.Markets.Home.Allocation + c.Markets.Global.Allocation
	if math.Abs(total-1.0) > weightEpsilon {
		return fmt.Errorf("market allocations sum to %v, want 1.0", total)
	}
	return nil
}

// AllMarkets returns home markets followed by global markets. The first entry
// is the primary market used for per-title re-scoring.
func (c *Config) AllMarkets() []Market {
	out := make([]Market, 0, len(c.Markets.Home.Markets)+len(c.Markets.Global.Markets))
	out = append(out, c.Markets.Home.Markets...)
	out = append(out, c.Markets.Global.Markets...)
	return out
}

// applyEnvOverrides overrides config values with environment variables.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HEKAYA_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("YOUTUBE_API_KEY"); v != "" {
		cfg.Fetch.YouTubeAPIKey = v
	}
	if v := os.Getenv("TRENDS_PROXY_URL"); v != "" {
		cfg.Fetch.TrendsProxyURL = v
	}
	if v := os.Getenv("SLACK_WEBHOOK_URL"); v != "" {
		cfg.Notify.Slack.WebhookURL = v
		cfg.Notify.Slack.Enabled = true
	}
	if v := os.Getenv("DISCORD_WEBHOOK_URL"); v != "" {
		cfg.Notify.Discord.WebhookURL = v
		cfg.Notify.Discord.Enabled = true
	}
}
