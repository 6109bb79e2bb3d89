package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	ossignal "os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/AhmedHasab/eyelhekaya/internal/cache"
	"github.com/AhmedHasab/eyelhekaya/internal/config"
	"github.com/AhmedHasab/eyelhekaya/internal/scheduler"
	"github.com/AhmedHasab/eyelhekaya/pkg/classify"
	"github.com/AhmedHasab/eyelhekaya/pkg/notify"
	"github.com/AhmedHasab/eyelhekaya/pkg/server"
	"github.com/AhmedHasab/eyelhekaya/pkg/signal"
	"github.com/AhmedHasab/eyelhekaya/pkg/trend"
)

func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" {
		if _, err := os.Stat("config.yaml"); err == nil {
			path = "config.yaml"
		}
	}
	return config.Load(path)
}

func openCache(cfg *config.Config) (*cache.Cache, error) {
	return cache.Open(cfg.Database.Path, cfg.Database.ParseTTL(), nil)
}

func buildEngine(cfg *config.Config, c *cache.Cache) *trend.Engine {
	timeout := cfg.Fetch.Timeout()

	news := signal.NewNews(cfg.Fetch.NewsBaseURL, timeout)
	video := signal.NewVideo(cfg.Fetch.YouTubeAPIKey, cfg.Fetch.VideoBaseURL, timeout)
	interest := signal.NewInterest(cfg.Fetch.TrendsProxyURL, timeout)

	markets := trendMarkets(cfg.AllMarkets())
	long := trendQueries(cfg.Queries.Long)
	short := trendQueries(cfg.Queries.Short)

	opts := trend.Options{
		TopN:               cfg.Discovery.TopN,
		MaxPerTitle:        cfg.Discovery.MaxPerTitle,
		MaxVideoResults:    cfg.Fetch.MaxVideoResults,
		Concurrency:        cfg.Fetch.Concurrency,
		WindowDaysLong:     cfg.Discovery.WindowDaysLong,
		WindowDaysShort:    cfg.Discovery.WindowDaysShort,
		RetainWithoutVideo: cfg.Discovery.RetainWithoutVideo,
		RescoreLimit:       cfg.Discovery.RescoreLimit,
	}

	return trend.NewEngine(c, news, video, interest, markets, long, short, opts, nil)
}

func trendMarkets(markets []config.Market) []trend.Market {
	out := make([]trend.Market, len(markets))
	for i, m := range markets {
		out[i] = trend.Market{Code: m.Code, Name: m.Name, Weight: m.Weight}
	}
	return out
}

func trendQueries(queries []config.Query) []trend.Query {
	out := make([]trend.Query, len(queries))
	for i, q := range queries {
		out[i] = trend.Query{Category: classify.Category(q.Category), Text: q.Text}
	}
	return out
}

func buildNotifyManager(cfg *config.Config) *notify.Manager {
	var notifiers []notify.Notifier

	if cfg.Notify.Slack.Enabled && cfg.Notify.Slack.WebhookURL != "" {
		notifiers = append(notifiers, notify.NewSlack(cfg.Notify.Slack.WebhookURL))
	}
	if cfg.Notify.Discord.Enabled && cfg.Notify.Discord.WebhookURL != "" {
		notifiers = append(notifiers, notify.NewDiscord(cfg.Notify.Discord.WebhookURL))
	}
	if cfg.Notify.Webhook.Enabled && cfg.Notify.Webhook.URL != "" {
		notifiers = append(notifiers, notify.NewWebhook(cfg.Notify.Webhook.URL, cfg.Notify.Webhook.Secret))
	}

	return notify.NewManager(notifiers)
}

func runDiscover(format string, windowDays int, jsonOutput bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	c, err := openCache(cfg)
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	defer c.Close()

	engine := buildEngine(cfg, c)
	ctx := context.Background()

	var candidates []trend.Candidate
	switch format {
	case "long":
		candidates, err = engine.DiscoverLong(ctx, windowDays)
	case "short":
		candidates, err = engine.DiscoverShort(ctx, windowDays)
	default:
		return fmt.Errorf("unknown format %q (want long or short)", format)
	}
	if err != nil {
		if errors.Is(err, trend.ErrNoCandidates) {
			fmt.Println("no candidates found")
			return nil
		}
		return fmt.Errorf("discover: %w", err)
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(candidates)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SCORE\tMARKET\tCATEGORIES\tTITLE")
	for _, cand := range candidates {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n",
			cand.FinalScore, cand.Market, joinCategories(cand.Categories), cand.Title)
	}
	return w.Flush()
}

func runRescore(input string, maxResults int, jsonOutput bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	stories, err := readStories(input)
	if err != nil {
		return err
	}

	c, err := openCache(cfg)
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	defer c.Close()

	engine := buildEngine(cfg, c)
	ranked, err := engine.Rescore(context.Background(), stories, maxResults)
	if err != nil {
		if errors.Is(err, trend.ErrNoCandidates) {
			fmt.Println("no stories to rank")
			return nil
		}
		return fmt.Errorf("rescore: %w", err)
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(ranked)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "FINAL\tPERSONAL\tTREND\tSTORY")
	for _, r := range ranked {
		fmt.Fprintf(w, "%d\t%d\t%d\t%s\n",
			r.FinalScore, r.PersonalScore, r.TrendScore, r.Name)
	}
	return w.Flush()
}

func readStories(input string) ([]trend.Story, error) {
	var r io.Reader
	if input == "-" || input == "" {
		r = os.Stdin
	} else {
		f, err := os.Open(input)
		if err != nil {
			return nil, fmt.Errorf("open story list: %w", err)
		}
		defer f.Close()
		r = f
	}

	var stories []trend.Story
	if err := json.NewDecoder(r).Decode(&stories); err != nil {
		return nil, fmt.Errorf("decode story list: %w", err)
	}
	return stories, nil
}

func runPick() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	c, err := openCache(cfg)
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	defer c.Close()

	engine := buildEngine(cfg, c)
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	cand, err := engine.Pick(context.Background(), rng)
	if err != nil {
		if errors.Is(err, trend.ErrNoCandidates) {
			fmt.Println("no candidates to pick from")
			return nil
		}
		return fmt.Errorf("pick: %w", err)
	}

	fmt.Printf("%s (score %d, market %s)\n", cand.Title, cand.FinalScore, cand.Market)
	if cand.URL != "" {
		fmt.Println(cand.URL)
	}
	return nil
}

func runRefresh() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	c, err := openCache(cfg)
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	defer c.Close()

	engine := buildEngine(cfg, c)
	if err := engine.ForceRefresh(context.Background()); err != nil {
		return fmt.Errorf("refresh: %w", err)
	}

	fmt.Println("today's discovery cache dropped")
	return nil
}

func runServe(port int) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if port == 0 {
		port = cfg.Server.Port
	}

	c, err := openCache(cfg)
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	defer c.Close()

	engine := buildEngine(cfg, c)
	srv := server.New(engine, nil, port)
	return srv.ListenAndServe()
}

func runDaemon(port int) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if port == 0 {
		port = cfg.Server.Port
	}

	c, err := openCache(cfg)
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	defer c.Close()

	engine := buildEngine(cfg, c)
	notifyMgr := buildNotifyManager(cfg)

	ctx, cancel := ossignal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	sched := scheduler.New(engine, notifyMgr,
		cfg.Schedule.ParsePrewarmInterval(),
		int(cfg.Notify.MinScore),
	)

	// Pre-warm loop in the background.
	go func() {
		if err := sched.Run(ctx); err != nil && ctx.Err() == nil {
			fmt.Fprintf(os.Stderr, "scheduler error: %v\n", err)
		}
	}()

	srv := server.New(engine, nil, port)
	go func() {
		<-ctx.Done()
		fmt.Fprintln(os.Stderr, "\nshutting down...")
	}()

	return srv.ListenAndServe()
}

func joinCategories(cats []classify.Category) string {
	if len(cats) == 0 {
		return "-"
	}
	s := string(cats[0])
	for _, c := range cats[1:] {
		s += "," + string(c)
	}
	return s
}
