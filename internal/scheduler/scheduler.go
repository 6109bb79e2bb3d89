package scheduler

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/AhmedHasab/eyelhekaya/pkg/notify"
	"github.com/AhmedHasab/eyelhekaya/pkg/trend"
)

// Scheduler periodically pre-warms the daily trend caches so the first API
// call of the day does not pay the full fetch cost, and pushes digests of
// strong candidates to the configured notifiers.
type Scheduler struct {
	engine    *trend.Engine
	notifyMgr *notify.Manager
	interval  time.Duration
	minScore  int
	now       func() time.Time
}

// New creates a scheduler. interval 0 defaults to 6 hours.
func New(engine *trend.Engine, notifyMgr *notify.Manager, interval time.Duration, minScore int) *Scheduler {
	if interval == 0 {
		interval = 6 * time.Hour
	}
	return &Scheduler{
		engine:    engine,
		notifyMgr: notifyMgr,
		interval:  interval,
		minScore:  minScore,
		now:       time.Now,
	}
}

// Run starts the pre-warm loop. Blocks until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// Warm immediately on start.
	fmt.Fprintln(os.Stderr, "scheduler: initial pre-warm...")
	s.prewarm(ctx)

	fmt.Fprintf(os.Stderr, "scheduler: running (pre-warm every %s)\n", s.interval)

	for {
		select {
		case <-ctx.Done():
			fmt.Fprintln(os.Stderr, "scheduler: stopped")
			return ctx.Err()
		case <-ticker.C:
			fmt.Fprintln(os.Stderr, "scheduler: pre-warming...")
			s.prewarm(ctx)
		}
	}
}

func (s *Scheduler) prewarm(ctx context.Context) {
	long, err := s.engine.DiscoverLong(ctx, 0)
	if err != nil {
		fmt.Fprintf(os.Stderr, "  long discovery error: %v\n", err)
	} else {
		fmt.Fprintf(os.Stderr, "  long: %d candidates\n", len(long))
		s.digest(ctx, trend.ActionDiscoverLong, long)
	}

	short, err := s.engine.DiscoverShort(ctx, 0)
	if err != nil {
		fmt.Fprintf(os.Stderr, "  short discovery error: %v\n", err)
	} else {
		fmt.Fprintf(os.Stderr, "  short: %d candidates\n", len(short))
		s.digest(ctx, trend.ActionDiscoverShort, short)
	}
}

func (s *Scheduler) digest(ctx context.Context, action string, candidates []trend.Candidate) {
	if s.notifyMgr == nil || !s.notifyMgr.HasNotifiers() {
		return
	}

	var strong []trend.Candidate
	for _, c := range candidates {
		if c.FinalScore >= s.minScore {
			strong = append(strong, c)
		}
	}
	if len(strong) == 0 {
		return
	}

	d := &notify.Digest{
		Action:     action,
		Day:        s.now().UTC().Format("2006-01-02"),
		Candidates: strong,
	}
	if err := s.notifyMgr.Broadcast(ctx, d); err != nil {
		fmt.Fprintf(os.Stderr, "  notify error for %s: %v\n", action, err)
		return
	}
	fmt.Fprintf(os.Stderr, "  notified: %s (%d candidates)\n", action, len(strong))
}
