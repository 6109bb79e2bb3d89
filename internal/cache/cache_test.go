package cache

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

type fakeClock struct {
	t time.Time
}

func (f *fakeClock) Now() time.Time          { return f.t }
func (f *fakeClock) Advance(d time.Duration) { f.t = f.t.Add(d) }

func openTestCache(t *testing.T, clk *fakeClock) *Cache {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "cache.db"), DefaultTTL, clk.Now)
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestPutGetRoundTrip(t *testing.T) {
	clk := &fakeClock{t: time.Date(2025, 11, 20, 10, 0, 0, 0, time.UTC)}
	c := openTestCache(t, clk)
	ctx := context.Background()

	type payload struct {
		Title string `json:"title"`
		Score int    `json:"score"`
	}

	key := DayKey("trend_long", clk.Now())
	if err := c.Put(ctx, key, []payload{{Title: "a", Score: 90}}); err != nil {
		t.Fatalf("put: %v", err)
	}

	var got []payload
	ok, err := c.Get(ctx, key, &got)
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if len(got) != 1 || got[0].Title != "a" || got[0].Score != 90 {
		t.Fatalf("payload mismatch: %+v", got)
	}
}

func TestGetMissOnUnknownKey(t *testing.T) {
	clk := &fakeClock{t: time.Now()}
	c := openTestCache(t, clk)

	var out map[string]any
	ok, err := c.Get(context.Background(), "nope:2025-01-01", &out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("expected miss for unknown key")
	}
}

func TestLazyExpiry(t *testing.T) {
	clk := &fakeClock{t: time.Date(2025, 11, 20, 10, 0, 0, 0, time.UTC)}
	c := openTestCache(t, clk)
	ctx := context.Background()

	if err := c.Put(ctx, "k", map[string]int{"v": 1}); err != nil {
		t.Fatalf("put: %v", err)
	}

	var out map[string]int
	clk.Advance(DefaultTTL - time.Minute)
	if ok, _ := c.Get(ctx, "k", &out); !ok {
		t.Fatal("entry inside TTL should hit")
	}

	clk.Advance(2 * time.Minute)
	if ok, _ := c.Get(ctx, "k", &out); ok {
		t.Fatal("entry past TTL should be treated as absent")
	}
}

func TestCorruptEntryIsMiss(t *testing.T) {
	clk := &fakeClock{t: time.Now()}
	c := openTestCache(t, clk)
	ctx := context.Background()

	_, err := c.db.ExecContext(ctx,
		"INSERT INTO entries (key, payload, created_at) VALUES (?, ?, ?)",
		"bad", "{not json", clk.Now().UnixMilli())
	if err != nil {
		t.Fatalf("seed corrupt row: %v", err)
	}

	var out map[string]any
	ok, err := c.Get(ctx, "bad", &out)
	if err != nil {
		t.Fatalf("corrupt entry must not be fatal: %v", err)
	}
	if ok {
		t.Fatal("corrupt entry should read as a miss")
	}
}

func TestInvalidate(t *testing.T) {
	clk := &fakeClock{t: time.Now()}
	c := openTestCache(t, clk)
	ctx := context.Background()

	if err := c.Put(ctx, "k", 1); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := c.Invalidate(ctx, "k", "absent"); err != nil {
		t.Fatalf("invalidate: %v", err)
	}

	var out int
	if ok, _ := c.Get(ctx, "k", &out); ok {
		t.Fatal("invalidated key should miss")
	}
}

func TestPutReplacesExisting(t *testing.T) {
	clk := &fakeClock{t: time.Now()}
	c := openTestCache(t, clk)
	ctx := context.Background()

	if err := c.Put(ctx, "k", "old"); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := c.Put(ctx, "k", "new"); err != nil {
		t.Fatalf("replace: %v", err)
	}

	var out string
	ok, err := c.Get(ctx, "k", &out)
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if out != "new" {
		t.Fatalf("expected replacement payload, got %q", out)
	}
}

func TestDayKey(t *testing.T) {
	at := time.Date(2025, 11, 20, 23, 59, 0, 0, time.UTC)
	if got := DayKey("trend_long", at); got != "trend_long:2025-11-20" {
		t.Fatalf("got %q", got)
	}
}
