// Package cache is a day-scoped result cache backed by SQLite. Entries expire
// lazily: an entry older than the TTL is treated as absent on read and is
// never proactively purged. Writes are idempotent replacements, so a race
// between two concurrent misses costs a duplicate upstream fetch at worst.
package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/AhmedHasab/eyelhekaya/internal/metrics"
)

// DefaultTTL keeps results stable within a day.
const DefaultTTL = 24 * time.Hour

// Clock supplies the current time. Injectable for deterministic expiry tests.
type Clock func() time.Time

// Entry is the stored record shape: payload JSON plus an epoch-ms timestamp.
type Entry struct {
	Key       string `db:"key"`
	Payload   string `db:"payload"`
	CreatedAt int64  `db:"created_at"`
}

// Cache stores aggregation and per-title results keyed by action or
// normalized title plus calendar day.
type Cache struct {
	db  *sqlx.DB
	ttl time.Duration
	now Clock
}

// Open opens (or creates) the cache database at path. ttl of zero means
// DefaultTTL; now of nil means time.Now.
func Open(path string, ttl time.Duration, now Clock) (*Cache, error) {
	db, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	if ttl == 0 {
		ttl = DefaultTTL
	}
	if now == nil {
		now = time.Now
	}
	return &Cache{db: db, ttl: ttl, now: now}, nil
}

func (c *Cache) Close() error {
	return c.db.Close()
}

// Get loads the entry for key into out. It returns false on a true miss, an
// expired entry, or an unparsable payload; none of those are errors. Only
// database failures are.
func (c *Cache) Get(ctx context.Context, key string, out any) (bool, error) {
	var e Entry
	err := c.db.GetContext(ctx, &e, "SELECT key, payload, created_at FROM entries WHERE key = ?", key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			metrics.CacheMisses.Inc()
			return false, nil
		}
		return false, fmt.Errorf("get entry %s: %w", key, err)
	}

	age := c.now().UTC().Sub(time.UnixMilli(e.CreatedAt))
	if age >= c.ttl {
		metrics.CacheMisses.Inc()
		return false, nil
	}

	if err := json.Unmarshal([]byte(e.Payload), out); err != nil {
		// A corrupt entry is a miss, never fatal.
		metrics.CacheMisses.Inc()
		return false, nil
	}

	metrics.CacheHits.Inc()
	return true, nil
}

// Put writes (or replaces) the entry for key, stamped with the current time.
func (c *Cache) Put(ctx context.Context, key string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal entry %s: %w", key, err)
	}

	_, err = c.db.ExecContext(ctx, `
		INSERT INTO entries (key, payload, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			payload = excluded.payload,
			created_at = excluded.created_at
	`, key, string(payload), c.now().UTC().UnixMilli())
	if err != nil {
		return fmt.Errorf("put entry %s: %w", key, err)
	}
	return nil
}

// Invalidate removes the given keys. Missing keys are not an error.
func (c *Cache) Invalidate(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		if _, err := c.db.ExecContext(ctx, "DELETE FROM entries WHERE key = ?", key); err != nil {
			return fmt.Errorf("invalidate %s: %w", key, err)
		}
	}
	return nil
}

// DayKey builds a day-scoped key: "<name>:YYYY-MM-DD".
func DayKey(name string, t time.Time) string {
	return name + ":" + t.UTC().Format("2006-01-02")
}
