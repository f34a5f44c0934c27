// Package cache persists the generated feed between regenerations. It is
// an explicit, injected object with named invalidation triggers, not
// ambient global state.
package cache

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite" // SQLite driver registration.
)

const timeLayout = time.RFC3339

// Entry is one cached feed generation.
type Entry struct {
	Document     string
	HealthJSON   string
	EpisodeCount int
	GeneratedAt  time.Time
}

// Cache stores the most recent feed generation in SQLite. Entries expire
// after ttl; expired entries read as misses.
type Cache struct {
	db  *sql.DB
	ttl time.Duration
}

// New opens the cache database at path and runs pending migrations.
func New(path string, ttl time.Duration) (*Cache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}

	if err := runMigrations(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Cache{db: db, ttl: ttl}, nil
}

func (c *Cache) Close() error {
	return c.db.Close()
}

// Get returns the cached entry, or nil on a miss (nothing stored, or the
// entry aged past the TTL).
func (c *Cache) Get() (*Entry, error) {
	row := c.db.QueryRow(`
		SELECT document, health, episode_count, generated_at
		FROM feed_cache WHERE id = 1
	`)

	var entry Entry
	var generatedAt string
	err := row.Scan(&entry.Document, &entry.HealthJSON, &entry.EpisodeCount, &generatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cache: %w", err)
	}

	entry.GeneratedAt, err = time.Parse(timeLayout, generatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse cached timestamp: %w", err)
	}

	if c.ttl > 0 && time.Since(entry.GeneratedAt) > c.ttl {
		slog.Debug("Feed cache expired", "generated_at", entry.GeneratedAt)
		return nil, nil
	}

	return &entry, nil
}

// Put stores entry, replacing any previous generation.
func (c *Cache) Put(entry Entry) error {
	if entry.GeneratedAt.IsZero() {
		entry.GeneratedAt = time.Now().UTC()
	}

	_, err := c.db.Exec(`
		INSERT INTO feed_cache (id, document, health, episode_count, generated_at)
		VALUES (1, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			document = excluded.document,
			health = excluded.health,
			episode_count = excluded.episode_count,
			generated_at = excluded.generated_at
	`, entry.Document, entry.HealthJSON, entry.EpisodeCount, entry.GeneratedAt.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("failed to store cache entry: %w", err)
	}

	return nil
}

// Invalidate drops the cached generation so the next read regenerates.
func (c *Cache) Invalidate(reason string) error {
	if _, err := c.db.Exec(`DELETE FROM feed_cache WHERE id = 1`); err != nil {
		return fmt.Errorf("failed to invalidate cache: %w", err)
	}
	slog.Info("Feed cache invalidated", "reason", reason)
	return nil
}

// Named invalidation triggers, one per regeneration-worthy change.

func (c *Cache) InvalidateOnEpisodePublished() error {
	return c.Invalidate("episode published")
}

func (c *Cache) InvalidateOnMetadataUpdated() error {
	return c.Invalidate("metadata updated")
}

func (c *Cache) InvalidateOnTrailerChanged() error {
	return c.Invalidate("trailer published or deleted")
}
