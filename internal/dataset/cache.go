package dataset

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Cache owns the canonical table for a single source file. The table behind
// it is immutable; a refresh builds a new Table and swaps the pointer under
// the lock, so concurrent readers always see a complete snapshot.
type Cache struct {
	loader *Loader
	path   string
	logger *slog.Logger

	mu    sync.RWMutex
	table *Table
}

// NewCache creates a cache for the given source file. Nothing is loaded
// until the first Get.
func NewCache(loader *Loader, path string, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{
		loader: loader,
		path:   path,
		logger: logger.With(slog.String("component", "dataset_cache")),
	}
}

// Get returns the cached table, loading it on first use. A load failure is
// not cached: the next Get retries, so fixing the source file heals the
// dashboard without a restart.
func (c *Cache) Get(ctx context.Context) (*Table, error) {
	c.mu.RLock()
	table := c.table
	c.mu.RUnlock()
	if table != nil {
		return table, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.table != nil {
		return c.table, nil
	}

	table, err := c.loader.Load(ctx, c.path)
	if err != nil {
		return nil, err
	}
	c.table = table
	return table, nil
}

// Refresh reloads the table if the source file's fingerprint changed since
// the cached load. It reports whether a new table was installed.
func (c *Cache) Refresh(ctx context.Context) (*Table, bool, error) {
	c.mu.RLock()
	current := c.table
	c.mu.RUnlock()

	if current != nil {
		fp, err := FingerprintOf(c.path)
		if err == nil && fp == current.Fingerprint {
			return current, false, nil
		}
	}

	table, err := c.loader.Load(ctx, c.path)
	if err != nil {
		return nil, false, err
	}

	c.mu.Lock()
	c.table = table
	c.mu.Unlock()

	c.logger.InfoContext(ctx, "dataset reloaded",
		slog.String("source", c.path),
		slog.Int("rows", table.Len()))

	return table, true, nil
}

// Invalidate discards the cached table; the next Get reloads from disk.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.table = nil
	c.mu.Unlock()
}

// Source returns the path the cache loads from.
func (c *Cache) Source() string {
	return c.path
}

// Watch polls the source file until the context is cancelled, refreshing the
// cache when the file changes and invoking onReload with each new table.
// Load failures are logged and retried on the next tick.
func (c *Cache) Watch(ctx context.Context, interval time.Duration, onReload func(*Table)) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			table, changed, err := c.Refresh(ctx)
			if err != nil {
				c.logger.WarnContext(ctx, "dataset refresh failed",
					slog.String("source", c.path),
					slog.String("error", err.Error()))
				continue
			}
			if changed && onReload != nil {
				onReload(table)
			}
		}
	}
}
