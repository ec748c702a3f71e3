package resolver

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/sonroyaalmerol/hibiki/internal/media"
	"github.com/sonroyaalmerol/hibiki/internal/repository"
)

// Cache maps track identities to resolved playable identifiers. All entries
// live in memory; only provider-confirmed (non-fallback) entries are written
// through to sqlite, so fallback resolutions never survive a restart.
type Cache struct {
	mu      sync.Mutex
	entries map[string]media.CacheEntry
	repo    *repository.Repo
	ttl     time.Duration
	now     func() time.Time
}

func NewCache(repo *repository.Repo, ttl time.Duration) *Cache {
	return &Cache{
		entries: make(map[string]media.CacheEntry),
		repo:    repo,
		ttl:     ttl,
		now:     time.Now,
	}
}

// Warm loads durable entries from the repository, dropping expired rows.
func (c *Cache) Warm(ctx context.Context) error {
	if c.repo == nil {
		return nil
	}
	cutoff := c.now().Add(-c.ttl)
	if _, err := c.repo.CachePrune(ctx, cutoff); err != nil {
		return err
	}
	all, err := c.repo.CacheAll(ctx)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range all {
		c.entries[e.Identity] = e
	}
	return nil
}

func (c *Cache) Get(identity string) (media.CacheEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[identity]
	if !ok {
		return media.CacheEntry{}, false
	}
	if c.now().Sub(e.ResolvedAt) > c.ttl {
		delete(c.entries, identity)
		return media.CacheEntry{}, false
	}
	return e, true
}

func (c *Cache) Put(ctx context.Context, e media.CacheEntry) {
	if e.ResolvedAt.IsZero() {
		e.ResolvedAt = c.now()
	}
	c.mu.Lock()
	c.entries[e.Identity] = e
	c.mu.Unlock()

	if e.IsFallback || c.repo == nil {
		return
	}
	if err := c.repo.CachePut(ctx, e); err != nil {
		slog.Warn("failed to persist resolution", "identity", e.Identity, "err", err)
	}
}
