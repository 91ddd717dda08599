// Package cache provides the refresh-if-stale caches used for indicator
// snapshots and market sentiment.
package cache

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"SignalSentinel/internal/logger"
)

// Entry is a cached value with the time it was produced.
type Entry[V any] struct {
	Value    V         `json:"value"`
	StoredAt time.Time `json:"stored_at"`
}

// Backend stores entries by key. Freshness is decided by Cache, not the backend.
type Backend[V any] interface {
	Load(ctx context.Context, key string) (Entry[V], bool, error)
	Store(ctx context.Context, key string, e Entry[V], ttl time.Duration) error
}

// Cache is a TTL cache with per-key timestamps and "refresh if stale or
// forced" semantics. Refreshes are serialised.
type Cache[V any] struct {
	mu      sync.Mutex
	backend Backend[V]
	ttl     time.Duration
	log     logger.Logger
	now     func() time.Time
}

// New returns a cache over backend with the given time-to-live.
func New[V any](backend Backend[V], ttl time.Duration, log logger.Logger) *Cache[V] {
	return &Cache[V]{backend: backend, ttl: ttl, log: log, now: time.Now}
}

// TTL returns the configured time-to-live.
func (c *Cache[V]) TTL() time.Duration { return c.ttl }

// Get returns the value under key if it is still fresh.
func (c *Cache[V]) Get(ctx context.Context, key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fresh(ctx, key)
}

func (c *Cache[V]) fresh(ctx context.Context, key string) (V, bool) {
	var zero V
	e, ok, err := c.backend.Load(ctx, key)
	if err != nil {
		c.log.Warn("cache_load_failed", zap.String("key", key), zap.Error(err))
		return zero, false
	}
	if !ok || c.now().Sub(e.StoredAt) >= c.ttl {
		return zero, false
	}
	return e.Value, true
}

// Refresh returns the cached value for key unless it is stale or force is
// set, in which case fn produces a new one. A failed fn leaves the cache
// untouched and returns its error; stale values are never served.
func (c *Cache[V]) Refresh(ctx context.Context, key string, force bool, fn func(ctx context.Context) (V, error)) (V, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !force {
		if v, ok := c.fresh(ctx, key); ok {
			return v, nil
		}
	}
	v, err := fn(ctx)
	if err != nil {
		var zero V
		return zero, err
	}
	if err := c.backend.Store(ctx, key, Entry[V]{Value: v, StoredAt: c.now()}, c.ttl); err != nil {
		c.log.Warn("cache_store_failed", zap.String("key", key), zap.Error(err))
	}
	return v, nil
}
