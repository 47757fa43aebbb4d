package cachemanager

import (
	"context"
	"sync/atomic"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/zjrosen/sigtrack/internal/log"
)

const DefaultExpiration = 5 * time.Minute
const DefaultCleanupInterval = 10 * time.Minute

// NewInMemoryCacheManager returns a go-cache backed manager. useCase names
// the cache in log output.
func NewInMemoryCacheManager[K ~string, V any](useCase string, defaultExpiration, cleanupInterval time.Duration) *InMemoryCacheManager[K, V] {
	return &InMemoryCacheManager[K, V]{
		useCase: useCase,
		cache:   gocache.New(defaultExpiration, cleanupInterval),
	}
}

// InMemoryCacheManager implements CacheManager on top of go-cache.
type InMemoryCacheManager[K ~string, V any] struct {
	useCase string
	cache   *gocache.Cache
	hits    atomic.Uint64
	misses  atomic.Uint64
}

var _ CacheManager[string, int] = (*InMemoryCacheManager[string, int])(nil)

// Get retrieves an item from the cache by its key.
func (c *InMemoryCacheManager[K, V]) Get(_ context.Context, key K) (V, bool) {
	var zero V

	value, found := c.cache.Get(string(key))
	if !found {
		c.misses.Add(1)
		return zero, false
	}

	v, ok := value.(V)
	if !ok {
		log.Error(log.CatCache, "wrong type in cache", "cache", c.useCase, "key", key)
		c.misses.Add(1)
		return zero, false
	}

	c.hits.Add(1)
	log.Debug(log.CatCache, "cache hit", "cache", c.useCase, "key", key)
	return v, true
}

// GetWithRefresh is Get that also pushes the entry's expiry out to ttl.
func (c *InMemoryCacheManager[K, V]) GetWithRefresh(ctx context.Context, key K, ttl time.Duration) (V, bool) {
	value, found := c.Get(ctx, key)
	if !found {
		return value, false
	}
	c.Set(ctx, key, value, ttl)
	return value, true
}

// Set stores value under key for ttl.
func (c *InMemoryCacheManager[K, V]) Set(_ context.Context, key K, value V, ttl time.Duration) {
	c.cache.Set(string(key), value, ttl)
}

// Delete removes the given keys.
func (c *InMemoryCacheManager[K, V]) Delete(_ context.Context, keys ...K) error {
	for _, key := range keys {
		c.cache.Delete(string(key))
	}
	if len(keys) > 0 {
		log.Debug(log.CatCache, "cache delete", "cache", c.useCase, "keys", len(keys))
	}
	return nil
}

// Flush drops every entry.
func (c *InMemoryCacheManager[K, V]) Flush(_ context.Context) error {
	c.cache.Flush()
	log.Debug(log.CatCache, "cache flush", "cache", c.useCase)
	return nil
}

// Stats reports hit and miss counts since creation.
func (c *InMemoryCacheManager[K, V]) Stats() Stats {
	return Stats{
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
		Items:  c.cache.ItemCount(),
	}
}
