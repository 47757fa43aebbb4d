// Package cachemanager holds short-lived in-memory caches for query results.
package cachemanager

import (
	"context"
	"time"
)

// CacheManager is a typed key/value cache with per-entry TTLs.
type CacheManager[K ~string, V any] interface {
	Get(ctx context.Context, key K) (V, bool)
	GetWithRefresh(ctx context.Context, key K, ttl time.Duration) (V, bool)
	Set(ctx context.Context, key K, value V, ttl time.Duration)
	Delete(ctx context.Context, keys ...K) error
	Flush(ctx context.Context) error
}

// Stats counts lookups against a cache.
type Stats struct {
	Hits   uint64
	Misses uint64
	Items  int
}
