// Package cachemanager provides generic, TTL-based caches used by the slot
// store backends: a go-cache backed in-memory manager and a read-through
// wrapper that fills the cache from a loader function.
package cachemanager

import (
	"context"
	"time"
)

// NoExpiration keeps an entry until it is deleted or the cache is flushed.
const NoExpiration time.Duration = -1

type CacheManager[K comparable, V any] interface {
	Get(ctx context.Context, key K) (V, bool)
	GetMultiple(ctx context.Context, keys []K) (map[K]V, bool)
	GetWithRefresh(ctx context.Context, key K, ttl time.Duration) (V, bool)
	Set(ctx context.Context, key K, value V, ttl time.Duration)
	Delete(ctx context.Context, keys ...K) error
	Flush(ctx context.Context) error
}
