// Package cached wraps a slot store with a read-through cache. Reads are
// served from memory after the first load; writes go to the backend first and
// then refresh the cached entry.
package cached

import (
	"context"
	"io"
	"time"

	"github.com/zjrosen/marquee/internal/cachemanager"
	"github.com/zjrosen/marquee/internal/catalog/domain"
	"github.com/zjrosen/marquee/internal/log"
)

// entry is a cached lookup result. Misses are cached too.
type entry struct {
	Value string
	Found bool
}

// SlotStore is a domain.SlotStore that caches another one.
type SlotStore struct {
	backend domain.SlotStore
	cache   *cachemanager.ReadThroughCache[string, entry, string]
	ttl     time.Duration
}

var _ domain.SlotStore = (*SlotStore)(nil)

// NewSlotStore wraps backend. Entries live for ttl; a non-positive ttl keeps
// them until the next write or removal of the same key.
func NewSlotStore(backend domain.SlotStore, ttl time.Duration) *SlotStore {
	if ttl <= 0 {
		ttl = cachemanager.NoExpiration
	}
	manager := cachemanager.NewInMemoryCacheManager[string, entry](
		"slots", cachemanager.DefaultExpiration, cachemanager.DefaultCleanupInterval)
	s := &SlotStore{backend: backend, ttl: ttl}
	s.cache = cachemanager.NewReadThroughCache[string, entry, string](manager, s.load, false)
	return s
}

func (s *SlotStore) load(ctx context.Context, key string) (entry, error) {
	value, found, err := s.backend.Get(ctx, key)
	if err != nil {
		return entry{}, err
	}
	return entry{Value: value, Found: found}, nil
}

// Get returns the value stored under key, loading it from the backend on a miss.
func (s *SlotStore) Get(ctx context.Context, key string) (string, bool, error) {
	e, err := s.cache.Get(ctx, key, key, s.ttl)
	if err != nil {
		return "", false, err
	}
	return e.Value, e.Found, nil
}

// Set writes through to the backend and caches the new value. A failed write
// evicts the key so the next read consults the backend.
func (s *SlotStore) Set(ctx context.Context, key, value string) error {
	if err := s.backend.Set(ctx, key, value); err != nil {
		if invErr := s.cache.Invalidate(ctx, key); invErr != nil {
			log.ErrorErr(log.CatCache, "Failed to evict slot", invErr, "key", key)
		}
		return err
	}
	s.cache.Put(ctx, key, entry{Value: value, Found: true}, s.ttl)
	return nil
}

// Remove deletes the slot from the backend and the cache.
func (s *SlotStore) Remove(ctx context.Context, key string) error {
	err := s.backend.Remove(ctx, key)
	if invErr := s.cache.Invalidate(ctx, key); invErr != nil {
		log.ErrorErr(log.CatCache, "Failed to evict slot", invErr, "key", key)
	}
	return err
}

// Close closes the backend if it can be closed.
func (s *SlotStore) Close() error {
	if c, ok := s.backend.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
