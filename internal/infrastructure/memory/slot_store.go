// Package memory implements the slot store in process memory. Slots live as
// long as the process and are lost on exit.
package memory

import (
	"context"
	"sync/atomic"

	"github.com/zjrosen/marquee/internal/cachemanager"
	"github.com/zjrosen/marquee/internal/catalog/domain"
	"github.com/zjrosen/marquee/internal/log"
)

// SlotStore implements domain.SlotStore on a never-expiring in-memory cache.
type SlotStore struct {
	slots  *cachemanager.InMemoryCacheManager[string, string]
	closed atomic.Bool
}

var _ domain.SlotStore = (*SlotStore)(nil)

// NewSlotStore creates an empty store.
func NewSlotStore() *SlotStore {
	return &SlotStore{
		slots: cachemanager.NewInMemoryCacheManager[string, string](
			"memory-slots", cachemanager.NoExpiration, cachemanager.DefaultCleanupInterval),
	}
}

// Get returns the value stored under key.
func (s *SlotStore) Get(ctx context.Context, key string) (string, bool, error) {
	if s.closed.Load() {
		return "", false, domain.ErrStoreUnavailable
	}
	value, found := s.slots.Get(ctx, key)
	return value, found, nil
}

// Set replaces the value stored under key.
func (s *SlotStore) Set(ctx context.Context, key, value string) error {
	if s.closed.Load() {
		return domain.ErrStoreUnavailable
	}
	s.slots.Set(ctx, key, value, cachemanager.NoExpiration)
	log.Debug(log.CatStorage, "Slot written", "backend", "memory", "key", key, "bytes", len(value))
	return nil
}

// Remove deletes the slot under key.
func (s *SlotStore) Remove(ctx context.Context, key string) error {
	if s.closed.Load() {
		return domain.ErrStoreUnavailable
	}
	return s.slots.Delete(ctx, key)
}

// Len returns the number of stored slots.
func (s *SlotStore) Len() int {
	return s.slots.Len()
}

// Close discards every slot. The store is unusable afterwards.
func (s *SlotStore) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	return s.slots.Flush(context.Background())
}
