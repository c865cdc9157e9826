package domain

import (
	"context"
	"errors"
)

// ErrStoreUnavailable is returned by a SlotStore whose backend is closed or unreachable.
var ErrStoreUnavailable = errors.New("slot store unavailable")

// Container answers whether an entity with the given id is currently registered.
// Validators take a Container instead of reaching for a global registry.
type Container interface {
	Contains(id int) bool
}

// ContainerFunc adapts a plain function to Container.
type ContainerFunc func(id int) bool

// Contains implements Container.
func (f ContainerFunc) Contains(id int) bool {
	return f(id)
}

// SlotStore is the string-keyed storage substrate the registries persist to.
// Each registry owns exactly one slot and writes its whole collection to it.
// Implementations may use SQLite, an in-memory cache, or other backends.
type SlotStore interface {
	// Get returns the value stored under key. found is false when the slot
	// has never been written or was removed.
	Get(ctx context.Context, key string) (value string, found bool, err error)

	// Set replaces the value stored under key.
	Set(ctx context.Context, key, value string) error

	// Remove deletes the slot. Removing a missing slot is not an error.
	Remove(ctx context.Context, key string) error
}
