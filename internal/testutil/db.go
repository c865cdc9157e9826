// Package testutil provides test utilities for slot store setup.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/marquee/internal/infrastructure/memory"
	"github.com/zjrosen/marquee/internal/infrastructure/sqlite"
)

// NewTestStore opens a migrated SQLite slot store in a temp directory.
// The database is closed when the test ends.
func NewTestStore(t *testing.T) *sqlite.SlotStore {
	t.Helper()
	db, err := sqlite.NewDB(filepath.Join(t.TempDir(), "marquee.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db.SlotStore()
}

// NewMemoryStore returns an empty in-memory slot store.
func NewMemoryStore(t *testing.T) *memory.SlotStore {
	t.Helper()
	store := memory.NewSlotStore()
	t.Cleanup(func() { _ = store.Close() })
	return store
}
