package watcher_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/marquee/internal/watcher"
)

func startWatcher(t *testing.T, ctx context.Context, dbPath string) (*watcher.Watcher, <-chan struct{}) {
	t.Helper()
	require.NoError(t, os.WriteFile(dbPath, []byte("db"), 0o644))

	w, err := watcher.New(watcher.Config{DBPath: dbPath, Debounce: 50 * time.Millisecond})
	require.NoError(t, err, "failed to create watcher")
	t.Cleanup(func() { _ = w.Stop() })

	onChange, err := w.Start(ctx)
	require.NoError(t, err, "failed to start watcher")
	return w, onChange
}

func TestWatcher_DebounceMultipleWrites(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "marquee.db")
	_, onChange := startWatcher(t, context.Background(), dbPath)

	// Rapid writes should coalesce into single notification
	for i := 0; i < 10; i++ {
		require.NoError(t, os.WriteFile(dbPath, []byte(fmt.Sprintf("test%d", i)), 0o644))
		time.Sleep(10 * time.Millisecond)
	}

	select {
	case <-onChange:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("expected notification but got timeout")
	}

	select {
	case <-onChange:
		t.Fatal("unexpected second notification")
	case <-time.After(150 * time.Millisecond):
	}
}

func TestWatcher_IgnoresIrrelevantFiles(t *testing.T) {
	dir := t.TempDir()
	otherPath := filepath.Join(dir, "other.txt")
	// Pre-create the other file so writes to it are just Write events
	require.NoError(t, os.WriteFile(otherPath, []byte("initial"), 0o644))
	_, onChange := startWatcher(t, context.Background(), filepath.Join(dir, "marquee.db"))

	require.NoError(t, os.WriteFile(otherPath, []byte("other content"), 0o644))

	select {
	case <-onChange:
		t.Fatal("should not notify for unrelated files")
	case <-time.After(150 * time.Millisecond):
	}
}

func TestWatcher_WatchesWALFile(t *testing.T) {
	dir := t.TempDir()
	_, onChange := startWatcher(t, context.Background(), filepath.Join(dir, "marquee.db"))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "marquee.db-wal"), []byte("wal data"), 0o644))

	select {
	case <-onChange:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("expected notification for WAL file write")
	}
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	w, _ := startWatcher(t, context.Background(), filepath.Join(t.TempDir(), "marquee.db"))

	done := make(chan struct{})
	go func() {
		assert.NoError(t, w.Stop())
		assert.NoError(t, w.Stop())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop() timed out - possible deadlock")
	}
}

func TestWatcher_StopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	dbPath := filepath.Join(t.TempDir(), "marquee.db")
	_, onChange := startWatcher(t, ctx, dbPath)

	cancel()
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(dbPath, []byte("after cancel"), 0o644))

	select {
	case <-onChange:
		t.Fatal("no notification after the context is done")
	case <-time.After(150 * time.Millisecond):
	}
}

func TestWatcher_StartMissingDirectory(t *testing.T) {
	w, err := watcher.New(watcher.DefaultConfig(filepath.Join(t.TempDir(), "absent", "marquee.db")))
	require.NoError(t, err)
	defer func() { _ = w.Stop() }()

	_, err = w.Start(context.Background())
	require.Error(t, err)
}

func TestDefaultConfig(t *testing.T) {
	cfg := watcher.DefaultConfig("/data/marquee.db")

	assert.Equal(t, "/data/marquee.db", cfg.DBPath)
	assert.Equal(t, watcher.DefaultDebounce, cfg.Debounce)
}
