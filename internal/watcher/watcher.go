// Package watcher notifies when the catalog database file changes on disk,
// so a long-running listing can reload after another process writes.
package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/zjrosen/marquee/internal/log"
)

// DefaultDebounce coalesces the burst of writes a single save produces.
const DefaultDebounce = 250 * time.Millisecond

// Config holds watcher configuration options.
type Config struct {
	// DBPath is the SQLite database file. Its -wal and -journal siblings
	// are watched as well.
	DBPath   string
	Debounce time.Duration
}

// DefaultConfig returns sensible defaults for the watcher.
func DefaultConfig(dbPath string) Config {
	return Config{DBPath: dbPath, Debounce: DefaultDebounce}
}

// Watcher monitors one database file and signals after writes settle.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	names     map[string]bool
	dir       string
	debounce  time.Duration
	onChange  chan struct{}
	done      chan struct{}
	stopOnce  sync.Once
}

// New creates a watcher for cfg.DBPath. Nothing is watched until Start.
func New(cfg Config) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}
	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	base := filepath.Base(cfg.DBPath)
	return &Watcher{
		fsWatcher: fsw,
		names:     map[string]bool{base: true, base + "-wal": true, base + "-journal": true},
		dir:       filepath.Dir(cfg.DBPath),
		debounce:  debounce,
		onChange:  make(chan struct{}, 1),
		done:      make(chan struct{}),
	}, nil
}

// Start watches the database directory until ctx is done or Stop is called.
// The returned channel holds at most one pending notification.
func (w *Watcher) Start(ctx context.Context) (<-chan struct{}, error) {
	// Watch the directory: SQLite creates and removes the WAL file.
	if err := w.fsWatcher.Add(w.dir); err != nil {
		return nil, fmt.Errorf("watching directory %s: %w", w.dir, err)
	}
	log.Debug(log.CatDB, "Watching database", "dir", w.dir, "debounce", w.debounce)

	go func() {
		select {
		case <-ctx.Done():
			_ = w.Stop()
		case <-w.done:
		}
	}()
	go w.loop()
	return w.onChange, nil
}

// Stop terminates the watcher and releases resources. It is safe to call
// more than once.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.done)
		err = w.fsWatcher.Close()
	})
	return err
}

func (w *Watcher) loop() {
	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if w.relevant(event) {
				timer.Reset(w.debounce)
			}

		case <-timer.C:
			select {
			case w.onChange <- struct{}{}:
			default: // a notification is already pending
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			log.ErrorErr(log.CatDB, "Database watch error", err, "dir", w.dir)

		case <-w.done:
			return
		}
	}
}

// relevant reports whether event is a write to the database or its WAL.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	// Create counts because the WAL file may be created fresh.
	if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return false
	}
	return w.names[filepath.Base(event.Name)]
}
