package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/zjrosen/marquee/internal/catalog/domain"
	"github.com/zjrosen/marquee/internal/log"
	"github.com/zjrosen/marquee/internal/tracing"
)

const backendName = "sqlite"

// SlotStore implements domain.SlotStore over the slots table. Every write
// stamps the slot with a fresh time-ordered revision.
type SlotStore struct {
	db *DB
}

var _ domain.SlotStore = (*SlotStore)(nil)

func newSlotStore(db *DB) *SlotStore {
	return &SlotStore{db: db}
}

func (s *SlotStore) start(ctx context.Context, op, key string) (context.Context, func(*error, ...attribute.KeyValue)) {
	ctx, span := tracing.Start(ctx, tracing.SpanPrefixSlot+op,
		attribute.String(tracing.AttrSlotKey, key),
		attribute.String(tracing.AttrSlotBackend, backendName),
	)
	return ctx, func(err *error, attrs ...attribute.KeyValue) {
		span.SetAttributes(attrs...)
		tracing.End(span, *err)
	}
}

func (s *SlotStore) available() error {
	if s.db.closed.Load() {
		return domain.ErrStoreUnavailable
	}
	return nil
}

// Get returns the value stored under key.
func (s *SlotStore) Get(ctx context.Context, key string) (value string, found bool, err error) {
	ctx, end := s.start(ctx, "get", key)
	defer func() {
		end(&err, attribute.Bool(tracing.AttrSlotFound, found), attribute.Int(tracing.AttrSlotBytes, len(value)))
	}()

	if err := s.available(); err != nil {
		return "", false, err
	}
	err = s.db.conn.QueryRowContext(ctx, `SELECT value FROM slots WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read slot %q: %w", key, err)
	}
	return value, true, nil
}

// Set replaces the value stored under key.
func (s *SlotStore) Set(ctx context.Context, key, value string) (err error) {
	ctx, end := s.start(ctx, "set", key)
	defer func() { end(&err, attribute.Int(tracing.AttrSlotBytes, len(value))) }()

	if err := s.available(); err != nil {
		return err
	}
	revision, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("failed to generate revision: %w", err)
	}
	_, err = s.db.conn.ExecContext(ctx,
		`INSERT INTO slots (key, value, revision, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, revision = excluded.revision, updated_at = excluded.updated_at`,
		key, value, revision.String(), time.Now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to write slot %q: %w", key, err)
	}
	log.Debug(log.CatDB, "Slot written", "key", key, "revision", revision.String(), "bytes", len(value))
	return nil
}

// Remove deletes the slot under key.
func (s *SlotStore) Remove(ctx context.Context, key string) (err error) {
	ctx, end := s.start(ctx, "remove", key)
	defer func() { end(&err) }()

	if err := s.available(); err != nil {
		return err
	}
	if _, err := s.db.conn.ExecContext(ctx, `DELETE FROM slots WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to remove slot %q: %w", key, err)
	}
	return nil
}

// Revision returns the revision stamped on the last write to key.
func (s *SlotStore) Revision(ctx context.Context, key string) (string, bool, error) {
	if err := s.available(); err != nil {
		return "", false, err
	}
	var revision string
	err := s.db.conn.QueryRowContext(ctx, `SELECT revision FROM slots WHERE key = ?`, key).Scan(&revision)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read revision of slot %q: %w", key, err)
	}
	return revision, true, nil
}

// SlotInfo describes one stored slot without its value.
type SlotInfo struct {
	Key       string
	Bytes     int
	Revision  string
	UpdatedAt time.Time
}

// List returns every stored slot ordered by key.
func (s *SlotStore) List(ctx context.Context) ([]SlotInfo, error) {
	if err := s.available(); err != nil {
		return nil, err
	}
	rows, err := s.db.conn.QueryContext(ctx,
		`SELECT key, length(CAST(value AS BLOB)), revision, updated_at FROM slots ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("failed to list slots: %w", err)
	}
	defer rows.Close()

	var out []SlotInfo
	for rows.Next() {
		var info SlotInfo
		var updatedAt int64
		if err := rows.Scan(&info.Key, &info.Bytes, &info.Revision, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan slot: %w", err)
		}
		info.UpdatedAt = time.UnixMilli(updatedAt)
		out = append(out, info)
	}
	return out, rows.Err()
}

// Close closes the database behind the store.
func (s *SlotStore) Close() error {
	return s.db.Close()
}
