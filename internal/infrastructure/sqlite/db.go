// Package sqlite implements the slot store on an embedded SQLite database.
package sqlite

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/zjrosen/marquee/internal/log"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// busyTimeout is how long a connection waits on a locked database.
const busyTimeout = 5000

// DB wraps a SQLite connection pool with migrations applied.
type DB struct {
	conn   *sql.DB
	path   string
	closed atomic.Bool
}

// NewDB opens (creating if needed) the database at path and migrates it to the
// latest schema. When a migration is pending on an existing database, the file
// is checkpointed and copied to path+".bak" first.
func NewDB(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}
	existed := false
	if info, err := os.Stat(path); err == nil && info.Size() > 0 {
		existed = true
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(wal)&_pragma=foreign_keys(1)", path, busyTimeout)
	conn, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := migrateUp(conn, path, existed); err != nil {
		_ = conn.Close()
		return nil, err
	}

	log.Debug(log.CatDB, "Database opened", "path", path)
	return &DB{conn: conn, path: path}, nil
}

// Connection returns the underlying *sql.DB.
func (db *DB) Connection() *sql.DB {
	return db.conn
}

// Path returns the database file path.
func (db *DB) Path() string {
	return db.path
}

// SlotStore returns a slot store backed by this database.
func (db *DB) SlotStore() *SlotStore {
	return newSlotStore(db)
}

// Close closes the connection pool. Slot stores created from db report
// ErrStoreUnavailable afterwards.
func (db *DB) Close() error {
	if db.closed.Swap(true) {
		return nil
	}
	return db.conn.Close()
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// migrateUp runs the embedded migrations through golang-migrate. The
// migrate instance is not closed: its database driver owns conn.
func migrateUp(conn *sql.DB, path string, existed bool) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}
	defer src.Close()

	drv, err := migratesqlite.WithInstance(conn, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", drv)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}

	if existed {
		pending, err := hasPending(drv, src)
		if err != nil {
			return err
		}
		if pending {
			if err := backup(conn, path); err != nil {
				return err
			}
		}
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	if version, _, err := m.Version(); err == nil {
		log.Debug(log.CatDB, "Schema version", "version", version)
	}
	return nil
}

// hasPending reports whether src holds a migration newer than the version
// recorded in the database.
func hasPending(drv database.Driver, src source.Driver) (bool, error) {
	current, dirty, err := drv.Version()
	if err != nil {
		return false, fmt.Errorf("failed to read schema version: %w", err)
	}
	if dirty {
		return true, nil
	}
	if current == database.NilVersion {
		_, err = src.First()
	} else {
		_, err = src.Next(uint(current))
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to list migrations: %w", err)
	}
	return true, nil
}

// backup folds the WAL into the main file and copies it to path+".bak".
func backup(conn *sql.DB, path string) error {
	if _, err := conn.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return fmt.Errorf("failed to checkpoint database: %w", err)
	}
	if err := copyFile(path, path+".bak"); err != nil {
		return fmt.Errorf("failed to back up database: %w", err)
	}
	log.Info(log.CatDB, "Database backed up before migration", "path", path+".bak")
	return nil
}
