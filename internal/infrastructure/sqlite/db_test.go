package sqlite

import (
	"database/sql"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/marquee/internal/catalog/domain"
)

// TestNewDB_CreatesDirectory verifies that NewDB creates the parent directory if missing.
func TestNewDB_CreatesDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "subdir", "nested", "test.db")

	db, err := NewDB(dbPath)
	require.NoError(t, err, "NewDB should succeed even with nested non-existent directories")
	defer db.Close()

	info, err := os.Stat(filepath.Dir(dbPath))
	require.NoError(t, err, "Directory should exist after NewDB")
	require.True(t, info.IsDir(), "Should be a directory")

	// Windows doesn't support Unix permissions
	if runtime.GOOS != "windows" {
		require.Equal(t, os.FileMode(0700), info.Mode().Perm(), "Directory should have 0700 permissions")
	}
}

// TestNewDB_CreatesDatabaseFile verifies that NewDB creates the database file on first run.
func TestNewDB_CreatesDatabaseFile(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := NewDB(dbPath)
	require.NoError(t, err, "NewDB should succeed")
	defer db.Close()

	info, err := os.Stat(dbPath)
	require.NoError(t, err, "Database file should exist after NewDB")
	require.False(t, info.IsDir(), "Should be a file, not a directory")
	require.Equal(t, dbPath, db.Path())
}

// TestNewDB_RunsMigrations verifies that NewDB creates the slots table and
// that golang-migrate records a clean version.
func TestNewDB_RunsMigrations(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := NewDB(dbPath)
	require.NoError(t, err, "NewDB should succeed")
	defer db.Close()

	var tableName string
	err = db.conn.QueryRow(
		"SELECT name FROM sqlite_master WHERE type='table' AND name='slots'",
	).Scan(&tableName)
	require.NoError(t, err, "slots table should exist after migrations")
	require.Equal(t, "slots", tableName)

	var version int
	var dirty bool
	require.NoError(t, db.conn.QueryRow("SELECT version, dirty FROM schema_migrations").Scan(&version, &dirty))
	require.Equal(t, 1, version)
	require.False(t, dirty)
}

// TestNewDB_MigrationsAreIdempotent verifies that reopening does not reapply migrations.
func TestNewDB_MigrationsAreIdempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db1, err := NewDB(dbPath)
	require.NoError(t, err)
	require.NoError(t, db1.Close())

	db2, err := NewDB(dbPath)
	require.NoError(t, err)
	defer db2.Close()

	var applied int
	require.NoError(t, db2.conn.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&applied))
	require.Equal(t, 1, applied)
}

// TestNewDB_PreMigrationBackup verifies that a .bak file is created when an
// existing database still has migrations to apply.
func TestNewDB_PreMigrationBackup(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	legacy, err := sql.Open("sqlite3", "file:"+dbPath+"?_pragma=journal_mode(wal)")
	require.NoError(t, err)
	_, err = legacy.Exec("CREATE TABLE legacy (id INTEGER PRIMARY KEY)")
	require.NoError(t, err)
	_, err = legacy.Exec("INSERT INTO legacy (id) VALUES (1)")
	require.NoError(t, err)
	require.NoError(t, legacy.Close())

	db, err := NewDB(dbPath)
	require.NoError(t, err, "NewDB should migrate the unversioned database")
	defer db.Close()

	info, err := os.Stat(dbPath + ".bak")
	require.NoError(t, err, "Backup file should exist before the first migration")
	require.Greater(t, info.Size(), int64(0), "Backup file should have content")

	bak, err := sql.Open("sqlite3", "file:"+dbPath+".bak?mode=ro")
	require.NoError(t, err)
	defer bak.Close()
	var rows int
	require.NoError(t, bak.QueryRow("SELECT COUNT(*) FROM legacy").Scan(&rows))
	require.Equal(t, 1, rows, "backup holds the checkpointed rows")
}

// TestNewDB_NoBackupWhenCurrent verifies that opening an up-to-date database
// does not copy it.
func TestNewDB_NoBackupWhenCurrent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db1, err := NewDB(dbPath)
	require.NoError(t, err, "First NewDB should succeed")
	_, err = db1.conn.Exec(
		"INSERT INTO slots (key, value, revision, updated_at) VALUES (?, ?, ?, ?)",
		"movies", "{}", "rev", 1000,
	)
	require.NoError(t, err, "Should be able to insert test data")
	require.NoError(t, db1.Close())

	db2, err := NewDB(dbPath)
	require.NoError(t, err, "Second NewDB should succeed")
	defer db2.Close()

	_, err = os.Stat(dbPath + ".bak")
	require.True(t, os.IsNotExist(err), "no migration pending, nothing to back up")
}

// TestNewDB_Pragmas verifies the connection pragmas.
func TestNewDB_Pragmas(t *testing.T) {
	db, err := NewDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err, "NewDB should succeed")
	defer db.Close()

	var journalMode string
	require.NoError(t, db.conn.QueryRow("PRAGMA journal_mode").Scan(&journalMode))
	require.Equal(t, "wal", journalMode, "Journal mode should be WAL")

	var foreignKeys int
	require.NoError(t, db.conn.QueryRow("PRAGMA foreign_keys").Scan(&foreignKeys))
	require.Equal(t, 1, foreignKeys, "Foreign keys should be enabled (1)")

	var timeout int
	require.NoError(t, db.conn.QueryRow("PRAGMA busy_timeout").Scan(&timeout))
	require.Equal(t, busyTimeout, timeout, "Busy timeout should be 5000ms")
}

// TestDB_Close verifies that the connection closes cleanly and only once.
func TestDB_Close(t *testing.T) {
	db, err := NewDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err, "NewDB should succeed")

	require.NoError(t, db.Close(), "Close should succeed")
	require.NoError(t, db.Close(), "second Close is a no-op")

	err = db.conn.Ping()
	require.Error(t, err, "Ping should fail after Close")
}

// TestDB_SlotStore verifies that SlotStore satisfies the domain interface.
func TestDB_SlotStore(t *testing.T) {
	db, err := NewDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err, "NewDB should succeed")
	defer db.Close()

	store := db.SlotStore()
	require.NotNil(t, store, "SlotStore should not return nil")

	var _ domain.SlotStore = store
}

// TestDB_Connection verifies that Connection returns the underlying *sql.DB.
func TestDB_Connection(t *testing.T) {
	db, err := NewDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err, "NewDB should succeed")
	defer db.Close()

	conn := db.Connection()
	require.NotNil(t, conn, "Connection should not return nil")
	require.IsType(t, (*sql.DB)(nil), conn, "Connection should return *sql.DB")
	require.NoError(t, conn.Ping(), "Connection should be pingable")
}

// TestNewDB_MultipleCalls verifies that opening the same database twice is safe.
func TestNewDB_MultipleCalls(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db1, err := NewDB(dbPath)
	require.NoError(t, err, "First NewDB should succeed")
	defer db1.Close()

	db2, err := NewDB(dbPath)
	require.NoError(t, err, "Second NewDB should succeed (WAL mode allows concurrent access)")
	defer db2.Close()

	var count1, count2 int
	require.NoError(t, db1.conn.QueryRow("SELECT COUNT(*) FROM slots").Scan(&count1))
	require.NoError(t, db2.conn.QueryRow("SELECT COUNT(*) FROM slots").Scan(&count2))
}

// TestNewDB_InvalidPath verifies that NewDB returns an error when the parent
// directory cannot be created.
func TestNewDB_InvalidPath(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0600))

	_, err := NewDB(filepath.Join(blocker, "test.db"))
	require.Error(t, err, "NewDB should fail when a file sits where the directory should be")
}
