// Package db provides a SQLite-backed store.Backend.
//
// The task list lives in the todos table. Each Save copies the previous rows
// into todos_undo in the same transaction, giving the same single-slot undo
// as the file backend. Use Open() to connect and Init() to create the schema.
package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// MaxRetries is the maximum number of retries for transient database errors.
const MaxRetries = 5

// RetryBaseDelay is the base delay for exponential backoff.
const RetryBaseDelay = 50 * time.Millisecond

// SchemaVersion is the current schema version.
// Increment this when adding new migrations.
const SchemaVersion = 2

const todoColumns = `
	id INTEGER PRIMARY KEY,
	text TEXT NOT NULL,
	done INTEGER NOT NULL DEFAULT 0,
	priority INTEGER,
	deadline TEXT,
	tags TEXT NOT NULL DEFAULT '[]',
	project TEXT,
	created_at TEXT NOT NULL,
	completed_at TEXT
`

// baseSchema is the original schema (version 1).
// New tables should be added via migrations, not here.
var baseSchema = `
CREATE TABLE IF NOT EXISTS todos (` + todoColumns + `);
CREATE TABLE IF NOT EXISTS todos_undo (` + todoColumns + `);
CREATE TABLE IF NOT EXISTS meta (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

// migrations defines incremental schema changes.
// Index 0 is migration to version 2, index 1 is migration to version 3, etc.
var migrations = []string{
	// Version 2: index the columns the week/overdue/project views filter on
	`
CREATE INDEX IF NOT EXISTS idx_todos_done ON todos(done);
CREATE INDEX IF NOT EXISTS idx_todos_deadline ON todos(deadline) WHERE deadline IS NOT NULL;
CREATE INDEX IF NOT EXISTS idx_todos_project ON todos(project) WHERE project IS NOT NULL;
`,
}

// DB wraps a SQL database connection with task-specific operations.
type DB struct {
	*sql.DB
	path string
}

// ExecRetry executes a statement with retry logic for transient errors.
func (db *DB) ExecRetry(query string, args ...any) (sql.Result, error) {
	return withRetry(func() (sql.Result, error) {
		return db.Exec(query, args...)
	})
}

// Open opens or creates the database at the given path.
func Open(path string) (*DB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	var sqlDB *sql.DB
	var err error

	err = withRetryNoResult(func() error {
		sqlDB, err = sql.Open("sqlite", path)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}

		// Set busy timeout first so the remaining PRAGMAs wait on locks
		if _, err := sqlDB.Exec("PRAGMA busy_timeout=5000"); err != nil {
			_ = sqlDB.Close()
			return fmt.Errorf("failed to set busy timeout: %w", err)
		}

		if _, err := sqlDB.Exec("PRAGMA journal_mode=WAL"); err != nil {
			_ = sqlDB.Close()
			return fmt.Errorf("failed to enable WAL mode: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &DB{DB: sqlDB, path: path}, nil
}

// isRetryableError checks if an error is a transient SQLite error that can be retried.
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	// SQLITE_BUSY (5), SQLITE_LOCKED (6)
	return strings.Contains(errStr, "database is locked") ||
		strings.Contains(errStr, "SQLITE_BUSY") ||
		strings.Contains(errStr, "SQLITE_LOCKED")
}

// withRetry executes a function with exponential backoff retry on transient errors.
func withRetry[T any](fn func() (T, error)) (T, error) {
	var result T
	var err error
	delay := RetryBaseDelay

	for attempt := 0; attempt < MaxRetries; attempt++ {
		result, err = fn()
		if err == nil || !isRetryableError(err) {
			return result, err
		}

		time.Sleep(delay)
		delay *= 2
		if delay > 2*time.Second {
			delay = 2 * time.Second
		}
	}

	return result, fmt.Errorf("failed after %d retries: %w", MaxRetries, err)
}

// withRetryNoResult executes a function with retry that returns only an error.
func withRetryNoResult(fn func() error) error {
	_, err := withRetry(func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}

// Init creates the schema if needed and runs pending migrations.
// Safe to call on every startup.
func (db *DB) Init() error {
	if _, err := db.ExecRetry(baseSchema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	if err := db.Migrate(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// Migrate runs any pending schema migrations.
// Existing databases holding tasks are backed up before the first migration runs.
func (db *DB) Migrate() error {
	currentVersion, err := db.getSchemaVersion()
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}

	// Version 0 with the todos table present is a v1 database.
	if currentVersion == 0 {
		currentVersion = 1
		if err := db.setSchemaVersion(1); err != nil {
			return fmt.Errorf("failed to set base version: %w", err)
		}
	}

	if currentVersion < SchemaVersion {
		var count int
		if err := db.QueryRow("SELECT COUNT(*) FROM todos").Scan(&count); err != nil {
			return fmt.Errorf("failed to count todos: %w", err)
		}
		if count > 0 {
			if _, err := db.Backup(); err != nil {
				return fmt.Errorf("failed to create pre-migration backup: %w", err)
			}
		}
	}

	for i, migration := range migrations {
		targetVersion := i + 2 // migrations[0] upgrades to v2
		if currentVersion >= targetVersion {
			continue
		}
		if _, err := db.ExecRetry(migration); err != nil {
			return fmt.Errorf("migration to v%d failed: %w", targetVersion, err)
		}
		if err := db.setSchemaVersion(targetVersion); err != nil {
			return fmt.Errorf("failed to update version to %d: %w", targetVersion, err)
		}
		currentVersion = targetVersion
	}

	return nil
}

// getSchemaVersion returns the current schema version using PRAGMA user_version.
func (db *DB) getSchemaVersion() (int, error) {
	var version int
	err := db.QueryRow("PRAGMA user_version").Scan(&version)
	return version, err
}

// setSchemaVersion sets the schema version using PRAGMA user_version.
func (db *DB) setSchemaVersion(version int) error {
	_, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", version))
	return err
}
