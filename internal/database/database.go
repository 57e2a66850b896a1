package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite3 driver

	"video-tagger/internal/logging"
	"video-tagger/internal/metrics"
)

// Default timeout for database operations
const defaultTimeout = 5 * time.Second

var (
	// ErrNotFound is returned when a file id has no row.
	ErrNotFound = errors.New("file not found")

	// ErrPathExists signals that AddFile was called for a path that is
	// already tracked. It is an expected outcome, not a failure: callers
	// check for it with errors.Is and move on.
	ErrPathExists = errors.New("path already tracked")
)

// Database manages all durable state for the video tagger.
type Database struct {
	db     *sql.DB
	dbPath string
	mu     sync.RWMutex

	// Settings cache. Loaded lazily on first access and authoritative
	// afterwards; writes go to cache and store together.
	settingsMu     sync.Mutex
	settings       map[string]string
	settingsLoaded bool
}

// New opens (creating if needed) the database at dbPath and ensures the
// schema exists. dbPath must be the full path to the database file and its
// parent directory must be writable.
func New(ctx context.Context, dbPath string) (*Database, error) {
	logging.Info("Database path: %s", dbPath)

	// WAL keeps readers unblocked during writes; busy_timeout papers over
	// short lock contention instead of surfacing "database is locked".
	connStr := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000&_foreign_keys=on", dbPath)

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("failed to close database after ping failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	d := &Database{
		db:       db,
		dbPath:   dbPath,
		settings: make(map[string]string),
	}

	if err := d.initialize(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("failed to close database after initialization failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to initialize database schema: %w", err)
	}

	logging.Info("Database initialized successfully at %s", dbPath)
	return d, nil
}

func (d *Database) initialize(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS files (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		path TEXT NOT NULL UNIQUE,
		size INTEGER NOT NULL,
		date_modified INTEGER NOT NULL,
		duration REAL,
		rating INTEGER
	);

	CREATE TABLE IF NOT EXISTS tags (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE
	);

	CREATE TABLE IF NOT EXISTS file_has_tag (
		file_id INTEGER NOT NULL REFERENCES files(id),
		tag_id INTEGER NOT NULL REFERENCES tags(id),
		UNIQUE(file_id, tag_id)
	);

	CREATE INDEX IF NOT EXISTS idx_file_has_tag_file ON file_has_tag(file_id);
	CREATE INDEX IF NOT EXISTS idx_file_has_tag_tag ON file_has_tag(tag_id);

	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT
	);
	`

	_, err := d.db.ExecContext(ctx, schema)
	return err
}

// Close closes the database connection.
func (d *Database) Close() error {
	return d.db.Close()
}

// OpenConnections reports the current size of the connection pool.
func (d *Database) OpenConnections() int {
	return d.db.Stats().OpenConnections
}

// observeQuery starts a query timer. The returned func records outcome
// metrics and must be called exactly once regardless of the result.
func observeQuery(operation string) func(error) {
	start := time.Now()
	return func(err error) {
		duration := time.Since(start).Seconds()
		status := "success"
		if err != nil {
			status = "error"
		}
		metrics.DBQueryTotal.WithLabelValues(operation, status).Inc()
		metrics.DBQueryDuration.WithLabelValues(operation).Observe(duration)
	}
}

// rollback rolls a transaction back, logging a failure instead of masking
// the original error.
func rollback(tx *sql.Tx) {
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		logging.Error("rollback failed: %v", err)
	}
}
