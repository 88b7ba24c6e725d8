// Package storage provides the SQLite outbox used by the queued platform.
//
// It uses modernc.org/sqlite (pure Go, no CGO) so it cross-compiles with
// gomobile. The database runs in WAL mode and migrates itself on open.
package storage

import (
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

// ErrEmptyPath is returned when no database path is given.
var ErrEmptyPath = errors.New("database path must not be empty")

// DB wraps a SQLite connection.
type DB struct {
	inner *sql.DB
	path  string
}

// Open opens (or creates) the database at path and applies migrations.
func Open(path string) (*DB, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}

	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"

	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := migrate(sqlDB); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &DB{inner: sqlDB, path: path}, nil
}

// Path returns the database file path.
func (db *DB) Path() string {
	return db.path
}

// Close closes the database connection.
func (db *DB) Close() error {
	if db.inner == nil {
		return nil
	}
	return db.inner.Close()
}
