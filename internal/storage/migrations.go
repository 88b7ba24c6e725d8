package storage

import (
	"database/sql"
	"fmt"
)

// schema holds one DDL script per version; schema[i] moves the database to
// version i+1. The version lives in PRAGMA user_version so a fresh file needs
// no bookkeeping table. Scripts are append-only.
var schema = []string{
	// 1: records waiting for delivery
	`CREATE TABLE outbox (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		kind TEXT NOT NULL,
		record_json TEXT NOT NULL,
		idempotency_key TEXT NOT NULL UNIQUE,
		created_at INTEGER NOT NULL,
		retry_count INTEGER NOT NULL DEFAULT 0,
		last_retry_at INTEGER NOT NULL DEFAULT 0
	);
	CREATE INDEX idx_outbox_created ON outbox(created_at, id);`,

	// 2: persisted identifiers such as the generated CleverTap ID
	`CREATE TABLE kv (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);`,

	// 3: records that exhausted their retries
	`CREATE TABLE dead_letter (
		id INTEGER PRIMARY KEY,
		kind TEXT NOT NULL,
		record_json TEXT NOT NULL,
		idempotency_key TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		retry_count INTEGER NOT NULL,
		dead_at INTEGER NOT NULL
	);`,
}

func userVersion(q interface {
	QueryRow(query string, args ...any) *sql.Row
}) (int, error) {
	var v int
	if err := q.QueryRow("PRAGMA user_version").Scan(&v); err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return v, nil
}

// migrate brings db up to len(schema). Each step runs in its own
// transaction together with the version bump.
func migrate(db *sql.DB) error {
	current, err := userVersion(db)
	if err != nil {
		return err
	}
	if current > len(schema) {
		return fmt.Errorf("schema version %d is newer than this build (%d)", current, len(schema))
	}

	for v := current + 1; v <= len(schema); v++ {
		if err := applyVersion(db, v); err != nil {
			return err
		}
	}
	return nil
}

func applyVersion(db *sql.DB, v int) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("schema v%d: %w", v, err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(schema[v-1]); err != nil {
		return fmt.Errorf("schema v%d: %w", v, err)
	}
	// PRAGMA does not take bind parameters.
	if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", v)); err != nil {
		return fmt.Errorf("schema v%d: set version: %w", v, err)
	}
	return tx.Commit()
}

// SchemaVersion returns the applied schema version.
func (db *DB) SchemaVersion() (int, error) {
	return userVersion(db.inner)
}
