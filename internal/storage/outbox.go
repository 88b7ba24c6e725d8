package storage

import (
	"fmt"
	"strings"
	"time"
)

// DefaultMaxSize caps the outbox when no size is given.
const DefaultMaxSize = 1000

// Entry is a record waiting in the outbox.
type Entry struct {
	ID             int64
	Kind           string
	RecordJSON     string
	IdempotencyKey string
	CreatedAt      int64 // Unix milliseconds
	RetryCount     int
}

// Outbox is a FIFO queue of records awaiting delivery. At capacity the
// oldest entries are evicted.
type Outbox struct {
	db      *DB
	maxSize int
}

// NewOutbox returns an Outbox on db holding at most maxSize entries.
func NewOutbox(db *DB, maxSize int) *Outbox {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &Outbox{db: db, maxSize: maxSize}
}

// Enqueue appends a record. A duplicate idempotency key is ignored and
// leaves the outbox untouched; otherwise the oldest entries are evicted to
// stay within the maximum size.
func (o *Outbox) Enqueue(kind, recordJSON, idempotencyKey string) error {
	tx, err := o.db.inner.Begin()
	if err != nil {
		return fmt.Errorf("begin enqueue: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRow(`SELECT COUNT(*) FROM outbox WHERE idempotency_key = ?`, idempotencyKey).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check duplicate: %w", err)
	}
	if exists > 0 {
		return nil
	}

	var count int
	if err := tx.QueryRow(`SELECT COUNT(*) FROM outbox`).Scan(&count); err != nil {
		return fmt.Errorf("count records: %w", err)
	}
	if count >= o.maxSize {
		_, err := tx.Exec(
			`DELETE FROM outbox WHERE id IN (
				SELECT id FROM outbox ORDER BY created_at ASC, id ASC LIMIT ?
			)`,
			count-o.maxSize+1,
		)
		if err != nil {
			return fmt.Errorf("evict oldest: %w", err)
		}
	}

	_, err = tx.Exec(
		`INSERT INTO outbox (kind, record_json, idempotency_key, created_at) VALUES (?, ?, ?, ?)`,
		kind, recordJSON, idempotencyKey, time.Now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("insert record: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit enqueue: %w", err)
	}
	return nil
}

// DequeueBatch returns up to n entries, oldest first, without removing them.
func (o *Outbox) DequeueBatch(n int) ([]Entry, error) {
	entries := []Entry{}
	if n <= 0 {
		return entries, nil
	}

	rows, err := o.db.inner.Query(
		`SELECT id, kind, record_json, idempotency_key, created_at, retry_count
		 FROM outbox
		 ORDER BY created_at ASC, id ASC
		 LIMIT ?`,
		n,
	)
	if err != nil {
		return nil, fmt.Errorf("query outbox: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Kind, &e.RecordJSON, &e.IdempotencyKey, &e.CreatedAt, &e.RetryCount); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outbox: %w", err)
	}

	return entries, nil
}

// Delete removes entries by ID after delivery.
func (o *Outbox) Delete(ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}

	query := fmt.Sprintf("DELETE FROM outbox WHERE id IN (%s)", strings.Join(placeholders, ","))
	if _, err := o.db.inner.Exec(query, args...); err != nil {
		return fmt.Errorf("delete records: %w", err)
	}
	return nil
}

// MarkRetry bumps the retry counter of an entry.
func (o *Outbox) MarkRetry(id int64) error {
	result, err := o.db.inner.Exec(
		`UPDATE outbox SET retry_count = retry_count + 1, last_retry_at = ? WHERE id = ?`,
		time.Now().UnixMilli(), id,
	)
	if err != nil {
		return fmt.Errorf("mark retry: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("record %d not found", id)
	}
	return nil
}

// Count returns the number of queued entries.
func (o *Outbox) Count() (int, error) {
	var count int
	if err := o.db.inner.QueryRow("SELECT COUNT(*) FROM outbox").Scan(&count); err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return count, nil
}
