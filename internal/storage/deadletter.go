package storage

import (
	"fmt"
	"strings"
	"time"
)

// DeadLetter moves entries out of the outbox into the dead_letter table.
// They are kept for inspection and never delivered.
func (o *Outbox) DeadLetter(ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	placeholders := make([]string, len(ids))
	args := make([]any, 0, len(ids)+1)
	args = append(args, time.Now().UnixMilli())
	for i, id := range ids {
		placeholders[i] = "?"
		args = append(args, id)
	}
	in := strings.Join(placeholders, ",")

	tx, err := o.db.inner.Begin()
	if err != nil {
		return fmt.Errorf("begin dead letter: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(fmt.Sprintf(
		`INSERT OR REPLACE INTO dead_letter (id, kind, record_json, idempotency_key, created_at, retry_count, dead_at)
		 SELECT id, kind, record_json, idempotency_key, created_at, retry_count, ? FROM outbox WHERE id IN (%s)`, in),
		args...,
	); err != nil {
		return fmt.Errorf("copy dead letters: %w", err)
	}

	if _, err := tx.Exec(fmt.Sprintf("DELETE FROM outbox WHERE id IN (%s)", in), args[1:]...); err != nil {
		return fmt.Errorf("delete dead letters: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit dead letter: %w", err)
	}
	return nil
}

// DeadLetterCount returns the number of dead-lettered entries.
func (o *Outbox) DeadLetterCount() (int, error) {
	var count int
	if err := o.db.inner.QueryRow("SELECT COUNT(*) FROM dead_letter").Scan(&count); err != nil {
		return 0, fmt.Errorf("count dead letters: %w", err)
	}
	return count, nil
}
