package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/CleverTap/clevertap-unreal-sdk/internal/storage"
)

// SubjectPrefix is the first token of every record subject.
const SubjectPrefix = "clevertap"

// JetStreamPublisher is the subset of jetstream.JetStream the Publisher
// needs.
type JetStreamPublisher interface {
	Publish(ctx context.Context, subject string, data []byte, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error)
}

// Publisher publishes outbox entries to JetStream.
type Publisher struct {
	js      JetStreamPublisher
	logger  *slog.Logger
	timeout time.Duration
}

// NewPublisher creates a new record publisher.
func NewPublisher(js JetStreamPublisher, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{
		js:     js,
		logger: logger.With("component", "publisher"),
	}
}

// recordHeader holds the record fields used for routing.
type recordHeader struct {
	ID        string `json:"id"`
	Kind      string `json:"kind"`
	ProjectID string `json:"project_id"`
}

// Publish publishes one entry. The idempotency key is sent as the
// JetStream message ID so redelivered entries are deduplicated.
func (p *Publisher) Publish(ctx context.Context, entry storage.Entry) error {
	subject, err := Subject(entry)
	if err != nil {
		return err
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	ack, err := p.js.Publish(ctx, subject, []byte(entry.RecordJSON), jetstream.WithMsgID(entry.IdempotencyKey))
	if err != nil {
		return fmt.Errorf("failed to publish record: %w", err)
	}

	p.logger.Debug("record published",
		"record_id", entry.IdempotencyKey,
		"subject", subject,
		"stream", ack.Stream,
		"sequence", ack.Sequence,
		"duplicate", ack.Duplicate,
	)

	return nil
}

// PublishBatch publishes entries in order and returns the outbox IDs of
// those that were accepted. A non-nil error wraps ErrPartialPublish.
func (p *Publisher) PublishBatch(ctx context.Context, entries []storage.Entry) ([]int64, error) {
	published := make([]int64, 0, len(entries))

	for _, entry := range entries {
		if err := p.Publish(ctx, entry); err != nil {
			p.logger.Error("failed to publish record in batch",
				"outbox_id", entry.ID,
				"kind", entry.Kind,
				"error", err,
			)
			continue
		}
		published = append(published, entry.ID)
	}

	if len(published) < len(entries) {
		return published, fmt.Errorf("%w: %d of %d failed", ErrPartialPublish, len(entries)-len(published), len(entries))
	}

	return published, nil
}

// Subject derives the subject for an entry.
// Format: clevertap.{project_id}.{kind}.
func Subject(entry storage.Entry) (string, error) {
	var h recordHeader
	if err := json.Unmarshal([]byte(entry.RecordJSON), &h); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}

	kind := h.Kind
	if kind == "" {
		kind = entry.Kind
	}
	if h.ProjectID == "" || kind == "" {
		return "", fmt.Errorf("%w: project_id and kind are required", ErrInvalidRecord)
	}

	return fmt.Sprintf("%s.%s.%s", SubjectPrefix, sanitizeToken(h.ProjectID), sanitizeToken(kind)), nil
}

// sanitizeToken makes s safe to use as a single subject token.
func sanitizeToken(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '.', '*', '>', ' ', '\t', '\n', '\r':
			return '_'
		}
		return r
	}, s)
}
