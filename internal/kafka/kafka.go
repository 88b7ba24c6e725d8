// Package kafka publishes outbox records to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/CleverTap/clevertap-unreal-sdk/internal/storage"
)

// ErrInvalidRecord is returned for entries whose record JSON cannot be read.
var ErrInvalidRecord = errors.New("invalid record")

// Config holds Kafka producer configuration.
type Config struct {
	// Brokers are the bootstrap broker addresses
	Brokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092"`

	// Topic receives every record
	Topic string `env:"KAFKA_TOPIC" envDefault:"clevertap.records"`

	// BatchTimeout bounds how long the writer waits to fill a batch
	BatchTimeout time.Duration `env:"KAFKA_BATCH_TIMEOUT" envDefault:"50ms"`

	// RequiredAcks is -1 (all), 0 (none) or 1 (leader)
	RequiredAcks int `env:"KAFKA_REQUIRED_ACKS" envDefault:"-1"`
}

// NewWriter returns a synchronous writer for cfg. Records are keyed by
// CleverTap ID so a user's records stay ordered within a partition.
func NewWriter(cfg Config) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		BatchTimeout:           cfg.BatchTimeout,
		RequiredAcks:           kafka.RequiredAcks(cfg.RequiredAcks),
		AllowAutoTopicCreation: true,
	}
}

// MessageWriter is the subset of *kafka.Writer the Publisher needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher writes outbox entries to Kafka.
type Publisher struct {
	w      MessageWriter
	logger *slog.Logger
}

// NewPublisher creates a Publisher on w.
func NewPublisher(w MessageWriter, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{w: w, logger: logger.With("component", "kafka-publisher")}
}

type recordHeader struct {
	Kind        string `json:"kind"`
	ProjectID   string `json:"project_id"`
	CleverTapID string `json:"clevertap_id"`
}

// Message converts an entry into a Kafka message.
func Message(entry storage.Entry) (kafka.Message, error) {
	var h recordHeader
	if err := json.Unmarshal([]byte(entry.RecordJSON), &h); err != nil {
		return kafka.Message{}, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	if h.Kind == "" {
		h.Kind = entry.Kind
	}

	return kafka.Message{
		Key:   []byte(h.CleverTapID),
		Value: []byte(entry.RecordJSON),
		Headers: []kafka.Header{
			{Key: "kind", Value: []byte(h.Kind)},
			{Key: "project_id", Value: []byte(h.ProjectID)},
			{Key: "idempotency_key", Value: []byte(entry.IdempotencyKey)},
		},
	}, nil
}

// PublishBatch writes entries in one call and returns the outbox IDs of the
// messages Kafka accepted.
func (p *Publisher) PublishBatch(ctx context.Context, entries []storage.Entry) ([]int64, error) {
	msgs := make([]kafka.Message, 0, len(entries))
	ids := make([]int64, 0, len(entries))
	var errs []error

	for _, e := range entries {
		msg, err := Message(e)
		if err != nil {
			p.logger.Error("skipping unreadable record", "outbox_id", e.ID, "error", err)
			errs = append(errs, fmt.Errorf("record %d: %w", e.ID, err))
			continue
		}
		msgs = append(msgs, msg)
		ids = append(ids, e.ID)
	}

	if len(msgs) == 0 {
		return []int64{}, errors.Join(errs...)
	}

	err := p.w.WriteMessages(ctx, msgs...)
	if err == nil {
		p.logger.Debug("records written", "count", len(ids))
		return ids, errors.Join(errs...)
	}

	var writeErrs kafka.WriteErrors
	if !errors.As(err, &writeErrs) || len(writeErrs) != len(msgs) {
		return []int64{}, errors.Join(append(errs, fmt.Errorf("write messages: %w", err))...)
	}

	published := make([]int64, 0, len(ids))
	for i, werr := range writeErrs {
		if werr == nil {
			published = append(published, ids[i])
			continue
		}
		errs = append(errs, fmt.Errorf("record %d: %w", ids[i], werr))
	}
	return published, errors.Join(errs...)
}

// Close flushes and closes the writer.
func (p *Publisher) Close() error {
	return p.w.Close()
}
