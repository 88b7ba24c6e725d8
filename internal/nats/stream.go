package nats

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nats-io/nats.go/jetstream"
)

// StreamManager creates and updates the records stream.
type StreamManager struct {
	js     jetstream.JetStream
	config StreamConfig
	logger *slog.Logger
}

// NewStreamManager creates a new stream manager.
func NewStreamManager(js jetstream.JetStream, cfg StreamConfig, logger *slog.Logger) *StreamManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &StreamManager{
		js:     js,
		config: cfg,
		logger: logger.With("component", "stream-manager"),
	}
}

// StreamSpec returns the JetStream configuration for the records stream.
func (c StreamConfig) StreamSpec() jetstream.StreamConfig {
	storage := jetstream.FileStorage
	if strings.EqualFold(c.Storage, "memory") {
		storage = jetstream.MemoryStorage
	}

	return jetstream.StreamConfig{
		Name:        c.Name,
		Subjects:    c.Subjects,
		Storage:     storage,
		MaxAge:      c.MaxAge,
		MaxBytes:    c.MaxBytes,
		Replicas:    c.Replicas,
		Retention:   jetstream.LimitsPolicy,
		Discard:     jetstream.DiscardOld,
		Duplicates:  c.DuplicateWindow,
		AllowDirect: true,
	}
}

// EnsureStream creates the stream, or updates it when it already exists.
func (m *StreamManager) EnsureStream(ctx context.Context) (jetstream.Stream, error) {
	spec := m.config.StreamSpec()

	_, err := m.js.Stream(ctx, spec.Name)
	switch {
	case err == nil:
		stream, err := m.js.UpdateStream(ctx, spec)
		if err != nil {
			return nil, fmt.Errorf("failed to update stream: %w", err)
		}
		m.logger.Info("stream updated", "name", spec.Name)
		return stream, nil

	case errors.Is(err, jetstream.ErrStreamNotFound):
		stream, err := m.js.CreateStream(ctx, spec)
		if err != nil {
			return nil, fmt.Errorf("failed to create stream: %w", err)
		}
		m.logger.Info("stream created",
			"name", spec.Name,
			"subjects", spec.Subjects,
			"storage", m.config.Storage,
			"max_age", spec.MaxAge,
			"duplicate_window", spec.Duplicates,
		)
		return stream, nil

	default:
		return nil, fmt.Errorf("failed to look up stream: %w", err)
	}
}

// StreamInfo returns the current state of the records stream.
func (m *StreamManager) StreamInfo(ctx context.Context) (*jetstream.StreamInfo, error) {
	stream, err := m.js.Stream(ctx, m.config.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to get stream: %w", err)
	}

	info, err := stream.Info(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get stream info: %w", err)
	}

	return info, nil
}
