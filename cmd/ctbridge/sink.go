package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/CleverTap/clevertap-unreal-sdk/internal/delivery"
	"github.com/CleverTap/clevertap-unreal-sdk/internal/kafka"
	"github.com/CleverTap/clevertap-unreal-sdk/internal/nats"
)

const (
	sinkNATS  = "nats"
	sinkKafka = "kafka"
)

// sink is where the flusher sends records.
type sink struct {
	sender delivery.Sender
	close  func() error

	// onConnect registers a callback for when the broker becomes
	// reachable. Nil for sinks that connect per write.
	onConnect func(fn func())
}

// openSink builds the configured sink. A NATS server that is down at
// startup is not an error: the stream is ensured once it comes up.
func openSink(ctx context.Context, cfg Config, logger *slog.Logger) (*sink, error) {
	switch cfg.Sink {
	case sinkNATS:
		client, err := nats.NewClient(cfg.NATS, logger)
		if err != nil {
			return nil, err
		}

		streams := client.NewStreamManager()
		ensure := func(ctx context.Context) {
			if _, err := streams.EnsureStream(ctx); err != nil {
				logger.Warn("stream not ready", "error", err)
			}
		}
		ensure(ctx)
		if err := client.HealthCheck(ctx); err != nil {
			logger.Warn("NATS health check failed", "error", err)
		}
		client.OnConnect(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			ensure(ctx)
		})

		return &sink{
			sender:    client.NewPublisher(),
			close:     client.Drain,
			onConnect: client.OnConnect,
		}, nil

	case sinkKafka:
		pub := kafka.NewPublisher(kafka.NewWriter(cfg.Kafka), logger)
		return &sink{sender: pub, close: pub.Close}, nil

	default:
		return nil, fmt.Errorf("unknown sink %q", cfg.Sink)
	}
}
