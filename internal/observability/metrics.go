package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// Metrics holds the instruments shared by the bridge, the queued platform
// and the outbox flusher.
type Metrics struct {
	// Bridge metrics
	InAppTranslations otelmetric.Int64Counter
	CallbacksRelayed  otelmetric.Int64Counter

	// Outbox metrics
	OutboxEnqueued       otelmetric.Int64Counter
	OutboxPublished      otelmetric.Int64Counter
	OutboxPublishFailed  otelmetric.Int64Counter
	OutboxDeadLettered   otelmetric.Int64Counter
	OutboxFlushLatency   otelmetric.Float64Histogram
	OutboxFlushBatchSize otelmetric.Int64Histogram
}

// NewMetrics creates all instruments from meter.
func NewMetrics(meter otelmetric.Meter) (*Metrics, error) {
	var m Metrics
	var err error

	m.InAppTranslations, err = meter.Int64Counter(
		"inapp.translations",
		otelmetric.WithDescription("Push primer configs translated, by type and outcome"),
	)
	if err != nil {
		return nil, err
	}

	m.CallbacksRelayed, err = meter.Int64Counter(
		"relay.callbacks",
		otelmetric.WithDescription("SDK callbacks forwarded to native code, by event"),
	)
	if err != nil {
		return nil, err
	}

	m.OutboxEnqueued, err = meter.Int64Counter(
		"outbox.enqueued",
		otelmetric.WithDescription("Records appended to the outbox, by kind"),
	)
	if err != nil {
		return nil, err
	}

	m.OutboxPublished, err = meter.Int64Counter(
		"outbox.published",
		otelmetric.WithDescription("Records published and removed from the outbox"),
	)
	if err != nil {
		return nil, err
	}

	m.OutboxPublishFailed, err = meter.Int64Counter(
		"outbox.publish.failed",
		otelmetric.WithDescription("Records that failed to publish and stay queued"),
	)
	if err != nil {
		return nil, err
	}

	m.OutboxDeadLettered, err = meter.Int64Counter(
		"outbox.dead_lettered",
		otelmetric.WithDescription("Records moved to the dead-letter table after exhausting retries"),
	)
	if err != nil {
		return nil, err
	}

	m.OutboxFlushLatency, err = meter.Float64Histogram(
		"outbox.flush.latency",
		otelmetric.WithUnit("ms"),
		otelmetric.WithDescription("Outbox flush latency in milliseconds"),
	)
	if err != nil {
		return nil, err
	}

	m.OutboxFlushBatchSize, err = meter.Int64Histogram(
		"outbox.flush.batch_size",
		otelmetric.WithDescription("Records per outbox flush"),
	)
	if err != nil {
		return nil, err
	}

	return &m, nil
}

// NoopMetrics returns instruments that record nothing.
func NoopMetrics() *Metrics {
	m, _ := NewMetrics(noop.NewMeterProvider().Meter("noop"))
	return m
}

// RecordTranslation counts one push primer translation.
func (m *Metrics) RecordTranslation(ctx context.Context, inappType string, ok bool) {
	outcome := "ok"
	if !ok {
		outcome = "error"
	}
	m.InAppTranslations.Add(ctx, 1, otelmetric.WithAttributes(
		attribute.String("type", inappType),
		attribute.String("outcome", outcome),
	))
}

// RecordCallback counts one relayed callback.
func (m *Metrics) RecordCallback(ctx context.Context, event string) {
	m.CallbacksRelayed.Add(ctx, 1, otelmetric.WithAttributes(attribute.String("event", event)))
}

// RecordEnqueued counts one outbox record.
func (m *Metrics) RecordEnqueued(ctx context.Context, kind string) {
	m.OutboxEnqueued.Add(ctx, 1, otelmetric.WithAttributes(attribute.String("kind", kind)))
}

// RecordFlush records one outbox flush.
func (m *Metrics) RecordFlush(ctx context.Context, batch, published, failed int, elapsed time.Duration) {
	m.OutboxFlushBatchSize.Record(ctx, int64(batch))
	m.OutboxFlushLatency.Record(ctx, float64(elapsed.Microseconds())/1000)
	if published > 0 {
		m.OutboxPublished.Add(ctx, int64(published))
	}
	if failed > 0 {
		m.OutboxPublishFailed.Add(ctx, int64(failed))
	}
}

// RecordDeadLettered counts records given up on.
func (m *Metrics) RecordDeadLettered(ctx context.Context, n int) {
	m.OutboxDeadLettered.Add(ctx, int64(n))
}
