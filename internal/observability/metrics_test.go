package observability

import (
	"context"
	"testing"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collectSum(t *testing.T, reader *sdkmetric.ManualReader, name string) int64 {
	t.Helper()

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}

	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				t.Fatalf("%s is %T, want Sum[int64]", name, m.Data)
			}
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
		}
	}
	return total
}

func TestMetrics_Record(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mod := NewWithReader("test", reader)
	defer mod.Shutdown(context.Background())

	m, err := NewMetrics(mod.Meter())
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}

	ctx := context.Background()
	m.RecordTranslation(ctx, "alert-template", true)
	m.RecordTranslation(ctx, "half-interstitial", false)
	m.RecordCallback(ctx, "push_permission")
	m.RecordEnqueued(ctx, "event")
	m.RecordEnqueued(ctx, "profile")

	if got := collectSum(t, reader, "inapp.translations"); got != 2 {
		t.Errorf("inapp.translations = %d, want 2", got)
	}
	if got := collectSum(t, reader, "relay.callbacks"); got != 1 {
		t.Errorf("relay.callbacks = %d, want 1", got)
	}
	if got := collectSum(t, reader, "outbox.enqueued"); got != 2 {
		t.Errorf("outbox.enqueued = %d, want 2", got)
	}
}

func TestMetrics_RecordFlush(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mod := NewWithReader("test", reader)
	defer mod.Shutdown(context.Background())

	m, err := NewMetrics(mod.Meter())
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}

	ctx := context.Background()
	m.RecordFlush(ctx, 5, 3, 2, 12*time.Millisecond)
	m.RecordFlush(ctx, 4, 4, 0, 8*time.Millisecond)

	if got := collectSum(t, reader, "outbox.published"); got != 7 {
		t.Errorf("outbox.published = %d, want 7", got)
	}
	if got := collectSum(t, reader, "outbox.publish.failed"); got != 2 {
		t.Errorf("outbox.publish.failed = %d, want 2", got)
	}

	m.RecordDeadLettered(ctx, 3)
	if got := collectSum(t, reader, "outbox.dead_lettered"); got != 3 {
		t.Errorf("outbox.dead_lettered = %d, want 3", got)
	}
}

func TestNoopMetrics(t *testing.T) {
	m := NoopMetrics()
	if m == nil {
		t.Fatal("NoopMetrics returned nil")
	}
	m.RecordCallback(context.Background(), "notification_clicked")
}
