// Package observability provides OpenTelemetry metrics with a Prometheus
// exporter for the bridge and its delivery pipeline.
package observability

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// Module holds the MeterProvider and the Meter instruments are created from.
type Module struct {
	provider *sdkmetric.MeterProvider
	meter    otelmetric.Meter
}

// New configures a Prometheus exporter, installs the MeterProvider globally
// and scopes the meter to serviceName.
func New(serviceName string) (*Module, error) {
	exporter, err := prometheus.New()
	if err != nil {
		return nil, err
	}

	return newModule(serviceName, exporter), nil
}

// NewWithReader builds a Module on a caller supplied reader. Tests pass a
// sdkmetric.ManualReader to collect recorded values.
func NewWithReader(serviceName string, reader sdkmetric.Reader) *Module {
	return newModule(serviceName, reader)
}

func newModule(serviceName string, reader sdkmetric.Reader) *Module {
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	return &Module{
		provider: provider,
		meter:    provider.Meter(serviceName),
	}
}

// Shutdown flushes and stops the MeterProvider.
func (m *Module) Shutdown(ctx context.Context) error {
	return m.provider.Shutdown(ctx)
}

// MetricsHandler serves metrics in the Prometheus exposition format.
func (m *Module) MetricsHandler() http.Handler {
	return promhttp.Handler()
}

// Meter returns the Meter for creating instruments.
func (m *Module) Meter() otelmetric.Meter {
	return m.meter
}
