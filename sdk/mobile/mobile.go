// Package mobile is the Go core of the CleverTap Unreal bridge.
//
// This package is designed to be compiled with gomobile bind so the Unreal
// Android layer can call it through JNI. Exported functions use only
// gomobile-compatible types: string, int64, bool and error.
//
// Push primer parameters and notification payloads cross the bridge as
// JSON strings. Native code implements NativeCallbacks to receive the
// callbacks the CleverTap SDK raises.
package mobile

import (
	"log/slog"
	"sync/atomic"

	"github.com/CleverTap/clevertap-unreal-sdk/internal/observability"
)

var (
	debugMode atomic.Bool
	metrics   atomic.Pointer[observability.Metrics]
)

// SetDebugMode enables debug-severity logging.
func SetDebugMode(enabled bool) {
	debugMode.Store(enabled)
}

// SetMetrics installs the instruments used to count translations and
// relayed callbacks. A nil value restores the no-op instruments.
func SetMetrics(m *observability.Metrics) {
	metrics.Store(m)
}

func currentMetrics() *observability.Metrics {
	if m := metrics.Load(); m != nil {
		return m
	}
	return observability.NoopMetrics()
}

func logger() *slog.Logger {
	return slog.Default().With("component", "mobile")
}
