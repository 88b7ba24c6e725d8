package mobile

import (
	"sync"
)

// ErrorCallback is invoked when the bridge reports an error.
// This interface is gomobile-compatible (single method with basic types).
//
// Parameters:
//   - code: Error code (e.g., "MISSING_FIELD", "INVALID_JSON")
//   - message: Human-readable error message
//   - severity: 0=debug, 1=warning, 2=critical, 3=fatal
type ErrorCallback interface {
	OnError(code string, message string, severity int)
}

var (
	errorCallbacksMu sync.RWMutex
	errorCallbacks   []ErrorCallback
)

// RegisterErrorCallback adds a callback for error notifications.
// Multiple callbacks can be registered; all will be notified.
func RegisterErrorCallback(callback ErrorCallback) {
	if callback == nil {
		return
	}
	errorCallbacksMu.Lock()
	defer errorCallbacksMu.Unlock()
	errorCallbacks = append(errorCallbacks, callback)
}

// UnregisterErrorCallbacks clears all registered callbacks.
func UnregisterErrorCallbacks() {
	errorCallbacksMu.Lock()
	defer errorCallbacksMu.Unlock()
	errorCallbacks = nil
}

// notifyErrorCallbacks dispatches an error to all registered callbacks.
// Only called for Warning+ severity (not Debug).
// Callbacks are invoked asynchronously so native code never blocks the
// caller.
func notifyErrorCallbacks(err *SDKError) {
	if err == nil || err.Severity < SeverityWarning {
		return
	}

	errorCallbacksMu.RLock()
	callbacks := make([]ErrorCallback, len(errorCallbacks))
	copy(callbacks, errorCallbacks)
	errorCallbacksMu.RUnlock()

	for _, cb := range callbacks {
		go cb.OnError(err.Code, err.Message, int(err.Severity))
	}
}

// reportError logs err by severity and notifies callbacks for Warning+.
func reportError(err *SDKError) {
	if err == nil {
		return
	}

	log := logger()
	switch err.Severity {
	case SeverityDebug:
		if !debugMode.Load() {
			return
		}
		log.Debug("bridge error", "code", err.Code, "message", err.Message)
	case SeverityWarning:
		log.Warn("bridge error", "code", err.Code, "message", err.Message)
	default:
		log.Error("bridge error", "code", err.Code, "message", err.Message, "severity", int(err.Severity))
	}

	notifyErrorCallbacks(err)
}
