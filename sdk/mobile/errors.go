package mobile

import (
	"errors"

	"github.com/CleverTap/clevertap-unreal-sdk/internal/config"
	"github.com/CleverTap/clevertap-unreal-sdk/internal/inapp"
)

// ErrorSeverity indicates how critical an error is.
type ErrorSeverity int

const (
	// SeverityDebug is informational, logged in debug mode only.
	SeverityDebug ErrorSeverity = iota
	// SeverityWarning is non-critical, the bridge continues operating.
	SeverityWarning
	// SeverityCritical means the requested operation could not be performed.
	SeverityCritical
	// SeverityFatal means the bridge cannot operate.
	SeverityFatal
)

// Error codes for categorization.
const (
	ErrCodeMissingField   = "MISSING_FIELD"
	ErrCodeWrongType      = "WRONG_TYPE"
	ErrCodeInvalidJSON    = "INVALID_JSON"
	ErrCodeInvalidConfig  = "INVALID_CONFIG"
	ErrCodeNotInitialized = "NOT_INITIALIZED"
)

// SDKError represents a structured error with severity and code.
type SDKError struct {
	Code     string        `json:"code"`
	Message  string        `json:"message"`
	Severity ErrorSeverity `json:"severity"`

	err error
}

// Error implements the error interface.
func (e *SDKError) Error() string {
	return e.Message
}

// Unwrap returns the underlying error, if any.
func (e *SDKError) Unwrap() error {
	return e.err
}

// newWarningError creates a warning-level error.
func newWarningError(code, message string) *SDKError {
	return &SDKError{Code: code, Message: message, Severity: SeverityWarning}
}

// newCriticalError creates a critical-level error.
func newCriticalError(code, message string) *SDKError {
	return &SDKError{Code: code, Message: message, Severity: SeverityCritical}
}

// classify maps an internal error to an SDKError code, or fallback when no
// code applies. Missing fields take precedence when a translation failed
// for several reasons.
func classify(err error, fallback string) string {
	switch {
	case errors.Is(err, inapp.ErrInvalidJSON):
		return ErrCodeInvalidJSON
	case errors.Is(err, inapp.ErrMissingField):
		return ErrCodeMissingField
	case errors.Is(err, inapp.ErrWrongType):
		return ErrCodeWrongType
	case errors.Is(err, config.ErrProjectIDRequired),
		errors.Is(err, config.ErrProjectTokenRequired),
		errors.Is(err, config.ErrUnknownLogLevel):
		return ErrCodeInvalidConfig
	default:
		return fallback
	}
}

// toSDKError wraps err at the given severity.
func toSDKError(err error, fallback string, severity ErrorSeverity) *SDKError {
	if err == nil {
		return nil
	}
	var sdkErr *SDKError
	if errors.As(err, &sdkErr) {
		return sdkErr
	}
	return &SDKError{Code: classify(err, fallback), Message: err.Error(), Severity: severity, err: err}
}

// wrapError returns empty string for nil, error message otherwise.
// Used by exported functions that return string instead of error.
func wrapError(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
