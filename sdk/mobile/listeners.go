package mobile

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/CleverTap/clevertap-unreal-sdk/internal/relay"
)

// NativeCallbacks is implemented by the native layer. Each method receives
// the opaque handle of the Unreal-side object that registered the listener.
// Calls arrive on whatever thread the CleverTap SDK used.
type NativeCallbacks interface {
	OnPushPermissionResponse(handle int64, granted bool)
	OnNotificationClicked(handle int64, payloadJSON string)
}

// PushPermissionListener forwards push permission results to native code.
type PushPermissionListener struct {
	inner *relay.PermissionResultListener
}

// NewPushPermissionListener binds a listener to handle. It fails with
// NOT_INITIALIZED when native is nil.
func NewPushPermissionListener(handle int64, native NativeCallbacks) (*PushPermissionListener, error) {
	if native == nil {
		sdkErr := newCriticalError(ErrCodeNotInitialized, "native callbacks are required")
		reportError(sdkErr)
		return nil, sdkErr
	}

	fn := func(h relay.Handle, granted bool) {
		currentMetrics().RecordCallback(context.Background(), "push_permission")
		native.OnPushPermissionResponse(int64(h), granted)
	}
	return &PushPermissionListener{
		inner: relay.NewPermissionResultListener(relay.Handle(handle), fn),
	}, nil
}

// OnPushPermissionResponse is called by the SDK with the user's decision.
func (l *PushPermissionListener) OnPushPermissionResponse(granted bool) {
	l.inner.OnPushPermissionResponse(granted)
}

// Handle returns the native handle the listener is bound to.
func (l *PushPermissionListener) Handle() int64 {
	return int64(l.inner.Handle())
}

// PushNotificationListener forwards notification click payloads to native
// code. The payload JSON is passed through byte for byte.
type PushNotificationListener struct {
	fwd relay.Forwarder[string]
}

// NewPushNotificationListener binds a listener to handle. It fails with
// NOT_INITIALIZED when native is nil.
func NewPushNotificationListener(handle int64, native NativeCallbacks) (*PushNotificationListener, error) {
	if native == nil {
		sdkErr := newCriticalError(ErrCodeNotInitialized, "native callbacks are required")
		reportError(sdkErr)
		return nil, sdkErr
	}

	fn := func(h relay.Handle, payloadJSON string) {
		currentMetrics().RecordCallback(context.Background(), "notification_clicked")
		native.OnNotificationClicked(int64(h), payloadJSON)
	}
	return &PushNotificationListener{
		fwd: relay.NewForwarder[string](relay.Handle(handle), fn),
	}, nil
}

// OnNotificationClickedPayloadReceived is called by the SDK when the user
// taps a notification. An empty payloadJSON is forwarded as "null". A
// payload that is not a JSON object is reported as INVALID_JSON and not
// forwarded.
func (l *PushNotificationListener) OnNotificationClickedPayloadReceived(payloadJSON string) {
	if strings.TrimSpace(payloadJSON) == "" {
		l.fwd.Forward("null")
		return
	}
	if err := checkObject(payloadJSON); err != nil {
		reportError(newWarningError(ErrCodeInvalidJSON, "notification payload: "+err.Error()))
		return
	}
	l.fwd.Forward(payloadJSON)
}

// Handle returns the native handle the listener is bound to.
func (l *PushNotificationListener) Handle() int64 {
	return int64(l.fwd.Handle())
}

// checkObject reports whether s is a single well-formed JSON object.
func checkObject(s string) error {
	trimmed := bytes.TrimSpace([]byte(s))
	if !json.Valid(trimmed) {
		return errors.New("malformed JSON")
	}
	if trimmed[0] != '{' {
		return errors.New("payload must be a JSON object")
	}
	return nil
}
