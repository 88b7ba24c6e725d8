package relay

// Payload is the notification data delivered with a click.
type Payload = map[string]any

// PermissionResultListener relays push permission prompt results.
type PermissionResultListener struct {
	fwd Forwarder[bool]
}

// NewPermissionResultListener binds a permission listener to h.
func NewPermissionResultListener(h Handle, native NativeFunc[bool]) *PermissionResultListener {
	return &PermissionResultListener{fwd: NewForwarder(h, native)}
}

// OnPushPermissionResponse is called by the SDK with the user's decision.
func (l *PermissionResultListener) OnPushPermissionResponse(granted bool) {
	l.fwd.Forward(granted)
}

// Handle returns the bound handle.
func (l *PermissionResultListener) Handle() Handle {
	return l.fwd.Handle()
}

// NotificationClickListener relays notification click payloads.
type NotificationClickListener struct {
	fwd Forwarder[Payload]
}

// NewNotificationClickListener binds a click listener to h.
func NewNotificationClickListener(h Handle, native NativeFunc[Payload]) *NotificationClickListener {
	return &NotificationClickListener{fwd: NewForwarder(h, native)}
}

// OnNotificationClickedPayloadReceived is called by the SDK when the user
// opens a notification.
func (l *NotificationClickListener) OnNotificationClickedPayloadReceived(payload Payload) {
	l.fwd.Forward(payload)
}

// Handle returns the bound handle.
func (l *NotificationClickListener) Handle() Handle {
	return l.fwd.Handle()
}
