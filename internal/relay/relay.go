// Package relay forwards SDK callback events to native code.
//
// Each listener is bound to one Handle for its whole life and makes exactly
// one synchronous native call per event. The relay never buffers, retries or
// changes threads; moving work onto the game thread is the native side's job.
package relay

import "strconv"

// Handle identifies a native object owned by the engine. The relay only
// carries it back to native code and never interprets it.
type Handle int64

// String renders the handle in hex, the way native pointers are logged.
func (h Handle) String() string {
	return "0x" + strconv.FormatInt(int64(h), 16)
}

// NativeFunc is a native entry point receiving a handle and event data.
type NativeFunc[T any] func(h Handle, event T)

// Forwarder binds a native entry point to a handle.
type Forwarder[T any] struct {
	handle Handle
	native NativeFunc[T]
}

// NewForwarder returns a Forwarder that delivers events for h to native.
func NewForwarder[T any](h Handle, native NativeFunc[T]) Forwarder[T] {
	return Forwarder[T]{handle: h, native: native}
}

// Handle returns the bound handle.
func (f Forwarder[T]) Handle() Handle {
	return f.handle
}

// Forward passes event to the native entry point unmodified.
func (f Forwarder[T]) Forward(event T) {
	f.native(f.handle, event)
}
