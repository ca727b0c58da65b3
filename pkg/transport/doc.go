// Package transport provides the USB HID transport for input modules.
//
// The transport layer is a byte pipe with explicit timeout semantics. It
// performs no interpretation of payload content; command encoding lives in
// the codec package and retry policy in the session package.
//
// # Protocol Stack
//
//	┌────────────────────────────────┐
//	│     Command Frames (codec)     │
//	├────────────────────────────────┤
//	│    Handle (timeouts, errors)   │
//	├────────────────────────────────┤
//	│      HID reports (hidapi)      │
//	├────────────────────────────────┤
//	│            USB                 │
//	└────────────────────────────────┘
//
// # Timeouts
//
// Every blocking call takes an explicit timeout; indefinite blocking is not
// permitted at this layer. A zero or negative timeout is rejected with
// ErrInvalidTimeout rather than interpreted as "forever".
//
// # Error Classification
//
// The underlying hidapi errors are classified into the package's error
// taxonomy (timeout, short write, disconnected) so that the session layer
// can drive its retry state machine on error kind alone.
package transport
