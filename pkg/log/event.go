package log

import (
	"time"
)

// Event represents a protocol log event captured at any layer.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// SessionID uniquely identifies the session (UUID).
	SessionID string `cbor:"2,keyasint"`

	// Direction indicates report flow relative to the host.
	Direction Direction `cbor:"3,keyasint"`

	// Layer where the event was captured.
	Layer Layer `cbor:"4,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"5,keyasint"`

	// DevicePath is the HID path of the device.
	DevicePath string `cbor:"6,keyasint,omitempty"`

	// DeviceKind is the device classification (e.g. LED_MATRIX).
	DeviceKind string `cbor:"7,keyasint,omitempty"`

	// Type-specific payload (one of these will be set).
	Report      *ReportEvent      `cbor:"8,keyasint,omitempty"`  // Transport layer
	Command     *CommandEvent     `cbor:"9,keyasint,omitempty"`  // Codec layer
	StateChange *StateChangeEvent `cbor:"10,keyasint,omitempty"` // Session state
	Retry       *RetryEvent       `cbor:"11,keyasint,omitempty"` // Dispatcher retries
	Error       *ErrorEventData   `cbor:"12,keyasint,omitempty"` // Errors at any layer
}

// Direction indicates the direction of report flow.
type Direction uint8

const (
	// DirectionIn indicates a report read from the device.
	DirectionIn Direction = 0
	// DirectionOut indicates a report written to the device.
	DirectionOut Direction = 1
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "IN"
	case DirectionOut:
		return "OUT"
	default:
		return "UNKNOWN"
	}
}

// Layer indicates which layer captured the event.
type Layer uint8

const (
	// LayerTransport is the HID report layer (raw bytes).
	LayerTransport Layer = 0
	// LayerCodec is the command encoding layer.
	LayerCodec Layer = 1
	// LayerSession is the session/dispatcher layer.
	LayerSession Layer = 2
)

// String returns the layer name.
func (l Layer) String() string {
	switch l {
	case LayerTransport:
		return "TRANSPORT"
	case LayerCodec:
		return "CODEC"
	case LayerSession:
		return "SESSION"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryReport indicates a raw HID report.
	CategoryReport Category = 0
	// CategoryCommand indicates an encoded device command.
	CategoryCommand Category = 1
	// CategoryState indicates a session state change.
	CategoryState Category = 2
	// CategoryRetry indicates a dispatcher retry.
	CategoryRetry Category = 3
	// CategoryError indicates an error event.
	CategoryError Category = 4
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryReport:
		return "REPORT"
	case CategoryCommand:
		return "COMMAND"
	case CategoryState:
		return "STATE"
	case CategoryRetry:
		return "RETRY"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ReportEvent captures raw report data at the transport layer.
type ReportEvent struct {
	// Size is the report size in bytes.
	Size int `cbor:"1,keyasint"`

	// Data is the raw report bytes (may be truncated for large reports).
	Data []byte `cbor:"2,keyasint,omitempty"`

	// Truncated indicates if Data was truncated.
	Truncated bool `cbor:"3,keyasint,omitempty"`
}

// CommandEvent captures an encoded device command at the codec layer.
type CommandEvent struct {
	// ID is the wire command identifier.
	ID uint8 `cbor:"1,keyasint"`

	// Name is the human-readable command name.
	Name string `cbor:"2,keyasint,omitempty"`

	// PayloadLen is the command payload length in bytes.
	PayloadLen int `cbor:"3,keyasint"`
}

// StateChangeEvent captures session lifecycle transitions.
type StateChangeEvent struct {
	// OldState is the previous state (may be empty).
	OldState string `cbor:"1,keyasint,omitempty"`

	// NewState is the new state.
	NewState string `cbor:"2,keyasint"`

	// Reason for the change (if available).
	Reason string `cbor:"3,keyasint,omitempty"`
}

// RetryEvent captures one dispatcher retry decision.
type RetryEvent struct {
	// Attempt is the failed attempt number (1-based).
	Attempt int `cbor:"1,keyasint"`

	// Backoff is the delay before the next attempt. Stored as nanoseconds.
	Backoff time.Duration `cbor:"2,keyasint"`

	// Reason is the write failure class that triggered the retry.
	Reason string `cbor:"3,keyasint,omitempty"`

	// Reopened indicates the handle was reopened before the next attempt.
	Reopened bool `cbor:"4,keyasint,omitempty"`
}

// ErrorEventData captures an error at any layer.
type ErrorEventData struct {
	// Layer where the error occurred.
	Layer Layer `cbor:"1,keyasint"`

	// Message is the error text.
	Message string `cbor:"2,keyasint"`

	// Context describes the operation that failed.
	Context string `cbor:"3,keyasint,omitempty"`
}
