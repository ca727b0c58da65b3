package transport

import (
	"errors"
	"fmt"
)

// Open errors.
var (
	// ErrUnavailable indicates the device path does not exist or the
	// device was detached between discovery and open.
	ErrUnavailable = errors.New("device unavailable")

	// ErrPermissionDenied indicates the OS refused access to the device node.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrAlreadyHeld indicates the device is already held by another handle.
	ErrAlreadyHeld = errors.New("device already held")
)

// Write errors.
var (
	// ErrWriteTimeout indicates the write did not complete within the timeout.
	ErrWriteTimeout = errors.New("write timeout")

	// ErrShortWrite indicates fewer bytes were accepted than were given.
	ErrShortWrite = errors.New("short write")

	// ErrDisconnected indicates the device is gone. Surfaced by both
	// reads and writes.
	ErrDisconnected = errors.New("device disconnected")
)

// Read errors.
var (
	// ErrReadTimeout indicates no report arrived within the timeout.
	ErrReadTimeout = errors.New("read timeout")
)

// Handle errors.
var (
	// ErrHandleClosed indicates I/O on a closed handle.
	ErrHandleClosed = errors.New("handle closed")

	// ErrInvalidTimeout indicates a zero or negative timeout was given.
	// This layer never blocks indefinitely.
	ErrInvalidTimeout = errors.New("invalid timeout")
)

// OpenError wraps a failure to acquire a device handle.
// Match the failure class with errors.Is against ErrUnavailable,
// ErrPermissionDenied or ErrAlreadyHeld.
type OpenError struct {
	// Path is the device path that failed to open.
	Path string

	// Err is the classified cause.
	Err error
}

// Error returns the error message.
func (e *OpenError) Error() string {
	return fmt.Sprintf("open %s: %v", e.Path, e.Err)
}

// Unwrap returns the classified cause.
func (e *OpenError) Unwrap() error {
	return e.Err
}
