package session

import (
	"errors"
	"fmt"
)

// Session errors.
var (
	// ErrRetriesExhausted indicates a logical send gave up after the
	// configured number of consecutive write failures. The session is now
	// FAILED. Callers driving a periodic render loop should treat this as
	// "drop this frame", not as fatal.
	ErrRetriesExhausted = errors.New("retries exhausted")

	// ErrSessionFailed indicates a send on a session that is already
	// FAILED (or that failed reopening after a disconnect). No I/O is
	// attempted. Recover by opening a new session.
	ErrSessionFailed = errors.New("session failed")

	// ErrSessionClosed indicates a send on an explicitly closed session.
	ErrSessionClosed = errors.New("session closed")

	// ErrKindMismatch indicates an operation not supported by the
	// session's device kind.
	ErrKindMismatch = errors.New("operation not supported by device kind")
)

// SendError wraps a terminal send failure with the command that failed.
// Match the failure class with errors.Is against ErrRetriesExhausted or
// ErrSessionFailed.
type SendError struct {
	// Command is the name of the wire command that failed.
	Command string

	// Attempts is the number of physical writes performed (0 when the
	// session was already failed).
	Attempts int

	// Err is the classified cause.
	Err error
}

// Error returns the error message.
func (e *SendError) Error() string {
	return fmt.Sprintf("send %s after %d attempts: %v", e.Command, e.Attempts, e.Err)
}

// Unwrap returns the classified cause.
func (e *SendError) Unwrap() error {
	return e.Err
}
