package session

// State represents the session state.
type State uint8

const (
	// StateDisconnected indicates no transport handle is held.
	StateDisconnected State = iota

	// StateConnected indicates an open handle and no outstanding failures.
	StateConnected

	// StateDegraded indicates consecutive write failures below the retry
	// ceiling. The retry counter is available via Session.RetryCount.
	StateDegraded

	// StateFailed is terminal: retries were exhausted or a reopen failed.
	// Sends fail immediately without I/O.
	StateFailed

	// StateClosed indicates the caller released the session.
	StateClosed
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "DISCONNECTED"
	case StateConnected:
		return "CONNECTED"
	case StateDegraded:
		return "DEGRADED"
	case StateFailed:
		return "FAILED"
	case StateClosed:
		return "CLOSED"
	default:
		return "UNKNOWN"
	}
}
