package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/inputmodule/inputmodule-go/pkg/descriptor"
	"github.com/inputmodule/inputmodule-go/pkg/log"
	"github.com/inputmodule/inputmodule-go/pkg/transport"
)

// Session is a stateful binding between a caller and one open device.
// It owns the transport handle and the write-recovery state machine.
//
// A session must be driven by one caller at a time. The internal mutex
// serializes accidental concurrent calls but the retry state machine is
// designed for sequential use; drive one session per goroutine.
type Session struct {
	mu sync.Mutex

	id       string
	desc     descriptor.Descriptor
	registry transport.Registry
	policy   Policy
	logger   log.Logger

	handle     *transport.Handle
	state      State
	retryCount int
}

// Option configures a session at open time.
type Option func(*Session)

// WithLogger attaches a protocol event logger to the session and its
// transport handle.
func WithLogger(logger log.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Open acquires a transport handle for the descriptor and returns a
// session in the CONNECTED state. On failure the *transport.OpenError is
// returned and no session exists; the caller retries by calling Open
// again.
//
// The policy is copied and immutable for the session's lifetime. Zero
// policy fields are filled with defaults, so Policy{} is usable.
func Open(reg transport.Registry, desc descriptor.Descriptor, policy Policy, opts ...Option) (*Session, error) {
	s := &Session{
		id:       uuid.NewString(),
		desc:     desc,
		registry: reg,
		policy:   policy.withDefaults(),
		logger:   log.NoopLogger{},
		state:    StateDisconnected,
	}
	for _, opt := range opts {
		opt(s)
	}

	handle, err := transport.Open(reg, desc)
	if err != nil {
		return nil, err
	}
	handle.SetLogger(s.logger, s.id)

	s.handle = handle
	s.transition(StateConnected, "opened")
	return s, nil
}

// ID returns the session's unique identifier, as stamped on log events.
func (s *Session) ID() string {
	return s.id
}

// Descriptor returns the descriptor this session was opened against.
func (s *Session) Descriptor() descriptor.Descriptor {
	return s.desc
}

// Policy returns the session's retry policy.
func (s *Session) Policy() Policy {
	return s.policy
}

// State returns the current session state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// RetryCount returns the current consecutive write failure count
// (the n of DEGRADED(n)).
func (s *Session) RetryCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.retryCount
}

// Close releases the session and its transport handle. Safe to call
// multiple times. After Close, send-family calls fail with
// ErrSessionClosed.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateClosed {
		return nil
	}
	s.transition(StateClosed, "closed by caller")

	if s.handle == nil {
		return nil
	}
	return s.handle.Close()
}

// transition moves the state machine and logs the change.
// Caller holds s.mu (or has exclusive access during Open).
func (s *Session) transition(newState State, reason string) {
	oldState := s.state
	if oldState == newState {
		return
	}
	s.state = newState

	s.logger.Log(log.Event{
		Timestamp:  time.Now(),
		SessionID:  s.id,
		DevicePath: s.desc.Path,
		DeviceKind: s.desc.Kind.String(),
		Direction:  log.DirectionOut,
		Layer:      log.LayerSession,
		Category:   log.CategoryState,
		StateChange: &log.StateChangeEvent{
			OldState: oldState.String(),
			NewState: newState.String(),
			Reason:   reason,
		},
	})
}
