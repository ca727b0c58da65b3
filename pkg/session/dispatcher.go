package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/inputmodule/inputmodule-go/pkg/codec"
	"github.com/inputmodule/inputmodule-go/pkg/log"
	"github.com/inputmodule/inputmodule-go/pkg/transport"
)

// send delivers a command sequence as one logical unit of work. Each
// command is retried individually per the policy; the first terminal
// failure aborts the rest of the sequence. Caller holds s.mu.
func (s *Session) send(name string, cmds ...codec.Command) error {
	switch s.state {
	case StateFailed:
		return &SendError{Command: name, Err: ErrSessionFailed}
	case StateClosed:
		return &SendError{Command: name, Err: ErrSessionClosed}
	}

	bo := newBackoff(s.policy.Backoff)
	for _, cmd := range cmds {
		if err := s.dispatch(name, cmd, bo); err != nil {
			return err
		}
	}
	return nil
}

// dispatch writes one command, applying the retry state machine:
//
//   - success: retry counter resets, session returns to CONNECTED.
//   - timeout / short write: DEGRADED, identical frame retried after
//     backoff, up to the policy ceiling.
//   - disconnect: one reopen attempt per retry when permitted, then the
//     pending command is resent; a failed reopen fails the session.
//
// Caller holds s.mu.
func (s *Session) dispatch(name string, cmd codec.Command, bo *backoff) error {
	attempts := 0

	for {
		s.logCommand(cmd)
		err := s.handle.Write(cmd, s.policy.WriteTimeout)
		attempts++

		if err == nil {
			s.retryCount = 0
			s.transition(StateConnected, "write succeeded")
			bo.Reset()
			return nil
		}

		switch {
		case errors.Is(err, transport.ErrWriteTimeout), errors.Is(err, transport.ErrShortWrite):
			s.retryCount++
			s.transition(StateDegraded, err.Error())

			if s.retryCount >= s.policy.MaxRetries {
				s.transition(StateFailed, "retries exhausted")
				return &SendError{
					Command:  name,
					Attempts: attempts,
					Err:      fmt.Errorf("%w: %v", ErrRetriesExhausted, err),
				}
			}

			delay := bo.Next()
			s.logRetry(attempts, delay, err, false)
			time.Sleep(delay)

		case errors.Is(err, transport.ErrDisconnected):
			s.retryCount++
			s.transition(StateDegraded, err.Error())

			if !s.policy.Reopen {
				s.transition(StateFailed, "disconnected, reopen not permitted")
				return &SendError{
					Command:  name,
					Attempts: attempts,
					Err:      fmt.Errorf("%w: %v", ErrSessionFailed, err),
				}
			}
			if s.retryCount >= s.policy.MaxRetries {
				s.transition(StateFailed, "retries exhausted")
				return &SendError{
					Command:  name,
					Attempts: attempts,
					Err:      fmt.Errorf("%w: %v", ErrRetriesExhausted, err),
				}
			}

			if rerr := s.reopen(); rerr != nil {
				s.transition(StateFailed, "reopen failed")
				return &SendError{
					Command:  name,
					Attempts: attempts,
					Err:      fmt.Errorf("%w: reopen: %v", ErrSessionFailed, rerr),
				}
			}

			s.logRetry(attempts, 0, err, true)
			// Reopened: resend the pending command immediately.

		default:
			// Programming errors (closed handle, invalid timeout)
			// are surfaced as-is, without retries.
			return &SendError{Command: name, Attempts: attempts, Err: err}
		}
	}
}

// reopen discards the current handle and re-acquires one for the original
// descriptor. On success the session returns to CONNECTED; the retry
// counter is only reset by a successful write.
func (s *Session) reopen() error {
	_ = s.handle.Close()

	handle, err := transport.Open(s.registry, s.desc)
	if err != nil {
		return err
	}
	handle.SetLogger(s.logger, s.id)

	s.handle = handle
	s.transition(StateConnected, "reopened after disconnect")
	return nil
}

// readReport reads one readback report with the policy read timeout.
// A disconnect during readback fails the session. Caller holds s.mu.
func (s *Session) readReport() ([]byte, error) {
	buf := make([]byte, transport.MaxLogReportSize)
	n, err := s.handle.Read(buf, s.policy.ReadTimeout)
	if err != nil {
		if errors.Is(err, transport.ErrDisconnected) {
			s.transition(StateFailed, "disconnected during readback")
		}
		return nil, err
	}
	return buf[:n], nil
}

// logCommand emits a codec-layer command event.
func (s *Session) logCommand(cmd codec.Command) {
	id, err := cmd.ID()
	if err != nil {
		return
	}

	s.logger.Log(log.Event{
		Timestamp:  time.Now(),
		SessionID:  s.id,
		DevicePath: s.desc.Path,
		DeviceKind: s.desc.Kind.String(),
		Direction:  log.DirectionOut,
		Layer:      log.LayerCodec,
		Category:   log.CategoryCommand,
		Command: &log.CommandEvent{
			ID:         uint8(id),
			Name:       id.String(),
			PayloadLen: len(cmd.Payload()),
		},
	})
}

// logRetry emits a session-layer retry event.
func (s *Session) logRetry(attempt int, delay time.Duration, cause error, reopened bool) {
	s.logger.Log(log.Event{
		Timestamp:  time.Now(),
		SessionID:  s.id,
		DevicePath: s.desc.Path,
		DeviceKind: s.desc.Kind.String(),
		Direction:  log.DirectionOut,
		Layer:      log.LayerSession,
		Category:   log.CategoryRetry,
		Retry: &log.RetryEvent{
			Attempt:  attempt,
			Backoff:  delay,
			Reason:   cause.Error(),
			Reopened: reopened,
		},
	})
}
