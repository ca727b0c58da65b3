package session

import (
	"time"
)

// Policy defaults. Chosen as bounded, conservative values; tune per
// deployment via the config package rather than editing these.
const (
	// DefaultMaxRetries is the consecutive-failure ceiling per send.
	DefaultMaxRetries = 3

	// DefaultWriteTimeout bounds one physical write.
	DefaultWriteTimeout = 100 * time.Millisecond

	// DefaultReadTimeout bounds one readback report.
	DefaultReadTimeout = 500 * time.Millisecond
)

// Policy is the immutable per-session retry and recovery configuration.
// It is copied at Open time; later mutation of the caller's value has no
// effect on a running session.
type Policy struct {
	// MaxRetries is the number of consecutive failed physical writes
	// after which a send gives up and the session fails. The worst case
	// for one logical send is exactly MaxRetries physical writes.
	MaxRetries int

	// Backoff tunes the delay inserted before each retry.
	Backoff BackoffConfig

	// Reopen permits re-acquiring the transport handle after a
	// disconnect. When false, a disconnect fails the session immediately.
	Reopen bool

	// WriteTimeout bounds each physical write. Callers can bound the
	// worst-case latency of a logical send via this, MaxRetries and the
	// backoff schedule.
	WriteTimeout time.Duration

	// ReadTimeout bounds each readback report read.
	ReadTimeout time.Duration
}

// DefaultPolicy returns the default retry policy: 3 retries, exponential
// backoff from 10ms, reopen permitted.
func DefaultPolicy() Policy {
	return Policy{
		MaxRetries:   DefaultMaxRetries,
		Reopen:       true,
		WriteTimeout: DefaultWriteTimeout,
		ReadTimeout:  DefaultReadTimeout,
	}
}

// withDefaults fills in zero fields with default values.
func (p Policy) withDefaults() Policy {
	if p.MaxRetries <= 0 {
		p.MaxRetries = DefaultMaxRetries
	}
	if p.WriteTimeout <= 0 {
		p.WriteTimeout = DefaultWriteTimeout
	}
	if p.ReadTimeout <= 0 {
		p.ReadTimeout = DefaultReadTimeout
	}
	return p
}
