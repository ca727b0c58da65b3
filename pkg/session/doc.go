// Package session binds an open transport handle to a discovered device
// and layers the command dispatch and write-recovery state machine on top.
//
// # State Machine
//
// A session is always in exactly one of four states:
//
//	DISCONNECTED ──open()──▶ CONNECTED ──write failure──▶ DEGRADED(n)
//	                             ▲                            │
//	                             │ write success              │ n reaches MaxRetries,
//	                             └────────────────────────────┤ or reopen fails
//	                                                          ▼
//	                                                       FAILED (terminal)
//
// Transient write failures (timeout, short write) are retried with the
// identical command frame after a backoff delay, transparently to the
// caller: one logical Draw or SetBrightness may cause several physical
// writes. A disconnect triggers one bounded reopen attempt per retry when
// the policy permits it. Once FAILED, a session never resurrects itself;
// the only recovery is opening a new session.
//
// # Concurrency
//
// A session is driven by one caller at a time. Send-family calls block for
// the duration of the write including retries and backoff; frame delivery
// to a low-refresh display is a bounded, infrequent operation, not a hot
// path. Multiple devices are driven by one independent session each;
// sessions share no state.
//
// # Retry Tuning
//
// All recovery behavior is configuration, not hard-coded: per-write
// timeout, retry ceiling, backoff schedule and reopen permission live in
// Policy and are immutable for the session's lifetime.
package session
