// Package log provides structured protocol event logging for input module
// sessions.
//
// Instead of free-form text, every layer emits typed Events: raw reports at
// the transport layer, encoded commands at the codec layer, state changes
// and retries at the session layer. Applications choose a sink:
//
//   - NoopLogger discards everything (the default).
//   - FileLogger appends CBOR-encoded events to a file for later replay.
//   - SlogAdapter bridges events to log/slog for console output.
//   - MultiLogger fans out to several sinks at once.
//
// Reader iterates a CBOR event file, optionally filtered by session,
// layer, category or time range.
package log
