package transport

import (
	"sync"
	"time"

	"github.com/inputmodule/inputmodule-go/pkg/descriptor"
	"github.com/inputmodule/inputmodule-go/pkg/log"
)

// MaxLogReportSize is the maximum report size to include in log events.
const MaxLogReportSize = 256

// Handle owns exactly one open channel to a device. It layers timeout
// validation, short-write detection and idempotent close on top of the raw
// Conn. A Handle performs no payload interpretation.
//
// Handle is safe for use by one goroutine at a time; the session layer
// never drives it concurrently.
type Handle struct {
	desc descriptor.Descriptor
	conn Conn

	mu     sync.Mutex
	closed bool

	// Logging support (optional)
	logger    log.Logger
	sessionID string
}

// Open acquires a handle for the device identified by desc via the given
// registry. On failure the returned error is an *OpenError whose cause is
// one of ErrUnavailable, ErrPermissionDenied or ErrAlreadyHeld.
func Open(reg Registry, desc descriptor.Descriptor) (*Handle, error) {
	conn, err := reg.OpenPath(desc.Path)
	if err != nil {
		return nil, &OpenError{Path: desc.Path, Err: err}
	}
	return &Handle{desc: desc, conn: conn}, nil
}

// Descriptor returns the descriptor this handle was opened against.
func (h *Handle) Descriptor() descriptor.Descriptor {
	return h.desc
}

// SetLogger configures protocol event logging for this handle.
// Pass nil to disable logging.
func (h *Handle) SetLogger(logger log.Logger, sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.logger = logger
	h.sessionID = sessionID
}

// Write sends one command report, blocking at most for the given timeout.
// A write that accepts fewer bytes than given fails with ErrShortWrite.
func (h *Handle) Write(p []byte, timeout time.Duration) error {
	if timeout <= 0 {
		return ErrInvalidTimeout
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return ErrHandleClosed
	}

	n, err := h.conn.Write(p, timeout)
	if err != nil {
		h.logError(err, "write")
		return err
	}
	if n < len(p) {
		h.logError(ErrShortWrite, "write")
		return ErrShortWrite
	}

	h.logReport(p, log.DirectionOut)
	return nil
}

// Read receives one report into p, blocking at most for the given timeout.
// Returns the number of bytes read.
func (h *Handle) Read(p []byte, timeout time.Duration) (int, error) {
	if timeout <= 0 {
		return 0, ErrInvalidTimeout
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return 0, ErrHandleClosed
	}

	n, err := h.conn.Read(p, timeout)
	if err != nil {
		h.logError(err, "read")
		return 0, err
	}

	h.logReport(p[:n], log.DirectionIn)
	return n, nil
}

// Close releases the underlying channel. Safe to call multiple times;
// only the first call reaches the device.
func (h *Handle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil
	}
	h.closed = true
	return h.conn.Close()
}

// logReport emits a transport-layer report event.
func (h *Handle) logReport(data []byte, direction log.Direction) {
	if h.logger == nil {
		return
	}

	reportData := data
	truncated := false
	if len(data) > MaxLogReportSize {
		reportData = data[:MaxLogReportSize]
		truncated = true
	}

	h.logger.Log(log.Event{
		Timestamp:  time.Now(),
		SessionID:  h.sessionID,
		DevicePath: h.desc.Path,
		Direction:  direction,
		Layer:      log.LayerTransport,
		Category:   log.CategoryReport,
		Report: &log.ReportEvent{
			Size:      len(data),
			Data:      reportData,
			Truncated: truncated,
		},
	})
}

// logError emits a transport-layer error event.
func (h *Handle) logError(err error, context string) {
	if h.logger == nil {
		return
	}

	h.logger.Log(log.Event{
		Timestamp:  time.Now(),
		SessionID:  h.sessionID,
		DevicePath: h.desc.Path,
		Direction:  log.DirectionOut,
		Layer:      log.LayerTransport,
		Category:   log.CategoryError,
		Error: &log.ErrorEventData{
			Layer:   log.LayerTransport,
			Message: err.Error(),
			Context: context,
		},
	})
}
