package session_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/inputmodule/inputmodule-go/internal/simulated"
	"github.com/inputmodule/inputmodule-go/pkg/codec"
	"github.com/inputmodule/inputmodule-go/pkg/descriptor"
	"github.com/inputmodule/inputmodule-go/pkg/frame"
	"github.com/inputmodule/inputmodule-go/pkg/log"
	"github.com/inputmodule/inputmodule-go/pkg/session"
	"github.com/inputmodule/inputmodule-go/pkg/transport"
)

// fastPolicy keeps retry delays negligible so failure-path tests run fast.
func fastPolicy() session.Policy {
	p := session.DefaultPolicy()
	p.Backoff.Schedule = []time.Duration{time.Millisecond}
	return p
}

func newMatrix(t *testing.T, path string) (*simulated.Device, *simulated.Bus, descriptor.Descriptor) {
	t.Helper()

	dev := simulated.NewDevice(path, descriptor.KindLedMatrix)
	bus := simulated.NewBus(dev)

	descs := descriptor.Discover(bus)
	if len(descs) != 1 {
		t.Fatalf("expected 1 descriptor, got %d", len(descs))
	}
	if descs[0].Kind != descriptor.KindLedMatrix {
		t.Fatalf("expected LED matrix kind, got %s", descs[0].Kind)
	}
	return dev, bus, descs[0]
}

// captureLogger records events for assertions.
type captureLogger struct {
	mu     sync.Mutex
	events []log.Event
}

func (l *captureLogger) Log(event log.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, event)
}

func (l *captureLogger) stateChanges() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	var out []string
	for _, e := range l.events {
		if e.StateChange != nil {
			out = append(out, e.StateChange.NewState)
		}
	}
	return out
}

func (l *captureLogger) retries() []log.RetryEvent {
	l.mu.Lock()
	defer l.mu.Unlock()

	var out []log.RetryEvent
	for _, e := range l.events {
		if e.Retry != nil {
			out = append(out, *e.Retry)
		}
	}
	return out
}

func TestOpen(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		_, bus, desc := newMatrix(t, "sim/1")

		s, err := session.Open(bus, desc, fastPolicy())
		if err != nil {
			t.Fatalf("open failed: %v", err)
		}
		defer s.Close()

		if s.State() != session.StateConnected {
			t.Errorf("expected CONNECTED, got %s", s.State())
		}
		if s.ID() == "" {
			t.Error("expected non-empty session ID")
		}
		if s.Descriptor().Path != "sim/1" {
			t.Errorf("unexpected descriptor path %q", s.Descriptor().Path)
		}
	})

	t.Run("Unavailable", func(t *testing.T) {
		bus := simulated.NewBus()

		_, err := session.Open(bus, descriptor.Descriptor{Path: "sim/none"}, fastPolicy())
		if !errors.Is(err, transport.ErrUnavailable) {
			t.Errorf("expected ErrUnavailable, got %v", err)
		}

		var openErr *transport.OpenError
		if !errors.As(err, &openErr) {
			t.Fatal("expected *transport.OpenError")
		}
		if openErr.Path != "sim/none" {
			t.Errorf("unexpected path %q in open error", openErr.Path)
		}
	})

	t.Run("AlreadyHeld", func(t *testing.T) {
		_, bus, desc := newMatrix(t, "sim/1")

		first, err := session.Open(bus, desc, fastPolicy())
		if err != nil {
			t.Fatalf("first open failed: %v", err)
		}
		defer first.Close()

		if _, err := session.Open(bus, desc, fastPolicy()); !errors.Is(err, transport.ErrAlreadyHeld) {
			t.Errorf("expected ErrAlreadyHeld, got %v", err)
		}

		// Closing the first session releases the reservation.
		if err := first.Close(); err != nil {
			t.Fatalf("close failed: %v", err)
		}
		second, err := session.Open(bus, desc, fastPolicy())
		if err != nil {
			t.Fatalf("open after close failed: %v", err)
		}
		second.Close()
	})

	t.Run("ZeroPolicyGetsDefaults", func(t *testing.T) {
		_, bus, desc := newMatrix(t, "sim/1")

		s, err := session.Open(bus, desc, session.Policy{})
		if err != nil {
			t.Fatalf("open failed: %v", err)
		}
		defer s.Close()

		p := s.Policy()
		if p.MaxRetries != session.DefaultMaxRetries {
			t.Errorf("expected default MaxRetries %d, got %d", session.DefaultMaxRetries, p.MaxRetries)
		}
		if p.WriteTimeout != session.DefaultWriteTimeout {
			t.Errorf("expected default WriteTimeout %v, got %v", session.DefaultWriteTimeout, p.WriteTimeout)
		}
	})
}

func TestClose(t *testing.T) {
	dev, bus, desc := newMatrix(t, "sim/1")

	s, err := session.Open(bus, desc, fastPolicy())
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}

	if err := s.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second close failed: %v", err)
	}
	if s.State() != session.StateClosed {
		t.Errorf("expected CLOSED, got %s", s.State())
	}

	if err := s.SetBrightness(10); !errors.Is(err, session.ErrSessionClosed) {
		t.Errorf("expected ErrSessionClosed, got %v", err)
	}
	if dev.WriteCount() != 0 {
		t.Errorf("expected no writes after close, got %d", dev.WriteCount())
	}
}

func TestSendRetry(t *testing.T) {
	t.Run("FailuresThenSuccess", func(t *testing.T) {
		// MaxRetries-1 consecutive failures then success: the command is
		// delivered with exactly MaxRetries physical writes.
		dev, bus, desc := newMatrix(t, "sim/1")
		dev.WriteScript = []error{transport.ErrWriteTimeout, transport.ErrShortWrite}

		logger := &captureLogger{}
		s, err := session.Open(bus, desc, fastPolicy(), session.WithLogger(logger))
		if err != nil {
			t.Fatalf("open failed: %v", err)
		}
		defer s.Close()

		if err := s.SetBrightness(0x80); err != nil {
			t.Fatalf("expected send to recover, got %v", err)
		}

		if dev.WriteCount() != 3 {
			t.Errorf("expected exactly 3 physical writes, got %d", dev.WriteCount())
		}
		if s.State() != session.StateConnected {
			t.Errorf("expected CONNECTED after recovery, got %s", s.State())
		}
		if s.RetryCount() != 0 {
			t.Errorf("expected retry counter reset, got %d", s.RetryCount())
		}
		if dev.Status.Brightness != 0x80 {
			t.Errorf("expected brightness 0x80, got 0x%02x", dev.Status.Brightness)
		}

		// Every retried attempt carries the identical frame.
		writes := dev.Writes()
		for i := 1; i < len(writes); i++ {
			if string(writes[i]) != string(writes[0]) {
				t.Errorf("attempt %d differs from the original frame", i)
			}
		}

		if got := len(logger.retries()); got != 2 {
			t.Errorf("expected 2 retry events, got %d", got)
		}
		states := logger.stateChanges()
		if len(states) == 0 || states[len(states)-1] != "CONNECTED" {
			t.Errorf("expected final state change to CONNECTED, got %v", states)
		}
	})

	t.Run("RetriesExhausted", func(t *testing.T) {
		dev, bus, desc := newMatrix(t, "sim/1")
		dev.WriteScript = []error{
			transport.ErrWriteTimeout,
			transport.ErrWriteTimeout,
			transport.ErrWriteTimeout,
		}

		s, err := session.Open(bus, desc, fastPolicy())
		if err != nil {
			t.Fatalf("open failed: %v", err)
		}
		defer s.Close()

		err = s.SetBrightness(1)
		if !errors.Is(err, session.ErrRetriesExhausted) {
			t.Fatalf("expected ErrRetriesExhausted, got %v", err)
		}

		var sendErr *session.SendError
		if !errors.As(err, &sendErr) {
			t.Fatal("expected *session.SendError")
		}
		if sendErr.Attempts != 3 {
			t.Errorf("expected 3 attempts, got %d", sendErr.Attempts)
		}
		if sendErr.Command != "set-brightness" {
			t.Errorf("unexpected command name %q", sendErr.Command)
		}

		if dev.WriteCount() != 3 {
			t.Errorf("expected exactly 3 physical writes, got %d", dev.WriteCount())
		}
		if s.State() != session.StateFailed {
			t.Errorf("expected FAILED, got %s", s.State())
		}
	})

	t.Run("FailedSessionPerformsNoIO", func(t *testing.T) {
		dev, bus, desc := newMatrix(t, "sim/1")
		dev.WriteScript = []error{
			transport.ErrWriteTimeout,
			transport.ErrWriteTimeout,
			transport.ErrWriteTimeout,
		}

		s, err := session.Open(bus, desc, fastPolicy())
		if err != nil {
			t.Fatalf("open failed: %v", err)
		}
		defer s.Close()

		if err := s.SetBrightness(1); !errors.Is(err, session.ErrRetriesExhausted) {
			t.Fatalf("expected ErrRetriesExhausted, got %v", err)
		}
		before := dev.WriteCount()

		if err := s.SetBrightness(2); !errors.Is(err, session.ErrSessionFailed) {
			t.Errorf("expected ErrSessionFailed, got %v", err)
		}
		if dev.WriteCount() != before {
			t.Errorf("failed session wrote to the device: %d -> %d", before, dev.WriteCount())
		}
	})

	t.Run("BackoffScheduleTiming", func(t *testing.T) {
		dev, bus, desc := newMatrix(t, "sim/1")
		dev.WriteScript = []error{transport.ErrWriteTimeout, transport.ErrWriteTimeout}

		policy := session.DefaultPolicy()
		policy.Backoff.Schedule = []time.Duration{10 * time.Millisecond, 20 * time.Millisecond}

		s, err := session.Open(bus, desc, policy)
		if err != nil {
			t.Fatalf("open failed: %v", err)
		}
		defer s.Close()

		start := time.Now()
		if err := s.SetBrightness(1); err != nil {
			t.Fatalf("expected send to recover, got %v", err)
		}
		elapsed := time.Since(start)

		if elapsed < 30*time.Millisecond {
			t.Errorf("expected at least 30ms of backoff, elapsed %v", elapsed)
		}
	})

	t.Run("EncodeErrorWithoutWrites", func(t *testing.T) {
		dev, bus, desc := newMatrix(t, "sim/1")

		s, err := session.Open(bus, desc, fastPolicy())
		if err != nil {
			t.Fatalf("open failed: %v", err)
		}
		defer s.Close()

		if err := s.SetBrightness(300); !errors.Is(err, codec.ErrOutOfRange) {
			t.Errorf("expected ErrOutOfRange, got %v", err)
		}
		if err := s.Draw(frame.MustNew(3, 3)); !errors.Is(err, codec.ErrDimensionMismatch) {
			t.Errorf("expected ErrDimensionMismatch, got %v", err)
		}
		if dev.WriteCount() != 0 {
			t.Errorf("encode errors must not touch the device, got %d writes", dev.WriteCount())
		}
		if s.State() != session.StateConnected {
			t.Errorf("expected CONNECTED, got %s", s.State())
		}
	})
}

func TestDisconnectRecovery(t *testing.T) {
	t.Run("ReopenAndResend", func(t *testing.T) {
		dev, bus, desc := newMatrix(t, "sim/1")
		dev.WriteScript = []error{transport.ErrDisconnected}

		logger := &captureLogger{}
		s, err := session.Open(bus, desc, fastPolicy(), session.WithLogger(logger))
		if err != nil {
			t.Fatalf("open failed: %v", err)
		}
		defer s.Close()

		if err := s.SetBrightness(0x20); err != nil {
			t.Fatalf("expected reopen to recover, got %v", err)
		}

		if dev.WriteCount() != 2 {
			t.Errorf("expected 2 physical writes, got %d", dev.WriteCount())
		}
		if s.State() != session.StateConnected {
			t.Errorf("expected CONNECTED, got %s", s.State())
		}
		if dev.Status.Brightness != 0x20 {
			t.Errorf("expected brightness 0x20, got 0x%02x", dev.Status.Brightness)
		}

		retries := logger.retries()
		if len(retries) != 1 || !retries[0].Reopened {
			t.Errorf("expected one reopened retry event, got %+v", retries)
		}
	})

	t.Run("ReopenDisabled", func(t *testing.T) {
		dev, bus, desc := newMatrix(t, "sim/1")
		dev.WriteScript = []error{transport.ErrDisconnected}

		policy := fastPolicy()
		policy.Reopen = false

		s, err := session.Open(bus, desc, policy)
		if err != nil {
			t.Fatalf("open failed: %v", err)
		}
		defer s.Close()

		if err := s.SetBrightness(1); !errors.Is(err, session.ErrSessionFailed) {
			t.Errorf("expected ErrSessionFailed, got %v", err)
		}
		if dev.WriteCount() != 1 {
			t.Errorf("expected a single write, got %d", dev.WriteCount())
		}
		if s.State() != session.StateFailed {
			t.Errorf("expected FAILED, got %s", s.State())
		}
	})

	t.Run("ReopenFails", func(t *testing.T) {
		dev, bus, desc := newMatrix(t, "sim/1")
		// First open (session.Open) succeeds, the reopen attempt does not.
		dev.OpenScript = []error{nil, transport.ErrUnavailable}
		dev.WriteScript = []error{transport.ErrDisconnected}

		s, err := session.Open(bus, desc, fastPolicy())
		if err != nil {
			t.Fatalf("open failed: %v", err)
		}
		defer s.Close()

		if err := s.SetBrightness(1); !errors.Is(err, session.ErrSessionFailed) {
			t.Errorf("expected ErrSessionFailed, got %v", err)
		}
		if s.State() != session.StateFailed {
			t.Errorf("expected FAILED, got %s", s.State())
		}
	})

	t.Run("DisconnectsCountTowardCeiling", func(t *testing.T) {
		dev, bus, desc := newMatrix(t, "sim/1")
		dev.WriteScript = []error{
			transport.ErrDisconnected,
			transport.ErrDisconnected,
			transport.ErrDisconnected,
		}

		s, err := session.Open(bus, desc, fastPolicy())
		if err != nil {
			t.Fatalf("open failed: %v", err)
		}
		defer s.Close()

		if err := s.SetBrightness(1); !errors.Is(err, session.ErrRetriesExhausted) {
			t.Errorf("expected ErrRetriesExhausted, got %v", err)
		}
		if dev.WriteCount() != 3 {
			t.Errorf("expected 3 physical writes, got %d", dev.WriteCount())
		}
		if s.State() != session.StateFailed {
			t.Errorf("expected FAILED, got %s", s.State())
		}
	})
}

func TestDraw(t *testing.T) {
	t.Run("FullFrameDelivered", func(t *testing.T) {
		dev, bus, desc := newMatrix(t, "sim/1")

		s, err := session.Open(bus, desc, fastPolicy())
		if err != nil {
			t.Fatalf("open failed: %v", err)
		}
		defer s.Close()

		f := frame.MustNew(codec.MatrixWidth, codec.MatrixHeight)
		f.DrawBox(2, 5, 6, 25, 0xAA)

		if err := s.Draw(f); err != nil {
			t.Fatalf("draw failed: %v", err)
		}

		// One stage per column plus the flush.
		if dev.WriteCount() != codec.MatrixWidth+1 {
			t.Errorf("expected %d writes, got %d", codec.MatrixWidth+1, dev.WriteCount())
		}

		shown := dev.Displayed()
		if shown == nil {
			t.Fatal("expected a displayed frame after flush")
		}
		for x := 0; x < codec.MatrixWidth; x++ {
			for y := 0; y < codec.MatrixHeight; y++ {
				want, _ := f.At(x, y)
				got, _ := shown.At(x, y)
				if got != want {
					t.Fatalf("pixel (%d, %d): want %d, got %d", x, y, want, got)
				}
			}
		}
	})

	t.Run("MidFrameRetry", func(t *testing.T) {
		// A failure in the middle of the staged sequence retries only the
		// failed column; the full frame still arrives.
		dev, bus, desc := newMatrix(t, "sim/1")
		dev.WriteScript = []error{nil, nil, nil, transport.ErrWriteTimeout}

		s, err := session.Open(bus, desc, fastPolicy())
		if err != nil {
			t.Fatalf("open failed: %v", err)
		}
		defer s.Close()

		f := frame.MustNew(codec.MatrixWidth, codec.MatrixHeight)
		f.Fill(7)

		if err := s.Draw(f); err != nil {
			t.Fatalf("draw failed: %v", err)
		}
		if dev.WriteCount() != codec.MatrixWidth+2 {
			t.Errorf("expected %d writes, got %d", codec.MatrixWidth+2, dev.WriteCount())
		}

		shown := dev.Displayed()
		if shown == nil {
			t.Fatal("expected a displayed frame after flush")
		}
		if v, _ := shown.At(3, 0); v != 7 {
			t.Errorf("expected retried column to be delivered, got %d", v)
		}
	})

	t.Run("Bitmap", func(t *testing.T) {
		dev, bus, desc := newMatrix(t, "sim/1")

		s, err := session.Open(bus, desc, fastPolicy())
		if err != nil {
			t.Fatalf("open failed: %v", err)
		}
		defer s.Close()

		b := frame.MustNewBitmap(codec.MatrixWidth, codec.MatrixHeight)
		if err := b.Set(0, 0, true); err != nil {
			t.Fatal(err)
		}

		if err := s.DrawBitmap(b); err != nil {
			t.Fatalf("draw bitmap failed: %v", err)
		}
		if dev.WriteCount() != 1 {
			t.Errorf("expected a single write, got %d", dev.WriteCount())
		}

		payload := dev.Bitmap()
		if len(payload) != codec.DrawPayloadLen {
			t.Fatalf("expected %d payload bytes, got %d", codec.DrawPayloadLen, len(payload))
		}
		if payload[0]&1 == 0 {
			t.Error("expected pixel (0, 0) bit set")
		}
	})
}

func TestQueryStatus(t *testing.T) {
	dev, bus, desc := newMatrix(t, "sim/1")
	dev.Status = codec.Status{
		Brightness: 0x40,
		Sleeping:   false,
		Version:    codec.FirmwareVersion{Major: 0, Minor: 2, Patch: 0},
	}

	s, err := session.Open(bus, desc, fastPolicy())
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	defer s.Close()

	status, err := s.QueryStatus()
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if status != dev.Status {
		t.Errorf("expected %+v, got %+v", dev.Status, status)
	}

	// A status query reflects earlier commands.
	if err := s.SetBrightness(0x99); err != nil {
		t.Fatal(err)
	}
	if err := s.SetSleep(true); err != nil {
		t.Fatal(err)
	}

	status, err = s.QueryStatus()
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if status.Brightness != 0x99 || !status.Sleeping {
		t.Errorf("expected brightness 0x99 sleeping, got %+v", status)
	}
}

func TestPatternCommands(t *testing.T) {
	dev, bus, desc := newMatrix(t, "sim/1")

	s, err := session.Open(bus, desc, fastPolicy())
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	defer s.Close()

	if err := s.SetPattern(codec.PatternGradient); err != nil {
		t.Fatalf("set pattern failed: %v", err)
	}
	if err := s.SetPercentage(75); err != nil {
		t.Fatalf("set percentage failed: %v", err)
	}
	if err := s.Animate(); err != nil {
		t.Fatalf("animate failed: %v", err)
	}

	if err := s.SetPercentage(101); !errors.Is(err, codec.ErrOutOfRange) {
		t.Errorf("expected ErrOutOfRange, got %v", err)
	}
	if dev.WriteCount() != 3 {
		t.Errorf("expected 3 writes, got %d", dev.WriteCount())
	}
}
