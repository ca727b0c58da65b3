package session

import (
	"fmt"

	"github.com/inputmodule/inputmodule-go/pkg/codec"
	"github.com/inputmodule/inputmodule-go/pkg/frame"
)

// Draw delivers a greyscale frame to the device. The frame shape must
// match the device kind's grid; intensities above the kind's ceiling are
// clamped by the codec. One logical Draw may perform several physical
// writes, transparently; either the whole frame is delivered or the call
// returns an error, never a partial frame.
func (s *Session) Draw(f *frame.Frame) error {
	cmds, err := codec.EncodeFrame(f, s.desc.Kind)
	if err != nil {
		// Encode errors are never retried; bad input stays bad.
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.send("draw", cmds...)
}

// DrawBitmap delivers a 1-bit bitmap using the single-shot draw command.
// LED matrix only.
func (s *Session) DrawBitmap(b *frame.Bitmap) error {
	cmd, err := codec.EncodeBitmap(b, s.desc.Kind)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.send("draw-bitmap", cmd)
}

// SetBrightness sets the global display brightness (0..255). Out-of-range
// levels fail with codec.ErrOutOfRange without touching the device.
func (s *Session) SetBrightness(level int) error {
	cmd, err := codec.EncodeBrightness(level)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.send("set-brightness", cmd)
}

// SetPattern displays a built-in firmware pattern.
func (s *Session) SetPattern(p codec.Pattern) error {
	cmd, err := codec.EncodePattern(p)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.send("set-pattern", cmd)
}

// SetPercentage displays the percentage pattern (a progress bar, 0..100).
func (s *Session) SetPercentage(value int) error {
	cmd, err := codec.EncodePercentage(value)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.send("set-percentage", cmd)
}

// SetSleep puts the display to sleep (true) or wakes it (false).
func (s *Session) SetSleep(sleep bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.send("set-sleep", codec.EncodeSleep(sleep))
}

// Animate toggles the firmware's scroll animation.
func (s *Session) Animate() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.send("animate", codec.EncodeAnimate())
}

// QueryStatus asks the device for its current status (brightness, sleep
// state, firmware version). The query write participates in the retry
// state machine; the readback uses the policy read timeout.
func (s *Session) QueryStatus() (codec.Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.send("query-status", codec.EncodeStatusQuery()); err != nil {
		return codec.Status{}, err
	}

	report, err := s.readReport()
	if err != nil {
		return codec.Status{}, fmt.Errorf("status readback: %w", err)
	}

	return codec.DecodeStatus(report)
}
