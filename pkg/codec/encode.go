package codec

import (
	"fmt"

	"github.com/inputmodule/inputmodule-go/pkg/descriptor"
	"github.com/inputmodule/inputmodule-go/pkg/frame"
)

// BrightnessMax is the top of the global brightness scale.
const BrightnessMax = 255

// PercentageMax is the top of the percentage pattern scale.
const PercentageMax = 100

// EncodeFrame encodes a greyscale frame for the given device kind,
// returning the command sequence that delivers it. Intensities above the
// kind's legal ceiling are clamped; a frame whose shape does not match the
// kind's grid fails with ErrDimensionMismatch.
func EncodeFrame(f *frame.Frame, kind descriptor.Kind) ([]Command, error) {
	spec, ok := kindSpecs[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}
	if f.Width() != spec.width || f.Height() != spec.height {
		return nil, fmt.Errorf("%w: frame is %dx%d, %s expects %dx%d",
			ErrDimensionMismatch, f.Width(), f.Height(), kind, spec.width, spec.height)
	}
	return spec.encode(f, spec), nil
}

// DecodeFrame rebuilds the frame delivered by a command sequence produced
// with EncodeFrame for the same kind. Used for readback verification and
// by simulated devices.
func DecodeFrame(cmds []Command, kind descriptor.Kind) (*frame.Frame, error) {
	spec, ok := kindSpecs[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}
	return spec.decode(cmds, spec)
}

// EncodeBitmap encodes a 1-bit bitmap as a single Draw command.
// Only the LED matrix kind supports the bit-packed draw path.
func EncodeBitmap(b *frame.Bitmap, kind descriptor.Kind) (Command, error) {
	if kind != descriptor.KindLedMatrix {
		return nil, fmt.Errorf("%w: %s has no bitmap draw", ErrUnknownKind, kind)
	}
	if b.Width() != MatrixWidth || b.Height() != MatrixHeight {
		return nil, fmt.Errorf("%w: bitmap is %dx%d, %s expects %dx%d",
			ErrDimensionMismatch, b.Width(), b.Height(), kind, MatrixWidth, MatrixHeight)
	}

	payload := make([]byte, DrawPayloadLen)
	copy(payload, b.Data())
	return newCommand(CmdDraw, payload...), nil
}

// EncodeBrightness encodes a global brightness command. The level must be
// on the device's 0..255 scale; out-of-range levels fail with ErrOutOfRange
// rather than clamping, since brightness is a discrete global setting.
func EncodeBrightness(level int) (Command, error) {
	if level < 0 || level > BrightnessMax {
		return nil, fmt.Errorf("%w: brightness %d not in [0, %d]", ErrOutOfRange, level, BrightnessMax)
	}
	return newCommand(CmdBrightness, byte(level)), nil
}

// Pattern is a built-in firmware animation.
type Pattern uint8

// Built-in patterns. PatternPercentage is not listed here: it takes a
// value and is encoded with EncodePercentage.
const (
	PatternGradient       Pattern = 0x01
	PatternDoubleGradient Pattern = 0x02
	PatternLotus          Pattern = 0x03
	PatternZigZag         Pattern = 0x04
	PatternFullBrightness Pattern = 0x05
	PatternPanic          Pattern = 0x06
	PatternLotus2         Pattern = 0x07
)

// String returns the pattern name.
func (p Pattern) String() string {
	switch p {
	case PatternGradient:
		return "GRADIENT"
	case PatternDoubleGradient:
		return "DOUBLE_GRADIENT"
	case PatternLotus:
		return "LOTUS"
	case PatternZigZag:
		return "ZIGZAG"
	case PatternFullBrightness:
		return "FULL_BRIGHTNESS"
	case PatternPanic:
		return "PANIC"
	case PatternLotus2:
		return "LOTUS2"
	default:
		return "UNKNOWN"
	}
}

// IsValid reports whether p names a built-in pattern.
func (p Pattern) IsValid() bool {
	return p >= PatternGradient && p <= PatternLotus2
}

// EncodePattern encodes a built-in pattern command.
func EncodePattern(p Pattern) (Command, error) {
	if !p.IsValid() {
		return nil, fmt.Errorf("%w: pattern 0x%02x", ErrOutOfRange, uint8(p))
	}
	return newCommand(CmdPattern, byte(p)), nil
}

// EncodePercentage encodes the percentage pattern (a progress bar).
// The value must be in [0, 100].
func EncodePercentage(value int) (Command, error) {
	if value < 0 || value > PercentageMax {
		return nil, fmt.Errorf("%w: percentage %d not in [0, %d]", ErrOutOfRange, value, PercentageMax)
	}
	return newCommand(CmdPattern, 0x00, byte(value)), nil
}

// EncodeSleep encodes a sleep (true) or wake (false) command.
func EncodeSleep(sleep bool) Command {
	v := byte(0)
	if sleep {
		v = 1
	}
	return newCommand(CmdSleep, v)
}

// EncodeAnimate encodes the scroll-animation toggle command.
func EncodeAnimate() Command {
	return newCommand(CmdAnimate)
}

// EncodeStatusQuery encodes the status readback query. The device answers
// with a report decodable by DecodeStatus.
func EncodeStatusQuery() Command {
	return newCommand(CmdVersion)
}

// EncodeBootloader encodes the jump-to-bootloader command.
// The device reboots and leaves the bus; any open session will observe a
// disconnect.
func EncodeBootloader() Command {
	return newCommand(CmdBootloader)
}

// EncodePanic encodes the firmware panic test command.
// Like EncodeBootloader, this takes the device off the bus.
func EncodePanic() Command {
	return newCommand(CmdPanic)
}
