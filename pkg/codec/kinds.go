package codec

import (
	"fmt"

	"github.com/inputmodule/inputmodule-go/pkg/descriptor"
	"github.com/inputmodule/inputmodule-go/pkg/frame"
)

// Grid dimensions per device kind.
const (
	// MatrixWidth and MatrixHeight are the LED matrix grid dimensions.
	MatrixWidth  = 9
	MatrixHeight = 34

	// BacklightZones is the number of keyboard backlight zones.
	BacklightZones = 4

	// BacklightMaxIntensity is the backlight per-zone scale (percent).
	BacklightMaxIntensity = 100
)

// kindSpec is one entry of the closed per-kind encoding strategy table.
// Each strategy is a pure encode/decode pair with no shared state.
type kindSpec struct {
	width        int
	height       int
	maxIntensity byte
	encode       func(f *frame.Frame, spec kindSpec) []Command
	decode       func(cmds []Command, spec kindSpec) (*frame.Frame, error)
}

// kindSpecs is the strategy table, keyed by device kind. Kinds not in the
// table (KindOther) cannot encode frames.
var kindSpecs = map[descriptor.Kind]kindSpec{
	descriptor.KindLedMatrix: {
		width:        MatrixWidth,
		height:       MatrixHeight,
		maxIntensity: 0xFF,
		encode:       encodeColumnStaged,
		decode:       decodeColumnStaged,
	},
	descriptor.KindKeyboardBacklight: {
		width:        BacklightZones,
		height:       1,
		maxIntensity: BacklightMaxIntensity,
		encode:       encodePerCell,
		decode:       decodePerCell,
	},
}

// GridSize returns the frame dimensions expected for a device kind.
// ok is false for kinds without a display grid.
func GridSize(kind descriptor.Kind) (width, height int, ok bool) {
	spec, found := kindSpecs[kind]
	if !found {
		return 0, 0, false
	}
	return spec.width, spec.height, true
}

// MaxIntensity returns the legal per-pixel intensity ceiling for a kind.
// ok is false for kinds without a display grid.
func MaxIntensity(kind descriptor.Kind) (byte, bool) {
	spec, found := kindSpecs[kind]
	if !found {
		return 0, false
	}
	return spec.maxIntensity, true
}

// clampIntensity clamps a pixel value to the kind's legal ceiling.
func clampIntensity(v, max byte) byte {
	if v > max {
		return max
	}
	return v
}

// encodeColumnStaged packs a greyscale frame as one StageColumn command
// per column followed by a FlushColumns. The flush makes the staged frame
// visible atomically.
func encodeColumnStaged(f *frame.Frame, spec kindSpec) []Command {
	cmds := make([]Command, 0, spec.width+1)

	for x := 0; x < spec.width; x++ {
		col, _ := f.Column(x)
		payload := make([]byte, 1+spec.height)
		payload[0] = byte(x)
		for y, v := range col {
			payload[1+y] = clampIntensity(v, spec.maxIntensity)
		}
		cmds = append(cmds, newCommand(CmdStageColumn, payload...))
	}

	cmds = append(cmds, newCommand(CmdFlushColumns))
	return cmds
}

// decodeColumnStaged rebuilds a frame from a staged-column command
// sequence. The inverse of encodeColumnStaged.
func decodeColumnStaged(cmds []Command, spec kindSpec) (*frame.Frame, error) {
	f, err := frame.New(spec.width, spec.height)
	if err != nil {
		return nil, err
	}

	staged := make([]bool, spec.width)
	flushed := false

	for _, cmd := range cmds {
		id, err := cmd.ID()
		if err != nil {
			return nil, err
		}

		switch id {
		case CmdStageColumn:
			payload := cmd.Payload()
			if len(payload) != 1+spec.height {
				return nil, fmt.Errorf("%w: stage column payload %d bytes, want %d",
					ErrMalformed, len(payload), 1+spec.height)
			}
			x := int(payload[0])
			if x >= spec.width {
				return nil, fmt.Errorf("%w: column index %d out of range", ErrMalformed, x)
			}
			col, _ := f.Column(x)
			copy(col, payload[1:])
			staged[x] = true

		case CmdFlushColumns:
			flushed = true

		default:
			return nil, fmt.Errorf("%w: unexpected command %s in staged sequence", ErrMalformed, id)
		}
	}

	if !flushed {
		return nil, fmt.Errorf("%w: staged sequence missing flush", ErrMalformed)
	}
	for x, ok := range staged {
		if !ok {
			return nil, fmt.Errorf("%w: column %d never staged", ErrMalformed, x)
		}
	}

	return f, nil
}

// encodePerCell packs a frame as a single Draw command with one intensity
// byte per cell, row-major over a one-row grid.
func encodePerCell(f *frame.Frame, spec kindSpec) []Command {
	payload := make([]byte, spec.width*spec.height)
	for i, v := range f.Data() {
		payload[i] = clampIntensity(v, spec.maxIntensity)
	}
	return []Command{newCommand(CmdDraw, payload...)}
}

// decodePerCell rebuilds a frame from a per-cell Draw command.
func decodePerCell(cmds []Command, spec kindSpec) (*frame.Frame, error) {
	if len(cmds) != 1 {
		return nil, fmt.Errorf("%w: per-cell sequence has %d commands, want 1", ErrMalformed, len(cmds))
	}

	id, err := cmds[0].ID()
	if err != nil {
		return nil, err
	}
	if id != CmdDraw {
		return nil, fmt.Errorf("%w: unexpected command %s in per-cell sequence", ErrMalformed, id)
	}

	payload := cmds[0].Payload()
	if len(payload) != spec.width*spec.height {
		return nil, fmt.Errorf("%w: per-cell payload %d bytes, want %d",
			ErrMalformed, len(payload), spec.width*spec.height)
	}

	f, err := frame.New(spec.width, spec.height)
	if err != nil {
		return nil, err
	}
	copy(f.Data(), payload)
	return f, nil
}
