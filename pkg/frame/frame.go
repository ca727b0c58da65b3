package frame

import (
	"errors"
	"fmt"
)

// Buffer errors.
var (
	// ErrOutOfBounds indicates a coordinate outside the buffer.
	ErrOutOfBounds = errors.New("coordinate out of bounds")

	// ErrInvalidSize indicates non-positive dimensions.
	ErrInvalidSize = errors.New("invalid buffer size")
)

// Frame is a two-dimensional grid of 8-bit intensity values.
// Storage is column-major: column x occupies data[x*height : (x+1)*height].
type Frame struct {
	width  int
	height int
	data   []byte
}

// New creates a zeroed frame with the given dimensions.
func New(width, height int) (*Frame, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	return &Frame{
		width:  width,
		height: height,
		data:   make([]byte, width*height),
	}, nil
}

// MustNew is New but panics on invalid dimensions.
// Intended for fixed, known-good sizes.
func MustNew(width, height int) *Frame {
	f, err := New(width, height)
	if err != nil {
		panic(err)
	}
	return f
}

// Width returns the frame width in pixels.
func (f *Frame) Width() int {
	return f.width
}

// Height returns the frame height in pixels.
func (f *Frame) Height() int {
	return f.height
}

// Data returns the underlying column-major pixel data.
// The slice is live; mutating it mutates the frame.
func (f *Frame) Data() []byte {
	return f.data
}

// At returns the intensity at (x, y).
func (f *Frame) At(x, y int) (byte, error) {
	if err := f.check(x, y); err != nil {
		return 0, err
	}
	return f.data[x*f.height+y], nil
}

// Set writes the intensity at (x, y).
func (f *Frame) Set(x, y int, value byte) error {
	if err := f.check(x, y); err != nil {
		return err
	}
	f.data[x*f.height+y] = value
	return nil
}

// Fill sets every pixel to the given intensity.
func (f *Frame) Fill(value byte) {
	for i := range f.data {
		f.data[i] = value
	}
}

// DrawBox fills the rectangle spanned by (x1, y1) and (x2, y2), inclusive.
// Corners may be given in any order. Coordinates are clipped to the frame.
func (f *Frame) DrawBox(x1, y1, x2, y2 int, value byte) {
	xMin, xMax := minMax(x1, x2)
	yMin, yMax := minMax(y1, y2)

	xMin = clip(xMin, 0, f.width-1)
	xMax = clip(xMax, 0, f.width-1)
	yMin = clip(yMin, 0, f.height-1)
	yMax = clip(yMax, 0, f.height-1)

	for x := xMin; x <= xMax; x++ {
		col := f.data[x*f.height : (x+1)*f.height]
		for y := yMin; y <= yMax; y++ {
			col[y] = value
		}
	}
}

// Column returns the pixel data of column x.
// The slice is live; mutating it mutates the frame.
func (f *Frame) Column(x int) ([]byte, error) {
	if x < 0 || x >= f.width {
		return nil, fmt.Errorf("%w: column %d", ErrOutOfBounds, x)
	}
	return f.data[x*f.height : (x+1)*f.height], nil
}

// Clone returns a deep copy of the frame.
func (f *Frame) Clone() *Frame {
	data := make([]byte, len(f.data))
	copy(data, f.data)
	return &Frame{width: f.width, height: f.height, data: data}
}

// check validates a coordinate pair.
func (f *Frame) check(x, y int) error {
	if x < 0 || x >= f.width {
		return fmt.Errorf("%w: x=%d (width %d)", ErrOutOfBounds, x, f.width)
	}
	if y < 0 || y >= f.height {
		return fmt.Errorf("%w: y=%d (height %d)", ErrOutOfBounds, y, f.height)
	}
	return nil
}

func minMax(a, b int) (int, int) {
	if a > b {
		return b, a
	}
	return a, b
}

func clip(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
