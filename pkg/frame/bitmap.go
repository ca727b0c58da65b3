package frame

import (
	"fmt"
)

// Bitmap is a two-dimensional grid of 1-bit pixels for the single-shot
// draw command. Pixels are bit-packed over the column-major pixel
// sequence: pixel (x, y) is bit (x*height + y) % 8 of byte
// (x*height + y) / 8, LSB first.
type Bitmap struct {
	width  int
	height int
	data   []byte
}

// NewBitmap creates a cleared bitmap with the given dimensions.
func NewBitmap(width, height int) (*Bitmap, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	return &Bitmap{
		width:  width,
		height: height,
		data:   make([]byte, (width*height+7)/8),
	}, nil
}

// MustNewBitmap is NewBitmap but panics on invalid dimensions.
func MustNewBitmap(width, height int) *Bitmap {
	b, err := NewBitmap(width, height)
	if err != nil {
		panic(err)
	}
	return b
}

// Width returns the bitmap width in pixels.
func (b *Bitmap) Width() int {
	return b.width
}

// Height returns the bitmap height in pixels.
func (b *Bitmap) Height() int {
	return b.height
}

// Data returns the packed pixel data.
// The slice is live; mutating it mutates the bitmap.
func (b *Bitmap) Data() []byte {
	return b.data
}

// At returns the pixel at (x, y).
func (b *Bitmap) At(x, y int) (bool, error) {
	if err := b.check(x, y); err != nil {
		return false, err
	}
	location := x*b.height + y
	return b.data[location/8]&(1<<(location%8)) != 0, nil
}

// Set writes the pixel at (x, y).
func (b *Bitmap) Set(x, y int, on bool) error {
	if err := b.check(x, y); err != nil {
		return err
	}
	location := x*b.height + y
	mask := byte(1) << (location % 8)
	if on {
		b.data[location/8] |= mask
	} else {
		b.data[location/8] &^= mask
	}
	return nil
}

// Fill sets every pixel on or off.
func (b *Bitmap) Fill(on bool) {
	v := byte(0)
	if on {
		v = 0xFF
	}
	for i := range b.data {
		b.data[i] = v
	}
}

// check validates a coordinate pair.
func (b *Bitmap) check(x, y int) error {
	if x < 0 || x >= b.width {
		return fmt.Errorf("%w: x=%d (width %d)", ErrOutOfBounds, x, b.width)
	}
	if y < 0 || y >= b.height {
		return fmt.Errorf("%w: y=%d (height %d)", ErrOutOfBounds, y, b.height)
	}
	return nil
}
