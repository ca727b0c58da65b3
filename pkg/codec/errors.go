package codec

import (
	"errors"
)

// Encode errors. Encoding failures are never retried: the input will not
// get better on a second attempt.
var (
	// ErrDimensionMismatch indicates a buffer whose shape does not match
	// the target device kind's grid.
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrOutOfRange indicates a scalar value outside its legal scale.
	ErrOutOfRange = errors.New("value out of range")

	// ErrUnknownKind indicates a device kind with no encoding strategy.
	ErrUnknownKind = errors.New("unknown device kind")
)

// Decode errors.
var (
	// ErrMalformed indicates readback bytes that do not parse.
	// Malformed input is an error, never a panic.
	ErrMalformed = errors.New("malformed report")
)
