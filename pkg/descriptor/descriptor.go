package descriptor

import (
	"fmt"
)

// Kind classifies a discovered module by the peripheral it exposes.
type Kind uint8

const (
	// KindOther is a module matched by vendor but not by a known product seat.
	KindOther Kind = 0

	// KindLedMatrix is the 9x34 greyscale LED matrix module.
	KindLedMatrix Kind = 1

	// KindKeyboardBacklight is the keyboard backlight zone controller.
	KindKeyboardBacklight Kind = 2
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindLedMatrix:
		return "LED_MATRIX"
	case KindKeyboardBacklight:
		return "KEYBOARD_BACKLIGHT"
	case KindOther:
		return "OTHER"
	default:
		return "UNKNOWN"
	}
}

// Descriptor is the immutable identity of one attached input module.
// It is created by Discover and never mutated. Two descriptors refer to
// the same physical device exactly when their Paths are equal.
type Descriptor struct {
	// VendorID is the USB vendor ID.
	VendorID uint16

	// ProductID is the USB product ID.
	ProductID uint16

	// Path is the platform-specific HID path (e.g. /dev/hidraw3 on Linux).
	// It is the deduplication key across discovery snapshots.
	Path string

	// Serial is the device serial number, when the module reports one.
	Serial string

	// Product is the human-readable product string, when reported.
	Product string

	// Kind is the device classification from the signature table.
	Kind Kind
}

// Equal reports whether d and other identify the same physical device.
func (d Descriptor) Equal(other Descriptor) bool {
	return d.Path == other.Path
}

// String returns a human-readable summary of the descriptor.
func (d Descriptor) String() string {
	return fmt.Sprintf("%s (%04x:%04x) at %s", d.Kind, d.VendorID, d.ProductID, d.Path)
}
