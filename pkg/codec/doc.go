// Package codec encodes application-level display data into the input
// module wire protocol, and decodes device readback reports.
//
// The codec is pure: no I/O, no mutable state. Transport delivery and
// retries live in the session package.
//
// # Wire Format
//
// Every command is a single HID report:
//
//	byte 0    0x32   magic (first byte of the Framework vendor ID)
//	byte 1    0xAC   magic (second byte)
//	byte 2    command ID
//	byte 3+   command-specific payload
//
// Commands never exceed MaxCommandLen (42) bytes; the longest is Draw with
// its 39-byte bit-packed bitmap.
//
// # Per-Kind Encoding Strategies
//
// Each device kind has its own pixel packing, selected from a closed table
// by the kind tag:
//
//   - LED matrix: greyscale frames are delivered column by column with
//     StageColumn (0x07) and made visible atomically with FlushColumns
//     (0x08); 1-bit bitmaps go in one Draw (0x06) command.
//   - Keyboard backlight: one intensity byte per zone in a single Draw
//     command, intensities on a 0-100 scale.
//
// # Clamping Rules
//
// Per-pixel intensities outside a kind's legal range are clamped at encode
// time. The global brightness level is not clamped: EncodeBrightness fails
// with ErrOutOfRange instead, since silently altering a discrete global
// setting would surprise the caller.
package codec
