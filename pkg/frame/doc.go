// Package frame provides in-memory pixel buffers for input module displays.
//
// Two buffer shapes exist, matching the two drawing paths of the LED matrix
// firmware:
//
//   - Frame holds one 8-bit intensity value per pixel and is delivered by
//     staging whole columns. Storage is column-major because the staging
//     command is column based.
//   - Bitmap holds one bit per pixel for the single-shot draw command,
//     bit-packed across the column-major pixel sequence.
//
// Buffers are plain data: no I/O, no clamping. Intensities outside the
// device's legal range are clamped by the codec at encode time.
package frame
