// Package descriptor provides device identity and discovery for input modules.
//
// A Descriptor is the immutable identity of one attached module: vendor ID,
// product ID, HID platform path and the device kind derived from the
// vendor/product signature table. Descriptors are produced by Discover and
// carry no open resources; opening a device is the session layer's job.
//
// # Signature Table
//
// Input modules are matched against a closed table of known vendor/product
// pairs. The built-in table covers the Framework 16 input module bay
// (vendor 0x32AC). Applications may extend the table at startup via
// NewTable; a Table is immutable once built.
//
// # Change Detection
//
// Discover returns a point-in-time snapshot. There is no hot-plug
// notification; callers that need it poll Discover and diff the results.
// Descriptors compare by Path, which is stable for as long as the module
// stays attached to the same bay slot.
package descriptor
