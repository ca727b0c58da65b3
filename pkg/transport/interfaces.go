package transport

import (
	"time"

	"github.com/inputmodule/inputmodule-go/pkg/descriptor"
)

// Conn is one open raw channel to a device.
// Implemented by the hidapi-backed conn and by simulated devices in tests.
type Conn interface {
	// Write sends one report, blocking at most for the given timeout.
	Write(p []byte, timeout time.Duration) (int, error)

	// Read receives one report, blocking at most for the given timeout.
	Read(p []byte, timeout time.Duration) (int, error)

	// Close releases the channel. Must be idempotent.
	Close() error
}

// Registry is the device registry boundary: enumeration plus the ability
// to open a raw channel by path. Implemented by SystemRegistry over hidapi
// and by the simulated bus in tests.
type Registry interface {
	descriptor.Enumerator

	// OpenPath opens a raw channel to the device at the given path.
	OpenPath(path string) (Conn, error)
}

// Compile-time interface satisfaction checks.
var (
	_ Registry = (*SystemRegistry)(nil)
	_ Conn     = (*hidConn)(nil)
)
