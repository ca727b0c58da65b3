package simulated

import (
	"sync"
	"time"

	"github.com/inputmodule/inputmodule-go/pkg/descriptor"
	"github.com/inputmodule/inputmodule-go/pkg/transport"
)

// Bus is an in-memory device registry implementing transport.Registry.
type Bus struct {
	// EnumerateErr, when set, fails Enumerate. Models a host without
	// HID support.
	EnumerateErr error

	mu      sync.Mutex
	devices map[string]*Device
	held    map[string]bool
}

// NewBus creates a bus holding the given devices.
func NewBus(devices ...*Device) *Bus {
	b := &Bus{
		devices: make(map[string]*Device),
		held:    make(map[string]bool),
	}
	for _, d := range devices {
		b.devices[d.Info.Path] = d
	}
	return b
}

// Attach adds a device to the bus.
func (b *Bus) Attach(d *Device) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.devices[d.Info.Path] = d
}

// Detach removes a device from the bus. Open connections keep their
// device but new opens fail.
func (b *Bus) Detach(path string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.devices, path)
}

// Enumerate returns the enumeration records of all attached devices.
func (b *Bus) Enumerate() ([]descriptor.DeviceInfo, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.EnumerateErr != nil {
		return nil, b.EnumerateErr
	}

	var infos []descriptor.DeviceInfo
	for _, d := range b.devices {
		infos = append(infos, d.Info)
	}
	return infos, nil
}

// OpenPath opens a connection to the device at the given path.
func (b *Bus) OpenPath(path string) (transport.Conn, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	dev, ok := b.devices[path]
	if !ok {
		return nil, transport.ErrUnavailable
	}
	if b.held[path] {
		return nil, transport.ErrAlreadyHeld
	}

	if len(dev.OpenScript) > 0 {
		err := dev.OpenScript[0]
		dev.OpenScript = dev.OpenScript[1:]
		if err != nil {
			return nil, err
		}
	}

	b.held[path] = true
	return &conn{bus: b, dev: dev}, nil
}

// conn adapts a simulated device to transport.Conn.
type conn struct {
	bus *Bus
	dev *Device

	closeOnce sync.Once
}

// Write delivers one report to the device.
func (c *conn) Write(p []byte, timeout time.Duration) (int, error) {
	return c.dev.write(p)
}

// Read fetches one readback report from the device.
func (c *conn) Read(p []byte, timeout time.Duration) (int, error) {
	return c.dev.read(p)
}

// Close releases the bus reservation.
func (c *conn) Close() error {
	c.closeOnce.Do(func() {
		c.bus.mu.Lock()
		delete(c.bus.held, c.dev.Info.Path)
		c.bus.mu.Unlock()
	})
	return nil
}

// Compile-time interface satisfaction checks.
var (
	_ transport.Registry = (*Bus)(nil)
	_ transport.Conn     = (*conn)(nil)
)
