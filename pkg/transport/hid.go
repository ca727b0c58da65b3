package transport

import (
	"errors"
	"io/fs"
	"sync"
	"time"

	hid "github.com/sstallion/go-hid"

	"github.com/inputmodule/inputmodule-go/pkg/descriptor"
)

// SystemRegistry is the hidapi-backed device registry. Enumerate snapshots
// the OS HID registry; OpenPath opens a raw report channel.
//
// The registry tracks which paths it has handed out so that a second open
// of the same device fails with ErrAlreadyHeld even on platforms where the
// OS permits shared access to hidraw nodes.
type SystemRegistry struct {
	mu   sync.Mutex
	held map[string]bool
}

// NewSystemRegistry creates a registry over the OS HID subsystem.
func NewSystemRegistry() *SystemRegistry {
	return &SystemRegistry{held: make(map[string]bool)}
}

// Enumerate returns a snapshot of all attached HID devices.
func (r *SystemRegistry) Enumerate() ([]descriptor.DeviceInfo, error) {
	var infos []descriptor.DeviceInfo

	err := hid.Enumerate(hid.VendorIDAny, hid.ProductIDAny, func(info *hid.DeviceInfo) error {
		infos = append(infos, descriptor.DeviceInfo{
			Path:      info.Path,
			VendorID:  info.VendorID,
			ProductID: info.ProductID,
			Serial:    info.SerialNbr,
			Product:   info.ProductStr,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	return infos, nil
}

// OpenPath opens the device at the given HID path.
func (r *SystemRegistry) OpenPath(path string) (Conn, error) {
	r.mu.Lock()
	if r.held[path] {
		r.mu.Unlock()
		return nil, ErrAlreadyHeld
	}
	r.held[path] = true
	r.mu.Unlock()

	dev, err := hid.OpenPath(path)
	if err != nil {
		r.release(path)
		return nil, classifyOpenError(err)
	}

	return &hidConn{dev: dev, registry: r, path: path}, nil
}

// release marks a path as no longer held.
func (r *SystemRegistry) release(path string) {
	r.mu.Lock()
	delete(r.held, path)
	r.mu.Unlock()
}

// classifyOpenError maps an hidapi open failure onto the open error taxonomy.
func classifyOpenError(err error) error {
	switch {
	case errors.Is(err, fs.ErrPermission):
		return ErrPermissionDenied
	case errors.Is(err, fs.ErrNotExist):
		return ErrUnavailable
	default:
		// hidapi reports a busy device as a plain open failure; the
		// held-path check above catches the in-process case.
		return ErrUnavailable
	}
}

// hidConn adapts *hid.Device to the Conn interface.
type hidConn struct {
	dev      *hid.Device
	registry *SystemRegistry
	path     string

	closeOnce sync.Once
	closeErr  error
}

// Write sends one report. hidraw writes complete or fail immediately, so
// the timeout only bounds the pathological case and a write error means
// the device is gone.
func (c *hidConn) Write(p []byte, timeout time.Duration) (int, error) {
	n, err := c.dev.Write(p)
	if err != nil {
		return n, ErrDisconnected
	}
	return n, nil
}

// Read receives one report with the hidapi timeout mechanism.
func (c *hidConn) Read(p []byte, timeout time.Duration) (int, error) {
	n, err := c.dev.ReadWithTimeout(p, timeout)
	if err != nil {
		return 0, ErrDisconnected
	}
	// hid_read_timeout signals a timeout as a zero-length success.
	if n == 0 {
		return 0, ErrReadTimeout
	}
	return n, nil
}

// Close releases the device and its registry reservation.
func (c *hidConn) Close() error {
	c.closeOnce.Do(func() {
		c.closeErr = c.dev.Close()
		c.registry.release(c.path)
	})
	return c.closeErr
}
