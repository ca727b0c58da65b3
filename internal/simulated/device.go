// Package simulated provides an in-memory HID bus and device model, used
// by tests and by matrixctl's simulation mode. The simulated device
// executes the real wire protocol: staged
// columns, flushes, brightness and sleep commands mutate a device model
// that tests can inspect, and status queries produce readback reports.
package simulated

import (
	"sync"

	"github.com/inputmodule/inputmodule-go/pkg/codec"
	"github.com/inputmodule/inputmodule-go/pkg/descriptor"
	"github.com/inputmodule/inputmodule-go/pkg/frame"
	"github.com/inputmodule/inputmodule-go/pkg/transport"
)

// Device is one simulated input module. Configure the exported fields
// before first use; the device is then driven through its bus connection.
type Device struct {
	// Info is the enumeration record for this device.
	Info descriptor.DeviceInfo

	// Kind controls which encoding strategy the device model executes.
	Kind descriptor.Kind

	// OpenScript is consumed one entry per OpenPath call; a non-nil entry
	// fails that open. After the script is exhausted, opens succeed.
	OpenScript []error

	// WriteScript is consumed one entry per write; a non-nil entry fails
	// that write before it reaches the device model. After the script is
	// exhausted, writes succeed.
	WriteScript []error

	// Status is the device status returned to readback queries.
	// Brightness and sleep commands mutate it.
	Status codec.Status

	mu        sync.Mutex
	writes    [][]byte
	staged    *frame.Frame
	displayed *frame.Frame
	bitmap    []byte
	readQueue [][]byte
}

// NewDevice creates a simulated device of the given kind at the given path.
func NewDevice(path string, kind descriptor.Kind) *Device {
	vendorID := uint16(descriptor.VendorFramework)
	productID := uint16(descriptor.ProductLedMatrix)
	if kind == descriptor.KindKeyboardBacklight {
		productID = descriptor.ProductKeyboard
	}

	return &Device{
		Info: descriptor.DeviceInfo{
			Path:      path,
			VendorID:  vendorID,
			ProductID: productID,
			Serial:    "SIM-" + path,
			Product:   "Simulated " + kind.String(),
		},
		Kind: kind,
	}
}

// WriteCount returns the number of physical writes that reached the
// device, including scripted failures.
func (d *Device) WriteCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.writes)
}

// Writes returns copies of all write payloads, including failed attempts.
func (d *Device) Writes() [][]byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([][]byte, len(d.writes))
	for i, w := range d.writes {
		out[i] = append([]byte(nil), w...)
	}
	return out
}

// Displayed returns the frame made visible by the last flush, or nil if
// nothing was flushed yet.
func (d *Device) Displayed() *frame.Frame {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.displayed == nil {
		return nil
	}
	return d.displayed.Clone()
}

// Bitmap returns the payload of the last single-shot draw command.
func (d *Device) Bitmap() []byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]byte(nil), d.bitmap...)
}

// write is called by the bus connection for each report.
func (d *Device) write(p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.writes = append(d.writes, append([]byte(nil), p...))

	if len(d.WriteScript) > 0 {
		err := d.WriteScript[0]
		d.WriteScript = d.WriteScript[1:]
		if err != nil {
			return 0, err
		}
	}

	d.execute(codec.Command(p))
	return len(p), nil
}

// read is called by the bus connection for each readback.
func (d *Device) read(p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(d.readQueue) == 0 {
		return 0, transport.ErrReadTimeout
	}
	report := d.readQueue[0]
	d.readQueue = d.readQueue[1:]
	return copy(p, report), nil
}

// execute applies one successfully written command to the device model.
// Unknown or malformed commands are ignored, as real firmware does.
func (d *Device) execute(cmd codec.Command) {
	id, err := cmd.ID()
	if err != nil {
		return
	}
	payload := cmd.Payload()

	width, height, ok := codec.GridSize(d.Kind)
	if !ok {
		width, height = codec.MatrixWidth, codec.MatrixHeight
	}

	switch id {
	case codec.CmdBrightness:
		if len(payload) >= 1 {
			d.Status.Brightness = payload[0]
		}

	case codec.CmdSleep:
		if len(payload) >= 1 {
			d.Status.Sleeping = payload[0] == 1
		}

	case codec.CmdStageColumn:
		if len(payload) != 1+height {
			return
		}
		x := int(payload[0])
		if x >= width {
			return
		}
		if d.staged == nil {
			d.staged = frame.MustNew(width, height)
		}
		col, _ := d.staged.Column(x)
		copy(col, payload[1:])

	case codec.CmdFlushColumns:
		if d.staged != nil {
			d.displayed = d.staged.Clone()
		}

	case codec.CmdDraw:
		d.bitmap = append([]byte(nil), payload...)
		// Per-cell kinds display the draw payload directly.
		if d.Kind == descriptor.KindKeyboardBacklight && len(payload) == width*height {
			d.displayed = frame.MustNew(width, height)
			copy(d.displayed.Data(), payload)
		}

	case codec.CmdVersion:
		d.readQueue = append(d.readQueue, codec.EncodeStatusReport(d.Status))
	}
}
