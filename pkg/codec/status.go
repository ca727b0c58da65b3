package codec

import (
	"fmt"
)

// StatusReportLen is the size of a status readback report.
const StatusReportLen = 5

// FirmwareVersion identifies the module firmware.
type FirmwareVersion struct {
	Major uint8
	Minor uint8
	Patch uint8
}

// String returns the dotted version string.
func (v FirmwareVersion) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Status is the decoded device status readback.
type Status struct {
	// Brightness is the current global brightness (0..255).
	Brightness uint8

	// Sleeping reports whether the display is asleep.
	Sleeping bool

	// Version is the firmware version.
	Version FirmwareVersion
}

// EncodeStatusReport packs a status into the readback report layout:
//
//	byte 0  brightness
//	byte 1  sleeping (0 or 1)
//	byte 2  firmware major
//	byte 3  firmware minor
//	byte 4  firmware patch
//
// This is the device-side counterpart of DecodeStatus; the library uses it
// in simulated devices and round-trip tests.
func EncodeStatusReport(s Status) []byte {
	report := make([]byte, StatusReportLen)
	report[0] = s.Brightness
	if s.Sleeping {
		report[1] = 1
	}
	report[2] = s.Version.Major
	report[3] = s.Version.Minor
	report[4] = s.Version.Patch
	return report
}

// DecodeStatus parses a status readback report. Trailing padding bytes
// (HID reports are fixed-size) are ignored. Malformed input returns
// ErrMalformed, never panics.
func DecodeStatus(report []byte) (Status, error) {
	if len(report) < StatusReportLen {
		return Status{}, fmt.Errorf("%w: status report %d bytes, want at least %d",
			ErrMalformed, len(report), StatusReportLen)
	}
	if report[1] > 1 {
		return Status{}, fmt.Errorf("%w: sleep flag 0x%02x", ErrMalformed, report[1])
	}

	return Status{
		Brightness: report[0],
		Sleeping:   report[1] == 1,
		Version: FirmwareVersion{
			Major: report[2],
			Minor: report[3],
			Patch: report[4],
		},
	}, nil
}
