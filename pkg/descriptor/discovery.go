package descriptor

// DeviceInfo is one raw entry from a bus enumeration, before signature
// matching. Produced by an Enumerator.
type DeviceInfo struct {
	// Path is the platform-specific HID path.
	Path string

	// VendorID is the USB vendor ID.
	VendorID uint16

	// ProductID is the USB product ID.
	ProductID uint16

	// Serial is the reported serial number (may be empty).
	Serial string

	// Product is the reported product string (may be empty).
	Product string
}

// Enumerator provides a snapshot of currently attached HID devices.
// The production implementation lives in the transport package; tests use
// a simulated bus.
type Enumerator interface {
	// Enumerate returns all currently attached HID devices.
	// The returned slice is a snapshot, not a live view.
	Enumerate() ([]DeviceInfo, error)
}

// Discover enumerates attached devices and returns descriptors for those
// matching the default signature table.
//
// Discover never returns an error: devices that do not match the table are
// skipped, and an enumeration failure (missing HID support, no permission
// to enumerate) yields an empty slice. Absence of hardware is not a fault.
func Discover(e Enumerator) []Descriptor {
	return DiscoverTable(e, DefaultTable())
}

// DiscoverTable is Discover with a caller-supplied signature table.
func DiscoverTable(e Enumerator, table Table) []Descriptor {
	infos, err := e.Enumerate()
	if err != nil {
		return nil
	}

	var found []Descriptor
	seen := make(map[string]bool)

	for _, info := range infos {
		kind, ok := table.Classify(info.VendorID, info.ProductID)
		if !ok {
			continue
		}
		// The same physical device can enumerate more than once
		// (multiple HID usages on one interface); keep the first.
		if seen[info.Path] {
			continue
		}
		seen[info.Path] = true

		found = append(found, Descriptor{
			VendorID:  info.VendorID,
			ProductID: info.ProductID,
			Path:      info.Path,
			Serial:    info.Serial,
			Product:   info.Product,
			Kind:      kind,
		})
	}

	return found
}
