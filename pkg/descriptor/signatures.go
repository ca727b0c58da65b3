package descriptor

// Framework input module USB IDs. The vendor ID doubles as the command
// magic prefix on the wire (0x32 0xAC).
const (
	// VendorFramework is the Framework Computer USB vendor ID.
	VendorFramework = 0x32AC

	// ProductLedMatrix is the LED matrix input module.
	ProductLedMatrix = 0x0020

	// ProductQTPy is the ANSI keyboard / macropad controller (QT Py).
	ProductQTPy = 0x0012

	// ProductKeyboard is the standard RGB keyboard module.
	ProductKeyboard = 0x0013

	// ProductNumpad is the numpad module.
	ProductNumpad = 0x0014
)

// Signature matches one vendor/product pair to a device kind.
type Signature struct {
	// VendorID is the USB vendor ID to match.
	VendorID uint16

	// ProductID is the USB product ID to match.
	ProductID uint16

	// Kind is the classification assigned on match.
	Kind Kind
}

// builtinSignatures is the process-wide signature table. It is immutable;
// extensions go through NewTable, never through mutation.
var builtinSignatures = []Signature{
	{VendorID: VendorFramework, ProductID: ProductLedMatrix, Kind: KindLedMatrix},
	{VendorID: VendorFramework, ProductID: ProductQTPy, Kind: KindKeyboardBacklight},
	{VendorID: VendorFramework, ProductID: ProductKeyboard, Kind: KindKeyboardBacklight},
	{VendorID: VendorFramework, ProductID: ProductNumpad, Kind: KindKeyboardBacklight},
}

// Table is an immutable vendor/product signature table used to classify
// enumerated devices. The zero value matches nothing; use DefaultTable
// or NewTable.
type Table struct {
	sigs []Signature
}

// DefaultTable returns the built-in signature table.
func DefaultTable() Table {
	return Table{sigs: builtinSignatures}
}

// NewTable returns the built-in table extended with additional signatures.
// The extras are copied; later mutation of the argument slice has no effect.
func NewTable(extra ...Signature) Table {
	sigs := make([]Signature, 0, len(builtinSignatures)+len(extra))
	sigs = append(sigs, builtinSignatures...)
	sigs = append(sigs, extra...)
	return Table{sigs: sigs}
}

// Classify looks up the kind for a vendor/product pair.
// The second return value is false when the pair is not in the table.
func (t Table) Classify(vendorID, productID uint16) (Kind, bool) {
	for _, s := range t.sigs {
		if s.VendorID == vendorID && s.ProductID == productID {
			return s.Kind, true
		}
	}
	return KindOther, false
}

// Len returns the number of signatures in the table.
func (t Table) Len() int {
	return len(t.sigs)
}
