// Package encoding implements the MMDB type/length control-byte framing
// (control byte, optional length-extension bytes, optional extended-type
// byte) on top of an append-only Sink.
package encoding

// Type codes for the MMDB tagged-value format, 1..15.
const (
	TypePointer    = 1
	TypeUTF8String = 2
	TypeDouble     = 3
	TypeBytes      = 4
	TypeUint16     = 5
	TypeUint32     = 6
	TypeMap        = 7
	TypeInt32      = 8
	TypeUint64     = 9
	TypeUint128    = 10
	TypeArray      = 11
	TypeDataCache  = 12
	TypeEndMarker  = 13
	TypeBoolean    = 14
	TypeFloat      = 15
)

// Length-extension thresholds, see MMDB spec §"Data Format" and spec.md §4.1.
const (
	threshold1 = 29
	threshold2 = 285
	threshold3 = 65821
)

// Framer emits MMDB control sequences for (type, length) pairs into a Sink.
// It carries no state of its own beyond the Sink it wraps, so a single
// Framer value is reused for every field of a value tree.
type Framer struct {
	Sink *Sink
}

// NewFramer wraps sink in a Framer.
func NewFramer(sink *Sink) *Framer {
	return &Framer{Sink: sink}
}

// Offset returns the current write position in the sink, i.e. the offset a
// value written next would be assigned.
func (f *Framer) Offset() int {
	return f.Sink.Len()
}

// WriteControl emits the control byte, any length-extension bytes, and the
// extended-type byte (for type codes above 7), per spec.md §4.1. It does
// not write the payload; callers write that themselves immediately after.
func (f *Framer) WriteControl(typ int, length int) error {
	descriptor, extra := lengthDescriptor(length)

	var first byte
	if typ <= 7 {
		first = byte(typ<<5) | descriptor
	} else {
		first = descriptor // high 3 bits stay 0 when type > 7
	}

	if err := f.Sink.WriteByte(first); err != nil {
		return err
	}

	if len(extra) > 0 {
		if _, err := f.Sink.Write(extra); err != nil {
			return err
		}
	}

	if typ > 7 {
		if err := f.Sink.WriteByte(byte(typ - 7)); err != nil {
			return err
		}
	}

	return nil
}

// lengthDescriptor computes the 5-bit length descriptor and any
// big-endian length-extension bytes for logical length L, per spec.md
// §4.1's four length bands.
func lengthDescriptor(length int) (descriptor byte, extra []byte) {
	switch {
	case length < threshold1:
		return byte(length), nil

	case length < threshold2:
		return 29, []byte{byte(length - threshold1)}

	case length < threshold3:
		l := length - threshold2
		return 30, []byte{byte(l >> 8), byte(l)}

	default:
		l := length - threshold3
		return 31, []byte{byte(l >> 16), byte(l >> 8), byte(l)}
	}
}
