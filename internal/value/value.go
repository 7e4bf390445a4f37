// Package value implements the MMDB tagged value tree (§3, §4.2 of the
// format) as a closed sum type, and the sequential data-section buffer
// that serializes instances of it.
//
// The tagged tree is represented as a Go interface with a fixed set of
// implementations rather than the dynamic "type"/"content" map the format
// was originally prototyped with: every caller-visible node already
// carries both its type and its payload by construction, so the framer
// never has to reject a mismatch at runtime.
package value

import (
	"encoding/binary"
	"math"

	"github.com/pkg/errors"

	"github.com/bartdb/mmdbwriter/internal/encoding"
	"github.com/bartdb/mmdbwriter/internal/errs"
)

// Encode serializes v to f. It is the package's sole exported entry point
// into the tagged-value framing; DataWriter frames data entries the same
// way, and the assembler uses Encode directly to serialize the metadata
// map, which is never assigned a data offset.
func Encode(v DataType, f *encoding.Framer) error {
	return v.writeTo(f)
}

// DataType is any value that can appear in the tagged value tree: Map,
// Slice, String, Uint16, Uint32, Uint64, Int32, Float32, Float64, Bytes,
// Bool, or Pointer.
type DataType interface {
	// writeTo frames and writes this value (and, recursively, its
	// children) to f.
	writeTo(f *encoding.Framer) error
}

// Map is an ordered map from UTF-8 keys to values. It is a slice of pairs,
// not a Go map, because the format requires children to be written back
// out in the caller's insertion order (spec.md §4.2), which a native Go
// map cannot preserve.
type Map []MapEntry

// MapEntry is one key/value pair of a Map.
type MapEntry struct {
	Key   string
	Value DataType
}

func (m Map) writeTo(f *encoding.Framer) error {
	if err := f.WriteControl(encoding.TypeMap, len(m)); err != nil {
		return err
	}

	for _, e := range m {
		if e.Value == nil {
			return errors.Wrapf(errs.ErrMalformedValue, "map key %q has no value", e.Key)
		}
		if err := String(e.Key).writeTo(f); err != nil {
			return err
		}
		if err := e.Value.writeTo(f); err != nil {
			return err
		}
	}

	return nil
}

// Slice is an ordered sequence of values, encoded as the MMDB array type.
type Slice []DataType

func (s Slice) writeTo(f *encoding.Framer) error {
	if err := f.WriteControl(encoding.TypeArray, len(s)); err != nil {
		return err
	}

	for i, v := range s {
		if v == nil {
			return errors.Wrapf(errs.ErrMalformedValue, "array element %d is nil", i)
		}
		if err := v.writeTo(f); err != nil {
			return err
		}
	}

	return nil
}

// String is a UTF-8 string value.
type String string

func (s String) writeTo(f *encoding.Framer) error {
	b := []byte(s)
	if err := f.WriteControl(encoding.TypeUTF8String, len(b)); err != nil {
		return err
	}
	_, err := f.Sink.Write(b)
	return err
}

// Bytes is an opaque byte-string value. It frames identically to String,
// differing only in its type code (confirmed against the Python source
// this format was distilled from, see SPEC_FULL.md §12).
type Bytes []byte

func (b Bytes) writeTo(f *encoding.Framer) error {
	if err := f.WriteControl(encoding.TypeBytes, len(b)); err != nil {
		return err
	}
	_, err := f.Sink.Write(b)
	return err
}

// Uint16 is an unsigned 16-bit integer value.
type Uint16 uint16

func (v Uint16) writeTo(f *encoding.Framer) error {
	if err := f.WriteControl(encoding.TypeUint16, 2); err != nil {
		return err
	}
	var buf [2]byte
	binary.BigEndian.PutUint16(buf[:], uint16(v))
	_, err := f.Sink.Write(buf[:])
	return err
}

// Uint32 is an unsigned 32-bit integer value.
type Uint32 uint32

func (v Uint32) writeTo(f *encoding.Framer) error {
	if err := f.WriteControl(encoding.TypeUint32, 4); err != nil {
		return err
	}
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], uint32(v))
	_, err := f.Sink.Write(buf[:])
	return err
}

// Int32 is a signed 32-bit two's-complement integer value.
type Int32 int32

func (v Int32) writeTo(f *encoding.Framer) error {
	if err := f.WriteControl(encoding.TypeInt32, 4); err != nil {
		return err
	}
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], uint32(v))
	_, err := f.Sink.Write(buf[:])
	return err
}

// Uint64 is an unsigned 64-bit integer value.
type Uint64 uint64

func (v Uint64) writeTo(f *encoding.Framer) error {
	if err := f.WriteControl(encoding.TypeUint64, 8); err != nil {
		return err
	}
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(v))
	_, err := f.Sink.Write(buf[:])
	return err
}

// Float32 is an IEEE-754 single-precision value, encoded big-endian.
type Float32 float32

func (v Float32) writeTo(f *encoding.Framer) error {
	if err := f.WriteControl(encoding.TypeFloat, 4); err != nil {
		return err
	}
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], math.Float32bits(float32(v)))
	_, err := f.Sink.Write(buf[:])
	return err
}

// Float64 is an IEEE-754 double-precision value, encoded big-endian.
type Float64 float64

func (v Float64) writeTo(f *encoding.Framer) error {
	if err := f.WriteControl(encoding.TypeDouble, 8); err != nil {
		return err
	}
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], math.Float64bits(float64(v)))
	_, err := f.Sink.Write(buf[:])
	return err
}

// Bool is a boolean value. It has no payload; the logical length itself
// carries the value (0 = false, 1 = true).
type Bool bool

func (v Bool) writeTo(f *encoding.Framer) error {
	length := 0
	if v {
		length = 1
	}
	return f.WriteControl(encoding.TypeBoolean, length)
}

// Pointer is a raw data-section offset, written as a fixed 4-byte
// big-endian payload under a fixed logical length of 3<<3 = 24.
//
// This reproduces the fixed 4-byte pointer form documented in
// SPEC_FULL.md §13 open question 1, not MMDB's canonical variable-width
// (2-5 byte) pointer encoding: the source this format was distilled from
// only ever emits this fixed form, and spec.md §4.2 pins it explicitly.
type Pointer uint32

const pointerLogicalLength = 3 << 3

func (v Pointer) writeTo(f *encoding.Framer) error {
	if err := f.WriteControl(encoding.TypePointer, pointerLogicalLength); err != nil {
		return err
	}
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], uint32(v))
	_, err := f.Sink.Write(buf[:])
	return err
}

// endMarker terminates a data-cache sequence. It is never constructible
// from outside this package because the data-cache container type is
// unsupported (spec.md §1 Non-goals); it exists only to document why
// TypeEndMarker is reserved and unused.
type endMarker struct{}

func (endMarker) writeTo(f *encoding.Framer) error {
	return f.WriteControl(encoding.TypeEndMarker, 0)
}
