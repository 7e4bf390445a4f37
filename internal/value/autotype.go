package value

import (
	"github.com/pkg/errors"
	"golang.org/x/exp/constraints"

	"github.com/bartdb/mmdbwriter/internal/errs"
)

// AutoType lifts an untyped caller value into the tagged DataType tree
// (spec.md §4.3): maps become Map, slices become Slice, strings become
// String, floats become Float32, and integers are promoted by magnitude
// alone -- anything that needs more than 32 bits becomes Uint64, anything
// smaller becomes Uint32. This replaces the source's runtime "int vs.
// long" type-identity distinction, which has no Go analogue, with the
// single magnitude rule the Design Notes (spec.md §9) call for.
//
// A value that is already a DataType (e.g. an explicit Pointer, or a
// value built with one of the typed constructors) passes through
// unchanged, which is how callers opt out of auto-typing for individual
// fields.
func AutoType(v any) (DataType, error) {
	switch t := v.(type) {
	case DataType:
		return t, nil

	case nil:
		return nil, errors.Wrap(errs.ErrUnsupportedType, "nil has no automatic mapping")

	case string:
		return String(t), nil

	case bool:
		return Bool(t), nil

	case []byte:
		return Bytes(t), nil

	case float32:
		return Float32(t), nil

	case float64:
		return Float32(t), nil

	case int:
		return intoByMagnitude(int64(t)), nil
	case int8:
		return intoByMagnitude(int64(t)), nil
	case int16:
		return intoByMagnitude(int64(t)), nil
	case int32:
		return intoByMagnitude(int64(t)), nil
	case int64:
		return intoByMagnitude(t), nil

	case uint:
		return intoByMagnitudeUnsigned(uint64(t)), nil
	case uint8:
		return intoByMagnitudeUnsigned(uint64(t)), nil
	case uint16:
		return intoByMagnitudeUnsigned(uint64(t)), nil
	case uint32:
		return intoByMagnitudeUnsigned(uint64(t)), nil
	case uint64:
		return intoByMagnitudeUnsigned(t), nil

	case map[string]any:
		return autoTypeMap(t)

	case []any:
		return autoTypeSlice(t)

	default:
		return nil, errors.Wrapf(errs.ErrUnsupportedType, "no automatic mapping for %T", v)
	}
}

func autoTypeMap(m map[string]any) (DataType, error) {
	out := make(Map, 0, len(m))
	for k, v := range m {
		child, err := AutoType(v)
		if err != nil {
			return nil, errors.Wrapf(err, "map key %q", k)
		}
		out = append(out, MapEntry{Key: k, Value: child})
	}
	return out, nil
}

func autoTypeSlice(s []any) (DataType, error) {
	out := make(Slice, 0, len(s))
	for i, v := range s {
		child, err := AutoType(v)
		if err != nil {
			return nil, errors.Wrapf(err, "array element %d", i)
		}
		out = append(out, child)
	}
	return out, nil
}

// maxUint32 is the magnitude threshold from spec.md §4.3 and §9: values
// that need more than 32 bits are promoted to Uint64.
const maxUint32 = 1<<32 - 1

// intoByMagnitude classifies a signed integer by magnitude, generic over
// any signed integer kind so every case in AutoType's type switch shares
// one implementation.
func intoByMagnitude[T constraints.Signed](n T) DataType {
	if n < 0 || int64(n) > maxUint32 {
		return Uint64(int64(n))
	}
	return Uint32(n)
}

// intoByMagnitudeUnsigned mirrors intoByMagnitude for unsigned integer
// kinds.
func intoByMagnitudeUnsigned[T constraints.Unsigned](n T) DataType {
	if uint64(n) > maxUint32 {
		return Uint64(n)
	}
	return Uint32(n)
}
