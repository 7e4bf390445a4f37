package value

import (
	"bytes"
	"testing"

	"github.com/pkg/errors"

	"github.com/bartdb/mmdbwriter/internal/encoding"
	"github.com/bartdb/mmdbwriter/internal/errs"
)

func encode(t *testing.T, v DataType) []byte {
	t.Helper()
	sink := encoding.NewSink()
	f := encoding.NewFramer(sink)
	if err := v.writeTo(f); err != nil {
		t.Fatalf("writeTo: %v", err)
	}
	return sink.Bytes()
}

func TestUint16Encoding(t *testing.T) {
	t.Parallel()

	got := encode(t, Uint16(0x1234))
	want := []byte{0xA2, 0x12, 0x34}
	if !bytes.Equal(got, want) {
		t.Fatalf("got %x, want %x", got, want)
	}
}

func TestBoolEncoding(t *testing.T) {
	t.Parallel()

	// boolean's type code (14) is > 7, so the control byte carries only
	// the length descriptor and is followed by an extended-type byte of
	// 14 - 7 = 7.
	tests := []struct {
		name string
		v    Bool
		want []byte
	}{
		{"false", false, []byte{0x00, 0x07}},
		{"true", true, []byte{0x01, 0x07}},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := encode(t, tc.v)
			if !bytes.Equal(got, tc.want) {
				t.Fatalf("got %x, want %x", got, tc.want)
			}
		})
	}
}

func TestMapPreservesInsertionOrder(t *testing.T) {
	t.Parallel()

	m := Map{
		{Key: "zebra", Value: Uint32(1)},
		{Key: "apple", Value: Uint32(2)},
	}

	got := encode(t, m)

	// First key written after the map control byte must be "zebra", not
	// the lexicographically-first "apple".
	want := encode(t, String("zebra"))
	if !bytes.Contains(got, want) {
		t.Fatalf("expected serialized map to contain zebra key frame")
	}

	idxZebra := bytes.Index(got, want)
	idxApple := bytes.Index(got, encode(t, String("apple")))
	if idxApple < idxZebra {
		t.Fatalf("apple (idx %d) encoded before zebra (idx %d), insertion order not preserved", idxApple, idxZebra)
	}
}

func TestPointerFixedFourByteForm(t *testing.T) {
	t.Parallel()

	// pointer's type code (1) is <= 7, so the control byte alone carries
	// type and length (24 fits the single-byte descriptor band); no
	// extended-type byte, then the fixed 4-byte big-endian address.
	got := encode(t, Pointer(0x01020304))
	wantControl := byte(1<<5) | 24
	if len(got) != 5 || got[0] != wantControl {
		t.Fatalf("got %x, want control byte %x followed by 4-byte payload", got, wantControl)
	}

	payload := got[1:]
	want := []byte{0x01, 0x02, 0x03, 0x04}
	if !bytes.Equal(payload, want) {
		t.Fatalf("payload = %x, want %x", payload, want)
	}
}

func TestBytesAndStringDifferOnlyByTypeCode(t *testing.T) {
	t.Parallel()

	s := encode(t, String("ab"))
	b := encode(t, Bytes("ab"))

	if bytes.Equal(s, b) {
		t.Fatalf("string and bytes encodings must differ by type code")
	}
	// both have a one-byte control, then the same 2-byte payload
	if !bytes.Equal(s[1:], b[1:]) {
		t.Fatalf("payload should match: %x vs %x", s[1:], b[1:])
	}
}

func TestMalformedMapEntryRejected(t *testing.T) {
	t.Parallel()

	sink := encoding.NewSink()
	f := encoding.NewFramer(sink)
	m := Map{{Key: "bad", Value: nil}}

	err := m.writeTo(f)
	if !errors.Is(err, errs.ErrMalformedValue) {
		t.Fatalf("expected malformed value error, got %v", err)
	}
}

func TestMalformedSliceElementRejected(t *testing.T) {
	t.Parallel()

	sink := encoding.NewSink()
	f := encoding.NewFramer(sink)
	s := Slice{Uint32(1), nil}

	err := s.writeTo(f)
	if !errors.Is(err, errs.ErrMalformedValue) {
		t.Fatalf("expected malformed value error, got %v", err)
	}
}
