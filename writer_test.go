package mmdbwriter

import (
	"bytes"
	"testing"

	"github.com/pkg/errors"

	"github.com/bartdb/mmdbwriter/internal/errs"
)

func mustWriter(t *testing.T, opts Options) *Writer {
	t.Helper()
	w, err := New(opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return w
}

func TestScenario1_SingleV4DefaultRoute(t *testing.T) {
	t.Parallel()

	w := mustWriter(t, Options{IPVersion: 4, RecordSize: 24, DatabaseType: "Test"})

	offset, err := w.InsertData(map[string]any{"x": "y"})
	if err != nil {
		t.Fatal(err)
	}
	if offset != 0 {
		t.Fatalf("first data offset = %d, want 0", offset)
	}

	if err := w.InsertNetwork("0.0.0.0/0", offset, true); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if _, err := w.Write(&buf); err != nil {
		t.Fatal(err)
	}

	out := buf.Bytes()
	// record_size 24 -> 6-byte record, one node.
	record := out[0:6]
	left := int(record[0])<<16 | int(record[1])<<8 | int(record[2])
	right := int(record[3])<<16 | int(record[4])<<8 | int(record[5])

	if left != 17 || right != 17 {
		t.Fatalf("left=%d right=%d, want both 17 (0 + nodeCount(1) + 16)", left, right)
	}

	// separator follows immediately.
	sep := out[6:22]
	for _, b := range sep {
		if b != 0 {
			t.Fatalf("expected 16 zero separator bytes, got %x", sep)
		}
	}
}

func TestScenario2_TwoDisjointV4Halves(t *testing.T) {
	t.Parallel()

	w := mustWriter(t, Options{IPVersion: 4, RecordSize: 24, DatabaseType: "Test"})

	offA, err := w.InsertData("A")
	if err != nil {
		t.Fatal(err)
	}
	offB, err := w.InsertData("B")
	if err != nil {
		t.Fatal(err)
	}

	if err := w.InsertNetwork("0.0.0.0/1", offA, true); err != nil {
		t.Fatal(err)
	}
	if err := w.InsertNetwork("128.0.0.0/1", offB, true); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if _, err := w.Write(&buf); err != nil {
		t.Fatal(err)
	}

	out := buf.Bytes()
	record := out[0:6]
	left := int(record[0])<<16 | int(record[1])<<8 | int(record[2])
	right := int(record[3])<<16 | int(record[4])<<8 | int(record[5])

	nodeCount := 1
	if left != offA+nodeCount+16 {
		t.Fatalf("left = %d, want %d", left, offA+nodeCount+16)
	}
	if right != offB+nodeCount+16 {
		t.Fatalf("right = %d, want %d", right, offB+nodeCount+16)
	}
}

func TestScenario3_StrictOverlapRejected(t *testing.T) {
	t.Parallel()

	w := mustWriter(t, Options{IPVersion: 4, RecordSize: 24, DatabaseType: "Test"})

	offA, _ := w.InsertData("A")
	offB, _ := w.InsertData("B")

	if err := w.InsertNetwork("10.0.0.0/8", offA, true); err != nil {
		t.Fatal(err)
	}

	err := w.InsertNetwork("10.1.0.0/16", offB, true)
	if !errors.Is(err, errs.ErrOverlap) {
		t.Fatalf("expected overlap error, got %v", err)
	}
}

func TestScenario4_NonStrictMoreSpecificFirst(t *testing.T) {
	t.Parallel()

	w := mustWriter(t, Options{IPVersion: 4, RecordSize: 24, DatabaseType: "Test"})

	offB, _ := w.InsertData("B")
	offA, _ := w.InsertData("A")

	if err := w.InsertNetwork("10.1.0.0/16", offB, false); err != nil {
		t.Fatal(err)
	}
	if err := w.InsertNetwork("10.0.0.0/8", offA, false); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if _, err := w.Write(&buf); err != nil {
		t.Fatal(err)
	}
	if buf.Len() == 0 {
		t.Fatal("expected non-empty artifact")
	}
}

func TestScenario5_IPv4InIPv6Compat(t *testing.T) {
	t.Parallel()

	w := mustWriter(t, Options{IPVersion: 6, RecordSize: 28, DatabaseType: "Test", Compat: true})

	off, _ := w.InsertData("A")
	if err := w.InsertNetwork("192.0.2.0/24", off, true); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if _, err := w.Write(&buf); err != nil {
		t.Fatal(err)
	}
	if buf.Len() == 0 {
		t.Fatal("expected non-empty artifact")
	}
}

func TestScenario_RejectV6IntoV4Database(t *testing.T) {
	t.Parallel()

	w := mustWriter(t, Options{IPVersion: 4, RecordSize: 24, DatabaseType: "Test"})
	off, _ := w.InsertData("A")

	err := w.InsertNetwork("2001:db8::/32", off, true)
	if !errors.Is(err, errs.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestConfigurationErrorsAtConstruction(t *testing.T) {
	t.Parallel()

	if _, err := New(Options{IPVersion: 5, RecordSize: 24}); !errors.Is(err, errs.ErrConfiguration) {
		t.Fatalf("expected configuration error for bad ip_version, got %v", err)
	}
	if _, err := New(Options{IPVersion: 4, RecordSize: 25}); !errors.Is(err, errs.ErrConfiguration) {
		t.Fatalf("expected configuration error for bad record_size, got %v", err)
	}
}

func TestMetadataMarkerOffsetInvariant(t *testing.T) {
	t.Parallel()

	w := mustWriter(t, Options{
		IPVersion:    4,
		RecordSize:   24,
		DatabaseType: "Test",
		Description:  map[string]string{"en": "Test DB"},
		Languages:    []string{"en"},
	})

	offA, _ := w.InsertData("A")
	offB, _ := w.InsertData(map[string]any{"nested": int64(1) << 40})

	if err := w.InsertNetwork("10.0.0.0/8", offA, true); err != nil {
		t.Fatal(err)
	}
	if err := w.InsertNetwork("192.168.0.0/16", offB, true); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if _, err := w.Write(&buf); err != nil {
		t.Fatal(err)
	}

	out := buf.Bytes()
	markerOffset := bytes.Index(out, metadataMarker)
	if markerOffset == -1 {
		t.Fatal("metadata marker not found")
	}

	order := w.trie.Walk()
	nodeCount := len(order)
	dataLen := w.data.Len()

	want := nodeCount*w.packer.Size() + separatorSize + dataLen
	if markerOffset != want {
		t.Fatalf("marker offset = %d, want %d (nodeCount=%d)", markerOffset, want, nodeCount)
	}
}

func TestDataOffsetsAreMonotonicPrefixSums(t *testing.T) {
	t.Parallel()

	w := mustWriter(t, Options{IPVersion: 4, RecordSize: 24, DatabaseType: "Test"})

	var offsets []int
	for _, v := range []any{"a", "bb", "ccc", map[string]any{"k": "v"}} {
		off, err := w.InsertData(v)
		if err != nil {
			t.Fatal(err)
		}
		offsets = append(offsets, off)
	}

	for i := 1; i < len(offsets); i++ {
		if offsets[i] <= offsets[i-1] {
			t.Fatalf("offsets not strictly increasing: %v", offsets)
		}
	}

	// serialized sizes: "a" = 2, "bb" = 3, "ccc" = 4, {"k":"v"} = 5 bytes.
	want := []int{0, 2, 5, 9}
	for i := range want {
		if offsets[i] != want[i] {
			t.Fatalf("offsets = %v, want prefix sums %v", offsets, want)
		}
	}
}
