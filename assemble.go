package mmdbwriter

import (
	"bufio"
	"io"
	"os"
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/bartdb/mmdbwriter/internal/encoding"
	"github.com/bartdb/mmdbwriter/internal/trie"
	"github.com/bartdb/mmdbwriter/internal/value"
)

// separatorSize is the 16-byte zero separator between the node section
// and the data section (spec.md §4.6).
const separatorSize = 16

// metadataMarker is the 14-byte sentinel preceding the metadata map:
// 0xAB 0xCD 0xEF followed by the ASCII bytes of "MaxMind.com".
var metadataMarker = []byte{
	0xAB, 0xCD, 0xEF,
	'M', 'a', 'x', 'M', 'i', 'n', 'd', '.', 'c', 'o', 'm',
}

// Write emits the full artifact to sink: the node section, the zero
// separator, the buffered data section, the metadata marker, and the
// metadata map, in that order (spec.md §4.6).
func (w *Writer) Write(sink io.Writer) (int64, error) {
	order := w.trie.Walk()
	nodeCount := len(order)

	bfsID := make(map[int]int, nodeCount)
	for id, idx := range order {
		bfsID[idx] = id
	}

	out := bufio.NewWriter(sink)
	var total int64

	for _, idx := range order {
		left := w.pointerFor(idx, 0, nodeCount, bfsID)
		right := w.pointerFor(idx, 1, nodeCount, bfsID)

		rec := w.packer.Pack(uint32(left), uint32(right))
		n, err := out.Write(rec)
		total += int64(n)
		if err != nil {
			return total, errors.Wrap(err, "writing node record")
		}
	}

	n, err := out.Write(make([]byte, separatorSize))
	total += int64(n)
	if err != nil {
		return total, errors.Wrap(err, "writing data section separator")
	}

	// Bytes, not WriteTo: the buffered data section must survive Write so
	// that offsets already handed out stay valid.
	n, err = out.Write(w.data.Sink().Bytes())
	total += int64(n)
	if err != nil {
		return total, errors.Wrap(err, "writing data section")
	}

	n, err = out.Write(metadataMarker)
	total += int64(n)
	if err != nil {
		return total, errors.Wrap(err, "writing metadata marker")
	}

	nb, err := w.writeMetadata(out, nodeCount)
	total += nb
	if err != nil {
		return total, errors.Wrap(err, "writing metadata map")
	}

	if err := out.Flush(); err != nil {
		return total, errors.Wrap(err, "flushing artifact to sink")
	}

	return total, nil
}

// WriteFile is a convenience wrapper over Write that creates (or
// truncates) path and writes the artifact to it.
func (w *Writer) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating %s", path)
	}

	_, writeErr := w.Write(f)
	closeErr := f.Close()

	if writeErr != nil {
		return writeErr
	}
	return closeErr
}

// pointerFor computes the child-pointer value for node idx's branch b
// (0 = left, 1 = right), per spec.md §4.6: an internal child's own BFS
// id, a terminal child's data_id + node_count + 16, or the node_count
// sentinel when the branch is empty. The root is special-cased: if it
// holds data directly with no children at all (a lone /0 insertion), both
// of its branches resolve to its own data, since it is still written as
// node 0 despite structurally being a terminal (spec.md §8 scenario 1).
func (w *Writer) pointerFor(idx, b, nodeCount int, bfsID map[int]int) int {
	child := w.trie.Child(idx, b)

	if child != -1 {
		if w.trie.IsInternal(child) {
			return bfsID[child]
		}
		return w.trie.Data(child) + nodeCount + separatorSize
	}

	if idx == trie.RootIndex && w.trie.HasData(idx) {
		return w.trie.Data(idx) + nodeCount + separatorSize
	}

	return nodeCount
}

// writeMetadata builds and serializes the metadata map of spec.md §4.6.
func (w *Writer) writeMetadata(out io.Writer, nodeCount int) (int64, error) {
	epoch := w.buildEpoch
	if epoch == 0 {
		epoch = time.Now().Unix()
	}

	description := make(value.Map, 0, len(w.description))
	locales := make([]string, 0, len(w.description))
	for locale := range w.description {
		locales = append(locales, locale)
	}
	sort.Strings(locales) // deterministic output; map iteration order is not.
	for _, locale := range locales {
		description = append(description, value.MapEntry{Key: locale, Value: value.String(w.description[locale])})
	}

	languages := make(value.Slice, 0, len(w.languages))
	for _, lang := range w.languages {
		languages = append(languages, value.String(lang))
	}

	metadata := value.Map{
		{Key: "node_count", Value: value.Uint32(nodeCount)},
		{Key: "record_size", Value: value.Uint16(w.packer.RecordSize())},
		{Key: "ip_version", Value: value.Uint16(w.ipVersion)},
		{Key: "database_type", Value: value.String(w.databaseType)},
		{Key: "description", Value: description},
		{Key: "languages", Value: languages},
		{Key: "binary_format_major_version", Value: value.Uint16(2)},
		{Key: "binary_format_minor_version", Value: value.Uint16(0)},
		{Key: "build_epoch", Value: value.Uint64(epoch)},
	}

	sink := encoding.NewSink()
	framer := encoding.NewFramer(sink)
	if err := value.Encode(metadata, framer); err != nil {
		return 0, err
	}

	return sink.WriteTo(out)
}
