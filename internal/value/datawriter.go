package value

import "github.com/bartdb/mmdbwriter/internal/encoding"

// DataWriter buffers the serialized form of every inserted value in
// insertion order and hands back the stable byte offset each one was
// written at. Offsets are the prefix sums of the serialized entry sizes
// (spec.md §3, §8): once assigned, an offset never changes.
type DataWriter struct {
	framer *encoding.Framer
}

// NewDataWriter returns an empty DataWriter.
func NewDataWriter() *DataWriter {
	return &DataWriter{framer: encoding.NewFramer(encoding.NewSink())}
}

// Write appends v's serialized form and returns the offset it was written
// at, measured from the start of the data section.
func (d *DataWriter) Write(v DataType) (int, error) {
	offset := d.framer.Offset()
	if err := v.writeTo(d.framer); err != nil {
		return 0, err
	}
	return offset, nil
}

// Len returns the total number of bytes buffered so far, i.e. the size of
// the data section if written right now.
func (d *DataWriter) Len() int {
	return d.framer.Offset()
}

// Sink exposes the underlying byte sink so the assembler can flush the
// data section directly to the final artifact.
func (d *DataWriter) Sink() *encoding.Sink {
	return d.framer.Sink
}
