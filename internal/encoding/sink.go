package encoding

import (
	"bytes"
	"io"
)

// Sink is an append-only byte buffer shared by every encoder in this
// package. It exists so that length-prefixed framing (control byte,
// length-extension bytes, extended-type byte, payload) is always written
// as one contiguous run, and so that the current write position can be
// read back cheaply as a data-section offset.
type Sink struct {
	buf bytes.Buffer
}

// NewSink returns a ready-to-use, empty Sink.
func NewSink() *Sink {
	return new(Sink)
}

// Len returns the number of bytes written so far. Used as the data-section
// offset of the next entry.
func (s *Sink) Len() int {
	return s.buf.Len()
}

// Write appends p to the sink. Never returns an error; bytes.Buffer only
// fails to grow on allocation failure, which panics rather than erroring.
func (s *Sink) Write(p []byte) (int, error) {
	return s.buf.Write(p)
}

// WriteByte appends a single byte.
func (s *Sink) WriteByte(b byte) error {
	return s.buf.WriteByte(b)
}

// Bytes returns the accumulated buffer. The caller must not retain it
// across further writes to the Sink.
func (s *Sink) Bytes() []byte {
	return s.buf.Bytes()
}

// WriteTo copies the accumulated buffer to w, draining the Sink, matching
// the bytes.Buffer.WriteTo contract used by the assembler when flushing
// the metadata map.
func (s *Sink) WriteTo(w io.Writer) (int64, error) {
	return s.buf.WriteTo(w)
}
