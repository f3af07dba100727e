package wire

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/clockworklabs/SpacetimeDB/crates/msgpack-go/internal/errors"
)

// Writer encodes markers and payloads onto an io.Writer.
// It keeps the first error it meets; every later call is a no-op, so a
// sequence of writes can be checked once through Error.
type Writer struct {
	w            io.Writer
	err          error
	bytesWritten int
	scratch      [9]byte
}

// NewWriter creates a Writer over w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Error returns the first error that occurred during writing, if any.
func (w *Writer) Error() error {
	return w.err
}

// BytesWritten returns the number of bytes the sink accepted so far.
func (w *Writer) BytesWritten() int {
	return w.bytesWritten
}

func (w *Writer) recordError(err error) {
	if w.err == nil && err != nil {
		w.err = err
	}
}

// WriteRaw hands p to the sink unchanged.
func (w *Writer) WriteRaw(p []byte) {
	if w.err != nil || len(p) == 0 {
		return
	}
	n, err := w.w.Write(p)
	w.bytesWritten += n
	if err != nil {
		w.recordError(errors.Chain(errors.Other, "write to sink", err))
	}
}

// WriteMarker writes a single marker byte.
func (w *Writer) WriteMarker(b byte) {
	w.scratch[0] = b
	w.WriteRaw(w.scratch[:1])
}

// WriteNil writes the nil marker.
func (w *Writer) WriteNil() {
	w.WriteMarker(Nil)
}

// WriteBool writes true or false.
func (w *Writer) WriteBool(v bool) {
	if v {
		w.WriteMarker(True)
	} else {
		w.WriteMarker(False)
	}
}

// WriteInt64 always uses the int64 form, so the signed encoding survives a
// round trip.
func (w *Writer) WriteInt64(v int64) {
	w.scratch[0] = Int64
	binary.BigEndian.PutUint64(w.scratch[1:], uint64(v))
	w.WriteRaw(w.scratch[:9])
}

// WriteUint64 always uses the uint64 form.
func (w *Writer) WriteUint64(v uint64) {
	w.scratch[0] = Uint64
	binary.BigEndian.PutUint64(w.scratch[1:], v)
	w.WriteRaw(w.scratch[:9])
}

// WriteFloat32 writes a single-precision float.
func (w *Writer) WriteFloat32(v float32) {
	w.scratch[0] = Float32
	binary.BigEndian.PutUint32(w.scratch[1:], math.Float32bits(v))
	w.WriteRaw(w.scratch[:5])
}

// WriteFloat64 writes a double-precision float.
func (w *Writer) WriteFloat64(v float64) {
	w.scratch[0] = Float64
	binary.BigEndian.PutUint64(w.scratch[1:], math.Float64bits(v))
	w.WriteRaw(w.scratch[:9])
}

// WriteString writes a str header followed by the UTF-8 bytes of v.
func (w *Writer) WriteString(v string) {
	w.writeHeader(strClass, len(v))
	if w.err == nil && len(v) > 0 {
		w.WriteRaw([]byte(v))
	}
}

// WriteBin writes a bin header followed by v.
func (w *Writer) WriteBin(v []byte) {
	w.writeHeader(binClass, len(v))
	w.WriteRaw(v)
}

// WriteMapHeader writes the header of a map holding n entries.
func (w *Writer) WriteMapHeader(n int) {
	w.writeHeader(mapClass, n)
}

// WriteArrayHeader writes the header of an array holding n elements.
func (w *Writer) WriteArrayHeader(n int) {
	w.writeHeader(arrayClass, n)
}

func (w *Writer) writeHeader(c sizeClass, n int) {
	if w.err != nil {
		return
	}
	hdr, err := c.append(w.scratch[:0], n)
	if err != nil {
		w.recordError(err)
		return
	}
	w.WriteRaw(hdr)
}
