package wire

import (
	"encoding/binary"
	"io"
	"math"
	"slices"

	"github.com/clockworklabs/SpacetimeDB/crates/msgpack-go/internal/errors"
)

// Reader reads markers and fixed-width big-endian payloads from an io.Reader.
// Like Writer it keeps the first error; once set, every call returns it.
type Reader struct {
	r         io.Reader
	bytesRead int
	err       error
	scratch   [8]byte
}

// NewReader creates a Reader over r.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

// Error returns the first error that occurred during reading, if any.
func (r *Reader) Error() error {
	return r.err
}

// BytesRead returns the number of bytes consumed from the source.
func (r *Reader) BytesRead() int {
	return r.bytesRead
}

func (r *Reader) recordError(err error) error {
	if r.err == nil && err != nil {
		switch err {
		case io.EOF, io.ErrUnexpectedEOF:
			// running out inside an item is never a clean end
			r.err = errors.Chain(errors.EndOfStream, "truncated input", io.ErrUnexpectedEOF)
		default:
			r.err = errors.Chain(errors.Other, "read from source", err)
		}
	}
	return r.err
}

func (r *Reader) fill(p []byte) error {
	if r.err != nil {
		return r.err
	}
	n, err := io.ReadFull(r.r, p)
	r.bytesRead += n
	if err != nil {
		return r.recordError(err)
	}
	return nil
}

// AtEOF reports whether the source ended cleanly before a new item: it
// reads one marker and reports true if there was nothing left at all.
func (r *Reader) AtEOF() (byte, bool, error) {
	if r.err != nil {
		return 0, false, r.err
	}
	n, err := io.ReadFull(r.r, r.scratch[:1])
	r.bytesRead += n
	if err == io.EOF {
		return 0, true, nil
	}
	if err != nil {
		return 0, false, r.recordError(err)
	}
	return r.scratch[0], false, nil
}

// ReadMarker reads the next marker byte.
func (r *Reader) ReadMarker() (byte, error) {
	if err := r.fill(r.scratch[:1]); err != nil {
		return 0, err
	}
	return r.scratch[0], nil
}

// ReadUint8 reads a one-byte payload.
func (r *Reader) ReadUint8() (uint8, error) {
	if err := r.fill(r.scratch[:1]); err != nil {
		return 0, err
	}
	return r.scratch[0], nil
}

// ReadUint16 reads a big-endian uint16 payload.
func (r *Reader) ReadUint16() (uint16, error) {
	if err := r.fill(r.scratch[:2]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(r.scratch[:2]), nil
}

// ReadUint32 reads a big-endian uint32 payload.
func (r *Reader) ReadUint32() (uint32, error) {
	if err := r.fill(r.scratch[:4]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(r.scratch[:4]), nil
}

// ReadUint64 reads a big-endian uint64 payload.
func (r *Reader) ReadUint64() (uint64, error) {
	if err := r.fill(r.scratch[:8]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(r.scratch[:8]), nil
}

// readChunk bounds how far a payload buffer grows ahead of the bytes
// actually received.
const readChunk = 64 << 10

// maxLength is the largest length ReadLength hands out as an int.
var maxLength uint64 = math.MaxInt

// ReadN reads exactly n bytes into a fresh slice. Large payloads are read
// in chunks, so a header that overstates the input cannot force one large
// allocation.
func (r *Reader) ReadN(n int) ([]byte, error) {
	if n == 0 {
		return []byte{}, r.err
	}
	p := make([]byte, 0, min(n, readChunk))
	for len(p) < n {
		step := min(n-len(p), readChunk)
		p = slices.Grow(p, step)
		if err := r.fill(p[len(p) : len(p)+step]); err != nil {
			return nil, err
		}
		p = p[:len(p)+step]
	}
	return p, nil
}

// ReadLength reads the length that follows a sized marker: width is 1, 2
// or 4 bytes. A length that does not fit an int is TooBig.
func (r *Reader) ReadLength(width int) (int, error) {
	var v uint64
	switch width {
	case 1:
		n, err := r.ReadUint8()
		if err != nil {
			return 0, err
		}
		v = uint64(n)
	case 2:
		n, err := r.ReadUint16()
		if err != nil {
			return 0, err
		}
		v = uint64(n)
	default:
		n, err := r.ReadUint32()
		if err != nil {
			return 0, err
		}
		v = uint64(n)
	}
	if v > maxLength {
		r.err = errors.New(errors.TooBig, "length %d does not fit an int", v)
		return 0, r.err
	}
	return int(v), nil
}
