package wire

import (
	"encoding/binary"
	"io"

	"github.com/clockworklabs/SpacetimeDB/crates/msgpack-go/internal/errors"
)

// sizeClass describes the family of length headers of one container kind.
// fixMax < 0 means the kind has no fix form; m8 == 0 means it has no 8-bit form.
type sizeClass struct {
	name   string
	fix    byte
	fixMax int
	m8     byte
	m16    byte
	m32    byte
}

var (
	mapClass   = sizeClass{name: "map", fix: FixmapMask, fixMax: MaxFixmap, m16: Map16, m32: Map32}
	arrayClass = sizeClass{name: "array", fix: FixarrayMask, fixMax: MaxFixarray, m16: Array16, m32: Array32}
	strClass   = sizeClass{name: "str", fix: FixstrMask, fixMax: MaxFixstr, m8: Str8, m16: Str16, m32: Str32}
	binClass   = sizeClass{name: "bin", fixMax: -1, m8: Bin8, m16: Bin16, m32: Bin32}
)

func (c sizeClass) append(dst []byte, n int) ([]byte, error) {
	switch {
	case n < 0:
		return dst, errors.New(errors.BadLength, "negative %s length %d", c.name, n)
	case n <= c.fixMax:
		return append(dst, c.fix|byte(n)), nil
	case c.m8 != 0 && n <= Max8:
		return append(dst, c.m8, byte(n)), nil
	case n <= Max16:
		dst = append(dst, c.m16)
		return binary.BigEndian.AppendUint16(dst, uint16(n)), nil
	case uint64(n) <= Max32:
		dst = append(dst, c.m32)
		return binary.BigEndian.AppendUint32(dst, uint32(n)), nil
	default:
		return dst, errors.New(errors.TooBig, "%s length %d exceeds %d", c.name, n, uint64(Max32))
	}
}

func (c sizeClass) len(n int) int {
	switch {
	case n < 0:
		return 0
	case n <= c.fixMax:
		return 1
	case c.m8 != 0 && n <= Max8:
		return 2
	case n <= Max16:
		return 3
	case uint64(n) <= Max32:
		return 5
	default:
		return 0
	}
}

// AppendMapHeader appends the minimal header for a map of n entries.
// On failure dst is returned unchanged.
func AppendMapHeader(dst []byte, n int) ([]byte, error) { return mapClass.append(dst, n) }

// AppendArrayHeader appends the minimal header for an array of n elements.
func AppendArrayHeader(dst []byte, n int) ([]byte, error) { return arrayClass.append(dst, n) }

// AppendStrHeader appends the minimal header for a string of n bytes.
func AppendStrHeader(dst []byte, n int) ([]byte, error) { return strClass.append(dst, n) }

// AppendBinHeader appends the minimal header for a byte string of n bytes.
func AppendBinHeader(dst []byte, n int) ([]byte, error) { return binClass.append(dst, n) }

// MapHeaderLen returns the encoded size of a map header for n entries, or 0
// if n cannot be encoded.
func MapHeaderLen(n int) int { return mapClass.len(n) }

// ArrayHeaderLen is MapHeaderLen for arrays.
func ArrayHeaderLen(n int) int { return arrayClass.len(n) }

// WriteMapHeader writes the header for a map of n entries to w in a single
// Write call. Nothing is written when n is out of range.
func WriteMapHeader(w io.Writer, n int) error {
	return writeHeader(w, mapClass, n)
}

// WriteArrayHeader writes the header for an array of n elements to w.
func WriteArrayHeader(w io.Writer, n int) error {
	return writeHeader(w, arrayClass, n)
}

func writeHeader(w io.Writer, c sizeClass, n int) error {
	var scratch [5]byte
	hdr, err := c.append(scratch[:0], n)
	if err != nil {
		return err
	}
	if _, err := w.Write(hdr); err != nil {
		return errors.Chain(errors.Other, "write "+c.name+" header", err)
	}
	return nil
}
