package msgpack

import (
	"io"
	"math"

	"go.uber.org/zap"

	"github.com/clockworklabs/SpacetimeDB/crates/msgpack-go/internal/errors"
	"github.com/clockworklabs/SpacetimeDB/crates/msgpack-go/internal/wire"
)

// maxPrealloc caps how much a container header alone can make the reader
// allocate.
const maxPrealloc = 4096

// Reader parses MessagePack items from a byte stream into Values.
type Reader struct {
	r   *wire.Reader
	cfg *Config
}

// NewReader returns a Reader over r. A nil cfg means DefaultConfig.
func NewReader(r io.Reader, cfg *Config) *Reader {
	return &Reader{r: wire.NewReader(r), cfg: orDefault(cfg)}
}

// BytesRead reports how many bytes were consumed.
func (r *Reader) BytesRead() int { return r.r.BytesRead() }

// ReadValue parses the next item. At a clean end of input it returns an
// EndOfStream error that wraps io.EOF.
func (r *Reader) ReadValue() (Value, error) {
	m, eof, err := r.r.AtEOF()
	if err != nil {
		return nil, err
	}
	if eof {
		return nil, errors.Chain(errors.EndOfStream, "no more items", io.EOF)
	}
	v, err := r.readItem(m, 0)
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (r *Reader) next(depth int) (Value, error) {
	m, err := r.r.ReadMarker()
	if err != nil {
		return nil, err
	}
	return r.readItem(m, depth)
}

func (r *Reader) readItem(m byte, depth int) (Value, error) {
	switch {
	case wire.IsPosFixint(m):
		return Uint(m), nil
	case wire.IsNegFixint(m):
		return Int(int8(m)), nil
	case wire.IsFixmap(m):
		return r.readMap(int(m&0x0f), depth)
	case wire.IsFixarray(m):
		return r.readArray(int(m&0x0f), depth)
	case wire.IsFixstr(m):
		return r.readStr(int(m & 0x1f))
	}

	switch m {
	case wire.Nil:
		return Nil{}, nil
	case wire.False:
		return Bool(false), nil
	case wire.True:
		return Bool(true), nil

	case wire.Uint8:
		v, err := r.r.ReadUint8()
		return Uint(v), err
	case wire.Uint16:
		v, err := r.r.ReadUint16()
		return Uint(v), err
	case wire.Uint32:
		v, err := r.r.ReadUint32()
		return Uint(v), err
	case wire.Uint64:
		v, err := r.r.ReadUint64()
		return Uint(v), err

	case wire.Int8:
		v, err := r.r.ReadUint8()
		return Int(int8(v)), err
	case wire.Int16:
		v, err := r.r.ReadUint16()
		return Int(int16(v)), err
	case wire.Int32:
		v, err := r.r.ReadUint32()
		return Int(int32(v)), err
	case wire.Int64:
		v, err := r.r.ReadUint64()
		return Int(int64(v)), err

	case wire.Float32:
		v, err := r.r.ReadUint32()
		return Float32(math.Float32frombits(v)), err
	case wire.Float64:
		v, err := r.r.ReadUint64()
		return Float64(math.Float64frombits(v)), err

	case wire.Str8, wire.Str16, wire.Str32:
		n, err := r.r.ReadLength(lengthWidth(m, wire.Str8))
		if err != nil {
			return nil, err
		}
		return r.readStr(n)
	case wire.Bin8, wire.Bin16, wire.Bin32:
		n, err := r.r.ReadLength(lengthWidth(m, wire.Bin8))
		if err != nil {
			return nil, err
		}
		return r.readBin(n)
	case wire.Array16, wire.Array32:
		n, err := r.r.ReadLength(lengthWidth(m, wire.Array16-1))
		if err != nil {
			return nil, err
		}
		return r.readArray(n, depth)
	case wire.Map16, wire.Map32:
		n, err := r.r.ReadLength(lengthWidth(m, wire.Map16-1))
		if err != nil {
			return nil, err
		}
		return r.readMap(n, depth)
	}
	return nil, errors.Mismatch("msgpack value", wire.MarkerName(m))
}

// lengthWidth maps the markers first, first+1, first+2 to widths 1, 2, 4.
func lengthWidth(m, first byte) int {
	return 1 << (m - first)
}

func (r *Reader) checkPayload(kind string, n int) error {
	if n > r.cfg.MaxPayloadLen {
		r.cfg.logger().Debug("payload exceeds limit",
			zap.String("kind", kind),
			zap.Int("len", n),
			zap.Int("limit", r.cfg.MaxPayloadLen))
		return errors.New(errors.TooBig, "%s of %d bytes exceeds limit %d", kind, n, r.cfg.MaxPayloadLen)
	}
	return nil
}

func (r *Reader) checkContainer(kind string, n, depth int) error {
	if depth >= r.cfg.MaxDepth {
		r.cfg.logger().Debug("nesting exceeds limit", zap.Int("limit", r.cfg.MaxDepth))
		return errors.New(errors.TooBig, "nesting exceeds max depth %d", r.cfg.MaxDepth)
	}
	if n > r.cfg.MaxContainerLen {
		r.cfg.logger().Debug("container exceeds limit",
			zap.String("kind", kind),
			zap.Int("len", n),
			zap.Int("limit", r.cfg.MaxContainerLen))
		return errors.New(errors.TooBig, "%s of %d entries exceeds limit %d", kind, n, r.cfg.MaxContainerLen)
	}
	return nil
}

func (r *Reader) readStr(n int) (Value, error) {
	if err := r.checkPayload("str", n); err != nil {
		return nil, err
	}
	p, err := r.r.ReadN(n)
	if err != nil {
		return nil, err
	}
	return Str(p), nil
}

func (r *Reader) readBin(n int) (Value, error) {
	if err := r.checkPayload("bin", n); err != nil {
		return nil, err
	}
	p, err := r.r.ReadN(n)
	if err != nil {
		return nil, err
	}
	return Bin(p), nil
}

func (r *Reader) readArray(n, depth int) (Value, error) {
	if err := r.checkContainer("array", n, depth); err != nil {
		return nil, err
	}
	out := make(Array, 0, min(n, maxPrealloc))
	for i := 0; i < n; i++ {
		el, err := r.next(depth + 1)
		if err != nil {
			return nil, err
		}
		out = append(out, el)
	}
	return out, nil
}

func (r *Reader) readMap(n, depth int) (Value, error) {
	if err := r.checkContainer("map", n, depth); err != nil {
		return nil, err
	}
	out := make(Map, 0, min(n, maxPrealloc))
	for i := 0; i < n; i++ {
		k, err := r.next(depth + 1)
		if err != nil {
			return nil, err
		}
		v, err := r.next(depth + 1)
		if err != nil {
			return nil, err
		}
		out = append(out, Pair{Key: k, Val: v})
	}
	return out, nil
}
