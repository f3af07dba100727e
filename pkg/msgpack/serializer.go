package msgpack

import (
	"io"

	"github.com/clockworklabs/SpacetimeDB/crates/msgpack-go/internal/errors"
	"github.com/clockworklabs/SpacetimeDB/crates/msgpack-go/internal/wire"
)

// Serializer is the Encoder that writes MessagePack bytes to a sink.
// Ints are always written as int64 and uints as uint64.
//
// A Serializer is not safe for concurrent use.
type Serializer struct {
	w     *wire.Writer
	cfg   *Config
	depth int
	items int // items started at this level
	open  int // collections started here and not yet finished
}

// NewSerializer returns a Serializer writing to w. A nil cfg means
// DefaultConfig.
func NewSerializer(w io.Writer, cfg *Config) *Serializer {
	return &Serializer{w: wire.NewWriter(w), cfg: orDefault(cfg)}
}

func (s *Serializer) config() *Config { return s.cfg }

// BytesWritten reports how many bytes reached the sink.
func (s *Serializer) BytesWritten() int { return s.w.BytesWritten() }

// Encode writes v as exactly one complete item.
func (s *Serializer) Encode(v any) error {
	before := s.items
	if err := encodeAny(s, v); err != nil {
		return err
	}
	return checkItems(s.items-before, s.open)
}

// EncodeScalar implements Encoder.
func (s *Serializer) EncodeScalar(v Value) error {
	if err := s.w.Error(); err != nil {
		return err
	}
	switch v := v.(type) {
	case nil, Nil:
		s.w.WriteNil()
	case Bool:
		s.w.WriteBool(bool(v))
	case Int:
		s.w.WriteInt64(int64(v))
	case Uint:
		s.w.WriteUint64(uint64(v))
	case Float32:
		s.w.WriteFloat32(float32(v))
	case Float64:
		s.w.WriteFloat64(float64(v))
	case Bin:
		s.w.WriteBin(v)
	case Str:
		s.w.WriteString(string(v))
	default:
		return errors.Mismatch("scalar", v.Kind().String())
	}
	if err := s.w.Error(); err != nil {
		return err
	}
	s.items++
	return nil
}

// EncodeSeq implements Encoder.
func (s *Serializer) EncodeSeq(n int) (SeqEncoder, error) {
	f, err := s.begin(classArray, n)
	if err != nil {
		return nil, err
	}
	return &seqFrame{f: f}, nil
}

// EncodeMap implements Encoder.
func (s *Serializer) EncodeMap(n int) (MapEncoder, error) {
	f, err := s.begin(classMap, n)
	if err != nil {
		return nil, err
	}
	return &mapFrame{f: f}, nil
}

func (s *Serializer) begin(class collectionClass, hint int) (*framer, error) {
	if err := s.w.Error(); err != nil {
		return nil, err
	}
	if s.depth >= s.cfg.MaxDepth {
		return nil, errors.New(errors.TooBig, "nesting exceeds max depth %d", s.cfg.MaxDepth)
	}
	f, err := startFrame(s, class, hint)
	if err != nil {
		return nil, err
	}
	s.items++
	s.open++
	return f, nil
}

// checkItems validates what one slot produced.
func checkItems(items, open int) error {
	switch {
	case open != 0:
		return errors.New(errors.BadLength, "value left a collection unfinished")
	case items == 0:
		return errors.New(errors.BadLength, "value serialized into no items")
	case items > 1:
		return errors.New(errors.BadLength, "value serialized into more than one item")
	}
	return nil
}

type seqFrame struct {
	f frame
}

func (s *seqFrame) Elem(v any) error { return s.f.element(v) }
func (s *seqFrame) End() error       { return s.f.finish() }

type mapFrame struct {
	f            frame
	valuePending bool
}

func (m *mapFrame) Key(k any) error {
	if m.f.done() {
		return errAlreadyFinished
	}
	if m.valuePending {
		return errors.New(errors.Other, "map key written before the previous value")
	}
	if err := m.f.element(k); err != nil {
		return err
	}
	m.valuePending = true
	return nil
}

func (m *mapFrame) Value(v any) error {
	if m.f.done() {
		return errAlreadyFinished
	}
	if !m.valuePending {
		return errors.New(errors.Other, "map value written without a key")
	}
	if err := m.f.element(v); err != nil {
		return err
	}
	m.valuePending = false
	return nil
}

func (m *mapFrame) End() error { return m.f.finish() }
