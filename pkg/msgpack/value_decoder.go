package msgpack

import (
	"github.com/clockworklabs/SpacetimeDB/crates/msgpack-go/internal/errors"
)

// valueDecoder is the Decoder over a Value tree. It never modifies the tree.
type valueDecoder struct {
	v   Value
	cfg *Config
}

// NewValueDecoder returns a Decoder that reads v.
func NewValueDecoder(v Value) Decoder {
	return &valueDecoder{v: v, cfg: defaultConfig}
}

func (d *valueDecoder) config() *Config { return d.cfg }

func (d *valueDecoder) Decode(vis Visitor) error {
	switch v := d.v.(type) {
	case nil:
		return vis.VisitScalar(Nil{})
	case Array:
		acc := &seqAccess{cfg: d.cfg, items: v}
		if err := vis.VisitSeq(acc); err != nil {
			return err
		}
		if left := acc.Len(); left > 0 {
			return errors.New(errors.BadLength, "%d of %d array elements left unread", left, len(v))
		}
		return nil
	case Map:
		acc := &mapAccess{cfg: d.cfg, entries: v}
		if err := vis.VisitMap(acc); err != nil {
			return err
		}
		if left := acc.Len(); left > 0 {
			return errors.New(errors.BadLength, "%d of %d map entries left unread", left, len(v))
		}
		return nil
	default:
		return vis.VisitScalar(v)
	}
}

func (d *valueDecoder) DecodeEnum(vis EnumVisitor) error {
	acc, err := enumAccessOf(d.v, d.cfg)
	if err != nil {
		return err
	}
	return vis.VisitEnum(acc)
}

type seqAccess struct {
	cfg   *Config
	items Array
	pos   int
}

func (s *seqAccess) Len() int { return len(s.items) - s.pos }

func (s *seqAccess) Next(dst any) (bool, error) {
	if s.pos >= len(s.items) {
		return false, nil
	}
	el := s.items[s.pos]
	s.pos++
	return true, decodeInto(&valueDecoder{v: el, cfg: s.cfg}, dst)
}

type mapAccess struct {
	cfg        *Config
	entries    Map
	pos        int
	keyPending bool
}

// Len counts an entry whose key was read but not its value as left.
func (m *mapAccess) Len() int { return len(m.entries) - m.pos }

func (m *mapAccess) NextKey(dst any) (bool, error) {
	if m.keyPending {
		return false, errors.New(errors.Other, "map key requested before the previous value")
	}
	if m.pos >= len(m.entries) {
		return false, nil
	}
	m.keyPending = true
	return true, decodeInto(&valueDecoder{v: m.entries[m.pos].Key, cfg: m.cfg}, dst)
}

func (m *mapAccess) NextValue(dst any) error {
	if !m.keyPending {
		return errors.New(errors.EndOfStream, "map value requested without a key")
	}
	val := m.entries[m.pos].Val
	m.keyPending = false
	m.pos++
	return decodeInto(&valueDecoder{v: val, cfg: m.cfg}, dst)
}

// Decode decodes val into dst, which must be an Unmarshaler, a *Value or a
// non-nil pointer.
func Decode(val Value, dst any) error {
	return DecodeWithConfig(val, dst, nil)
}

// DecodeWithConfig is Decode with explicit settings.
func DecodeWithConfig(val Value, dst any, cfg *Config) error {
	return decodeInto(&valueDecoder{v: val, cfg: orDefault(cfg)}, dst)
}

// Convert moves src into dst through a Value: src is encoded with FromValue
// and the result decoded into dst.
func Convert(src, dst any) error {
	v, err := FromValue(src)
	if err != nil {
		return err
	}
	return Decode(v, dst)
}
