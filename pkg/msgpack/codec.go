package msgpack

import (
	"reflect"

	"github.com/clockworklabs/SpacetimeDB/crates/msgpack-go/internal/errors"
)

// Marshaler is implemented by types that encode themselves.
type Marshaler interface {
	MarshalMsgpack(Encoder) error
}

// Unmarshaler is implemented by types that decode themselves. The receiver
// should be a pointer.
type Unmarshaler interface {
	UnmarshalMsgpack(Decoder) error
}

// Encoder receives exactly one item per call site. Scalars are written in a
// single call; collections and variants return a sub-encoder that must be
// ended.
//
// Elements passed to the sub-encoders are encoded with their Marshaler if
// they have one and through reflection otherwise.
type Encoder interface {
	// EncodeScalar writes any Value except Array and Map.
	EncodeScalar(v Value) error
	// EncodeSeq starts an array of n elements. n < 0 means the length is not
	// known yet.
	EncodeSeq(n int) (SeqEncoder, error)
	// EncodeMap starts a map of n entries. n < 0 means the length is not
	// known yet.
	EncodeMap(n int) (MapEncoder, error)
	// EncodeVariant starts a sum-type variant. n is the number of payload
	// items for tuple and struct variants, or -1 if unknown; it is ignored
	// for the other kinds.
	EncodeVariant(name string, kind VariantKind, n int) (VariantEncoder, error)
}

// SeqEncoder writes the elements of an array.
type SeqEncoder interface {
	Elem(v any) error
	End() error
}

// MapEncoder writes the entries of a map. Key and Value must alternate.
type MapEncoder interface {
	Key(k any) error
	Value(v any) error
	End() error
}

// VariantEncoder writes a variant payload: Elem for newtype and tuple
// variants, Field for struct variants.
type VariantEncoder interface {
	Elem(v any) error
	Field(name string, v any) error
	End() error
}

// Decoder hands one item to a visitor.
type Decoder interface {
	Decode(v Visitor) error
	DecodeEnum(v EnumVisitor) error
}

// Visitor receives the item a Decoder produces. Exactly one method is
// called, matching the item's shape.
type Visitor interface {
	VisitScalar(v Value) error
	VisitSeq(s SeqAccess) error
	VisitMap(m MapAccess) error
}

// SeqAccess iterates the elements of an array once, in order. Elements left
// unread when the visitor returns are an error.
type SeqAccess interface {
	// Len reports how many elements are left.
	Len() int
	// Next decodes the next element into dst and reports false once the
	// array is exhausted.
	Next(dst any) (bool, error)
}

// MapAccess iterates the entries of a map once, in order. NextKey and
// NextValue must alternate.
type MapAccess interface {
	// Len reports how many entries are left.
	Len() int
	NextKey(dst any) (bool, error)
	NextValue(dst any) error
}

// EnumVisitor receives a sum-type variant.
type EnumVisitor interface {
	VisitEnum(a EnumAccess) error
}

// EnumAccess exposes the discriminant of a variant and then its payload.
type EnumAccess interface {
	// Variant decodes the discriminant (the variant name).
	Variant(dst any) error
	Unit() error
	Newtype(dst any) error
	// Tuple requires the payload to be an array of exactly n elements.
	Tuple(n int, v Visitor) error
	Struct(v Visitor) error
}

// BaseVisitor rejects every shape. Embed it and override the methods for
// the shapes a type accepts.
type BaseVisitor struct {
	// Expecting names what the visitor accepts, for error messages.
	Expecting string
}

func (b BaseVisitor) expecting() string {
	if b.Expecting == "" {
		return "a different value"
	}
	return b.Expecting
}

func (b BaseVisitor) VisitScalar(v Value) error {
	return errors.Mismatch(b.expecting(), KindOf(v).String())
}

func (b BaseVisitor) VisitSeq(SeqAccess) error {
	return errors.Mismatch(b.expecting(), "array")
}

func (b BaseVisitor) VisitMap(MapAccess) error {
	return errors.Mismatch(b.expecting(), "map")
}

// VisitFunc adapts a function that takes the whole item as a Value.
type VisitFunc func(Value) error

func (f VisitFunc) VisitScalar(v Value) error { return f(v) }

func (f VisitFunc) VisitSeq(s SeqAccess) error {
	v, err := collectSeq(s)
	if err != nil {
		return err
	}
	return f(v)
}

func (f VisitFunc) VisitMap(m MapAccess) error {
	v, err := collectMap(m)
	if err != nil {
		return err
	}
	return f(v)
}

func collectSeq(s SeqAccess) (Array, error) {
	out := make(Array, 0, s.Len())
	for {
		var el Value
		ok, err := s.Next(&el)
		if err != nil {
			return nil, err
		}
		if !ok {
			return out, nil
		}
		out = append(out, el)
	}
}

func collectMap(m MapAccess) (Map, error) {
	out := make(Map, 0, m.Len())
	for {
		var p Pair
		ok, err := m.NextKey(&p.Key)
		if err != nil {
			return nil, err
		}
		if !ok {
			return out, nil
		}
		if err := m.NextValue(&p.Val); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
}

// configured is implemented by the encoders and decoders in this package.
type configured interface {
	config() *Config
}

func configOf(x any) *Config {
	if c, ok := x.(configured); ok {
		return c.config()
	}
	return defaultConfig
}

var (
	marshalerType   = reflect.TypeOf((*Marshaler)(nil)).Elem()
	unmarshalerType = reflect.TypeOf((*Unmarshaler)(nil)).Elem()
	valueType       = reflect.TypeOf((*Value)(nil)).Elem()
)

// encodeAny writes v to e as one item.
func encodeAny(e Encoder, v any) error {
	switch v := v.(type) {
	case nil:
		return e.EncodeScalar(Nil{})
	case Marshaler:
		return v.MarshalMsgpack(e)
	}
	return encodeReflect(e, reflect.ValueOf(v), configOf(e))
}

// decodeInto decodes the item d holds into dst, which must be an
// Unmarshaler, a *Value, or a non-nil pointer to a plain Go value.
func decodeInto(d Decoder, dst any) error {
	switch dst := dst.(type) {
	case Unmarshaler:
		return dst.UnmarshalMsgpack(d)
	case *Value:
		if dst == nil {
			return errors.Mismatch("non-nil pointer", "nil *Value")
		}
		v, err := readValue(d)
		if err != nil {
			return err
		}
		*dst = Clone(v)
		return nil
	}
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return errors.Mismatch("non-nil pointer", typeName(rv))
	}
	v, err := readValue(d)
	if err != nil {
		return err
	}
	return assignValue(rv.Elem(), v, configOf(d))
}

// readValue returns the whole item d holds.
func readValue(d Decoder) (Value, error) {
	if vd, ok := d.(*valueDecoder); ok {
		return vd.v, nil
	}
	var out Value
	err := d.Decode(VisitFunc(func(v Value) error {
		out = v
		return nil
	}))
	return out, err
}

func typeName(rv reflect.Value) string {
	if !rv.IsValid() {
		return "nil"
	}
	return rv.Type().String()
}
