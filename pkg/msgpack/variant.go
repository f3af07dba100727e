package msgpack

import (
	"strconv"

	"github.com/clockworklabs/SpacetimeDB/crates/msgpack-go/internal/errors"
)

// VariantKind is the payload shape of a sum-type variant.
type VariantKind uint8

const (
	// UnitVariant has no payload and is written as its name.
	UnitVariant VariantKind = iota + 1
	// NewtypeVariant wraps exactly one value.
	NewtypeVariant
	// TupleVariant carries positional values.
	TupleVariant
	// StructVariant carries named fields.
	StructVariant
)

func (k VariantKind) String() string {
	switch k {
	case UnitVariant:
		return "unit"
	case NewtypeVariant:
		return "newtype"
	case TupleVariant:
		return "tuple"
	case StructVariant:
		return "struct"
	default:
		return "variant(" + strconv.Itoa(int(k)) + ")"
	}
}

// variantEncoder writes a variant payload into payload and then closes any
// wrapper around it.
type variantEncoder struct {
	kind    VariantKind
	payload frame
	after   func() error
	elems   int
	ended   bool
}

func (v *variantEncoder) Elem(x any) error {
	if v.ended {
		return errAlreadyFinished
	}
	switch v.kind {
	case UnitVariant:
		return errors.New(errors.BadLength, "unit variant takes no payload")
	case NewtypeVariant:
		if v.elems > 0 {
			return errors.New(errors.BadLength, "newtype variant takes exactly one value")
		}
	case StructVariant:
		return errors.Mismatch("struct field", "tuple element")
	}
	if err := v.payload.element(x); err != nil {
		return err
	}
	v.elems++
	return nil
}

func (v *variantEncoder) Field(name string, x any) error {
	if v.ended {
		return errAlreadyFinished
	}
	if v.kind != StructVariant {
		return errors.Mismatch(v.kind.String()+" payload", "struct field")
	}
	if err := v.payload.element(Str(name)); err != nil {
		return err
	}
	if err := v.payload.element(x); err != nil {
		return err
	}
	v.elems++
	return nil
}

func (v *variantEncoder) End() error {
	if v.ended {
		return errAlreadyFinished
	}
	v.ended = true
	if v.kind == UnitVariant {
		return nil
	}
	if v.kind == NewtypeVariant && v.elems != 1 {
		return errors.New(errors.BadLength, "newtype variant takes exactly one value, got %d", v.elems)
	}
	if err := v.payload.finish(); err != nil {
		return err
	}
	if v.after != nil {
		return v.after()
	}
	return nil
}

func checkVariantKind(k VariantKind) error {
	if k < UnitVariant || k > StructVariant {
		return errors.New(errors.InvalidType, "unknown variant kind %d", uint8(k))
	}
	return nil
}

// EncodeVariant implements Encoder. A unit variant is written at once as
// its name; the other kinds open a one-entry map keyed by the name.
func (s *Serializer) EncodeVariant(name string, kind VariantKind, n int) (VariantEncoder, error) {
	if err := checkVariantKind(kind); err != nil {
		return nil, err
	}
	if kind == UnitVariant {
		if err := s.EncodeScalar(Str(name)); err != nil {
			return nil, err
		}
		return &variantEncoder{kind: kind}, nil
	}

	outer, err := s.begin(classMap, 1)
	if err != nil {
		return nil, err
	}
	if err := outer.element(Str(name)); err != nil {
		return nil, err
	}
	if kind == NewtypeVariant {
		return &variantEncoder{kind: kind, payload: outer}, nil
	}

	slot, err := outer.openSlot()
	if err != nil {
		return nil, err
	}
	class := classArray
	if kind == StructVariant {
		class = classMap
	}
	inner, err := slot.begin(class, n)
	if err != nil {
		return nil, err
	}
	return &variantEncoder{
		kind:    kind,
		payload: inner,
		after: func() error {
			if err := outer.closeSlot(slot); err != nil {
				return err
			}
			return outer.finish()
		},
	}, nil
}

// enumAccess reads a variant out of a Value: a Str is a unit variant, a
// one-entry Map is {name: payload}.
type enumAccess struct {
	cfg        *Config
	tag        Value
	payload    Value
	hasPayload bool
}

func enumAccessOf(v Value, cfg *Config) (*enumAccess, error) {
	switch v := v.(type) {
	case Str:
		return &enumAccess{cfg: cfg, tag: v}, nil
	case Map:
		if len(v) != 1 {
			return nil, errors.New(errors.BadLength, "variant map must have exactly one entry, found %d", len(v))
		}
		return &enumAccess{cfg: cfg, tag: v[0].Key, payload: v[0].Val, hasPayload: true}, nil
	default:
		return nil, errors.Mismatch("variant name or single-entry map", KindOf(v).String())
	}
}

func (a *enumAccess) sub(v Value) *valueDecoder {
	return &valueDecoder{v: v, cfg: a.cfg}
}

func (a *enumAccess) Variant(dst any) error {
	if err := decodeInto(a.sub(a.tag), dst); err != nil {
		return errors.Chain(errors.Other, "decode variant", err)
	}
	return nil
}

func (a *enumAccess) Unit() error {
	if !a.hasPayload || IsNil(a.payload) {
		return nil
	}
	return errors.Mismatch("unit variant", KindOf(a.payload).String())
}

func (a *enumAccess) Newtype(dst any) error {
	if !a.hasPayload {
		return errors.Mismatch("newtype variant", "unit variant")
	}
	if err := decodeInto(a.sub(a.payload), dst); err != nil {
		return errors.Chain(errors.Other, "decode newtype", err)
	}
	return nil
}

func (a *enumAccess) Tuple(n int, v Visitor) error {
	arr, ok := a.payload.(Array)
	if !a.hasPayload || !ok {
		return errors.Mismatch("tuple variant", a.payloadKind())
	}
	if len(arr) != n {
		return errors.InvalidLength(len(arr))
	}
	return a.sub(arr).Decode(v)
}

func (a *enumAccess) Struct(v Visitor) error {
	m, ok := a.payload.(Map)
	if !a.hasPayload || !ok {
		return errors.Mismatch("struct variant", a.payloadKind())
	}
	return a.sub(m).Decode(v)
}

func (a *enumAccess) payloadKind() string {
	if !a.hasPayload {
		return "unit variant"
	}
	return KindOf(a.payload).String()
}

// Variant is a dynamic sum-type value for callers without a Go type to
// decode into. Fields holds the payload: one value for a newtype variant,
// the elements of a tuple variant, or the field values of a struct variant
// with their names in Names.
//
// A zero Kind is inferred on decode (see UnmarshalMsgpack), so a newtype
// whose payload is nil, an array or a str-keyed map reads back as a unit,
// tuple or struct variant. Preset Kind to NewtypeVariant to keep it a
// newtype.
type Variant struct {
	Name   string
	Kind   VariantKind
	Fields []Value
	Names  []string
}

// NewUnitVariant returns a variant with no payload.
func NewUnitVariant(name string) Variant {
	return Variant{Name: name, Kind: UnitVariant}
}

// NewNewtypeVariant returns a variant wrapping v.
func NewNewtypeVariant(name string, v Value) Variant {
	return Variant{Name: name, Kind: NewtypeVariant, Fields: []Value{v}}
}

// NewTupleVariant returns a variant with positional values.
func NewTupleVariant(name string, vs ...Value) Variant {
	return Variant{Name: name, Kind: TupleVariant, Fields: vs}
}

// NewStructVariant returns a variant with named fields. names and vs must
// have the same length.
func NewStructVariant(name string, names []string, vs []Value) Variant {
	return Variant{Name: name, Kind: StructVariant, Fields: vs, Names: names}
}

func (v Variant) MarshalMsgpack(e Encoder) error {
	if v.Kind == StructVariant && len(v.Names) != len(v.Fields) {
		return errors.New(errors.BadLength, "struct variant %q has %d names for %d fields", v.Name, len(v.Names), len(v.Fields))
	}
	ve, err := e.EncodeVariant(v.Name, v.Kind, len(v.Fields))
	if err != nil {
		return err
	}
	for i, f := range v.Fields {
		if v.Kind == StructVariant {
			err = ve.Field(v.Names[i], f)
		} else {
			err = ve.Elem(f)
		}
		if err != nil {
			return err
		}
	}
	return ve.End()
}

// UnmarshalMsgpack decodes any variant. When v.Kind is zero the kind is taken
// from the payload: none or nil is unit, an array is a tuple, a map with
// string keys is a struct, and anything else is a newtype. A preset Kind is
// enforced instead; NewtypeVariant accepts any payload.
func (v *Variant) UnmarshalMsgpack(d Decoder) error {
	return d.DecodeEnum(variantVisitor{v})
}

type variantVisitor struct {
	v *Variant
}

func (vv variantVisitor) VisitEnum(a EnumAccess) error {
	var name string
	if err := a.Variant(&name); err != nil {
		return err
	}
	want := vv.v.Kind

	var payload Value
	if want == UnitVariant || (want == 0 && a.Unit() == nil) {
		if err := a.Unit(); err != nil {
			return err
		}
		*vv.v = Variant{Name: name, Kind: UnitVariant}
		return nil
	}
	if err := a.Newtype(&payload); err != nil {
		return err
	}

	kind := inferVariantKind(payload)
	if want == NewtypeVariant {
		kind = NewtypeVariant
	}
	if want != 0 && want != kind {
		return errors.Mismatch(want.String()+" variant", kind.String()+" variant")
	}

	out := Variant{Name: name, Kind: kind}
	switch kind {
	case TupleVariant:
		out.Fields = []Value(payload.(Array))
	case StructVariant:
		m := payload.(Map)
		out.Names = make([]string, len(m))
		out.Fields = make([]Value, len(m))
		for i, p := range m {
			out.Names[i] = string(p.Key.(Str))
			out.Fields[i] = p.Val
		}
	default:
		out.Fields = []Value{payload}
	}
	*vv.v = out
	return nil
}

func inferVariantKind(payload Value) VariantKind {
	switch p := payload.(type) {
	case Array:
		return TupleVariant
	case Map:
		for _, e := range p {
			if _, ok := e.Key.(Str); !ok {
				return NewtypeVariant
			}
		}
		return StructVariant
	}
	return NewtypeVariant
}
