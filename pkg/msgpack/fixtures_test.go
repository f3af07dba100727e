package msgpack

import (
	"encoding/hex"
	stderrors "errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// hexBytes parses space-separated hex.
func hexBytes(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(strings.ReplaceAll(s, " ", ""))
	require.NoError(t, err)
	return b
}

// T is a sum type with one variant of each kind:
//
//	B        unit
//	A(i32)   newtype
//	C(i32, i32) tuple
//	D{a: i32} struct
type T struct {
	Variant string
	A       int32
	C       [2]int32
	D       struct{ A int32 }
}

func (t T) MarshalMsgpack(e Encoder) error {
	var (
		ve  VariantEncoder
		err error
	)
	switch t.Variant {
	case "B":
		ve, err = e.EncodeVariant("B", UnitVariant, 0)
	case "A":
		if ve, err = e.EncodeVariant("A", NewtypeVariant, 1); err == nil {
			err = ve.Elem(t.A)
		}
	case "C":
		if ve, err = e.EncodeVariant("C", TupleVariant, 2); err == nil {
			if err = ve.Elem(t.C[0]); err == nil {
				err = ve.Elem(t.C[1])
			}
		}
	case "D":
		if ve, err = e.EncodeVariant("D", StructVariant, 1); err == nil {
			err = ve.Field("a", t.D.A)
		}
	default:
		return stderrors.New("unknown variant " + t.Variant)
	}
	if err != nil {
		return err
	}
	return ve.End()
}

func (t *T) UnmarshalMsgpack(d Decoder) error {
	return d.DecodeEnum(tVisitor{t})
}

type tVisitor struct {
	t *T
}

func (v tVisitor) VisitEnum(a EnumAccess) error {
	var name string
	if err := a.Variant(&name); err != nil {
		return err
	}
	*v.t = T{Variant: name}
	switch name {
	case "B":
		return a.Unit()
	case "A":
		return a.Newtype(&v.t.A)
	case "C":
		return a.Tuple(2, &pairVisitor{BaseVisitor{Expecting: "pair"}, &v.t.C})
	case "D":
		return a.Struct(&dVisitor{BaseVisitor{Expecting: "struct D"}, &v.t.D.A})
	}
	return stderrors.New("unknown variant " + name)
}

type pairVisitor struct {
	BaseVisitor
	dst *[2]int32
}

func (p *pairVisitor) VisitSeq(s SeqAccess) error {
	for i := range p.dst {
		ok, err := s.Next(&p.dst[i])
		if err != nil {
			return err
		}
		if !ok {
			return stderrors.New("short tuple")
		}
	}
	return nil
}

type dVisitor struct {
	BaseVisitor
	a *int32
}

func (d *dVisitor) VisitMap(m MapAccess) error {
	for {
		var key string
		ok, err := m.NextKey(&key)
		if err != nil || !ok {
			return err
		}
		if key == "a" {
			err = m.NextValue(d.a)
		} else {
			var skip Value
			err = m.NextValue(&skip)
		}
		if err != nil {
			return err
		}
	}
}

var (
	tB = T{Variant: "B"}
	tA = T{Variant: "A", A: 42}
	tC = T{Variant: "C", C: [2]int32{-3, 22}}
	tD = T{Variant: "D", D: struct{ A int32 }{A: 9001}}
)

// marshalFunc adapts a function to Marshaler.
type marshalFunc func(Encoder) error

func (f marshalFunc) MarshalMsgpack(e Encoder) error { return f(e) }

// entries is a map of n entries {"k<i>": Uint(i)} that declares hint as its
// length.
func entries(n, hint int) Marshaler {
	return marshalFunc(func(e Encoder) error {
		m, err := e.EncodeMap(hint)
		if err != nil {
			return err
		}
		for i := 0; i < n; i++ {
			if err := m.Key(Str("k" + itoa(i))); err != nil {
				return err
			}
			if err := m.Value(Uint(i)); err != nil {
				return err
			}
		}
		return m.End()
	})
}

func itoa(i int) string {
	return Int(i).String()
}

var errBoom = stderrors.New("boom")
