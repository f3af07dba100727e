package msgpack

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies the variant of a Value.
type Kind uint8

const (
	KindNil Kind = iota
	KindFalse
	KindTrue
	KindInt
	KindUint
	KindFloat32
	KindFloat64
	KindBin
	KindStr
	KindArray
	KindMap
)

var kindNames = [...]string{
	KindNil:     "nil",
	KindFalse:   "false",
	KindTrue:    "true",
	KindInt:     "int",
	KindUint:    "uint",
	KindFloat32: "float32",
	KindFloat64: "float64",
	KindBin:     "bin",
	KindStr:     "str",
	KindArray:   "array",
	KindMap:     "map",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Value is a self-describing MessagePack item. The set of implementations is
// closed: Nil, Bool, Int, Uint, Float32, Float64, Bin, Str, Array and Map.
//
// A Value owns its tree. Values are not mutated after construction; use
// Clone before handing a tree to code that might.
type Value interface {
	Kind() Kind
	MarshalMsgpack(Encoder) error
	String() string
	isValue()
}

type (
	// Nil is the nil item.
	Nil struct{}
	// Bool is true or false.
	Bool bool
	// Int is a signed integer. It is written as int64 and never merged with Uint.
	Int int64
	// Uint is an unsigned integer. It is written as uint64.
	Uint uint64
	// Float32 is a single-precision float.
	Float32 float32
	// Float64 is a double-precision float.
	Float64 float64
	// Bin is a byte string.
	Bin []byte
	// Str is a UTF-8 string.
	Str string
	// Array is an ordered sequence.
	Array []Value
	// Map is an ordered list of entries. Keys may repeat and order is kept.
	Map []Pair
)

// Pair is one Map entry.
type Pair struct {
	Key Value
	Val Value
}

func (Nil) isValue()     {}
func (Bool) isValue()    {}
func (Int) isValue()     {}
func (Uint) isValue()    {}
func (Float32) isValue() {}
func (Float64) isValue() {}
func (Bin) isValue()     {}
func (Str) isValue()     {}
func (Array) isValue()   {}
func (Map) isValue()     {}

func (Nil) Kind() Kind { return KindNil }

func (b Bool) Kind() Kind {
	if b {
		return KindTrue
	}
	return KindFalse
}

func (Int) Kind() Kind     { return KindInt }
func (Uint) Kind() Kind    { return KindUint }
func (Float32) Kind() Kind { return KindFloat32 }
func (Float64) Kind() Kind { return KindFloat64 }
func (Bin) Kind() Kind     { return KindBin }
func (Str) Kind() Kind     { return KindStr }
func (Array) Kind() Kind   { return KindArray }
func (Map) Kind() Kind     { return KindMap }

func (v Nil) MarshalMsgpack(e Encoder) error     { return e.EncodeScalar(v) }
func (v Bool) MarshalMsgpack(e Encoder) error    { return e.EncodeScalar(v) }
func (v Int) MarshalMsgpack(e Encoder) error     { return e.EncodeScalar(v) }
func (v Uint) MarshalMsgpack(e Encoder) error    { return e.EncodeScalar(v) }
func (v Float32) MarshalMsgpack(e Encoder) error { return e.EncodeScalar(v) }
func (v Float64) MarshalMsgpack(e Encoder) error { return e.EncodeScalar(v) }
func (v Bin) MarshalMsgpack(e Encoder) error     { return e.EncodeScalar(v) }
func (v Str) MarshalMsgpack(e Encoder) error     { return e.EncodeScalar(v) }

func (v Array) MarshalMsgpack(e Encoder) error {
	seq, err := e.EncodeSeq(len(v))
	if err != nil {
		return err
	}
	for _, el := range v {
		if err := seq.Elem(el); err != nil {
			return err
		}
	}
	return seq.End()
}

func (v Map) MarshalMsgpack(e Encoder) error {
	m, err := e.EncodeMap(len(v))
	if err != nil {
		return err
	}
	for _, p := range v {
		if err := m.Key(p.Key); err != nil {
			return err
		}
		if err := m.Value(p.Val); err != nil {
			return err
		}
	}
	return m.End()
}

func (Nil) String() string       { return "nil" }
func (v Bool) String() string    { return strconv.FormatBool(bool(v)) }
func (v Int) String() string     { return strconv.FormatInt(int64(v), 10) }
func (v Uint) String() string    { return strconv.FormatUint(uint64(v), 10) + "u" }
func (v Float32) String() string { return strconv.FormatFloat(float64(v), 'g', -1, 32) + "f32" }
func (v Float64) String() string { return strconv.FormatFloat(float64(v), 'g', -1, 64) }
func (v Bin) String() string     { return "bin(" + hex.EncodeToString(v) + ")" }
func (v Str) String() string     { return strconv.Quote(string(v)) }

func (v Array) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for i, el := range v {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(stringOf(el))
	}
	b.WriteByte(']')
	return b.String()
}

func (v Map) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, p := range v {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s: %s", stringOf(p.Key), stringOf(p.Val))
	}
	b.WriteByte('}')
	return b.String()
}

func stringOf(v Value) string {
	if v == nil {
		return "nil"
	}
	return v.String()
}

// KindOf returns v's kind. A nil interface counts as Nil.
func KindOf(v Value) Kind {
	if v == nil {
		return KindNil
	}
	return v.Kind()
}

func IsNil(v Value) bool     { return KindOf(v) == KindNil }
func IsFalse(v Value) bool   { return KindOf(v) == KindFalse }
func IsTrue(v Value) bool    { return KindOf(v) == KindTrue }
func IsInt(v Value) bool     { return KindOf(v) == KindInt }
func IsUint(v Value) bool    { return KindOf(v) == KindUint }
func IsFloat32(v Value) bool { return KindOf(v) == KindFloat32 }
func IsFloat64(v Value) bool { return KindOf(v) == KindFloat64 }
func IsBin(v Value) bool     { return KindOf(v) == KindBin }
func IsStr(v Value) bool     { return KindOf(v) == KindStr }
func IsArray(v Value) bool   { return KindOf(v) == KindArray }
func IsMap(v Value) bool     { return KindOf(v) == KindMap }

// Clone returns a deep copy of v that shares no memory with it.
func Clone(v Value) Value {
	switch v := v.(type) {
	case nil:
		return Nil{}
	case Bin:
		if v == nil {
			return Bin{}
		}
		return Bin(bytes.Clone(v))
	case Array:
		out := make(Array, len(v))
		for i, el := range v {
			out[i] = Clone(el)
		}
		return out
	case Map:
		out := make(Map, len(v))
		for i, p := range v {
			out[i] = Pair{Key: Clone(p.Key), Val: Clone(p.Val)}
		}
		return out
	default:
		return v
	}
}

// Equal reports whether a and b are the same tree. Map entries are compared
// in order, and Int never equals Uint.
func Equal(a, b Value) bool {
	if KindOf(a) != KindOf(b) {
		return false
	}
	switch a := a.(type) {
	case nil, Nil, Bool:
		return true
	case Int:
		return a == b.(Int)
	case Uint:
		return a == b.(Uint)
	case Float32:
		return a == b.(Float32)
	case Float64:
		return a == b.(Float64)
	case Bin:
		return bytes.Equal(a, b.(Bin))
	case Str:
		return a == b.(Str)
	case Array:
		bb := b.(Array)
		if len(a) != len(bb) {
			return false
		}
		for i := range a {
			if !Equal(a[i], bb[i]) {
				return false
			}
		}
		return true
	case Map:
		bb := b.(Map)
		if len(a) != len(bb) {
			return false
		}
		for i := range a {
			if !Equal(a[i].Key, bb[i].Key) || !Equal(a[i].Val, bb[i].Val) {
				return false
			}
		}
		return true
	}
	return false
}
