package msgpack

import (
	stderrors "errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnumWireShapes(t *testing.T) {
	tests := []struct {
		name  string
		in    T
		value Value
		wire  string
	}{
		{
			name:  "unit",
			in:    tB,
			value: Str("B"),
			wire:  "a1 42",
		},
		{
			name:  "newtype",
			in:    tA,
			value: Map{{Key: Str("A"), Val: Int(42)}},
			wire:  "81 a1 41 d3 00 00 00 00 00 00 00 2a",
		},
		{
			name:  "tuple",
			in:    tC,
			value: Map{{Key: Str("C"), Val: Array{Int(-3), Int(22)}}},
			wire:  "81 a1 43 92 d3 ff ff ff ff ff ff ff fd d3 00 00 00 00 00 00 00 16",
		},
		{
			name:  "struct",
			in:    tD,
			value: Map{{Key: Str("D"), Val: Map{{Key: Str("a"), Val: Int(9001)}}}},
			wire:  "81 a1 44 81 a1 61 d3 00 00 00 00 00 00 23 29",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := FromValue(tt.in)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.value, v); diff != "" {
				t.Fatalf("FromValue mismatch (-want +got):\n%s", diff)
			}

			var viaValue T
			require.NoError(t, Decode(v, &viaValue))
			assert.Equal(t, tt.in, viaValue)

			data, err := Marshal(tt.in)
			require.NoError(t, err)
			assert.Equal(t, hexBytes(t, tt.wire), data)

			var viaBytes T
			require.NoError(t, Unmarshal(data, &viaBytes))
			assert.Equal(t, tt.in, viaBytes)

			// the Value tree writes the same bytes as the typed value
			fromTree, err := Marshal(v)
			require.NoError(t, err)
			assert.Equal(t, data, fromTree)
		})
	}
}

func TestConvertEnum(t *testing.T) {
	for _, in := range []T{tA, tB, tC, tD} {
		var out T
		require.NoError(t, Convert(in, &out))
		assert.Equal(t, in, out)
	}
}

func TestEnumShapeRejection(t *testing.T) {
	tests := []struct {
		name string
		in   Value
		want error
	}{
		{"array", Array{Str("A"), Int(1)}, ErrInvalidType},
		{"int", Int(1), ErrInvalidType},
		{"nil", Nil{}, ErrInvalidType},
		{"empty map", Map{}, ErrBadLength},
		{"two entry map", Map{{Key: Str("A"), Val: Int(1)}, {Key: Str("B"), Val: Nil{}}}, ErrBadLength},
		{"tuple arity", Map{{Key: Str("C"), Val: Array{Int(1)}}}, ErrBadLength},
		{"tuple not array", Map{{Key: Str("C"), Val: Int(1)}}, ErrInvalidType},
		{"struct not map", Map{{Key: Str("D"), Val: Array{}}}, ErrInvalidType},
		{"unit with payload", Map{{Key: Str("B"), Val: Int(1)}}, ErrInvalidType},
		{"newtype from unit", Str("A"), ErrInvalidType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out T
			err := Decode(tt.in, &out)
			require.Error(t, err)
			assert.True(t, stderrors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestEnumUnitAcceptsNilPayload(t *testing.T) {
	var out T
	require.NoError(t, Decode(Map{{Key: Str("B"), Val: Nil{}}}, &out))
	assert.Equal(t, tB, out)
}

func TestEnumErrorsAreChained(t *testing.T) {
	var out T

	// discriminant is not a string
	err := Decode(Map{{Key: Int(1), Val: Nil{}}}, &out)
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, ErrOther))
	assert.True(t, stderrors.Is(err, ErrInvalidType))
	assert.Contains(t, err.Error(), "decode variant")

	// newtype payload overflows i32
	err = Decode(Map{{Key: Str("A"), Val: Int(1 << 40)}}, &out)
	require.Error(t, err)
	var e *Error
	require.True(t, stderrors.As(err, &e))
	assert.Equal(t, Other, e.Reason)
	assert.Equal(t, "decode newtype", e.Detail)
	assert.True(t, stderrors.Is(e.Cause, ErrInvalidType))
}

func TestVariantEncoderMisuse(t *testing.T) {
	for name, enc := range map[string]func() Encoder{
		"bytes": func() Encoder { return NewSerializer(&discard{}, nil) },
		"value": func() Encoder { return &valueEncoder{cfg: DefaultConfig()} },
	} {
		t.Run(name, func(t *testing.T) {
			ve, err := enc().EncodeVariant("N", NewtypeVariant, 1)
			require.NoError(t, err)
			require.NoError(t, ve.Elem(Int(1)))
			assert.True(t, stderrors.Is(ve.Elem(Int(2)), ErrBadLength))

			ve, err = enc().EncodeVariant("N", NewtypeVariant, 1)
			require.NoError(t, err)
			assert.True(t, stderrors.Is(ve.End(), ErrBadLength))

			ve, err = enc().EncodeVariant("U", UnitVariant, 0)
			require.NoError(t, err)
			assert.True(t, stderrors.Is(ve.Elem(Int(1)), ErrBadLength))
			require.NoError(t, ve.End())
			assert.True(t, stderrors.Is(ve.End(), ErrOther))

			ve, err = enc().EncodeVariant("S", StructVariant, 1)
			require.NoError(t, err)
			assert.True(t, stderrors.Is(ve.Elem(Int(1)), ErrInvalidType))

			ve, err = enc().EncodeVariant("T", TupleVariant, 1)
			require.NoError(t, err)
			assert.True(t, stderrors.Is(ve.Field("x", Int(1)), ErrInvalidType))

			ve, err = enc().EncodeVariant("T", TupleVariant, 2)
			require.NoError(t, err)
			require.NoError(t, ve.Elem(Int(1)))
			assert.True(t, stderrors.Is(ve.End(), ErrBadLength))

			_, err = enc().EncodeVariant("X", VariantKind(0), 0)
			assert.True(t, stderrors.Is(err, ErrInvalidType))
		})
	}
}

func TestVariantUnknownLengthTuple(t *testing.T) {
	ve, err := (&valueEncoder{cfg: DefaultConfig()}).EncodeVariant("C", TupleVariant, -1)
	require.NoError(t, err)
	require.NoError(t, ve.Elem(Int(-3)))
	require.NoError(t, ve.Elem(Int(22)))
	require.NoError(t, ve.End())

	known, err := Marshal(tC)
	require.NoError(t, err)

	unknown, err := Marshal(marshalFunc(func(e Encoder) error {
		ve, err := e.EncodeVariant("C", TupleVariant, -1)
		if err != nil {
			return err
		}
		if err := ve.Elem(int32(-3)); err != nil {
			return err
		}
		if err := ve.Elem(int32(22)); err != nil {
			return err
		}
		return ve.End()
	}))
	require.NoError(t, err)
	assert.Equal(t, known, unknown)
}

func TestDynamicVariant(t *testing.T) {
	tests := []struct {
		name string
		in   Variant
		from T
	}{
		{"unit", NewUnitVariant("B"), tB},
		{"newtype", NewNewtypeVariant("A", Int(42)), tA},
		{"tuple", NewTupleVariant("C", Int(-3), Int(22)), tC},
		{"struct", NewStructVariant("D", []string{"a"}, []Value{Int(9001)}), tD},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := Marshal(tt.in)
			require.NoError(t, err)
			typed, err := Marshal(tt.from)
			require.NoError(t, err)
			assert.Equal(t, typed, data)

			var out Variant
			require.NoError(t, Unmarshal(data, &out))
			if diff := cmp.Diff(tt.in, out); diff != "" {
				t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDynamicVariantPresetKind(t *testing.T) {
	// an array payload reads as a tuple unless newtype is asked for
	v := Map{{Key: Str("N"), Val: Array{Int(1), Int(2)}}}

	var inferred Variant
	require.NoError(t, Decode(v, &inferred))
	assert.Equal(t, TupleVariant, inferred.Kind)

	preset := Variant{Kind: NewtypeVariant}
	require.NoError(t, Decode(v, &preset))
	assert.Equal(t, NewtypeVariant, preset.Kind)
	assert.True(t, Equal(Array{Int(1), Int(2)}, preset.Fields[0]))

	wrong := Variant{Kind: StructVariant}
	assert.True(t, stderrors.Is(Decode(v, &wrong), ErrInvalidType))

	unit := Variant{Kind: UnitVariant}
	assert.True(t, stderrors.Is(Decode(v, &unit), ErrInvalidType))
}

func TestDynamicVariantNameMismatch(t *testing.T) {
	bad := Variant{Name: "D", Kind: StructVariant, Fields: []Value{Int(1)}}
	_, err := Marshal(bad)
	assert.True(t, stderrors.Is(err, ErrBadLength))
}

func TestVariantKindString(t *testing.T) {
	assert.Equal(t, "unit", UnitVariant.String())
	assert.Equal(t, "struct", StructVariant.String())
	assert.Equal(t, "variant(9)", VariantKind(9).String())
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

func TestDynamicVariantNewtypeNeedsPresetKind(t *testing.T) {
	for _, payload := range []Value{Nil{}, Array{Int(1)}} {
		data, err := Marshal(NewNewtypeVariant("X", payload))
		require.NoError(t, err)

		var inferred Variant
		require.NoError(t, Unmarshal(data, &inferred))
		assert.NotEqual(t, NewtypeVariant, inferred.Kind, "payload %s", payload)

		preset := Variant{Kind: NewtypeVariant}
		require.NoError(t, Unmarshal(data, &preset))
		assert.Equal(t, NewtypeVariant, preset.Kind)
		require.Len(t, preset.Fields, 1)
		assert.True(t, Equal(payload, preset.Fields[0]), "got %s", preset.Fields[0])
	}
}
