package msgpack

import (
	"bytes"
	stderrors "errors"
	"io"
	"math"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestReadEveryEncoding(t *testing.T) {
	tests := []struct {
		name string
		wire string
		want Value
	}{
		{"nil", "c0", Nil{}},
		{"false", "c2", Bool(false)},
		{"true", "c3", Bool(true)},
		{"positive fixint", "05", Uint(5)},
		{"negative fixint", "ff", Int(-1)},
		{"uint8", "cc ff", Uint(255)},
		{"uint16", "cd 01 00", Uint(256)},
		{"uint32", "ce 00 01 00 00", Uint(65536)},
		{"uint64", "cf ff ff ff ff ff ff ff ff", Uint(math.MaxUint64)},
		{"int8", "d0 80", Int(-128)},
		{"int16", "d1 ff 00", Int(-256)},
		{"int32", "d2 80 00 00 00", Int(math.MinInt32)},
		{"int64", "d3 00 00 00 00 00 00 00 05", Int(5)},
		{"float32", "ca 3f c0 00 00", Float32(1.5)},
		{"float64", "cb 3f f8 00 00 00 00 00 00", Float64(1.5)},
		{"fixstr", "a3 61 62 63", Str("abc")},
		{"str8", "d9 01 7a", Str("z")},
		{"str16", "da 00 01 7a", Str("z")},
		{"str32", "db 00 00 00 01 7a", Str("z")},
		{"bin8", "c4 02 01 02", Bin{1, 2}},
		{"bin16", "c5 00 00", Bin{}},
		{"bin32", "c6 00 00 00 01 ff", Bin{0xff}},
		{"fixarray", "92 01 c0", Array{Uint(1), Nil{}}},
		{"array16", "dc 00 01 c3", Array{Bool(true)}},
		{"array32", "dd 00 00 00 00", Array{}},
		{"fixmap", "81 a1 61 ff", Map{{Key: Str("a"), Val: Int(-1)}}},
		{"map16", "de 00 01 c0 c0", Map{{Key: Nil{}, Val: Nil{}}}},
		{"map32", "df 00 00 00 00", Map{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := NewReader(bytes.NewReader(hexBytes(t, tt.wire)), nil).ReadValue()
			require.NoError(t, err)
			assert.True(t, Equal(tt.want, v), "got %s", v)
		})
	}
}

func TestIntUintDistinctionSurvives(t *testing.T) {
	for _, wire := range []string{
		"d3 00 00 00 00 00 00 00 05",
		"cf 00 00 00 00 00 00 00 05",
		"92 d3 ff ff ff ff ff ff ff ff cf 00 00 00 00 00 00 00 01",
	} {
		data := hexBytes(t, wire)
		var v Value
		require.NoError(t, Unmarshal(data, &v))
		again, err := Marshal(v)
		require.NoError(t, err)
		assert.Equal(t, data, again)
	}

	int5, err := Marshal(Int(5))
	require.NoError(t, err)
	uint5, err := Marshal(Uint(5))
	require.NoError(t, err)
	assert.NotEqual(t, int5, uint5)
}

func TestDuplicateKeysAndOrderSurvive(t *testing.T) {
	v := Map{
		{Key: Str("b"), Val: Int(1)},
		{Key: Str("a"), Val: Int(2)},
		{Key: Str("b"), Val: Int(3)},
	}
	data, err := Marshal(v)
	require.NoError(t, err)

	var out Value
	require.NoError(t, Unmarshal(data, &out))
	assert.True(t, Equal(v, out), "got %s", out)
}

func TestReadRejectsExtensions(t *testing.T) {
	for _, wire := range []string{"c1", "c7 01 05 00", "c8 00 01 05 00", "c9 00 00 00 01 05 00", "d4 05 00", "d8 05"} {
		_, err := NewReader(bytes.NewReader(hexBytes(t, wire)), nil).ReadValue()
		assert.True(t, stderrors.Is(err, ErrInvalidType), "%s: %v", wire, err)
	}
}

func TestReadTruncated(t *testing.T) {
	for _, wire := range []string{"92 01", "cd 01", "a5 61 62", "81 a1 61", "dc 00", "c4 03 01"} {
		_, err := NewReader(bytes.NewReader(hexBytes(t, wire)), nil).ReadValue()
		require.Error(t, err, wire)
		assert.True(t, stderrors.Is(err, ErrEndOfStream), "%s: %v", wire, err)
		assert.False(t, stderrors.Is(err, io.EOF), "truncation is not a clean end: %s", wire)
	}

	_, err := NewReader(bytes.NewReader(nil), nil).ReadValue()
	assert.True(t, stderrors.Is(err, ErrEndOfStream))
	assert.True(t, stderrors.Is(err, io.EOF))
}

func TestReadLimits(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	cfg := DefaultConfig()
	cfg.MaxPayloadLen = 2
	cfg.MaxContainerLen = 1
	cfg.MaxDepth = 1
	cfg.Logger = zap.New(core)

	for _, wire := range []string{"a3 61 62 63", "c4 03 01 02 03", "92 c0 c0", "81 91 91 c0 c0"} {
		_, err := NewReader(bytes.NewReader(hexBytes(t, wire)), cfg).ReadValue()
		assert.True(t, stderrors.Is(err, ErrTooBig), "%s: %v", wire, err)
	}
	assert.Equal(t, 4, logs.Len())

	// a huge declared length fails on the limit before any allocation
	_, err := NewReader(bytes.NewReader(hexBytes(t, "dd ff ff ff ff")), nil).ReadValue()
	assert.True(t, stderrors.Is(err, ErrTooBig))
}

func TestUnmarshalTrailingBytes(t *testing.T) {
	var v Value
	err := Unmarshal([]byte{0xc0, 0xc0}, &v)
	assert.True(t, stderrors.Is(err, ErrBadLength))

	err = Unmarshal(nil, &v)
	assert.True(t, stderrors.Is(err, ErrEndOfStream))
}

func TestStreamEncoderDecoder(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	require.NoError(t, enc.Encode(tA))
	require.NoError(t, enc.Encode("two"))
	require.NoError(t, enc.Encode([]int{3}))

	dec := NewDecoder(&buf)
	var a T
	require.NoError(t, dec.Decode(&a))
	assert.Equal(t, tA, a)

	var s string
	require.NoError(t, dec.Decode(&s))
	assert.Equal(t, "two", s)

	var n []int
	require.NoError(t, dec.Decode(&n))
	assert.Equal(t, []int{3}, n)

	err := dec.Decode(&s)
	assert.True(t, stderrors.Is(err, io.EOF))
}

func TestReaderBytesRead(t *testing.T) {
	r := NewReader(strings.NewReader("\x92\x01\x02\xc0"), nil)
	_, err := r.ReadValue()
	require.NoError(t, err)
	assert.Equal(t, 3, r.BytesRead())
}

func TestTruncatedLargeStrDoesNotPreallocate(t *testing.T) {
	data := []byte{0xdb, 0x03, 0xff, 0xff, 0xff} // str32 claiming ~64MiB, no payload

	var before, after runtime.MemStats
	runtime.ReadMemStats(&before)
	var s string
	err := Unmarshal(data, &s)
	runtime.ReadMemStats(&after)

	require.Error(t, err)
	assert.True(t, stderrors.Is(err, ErrEndOfStream), "got %v", err)
	assert.Less(t, after.TotalAlloc-before.TotalAlloc, uint64(4<<20))
}
