package msgpack

import (
	"cmp"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/clockworklabs/SpacetimeDB/crates/msgpack-go/internal/errors"
)

// fieldInfo describes one encoded struct field.
type fieldInfo struct {
	name      string
	index     int
	omitEmpty bool
}

type structInfo struct {
	fields    []fieldInfo
	byName    map[string]int
	omitEmpty bool // any field has omitempty
}

var structCache = xsync.NewMapOf[reflect.Type, *structInfo]()

// cachedStructInfo returns the field layout of struct type t.
// Tag `msgpack:"name"` renames a field, `msgpack:"-"` skips it and
// `msgpack:",omitempty"` drops it when zero. Unexported fields are skipped.
func cachedStructInfo(t reflect.Type) *structInfo {
	info, _ := structCache.LoadOrCompute(t, func() *structInfo {
		return buildStructInfo(t)
	})
	return info
}

func buildStructInfo(t reflect.Type) *structInfo {
	info := &structInfo{byName: make(map[string]int)}
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		tag := sf.Tag.Get("msgpack")
		if tag == "-" {
			continue
		}
		name, opts, _ := strings.Cut(tag, ",")
		if name == "" {
			name = sf.Name
		}
		f := fieldInfo{name: name, index: i, omitEmpty: opts == "omitempty"}
		info.omitEmpty = info.omitEmpty || f.omitEmpty
		info.byName[name] = len(info.fields)
		info.fields = append(info.fields, f)
	}
	return info
}

// encodeReflect encodes plain Go values: bools, numbers, strings, byte
// slices, slices, arrays, maps, structs, pointers and interfaces.
func encodeReflect(e Encoder, rv reflect.Value, cfg *Config) error {
	if !rv.IsValid() {
		return e.EncodeScalar(Nil{})
	}
	t := rv.Type()
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return e.EncodeScalar(Nil{})
		}
	}
	if t.Implements(marshalerType) {
		return rv.Interface().(Marshaler).MarshalMsgpack(e)
	}
	if t.Kind() != reflect.Pointer && reflect.PointerTo(t).Implements(marshalerType) {
		p := reflect.New(t)
		p.Elem().Set(rv)
		return p.Interface().(Marshaler).MarshalMsgpack(e)
	}

	switch rv.Kind() {
	case reflect.Bool:
		return e.EncodeScalar(Bool(rv.Bool()))
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return e.EncodeScalar(Int(rv.Int()))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return e.EncodeScalar(Uint(rv.Uint()))
	case reflect.Float32:
		return e.EncodeScalar(Float32(rv.Float()))
	case reflect.Float64:
		return e.EncodeScalar(Float64(rv.Float()))
	case reflect.String:
		return e.EncodeScalar(Str(rv.String()))
	case reflect.Slice:
		if rv.IsNil() {
			return e.EncodeScalar(Nil{})
		}
		if t.Elem().Kind() == reflect.Uint8 {
			return e.EncodeScalar(Bin(rv.Bytes()))
		}
		return encodeSeq(e, rv)
	case reflect.Array:
		if t.Elem().Kind() == reflect.Uint8 {
			b := make([]byte, rv.Len())
			for i := range b {
				b[i] = byte(rv.Index(i).Uint())
			}
			return e.EncodeScalar(Bin(b))
		}
		return encodeSeq(e, rv)
	case reflect.Map:
		if rv.IsNil() {
			return e.EncodeScalar(Nil{})
		}
		return encodeMap(e, rv, cfg)
	case reflect.Struct:
		return encodeStruct(e, rv)
	case reflect.Pointer, reflect.Interface:
		return encodeReflect(e, rv.Elem(), cfg)
	}
	return errors.Mismatch("encodable value", t.String())
}

func encodeSeq(e Encoder, rv reflect.Value) error {
	seq, err := e.EncodeSeq(rv.Len())
	if err != nil {
		return err
	}
	for i := 0; i < rv.Len(); i++ {
		if err := seq.Elem(rv.Index(i).Interface()); err != nil {
			return err
		}
	}
	return seq.End()
}

func encodeMap(e Encoder, rv reflect.Value, cfg *Config) error {
	keys := rv.MapKeys()
	if cfg.SortMapKeys {
		slices.SortFunc(keys, compareKeys)
	}
	m, err := e.EncodeMap(len(keys))
	if err != nil {
		return err
	}
	for _, k := range keys {
		if err := m.Key(k.Interface()); err != nil {
			return err
		}
		if err := m.Value(rv.MapIndex(k).Interface()); err != nil {
			return err
		}
	}
	return m.End()
}

func compareKeys(a, b reflect.Value) int {
	if a.Kind() == b.Kind() {
		switch a.Kind() {
		case reflect.String:
			return cmp.Compare(a.String(), b.String())
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return cmp.Compare(a.Int(), b.Int())
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
			return cmp.Compare(a.Uint(), b.Uint())
		case reflect.Float32, reflect.Float64:
			return cmp.Compare(a.Float(), b.Float())
		}
	}
	return cmp.Compare(fmt.Sprint(a.Interface()), fmt.Sprint(b.Interface()))
}

// encodeStruct writes a struct as a map of field name to value. A struct
// with omitempty fields does not know its entry count up front.
func encodeStruct(e Encoder, rv reflect.Value) error {
	info := cachedStructInfo(rv.Type())
	n := len(info.fields)
	if info.omitEmpty {
		n = -1
	}
	m, err := e.EncodeMap(n)
	if err != nil {
		return err
	}
	for _, f := range info.fields {
		fv := rv.Field(f.index)
		if f.omitEmpty && fv.IsZero() {
			continue
		}
		if err := m.Key(Str(f.name)); err != nil {
			return err
		}
		if err := m.Value(fv.Interface()); err != nil {
			return err
		}
	}
	return m.End()
}
