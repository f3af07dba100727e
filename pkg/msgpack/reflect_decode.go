package msgpack

import (
	"bytes"
	"reflect"

	"github.com/clockworklabs/SpacetimeDB/crates/msgpack-go/internal/errors"
)

// assignValue stores val into rv, which must be settable.
func assignValue(rv reflect.Value, val Value, cfg *Config) error {
	if val == nil {
		val = Nil{}
	}
	t := rv.Type()
	if t.Kind() != reflect.Pointer && rv.CanAddr() && reflect.PointerTo(t).Implements(unmarshalerType) {
		return rv.Addr().Interface().(Unmarshaler).UnmarshalMsgpack(&valueDecoder{v: val, cfg: cfg})
	}
	// a Value target, or a concrete Value type that matches, takes a copy
	if t == valueType || reflect.TypeOf(val) == t {
		rv.Set(reflect.ValueOf(Clone(val)))
		return nil
	}

	switch rv.Kind() {
	case reflect.Pointer:
		if IsNil(val) {
			rv.SetZero()
			return nil
		}
		if rv.IsNil() {
			rv.Set(reflect.New(t.Elem()))
		}
		if t.Implements(unmarshalerType) {
			return rv.Interface().(Unmarshaler).UnmarshalMsgpack(&valueDecoder{v: val, cfg: cfg})
		}
		return assignValue(rv.Elem(), val, cfg)

	case reflect.Interface:
		if IsNil(val) {
			rv.SetZero()
			return nil
		}
		native, err := toNative(val)
		if err != nil {
			return err
		}
		nv := reflect.ValueOf(native)
		if !nv.Type().AssignableTo(t) {
			return errors.Mismatch(t.String(), val.Kind().String())
		}
		rv.Set(nv)
		return nil

	case reflect.Bool:
		b, ok := val.(Bool)
		if !ok {
			return errors.Mismatch("bool", val.Kind().String())
		}
		rv.SetBool(bool(b))
		return nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		var n int64
		switch v := val.(type) {
		case Int:
			n = int64(v)
		case Uint:
			if uint64(v) > 1<<63-1 {
				return overflow(val, t)
			}
			n = int64(v)
		default:
			return errors.Mismatch(t.String(), val.Kind().String())
		}
		if rv.OverflowInt(n) {
			return overflow(val, t)
		}
		rv.SetInt(n)
		return nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		var n uint64
		switch v := val.(type) {
		case Uint:
			n = uint64(v)
		case Int:
			if v < 0 {
				return overflow(val, t)
			}
			n = uint64(v)
		default:
			return errors.Mismatch(t.String(), val.Kind().String())
		}
		if rv.OverflowUint(n) {
			return overflow(val, t)
		}
		rv.SetUint(n)
		return nil

	case reflect.Float32, reflect.Float64:
		var f float64
		switch v := val.(type) {
		case Float32:
			f = float64(v)
		case Float64:
			f = float64(v)
		case Int:
			f = float64(v)
		case Uint:
			f = float64(v)
		default:
			return errors.Mismatch(t.String(), val.Kind().String())
		}
		if rv.OverflowFloat(f) {
			return overflow(val, t)
		}
		rv.SetFloat(f)
		return nil

	case reflect.String:
		switch v := val.(type) {
		case Str:
			rv.SetString(string(v))
		case Bin:
			rv.SetString(string(v))
		default:
			return errors.Mismatch("string", val.Kind().String())
		}
		return nil

	case reflect.Slice:
		if IsNil(val) {
			rv.SetZero()
			return nil
		}
		if t.Elem().Kind() == reflect.Uint8 {
			switch v := val.(type) {
			case Bin:
				rv.SetBytes(bytes.Clone([]byte(v)))
				return nil
			case Str:
				rv.SetBytes([]byte(v))
				return nil
			}
		}
		arr, ok := val.(Array)
		if !ok {
			return errors.Mismatch(t.String(), val.Kind().String())
		}
		s := reflect.MakeSlice(t, len(arr), len(arr))
		for i, el := range arr {
			if err := assignValue(s.Index(i), el, cfg); err != nil {
				return err
			}
		}
		rv.Set(s)
		return nil

	case reflect.Array:
		if b, ok := val.(Bin); ok && t.Elem().Kind() == reflect.Uint8 {
			if len(b) != rv.Len() {
				return errors.InvalidLength(len(b))
			}
			for i, c := range b {
				rv.Index(i).SetUint(uint64(c))
			}
			return nil
		}
		arr, ok := val.(Array)
		if !ok {
			return errors.Mismatch(t.String(), val.Kind().String())
		}
		if len(arr) != rv.Len() {
			return errors.InvalidLength(len(arr))
		}
		for i, el := range arr {
			if err := assignValue(rv.Index(i), el, cfg); err != nil {
				return err
			}
		}
		return nil

	case reflect.Map:
		if IsNil(val) {
			rv.SetZero()
			return nil
		}
		m, ok := val.(Map)
		if !ok {
			return errors.Mismatch(t.String(), val.Kind().String())
		}
		out := reflect.MakeMapWithSize(t, len(m))
		for _, p := range m {
			k := reflect.New(t.Key()).Elem()
			if err := assignValue(k, p.Key, cfg); err != nil {
				return err
			}
			v := reflect.New(t.Elem()).Elem()
			if err := assignValue(v, p.Val, cfg); err != nil {
				return err
			}
			out.SetMapIndex(k, v)
		}
		rv.Set(out)
		return nil

	case reflect.Struct:
		m, ok := val.(Map)
		if !ok {
			return errors.Mismatch(t.String(), val.Kind().String())
		}
		info := cachedStructInfo(t)
		for _, p := range m {
			name, ok := p.Key.(Str)
			if !ok {
				return errors.Mismatch("field name", KindOf(p.Key).String())
			}
			idx, ok := info.byName[string(name)]
			if !ok {
				continue
			}
			if err := assignValue(rv.Field(info.fields[idx].index), p.Val, cfg); err != nil {
				return err
			}
		}
		return nil
	}
	return errors.Mismatch("decodable type", t.String())
}

func overflow(val Value, t reflect.Type) error {
	return errors.New(errors.InvalidType, "%s overflows %s", val, t)
}

// toNative converts val to the Go value an empty interface receives:
// nil, bool, int64, uint64, float32, float64, []byte, string, []any, and
// map[string]any when every key is a string or map[any]any otherwise.
func toNative(val Value) (any, error) {
	switch v := val.(type) {
	case nil, Nil:
		return nil, nil
	case Bool:
		return bool(v), nil
	case Int:
		return int64(v), nil
	case Uint:
		return uint64(v), nil
	case Float32:
		return float32(v), nil
	case Float64:
		return float64(v), nil
	case Bin:
		return bytes.Clone([]byte(v)), nil
	case Str:
		return string(v), nil
	case Array:
		out := make([]any, len(v))
		for i, el := range v {
			n, err := toNative(el)
			if err != nil {
				return nil, err
			}
			out[i] = n
		}
		return out, nil
	case Map:
		if allStrKeys(v) {
			out := make(map[string]any, len(v))
			for _, p := range v {
				n, err := toNative(p.Val)
				if err != nil {
					return nil, err
				}
				out[string(p.Key.(Str))] = n
			}
			return out, nil
		}
		out := make(map[any]any, len(v))
		for _, p := range v {
			switch KindOf(p.Key) {
			case KindBin, KindArray, KindMap:
				return nil, errors.Mismatch("hashable map key", KindOf(p.Key).String())
			}
			k, err := toNative(p.Key)
			if err != nil {
				return nil, err
			}
			n, err := toNative(p.Val)
			if err != nil {
				return nil, err
			}
			out[k] = n
		}
		return out, nil
	}
	return nil, errors.Mismatch("value", KindOf(val).String())
}

func allStrKeys(m Map) bool {
	for _, p := range m {
		if _, ok := p.Key.(Str); !ok {
			return false
		}
	}
	return true
}
