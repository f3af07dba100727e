// Package wire holds the MessagePack marker table and the low-level helpers
// that read and write markers, fixed-width payloads and length headers.
package wire

import "fmt"

const (
	PosFixintMax byte = 0x7f
	FixmapMask   byte = 0x80 // 1000xxxx
	FixarrayMask byte = 0x90 // 1001xxxx
	FixstrMask   byte = 0xa0 // 101xxxxx
	Nil          byte = 0xc0
	NeverUsed    byte = 0xc1
	False        byte = 0xc2
	True         byte = 0xc3
	Bin8         byte = 0xc4
	Bin16        byte = 0xc5
	Bin32        byte = 0xc6
	Ext8         byte = 0xc7
	Ext16        byte = 0xc8
	Ext32        byte = 0xc9
	Float32      byte = 0xca
	Float64      byte = 0xcb
	Uint8        byte = 0xcc
	Uint16       byte = 0xcd
	Uint32       byte = 0xce
	Uint64       byte = 0xcf
	Int8         byte = 0xd0
	Int16        byte = 0xd1
	Int32        byte = 0xd2
	Int64        byte = 0xd3
	FixExt1      byte = 0xd4
	FixExt2      byte = 0xd5
	FixExt4      byte = 0xd6
	FixExt8      byte = 0xd7
	FixExt16     byte = 0xd8
	Str8         byte = 0xd9
	Str16        byte = 0xda
	Str32        byte = 0xdb
	Array16      byte = 0xdc
	Array32      byte = 0xdd
	Map16        byte = 0xde
	Map32        byte = 0xdf
	NegFixintMin byte = 0xe0
)

// Size-class ceilings.
const (
	MaxFixmap   = 15
	MaxFixarray = 15
	MaxFixstr   = 31
	Max8        = 1<<8 - 1
	Max16       = 1<<16 - 1
	Max32       = 1<<32 - 1
)

// IsFixmap reports whether b is a fixmap marker.
func IsFixmap(b byte) bool { return b&0xf0 == FixmapMask }

// IsFixarray reports whether b is a fixarray marker.
func IsFixarray(b byte) bool { return b&0xf0 == FixarrayMask }

// IsFixstr reports whether b is a fixstr marker.
func IsFixstr(b byte) bool { return b&0xe0 == FixstrMask }

// IsPosFixint reports whether b is a positive fixint.
func IsPosFixint(b byte) bool { return b <= PosFixintMax }

// IsNegFixint reports whether b is a negative fixint.
func IsNegFixint(b byte) bool { return b >= NegFixintMin }

// MarkerName converts a marker byte to a human-readable name.
// Useful for diagnostics, pretty-printing and error messages.
func MarkerName(b byte) string {
	switch {
	case IsPosFixint(b):
		return "positive fixint"
	case IsFixmap(b):
		return "fixmap"
	case IsFixarray(b):
		return "fixarray"
	case IsFixstr(b):
		return "fixstr"
	case IsNegFixint(b):
		return "negative fixint"
	}
	switch b {
	case Nil:
		return "nil"
	case False, True:
		return "bool"
	case Bin8:
		return "bin8"
	case Bin16:
		return "bin16"
	case Bin32:
		return "bin32"
	case Ext8:
		return "ext8"
	case Ext16:
		return "ext16"
	case Ext32:
		return "ext32"
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	case Uint8:
		return "uint8"
	case Uint16:
		return "uint16"
	case Uint32:
		return "uint32"
	case Uint64:
		return "uint64"
	case Int8:
		return "int8"
	case Int16:
		return "int16"
	case Int32:
		return "int32"
	case Int64:
		return "int64"
	case FixExt1, FixExt2, FixExt4, FixExt8, FixExt16:
		return "fixext"
	case Str8:
		return "str8"
	case Str16:
		return "str16"
	case Str32:
		return "str32"
	case Array16:
		return "array16"
	case Array32:
		return "array32"
	case Map16:
		return "map16"
	case Map32:
		return "map32"
	default:
		return fmt.Sprintf("reserved(0x%02x)", b)
	}
}
