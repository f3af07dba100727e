// Package msgpack encodes and decodes MessagePack.
//
// Typed values reach the wire through the Encoder interface: either by
// implementing Marshaler or, for plain Go values, through reflection.
// Decoding runs the other way through Decoder and Visitor. Value is a
// self-describing tree that implements both sides, so it can stand between
// any two typed representations (see FromValue and Convert).
//
// Sum types use a fixed wire convention:
//
//	unit     "Name"
//	newtype  {"Name": payload}
//	tuple    {"Name": [a, b, ...]}
//	struct   {"Name": {"field": value, ...}}
//
// Collections whose length is not known up front are buffered and written
// with the correct header once they are complete.
package msgpack
