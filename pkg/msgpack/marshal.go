package msgpack

import (
	"bytes"
	"io"

	"github.com/clockworklabs/SpacetimeDB/crates/msgpack-go/internal/errors"
)

// Marshal encodes v as one MessagePack item.
func Marshal(v any) ([]byte, error) {
	return MarshalWithConfig(v, nil)
}

// MarshalWithConfig is Marshal with explicit settings.
func MarshalWithConfig(v any, cfg *Config) ([]byte, error) {
	var buf bytes.Buffer
	if err := NewSerializer(&buf, cfg).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes one item from data into dst. data must hold exactly one
// item; trailing bytes are a BadLength error.
func Unmarshal(data []byte, dst any) error {
	return UnmarshalWithConfig(data, dst, nil)
}

// UnmarshalWithConfig is Unmarshal with explicit settings.
func UnmarshalWithConfig(data []byte, dst any, cfg *Config) error {
	r := NewReader(bytes.NewReader(data), cfg)
	v, err := r.ReadValue()
	if err != nil {
		return err
	}
	if n := len(data) - r.BytesRead(); n > 0 {
		return errors.New(errors.BadLength, "%d trailing bytes after item", n)
	}
	return DecodeWithConfig(v, dst, r.cfg)
}

// StreamEncoder writes successive items to a stream.
type StreamEncoder struct {
	s *Serializer
}

// NewEncoder returns a StreamEncoder writing to w.
func NewEncoder(w io.Writer) *StreamEncoder {
	return NewEncoderWithConfig(w, nil)
}

// NewEncoderWithConfig is NewEncoder with explicit settings.
func NewEncoderWithConfig(w io.Writer, cfg *Config) *StreamEncoder {
	return &StreamEncoder{s: NewSerializer(w, cfg)}
}

// Encode writes v as the next item.
func (e *StreamEncoder) Encode(v any) error {
	return e.s.Encode(v)
}

// StreamDecoder reads successive items from a stream.
type StreamDecoder struct {
	r *Reader
}

// NewDecoder returns a StreamDecoder reading from r.
func NewDecoder(r io.Reader) *StreamDecoder {
	return NewDecoderWithConfig(r, nil)
}

// NewDecoderWithConfig is NewDecoder with explicit settings.
func NewDecoderWithConfig(r io.Reader, cfg *Config) *StreamDecoder {
	return &StreamDecoder{r: NewReader(r, cfg)}
}

// Decode reads the next item into dst. After the last item it returns an
// EndOfStream error that wraps io.EOF.
func (d *StreamDecoder) Decode(dst any) error {
	v, err := d.r.ReadValue()
	if err != nil {
		return err
	}
	return DecodeWithConfig(v, dst, d.r.cfg)
}
