package msgpack

import (
	"github.com/clockworklabs/SpacetimeDB/crates/msgpack-go/internal/errors"
)

// valueEncoder is the Encoder that builds Value trees. Items collect in
// order; collections are appended when they end.
type valueEncoder struct {
	cfg   *Config
	depth int
	items []Value
	open  int
}

func (e *valueEncoder) config() *Config { return e.cfg }

func (e *valueEncoder) EncodeScalar(v Value) error {
	switch v.(type) {
	case Array, Map:
		return errors.Mismatch("scalar", v.Kind().String())
	}
	e.items = append(e.items, Clone(v))
	return nil
}

func (e *valueEncoder) EncodeSeq(n int) (SeqEncoder, error) {
	f, err := e.begin(classArray, n, nil)
	if err != nil {
		return nil, err
	}
	return &seqFrame{f: f}, nil
}

func (e *valueEncoder) EncodeMap(n int) (MapEncoder, error) {
	f, err := e.begin(classMap, n, nil)
	if err != nil {
		return nil, err
	}
	return &mapFrame{f: f}, nil
}

func (e *valueEncoder) EncodeVariant(name string, kind VariantKind, n int) (VariantEncoder, error) {
	if err := checkVariantKind(kind); err != nil {
		return nil, err
	}
	wrap := func(payload Value) Value {
		return Map{{Key: Str(name), Val: payload}}
	}

	var (
		f   *valueFrame
		err error
	)
	switch kind {
	case UnitVariant:
		e.items = append(e.items, Str(name))
		return &variantEncoder{kind: kind}, nil
	case NewtypeVariant:
		f, err = e.begin(classArray, 1, func(payload Value) Value {
			return wrap(payload.(Array)[0])
		})
	case TupleVariant:
		f, err = e.begin(classArray, n, wrap)
	case StructVariant:
		f, err = e.begin(classMap, n, wrap)
	}
	if err != nil {
		return nil, err
	}
	return &variantEncoder{kind: kind, payload: f}, nil
}

func (e *valueEncoder) begin(class collectionClass, hint int, wrap func(Value) Value) (*valueFrame, error) {
	if e.depth >= e.cfg.MaxDepth {
		return nil, errors.New(errors.TooBig, "nesting exceeds max depth %d", e.cfg.MaxDepth)
	}
	e.open++
	return &valueFrame{owner: e, class: class, hint: hint, wrap: wrap}, nil
}

// valueFrame collects the elements of one collection. Map keys and values
// are stored flat, alternating.
type valueFrame struct {
	owner    *valueEncoder
	class    collectionClass
	hint     int
	items    []Value
	wrap     func(Value) Value
	finished bool
}

func (f *valueFrame) done() bool { return f.finished }

func (f *valueFrame) element(v any) error {
	if f.finished {
		return errAlreadyFinished
	}
	child := &valueEncoder{cfg: f.owner.cfg, depth: f.owner.depth + 1}
	if err := encodeAny(child, v); err != nil {
		return err
	}
	if err := checkItems(len(child.items), child.open); err != nil {
		return err
	}
	f.items = append(f.items, child.items[0])
	return nil
}

func (f *valueFrame) finish() error {
	if f.finished {
		return errAlreadyFinished
	}
	f.finished = true
	f.owner.open--

	n := len(f.items)
	per := f.class.perEntry()
	if n%per != 0 {
		return errors.New(errors.BadLength, "map has %d keys and %d values", (n+1)/2, n/2)
	}
	if f.hint >= 0 && n/per != f.hint {
		return errors.New(errors.BadLength, "%s declared %d entries, got %d", f.class, f.hint, n/per)
	}

	var out Value
	if f.class == classMap {
		m := make(Map, n/2)
		for i := range m {
			m[i] = Pair{Key: f.items[2*i], Val: f.items[2*i+1]}
		}
		out = m
	} else {
		out = Array(f.items)
	}
	if f.wrap != nil {
		out = f.wrap(out)
	}
	f.owner.items = append(f.owner.items, out)
	return nil
}

// FromValue converts v into a Value tree. v must encode as exactly one item.
func FromValue(v any) (Value, error) {
	return FromValueWithConfig(v, nil)
}

// FromValueWithConfig is FromValue with explicit settings.
func FromValueWithConfig(v any, cfg *Config) (Value, error) {
	e := &valueEncoder{cfg: orDefault(cfg)}
	if err := encodeAny(e, v); err != nil {
		return nil, err
	}
	if err := checkItems(len(e.items), e.open); err != nil {
		return nil, err
	}
	return e.items[0], nil
}
