package msgpack

import (
	"go.uber.org/zap"

	"github.com/clockworklabs/SpacetimeDB/crates/msgpack-go/internal/errors"
	"github.com/clockworklabs/SpacetimeDB/crates/msgpack-go/internal/pool"
	"github.com/clockworklabs/SpacetimeDB/crates/msgpack-go/internal/wire"
)

type collectionClass uint8

const (
	classArray collectionClass = iota
	classMap
)

func (c collectionClass) String() string {
	if c == classMap {
		return "map"
	}
	return "array"
}

// perEntry is the number of items that make up one entry.
func (c collectionClass) perEntry() int {
	if c == classMap {
		return 2
	}
	return 1
}

// frameMode is streaming or buffering. It is chosen when the collection
// starts and never changes.
type frameMode interface {
	isFrameMode()
}

// streaming: the header is already on the sink and elements follow it.
type streaming struct {
	entries int
}

// buffering: elements collect in a scratch buffer until finish knows the
// count.
type buffering struct {
	buf *scratch
}

func (streaming) isFrameMode() {}
func (buffering) isFrameMode() {}

const scratchSize = 256

type scratch struct {
	b []byte
}

func (s *scratch) Write(p []byte) (int, error) {
	s.b = append(s.b, p...)
	return len(p), nil
}

func (s *scratch) release() {
	if s.b != nil {
		pool.Put(s.b)
		s.b = nil
	}
}

// frame is a collection under construction, on the wire or as a Value.
type frame interface {
	element(v any) error
	finish() error
	done() bool
}

// framer tracks one collection being written by a Serializer.
type framer struct {
	owner    *Serializer
	class    collectionClass
	mode     frameMode
	sink     *wire.Writer // elements go here
	count    int          // items written; a map entry is two
	finished bool
}

func startFrame(owner *Serializer, class collectionClass, hint int) (*framer, error) {
	f := &framer{owner: owner, class: class}
	if hint >= 0 {
		if class == classMap {
			owner.w.WriteMapHeader(hint)
		} else {
			owner.w.WriteArrayHeader(hint)
		}
		if err := owner.w.Error(); err != nil {
			return nil, err
		}
		f.mode = streaming{entries: hint}
		f.sink = owner.w
		return f, nil
	}

	buf := &scratch{b: pool.Get(scratchSize)}
	f.mode = buffering{buf: buf}
	f.sink = wire.NewWriter(buf)
	owner.cfg.logger().Debug("buffering collection of unknown length",
		zap.Stringer("class", class),
		zap.Int("depth", owner.depth))
	return f, nil
}

// openSlot returns the Serializer for the next element. The caller writes
// exactly one item to it and then calls closeSlot.
func (f *framer) openSlot() (*Serializer, error) {
	if f.finished {
		return nil, errAlreadyFinished
	}
	if m, ok := f.mode.(streaming); ok && f.count >= f.class.perEntry()*m.entries {
		return nil, errors.New(errors.BadLength, "%s declared %d entries, got more", f.class, m.entries)
	}
	return &Serializer{w: f.sink, cfg: f.owner.cfg, depth: f.owner.depth + 1}, nil
}

func (f *framer) closeSlot(slot *Serializer) error {
	if err := f.sink.Error(); err != nil {
		return err
	}
	if err := checkItems(slot.items, slot.open); err != nil {
		return err
	}
	f.count++
	return nil
}

func (f *framer) element(v any) error {
	slot, err := f.openSlot()
	if err != nil {
		return err
	}
	if err := encodeAny(slot, v); err != nil {
		return err
	}
	return f.closeSlot(slot)
}

func (f *framer) done() bool { return f.finished }

// finish completes the collection. It must be called exactly once.
func (f *framer) finish() error {
	if f.finished {
		return errAlreadyFinished
	}
	f.finished = true
	f.owner.open--

	per := f.class.perEntry()
	switch m := f.mode.(type) {
	case streaming:
		if f.count != per*m.entries {
			return errors.New(errors.BadLength, "%s declared %d entries, got %d items", f.class, m.entries, f.count)
		}
		return nil
	case buffering:
		defer m.buf.release()
		if err := f.sink.Error(); err != nil {
			return err
		}
		if f.count%per != 0 {
			return errors.New(errors.BadLength, "map has a key without a value")
		}
		entries := f.count / per
		out := f.owner.w
		if f.class == classMap {
			out.WriteMapHeader(entries)
		} else {
			out.WriteArrayHeader(entries)
		}
		out.WriteRaw(m.buf.b)
		f.owner.cfg.logger().Debug("flushed buffered collection",
			zap.Stringer("class", f.class),
			zap.Int("entries", entries),
			zap.Int("bytes", len(m.buf.b)))
		return out.Error()
	}
	return nil
}
