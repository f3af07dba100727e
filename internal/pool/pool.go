// Package pool recycles scratch buffers by size class.
package pool

import (
	"sort"
	"sync"
	"sync/atomic"
)

// Config holds the pool configuration.
type Config struct {
	// Classes are the buffer capacities kept in the pool, in bytes.
	Classes []int
	// MaxPooled is the largest capacity that is returned to the pool.
	MaxPooled int
}

// DefaultConfig returns the default pool configuration
func DefaultConfig() *Config {
	return &Config{
		Classes:   []int{64, 256, 1024, 4096, 16384, 65536},
		MaxPooled: 1024 * 1024, // 1MB
	}
}

// Stats is a snapshot of pool counters.
type Stats struct {
	Hits   uint64 // Get served from a size class
	Misses uint64 // a size class had to allocate
	Reuses uint64 // Put accepted a buffer back
}

// Pool hands out empty byte slices with at least the requested capacity.
// It is safe for concurrent use.
type Pool struct {
	classes   []int
	pools     []*sync.Pool
	maxPooled int

	hits   atomic.Uint64
	misses atomic.Uint64
	reuses atomic.Uint64
}

// New creates a pool from cfg. A nil cfg means DefaultConfig.
func New(cfg *Config) *Pool {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	classes := append([]int(nil), cfg.Classes...)
	sort.Ints(classes)

	p := &Pool{
		classes:   classes,
		pools:     make([]*sync.Pool, len(classes)),
		maxPooled: cfg.MaxPooled,
	}
	for i, size := range classes {
		p.pools[i] = &sync.Pool{
			New: func() any {
				p.misses.Add(1)
				b := make([]byte, 0, size)
				return &b
			},
		}
	}
	return p
}

// Get returns an empty buffer with capacity of at least size.
func (p *Pool) Get(size int) []byte {
	i := p.classAtLeast(size)
	if i < 0 {
		// too large for pooling
		return make([]byte, 0, size)
	}
	bp := p.pools[i].Get().(*[]byte)
	p.hits.Add(1)
	return (*bp)[:0]
}

// Put returns buf to the pool. Buffers smaller than the smallest class or
// larger than MaxPooled are dropped.
func (p *Pool) Put(buf []byte) {
	c := cap(buf)
	if c > p.maxPooled {
		return
	}
	i := p.classAtMost(c)
	if i < 0 {
		return
	}
	clear(buf[:c])
	buf = buf[:0]
	p.pools[i].Put(&buf)
	p.reuses.Add(1)
}

// Stats returns the current counters.
func (p *Pool) Stats() Stats {
	return Stats{
		Hits:   p.hits.Load(),
		Misses: p.misses.Load(),
		Reuses: p.reuses.Load(),
	}
}

// classAtLeast finds the smallest class that can hold size bytes.
func (p *Pool) classAtLeast(size int) int {
	for i, c := range p.classes {
		if size <= c {
			return i
		}
	}
	return -1
}

// classAtMost finds the largest class a buffer of capacity c can serve, so a
// grown buffer is never handed out for more than it holds.
func (p *Pool) classAtMost(c int) int {
	idx := -1
	for i, class := range p.classes {
		if class > c {
			break
		}
		idx = i
	}
	return idx
}

var shared = New(nil)

// Get takes a buffer from the shared pool.
func Get(size int) []byte { return shared.Get(size) }

// Put returns a buffer to the shared pool.
func Put(buf []byte) { shared.Put(buf) }

// SharedStats reports the shared pool's counters.
func SharedStats() Stats { return shared.Stats() }
