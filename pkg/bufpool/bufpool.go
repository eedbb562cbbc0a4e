// Package bufpool recycles the chunk buffers the file system's read
// loop burns through. Every in-flight read borrows one chunk-sized
// buffer for the length of the read; with several scenes streaming
// concurrently that is a steady stream of identical allocations, so
// buffers are parked in per-size-class free lists instead of handed to
// the garbage collector.
//
// Sizes are rounded up to a small ladder of classes so buffers stay
// interchangeable. Requests above the top class are allocated directly
// and never pooled, keeping occasional oversized buffers from pinning
// memory.
package bufpool

import (
	"sort"
	"sync"
)

// The default class ladder, sized around how the scene loader actually
// reads: a small class for header probes, the file system's default
// chunk size, and a large class for big chunk overrides and write
// staging.
const (
	HeaderClassSize  = 4 << 10
	ChunkClassSize   = 64 << 10
	PayloadClassSize = 1 << 20
)

type sizeClass struct {
	size int
	pool sync.Pool
}

// Pool hands out byte slices rounded up to a fixed ladder of size
// classes, recycling them across Get/Put cycles. All methods are safe
// for concurrent use.
type Pool struct {
	classes []*sizeClass // ascending by size
}

// New builds a Pool from the given class sizes. Sizes are sorted and
// deduplicated; non-positive sizes are dropped. With no valid sizes the
// default ladder is used.
func New(sizes ...int) *Pool {
	cleaned := make([]int, 0, len(sizes))
	for _, s := range sizes {
		if s > 0 {
			cleaned = append(cleaned, s)
		}
	}
	if len(cleaned) == 0 {
		cleaned = []int{HeaderClassSize, ChunkClassSize, PayloadClassSize}
	}
	sort.Ints(cleaned)

	p := &Pool{}
	for _, s := range cleaned {
		if n := len(p.classes); n > 0 && p.classes[n-1].size == s {
			continue
		}
		c := &sizeClass{size: s}
		c.pool.New = func() any {
			buf := make([]byte, c.size)
			return &buf
		}
		p.classes = append(p.classes, c)
	}
	return p
}

// Get returns a slice of exactly size bytes, backed by a pooled buffer
// of the smallest class that fits. Requests larger than the top class
// are allocated directly and will not be pooled by Put.
func (p *Pool) Get(size int) []byte {
	c := p.classFor(size)
	if c == nil {
		return make([]byte, size)
	}
	buf := *c.pool.Get().(*[]byte)
	return buf[:size]
}

// Put parks buf for reuse. Only buffers whose capacity matches a class
// exactly are kept; anything else (including direct allocations from an
// oversized Get) is left for the garbage collector. buf must not be
// used after Put.
func (p *Pool) Put(buf []byte) {
	if buf == nil {
		return
	}
	c := p.classFor(cap(buf))
	if c == nil || c.size != cap(buf) {
		return
	}
	full := buf[:cap(buf)]
	c.pool.Put(&full)
}

// classFor returns the smallest class holding size bytes, or nil if
// size exceeds every class.
func (p *Pool) classFor(size int) *sizeClass {
	for _, c := range p.classes {
		if size <= c.size {
			return c
		}
	}
	return nil
}

// chunkPool is the package-level pool the file system draws its read
// buffers from.
var chunkPool = New(HeaderClassSize, ChunkClassSize, PayloadClassSize)

// Get returns a slice of exactly size bytes from the package pool.
// Pair with Put, normally via defer, once the buffer is no longer
// referenced by any callback.
func Get(size int) []byte {
	return chunkPool.Get(size)
}

// Put returns a buffer obtained from Get to the package pool.
func Put(buf []byte) {
	chunkPool.Put(buf)
}
