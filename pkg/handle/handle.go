// Package handle implements the fixed- or growable-capacity slot
// allocator used across the task system, file system, and scene database
// to hand out stable, generation-checked opaque references.
//
// A Handle carries both a slot index and a generation counter, so a
// stale handle from a freed and reused slot is rejected instead of
// silently aliasing live data.
package handle

import (
	"errors"
	"sync"
)

// ErrAtCapacity is returned by Allocate when the table has a fixed
// capacity and every slot is occupied.
var ErrAtCapacity = errors.New("handle: table at capacity")

// Handle is an opaque, comparable reference into a Table. The zero
// Handle is never returned by Allocate and is always invalid.
type Handle struct {
	id  uint32
	gen uint32
}

// Invalid returns the distinguished invalid handle.
func Invalid() Handle {
	return Handle{}
}

// IsValid reports whether h could possibly name a live slot. It does not
// consult any Table — use Table.Contains for that.
func (h Handle) IsValid() bool {
	return h.gen != 0
}

// Index returns the handle's slot index, for callers (like atomic status
// arrays keyed by slot) that need a plain integer alongside the handle.
func (h Handle) Index() uint32 {
	return h.id
}

type slot[V any] struct {
	value    V
	gen      uint32
	occupied bool
}

// Table is a mutex-guarded, exclusively-owning map from Handle to V. It
// is safe for concurrent use from multiple goroutines; Allocate/Free/
// Contains/Get/ForEach/Len/Clear each take the table lock for the
// duration of the call, never across caller-supplied I/O.
//
// With capacity > 0 the table is fixed-size: Allocate returns
// ErrAtCapacity once every slot is occupied. With capacity == 0 the
// backing slice grows as needed.
type Table[V any] struct {
	mu       sync.RWMutex
	slots    []slot[V]
	free     []uint32 // LIFO free list of slot indices, for cache reuse
	count    int
	capacity int
}

// New creates a Table. capacity == 0 means growable.
func New[V any](capacity int) *Table[V] {
	t := &Table[V]{capacity: capacity}
	if capacity > 0 {
		t.slots = make([]slot[V], 0, capacity)
	}
	return t
}

// Allocate reserves a new slot, returning its handle and a pointer to
// the zero-valued V stored in the table for the caller to initialize in
// place.
func (t *Table[V]) Allocate() (Handle, *V, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if n := len(t.free); n > 0 {
		idx := t.free[n-1]
		t.free = t.free[:n-1]
		s := &t.slots[idx]
		s.gen++
		s.occupied = true
		var zero V
		s.value = zero
		t.count++
		return Handle{id: idx, gen: s.gen}, &s.value, nil
	}

	if t.capacity > 0 && len(t.slots) >= t.capacity {
		return Invalid(), nil, ErrAtCapacity
	}

	idx := uint32(len(t.slots))
	t.slots = append(t.slots, slot[V]{gen: 1, occupied: true})
	t.count++
	return Handle{id: idx, gen: 1}, &t.slots[idx].value, nil
}

// Free releases h's slot. It returns false (no side effects) if h does
// not currently name a live slot — Free is idempotent.
func (t *Table[V]) Free(h Handle) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.liveSlot(h)
	if !ok {
		return false
	}
	var zero V
	s.value = zero
	s.occupied = false
	t.count--
	t.free = append(t.free, h.id)
	return true
}

// Contains reports whether h currently names a live slot.
func (t *Table[V]) Contains(h Handle) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.liveSlot(h)
	return ok
}

// Get returns a pointer to h's value and true, or (nil, false) if h is
// not live. The returned pointer is only safe to dereference while
// holding no assumption about concurrent Free calls — callers that need
// that guarantee must serialize externally.
func (t *Table[V]) Get(h Handle) (*V, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s, ok := t.liveSlot(h)
	if !ok {
		return nil, false
	}
	return &s.value, true
}

// ForEach calls fn for every live handle in slot order, stopping early
// if fn returns false.
func (t *Table[V]) ForEach(fn func(Handle, *V) bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for i := range t.slots {
		s := &t.slots[i]
		if !s.occupied {
			continue
		}
		if !fn(Handle{id: uint32(i), gen: s.gen}, &s.value) {
			return
		}
	}
}

// Len returns the number of live handles.
func (t *Table[V]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.count
}

// Clear frees every live slot.
func (t *Table[V]) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.free = t.free[:0]
	for i := range t.slots {
		t.slots[i].occupied = false
		var zero V
		t.slots[i].value = zero
		t.free = append(t.free, uint32(i))
	}
	t.count = 0
}

// liveSlot must be called with t.mu held (read or write).
func (t *Table[V]) liveSlot(h Handle) (*slot[V], bool) {
	if h.gen == 0 || int(h.id) >= len(t.slots) {
		return nil, false
	}
	s := &t.slots[h.id]
	if !s.occupied || s.gen != h.gen {
		return nil, false
	}
	return s, true
}
