// Package arena implements a stable-index slab allocator.
//
// Unlike the pointer-chunk arena this package replaces, nodes here are
// addressed by a small integer handle that stays valid across insertions,
// and deletions are O(1) via swap-remove: the caller is told when another
// slot's value moved so it can repair whatever external structure (e.g. a
// tree's parent/child links) refers to slots by index.
package arena

import "github.com/flier/shuffle/internal/debug"

// Index addresses a slot in an Arena. The zero value is a valid index (slot
// 0); use Nil to represent the absence of a reference.
type Index uint32

// Nil is the sentinel Index meaning "no slot".
const Nil Index = ^Index(0)

// Valid reports whether i refers to a real slot rather than Nil.
func (i Index) Valid() bool { return i != Nil }

const (
	// shrinkCapThreshold is the smallest capacity the arena will consider
	// shrinking; below it, reallocation churn isn't worth the memory saved.
	shrinkCapThreshold = 100
	// minLoadFactor is the fill ratio below which Deallocate triggers a
	// shrink-to-fit.
	minLoadFactor = 0.5
)

// Arena is a growable, densely-packed slab of T, indexed by Index.
//
// The zero Arena is empty and ready to use.
type Arena[T any] struct {
	slots []T
}

// Len returns the number of live slots.
func (a *Arena[T]) Len() int { return len(a.slots) }

// Cap returns the arena's current backing capacity.
func (a *Arena[T]) Cap() int { return cap(a.slots) }

// Get returns a pointer to the value at i, valid until the next Allocate or
// Deallocate call that moves or grows the backing slice.
func (a *Arena[T]) Get(i Index) *T {
	debug.Assert(i.Valid() && int(i) < len(a.slots), "arena: index %d out of range (len %d)", i, len(a.slots))

	return &a.slots[i]
}

// Allocate appends value as a new slot and returns its index.
func (a *Arena[T]) Allocate(value T) Index {
	a.slots = append(a.slots, value)
	return Index(len(a.slots) - 1)
}

// Deallocate removes the slot at i via swap-remove: if i is not the last
// slot, the tail slot is moved into i's place before the slab shrinks by
// one. moved reports whether a slot was relocated, and from is the slot it
// used to occupy (now gone) — callers must rewrite any external references
// to from into i. Deallocate may also shrink the backing array to fit once
// the load factor drops below 50% past a minimum capacity.
func (a *Arena[T]) Deallocate(i Index) (removed T, from Index, moved bool) {
	last := Index(len(a.slots) - 1)
	removed = a.slots[i]

	if i != last {
		a.slots[i] = a.slots[last]
		from, moved = last, true
	}

	var zero T
	a.slots[last] = zero
	a.slots = a.slots[:last]

	a.shrinkToFit()

	return removed, from, moved
}

func (a *Arena[T]) shrinkToFit() {
	c, n := cap(a.slots), len(a.slots)
	if c <= shrinkCapThreshold || float64(n) >= float64(c)*minLoadFactor {
		return
	}

	shrunk := make([]T, n)
	copy(shrunk, a.slots)
	a.slots = shrunk
}

// Reset discards every slot, leaving the arena empty but reusing its
// backing storage.
func (a *Arena[T]) Reset() { a.slots = a.slots[:0] }
