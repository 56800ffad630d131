package tree

import "github.com/flier/shuffle/internal/debug"

// findAbove returns the first node, in in-order, whose rank is ≥ index and
// whose generation is ≤ g. ok is false if no such node exists in the
// subtree rooted at i, in which case size is that subtree's size (so a
// caller higher up the recursion can translate indices).
func (t *Tree[Item]) findAbove(i Ref, index uint64, g uint64) (ref Ref, size uint64, ok bool) {
	if !i.Valid() {
		return NoRef, 0, false
	}

	n := t.at(i)
	total := n.children + 1

	if n.minGen > g || total < index {
		return NoRef, total, false
	}

	if ref, _, ok := t.findAbove(n.left, index, g); ok {
		return ref, 0, true
	}

	lc := subtreeSize(t, n.left)

	if index <= lc && n.generation <= g {
		return i, 0, true
	}

	if ref, _, ok := t.findAbove(n.right, saturatingSub(index, lc+1), g); ok {
		return ref, 0, true
	}

	return NoRef, total, false
}

// FindAbove exposes findAbove for the selector: it returns the first item
// (in hash order) whose rank is at least index and whose generation is at
// most g.
func (t *Tree[Item]) FindAbove(index, g uint64) (Ref, bool) {
	ref, _, ok := t.findAbove(t.root, index, g)

	return ref, ok
}

// FindNext is the user-facing selection entry point: it requires a
// non-empty tree and a valid index, searches for a node whose rank is ≥
// index and whose generation is within bound g, and wraps around to
// index 0 if the first attempt comes up empty. If both attempts fail the
// tree's invariants have been violated externally and FindNext panics.
func (t *Tree[Item]) FindNext(index, g uint64) Ref {
	size := uint64(t.Size())
	if size == 0 {
		debug.Panic("tree.FindNext", "called on an empty tree")
	}

	if index >= size {
		debug.Panic("tree.FindNext", "index %d out of range (size %d)", index, size)
	}

	if ref, ok := t.FindAbove(index, g); ok {
		return ref
	}

	if ref, ok := t.FindAbove(0, g); ok {
		return ref
	}

	if debug.Enabled {
		panic("tree: corrupt tree, FindNext found no eligible node\n" + debug.Stack(2))
	}

	panic("tree: corrupt tree, FindNext found no eligible node")
}
