// Package tree implements the order-statistic, generation-augmented,
// self-balancing binary search tree at the heart of the shuffler: a
// red-black tree keyed on (hash(item), item), with every node carrying
// subtree aggregates (descendant count, min/max generation) so that a
// biased, recency-aware selection can be answered in O(log n).
package tree

import (
	"cmp"
	"math"

	"github.com/flier/shuffle/pkg/arena"
)

// Hasher produces a stable 64-bit digest for an Item. Implementations are
// injected by the caller: the tree never chooses its own hash function.
// Clone must return an independent copy so the tree
// can hash freely during descents without the caller worrying about shared
// mutable state.
type Hasher[Item any] interface {
	Hash(Item) uint64
	Clone() Hasher[Item]
}

// Tree is an augmented red-black tree over Item, ordered by (hash, item).
//
// The zero value is not usable; construct with New.
type Tree[Item cmp.Ordered] struct {
	nodes arena.Arena[node[Item]]
	root  Ref
	hash  Hasher[Item]
}

// New constructs an empty Tree using h to hash items.
func New[Item cmp.Ordered](h Hasher[Item]) *Tree[Item] {
	return &Tree[Item]{root: NoRef, hash: h}
}

// Size returns the number of items currently in the tree.
func (t *Tree[Item]) Size() int {
	if !t.root.Valid() {
		return 0
	}

	return int(t.at(t.root).children) + 1
}

// Empty reports whether the tree holds no items.
func (t *Tree[Item]) Empty() bool { return !t.root.Valid() }

// Bounds returns the tree's minimum and maximum generation across every
// item. ok is false for an empty tree.
func (t *Tree[Item]) Bounds() (lo, hi uint64, ok bool) {
	if !t.root.Valid() {
		return 0, 0, false
	}

	r := t.at(t.root)

	return r.minGen, r.maxGen, true
}

// ItemAt returns the item stored at ref.
func (t *Tree[Item]) ItemAt(ref Ref) Item { return t.at(ref).item }

// GenerationAt returns the generation stored at ref.
func (t *Tree[Item]) GenerationAt(ref Ref) uint64 { return t.at(ref).generation }

// SetGeneration stamps ref with a new generation and propagates the
// aggregate update up every ancestor.
func (t *Tree[Item]) SetGeneration(ref Ref, generation uint64) {
	t.at(ref).generation = generation

	for a := ref; a.Valid(); a = t.at(a).parent {
		t.recalc(a)
	}
}

// ResetGenerations sets every node's generation to zero, used for the
// generation-counter overflow reset.
func (t *Tree[Item]) ResetGenerations() {
	t.walk(t.root, func(r Ref) {
		t.at(r).generation = 0
	})

	t.recalcAll(t.root)
}

func (t *Tree[Item]) at(i Ref) *node[Item] { return t.nodes.Get(i) }

func (t *Tree[Item]) isBlack(i Ref) bool {
	return !i.Valid() || t.at(i).color == black
}

func (t *Tree[Item]) isRed(i Ref) bool { return !t.isBlack(i) }

func minGenOf[Item any](t *Tree[Item], i Ref) uint64 {
	if !i.Valid() {
		return math.MaxUint64
	}

	return t.at(i).minGen
}

func maxGenOf[Item any](t *Tree[Item], i Ref) uint64 {
	if !i.Valid() {
		return 0
	}

	return t.at(i).maxGen
}

func subtreeSize[Item any](t *Tree[Item], i Ref) uint64 {
	if !i.Valid() {
		return 0
	}

	return t.at(i).children + 1
}

// recalc recomputes i's children/minGen/maxGen aggregates from its two
// children and itself. This is the single place the aggregate invariant
// is re-established after a structural change.
func (t *Tree[Item]) recalc(i Ref) {
	n := t.at(i)

	n.children = subtreeSize(t, n.left) + subtreeSize(t, n.right)

	mn := n.generation
	if v := minGenOf(t, n.left); v < mn {
		mn = v
	}

	if v := minGenOf(t, n.right); v < mn {
		mn = v
	}

	n.minGen = mn

	mx := n.generation
	if v := maxGenOf(t, n.left); v > mx {
		mx = v
	}

	if v := maxGenOf(t, n.right); v > mx {
		mx = v
	}

	n.maxGen = mx
}

// recalcAll recomputes aggregates bottom-up for the whole subtree rooted
// at i. Used only by ResetGenerations, where every node's self-generation
// changed at once.
func (t *Tree[Item]) recalcAll(i Ref) {
	if !i.Valid() {
		return
	}

	n := t.at(i)
	t.recalcAll(n.left)
	t.recalcAll(n.right)
	t.recalc(i)
}

// walk visits every node of the subtree rooted at i in no particular order.
func (t *Tree[Item]) walk(i Ref, visit func(Ref)) {
	if !i.Valid() {
		return
	}

	n := t.at(i)
	t.walk(n.left, visit)
	visit(i)
	t.walk(n.right, visit)
}

func compareKey[Item cmp.Ordered](hA uint64, a Item, hB uint64, b Item) int {
	if hA != hB {
		if hA < hB {
			return -1
		}

		return 1
	}

	return cmp.Compare(a, b)
}

func saturatingSub(a, b uint64) uint64 {
	if a < b {
		return 0
	}

	return a - b
}

// rotateLeft performs the standard left rotation around p, then recomputes
// aggregates on p and its replacement, in that order.
func (t *Tree[Item]) rotateLeft(p Ref) {
	r := t.at(p).right
	pr := t.at(r).left

	t.at(p).right = pr
	if pr.Valid() {
		t.at(pr).parent = p
	}

	t.relink(p, r)

	t.at(r).left = p
	t.at(p).parent = r

	t.recalc(p)
	t.recalc(r)
}

// rotateRight is the mirror of rotateLeft.
func (t *Tree[Item]) rotateRight(p Ref) {
	l := t.at(p).left
	pl := t.at(l).right

	t.at(p).left = pl
	if pl.Valid() {
		t.at(pl).parent = p
	}

	t.relink(p, l)

	t.at(l).right = p
	t.at(p).parent = l

	t.recalc(p)
	t.recalc(l)
}

// relink rewires whatever pointed at p (p's parent, or the tree root) to
// point at r instead, and sets r's parent accordingly. It does not touch
// p or r's child pointers; callers finish wiring those.
func (t *Tree[Item]) relink(p, r Ref) {
	parent := t.at(p).parent
	t.at(r).parent = parent

	switch {
	case !parent.Valid():
		t.root = r
	case t.at(parent).left == p:
		t.at(parent).left = r
	default:
		t.at(parent).right = r
	}
}

// relinkAfterMove repairs every reference to oldIdx after the arena's
// swap-remove relocated that slot's node to newIdx.
func (t *Tree[Item]) relinkAfterMove(newIdx, oldIdx Ref) {
	n := t.at(newIdx)
	n.index = newIdx

	if n.parent.Valid() {
		p := t.at(n.parent)
		switch {
		case p.left == oldIdx:
			p.left = newIdx
		case p.right == oldIdx:
			p.right = newIdx
		}
	}

	if n.left.Valid() {
		t.at(n.left).parent = newIdx
	}

	if n.right.Valid() {
		t.at(n.right).parent = newIdx
	}

	if t.root == oldIdx {
		t.root = newIdx
	}
}

// Lookup returns the Ref for item if present.
func (t *Tree[Item]) Lookup(item Item) (Ref, bool) {
	h := t.hash.Clone().Hash(item)
	ref := t.find(h, item)

	return ref, ref.Valid()
}

// All invokes visit for every (item, generation) pair in the tree, in no
// particular order — it exists for bulk consumers (e.g. persistence
// rewrites), not as a ranked or in-order iteration API.
func (t *Tree[Item]) All(visit func(item Item, generation uint64)) {
	t.walk(t.root, func(r Ref) {
		n := t.at(r)
		visit(n.item, n.generation)
	})
}

func (t *Tree[Item]) find(h uint64, item Item) Ref {
	cur := t.root

	for cur.Valid() {
		n := t.at(cur)

		switch c := compareKey(h, item, n.hash, n.item); {
		case c == 0:
			return cur
		case c < 0:
			cur = n.left
		default:
			cur = n.right
		}
	}

	return NoRef
}

func (t *Tree[Item]) minimum(i Ref) Ref {
	for t.at(i).left.Valid() {
		i = t.at(i).left
	}

	return i
}
