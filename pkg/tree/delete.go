package tree

// Delete removes the item keyed by (hash, item) if present, returning the
// removed item, its generation, and whether anything was removed.
func (t *Tree[Item]) Delete(item Item) (removedItem Item, removedGen uint64, ok bool) {
	h := t.hash.Clone().Hash(item)

	target := t.find(h, item)
	if !target.Valid() {
		return removedItem, 0, false
	}

	removedItem = t.at(target).item
	removedGen = t.at(target).generation

	// Two children: swap payload fields with the in-order successor and
	// continue the deletion at the successor's slot.
	if t.at(target).left.Valid() && t.at(target).right.Valid() {
		succ := t.minimum(t.at(target).right)

		tn, sn := t.at(target), t.at(succ)
		tn.item, sn.item = sn.item, tn.item
		tn.hash, sn.hash = sn.hash, tn.hash
		tn.generation, sn.generation = sn.generation, tn.generation

		target = succ
	}

	n := t.at(target)
	parent := n.parent

	var child Ref
	if n.left.Valid() {
		child = n.left
	} else {
		child = n.right
	}

	switch {
	case !parent.Valid() && !child.Valid():
		// Root case, no children: tree becomes empty.
		t.root = NoRef
	case !parent.Valid():
		// Root case, one child: child becomes the new root.
		t.root = child
		t.at(child).parent = NoRef
		t.at(child).color = black
	case t.isRed(target) || t.isRed(child):
		// Red case: splice child into parent at target's slot.
		t.transplant(target, child)

		if child.Valid() {
			t.at(child).color = black
		}
	default:
		// Double-black case: fix up before unlinking.
		t.fixupDelete(target)
		t.transplant(target, child)
	}

	// Recompute ancestor aggregates starting from target's former parent,
	// before the slot itself is deallocated.
	for a := parent; a.Valid(); a = t.at(a).parent {
		t.recalc(a)
	}

	_, from, moved := t.nodes.Deallocate(target)

	if moved {
		if parent == from {
			parent = target
		}

		t.relinkAfterMove(target, from)
	}

	for a := parent; a.Valid(); a = t.at(a).parent {
		t.recalc(a)
	}

	return removedItem, removedGen, true
}

// transplant replaces the subtree rooted at u with the subtree rooted at v,
// without touching v's own children.
func (t *Tree[Item]) transplant(u, v Ref) {
	p := t.at(u).parent

	switch {
	case !p.Valid():
		t.root = v
	case t.at(p).left == u:
		t.at(p).left = v
	default:
		t.at(p).right = v
	}

	if v.Valid() {
		t.at(v).parent = p
	}
}

func (t *Tree[Item]) sibling(n Ref) Ref {
	p := t.at(n).parent

	if t.at(p).left == n {
		return t.at(p).right
	}

	return t.at(p).left
}

// fixupDelete restores the red-black invariants for the double-black node
// at n, which is about to be unlinked by the caller.
func (t *Tree[Item]) fixupDelete(n Ref) {
	for n != t.root {
		p := t.at(n).parent
		s := t.sibling(n)
		isLeft := t.at(p).left == n

		// Case A: red sibling.
		if t.isRed(s) {
			t.at(s).color = black
			t.at(p).color = red

			if isLeft {
				t.rotateLeft(p)
			} else {
				t.rotateRight(p)
			}

			s = t.sibling(n)
		}

		var inner, outer Ref
		if isLeft {
			inner, outer = t.at(s).left, t.at(s).right
		} else {
			inner, outer = t.at(s).right, t.at(s).left
		}

		// Case D: sibling has an outer red child (or both).
		if t.isRed(outer) {
			t.at(s).color = t.at(p).color
			t.at(p).color = black
			t.at(outer).color = black

			if isLeft {
				t.rotateLeft(p)
			} else {
				t.rotateRight(p)
			}

			return
		}

		// Case C: sibling has only an inner red child.
		if t.isRed(inner) {
			t.at(inner).color = black
			t.at(s).color = red

			if isLeft {
				t.rotateRight(s)
			} else {
				t.rotateLeft(s)
			}

			continue
		}

		// Case B: sibling and both its children are black.
		t.at(s).color = red

		if t.isRed(p) {
			t.at(p).color = black

			return
		}

		n = p
	}
}
