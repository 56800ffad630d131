package tree

// Insert adds item at generation into the tree. It reports false without
// mutating anything if an item with the same (hash, item) key is already
// present.
func (t *Tree[Item]) Insert(item Item, generation uint64) bool {
	h := t.hash.Clone().Hash(item)

	var parent Ref = NoRef
	cur := t.root
	left := false

	for cur.Valid() {
		n := t.at(cur)

		switch c := compareKey(h, item, n.hash, n.item); {
		case c == 0:
			return false
		case c < 0:
			parent, cur, left = cur, n.left, true
		default:
			parent, cur, left = cur, n.right, false
		}
	}

	idx := t.nodes.Allocate(node[Item]{
		item:       item,
		hash:       h,
		generation: generation,
		color:      red,
		parent:     parent,
		left:       NoRef,
		right:      NoRef,
		minGen:     generation,
		maxGen:     generation,
	})
	t.at(idx).index = idx

	if !parent.Valid() {
		t.root = idx
	} else if left {
		t.at(parent).left = idx
	} else {
		t.at(parent).right = idx
	}

	for a := parent; a.Valid(); a = t.at(a).parent {
		t.recalc(a)
	}

	t.fixupInsert(idx)

	return true
}

// fixupInsert restores the red-black invariants after inserting z as a red
// leaf.
func (t *Tree[Item]) fixupInsert(z Ref) {
	for t.isRed(t.at(z).parent) {
		p := t.at(z).parent
		g := t.at(p).parent

		if p == t.at(g).left {
			u := t.at(g).right

			if t.isRed(u) {
				t.at(p).color = black
				t.at(u).color = black
				t.at(g).color = red
				z = g

				continue
			}

			if z == t.at(p).right {
				z = p
				t.rotateLeft(z)
				p = t.at(z).parent
				g = t.at(p).parent
			}

			t.at(p).color = black
			t.at(g).color = red
			t.rotateRight(g)

			break
		}

		u := t.at(g).left

		if t.isRed(u) {
			t.at(p).color = black
			t.at(u).color = black
			t.at(g).color = red
			z = g

			continue
		}

		if z == t.at(p).left {
			z = p
			t.rotateRight(z)
			p = t.at(z).parent
			g = t.at(p).parent
		}

		t.at(p).color = black
		t.at(g).color = red
		t.rotateLeft(g)

		break
	}

	t.at(t.root).color = black
}
