package tree

import "fmt"

// Verify walks the whole tree and confirms these invariants hold: BST key
// order between each node and its direct children (order against deeper
// descendants is not checked), parent links, the red-black coloring rules,
// and the children/min_gen/max_gen aggregates. It is meant for tests, not for production code paths — the
// tree's public surface never exposes ordered iteration.
func (t *Tree[Item]) Verify() error {
	if !t.root.Valid() {
		return nil
	}

	if t.isRed(t.root) {
		return fmt.Errorf("tree: root is red")
	}

	_, err := t.verify(t.root)

	return err
}

func (t *Tree[Item]) verify(i Ref) (blackHeight int, err error) {
	if !i.Valid() {
		return 0, nil
	}

	n := t.at(i)

	if n.left.Valid() {
		l := t.at(n.left)
		if l.parent != i {
			return 0, fmt.Errorf("tree: node %d left child has wrong parent", i)
		}

		if compareKey(l.hash, l.item, n.hash, n.item) >= 0 {
			return 0, fmt.Errorf("tree: node %d violates BST order on the left", i)
		}
	}

	if n.right.Valid() {
		r := t.at(n.right)
		if r.parent != i {
			return 0, fmt.Errorf("tree: node %d right child has wrong parent", i)
		}

		if compareKey(r.hash, r.item, n.hash, n.item) <= 0 {
			return 0, fmt.Errorf("tree: node %d violates BST order on the right", i)
		}
	}

	if t.isRed(i) && (t.isRed(n.left) || t.isRed(n.right)) {
		return 0, fmt.Errorf("tree: node %d is red with a red child", i)
	}

	lbh, err := t.verify(n.left)
	if err != nil {
		return 0, err
	}

	rbh, err := t.verify(n.right)
	if err != nil {
		return 0, err
	}

	if lbh != rbh {
		return 0, fmt.Errorf("tree: node %d has unequal black heights (%d vs %d)", i, lbh, rbh)
	}

	wantChildren := subtreeSize(t, n.left) + subtreeSize(t, n.right)
	if n.children != wantChildren {
		return 0, fmt.Errorf("tree: node %d children=%d, want %d", i, n.children, wantChildren)
	}

	wantMin, wantMax := n.generation, n.generation
	if v := minGenOf(t, n.left); v < wantMin {
		wantMin = v
	}

	if v := minGenOf(t, n.right); v < wantMin {
		wantMin = v
	}

	if v := maxGenOf(t, n.left); v > wantMax {
		wantMax = v
	}

	if v := maxGenOf(t, n.right); v > wantMax {
		wantMax = v
	}

	if n.minGen != wantMin || n.maxGen != wantMax {
		return 0, fmt.Errorf("tree: node %d generation bounds [%d,%d], want [%d,%d]",
			i, n.minGen, n.maxGen, wantMin, wantMax)
	}

	bh := lbh
	if t.isBlack(i) {
		bh++
	}

	return bh, nil
}
