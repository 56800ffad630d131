package tree_test

import (
	"math"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/flier/shuffle/pkg/tree"
)

func newIntTree() *tree.Tree[int] {
	return tree.New[int](tree.NewHasher[int]())
}

func TestInsertAndVerify(t *testing.T) {
	Convey("Given an empty tree of ints", t, func() {
		tr := newIntTree()

		So(tr.Empty(), ShouldBeTrue)
		So(tr.Size(), ShouldEqual, 0)

		Convey("When 500 items are inserted in arbitrary order", func() {
			for i := 0; i < 500; i++ {
				v := (i * 2654435761) % 1000
				ok := tr.Insert(v, uint64(i))
				_ = ok
			}

			Convey("Then every RB/BST/aggregate invariant holds", func() {
				So(tr.Verify(), ShouldBeNil)
			})

			Convey("Then inserting a duplicate key reports false and mutates nothing", func() {
				before := tr.Size()
				ok := tr.Insert(0, 9999)

				So(ok, ShouldBeFalse)
				So(tr.Size(), ShouldEqual, before)
			})
		})
	})
}

func TestDeleteRestoresSize(t *testing.T) {
	Convey("Given a tree with 300 items", t, func() {
		tr := newIntTree()

		items := make([]int, 0, 300)
		for i := 0; i < 300; i++ {
			v := (i * 48271) % 2000
			if tr.Insert(v, uint64(i)) {
				items = append(items, v)
			}
		}

		full := tr.Size()
		So(tr.Verify(), ShouldBeNil)

		Convey("When every item is removed one at a time", func() {
			for _, v := range items {
				_, _, ok := tr.Delete(v)
				So(ok, ShouldBeTrue)
				So(tr.Verify(), ShouldBeNil)
			}

			Convey("Then the tree is empty again", func() {
				So(tr.Empty(), ShouldBeTrue)
				So(tr.Size(), ShouldEqual, 0)
			})
		})

		Convey("When a single middle item is removed and reinserted", func() {
			victim := items[len(items)/2]

			removed, gen, ok := tr.Delete(victim)
			So(ok, ShouldBeTrue)
			So(removed, ShouldEqual, victim)
			So(tr.Size(), ShouldEqual, full-1)
			So(tr.Verify(), ShouldBeNil)

			tr.Insert(victim, gen)

			Convey("Then the tree returns to its prior size and stays valid", func() {
				So(tr.Size(), ShouldEqual, full)
				So(tr.Verify(), ShouldBeNil)
			})
		})

		Convey("When removing an item that was never inserted", func() {
			_, _, ok := tr.Delete(-1)

			Convey("Then it reports false and changes nothing", func() {
				So(ok, ShouldBeFalse)
				So(tr.Size(), ShouldEqual, full)
			})
		})
	})
}

func TestGenerationBoundsAndReset(t *testing.T) {
	Convey("Given a tree with known generation spread", t, func() {
		tr := newIntTree()

		tr.Insert(1, 10)
		tr.Insert(2, 20)
		tr.Insert(3, 5)

		Convey("Then Bounds reports the min and max generation", func() {
			lo, hi, ok := tr.Bounds()

			So(ok, ShouldBeTrue)
			So(lo, ShouldEqual, 5)
			So(hi, ShouldEqual, 20)
		})

		Convey("When a node's generation is raised above the old max", func() {
			ref, found := tr.FindAbove(0, math.MaxUint64)
			So(found, ShouldBeTrue)

			tr.SetGeneration(ref, 1000)

			Convey("Then Bounds reflects the new maximum", func() {
				_, hi, _ := tr.Bounds()

				So(hi, ShouldEqual, 1000)
			})
		})

		Convey("When generations are reset", func() {
			tr.ResetGenerations()

			Convey("Then every generation, and the aggregate bounds, become zero", func() {
				lo, hi, ok := tr.Bounds()

				So(ok, ShouldBeTrue)
				So(lo, ShouldEqual, 0)
				So(hi, ShouldEqual, 0)
				So(tr.Verify(), ShouldBeNil)
			})
		})
	})
}

func TestBoundsOnEmptyTree(t *testing.T) {
	Convey("Given an empty tree", t, func() {
		tr := newIntTree()

		Convey("Bounds reports not-ok", func() {
			_, _, ok := tr.Bounds()

			So(ok, ShouldBeFalse)
		})
	})
}
