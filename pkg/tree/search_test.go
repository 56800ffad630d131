package tree_test

import (
	"math"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/flier/shuffle/pkg/tree"
)

func TestFindNextMatchesInOrderRank(t *testing.T) {
	Convey("Given a tree of 200 items with distinct generations", t, func() {
		tr := newIntTree()

		for i := 0; i < 200; i++ {
			tr.Insert(i*7919%5000, uint64(i))
		}

		So(tr.Verify(), ShouldBeNil)

		Convey("Then find_next(i, MaxUint64) returns the in-order rank-i item for every i", func() {
			for i := 0; i < tr.Size(); i++ {
				ref := tr.FindNext(uint64(i), math.MaxUint64)
				item := tr.ItemAt(ref)

				rank := countLessThan(tr, item)

				So(rank, ShouldEqual, i)
			}
		})
	})
}

func TestFindNextAtLowestGenerationReturnsOldest(t *testing.T) {
	Convey("Given a tree where one item is far older than the rest", t, func() {
		tr := newIntTree()

		tr.Insert(1, 1000)
		tr.Insert(2, 2000)
		tr.Insert(3, 0)

		Convey("Then find_next(0, lowest_generation) resolves to the oldest item", func() {
			lo, _, ok := tr.Bounds()
			So(ok, ShouldBeTrue)

			ref := tr.FindNext(0, lo)

			So(tr.ItemAt(ref), ShouldEqual, 3)
			So(tr.GenerationAt(ref), ShouldEqual, lo)
		})
	})
}

func TestFindNextPanicsOnOutOfRangeIndex(t *testing.T) {
	Convey("Given a tree with a single item", t, func() {
		tr := newIntTree()
		tr.Insert(42, 0)

		Convey("Then find_next at an index beyond size panics", func() {
			So(func() { tr.FindNext(1, math.MaxUint64) }, ShouldPanic)
		})
	})

	Convey("Given an empty tree", t, func() {
		tr := newIntTree()

		Convey("Then find_next panics rather than returning a bogus ref", func() {
			So(func() { tr.FindNext(0, math.MaxUint64) }, ShouldPanic)
		})
	})
}

// countLessThan returns the first index i at which FindNext(i, MaxUint64)
// yields item. It is built on FindNext itself, so it shows that no earlier
// index resolves to the same item; it does not recompute the (hash, item)
// order independently.
func countLessThan(tr *tree.Tree[int], item int) int {
	ref, ok := tr.FindAbove(0, math.MaxUint64)
	if !ok {
		return 0
	}

	count := 0

	for i := 0; i < tr.Size(); i++ {
		ref = tr.FindNext(uint64(i), math.MaxUint64)
		if tr.ItemAt(ref) == item {
			break
		}

		count++
	}

	return count
}
