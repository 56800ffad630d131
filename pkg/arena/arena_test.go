package arena_test

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/flier/shuffle/pkg/arena"
)

func TestArena(t *testing.T) {
	Convey("Given an empty Arena", t, func() {
		a := new(arena.Arena[string])

		So(a.Len(), ShouldEqual, 0)

		Convey("When a value is allocated", func() {
			i := a.Allocate("a")

			Convey("Then it is retrievable at its index", func() {
				So(*a.Get(i), ShouldEqual, "a")
				So(a.Len(), ShouldEqual, 1)
			})
		})

		Convey("When several values are allocated", func() {
			ia := a.Allocate("a")
			ib := a.Allocate("b")
			ic := a.Allocate("c")

			Convey("Then deallocating a middle slot swaps the tail in", func() {
				removed, from, moved := a.Deallocate(ib)

				So(removed, ShouldEqual, "b")
				So(moved, ShouldBeTrue)
				So(from, ShouldEqual, ic)
				So(*a.Get(ib), ShouldEqual, "c")
				So(a.Len(), ShouldEqual, 2)
			})

			Convey("Then deallocating the last slot does not move anything", func() {
				_, _, moved := a.Deallocate(ic)

				So(moved, ShouldBeFalse)
				So(a.Len(), ShouldEqual, 2)
				So(*a.Get(ia), ShouldEqual, "a")
			})
		})
	})

	Convey("Given an Arena past the shrink threshold", t, func() {
		a := new(arena.Arena[int])

		for i := 0; i < 256; i++ {
			a.Allocate(i)
		}

		bigCap := a.Cap()

		Convey("When more than half the slots are freed", func() {
			for i := 0; i < 200; i++ {
				a.Deallocate(0)
			}

			Convey("Then the backing array shrinks to fit", func() {
				So(a.Cap(), ShouldBeLessThan, bigCap)
			})
		})
	})
}
