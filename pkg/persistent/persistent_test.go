package persistent_test

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/flier/shuffle/pkg/persistent"
	"github.com/flier/shuffle/pkg/persistent/memstore"
	"github.com/flier/shuffle/pkg/tree"
)

func open(t *testing.T, store *memstore.Store, valid []string, opts persistent.Options[string]) *persistent.Persistent[string] {
	t.Helper()

	r := persistent.Open[string](store, persistent.StringCodec{}, tree.NewHasher[string](), valid, opts)
	if r.IsErr() {
		t.Fatalf("open: %v", r.UnwrapErr())
	}

	return r.Unwrap()
}

func generations(p *persistent.Persistent[string]) map[string]uint64 {
	gens := make(map[string]uint64, p.Size())
	for _, ig := range p.Items() {
		gens[ig.Item] = ig.Generation
	}

	return gens
}

func TestOpenEmptyAndDrawUnique(t *testing.T) {
	Convey("Given an empty store opened with 3 valid items", t, func() {
		store := memstore.New()
		opts := persistent.DefaultOptions[string]()

		p := open(t, store, []string{"a", "b", "c"}, opts)

		So(p.Size(), ShouldEqual, 3)

		Convey("When 3 unique items are drawn", func() {
			r := p.UniqueN(3)

			So(r.IsOk(), ShouldBeTrue)

			picked := r.Unwrap()
			So(picked.IsSome(), ShouldBeTrue)
			So(len(picked.Unwrap()), ShouldEqual, 3)
		})
	})
}

func TestReopenPreservesGenerations(t *testing.T) {
	Convey("Given a store that was drawn from and closed", t, func() {
		store := memstore.New()
		opts := persistent.DefaultOptions[string]()

		p := open(t, store, []string{"a", "b", "c"}, opts)
		p.UniqueN(3)

		closeRes := p.Close()
		So(closeRes.IsOk(), ShouldBeTrue)

		Convey("When reopened with the same valid-items set", func() {
			p2 := open(t, store, []string{"a", "b", "c"}, opts)

			Convey("Then all three items and their generations survive", func() {
				So(p2.Size(), ShouldEqual, 3)
				So(generations(p2), ShouldResemble, generations(p))
			})
		})

		Convey("When reopened with a narrower valid-items set and keep_unrecognized=false", func() {
			p2 := open(t, store, []string{"a"}, opts)

			Convey("Then b and c are purged from the tree", func() {
				So(p2.Size(), ShouldEqual, 1)
			})
		})

		Convey("When reopened with keep_unrecognized=true and an extra item", func() {
			keepOpts := opts
			keepOpts.KeepUnrecognized = true

			p2 := open(t, store, []string{"a", "z"}, keepOpts)

			Convey("Then b and c are still absent from the tree even though their records remain on disk", func() {
				So(p2.Size(), ShouldEqual, 2)
				So(p2.Size(), ShouldNotEqual, 4)
			})
		})
	})
}

func TestSoftRemoveKeepsStoreRecord(t *testing.T) {
	Convey("Given a persistent wrapper with one item", t, func() {
		store := memstore.New()
		opts := persistent.DefaultOptions[string]()

		p := open(t, store, []string{"a"}, opts)

		Convey("When the item is soft-removed", func() {
			p.SoftRemove("a")

			So(p.Size(), ShouldEqual, 0)

			_, stored, err := store.Get([]byte("a"))
			So(err, ShouldBeNil)
			So(stored, ShouldBeTrue)

			Convey("Then Load brings it back from the store", func() {
				r := p.Load("a")

				So(r.IsOk(), ShouldBeTrue)
				So(p.Size(), ShouldEqual, 1)
			})
		})
	})
}

func TestRemoveDeletesStoreRecord(t *testing.T) {
	Convey("Given a persistent wrapper with one item", t, func() {
		store := memstore.New()
		opts := persistent.DefaultOptions[string]()

		p := open(t, store, []string{"a"}, opts)

		Convey("When the item is hard-removed and the wrapper is reopened", func() {
			p.Remove("a")
			p.Close()

			p2 := open(t, store, nil, opts)

			Convey("Then it is gone entirely", func() {
				So(p2.Size(), ShouldEqual, 0)
			})
		})
	})
}
