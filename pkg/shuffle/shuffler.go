// Package shuffle implements a recency-biased random selector: draws favor
// items that haven't been picked in a while, using an order-statistic,
// generation-augmented red-black tree (pkg/tree) underneath.
package shuffle

import (
	"cmp"

	"github.com/flier/shuffle/internal/debug"
	"github.com/flier/shuffle/pkg/opt"
	"github.com/flier/shuffle/pkg/tree"
)

// Option configures a Shuffler at construction time.
type Option func(*config)

type config struct {
	bias       float64
	handling   NewItemHandling
	source     Source
	guard      bool
	onDraw     func(kind string)
	onReset    func()
	onSize     func(int)
	onSpan     func(lo, hi uint64)
}

func defaultConfig() config {
	return config{
		bias:     2.0,
		handling: NeverSelected,
		source:   NewSource(),
		guard:    true,
		onDraw:   func(string) {},
		onReset:  func() {},
		onSize:   func(int) {},
		onSpan:   func(uint64, uint64) {},
	}
}

// WithBias sets the selection bias (default 2.0). Panics immediately if
// bias is NaN or negative.
func WithBias(bias float64) Option {
	validateBias(bias)

	return func(c *config) { c.bias = bias }
}

// WithNewItemHandling sets the policy for seeding a freshly added item's
// initial generation (default NeverSelected).
func WithNewItemHandling(h NewItemHandling) Option {
	return func(c *config) { c.handling = h }
}

// WithSource overrides the PRNG source (default: a math/rand/v2-backed
// Source).
func WithSource(s Source) Option {
	return func(c *config) { c.source = s }
}

// WithoutGuard disables the goroutine-affinity check. Intended only for
// callers who have already established their own synchronization.
func WithoutGuard() Option {
	return func(c *config) { c.guard = false }
}

// Recorder receives observability callbacks from a Shuffler. All methods
// are optional no-ops by default; use WithRecorder to supply one.
type Recorder interface {
	ObserveDraw(kind string)
	ObserveReset()
	SetSize(n int)
	SetGenerationSpread(lo, hi uint64)
}

// WithRecorder wires a metrics Recorder into the Shuffler.
func WithRecorder(r Recorder) Option {
	return func(c *config) {
		c.onDraw = r.ObserveDraw
		c.onReset = r.ObserveReset
		c.onSize = r.SetSize
		c.onSpan = r.SetGenerationSpread
	}
}

// Shuffler owns a tree, a PRNG source, and a selection policy, and exposes
// the user-level draw operations.
type Shuffler[Item cmp.Ordered] struct {
	tree   *tree.Tree[Item]
	cfg    config
	guard  *debug.Guard
}

// New constructs an empty Shuffler using hasher to key items.
func New[Item cmp.Ordered](hasher tree.Hasher[Item], opts ...Option) *Shuffler[Item] {
	cfg := defaultConfig()
	for _, apply := range opts {
		apply(&cfg)
	}

	s := &Shuffler[Item]{
		tree: tree.New[Item](hasher),
		cfg:  cfg,
	}

	if cfg.guard {
		s.guard = debug.NewGuard()
	}

	return s
}

func (s *Shuffler[Item]) check() {
	if s.guard != nil {
		s.guard.Check()
	}
}

// Size returns the number of items currently held.
func (s *Shuffler[Item]) Size() int { s.check(); return s.tree.Size() }

// Empty reports whether the shuffler holds no items.
func (s *Shuffler[Item]) Empty() bool { s.check(); return s.tree.Empty() }

// Generations returns the tree's current [min, max] generation span,
// collapsing to (0, 0) when empty.
func (s *Shuffler[Item]) Generations() (lo, hi uint64) {
	s.check()

	lo, hi, ok := s.tree.Bounds()
	if !ok {
		return 0, 0
	}

	return lo, hi
}

// Add inserts item with its initial generation determined by the
// configured NewItemHandling policy. It reports false if item is already
// present.
func (s *Shuffler[Item]) Add(item Item) bool {
	s.check()

	lo, hi := s.Generations()
	gen := initialGeneration(s.cfg.handling, s.cfg.source, lo, hi)

	ok := s.tree.Insert(item, gen)
	if ok {
		s.cfg.onSize(s.tree.Size())
	}

	return ok
}

// AddWithGeneration inserts item at an explicit generation, bypassing the
// new-item-handling policy. Used by the persistent wrapper to rehydrate
// items at their previously-stored generation.
func (s *Shuffler[Item]) AddWithGeneration(item Item, generation uint64) bool {
	s.check()

	ok := s.tree.Insert(item, generation)
	if ok {
		s.cfg.onSize(s.tree.Size())
	}

	return ok
}

// Remove deletes item if present, returning its last generation.
func (s *Shuffler[Item]) Remove(item Item) opt.Option[uint64] {
	s.check()

	_, gen, ok := s.tree.Delete(item)
	if !ok {
		return opt.None[uint64]()
	}

	s.cfg.onSize(s.tree.Size())

	return opt.Some(gen)
}

// Next draws a single item. Returns None if the shuffler is empty.
func (s *Shuffler[Item]) Next() opt.Option[Item] {
	items, _ := s.NextNReset(1)
	if items.IsNone() {
		return opt.None[Item]()
	}

	return opt.Some(items.Unwrap()[0])
}

// NextN draws n items sharing one freshly minted generation; duplicates
// are allowed. Returns None iff the shuffler is empty, even for n == 0.
func (s *Shuffler[Item]) NextN(n int) opt.Option[[]Item] {
	items, _ := s.NextNReset(n)

	return items
}

// UniqueN draws n distinct items: each pick is immediately ineligible for
// the rest of the batch. Returns None if the shuffler is empty or holds
// fewer than n items.
func (s *Shuffler[Item]) UniqueN(n int) opt.Option[[]Item] {
	items, _ := s.UniqueNReset(n)

	return items
}

// TryUniqueN draws n unique items if the shuffler holds at least n,
// otherwise falls back to NextN (which may repeat items). Returns None
// iff the shuffler is empty.
func (s *Shuffler[Item]) TryUniqueN(n int) opt.Option[[]Item] {
	items, _ := s.TryUniqueNReset(n)

	return items
}

// NextNReset is NextN, additionally reporting whether the generation
// counter wrapped during this draw. Callers that must mirror every
// live item's generation on reset (the persistent wrapper) use this
// instead of NextN.
func (s *Shuffler[Item]) NextNReset(n int) (opt.Option[[]Item], bool) {
	s.check()

	items, reset := s.draw(n, false)
	if items == nil {
		return opt.None[[]Item](), reset
	}

	return opt.Some(items), reset
}

// UniqueNReset is UniqueN, additionally reporting whether the generation
// counter wrapped during this draw.
func (s *Shuffler[Item]) UniqueNReset(n int) (opt.Option[[]Item], bool) {
	s.check()

	if s.tree.Empty() || s.tree.Size() < n {
		return opt.None[[]Item](), false
	}

	items, reset := s.draw(n, true)
	if items == nil {
		return opt.None[[]Item](), reset
	}

	return opt.Some(items), reset
}

// TryUniqueNReset is TryUniqueN, additionally reporting whether the
// generation counter wrapped during this draw.
func (s *Shuffler[Item]) TryUniqueNReset(n int) (opt.Option[[]Item], bool) {
	s.check()

	if !s.tree.Empty() && s.tree.Size() >= n {
		return s.UniqueNReset(n)
	}

	return s.NextNReset(n)
}

// Contains reports whether item is currently held.
func (s *Shuffler[Item]) Contains(item Item) bool {
	s.check()

	_, ok := s.tree.Lookup(item)

	return ok
}

// GenerationOf returns item's current generation, or 0 if absent.
func (s *Shuffler[Item]) GenerationOf(item Item) uint64 {
	s.check()

	ref, ok := s.tree.Lookup(item)
	if !ok {
		return 0
	}

	return s.tree.GenerationAt(ref)
}

// ItemGeneration pairs an item with its stored generation.
type ItemGeneration[Item any] struct {
	Item       Item
	Generation uint64
}

// Items returns every item currently held, unordered, alongside its
// generation. It exists for bulk consumers such as the persistent
// wrapper's full-rewrite path, not for ranked selection: this package
// makes no ordering promise about the result.
func (s *Shuffler[Item]) Items() []ItemGeneration[Item] {
	s.check()

	items := make([]ItemGeneration[Item], 0, s.tree.Size())

	s.tree.All(func(item Item, gen uint64) {
		items = append(items, ItemGeneration[Item]{Item: item, Generation: gen})
	})

	return items
}

// draw implements the shared body of every draw operation: check empty,
// mint a generation, then for each of n picks compute a biased generation
// bound and a uniform index, resolve it through the tree, and stamp the
// result. Returns nil items if the shuffler is empty.
func (s *Shuffler[Item]) draw(n int, unique bool) ([]Item, bool) {
	if s.tree.Empty() {
		return nil, false
	}

	g, reset := s.nextGeneration()
	if reset {
		s.cfg.onReset()
	}

	items := make([]Item, 0, n)

	for i := 0; i < n; i++ {
		size := uint64(s.tree.Size())

		lo, hi, _ := s.tree.Bounds()
		if unique {
			hi = g - 1
		}

		rg := randomGeneration(s.cfg.source, lo, hi, s.cfg.bias)
		idx := s.cfg.source.Uint64Below(size)

		ref := s.tree.FindNext(idx, rg)
		item := s.tree.ItemAt(ref)

		debug.Log(nil, "draw", "pick %d/%d idx=%d bound=%d -> generation=%d", i+1, n, idx, rg, g)

		items = append(items, item)
		s.tree.SetGeneration(ref, g)
	}

	kind := "next"
	if unique {
		kind = "unique"
	}

	s.cfg.onDraw(kind)
	s.cfg.onSpan(s.Generations())

	return items, reset
}

// nextGeneration returns (max_gen + 1, false), or (1, true) with every
// node's generation reset to 0 if max_gen was already math.MaxUint64.
func (s *Shuffler[Item]) nextGeneration() (uint64, bool) {
	_, hi, ok := s.tree.Bounds()
	if !ok {
		return 1, false
	}

	if hi == ^uint64(0) {
		s.tree.ResetGenerations()

		return 1, true
	}

	return hi + 1, false
}
