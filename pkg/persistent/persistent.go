package persistent

import (
	"cmp"
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/flier/shuffle/pkg/opt"
	"github.com/flier/shuffle/pkg/res"
	"github.com/flier/shuffle/pkg/shuffle"
	"github.com/flier/shuffle/pkg/tree"
)

// Options configures a Persistent wrapper at Open time.
type Options[Item cmp.Ordered] struct {
	Bias                         float64
	NewItemHandling              shuffle.NewItemHandling
	RemoveOnDeserializationError bool
	KeepUnrecognized             bool
	Source                       shuffle.Source
	Recorder                     shuffle.Recorder
}

// DefaultOptions returns the documented defaults: bias 2.0,
// NeverSelected, both error-tolerance flags false.
func DefaultOptions[Item cmp.Ordered]() Options[Item] {
	return Options[Item]{
		Bias:            2.0,
		NewItemHandling: shuffle.NeverSelected,
	}
}

func (o Options[Item]) shuffleOptions() []shuffle.Option {
	opts := []shuffle.Option{
		shuffle.WithBias(o.Bias),
		shuffle.WithNewItemHandling(o.NewItemHandling),
	}

	if o.Source != nil {
		opts = append(opts, shuffle.WithSource(o.Source))
	}

	if o.Recorder != nil {
		opts = append(opts, shuffle.WithRecorder(o.Recorder))
	}

	return opts
}

// Persistent wraps a shuffle.Shuffler, mirroring every mutation into a
// Store keyed by the codec's encoding of the item, with value = the
// item's 8-byte big-endian generation.
type Persistent[Item cmp.Ordered] struct {
	shuffler         *shuffle.Shuffler[Item]
	store            Store
	codec            Codec[Item]
	keepUnrecognized bool
}

// Open opens store, hydrates a Shuffler from its records, and reconciles
// against validItems (nil means "accept everything currently in the
// store").
func Open[Item cmp.Ordered](
	store Store,
	codec Codec[Item],
	hasher tree.Hasher[Item],
	validItems []Item,
	opts Options[Item],
) res.Result[*Persistent[Item]] {
	sh := shuffle.New[Item](hasher, opts.shuffleOptions()...)

	p := &Persistent[Item]{
		shuffler:         sh,
		store:            store,
		codec:            codec,
		keepUnrecognized: opts.KeepUnrecognized,
	}

	var valid map[Item]struct{}

	if validItems != nil {
		valid = make(map[Item]struct{}, len(validItems))
		for _, item := range validItems {
			valid[item] = struct{}{}
		}
	}

	seen := make(map[Item]struct{})

	var (
		errs       *multierror.Error
		toDelete   [][]byte
	)

	err := store.Iterate(func(key, value []byte) error {
		item, decErr := codec.Decode(key)
		if decErr != nil {
			if opts.RemoveOnDeserializationError {
				toDelete = append(toDelete, cloneKey(key))

				return nil
			}

			errs = multierror.Append(errs, &DeserializationError{Record: "item", Cause: decErr})

			return nil
		}

		gen, genErr := DecodeGeneration(value)
		if genErr != nil {
			if opts.RemoveOnDeserializationError {
				toDelete = append(toDelete, cloneKey(key))

				return nil
			}

			errs = multierror.Append(errs, genErr)

			return nil
		}

		if valid != nil {
			if _, ok := valid[item]; !ok {
				if !opts.KeepUnrecognized {
					toDelete = append(toDelete, cloneKey(key))
				}

				return nil
			}
		}

		sh.AddWithGeneration(item, gen)
		seen[item] = struct{}{}

		return nil
	})
	if err != nil {
		return res.Err[*Persistent[Item]](fmt.Errorf("persistent: reading store: %w", err))
	}

	if errs.ErrorOrNil() != nil {
		return res.Err[*Persistent[Item]](errs)
	}

	if len(toDelete) > 0 {
		b := store.Batch()
		for _, k := range toDelete {
			b.Delete(k)
		}

		if err := b.Commit(); err != nil {
			return res.Err[*Persistent[Item]](fmt.Errorf("persistent: purging unrecognized records: %w", err))
		}
	}

	for _, item := range validItems {
		if _, ok := seen[item]; ok {
			continue
		}

		if r := p.Add(item); r.IsErr() {
			return res.Err[*Persistent[Item]](r.UnwrapErr())
		}
	}

	return res.Ok(p)
}

func cloneKey(key []byte) []byte {
	out := make([]byte, len(key))
	copy(out, key)

	return out
}

func (p *Persistent[Item]) encode(item Item, gen uint64) (key, value []byte, err error) {
	key, err = p.codec.Encode(item)
	if err != nil {
		return nil, nil, fmt.Errorf("persistent: encoding item: %w", err)
	}

	return key, EncodeGeneration(gen), nil
}

// Add inserts item into the tree at its initial generation (per the
// configured policy), then writes it to the store. If item is already
// present it does nothing.
func (p *Persistent[Item]) Add(item Item) res.Result[struct{}] {
	if !p.shuffler.Add(item) {
		return res.Ok(struct{}{})
	}

	gen := p.shuffler.GenerationOf(item)

	key, value, err := p.encode(item, gen)
	if err != nil {
		return res.Err[struct{}](err)
	}

	if err := p.store.Put(key, value); err != nil {
		return res.Err[struct{}](fmt.Errorf("persistent: writing item: %w", err))
	}

	return res.Ok(struct{}{})
}

// Remove deletes item from the tree and, if it was present, from the
// store.
func (p *Persistent[Item]) Remove(item Item) res.Result[struct{}] {
	g := p.shuffler.Remove(item)
	if g.IsNone() {
		return res.Ok(struct{}{})
	}

	key, err := p.codec.Encode(item)
	if err != nil {
		return res.Err[struct{}](fmt.Errorf("persistent: encoding item: %w", err))
	}

	if err := p.store.Delete(key); err != nil {
		return res.Err[struct{}](fmt.Errorf("persistent: deleting item: %w", err))
	}

	return res.Ok(struct{}{})
}

// SoftRemove deletes item from the tree only; the store record persists
// for potential re-hydration via Load.
func (p *Persistent[Item]) SoftRemove(item Item) {
	p.shuffler.Remove(item)
}

// Load brings item into the tree: a no-op if it's already present,
// otherwise it's read back from the store (preserving its stored
// generation) or, failing that, added fresh.
func (p *Persistent[Item]) Load(item Item) res.Result[struct{}] {
	if p.shuffler.Contains(item) {
		return res.Ok(struct{}{})
	}

	key, err := p.codec.Encode(item)
	if err != nil {
		return res.Err[struct{}](fmt.Errorf("persistent: encoding item: %w", err))
	}

	value, ok, err := p.store.Get(key)
	if err != nil {
		return res.Err[struct{}](fmt.Errorf("persistent: reading item: %w", err))
	}

	if !ok {
		return p.Add(item)
	}

	gen, err := DecodeGeneration(value)
	if err != nil {
		return res.Err[struct{}](err)
	}

	p.shuffler.AddWithGeneration(item, gen)

	return res.Ok(struct{}{})
}

// writeBack persists the current generation of every item in items,
// issuing one batch commit.
func (p *Persistent[Item]) writeBack(items []Item) res.Result[struct{}] {
	b := p.store.Batch()

	for _, item := range items {
		gen := p.shuffler.GenerationOf(item)

		key, value, err := p.encode(item, gen)
		if err != nil {
			return res.Err[struct{}](err)
		}

		b.Put(key, value)
	}

	if err := b.Commit(); err != nil {
		return res.Err[struct{}](fmt.Errorf("persistent: writing batch: %w", err))
	}

	return res.Ok(struct{}{})
}

// Next draws a single item and mirrors its new generation to the store.
func (p *Persistent[Item]) Next() res.Result[opt.Option[Item]] {
	r := p.drawAndWriteBack(p.shuffler.NextNReset(1))
	if r.IsErr() {
		return res.Err[opt.Option[Item]](r.UnwrapErr())
	}

	items := r.Unwrap()
	if items.IsNone() {
		return res.Ok(opt.None[Item]())
	}

	return res.Ok(opt.Some(items.Unwrap()[0]))
}

// NextN draws n items sharing one generation and mirrors every write.
func (p *Persistent[Item]) NextN(n int) res.Result[opt.Option[[]Item]] {
	return p.drawAndWriteBack(p.shuffler.NextNReset(n))
}

// UniqueN draws n distinct items and mirrors every write.
func (p *Persistent[Item]) UniqueN(n int) res.Result[opt.Option[[]Item]] {
	return p.drawAndWriteBack(p.shuffler.UniqueNReset(n))
}

// TryUniqueN draws unique items if possible, else falls back to NextN,
// mirroring every write.
func (p *Persistent[Item]) TryUniqueN(n int) res.Result[opt.Option[[]Item]] {
	return p.drawAndWriteBack(p.shuffler.TryUniqueNReset(n))
}

// drawAndWriteBack mirrors a draw's effects to the store. On a plain
// draw it writes back only the picked items; on a generation-counter
// reset it instead rewrites every live item at its current generation
// (zero, or the freshly minted one for the picked items), since the
// reset silently changed all of them.
func (p *Persistent[Item]) drawAndWriteBack(drawn opt.Option[[]Item], reset bool) res.Result[opt.Option[[]Item]] {
	if reset {
		all := p.shuffler.Items()
		items := make([]Item, len(all))

		for i, ig := range all {
			items[i] = ig.Item
		}

		if r := p.writeBack(items); r.IsErr() {
			return res.Err[opt.Option[[]Item]](r.UnwrapErr())
		}

		return res.Ok(drawn)
	}

	if drawn.IsNone() {
		return res.Ok(opt.None[[]Item]())
	}

	items := drawn.Unwrap()

	if len(items) > 0 {
		if r := p.writeBack(items); r.IsErr() {
			return res.Err[opt.Option[[]Item]](r.UnwrapErr())
		}
	}

	return res.Ok(drawn)
}

// Compact flushes pending writes and triggers the backend's compaction.
func (p *Persistent[Item]) Compact() res.Result[struct{}] {
	if err := p.store.Flush(); err != nil {
		return res.Err[struct{}](fmt.Errorf("persistent: flushing: %w", err))
	}

	if err := p.store.Compact(); err != nil {
		return res.Err[struct{}](fmt.Errorf("persistent: compacting: %w", err))
	}

	return res.Ok(struct{}{})
}

// Close flushes pending writes and releases the store.
func (p *Persistent[Item]) Close() res.Result[struct{}] {
	if err := p.store.Flush(); err != nil {
		return res.Err[struct{}](fmt.Errorf("persistent: flushing: %w", err))
	}

	if err := p.store.Close(); err != nil {
		return res.Err[struct{}](fmt.Errorf("persistent: closing: %w", err))
	}

	return res.Ok(struct{}{})
}

// Drop releases the store, swallowing any error, mirroring the
// documented "drop does the same but swallows errors" contract.
func (p *Persistent[Item]) Drop() {
	_ = p.store.Flush()
	_ = p.store.Close()
}

// Size returns the number of items currently held.
func (p *Persistent[Item]) Size() int { return p.shuffler.Size() }

// Items returns every item currently held, unordered, alongside its
// generation.
func (p *Persistent[Item]) Items() []shuffle.ItemGeneration[Item] { return p.shuffler.Items() }
