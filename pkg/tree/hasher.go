package tree

import "github.com/dolthub/maphash"

// defaultHasher is the stock Hasher, backed by dolthub/maphash's seeded
// 64-bit hash. Callers obtain it through NewHasher and pass it to New (or
// to shuffle.New); neither constructor installs it on its own.
type defaultHasher[Item comparable] struct {
	h maphash.Hasher[Item]
}

// NewHasher returns the default Hasher implementation for a comparable
// item type, seeded randomly at construction.
func NewHasher[Item comparable]() Hasher[Item] {
	return defaultHasher[Item]{h: maphash.NewHasher[Item]()}
}

func (d defaultHasher[Item]) Hash(item Item) uint64 { return d.h.Hash(item) }

// Clone returns an independent copy. maphash.Hasher is an immutable value
// type, so a plain copy is already independent.
func (d defaultHasher[Item]) Clone() Hasher[Item] { return d }
