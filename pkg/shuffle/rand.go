package shuffle

import (
	"math/rand/v2"

	"github.com/flier/shuffle/internal/debug"
)

// Source is the randomness a Shuffler draws on. Implementations are
// injected so tests can supply a deterministic sequence (see the
// bias=∞/always-zero law).
type Source interface {
	// Float64 returns a value in [0, 1).
	Float64() float64
	// Uint64Below returns a value in [0, n) for n > 0.
	Uint64Below(n uint64) uint64
}

// defaultSource wraps the standard library's PCG generator.
// Cryptographic strength is explicitly not required; math/rand/v2 is
// chosen for its non-global, reseedable *rand.Rand.
type defaultSource struct {
	r *rand.Rand
}

// NewSource returns the default Source, seeded from the runtime's entropy
// pool.
func NewSource() Source {
	return defaultSource{r: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))}
}

func (d defaultSource) Float64() float64 { return d.r.Float64() }

func (d defaultSource) Uint64Below(n uint64) uint64 {
	if n == 0 {
		debug.Panic("shuffle.Source.Uint64Below", "n must be > 0")
	}

	return d.r.Uint64N(n)
}

// ZeroSource is a deterministic Source that always returns the minimum
// value. It exists to exercise the documented property that bias=∞ with
// an always-zero draw returns the oldest items deterministically.
type ZeroSource struct{}

func (ZeroSource) Float64() float64             { return 0 }
func (ZeroSource) Uint64Below(n uint64) uint64 { return 0 }
