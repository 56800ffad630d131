package shuffle

import (
	"math"

	"github.com/flier/shuffle/internal/debug"
)

// randomGeneration draws a generation bound in [lo, hi] biased toward lo by
// bias: bias=0 always returns hi (every item eligible, so selection is
// uniform), bias=1 draws the bound uniformly (an item's chance of being
// eligible falls linearly with its generation), larger bias concentrates
// mass near lo, and bias=+Inf always returns lo.
func randomGeneration(src Source, lo, hi uint64, bias float64) uint64 {
	if lo == hi {
		return lo
	}

	if math.IsInf(bias, 1) {
		return lo
	}

	u := src.Float64()
	b := math.Pow(u, bias)

	span := hi - lo + 1
	offset := uint64(math.Floor(float64(span) * b))

	if offset > hi-lo {
		offset = hi - lo
	}

	return lo + offset
}

// validateBias enforces the open-time contract: bias must be non-NaN and
// non-negative.
func validateBias(bias float64) {
	if math.IsNaN(bias) || bias < 0 {
		debug.Panic("shuffle.WithBias", "bias must be non-negative and non-NaN, got %v", bias)
	}
}
