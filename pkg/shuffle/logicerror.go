package shuffle

import "github.com/flier/shuffle/internal/debug"

// LogicError is panicked when a Shuffler's (or the tree beneath it)
// documented contract is violated by the caller — invalid configuration,
// an out-of-range draw, concurrent access — rather than a problem with
// the underlying data. Callers that recover can still distinguish it
// from other panics with errors.As, e.g. pkg/xerrors.AsA[LogicError].
type LogicError = debug.LogicError
