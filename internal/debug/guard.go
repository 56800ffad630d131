package debug

import "github.com/timandy/routine"

// Guard asserts that every call against the structure it protects comes
// from the same goroutine that created it. Mutating a shuffler is
// documented as a logic error if done concurrently; Guard turns that into
// a deterministic panic at the point of misuse instead of silent
// corruption.
type Guard struct {
	owner int64
}

// NewGuard captures the calling goroutine as the owner.
func NewGuard() *Guard {
	return &Guard{owner: routine.Goid()}
}

// Check panics if called from a goroutine other than the one that created
// g.
func (g *Guard) Check() {
	if id := routine.Goid(); id != g.owner {
		Panic("shuffle.Guard", "accessed from goroutine %d, owned by goroutine %d", id, g.owner)
	}
}
