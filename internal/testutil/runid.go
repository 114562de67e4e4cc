package testutil

import "sync"

// FixedRunIDs returns predetermined run IDs in order, enabling golden-file
// comparison of run output.
//
// Panics when the IDs are exhausted: a test that creates more runs than it
// scripted is misconfigured and should fail fast.
type FixedRunIDs struct {
	mu  sync.Mutex
	ids []string
	idx int
}

// NewFixedRunIDs creates a generator that yields ids in order.
func NewFixedRunIDs(ids ...string) *FixedRunIDs {
	return &FixedRunIDs{ids: ids}
}

// Generate returns the next predetermined ID.
func (g *FixedRunIDs) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.idx >= len(g.ids) {
		panic("FixedRunIDs: all ids exhausted")
	}
	id := g.ids[g.idx]
	g.idx++
	return id
}
