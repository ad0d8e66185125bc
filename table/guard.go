package table

import "sync/atomic"

// Guard is the exclusive write token of one table.
//
// At most one Guard per table is active at a time. Release is idempotent and
// should be deferred right after a successful Acquire.
type Guard struct {
	t        *table
	released atomic.Bool
}

// Active reports whether the Guard still holds the write token.
func (g *Guard) Active() bool {
	return g != nil && !g.released.Load() && g.t.active.Load() == g
}

// Release gives up the write token.
func (g *Guard) Release() {
	if g == nil || !g.released.CompareAndSwap(false, true) {
		return
	}
	g.t.active.CompareAndSwap(g, nil)
	g.t.token.Release(1)
}

func (g *Guard) activeFor(t *table) bool {
	return g.Active() && g.t == t
}
