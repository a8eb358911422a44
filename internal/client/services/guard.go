package services

import "sync/atomic"

// Guard lets one submission run at a time. A submission attempted while
// another is in flight is dropped, not queued.
type Guard struct {
	busy atomic.Bool
}

// Do runs fn unless another call is in flight, and reports whether it ran.
func (g *Guard) Do(fn func() error) (ran bool, err error) {
	if !g.busy.CompareAndSwap(false, true) {
		return false, nil
	}
	defer g.busy.Store(false)
	return true, fn()
}
