// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package iqueue

import (
	"runtime"
	"sync"
)

// waitGate is the internal "slow path" parking lot used on both the
// producer and consumer side of a queue. It has no signal count of its
// own — unlike [Signal], a waitGate's wakeup condition is implied by
// the ring's own atomic counters (free slots for writers, used slots
// for readers), checked by the predicate passed to parkWhile.
type waitGate struct {
	mu        sync.Mutex
	cond      *sync.Cond
	waitCount int
}

func newWaitGate() *waitGate {
	g := &waitGate{}
	g.cond = sync.NewCond(&g.mu)
	return g
}

// parkWhile blocks the calling goroutine on g while pred returns true,
// re-evaluating pred after every wakeup (spurious or not). pred is
// called with g's lock held, so it may safely read state that is only
// mutated under that lock (close flags aside — the ring's try-op is
// the source of truth there and is re-attempted by the caller, not by
// pred).
func (g *waitGate) parkWhile(pred func() bool) {
	g.mu.Lock()
	for pred() {
		g.waitCount++
		g.cond.Wait()
		g.waitCount--
	}
	g.mu.Unlock()
}

// signalOne wakes at most one parked waiter, used on the success path
// of Send/Recv to avoid thundering-herd wakeups (spec §4.5 wake
// policy).
func (g *waitGate) signalOne() {
	g.cond.Signal()
}

// hasWaiters reports whether any goroutine is currently parked on g.
// Used to decide whether waking the peer gate is worth the Signal
// call at all.
func (g *waitGate) hasWaiters() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.waitCount > 0
}

// quiesce broadcasts g until no goroutine is parked on it. This is a
// lightweight quiescence barrier, not a strict memory barrier: it
// guarantees every waiter has observed whatever state change prompted
// the broadcast (typically a queue's closed flag) and exited its wait,
// not that the state change itself is globally visible before quiesce
// returns (the caller's own store happens-before the lock acquisition
// inside parkWhile, which is sufficient).
func (g *waitGate) quiesce() {
	for {
		g.mu.Lock()
		n := g.waitCount
		g.mu.Unlock()
		if n == 0 {
			return
		}
		g.cond.Broadcast()
		runtime.Gosched()
	}
}
