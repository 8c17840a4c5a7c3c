// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package iqueue

import "sync"

// Signal is an externally observable, monotonic completion counter.
//
// Senders and receivers use a Signal to coordinate "message processed"
// notifications that live outside the queue itself — for example, a
// producer that wants to know when a consumer has finished handling a
// specific message.
//
// Signal pairs a mutex and condition variable with a waiter count, the
// same shape as the internal waitGate, but Raise/Wait/Clear/Count are
// exported because Signal is meant to be shared between arbitrary
// goroutines, not just one queue's producers and consumers.
//
// A Signal is created with [NewSignal] and requires no explicit
// teardown: Go's garbage collector reclaims it once nothing references
// it, so there is no Free/Delete counterpart to the constructor (unlike
// the C original, whose iqsignal_t required an explicit init/free pair
// — see DESIGN.md for this resolved Open Question).
type Signal struct {
	mu          sync.Mutex
	cond        *sync.Cond
	waitCount   uint64
	signalCount uint64
}

// NewSignal creates a ready-to-use Signal with its counters at zero.
func NewSignal() *Signal {
	s := &Signal{}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// Raise increments the signal count and wakes every waiter.
//
// Broadcast (not a single Signal) is used because multiple goroutines
// may be waiting on the same Signal for distinct completion events.
// Raise never fails.
func (s *Signal) Raise() {
	s.mu.Lock()
	s.signalCount++
	s.mu.Unlock()
	s.cond.Broadcast()
}

// Wait blocks until the signal count is non-zero.
//
// Wait performs a single condition wait and tolerates spurious
// wakeups: callers that need to wait for a specific count (e.g. "wait
// for 3 completions") must loop on [Signal.Count] themselves, busy or
// otherwise — Wait only guarantees the count was non-zero at some
// point before it returns, not that it reflects any particular value.
//
// Wait does NOT clear the signal count on return; call [Signal.Clear]
// explicitly if the count should be reset. This is the non-clearing
// variant of Wait mandated by this package — see DESIGN.md.
func (s *Signal) Wait() {
	s.mu.Lock()
	if s.signalCount == 0 {
		s.waitCount++
		s.cond.Wait()
		s.waitCount--
	}
	s.mu.Unlock()
}

// Clear atomically reads and zeroes the signal count, returning the
// value observed before clearing.
func (s *Signal) Clear() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.signalCount
	s.signalCount = 0
	return prev
}

// Count returns the current signal count without modifying it.
func (s *Signal) Count() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.signalCount
}
