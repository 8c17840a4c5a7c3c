// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package iqueue

import (
	"sync"
	"testing"
	"time"
	"unsafe"

	"github.com/je-so/iqueue/internal/allocprobe"
)

// TestScenarioEchoOnce mirrors spec §8's "echo-once" scenario: a
// queue created with capacity 1 (NewMPMC rounds it up to 256), one
// message, and a Signal round trip.
func TestScenarioEchoOnce(t *testing.T) {
	type request struct {
		str    string
		signal *Signal
	}

	q, err := NewMPMC(1)
	if err != nil {
		t.Fatal(err)
	}
	defer q.Delete()

	s := NewSignal()
	req := &request{str: "Hello Server", signal: s}

	var wg sync.WaitGroup
	wg.Add(2)

	var got string
	go func() {
		defer wg.Done()
		if err := q.Send(Handle(uintptr(unsafe.Pointer(req)))); err != nil {
			t.Error(err)
		}
		s.Wait()
	}()

	go func() {
		defer wg.Done()
		h, err := q.Recv()
		if err != nil {
			t.Error(err)
			return
		}
		r := (*request)(unsafe.Pointer(uintptr(h)))
		got = r.str
		r.signal.Raise()
	}()

	wg.Wait()
	if got != "Hello Server" {
		t.Fatalf("got %q, want %q", got, "Hello Server")
	}
	if s.Count() != 1 {
		t.Fatalf("Signal.Count() = %d, want 1", s.Count())
	}
}

// TestScenarioBatchOfThree mirrors spec §8's "batch of 3 with
// busy-wait" scenario.
func TestScenarioBatchOfThree(t *testing.T) {
	type request struct {
		a, b, sum int
		signal    *Signal
	}

	q, err := NewMPMC(3)
	if err != nil {
		t.Fatal(err)
	}
	defer q.Delete()

	s := NewSignal()
	pairs := [3][2]int{{1, 2}, {3, 4}, {5, 6}}
	reqs := make([]*request, 3)

	go func() {
		for range 3 {
			h, err := q.Recv()
			if err != nil {
				t.Error(err)
				return
			}
			r := (*request)(unsafe.Pointer(uintptr(h)))
			r.sum = r.a + r.b
			r.signal.Raise()
		}
	}()

	for i, p := range pairs {
		reqs[i] = &request{a: p[0], b: p[1], signal: s}
		if err := q.Send(Handle(uintptr(unsafe.Pointer(reqs[i])))); err != nil {
			t.Fatal(err)
		}
	}

	deadline := time.Now().Add(5 * time.Second)
	for s.Count() < 3 {
		if time.Now().After(deadline) {
			t.Fatal("consumer never acknowledged all three requests")
		}
		time.Sleep(time.Millisecond)
	}

	want := []int{3, 7, 11}
	for i, r := range reqs {
		if r.sum != want[i] {
			t.Errorf("reqs[%d].sum = %d, want %d", i, r.sum, want[i])
		}
	}
}

// TestNoLeakOnTeardown is spec §8's "no leak on teardown" property:
// constructing, using, and Deleting a queue must not leave heap
// allocations behind beyond the garbage collector's own bookkeeping
// noise.
func TestNoLeakOnTeardown(t *testing.T) {
	before := allocprobe.Take()

	for range 100 {
		q, err := NewMPMC(64)
		if err != nil {
			t.Fatal(err)
		}
		for i := 1; i <= 64; i++ {
			if err := q.TrySend(Handle(i)); err != nil {
				t.Fatal(err)
			}
		}
		for range 64 {
			if _, err := q.TryRecv(); err != nil {
				t.Fatal(err)
			}
		}
		q.Delete()
	}

	delta := before.Since()
	if delta.HeapObjects > 1000 {
		t.Fatalf("heap objects grew by %d after 100 construct/use/Delete cycles", delta.HeapObjects)
	}
}

// TestSpuriousWakeupTolerance exercises a waitGate waiter that is
// woken (via a direct Broadcast on its condition variable) without its
// predicate having gone false, confirming parkWhile simply re-parks
// instead of treating the wakeup as definitive.
func TestSpuriousWakeupTolerance(t *testing.T) {
	g := newWaitGate()
	release := false

	done := make(chan struct{})
	go func() {
		// parkWhile calls pred with g.mu held.
		g.parkWhile(func() bool { return !release })
		close(done)
	}()

	for !g.hasWaiters() {
		time.Sleep(time.Millisecond)
	}

	// Broadcast without changing the predicate: the waiter must not
	// exit parkWhile.
	g.cond.Broadcast()
	time.Sleep(20 * time.Millisecond)
	select {
	case <-done:
		t.Fatal("parkWhile returned on a spurious wakeup")
	default:
	}

	g.mu.Lock()
	release = true
	g.mu.Unlock()
	g.cond.Broadcast()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("parkWhile never returned once the predicate went false")
	}
}
