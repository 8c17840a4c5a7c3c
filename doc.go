// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package iqueue provides zero-copy, bounded, inter-goroutine message
// queues for passing opaque pointer-sized handles between goroutines
// within a single process.
//
// Two queue flavors share a uniform surface:
//
//   - [MPMC]: multi-producer / multi-consumer
//   - [SPSC]: single-producer / single-consumer
//
// plus [Signal], a small synchronization primitive senders and
// receivers use to be notified of message completion outside the
// queue itself.
//
// # Quick Start
//
//	q, err := iqueue.NewMPMC(1024)
//	if err != nil {
//	    // capacity <= 0 or too large for the packed size word
//	}
//	defer q.Delete()
//
//	// Non-blocking
//	if err := q.TrySend(iqueue.Handle(ptr)); iqueue.IsWouldBlock(err) {
//	    // queue full — handle backpressure
//	}
//	h, err := q.TryRecv()
//	if iqueue.IsWouldBlock(err) {
//	    // queue empty — try again later
//	}
//
//	// Blocking
//	if err := q.Send(iqueue.Handle(ptr)); err != nil {
//	    // only ErrClosed or ErrInvalidArgument reach here
//	}
//	h, err := q.Recv() // blocks until a handle arrives or Close
//
// # Handles
//
// A [Handle] is an opaque, pointer-sized, non-null value the caller
// chooses. The library never dereferences it; callers typically pack
// an unsafe.Pointer or a pool index into it:
//
//	msg := &Message{Data: payload}
//	q.Send(iqueue.Handle(uintptr(unsafe.Pointer(msg))))
//	// ...
//	h, _ := q.Recv()
//	msg := (*Message)(unsafe.Pointer(uintptr(h)))
//
// The reserved handle value 0 means "empty"; Send/TrySend reject it
// with ErrInvalidArgument.
//
// # Pipeline Stage (SPSC)
//
//	q, _ := iqueue.NewSPSC(1024)
//
//	go func() { // Producer
//	    for data := range input {
//	        q.Send(iqueue.Handle(uintptr(unsafe.Pointer(&data))))
//	    }
//	    q.Close()
//	}()
//
//	go func() { // Consumer
//	    for {
//	        h, err := q.Recv()
//	        if iqueue.IsClosed(err) {
//	            return
//	        }
//	        process((*Data)(unsafe.Pointer(uintptr(h))))
//	    }
//	}()
//
// # Worker Pool (MPMC)
//
//	q, _ := iqueue.NewMPMC(4096)
//
//	for range numWorkers {
//	    go func() {
//	        for {
//	            h, err := q.Recv()
//	            if iqueue.IsClosed(err) {
//	                return
//	            }
//	            job := (*Job)(unsafe.Pointer(uintptr(h)))
//	            job.Run()
//	        }
//	    }()
//	}
//
//	func Submit(j *Job) error {
//	    return q.Send(iqueue.Handle(uintptr(unsafe.Pointer(j))))
//	}
//
// # Completion Signals
//
// [Signal] lets a producer wait for a consumer (or any number of
// consumers) to report that messages have been processed, independent
// of the queue itself:
//
//	s := iqueue.NewSignal()
//	q.Send(iqueue.Handle(uintptr(unsafe.Pointer(&Request{Data: x, Done: s}))))
//	s.Wait() // blocks until Raise is called at least once
//
// Signal.Wait does not clear the signal count on return — call
// Signal.Clear explicitly when the count should reset. See
// DESIGN.md's Open Question resolutions for why this non-clearing
// behavior is mandated rather than "fixed".
//
// # Capacity and Size
//
// MPMC and SPSC both round capacity up to the next power of 2:
//
//	q, _ := iqueue.NewMPMC(3)     // Capacity(): 256 (MPMC's shard count floor)
//	q, _ := iqueue.NewMPMC(1000)  // Capacity(): 1024
//	q, _ := iqueue.NewSPSC(3)     // Capacity(): 4
//
// [MPMC.Size] and [SPSC.Size] are best-effort / approximate: accurate
// counts in a lock-free, sharded-contention-accounting ring would
// require cross-core synchronization this package deliberately avoids
// on the hot path. Track counts in application logic when an exact
// count matters.
//
// # Thread Safety
//
//   - SPSC: exactly one producer goroutine, one consumer goroutine
//   - MPMC: any number of producer and consumer goroutines
//
// Violating these constraints (e.g. two producers on an SPSC queue)
// is undefined behavior, exactly as for any other single-writer data
// structure built on non-atomic fields.
//
// # Closing and Teardown
//
// Close transitions a queue to a terminal, refusing state: every
// subsequent Send/Recv/TrySend/TryRecv returns ErrClosed, and every
// goroutine already parked in a blocking Send/Recv is woken and
// returns ErrClosed. Close is idempotent.
//
// Delete calls Close and additionally waits for every parked goroutine
// to drain before returning. Unlike the queue this package was ported
// from, there is no explicit free step: once the last reference to a
// queue is dropped, Go's garbage collector reclaims its cell array and
// gates.
//
// # Ordering Guarantees
//
// For SPSC, handles are delivered strictly FIFO. For MPMC, each
// producer's own sequence of successful Sends is delivered to some
// consumer(s) in program order, but there is no total FIFO ordering
// across distinct producers — two producers' handles may be consumed
// in an order different from their Send return order.
//
// # Race Detection
//
// Go's race detector tracks explicit synchronization primitives
// (mutex, channel, WaitGroup) but cannot observe happens-before
// relationships established purely through atomic acquire/release
// operations on separate variables. MPMC's cell-CAS handoff is correct
// but may trip false positives under -race; such tests are excluded
// via "//go:build !race" (see [RaceEnabled]).
//
// # Dependencies
//
// This package uses [code.hybscloud.com/iox] for semantic errors,
// [code.hybscloud.com/atomix] for atomic primitives with explicit
// memory ordering, and [code.hybscloud.com/spin] for bounded CPU-pause
// spin loops in the lock-free hot paths.
package iqueue
