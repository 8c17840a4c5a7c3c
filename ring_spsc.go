// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package iqueue

import (
	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

// SPSC is a single-producer single-consumer bounded queue of opaque,
// pointer-sized handles.
//
// Ring1Core from spec §4.4: readPos/writePos are plain (non-atomic)
// fields, each mutated by exactly one goroutine, relying on the
// single-producer/single-consumer constraint for correctness. The
// atomic cell CAS (the same empty<->handle handoff MPMC uses) is still
// required so [SPSC.Size] and teardown remain race-free against the
// peer goroutine.
//
// Calling Send/TrySend from more than one goroutine, or Recv/TryRecv
// from more than one goroutine, is undefined behavior — exactly as for
// any other single-producer or single-consumer data structure.
type SPSC struct {
	_ pad

	writePos uint64 // producer-owned
	_        pad
	readPos uint64 // consumer-owned
	_       pad
	closed atomix.Bool
	_      pad

	cells    []atomix.Uintptr
	capacity uint64
	mask     uint64

	readerGate *waitGate
	writerGate *waitGate
}

// NewSPSC creates an SPSC queue whose capacity is rounded up to the
// next power of two. Returns ErrInvalidArgument if capacity is not
// positive.
func NewSPSC(capacity int) (*SPSC, error) {
	if capacity <= 0 {
		return nil, ErrInvalidArgument
	}
	n := uint64(roundToPow2(capacity))
	return &SPSC{
		cells:      make([]atomix.Uintptr, n),
		capacity:   n,
		mask:       n - 1,
		readerGate: newWaitGate(),
		writerGate: newWaitGate(),
	}, nil
}

// tryEnqueue is try_enqueue from spec §4.4 (producer goroutine only).
func (q *SPSC) tryEnqueue(h Handle) error {
	if h == 0 {
		return ErrInvalidArgument
	}
	if q.closed.LoadAcquire() {
		return ErrClosed
	}

	writePos := q.writePos
	nextWrite := (writePos + 1) & q.mask
	q.writePos = nextWrite

	if !q.cells[writePos].CompareAndSwapAcqRel(0, uintptr(h)) {
		q.writePos = writePos
		return ErrWouldBlock
	}
	return nil
}

// tryDequeue is try_dequeue from spec §4.4 (consumer goroutine only),
// the mirror of tryEnqueue.
func (q *SPSC) tryDequeue() (Handle, error) {
	if q.closed.LoadAcquire() {
		return 0, ErrClosed
	}

	readPos := q.readPos
	nextRead := (readPos + 1) & q.mask
	q.readPos = nextRead

	cur := q.cells[readPos].LoadAcquire()
	if cur == 0 {
		q.readPos = readPos
		return 0, ErrWouldBlock
	}
	if !q.cells[readPos].CompareAndSwapAcqRel(cur, 0) {
		q.readPos = readPos
		return 0, ErrWouldBlock
	}
	return Handle(cur), nil
}

// TrySend attempts to enqueue h without blocking (producer goroutine
// only). On success it wakes the consumer if it is parked in Recv.
func (q *SPSC) TrySend(h Handle) error {
	err := q.tryEnqueue(h)
	wakePeer(q.readerGate, err)
	return err
}

// TryRecv attempts to dequeue a handle without blocking (consumer
// goroutine only). On success it wakes the producer if it is parked in
// Send.
func (q *SPSC) TryRecv() (Handle, error) {
	h, err := q.tryDequeue()
	wakePeer(q.writerGate, err)
	return h, err
}

// Send enqueues h, blocking while the queue is full (producer
// goroutine only).
func (q *SPSC) Send(h Handle) error {
	return sendLoop(q.writerGate, q.readerGate, func() error { return q.tryEnqueue(h) })
}

// Recv dequeues a handle, blocking while the queue is empty (consumer
// goroutine only).
func (q *SPSC) Recv() (Handle, error) {
	return recvLoop(q.readerGate, q.writerGate, q.tryDequeue)
}

// Close transitions the queue to its terminal, refusing state. Close
// is idempotent and blocks until the parked producer and consumer (if
// any) have observed the closed flag and returned ErrClosed.
func (q *SPSC) Close() {
	q.readerGate.mu.Lock()
	q.writerGate.mu.Lock()
	q.closed.StoreRelease(true)
	q.writerGate.mu.Unlock()
	q.readerGate.mu.Unlock()

	q.readerGate.quiesce()
	q.writerGate.quiesce()
}

// Delete closes the queue (if not already closed) and waits for the
// producer and consumer to drain before returning.
func (q *SPSC) Delete() {
	q.Close()
	sw := spin.Wait{}
	for q.readerGate.hasWaiters() || q.writerGate.hasWaiters() {
		sw.Once()
	}
}

// Capacity returns the queue's configured (rounded-up) capacity.
func (q *SPSC) Capacity() int {
	return int(q.capacity)
}

// Size returns the current element count.
//
// Because readPos/writePos are each owned by a single goroutine, this
// is exact with respect to that goroutine's own view, but — called
// from any third goroutine, or from the peer goroutine mid-operation —
// it is inherently a snapshot that may be stale by the time it is
// read, per spec §4.4's three-way disambiguation.
func (q *SPSC) Size() int {
	writePos := q.writePos
	readPos := q.readPos

	switch {
	case writePos > readPos:
		return int(writePos - readPos)
	case writePos < readPos:
		return int(q.capacity - (readPos - writePos))
	default:
		return q.sizeAtEqual(writePos)
	}
}

// sizeAtEqual disambiguates the writePos == readPos case: the queue is
// either completely empty or completely full, distinguished by
// inspecting the cell just before writePos.
func (q *SPSC) sizeAtEqual(writePos uint64) int {
	prev := (writePos + q.capacity - 1) & q.mask
	if q.cells[prev].LoadAcquire() == 0 {
		return 0
	}
	return int(q.capacity)
}
