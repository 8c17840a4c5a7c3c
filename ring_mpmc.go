// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package iqueue

import (
	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

// mpmcShardCount is N from spec §3: the fixed number of parallel
// used[]/free[] counters producers and consumers rotate across to
// spread capacity-accounting contention.
const mpmcShardCount = 256

// mpmcMaxCapacity is the largest capacity representable by the packed
// headSize word's 16-bit "next" field (spec §4.3's head_size, upper 16
// bits = dequeue index modulo capacity). Capacities are rounded up to
// a power of two that is at least mpmcShardCount, so this also bounds
// the largest power of two NewMPMC will accept.
const mpmcMaxCapacity = 1 << 16

// MPMC is a multi-producer multi-consumer bounded queue of opaque,
// pointer-sized handles.
//
// The lock-free state machine is RingCore from spec §4.3: a fixed
// array of cells, each published by a producer with an atomic
// compare-and-swap from the empty sentinel (0) to a handle and claimed
// by a consumer with the mirror CAS. Capacity accounting is sharded
// across mpmcShardCount independent counters to keep producers and
// consumers that land on different shards from contending on the same
// cache line.
type MPMC struct {
	_ pad

	// headSize packs the consumer's current dequeue index (high 16
	// bits, taken modulo capacity) and an approximate element count
	// (low 16 bits). It is updated after every successful
	// enqueue/dequeue and backs [MPMC.Size]; neither try_enqueue nor
	// try_dequeue depend on it for correctness — that is carried
	// entirely by the cell CAS and the used[]/free[] shards below.
	headSize atomix.Uint32
	_        pad

	writePos atomix.Uint32 // producer claim counter, monotonically increasing
	_        pad
	readPos atomix.Uint32 // consumer claim counter, monotonically increasing
	_       pad
	iFree atomix.Uint32 // shard cursor rotated by producers
	_     pad
	iUsed atomix.Uint32 // shard cursor rotated by consumers
	_     pad
	closed atomix.Bool
	_      pad

	used [mpmcShardCount]atomix.Int32
	free [mpmcShardCount]atomix.Int32

	cells []atomix.Uintptr

	capacity uint32
	mask     uint32
	quota    int32 // capacity / mpmcShardCount

	readerGate *waitGate
	writerGate *waitGate
}

// NewMPMC creates an MPMC queue whose capacity is rounded up to the
// next power of two that is at least mpmcShardCount (256), per spec
// §4.3's capacity policy. Returns ErrInvalidArgument if capacity is not
// positive, or if the rounded capacity would exceed the range the
// packed headSize word's 16-bit index field can represent (65536).
func NewMPMC(capacity int) (*MPMC, error) {
	if capacity <= 0 {
		return nil, ErrInvalidArgument
	}
	n := roundToPow2(capacity)
	if n < mpmcShardCount {
		n = mpmcShardCount
	}
	if n > mpmcMaxCapacity {
		return nil, ErrInvalidArgument
	}

	q := &MPMC{
		cells:      make([]atomix.Uintptr, n),
		capacity:   uint32(n),
		mask:       uint32(n - 1),
		quota:      int32(n / mpmcShardCount),
		readerGate: newWaitGate(),
		writerGate: newWaitGate(),
	}
	for i := range q.free {
		q.free[i].StoreRelaxed(q.quota)
	}
	return q, nil
}

func packHeadSize(next, size uint32) uint32 {
	return (next&0xFFFF)<<16 | (size & 0xFFFF)
}

func unpackHeadSize(w uint32) (next, size uint32) {
	return w >> 16, w & 0xFFFF
}

// observeHeadSize repacks headSize after a successful op, folding in
// deltaSize and the consumer's current position. The CAS is retried
// until it succeeds so that no delta is lost; the count is still only
// approximate while other operations are in flight (see [MPMC.Size]).
func (q *MPMC) observeHeadSize(deltaSize int32) {
	next := q.readPos.LoadAcquire() & q.mask
	for {
		old := q.headSize.LoadAcquire()
		_, size := unpackHeadSize(old)
		newSize := uint32(int32(size)+deltaSize) & 0xFFFF
		if q.headSize.CompareAndSwapAcqRel(old, packHeadSize(next, newSize)) {
			return
		}
	}
}

// tryEnqueue is try_enqueue from spec §4.3.
func (q *MPMC) tryEnqueue(h Handle) error {
	if h == 0 {
		return ErrInvalidArgument
	}

	var ifree uint32
	reserved := false
	for attempt := 0; attempt < mpmcShardCount; attempt++ {
		ifree = q.iFree.LoadAcquire()
		if q.closed.LoadAcquire() {
			return ErrClosed
		}

		v := q.free[ifree].AddAcqRel(-1)
		if uint32(v) < q.capacity {
			reserved = true
			break
		}

		q.free[ifree].AddAcqRel(1)
		q.iFree.CompareAndSwapAcqRel(ifree, (ifree+1)%mpmcShardCount)
	}
	if !reserved {
		return ErrWouldBlock
	}

	pos := q.writePos.AddAcqRel(1) - 1
	slot := pos & q.mask

	sw := spin.Wait{}
	for !q.cells[slot].CompareAndSwapAcqRel(0, uintptr(h)) {
		sw.Once()
	}

	q.used[ifree].AddAcqRel(1)
	q.observeHeadSize(1)
	return nil
}

// tryDequeue is try_dequeue from spec §4.3.
func (q *MPMC) tryDequeue() (Handle, error) {
	var iused uint32
	reserved := false
	for attempt := 0; attempt < mpmcShardCount; attempt++ {
		iused = q.iUsed.LoadAcquire()
		if q.closed.LoadAcquire() {
			return 0, ErrClosed
		}

		v := q.used[iused].AddAcqRel(-1)
		if uint32(v) < q.capacity {
			reserved = true
			break
		}

		q.used[iused].AddAcqRel(1)
		q.iUsed.CompareAndSwapAcqRel(iused, (iused+1)%mpmcShardCount)
	}
	if !reserved {
		return 0, ErrWouldBlock
	}

	pos := q.readPos.AddAcqRel(1) - 1
	slot := pos & q.mask

	sw := spin.Wait{}
	var h uintptr
	for {
		cur := q.cells[slot].LoadAcquire()
		if cur != 0 && q.cells[slot].CompareAndSwapAcqRel(cur, 0) {
			h = cur
			break
		}
		sw.Once()
	}

	q.free[iused].AddAcqRel(1)
	q.observeHeadSize(-1)
	return Handle(h), nil
}

// TrySend attempts to enqueue h without blocking. On success it wakes
// one goroutine parked in Recv, if any.
// Returns ErrInvalidArgument if h is the empty handle, ErrClosed if the
// queue has been closed, or ErrWouldBlock if the queue is full.
func (q *MPMC) TrySend(h Handle) error {
	err := q.tryEnqueue(h)
	wakePeer(q.readerGate, err)
	return err
}

// TryRecv attempts to dequeue a handle without blocking. On success it
// wakes one goroutine parked in Send, if any.
// Returns ErrClosed if the queue has been closed, or ErrWouldBlock if
// the queue is empty.
func (q *MPMC) TryRecv() (Handle, error) {
	h, err := q.tryDequeue()
	wakePeer(q.writerGate, err)
	return h, err
}

// Send enqueues h, blocking while the queue is full.
// Returns ErrInvalidArgument if h is the empty handle, or ErrClosed if
// the queue is or becomes closed.
func (q *MPMC) Send(h Handle) error {
	return sendLoop(q.writerGate, q.readerGate, func() error { return q.tryEnqueue(h) })
}

// Recv dequeues a handle, blocking while the queue is empty.
// Returns ErrClosed if the queue is or becomes closed.
func (q *MPMC) Recv() (Handle, error) {
	return recvLoop(q.readerGate, q.writerGate, q.tryDequeue)
}

// Close transitions the queue to its terminal, refusing state.
//
// Close is idempotent and blocks until every goroutine parked in Send
// or Recv has observed the closed flag and returned ErrClosed.
func (q *MPMC) Close() {
	q.readerGate.mu.Lock()
	q.writerGate.mu.Lock()
	q.closed.StoreRelease(true)
	q.writerGate.mu.Unlock()
	q.readerGate.mu.Unlock()

	q.readerGate.quiesce()
	q.writerGate.quiesce()
}

// Delete closes the queue (if not already closed) and waits for every
// waiter to drain before returning. Go's garbage collector reclaims
// the cell array and gates once Delete returns and the caller drops
// its last reference — there is no explicit free step.
func (q *MPMC) Delete() {
	q.Close()
	sw := spin.Wait{}
	for q.readerGate.hasWaiters() || q.writerGate.hasWaiters() {
		sw.Once()
	}
}

// Capacity returns the queue's configured (rounded-up) capacity.
func (q *MPMC) Capacity() int {
	return int(q.capacity)
}

// Size returns an approximate, best-effort count of elements currently
// in the queue. Accurate counts in a sharded lock-free ring require
// cross-shard synchronization this package deliberately avoids on the
// hot path; callers needing exact counts must track them externally.
func (q *MPMC) Size() int {
	_, size := unpackHeadSize(q.headSize.LoadAcquire())
	n := int(size)
	if n > int(q.capacity) {
		return int(q.capacity)
	}
	if n < 0 {
		return 0
	}
	return n
}
