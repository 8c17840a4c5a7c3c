// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package typed re-exposes the iqueue send/recv surface parameterized
// over a payload type, so that callers need not cast to and from
// [iqueue.Handle] themselves.
//
// This is explicitly not part of iqueue's CORE: the underlying queue
// remains handle-typed, and Typed only boxes *T through a handle by
// converting its pointer to a uintptr. Callers are responsible for
// keeping the pointed-to value alive (e.g. by holding a reference
// elsewhere) for as long as it may still be in the queue — Typed
// performs no allocation bookkeeping of its own.
package typed

import (
	"unsafe"

	"github.com/je-so/iqueue"
)

// ring is the subset of iqueue.MPMC / iqueue.SPSC that Typed needs.
// Both concrete types satisfy it, which is how Typed stays a single
// generic wrapper instead of one per queue flavor.
type ring interface {
	TrySend(iqueue.Handle) error
	TryRecv() (iqueue.Handle, error)
	Send(iqueue.Handle) error
	Recv() (iqueue.Handle, error)
	Close()
	Delete()
	Capacity() int
	Size() int
}

// Typed wraps an MPMC or SPSC queue and marshals *T through a handle.
type Typed[T any] struct {
	q ring
}

// NewTyped wraps an existing MPMC or SPSC queue for typed access.
func NewTyped[T any](q ring) *Typed[T] {
	return &Typed[T]{q: q}
}

func box[T any](v *T) iqueue.Handle {
	return iqueue.Handle(uintptr(unsafe.Pointer(v)))
}

func unbox[T any](h iqueue.Handle) *T {
	return (*T)(unsafe.Pointer(uintptr(h)))
}

// TrySend attempts to enqueue v without blocking.
func (t *Typed[T]) TrySend(v *T) error {
	return t.q.TrySend(box(v))
}

// TryRecv attempts to dequeue a *T without blocking.
func (t *Typed[T]) TryRecv() (*T, error) {
	h, err := t.q.TryRecv()
	if err != nil {
		return nil, err
	}
	return unbox[T](h), nil
}

// Send enqueues v, blocking while the queue is full.
func (t *Typed[T]) Send(v *T) error {
	return t.q.Send(box(v))
}

// Recv dequeues a *T, blocking while the queue is empty.
func (t *Typed[T]) Recv() (*T, error) {
	h, err := t.q.Recv()
	if err != nil {
		return nil, err
	}
	return unbox[T](h), nil
}

// Close transitions the underlying queue to its terminal state.
func (t *Typed[T]) Close() { t.q.Close() }

// Delete closes and drains the underlying queue.
func (t *Typed[T]) Delete() { t.q.Delete() }

// Capacity returns the underlying queue's configured capacity.
func (t *Typed[T]) Capacity() int { return t.q.Capacity() }

// Size returns the underlying queue's approximate current count.
func (t *Typed[T]) Size() int { return t.q.Size() }
