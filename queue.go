// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package iqueue

// Handle is an opaque, pointer-sized, non-null value chosen by the
// caller. The library never dereferences it — it is borrowed through
// the queue, never allocated or freed by it.
//
// The reserved value 0 means "cell is empty"; passing it to Send or
// TrySend fails with ErrInvalidArgument.
type Handle uintptr

// sendLoop implements the producer half of spec §4.5: attempt try
// once unparked; on ErrWouldBlock, park on writer and retry try after
// every wakeup (spurious or not) until a definitive outcome; wake one
// reader only on success and only if a reader is actually parked.
func sendLoop(writer, reader *waitGate, try func() error) error {
	err := try()
	if !IsWouldBlock(err) {
		wakePeer(reader, err)
		return err
	}

	writer.parkWhile(func() bool {
		err = try()
		return IsWouldBlock(err)
	})
	wakePeer(reader, err)
	return err
}

// recvLoop is the exact mirror of sendLoop for the consumer side.
func recvLoop(reader, writer *waitGate, try func() (Handle, error)) (Handle, error) {
	h, err := try()
	if !IsWouldBlock(err) {
		wakePeer(writer, err)
		return h, err
	}

	reader.parkWhile(func() bool {
		h, err = try()
		return IsWouldBlock(err)
	})
	wakePeer(writer, err)
	return h, err
}

// wakePeer signals one waiter on the peer gate, but only following a
// successful operation and only when a waiter is actually parked there
// — spec §4.5's wake policy, chosen to avoid thundering-herd wakeups.
func wakePeer(peer *waitGate, err error) {
	if err == nil && peer.hasWaiters() {
		peer.signalOne()
	}
}
