// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package iqueue

import (
	"errors"

	"code.hybscloud.com/iox"
)

// ErrWouldBlock indicates a non-blocking operation cannot proceed
// immediately.
//
// For TrySend: the queue is full (backpressure)
// For TryRecv: the queue is empty (no data available)
//
// ErrWouldBlock is a control flow signal, not a failure. The blocking
// Send/Recv forms treat it internally as "go park" and never return it
// to the caller.
//
// This is an alias for [iox.ErrWouldBlock] for ecosystem consistency.
var ErrWouldBlock = iox.ErrWouldBlock

// ErrClosed indicates the queue has been closed.
//
// ErrClosed is terminal and monotonic: once any operation on a queue
// returns ErrClosed, every subsequent operation on that queue also
// returns ErrClosed.
var ErrClosed = errors.New("iqueue: queue closed")

// ErrInvalidArgument indicates a non-empty, non-null handle was
// required but the caller passed the reserved empty handle (0), or a
// construction parameter (capacity) was invalid.
var ErrInvalidArgument = errors.New("iqueue: invalid argument")

// IsWouldBlock reports whether err indicates the operation would block.
// Delegates to [iox.IsWouldBlock] for wrapped error support.
func IsWouldBlock(err error) bool {
	return iox.IsWouldBlock(err)
}

// IsClosed reports whether err is [ErrClosed].
func IsClosed(err error) bool {
	return errors.Is(err, ErrClosed)
}

// IsInvalidArgument reports whether err is [ErrInvalidArgument].
func IsInvalidArgument(err error) bool {
	return errors.Is(err, ErrInvalidArgument)
}
