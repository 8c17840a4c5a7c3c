// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package iqueue

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsWouldBlockWrapped(t *testing.T) {
	wrapped := fmt.Errorf("send: %w", ErrWouldBlock)
	if !IsWouldBlock(wrapped) {
		t.Fatal("IsWouldBlock did not see through fmt.Errorf wrapping")
	}
}

func TestIsClosedWrapped(t *testing.T) {
	wrapped := fmt.Errorf("recv: %w", ErrClosed)
	if !IsClosed(wrapped) {
		t.Fatal("IsClosed did not see through fmt.Errorf wrapping")
	}
}

func TestErrorPredicatesAreDisjoint(t *testing.T) {
	if IsClosed(ErrWouldBlock) || IsInvalidArgument(ErrWouldBlock) {
		t.Fatal("ErrWouldBlock misclassified")
	}
	if IsWouldBlock(ErrClosed) || IsInvalidArgument(ErrClosed) {
		t.Fatal("ErrClosed misclassified")
	}
	if IsWouldBlock(ErrInvalidArgument) || IsClosed(ErrInvalidArgument) {
		t.Fatal("ErrInvalidArgument misclassified")
	}
}

func TestErrorPredicatesOnNil(t *testing.T) {
	if IsWouldBlock(nil) || IsClosed(nil) || IsInvalidArgument(nil) {
		t.Fatal("nil error misclassified as one of the sentinels")
	}
}

func TestErrorPredicatesOnUnrelatedError(t *testing.T) {
	other := errors.New("unrelated")
	if IsWouldBlock(other) || IsClosed(other) || IsInvalidArgument(other) {
		t.Fatal("unrelated error misclassified as one of the sentinels")
	}
}
