// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package iqueue

import (
	"fmt"
	"testing"
	"time"
)

func TestSPSCCapacityRounding(t *testing.T) {
	cases := []struct{ in, want int }{
		{1, 1}, {3, 4}, {4, 4}, {5, 8}, {1000, 1024},
	}
	for _, c := range cases {
		q, err := NewSPSC(c.in)
		if err != nil {
			t.Fatalf("NewSPSC(%d): %v", c.in, err)
		}
		if got := q.Capacity(); got != c.want {
			t.Errorf("NewSPSC(%d).Capacity() = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestSPSCNewInvalidCapacity(t *testing.T) {
	if _, err := NewSPSC(0); !IsInvalidArgument(err) {
		t.Fatalf("NewSPSC(0) err = %v, want ErrInvalidArgument", err)
	}
}

func TestSPSCFIFOOrdering(t *testing.T) {
	q, err := NewSPSC(8)
	if err != nil {
		t.Fatal(err)
	}
	defer q.Delete()

	for i := 1; i <= 8; i++ {
		if err := q.TrySend(Handle(i)); err != nil {
			t.Fatalf("TrySend(%d): %v", i, err)
		}
	}
	for i := 1; i <= 8; i++ {
		h, err := q.TryRecv()
		if err != nil {
			t.Fatalf("TryRecv: %v", err)
		}
		if int(h) != i {
			t.Fatalf("TryRecv() = %d, want %d (FIFO order violated)", h, i)
		}
	}
}

func TestSPSCSizeThreeWay(t *testing.T) {
	q, err := NewSPSC(4)
	if err != nil {
		t.Fatal(err)
	}
	defer q.Delete()

	if got := q.Size(); got != 0 {
		t.Fatalf("Size() on empty queue = %d, want 0", got)
	}

	for i := 1; i <= 2; i++ {
		if err := q.TrySend(Handle(i)); err != nil {
			t.Fatal(err)
		}
	}
	if got := q.Size(); got != 2 {
		t.Fatalf("Size() = %d, want 2", got)
	}

	for i := 3; i <= 4; i++ {
		if err := q.TrySend(Handle(i)); err != nil {
			t.Fatal(err)
		}
	}
	if got := q.Size(); got != q.Capacity() {
		t.Fatalf("Size() on full queue = %d, want %d", got, q.Capacity())
	}

	if _, err := q.TryRecv(); err != nil {
		t.Fatal(err)
	}
	if got := q.Size(); got != 3 {
		t.Fatalf("Size() = %d, want 3", got)
	}
}

func TestSPSCTrySendWouldBlockWhenFull(t *testing.T) {
	q, err := NewSPSC(2)
	if err != nil {
		t.Fatal(err)
	}
	defer q.Delete()

	if err := q.TrySend(1); err != nil {
		t.Fatal(err)
	}
	if err := q.TrySend(2); err != nil {
		t.Fatal(err)
	}
	if err := q.TrySend(3); !IsWouldBlock(err) {
		t.Fatalf("TrySend on full queue err = %v, want ErrWouldBlock", err)
	}
}

func TestSPSCTryRecvWouldBlockWhenEmpty(t *testing.T) {
	q, err := NewSPSC(2)
	if err != nil {
		t.Fatal(err)
	}
	defer q.Delete()

	if _, err := q.TryRecv(); !IsWouldBlock(err) {
		t.Fatalf("TryRecv on empty queue err = %v, want ErrWouldBlock", err)
	}
}

func TestSPSCProducerConsumerGoroutines(t *testing.T) {
	if RaceEnabled {
		t.Skip("lock-free cell handoff is synchronized through atomics the race detector cannot observe")
	}

	q, err := NewSPSC(16)
	if err != nil {
		t.Fatal(err)
	}
	defer q.Delete()

	const n = 100_000
	done := make(chan error, 1)

	go func() {
		for i := 1; i <= n; i++ {
			if err := q.Send(Handle(i)); err != nil {
				done <- err
				return
			}
		}
	}()

	go func() {
		for i := 1; i <= n; i++ {
			h, err := q.Recv()
			if err != nil {
				done <- err
				return
			}
			if int(h) != i {
				done <- fmt.Errorf("recv got %d, want %d", h, i)
				return
			}
		}
		done <- nil
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Fatal(err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("producer/consumer pair never finished")
	}
}
