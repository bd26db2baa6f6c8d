// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package notify

import (
	"sync/atomic"
	"testing"
)

func TestRequestCoalesces(t *testing.T) {
	var calls int32
	var completed int32

	n := New(func(p int) { atomic.AddInt32(&completed, 1) })
	n.Subscribe(0, func() { atomic.AddInt32(&calls, 1) })

	mask1 := n.Request()
	if mask1 != 1 {
		t.Fatalf("got mask=%#x, want 0x1", mask1)
	}

	// A second Request while the first is still in flight must not
	// re-dispatch priority 0: the bit is already set.
	mask2 := n.Request()
	if mask2 != 0 {
		t.Fatalf("got mask=%#x on coalesced Request, want 0", mask2)
	}

	n.Wait()

	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("got %d consumer invocations, want 1", got)
	}
	if got := atomic.LoadInt32(&completed); got != 1 {
		t.Fatalf("got %d completions, want 1", got)
	}

	// Now that the prior dispatch has completed, a new Request must
	// dispatch again.
	mask3 := n.Request()
	if mask3 != 1 {
		t.Fatalf("got mask=%#x after drain, want 0x1", mask3)
	}
	n.Wait()
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Fatalf("got %d consumer invocations, want 2", got)
	}
}

func TestRequestNoSubscribersIsNoop(t *testing.T) {
	n := New(nil)
	if mask := n.Request(); mask != 0 {
		t.Fatalf("got mask=%#x with no subscribers, want 0", mask)
	}
}

func TestMultiplePriorities(t *testing.T) {
	var lo, hi int32
	n := New(nil)
	n.Subscribe(0, func() { atomic.AddInt32(&lo, 1) })
	n.Subscribe(2, func() { atomic.AddInt32(&hi, 1) })

	mask := n.Request()
	if want := uint32(1<<0 | 1<<2); mask != want {
		t.Fatalf("got mask=%#x, want %#x", mask, want)
	}
	n.Wait()
	if lo != 1 || hi != 1 {
		t.Fatalf("got lo=%d hi=%d, want 1,1", lo, hi)
	}
}
