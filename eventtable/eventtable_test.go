// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package eventtable

import (
	"math"
	"testing"
)

const epochBase = 631152000 // EpicsEpochOffset as a literal, for readable test timestamps

// TestDemuxTwoQueuesByEventCode checks that a log fans pushed triples out
// to the queues subscribed to their event code, scaling ticks to
// nanoseconds, and that each ReadLast call bumps the queue's read count.
func TestDemuxTwoQueuesByEventCode(t *testing.T) {
	reg := NewRegistry()
	log := reg.GetOrCreate("evr0")
	if err := log.SetTickScale(2.0); err != nil {
		t.Fatalf("SetTickScale: %v", err)
	}

	q1 := reg.GetOrCreateQueue("evr0", "q1")
	q2 := reg.GetOrCreateQueue("evr0", "q2")
	log.InitOutBuf(q1, 8)
	log.InitOutBuf(q2, 8)
	log.SetEvent(q1, 100)
	log.SetEvent(q2, 25)

	log.PushLog([]uint32{
		25, epochBase + 12, 1,
		100, epochBase + 12, 2,
		100, epochBase + 12, 3,
		25, epochBase + 12, 4,
	})

	last1, count1 := log.ReadLast(q1)
	if last1.Sec != 12 || last1.Nsec != 6 {
		t.Fatalf("last1=%+v, want {12 6}", last1)
	}
	if count1 != 1 {
		t.Fatalf("count1=%d, want 1 (first ReadLast call)", count1)
	}
	last2, count2 := log.ReadLast(q2)
	if last2.Sec != 12 || last2.Nsec != 8 {
		t.Fatalf("last2=%+v, want {12 8}", last2)
	}
	if count2 != 1 {
		t.Fatalf("count2=%d, want 1 (first ReadLast call)", count2)
	}

	_, count1Again := log.ReadLast(q1)
	if count1Again != 2 {
		t.Fatalf("count1 after second ReadLast=%d, want 2", count1Again)
	}

	buf1 := make([]float64, 8)
	t0, n := log.ReadBuffer(q1, buf1, false)
	if n != 2 {
		t.Fatalf("got n=%d, want 2", n)
	}
	if t0.Sec != 12 || t0.Nsec != 4 {
		t.Fatalf("t0=%+v, want {12 4}", t0)
	}
	if buf1[0] != 0.0 {
		t.Fatalf("buf1[0]=%v, want 0.0", buf1[0])
	}
	if buf1[1] != 2e-9 {
		t.Fatalf("buf1[1]=%v, want 2e-9", buf1[1])
	}
}

// TestPushLogSkipsUnsubscribedAndZeroCodedTriples checks that pushing
// triples whose event codes aren't subscribed to, and triples whose
// code is zero, leaves every queue's last timestamp and read count
// untouched.
func TestPushLogSkipsUnsubscribedAndZeroCodedTriples(t *testing.T) {
	reg := NewRegistry()
	log := reg.GetOrCreate("evr0")
	q1 := reg.GetOrCreateQueue("evr0", "q1")
	q2 := reg.GetOrCreateQueue("evr0", "q2")
	log.InitOutBuf(q1, 8)
	log.InitOutBuf(q2, 8)
	log.SetEvent(q1, 100)
	log.SetEvent(q2, 25)

	before1, countBefore1 := log.ReadLast(q1)
	before2, countBefore2 := log.ReadLast(q2)

	// Event codes 5 and 10 aren't subscribed to, and the all-zero
	// triples (evtst&0xff==0) must be skipped entirely.
	log.PushLog([]uint32{5, 10, 1, 0, 0, 0, 10, 11, 2, 0, 0, 0})

	after1, countAfter1 := log.ReadLast(q1)
	after2, countAfter2 := log.ReadLast(q2)
	if after1 != before1 {
		t.Fatalf("q1.last changed: before=%+v after=%+v", before1, after1)
	}
	if after2 != before2 {
		t.Fatalf("q2.last changed: before=%+v after=%+v", before2, after2)
	}
	if countAfter1 != countBefore1+1 {
		t.Fatalf("q1 count=%d, want %d (only this ReadLast call, not the push)", countAfter1, countBefore1+1)
	}
	if countAfter2 != countBefore2+1 {
		t.Fatalf("q2 count=%d, want %d (only this ReadLast call, not the push)", countAfter2, countBefore2+1)
	}
}

func TestCardinalityPreservedAcrossOps(t *testing.T) {
	reg := NewRegistry()
	log := reg.GetOrCreate("evr0")
	q := reg.GetOrCreateQueue("evr0", "q")
	log.InitOutBuf(q, 4)
	log.SetEvent(q, 7)

	total := func() int { return q.que.Len() + q.unused.Len() }
	if got := total(); got != 4 {
		t.Fatalf("got total=%d, want 4", got)
	}

	log.PushLog([]uint32{
		7, epochBase, 1,
		7, epochBase, 2,
		7, epochBase, 3,
	})
	if got := total(); got != 4 {
		t.Fatalf("after push: got total=%d, want 4", got)
	}

	buf := make([]float64, 1)
	log.ReadBuffer(q, buf, true)
	if got := total(); got != 4 {
		t.Fatalf("after partial autoclear read: got total=%d, want 4", got)
	}

	log.Clear(q, 1)
	if got := total(); got != 4 {
		t.Fatalf("after clear: got total=%d, want 4", got)
	}
	if q.que.Len() != 0 {
		t.Fatalf("que.Len()=%d after clear, want 0", q.que.Len())
	}
}

func TestOverflowOnExhaustedPool(t *testing.T) {
	reg := NewRegistry()
	log := reg.GetOrCreate("evr0")
	q := reg.GetOrCreateQueue("evr0", "q")
	log.InitOutBuf(q, 1)
	log.SetEvent(q, 7)

	before := log.Overflows()
	log.PushLog([]uint32{
		7, epochBase, 1,
		7, epochBase, 2,
	})
	if got := log.Overflows(); got != before+1 {
		t.Fatalf("got overflows=%d, want %d", got, before+1)
	}
	// Last is still updated even when the entry is dropped.
	last, _ := log.ReadLast(q)
	if last.Nsec != 2 {
		t.Fatalf("last.Nsec=%d, want 2 (updated even on drop)", last.Nsec)
	}
}

func TestOverflowNeverDecreases(t *testing.T) {
	reg := NewRegistry()
	log := reg.GetOrCreate("evr0")
	q := reg.GetOrCreateQueue("evr0", "q")
	log.InitOutBuf(q, 1)
	log.SetEvent(q, 1)

	var last uint32
	for i := 0; i < 5; i++ {
		log.PushLog([]uint32{1, epochBase, uint32(i), 1, epochBase, uint32(i)})
		got := log.Overflows()
		if got < last {
			t.Fatalf("overflow decreased: %d -> %d", last, got)
		}
		last = got
	}
}

func TestUpstreamOverflowBitStillProcesses(t *testing.T) {
	reg := NewRegistry()
	log := reg.GetOrCreate("evr0")
	q := reg.GetOrCreateQueue("evr0", "q")
	log.InitOutBuf(q, 4)
	log.SetEvent(q, 9)

	before := log.Overflows()
	evtst := uint32(9) | 0x40000000
	log.PushLog([]uint32{evtst, epochBase, 5})

	if got := log.Overflows(); got != before+1 {
		t.Fatalf("got overflows=%d, want %d", got, before+1)
	}
	last, _ := log.ReadLast(q)
	if last.Nsec != 5 {
		t.Fatalf("event with overflow bit set should still be delivered: last=%+v", last)
	}
}

func TestSetEventSingleListenerEntry(t *testing.T) {
	reg := NewRegistry()
	log := reg.GetOrCreate("evr0")
	q := reg.GetOrCreateQueue("evr0", "q")
	log.InitOutBuf(q, 4)

	log.SetEvent(q, 5)
	if len(log.listeners[5]) != 1 {
		t.Fatalf("got %d listeners for event 5, want 1", len(log.listeners[5]))
	}
	log.SetEvent(q, 9)
	if _, ok := log.listeners[5]; ok {
		t.Fatalf("event 5 still has a listener after moving to event 9")
	}
	if len(log.listeners[9]) != 1 {
		t.Fatalf("got %d listeners for event 9, want 1", len(log.listeners[9]))
	}
	if q.event != 9 {
		t.Fatalf("q.event=%d, want 9", q.event)
	}
}

func TestSetTickScaleRejectsNonPositive(t *testing.T) {
	reg := NewRegistry()
	log := reg.GetOrCreate("evr0")
	for _, v := range []float64{0, -1, math.Inf(1)} {
		if err := log.SetTickScale(v); err == nil {
			t.Fatalf("SetTickScale(%v): expected error", v)
		}
	}
}
