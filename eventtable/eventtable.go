// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package eventtable demultiplexes a shared log of (event, seconds,
// ticks) triples into per-event-code queues, applying a configurable
// tick-to-nanosecond scale and exposing per-queue counters, last-event
// timestamps, and fixed-capacity ring buffers of relative timestamps.
package eventtable // import "github.com/go-lpc/evrtime/eventtable"

import (
	"math"
	"sync"

	"github.com/go-lpc/evrtime/internal/alarm"
	"github.com/go-lpc/evrtime/internal/notify"
	"github.com/go-lpc/evrtime/internal/ringlist"
)

// Log is a named, shared event stream: PushLog fans each triple out to
// every Queue currently subscribed to its event code.
type Log struct {
	name string

	mu          sync.Mutex
	nOverflows  uint32
	nsecPerTick float64

	queues    map[string]*Queue
	listeners map[uint8][]*Queue // insertion-ordered multimap
}

func newLog(name string) *Log {
	return &Log{
		name:        name,
		nsecPerTick: 1.0,
		queues:      make(map[string]*Queue),
		listeners:   make(map[uint8][]*Queue),
	}
}

// Name returns the log's immutable name.
func (l *Log) Name() string { return l.name }

// Overflows returns the monotonic overflow counter.
func (l *Log) Overflows() uint32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.nOverflows
}

// getOrCreateQueue must be called with l.mu held.
func (l *Log) getOrCreateQueue(name string) *Queue {
	if q, ok := l.queues[name]; ok {
		return q
	}
	q := newQueue(l)
	l.queues[name] = q
	return q
}

// Queue demultiplexes one event code's worth of timestamps from its Log.
type Queue struct {
	log *Log // back-reference, non-owning

	unused, que ringlist.List
	last        Timestamp
	count       uint32 // incremented once per ReadLast call
	nLimit      uint32
	event       uint8
	changing    uint32 // bitmask of notify priorities in progress

	notify *notify.Notifier
}

func newQueue(log *Log) *Queue {
	q := &Queue{log: log}
	q.notify = notify.New(q.onChangeComplete)
	return q
}

// Last returns the queue's last observed timestamp.
func (q *Queue) Last() Timestamp {
	q.log.mu.Lock()
	defer q.log.mu.Unlock()
	return q.last
}

// Notifier exposes the queue's change notification.
func (q *Queue) Notifier() *notify.Notifier { return q.notify }

// onChangeComplete clears priority p's in-flight bit, mirroring
// EventQueue::onChangeComplete in eventTable.cpp.
func (q *Queue) onChangeComplete(p int) {
	q.log.mu.Lock()
	defer q.log.mu.Unlock()
	q.changing &^= uint32(1) << p
}

// SetTickScale sets the tick-to-nanosecond multiplier. nsecPerTick must
// be finite and strictly positive. It does not retroactively rewrite
// timestamps already queued.
func (l *Log) SetTickScale(nsecPerTick float64) error {
	if math.IsNaN(nsecPerTick) || math.IsInf(nsecPerTick, 0) || nsecPerTick <= 0 {
		return alarm.New(alarm.Write, alarm.Invalid, alarm.CondOutOfRange)
	}
	l.mu.Lock()
	l.nsecPerTick = nsecPerTick
	l.mu.Unlock()
	return nil
}

// SetEvent changes which event code q is subscribed to. code is coerced
// into [0,255]; 0 means unsubscribed.
func (l *Log) SetEvent(q *Queue, code int) {
	if code < 0 || code > 255 {
		code = 0
	}
	ev := uint8(code)

	l.mu.Lock()
	defer l.mu.Unlock()

	if q.event != 0 {
		l.listeners[q.event] = removeQueue(l.listeners[q.event], q)
		if len(l.listeners[q.event]) == 0 {
			delete(l.listeners, q.event)
		}
		q.event = 0
	}
	if ev != 0 {
		l.listeners[ev] = append(l.listeners[ev], q)
		q.event = ev
	}
}

func removeQueue(qs []*Queue, q *Queue) []*Queue {
	for i, c := range qs {
		if c == q {
			return append(qs[:i:i], qs[i+1:]...)
		}
	}
	return qs
}

// PushLog consumes words as a sequence of (evtst, secs, ticks) triples.
// A triple whose low 8 bits of evtst are 0 is ignored. Bit 30 of evtst
// signals an upstream overflow that occurred before this event; it is
// still processed, but nOverflows is incremented.
func (l *Log) PushLog(words []uint32) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for n := 0; n+2 < len(words); n += 3 {
		evtst := words[n+0]
		secs := words[n+1]
		ticks := words[n+2]

		evt := uint8(evtst & 0xff)
		if evt == 0 {
			continue
		}

		if evtst&0x40000000 != 0 {
			l.nOverflows++
		}

		ts := NewTimestamp(secs, ticks, l.nsecPerTick)

		for _, q := range l.listeners[evt] {
			q.last = ts

			if q.unused.Len() == 0 {
				l.nOverflows++
			} else {
				n := q.unused.PopFront()
				n.Value = ts
				q.que.PushBack(n)
			}

			if q.changing == 0 {
				q.changing = q.notify.Request()
			}
		}
	}
}

// Clear moves every queued entry back onto the unused pool. A zero flag,
// or an already-empty queue, is a no-op.
func (l *Log) Clear(q *Queue, flag int) {
	l.mu.Lock()
	if flag == 0 || q.que.Len() == 0 {
		l.mu.Unlock()
		return
	}
	q.unused.MoveAllToBack(&q.que)
	l.mu.Unlock()

	q.notify.Request()
}

// ReadLast increments q's read counter and copies out its last observed
// timestamp, mirroring eventLogOutLast: every scalar read bumps the
// record's count field so downstream observers can tell a fresh read
// from a stale one even when the timestamp itself hasn't changed.
func (l *Log) ReadLast(q *Queue) (ts Timestamp, count uint32) {
	l.mu.Lock()
	defer l.mu.Unlock()
	q.count++
	return q.last, q.count
}

// ReadBuffer walks q.que from the front, writing at most len(out)
// tail-relative deltas (in seconds) into out, and returns (t0, nord).
// If autoclear is true, the walked prefix is spliced back onto unused.
func (l *Log) ReadBuffer(q *Queue, out []float64, autoclear bool) (t0 Timestamp, nord int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	front, ok := q.que.Front()
	if !ok {
		return Timestamp{}, 0
	}
	t0 = front.(Timestamp)

	n := 0
	q.que.Walk(func(v any) bool {
		if n >= len(out) {
			return false
		}
		out[n] = v.(Timestamp).Sub(t0)
		n++
		return true
	})

	if autoclear {
		q.unused.MovePrefixToBack(&q.que, n)
	}

	return t0, n
}

// InitOutBuf grows q's unused pool to at least k entries. It must only
// be called while q.que is empty (first-bind-only: a record's buffer
// capacity is fixed at init and never renegotiated on a later rebind)
// and never shrinks an already-larger pool.
func (l *Log) InitOutBuf(q *Queue, k int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if q.que.Len() != 0 {
		panic("eventtable: InitOutBuf called with non-empty que")
	}
	if grow := k - q.unused.Len(); grow > 0 {
		q.unused.Grow(grow, func() any { return Timestamp{} })
	}
}
