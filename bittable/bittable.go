// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package bittable maintains the canonical event-code to action-bit
// mapping programmed into a hardware event receiver (EVR). Individual
// action sources bind to event codes via a Binding; Table.Render packs
// the full sparse mapping into a fixed-shape array of 32-bit words ready
// for hardware upload.
package bittable // import "github.com/go-lpc/evrtime/bittable"

import (
	"sync"

	"github.com/go-lpc/evrtime/internal/alarm"
	"github.com/go-lpc/evrtime/internal/notify"
)

// NEvents is the fixed number of event codes an EVR carries.
const NEvents = 256

// Table is the canonical sparse event->action bit mask for one named
// hardware table. The zero value is not usable; build one via
// Registry.GetOrCreate.
type Table struct {
	name string

	mu            sync.Mutex
	bitsPerEvent  uint32
	wordsPerEvent uint32
	table         map[uint8]map[uint32]bool
	changing      bool

	notify *notify.Notifier
}

func newTable(name string) *Table {
	return &Table{
		name:   name,
		table:  make(map[uint8]map[uint32]bool),
		notify: notify.New(nil),
	}
}

// Name returns the table's immutable name.
func (t *Table) Name() string { return t.name }

// Notifier exposes the table's change notification, for a consumer (the
// render side) to subscribe to I/O-intr style scanning.
func (t *Table) Notifier() *notify.Notifier { return t.notify }

// Shape returns the buffer size Render needs: NEvents and the current
// per-event word width.
func (t *Table) Shape() (nEvents, wordsPerEvent int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return NEvents, int(t.wordsPerEvent)
}

// wordsFor rounds nbit up to a multiple of 32 and returns the word count,
// mirroring bitTableSetWords' round-up-to-32 bit twiddling.
func wordsFor(nbit uint32) uint32 {
	nbit--
	nbit |= 0x1f
	nbit++
	return nbit / 32
}

// SetWords sets the per-event row width in bits. n must be positive.
func (t *Table) SetWords(n int32) error {
	if n <= 0 {
		return alarm.New(alarm.Write, alarm.Invalid, alarm.CondRange)
	}

	nbit := uint32(n)
	nwords := wordsFor(nbit)

	var change bool
	t.mu.Lock()
	t.wordsPerEvent = nwords
	t.bitsPerEvent = nbit
	change = !t.changing
	t.changing = true
	t.mu.Unlock()

	if change {
		t.notify.Request()
	}
	return nil
}

// Update changes this binding's event association: action is bound to
// newEvent (0 meaning unbound). newEvent is coerced into [0,255].
func (t *Table) Update(b *Binding, newEvent int) error {
	if b.action < 0 {
		return alarm.New(alarm.Write, alarm.Invalid, alarm.CondNoAction)
	}
	if newEvent < 0 || newEvent > 255 {
		newEvent = 0
	}
	ev := uint8(newEvent)
	action := uint32(b.action)

	var change bool
	var dup bool
	t.mu.Lock()
	func() {
		if ev == b.prevEvent {
			return // no-op
		}

		if b.prevEvent != 0 {
			row := t.table[b.prevEvent]
			if row != nil {
				if _, ok := row[action]; !ok {
					panic("bittable: binding's action missing from its own row")
				}
				delete(row, action)
				if len(row) == 0 {
					delete(t.table, b.prevEvent)
				}
			}
			b.prevEvent = 0
		}

		if ev != 0 {
			row := t.table[ev]
			if row == nil {
				row = make(map[uint32]bool)
				t.table[ev] = row
			}
			if row[action] {
				dup = true
				return
			}
			row[action] = true
		}

		b.prevEvent = ev
		change = !t.changing
		t.changing = true
	}()
	t.mu.Unlock()

	if dup {
		return alarm.New(alarm.Write, alarm.Invalid, alarm.CondDuplicate)
	}
	if change {
		t.notify.Request()
	}
	return nil
}

// Render packs the current table into out[:cap], where cap = NEvents *
// wordsPerEvent. It returns the number of valid elements written. An
// action index beyond the table's current width has its bit skipped;
// rendering continues, and the MAJOR OutOfRange alarm of the first such
// action found is returned alongside the full element count.
func (t *Table) Render(out []uint32) (nord int, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.changing = false

	wordsPerEvent := t.wordsPerEvent
	bitsPerEvent := t.bitsPerEvent
	cap := int(NEvents * wordsPerEvent)

	if len(out) < cap {
		return 0, alarm.New(alarm.Read, alarm.Invalid, alarm.CondBadNELM)
	}

	for i := 0; i < cap; i++ {
		out[i] = 0
	}

	var oor error
	for event, row := range t.table {
		for action, set := range row {
			if !set {
				continue
			}
			if action >= bitsPerEvent {
				if oor == nil {
					oor = alarm.OutOfRange(action)
				}
				continue
			}

			idx := action / 32
			bit := action % 32
			mask := uint32(1) << bit

			idx = wordsPerEvent - 1 - idx // high word first
			idx += uint32(event) * wordsPerEvent

			out[idx] |= mask
		}
	}

	if oor != nil {
		return cap, oor
	}
	return cap, nil
}
