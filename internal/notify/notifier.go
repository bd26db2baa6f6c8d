// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package notify implements the coalescing, multi-priority change
// notification primitive bittable.Table and eventtable.Queue both embed.
// It is the Go stand-in for EPICS' IOSCANPVT: Request is the equivalent
// of scanIoRequest, Complete is the equivalent of the completion callback
// scanIoSetComplete installs per scan-list priority.
package notify // import "github.com/go-lpc/evrtime/internal/notify"

import (
	"sync"

	"golang.org/x/sync/errgroup"
)

// NumPriorities mirrors the three EPICS scan priorities (LOW, MEDIUM,
// HIGH) a record can be scanned at.
const NumPriorities = 3

// Consumer is invoked once per Request at the priority it was subscribed
// at. It must not block on anything but its own work.
type Consumer func()

// Notifier dispatches Consumers registered at up to NumPriorities
// distinct priorities, coalescing concurrent Requests: a priority is
// dispatched at most once per Request call, and Request itself never
// blocks on the dispatch finishing.
type Notifier struct {
	mu         sync.Mutex
	subs       [NumPriorities][]Consumer
	inFlight   uint32
	onComplete func(priority int)
	wg         sync.WaitGroup
}

// New builds a Notifier. onComplete, if non-nil, is invoked every time a
// priority's dispatch finishes draining its consumers, after the
// priority's in-flight bit has been cleared — the owner (e.g.
// eventtable.Queue) uses this to learn when it may coalesce again.
func New(onComplete func(priority int)) *Notifier {
	return &Notifier{onComplete: onComplete}
}

// Subscribe registers fn to run once per Request at priority p.
func (n *Notifier) Subscribe(p int, fn Consumer) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.subs[p] = append(n.subs[p], fn)
}

// Request marks every priority with at least one subscriber, and not
// already in flight, as dispatched, and asynchronously runs that
// priority's consumers. It returns the bitmask of priorities newly
// dispatched by this call (bit i set means priority i transitioned from
// quiescent to in-flight here) — callers use this to set whatever
// coalescing state they own (bittable.Table.changing, eventtable.Queue.changing).
func (n *Notifier) Request() uint32 {
	n.mu.Lock()
	var dispatch []int
	var mask uint32
	for p := 0; p < NumPriorities; p++ {
		bit := uint32(1) << p
		if len(n.subs[p]) == 0 {
			continue
		}
		if n.inFlight&bit != 0 {
			continue
		}
		n.inFlight |= bit
		mask |= bit
		dispatch = append(dispatch, p)
	}
	subsCopy := make([][]Consumer, len(dispatch))
	for i, p := range dispatch {
		subsCopy[i] = append([]Consumer(nil), n.subs[p]...)
	}
	n.mu.Unlock()

	for i, p := range dispatch {
		n.wg.Add(1)
		go n.dispatch(p, subsCopy[i])
	}

	return mask
}

func (n *Notifier) dispatch(p int, consumers []Consumer) {
	defer n.wg.Done()

	var grp errgroup.Group
	for _, c := range consumers {
		c := c
		grp.Go(func() error {
			c()
			return nil
		})
	}
	_ = grp.Wait()

	n.Complete(p)
}

// Complete clears priority p's in-flight bit and invokes the completion
// hook, mirroring scanIoRequestProcessCallback running after all records
// on a scan list have processed.
func (n *Notifier) Complete(p int) {
	n.mu.Lock()
	n.inFlight &^= uint32(1) << p
	n.mu.Unlock()

	if n.onComplete != nil {
		n.onComplete(p)
	}
}

// Wait blocks until every dispatch started by a prior Request has
// finished calling Complete. It exists for deterministic tests; normal
// callers never wait on notification delivery.
func (n *Notifier) Wait() {
	n.wg.Wait()
}
