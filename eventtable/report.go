// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package eventtable

import (
	"fmt"
	"io"
	"sort"

	"github.com/go-lpc/evrtime/internal/stats"
)

// Report writes a diagnostic summary for every registered Log: name,
// overflow count, tick scale, and per-queue event/depth/rate lines. It
// reuses the same "name + width, verbosity controls detail" shape as
// bitTableReport for consistency across the two engines.
func (r *Registry) Report(w io.Writer, verbosity int) error {
	var reportErr error
	r.Each(func(l *Log) {
		if reportErr != nil {
			return
		}
		reportErr = l.report(w, verbosity)
	})
	return reportErr
}

func (l *Log) report(w io.Writer, verbosity int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	_, err := fmt.Fprintf(w, "  %q : overflows=%d nsec/tick=%g\n", l.name, l.nOverflows, l.nsecPerTick)
	if err != nil || verbosity <= 0 {
		return err
	}

	names := make([]string, 0, len(l.queues))
	for name := range l.queues {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		q := l.queues[name]
		_, err := fmt.Fprintf(w, "    %q : event=%d depth=%d/%d\n", name, q.event, q.que.Len(), q.que.Len()+q.unused.Len())
		if err != nil {
			return err
		}

		if g := queueGaps(q); g.N > 0 {
			if _, err := fmt.Fprintf(w, "      rate: mean=%.3es stddev=%.3es (n=%d)\n", g.Mean, g.StdDev, g.N); err != nil {
				return err
			}
		}
	}
	return nil
}

// queueGaps computes inter-arrival gap statistics over q.que's buffered
// timestamps. Must be called with q.log.mu held.
func queueGaps(q *Queue) stats.Gaps {
	if q.que.Len() < 2 {
		return stats.Gaps{N: q.que.Len()}
	}

	front, _ := q.que.Front()
	t0 := front.(Timestamp)

	secs := make([]float64, 0, q.que.Len())
	q.que.Walk(func(v any) bool {
		secs = append(secs, v.(Timestamp).Sub(t0))
		return true
	})

	return stats.Summarize(secs)
}
