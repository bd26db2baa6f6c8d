// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bittable

import (
	"fmt"
	"io"
	"sort"
)

// Report writes the diagnostic table report to w: for every Table, its
// name and width; at verbosity > 0, also its per-event active action
// lists, following the same shape as bitTableReport.
func (r *Registry) Report(w io.Writer, verbosity int) error {
	var reportErr error
	r.Each(func(t *Table) {
		if reportErr != nil {
			return
		}
		reportErr = t.report(w, verbosity)
	})
	return reportErr
}

func (t *Table) report(w io.Writer, verbosity int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	_, err := fmt.Fprintf(w, "  %q : width: %d bits / %d words\n", t.name, t.bitsPerEvent, t.wordsPerEvent)
	if err != nil || verbosity <= 0 {
		return err
	}

	_, err = fmt.Fprintf(w, "    EVT# = action bit indices\n")
	if err != nil {
		return err
	}

	events := make([]int, 0, len(t.table))
	for e := range t.table {
		events = append(events, int(e))
	}
	sort.Ints(events)

	for _, e := range events {
		row := t.table[uint8(e)]
		actions := make([]uint32, 0, len(row))
		for a, set := range row {
			if set {
				actions = append(actions, a)
			}
		}
		sort.Slice(actions, func(i, j int) bool { return actions[i] < actions[j] })

		if _, err := fmt.Fprintf(w, "    % 3d -", e); err != nil {
			return err
		}
		for _, a := range actions {
			if _, err := fmt.Fprintf(w, " %d", a); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}

	return nil
}
