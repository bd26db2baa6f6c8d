// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package eventtable

import (
	"golang.org/x/xerrors"

	"github.com/go-lpc/evrtime/internal/alarm"
	"github.com/go-lpc/evrtime/internal/devlink"
)

// Binding attaches one record role to a Queue. autoclear governs whether
// ReadBuffer splices its walked prefix back onto the unused pool.
type Binding struct {
	queue     *Queue
	autoclear bool
}

// Queue returns the bound Queue.
func (b *Binding) Queue() *Queue { return b.queue }

// Autoclear reports whether reads drain que automatically.
func (b *Binding) Autoclear() bool { return b.autoclear }

// Bind parses a whitespace-delimited key=value device-link string
// ("log=<name> queue=<name> autoclear=yes|no") and returns a Binding to
// the named log/queue pair, creating either as needed. queue defaults to
// the empty string (distinct records may share a queue by sharing its
// name); autoclear defaults to true.
//
// Fixes the autoclear parsing bug in eventTable.cpp:165-169, where both
// "yes" and "no" set autoclear to true: here "no" sets Autoclear to
// false.
func Bind(reg *Registry, link string) (*Binding, error) {
	var logName, queueName string
	autoclear := true

	for _, tok := range devlink.Parse(link) {
		switch tok.Key {
		case "log":
			logName = tok.Value
		case "queue":
			queueName = tok.Value
		case "autoclear":
			switch tok.Value {
			case "yes", "Yes", "YES":
				autoclear = true
			case "no", "No", "NO":
				autoclear = false
			default:
				return nil, alarm.New(alarm.Write, alarm.Invalid, alarm.CondAutoclear)
			}
		default:
			return nil, devlink.Unknown(tok.Key)
		}
	}

	if logName == "" {
		return nil, xerrors.New("missing log=")
	}

	q := reg.GetOrCreateQueue(logName, queueName)
	return &Binding{queue: q, autoclear: autoclear}, nil
}
