// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package eventtable

import "sync"

// Registry is a process-lifetime, lookup-or-create table of named Logs,
// the Go equivalent of the package-level eventLogs map guarded by
// eventLogsLock in eventTable.cpp. Lock order is registry -> entry.
type Registry struct {
	mu   sync.Mutex
	logs map[string]*Log
}

// NewRegistry builds an empty Registry.
func NewRegistry() *Registry {
	return &Registry{logs: make(map[string]*Log)}
}

// GetOrCreate returns the Log named name, creating it if necessary.
func (r *Registry) GetOrCreate(name string) *Log {
	r.mu.Lock()
	defer r.mu.Unlock()

	if l, ok := r.logs[name]; ok {
		return l
	}
	l := newLog(name)
	r.logs[name] = l
	return l
}

// GetOrCreateQueue returns the named queue within the named log,
// creating either as needed — the Go equivalent of EventQueue::getCreate.
func (r *Registry) GetOrCreateQueue(logName, queueName string) *Queue {
	log := r.GetOrCreate(logName)
	log.mu.Lock()
	defer log.mu.Unlock()
	return log.getOrCreateQueue(queueName)
}

// Each calls fn for every registered Log, in an unspecified order.
func (r *Registry) Each(fn func(*Log)) {
	r.mu.Lock()
	logs := make([]*Log, 0, len(r.logs))
	for _, l := range r.logs {
		logs = append(logs, l)
	}
	r.mu.Unlock()

	for _, l := range logs {
		fn(l)
	}
}
