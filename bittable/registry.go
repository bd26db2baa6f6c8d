// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bittable

import "sync"

// Registry is a process-lifetime, lookup-or-create table of named
// Tables, the Go equivalent of the package-level bitTables map guarded
// by bitTablesLock in bitTable.cpp. Once a Table exists its address is
// stable until process exit; there is no deregistration path.
//
// Lock order is registry -> entry, never the reverse: GetOrCreate never
// calls into a Table while holding the registry lock past the map
// operation itself.
type Registry struct {
	mu     sync.Mutex
	tables map[string]*Table
}

// NewRegistry builds an empty Registry.
func NewRegistry() *Registry {
	return &Registry{tables: make(map[string]*Table)}
}

// GetOrCreate returns the Table named name, creating and inserting one
// if it doesn't already exist.
func (r *Registry) GetOrCreate(name string) *Table {
	r.mu.Lock()
	defer r.mu.Unlock()

	if t, ok := r.tables[name]; ok {
		return t
	}
	t := newTable(name)
	r.tables[name] = t
	return t
}

// Each calls fn for every registered Table, in an unspecified order,
// holding the registry lock only long enough to snapshot the table list
// — fn itself may freely lock an individual Table.
func (r *Registry) Each(fn func(*Table)) {
	r.mu.Lock()
	tables := make([]*Table, 0, len(r.tables))
	for _, t := range r.tables {
		tables = append(tables, t)
	}
	r.mu.Unlock()

	for _, t := range tables {
		fn(t)
	}
}
