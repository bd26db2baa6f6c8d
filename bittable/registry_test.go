// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bittable

import "testing"

func TestRegistryGetOrCreateIsStable(t *testing.T) {
	reg := NewRegistry()
	a := reg.GetOrCreate("foo")
	b := reg.GetOrCreate("foo")
	if a != b {
		t.Fatalf("GetOrCreate returned different *Table for the same name")
	}
	c := reg.GetOrCreate("bar")
	if a == c {
		t.Fatalf("GetOrCreate returned the same *Table for different names")
	}
}

func TestRegistryEachVisitsAll(t *testing.T) {
	reg := NewRegistry()
	reg.GetOrCreate("a")
	reg.GetOrCreate("b")
	reg.GetOrCreate("c")

	seen := map[string]bool{}
	reg.Each(func(t *Table) { seen[t.Name()] = true })

	for _, name := range []string{"a", "b", "c"} {
		if !seen[name] {
			t.Fatalf("Each did not visit %q", name)
		}
	}
}
