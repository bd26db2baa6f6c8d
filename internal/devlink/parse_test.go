// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package devlink

import "testing"

func TestParse(t *testing.T) {
	toks := Parse("  log=evr0   queue=   autoclear=no ")
	want := []struct{ Key, Value string }{
		{"log", "evr0"},
		{"queue", ""},
		{"autoclear", "no"},
	}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d", len(toks), len(want))
	}
	for i, w := range want {
		if toks[i].Key != w.Key || toks[i].Value != w.Value {
			t.Fatalf("token %d: got %+v, want %+v", i, toks[i], w)
		}
	}
}

func TestParseEmpty(t *testing.T) {
	if toks := Parse("   "); len(toks) != 0 {
		t.Fatalf("got %d tokens, want 0", len(toks))
	}
}
