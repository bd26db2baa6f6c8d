// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bittable

import "testing"

func TestBindParsesTableAndAction(t *testing.T) {
	reg := NewRegistry()
	b, err := Bind(reg, "table=evr0 action=0x1f")
	if err != nil {
		t.Fatalf("Bind: %v", err)
	}
	if b.Table().Name() != "evr0" {
		t.Fatalf("got table=%q, want evr0", b.Table().Name())
	}
	if b.Action() != 0x1f {
		t.Fatalf("got action=%d, want 31", b.Action())
	}
}

func TestBindDefaultsActionUnbound(t *testing.T) {
	reg := NewRegistry()
	b, err := Bind(reg, "table=evr0")
	if err != nil {
		t.Fatalf("Bind: %v", err)
	}
	if b.Action() >= 0 {
		t.Fatalf("got action=%d, want negative (unbound)", b.Action())
	}
}

func TestBindOctalAndDecimal(t *testing.T) {
	reg := NewRegistry()
	b, err := Bind(reg, "table=evr0 action=010")
	if err != nil {
		t.Fatalf("Bind: %v", err)
	}
	if b.Action() != 8 {
		t.Fatalf("got action=%d, want 8 (octal 010)", b.Action())
	}
}

func TestBindMissingTable(t *testing.T) {
	reg := NewRegistry()
	if _, err := Bind(reg, "action=1"); err == nil {
		t.Fatalf("Bind: expected error for missing table=")
	}
}

func TestBindUnknownKey(t *testing.T) {
	reg := NewRegistry()
	if _, err := Bind(reg, "table=evr0 bogus=1"); err == nil {
		t.Fatalf("Bind: expected error for unknown key")
	}
}

func TestBindSharesTableAcrossCalls(t *testing.T) {
	reg := NewRegistry()
	b1, err := Bind(reg, "table=evr0 action=1")
	if err != nil {
		t.Fatalf("Bind: %v", err)
	}
	b2, err := Bind(reg, "table=evr0 action=2")
	if err != nil {
		t.Fatalf("Bind: %v", err)
	}
	if b1.Table() != b2.Table() {
		t.Fatalf("expected same *Table for same table= name")
	}
}
