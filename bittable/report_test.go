// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bittable

import (
	"bytes"
	"strings"
	"testing"
)

func TestReportVerbosityZero(t *testing.T) {
	reg := NewRegistry()
	tbl := reg.GetOrCreate("evr0")
	mustSetWords(t, tbl, 4)
	b := bindAction(t, tbl, 0)
	mustUpdate(t, tbl, b, 100)

	var buf bytes.Buffer
	if err := reg.Report(&buf, 0); err != nil {
		t.Fatalf("Report: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, `"evr0"`) {
		t.Fatalf("report missing table name: %q", out)
	}
	if strings.Contains(out, "EVT#") {
		t.Fatalf("report at verbosity 0 should not list event rows: %q", out)
	}
}

func TestReportVerbosityOne(t *testing.T) {
	reg := NewRegistry()
	tbl := reg.GetOrCreate("evr0")
	mustSetWords(t, tbl, 4)
	b := bindAction(t, tbl, 2)
	mustUpdate(t, tbl, b, 100)

	var buf bytes.Buffer
	if err := reg.Report(&buf, 1); err != nil {
		t.Fatalf("Report: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "100") {
		t.Fatalf("report missing event row: %q", out)
	}
}
