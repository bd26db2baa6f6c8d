// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package devlink tokenizes the whitespace-separated key=value device-link
// strings that bind a record role to a bittable/eventtable entry, the Go
// equivalent of the epicsStrtok_r + cmd() closure loop repeated in
// bitTable.cpp and eventTable.cpp.
package devlink // import "github.com/go-lpc/evrtime/internal/devlink"

import (
	"fmt"
	"strings"
)

// Tokens is an ordered list of key=value pairs parsed left to right.
type Tokens []struct {
	Key, Value string
}

// Parse splits s on whitespace and each field on the first '='. A field
// with no '=' is treated as a key with an empty value (mirrors "queue="
// binding to an empty, but present, queue name).
func Parse(s string) Tokens {
	fields := strings.Fields(s)
	toks := make(Tokens, 0, len(fields))
	for _, f := range fields {
		key, value, _ := strings.Cut(f, "=")
		toks = append(toks, struct{ Key, Value string }{key, value})
	}
	return toks
}

// Unknown builds the "unexpected dev. link parameter" error for a key the
// caller's switch didn't recognize.
func Unknown(key string) error {
	return fmt.Errorf("unexpected dev. link parameter %q", key)
}
