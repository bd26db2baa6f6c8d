// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bittable

import (
	"strconv"

	"golang.org/x/xerrors"

	"github.com/go-lpc/evrtime/internal/devlink"
)

// Binding attaches one action source to a Table. It is owned per
// external record/endpoint and carries no lock of its own: all mutable
// state (prevEvent) is read and written under Table.mu.
type Binding struct {
	table     *Table
	action    int32 // may be negative, meaning unbound
	prevEvent uint8
}

// Table returns the bound Table.
func (b *Binding) Table() *Table { return b.table }

// Action returns the bound action index, or a negative value if unbound.
func (b *Binding) Action() int32 { return b.action }

// Bind parses a whitespace-delimited key=value device-link string
// ("table=<name> action=<integer>") and returns a Binding to the named
// table, creating it if necessary. action defaults to -1 (unbound) and
// is parsed with C-style auto base detection (leading 0x -> hex, leading
// 0 -> octal, else decimal), mirroring std::stoi(val, nullptr, 0).
func Bind(reg *Registry, link string) (*Binding, error) {
	var tableName string
	action := int64(-1)

	for _, tok := range devlink.Parse(link) {
		switch tok.Key {
		case "table":
			tableName = tok.Value
		case "action":
			v, err := strconv.ParseInt(tok.Value, 0, 32)
			if err != nil {
				return nil, xerrors.Errorf("could not parse action=%q: %w", tok.Value, err)
			}
			action = v
		default:
			return nil, devlink.Unknown(tok.Key)
		}
	}

	if tableName == "" {
		return nil, xerrors.New("missing table=")
	}

	table := reg.GetOrCreate(tableName)
	return &Binding{table: table, action: int32(action)}, nil
}
