// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package alarm holds the severity/condition vocabulary the core raises
// at its public boundary, mirroring EPICS' recGblSetSevrMsg(sevr, stat, msg).
package alarm // import "github.com/go-lpc/evrtime/internal/alarm"

import "fmt"

// Severity mirrors an EPICS alarm severity.
type Severity int

const (
	NoAlarm Severity = iota
	Minor
	Major
	Invalid
)

func (s Severity) String() string {
	switch s {
	case NoAlarm:
		return "NO_ALARM"
	case Minor:
		return "MINOR"
	case Major:
		return "MAJOR"
	case Invalid:
		return "INVALID"
	default:
		return "UNKNOWN"
	}
}

// Class mirrors an EPICS alarm condition class (READ/WRITE/COMM/...).
type Class int

const (
	NoAlarmClass Class = iota
	Read
	Write
	Comm
)

func (c Class) String() string {
	switch c {
	case NoAlarmClass:
		return "NO_ALARM"
	case Read:
		return "READ_ALARM"
	case Write:
		return "WRITE_ALARM"
	case Comm:
		return "COMM_ALARM"
	default:
		return "UNKNOWN"
	}
}

// Error is the error type every public entry point in bittable and
// eventtable returns on failure. It carries the alarm class/severity the
// records-database boundary is expected to latch, plus fixed condition
// text matching the strings recGblSetSevrMsg callers historically raised.
type Error struct {
	Class     Class
	Severity  Severity
	Condition string
	Cause     error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s/%s: %s: %v", e.Class, e.Severity, e.Condition, e.Cause)
	}
	return fmt.Sprintf("%s/%s: %s", e.Class, e.Severity, e.Condition)
}

func (e *Error) Unwrap() error { return e.Cause }

// New builds an alarm.Error with no wrapped cause.
func New(class Class, sevr Severity, condition string) *Error {
	return &Error{Class: class, Severity: sevr, Condition: condition}
}

// Wrap builds an alarm.Error wrapping cause, using cause's message as the
// condition text — mirroring the CATCH macro's COMM_ALARM/INVALID
// fallback for any unexpected exception in bitTable.cpp / eventTable.cpp.
func Wrap(cause error) *Error {
	return &Error{Class: Comm, Severity: Invalid, Condition: cause.Error(), Cause: cause}
}

// Common condition texts, given names so callers never retype the
// literal string.
const (
	CondBadFTVL    = "Bad FTVL"
	CondBadNELM    = "Bad NELM"
	CondRange      = "Range"
	CondNoAction   = "No Action"
	CondDuplicate  = "Duplicate"
	CondOutOfRange = "Out of range"
	CondAutoclear  = "autoclear= must be 'yes' or 'no'"
	CondNoInit     = "No Init"
)

// OutOfRange builds the per-bit "OoR <n>" MAJOR advisory raised by
// bittable.Table.Render for an action index beyond the current width.
func OutOfRange(action uint32) *Error {
	return New(Read, Major, fmt.Sprintf("OoR %d", action))
}
