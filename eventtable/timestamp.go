// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package eventtable

import "math"

// EpicsEpochOffset is the number of seconds between the Unix epoch
// (1970-01-01) and the EPICS epoch (1990-01-01): 20 years of 365.25-day
// years. It is platform-neutral rather than calendar-derived, matching
// how the original port computes it.
const EpicsEpochOffset = int64(20 * 365.25 * 86400)

// Timestamp mirrors EPICS' epicsTimeStamp: a seconds field in the EPICS
// epoch plus a nanoseconds-within-the-second field. Nsec is not
// normalized to [0, 1e9) — it is stored exactly as computed from the
// tick scale, matching the original C++ port's behavior.
type Timestamp struct {
	Sec  int64
	Nsec int64
}

// NewTimestamp builds a Timestamp from a raw Unix-epoch seconds field and
// a tick count scaled by nsecPerTick, rounding half-up
// (round(ticks*nsecPerTick), not truncation) to match the hardware's own
// tick-to-time conversion.
func NewTimestamp(secs uint32, ticks uint32, nsecPerTick float64) Timestamp {
	return Timestamp{
		Sec:  int64(secs) - EpicsEpochOffset,
		Nsec: int64(math.Floor(float64(ticks)*nsecPerTick + 0.5)),
	}
}

// Sub returns t-u as a floating point number of seconds, the unit
// eventtable.Log.ReadBuffer reports tail-relative deltas in.
func (t Timestamp) Sub(u Timestamp) float64 {
	return float64(t.Sec-u.Sec) + float64(t.Nsec-u.Nsec)/1e9
}
