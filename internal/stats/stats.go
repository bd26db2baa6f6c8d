// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package stats computes the rate/jitter summary eventtable.Log.Report
// prints for a queue's buffered inter-arrival gaps. It is a thin wrapper
// over gonum.org/v1/gonum/stat so the diagnostic report can answer "is
// this event code arriving steadily" without hand-rolling Welford's
// algorithm.
package stats // import "github.com/go-lpc/evrtime/internal/stats"

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Gaps summarizes the mean and standard deviation of a series of
// inter-arrival gaps (in seconds).
type Gaps struct {
	Mean   float64
	StdDev float64
	N      int
}

// Summarize computes Gaps over the first-differences of ts (which must
// already be in chronological order). Fewer than two samples yields a
// zero-valued Gaps with N set.
func Summarize(ts []float64) Gaps {
	if len(ts) < 2 {
		return Gaps{N: len(ts)}
	}

	gaps := make([]float64, len(ts)-1)
	for i := 1; i < len(ts); i++ {
		gaps[i-1] = ts[i] - ts[i-1]
	}

	mean, variance := stat.MeanVariance(gaps, nil)
	if variance < 0 {
		variance = 0
	}
	return Gaps{Mean: mean, StdDev: math.Sqrt(variance), N: len(gaps)}
}
