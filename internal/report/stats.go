// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package report

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Trace summarizes a recorded variable
type Trace struct {
	Min  float64 `yaml:"min"`
	Max  float64 `yaml:"max"`
	Mean float64 `yaml:"mean"`
	Std  float64 `yaml:"std"`
}

// TraceStats returns the summary of the values; zero for no values
func TraceStats(vals []float64) Trace {
	if len(vals) == 0 {
		return Trace{}
	}
	tr := Trace{Min: floats.Min(vals), Max: floats.Max(vals)}
	if len(vals) == 1 {
		tr.Mean = vals[0]
		return tr
	}
	tr.Mean, tr.Std = stat.MeanStdDev(vals, nil)
	return tr
}

// Crossings returns the times at which v crosses thr upward
func Crossings(t, v []float64, thr float64) []float64 {
	var cs []float64
	for i := 1; i < len(v) && i < len(t); i++ {
		if v[i-1] < thr && v[i] >= thr {
			cs = append(cs, t[i])
		}
	}
	return cs
}

// Rate returns the mean firing rate in Hz of n neurons producing
// nspikes events over dur msec
func Rate(nspikes, n int, dur float64) float64 {
	if n == 0 || dur <= 0 {
		return 0
	}
	return float64(nspikes) / dur * 1000 / float64(n)
}

// ISICV returns the mean coefficient of variation of the inter-spike
// intervals over senders having at least three spikes, and the number
// of such senders.
func ISICV(senders []int, times []float64) (float64, int) {
	bySender := map[int][]float64{}
	for i, s := range senders {
		bySender[s] = append(bySender[s], times[i])
	}
	var cvs []float64
	for _, ts := range bySender {
		if len(ts) < 3 {
			continue
		}
		sort.Float64s(ts)
		isi := make([]float64, len(ts)-1)
		floats.SubTo(isi, ts[1:], ts[:len(ts)-1])
		mn, sd := stat.MeanStdDev(isi, nil)
		if mn > 0 {
			cvs = append(cvs, sd/mn)
		}
	}
	if len(cvs) == 0 {
		return math.NaN(), 0
	}
	return stat.Mean(cvs, nil), len(cvs)
}
