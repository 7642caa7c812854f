// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package plots

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// RasterParams control the layout of a raster figure
type RasterParams struct {
	BinWidth float64 `def:"5" desc:"width of the rate histogram bins, in msec"`
	TMin     float64 `desc:"start of the time axis, in msec"`
	TMax     float64 `desc:"end of the time axis, in msec; 0 uses the last event"`
}

func (rp *RasterParams) Defaults() {
	rp.BinWidth = 5
	rp.TMin = 0
	rp.TMax = 0
}

// Raster returns a figure with a spike raster (sender id vs. time) above
// the population rate histogram, averaged over the distinct senders.
func Raster(title string, senders []int, times []float64, rp RasterParams) *Figure {
	fg := NewFigure(title, "Time (ms)", 2)
	ys := make([]float64, len(senders))
	for i, s := range senders {
		ys[i] = float64(s)
	}
	fg.Add(0, Series{X: times, Y: ys, Style: Points})
	fg.Panels[0].YLabel = "Neuron ID"

	edges, rate := RateHist(senders, times, rp)
	fg.Add(1, Series{X: edges, Y: rate, Style: Steps})
	fg.Panels[1].YLabel = "Rate (Hz)"
	return fg
}

// RateHist bins the spike times and returns the left bin edges (plus the
// final right edge) and the rate per bin in Hz per sender.  The last
// rate is repeated at the final edge so that the histogram closes.
func RateHist(senders []int, times []float64, rp RasterParams) ([]float64, []float64) {
	if rp.BinWidth <= 0 {
		rp.BinWidth = 5
	}
	tmax := rp.TMax
	if tmax <= rp.TMin && len(times) > 0 {
		tmax = floats.Max(times)
	}
	nb := int(math.Ceil((tmax - rp.TMin) / rp.BinWidth))
	if nb < 1 {
		nb = 1
	}
	uniq := map[int]bool{}
	for _, s := range senders {
		uniq[s] = true
	}
	counts := make([]float64, nb)
	for _, t := range times {
		b := int((t - rp.TMin) / rp.BinWidth)
		if b == nb && t <= tmax {
			b = nb - 1
		}
		if b < 0 || b >= nb {
			continue
		}
		counts[b]++
	}
	norm := 0.0
	if len(uniq) > 0 {
		norm = 1000 / (rp.BinWidth * float64(len(uniq)))
	}
	edges := make([]float64, nb+1)
	rate := make([]float64, nb+1)
	for i := range edges {
		edges[i] = rp.TMin + float64(i)*rp.BinWidth
	}
	floats.ScaleTo(rate[:nb], norm, counts)
	rate[nb] = rate[nb-1]
	return edges, rate
}
