// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package plots

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func traceFigure() *Figure {
	n := 200
	t := make([]float64, n)
	v := make([]float64, n)
	i := make([]float64, n)
	for k := range t {
		t[k] = float64(k) * 0.5
		v[k] = -65 + 10*math.Sin(t[k]/10)
		if t[k] >= 20 && t[k] < 60 {
			i[k] = 0.2
		}
	}
	fg := NewFigure("stimulus current and point-neuron response", "t (ms)", 2)
	fg.Panels[0].YLabel = "I (nA)"
	fg.Panels[1].YLabel = "V (mV)"
	fg.Add(0, Series{X: t, Y: i})
	fg.Add(1, Series{Name: "soma", X: t, Y: v})
	return fg
}

func TestSaveFormats(t *testing.T) {
	dir := t.TempDir()
	fg := traceFigure()
	for _, ext := range []string{".png", ".pdf", ".svg"} {
		fn := filepath.Join(dir, "sub", "trace"+ext)
		require.NoError(t, fg.Save(fn, 0, 0), ext)
		st, err := os.Stat(fn)
		require.NoError(t, err)
		assert.Positive(t, st.Size(), ext)
	}
	assert.ErrorIs(t, fg.Save(filepath.Join(dir, "trace.gif"), 0, 0), ErrFormat)
}

func TestPlotsLayout(t *testing.T) {
	fg := traceFigure()
	pls, err := fg.Plots()
	require.NoError(t, err)
	require.Len(t, pls, 2)
	assert.Equal(t, "stimulus current and point-neuron response", pls[0].Title.Text)
	assert.Equal(t, "", pls[1].Title.Text)
	assert.Equal(t, "", pls[0].X.Label.Text)
	assert.Equal(t, "t (ms)", pls[1].X.Label.Text)
	assert.Equal(t, 0.0, pls[1].X.Min)
	assert.Equal(t, 99.5, pls[1].X.Max)
	assert.InDelta(t, -0.01, pls[0].Y.Min, 1e-12)
	assert.InDelta(t, 0.21, pls[0].Y.Max, 1e-12)

	_, err = (&Figure{Title: "empty"}).Plots()
	assert.ErrorIs(t, err, ErrEmpty)
	bad := NewFigure("bad", "t", 1)
	bad.Add(0, Series{X: []float64{1, 2}, Y: []float64{1}})
	_, err = bad.Plots()
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestRaster(t *testing.T) {
	senders := []int{1, 2, 1, 2, 1}
	times := []float64{1, 2, 6, 7, 9.5}
	var rp RasterParams
	rp.Defaults()
	rp.TMax = 10
	edges, rate := RateHist(senders, times, rp)
	assert.Equal(t, []float64{0, 5, 10}, edges)
	// 2 spikes over 2 senders in 5 msec = 200 Hz
	assert.Equal(t, []float64{200, 300, 300}, rate)

	fg := Raster("Brunel network", senders, times, rp)
	require.Len(t, fg.Panels, 2)
	assert.Equal(t, Points, fg.Panels[0].Series[0].Style)
	assert.Equal(t, Steps, fg.Panels[1].Series[0].Style)
	require.NoError(t, fg.Save(filepath.Join(t.TempDir(), "raster.png"), 0, 0))
}
