// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package report

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummaryRoundTrip(t *testing.T) {
	sm := New("brunel")
	sm.SetParam("order", 50)
	sm.SetValue("rate_ex", 12.5)
	sm.AddFile("brunel.pdf")
	sm.AddMessage("Number of neurons : %d", 250)
	sm.Finish()
	fn := filepath.Join(t.TempDir(), "out", "brunel.yaml")
	require.NoError(t, sm.Write(fn))

	rd, err := Read(fn)
	require.NoError(t, err)
	assert.Equal(t, sm.RunID, rd.RunID)
	assert.Equal(t, "brunel", rd.Example)
	assert.Equal(t, 50, rd.Params["order"])
	assert.Equal(t, 12.5, rd.Values["rate_ex"])
	assert.Equal(t, []string{"brunel.pdf"}, rd.Files)
	assert.Equal(t, []string{"Number of neurons : 250"}, rd.Messages)
	assert.Len(t, rd.RunID, 36)
}

func TestStats(t *testing.T) {
	tr := TraceStats([]float64{-65, -60, -55})
	assert.Equal(t, -65.0, tr.Min)
	assert.Equal(t, -55.0, tr.Max)
	assert.InDelta(t, -60.0, tr.Mean, 1e-12)
	assert.InDelta(t, 5.0, tr.Std, 1e-12)
	assert.Equal(t, Trace{}, TraceStats(nil))

	tm := []float64{0, 1, 2, 3, 4, 5}
	v := []float64{-65, -20, 10, -70, 5, 20}
	assert.Equal(t, []float64{2, 4}, Crossings(tm, v, 0))

	assert.Equal(t, 12.5, Rate(25, 2, 1000))
	assert.Equal(t, 0.0, Rate(5, 0, 1000))

	cv, n := ISICV([]int{1, 1, 1, 1, 2, 2}, []float64{10, 20, 30, 40, 5, 6})
	assert.Equal(t, 1, n)
	assert.InDelta(t, 0.0, cv, 1e-12)
	cv, n = ISICV([]int{1}, []float64{1})
	assert.Equal(t, 0, n)
	assert.True(t, math.IsNaN(cv))
}
