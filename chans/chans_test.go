// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package chans

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

// difTol is the numerical difference tolerance for comparing vs. target values
const difTol = 1.0e-6

func TestPassive(t *testing.T) {
	ps := NewPassive()
	ps.G = 0.0002
	ps.E = -65
	assert.InDelta(t, 0.0, ps.Current(-65), difTol)
	assert.InDelta(t, 0.002, ps.Current(-55), difTol)
	ps.Advance(-55, 0.1)
	assert.Equal(t, "g_pas=0.0002 e_pas=-65", ps.Describe())
}

func TestHHRest(t *testing.T) {
	hh := NewHH()
	hh.Init(-65, 6.3)
	assert.InDelta(t, 1.0, hh.Q10, difTol)
	// classic resting gate values
	assert.InDelta(t, 0.0529, hh.M, 1e-3)
	assert.InDelta(t, 0.5961, hh.H, 1e-3)
	assert.InDelta(t, 0.3177, hh.N, 1e-3)
	// gates stay put when held at the init voltage
	m, h, n := hh.M, hh.H, hh.N
	for i := 0; i < 100; i++ {
		hh.Advance(-65, 0.025)
	}
	assert.InDelta(t, m, hh.M, difTol)
	assert.InDelta(t, h, hh.H, difTol)
	assert.InDelta(t, n, hh.N, difTol)
}

func TestHHVtrapContinuous(t *testing.T) {
	// m alpha has a removable singularity at -40 mV, n alpha at -55 mV
	for _, vs := range []float64{-40, -55} {
		lo := HHRates(vs-1e-4, 1)
		at := HHRates(vs, 1)
		hi := HHRates(vs+1e-4, 1)
		assert.False(t, math.IsNaN(at.MInf) || math.IsNaN(at.NInf))
		assert.InDelta(t, lo.MInf, at.MInf, 1e-4)
		assert.InDelta(t, hi.NInf, at.NInf, 1e-4)
	}
}

func TestHHTemperature(t *testing.T) {
	cold := HHRates(-60, Q10Factor(6.3))
	warm := HHRates(-60, Q10Factor(16.3))
	assert.InDelta(t, cold.MTau/3, warm.MTau, difTol)
	assert.InDelta(t, cold.MInf, warm.MInf, difTol)
}

func TestHHClone(t *testing.T) {
	hh := NewHH()
	hh.Gbar.Na = 0.2
	cp := hh.Clone().(*HH)
	cp.Gbar.Na = 0.1
	assert.Equal(t, 0.2, hh.Gbar.Na)
	assert.Equal(t, "hh", cp.Name())
}
