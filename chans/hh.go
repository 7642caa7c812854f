// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package chans

import (
	"fmt"
	"math"
)

// HH are the Hodgkin-Huxley squid axon channels: a fast sodium current with
// activation gate m and inactivation gate h, a delayed-rectifier potassium
// current with activation gate n, and a leak.  Rate constants are scaled by
// a Q10 of 3 relative to 6.3 degrees celsius.
type HH struct {
	Gbar Chans `view:"inline" desc:"[Defaults: .12, .036, .0003] maximal conductance densities in S/cm2"`
	Erev Chans `view:"inline" desc:"[Defaults: 50, -77, -54.3] reversal potentials in mV"`

	M float64 `inactive:"+" desc:"sodium activation gate"`
	H float64 `inactive:"+" desc:"sodium inactivation gate"`
	N float64 `inactive:"+" desc:"potassium activation gate"`

	INa float64 `inactive:"+" desc:"sodium current density in mA/cm2"`
	IK  float64 `inactive:"+" desc:"potassium current density in mA/cm2"`
	IL  float64 `inactive:"+" desc:"leak current density in mA/cm2"`

	Q10 float64 `view:"-" desc:"temperature scaling of rate constants, computed in Init"`
}

func (hh *HH) Defaults() {
	hh.Gbar.SetAll(0.12, 0.036, 0.0003)
	hh.Erev.SetAll(50, -77, -54.3)
	hh.Q10 = 1
}

// NewHH returns HH channels with default parameters
func NewHH() *HH {
	hh := &HH{}
	hh.Defaults()
	return hh
}

func (hh *HH) Name() string { return "hh" }

// Q10Factor returns the rate scaling factor for given temperature
func Q10Factor(celsius float64) float64 {
	return math.Pow(3, (celsius-6.3)/10)
}

func (hh *HH) Init(v, celsius float64) {
	hh.Q10 = Q10Factor(celsius)
	r := HHRates(v, hh.Q10)
	hh.M, hh.H, hh.N = r.MInf, r.HInf, r.NInf
	hh.Current(v)
}

func (hh *HH) Current(v float64) float64 {
	m3 := hh.M * hh.M * hh.M
	n2 := hh.N * hh.N
	hh.INa = hh.Gbar.Na * m3 * hh.H * (v - hh.Erev.Na)
	hh.IK = hh.Gbar.K * n2 * n2 * (v - hh.Erev.K)
	hh.IL = hh.Gbar.L * (v - hh.Erev.L)
	return hh.INa + hh.IK + hh.IL
}

// Advance integrates the gates with exponential Euler, which is exact
// for constant v over the step.
func (hh *HH) Advance(v, dt float64) {
	r := HHRates(v, hh.Q10)
	hh.M += (1 - math.Exp(-dt/r.MTau)) * (r.MInf - hh.M)
	hh.H += (1 - math.Exp(-dt/r.HTau)) * (r.HInf - hh.H)
	hh.N += (1 - math.Exp(-dt/r.NTau)) * (r.NInf - hh.N)
}

func (hh *HH) Describe() string {
	return fmt.Sprintf("gnabar_hh=%g gkbar_hh=%g gl_hh=%g el_hh=%g ena=%g ek=%g",
		hh.Gbar.Na, hh.Gbar.K, hh.Gbar.L, hh.Erev.L, hh.Erev.Na, hh.Erev.K)
}

func (hh *HH) Clone() Mechanism {
	cp := *hh
	return &cp
}

// GateRates are the steady-state values and time constants (msec)
// of the three HH gates at a given voltage.
type GateRates struct {
	MInf, MTau float64
	HInf, HTau float64
	NInf, NTau float64
}

// HHRates computes the gate steady states and time constants at voltage v
// with rate scaling q10 (see Q10Factor).
func HHRates(v, q10 float64) GateRates {
	var r GateRates
	alpha := 0.1 * vtrap(-(v + 40), 10)
	beta := 4 * math.Exp(-(v+65)/18)
	sum := alpha + beta
	r.MTau = 1 / (q10 * sum)
	r.MInf = alpha / sum

	alpha = 0.07 * math.Exp(-(v+65)/20)
	beta = 1 / (math.Exp(-(v+35)/10) + 1)
	sum = alpha + beta
	r.HTau = 1 / (q10 * sum)
	r.HInf = alpha / sum

	alpha = 0.01 * vtrap(-(v + 55), 10)
	beta = 0.125 * math.Exp(-(v+65)/80)
	sum = alpha + beta
	r.NTau = 1 / (q10 * sum)
	r.NInf = alpha / sum
	return r
}

// vtrap computes x / (exp(x/y) - 1), using the Taylor expansion
// near the removable singularity at x = 0.
func vtrap(x, y float64) float64 {
	if math.Abs(x/y) < 1e-6 {
		return y * (1 - x/y/2)
	}
	return x / (math.Exp(x/y) - 1)
}
