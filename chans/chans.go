// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package chans provides standard membrane ion channel mechanisms for
conductance-based compartmental models: a passive leak and the classic
Hodgkin-Huxley squid axon sodium / potassium / leak channels.

All quantities are in the usual compartmental units: membrane potential in mV,
time in msec, conductance densities in S/cm2 and current densities in mA/cm2
(positive = outward).
*/
package chans

// Chans are per-ion values (conductances or reversal potentials)
// used in computing membrane currents.
type Chans struct {
	Na float64 `desc:"sodium (Na+) channels -- fast depolarizing current"`
	K  float64 `desc:"delayed-rectifier potassium (K+) channels -- repolarizing current"`
	L  float64 `desc:"constant leak channels -- determines resting potential"`
}

// SetAll sets all the values
func (ch *Chans) SetAll(na, k, l float64) {
	ch.Na, ch.K, ch.L = na, k, l
}

// Mechanism is a distributed membrane mechanism that is inserted into every
// segment of a section.  Each segment holds its own instance so that
// parameters and state can vary along the cable.
type Mechanism interface {
	// Name is the mechanism name as used in Insert, e.g., "pas" or "hh"
	Name() string

	// Init sets state variables to their steady-state values at voltage v,
	// for given temperature in degrees celsius.
	Init(v, celsius float64)

	// Current returns the total outward current density in mA/cm2 at voltage v,
	// given the current state.
	Current(v float64) float64

	// Advance integrates state variables over dt msec at voltage v.
	Advance(v, dt float64)

	// Describe returns the parameters in name=value form, for section reports.
	Describe() string

	// Clone returns a new instance with the same parameters
	Clone() Mechanism
}
