// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package compart

import (
	"fmt"
	"math"
)

// PointProcess is a localized current source attached to one segment.
type PointProcess interface {
	// Loc returns the location of the point process
	Loc() *Point

	// Init resets the state at the start of a run
	Init()

	// Current returns the outward current in nA at membrane potential v
	// and time t, recording it in the process state.
	Current(v, t float64) float64

	// Advance integrates any state variables over dt ending at time t.
	Advance(v, t, dt float64)

	// Describe returns the type name and parameters for section reports
	Describe() string
}

// Receiver is a point process that accepts events delivered by a NetCon
type Receiver interface {
	PointProcess

	// NetReceive handles an event of given weight
	NetReceive(weight float64)
}

// Point is the location of a point process: relative position X along Sec.
type Point struct {
	Sec *Section
	X   float64
}

func (pt *Point) Loc() *Point { return pt }

// Segment returns the segment that the point process is in
func (pt *Point) Segment() *Segment { return pt.Sec.Seg(pt.X) }

func newPoint(sim *Sim, sec *Section, x float64) (Point, error) {
	if sec == nil || x < 0 || x > 1 {
		return Point{}, fmt.Errorf("%w: section %v at %g", ErrBadLocation, sec, x)
	}
	if sec.sim != sim {
		return Point{}, fmt.Errorf("%w: section %s belongs to another sim", ErrBadLocation, sec.Name)
	}
	return Point{Sec: sec, X: x}, nil
}

//////////////////////////////////////////////////////////////////////////////////////
//  IClamp

// IClamp is a single square current pulse injected into the segment:
// Amp nA from time Del for Dur msec.
type IClamp struct {
	Point
	Del float64 `min:"0" desc:"onset of the current pulse in msec"`
	Dur float64 `min:"0" desc:"duration of the current pulse in msec"`
	Amp float64 `desc:"amplitude of the current in nA (positive depolarizes)"`
	I   float64 `inactive:"+" desc:"injected current in nA"`
}

func (ic *IClamp) Init() { ic.I = 0 }

func (ic *IClamp) Current(v, t float64) float64 {
	if t >= ic.Del && t < ic.Del+ic.Dur {
		ic.I = ic.Amp
	} else {
		ic.I = 0
	}
	return -ic.I
}

func (ic *IClamp) Advance(v, t, dt float64) {}

func (ic *IClamp) Describe() string {
	return fmt.Sprintf("IClamp { at %g del=%g dur=%g amp=%g}", ic.X, ic.Del, ic.Dur, ic.Amp)
}

//////////////////////////////////////////////////////////////////////////////////////
//  AlphaSynapse

// AlphaSynapse is a synaptic conductance with an alpha function time course
// that starts at a fixed Onset time:
// g = Gmax * x * exp(1 - x), x = (t - Onset) / Tau, truncated after 10 Tau.
type AlphaSynapse struct {
	Point
	Onset float64 `min:"0" desc:"onset time of the conductance in msec"`
	Tau   float64 `def:"0.1" min:"0" desc:"time constant of the conductance (time to peak) in msec"`
	Gmax  float64 `min:"0" desc:"maximum conductance in uS"`
	E     float64 `def:"0" desc:"reversal potential in mV"`
	G     float64 `inactive:"+" desc:"conductance in uS"`
	I     float64 `inactive:"+" desc:"synaptic current in nA"`
}

func (as *AlphaSynapse) Defaults() {
	as.Tau = 0.1
}

func (as *AlphaSynapse) Init() {
	as.G = 0
	as.I = 0
}

func (as *AlphaSynapse) Current(v, t float64) float64 {
	as.G = as.Gmax * alpha((t-as.Onset)/as.Tau)
	as.I = as.G * (v - as.E)
	return as.I
}

func (as *AlphaSynapse) Advance(v, t, dt float64) {}

func (as *AlphaSynapse) Describe() string {
	return fmt.Sprintf("AlphaSynapse { at %g onset=%g tau=%g gmax=%g e=%g}", as.X, as.Onset, as.Tau, as.Gmax, as.E)
}

func alpha(x float64) float64 {
	if x < 0 || x > 10 {
		return 0
	}
	return x * math.Exp(1-x)
}

//////////////////////////////////////////////////////////////////////////////////////
//  ExpSyn

// ExpSyn is an event-driven synapse: each event of weight w increments the
// conductance by w uS, which then decays exponentially with time constant Tau.
type ExpSyn struct {
	Point
	Tau float64 `def:"0.1" min:"0" desc:"decay time constant in msec"`
	E   float64 `def:"0" desc:"reversal potential in mV"`
	G   float64 `inactive:"+" desc:"conductance in uS"`
	I   float64 `inactive:"+" desc:"synaptic current in nA"`
}

func (es *ExpSyn) Defaults() {
	es.Tau = 0.1
}

func (es *ExpSyn) Init() {
	es.G = 0
	es.I = 0
}

func (es *ExpSyn) Current(v, t float64) float64 {
	es.I = es.G * (v - es.E)
	return es.I
}

func (es *ExpSyn) Advance(v, t, dt float64) {
	es.G *= math.Exp(-dt / es.Tau)
}

func (es *ExpSyn) NetReceive(weight float64) {
	es.G += weight
}

func (es *ExpSyn) Describe() string {
	return fmt.Sprintf("ExpSyn { at %g tau=%g e=%g}", es.X, es.Tau, es.E)
}
