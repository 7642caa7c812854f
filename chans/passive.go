// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package chans

import "fmt"

// Passive is a linear leak conductance with a fixed reversal potential.
// Without any leak a section is a perfect integrator of its input.
type Passive struct {
	G float64 `def:"0.001" min:"0" desc:"leak conductance density in S/cm2"`
	E float64 `def:"-70" desc:"leak reversal potential in mV"`
	I float64 `inactive:"+" desc:"most recent leak current density in mA/cm2"`
}

func (ps *Passive) Defaults() {
	ps.G = 0.001
	ps.E = -70
}

// NewPassive returns a Passive leak with default parameters
func NewPassive() *Passive {
	ps := &Passive{}
	ps.Defaults()
	return ps
}

func (ps *Passive) Name() string { return "pas" }

func (ps *Passive) Init(v, celsius float64) {
	ps.I = ps.G * (v - ps.E)
}

func (ps *Passive) Current(v float64) float64 {
	ps.I = ps.G * (v - ps.E)
	return ps.I
}

// Advance is a no-op: the leak has no state.
func (ps *Passive) Advance(v, dt float64) {}

func (ps *Passive) Describe() string {
	return fmt.Sprintf("g_pas=%g e_pas=%g", ps.G, ps.E)
}

func (ps *Passive) Clone() Mechanism {
	cp := *ps
	return &cp
}
