// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pointnet

import (
	"fmt"
	"math"

	"github.com/goki/mat32"
)

// IafParams are the parameters and settable state of the iaf_psc_delta
// leaky integrate-and-fire neuron with delta-shaped synaptic currents:
// each incoming spike makes the membrane potential jump by the weight (mV).
type IafParams struct {

	// membrane capacitance, in pF
	Cm float64 `nest:"C_m" def:"250" desc:"membrane capacitance, in pF"`

	// membrane time constant, in msec
	TauM float64 `nest:"tau_m" def:"10" desc:"membrane time constant, in msec"`

	// duration of the absolute refractory period, in msec
	TRef float64 `nest:"t_ref" def:"2" desc:"duration of the absolute refractory period, in msec"`

	// resting potential, in mV
	EL float64 `nest:"E_L" def:"-70" desc:"resting potential, in mV"`

	// potential the membrane is reset to after a spike, in mV
	VReset float64 `nest:"V_reset" def:"-70" desc:"potential the membrane is reset to after a spike, in mV"`

	// spike threshold, in mV
	VTh float64 `nest:"V_th" def:"-55" desc:"spike threshold, in mV"`

	// absolute lower bound of the membrane potential, in mV
	VMin float64 `nest:"V_min" def:"-Inf" desc:"absolute lower bound of the membrane potential, in mV"`

	// constant external input current, in pA
	Ie float64 `nest:"I_e" def:"0" desc:"constant external input current, in pA"`

	// membrane potential, in mV
	Vm float64 `nest:"V_m" def:"-70" desc:"membrane potential, in mV"`

	// if true, spikes arriving during the refractory period are integrated
	// afterwards, discounted by the decay over the remaining refractory time
	RefractoryInput bool `nest:"refractory_input" def:"false" desc:"if true, spikes arriving during the refractory period are integrated afterwards, discounted by the decay over the remaining refractory time"`
}

func (ip *IafParams) Defaults() {
	ip.Cm = 250
	ip.TauM = 10
	ip.TRef = 2
	ip.EL = -70
	ip.VReset = -70
	ip.VTh = -55
	ip.VMin = math.Inf(-1)
	ip.Ie = 0
	ip.Vm = -70
	ip.RefractoryInput = false
}

// Validate checks the physical consistency of the parameters
func (ip *IafParams) Validate() error {
	switch {
	case ip.Cm <= 0:
		return fmt.Errorf("%w: C_m must be > 0", ErrBadParam)
	case ip.TauM <= 0:
		return fmt.Errorf("%w: tau_m must be > 0", ErrBadParam)
	case ip.TRef < 0:
		return fmt.Errorf("%w: t_ref must be >= 0", ErrBadParam)
	case ip.VReset >= ip.VTh:
		return fmt.Errorf("%w: V_reset must be < V_th", ErrBadParam)
	}
	return nil
}

// IafPscDelta is one iaf_psc_delta neuron.  The subthreshold dynamics are
// integrated exactly: over one step h, with V relative to E_L,
// V <- P30*(I_e + I) + P33*V + sum of spike weights, with P33 = exp(-h/tau_m)
// and P30 = tau_m/C_m*(1-P33).
type IafPscDelta struct {
	IafParams

	y3       float32 `desc:"membrane potential relative to E_L"`
	y0       float32 `desc:"input current from current generators, applied on the next step"`
	refr     int     `desc:"remaining refractory steps"`
	refrBuf  float32 `desc:"spike input gathered during refractoriness"`
	p33      float32
	p30      float32
	refSteps int
	vth      float32
	vreset   float32
	vmin     float32
	ie       float32
	h        float32
}

// Calibrate computes propagators for resolution h (msec) and moves state
// into the internal relative representation.
func (nr *IafPscDelta) Calibrate(h float64) {
	nr.h = float32(h)
	nr.p33 = mat32.Exp(-nr.h / float32(nr.TauM))
	nr.p30 = float32(nr.TauM/nr.Cm) * (1 - nr.p33)
	nr.refSteps = int(math.Round(nr.TRef / h))
	nr.vth = float32(nr.VTh - nr.EL)
	nr.vreset = float32(nr.VReset - nr.EL)
	nr.vmin = float32(nr.VMin - nr.EL)
	nr.ie = float32(nr.Ie)
	nr.y3 = float32(nr.Vm - nr.EL)
}

// Init resets the dynamic state to the V_m parameter
func (nr *IafPscDelta) Init() {
	nr.y0 = 0
	nr.refr = 0
	nr.refrBuf = 0
	nr.y3 = float32(nr.Vm - nr.EL)
}

// VmAbs returns the current absolute membrane potential in mV
func (nr *IafPscDelta) VmAbs() float64 {
	return float64(nr.y3) + nr.EL
}

// Update advances one step, given summed spike input (mV) for this step
// and the input current (pA) that becomes effective on the next step.
// Returns true if the neuron spiked.
func (nr *IafPscDelta) Update(spikes, current float32) bool {
	if nr.refr == 0 {
		nr.y3 = nr.p30*(nr.y0+nr.ie) + nr.p33*nr.y3 + spikes
		if nr.RefractoryInput {
			nr.y3 += nr.refrBuf
			nr.refrBuf = 0
		}
		if nr.y3 < nr.vmin {
			nr.y3 = nr.vmin
		}
	} else {
		if nr.RefractoryInput {
			nr.refrBuf += spikes * mat32.Exp(-float32(nr.refr)*nr.h/float32(nr.TauM))
		}
		nr.refr--
	}
	spiked := false
	if nr.y3 >= nr.vth {
		nr.refr = nr.refSteps
		nr.y3 = nr.vreset
		spiked = true
	}
	nr.y0 = current
	return spiked
}

// status returns the parameters with V_m reflecting the current state
func (nr *IafPscDelta) status() IafParams {
	st := nr.IafParams
	st.Vm = nr.VmAbs()
	return st
}
