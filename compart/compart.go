// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package compart is a small multi-compartment (cable equation) neuron
simulator.  Neurons are built from Sections, unbranched cylinders that are
discretized into Nseg Segments and connected into a tree.  Membrane
mechanisms (see package chans) are inserted into whole sections, point
processes (current clamps, synapses) attach to a single segment, and NetStim
event generators drive synapses through NetCon connections.

Simulation proceeds in fixed time steps of Dt msec: Finitialize sets the
initial membrane potential and steady-state channel gates, and each Fadvance
performs one implicit (backward Euler) step of the full tree, solved in
linear time by Hines elimination, followed by the channel state update.
Vectors record any float64 variable (by pointer) after initialization and
after each step, and can also play values into a variable.

Units: length and diameter in um, time in msec, voltage in mV, axial
resistivity in ohm-cm, specific capacitance in uF/cm2, point-process
currents in nA (positive outward for synapses, positive depolarizing for
current clamps) and synaptic conductances in uS.
*/
package compart

import "errors"

var (
	// ErrBadMechanism is returned when inserting an unknown membrane mechanism
	ErrBadMechanism = errors.New("compart: unknown mechanism")

	// ErrBadLocation is returned for a point process location outside [0, 1]
	// or on a nil section
	ErrBadLocation = errors.New("compart: bad location")

	// ErrBadTopology is returned for connections that would create a loop
	ErrBadTopology = errors.New("compart: bad topology")

	// ErrBadGeometry is returned when a section has non-positive length,
	// diameter, axial resistivity or number of segments
	ErrBadGeometry = errors.New("compart: bad geometry")

	// ErrNotInitialized is returned by Fadvance before Finitialize
	ErrNotInitialized = errors.New("compart: Finitialize has not been called")
)
