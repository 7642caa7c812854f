// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package neurosims is the overall repository for a set of small didactic
neural simulations, each of which builds a tiny circuit, steps the simulation,
collects the recorded variables and plots them to a file.

This top-level of the repository has no functional code -- everything is organized
into the following sub-repositories:

* compart: a multi-compartment simulator of conductance-based neurons built from
cable sections, with point processes (current clamps, alpha and exponential
synapses), artificial spike generators, event-delivering connections and
recording / playing vectors.

* chans: the membrane mechanisms inserted into compart sections: passive leak
and the Hodgkin-Huxley sodium and potassium channels.

* pointnet: a point-neuron network simulator with integrate-and-fire neurons,
poisson / spike / dc generators, spike recorders and voltmeters, created and
configured through status dictionaries and connected by the standard rules
(all_to_all, one_to_one, fixed_indegree, ...).  Neurons are updated in parallel
over virtual processes.

* plots: stacked trace figures and spike raster plots saved as pdf, png or svg.

* examples: one package per simulation (passive, alphasyn, netstim, noisyhh,
multicomp, hhnet, brunel, gates), each with a Run function returning the
recordings and a Figure method.

* cmd/neurosims: the command that runs the examples and writes their figures
and YAML run summaries.
*/
package neurosims
