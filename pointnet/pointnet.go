// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package pointnet is a small network simulator for point neurons, built
around a Kernel that holds all nodes (neurons, stimulating and recording
devices), synapse models and connections of one network.

Networks are built with Create, CopyModel and Connect using the familiar
status-dictionary style: node and synapse parameters are given as Params
(map[string]any) keyed by parameter name, e.g. "V_th" or "weight".
Simulate advances the network in fixed steps of the kernel resolution.
Spikes are communicated in slices of the minimum connection delay: within a
slice every neuron updates independently, so neurons are partitioned over
virtual processes that are updated in parallel, each with its own random
stream, and spikes are then delivered into per-neuron ring buffers.

Units follow the usual conventions: time in msec, membrane potential in mV,
current in pA, capacitance in pF, rates in Hz.  Delta synapse weights are
voltage jumps in mV.
*/
package pointnet

import (
	"errors"
	"fmt"

	"github.com/mitchellh/mapstructure"
)

var (
	// ErrUnknownModel is returned for a model name that is not registered
	ErrUnknownModel = errors.New("pointnet: unknown model")

	// ErrModelExists is returned when copying onto an existing model name
	ErrModelExists = errors.New("pointnet: model already exists")

	// ErrBadParam is returned for unknown or ill-typed parameters
	ErrBadParam = errors.New("pointnet: bad parameter")

	// ErrBadRule is returned for connection rules that cannot be satisfied
	ErrBadRule = errors.New("pointnet: bad connection rule")

	// ErrBadConnection is returned when connecting node types that
	// cannot communicate, e.g. a recorder to a neuron
	ErrBadConnection = errors.New("pointnet: unsupported connection")

	// ErrBadDelay is returned for delays shorter than the resolution
	ErrBadDelay = errors.New("pointnet: bad delay")

	// ErrNotSimulatable is returned for simulation times that are
	// negative or not a multiple of the resolution
	ErrNotSimulatable = errors.New("pointnet: cannot simulate")

	// ErrLocked is returned when changing kernel settings that are fixed
	// once nodes exist
	ErrLocked = errors.New("pointnet: kernel setting locked")

	// ErrBadNodes is returned for node collections that do not refer
	// to nodes of this kernel, or have the wrong type for the operation
	ErrBadNodes = errors.New("pointnet: bad node collection")

	// ErrFileExists is returned when a recording file exists and
	// overwrite_files is false
	ErrFileExists = errors.New("pointnet: file exists")
)

// Params is a status dictionary of named parameter values
type Params map[string]any

// Clone returns a shallow copy
func (pr Params) Clone() Params {
	cp := make(Params, len(pr))
	for k, v := range pr {
		cp[k] = v
	}
	return cp
}

// decodeParams applies the dictionary onto the struct pointed to by out,
// using the nest tags, rejecting any unknown names.
func decodeParams(in Params, out any) error {
	if len(in) == 0 {
		return nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "nest",
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.TextUnmarshallerHookFunc(),
		Result:           out,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(map[string]any(in)); err != nil {
		return fmt.Errorf("%w: %v", ErrBadParam, err)
	}
	return nil
}

// encodeParams returns the nest-tagged fields of the struct as a dictionary
func encodeParams(in any) Params {
	out := map[string]any{}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "nest",
		Result:  &out,
	})
	if err == nil {
		dec.Decode(in)
	}
	return Params(out)
}
