// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pointnet

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// difTol is the numerical difference tolerance for comparing vs. target values
const difTol = 1.0e-4

func TestIafSubthreshold(t *testing.T) {
	k := NewKernel()
	nrn, err := k.Create(IafPscDeltaModel, 1, Params{"I_e": 100.0})
	require.NoError(t, err)
	vmn, err := k.Create(VoltmeterModel, 1, nil)
	require.NoError(t, err)
	require.NoError(t, k.Connect(vmn, nrn, ConnSpec{}, SynSpec{}))
	require.NoError(t, k.Simulate(context.Background(), 100))

	vm, err := k.Voltmeter(vmn)
	require.NoError(t, err)
	ev := vm.Events()
	require.Equal(t, 100, ev.Len())
	assert.InDelta(t, 10.0, ev.Times[9], 1e-9)
	// V(t) = E_L + I_e tau_m / C_m (1 - exp(-t/tau_m))
	assert.InDelta(t, -70+4*(1-math.Exp(-1)), ev.Vm[9], difTol)
	assert.InDelta(t, -66.0, ev.Vm[99], 1e-3)
	for _, s := range ev.Senders {
		assert.Equal(t, nrn.At(0), s)
	}
	assert.InDelta(t, 100.0, k.Time(), 1e-9)
}

func TestIafRegularSpiking(t *testing.T) {
	k := NewKernel()
	nrn, err := k.Create(IafPscDeltaModel, 1, Params{"I_e": 400.0})
	require.NoError(t, err)
	srn, err := k.Create(SpikeRecorderModel, 1, nil)
	require.NoError(t, err)
	require.NoError(t, k.Connect(nrn, srn, ConnSpec{}, SynSpec{}))
	require.NoError(t, k.Simulate(context.Background(), 200))

	sr, err := k.SpikeRecorder(srn)
	require.NoError(t, err)
	// 278 integration steps to threshold, then 20 refractory steps
	cor := []float64{27.8, 57.6, 87.4, 117.2, 147.0, 176.8}
	ev := sr.Events()
	require.Equal(t, len(cor), sr.NEvents())
	require.Equal(t, len(cor), ev.Len())
	for i, ct := range cor {
		assert.InDelta(t, ct, ev.Times[i], 1e-9)
		assert.Equal(t, nrn.At(0), ev.Senders[i])
	}
	sts, err := k.GetStatus(nrn)
	require.NoError(t, err)
	assert.Less(t, sts[0]["V_m"].(float64), -55.0)
}

func TestSpikeGeneratorDelivery(t *testing.T) {
	k := NewKernel()
	sgn, err := k.Create(SpikeGeneratorModel, 1, Params{"spike_times": []float64{10, 20}})
	require.NoError(t, err)
	nrn, err := k.Create(IafPscDeltaModel, 1, nil)
	require.NoError(t, err)
	vmn, err := k.Create(VoltmeterModel, 1, Params{"interval": 0.1})
	require.NoError(t, err)
	srn, err := k.Create(SpikeRecorderModel, 1, nil)
	require.NoError(t, err)
	require.NoError(t, k.Connect(sgn, nrn, ConnSpec{}, SynSpec{Params: Params{"weight": 5.0, "delay": 1.0}}))
	require.NoError(t, k.Connect(vmn, nrn, ConnSpec{}, SynSpec{}))
	require.NoError(t, k.Connect(sgn, srn, ConnSpec{}, SynSpec{}))
	require.NoError(t, k.Simulate(context.Background(), 30))

	vm, err := k.Voltmeter(vmn)
	require.NoError(t, err)
	ev := vm.Events()
	require.Equal(t, 300, ev.Len())
	// sample i is at (i+1) * 0.1 msec
	assert.InDelta(t, -70.0, ev.Vm[108], difTol)
	assert.InDelta(t, -65.0, ev.Vm[109], difTol)
	assert.InDelta(t, -70+5*math.Exp(-0.1), ev.Vm[119], difTol)

	sr, err := k.SpikeRecorder(srn)
	require.NoError(t, err)
	se := sr.Events()
	require.Equal(t, 2, se.Len())
	assert.InDelta(t, 10.0, se.Times[0], 1e-9)
	assert.InDelta(t, 20.0, se.Times[1], 1e-9)
	assert.Equal(t, []int{sgn.At(0), sgn.At(0)}, se.Senders)
}

func TestDCGenerator(t *testing.T) {
	k := NewKernel()
	dcn, err := k.Create(DCGeneratorModel, 1, Params{"amplitude": 100.0})
	require.NoError(t, err)
	nrn, err := k.Create(IafPscDeltaModel, 2, nil)
	require.NoError(t, err)
	require.NoError(t, k.Connect(dcn, nrn.Slice(0, 1), ConnSpec{}, SynSpec{Params: Params{"delay": 0.1}}))
	require.NoError(t, k.Simulate(context.Background(), 200))

	sts, err := k.GetStatus(nrn)
	require.NoError(t, err)
	assert.InDelta(t, -66.0, sts[0]["V_m"].(float64), 1e-3)
	assert.InDelta(t, -70.0, sts[1]["V_m"].(float64), 1e-9)
}

func TestRefractoryInput(t *testing.T) {
	run := func(refrIn bool) float64 {
		k := NewKernel()
		sgn, err := k.Create(SpikeGeneratorModel, 1, Params{"spike_times": []float64{1.0, 2.0}})
		require.NoError(t, err)
		nrn, err := k.Create(IafPscDeltaModel, 1, Params{"refractory_input": refrIn, "t_ref": 5.0, "V_th": -69.0})
		require.NoError(t, err)
		require.NoError(t, k.Connect(sgn, nrn, ConnSpec{}, SynSpec{Params: Params{"weight": 2.0, "delay": 0.1}}))
		require.NoError(t, k.Simulate(context.Background(), 10))
		sts, err := k.GetStatus(nrn)
		require.NoError(t, err)
		return sts[0]["V_m"].(float64)
	}
	// the first spike fires the neuron, the second arrives while refractory
	without := run(false)
	with := run(true)
	assert.InDelta(t, -70.0, without, difTol)
	assert.Greater(t, with, without)
}

// smallNet simulates a small randomly connected network driven by
// Poisson input and returns its spikes.
func smallNet(t *testing.T, seed uint64, nvp int) Events {
	k := NewKernel()
	require.NoError(t, k.SetKernelStatus(Params{"rng_seed": seed, "total_num_virtual_procs": nvp}))
	nrn, err := k.Create(IafPscDeltaModel, 40, Params{"C_m": 1.0, "tau_m": 20.0, "t_ref": 2.0, "E_L": 0.0, "V_reset": 10.0, "V_m": 0.0, "V_th": 20.0})
	require.NoError(t, err)
	pg, err := k.Create(PoissonGeneratorModel, 1, Params{"rate": 20000.0})
	require.NoError(t, err)
	srn, err := k.Create(SpikeRecorderModel, 1, nil)
	require.NoError(t, err)
	require.NoError(t, k.Connect(pg, nrn, ConnSpec{}, SynSpec{Params: Params{"weight": 0.1, "delay": 1.5}}))
	require.NoError(t, k.Connect(nrn, nrn, ConnSpec{Rule: FixedIndegree, Indegree: 4}, SynSpec{Params: Params{"weight": -0.3, "delay": 1.5}}))
	require.NoError(t, k.Connect(nrn, srn, ConnSpec{}, SynSpec{}))
	require.NoError(t, k.Simulate(context.Background(), 100))
	require.NoError(t, k.Simulate(context.Background(), 100))
	sr, err := k.SpikeRecorder(srn)
	require.NoError(t, err)
	return sr.Events()
}

func TestReproducible(t *testing.T) {
	for _, nvp := range []int{1, 3} {
		a := smallNet(t, 42, nvp)
		b := smallNet(t, 42, nvp)
		require.Greater(t, a.Len(), 40, "network should fire, vps %d", nvp)
		assert.Equal(t, a.Senders, b.Senders)
		assert.Equal(t, a.Times, b.Times)
		for i := 1; i < a.Len(); i++ {
			assert.LessOrEqual(t, a.Times[i-1], a.Times[i])
		}
	}
	c := smallNet(t, 43, 1)
	a := smallNet(t, 42, 1)
	assert.NotEqual(t, a.Times, c.Times)
}

func TestSimulateErrors(t *testing.T) {
	k := NewKernel()
	assert.ErrorIs(t, k.Simulate(context.Background(), 0.05), ErrNotSimulatable)
	assert.ErrorIs(t, k.Simulate(context.Background(), -1), ErrNotSimulatable)
	assert.NoError(t, k.Simulate(context.Background(), 0))

	_, err := k.Create(IafPscDeltaModel, 3, nil)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, k.Simulate(ctx, 10), context.Canceled)

	// the virtual process workers stop on their own with the context error
	require.NoError(t, k.prepare())
	assert.ErrorIs(t, k.updateSlice(ctx, k.step, k.step+1), context.Canceled)
}
