// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pointnet

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKernelStatus(t *testing.T) {
	k := NewKernel()
	st := k.GetKernelStatus()
	assert.Equal(t, 0.1, st["resolution"])
	assert.Equal(t, 1, st["total_num_virtual_procs"])
	assert.Equal(t, 0, st["network_size"])

	require.NoError(t, k.SetKernelStatus(Params{"resolution": 0.05, "print_time": true}))
	assert.Equal(t, 0.05, k.Resolution)
	assert.True(t, k.PrintTime)
	assert.ErrorIs(t, k.SetKernelStatus(Params{"resolution": -1.0}), ErrBadParam)
	assert.ErrorIs(t, k.SetKernelStatus(Params{"no_such": 1}), ErrBadParam)

	_, err := k.Create(IafPscDeltaModel, 2, nil)
	require.NoError(t, err)
	assert.ErrorIs(t, k.SetKernelStatus(Params{"resolution": 0.1}), ErrLocked)
	assert.ErrorIs(t, k.SetKernelStatus(Params{"total_num_virtual_procs": 2}), ErrLocked)
	require.NoError(t, k.SetKernelStatus(Params{"rng_seed": 7}))
	assert.Equal(t, uint64(7), k.RngSeed)

	require.NoError(t, k.Simulate(context.Background(), 5))
	st = k.GetKernelStatus()
	assert.InDelta(t, 5.0, st["biological_time"].(float64), 1e-9)
	assert.Equal(t, 2, st["network_size"])

	require.NoError(t, k.ResetKernel())
	assert.Equal(t, 0.1, k.Resolution)
	assert.Equal(t, 0, k.NetworkSize())
	assert.Equal(t, 0.0, k.Time())
}

// drivenVm simulates two Poisson driven neurons on two virtual processes
// for 20 msec, optionally changing rng_seed half way, and returns V_m.
func drivenVm(t *testing.T, reseed bool) []float64 {
	k := NewKernel()
	require.NoError(t, k.SetKernelStatus(Params{"total_num_virtual_procs": 2}))
	nrn, err := k.Create(IafPscDeltaModel, 2, nil)
	require.NoError(t, err)
	pg, err := k.Create(PoissonGeneratorModel, 1, Params{"rate": 10000.0})
	require.NoError(t, err)
	require.NoError(t, k.Connect(pg, nrn, ConnSpec{}, SynSpec{Params: Params{"weight": 0.1}}))
	require.NoError(t, k.Simulate(context.Background(), 10))
	if reseed {
		require.NoError(t, k.SetKernelStatus(Params{"rng_seed": 7}))
	}
	require.NoError(t, k.Simulate(context.Background(), 10))
	sts, err := k.GetStatus(nrn)
	require.NoError(t, err)
	vm := make([]float64, len(sts))
	for i, st := range sts {
		vm[i] = st["V_m"].(float64)
	}
	return vm
}

func TestReseedAfterSimulate(t *testing.T) {
	same := drivenVm(t, false)
	assert.Equal(t, same, drivenVm(t, false))
	reseeded := drivenVm(t, true)
	assert.Len(t, reseeded, 2)
	assert.NotEqual(t, same, reseeded)
	assert.Equal(t, reseeded, drivenVm(t, true))
}

func TestModels(t *testing.T) {
	k := NewKernel()
	require.NoError(t, k.CopyModel(StaticSynapseModel, "excitatory", Params{"weight": 0.1, "delay": 1.5}))
	require.NoError(t, k.CopyModel("excitatory", "inhibitory", Params{"weight": -0.5}))
	assert.ErrorIs(t, k.CopyModel(StaticSynapseModel, "excitatory", nil), ErrModelExists)
	assert.ErrorIs(t, k.CopyModel("nope", "x", nil), ErrUnknownModel)
	assert.ErrorIs(t, k.CopyModel(StaticSynapseModel, "y", Params{"wieght": 1.0}), ErrBadParam)
	assert.Contains(t, k.Models(), "excitatory")
	assert.Contains(t, k.Models(), IafPscDeltaModel)

	df, err := k.GetDefaults("inhibitory")
	require.NoError(t, err)
	assert.Equal(t, -0.5, df["weight"])
	assert.Equal(t, 1.5, df["delay"])
	assert.Equal(t, 0, df["num_connections"])
	kind, err := k.ModelKind("inhibitory")
	require.NoError(t, err)
	assert.Equal(t, SynapseModel, kind)

	require.NoError(t, k.SetDefaults(IafPscDeltaModel, Params{"V_th": -50.0}))
	assert.ErrorIs(t, k.SetDefaults(IafPscDeltaModel, Params{"V_reset": -40.0}), ErrBadParam)
	nrn, err := k.Create(IafPscDeltaModel, 3, Params{"tau_m": 20.0})
	require.NoError(t, err)
	sts, err := k.GetStatus(nrn)
	require.NoError(t, err)
	require.Len(t, sts, 3)
	assert.Equal(t, -50.0, sts[0]["V_th"])
	assert.Equal(t, 20.0, sts[2]["tau_m"])
	assert.Equal(t, IafPscDeltaModel, sts[1]["model"])
	assert.Equal(t, 2, sts[1]["global_id"])

	require.NoError(t, k.Connect(nrn, nrn, ConnSpec{}, SynSpec{Model: "excitatory"}))
	require.NoError(t, k.Connect(nrn, nrn, ConnSpec{Rule: OneToOne}, SynSpec{Model: "inhibitory"}))
	assert.Equal(t, 9, numConns(t, k, "excitatory"))
	assert.Equal(t, 3, numConns(t, k, "inhibitory"))
	assert.Equal(t, 0, numConns(t, k, StaticSynapseModel))
	assert.Equal(t, 12, k.NumConnections())

	_, err = k.Create(StaticSynapseModel, 1, nil)
	assert.ErrorIs(t, err, ErrBadParam)
	_, err = k.Create(IafPscDeltaModel, 0, nil)
	assert.ErrorIs(t, err, ErrBadParam)
	_, err = k.Create(IafPscDeltaModel, 1, Params{"C_m": -1.0})
	assert.ErrorIs(t, err, ErrBadParam)
	_, err = k.Create(VoltmeterModel, 1, Params{"interval": 0.15})
	assert.ErrorIs(t, err, ErrBadParam)
}

func TestSetStatus(t *testing.T) {
	k := NewKernel()
	nrn, err := k.Create(IafPscDeltaModel, 2, nil)
	require.NoError(t, err)
	require.NoError(t, k.SetStatus(nrn, Params{"V_m": -60.0}))
	sts, err := k.GetStatus(nrn)
	require.NoError(t, err)
	assert.InDelta(t, -60.0, sts[1]["V_m"].(float64), 1e-9)
	assert.ErrorIs(t, k.SetStatus(nrn, Params{"V_x": 1.0}), ErrBadParam)
	assert.ErrorIs(t, k.SetStatus(nrn, Params{"V_reset": 0.0}), ErrBadParam)

	sgn, err := k.Create(SpikeGeneratorModel, 1, Params{"spike_times": []float64{1, 2}})
	require.NoError(t, err)
	srn, err := k.Create(SpikeRecorderModel, 1, nil)
	require.NoError(t, err)
	require.NoError(t, k.Connect(sgn, srn, ConnSpec{}, SynSpec{}))
	assert.ErrorIs(t, k.SetStatus(sgn, Params{"spike_times": []float64{2, 1}}), ErrBadParam)
	require.NoError(t, k.Simulate(context.Background(), 5))
	sr, err := k.SpikeRecorder(srn)
	require.NoError(t, err)
	assert.Equal(t, 2, sr.NEvents())
	assert.ErrorIs(t, k.SetStatus(srn, Params{"n_events": 5}), ErrBadParam)
	require.NoError(t, k.SetStatus(srn, Params{"n_events": 0}))
	assert.Equal(t, 0, sr.NEvents())
	require.NoError(t, k.SetStatus(srn, Params{"n_events": uint64(0)}))
	require.NoError(t, k.SetStatus(srn, Params{"n_events": float32(0)}))
	assert.ErrorIs(t, k.SetStatus(srn, Params{"n_events": uint64(2)}), ErrBadParam)
	ev := sr.Events()
	assert.Equal(t, 0, ev.Len())

	_, err = k.Create(PoissonGeneratorModel, 1, Params{"rate": math.NaN()})
	assert.ErrorIs(t, err, ErrBadParam)
	_, err = k.Create(PoissonGeneratorModel, 1, Params{"rate": math.Inf(1)})
	assert.ErrorIs(t, err, ErrBadParam)

	_, err = k.SpikeRecorder(nrn)
	assert.ErrorIs(t, err, ErrBadNodes)
	_, err = k.Voltmeter(srn)
	assert.ErrorIs(t, err, ErrBadNodes)
}

func TestNodeCollection(t *testing.T) {
	k := NewKernel()
	a, err := k.Create(IafPscDeltaModel, 4, nil)
	require.NoError(t, err)
	b, err := k.Create(IafPscDeltaModel, 2, nil)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4}, a.IDs())
	assert.Equal(t, []int{5, 6}, b.IDs())
	ab := a.Add(b)
	assert.Equal(t, 6, ab.Len())
	assert.Equal(t, []int{2, 3}, ab.Slice(1, 3).IDs())
	assert.Equal(t, 0, ab.Slice(4, 2).Len())
	assert.Equal(t, "NodeCollection(size=6, first=1, last=6)", ab.String())
	assert.Equal(t, "NodeCollection(size=0)", NodeCollection{}.String())
}

func TestRecordASCII(t *testing.T) {
	dir := t.TempDir()
	build := func() (*Kernel, NodeCollection) {
		k := NewKernel()
		require.NoError(t, k.SetKernelStatus(Params{"data_path": dir, "data_prefix": "run_"}))
		sgn, err := k.Create(SpikeGeneratorModel, 1, Params{"spike_times": []float64{1, 2, 3}})
		require.NoError(t, err)
		srn, err := k.Create(SpikeRecorderModel, 1, Params{"record_to": "ascii", "label": "spk"})
		require.NoError(t, err)
		require.NoError(t, k.Connect(sgn, srn, ConnSpec{}, SynSpec{}))
		return k, srn
	}
	k, srn := build()
	require.NoError(t, k.Simulate(context.Background(), 10))
	sr, err := k.SpikeRecorder(srn)
	require.NoError(t, err)
	assert.Equal(t, 3, sr.NEvents())
	ev := sr.Events()
	assert.Equal(t, 0, ev.Len())
	sts, err := k.GetStatus(srn)
	require.NoError(t, err)
	assert.Equal(t, RecordASCII, sts[0]["record_to"])
	require.NoError(t, k.Close())

	b, err := os.ReadFile(filepath.Join(dir, "run_spk-2.dat"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	assert.Equal(t, []string{"sender\ttime_ms", "1\t1.000", "1\t2.000", "1\t3.000"}, lines)

	k2, _ := build()
	assert.ErrorIs(t, k2.Simulate(context.Background(), 10), ErrFileExists)
	require.NoError(t, k2.SetKernelStatus(Params{"overwrite_files": true}))
	require.NoError(t, k2.Simulate(context.Background(), 10))
	require.NoError(t, k2.Close())
}

func TestRecordSQLite(t *testing.T) {
	k := NewKernel()
	require.NoError(t, k.SetKernelStatus(Params{"data_path": t.TempDir()}))
	sgn, err := k.Create(SpikeGeneratorModel, 2, Params{"spike_times": []float64{1.5, 2.5}})
	require.NoError(t, err)
	srn, err := k.Create(SpikeRecorderModel, 1, Params{"record_to": "sqlite", "start": 2.0})
	require.NoError(t, err)
	require.NoError(t, k.Connect(sgn, srn, ConnSpec{}, SynSpec{}))
	require.NoError(t, k.Simulate(context.Background(), 5))
	sr, err := k.SpikeRecorder(srn)
	require.NoError(t, err)
	assert.Equal(t, 2, sr.NEvents())

	ev, err := k.ReadSpikes(sr.ID())
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, ev.Senders)
	require.Len(t, ev.Times, 2)
	assert.InDelta(t, 2.5, ev.Times[0], 1e-9)
	assert.InDelta(t, 2.5, ev.Times[1], 1e-9)
	assert.NotEmpty(t, k.RunID())
	require.NoError(t, k.Close())
}

func TestIafCalibrate(t *testing.T) {
	nr := &IafPscDelta{}
	nr.Defaults()
	nr.Calibrate(0.1)
	assert.InDelta(t, math.Exp(-0.01), float64(nr.p33), 1e-6)
	assert.InDelta(t, 10.0/250*(1-math.Exp(-0.01)), float64(nr.p30), 1e-9)
	assert.Equal(t, 20, nr.refSteps)
	assert.InDelta(t, -70.0, nr.VmAbs(), 1e-9)
	assert.True(t, math.IsInf(float64(nr.vmin), -1))
}
