// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pointnet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// indegrees counts synaptic connections per target global id
func indegrees(k *Kernel) map[int]int {
	in := map[int]int{}
	for _, cs := range k.conns {
		for _, c := range cs {
			in[int(c.tgt)+1]++
		}
	}
	return in
}

func numConns(t *testing.T, k *Kernel, syn string) int {
	df, err := k.GetDefaults(syn)
	require.NoError(t, err)
	return df["num_connections"].(int)
}

func twoPops(t *testing.T) (*Kernel, NodeCollection, NodeCollection) {
	k := NewKernel()
	a, err := k.Create(IafPscDeltaModel, 10, nil)
	require.NoError(t, err)
	b, err := k.Create(IafPscDeltaModel, 20, nil)
	require.NoError(t, err)
	return k, a, b
}

func TestAllToAll(t *testing.T) {
	k, a, b := twoPops(t)
	require.NoError(t, k.Connect(a, b, ConnSpec{}, SynSpec{}))
	assert.Equal(t, 200, numConns(t, k, StaticSynapseModel))
	assert.Equal(t, 200, k.NumConnections())
	in := indegrees(k)
	for _, id := range b.IDs() {
		assert.Equal(t, 10, in[id])
	}
	require.NoError(t, k.Connect(a, a, ConnSpec{NoAutapses: true}, SynSpec{}))
	assert.Equal(t, 290, k.NumConnections())
	assert.Equal(t, 290, k.GetKernelStatus()["num_connections"])
}

func TestOneToOne(t *testing.T) {
	k, a, b := twoPops(t)
	assert.ErrorIs(t, k.Connect(a, b, ConnSpec{Rule: OneToOne}, SynSpec{}), ErrBadRule)
	require.NoError(t, k.Connect(a, b.Slice(5, 15), ConnSpec{Rule: OneToOne}, SynSpec{}))
	in := indegrees(k)
	assert.Len(t, in, 10)
	for i := 0; i < 10; i++ {
		assert.Equal(t, 1, in[b.At(5+i)])
		assert.Equal(t, int32(b.At(5+i)-1), k.conns[a.At(i)-1][0].tgt)
	}
}

func TestFixedIndegree(t *testing.T) {
	k, a, b := twoPops(t)
	require.NoError(t, k.Connect(a, b, ConnSpec{Rule: FixedIndegree, Indegree: 3}, SynSpec{}))
	in := indegrees(k)
	for _, id := range b.IDs() {
		assert.Equal(t, 3, in[id])
	}
	assert.Equal(t, 60, k.NumConnections())
	assert.ErrorIs(t, k.Connect(a, b, ConnSpec{Rule: FixedIndegree, Indegree: 11, NoMultapses: true}, SynSpec{}), ErrBadRule)

	k2, a2, _ := twoPops(t)
	require.NoError(t, k2.Connect(a2, a2, ConnSpec{Rule: FixedIndegree, Indegree: 9, NoAutapses: true, NoMultapses: true}, SynSpec{}))
	for si, cs := range k2.conns {
		for _, c := range cs {
			assert.NotEqual(t, int32(si), c.tgt)
		}
	}
	in = indegrees(k2)
	for _, id := range a2.IDs() {
		assert.Equal(t, 9, in[id])
	}
}

func TestFixedOutdegree(t *testing.T) {
	k, a, b := twoPops(t)
	require.NoError(t, k.Connect(a, b, ConnSpec{Rule: FixedOutdegree, Outdegree: 4, NoMultapses: true}, SynSpec{}))
	for _, id := range a.IDs() {
		cs := k.conns[id-1]
		require.Len(t, cs, 4)
		seen := map[int32]bool{}
		for _, c := range cs {
			assert.False(t, seen[c.tgt])
			seen[c.tgt] = true
		}
	}
}

func TestFixedTotalNumberAndBernoulli(t *testing.T) {
	k, a, b := twoPops(t)
	require.NoError(t, k.Connect(a, b, ConnSpec{Rule: FixedTotalNumber, N: 50}, SynSpec{}))
	assert.Equal(t, 50, k.NumConnections())
	assert.ErrorIs(t, k.Connect(a, b, ConnSpec{Rule: FixedTotalNumber, N: 201, NoMultapses: true}, SynSpec{}), ErrBadRule)

	require.NoError(t, k.Connect(a, b, ConnSpec{Rule: PairwiseBernoulli, P: 1}, SynSpec{}))
	assert.Equal(t, 250, k.NumConnections())
	require.NoError(t, k.Connect(a, b, ConnSpec{Rule: PairwiseBernoulli, P: 0}, SynSpec{}))
	assert.Equal(t, 250, k.NumConnections())
	assert.ErrorIs(t, k.Connect(a, b, ConnSpec{Rule: PairwiseBernoulli, P: 1.5}, SynSpec{}), ErrBadRule)
}

func TestConnectRouting(t *testing.T) {
	k, a, _ := twoPops(t)
	srn, err := k.Create(SpikeRecorderModel, 1, nil)
	require.NoError(t, err)
	pg, err := k.Create(PoissonGeneratorModel, 1, nil)
	require.NoError(t, err)
	assert.ErrorIs(t, k.Connect(srn, a, ConnSpec{}, SynSpec{}), ErrBadConnection)
	assert.ErrorIs(t, k.Connect(a, pg, ConnSpec{}, SynSpec{}), ErrBadConnection)
	assert.ErrorIs(t, k.Connect(a, a, ConnSpec{}, SynSpec{Params: Params{"delay": 0.05}}), ErrBadDelay)
	assert.ErrorIs(t, k.Connect(a, a, ConnSpec{}, SynSpec{Params: Params{"delay": 0.15}}), ErrBadDelay)
	assert.ErrorIs(t, k.Connect(a, a, ConnSpec{}, SynSpec{Model: IafPscDeltaModel}), ErrBadParam)
	assert.ErrorIs(t, k.Connect(a, a, ConnSpec{}, SynSpec{Model: "nope"}), ErrUnknownModel)
	assert.ErrorIs(t, k.Connect(a, NewNodeCollection(99), ConnSpec{}, SynSpec{}), ErrBadNodes)

	require.NoError(t, k.Connect(pg, a, ConnSpec{}, SynSpec{}))
	require.NoError(t, k.Connect(a, srn, ConnSpec{}, SynSpec{}))
	for _, id := range a.IDs() {
		nd := k.nodes[id-1]
		assert.Len(t, nd.drives, 1)
		assert.Len(t, nd.recorders, 1)
	}
	assert.Equal(t, 20, k.NumConnections())
	assert.Positive(t, int64(k.ConnectionMemory()))
}

func TestParseConnRule(t *testing.T) {
	cr, err := ParseConnRule("fixed_indegree")
	require.NoError(t, err)
	assert.Equal(t, FixedIndegree, cr)
	cr, err = ParseConnRule("PairwiseBernoulli")
	require.NoError(t, err)
	assert.Equal(t, PairwiseBernoulli, cr)
	assert.Equal(t, "one_to_one", OneToOne.RuleName())
	_, err = ParseConnRule("random")
	assert.ErrorIs(t, err, ErrBadRule)
}
