// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pointnet

import (
	"fmt"
	"math"
	"unsafe"

	"github.com/c2h5oh/datasize"
)

// ConnSpec specifies how pre and post nodes are connected.
// The zero value is all_to_all with autapses and multapses allowed.
type ConnSpec struct {
	Rule ConnRule `desc:"connection rule"`

	Indegree int `desc:"number of sources per post node, for FixedIndegree"`

	Outdegree int `desc:"number of targets per pre node, for FixedOutdegree"`

	N int `desc:"total number of connections, for FixedTotalNumber"`

	P float64 `desc:"connection probability, for PairwiseBernoulli"`

	NoAutapses bool `desc:"disallow connections from a node to itself (allow_autapses = false)"`

	NoMultapses bool `desc:"disallow more than one connection between the same pair (allow_multapses = false)"`
}

// SynSpec specifies the synapse model and parameter overrides of
// connections.  An empty Model means static_synapse.
type SynSpec struct {
	Model  string
	Params Params
}

// conn is a synaptic connection to a neuron, stored with its source
type conn struct {
	tgt    int32
	delay  int32
	weight float32
}

// Connect connects pre to post nodes following the rule in cs, with
// synapses of the model in ss.  Supported routes are spike sources
// (neurons and spike generators) to neurons and to spike recorders,
// poisson and dc generators to neurons, and voltmeters to neurons.
func (k *Kernel) Connect(pre, post NodeCollection, cs ConnSpec, ss SynSpec) error {
	sm := ss.Model
	if sm == "" {
		sm = StaticSynapseModel
	}
	m, err := k.model(sm)
	if err != nil {
		return err
	}
	if m.kind != SynapseModel {
		return fmt.Errorf("%w: %q is not a synapse model", ErrBadParam, sm)
	}
	p, err := m.params(ss.Params)
	if err != nil {
		return err
	}
	sp := p.(*SynParams)
	d := int(math.Round(sp.Delay / k.Resolution))
	if d < 1 || math.Abs(float64(d)*k.Resolution-sp.Delay) > 1e-6*k.Resolution {
		return fmt.Errorf("%w: delay %g must be a positive multiple of the resolution %g", ErrBadDelay, sp.Delay, k.Resolution)
	}
	if d > math.MaxInt32 {
		return fmt.Errorf("%w: delay %g too long", ErrBadDelay, sp.Delay)
	}
	preN, err := k.nodesOf(pre)
	if err != nil {
		return err
	}
	postN, err := k.nodesOf(post)
	if err != nil {
		return err
	}
	w := float32(sp.Weight)
	n := 0
	err = k.pairs(preN, postN, cs, func(src, tgt *node) error {
		if err := k.connectPair(src, tgt, w, d); err != nil {
			return err
		}
		n++
		return nil
	})
	m.numConns += n
	k.numConns += n
	k.prepared = false
	if err != nil {
		return err
	}
	k.Log.Debug("connected", "rule", cs.Rule.RuleName(), "synapse", sm, "n", n)
	return nil
}

func (k *Kernel) nodesOf(nc NodeCollection) ([]*node, error) {
	if nc.Len() == 0 {
		return nil, fmt.Errorf("%w: empty collection", ErrBadNodes)
	}
	nds := make([]*node, nc.Len())
	for i, id := range nc.ids {
		nd, err := k.node(id)
		if err != nil {
			return nil, err
		}
		nds[i] = nd
	}
	return nds, nil
}

// connectPair routes one connection according to the node kinds
func (k *Kernel) connectPair(src, tgt *node, w float32, d int) error {
	switch {
	case src.emitsSpikes() && tgt.nrn != nil:
		k.conns[src.idx] = append(k.conns[src.idx], conn{tgt: int32(tgt.idx), delay: int32(d), weight: w})
	case src.emitsSpikes() && tgt.sr != nil:
		src.recorders = append(src.recorders, tgt.sr)
	case src.pg != nil && tgt.nrn != nil:
		tgt.drives = append(tgt.drives, drive{gen: src.pg, weight: w, delay: d})
	case src.dc != nil && tgt.nrn != nil:
		tgt.currents = append(tgt.currents, currentIn{gen: src.dc, weight: w, delay: d})
	case src.vm != nil && tgt.nrn != nil:
		ml := &meterLink{vm: src.vm, sender: tgt.id()}
		tgt.meters = append(tgt.meters, ml)
		src.vm.links = append(src.vm.links, ml)
	default:
		return fmt.Errorf("%w: %s (%d) -> %s (%d)", ErrBadConnection, src.model, src.id(), tgt.model, tgt.id())
	}
	return nil
}

// pairs generates the source, target pairs of the rule
func (k *Kernel) pairs(pre, post []*node, cs ConnSpec, fn func(src, tgt *node) error) error {
	rng := k.connRng
	switch cs.Rule {
	case AllToAll:
		for _, tgt := range post {
			for _, src := range pre {
				if cs.NoAutapses && src == tgt {
					continue
				}
				if err := fn(src, tgt); err != nil {
					return err
				}
			}
		}
	case OneToOne:
		if len(pre) != len(post) {
			return fmt.Errorf("%w: one_to_one needs equal sizes, have %d and %d", ErrBadRule, len(pre), len(post))
		}
		for i, src := range pre {
			if cs.NoAutapses && src == post[i] {
				continue
			}
			if err := fn(src, post[i]); err != nil {
				return err
			}
		}
	case FixedIndegree:
		return k.fixedDegree(post, pre, cs.Indegree, cs, func(fixed, drawn *node) error { return fn(drawn, fixed) })
	case FixedOutdegree:
		return k.fixedDegree(pre, post, cs.Outdegree, cs, fn)
	case FixedTotalNumber:
		if cs.N < 0 {
			return fmt.Errorf("%w: fixed_total_number needs N >= 0", ErrBadRule)
		}
		if cs.NoMultapses && cs.N > len(pre)*len(post) {
			return fmt.Errorf("%w: cannot draw %d distinct pairs from %d x %d nodes", ErrBadRule, cs.N, len(pre), len(post))
		}
		type pair struct{ s, t int }
		var seen map[pair]bool
		if cs.NoMultapses {
			seen = make(map[pair]bool, cs.N)
		}
		for made, tries := 0, 0; made < cs.N; tries++ {
			if tries > 1000*(cs.N+1) {
				return fmt.Errorf("%w: could not draw %d pairs", ErrBadRule, cs.N)
			}
			src := pre[rng.Intn(len(pre))]
			tgt := post[rng.Intn(len(post))]
			if cs.NoAutapses && src == tgt {
				continue
			}
			if seen != nil {
				pr := pair{src.idx, tgt.idx}
				if seen[pr] {
					continue
				}
				seen[pr] = true
			}
			if err := fn(src, tgt); err != nil {
				return err
			}
			made++
		}
	case PairwiseBernoulli:
		if cs.P < 0 || cs.P > 1 {
			return fmt.Errorf("%w: pairwise_bernoulli needs 0 <= p <= 1, have %g", ErrBadRule, cs.P)
		}
		for _, tgt := range post {
			for _, src := range pre {
				if cs.NoAutapses && src == tgt {
					continue
				}
				if rng.Float64() >= cs.P {
					continue
				}
				if err := fn(src, tgt); err != nil {
					return err
				}
			}
		}
	default:
		return fmt.Errorf("%w: %v", ErrBadRule, cs.Rule)
	}
	return nil
}

// fixedDegree connects each fixed node to deg nodes drawn from pool
func (k *Kernel) fixedDegree(fixed, pool []*node, deg int, cs ConnSpec, fn func(fixed, drawn *node) error) error {
	if deg < 0 {
		return fmt.Errorf("%w: %s needs a degree >= 0", ErrBadRule, cs.Rule.RuleName())
	}
	rng := k.connRng
	var seen map[int]bool
	if cs.NoMultapses {
		seen = make(map[int]bool, deg)
	}
	for _, fx := range fixed {
		avail := len(pool)
		if cs.NoAutapses && inPool(pool, fx) {
			avail--
		}
		if avail == 0 && deg > 0 {
			return fmt.Errorf("%w: no nodes to draw from for node %d", ErrBadRule, fx.id())
		}
		if cs.NoMultapses && deg > avail {
			return fmt.Errorf("%w: %s of %d exceeds the %d available nodes", ErrBadRule, cs.Rule.RuleName(), deg, avail)
		}
		for key := range seen {
			delete(seen, key)
		}
		for made := 0; made < deg; {
			dr := pool[rng.Intn(len(pool))]
			if cs.NoAutapses && dr == fx {
				continue
			}
			if seen != nil {
				if seen[dr.idx] {
					continue
				}
				seen[dr.idx] = true
			}
			if err := fn(fx, dr); err != nil {
				return err
			}
			made++
		}
	}
	return nil
}

func inPool(pool []*node, nd *node) bool {
	for _, p := range pool {
		if p == nd {
			return true
		}
	}
	return false
}

// NumConnections returns the total number of connections made
func (k *Kernel) NumConnections() int {
	return k.numConns
}

// ConnectionMemory estimates the memory used by synaptic connections
func (k *Kernel) ConnectionMemory() datasize.ByteSize {
	n := 0
	for _, cs := range k.conns {
		n += len(cs)
	}
	for _, nd := range k.nodes {
		n += len(nd.drives) + len(nd.currents)
	}
	return datasize.ByteSize(uint64(n) * uint64(unsafe.Sizeof(conn{})))
}
