// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pointnet

import (
	"fmt"
	"reflect"
)

// NodeCollection is an ordered set of global node ids (1-based)
type NodeCollection struct {
	ids []int
}

// NewNodeCollection returns a collection of the given ids
func NewNodeCollection(ids ...int) NodeCollection {
	return NodeCollection{ids: append([]int(nil), ids...)}
}

func rangeCollection(first, n int) NodeCollection {
	ids := make([]int, n)
	for i := range ids {
		ids[i] = first + i
	}
	return NodeCollection{ids: ids}
}

// Len returns the number of nodes
func (nc NodeCollection) Len() int {
	return len(nc.ids)
}

// IDs returns the global ids; the slice must not be modified
func (nc NodeCollection) IDs() []int {
	return nc.ids
}

// At returns the i-th global id
func (nc NodeCollection) At(i int) int {
	return nc.ids[i]
}

// Slice returns the nodes with positions in [start, end)
func (nc NodeCollection) Slice(start, end int) NodeCollection {
	if start < 0 {
		start = 0
	}
	if end > len(nc.ids) {
		end = len(nc.ids)
	}
	if start >= end {
		return NodeCollection{}
	}
	return NodeCollection{ids: append([]int(nil), nc.ids[start:end]...)}
}

// Add returns the concatenation of the two collections
func (nc NodeCollection) Add(oc NodeCollection) NodeCollection {
	ids := make([]int, 0, len(nc.ids)+len(oc.ids))
	ids = append(ids, nc.ids...)
	ids = append(ids, oc.ids...)
	return NodeCollection{ids: ids}
}

func (nc NodeCollection) String() string {
	if len(nc.ids) == 0 {
		return "NodeCollection(size=0)"
	}
	return fmt.Sprintf("NodeCollection(size=%d, first=%d, last=%d)", len(nc.ids), nc.ids[0], nc.ids[len(nc.ids)-1])
}

//////////////////////////////////////////////////////////////////////////////////////
//  node

// node is one element of the network; exactly one of the model
// pointers is set.
type node struct {
	idx   int
	model string
	kind  ModelKind
	vp    int

	nrn *IafPscDelta
	pg  *PoissonGen
	sg  *SpikeGen
	dc  *DCGen
	sr  *SpikeRecorder
	vm  *Voltmeter

	spikeBuf  []float32 `desc:"ring buffer of summed spike input per step"`
	curBuf    []float32 `desc:"ring buffer of input current per step"`
	drives    []drive
	currents  []currentIn
	recorders []*SpikeRecorder
	meters    []*meterLink
}

// id returns the global id
func (nd *node) id() int {
	return nd.idx + 1
}

// emitsSpikes reports whether the node sends spike events
func (nd *node) emitsSpikes() bool {
	return nd.nrn != nil || nd.sg != nil
}

// drive is a poisson_generator input to one neuron
type drive struct {
	gen    *PoissonGen
	weight float32
	delay  int
}

// currentIn is a dc_generator input to one neuron
type currentIn struct {
	gen    *DCGen
	weight float32
	delay  int
}

func (k *Kernel) newNode(m *model, p validator) *node {
	nd := &node{idx: len(k.nodes), model: m.name, kind: m.kind}
	nd.vp = nd.id() % k.NumVP
	switch pt := p.(type) {
	case *IafParams:
		nd.nrn = &IafPscDelta{IafParams: *pt}
		nd.nrn.Calibrate(k.Resolution)
	case *PoissonParams:
		nd.pg = &PoissonGen{PoissonParams: *pt}
	case *SpikeGenParams:
		sp := *pt
		sp.SpikeTimes = append([]float64(nil), pt.SpikeTimes...)
		nd.sg = &SpikeGen{SpikeGenParams: sp}
	case *DCParams:
		nd.dc = &DCGen{DCParams: *pt}
	case *RecorderParams:
		nd.sr = &SpikeRecorder{RecorderParams: *pt, id: nd.id()}
	case *VoltmeterParams:
		vp := *pt
		vp.RecordFrom = append([]string(nil), pt.RecordFrom...)
		nd.vm = &Voltmeter{VoltmeterParams: vp, id: nd.id()}
	}
	return nd
}

// Create makes n nodes of the named model, with params overriding the
// model defaults, and returns their collection.
func (k *Kernel) Create(name string, n int, params Params) (NodeCollection, error) {
	m, err := k.model(name)
	if err != nil {
		return NodeCollection{}, err
	}
	if m.kind == SynapseModel {
		return NodeCollection{}, fmt.Errorf("%w: %q is a synapse model", ErrBadParam, name)
	}
	if n < 1 {
		return NodeCollection{}, fmt.Errorf("%w: cannot create %d nodes", ErrBadParam, n)
	}
	p, err := m.params(params)
	if err != nil {
		return NodeCollection{}, err
	}
	if vp, ok := p.(*VoltmeterParams); ok {
		if err := (&Voltmeter{VoltmeterParams: *vp}).calibrate(k.Resolution); err != nil {
			return NodeCollection{}, err
		}
	}
	first := len(k.nodes) + 1
	for i := 0; i < n; i++ {
		k.nodes = append(k.nodes, k.newNode(m, p))
		k.conns = append(k.conns, nil)
	}
	k.prepared = false
	k.Log.Debug("created nodes", "model", name, "n", n, "first", first)
	return rangeCollection(first, n), nil
}

// node returns the node with global id, or an error
func (k *Kernel) node(id int) (*node, error) {
	if id < 1 || id > len(k.nodes) {
		return nil, fmt.Errorf("%w: no node with id %d", ErrBadNodes, id)
	}
	return k.nodes[id-1], nil
}

// GetStatus returns the status dictionary of each node
func (k *Kernel) GetStatus(nc NodeCollection) ([]Params, error) {
	sts := make([]Params, 0, nc.Len())
	for _, id := range nc.ids {
		nd, err := k.node(id)
		if err != nil {
			return nil, err
		}
		var st Params
		switch {
		case nd.nrn != nil:
			st = encodeParams(nd.nrn.status())
		case nd.pg != nil:
			st = encodeParams(nd.pg.PoissonParams)
		case nd.sg != nil:
			st = encodeParams(nd.sg.SpikeGenParams)
		case nd.dc != nil:
			st = encodeParams(nd.dc.DCParams)
		case nd.sr != nil:
			st = encodeParams(nd.sr.RecorderParams)
		case nd.vm != nil:
			st = encodeParams(nd.vm.VoltmeterParams)
		}
		st["model"] = nd.model
		st["global_id"] = nd.id()
		st["vp"] = nd.vp
		st["element_type"] = nd.kind.String()
		sts = append(sts, st)
	}
	return sts, nil
}

// SetStatus applies params to each node.  The parameters are validated
// for every node before any is changed.
func (k *Kernel) SetStatus(nc NodeCollection, params Params) error {
	nds := make([]*node, nc.Len())
	for i, id := range nc.ids {
		nd, err := k.node(id)
		if err != nil {
			return err
		}
		nds[i] = nd
	}
	if n, ok := params["n_events"]; ok && !isZero(n) {
		return fmt.Errorf("%w: n_events can only be set to 0", ErrBadParam)
	}
	apply := make([]func(), 0, len(nds))
	for _, nd := range nds {
		var p validator
		switch {
		case nd.nrn != nil:
			st := nd.nrn.status()
			p = &st
		case nd.pg != nil:
			st := nd.pg.PoissonParams
			p = &st
		case nd.sg != nil:
			st := nd.sg.SpikeGenParams
			st.SpikeTimes = append([]float64(nil), st.SpikeTimes...)
			p = &st
		case nd.dc != nil:
			st := nd.dc.DCParams
			p = &st
		case nd.sr != nil:
			st := nd.sr.RecorderParams
			p = &st
		case nd.vm != nil:
			st := nd.vm.VoltmeterParams
			p = &st
		}
		if err := decodeParams(params, p); err != nil {
			return fmt.Errorf("node %d: %w", nd.id(), err)
		}
		if err := p.Validate(); err != nil {
			return fmt.Errorf("node %d: %w", nd.id(), err)
		}
		nd := nd
		apply = append(apply, func() { k.applyStatus(nd, p) })
	}
	if sr, ok := params["record_to"]; ok && k.prepared {
		return fmt.Errorf("%w: record_to %v cannot change after simulating", ErrLocked, sr)
	}
	for _, fn := range apply {
		fn()
	}
	k.prepared = false
	return nil
}

// isZero reports whether v is a zero value of any kind
func isZero(v any) bool {
	if v == nil {
		return true
	}
	return reflect.ValueOf(v).IsZero()
}

func (k *Kernel) applyStatus(nd *node, p validator) {
	switch pt := p.(type) {
	case *IafParams:
		nd.nrn.IafParams = *pt
		nd.nrn.Calibrate(k.Resolution)
	case *PoissonParams:
		nd.pg.PoissonParams = *pt
	case *SpikeGenParams:
		nd.sg.SpikeGenParams = *pt
	case *DCParams:
		nd.dc.DCParams = *pt
	case *RecorderParams:
		nd.sr.RecorderParams = *pt
		if pt.NEvents == 0 {
			nd.sr.events.reset()
		}
	case *VoltmeterParams:
		nd.vm.VoltmeterParams = *pt
		if pt.NEvents == 0 {
			nd.vm.events.reset()
		}
	}
}

// SpikeRecorder returns the spike recorder of a single-node collection
func (k *Kernel) SpikeRecorder(nc NodeCollection) (*SpikeRecorder, error) {
	if nc.Len() != 1 {
		return nil, fmt.Errorf("%w: need exactly one spike recorder, have %d nodes", ErrBadNodes, nc.Len())
	}
	nd, err := k.node(nc.At(0))
	if err != nil {
		return nil, err
	}
	if nd.sr == nil {
		return nil, fmt.Errorf("%w: node %d is a %s", ErrBadNodes, nd.id(), nd.model)
	}
	return nd.sr, nil
}

// Voltmeter returns the voltmeter of a single-node collection
func (k *Kernel) Voltmeter(nc NodeCollection) (*Voltmeter, error) {
	if nc.Len() != 1 {
		return nil, fmt.Errorf("%w: need exactly one voltmeter, have %d nodes", ErrBadNodes, nc.Len())
	}
	nd, err := k.node(nc.At(0))
	if err != nil {
		return nil, err
	}
	if nd.vm == nil {
		return nil, fmt.Errorf("%w: node %d is a %s", ErrBadNodes, nd.id(), nd.model)
	}
	return nd.vm, nil
}
