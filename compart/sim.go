// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package compart

import (
	"fmt"
	"math"
)

// dvEps is the voltage increment in mV used to linearize currents
const dvEps = 0.001

// Sim holds all of the sections, point processes, connections and
// recordings of one model, together with the global time state.
type Sim struct {
	T       float64 `inactive:"+" desc:"current simulation time in msec"`
	Dt      float64 `def:"0.025" min:"0" desc:"integration time step in msec"`
	Celsius float64 `def:"6.3" desc:"temperature in degrees celsius, scales channel kinetics"`
	Seed    uint64  `def:"1" desc:"seed for the random streams of NetStims"`

	sections []*Section
	pps      []PointProcess
	stims    []*NetStim
	cons     []*NetCon
	srcCons  map[EventSource][]*NetCon
	vecs     []*Vector
	queue    eventQueue

	step        int
	dirty       bool
	initialized bool

	// solver state, in Hines order: parents precede children
	nodes  []*Segment
	parent []int
	gax    []float64 // coupling conductance to parent node, uS
	cap    []float64 // membrane capacitance, nF
	aconv  []float64 // area conversion from mA/cm2 to nA
	ppNode []int
	diag   []float64
	rhs    []float64
	dv     []float64
}

// NewSim returns a new Sim with default parameters
func NewSim() *Sim {
	sm := &Sim{}
	sm.Defaults()
	return sm
}

func (sm *Sim) Defaults() {
	sm.Dt = 0.025
	sm.Celsius = 6.3
	sm.Seed = 1
	sm.srcCons = make(map[EventSource][]*NetCon)
}

// NewSection creates a new root section with default geometry
func (sm *Sim) NewSection(name string) *Section {
	sc := &Section{Name: name, sim: sm}
	sc.Defaults()
	sc.ensureSegs()
	sm.sections = append(sm.sections, sc)
	sm.dirty = true
	return sc
}

// AllSec returns all sections in order of creation
func (sm *Sim) AllSec() []*Section {
	return append([]*Section(nil), sm.sections...)
}

// NewIClamp attaches a current clamp at location x of the section
func (sm *Sim) NewIClamp(sec *Section, x float64) (*IClamp, error) {
	pt, err := newPoint(sm, sec, x)
	if err != nil {
		return nil, err
	}
	ic := &IClamp{Point: pt}
	sm.pps = append(sm.pps, ic)
	sm.dirty = true
	return ic, nil
}

// NewAlphaSynapse attaches an alpha-function synapse at location x of the section
func (sm *Sim) NewAlphaSynapse(sec *Section, x float64) (*AlphaSynapse, error) {
	pt, err := newPoint(sm, sec, x)
	if err != nil {
		return nil, err
	}
	as := &AlphaSynapse{Point: pt}
	as.Defaults()
	sm.pps = append(sm.pps, as)
	sm.dirty = true
	return as, nil
}

// NewExpSyn attaches an exponentially decaying event-driven synapse
// at location x of the section
func (sm *Sim) NewExpSyn(sec *Section, x float64) (*ExpSyn, error) {
	pt, err := newPoint(sm, sec, x)
	if err != nil {
		return nil, err
	}
	es := &ExpSyn{Point: pt}
	es.Defaults()
	sm.pps = append(sm.pps, es)
	sm.dirty = true
	return es, nil
}

// NewNetStim creates a new spike generator with default parameters
func (sm *Sim) NewNetStim() *NetStim {
	ns := &NetStim{id: len(sm.stims), sim: sm}
	ns.Defaults()
	sm.stims = append(sm.stims, ns)
	return ns
}

// NewNetCon connects an event source to a target receiver, which may be nil.
func (sm *Sim) NewNetCon(src EventSource, tgt Receiver) (*NetCon, error) {
	switch s := src.(type) {
	case *NetStim:
		if s == nil || s.sim != sm {
			return nil, fmt.Errorf("%w: NetStim source not created by this sim", ErrBadLocation)
		}
	case *Segment:
		if s == nil || s.Sec.sim != sm {
			return nil, fmt.Errorf("%w: segment source not in this sim", ErrBadLocation)
		}
	default:
		return nil, fmt.Errorf("%w: nil event source", ErrBadLocation)
	}
	nc := &NetCon{Source: src, Target: tgt}
	nc.Defaults()
	sm.cons = append(sm.cons, nc)
	sm.srcCons[src] = append(sm.srcCons[src], nc)
	return nc, nil
}

// NewVector creates a new empty vector managed by the sim
func (sm *Sim) NewVector() *Vector {
	vc := &Vector{}
	sm.vecs = append(sm.vecs, vc)
	return vc
}

// NewVectorFrom creates a new vector with a copy of the given data,
// typically for playing into a variable.
func (sm *Sim) NewVectorFrom(data []float64) *Vector {
	vc := sm.NewVector()
	vc.Data = append([]float64(nil), data...)
	return vc
}

//////////////////////////////////////////////////////////////////////////////////////
//  Running

// Finitialize sets all membrane potentials to vinit, channel states to
// their steady state at vinit, time to 0, and records the initial values.
func (sm *Sim) Finitialize(vinit float64) error {
	sm.dirty = true
	if err := sm.build(); err != nil {
		return err
	}
	sm.step = 0
	sm.T = 0
	sm.queue.reset()
	for _, sg := range sm.nodes {
		sg.V = vinit
		for _, mc := range sg.Mechs {
			mc.Init(vinit, sm.Celsius)
		}
	}
	for _, pp := range sm.pps {
		pp.Init()
	}
	for _, nc := range sm.cons {
		if sg, ok := nc.Source.(*Segment); ok {
			nc.above = sg.V >= nc.Threshold
		}
	}
	for _, ns := range sm.stims {
		ns.init()
	}
	for _, vc := range sm.vecs {
		vc.initRecord()
		vc.applyPlay(sm.T)
	}
	sm.initialized = true
	sm.Fcurrent()
	sm.record()
	return nil
}

// Fcurrent computes all membrane and point-process currents at the
// present membrane potentials and time, without changing any state.
func (sm *Sim) Fcurrent() {
	for _, sg := range sm.nodes {
		sg.I = sg.ionCurrent(sg.V)
	}
	for i, pp := range sm.pps {
		pp.Current(sm.nodes[sm.ppNode[i]].V, sm.T)
	}
}

// Fadvance integrates the model over one time step of Dt.
func (sm *Sim) Fadvance() error {
	if !sm.initialized {
		return ErrNotInitialized
	}
	if sm.dirty {
		if err := sm.build(); err != nil {
			return err
		}
	}
	for {
		ev, ok := sm.queue.popUntil(sm.T + sm.Dt/2)
		if !ok {
			break
		}
		sm.deliver(ev)
	}

	sm.setupMatrix(sm.T + sm.Dt/2)
	sm.solve()
	for i, sg := range sm.nodes {
		sg.V += sm.dv[i]
	}
	sm.step++
	sm.T = float64(sm.step) * sm.Dt

	for _, sg := range sm.nodes {
		for _, mc := range sg.Mechs {
			mc.Advance(sg.V, sm.Dt)
		}
	}
	for i, pp := range sm.pps {
		pp.Advance(sm.nodes[sm.ppNode[i]].V, sm.T, sm.Dt)
	}
	sm.detect()
	for _, vc := range sm.vecs {
		vc.applyPlay(sm.T)
	}
	sm.Fcurrent()
	sm.record()
	return nil
}

// Run advances the simulation from the current time until tstop
func (sm *Sim) Run(tstop float64) error {
	steps := int(math.Round((tstop - sm.T) / sm.Dt))
	for i := 0; i < steps; i++ {
		if err := sm.Fadvance(); err != nil {
			return err
		}
	}
	return nil
}

// Steps returns the number of steps taken since Finitialize
func (sm *Sim) Steps() int { return sm.step }

func (sm *Sim) record() {
	for _, vc := range sm.vecs {
		vc.record()
	}
}

// detect generates events for segment sources crossing threshold upward
func (sm *Sim) detect() {
	for _, nc := range sm.cons {
		sg, ok := nc.Source.(*Segment)
		if !ok {
			continue
		}
		above := sg.V >= nc.Threshold
		if above && !nc.above && nc.Target != nil {
			sm.queue.push(event{T: sm.T + nc.Delay, con: nc})
		}
		nc.above = above
	}
}

// spike schedules delivery of a NetStim spike at time t on all its connections
func (sm *Sim) spike(src EventSource, t float64) {
	for _, nc := range sm.srcCons[src] {
		if nc.Target == nil {
			continue
		}
		sm.queue.push(event{T: t + nc.Delay, con: nc})
	}
}

func (sm *Sim) deliver(ev event) {
	if ev.stim != nil {
		ev.stim.fire(ev.T)
		return
	}
	if len(ev.con.Weight) > 0 {
		ev.con.Target.NetReceive(ev.con.Weight[0])
	}
}

//////////////////////////////////////////////////////////////////////////////////////
//  Solver

// build lays out the nodes of all section trees in Hines order
func (sm *Sim) build() error {
	if !sm.dirty && sm.nodes != nil {
		return nil
	}
	if sm.Dt <= 0 {
		return fmt.Errorf("%w: dt must be positive, not %g", ErrBadGeometry, sm.Dt)
	}
	for _, sc := range sm.sections {
		if err := sc.Validate(); err != nil {
			return err
		}
		sc.ensureSegs()
	}
	sm.followSegments()
	sm.nodes = sm.nodes[:0]
	sm.parent = sm.parent[:0]
	sm.gax = sm.gax[:0]
	sm.cap = sm.cap[:0]
	sm.aconv = sm.aconv[:0]
	for _, sc := range sm.sections {
		if sc.parent == nil {
			sm.addSection(sc, -1)
		}
	}
	n := len(sm.nodes)
	sm.diag = make([]float64, n)
	sm.rhs = make([]float64, n)
	sm.dv = make([]float64, n)
	sm.ppNode = make([]int, len(sm.pps))
	for i, pp := range sm.pps {
		sm.ppNode[i] = pp.Loc().Segment().node
	}
	sm.dirty = false
	return nil
}

// followSegments moves recorded and played voltages and threshold
// sources off segments replaced by a change of Nseg, onto the segments
// now at the same location.
func (sm *Sim) followSegments() {
	for _, sc := range sm.sections {
		for _, old := range sc.retired {
			nw := old.live()
			for _, vc := range sm.vecs {
				if vc.rec == &old.V {
					vc.rec = &nw.V
				}
				if vc.play == &old.V {
					vc.play = &nw.V
				}
			}
			for _, nc := range sm.cons {
				if src, ok := nc.Source.(*Segment); ok && src == old {
					nc.Source = nw
				}
			}
		}
		sc.retired = nil
	}
}

// addSection appends the nodes of the section, starting from the end
// attached to parentNode, and then recursively its children.
func (sm *Sim) addSection(sc *Section, parentNode int) {
	n := len(sc.segs)
	segLen := sc.L / float64(n)
	area := math.Pi * sc.Diam * segLen
	prev := parentNode
	for k := 0; k < n; k++ {
		si := k
		if sc.childEnd == 1 {
			si = n - 1 - k
		}
		sg := sc.segs[si]
		idx := len(sm.nodes)
		sg.node = idx
		g := 0.0
		switch {
		case k > 0:
			g = 1 / sc.axialR(segLen)
		case prev >= 0:
			ps := sc.parent
			dist := math.Abs(sc.parentX-ps.Seg(sc.parentX).X) * ps.L
			g = 1 / (sc.axialR(segLen/2) + ps.axialR(dist))
		}
		sm.nodes = append(sm.nodes, sg)
		sm.parent = append(sm.parent, prev)
		sm.gax = append(sm.gax, g)
		sm.cap = append(sm.cap, sc.Cm*area*1e-5)
		sm.aconv = append(sm.aconv, area*1e-2)
		prev = idx
	}
	for _, ch := range sc.children {
		sm.addSection(ch, sc.Seg(ch.parentX).node)
	}
}

// setupMatrix fills the linearized backward Euler system for the voltage
// change over one step, with currents evaluated at time tm.
func (sm *Sim) setupMatrix(tm float64) {
	for i, sg := range sm.nodes {
		v := sg.V
		i1 := sg.ionCurrent(v + dvEps)
		i0 := sg.ionCurrent(v)
		sm.diag[i] = sm.cap[i]/sm.Dt + sm.aconv[i]*(i1-i0)/dvEps
		sm.rhs[i] = -sm.aconv[i] * i0
	}
	for k, pp := range sm.pps {
		n := sm.ppNode[k]
		v := sm.nodes[n].V
		i1 := pp.Current(v+dvEps, tm)
		i0 := pp.Current(v, tm)
		sm.diag[n] += (i1 - i0) / dvEps
		sm.rhs[n] -= i0
	}
	for i, p := range sm.parent {
		if p < 0 {
			continue
		}
		g := sm.gax[i]
		ia := g * (sm.nodes[p].V - sm.nodes[i].V)
		sm.rhs[i] += ia
		sm.rhs[p] -= ia
		sm.diag[i] += g
		sm.diag[p] += g
	}
}

// solve performs Hines elimination from the leaves to the roots,
// then back substitution, leaving the voltage changes in dv.
func (sm *Sim) solve() {
	for i := len(sm.nodes) - 1; i > 0; i-- {
		p := sm.parent[i]
		if p < 0 {
			continue
		}
		f := sm.gax[i] / sm.diag[i]
		sm.diag[p] -= f * sm.gax[i]
		sm.rhs[p] += f * sm.rhs[i]
	}
	for i, p := range sm.parent {
		if p < 0 {
			sm.dv[i] = sm.rhs[i] / sm.diag[i]
			continue
		}
		sm.dv[i] = (sm.rhs[i] + sm.gax[i]*sm.dv[p]) / sm.diag[i]
	}
}
