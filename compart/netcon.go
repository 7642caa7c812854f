// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package compart

import (
	"container/heap"
	"fmt"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// EventSource generates spike events for NetCon connections:
// either a *NetStim or a *Segment whose voltage is monitored.
type EventSource interface {
	eventSource()
}

func (ns *NetStim) eventSource() {}
func (sg *Segment) eventSource() {}

//////////////////////////////////////////////////////////////////////////////////////
//  NetStim

// NetStim is an artificial spike generator producing Number events,
// starting near Start, with mean interval Interval.  Noise is the fraction
// of each interval drawn from a negative exponential distribution
// (0 = regular, 1 = Poisson).
type NetStim struct {
	Interval float64 `def:"10" min:"0" desc:"mean time between spikes in msec"`
	Number   int     `def:"10" min:"0" desc:"number of spikes to generate"`
	Start    float64 `def:"50" desc:"approximate time of the first spike in msec"`
	Noise    float64 `def:"0" min:"0" max:"1" desc:"fractional randomness of the intervals"`

	Count int `inactive:"+" desc:"number of spikes generated so far"`

	id  int
	sim *Sim
	exp distuv.Exponential
}

func (ns *NetStim) Defaults() {
	ns.Interval = 10
	ns.Number = 10
	ns.Start = 50
	ns.Noise = 0
}

// init reseeds the random stream and schedules the first spike
func (ns *NetStim) init() {
	ns.Count = 0
	if ns.Noise < 0 {
		ns.Noise = 0
	}
	if ns.Noise > 1 {
		ns.Noise = 1
	}
	ns.exp = distuv.Exponential{Rate: 1, Src: rand.NewSource(ns.sim.Seed*1000003 + uint64(ns.id))}
	if ns.Start < 0 || ns.Number <= 0 {
		return
	}
	first := ns.Start + ns.invl() - ns.Interval*(1-ns.Noise)
	if first < 0 {
		first = 0
	}
	ns.sim.queue.push(event{T: first, stim: ns})
}

// invl returns the next interspike interval
func (ns *NetStim) invl() float64 {
	if ns.Noise == 0 {
		return ns.Interval
	}
	return (1-ns.Noise)*ns.Interval + ns.Noise*ns.Interval*ns.exp.Rand()
}

// fire emits a spike at time t and schedules the next one
func (ns *NetStim) fire(t float64) {
	ns.Count++
	ns.sim.spike(ns, t)
	if ns.Count < ns.Number {
		ns.sim.queue.push(event{T: t + ns.invl(), stim: ns})
	}
}

//////////////////////////////////////////////////////////////////////////////////////
//  NetCon

// NetCon delivers events from a source to a target Receiver after Delay msec.
// For a segment source, an event is generated each time its membrane
// potential crosses Threshold from below.
type NetCon struct {
	Source    EventSource `desc:"source of events"`
	Target    Receiver    `desc:"target point process, may be nil to just detect spikes"`
	Weight    []float64   `desc:"connection weights -- Weight[0] is passed to the target"`
	Delay     float64     `def:"1" min:"0" desc:"delivery delay in msec"`
	Threshold float64     `def:"10" desc:"spike detection threshold in mV for segment sources"`

	above bool
}

func (nc *NetCon) Defaults() {
	nc.Weight = []float64{0}
	nc.Delay = 1
	nc.Threshold = 10
}

func (nc *NetCon) String() string {
	return fmt.Sprintf("NetCon{delay=%g weight=%v threshold=%g}", nc.Delay, nc.Weight, nc.Threshold)
}

//////////////////////////////////////////////////////////////////////////////////////
//  event queue

// event is either a NetStim self-event (stim != nil) or a delivery
// of a NetCon's weight to its target.
type event struct {
	T    float64
	seq  int
	stim *NetStim
	con  *NetCon
}

type eventQueue struct {
	items []event
	seq   int
}

func (eq *eventQueue) Len() int { return len(eq.items) }
func (eq *eventQueue) Less(i, j int) bool {
	if eq.items[i].T == eq.items[j].T {
		return eq.items[i].seq < eq.items[j].seq
	}
	return eq.items[i].T < eq.items[j].T
}
func (eq *eventQueue) Swap(i, j int) { eq.items[i], eq.items[j] = eq.items[j], eq.items[i] }
func (eq *eventQueue) Push(x any)   { eq.items = append(eq.items, x.(event)) }
func (eq *eventQueue) Pop() any {
	n := len(eq.items)
	ev := eq.items[n-1]
	eq.items = eq.items[:n-1]
	return ev
}

func (eq *eventQueue) push(ev event) {
	ev.seq = eq.seq
	eq.seq++
	heap.Push(eq, ev)
}

// popUntil removes and returns the next event at or before time t
func (eq *eventQueue) popUntil(t float64) (event, bool) {
	if len(eq.items) == 0 || eq.items[0].T > t {
		return event{}, false
	}
	return heap.Pop(eq).(event), true
}

func (eq *eventQueue) reset() {
	eq.items = eq.items[:0]
	eq.seq = 0
}
