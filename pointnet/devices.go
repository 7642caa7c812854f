// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pointnet

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"
)

// stepWindow converts a device activity window in msec into steps of h.
// A device with stop = +Inf never stops.
func stepWindow(h, origin, start, stop float64) (int, int) {
	st := int(math.Round((origin + start) / h))
	if math.IsInf(stop, 1) {
		return st, math.MaxInt
	}
	return st, int(math.Round((origin + stop) / h))
}

func validWindow(start, stop float64) error {
	if stop < start {
		return fmt.Errorf("%w: stop %g < start %g", ErrBadParam, stop, start)
	}
	return nil
}

//////////////////////////////////////////////////////////////////////////////////////
//  poisson_generator

// PoissonParams parameterize a poisson_generator.  Each target receives
// its own independent Poisson spike train.
type PoissonParams struct {
	Rate   float64 `nest:"rate" def:"0" desc:"mean firing rate, in Hz"`
	Origin float64 `nest:"origin" def:"0" desc:"time origin of the activity window, in msec"`
	Start  float64 `nest:"start" def:"0" desc:"activation time relative to origin, in msec"`
	Stop   float64 `nest:"stop" def:"+Inf" desc:"deactivation time relative to origin, in msec"`
}

func (pp *PoissonParams) Defaults() {
	pp.Rate = 0
	pp.Origin = 0
	pp.Start = 0
	pp.Stop = math.Inf(1)
}

func (pp *PoissonParams) Validate() error {
	if pp.Rate < 0 || math.IsNaN(pp.Rate) || math.IsInf(pp.Rate, 0) {
		return fmt.Errorf("%w: rate must be finite and >= 0, not %g", ErrBadParam, pp.Rate)
	}
	return validWindow(pp.Start, pp.Stop)
}

// PoissonGen is one poisson_generator node
type PoissonGen struct {
	PoissonParams
	startStep, stopStep int
	dist                distuv.Poisson
}

func (pg *PoissonGen) calibrate(h float64) {
	pg.startStep, pg.stopStep = stepWindow(h, pg.Origin, pg.Start, pg.Stop)
	pg.dist = distuv.Poisson{Lambda: pg.Rate * h * 1e-3}
}

// active reports whether the generator emits during step s, i.e. for
// times in (s*h, (s+1)*h]
func (pg *PoissonGen) active(s int) bool {
	return pg.Rate > 0 && s >= pg.startStep && s < pg.stopStep
}

//////////////////////////////////////////////////////////////////////////////////////
//  spike_generator

// SpikeGenParams parameterize a spike_generator, which emits spikes at
// given times.  Times must be strictly increasing and > 0; a spike at t is
// delivered to targets at t + delay.
type SpikeGenParams struct {
	SpikeTimes []float64 `nest:"spike_times" desc:"spike times, in msec"`
	Origin     float64   `nest:"origin" def:"0" desc:"time origin of the activity window, in msec"`
	Start      float64   `nest:"start" def:"0" desc:"activation time relative to origin, in msec"`
	Stop       float64   `nest:"stop" def:"+Inf" desc:"deactivation time relative to origin, in msec"`
}

func (sp *SpikeGenParams) Defaults() {
	sp.SpikeTimes = nil
	sp.Origin = 0
	sp.Start = 0
	sp.Stop = math.Inf(1)
}

func (sp *SpikeGenParams) Validate() error {
	prv := 0.0
	for i, t := range sp.SpikeTimes {
		if t <= 0 || (i > 0 && t <= prv) {
			return fmt.Errorf("%w: spike_times must be > 0 and strictly increasing", ErrBadParam)
		}
		prv = t
	}
	return validWindow(sp.Start, sp.Stop)
}

// SpikeGen is one spike_generator node
type SpikeGen struct {
	SpikeGenParams
	steps []int `desc:"update step in which each spike is emitted"`
	next  int   `desc:"index of next spike in steps"`
}

func (sg *SpikeGen) calibrate(h float64, cur int) {
	st, sp := stepWindow(h, sg.Origin, sg.Start, sg.Stop)
	sg.steps = sg.steps[:0]
	for _, t := range sg.SpikeTimes {
		stamp := int(math.Round((t + sg.Origin) / h))
		if stamp <= st || stamp > sp {
			continue
		}
		sg.steps = append(sg.steps, stamp-1)
	}
	sg.next = sort.SearchInts(sg.steps, cur)
}

// emit appends spikes of steps [from, to) for node index ni
func (sg *SpikeGen) emit(ni, from, to int, out []spike) []spike {
	for sg.next < len(sg.steps) && sg.steps[sg.next] < to {
		if s := sg.steps[sg.next]; s >= from {
			out = append(out, spike{node: ni, step: s})
		}
		sg.next++
	}
	return out
}

//////////////////////////////////////////////////////////////////////////////////////
//  dc_generator

// DCParams parameterize a dc_generator, injecting a constant current
// into its targets while active.
type DCParams struct {
	Amplitude float64 `nest:"amplitude" def:"0" desc:"current amplitude, in pA"`
	Origin    float64 `nest:"origin" def:"0" desc:"time origin of the activity window, in msec"`
	Start     float64 `nest:"start" def:"0" desc:"activation time relative to origin, in msec"`
	Stop      float64 `nest:"stop" def:"+Inf" desc:"deactivation time relative to origin, in msec"`
}

func (dp *DCParams) Defaults() {
	dp.Amplitude = 0
	dp.Origin = 0
	dp.Start = 0
	dp.Stop = math.Inf(1)
}

func (dp *DCParams) Validate() error {
	return validWindow(dp.Start, dp.Stop)
}

// DCGen is one dc_generator node
type DCGen struct {
	DCParams
	startStep, stopStep int
}

func (dg *DCGen) calibrate(h float64) {
	dg.startStep, dg.stopStep = stepWindow(h, dg.Origin, dg.Start, dg.Stop)
}

func (dg *DCGen) active(s int) bool {
	return s >= dg.startStep && s < dg.stopStep
}

//////////////////////////////////////////////////////////////////////////////////////
//  recorders

// Events are the recorded events of a spike recorder or voltmeter,
// ordered by time and then by sender.
type Events struct {
	Senders []int     `desc:"global ids of the sending neurons"`
	Times   []float64 `desc:"event times, in msec"`
	Vm      []float64 `desc:"sampled membrane potential, in mV, for voltmeters"`
}

// Len returns the number of events
func (ev *Events) Len() int {
	return len(ev.Senders)
}

func (ev *Events) reset() {
	ev.Senders = ev.Senders[:0]
	ev.Times = ev.Times[:0]
	ev.Vm = ev.Vm[:0]
}

// RecorderParams parameterize a spike_recorder.  Events with stamps in
// (origin+start, origin+stop] are recorded.
type RecorderParams struct {
	RecordTo RecordTo `nest:"record_to" def:"memory" desc:"memory, ascii or sqlite"`
	Label    string   `nest:"label" desc:"label used in file names and database rows"`
	NEvents  int      `nest:"n_events" desc:"number of events recorded so far; can only be set to 0, which also clears recorded events"`
	Origin   float64  `nest:"origin" def:"0" desc:"time origin of the recording window, in msec"`
	Start    float64  `nest:"start" def:"0" desc:"start of the recording window relative to origin, in msec"`
	Stop     float64  `nest:"stop" def:"+Inf" desc:"end of the recording window relative to origin, in msec"`
}

func (rp *RecorderParams) Defaults() {
	rp.RecordTo = RecordMemory
	rp.Label = ""
	rp.NEvents = 0
	rp.Origin = 0
	rp.Start = 0
	rp.Stop = math.Inf(1)
}

func (rp *RecorderParams) Validate() error {
	if rp.RecordTo < 0 || rp.RecordTo >= RecordToN {
		return fmt.Errorf("%w: record_to %v", ErrBadParam, rp.RecordTo)
	}
	return validWindow(rp.Start, rp.Stop)
}

// SpikeRecorder is one spike_recorder node
type SpikeRecorder struct {
	RecorderParams
	id                  int
	events              Events
	backend             recordBackend
	startStep, stopStep int
}

// ID returns the global id of the recorder
func (sr *SpikeRecorder) ID() int {
	return sr.id
}

// NEvents returns the number of recorded events, regardless of backend
func (sr *SpikeRecorder) NEvents() int {
	return sr.RecorderParams.NEvents
}

// Events returns the events kept in memory: empty unless record_to is memory
func (sr *SpikeRecorder) Events() Events {
	return sr.events
}

func (sr *SpikeRecorder) calibrate(h float64) {
	sr.startStep, sr.stopStep = stepWindow(h, sr.Origin, sr.Start, sr.Stop)
}

// record registers a spike of sender with stamp (end of step)
func (sr *SpikeRecorder) record(sender, stamp int, h float64) error {
	if stamp <= sr.startStep || stamp > sr.stopStep {
		return nil
	}
	sr.RecorderParams.NEvents++
	t := float64(stamp) * h
	if sr.backend != nil {
		return sr.backend.write(sender, t)
	}
	sr.events.Senders = append(sr.events.Senders, sender)
	sr.events.Times = append(sr.events.Times, t)
	return nil
}

// VoltmeterParams parameterize a voltmeter, which samples V_m of its
// targets every interval msec.
type VoltmeterParams struct {
	Interval   float64  `nest:"interval" def:"1" desc:"sampling interval, in msec; a multiple of the resolution"`
	RecordFrom []string `nest:"record_from" def:"[V_m]" desc:"recorded variables; only V_m is available"`
	Label      string   `nest:"label" desc:"label of the recorder"`
	NEvents    int      `nest:"n_events" desc:"number of samples recorded so far; can only be set to 0"`
	Origin     float64  `nest:"origin" def:"0" desc:"time origin of the recording window, in msec"`
	Start      float64  `nest:"start" def:"0" desc:"start of the recording window relative to origin, in msec"`
	Stop       float64  `nest:"stop" def:"+Inf" desc:"end of the recording window relative to origin, in msec"`
}

func (vp *VoltmeterParams) Defaults() {
	vp.Interval = 1
	vp.RecordFrom = []string{"V_m"}
	vp.Label = ""
	vp.NEvents = 0
	vp.Origin = 0
	vp.Start = 0
	vp.Stop = math.Inf(1)
}

func (vp *VoltmeterParams) Validate() error {
	if vp.Interval <= 0 {
		return fmt.Errorf("%w: interval must be > 0", ErrBadParam)
	}
	for _, rf := range vp.RecordFrom {
		if rf != "V_m" {
			return fmt.Errorf("%w: cannot record %q", ErrBadParam, rf)
		}
	}
	return validWindow(vp.Start, vp.Stop)
}

// Voltmeter is one voltmeter node
type Voltmeter struct {
	VoltmeterParams
	id                  int
	events              Events
	links               []*meterLink
	intSteps            int
	startStep, stopStep int
}

// ID returns the global id of the voltmeter
func (vm *Voltmeter) ID() int {
	return vm.id
}

// NEvents returns the number of samples recorded
func (vm *Voltmeter) NEvents() int {
	return vm.VoltmeterParams.NEvents
}

// Events returns the recorded samples
func (vm *Voltmeter) Events() Events {
	return vm.events
}

func (vm *Voltmeter) calibrate(h float64) error {
	vm.intSteps = int(math.Round(vm.Interval / h))
	if vm.intSteps < 1 || math.Abs(float64(vm.intSteps)*h-vm.Interval) > 1e-9*vm.Interval {
		return fmt.Errorf("%w: interval %g is not a multiple of the resolution %g", ErrBadParam, vm.Interval, h)
	}
	vm.startStep, vm.stopStep = stepWindow(h, vm.Origin, vm.Start, vm.Stop)
	return nil
}

// samples reports whether a sample is taken at the given stamp
func (vm *Voltmeter) samples(stamp int) bool {
	return stamp%vm.intSteps == 0 && stamp > vm.startStep && stamp <= vm.stopStep
}

// gather moves samples buffered by the links into the events, in time order
func (vm *Voltmeter) gather(h float64) {
	n0 := len(vm.events.Senders)
	for _, ml := range vm.links {
		for _, sm := range ml.buf {
			vm.events.Senders = append(vm.events.Senders, ml.sender)
			vm.events.Times = append(vm.events.Times, float64(sm.stamp)*h)
			vm.events.Vm = append(vm.events.Vm, sm.v)
		}
		ml.buf = ml.buf[:0]
	}
	if len(vm.links) > 1 {
		sort.Stable(&eventsFrom{ev: &vm.events, from: n0})
	}
	vm.VoltmeterParams.NEvents = len(vm.events.Senders)
}

type vmSample struct {
	stamp int
	v     float64
}

// meterLink connects a voltmeter to one neuron
type meterLink struct {
	vm     *Voltmeter
	sender int
	buf    []vmSample
}

// eventsFrom sorts the tail of events starting at from, by time then sender
type eventsFrom struct {
	ev   *Events
	from int
}

func (ef *eventsFrom) Len() int { return len(ef.ev.Senders) - ef.from }

func (ef *eventsFrom) Less(i, j int) bool {
	i += ef.from
	j += ef.from
	if ef.ev.Times[i] != ef.ev.Times[j] {
		return ef.ev.Times[i] < ef.ev.Times[j]
	}
	return ef.ev.Senders[i] < ef.ev.Senders[j]
}

func (ef *eventsFrom) Swap(i, j int) {
	i += ef.from
	j += ef.from
	ev := ef.ev
	ev.Senders[i], ev.Senders[j] = ev.Senders[j], ev.Senders[i]
	ev.Times[i], ev.Times[j] = ev.Times[j], ev.Times[i]
	ev.Vm[i], ev.Vm[j] = ev.Vm[j], ev.Vm[i]
}
