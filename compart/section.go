// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package compart

import (
	"fmt"
	"math"

	"github.com/emer/neurosims/chans"
)

// mechanisms is the registry of insertable membrane mechanisms
var mechanisms = map[string]func() chans.Mechanism{
	"pas": func() chans.Mechanism { return chans.NewPassive() },
	"hh":  func() chans.Mechanism { return chans.NewHH() },
}

// RegisterMechanism adds a membrane mechanism that can then be inserted
// into sections by name.
func RegisterMechanism(name string, fun func() chans.Mechanism) {
	mechanisms[name] = fun
}

// Section is an unbranched cylindrical piece of membrane, discretized into
// Nseg segments of equal length.  Geometry fields may be changed freely
// before Finitialize; segments are rebuilt when Nseg changes.
type Section struct {
	Name string  `desc:"name of the section, used in reports"`
	L    float64 `def:"100" min:"0" desc:"length in um"`
	Diam float64 `def:"500" min:"0" desc:"diameter in um"`
	Nseg int     `def:"1" min:"1" desc:"number of segments (compartments)"`
	Ra   float64 `def:"35.4" min:"0" desc:"axial resistivity in ohm-cm"`
	Cm   float64 `def:"1" min:"0" desc:"specific membrane capacitance in uF/cm2"`

	sim       *Sim
	segs      []*Segment
	retired   []*Segment // replaced by a change of Nseg since the last build
	mechNames []string
	parent    *Section
	parentX   float64
	childEnd  float64
	children  []*Section
}

// Segment is one compartment of a Section, centered at X (0-1) along it.
type Segment struct {
	Sec *Section `desc:"section this segment belongs to"`
	X   float64  `desc:"relative position of the segment center along the section"`
	V   float64  `desc:"membrane potential in mV"`
	I   float64  `inactive:"+" desc:"total mechanism current density at V after the last Fcurrent, in mA/cm2"`

	Mechs []chans.Mechanism `desc:"membrane mechanisms inserted in this segment"`

	node  int
	moved *Segment // segment now containing X after a change of nseg
}

// live follows re-discretisations to the segment now at this location
func (sg *Segment) live() *Segment {
	for sg.moved != nil {
		sg = sg.moved
	}
	return sg
}

// Defaults sets the standard section parameters
func (sc *Section) Defaults() {
	sc.L = 100
	sc.Diam = 500
	sc.Nseg = 1
	sc.Ra = 35.4
	sc.Cm = 1
}

// Validate checks the geometry
func (sc *Section) Validate() error {
	if sc.L <= 0 || sc.Diam <= 0 || sc.Ra <= 0 || sc.Nseg < 1 || sc.Cm < 0 {
		return fmt.Errorf("%w: section %s: L=%g diam=%g Ra=%g nseg=%d cm=%g", ErrBadGeometry, sc.Name, sc.L, sc.Diam, sc.Ra, sc.Nseg, sc.Cm)
	}
	return nil
}

// ensureSegs rebuilds the segments if Nseg has changed, keeping mechanism
// parameters from the old segment nearest to each new one.
func (sc *Section) ensureSegs() {
	nseg := sc.Nseg
	if nseg < 1 {
		nseg = 1
	}
	if len(sc.segs) == nseg {
		return
	}
	old := sc.segs
	sc.retired = append(sc.retired, old...)
	sc.segs = make([]*Segment, nseg)
	for i := range sc.segs {
		x := (float64(i) + 0.5) / float64(nseg)
		sg := &Segment{Sec: sc, X: x}
		if len(old) > 0 {
			oi := int(x * float64(len(old)))
			if oi >= len(old) {
				oi = len(old) - 1
			}
			sg.V = old[oi].V
			for _, mc := range old[oi].Mechs {
				sg.Mechs = append(sg.Mechs, mc.Clone())
			}
		} else {
			for _, nm := range sc.mechNames {
				sg.Mechs = append(sg.Mechs, mechanisms[nm]())
			}
		}
		sc.segs[i] = sg
	}
	for _, og := range old {
		og.moved = sc.segAt(og.X)
	}
	if sc.sim != nil {
		sc.sim.dirty = true
	}
}

// segAt returns the current segment containing x, without rebuilding
func (sc *Section) segAt(x float64) *Segment {
	i := int(x * float64(len(sc.segs)))
	if i < 0 {
		i = 0
	}
	if i >= len(sc.segs) {
		i = len(sc.segs) - 1
	}
	return sc.segs[i]
}

// Segments returns the segments of the section, from x = 0 to x = 1
func (sc *Section) Segments() []*Segment {
	sc.ensureSegs()
	return sc.segs
}

// Seg returns the segment containing relative location x.
// x = 0 and x = 1 return the first and last segments.
func (sc *Section) Seg(x float64) *Segment {
	sc.ensureSegs()
	return sc.segAt(x)
}

// Insert adds the named membrane mechanism to every segment.
// Inserting a mechanism that is already present is a no-op.
func (sc *Section) Insert(name string) error {
	fun, ok := mechanisms[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrBadMechanism, name)
	}
	if sc.HasMech(name) {
		return nil
	}
	sc.ensureSegs()
	sc.mechNames = append(sc.mechNames, name)
	for _, sg := range sc.segs {
		sg.Mechs = append(sg.Mechs, fun())
	}
	return nil
}

// HasMech returns true if the named mechanism has been inserted
func (sc *Section) HasMech(name string) bool {
	for _, nm := range sc.mechNames {
		if nm == name {
			return true
		}
	}
	return false
}

// Connect attaches the childEnd (0 or 1) of this section to location parentX
// of the parent section.  Connecting again moves the section to the new parent.
func (sc *Section) Connect(parent *Section, parentX, childEnd float64) error {
	if parent == nil {
		return fmt.Errorf("%w: nil parent for %s", ErrBadTopology, sc.Name)
	}
	if parentX < 0 || parentX > 1 {
		return fmt.Errorf("%w: parent location %g", ErrBadLocation, parentX)
	}
	if childEnd != 0 && childEnd != 1 {
		return fmt.Errorf("%w: child end must be 0 or 1, not %g", ErrBadTopology, childEnd)
	}
	for p := parent; p != nil; p = p.parent {
		if p == sc {
			return fmt.Errorf("%w: connecting %s to %s creates a loop", ErrBadTopology, sc.Name, parent.Name)
		}
	}
	sc.Disconnect()
	sc.parent = parent
	sc.parentX = parentX
	sc.childEnd = childEnd
	parent.children = append(parent.children, sc)
	if sc.sim != nil {
		sc.sim.dirty = true
	}
	return nil
}

// Disconnect detaches the section from its parent, if any
func (sc *Section) Disconnect() {
	if sc.parent == nil {
		return
	}
	ch := sc.parent.children
	for i, c := range ch {
		if c == sc {
			sc.parent.children = append(ch[:i], ch[i+1:]...)
			break
		}
	}
	sc.parent = nil
	if sc.sim != nil {
		sc.sim.dirty = true
	}
}

// Parent returns the parent section (nil for a root)
func (sc *Section) Parent() *Section { return sc.parent }

// Children returns the sections attached to this one
func (sc *Section) Children() []*Section { return sc.children }

// Area returns the lateral membrane area of one segment in um2
func (sc *Section) Area() float64 {
	return math.Pi * sc.Diam * sc.L / float64(len(sc.Segments()))
}

// axialR returns the axial resistance in MOhm of a length of the section in um
func (sc *Section) axialR(length float64) float64 {
	return 0.04 * sc.Ra * length / (math.Pi * sc.Diam * sc.Diam)
}

// Pas returns the passive leak mechanism of the segment, or nil if not inserted
func (sg *Segment) Pas() *chans.Passive {
	for _, mc := range sg.Mechs {
		if ps, ok := mc.(*chans.Passive); ok {
			return ps
		}
	}
	return nil
}

// HH returns the Hodgkin-Huxley channels of the segment, or nil if not inserted
func (sg *Segment) HH() *chans.HH {
	for _, mc := range sg.Mechs {
		if hh, ok := mc.(*chans.HH); ok {
			return hh
		}
	}
	return nil
}

// Area returns the membrane area of the segment in um2
func (sg *Segment) Area() float64 { return sg.Sec.Area() }

// ionCurrent returns total mechanism current density in mA/cm2 at v
func (sg *Segment) ionCurrent(v float64) float64 {
	i := 0.0
	for _, mc := range sg.Mechs {
		i += mc.Current(v)
	}
	return i
}

func (sg *Segment) String() string {
	return fmt.Sprintf("%s(%g)", sg.Sec.Name, sg.X)
}
