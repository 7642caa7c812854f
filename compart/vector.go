// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package compart

// Vector is a growable array of values that can record a simulation
// variable over time, or play its values into one.
type Vector struct {
	Data []float64

	rec    *float64
	play   *float64
	playDt float64
}

// Record samples the variable pointed to by p after Finitialize and after
// every Fadvance.  Recording clears any previous data at the next init.
// A segment voltage keeps being followed when Nseg changes; pointers into
// mechanism state must be taken again after changing Nseg.
func (vc *Vector) Record(p *float64) {
	vc.rec = p
}

// Play sets the variable pointed to by p to Data[i] at time i * dt.
// After the end of the data the variable keeps its last value.
func (vc *Vector) Play(p *float64, dt float64) {
	vc.play = p
	vc.playDt = dt
}

// Len returns the number of values
func (vc *Vector) Len() int { return len(vc.Data) }

// At returns value at index i
func (vc *Vector) At(i int) float64 { return vc.Data[i] }

func (vc *Vector) initRecord() {
	if vc.rec != nil {
		vc.Data = vc.Data[:0]
	}
}

func (vc *Vector) record() {
	if vc.rec != nil {
		vc.Data = append(vc.Data, *vc.rec)
	}
}

func (vc *Vector) applyPlay(t float64) {
	if vc.play == nil || vc.playDt <= 0 || len(vc.Data) == 0 {
		return
	}
	i := int(t/vc.playDt + 1e-9)
	if i >= len(vc.Data) {
		return
	}
	*vc.play = vc.Data[i]
}
