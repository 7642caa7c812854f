// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package compart

import (
	"fmt"
	"io"
	"strings"
)

// PSection writes a description of the section: geometry, connection,
// inserted mechanisms (as seen in the first segment) and point processes.
func (sm *Sim) PSection(w io.Writer, sc *Section) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s { nseg=%d  L=%g  Ra=%g\n", sc.Name, len(sc.Segments()), sc.L, sc.Ra)
	if sc.parent != nil {
		fmt.Fprintf(&b, "\t%s connect %s (%g), %g\n", sc.parent.Name, sc.Name, sc.childEnd, sc.parentX)
	} else {
		b.WriteString("\t/*location 0 attached to cell 0*/\n")
	}
	b.WriteString("\t/* First segment only */\n")
	fmt.Fprintf(&b, "\tinsert morphology { diam=%g}\n", sc.Diam)
	fmt.Fprintf(&b, "\tinsert capacitance { cm=%g}\n", sc.Cm)
	for _, mc := range sc.Seg(0).Mechs {
		fmt.Fprintf(&b, "\tinsert %s { %s}\n", mc.Name(), mc.Describe())
	}
	for _, pp := range sm.pps {
		if pp.Loc().Sec == sc {
			fmt.Fprintf(&b, "\tinsert %s\n", pp.Describe())
		}
	}
	b.WriteString("}\n")
	_, err := io.WriteString(w, b.String())
	return err
}

// Topology writes a diagram of the section trees, one line per section with
// one dash per segment, indented below the parent location.
func (sm *Sim) Topology(w io.Writer) error {
	var b strings.Builder
	b.WriteString("\n")
	for _, sc := range sm.sections {
		if sc.parent == nil {
			topoSection(&b, sc, 0)
		}
	}
	b.WriteString("\n")
	_, err := io.WriteString(w, b.String())
	return err
}

func topoSection(b *strings.Builder, sc *Section, indent int) {
	nseg := len(sc.Segments())
	if sc.parent == nil {
		b.WriteString("|")
	} else {
		b.WriteString(strings.Repeat(" ", indent))
		b.WriteString("`")
	}
	b.WriteString(strings.Repeat("-", nseg))
	fmt.Fprintf(b, "|       %s(%g-%g)\n", sc.Name, sc.childEnd, 1-sc.childEnd)
	for _, ch := range sc.children {
		off := indent + 1 + int(ch.parentX*float64(nseg)+0.5)
		topoSection(b, ch, off)
	}
}
