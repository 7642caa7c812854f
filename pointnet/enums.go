// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pointnet

import (
	"fmt"

	"github.com/goki/ki/kit"
)

// ConnRule is the connection rule used by Connect
type ConnRule int

//go:generate stringer -type=ConnRule

var KiT_ConnRule = kit.Enums.AddEnum(ConnRuleN, kit.NotBitFlag, nil)

func (ev ConnRule) MarshalJSON() ([]byte, error)  { return kit.EnumMarshalJSON(ev) }
func (ev *ConnRule) UnmarshalJSON(b []byte) error { return kit.EnumUnmarshalJSON(ev, b) }

// The connection rules
const (
	// AllToAll connects every pre node to every post node
	AllToAll ConnRule = iota

	// OneToOne connects the i-th pre node to the i-th post node,
	// requiring equal sizes
	OneToOne

	// FixedIndegree draws Indegree random sources for each post node
	FixedIndegree

	// FixedOutdegree draws Outdegree random targets for each pre node
	FixedOutdegree

	// FixedTotalNumber draws N random pre, post pairs
	FixedTotalNumber

	// PairwiseBernoulli connects each pair independently with probability P
	PairwiseBernoulli

	ConnRuleN
)

var connRuleNames = [ConnRuleN]string{"all_to_all", "one_to_one", "fixed_indegree", "fixed_outdegree", "fixed_total_number", "pairwise_bernoulli"}

// RuleName returns the dictionary name of the rule, e.g. "fixed_indegree"
func (ev ConnRule) RuleName() string {
	if ev < 0 || ev >= ConnRuleN {
		return ev.String()
	}
	return connRuleNames[ev]
}

// ParseConnRule accepts either the dictionary name ("fixed_indegree")
// or the Go name ("FixedIndegree") of a rule.
func ParseConnRule(s string) (ConnRule, error) {
	for i, nm := range connRuleNames {
		if nm == s {
			return ConnRule(i), nil
		}
	}
	var cr ConnRule
	if err := cr.FromString(s); err != nil {
		return AllToAll, fmt.Errorf("%w: unknown rule %q", ErrBadRule, s)
	}
	return cr, nil
}

//////////////////////////////////////////////////////////////////////////////////////
//  ModelKind

// ModelKind is the role a model plays in a network
type ModelKind int

//go:generate stringer -type=ModelKind

var KiT_ModelKind = kit.Enums.AddEnum(ModelKindN, kit.NotBitFlag, nil)

func (ev ModelKind) MarshalJSON() ([]byte, error)  { return kit.EnumMarshalJSON(ev) }
func (ev *ModelKind) UnmarshalJSON(b []byte) error { return kit.EnumUnmarshalJSON(ev, b) }

const (
	// NeuronModel nodes are updated every step and emit spikes
	NeuronModel ModelKind = iota

	// StimulatorModel nodes drive neurons: poisson, spike and dc generators
	StimulatorModel

	// RecorderModel nodes observe neurons: spike recorders and voltmeters
	RecorderModel

	// SynapseModel models parameterize connections and are not nodes
	SynapseModel

	ModelKindN
)

//////////////////////////////////////////////////////////////////////////////////////
//  RecordTo

// RecordTo selects where a spike recorder stores its events
type RecordTo int

//go:generate stringer -type=RecordTo

var KiT_RecordTo = kit.Enums.AddEnum(RecordToN, kit.NotBitFlag, nil)

func (ev RecordTo) MarshalJSON() ([]byte, error)  { return kit.EnumMarshalJSON(ev) }
func (ev *RecordTo) UnmarshalJSON(b []byte) error { return kit.EnumUnmarshalJSON(ev, b) }

const (
	// RecordMemory keeps events in memory, readable with Events
	RecordMemory RecordTo = iota

	// RecordASCII writes one tab-separated sender, time line per event
	// into a .dat file under the kernel data_path
	RecordASCII

	// RecordSQLite inserts events into a spikes table of a sqlite
	// database under the kernel data_path
	RecordSQLite

	RecordToN
)

var recordToNames = [RecordToN]string{"memory", "ascii", "sqlite"}

// MarshalText returns the dictionary name, e.g. "ascii"
func (ev RecordTo) MarshalText() ([]byte, error) {
	if ev < 0 || ev >= RecordToN {
		return nil, fmt.Errorf("%w: record_to %d", ErrBadParam, int(ev))
	}
	return []byte(recordToNames[ev]), nil
}

// Name returns the dictionary name, e.g. "ascii"
func (ev RecordTo) Name() string {
	if ev < 0 || ev >= RecordToN {
		return ev.String()
	}
	return recordToNames[ev]
}

// UnmarshalText accepts the dictionary name or the Go name
func (ev *RecordTo) UnmarshalText(b []byte) error {
	s := string(b)
	for i, nm := range recordToNames {
		if nm == s {
			*ev = RecordTo(i)
			return nil
		}
	}
	if err := ev.FromString(s); err != nil {
		return fmt.Errorf("%w: record_to %q", ErrBadParam, s)
	}
	return nil
}
