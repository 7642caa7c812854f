// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pointnet

import (
	"fmt"
	"sort"
)

// Names of the built-in models
const (
	IafPscDeltaModel      = "iaf_psc_delta"
	PoissonGeneratorModel = "poisson_generator"
	SpikeGeneratorModel   = "spike_generator"
	DCGeneratorModel      = "dc_generator"
	SpikeRecorderModel    = "spike_recorder"
	VoltmeterModel        = "voltmeter"
	StaticSynapseModel    = "static_synapse"
)

// validator is implemented by all model parameter structs
type validator interface {
	Defaults()
	Validate() error
}

// SynParams are the parameters of a static synapse
type SynParams struct {
	Weight float64 `nest:"weight" def:"1" desc:"synaptic weight: voltage jump in mV for iaf_psc_delta targets, current scale for dc_generator sources"`
	Delay  float64 `nest:"delay" def:"1" desc:"transmission delay, in msec; a multiple of the resolution"`
}

func (sp *SynParams) Defaults() {
	sp.Weight = 1
	sp.Delay = 1
}

func (sp *SynParams) Validate() error {
	if sp.Delay <= 0 {
		return fmt.Errorf("%w: delay must be > 0", ErrBadDelay)
	}
	return nil
}

// builtin describes a model implemented in this package
type builtin struct {
	kind   ModelKind
	params func() validator
}

var builtins = map[string]builtin{
	IafPscDeltaModel:      {NeuronModel, func() validator { return &IafParams{} }},
	PoissonGeneratorModel: {StimulatorModel, func() validator { return &PoissonParams{} }},
	SpikeGeneratorModel:   {StimulatorModel, func() validator { return &SpikeGenParams{} }},
	DCGeneratorModel:      {StimulatorModel, func() validator { return &DCParams{} }},
	SpikeRecorderModel:    {RecorderModel, func() validator { return &RecorderParams{} }},
	VoltmeterModel:        {RecorderModel, func() validator { return &VoltmeterParams{} }},
	StaticSynapseModel:    {SynapseModel, func() validator { return &SynParams{} }},
}

// model is a registered model: a built-in or a copy with its own defaults
type model struct {
	name     string
	base     string
	kind     ModelKind
	defaults Params
	numConns int
}

func (k *Kernel) initModels() {
	k.models = make(map[string]*model, len(builtins))
	for nm, bi := range builtins {
		k.models[nm] = &model{name: nm, base: nm, kind: bi.kind, defaults: Params{}}
	}
}

func (k *Kernel) model(name string) (*model, error) {
	m, ok := k.models[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownModel, name)
	}
	return m, nil
}

// params returns the default parameters of the model with extra
// overrides applied, validated.
func (m *model) params(extra Params) (validator, error) {
	p := builtins[m.base].params()
	p.Defaults()
	if err := decodeParams(m.defaults, p); err != nil {
		return nil, err
	}
	if err := decodeParams(extra, p); err != nil {
		return nil, fmt.Errorf("%s: %w", m.name, err)
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", m.name, err)
	}
	return p, nil
}

// Models returns the names of all registered models, sorted
func (k *Kernel) Models() []string {
	nms := make([]string, 0, len(k.models))
	for nm := range k.models {
		nms = append(nms, nm)
	}
	sort.Strings(nms)
	return nms
}

// ModelKind returns the kind of the named model
func (k *Kernel) ModelKind(name string) (ModelKind, error) {
	m, err := k.model(name)
	if err != nil {
		return NeuronModel, err
	}
	return m.kind, nil
}

// CopyModel registers a new model under name to, based on model from,
// with the given parameters overriding the defaults of from.
func (k *Kernel) CopyModel(from, to string, params Params) error {
	m, err := k.model(from)
	if err != nil {
		return err
	}
	if _, exists := k.models[to]; exists {
		return fmt.Errorf("%w: %q", ErrModelExists, to)
	}
	if _, err := m.params(params); err != nil {
		return err
	}
	df := m.defaults.Clone()
	for key, v := range params {
		df[key] = v
	}
	k.models[to] = &model{name: to, base: m.base, kind: m.kind, defaults: df}
	k.Log.Debug("copied model", "from", from, "to", to)
	return nil
}

// SetDefaults changes the defaults of the named model, affecting nodes
// created and connections made afterwards.
func (k *Kernel) SetDefaults(name string, params Params) error {
	m, err := k.model(name)
	if err != nil {
		return err
	}
	if _, err := m.params(params); err != nil {
		return err
	}
	for key, v := range params {
		m.defaults[key] = v
	}
	return nil
}

// GetDefaults returns the defaults of the named model.  Synapse models
// also report num_connections, the number of connections made with them.
func (k *Kernel) GetDefaults(name string) (Params, error) {
	m, err := k.model(name)
	if err != nil {
		return nil, err
	}
	p, err := m.params(nil)
	if err != nil {
		return nil, err
	}
	st := encodeParams(p)
	st["model"] = m.name
	st["element_type"] = m.kind.String()
	if m.kind == SynapseModel {
		st["num_connections"] = m.numConns
	}
	return st, nil
}
