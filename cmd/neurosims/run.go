// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/emer/neurosims/examples/alphasyn"
	"github.com/emer/neurosims/examples/gates"
	"github.com/emer/neurosims/examples/hhnet"
	"github.com/emer/neurosims/examples/multicomp"
	"github.com/emer/neurosims/examples/netstim"
	"github.com/emer/neurosims/examples/noisyhh"
	"github.com/emer/neurosims/examples/passive"
	"github.com/emer/neurosims/internal/logger"
	"github.com/emer/neurosims/internal/report"
	"github.com/emer/neurosims/plots"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// result is what every example run returns
type result interface {
	Figure() *plots.Figure
	Summarize(sm *report.Summary)
}

// runCtx carries the shared settings of one command invocation
type runCtx struct {
	v        *viper.Viper
	outDir   string
	format   string
	psection bool
	stdout   io.Writer
}

func newRunCtx(cmd *cobra.Command, v *viper.Viper) (*runCtx, error) {
	rc := &runCtx{
		v:        v,
		outDir:   v.GetString("out-dir"),
		format:   strings.TrimPrefix(strings.ToLower(v.GetString("format")), "."),
		psection: v.GetBool("psection"),
		stdout:   cmd.OutOrStdout(),
	}
	switch rc.format {
	case "pdf", "png", "svg":
	default:
		return nil, fmt.Errorf("%w: %q", plots.ErrFormat, rc.format)
	}
	if err := os.MkdirAll(rc.outDir, 0755); err != nil {
		return nil, err
	}
	return rc, nil
}

// config overlays the named section of the settings (config file,
// environment and bound flags) onto cf, which holds the defaults.
// Unknown keys are errors.
func (rc *runCtx) config(name string, cf any) error {
	sec, ok := rc.v.AllSettings()[name].(map[string]any)
	if !ok {
		return nil
	}
	dc, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.TextUnmarshallerHookFunc(),
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		Result:           cf,
	})
	if err != nil {
		return err
	}
	if err := dc.Decode(sec); err != nil {
		return fmt.Errorf("%s config: %w", name, err)
	}
	return nil
}

func (rc *runCtx) path(name, ext string) string {
	return filepath.Join(rc.outDir, name+"."+ext)
}

// save writes the figures and the summary of a finished run
func (rc *runCtx) save(sm *report.Summary, rs result, extra map[string]*plots.Figure) error {
	rs.Summarize(sm)
	fn := rc.path(sm.Example, rc.format)
	if err := rs.Figure().Save(fn, 0, 0); err != nil {
		return err
	}
	sm.AddFile(fn)
	for nm, fg := range extra {
		fn := rc.path(sm.Example+"-"+nm, rc.format)
		if err := fg.Save(fn, 0, 0); err != nil {
			return err
		}
		sm.AddFile(fn)
	}
	sm.Finish()
	sfn := rc.path(sm.Example, "yaml")
	if err := sm.Write(sfn); err != nil {
		return err
	}
	logger.Info("finished", "example", sm.Example, "figure", fn, "summary", sfn, "elapsed", sm.Elapsed)
	return nil
}

// example is one of the compartmental examples, or gates
type example struct {
	name  string
	short string
	run   func(rc *runCtx, sm *report.Summary) (result, map[string]*plots.Figure, error)
}

func (rc *runCtx) printSection(s string) {
	if rc.psection {
		fmt.Fprint(rc.stdout, s)
	}
}

var examples = []example{
	{"passive", "passive soma driven by a current pulse", func(rc *runCtx, sm *report.Summary) (result, map[string]*plots.Figure, error) {
		var cf passive.Config
		cf.Defaults()
		if err := rc.config("passive", &cf); err != nil {
			return nil, nil, err
		}
		sm.SetParam("config", cf)
		rs, err := passive.Run(cf)
		if err != nil {
			return nil, nil, err
		}
		rc.printSection(rs.PSection)
		return rs, nil, nil
	}},
	{"alphasyn", "passive soma with excitatory and inhibitory alpha synapses", func(rc *runCtx, sm *report.Summary) (result, map[string]*plots.Figure, error) {
		var cf alphasyn.Config
		cf.Defaults()
		if err := rc.config("alphasyn", &cf); err != nil {
			return nil, nil, err
		}
		sm.SetParam("config", cf)
		rs, err := alphasyn.Run(cf)
		if err != nil {
			return nil, nil, err
		}
		rc.printSection(rs.PSection)
		return rs, nil, nil
	}},
	{"netstim", "passive soma with a synapse driven by random spikes", func(rc *runCtx, sm *report.Summary) (result, map[string]*plots.Figure, error) {
		var cf netstim.Config
		cf.Defaults()
		if err := rc.config("netstim", &cf); err != nil {
			return nil, nil, err
		}
		sm.SetParam("config", cf)
		rs, err := netstim.Run(cf)
		if err != nil {
			return nil, nil, err
		}
		rc.printSection(rs.PSection)
		return rs, nil, nil
	}},
	{"noisyhh", "Hodgkin-Huxley soma driven by a noise current", func(rc *runCtx, sm *report.Summary) (result, map[string]*plots.Figure, error) {
		var cf noisyhh.Config
		cf.Defaults()
		if err := rc.config("noisyhh", &cf); err != nil {
			return nil, nil, err
		}
		sm.SetParam("config", cf)
		rs, err := noisyhh.Run(cf)
		if err != nil {
			return nil, nil, err
		}
		rc.printSection(rs.PSection)
		return rs, nil, nil
	}},
	{"multicomp", "multi-compartment neuron with a dendritic synapse", func(rc *runCtx, sm *report.Summary) (result, map[string]*plots.Figure, error) {
		var cf multicomp.Config
		cf.Defaults()
		if err := rc.config("multicomp", &cf); err != nil {
			return nil, nil, err
		}
		sm.SetParam("config", cf)
		rs, err := multicomp.Run(cf)
		if err != nil {
			return nil, nil, err
		}
		rc.printSection(rs.Topology)
		rc.printSection(rs.PSection)
		return rs, nil, nil
	}},
	{"hhnet", "network of mutually inhibiting Hodgkin-Huxley cells", func(rc *runCtx, sm *report.Summary) (result, map[string]*plots.Figure, error) {
		var cf hhnet.Config
		cf.Defaults()
		if err := rc.config("hhnet", &cf); err != nil {
			return nil, nil, err
		}
		sm.SetParam("config", cf)
		rs, err := hhnet.Run(cf)
		if err != nil {
			return nil, nil, err
		}
		return rs, nil, nil
	}},
	{"gates", "Hodgkin-Huxley gate curves and voltage clamp", func(rc *runCtx, sm *report.Summary) (result, map[string]*plots.Figure, error) {
		var cf gates.Config
		cf.Defaults()
		if err := rc.config("gates", &cf); err != nil {
			return nil, nil, err
		}
		sm.SetParam("config", cf)
		rs, err := gates.Run(cf)
		if err != nil {
			return nil, nil, err
		}
		return rs, map[string]*plots.Figure{"clamp": rs.ClampFigure()}, nil
	}},
}

func (rc *runCtx) runExample(ex example) error {
	logger.Info("running", "example", ex.name)
	sm := report.New(ex.name)
	rs, extra, err := ex.run(rc, sm)
	if err != nil {
		return fmt.Errorf("%s: %w", ex.name, err)
	}
	return rc.save(sm, rs, extra)
}

func exampleCmd(v *viper.Viper, ex example) *cobra.Command {
	return &cobra.Command{
		Use:   ex.name,
		Short: ex.short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rc, err := newRunCtx(cmd, v)
			if err != nil {
				return err
			}
			return rc.runExample(ex)
		},
	}
}

func allCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "all",
		Short: "run every example in turn",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rc, err := newRunCtx(cmd, v)
			if err != nil {
				return err
			}
			for _, ex := range examples {
				if err := rc.runExample(ex); err != nil {
					return err
				}
			}
			return rc.runBrunel(context.Background())
		},
	}
}
