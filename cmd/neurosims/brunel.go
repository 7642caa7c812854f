// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/emer/neurosims/examples/brunel"
	"github.com/emer/neurosims/internal/logger"
	"github.com/emer/neurosims/internal/report"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func brunelCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "brunel",
		Short: "random balanced network of excitatory and inhibitory neurons",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rc, err := newRunCtx(cmd, v)
			if err != nil {
				return err
			}
			return rc.runBrunel(cmd.Context())
		},
	}
	var df brunel.Params
	df.Defaults()
	fs := cmd.Flags()
	fs.Float64("dt", df.Dt, "simulation resolution in msec")
	fs.Float64("simtime", df.SimTime, "simulated time in msec")
	fs.Float64("delay", df.Delay, "synaptic delay in msec")
	fs.Float64("g", df.G, "ratio of inhibitory to excitatory weight")
	fs.Float64("eta", df.Eta, "external rate relative to the threshold rate")
	fs.Float64("epsilon", df.Epsilon, "connection probability")
	fs.Int("order", df.Order, "network size scale: NE = 4 order, NI = order")
	fs.Float64("j", df.J, "excitatory postsynaptic potential in mV")
	fs.Int("n-rec", df.NRec, "neurons recorded per population")
	fs.Int("num-vp", df.NumVP, "number of virtual processes")
	fs.Uint64("seed", df.Seed, "seed of the kernel random streams")
	fs.Bool("print-report", df.PrintReport, "log progress and print the final report")
	fs.Float64("v-reset", df.VReset, "reset potential in mV")
	fs.Float64("input-stop", df.InputStop, "time at which the external drive stops in msec, 0 for never")
	fs.String("data-path", df.DataPath, "directory for ascii and sqlite recordings [default: out-dir]")
	fs.String("record-to", df.RecordTo.Name(), "spike recorder backend (memory|ascii|sqlite)")
	fs.String("events-csv", "", "write the recorded events to this csv file")

	keys := map[string]string{
		"dt": "brunel.dt", "simtime": "brunel.simtime", "delay": "brunel.delay",
		"g": "brunel.g", "eta": "brunel.eta", "epsilon": "brunel.epsilon",
		"order": "brunel.order", "j": "brunel.j", "n-rec": "brunel.nrec",
		"num-vp": "brunel.numvp", "seed": "brunel.seed", "print-report": "brunel.printreport",
		"v-reset": "brunel.vreset", "input-stop": "brunel.inputstop", "data-path": "brunel.datapath",
		"record-to": "brunel.recordto", "events-csv": "events-csv",
	}
	for fl, key := range keys {
		if err := v.BindPFlag(key, fs.Lookup(fl)); err != nil {
			panic(err)
		}
	}
	return cmd
}

// runBrunel runs the balanced network with parameters from the config
// file section brunel, overridden by flags
func (rc *runCtx) runBrunel(ctx context.Context) error {
	var pr brunel.Params
	pr.Defaults()
	if err := rc.config("brunel", &pr); err != nil {
		return err
	}
	if pr.DataPath == "" {
		pr.DataPath = rc.outDir
	}
	if ctx == nil {
		ctx = context.Background()
	}
	sm := report.New("brunel")
	sm.SetParam("config", pr)
	logger.Info("running", "example", "brunel", "order", pr.Order, "record_to", pr.RecordTo.Name())
	rs, err := brunel.SimBrunelDelta(ctx, pr, logger.New("brunel"))
	if err != nil {
		return fmt.Errorf("brunel: %w", err)
	}
	if pr.PrintReport {
		if err := rs.WriteReport(rc.stdout); err != nil {
			return err
		}
	}
	if fn := rc.v.GetString("events-csv"); fn != "" {
		f, err := os.Create(fn)
		if err != nil {
			return err
		}
		if err := rs.WriteEventsCSV(f); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		sm.AddFile(fn)
	}
	return rc.save(sm, rs, nil)
}
