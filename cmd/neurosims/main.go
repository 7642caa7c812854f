// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// neurosims runs the example simulations and writes their figures and
// YAML run summaries.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/emer/neurosims/internal/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var version = "0.1.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newRootCmd returns the root command with all example subcommands,
// bound to its own viper instance.
func newRootCmd() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("NEUROSIMS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	root := &cobra.Command{
		Use:   "neurosims",
		Short: "Didactic point-neuron and compartmental neuron simulations",
		Long: `neurosims builds tiny neural circuits, simulates them and plots the
recorded variables.  Each subcommand runs one example and writes its figure
and a YAML summary of the run to the output directory.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cf := v.GetString("config"); cf != "" {
				v.SetConfigFile(cf)
				if err := v.ReadInConfig(); err != nil {
					return fmt.Errorf("reading config %s: %w", cf, err)
				}
			}
			return logger.Configure(v.GetString("log-level"), v.GetString("log-file"))
		},
	}

	pf := root.PersistentFlags()
	pf.String("config", "", "YAML config file with one section of parameters per example")
	pf.String("log-level", "", "log level (debug|info|warn|error) [default: info]")
	pf.String("log-file", "", "write logs to file instead of stderr")
	pf.String("out-dir", ".", "directory for figures and summaries")
	pf.String("format", "pdf", "figure format (pdf|png|svg)")
	pf.Bool("psection", false, "print section reports of compartmental examples to stdout")
	for _, nm := range []string{"config", "log-level", "log-file", "out-dir", "format", "psection"} {
		if err := v.BindPFlag(nm, pf.Lookup(nm)); err != nil {
			panic(err)
		}
	}

	for _, ex := range examples {
		root.AddCommand(exampleCmd(v, ex))
	}
	root.AddCommand(brunelCmd(v))
	root.AddCommand(allCmd(v))
	return root
}
