// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package report writes the summary of one example run as YAML, and
// provides the summary statistics of recorded traces and spike trains.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Summary describes one run of an example
type Summary struct {
	RunID    string         `yaml:"run_id"`
	Example  string         `yaml:"example"`
	Started  time.Time      `yaml:"started"`
	Elapsed  time.Duration  `yaml:"elapsed"`
	Params   map[string]any `yaml:"params,omitempty"`
	Values   map[string]any `yaml:"values,omitempty"`
	Files    []string       `yaml:"files,omitempty"`
	Messages []string       `yaml:"messages,omitempty"`
}

// New starts the summary of a run of the named example
func New(example string) *Summary {
	return &Summary{
		RunID:   uuid.NewString(),
		Example: example,
		Started: time.Now(),
		Params:  map[string]any{},
		Values:  map[string]any{},
	}
}

// SetParam records an input parameter
func (sm *Summary) SetParam(key string, val any) {
	sm.Params[key] = val
}

// SetValue records a result value
func (sm *Summary) SetValue(key string, val any) {
	sm.Values[key] = val
}

// AddFile records an output file
func (sm *Summary) AddFile(path string) {
	sm.Files = append(sm.Files, path)
}

// AddMessage records a line of text output, e.g. a report line
func (sm *Summary) AddMessage(format string, args ...any) {
	sm.Messages = append(sm.Messages, fmt.Sprintf(format, args...))
}

// Finish stamps the elapsed time since New
func (sm *Summary) Finish() {
	sm.Elapsed = time.Since(sm.Started).Round(time.Millisecond)
}

// Write saves the summary as YAML, creating the directory if needed
func (sm *Summary) Write(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	b, err := yaml.Marshal(sm)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

// Read loads a summary written by Write
func Read(path string) (*Summary, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	sm := &Summary{}
	if err := yaml.Unmarshal(b, sm); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sm, nil
}
