// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pointnet

import (
	"database/sql"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/exp/rand"
)

// KernelParams are the global settings of a Kernel
type KernelParams struct {
	Resolution     float64 `nest:"resolution" def:"0.1" desc:"simulation step, in msec; fixed once nodes exist"`
	RngSeed        uint64  `nest:"rng_seed" def:"143202461" desc:"seed of the connection and per virtual process random streams"`
	NumVP          int     `nest:"total_num_virtual_procs" def:"1" desc:"number of virtual processes neurons are distributed over; fixed once nodes exist"`
	PrintTime      bool    `nest:"print_time" def:"false" desc:"log simulation progress"`
	OverwriteFiles bool    `nest:"overwrite_files" def:"false" desc:"replace existing recording files"`
	DataPath       string  `nest:"data_path" desc:"directory for recording files"`
	DataPrefix     string  `nest:"data_prefix" desc:"prefix of recording file names"`
}

func (kp *KernelParams) Defaults() {
	kp.Resolution = 0.1
	kp.RngSeed = 143202461
	kp.NumVP = 1
	kp.PrintTime = false
	kp.OverwriteFiles = false
	kp.DataPath = ""
	kp.DataPrefix = ""
}

func (kp *KernelParams) Validate() error {
	if kp.Resolution <= 0 {
		return fmt.Errorf("%w: resolution must be > 0", ErrBadParam)
	}
	if kp.NumVP < 1 {
		return fmt.Errorf("%w: total_num_virtual_procs must be >= 1", ErrBadParam)
	}
	return nil
}

// Kernel holds one network: its models, nodes, connections and time
type Kernel struct {
	KernelParams

	// Log receives build and simulation messages
	Log *log.Logger

	models   map[string]*model
	nodes    []*node
	conns    [][]conn `desc:"synaptic connections to neurons, by source node index"`
	numConns int
	step     int `desc:"number of steps simulated"`
	runID    string
	db       *sql.DB
	connRng  *rand.Rand

	prepared  bool
	minDelay  int
	maxDelay  int
	ringLen   int
	vpNeurons [][]*node
	vpConns   [][][]conn
	vpSrc     []rand.Source
	vpSpikes  [][]spike
	spikes    []spike
}

// Option configures a new Kernel
type Option func(k *Kernel)

// WithLogger sets the logger of the kernel
func WithLogger(lg *log.Logger) Option {
	return func(k *Kernel) {
		k.Log = lg
	}
}

// NewKernel returns a kernel with default settings and no nodes
func NewKernel(opts ...Option) *Kernel {
	k := &Kernel{}
	k.Log = log.New(io.Discard)
	k.reset()
	for _, opt := range opts {
		opt(k)
	}
	k.reseed()
	return k
}

func (k *Kernel) reset() {
	k.KernelParams.Defaults()
	k.initModels()
	k.nodes = nil
	k.conns = nil
	k.numConns = 0
	k.step = 0
	k.runID = uuid.New().String()
	k.prepared = false
	k.vpNeurons = nil
	k.vpConns = nil
	k.vpSpikes = nil
	k.spikes = nil
	k.reseed()
}

// reseed restarts the connection stream and the per-VP streams from
// RngSeed.  A prepared kernel keeps its structures and continues with the
// new streams.
func (k *Kernel) reseed() {
	k.connRng = rand.New(rand.NewSource(k.RngSeed))
	k.seedVPs()
}

// seedVPs gives each virtual process its own stream derived from RngSeed
func (k *Kernel) seedVPs() {
	k.vpSrc = make([]rand.Source, k.NumVP)
	for vp := range k.vpSrc {
		k.vpSrc[vp] = rand.NewSource(k.RngSeed + uint64(vp+1)*0x9E3779B97F4A7C15)
	}
}

// RunID returns the unique id of the current network, used to tag
// recorded data
func (k *Kernel) RunID() string {
	return k.runID
}

// ResetKernel closes recording files, and removes all nodes, copied
// models and connections, restoring default settings.
func (k *Kernel) ResetKernel() error {
	err := k.Close()
	k.reset()
	return err
}

// Close flushes and closes all recording backends
func (k *Kernel) Close() error {
	var errs []error
	for _, nd := range k.nodes {
		if nd.sr == nil || nd.sr.backend == nil {
			continue
		}
		errs = append(errs, nd.sr.backend.close())
		nd.sr.backend = nil
	}
	if k.db != nil {
		errs = append(errs, k.db.Close())
		k.db = nil
	}
	return errors.Join(errs...)
}

// SetKernelStatus changes kernel settings
func (k *Kernel) SetKernelStatus(p Params) error {
	kp := k.KernelParams
	if err := decodeParams(p, &kp); err != nil {
		return err
	}
	if err := kp.Validate(); err != nil {
		return err
	}
	if len(k.nodes) > 0 {
		if kp.Resolution != k.Resolution {
			return fmt.Errorf("%w: resolution cannot change once nodes exist", ErrLocked)
		}
		if kp.NumVP != k.NumVP {
			return fmt.Errorf("%w: total_num_virtual_procs cannot change once nodes exist", ErrLocked)
		}
	}
	seed := kp.RngSeed != k.RngSeed
	k.KernelParams = kp
	if seed {
		k.reseed()
	}
	return nil
}

// GetKernelStatus returns the kernel settings together with
// biological_time, network_size, num_connections, min_delay and max_delay.
func (k *Kernel) GetKernelStatus() Params {
	st := encodeParams(k.KernelParams)
	mn, mx := k.delayExtrema()
	st["biological_time"] = k.Time()
	st["network_size"] = len(k.nodes)
	st["num_connections"] = k.numConns
	st["min_delay"] = float64(mn) * k.Resolution
	st["max_delay"] = float64(mx) * k.Resolution
	return st
}

// Time returns the biological time simulated so far, in msec
func (k *Kernel) Time() float64 {
	return float64(k.step) * k.Resolution
}

// NetworkSize returns the number of nodes
func (k *Kernel) NetworkSize() int {
	return len(k.nodes)
}
