// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pointnet

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"
)

// spike is emitted by node index node during update step step, and
// carries the stamp step+1
type spike struct {
	node int
	step int
}

// delayExtrema returns the min and max delay in steps over all spike
// connections; both are 1 without connections.
func (k *Kernel) delayExtrema() (int, int) {
	mn, mx := math.MaxInt, 0
	for _, cs := range k.conns {
		for _, c := range cs {
			d := int(c.delay)
			mn = min(mn, d)
			mx = max(mx, d)
		}
	}
	if mx == 0 {
		return 1, 1
	}
	return mn, mx
}

// prepare builds the update structures after the network changed
func (k *Kernel) prepare() error {
	if k.prepared {
		return nil
	}
	h := k.Resolution
	k.minDelay, k.maxDelay = k.delayExtrema()
	ringMax := k.maxDelay
	for _, nd := range k.nodes {
		for _, dr := range nd.drives {
			ringMax = max(ringMax, dr.delay)
		}
		for _, ci := range nd.currents {
			ringMax = max(ringMax, ci.delay)
		}
	}
	ringLen := ringMax + k.minDelay
	nvp := k.NumVP
	k.vpNeurons = make([][]*node, nvp)
	for _, nd := range k.nodes {
		switch {
		case nd.nrn != nil:
			nd.spikeBuf = resizeRing(nd.spikeBuf, k.ringLen, ringLen, k.step)
			nd.curBuf = resizeRing(nd.curBuf, k.ringLen, ringLen, k.step)
			k.vpNeurons[nd.vp] = append(k.vpNeurons[nd.vp], nd)
		case nd.pg != nil:
			nd.pg.calibrate(h)
		case nd.sg != nil:
			nd.sg.calibrate(h, k.step)
		case nd.dc != nil:
			nd.dc.calibrate(h)
		case nd.sr != nil:
			nd.sr.calibrate(h)
			if nd.sr.backend == nil && nd.sr.RecordTo != RecordMemory {
				be, err := k.openBackend(nd.sr)
				if err != nil {
					return err
				}
				nd.sr.backend = be
			}
		case nd.vm != nil:
			if err := nd.vm.calibrate(h); err != nil {
				return err
			}
		}
	}
	k.ringLen = ringLen
	if nvp == 1 {
		k.vpConns = [][][]conn{k.conns}
	} else {
		k.vpConns = make([][][]conn, nvp)
		for vp := range k.vpConns {
		vp := vp
			k.vpConns[vp] = make([][]conn, len(k.nodes))
		}
		for si, cs := range k.conns {
			for _, c := range cs {
				vp := k.nodes[c.tgt].vp
				k.vpConns[vp][si] = append(k.vpConns[vp][si], c)
			}
		}
	}
	if len(k.vpSrc) != nvp {
		k.seedVPs()
	}
	k.vpSpikes = make([][]spike, nvp)
	k.prepared = true
	k.Log.Debug("prepared", "nodes", len(k.nodes), "connections", k.numConns, "min_delay", k.minDelay, "max_delay", k.maxDelay, "vps", nvp)
	return nil
}

// resizeRing returns a ring buffer of length nl holding the pending
// values of buf (length ol) for steps from cur onward.
func resizeRing(buf []float32, ol, nl, cur int) []float32 {
	if len(buf) == nl && ol == nl {
		return buf
	}
	nb := make([]float32, nl)
	if len(buf) == 0 {
		return nb
	}
	for s := cur; s < cur+min(ol, nl); s++ {
		nb[s%nl] = buf[s%ol]
	}
	return nb
}

// Simulate advances the network by t msec, which must be a multiple
// of the resolution.
func (k *Kernel) Simulate(ctx context.Context, t float64) error {
	h := k.Resolution
	n := math.Round(t / h)
	if t < 0 || math.Abs(n*h-t) > 1e-9*math.Max(1, t) {
		return fmt.Errorf("%w: %g msec is not a non-negative multiple of the resolution %g", ErrNotSimulatable, t, h)
	}
	if err := k.prepare(); err != nil {
		return err
	}
	steps := int(n)
	end := k.step + steps
	st := time.Now()
	report := k.step
	for k.step < end {
		if err := ctx.Err(); err != nil {
			return err
		}
		to := min(k.step+k.minDelay, end)
		if err := k.updateSlice(ctx, k.step, to); err != nil {
			return err
		}
		k.step = to
		if k.PrintTime && (k.step-report)*10 >= steps {
			report = k.step
			k.Log.Info("simulating", "time", k.Time(), "end", float64(end)*h, "elapsed", time.Since(st).Round(time.Millisecond))
		}
	}
	var errs []error
	for _, nd := range k.nodes {
		if nd.sr != nil && nd.sr.backend != nil {
			errs = append(errs, nd.sr.backend.flush())
		}
	}
	k.Log.Debug("simulated", "msec", t, "elapsed", time.Since(st))
	return errors.Join(errs...)
}

// updateSlice updates all neurons over steps [from, to), which must not
// exceed the min delay, then records and delivers the emitted spikes.
func (k *Kernel) updateSlice(ctx context.Context, from, to int) error {
	eg, ectx := errgroup.WithContext(ctx)
	for vp := range k.vpNeurons {
		vp := vp
		eg.Go(func() error {
			var err error
			k.vpSpikes[vp], err = k.updateVP(ectx, vp, from, to, k.vpSpikes[vp][:0])
			return err
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	k.spikes = k.spikes[:0]
	for _, sps := range k.vpSpikes {
		k.spikes = append(k.spikes, sps...)
	}
	for _, nd := range k.nodes {
		if nd.sg != nil {
			k.spikes = nd.sg.emit(nd.idx, from, to, k.spikes)
		}
	}
	sort.Slice(k.spikes, func(i, j int) bool {
		si, sj := k.spikes[i], k.spikes[j]
		if si.step != sj.step {
			return si.step < sj.step
		}
		return si.node < sj.node
	})

	h := k.Resolution
	for _, sp := range k.spikes {
		nd := k.nodes[sp.node]
		for _, sr := range nd.recorders {
			if err := sr.record(nd.id(), sp.step+1, h); err != nil {
				return err
			}
		}
	}
	for _, nd := range k.nodes {
		if nd.vm != nil {
			nd.vm.gather(h)
		}
	}
	if len(k.spikes) == 0 {
		return nil
	}

	eg, ectx = errgroup.WithContext(ctx)
	for vp := range k.vpConns {
		vp := vp
		eg.Go(func() error {
			return k.deliver(ectx, vp)
		})
	}
	return eg.Wait()
}

// updateVP updates the neurons of one virtual process, appending spikes.
// It stops with the context error once ctx is done.
func (k *Kernel) updateVP(ctx context.Context, vp, from, to int, out []spike) ([]spike, error) {
	src := k.vpSrc[vp]
	rl := k.ringLen
	for _, nd := range k.vpNeurons[vp] {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		nr := nd.nrn
		for s := from; s < to; s++ {
			for i := range nd.drives {
				dr := &nd.drives[i]
				if !dr.gen.active(s) {
					continue
				}
				ps := dr.gen.dist
				ps.Src = src
				if n := ps.Rand(); n > 0 {
					nd.spikeBuf[(s+dr.delay)%rl] += float32(n) * dr.weight
				}
			}
			for _, ci := range nd.currents {
				if ci.gen.active(s) {
					nd.curBuf[(s+ci.delay)%rl] += ci.weight * float32(ci.gen.Amplitude)
				}
			}
			slot := s % rl
			in := nd.spikeBuf[slot]
			cur := nd.curBuf[slot]
			nd.spikeBuf[slot] = 0
			nd.curBuf[slot] = 0
			if nr.Update(in, cur) {
				out = append(out, spike{node: nd.idx, step: s})
			}
			for _, ml := range nd.meters {
				if ml.vm.samples(s + 1) {
					ml.buf = append(ml.buf, vmSample{stamp: s + 1, v: nr.VmAbs()})
				}
			}
		}
	}
	return out, nil
}

// deliver writes the slice spikes into the ring buffers of the neurons
// of one virtual process
func (k *Kernel) deliver(ctx context.Context, vp int) error {
	cs := k.vpConns[vp]
	rl := k.ringLen
	for _, sp := range k.spikes {
		if err := ctx.Err(); err != nil {
			return err
		}
		for _, c := range cs[sp.node] {
			tgt := k.nodes[c.tgt]
			tgt.spikeBuf[(sp.step+int(c.delay))%rl] += c.weight
		}
	}
	return nil
}
