// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package chans

import (
	"github.com/emer/hhchan/hhgate"
	"github.com/goki/mat32"
)

// Channel is an instance of a Spec in one compartment, with its own
// gate state and the conductance and current of the last step
type Channel struct {

	// channel type definition, shared across instances
	Spec *Spec `view:"-"`

	// membrane area of the compartment in m^2, scaling Gbar to an absolute conductance
	Area float64 `def:"1"`

	// X gate state and kinetics (nil if Xpower == 0)
	X *hhgate.Gate

	// Y gate state and kinetics (nil if Ypower == 0)
	Y *hhgate.Gate

	// Z gate state and kinetics (nil if Zpower == 0)
	Z *hhgate.Gate

	// conductance in S as of the last step
	Gk float64 `inactive:"+"`

	// outward-positive current in A as of the last step
	Ik float64 `inactive:"+"`
}

// NewChannel returns an instance of the spec with area 1 (so Gk is a
// density) and its own copies of the gates.  Tables built on the spec
// gates before this call are shared by the copies.
func (sp *Spec) NewChannel() *Channel {
	ch := &Channel{Spec: sp, Area: 1}
	if sp.Xpower > 0 && sp.X != nil {
		ch.X = sp.X.Clone()
	}
	if sp.Ypower > 0 && sp.Y != nil {
		ch.Y = sp.Y.Clone()
	}
	if sp.Zpower > 0 && sp.Z != nil {
		ch.Z = sp.Z.Clone()
	}
	return ch
}

// Name returns the name of the spec
func (ch *Channel) Name() string { return ch.Spec.Name }

// Gates returns the gates of the instance, in X, Y, Z order
func (ch *Channel) Gates() []*hhgate.Gate {
	var gs []*hhgate.Gate
	for _, g := range []*hhgate.Gate{ch.X, ch.Y, ch.Z} {
		if g != nil {
			gs = append(gs, g)
		}
	}
	return gs
}

// ConcName returns the pool read by the 2D gates, if any
func (ch *Channel) ConcName() string { return ch.Spec.ConcName() }

// CaOut returns the pool receiving the current, if any
func (ch *Channel) CaOut() string { return ch.Spec.CaOut }

// Gbar returns the absolute maximal conductance, in S
func (ch *Channel) Gbar() float64 { return ch.Spec.Gbar * ch.Area }

func gateX(g *hhgate.Gate) float64 {
	if g == nil {
		return 1
	}
	return g.X
}

// Aggregate computes Gk and Ik from the present gate state at v
func (ch *Channel) Aggregate(v float64) {
	sp := ch.Spec
	ch.Gk = Conductance(ch.Gbar(), gateX(ch.X), sp.Xpower, gateX(ch.Y), sp.Ypower, gateX(ch.Z), sp.Zpower)
	ch.Ik = Current(ch.Gk, v, sp.Ek)
}

// Init sets all gates to their steady state at v, c and aggregates
func (ch *Channel) Init(v, c float64) {
	for _, g := range ch.Gates() {
		g.Init(v, c)
	}
	ch.Aggregate(v)
}

// Step advances all gates over dt at voltage v and concentration c
// (read only by 2D gates), then aggregates Gk and Ik at v
func (ch *Channel) Step(v, c, dt float64) {
	for _, g := range ch.Gates() {
		g.Advance(v, c, dt)
	}
	ch.Aggregate(v)
}

// GFmV returns the steady-state fraction of Gbar that is open as a
// function of normalized membrane potential (as used in point neurons:
// biological mV = v*100 - 100), with 2D gates at their CRef
func (ch *Channel) GFmV(v float32) float32 {
	vbio := (v*100 - 100) * 0.001
	sp := ch.Spec
	xinf := func(g *hhgate.Gate) float64 {
		if g == nil {
			return 1
		}
		return g.XInf(float64(vbio), g.CRef)
	}
	gf := float32(Conductance(1, xinf(ch.X), sp.Xpower, xinf(ch.Y), sp.Ypower, xinf(ch.Z), sp.Zpower))
	if mat32.IsNaN(gf) {
		return 0
	}
	return mat32.Min(mat32.Max(gf, 0), 1)
}
