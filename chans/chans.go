// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package chans provides Hodgkin-Huxley conductance channels based on
the standard equivalent RC circuit model of a neuron (i.e., basic Ohms
law equations): a Spec with reversal potential, maximal conductance
density and integer gate powers, and the Channel instance that advances
its gates each step and aggregates them into conductance and current:

	g = Gbar * x^Xpower * y^Ypower * z^Zpower
	I = g * (V - Ek)

Current is outward-positive: inward currents such as calcium influx
are negative.
*/
package chans

import (
	"errors"
	"fmt"
	"math"

	"github.com/emer/hhchan/hhgate"
)

var (
	// ErrPower is returned for negative gate powers
	ErrPower = errors.New("chans: negative gate power")

	// ErrGate is returned for missing or inconsistent gates
	ErrGate = errors.New("chans: invalid gates")
)

// Conductance returns gbar * x^p * y^q * z^r, ignoring gates with power 0
func Conductance(gbar, x float64, p int, y float64, q int, z float64, r int) float64 {
	return gbar * IntPow(x, p) * IntPow(y, q) * IntPow(z, r)
}

// Current returns the outward-positive current g * (v - ek)
func Current(g, v, ek float64) float64 {
	return g * (v - ek)
}

// IntPow returns x^n for n >= 0 by repeated multiplication
func IntPow(x float64, n int) float64 {
	r := 1.0
	for ; n > 0; n-- {
		r *= x
	}
	return r
}

// Chans accumulates the total conductance of a set of channels and its
// reversal-weighted sum, which together determine the membrane steady state
type Chans struct {

	// total conductance, in S
	G float64

	// sum of conductance * reversal potential, in A
	GE float64
}

// Reset zeros the sums
func (ch *Chans) Reset() {
	ch.G, ch.GE = 0, 0
}

// Add adds conductance g with reversal potential ek
func (ch *Chans) Add(g, ek float64) {
	ch.G += g
	ch.GE += g * ek
}

// Current returns the total outward current at v
func (ch *Chans) Current(v float64) float64 {
	return ch.G*v - ch.GE
}

// Spec is the construction-time definition of a channel type
type Spec struct {

	// name of the channel type
	Name string

	// reversal potential in V
	Ek float64

	// maximal conductance density in S/m^2
	Gbar float64 `min:"0"`

	// power of the X gate: 0 = absent
	Xpower int `min:"0"`

	// power of the Y gate: 0 = absent
	Ypower int `min:"0"`

	// power of the Z gate: 0 = absent
	Zpower int `min:"0"`

	// X gate kinetics, required if Xpower > 0
	X *hhgate.Gate

	// Y gate kinetics, required if Ypower > 0
	Y *hhgate.Gate

	// Z gate kinetics, required if Zpower > 0
	Z *hhgate.Gate

	// name of the concentration pool receiving the channel current: non-empty for calcium producers
	CaOut string
}

// Gates returns the gates with non-zero power, in X, Y, Z order
func (sp *Spec) Gates() []*hhgate.Gate {
	var gs []*hhgate.Gate
	for i, pw := range sp.Powers() {
		if pw > 0 {
			gs = append(gs, sp.gate(i))
		}
	}
	return gs
}

// Powers returns Xpower, Ypower, Zpower
func (sp *Spec) Powers() [3]int {
	return [3]int{sp.Xpower, sp.Ypower, sp.Zpower}
}

func (sp *Spec) gate(i int) *hhgate.Gate {
	switch i {
	case 0:
		return sp.X
	case 1:
		return sp.Y
	}
	return sp.Z
}

// ConcName returns the pool read by the 2D gates of the channel, if any
func (sp *Spec) ConcName() string {
	for _, g := range sp.Gates() {
		if g != nil && g.Is2D() {
			return g.ConcName
		}
	}
	return ""
}

// Validate checks gate powers, that every non-zero power has a valid
// gate, and that all 2D gates read the same pool
func (sp *Spec) Validate() error {
	names := [3]string{"X", "Y", "Z"}
	conc := ""
	for i, pw := range sp.Powers() {
		if pw < 0 {
			return fmt.Errorf("%w: %s: %spower = %d", ErrPower, sp.Name, names[i], pw)
		}
		if pw == 0 {
			continue
		}
		g := sp.gate(i)
		if g == nil {
			return fmt.Errorf("%w: %s: %spower = %d without a %s gate", ErrGate, sp.Name, names[i], pw, names[i])
		}
		if err := g.Validate(); err != nil {
			return fmt.Errorf("%s.%s: %w", sp.Name, names[i], err)
		}
		if g.Is2D() {
			if conc != "" && g.ConcName != conc {
				return fmt.Errorf("%w: %s: gates read different pools %q and %q", ErrGate, sp.Name, conc, g.ConcName)
			}
			conc = g.ConcName
		}
	}
	if sp.Gbar < 0 || math.IsNaN(sp.Gbar) || math.IsInf(sp.Gbar, 0) {
		return fmt.Errorf("%w: %s: Gbar %v", ErrGate, sp.Name, sp.Gbar)
	}
	return nil
}

// BuildTables builds the lookup tables of all gates of the channel on grid
func (sp *Spec) BuildTables(grid hhgate.Grid) error {
	return hhgate.BuildAll(grid, sp.Gates()...)
}
