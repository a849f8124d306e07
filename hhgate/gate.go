// Copyright (c) 2026, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package hhgate provides Hodgkin-Huxley gating particles: the Gate variant
over alpha/beta, tau/inf and pre-tabulated kinetics, the RateTable of
(A, B) rates sampled on a uniform voltage grid, and the exponential
Euler update of the open fraction.

All kinetics reduce to dx/dt = A - B x with A = inf/tau = alpha and
B = 1/tau = alpha + beta, so every gate is advanced by the same Step.
*/
package hhgate

import (
	"errors"
	"fmt"

	"github.com/emer/hhchan/q10"
	"github.com/emer/hhchan/ratelaw"
)

// ErrGate is returned for gates with missing or inconsistent kinetics
var ErrGate = errors.New("hhgate: invalid gate")

// Gate is one gating particle of a channel: its kinetics, in one of
// the Kinds representations, and its current open fraction X.
// All kinds reduce to the same (A, B) rates, so a single update rule
// (Step) advances every gate.
type Gate struct {

	// name of the gate, e.g., X, Y, Z or m, h
	Name string

	// representation of the kinetics
	Kind Kinds

	// forward rate law, for AlphaBeta gates, in 1/s
	Alpha *ratelaw.Law `view:"-"`

	// backward rate law, for AlphaBeta gates, in 1/s
	Beta *ratelaw.Law `view:"-"`

	// time constant law, for TauInf gates, in s
	Tau *ratelaw.Law `view:"-"`

	// steady state law, for TauInf gates
	Inf *ratelaw.Law `view:"-"`

	// pre-tabulated (A, B) at the reference temperature, for Tabulated gates
	Src *RateTable `view:"-"`

	// table built from the kinetics by BuildTable, used for lookup of voltage-only gates
	Table *RateTable `view:"-"`

	// name of the concentration pool read by the gate: non-empty for 2D gates
	ConcName string

	// reference concentration in mM at which 2D gates are sampled for table export
	CRef float64 `def:"0"`

	// temperature correction of the rates
	Temp q10.Params `view:"inline"`

	// convention for applying the temperature factor
	Mode q10.Modes

	// minimum time constant in s, applied after temperature scaling: 0 = none
	TauMin float64 `def:"0" min:"0"`

	// use linear interpolation in table lookup, else the sample at or below v
	Interp bool `def:"true"`

	// current open fraction, in [0,1]
	X float64 `inactive:"+"`
}

// NewAlphaBeta returns a gate with forward and backward rate laws
func NewAlphaBeta(name string, alpha, beta *ratelaw.Law) *Gate {
	g := &Gate{Name: name, Kind: AlphaBeta, Alpha: alpha, Beta: beta}
	g.Defaults()
	return g
}

// NewTauInf returns a gate with time constant and steady state laws
func NewTauInf(name string, tau, inf *ratelaw.Law) *Gate {
	g := &Gate{Name: name, Kind: TauInf, Tau: tau, Inf: inf}
	g.Defaults()
	return g
}

// NewTabulated returns a gate with pre-tabulated (A, B) arrays
func NewTabulated(name string, src *RateTable) *Gate {
	g := &Gate{Name: name, Kind: Tabulated, Src: src}
	g.Defaults()
	return g
}

func (g *Gate) Defaults() {
	g.Temp.Defaults()
	g.Mode = q10.ScaleAlphaBeta
	g.Interp = true
}

// Update must be called after any changes to parameters
func (g *Gate) Update() {
	g.Temp.Update()
	if g.Table != nil {
		g.Table.Interp = g.Interp
	}
}

// Is2D returns true if the gate depends on a concentration as well as voltage
func (g *Gate) Is2D() bool { return g.ConcName != "" }

// Clone returns a copy of the gate with its own state.  Laws and tables
// are immutable once built and are shared.
func (g *Gate) Clone() *Gate {
	ng := *g
	return &ng
}

// Validate checks that the laws needed by Kind are present and
// consistent with ConcName and Mode
func (g *Gate) Validate() error {
	var laws []*ratelaw.Law
	switch g.Kind {
	case AlphaBeta:
		if g.Alpha == nil || g.Beta == nil {
			return fmt.Errorf("%w: %s: AlphaBeta gate needs Alpha and Beta", ErrGate, g.Name)
		}
		laws = []*ratelaw.Law{g.Alpha, g.Beta}
	case TauInf:
		if g.Tau == nil || g.Inf == nil {
			return fmt.Errorf("%w: %s: TauInf gate needs Tau and Inf", ErrGate, g.Name)
		}
		if g.Mode == q10.ScaleBetaOnly {
			return fmt.Errorf("%w: %s: %v does not apply to TauInf gates", ErrGate, g.Name, g.Mode)
		}
		laws = []*ratelaw.Law{g.Tau, g.Inf}
	case Tabulated:
		if g.Src == nil {
			return fmt.Errorf("%w: %s: Tabulated gate needs Src", ErrGate, g.Name)
		}
		if g.Is2D() {
			return fmt.Errorf("%w: %s: Tabulated gates are voltage-only", ErrGate, g.Name)
		}
		if err := g.Src.Validate(); err != nil {
			return fmt.Errorf("%s: %w", g.Name, err)
		}
	default:
		return fmt.Errorf("%w: %s: unknown kind %v", ErrGate, g.Name, g.Kind)
	}
	if !g.Is2D() {
		for _, l := range laws {
			if l.UsesConc() {
				return fmt.Errorf("%w: %s: law %v uses %s but the gate has no ConcName", ErrGate, g.Name, l, ratelaw.VarC)
			}
		}
	}
	if g.TauMin < 0 || !isFinite(g.TauMin) {
		return fmt.Errorf("%w: %s: TauMin %v", ErrGate, g.Name, g.TauMin)
	}
	if f := g.Temp.Factor; !(f > 0) || !isFinite(f) {
		return fmt.Errorf("%w: %s: temperature factor %v", ErrGate, g.Name, f)
	}
	return nil
}

// Rates returns the temperature-scaled A = inf/tau and B = 1/tau
// at voltage v and concentration c, evaluated from the kinetics
// (not the built Table).  TauMin is applied to 1/B holding inf fixed.
func (g *Gate) Rates(v, c float64) (a, b float64) {
	switch g.Kind {
	case AlphaBeta:
		al, be := g.Temp.AlphaBeta(g.Mode, g.Alpha.Eval(v, c), g.Beta.Eval(v, c))
		return g.floor(al, al+be)
	case TauInf:
		tau := g.Temp.Tau(g.Mode, g.Tau.Eval(v, c), g.TauMin)
		if tau <= 0 {
			return 0, 0
		}
		b = 1 / tau
		return g.Inf.Eval(v, c) * b, b
	case Tabulated:
		sa, sb := g.Src.Lookup(v)
		al, be := g.Temp.AlphaBeta(g.Mode, sa, sb-sa)
		return g.floor(al, al+be)
	}
	return 0, 0
}

func (g *Gate) floor(a, b float64) (float64, float64) {
	if g.TauMin > 0 && b*g.TauMin > 1 {
		inf := a / b
		b = 1 / g.TauMin
		a = inf * b
	}
	return a, b
}

// AB returns the (A, B) rates used for integration: from the Table for
// voltage-only gates once it is built, else from the kinetics directly.
// 2D gates always evaluate the concentration dependence analytically.
func (g *Gate) AB(v, c float64) (a, b float64) {
	if g.Table != nil && !g.Is2D() {
		return g.Table.Lookup(v)
	}
	return g.Rates(v, c)
}

// XInf returns the steady state open fraction at v, c
func (g *Gate) XInf(v, c float64) float64 {
	a, b := g.AB(v, c)
	return Inf(a, b)
}

// Init sets X to its steady state at v, c
func (g *Gate) Init(v, c float64) {
	g.X = g.XInf(v, c)
}

// Advance integrates X over dt at fixed v, c and returns the new value
func (g *Gate) Advance(v, c, dt float64) float64 {
	a, b := g.AB(v, c)
	g.X = Step(g.X, a, b, dt)
	return g.X
}
