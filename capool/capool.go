// Copyright (c) 2026, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package capool provides a calcium concentration pool in a thin
submembrane shell, driven by the current of calcium-permeable channels
and decaying toward a basal concentration:

	dc/dt = -B I - (c - CaBasal) / Tau,   B = 1 / (z F vol)

with outward-positive current I (calcium influx is negative), so
that the pool rises while calcium flows in.  The update over one step
is the exact solution for I held constant over the step.
*/
package capool

import "math"

// Faraday is the Faraday constant in C/mol
const Faraday = 96485.33212

// Params are the calcium pool parameters, SI units throughout
// (concentration in mM = mol/m^3)
type Params struct {

	// basal concentration in mM
	CaBasal float64 `def:"75.5e-6"`

	// decay time constant toward CaBasal, in s
	Tau float64 `def:"0.01" min:"0"`

	// thickness of the submembrane shell in m: 0 = whole compartment volume
	Thick float64 `def:"0.084e-6" min:"0"`

	// compartment diameter in m
	Diameter float64 `def:"10e-6" min:"0"`

	// compartment length in m: 0 = spherical compartment
	Length float64 `def:"0" min:"0"`

	// valence of the ion
	Valence float64 `def:"2"`

	// lower bound on concentration in mM
	Floor float64 `def:"0"`

	// upper bound on concentration in mM: 0 = none
	Ceiling float64 `def:"0"`

	// volume of the shell, in m^3
	Vol float64 `inactive:"+"`

	// concentration rate per unit current: 1 / (Valence Faraday Vol)
	B float64 `inactive:"+"`
}

func (cp *Params) Defaults() {
	cp.CaBasal = 75.5e-6
	cp.Tau = 10e-3
	cp.Thick = 0.084e-6
	cp.Diameter = 10e-6
	cp.Length = 0
	cp.Valence = 2
	cp.Floor = 0
	cp.Ceiling = 0
	cp.Update()
}

// Update must be called after any changes to parameters
func (cp *Params) Update() {
	cp.Vol = ShellVolume(cp.Diameter, cp.Length, cp.Thick)
	if cp.Vol > 0 && cp.Valence != 0 {
		cp.B = 1 / (cp.Valence * Faraday * cp.Vol)
	} else {
		cp.B = 0
	}
}

// ShellVolume returns the volume of a shell of thickness thick inside
// a sphere of diameter dia (length == 0) or a cylinder of diameter dia
// and given length.  thick <= 0, or at least the radius, gives the
// whole volume.
func ShellVolume(dia, length, thick float64) float64 {
	r := dia / 2
	ri := r - thick
	if thick <= 0 || ri < 0 {
		ri = 0
	}
	if length <= 0 {
		return 4.0 / 3.0 * math.Pi * (r*r*r - ri*ri*ri)
	}
	return math.Pi * length * (r*r - ri*ri)
}

// Inf returns the steady state concentration for constant current i
func (cp *Params) Inf(i float64) float64 {
	return cp.CaBasal - cp.B*i*cp.Tau
}

// Clamp returns c within Floor and Ceiling
func (cp *Params) Clamp(c float64) float64 {
	if c < cp.Floor {
		c = cp.Floor
	}
	if cp.Ceiling > 0 && c > cp.Ceiling {
		c = cp.Ceiling
	}
	return c
}

// Step returns the concentration after dt starting from c with
// constant current i
func (cp *Params) Step(c, i, dt float64) float64 {
	if !(cp.Tau > 0) {
		return cp.Clamp(c - cp.B*i*dt)
	}
	inf := cp.Inf(i)
	return cp.Clamp(inf + (c-inf)*math.Exp(-dt/cp.Tau))
}

// Pool is the state of one calcium pool.  Producers add their current
// with AddCurrent during a step, and Step integrates the total and
// clears it for the next step.
type Pool struct {

	// name of the pool, read by the ConcName of dependent gates
	Name string

	// parameters
	Params Params `view:"inline"`

	// concentration in mM
	Ca float64 `inactive:"+"`

	// total current accumulated for the current step, in A
	I float64 `inactive:"+"`

	// current integrated by the last Step, in A
	IPrv float64 `inactive:"+"`
}

// NewPool returns a pool with default parameters
func NewPool(name string) *Pool {
	pl := &Pool{Name: name}
	pl.Params.Defaults()
	pl.Init()
	return pl
}

// Init sets the concentration to basal and clears currents
func (pl *Pool) Init() {
	pl.Ca = pl.Params.Clamp(pl.Params.CaBasal)
	pl.I = 0
	pl.IPrv = 0
}

// AddCurrent adds current i in A from a producer for the current step
func (pl *Pool) AddCurrent(i float64) {
	pl.I += i
}

// Step integrates the accumulated current over dt and returns the new
// concentration
func (pl *Pool) Step(dt float64) float64 {
	pl.Ca = pl.Params.Step(pl.Ca, pl.I, dt)
	pl.IPrv = pl.I
	pl.I = 0
	return pl.Ca
}
