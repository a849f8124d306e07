// Copyright (c) 2026, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cell

import (
	"math"

	"github.com/emer/hhchan/chans"
)

// Compart are the passive parameters of a single isopotential
// compartment.  Membrane properties are given per unit area and scaled
// by the surface area in Update.
type Compart struct {

	// diameter in m
	Diameter float64 `def:"10e-6"`

	// length in m: 0 = sphere of Diameter, else a cylinder without end caps
	Length float64 `def:"0"`

	// specific membrane capacitance in F/m^2
	CmSpec float64 `def:"0.01"`

	// specific membrane resistance in Ohm m^2
	RmSpec float64 `def:"3.03"`

	// leak reversal potential in V
	Em float64 `def:"-0.065"`

	// initial membrane potential in V
	InitVm float64 `def:"-0.065"`

	// injected current in A, positive depolarizes
	Inject float64 `def:"0"`

	// surface area in m^2
	Area float64 `inactive:"+"`

	// membrane capacitance in F
	Cm float64 `inactive:"+"`

	// membrane resistance in Ohm
	Rm float64 `inactive:"+"`
}

func (cp *Compart) Defaults() {
	cp.Diameter = 10e-6
	cp.Length = 0
	cp.CmSpec = 0.01
	cp.RmSpec = 1 / 0.330033
	cp.Em = -65e-3
	cp.InitVm = -65e-3
	cp.Inject = 0
	cp.Update()
}

// Update must be called after any changes to parameters
func (cp *Compart) Update() {
	cp.Area = SurfaceArea(cp.Diameter, cp.Length)
	cp.Cm = cp.CmSpec * cp.Area
	if cp.Area > 0 {
		cp.Rm = cp.RmSpec / cp.Area
	} else {
		cp.Rm = math.Inf(1)
	}
}

// SurfaceArea returns the membrane area of a sphere of diameter dia if
// length is 0, else of the side of a cylinder
func SurfaceArea(dia, length float64) float64 {
	if length <= 0 {
		return math.Pi * dia * dia
	}
	return math.Pi * dia * length
}

// VmInf returns the steady state potential and the time constant of the
// membrane under the summed channel conductances cs
func (cp *Compart) VmInf(cs *chans.Chans) (vinf, tau float64) {
	gl := 1 / cp.Rm
	g := gl + cs.G
	if g <= 0 {
		return cp.Em, math.Inf(1)
	}
	vinf = (cp.Em*gl + cs.GE + cp.Inject) / g
	tau = cp.Cm / g
	return
}

// VmStep integrates the membrane potential vm over dt with the exact
// exponential update, holding the conductances cs and Inject fixed
func (cp *Compart) VmStep(vm float64, cs *chans.Chans, dt float64) float64 {
	vinf, tau := cp.VmInf(cs)
	if math.IsInf(tau, 1) {
		if cp.Cm > 0 {
			return vm + dt*cp.Inject/cp.Cm
		}
		return vm
	}
	if !(tau > 0) {
		return vinf
	}
	return vinf + (vm-vinf)*math.Exp(-dt/tau)
}
