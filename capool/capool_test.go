// Copyright (c) 2026, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package capool

import (
	"math"
	"testing"
)

// difTol is the numerical difference tolerance for comparing vs. target values
const difTol = 1.0e-12

func relDif(a, b float64) float64 {
	d := math.Abs(a - b)
	if m := math.Max(math.Abs(a), math.Abs(b)); m > 0 {
		d /= m
	}
	return d
}

func TestShellVolume(t *testing.T) {
	r := 5e-6
	full := 4.0 / 3.0 * math.Pi * r * r * r
	if v := ShellVolume(10e-6, 0, 0); relDif(v, full) > difTol {
		t.Errorf("full sphere err: %v, cor: %v", v, full)
	}
	if v := ShellVolume(10e-6, 0, 20e-6); relDif(v, full) > difTol {
		t.Errorf("thick shell err: %v, cor: %v", v, full)
	}
	ri := r - 0.084e-6
	shell := 4.0 / 3.0 * math.Pi * (r*r*r - ri*ri*ri)
	if v := ShellVolume(10e-6, 0, 0.084e-6); relDif(v, shell) > difTol {
		t.Errorf("sphere shell err: %v, cor: %v", v, shell)
	}
	cyl := math.Pi * 20e-6 * (r*r - ri*ri)
	if v := ShellVolume(10e-6, 20e-6, 0.084e-6); relDif(v, cyl) > difTol {
		t.Errorf("cylinder shell err: %v, cor: %v", v, cyl)
	}
}

func TestParams(t *testing.T) {
	cp := Params{}
	cp.Defaults()
	if cp.Vol <= 0 {
		t.Fatalf("vol err: %v", cp.Vol)
	}
	if relDif(cp.B*2*Faraday*cp.Vol, 1) > difTol {
		t.Errorf("B err: %v", cp.B)
	}
	cp.Diameter = 0
	cp.Update()
	if cp.B != 0 {
		t.Errorf("zero volume B err: %v", cp.B)
	}
}

func TestDecay(t *testing.T) {
	pl := NewPool("Ca")
	cp := &pl.Params
	if pl.Ca != cp.CaBasal {
		t.Errorf("init err: %v, cor: %v", pl.Ca, cp.CaBasal)
	}
	pl.Ca = 1e-3
	pl.Step(cp.Tau)
	cor := cp.CaBasal + (1e-3-cp.CaBasal)/math.E
	if relDif(pl.Ca, cor) > difTol {
		t.Errorf("decay err: %v, cor: %v", pl.Ca, cor)
	}

	// two half steps equal one full step for constant current
	i := -1e-12
	a := cp.Step(cp.Step(2e-4, i, 5e-5), i, 5e-5)
	b := cp.Step(2e-4, i, 1e-4)
	if relDif(a, b) > 1e-10 {
		t.Errorf("step composition err: %v, %v", a, b)
	}
}

func TestInflux(t *testing.T) {
	pl := NewPool("Ca")
	cp := &pl.Params
	i := -2e-12 // inward calcium current
	inf := cp.Inf(i)
	if !(inf > cp.CaBasal) {
		t.Fatalf("influx inf err: %v <= basal %v", inf, cp.CaBasal)
	}
	prv := pl.Ca
	for si := 0; si < 3000; si++ {
		pl.AddCurrent(i / 2)
		pl.AddCurrent(i / 2)
		ca := pl.Step(1e-4)
		if ca < prv {
			t.Fatalf("monotonic rise err: step: %v, ca: %v, prv: %v", si, ca, prv)
		}
		prv = ca
	}
	if relDif(pl.Ca, inf) > 1e-9 {
		t.Errorf("steady state err: %v, cor: %v", pl.Ca, inf)
	}
	if pl.I != 0 || relDif(pl.IPrv, i) > difTol {
		t.Errorf("current accumulation err: I: %v, IPrv: %v", pl.I, pl.IPrv)
	}
}

func TestBounds(t *testing.T) {
	pl := NewPool("Ca")
	cp := &pl.Params
	cp.Ceiling = 1e-4
	pl.AddCurrent(-1e-9)
	if ca := pl.Step(1e-3); ca != 1e-4 {
		t.Errorf("ceiling err: %v, cor: 1e-4", ca)
	}
	cp.Floor = 5e-5
	pl.AddCurrent(1e-9)
	if ca := pl.Step(1e-3); ca != 5e-5 {
		t.Errorf("floor err: %v, cor: 5e-5", ca)
	}
	cp.Tau = 0
	pl.Ca = 6e-5
	if ca := pl.Step(1e-3); ca != 6e-5 {
		t.Errorf("no decay no current err: %v", ca)
	}
}
