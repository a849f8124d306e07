// Copyright (c) 2026, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package channels

import (
	"github.com/emer/hhchan/chans"
	"github.com/emer/hhchan/hhgate"
	"github.com/emer/hhchan/q10"
	"github.com/emer/hhchan/ratelaw"
)

// GranuleParams are the parameters shared by the Maex & De Schutter (1998)
// granule cell channels.  Rate laws refer to vshift and kca_alpha by name.
type GranuleParams struct {

	// temperature in degrees C at which the kinetics were measured
	RefTemp float64 `def:"17.35"`

	// simulation temperature in degrees C
	Temp float64 `def:"32"`

	// rate multiplier per 10 degrees C
	Q10 float64 `def:"3"`

	// offset in V subtracted from the membrane potential in all rate laws
	VShift float64 `def:"0.01"`

	// forward rate constant of the KCa gate in 1/s: 2500 in the original model, 1250 in the NeuroML version
	KCaAlpha float64 `def:"2500"`

	// temperature scaling convention of the KCa gate
	KCaMode q10.Modes

	// basal calcium in mM, the reference concentration of the KCa gate table
	CaBasal float64 `def:"75.5e-6"`

	// minimum time constant of the NaF m gate in s, after temperature scaling
	NaFTauMinM float64 `def:"1e-5"`

	// minimum time constant of the NaF h gate in s, after temperature scaling
	NaFTauMinH float64 `def:"4.5e-5"`

	// name of the calcium pool written by CaHVA and read by KCa
	CaPool string `def:"Ca"`
}

func (gp *GranuleParams) Defaults() {
	gp.RefTemp = 17.35
	gp.Temp = 32
	gp.Q10 = 3
	gp.VShift = 10e-3
	gp.KCaAlpha = 2500
	gp.KCaMode = q10.ScaleAlphaBeta
	gp.CaBasal = 75.5e-6
	gp.NaFTauMinM = 1e-5
	gp.NaFTauMinH = 4.5e-5
	gp.CaPool = "Ca"
}

// GranuleGrid returns the voltage grid of the granule cell tables
func GranuleGrid() hhgate.Grid {
	return hhgate.Grid{Min: -0.15, Max: 0.1, Divs: 1000}
}

func (gp *GranuleParams) laws(name string) *lawSet {
	return &lawSet{name: name, opts: ratelaw.Options{Params: map[string]float64{
		"vshift":    gp.VShift,
		"kca_alpha": gp.KCaAlpha,
	}}}
}

func (gp *GranuleParams) temp(gs ...*hhgate.Gate) {
	for _, g := range gs {
		if g != nil {
			g.Temp.Set(gp.RefTemp, gp.Temp, gp.Q10)
		}
	}
}

// NaF is the fast sodium channel, with kinetics in tau / inf form
// derived from shared alpha and beta bindings
func (gp *GranuleParams) NaF() (*chans.Spec, error) {
	ls := gp.laws("NaF")
	mab := []ratelaw.Binding{
		{"alpha", "1500 * exp(81 * ((v - vshift) - (-39e-3)))"},
		{"beta", "1500 * exp(-66 * ((v - vshift) - (-39e-3)))"},
	}
	hab := []ratelaw.Binding{
		{"alpha", "120 * exp(-89 * ((v - vshift) - (-0.05)))"},
		{"beta", "120 * exp(89 * ((v - vshift) - (-0.05)))"},
	}
	tau := "alpha + beta == 0 ? 0 : 1 / (alpha + beta)"
	inf := "alpha + beta == 0 ? 0 : alpha / (alpha + beta)"
	m := hhgate.NewTauInf("m", ls.law(tau, mab...), ls.law(inf, mab...))
	h := hhgate.NewTauInf("h", ls.law(tau, hab...), ls.law(inf, hab...))
	m.TauMin = gp.NaFTauMinM
	h.TauMin = gp.NaFTauMinH
	gp.temp(m, h)
	return validated(&chans.Spec{Name: "NaF", Ek: 55e-3, Gbar: 557.227, Xpower: 3, Ypower: 1, X: m, Y: h}, ls.err)
}

// KDr is the delayed rectifier potassium channel
func (gp *GranuleParams) KDr() (*chans.Spec, error) {
	ls := gp.laws("KDr")
	m := hhgate.NewAlphaBeta("m",
		ls.law("170 * exp(73 * ((v - vshift) - (-38e-3)))"),
		ls.law("170 * exp(-18 * ((v - vshift) - (-38e-3)))"))
	h := hhgate.NewAlphaBeta("h",
		ls.law("(v - vshift) > -0.046 ? 0.76 : 0.7 + 0.065 * exp(-80 * ((v - vshift) - (-46e-3)))"),
		ls.law("1.1 / (1 + exp(-80.7 * ((v - vshift) - (-0.044))))"))
	gp.temp(m, h)
	return validated(&chans.Spec{Name: "KDr", Ek: -90e-3, Gbar: 88.9691, Xpower: 4, Ypower: 1, X: m, Y: h}, ls.err)
}

// KA is the A-type transient potassium channel, in tau / inf form
func (gp *GranuleParams) KA() (*chans.Spec, error) {
	ls := gp.laws("KA")
	m := hhgate.NewTauInf("m",
		ls.law("0.41e-3 * exp(-((v - vshift) - (-43.5e-3)) / 0.0428) + 0.167e-3"),
		ls.law("1 / (1 + exp(-((v - vshift) - (-46.7e-3)) / 0.0198))"))
	h := hhgate.NewTauInf("h",
		ls.law("0.001 * (10.8 + 30 * (v - vshift) + 1 / (57.9 * exp((v - vshift) * 127) + 134e-6 * exp(-59 * (v - vshift))))"),
		ls.law("1 / (1 + exp(((v - vshift) - (-78.8e-3)) / 0.0084))"))
	gp.temp(m, h)
	return validated(&chans.Spec{Name: "KA", Ek: -90e-3, Gbar: 11.4567, Xpower: 3, Ypower: 1, X: m, Y: h}, ls.err)
}

// KCa is the calcium-activated potassium channel, whose gate depends on
// voltage and on the concentration c of the CaPool
func (gp *GranuleParams) KCa() (*chans.Spec, error) {
	ls := gp.laws("KCa").conc()
	m := hhgate.NewAlphaBeta("m",
		ls.law("c <= 0 ? 0 : kca_alpha / (1 + 1.5e-3 * exp(-85 * (v - vshift)) / c)"),
		ls.law("1500 / (1 + c / (1.5e-4 * exp(-77 * (v - vshift))))"))
	m.ConcName = gp.CaPool
	m.CRef = gp.CaBasal
	m.Mode = gp.KCaMode
	gp.temp(m)
	return validated(&chans.Spec{Name: "KCa", Ek: -90e-3, Gbar: 179.811, Xpower: 1, X: m}, ls.err)
}

// CaHVA is the high-voltage activated calcium channel, writing its
// current to the CaPool
func (gp *GranuleParams) CaHVA() (*chans.Spec, error) {
	ls := gp.laws("CaHVA")
	bx := ratelaw.Binding{Name: "x", Expr: "((v - vshift) - (-8.9e-3)) / (-0.005)"}
	m := hhgate.NewAlphaBeta("m",
		ls.law("1600 / (1 + exp(-72 * ((v - vshift) - 5e-3)))"),
		ls.law("x == 0 ? 100 : -100 * x / expm1(-x)", bx))
	h := hhgate.NewAlphaBeta("h",
		ls.law("(v - vshift) < -0.060 ? 5.0 : 5 * exp(-50 * ((v - vshift) - (-0.06)))"),
		ls.law("(v - vshift) < -0.060 ? 0.0 : 5 - 5 * exp(-50 * ((v - vshift) - (-0.060)))"))
	gp.temp(m, h)
	return validated(&chans.Spec{Name: "CaHVA", Ek: 80e-3, Gbar: 9.084216, Xpower: 2, Ypower: 1, X: m, Y: h, CaOut: gp.CaPool}, ls.err)
}

// H is the hyperpolarization-activated mixed cation channel
func (gp *GranuleParams) H() (*chans.Spec, error) {
	ls := gp.laws("H")
	m := hhgate.NewAlphaBeta("m",
		ls.law("0.8 * exp(-90.9 * ((v - vshift) - (-75e-3)))"),
		ls.law("0.8 * exp(90.9 * ((v - vshift) - (-75e-3)))"))
	gp.temp(m)
	return validated(&chans.Spec{Name: "H", Ek: -42e-3, Gbar: 0.3090506, Xpower: 1, X: m}, ls.err)
}

// GranuleLibrary returns the granule cell channels with the given
// parameters, in the order NaF, KDr, KA, KCa, CaHVA, H
func GranuleLibrary(gp *GranuleParams) *Library {
	lb := NewLibrary("Granule98")
	lb.Add("NaF", gp.NaF)
	lb.Add("KDr", gp.KDr)
	lb.Add("KA", gp.KA)
	lb.Add("KCa", gp.KCa)
	lb.Add("CaHVA", gp.CaHVA)
	lb.Add("H", gp.H)
	return lb
}
