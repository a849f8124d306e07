// Copyright (c) 2026, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package q10 provides the Q10 temperature correction of gating rate constants.

Rates measured at RefTemp are multiplied by Factor = Q10^(0.1*(Temp - RefTemp))
when simulating at Temp.  Scaling alpha and beta by the same factor leaves
the steady state alpha/(alpha+beta) unchanged and divides tau by Factor.
*/
package q10

import (
	"math"

	"github.com/goki/ki/kit"
)

// Params are the temperature scaling parameters for one set of kinetics
type Params struct {

	// temperature in degrees C at which the rate constants were measured
	RefTemp float64 `def:"6.3"`

	// simulation temperature in degrees C
	Temp float64 `def:"6.3"`

	// rate multiplier per 10 degrees C
	Q10 float64 `def:"3" min:"0"`

	// multiplicative factor on rates: Q10^(0.1*(Temp - RefTemp))
	Factor float64 `inactive:"+"`
}

func (qp *Params) Defaults() {
	qp.RefTemp = 6.3
	qp.Temp = 6.3
	qp.Q10 = 3
	qp.Update()
}

// Update must be called after any changes to parameters
func (qp *Params) Update() {
	qp.Factor = Factor(qp.RefTemp, qp.Temp, qp.Q10)
}

// Set sets the temperatures and Q10, and updates Factor
func (qp *Params) Set(refTemp, temp, q10 float64) {
	qp.RefTemp = refTemp
	qp.Temp = temp
	qp.Q10 = q10
	qp.Update()
}

// Factor returns Q10^(0.1*(temp - refTemp))
func Factor(refTemp, temp, q10 float64) float64 {
	return math.Pow(q10, 0.1*(temp-refTemp))
}

// AlphaBeta returns alpha and beta scaled according to the mode
func (qp *Params) AlphaBeta(mode Modes, alpha, beta float64) (float64, float64) {
	switch mode {
	case ScaleAlphaBeta:
		return alpha * qp.Factor, beta * qp.Factor
	case ScaleBetaOnly:
		return alpha, beta * qp.Factor
	}
	return alpha, beta
}

// Tau returns the scaled time constant, clamped to tauMin after scaling.
// The clamp can change the effective steady state of alpha/beta kinetics
// converted into tau/inf form at very fast rates.
func (qp *Params) Tau(mode Modes, tau, tauMin float64) float64 {
	if mode != ScaleNone {
		tau /= qp.Factor
	}
	if tau < tauMin {
		tau = tauMin
	}
	return tau
}

// Modes are the conventions for applying the temperature factor
type Modes int

//go:generate stringer -type=Modes

var KiT_Modes = kit.Enums.AddEnum(ModesN, kit.NotBitFlag, nil)

func (ev Modes) MarshalJSON() ([]byte, error)  { return kit.EnumMarshalJSON(ev) }
func (ev *Modes) UnmarshalJSON(b []byte) error { return kit.EnumUnmarshalJSON(ev, b) }

const (
	// ScaleAlphaBeta multiplies both alpha and beta (or divides tau) by Factor
	ScaleAlphaBeta Modes = iota

	// ScaleBetaOnly multiplies only beta by Factor.  This changes the steady
	// state and is provided because published variants of some calcium-dependent
	// channels differ in exactly this way.
	ScaleBetaOnly

	// ScaleNone applies no temperature correction (rates already scaled)
	ScaleNone

	ModesN
)
