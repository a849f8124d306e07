// Copyright (c) 2026, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hhgate

import "github.com/goki/ki/kit"

// Kinds are the representations of gate kinetics
type Kinds int

//go:generate stringer -type=Kinds

var KiT_Kinds = kit.Enums.AddEnum(KindsN, kit.NotBitFlag, nil)

func (ev Kinds) MarshalJSON() ([]byte, error)  { return kit.EnumMarshalJSON(ev) }
func (ev *Kinds) UnmarshalJSON(b []byte) error { return kit.EnumUnmarshalJSON(ev, b) }

// The gate kinetics representations
const (
	// AlphaBeta gates have forward (alpha) and backward (beta) rate laws
	AlphaBeta Kinds = iota

	// TauInf gates have time constant (tau) and steady state (inf) laws
	TauInf

	// Tabulated gates have pre-computed (A, B) arrays on a voltage grid
	Tabulated

	KindsN
)
