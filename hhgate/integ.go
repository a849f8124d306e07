// Copyright (c) 2026, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hhgate

import "math"

// Step advances open fraction x over dt under dx/dt = a - b x,
// using the exact solution for constant a, b:
//
//	x(t+dt) = inf + (x(t) - inf) * exp(-b dt),  inf = a / b
//
// x is held when b <= 0, and the result is kept within [0,1].
func Step(x, a, b, dt float64) float64 {
	if !(b > 0) || !(dt > 0) {
		return x
	}
	inf := a / b
	return clamp01(inf + (x-inf)*math.Exp(-b*dt))
}

// Inf returns the steady state a / b, 0 if b <= 0
func Inf(a, b float64) float64 {
	if !(b > 0) {
		return 0
	}
	return clamp01(a / b)
}

// Tau returns the time constant 1 / b, 0 if b <= 0
func Tau(b float64) float64 {
	if !(b > 0) {
		return 0
	}
	return 1 / b
}

func clamp01(x float64) float64 {
	switch {
	case x < 0:
		return 0
	case x > 1:
		return 1
	}
	return x
}
