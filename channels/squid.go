// Copyright (c) 2026, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package channels

import (
	"github.com/emer/hhchan/chans"
	"github.com/emer/hhchan/hhgate"
	"github.com/emer/hhchan/ratelaw"
)

// SquidErest is the resting potential of the squid axon model, in V
const SquidErest = -70e-3

// SquidGrid returns the voltage grid of the squid axon tables
func SquidGrid() hhgate.Grid {
	return hhgate.Grid{Min: -0.11, Max: 0.05, Divs: 3200}
}

// dep returns the depolarization from rest in mV
func dep() ratelaw.Node {
	return ratelaw.Mul(ratelaw.Num(1e3), ratelaw.Sub(ratelaw.V(), ratelaw.Num(SquidErest)))
}

// linExp returns k * (a - u) / expm1((a - u) / 10) for u = dep(),
// whose removable singularity at u == a resolves to its limit 10 k
func linExp(k, a float64) ratelaw.Node {
	x := ratelaw.Sub(ratelaw.Num(a), ratelaw.Ident("u"))
	return ratelaw.Let("u", dep(), ratelaw.DivOr(ratelaw.Mul(ratelaw.Num(k), x), ratelaw.Expm1(ratelaw.Div(x, ratelaw.Num(10))), 10*k))
}

func mustGate(name string, alpha, beta ratelaw.Node) *hhgate.Gate {
	return hhgate.NewAlphaBeta(name, ratelaw.MustCompile(alpha, ratelaw.Options{}), ratelaw.MustCompile(beta, ratelaw.Options{}))
}

// SquidNa is the Hodgkin-Huxley sodium channel, m^3 h
func SquidNa() (*chans.Spec, error) {
	m := mustGate("m",
		linExp(1e3*0.1, 25),
		ratelaw.Mul(ratelaw.Num(1e3*4), ratelaw.Exp(ratelaw.Div(ratelaw.Neg(ratelaw.Sub(ratelaw.V(), ratelaw.Num(SquidErest))), ratelaw.Num(18e-3)))))
	h := mustGate("h",
		ratelaw.Mul(ratelaw.Num(1e3*0.07), ratelaw.Exp(ratelaw.Div(ratelaw.Neg(dep()), ratelaw.Num(20)))),
		ratelaw.Div(ratelaw.Num(1e3), ratelaw.Add(ratelaw.Exp(ratelaw.Div(ratelaw.Sub(ratelaw.Num(30), dep()), ratelaw.Num(10))), ratelaw.Num(1))))
	return validated(&chans.Spec{Name: "Na", Ek: 115e-3 + SquidErest, Gbar: 1200, Xpower: 3, Ypower: 1, X: m, Y: h})
}

// SquidK is the Hodgkin-Huxley potassium channel, n^4
func SquidK() (*chans.Spec, error) {
	n := mustGate("n",
		linExp(1e3*0.01, 10),
		ratelaw.Mul(ratelaw.Num(1e3*0.125), ratelaw.Exp(ratelaw.Div(ratelaw.Neg(dep()), ratelaw.Num(80)))))
	return validated(&chans.Spec{Name: "K", Ek: -12e-3 + SquidErest, Gbar: 360, Xpower: 4, X: n})
}

// SquidLibrary returns the squid axon channels, in the order Na, K
func SquidLibrary() *Library {
	lb := NewLibrary("SquidHH")
	lb.Add("Na", SquidNa)
	lb.Add("K", SquidK)
	return lb
}
