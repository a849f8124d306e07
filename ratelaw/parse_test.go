// Copyright (c) 2026, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ratelaw

import (
	"errors"
	"math"
	"testing"
)

func TestParseGranule(t *testing.T) {
	type test struct {
		src  string
		conc bool
		cor  func(v, c float64) float64
	}
	tests := []test{
		{"1600/(1 + exp(-72*((v -10e-3) - 5e-3)))", false,
			func(v, c float64) float64 { return 1600 / (1 + math.Exp(-72*((v-10e-3)-5e-3))) }},
		{"0.8 * exp(-90.9 * ((v - 10e-3) -(-75e-3)))", false,
			func(v, c float64) float64 { return 0.8 * math.Exp(-90.9*((v-10e-3)-(-75e-3))) }},
		{"(v - 10e-3) < -0.060? 5.0: 5 * exp(-50 * ((v - 10e-3) - (-0.06)))", false,
			func(v, c float64) float64 {
				if v-10e-3 < -0.060 {
					return 5
				}
				return 5 * math.Exp(-50*((v-10e-3)-(-0.06)))
			}},
		{"1500 / (1 + c / (1.5e-4 * exp(-77 * (v - 10e-3))))", true,
			func(v, c float64) float64 { return 1500 / (1 + c/(1.5e-4*math.Exp(-77*(v-10e-3)))) }},
		{"2 ** 3 + v", false,
			func(v, c float64) float64 { return 8 + v }},
		{"max(1/(v*v + 1), 0.75)", false,
			func(v, c float64) float64 { return math.Max(1/(v*v+1), 0.75) }},
	}
	vs := []float64{-0.1, -0.065, -0.02, 0.005, 0.04}
	for ti, ts := range tests {
		l, err := ParseCompile(ts.src, Options{Conc: ts.conc})
		if err != nil {
			t.Errorf("parse err: idx: %v, src: %q, err: %v", ti, ts.src, err)
			continue
		}
		for _, v := range vs {
			c := 75.5e-6
			got, cor := l.Eval(v, c), ts.cor(v, c)
			if dif := relDif(got, cor); dif > difTol {
				t.Errorf("eval err: idx: %v, v: %v, got: %v, cor: %v, dif: %v", ti, v, got, cor, dif)
			}
		}
	}
}

func TestParseBindings(t *testing.T) {
	binds := []Binding{
		{"alpha", "1500 * exp(81 *((v - 10e-3) - (-39e-3)))"},
		{"beta", "1500 * exp(-66 * ((v - 10e-3) - (-39e-3)))"},
	}
	tau, err := ParseCompile("alpha + beta == 0 ? 0 : max(1/(alpha+beta), 5e-5)", Options{}, binds...)
	if err != nil {
		t.Fatal(err)
	}
	inf, err := ParseCompile("alpha/(alpha+beta)", Options{}, binds...)
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range []float64{-0.1, -0.029, 0.02} {
		a := 1500 * math.Exp(81*((v-10e-3)-(-39e-3)))
		b := 1500 * math.Exp(-66*((v-10e-3)-(-39e-3)))
		if dif := relDif(tau.EvalV(v), math.Max(1/(a+b), 5e-5)); dif > difTol {
			t.Errorf("tau err: idx: %v, v: %v, tau: %v", i, v, tau.EvalV(v))
		}
		if dif := relDif(inf.EvalV(v), a/(a+b)); dif > difTol {
			t.Errorf("inf err: idx: %v, v: %v, inf: %v", i, v, inf.EvalV(v))
		}
	}
	// at the midpoint the two rates are equal
	if dif := math.Abs(inf.EvalV(-0.029) - 0.5); dif > difTol {
		t.Errorf("midpoint inf err: %v", inf.EvalV(-0.029))
	}
}

func TestParseParams(t *testing.T) {
	l, err := ParseCompile("q10mul * 170 * exp(73 * ((v - vshift) - (-38e-3)))",
		Options{Params: map[string]float64{"q10mul": 2, "vshift": 10e-3}})
	if err != nil {
		t.Fatal(err)
	}
	if dif := relDif(l.EvalV(-0.028), 340); dif > difTol {
		t.Errorf("param substitution err: got: %v, cor: 340", l.EvalV(-0.028))
	}
}

func TestParseErrors(t *testing.T) {
	if _, err := Parse("1 + * v"); !errors.Is(err, ErrSyntax) {
		t.Errorf("syntax error expected: err: %v", err)
	}
	if _, err := Parse("v", Binding{"alpha", "exp("}); !errors.Is(err, ErrSyntax) {
		t.Errorf("binding syntax error expected: err: %v", err)
	}
	if _, err := ParseCompile("exp(w)", Options{}); !errors.Is(err, ErrUnknownVar) {
		t.Errorf("unknown var expected: err: %v", err)
	}
	if _, err := ParseCompile("1/(v - v*0 - v) ", Options{NoFallback: true}); !errors.Is(err, ErrDivZero) {
		t.Errorf("division without fallback expected: err: %v", err)
	}
}

func TestParseExpm1(t *testing.T) {
	// 10 x / expm1(x / 10) tends to 100 at x == 0 and stays accurate just off it
	l, err := ParseCompile("v == 0 ? 100 : 10 * v / expm1(v / 10)", Options{})
	if err != nil {
		t.Fatal(err)
	}
	for _, v := range []float64{0, 1e-15, -1e-15, 1e-9} {
		if dif := relDif(l.EvalV(v), 100); dif > 1e-9 {
			t.Errorf("expm1 limit err: v: %v, got: %v, cor: 100", v, l.EvalV(v))
		}
	}
}
