// Copyright (c) 2026, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hhgate

import (
	"errors"
	"fmt"
	"math"

	"github.com/emer/etable/v2/minmax"
	"github.com/goki/ki/ints"
	"gonum.org/v1/gonum/floats"
)

var (
	// ErrGrid is returned for invalid table grids
	ErrGrid = errors.New("hhgate: invalid grid")

	// ErrTable is returned for tables that violate the (A, B) invariants
	ErrTable = errors.New("hhgate: invalid rate table")
)

// infTol is the tolerance on A/B exceeding [0,1] due to rounding
const infTol = 1.0e-9

// Grid is a uniform sampling of the voltage axis
type Grid struct {

	// lowest voltage in the table, in volts
	Min float64 `def:"-0.15"`

	// highest voltage in the table, in volts
	Max float64 `def:"0.1"`

	// number of divisions: the table has Divs+1 samples
	Divs int `def:"1000" min:"1"`
}

func (gr *Grid) Defaults() {
	gr.Min = -0.15
	gr.Max = 0.1
	gr.Divs = 1000
}

// Validate rejects non-positive Divs and non-finite or empty ranges
func (gr Grid) Validate() error {
	if gr.Divs < 1 {
		return fmt.Errorf("%w: divs %d < 1", ErrGrid, gr.Divs)
	}
	if !isFinite(gr.Min) || !isFinite(gr.Max) {
		return fmt.Errorf("%w: non-finite bounds [%v, %v]", ErrGrid, gr.Min, gr.Max)
	}
	if gr.Max <= gr.Min {
		return fmt.Errorf("%w: max %v <= min %v", ErrGrid, gr.Max, gr.Min)
	}
	return nil
}

// Dx returns the spacing between samples
func (gr Grid) Dx() float64 { return (gr.Max - gr.Min) / float64(gr.Divs) }

// Points returns the Divs+1 sample voltages
func (gr Grid) Points() []float64 {
	return floats.Span(make([]float64, gr.Divs+1), gr.Min, gr.Max)
}

func isFinite(x float64) bool { return !math.IsNaN(x) && !math.IsInf(x, 0) }

// RateTable holds gating kinetics sampled on a uniform voltage grid,
// as A = rate toward the open state and B = total relaxation rate,
// so that dx/dt = A - B x, inf = A/B and tau = 1/B.
type RateTable struct {

	// voltage range of the table
	Range minmax.F64

	// number of divisions: len(A) == len(B) == Divs+1
	Divs int

	// use linear interpolation between samples, else the sample at or below v
	Interp bool

	// A = alpha = inf/tau
	A []float64

	// B = alpha + beta = 1/tau
	B []float64

	invDx float64
}

// NewTable returns a table over grid for pre-tabulated arrays,
// which must have grid.Divs+1 finite values each satisfying the
// (A, B) invariants (see Validate).  The arrays are copied.
func NewTable(grid Grid, a, b []float64) (*RateTable, error) {
	if err := grid.Validate(); err != nil {
		return nil, err
	}
	a = append([]float64(nil), a...)
	b = append([]float64(nil), b...)
	rt := &RateTable{Divs: grid.Divs, Interp: true, A: a, B: b}
	rt.Range.Min, rt.Range.Max = grid.Min, grid.Max
	rt.Update()
	if err := rt.Validate(); err != nil {
		return nil, err
	}
	return rt, nil
}

// Update recomputes the cached grid spacing
func (rt *RateTable) Update() {
	rt.invDx = float64(rt.Divs) / rt.Range.Range()
}

// Grid returns the grid of the table
func (rt *RateTable) Grid() Grid {
	return Grid{Min: rt.Range.Min, Max: rt.Range.Max, Divs: rt.Divs}
}

// Validate checks lengths, finiteness, B >= 0, A == 0 where B == 0,
// and 0 <= A/B <= 1 where B > 0
func (rt *RateTable) Validate() error {
	gr := rt.Grid()
	if err := gr.Validate(); err != nil {
		return err
	}
	n := rt.Divs + 1
	if len(rt.A) != n || len(rt.B) != n {
		return fmt.Errorf("%w: len(A) %d, len(B) %d, want divs+1 = %d", ErrTable, len(rt.A), len(rt.B), n)
	}
	if floats.HasNaN(rt.A) || floats.HasNaN(rt.B) {
		return fmt.Errorf("%w: NaN values", ErrTable)
	}
	for i := 0; i < n; i++ {
		a, b := rt.A[i], rt.B[i]
		if math.IsInf(a, 0) || math.IsInf(b, 0) {
			return fmt.Errorf("%w: infinite value at index %d (v = %v)", ErrTable, i, rt.V(i))
		}
		if b < 0 {
			return fmt.Errorf("%w: negative B %v at index %d (v = %v)", ErrTable, b, i, rt.V(i))
		}
		if b == 0 {
			if a != 0 {
				return fmt.Errorf("%w: A %v with B == 0 at index %d (v = %v)", ErrTable, a, i, rt.V(i))
			}
			continue
		}
		if inf := a / b; inf < -infTol || inf > 1+infTol {
			return fmt.Errorf("%w: A/B = %v outside [0,1] at index %d (v = %v)", ErrTable, inf, i, rt.V(i))
		}
	}
	return nil
}

// Len returns the number of samples
func (rt *RateTable) Len() int { return rt.Divs + 1 }

// V returns the voltage of sample i
func (rt *RateTable) V(i int) float64 {
	dx := rt.Range.Range() / float64(rt.Divs)
	return rt.Range.Min + dx*float64(i)
}

// Lookup returns A and B at voltage v.  Voltages outside the range
// clamp to the edge samples.
func (rt *RateTable) Lookup(v float64) (a, b float64) {
	if v >= rt.Range.Max {
		return rt.A[rt.Divs], rt.B[rt.Divs]
	}
	v = rt.Range.ClipVal(v)
	f := (v - rt.Range.Min) * rt.invDx
	i := ints.MinInt(ints.MaxInt(int(f), 0), rt.Divs)
	if !rt.Interp || i == rt.Divs {
		return rt.A[i], rt.B[i]
	}
	fr := f - float64(i)
	a = rt.A[i] + fr*(rt.A[i+1]-rt.A[i])
	b = rt.B[i] + fr*(rt.B[i+1]-rt.B[i])
	return
}

// Alpha returns the forward rate at sample i
func (rt *RateTable) Alpha(i int) float64 { return rt.A[i] }

// Beta returns the backward rate at sample i
func (rt *RateTable) Beta(i int) float64 { return rt.B[i] - rt.A[i] }

// Tau returns the time constant at sample i, 0 where B == 0
func (rt *RateTable) Tau(i int) float64 {
	if rt.B[i] == 0 {
		return 0
	}
	return 1 / rt.B[i]
}

// Inf returns the steady state at sample i, 0 where B == 0
func (rt *RateTable) Inf(i int) float64 {
	if rt.B[i] == 0 {
		return 0
	}
	return rt.A[i] / rt.B[i]
}

// Bytes returns the memory used by the sample arrays
func (rt *RateTable) Bytes() int {
	return 8 * (len(rt.A) + len(rt.B))
}
