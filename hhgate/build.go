// Copyright (c) 2026, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hhgate

import (
	"errors"
	"fmt"
	"sync"
)

// Build samples the scaled kinetics of the gate at the Divs+1 points of
// grid, storing A = inf/tau and B = 1/tau.  2D gates are sampled at CRef.
// Tabulated gates are always sampled on the grid of their Src table.
// The result is validated before it is returned.
func Build(g *Gate, grid Grid) (*RateTable, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	if g.Kind == Tabulated {
		grid = g.Src.Grid()
	}
	if err := grid.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", g.Name, err)
	}
	vs := grid.Points()
	rt := &RateTable{Divs: grid.Divs, Interp: g.Interp, A: make([]float64, len(vs)), B: make([]float64, len(vs))}
	rt.Range.Set(grid.Min, grid.Max)
	rt.Update()
	for i, v := range vs {
		rt.A[i], rt.B[i] = g.Rates(v, g.CRef)
	}
	if err := rt.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", g.Name, err)
	}
	return rt, nil
}

// BuildTable builds the lookup Table of the gate on grid
func (g *Gate) BuildTable(grid Grid) error {
	rt, err := Build(g, grid)
	if err != nil {
		return err
	}
	g.Table = rt
	return nil
}

// BuildAll builds the tables of all gates on grid concurrently.
// Each distinct gate is built once; the returned error joins the
// errors of all gates that failed.
func BuildAll(grid Grid, gates ...*Gate) error {
	seen := make(map[*Gate]bool, len(gates))
	errs := make([]error, len(gates))
	var wg sync.WaitGroup
	for i, g := range gates {
		if g == nil || seen[g] {
			continue
		}
		seen[g] = true
		wg.Add(1)
		go func(i int, g *Gate) {
			defer wg.Done()
			errs[i] = g.BuildTable(grid)
		}(i, g)
	}
	wg.Wait()
	return errors.Join(errs...)
}
