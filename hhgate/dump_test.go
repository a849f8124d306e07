// Copyright (c) 2026, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hhgate

import (
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

func TestETable(t *testing.T) {
	g := kdrGate(t)
	gr := Grid{Min: -0.1, Max: 0.05, Divs: 30}
	if err := g.BuildTable(gr); err != nil {
		t.Fatal(err)
	}
	dt := g.Table.ETable("KDr_m")
	if dt.Rows != gr.Divs+1 {
		t.Errorf("rows err: %v, cor: %v", dt.Rows, gr.Divs+1)
	}
	if len(dt.Cols) != len(DumpCols)+1 {
		t.Errorf("cols err: %v, cor: %v", len(dt.Cols), len(DumpCols)+1)
	}
	for i := 0; i < dt.Rows; i += 5 {
		if v := dt.CellFloat("V", i); math.Abs(v-g.Table.V(i)) > difTol {
			t.Errorf("V err: idx: %v, v: %v, cor: %v", i, v, g.Table.V(i))
		}
		if tau := dt.CellFloat("tau", i); relDif(tau, g.Table.Tau(i)) > difTol {
			t.Errorf("tau err: idx: %v, tau: %v, cor: %v", i, tau, g.Table.Tau(i))
		}
		al, be := dt.CellFloat("alpha", i), dt.CellFloat("beta", i)
		if relDif(al+be, dt.CellFloat("B", i)) > relTol {
			t.Errorf("alpha + beta err: idx: %v, sum: %v, B: %v", i, al+be, dt.CellFloat("B", i))
		}
	}
}

func TestSaveDat(t *testing.T) {
	g := kdrGate(t)
	gr := Grid{Min: -0.1, Max: 0.05, Divs: 20}
	if err := g.BuildTable(gr); err != nil {
		t.Fatal(err)
	}
	dir := t.TempDir()
	if err := g.Table.SaveDat(dir, "KDr.m"); err != nil {
		t.Fatal(err)
	}
	for _, cn := range DumpCols {
		b, err := os.ReadFile(filepath.Join(dir, "KDr.m."+cn+".dat"))
		if err != nil {
			t.Fatal(err)
		}
		lines := strings.Split(strings.TrimSpace(string(b)), "\n")
		if len(lines) != gr.Divs+1 {
			t.Errorf("%s lines err: %v, cor: %v", cn, len(lines), gr.Divs+1)
			continue
		}
		flds := strings.Split(strings.TrimSpace(lines[0]), "\t")
		if len(flds) != 2 {
			t.Errorf("%s fields err: %q", cn, lines[0])
			continue
		}
		v, err := strconv.ParseFloat(flds[0], 64)
		if err != nil || math.Abs(v-gr.Min) > 1e-6 {
			t.Errorf("%s first voltage err: %q, err: %v", cn, flds[0], err)
		}
	}
	if err := g.Table.SaveDat(filepath.Join(dir, "missing"), "x"); err == nil {
		t.Errorf("missing dir should fail")
	}
}
