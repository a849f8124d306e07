// Copyright (c) 2026, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hhgate

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/emer/etable/v2/etable"
	"github.com/emer/etable/v2/etensor"
)

// DumpCols are the per-sample columns of ETable, after V
var DumpCols = []string{"A", "B", "alpha", "beta", "tau", "inf"}

// Value returns DumpCols column col at sample i
func (rt *RateTable) Value(col string, i int) float64 {
	switch col {
	case "A":
		return rt.A[i]
	case "B":
		return rt.B[i]
	case "alpha":
		return rt.Alpha(i)
	case "beta":
		return rt.Beta(i)
	case "tau":
		return rt.Tau(i)
	case "inf":
		return rt.Inf(i)
	}
	return 0
}

// ETable returns the table as an etable.Table with a V column
// followed by DumpCols, one row per sample
func (rt *RateTable) ETable(name string) *etable.Table {
	dt := &etable.Table{}
	dt.SetMetaData("name", name)
	dt.SetMetaData("read-only", "true")
	sch := etable.Schema{
		{"V", etensor.FLOAT64, nil, nil},
	}
	for _, cn := range DumpCols {
		sch = append(sch, etable.Column{cn, etensor.FLOAT64, nil, nil})
	}
	n := rt.Len()
	dt.SetFromSchema(sch, n)
	for i := 0; i < n; i++ {
		dt.SetCellFloat("V", i, rt.V(i))
		for _, cn := range DumpCols {
			dt.SetCellFloat(cn, i, rt.Value(cn, i))
		}
	}
	return dt
}

// SaveDat writes each of DumpCols as a two-column (voltage, value)
// tab-separated file named prefix.col.dat in dir, without headers
func (rt *RateTable) SaveDat(dir, prefix string) error {
	n := rt.Len()
	for _, cn := range DumpCols {
		dt := &etable.Table{}
		dt.SetFromSchema(etable.Schema{
			{"V", etensor.FLOAT64, nil, nil},
			{cn, etensor.FLOAT64, nil, nil},
		}, n)
		for i := 0; i < n; i++ {
			dt.SetCellFloat("V", i, rt.V(i))
			dt.SetCellFloat(cn, i, rt.Value(cn, i))
		}
		fn := filepath.Join(dir, fmt.Sprintf("%s.%s.dat", prefix, cn))
		f, err := os.Create(fn)
		if err != nil {
			return err
		}
		err = dt.WriteCSV(f, etable.Tab, false)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return fmt.Errorf("hhgate: writing %s: %w", fn, err)
		}
	}
	return nil
}
