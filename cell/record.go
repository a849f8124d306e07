// Copyright (c) 2026, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cell

import (
	"errors"
	"os"
	"strconv"

	"github.com/emer/etable/v2/etable"
	"github.com/emer/etable/v2/etensor"
)

// LogPrec is the precision for saving float values in logs
const LogPrec = 8

// ConfigLog adds the columns logged by Log to the schema: Time, Vm,
// the concentration of each pool, and per channel its conductance Gk,
// current Ik and gate states, named e.g. NaF_Gk and NaF_m
func (c *Cell) ConfigLog(sch *etable.Schema) {
	*sch = append(*sch, etable.Column{"Time", etensor.FLOAT64, nil, nil})
	*sch = append(*sch, etable.Column{"Vm", etensor.FLOAT64, nil, nil})
	for _, pn := range c.Pools.Keys() {
		*sch = append(*sch, etable.Column{pn, etensor.FLOAT64, nil, nil})
	}
	for _, ch := range c.Chans.Vals() {
		nm := ch.Name()
		*sch = append(*sch, etable.Column{nm + "_Gk", etensor.FLOAT64, nil, nil})
		*sch = append(*sch, etable.Column{nm + "_Ik", etensor.FLOAT64, nil, nil})
		for _, g := range ch.Gates() {
			*sch = append(*sch, etable.Column{nm + "_" + g.Name, etensor.FLOAT64, nil, nil})
		}
	}
}

// Log writes the present state to the given row, in ConfigLog columns
func (c *Cell) Log(dt *etable.Table, row int) {
	dt.SetCellFloat("Time", row, c.Time)
	dt.SetCellFloat("Vm", row, c.Vm)
	for _, pl := range c.Pools.Vals() {
		dt.SetCellFloat(pl.Name, row, pl.Ca)
	}
	for _, ch := range c.Chans.Vals() {
		nm := ch.Name()
		dt.SetCellFloat(nm+"_Gk", row, ch.Gk)
		dt.SetCellFloat(nm+"_Ik", row, ch.Ik)
		for _, g := range ch.Gates() {
			dt.SetCellFloat(nm+"_"+g.Name, row, g.X)
		}
	}
}

// Recorder logs the state of a Cell every Every steps into a Table
type Recorder struct {

	// log table, configured from the cell by NewRecorder
	Table *etable.Table

	// record every this many calls to Record
	Every int `def:"1" min:"1"`

	// number of calls to Record since the last Reset
	Count int `inactive:"+"`
}

// NewRecorder returns a recorder for the columns of c, logging every
// given number of steps (1 if every < 1)
func NewRecorder(c *Cell, every int) *Recorder {
	if every < 1 {
		every = 1
	}
	dt := &etable.Table{}
	dt.SetMetaData("name", c.Name+"Log")
	dt.SetMetaData("read-only", "true")
	dt.SetMetaData("precision", strconv.Itoa(LogPrec))
	sch := etable.Schema{}
	c.ConfigLog(&sch)
	dt.SetFromSchema(sch, 0)
	return &Recorder{Table: dt, Every: every}
}

// Reset clears all rows
func (rc *Recorder) Reset() {
	rc.Table.SetNumRows(0)
	rc.Count = 0
}

// Record counts one step of c and logs it on every Every-th call
func (rc *Recorder) Record(c *Cell) {
	rc.Count++
	if rc.Count%rc.Every != 0 {
		return
	}
	row := rc.Table.Rows
	rc.Table.SetNumRows(row + 1)
	c.Log(rc.Table, row)
}

// SaveCSV writes the log with column headers, tab separated
func (rc *Recorder) SaveCSV(fname string) error {
	f, err := os.Create(fname)
	if err != nil {
		return err
	}
	err = rc.Table.WriteCSV(f, etable.Tab, true)
	return errors.Join(err, f.Close())
}

// SaveColumn writes one logged column against Time, as two tab
// separated columns without headers
func (rc *Recorder) SaveColumn(col, fname string) error {
	src := rc.Table
	dt := &etable.Table{}
	sch := etable.Schema{
		{"Time", etensor.FLOAT64, nil, nil},
		{col, etensor.FLOAT64, nil, nil},
	}
	dt.SetFromSchema(sch, src.Rows)
	for r := 0; r < src.Rows; r++ {
		dt.SetCellFloat("Time", r, src.CellFloat("Time", r))
		dt.SetCellFloat(col, r, src.CellFloat(col, r))
	}
	f, err := os.Create(fname)
	if err != nil {
		return err
	}
	err = dt.WriteCSV(f, etable.Tab, false)
	return errors.Join(err, f.Close())
}
