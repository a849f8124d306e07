// Copyright (c) 2026, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package cell integrates a set of channels and calcium pools in one
isopotential compartment, with a fixed timestep.

Each Step runs in an explicit order, so that calcium-dependent gates
see the concentration produced in the same step:

 1. producers (channels with a CaOut pool) advance and add their current to the pool
 2. pools integrate their accumulated current
 3. consumers (channels with 2D gates) advance at the new concentration
 4. all other channels advance
 5. the membrane potential advances under the summed conductances

All channels read the membrane potential from the start of the step.
*/
package cell

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/c2h5oh/datasize"
	"github.com/emer/hhchan/capool"
	"github.com/emer/hhchan/chans"
	"github.com/emer/hhchan/hhgate"
	"github.com/goki/kigen/ordmap"
)

// ErrPool is returned for channels referring to a pool not in the Cell
var ErrPool = errors.New("cell: unknown pool")

// Cell is one compartment with its channels and calcium pools
type Cell struct {

	// name of the cell
	Name string

	// passive compartment parameters
	Compart Compart `view:"inline"`

	// integration timestep in s
	Dt float64 `def:"1e-6"`

	// channel instances, in order added
	Chans *ordmap.Map[string, *chans.Channel]

	// calcium pools, in order added
	Pools *ordmap.Map[string, *capool.Pool]

	// membrane potential in V
	Vm float64 `inactive:"+"`

	// simulated time in s
	Time float64 `inactive:"+"`

	// number of steps since Init
	Cycle int `inactive:"+"`

	// summed channel conductances of the last step
	Sum chans.Chans `inactive:"+"`
}

// NewCell returns an empty cell with default parameters
func NewCell(name string) *Cell {
	c := &Cell{Name: name}
	c.Defaults()
	return c
}

func (c *Cell) Defaults() {
	c.Compart.Defaults()
	c.Dt = 1e-6
	c.Chans = ordmap.New[string, *chans.Channel]()
	c.Pools = ordmap.New[string, *capool.Pool]()
}

// Update must be called after changes to the Compart parameters,
// and updates the area of all channels
func (c *Cell) Update() {
	c.Compart.Update()
	for _, ch := range c.Chans.Vals() {
		ch.Area = c.Compart.Area
	}
	for _, pl := range c.Pools.Vals() {
		pl.Params.Update()
	}
}

// AddChannel adds a new instance of sp, scaled by the compartment area
func (c *Cell) AddChannel(sp *chans.Spec) *chans.Channel {
	ch := sp.NewChannel()
	ch.Area = c.Compart.Area
	c.Chans.Add(sp.Name, ch)
	return ch
}

// AddPool adds a calcium pool
func (c *Cell) AddPool(pl *capool.Pool) *capool.Pool {
	c.Pools.Add(pl.Name, pl)
	return pl
}

// Channel returns the named channel, or nil
func (c *Cell) Channel(name string) *chans.Channel {
	ch, _ := c.Chans.ValByKey(name)
	return ch
}

// Pool returns the named pool, or nil
func (c *Cell) Pool(name string) *capool.Pool {
	pl, _ := c.Pools.ValByKey(name)
	return pl
}

// Validate checks every channel spec, that every pool named by a
// channel exists, and that the timestep is usable
func (c *Cell) Validate() error {
	errs := c.validateChans()
	if !(c.Dt > 0) || math.IsInf(c.Dt, 0) {
		errs = append(errs, fmt.Errorf("cell %s: timestep %v must be positive", c.Name, c.Dt))
	}
	for _, ch := range c.Chans.Vals() {
		for _, pn := range []string{ch.CaOut(), ch.ConcName()} {
			if pn == "" {
				continue
			}
			if _, ok := c.Pools.ValByKey(pn); !ok {
				errs = append(errs, fmt.Errorf("%w: %q in channel %s", ErrPool, pn, ch.Name()))
			}
		}
	}
	return errors.Join(errs...)
}

// validateChans returns the errors of each channel Spec.Validate
func (c *Cell) validateChans() []error {
	var errs []error
	for _, ch := range c.Chans.Vals() {
		if err := ch.Spec.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("cell %s: %w", c.Name, err))
		}
	}
	return errs
}

// BuildTables builds the rate tables of all channel gates on grid,
// concurrently.  Invalid channel specs are reported and nothing is built.
func (c *Cell) BuildTables(grid hhgate.Grid) error {
	if errs := c.validateChans(); len(errs) > 0 {
		return errors.Join(errs...)
	}
	var gs []*hhgate.Gate
	for _, ch := range c.Chans.Vals() {
		gs = append(gs, ch.Gates()...)
	}
	if err := hhgate.BuildAll(grid, gs...); err != nil {
		return fmt.Errorf("cell %s: %w", c.Name, err)
	}
	return nil
}

// conc returns the concentration read by ch, 0 if it reads none
func (c *Cell) conc(ch *chans.Channel) float64 {
	pn := ch.ConcName()
	if pn == "" {
		return 0
	}
	if pl, ok := c.Pools.ValByKey(pn); ok {
		return pl.Ca
	}
	return 0
}

// Init resets time, pools and membrane potential, and sets all gates
// to their steady state
func (c *Cell) Init() {
	c.Time = 0
	c.Cycle = 0
	c.Vm = c.Compart.InitVm
	for _, pl := range c.Pools.Vals() {
		pl.Init()
	}
	c.Sum.Reset()
	for _, ch := range c.Chans.Vals() {
		ch.Init(c.Vm, c.conc(ch))
		c.Sum.Add(ch.Gk, ch.Spec.Ek)
	}
}

// Step advances the cell by one timestep Dt
func (c *Cell) Step() {
	vm, dt := c.Vm, c.Dt
	chs := c.Chans.Vals()

	for _, ch := range chs {
		if ch.CaOut() == "" {
			continue
		}
		ch.Step(vm, c.conc(ch), dt)
		if pl, ok := c.Pools.ValByKey(ch.CaOut()); ok {
			pl.AddCurrent(ch.Ik)
		}
	}
	for _, pl := range c.Pools.Vals() {
		pl.Step(dt)
	}
	for _, ch := range chs {
		if ch.CaOut() == "" && ch.ConcName() != "" {
			ch.Step(vm, c.conc(ch), dt)
		}
	}
	for _, ch := range chs {
		if ch.CaOut() == "" && ch.ConcName() == "" {
			ch.Step(vm, 0, dt)
		}
	}

	c.Sum.Reset()
	for _, ch := range chs {
		c.Sum.Add(ch.Gk, ch.Spec.Ek)
	}
	c.Vm = c.Compart.VmStep(vm, &c.Sum, dt)
	c.Time += dt
	c.Cycle++
}

// Steps returns the number of whole steps covering duration
func (c *Cell) Steps(duration float64) int {
	return int(math.Round(duration / c.Dt))
}

// Run runs the cell for duration in s, recording each step to rec if
// non-nil, and returns the number of steps taken
func (c *Cell) Run(duration float64, rec *Recorder) int {
	n := c.Steps(duration)
	for i := 0; i < n; i++ {
		c.Step()
		if rec != nil {
			rec.Record(c)
		}
	}
	return n
}

// Current returns the total outward channel current at the present Vm
func (c *Cell) Current() float64 {
	return c.Sum.Current(c.Vm)
}

// SizeReport returns a string reporting the rate tables of each channel
// and their total memory footprint.  Tables shared by several gates are
// counted once.
func (c *Cell) SizeReport() string {
	var b strings.Builder
	seen := map[*hhgate.RateTable]bool{}
	ntab := 0
	mem := 0
	for _, ch := range c.Chans.Vals() {
		cmem := 0
		for _, g := range ch.Gates() {
			rt := g.Table
			if rt == nil || seen[rt] {
				continue
			}
			seen[rt] = true
			ntab++
			cmem += rt.Bytes()
		}
		mem += cmem
		fmt.Fprintf(&b, "%14s:\t Gates: %d\t TableMem: %v\n", ch.Name(), len(ch.Gates()), (datasize.ByteSize)(cmem).HumanReadable())
	}
	fmt.Fprintf(&b, "\n\n%14s:\t Chans: %d\t Pools: %d\t Tables: %d\t TableMem: %v\n", c.Name, c.Chans.Len(), c.Pools.Len(), ntab, (datasize.ByteSize)(mem).HumanReadable())
	return b.String()
}
