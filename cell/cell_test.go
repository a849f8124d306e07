// Copyright (c) 2026, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cell

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/emer/hhchan/capool"
	"github.com/emer/hhchan/channels"
	"github.com/emer/hhchan/chans"
	"github.com/emer/hhchan/hhgate"
	"github.com/emer/hhchan/ratelaw"
)

// difTol is the numerical difference tolerance for comparing vs. target values
const difTol = 1.0e-12

func constGate(name string, a, b float64) *hhgate.Gate {
	return hhgate.NewAlphaBeta(name,
		ratelaw.MustCompile(ratelaw.Num(a), ratelaw.Options{}),
		ratelaw.MustCompile(ratelaw.Num(b), ratelaw.Options{}))
}

// feedbackCell has a calcium producer P writing pool Ca and a consumer
// K whose gate opens with Ca, added consumer first
func feedbackCell() *Cell {
	c := NewCell("Feedback")
	c.Dt = 1e-5
	opts := ratelaw.Options{Conc: true}
	k := hhgate.NewAlphaBeta("m",
		ratelaw.MustCompile(ratelaw.Mul(ratelaw.Num(1e6), ratelaw.C()), opts),
		ratelaw.MustCompile(ratelaw.Num(100), opts))
	k.ConcName = "Ca"
	c.AddChannel(&chans.Spec{Name: "K", Ek: -0.09, Gbar: 10, Xpower: 1, X: k})
	c.AddChannel(&chans.Spec{Name: "P", Ek: 0.08, Gbar: 1, Xpower: 1, X: constGate("m", 1000, 1000), CaOut: "Ca"})
	c.AddPool(capool.NewPool("Ca"))
	return c
}

func TestCompart(t *testing.T) {
	var cp Compart
	cp.Defaults()
	area := math.Pi * 1e-10
	if math.Abs(cp.Area-area)/area > difTol {
		t.Errorf("sphere area err: %v, cor: %v", cp.Area, area)
	}
	if math.Abs(cp.Cm-0.01*area)/(0.01*area) > difTol {
		t.Errorf("Cm err: %v", cp.Cm)
	}
	if math.Abs(cp.Rm*0.330033*area-1) > 1e-9 {
		t.Errorf("Rm err: %v", cp.Rm)
	}
	if a := SurfaceArea(2e-6, 100e-6); math.Abs(a-math.Pi*2e-10)/a > difTol {
		t.Errorf("cylinder area err: %v", a)
	}

	// passive relaxation toward Em + Inject Rm, exact for any dt
	cp.Inject = 10e-12
	var cs chans.Chans
	vinf, tau := cp.VmInf(&cs)
	if math.Abs(vinf-(cp.Em+cp.Inject*cp.Rm)) > 1e-12 || math.Abs(tau-cp.Rm*cp.Cm)/tau > 1e-9 {
		t.Errorf("passive steady state err: vinf: %v, tau: %v", vinf, tau)
	}
	vm := cp.VmStep(cp.Em, &cs, tau)
	cor := vinf + (cp.Em-vinf)*math.Exp(-1)
	if math.Abs(vm-cor) > 1e-12 {
		t.Errorf("passive step err: %v, cor: %v", vm, cor)
	}
	two := cp.VmStep(cp.VmStep(cp.Em, &cs, tau/2), &cs, tau/2)
	if math.Abs(two-vm) > 1e-12 {
		t.Errorf("step composition err: %v, %v", two, vm)
	}
}

func TestValidate(t *testing.T) {
	c := feedbackCell()
	if err := c.Validate(); err != nil {
		t.Fatal(err)
	}
	c = NewCell("NoPool")
	c.AddChannel(&chans.Spec{Name: "P", Ek: 0.08, Gbar: 1, Xpower: 1, X: constGate("m", 1, 1), CaOut: "Ca"})
	if err := c.Validate(); !errors.Is(err, ErrPool) {
		t.Errorf("missing pool err: %v", err)
	}
	c = feedbackCell()
	c.Dt = 0
	if err := c.Validate(); err == nil {
		t.Errorf("zero timestep should fail")
	}
}

func TestValidateChans(t *testing.T) {
	c := NewCell("BadPower")
	c.AddChannel(&chans.Spec{Name: "NegPow", Ek: -0.09, Gbar: 10, Xpower: -1, X: constGate("m", 1, 1)})
	if err := c.Validate(); !errors.Is(err, chans.ErrPower) {
		t.Errorf("negative power err: %v", err)
	}
	if err := c.BuildTables(hhgate.Grid{Min: -0.1, Max: 0.05, Divs: 10}); !errors.Is(err, chans.ErrPower) {
		t.Errorf("negative power build err: %v", err)
	}

	c = NewCell("NoGate")
	c.AddChannel(&chans.Spec{Name: "NoGate", Ek: -0.09, Gbar: 10, Xpower: 2})
	if err := c.Validate(); !errors.Is(err, chans.ErrGate) {
		t.Errorf("missing gate err: %v", err)
	}
	if err := c.BuildTables(hhgate.Grid{Min: -0.1, Max: 0.05, Divs: 10}); !errors.Is(err, chans.ErrGate) {
		t.Errorf("missing gate build err: %v", err)
	}

	// both reported together with a missing timestep
	c.AddChannel(&chans.Spec{Name: "NegPow", Ek: -0.09, Gbar: 10, Xpower: -1, X: constGate("m", 1, 1)})
	c.Dt = 0
	err := c.Validate()
	if !errors.Is(err, chans.ErrGate) || !errors.Is(err, chans.ErrPower) || !strings.Contains(err.Error(), "timestep") {
		t.Errorf("joined err: %v", err)
	}
}

func TestFeedbackOrder(t *testing.T) {
	c := feedbackCell()
	c.Init()
	k := c.Channel("K")
	p := c.Channel("P")
	pl := c.Pool("Ca")
	vm := c.Vm
	x0 := k.X.X
	c0 := pl.Ca
	if math.Abs(x0-hhgate.Inf(k.X.Rates(vm, c0))) > difTol {
		t.Fatalf("init err: %v", x0)
	}

	// expected: producer current, then pool, then consumer at the new Ca
	px := hhgate.Step(p.X.X, 1000, 2000, c.Dt)
	ip := chans.Current(p.Gbar()*px, vm, p.Spec.Ek)
	c1 := pl.Params.Step(c0, ip, c.Dt)
	a, b := k.X.Rates(vm, c1)
	xcor := hhgate.Step(x0, a, b, c.Dt)
	a, b = k.X.Rates(vm, c0)
	xstale := hhgate.Step(x0, a, b, c.Dt)

	c.Step()
	if math.Abs(pl.Ca-c1) > difTol*c1 || !(pl.Ca > c0) {
		t.Errorf("pool err: %v, cor: %v, basal: %v", pl.Ca, c1, c0)
	}
	if pl.IPrv != p.Ik || !(p.Ik < 0) {
		t.Errorf("producer current err: %v, %v", pl.IPrv, p.Ik)
	}
	if math.Abs(k.X.X-xcor) > difTol {
		t.Errorf("consumer err: %v, cor: %v", k.X.X, xcor)
	}
	if math.Abs(xcor-xstale) < 1e-6 {
		t.Errorf("same-step calcium should matter: %v, stale: %v", xcor, xstale)
	}
	if c.Cycle != 1 || math.Abs(c.Time-c.Dt) > difTol {
		t.Errorf("time err: %v, %v", c.Cycle, c.Time)
	}
	g := k.Gk + p.Gk
	if math.Abs(c.Sum.G-g) > difTol*g {
		t.Errorf("summed conductance err: %v, cor: %v", c.Sum.G, g)
	}
}

func TestRecorder(t *testing.T) {
	c := feedbackCell()
	c.Init()
	rec := NewRecorder(c, 2)
	if n := c.Run(10*c.Dt, rec); n != 10 {
		t.Errorf("steps err: %v", n)
	}
	if rec.Table.Rows != 5 {
		t.Errorf("rows err: %v, cor: 5", rec.Table.Rows)
	}
	for _, cn := range []string{"Time", "Vm", "Ca", "K_Gk", "K_Ik", "K_m", "P_m"} {
		if rec.Table.ColByName(cn) == nil {
			t.Errorf("missing column: %v", cn)
		}
	}
	if tm := rec.Table.CellFloat("Time", 4); math.Abs(tm-10*c.Dt) > difTol {
		t.Errorf("last time err: %v", tm)
	}
	if ca := rec.Table.CellFloat("Ca", 4); ca != c.Pool("Ca").Ca {
		t.Errorf("logged Ca err: %v, cor: %v", ca, c.Pool("Ca").Ca)
	}
	dir := t.TempDir()
	if err := rec.SaveCSV(filepath.Join(dir, "log.tsv")); err != nil {
		t.Fatal(err)
	}
	fn := filepath.Join(dir, "Vm.dat")
	if err := rec.SaveColumn("Vm", fn); err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(fn)
	if err != nil {
		t.Fatal(err)
	}
	if lines := strings.Split(strings.TrimSpace(string(b)), "\n"); len(lines) != 5 {
		t.Errorf("dat lines err: %v, cor: 5", len(lines))
	}
	rec.Reset()
	if rec.Table.Rows != 0 || rec.Count != 0 {
		t.Errorf("reset err: %v", rec.Table.Rows)
	}
}

func squidCell(t *testing.T) *Cell {
	c := NewCell("Squid")
	c.Dt = 1e-5
	c.Compart.Diameter = 30e-6
	c.Compart.RmSpec = 1 / 3.0
	c.Compart.Em = channels.SquidErest + 10.613e-3
	c.Compart.InitVm = channels.SquidErest
	c.Update()
	lb := channels.SquidLibrary()
	for _, nm := range lb.Names() {
		sp, err := lb.New(nm)
		if err != nil {
			t.Fatal(err)
		}
		c.AddChannel(sp)
	}
	if err := c.BuildTables(channels.SquidGrid()); err != nil {
		t.Fatal(err)
	}
	if err := c.Validate(); err != nil {
		t.Fatal(err)
	}
	return c
}

func TestSquidSpike(t *testing.T) {
	c := squidCell(t)
	c.Init()
	c.Run(0.02, nil)
	if math.Abs(c.Vm-channels.SquidErest) > 1e-3 {
		t.Errorf("rest err: %v, cor: %v", c.Vm, channels.SquidErest)
	}
	c.Compart.Inject = 1e-9
	vmax := c.Vm
	for i := 0; i < c.Steps(0.02); i++ {
		c.Step()
		if math.IsNaN(c.Vm) {
			t.Fatalf("NaN Vm at step: %v", i)
		}
		vmax = math.Max(vmax, c.Vm)
	}
	if !(vmax > 0) {
		t.Errorf("no spike: max Vm: %v", vmax)
	}
	if rpt := c.SizeReport(); !strings.Contains(rpt, "Tables: 3") {
		t.Errorf("size report err: %v", rpt)
	}
}

func TestGranuleRest(t *testing.T) {
	gp := &channels.GranuleParams{}
	gp.Defaults()
	c := NewCell("Granule")
	c.Dt = 1e-5
	lb := channels.GranuleLibrary(gp)
	for _, nm := range lb.Names() {
		sp, err := lb.New(nm)
		if err != nil {
			t.Fatal(err)
		}
		c.AddChannel(sp)
	}
	pl := capool.NewPool(gp.CaPool)
	pl.Params.CaBasal = gp.CaBasal
	pl.Params.Update()
	c.AddPool(pl)
	if err := c.Validate(); err != nil {
		t.Fatal(err)
	}
	if err := c.BuildTables(channels.GranuleGrid()); err != nil {
		t.Fatal(err)
	}
	c.Init()
	for i := 0; i < 1000; i++ {
		c.Step()
		if math.IsNaN(c.Vm) || c.Vm < -0.095 || c.Vm > 0.085 {
			t.Fatalf("Vm out of range: step: %v, Vm: %v", i, c.Vm)
		}
		if !(pl.Ca >= 0) {
			t.Fatalf("negative Ca: step: %v, Ca: %v", i, pl.Ca)
		}
	}
}
