// Copyright (c) 2026, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ratelaw

import (
	"fmt"
	"math"
)

// Options control compilation of a rate law
type Options struct {

	// allow references to the concentration variable c (2D gates)
	Conc bool

	// named constants substituted at compile time, e.g., a Q10 multiplier or voltage offset
	Params map[string]float64

	// value returned for zero denominators of plain divisions,
	// and for any non-finite result of the whole expression
	Fallback float64

	// if true, plain divisions by anything other than a non-zero constant
	// are rejected and must be written with DivOr
	NoFallback bool
}

// inlineSlots is the number of Let slots evaluated without allocation
const inlineSlots = 8

type frame struct {
	v, c  float64
	slots []float64
}

type evalFn func(fr *frame) float64

// Law is a compiled rate law.  Eval is safe for concurrent use.
type Law struct {
	node     Node
	root     evalFn
	nslot    int
	conc     bool
	usesConc bool
	fallback float64
}

// Compile checks the expression and returns the compiled Law.
// All errors are construction-time errors: unknown identifiers,
// unknown functions or wrong argument counts, and divisions that
// violate the fallback policy of Options.
func Compile(n Node, opts Options) (*Law, error) {
	if n == nil {
		return nil, fmt.Errorf("%w: nil expression", ErrSyntax)
	}
	c := &compiler{opts: opts}
	cn, err := c.compile(n)
	if err != nil {
		return nil, err
	}
	l := &Law{node: n, root: cn.fn, nslot: c.nslot, conc: opts.Conc, usesConc: c.usesConc, fallback: opts.Fallback}
	return l, nil
}

// MustCompile is Compile that panics on error, for static definitions
func MustCompile(n Node, opts Options) *Law {
	l, err := Compile(n, opts)
	if err != nil {
		panic(err)
	}
	return l
}

// Eval returns the rate at voltage v and concentration c.
// The result is always finite: NaN or Inf resolve to the fallback.
func (l *Law) Eval(v, c float64) float64 {
	var buf [inlineSlots]float64
	fr := frame{v: v, c: c}
	if l.nslot <= inlineSlots {
		fr.slots = buf[:l.nslot]
	} else {
		fr.slots = make([]float64, l.nslot)
	}
	r := l.root(&fr)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return l.fallback
	}
	return r
}

// EvalV evaluates a voltage-only law
func (l *Law) EvalV(v float64) float64 { return l.Eval(v, 0) }

// UsesConc returns true if the law references the concentration variable
func (l *Law) UsesConc() bool { return l.usesConc }

// Fallback returns the default fallback value
func (l *Law) Fallback() float64 { return l.fallback }

// Node returns the source expression tree
func (l *Law) Node() Node { return l.node }

func (l *Law) String() string { return l.node.String() }

///////////////////////////////////////////////////////////////////////
//  compiler

type cnode struct {
	fn      evalFn
	isConst bool
	val     float64
}

func constNode(x float64) cnode {
	return cnode{fn: func(*frame) float64 { return x }, isConst: true, val: x}
}

type binding struct {
	name string
	slot int
}

type compiler struct {
	opts     Options
	scope    []binding
	nslot    int
	usesConc bool
}

func (c *compiler) lookup(name string) (int, bool) {
	for i := len(c.scope) - 1; i >= 0; i-- {
		if c.scope[i].name == name {
			return c.scope[i].slot, true
		}
	}
	return -1, false
}

func (c *compiler) compile(n Node) (cnode, error) {
	switch n := n.(type) {
	case *NumNode:
		return constNode(n.Val), nil
	case *IdentNode:
		return c.ident(n.Name)
	case *UnaryNode:
		x, err := c.compile(n.X)
		if err != nil {
			return cnode{}, err
		}
		return unary(n.Op, x)
	case *BinaryNode:
		return c.binary(n)
	case *CallNode:
		return c.call(n)
	case *CondNode:
		return c.cond(n)
	case *LetNode:
		return c.let(n)
	case *DivOrNode:
		x, err := c.compile(n.X)
		if err != nil {
			return cnode{}, err
		}
		y, err := c.compile(n.Y)
		if err != nil {
			return cnode{}, err
		}
		return divide(x, y, n.Fallback), nil
	case nil:
		return cnode{}, fmt.Errorf("%w: nil node", ErrSyntax)
	}
	return cnode{}, fmt.Errorf("%w: unsupported node %T", ErrSyntax, n)
}

func (c *compiler) ident(name string) (cnode, error) {
	if slot, ok := c.lookup(name); ok {
		return cnode{fn: func(fr *frame) float64 { return fr.slots[slot] }}, nil
	}
	switch name {
	case VarV:
		return cnode{fn: func(fr *frame) float64 { return fr.v }}, nil
	case VarC:
		if !c.opts.Conc {
			return cnode{}, fmt.Errorf("%w: %q (concentration axis not enabled)", ErrUnknownVar, name)
		}
		c.usesConc = true
		return cnode{fn: func(fr *frame) float64 { return fr.c }}, nil
	}
	if val, ok := c.opts.Params[name]; ok {
		return constNode(val), nil
	}
	return cnode{}, fmt.Errorf("%w: %q", ErrUnknownVar, name)
}

func (c *compiler) let(n *LetNode) (cnode, error) {
	if n.Name == VarV || n.Name == VarC || n.Name == "" {
		return cnode{}, fmt.Errorf("%w: cannot bind %q", ErrSyntax, n.Name)
	}
	val, err := c.compile(n.Val)
	if err != nil {
		return cnode{}, err
	}
	slot := c.nslot
	c.nslot++
	c.scope = append(c.scope, binding{name: n.Name, slot: slot})
	body, err := c.compile(n.Body)
	c.scope = c.scope[:len(c.scope)-1]
	if err != nil {
		return cnode{}, err
	}
	if body.isConst {
		return body, nil
	}
	vf, bf := val.fn, body.fn
	return cnode{fn: func(fr *frame) float64 {
		fr.slots[slot] = vf(fr)
		return bf(fr)
	}}, nil
}

func (c *compiler) cond(n *CondNode) (cnode, error) {
	cd, err := c.compile(n.If)
	if err != nil {
		return cnode{}, err
	}
	th, err := c.compile(n.Then)
	if err != nil {
		return cnode{}, err
	}
	el, err := c.compile(n.Else)
	if err != nil {
		return cnode{}, err
	}
	if cd.isConst {
		if cd.val != 0 {
			return th, nil
		}
		return el, nil
	}
	cf, tf, ef := cd.fn, th.fn, el.fn
	return cnode{fn: func(fr *frame) float64 {
		if cf(fr) != 0 {
			return tf(fr)
		}
		return ef(fr)
	}}, nil
}

func (c *compiler) binary(n *BinaryNode) (cnode, error) {
	x, err := c.compile(n.X)
	if err != nil {
		return cnode{}, err
	}
	y, err := c.compile(n.Y)
	if err != nil {
		return cnode{}, err
	}
	if n.Op == OpDiv {
		if y.isConst && y.val == 0 {
			return cnode{}, fmt.Errorf("%w: %v", ErrDivZero, n)
		}
		if c.opts.NoFallback && !y.isConst {
			return cnode{}, fmt.Errorf("%w: %v", ErrDivZero, n)
		}
		return divide(x, y, c.opts.Fallback), nil
	}
	var f func(a, b float64) float64
	switch n.Op {
	case OpAdd:
		f = func(a, b float64) float64 { return a + b }
	case OpSub:
		f = func(a, b float64) float64 { return a - b }
	case OpMul:
		f = func(a, b float64) float64 { return a * b }
	case OpPow:
		f = math.Pow
	case OpLt:
		f = func(a, b float64) float64 { return truth(a < b) }
	case OpLe:
		f = func(a, b float64) float64 { return truth(a <= b) }
	case OpGt:
		f = func(a, b float64) float64 { return truth(a > b) }
	case OpGe:
		f = func(a, b float64) float64 { return truth(a >= b) }
	case OpEq:
		f = func(a, b float64) float64 { return truth(a == b) }
	case OpNe:
		f = func(a, b float64) float64 { return truth(a != b) }
	case OpAnd:
		f = func(a, b float64) float64 { return truth(a != 0 && b != 0) }
	case OpOr:
		f = func(a, b float64) float64 { return truth(a != 0 || b != 0) }
	default:
		return cnode{}, fmt.Errorf("%w: binary operator %v", ErrSyntax, n.Op)
	}
	return apply2(f, x, y), nil
}

func (c *compiler) call(n *CallNode) (cnode, error) {
	args := make([]cnode, len(n.Args))
	for i, a := range n.Args {
		ca, err := c.compile(a)
		if err != nil {
			return cnode{}, err
		}
		args[i] = ca
	}
	if f, ok := funcs1[n.Fn]; ok {
		if len(args) != 1 {
			return cnode{}, fmt.Errorf("%w: %s takes 1 argument, got %d", ErrSyntax, n.Fn, len(args))
		}
		return apply1(f, args[0]), nil
	}
	if f, ok := funcs2[n.Fn]; ok {
		if len(args) != 2 {
			return cnode{}, fmt.Errorf("%w: %s takes 2 arguments, got %d", ErrSyntax, n.Fn, len(args))
		}
		return apply2(f, args[0], args[1]), nil
	}
	return cnode{}, fmt.Errorf("%w: unknown function %q", ErrSyntax, n.Fn)
}

var funcs1 = map[string]func(float64) float64{
	"exp":   math.Exp,
	"expm1": math.Expm1,
	"log":   math.Log,
	"sqrt":  math.Sqrt,
	"abs":   math.Abs,
}

var funcs2 = map[string]func(a, b float64) float64{
	"pow": math.Pow,
	"min": math.Min,
	"max": math.Max,
}

func truth(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func unary(op Op, x cnode) (cnode, error) {
	var f func(float64) float64
	switch op {
	case OpNeg:
		f = func(a float64) float64 { return -a }
	case OpNot:
		f = func(a float64) float64 { return truth(a == 0) }
	default:
		return cnode{}, fmt.Errorf("%w: unary operator %v", ErrSyntax, op)
	}
	return apply1(f, x), nil
}

func apply1(f func(float64) float64, x cnode) cnode {
	if x.isConst {
		return constNode(f(x.val))
	}
	xf := x.fn
	return cnode{fn: func(fr *frame) float64 { return f(xf(fr)) }}
}

func apply2(f func(a, b float64) float64, x, y cnode) cnode {
	if x.isConst && y.isConst {
		return constNode(f(x.val, y.val))
	}
	xf, yf := x.fn, y.fn
	return cnode{fn: func(fr *frame) float64 { return f(xf(fr), yf(fr)) }}
}

func divide(x, y cnode, fallback float64) cnode {
	if y.isConst && y.val == 0 {
		return constNode(fallback)
	}
	if x.isConst && y.isConst {
		return constNode(x.val / y.val)
	}
	xf, yf := x.fn, y.fn
	return cnode{fn: func(fr *frame) float64 {
		d := yf(fr)
		if d == 0 {
			return fallback
		}
		return xf(fr) / d
	}}
}
