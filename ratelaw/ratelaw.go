// Copyright (c) 2026, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package ratelaw provides closed-form rate functions of membrane voltage
(and optionally ion concentration) for Hodgkin-Huxley style gating kinetics.

A rate law is written as a small typed expression tree (Node), either
directly in Go with the constructors in this file or from text
with Parse.  Compile resolves all identifiers, folds constants and
checks divisions, producing a Law whose Eval method is a pure function
of (v, c).  Let nodes bind a shared sub-expression (e.g., alpha and beta)
once per evaluation and reuse it in the body, so tau = 1/(alpha+beta)
and inf = alpha/(alpha+beta) are always computed from the same values.

Zero denominators never propagate NaN or Inf: each division resolves
to an explicit fallback, either its own (DivOr) or the Law's default.
*/
package ratelaw

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Standard independent variable names
const (
	// VarV is membrane potential, in volts
	VarV = "v"

	// VarC is ion concentration, in mM, for concentration-dependent gates
	VarC = "c"
)

var (
	// ErrUnknownVar is returned for identifiers that are not bound
	ErrUnknownVar = errors.New("ratelaw: unknown variable")

	// ErrDivZero is returned for divisions that can hit zero without a fallback
	ErrDivZero = errors.New("ratelaw: division by zero without fallback")

	// ErrSyntax is returned for malformed expressions
	ErrSyntax = errors.New("ratelaw: malformed expression")
)

// Node is an element of a rate law expression tree
type Node interface {
	fmt.Stringer
	isNode()
}

// Op is an operator for UnaryNode and BinaryNode
type Op int

const (
	OpAdd Op = iota
	OpSub
	OpMul
	OpDiv
	OpPow
	OpLt
	OpLe
	OpGt
	OpGe
	OpEq
	OpNe
	OpAnd
	OpOr
	OpNeg
	OpNot
)

var opNames = [...]string{"+", "-", "*", "/", "^", "<", "<=", ">", ">=", "==", "!=", "&&", "||", "-", "!"}

func (op Op) String() string {
	if op < 0 || int(op) >= len(opNames) {
		return "Op(" + strconv.Itoa(int(op)) + ")"
	}
	return opNames[op]
}

// NumNode is a numeric constant
type NumNode struct {
	Val float64
}

// IdentNode refers to v, c, a named parameter, or an enclosing Let name
type IdentNode struct {
	Name string
}

// UnaryNode is negation or logical not
type UnaryNode struct {
	Op Op
	X  Node
}

// BinaryNode is an arithmetic, comparison or logical operation.
// Comparisons and logical ops evaluate to 1 (true) or 0 (false).
type BinaryNode struct {
	Op   Op
	X, Y Node
}

// CallNode calls one of the builtin functions:
// exp, expm1, log, sqrt, abs (1 arg), pow, min, max (2 args)
type CallNode struct {
	Fn   string
	Args []Node
}

// CondNode is a piecewise branch: Then if If is non-zero, otherwise Else
type CondNode struct {
	If, Then, Else Node
}

// LetNode binds Name to the value of Val, visible only within Body
type LetNode struct {
	Name string
	Val  Node
	Body Node
}

// DivOrNode is X / Y, with Fallback returned when Y evaluates to zero
type DivOrNode struct {
	X, Y     Node
	Fallback float64
}

func (*NumNode) isNode()    {}
func (*IdentNode) isNode()  {}
func (*UnaryNode) isNode()  {}
func (*BinaryNode) isNode() {}
func (*CallNode) isNode()   {}
func (*CondNode) isNode()   {}
func (*LetNode) isNode()    {}
func (*DivOrNode) isNode()  {}

func (n *NumNode) String() string   { return strconv.FormatFloat(n.Val, 'g', -1, 64) }
func (n *IdentNode) String() string { return n.Name }

func (n *UnaryNode) String() string { return n.Op.String() + "(" + n.X.String() + ")" }

func (n *BinaryNode) String() string {
	return "(" + n.X.String() + " " + n.Op.String() + " " + n.Y.String() + ")"
}

func (n *CallNode) String() string {
	args := make([]string, len(n.Args))
	for i, a := range n.Args {
		args[i] = a.String()
	}
	return n.Fn + "(" + strings.Join(args, ", ") + ")"
}

func (n *CondNode) String() string {
	return "(" + n.If.String() + " ? " + n.Then.String() + " : " + n.Else.String() + ")"
}

func (n *LetNode) String() string {
	return "let " + n.Name + " = " + n.Val.String() + "; " + n.Body.String()
}

func (n *DivOrNode) String() string {
	return "divor(" + n.X.String() + ", " + n.Y.String() + ", " + strconv.FormatFloat(n.Fallback, 'g', -1, 64) + ")"
}

///////////////////////////////////////////////////////////////////////
//  Constructors

// Num returns a constant
func Num(x float64) Node { return &NumNode{Val: x} }

// Ident returns a reference to a named value
func Ident(name string) Node { return &IdentNode{Name: name} }

// V returns a reference to membrane potential
func V() Node { return Ident(VarV) }

// C returns a reference to concentration
func C() Node { return Ident(VarC) }

func bin(op Op, x, y Node) Node { return &BinaryNode{Op: op, X: x, Y: y} }

// Add is x + y
func Add(x, y Node) Node { return bin(OpAdd, x, y) }

// Sub is x - y
func Sub(x, y Node) Node { return bin(OpSub, x, y) }

// Mul is x * y
func Mul(x, y Node) Node { return bin(OpMul, x, y) }

// Div is x / y, resolving zero denominators to the Law fallback
func Div(x, y Node) Node { return bin(OpDiv, x, y) }

// Pow is x raised to the power y
func Pow(x, y Node) Node { return bin(OpPow, x, y) }

// Comparisons evaluate to 1 if true and 0 if false.

// Lt is x < y
func Lt(x, y Node) Node { return bin(OpLt, x, y) }

// Le is x <= y
func Le(x, y Node) Node { return bin(OpLe, x, y) }

// Gt is x > y
func Gt(x, y Node) Node { return bin(OpGt, x, y) }

// Ge is x >= y
func Ge(x, y Node) Node { return bin(OpGe, x, y) }

// Eq is x == y
func Eq(x, y Node) Node { return bin(OpEq, x, y) }

// Neg returns -x
func Neg(x Node) Node { return &UnaryNode{Op: OpNeg, X: x} }

// Call returns a call to a builtin function
func Call(fn string, args ...Node) Node { return &CallNode{Fn: fn, Args: args} }

// Exp returns exp(x)
func Exp(x Node) Node { return Call("exp", x) }

// Max returns the larger of x and y
func Max(x, y Node) Node { return Call("max", x, y) }

// Min returns the smaller of x and y
func Min(x, y Node) Node { return Call("min", x, y) }

// Expm1 returns exp(x) - 1, accurate near x == 0
func Expm1(x Node) Node { return Call("expm1", x) }

// If returns a piecewise branch
func If(cond, then, els Node) Node { return &CondNode{If: cond, Then: then, Else: els} }

// Let binds name to val within body
func Let(name string, val, body Node) Node { return &LetNode{Name: name, Val: val, Body: body} }

// DivOr is x / y with an explicit fallback for y == 0
func DivOr(x, y Node, fallback float64) Node { return &DivOrNode{X: x, Y: y, Fallback: fallback} }

// Sum adds all of the given nodes
func Sum(xs ...Node) Node {
	if len(xs) == 0 {
		return Num(0)
	}
	s := xs[0]
	for _, x := range xs[1:] {
		s = Add(s, x)
	}
	return s
}
