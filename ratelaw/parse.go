// Copyright (c) 2026, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ratelaw

import (
	"fmt"

	"github.com/antonmedv/expr/ast"
	"github.com/antonmedv/expr/parser"
)

// Binding is a named sub-expression evaluated once per Eval call,
// available to later bindings and to the body
type Binding struct {
	Name string
	Expr string
}

// Parse converts textual rate-law source into a Node.
// The syntax is the usual infix arithmetic with exp, expm1, log, sqrt, abs,
// pow, min, max calls, comparisons, and / or, and the ternary
// cond ? a : b for piecewise laws, e.g.:
//
//	(v - 10e-3) < -0.060 ? 5.0 : 5 * exp(-50 * ((v - 10e-3) - (-0.06)))
//
// Bindings are wrapped around the body as nested Let nodes, in order.
func Parse(src string, binds ...Binding) (Node, error) {
	body, err := parseExpr(src)
	if err != nil {
		return nil, err
	}
	for i := len(binds) - 1; i >= 0; i-- {
		b := binds[i]
		val, err := parseExpr(b.Expr)
		if err != nil {
			return nil, fmt.Errorf("binding %s: %w", b.Name, err)
		}
		body = Let(b.Name, val, body)
	}
	return body, nil
}

// ParseCompile parses and compiles in one step
func ParseCompile(src string, opts Options, binds ...Binding) (*Law, error) {
	n, err := Parse(src, binds...)
	if err != nil {
		return nil, err
	}
	return Compile(n, opts)
}

func parseExpr(src string) (Node, error) {
	tree, err := parser.Parse(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrSyntax, src, err)
	}
	n, err := convert(tree.Node)
	if err != nil {
		return nil, fmt.Errorf("%q: %w", src, err)
	}
	return n, nil
}

var binaryOps = map[string]Op{
	"+":   OpAdd,
	"-":   OpSub,
	"*":   OpMul,
	"/":   OpDiv,
	"**":  OpPow,
	"^":   OpPow,
	"<":   OpLt,
	"<=":  OpLe,
	">":   OpGt,
	">=":  OpGe,
	"==":  OpEq,
	"!=":  OpNe,
	"&&":  OpAnd,
	"and": OpAnd,
	"||":  OpOr,
	"or":  OpOr,
}

func convert(an ast.Node) (Node, error) {
	switch n := an.(type) {
	case *ast.IntegerNode:
		return Num(float64(n.Value)), nil
	case *ast.FloatNode:
		return Num(n.Value), nil
	case *ast.IdentifierNode:
		return Ident(n.Value), nil
	case *ast.UnaryNode:
		x, err := convert(n.Node)
		if err != nil {
			return nil, err
		}
		switch n.Operator {
		case "-":
			return Neg(x), nil
		case "+":
			return x, nil
		case "!", "not":
			return &UnaryNode{Op: OpNot, X: x}, nil
		}
		return nil, fmt.Errorf("%w: unary operator %q", ErrSyntax, n.Operator)
	case *ast.BinaryNode:
		op, ok := binaryOps[n.Operator]
		if !ok {
			return nil, fmt.Errorf("%w: binary operator %q", ErrSyntax, n.Operator)
		}
		x, err := convert(n.Left)
		if err != nil {
			return nil, err
		}
		y, err := convert(n.Right)
		if err != nil {
			return nil, err
		}
		return bin(op, x, y), nil
	case *ast.ConditionalNode:
		cd, err := convert(n.Cond)
		if err != nil {
			return nil, err
		}
		th, err := convert(n.Exp1)
		if err != nil {
			return nil, err
		}
		el, err := convert(n.Exp2)
		if err != nil {
			return nil, err
		}
		return If(cd, th, el), nil
	case *ast.CallNode:
		id, ok := n.Callee.(*ast.IdentifierNode)
		if !ok {
			return nil, fmt.Errorf("%w: call of %v", ErrSyntax, n.Callee)
		}
		return convertCall(id.Value, n.Arguments)
	case *ast.BuiltinNode:
		return convertCall(n.Name, n.Arguments)
	}
	return nil, fmt.Errorf("%w: unsupported syntax %T", ErrSyntax, an)
}

func convertCall(fn string, aargs []ast.Node) (Node, error) {
	args := make([]Node, len(aargs))
	for i, a := range aargs {
		x, err := convert(a)
		if err != nil {
			return nil, err
		}
		args[i] = x
	}
	return Call(fn, args...), nil
}
