// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package simplify

import (
	"math"

	"github.com/grwlf/tvm/ir"
)

// Simplify rewrites expr bottom-up, folding constant arithmetic and applying a small set
// of identity-law rewrites (x+0, x*1, x*0, select on a constant condition, double negation).
// It never changes the value an expression denotes; it exists so that derivative
// expressions built by the differentiator (which mechanically emit lots of "+0" and "*1")
// come out readable and so that OptimizeAndLiftNonzeronessConditions has constant-folded
// ground to work on.
func Simplify(expr ir.Expr) ir.Expr {
	if expr == nil {
		return nil
	}
	switch n := expr.(type) {
	case *ir.Cast:
		x := Simplify(n.X)
		if x.Type() == n.Typ {
			return x
		}
		if lit, ok := literalValue(x); ok {
			return ir.MakeConst(n.Typ, lit)
		}
		return ir.NewCast(n.Typ, x)
	case *ir.Not:
		x := Simplify(n.X)
		if inner, ok := x.(*ir.Not); ok {
			return inner.X
		}
		if lit, ok := literalValue(x); ok {
			return ir.MakeConst(x.Type(), boolToFloat(lit == 0))
		}
		return ir.NewNot(x)
	case *ir.Select:
		cond := Simplify(n.Cond)
		t := Simplify(n.T)
		f := Simplify(n.F)
		if lit, ok := literalValue(cond); ok {
			if lit != 0 {
				return t
			}
			return f
		}
		return ir.NewSelect(cond, t, f)
	case *ir.BinOp:
		return simplifyBinOp(n)
	case *ir.Call:
		args := make([]ir.Expr, len(n.Args))
		for i, a := range n.Args {
			args[i] = Simplify(a)
		}
		return &ir.Call{Typ: n.Typ, CallType: n.CallType, Name: n.Name, Args: args, FuncRef: n.FuncRef, ValueIndex: n.ValueIndex}
	case *ir.Reduce:
		src := make([]ir.Expr, len(n.Source))
		for i, s := range n.Source {
			src[i] = Simplify(s)
		}
		return &ir.Reduce{Combiner: n.Combiner, Source: src, Axis: n.Axis, Condition: Simplify(n.Condition), ValueIndex: n.ValueIndex}
	case *ir.Let:
		return &ir.Let{Var: n.Var, Value: Simplify(n.Value), Body: Simplify(n.Body)}
	default:
		return n
	}
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// literalValue extracts a numeric value from an immediate node, for constant folding.
func literalValue(e ir.Expr) (float64, bool) {
	switch n := e.(type) {
	case *ir.IntImm:
		return float64(n.Value), true
	case *ir.UIntImm:
		return float64(n.Value), true
	case *ir.FloatImm:
		return n.Value, true
	default:
		return 0, false
	}
}

func simplifyBinOp(n *ir.BinOp) ir.Expr {
	a := Simplify(n.A)
	b := Simplify(n.B)
	av, aIsLit := literalValue(a)
	bv, bIsLit := literalValue(b)
	typ := n.Type()

	if aIsLit && bIsLit {
		if folded, ok := foldConstants(n.Kind, av, bv); ok {
			return ir.MakeConst(typ, folded)
		}
	}

	switch n.Kind {
	case ir.OpAdd:
		if bIsLit && bv == 0 {
			return a
		}
		if aIsLit && av == 0 {
			return b
		}
	case ir.OpSub:
		if bIsLit && bv == 0 {
			return a
		}
	case ir.OpMul:
		if bIsLit && bv == 1 {
			return a
		}
		if aIsLit && av == 1 {
			return b
		}
		if (bIsLit && bv == 0) || (aIsLit && av == 0) {
			return ir.MakeZero(typ)
		}
	case ir.OpDiv:
		if bIsLit && bv == 1 {
			return a
		}
	}
	return &ir.BinOp{Kind: n.Kind, A: a, B: b}
}

func foldConstants(kind ir.BinOpKind, a, b float64) (float64, bool) {
	switch kind {
	case ir.OpAdd:
		return a + b, true
	case ir.OpSub:
		return a - b, true
	case ir.OpMul:
		return a * b, true
	case ir.OpDiv:
		if b == 0 {
			return 0, false
		}
		return a / b, true
	case ir.OpMod:
		if b == 0 {
			return 0, false
		}
		return math.Mod(a, b), true
	case ir.OpMin:
		return math.Min(a, b), true
	case ir.OpMax:
		return math.Max(a, b), true
	case ir.OpEQ:
		return boolToFloat(a == b), true
	case ir.OpNE:
		return boolToFloat(a != b), true
	case ir.OpLT:
		return boolToFloat(a < b), true
	case ir.OpLE:
		return boolToFloat(a <= b), true
	case ir.OpGT:
		return boolToFloat(a > b), true
	case ir.OpGE:
		return boolToFloat(a >= b), true
	case ir.OpAnd:
		return boolToFloat(a != 0 && b != 0), true
	case ir.OpOr:
		return boolToFloat(a != 0 || b != 0), true
	default:
		return 0, false
	}
}
