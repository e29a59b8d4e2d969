// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package nonzero

import (
	"github.com/grwlf/tvm/ir"
	"github.com/grwlf/tvm/simplify"
	"github.com/grwlf/tvm/types/shapes"
)

// liftCondition decomposes e into a (residual, condition) pair such that e is equivalent
// to select(condition, residual, 0): wherever condition is false, e is provably zero.
// Differentiation mechanically produces exactly this shape all the time (a Kronecker-delta
// Select guarding a Jacobian's diagonal, for instance), and pulling the guard out of the
// reduction body and into the Reduce's Condition lets a codegen backend skip the
// provably-zero part of the iteration space instead of computing and discarding it.
func liftCondition(e ir.Expr) (residual, condition ir.Expr) {
	switch n := e.(type) {
	case *ir.Select:
		if isZeroLiteral(n.F) {
			tRes, tCond := liftCondition(n.T)
			return tRes, ir.And(n.Cond, tCond)
		}
		if isZeroLiteral(n.T) {
			fRes, fCond := liftCondition(n.F)
			return fRes, ir.And(ir.NewNot(n.Cond), fCond)
		}
		return n, trueCond()
	case *ir.BinOp:
		if n.Kind == ir.OpMul {
			aRes, aCond := liftCondition(n.A)
			bRes, bCond := liftCondition(n.B)
			return ir.Mul(aRes, bRes), ir.And(aCond, bCond)
		}
		return n, trueCond()
	default:
		return n, trueCond()
	}
}

func trueCond() ir.Expr {
	return ir.MakeConst(shapes.Bool, 1)
}

func isZeroLiteral(e ir.Expr) bool {
	switch n := e.(type) {
	case *ir.IntImm:
		return n.Value == 0
	case *ir.UIntImm:
		return n.Value == 0
	case *ir.FloatImm:
		return n.Value == 0
	default:
		return false
	}
}

// OptimizeAndLiftNonzeronessConditions rewrites each arity-1 Reduce that is a body
// expression of t or sits in a branch of a Select chain there, pulling its source's
// Select/Mul-encoded zero guard out into the Reduce's Condition and simplifying what
// remains. A Reduce nested under any other node (arithmetic, Cast, Call) is not visited.
// Higher-arity (paired-combiner) reductions are
// left untouched: their Source slots generally carry unrelated nonzeroness structure and
// ANDing one slot's guard into the shared Condition would silently zero out the others.
func OptimizeAndLiftNonzeronessConditions(t *ir.Tensor) *ir.Tensor {
	op, ok := t.Op.(*ir.ComputeOp)
	if !ok {
		return t
	}
	newBody := make([]ir.Expr, len(op.Body))
	for i, b := range op.Body {
		newBody[i] = liftInExpr(b)
	}
	newOp := &ir.ComputeOp{Name: op.Name, Tag: op.Tag, Attrs: op.Attrs, Axis: op.Axis, Body: newBody}
	return &ir.Tensor{Op: newOp, ValueIndex: t.ValueIndex, Shape: t.Shape}
}

func liftInExpr(e ir.Expr) ir.Expr {
	switch n := e.(type) {
	case *ir.Reduce:
		if n.Combiner.Arity() != 1 {
			return n
		}
		residual, cond := liftCondition(simplify.Simplify(n.Source[0]))
		newCond := simplify.Simplify(ir.And(n.Condition, cond))
		return simplify.Simplify(&ir.Reduce{
			Combiner:   n.Combiner,
			Source:     []ir.Expr{residual},
			Axis:       n.Axis,
			Condition:  newCond,
			ValueIndex: n.ValueIndex,
		})
	case *ir.Select:
		return &ir.Select{Cond: n.Cond, T: liftInExpr(n.T), F: liftInExpr(n.F)}
	default:
		return n
	}
}
