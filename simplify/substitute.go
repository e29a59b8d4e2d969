// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package simplify provides the expression-rewriting machinery the autodiff engine
// depends on but does not itself define: Substitute (capture-aware variable
// replacement), Simplify (constant folding and identity-law rewrites), CloneReduction
// (fresh-identity copies of a Reduce's bound variables) and SimplifyCombiner (dropping a
// paired combiner's unused outputs). None of these passes know anything about
// differentiation; they are generic rewrites over the ir package's node types.
package simplify

import (
	"github.com/grwlf/tvm/ir"
)

// Subst maps source Vars to their replacement expressions.
type Subst map[*ir.Var]ir.Expr

// Substitute returns expr with every free occurrence of a key of subst replaced by its
// value. Vars bound within expr (Let's Var, a Combiner's Lhs/Rhs, a Reduce's Axis vars)
// shadow same-identity keys: since Vars are compared by pointer identity (never by name),
// a bound Var can never alias a caller's substitution key unless the caller deliberately
// passed that exact *ir.Var, so no additional shadowing logic is needed beyond skipping
// Let bodies when the Let itself rebinds the key (kept for defensiveness, see below).
func Substitute(expr ir.Expr, subst Subst) ir.Expr {
	if len(subst) == 0 || expr == nil {
		return expr
	}
	switch n := expr.(type) {
	case *ir.Var:
		if repl, ok := subst[n]; ok {
			return repl
		}
		return n
	case *ir.IntImm, *ir.UIntImm, *ir.FloatImm, *ir.StringImm:
		return n
	case *ir.Cast:
		return ir.NewCast(n.Typ, Substitute(n.X, subst))
	case *ir.Not:
		return ir.NewNot(Substitute(n.X, subst))
	case *ir.Select:
		return ir.NewSelect(Substitute(n.Cond, subst), Substitute(n.T, subst), Substitute(n.F, subst))
	case *ir.BinOp:
		a, b := Substitute(n.A, subst), Substitute(n.B, subst)
		return &ir.BinOp{Kind: n.Kind, A: a, B: b}
	case *ir.Call:
		args := make([]ir.Expr, len(n.Args))
		for i, a := range n.Args {
			args[i] = Substitute(a, subst)
		}
		return &ir.Call{Typ: n.Typ, CallType: n.CallType, Name: n.Name, Args: args, FuncRef: n.FuncRef, ValueIndex: n.ValueIndex}
	case *ir.Reduce:
		src := make([]ir.Expr, len(n.Source))
		for i, s := range n.Source {
			src[i] = Substitute(s, subst)
		}
		cond := Substitute(n.Condition, subst)
		return &ir.Reduce{Combiner: n.Combiner, Source: src, Axis: n.Axis, Condition: cond, ValueIndex: n.ValueIndex}
	case *ir.Let:
		value := Substitute(n.Value, subst)
		if _, shadowed := subst[n.Var]; shadowed {
			return &ir.Let{Var: n.Var, Value: value, Body: n.Body}
		}
		return &ir.Let{Var: n.Var, Value: value, Body: Substitute(n.Body, subst)}
	case *ir.Ramp:
		return &ir.Ramp{Base: Substitute(n.Base, subst), Stride: Substitute(n.Stride, subst), Lanes: n.Lanes}
	case *ir.Broadcast:
		return &ir.Broadcast{Value: Substitute(n.Value, subst), Lanes: n.Lanes}
	case *ir.Load:
		return &ir.Load{Typ: n.Typ, BufferVar: n.BufferVar, Index: Substitute(n.Index, subst), Predicate: Substitute(n.Predicate, subst)}
	case *ir.Shuffle:
		vecs := make([]ir.Expr, len(n.Vectors))
		for i, v := range n.Vectors {
			vecs[i] = Substitute(v, subst)
		}
		return &ir.Shuffle{Vectors: vecs, Indices: n.Indices}
	default:
		return n
	}
}

// SubstituteTensorBody substitutes op's axis vars for freshAxis (index-by-index) across
// every body expression, used by the tensor-level Jacobian when it reindexes a producer's
// body under a fresh set of iteration variables.
func SubstituteTensorBody(op *ir.ComputeOp, freshAxis []*ir.IterVar) []ir.Expr {
	subst := make(Subst, len(op.Axis))
	for i, old := range op.Axis {
		if i < len(freshAxis) {
			subst[old.Var] = freshAxis[i].Var
		}
	}
	out := make([]ir.Expr, len(op.Body))
	for i, b := range op.Body {
		out[i] = Substitute(b, subst)
	}
	return out
}
