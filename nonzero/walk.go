// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package nonzero implements the post-processing passes that turn a mechanically built
// derivative expression into one that is actually worth compiling: finding a tensor's
// immediate producers, inlining non-reduction tensors into their consumer's
// body, lifting nonzeroness conditions out of reduction bodies so backends can skip
// all-zero regions, and inlining a single pass-through tail call.
package nonzero

import "github.com/grwlf/tvm/ir"

// visitExpr calls visit on every Call node reachable from e, recursing through every
// composite node kind the IR defines.
func visitExpr(e ir.Expr, visit func(*ir.Call)) {
	if e == nil {
		return
	}
	switch n := e.(type) {
	case *ir.Call:
		visit(n)
		for _, a := range n.Args {
			visitExpr(a, visit)
		}
	case *ir.Cast:
		visitExpr(n.X, visit)
	case *ir.Not:
		visitExpr(n.X, visit)
	case *ir.Select:
		visitExpr(n.Cond, visit)
		visitExpr(n.T, visit)
		visitExpr(n.F, visit)
	case *ir.BinOp:
		visitExpr(n.A, visit)
		visitExpr(n.B, visit)
	case *ir.Reduce:
		for _, s := range n.Source {
			visitExpr(s, visit)
		}
		visitExpr(n.Condition, visit)
	case *ir.Let:
		visitExpr(n.Value, visit)
		visitExpr(n.Body, visit)
	case *ir.Ramp:
		visitExpr(n.Base, visit)
		visitExpr(n.Stride, visit)
	case *ir.Broadcast:
		visitExpr(n.Value, visit)
	case *ir.Load:
		visitExpr(n.Index, visit)
		visitExpr(n.Predicate, visit)
	case *ir.Shuffle:
		for _, v := range n.Vectors {
			visitExpr(v, visit)
		}
	}
}

// mapExpr rewrites the Call nodes reachable from e using fn, preserving everything else.
// It does not descend into a CallHalide's index arguments, nor into Ramp, Broadcast, Load
// or Shuffle nodes, so Calls nested there are left as they are.
func mapExpr(e ir.Expr, fn func(*ir.Call) ir.Expr) ir.Expr {
	if e == nil {
		return nil
	}
	switch n := e.(type) {
	case *ir.Call:
		replaced := fn(n)
		if replaced != n {
			return replaced
		}
		if n.CallType != ir.CallHalide {
			args := make([]ir.Expr, len(n.Args))
			changed := false
			for i, a := range n.Args {
				args[i] = mapExpr(a, fn)
				changed = changed || args[i] != a
			}
			if changed {
				return &ir.Call{Typ: n.Typ, CallType: n.CallType, Name: n.Name, Args: args, FuncRef: n.FuncRef, ValueIndex: n.ValueIndex}
			}
		}
		return n
	case *ir.Cast:
		return &ir.Cast{Typ: n.Typ, X: mapExpr(n.X, fn)}
	case *ir.Not:
		return &ir.Not{X: mapExpr(n.X, fn)}
	case *ir.Select:
		return &ir.Select{Cond: mapExpr(n.Cond, fn), T: mapExpr(n.T, fn), F: mapExpr(n.F, fn)}
	case *ir.BinOp:
		return &ir.BinOp{Kind: n.Kind, A: mapExpr(n.A, fn), B: mapExpr(n.B, fn)}
	case *ir.Reduce:
		src := make([]ir.Expr, len(n.Source))
		for i, s := range n.Source {
			src[i] = mapExpr(s, fn)
		}
		return &ir.Reduce{Combiner: n.Combiner, Source: src, Axis: n.Axis, Condition: mapExpr(n.Condition, fn), ValueIndex: n.ValueIndex}
	case *ir.Let:
		return &ir.Let{Var: n.Var, Value: mapExpr(n.Value, fn), Body: mapExpr(n.Body, fn)}
	default:
		return n
	}
}
