// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package nonzero

import (
	"github.com/grwlf/tvm/ir"
	"github.com/grwlf/tvm/simplify"
)

func hasReduce(e ir.Expr) bool {
	switch n := e.(type) {
	case *ir.Reduce:
		return true
	case *ir.Cast:
		return hasReduce(n.X)
	case *ir.Not:
		return hasReduce(n.X)
	case *ir.Select:
		return hasReduce(n.Cond) || hasReduce(n.T) || hasReduce(n.F)
	case *ir.BinOp:
		return hasReduce(n.A) || hasReduce(n.B)
	case *ir.Call:
		for _, a := range n.Args {
			if hasReduce(a) {
				return true
			}
		}
		return false
	case *ir.Let:
		return hasReduce(n.Value) || hasReduce(n.Body)
	default:
		return false
	}
}

func isInlinable(t *ir.Tensor, allowed func(*ir.Tensor) bool) (*ir.ComputeOp, bool) {
	if allowed != nil && !allowed(t) {
		return nil, false
	}
	op, ok := t.Op.(*ir.ComputeOp)
	if !ok || t.ValueIndex >= len(op.Body) {
		return nil, false
	}
	if hasReduce(op.Body[t.ValueIndex]) {
		return nil, false
	}
	return op, true
}

// InlineNonReductions rewrites t's body, replacing every CallHalide read of a producer
// tensor with the producer's own body (substituted at the call's index arguments),
// wherever that producer has no Reduce inside it. When onlyThese is non-empty, only
// producers present in it are inlined; an empty onlyThese inlines every eligible
// producer. Matches TVM's InlineTensors pass (autodiff.cc relies on it transitively via
// the nonzeroness-condition pass), which exists because lifting a nonzeroness condition
// or spotting a constant-zero branch requires the condition to be syntactically visible
// in the consumer, not hidden behind another tensor's indirection.
func InlineNonReductions(t *ir.Tensor, onlyThese []*ir.Tensor) *ir.Tensor {
	op, ok := t.Op.(*ir.ComputeOp)
	if !ok {
		return t
	}
	var allowed func(*ir.Tensor) bool
	if len(onlyThese) > 0 {
		set := make(map[*ir.Tensor]bool, len(onlyThese))
		for _, p := range onlyThese {
			set[p] = true
		}
		allowed = func(p *ir.Tensor) bool { return set[p] }
	}

	var inline func(ir.Expr) ir.Expr
	inline = func(e ir.Expr) ir.Expr {
		return mapExpr(e, func(c *ir.Call) ir.Expr {
			if c.CallType != ir.CallHalide || c.FuncRef == nil {
				return c
			}
			producerOp, ok := isInlinable(c.FuncRef, allowed)
			if !ok {
				return c
			}
			subst := make(simplify.Subst, len(producerOp.Axis))
			for i, a := range producerOp.Axis {
				if i < len(c.Args) {
					subst[a.Var] = c.Args[i]
				}
			}
			inlinedBody := simplify.Substitute(producerOp.Body[c.FuncRef.ValueIndex], subst)
			return inline(inlinedBody)
		})
	}

	newBody := make([]ir.Expr, len(op.Body))
	for i, b := range op.Body {
		newBody[i] = inline(b)
	}
	newOp := &ir.ComputeOp{Name: op.Name, Tag: op.Tag, Attrs: op.Attrs, Axis: op.Axis, Body: newBody}
	return &ir.Tensor{Op: newOp, ValueIndex: t.ValueIndex, Shape: t.Shape}
}

// InlineTailCall rewrites t, when its sole body expression is a single CallHalide read of
// another tensor at exactly its own axis variables (a pure pass-through, the common shape
// left behind by a differentiation step that produced an identity wrapper), into a direct
// alias of that producer's body, provided the producer is a ComputeOp whose body contains
// no Reduce (the InlineNonReductions rule). In every other case t's body is left as it is.
func InlineTailCall(t *ir.Tensor) *ir.Tensor {
	op, ok := t.Op.(*ir.ComputeOp)
	if !ok || len(op.Body) != 1 {
		return t
	}
	call, ok := op.Body[0].(*ir.Call)
	if !ok || call.CallType != ir.CallHalide || call.FuncRef == nil {
		return t
	}
	if len(call.Args) != len(op.Axis) {
		return t
	}
	for i, a := range call.Args {
		v, ok := a.(*ir.Var)
		if !ok || v != op.Axis[i].Var {
			return t
		}
	}
	return InlineNonReductions(t, []*ir.Tensor{call.FuncRef})
}
