// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package nonzero

import (
	"testing"

	"github.com/grwlf/tvm/ir"
	"github.com/grwlf/tvm/types/shapes"
	"github.com/stretchr/testify/require"
)

func TestSubtensorsFindsDirectProducer(t *testing.T) {
	producer := ir.Compute([]int{4}, shapes.Float32, "A", "", func(axis []ir.Expr) ir.Expr {
		return ir.MakeConst(shapes.Float32, 1)
	})
	consumer := ir.Compute([]int{4}, shapes.Float32, "B", "", func(axis []ir.Expr) ir.Expr {
		return ir.Mul(ir.NewHalideCall(producer, axis), ir.MakeConst(shapes.Float32, 2))
	})
	subs := Subtensors(consumer)
	require.Len(t, subs, 1)
	require.Same(t, producer, subs[0])
}

func TestInlineNonReductionsSubstitutesBody(t *testing.T) {
	producer := ir.Compute([]int{4}, shapes.Float32, "A", "", func(axis []ir.Expr) ir.Expr {
		return ir.Add(axis[0], ir.MakeConst(shapes.Float32, 1))
	})
	consumer := ir.Compute([]int{4}, shapes.Float32, "B", "", func(axis []ir.Expr) ir.Expr {
		return ir.NewHalideCall(producer, axis)
	})
	inlined := InlineNonReductions(consumer, nil)
	op := inlined.Op.(*ir.ComputeOp)
	_, isCall := op.Body[0].(*ir.Call)
	require.False(t, isCall, "body should be the inlined add expression, not a call")
}

func TestInlineTailCallAliasesProducer(t *testing.T) {
	producer := ir.Compute([]int{4}, shapes.Float32, "A", "", func(axis []ir.Expr) ir.Expr {
		return ir.Mul(axis[0], ir.MakeConst(shapes.Float32, 3))
	})
	wrapper := ir.Compute([]int{4}, shapes.Float32, "B", "", func(axis []ir.Expr) ir.Expr {
		return ir.NewHalideCall(producer, axis)
	})
	got := InlineTailCall(wrapper)
	op := got.Op.(*ir.ComputeOp)
	_, isCall := op.Body[0].(*ir.Call)
	require.False(t, isCall)
}

func TestOptimizeAndLiftNonzeronessLiftsSelectGuard(t *testing.T) {
	axis := ir.ReduceAxis(4, "k")
	typ := shapes.Float32
	lhs, rhs := ir.NewVar("a", typ), ir.NewVar("b", typ)
	combiner := &ir.Combiner{
		Lhs: []*ir.Var{lhs}, Rhs: []*ir.Var{rhs},
		Result:   []ir.Expr{ir.Add(lhs, rhs)},
		Identity: []ir.Expr{ir.MakeZero(typ)},
	}
	guard := ir.EQ(axis.Var, ir.NewIntImm(shapes.Int32, 0))
	guarded := ir.NewSelect(guard, ir.MakeConst(typ, 5), ir.MakeConst(typ, 0))
	reduceExpr := ir.NewReduce(combiner, []ir.Expr{guarded}, []*ir.IterVar{axis}, ir.MakeConst(shapes.Bool, 1), 0)

	tensor := ir.Compute([]int{1}, typ, "T", "", func([]ir.Expr) ir.Expr { return reduceExpr })
	lifted := OptimizeAndLiftNonzeronessConditions(tensor)
	op := lifted.Op.(*ir.ComputeOp)
	r, ok := op.Body[0].(*ir.Reduce)
	require.True(t, ok)
	_, stillSelect := r.Source[0].(*ir.Select)
	require.False(t, stillSelect, "the zero-guard should have moved into Condition")
}
