// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package simplify

import (
	"testing"

	"github.com/grwlf/tvm/ir"
	"github.com/grwlf/tvm/types/shapes"
	"github.com/stretchr/testify/require"
)

func TestSimplifyConstantFolding(t *testing.T) {
	e := ir.Add(ir.NewFloatImm(shapes.Float32, 2), ir.NewFloatImm(shapes.Float32, 3))
	got := Simplify(e)
	lit, ok := got.(*ir.FloatImm)
	require.True(t, ok)
	require.Equal(t, float64(5), lit.Value)
}

func TestSimplifyAdditiveIdentity(t *testing.T) {
	x := ir.NewVar("x", shapes.Float32)
	got := Simplify(ir.Add(x, ir.NewFloatImm(shapes.Float32, 0)))
	require.Same(t, x, got)
}

func TestSimplifyMultiplicativeZero(t *testing.T) {
	x := ir.NewVar("x", shapes.Float32)
	got := Simplify(ir.Mul(x, ir.NewFloatImm(shapes.Float32, 0)))
	lit, ok := got.(*ir.FloatImm)
	require.True(t, ok)
	require.Equal(t, float64(0), lit.Value)
}

func TestSimplifySelectOnConstantCondition(t *testing.T) {
	x := ir.NewVar("x", shapes.Float32)
	y := ir.NewVar("y", shapes.Float32)
	got := Simplify(ir.NewSelect(ir.MakeConst(shapes.Bool, 1), x, y))
	require.Same(t, x, got)
}

func TestSubstituteReplacesFreeVar(t *testing.T) {
	x := ir.NewVar("x", shapes.Float32)
	y := ir.NewVar("y", shapes.Float32)
	e := ir.Mul(x, ir.NewFloatImm(shapes.Float32, 2))
	got := Substitute(e, Subst{x: y})
	bin := got.(*ir.BinOp)
	require.Same(t, y, bin.A)
}

func TestCloneReductionProducesFreshAxis(t *testing.T) {
	axis := ir.ReduceAxis(4, "k")
	typ := shapes.Float32
	lhs, rhs := ir.NewVar("a", typ), ir.NewVar("b", typ)
	combiner := &ir.Combiner{
		Lhs: []*ir.Var{lhs}, Rhs: []*ir.Var{rhs},
		Result:   []ir.Expr{ir.Add(lhs, rhs)},
		Identity: []ir.Expr{ir.MakeZero(typ)},
	}
	r := ir.NewReduce(combiner, []ir.Expr{axis.Var}, []*ir.IterVar{axis}, ir.MakeConst(shapes.Bool, 1), 0)
	clone := CloneReduction(r)
	require.NotSame(t, axis.Var, clone.Axis[0].Var)
	require.NotSame(t, lhs, clone.Combiner.Lhs[0])
	require.Equal(t, axis.Dom, clone.Axis[0].Dom)
}
