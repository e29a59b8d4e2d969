// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package autodiff

import (
	"testing"

	"github.com/grwlf/tvm/ir"
	"github.com/grwlf/tvm/simplify"
	"github.com/grwlf/tvm/types/shapes"
	"github.com/stretchr/testify/require"
)

func TestDerivativeOfSelf(t *testing.T) {
	x := ir.NewVar("x", shapes.Float32)
	got := simplify.Simplify(Derivative(x, x))
	lit, ok := got.(*ir.FloatImm)
	require.True(t, ok)
	require.Equal(t, float64(1), lit.Value)
}

func TestDerivativeOfOtherVarIsZero(t *testing.T) {
	x := ir.NewVar("x", shapes.Float32)
	y := ir.NewVar("y", shapes.Float32)
	got := simplify.Simplify(Derivative(y, x))
	lit, ok := got.(*ir.FloatImm)
	require.True(t, ok)
	require.Equal(t, float64(0), lit.Value)
}

func TestDerivativeProductRule(t *testing.T) {
	x := ir.NewVar("x", shapes.Float32)
	expr := ir.Mul(x, x) // x^2, derivative should simplify to x + x
	got := simplify.Simplify(Derivative(expr, x))
	require.Equal(t, "(x + x)", got.String())
}

func TestDerivativeExpChainRule(t *testing.T) {
	x := ir.NewVar("x", shapes.Float32)
	call := ir.NewIntrinsicCall(shapes.Float32, ir.IntrinsicExp, x)
	got := simplify.Simplify(Derivative(call, x))
	require.Equal(t, "exp(x)", got.String())
}

func TestDerivativeUnsupportedIntrinsicPanics(t *testing.T) {
	x := ir.NewVar("x", shapes.Float32)
	call := ir.NewIntrinsicCall(shapes.Float32, "sqrt", x)
	require.Panics(t, func() { Derivative(call, x) })
}

func TestDerivativeUnsupportedNodePanics(t *testing.T) {
	require.Panics(t, func() {
		Derivative(&ir.Let{Var: ir.NewVar("v", shapes.Float32), Value: ir.MakeZero(shapes.Float32), Body: ir.MakeZero(shapes.Float32)}, ir.NewVar("x", shapes.Float32))
	})
}
