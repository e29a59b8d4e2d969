// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package autodiff

import (
	"testing"

	"github.com/grwlf/tvm/ir"
	"github.com/grwlf/tvm/types/shapes"
	"github.com/stretchr/testify/require"
)

func TestTensorJacobianElementwiseExp(t *testing.T) {
	input := ir.Placeholder("I", shapes.Make(shapes.Float32, 4))
	output := ir.Compute([]int{4}, shapes.Float32, "O", "", func(axis []ir.Expr) ir.Expr {
		return ir.NewIntrinsicCall(shapes.Float32, ir.IntrinsicExp, ir.NewHalideCall(input, axis))
	})

	jac := TensorJacobian(output, input, true)
	require.Equal(t, []int{4, 4}, jac.Shape.Dimensions)
	op, ok := jac.Op.(*ir.ComputeOp)
	require.True(t, ok)
	require.Len(t, op.Axis, 2)

	bin, ok := op.Body[0].(*ir.BinOp)
	require.True(t, ok, "expected exp(I[i]) * indicator, got %T: %s", op.Body[0], op.Body[0])
	require.Equal(t, ir.OpMul, bin.Kind)
	sel, ok := bin.B.(*ir.Select)
	require.True(t, ok, "expected the indicator as the second factor, got %T", bin.B)
	require.Equal(t, "1f", sel.T.String())
}

func TestTensorJacobianRejectsPlaceholderOutput(t *testing.T) {
	input := ir.Placeholder("I", shapes.Make(shapes.Float32, 4))
	output := ir.Placeholder("O", shapes.Make(shapes.Float32, 4))
	require.Panics(t, func() { TensorJacobian(output, input, true) })
}

