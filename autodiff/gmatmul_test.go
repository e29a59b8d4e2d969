// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package autodiff

import (
	"testing"

	"github.com/grwlf/tvm/ir"
	"github.com/grwlf/tvm/types/shapes"
	"github.com/stretchr/testify/require"
)

func TestGeneralizedMatMulStandardMatrixProduct(t *testing.T) {
	A := ir.Placeholder("A", shapes.Make(shapes.Float32, 2, 3))
	B := ir.Placeholder("B", shapes.Make(shapes.Float32, 3, 4))
	out := GeneralizedMatMul(A, B, 1, "C")
	require.Equal(t, []int{2, 4}, out.Shape.Dimensions)
	op := out.Op.(*ir.ComputeOp)
	require.Len(t, op.Axis, 2)
	_, ok := op.Body[0].(*ir.Reduce)
	require.True(t, ok)
}

func TestGeneralizedMatMulOuterProductWhenKZero(t *testing.T) {
	A := ir.Placeholder("A", shapes.Make(shapes.Float32, 2))
	B := ir.Placeholder("B", shapes.Make(shapes.Float32, 3))
	out := GeneralizedMatMul(A, B, 0, "outer")
	require.Equal(t, []int{2, 3}, out.Shape.Dimensions)
	op := out.Op.(*ir.ComputeOp)
	_, isReduce := op.Body[0].(*ir.Reduce)
	require.False(t, isReduce, "k=0 contraction should not introduce a Reduce node")
}

func TestGeneralizedMatMulRejectsMismatchedContractionDims(t *testing.T) {
	A := ir.Placeholder("A", shapes.Make(shapes.Float32, 2, 3))
	B := ir.Placeholder("B", shapes.Make(shapes.Float32, 5, 4))
	require.Panics(t, func() { GeneralizedMatMul(A, B, 1, "C") })
}
