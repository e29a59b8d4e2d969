// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package autodiff

import (
	"testing"

	"github.com/grwlf/tvm/ir"
	"github.com/grwlf/tvm/types/shapes"
	"github.com/stretchr/testify/require"
)

func sumOfSquares(name string, input *ir.Tensor) *ir.Tensor {
	n := input.Shape.Dim(0)
	return ir.Compute(nil, shapes.Float32, name, "", func([]ir.Expr) ir.Expr {
		k := ir.ReduceAxis(n, "k")
		elem := ir.NewHalideCall(input, []ir.Expr{k.Var})
		return ir.Sum(ir.Mul(elem, elem), []*ir.IterVar{k})
	})
}

func TestDifferentiateSumOfSquares(t *testing.T) {
	input := ir.Placeholder("I", shapes.Make(shapes.Float32, 3))
	output := sumOfSquares("O", input)

	result := Differentiate(output, []*ir.Tensor{input}, nil, nil)
	require.Len(t, result.Result, 1)
	grad := result.Result[0]
	require.Equal(t, []int{3}, grad.Shape.Dimensions)
	require.Equal(t, output.Name()+".identity", result.Adjoints[output].Name())
}

func TestDifferentiateThroughIntermediateTensor(t *testing.T) {
	input := ir.Placeholder("I", shapes.Make(shapes.Float32, 4))
	scaled := ir.Compute([]int{4}, shapes.Float32, "H", "", func(axis []ir.Expr) ir.Expr {
		return ir.Mul(ir.NewHalideCall(input, axis), ir.MakeConst(shapes.Float32, 2))
	})
	output := ir.Compute(nil, shapes.Float32, "O", "", func([]ir.Expr) ir.Expr {
		k := ir.ReduceAxis(4, "k")
		return ir.Sum(ir.NewHalideCall(scaled, []ir.Expr{k.Var}), []*ir.IterVar{k})
	})

	result := Differentiate(output, []*ir.Tensor{input}, nil, nil)
	grad := result.Result[0]
	require.Equal(t, []int{4}, grad.Shape.Dimensions)
	_, scaledHasAdjoint := result.Adjoints[scaled]
	require.True(t, scaledHasAdjoint)
}

func TestDifferentiateWithExplicitHead(t *testing.T) {
	input := ir.Placeholder("I", shapes.Make(shapes.Float32, 2))
	output := ir.Compute([]int{2}, shapes.Float32, "O", "", func(axis []ir.Expr) ir.Expr {
		return ir.NewHalideCall(input, axis)
	})
	head := ir.Compute([]int{2}, shapes.Float32, "head", "", func([]ir.Expr) ir.Expr {
		return ir.MakeConst(shapes.Float32, 5)
	})
	result := Differentiate(output, []*ir.Tensor{input}, head, nil)
	require.Same(t, head, result.Adjoints[output])
}

func TestJacobianRecursiveMatchesDifferentiateResult(t *testing.T) {
	input := ir.Placeholder("I", shapes.Make(shapes.Float32, 3))
	output := sumOfSquares("O", input)
	results := JacobianRecursive(output, []*ir.Tensor{input}, nil)
	want := Differentiate(output, []*ir.Tensor{input}, nil, nil).Result
	require.Len(t, results, 1)
	require.Equal(t, want[0].String(), results[0].String())
	require.Equal(t, []int{3}, results[0].Shape.Dimensions)
}

func TestDiffBuildingBlockElementwiseScale(t *testing.T) {
	input := ir.Placeholder("I", shapes.Make(shapes.Float32, 4))
	output := ir.Compute([]int{4}, shapes.Float32, "O", "", func(axis []ir.Expr) ir.Expr {
		return ir.Mul(ir.NewHalideCall(input, axis), ir.MakeConst(shapes.Float32, 3))
	})
	head := ir.Compute([]int{4}, shapes.Float32, "head", "", func([]ir.Expr) ir.Expr {
		return ir.MakeOne(shapes.Float32)
	})
	grad := DiffBuildingBlock(output, input, head)
	require.Equal(t, []int{4}, grad.Shape.Dimensions)
}
