// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package autodiff

import (
	"fmt"

	"github.com/grwlf/tvm/ir"
	"github.com/grwlf/tvm/types/shapes"
)

// GeneralizedMatMul contracts A's last k axes against B's first k axes, producing a
// tensor of shape A.Shape[:-k] ++ B.Shape[k:]. It is exposed as its own entry point
// (mirroring TVM's standalone generalized_matmul registration) because
// DiffBuildingBlock is not its only caller: it is also how a Jacobian tensor of shape
// output.shape++input.shape gets contracted against a head-gradient tensor of shape
// output.shape to produce input's adjoint.
func GeneralizedMatMul(A, B *ir.Tensor, k int, name string) *ir.Tensor {
	rankA, rankB := A.Rank(), B.Rank()
	if k < 0 || k > rankA || k > rankB {
		RankMismatch("generalized_matmul: contraction rank "+fmt.Sprint(k), rankA, rankB)
		return nil
	}
	prefixA := rankA - k
	suffixB := rankB - k
	for i := 0; i < k; i++ {
		da, db := A.Shape.Dim(prefixA+i), B.Shape.Dim(i)
		if da != db {
			RankMismatch(fmt.Sprintf("generalized_matmul: contracted dim %d", i), da, db)
			return nil
		}
	}

	outAxisA := make([]*ir.IterVar, prefixA)
	for i := 0; i < prefixA; i++ {
		outAxisA[i] = ir.NewIterVar(ir.Range{Min: 0, Extent: A.Shape.Dim(i)}, fmt.Sprintf("%s_i%d", name, i), ir.IterVarDataPar)
	}
	outAxisB := make([]*ir.IterVar, suffixB)
	for i := 0; i < suffixB; i++ {
		outAxisB[i] = ir.NewIterVar(ir.Range{Min: 0, Extent: B.Shape.Dim(k+i)}, fmt.Sprintf("%s_j%d", name, i), ir.IterVarDataPar)
	}
	reduceAxis := make([]*ir.IterVar, k)
	for i := 0; i < k; i++ {
		reduceAxis[i] = ir.ReduceAxis(A.Shape.Dim(prefixA+i), fmt.Sprintf("%s_k%d", name, i))
	}

	aArgs := make([]ir.Expr, 0, prefixA+k)
	for _, a := range outAxisA {
		aArgs = append(aArgs, a.Var)
	}
	for _, r := range reduceAxis {
		aArgs = append(aArgs, r.Var)
	}
	bArgs := make([]ir.Expr, 0, k+suffixB)
	for _, r := range reduceAxis {
		bArgs = append(bArgs, r.Var)
	}
	for _, b := range outAxisB {
		bArgs = append(bArgs, b.Var)
	}

	product := ir.Mul(ir.NewHalideCall(A, aArgs), ir.NewHalideCall(B, bArgs))
	body := ir.Sum(product, reduceAxis)

	newAxis := make([]*ir.IterVar, 0, prefixA+suffixB)
	newAxis = append(newAxis, outAxisA...)
	newAxis = append(newAxis, outAxisB...)

	dims := make([]int, 0, prefixA+suffixB)
	for i := 0; i < prefixA; i++ {
		dims = append(dims, A.Shape.Dim(i))
	}
	for i := 0; i < suffixB; i++ {
		dims = append(dims, B.Shape.Dim(k+i))
	}

	op := &ir.ComputeOp{Name: name, Tag: "generalized_matmul", Axis: newAxis, Body: []ir.Expr{body}}
	var shape shapes.Shape
	if len(dims) == 0 {
		shape = shapes.Scalar(A.DType())
	} else {
		shape = shapes.Make(A.DType(), dims...)
	}
	return &ir.Tensor{Op: op, ValueIndex: 0, Shape: shape}
}
