// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package autodiff

import (
	"fmt"

	"github.com/grwlf/tvm/ir"
	"github.com/grwlf/tvm/simplify"
	"github.com/grwlf/tvm/types/shapes"
)

// haldeTarget differentiates with respect to one fixed element of input, addressed by
// indices. Reaching a Call(Halide) that reads exactly that element of input yields the
// Kronecker-delta indicator "are the call's own index expressions equal to indices,
// axis-by-axis"; reaching any other Call(Halide) (a read of a different tensor, or a
// different element of input reached through a different index expression) contributes
// zero, since propagating through that other tensor is TensorJacobian's caller's job
// (DiffBuildingBlock chains Jacobians across producers via GeneralizedMatMul), not this
// single call's.
type haldeTarget struct {
	input   *ir.Tensor
	indices []ir.Expr
}

func (t haldeTarget) atVar(v *ir.Var) ir.Expr { return ir.MakeZero(v.Typ) }

func (t haldeTarget) atHalideCall(c *ir.Call) ir.Expr {
	if c.FuncRef != t.input || c.ValueIndex != t.input.ValueIndex || len(c.Args) != len(t.indices) {
		return ir.MakeZero(c.Typ)
	}
	var cond ir.Expr = ir.MakeConst(shapes.Bool, 1)
	for i, idx := range c.Args {
		eq := ir.EQ(idx, t.indices[i])
		cond = ir.And(cond, eq)
	}
	return ir.NewSelect(cond, ir.MakeOne(c.Typ), ir.MakeZero(c.Typ))
}

// TensorJacobian returns a tensor of shape output.Shape++input.Shape holding, at indices
// (i..., j...), d(output[i...])/d(input[j...]). output.Op must be a *ir.ComputeOp
// (UnsupportedOp otherwise): a placeholder tensor has no body to differentiate. When
// optimize is true the scalar body is passed through simplify.Simplify before the tensor
// is built, which is nearly always what callers want - DiffBuildingBlock always asks for
// it, but the standalone entry point leaves it optional so callers inspecting the raw
// derivative (tests, mostly) can see exactly what the paired-combiner/chain-rule
// construction produced.
func TensorJacobian(output, input *ir.Tensor, optimize bool) *ir.Tensor {
	op, ok := output.Op.(*ir.ComputeOp)
	if !ok {
		UnsupportedOp(output.Op.OpName())
		return nil
	}
	if output.ValueIndex >= len(op.Body) {
		UnsupportedOp(op.Name)
		return nil
	}

	// Clone output's own axis to fresh IterVars before differentiating, so the derivative
	// expression never shares axis-variable identity with output's ComputeOp: callers that
	// go on to build a Reduce over this Jacobian's axes (GeneralizedMatMul) must not alias
	// variables bound by the tensor the Jacobian was taken of.
	freshOutputAxis := make([]*ir.IterVar, len(op.Axis))
	for i, a := range op.Axis {
		freshOutputAxis[i] = ir.NewIterVar(a.Dom, a.Var.Name, a.Kind)
	}
	bodies := simplify.SubstituteTensorBody(op, freshOutputAxis)

	freshInputAxis := make([]*ir.IterVar, input.Rank())
	indices := make([]ir.Expr, input.Rank())
	for i := 0; i < input.Rank(); i++ {
		iv := ir.NewIterVar(ir.Range{Min: 0, Extent: input.Shape.Dim(i)}, fmt.Sprintf("%s_jac%d", input.Name(), i), ir.IterVarDataPar)
		freshInputAxis[i] = iv
		indices[i] = iv.Var
	}

	body := diff(bodies[output.ValueIndex], haldeTarget{input: input, indices: indices})
	if optimize {
		body = simplify.Simplify(body)
	}

	newAxis := make([]*ir.IterVar, 0, len(freshOutputAxis)+len(freshInputAxis))
	newAxis = append(newAxis, freshOutputAxis...)
	newAxis = append(newAxis, freshInputAxis...)

	newOp := &ir.ComputeOp{
		Name: fmt.Sprintf("%s.jacobian_%s", output.Name(), input.Name()),
		Tag:  "jacobian",
		Axis: newAxis,
		Body: []ir.Expr{body},
	}
	return &ir.Tensor{Op: newOp, ValueIndex: 0, Shape: shapes.Concat(output.Shape, input.Shape)}
}
