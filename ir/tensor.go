// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package ir

import (
	"fmt"

	"github.com/grwlf/tvm/types/shapes"
)

// Range describes the half-open iteration domain [Min, Min+Extent) of an IterVar. Shapes
// in this engine are always static, so both bounds are plain ints (TVM's Range holds
// general Exprs, since its shapes may be symbolic; that generality is not carried over
// here).
type Range struct {
	Min, Extent int
}

// IterVarKind distinguishes an ordinary ("data-parallel") output axis from a reduction
// axis folded by a Combiner.
type IterVarKind int

const (
	IterVarDataPar IterVarKind = iota
	IterVarCommReduce
)

// IterVar binds Var to range over Dom, either as a normal output axis (IterVarDataPar) or
// as a reduction axis (IterVarCommReduce) consumed inside a Reduce node.
type IterVar struct {
	Dom  Range
	Var  *Var
	Kind IterVarKind
}

// NewIterVar creates a fresh IterVar with a fresh underlying Var.
func NewIterVar(dom Range, name string, kind IterVarKind) *IterVar {
	return &IterVar{Dom: dom, Var: NewVar(name, shapes.Int32), Kind: kind}
}

// Op is implemented by every tensor-producing operation. ComputeOp is the only kind this
// engine differentiates; PlaceholderOp models a leaf input tensor (a weight or a graph
// input) that has no body to differentiate through.
type Op interface {
	OpName() string
	NumOutputs() int
}

// PlaceholderOp is a leaf tensor with no computed body: inputs and parameters.
type PlaceholderOp struct {
	Name  string
	Shape shapes.Shape
}

func (p *PlaceholderOp) OpName() string  { return p.Name }
func (p *PlaceholderOp) NumOutputs() int { return 1 }

// ComputeOp computes one or more tensors (Body) over a shared set of axes.
type ComputeOp struct {
	Name  string
	Tag   string
	Attrs map[string]string
	Axis  []*IterVar
	Body  []Expr
}

func (c *ComputeOp) OpName() string  { return c.Name }
func (c *ComputeOp) NumOutputs() int { return len(c.Body) }

// Tensor is a handle (Op, ValueIndex, Shape) selecting one output of Op. Tensors are
// compared by pointer identity, never structurally: two *Tensor built from identical
// Op/ValueIndex/Shape are still distinct tensors.
type Tensor struct {
	Op         Op
	ValueIndex int
	Shape      shapes.Shape
}

// DType is shorthand for t.Shape.DType.
func (t *Tensor) DType() shapes.DType { return t.Shape.DType }

// Rank is shorthand for t.Shape.Rank().
func (t *Tensor) Rank() int { return t.Shape.Rank() }

// Name returns the tensor's display name: the producing op's name, suffixed with the
// output index when the op has more than one output (matching TVM's Tensor::op_ convention).
func (t *Tensor) Name() string {
	if t.Op.NumOutputs() > 1 {
		return fmt.Sprintf("%s.v%d", t.Op.OpName(), t.ValueIndex)
	}
	return t.Op.OpName()
}

func (t *Tensor) String() string { return fmt.Sprintf("%s%s", t.Name(), t.Shape) }

// Placeholder creates a leaf input Tensor with the given name and shape.
func Placeholder(name string, shape shapes.Shape) *Tensor {
	return &Tensor{Op: &PlaceholderOp{Name: name, Shape: shape}, ValueIndex: 0, Shape: shape}
}

// IndexingFunc builds the scalar body of a Compute tensor given the Vars bound to its axes.
type IndexingFunc func(axisVars []Expr) Expr

// Compute builds a rank-len(dims) Tensor named name (tagged tag) whose element at indices
// axisVars is given by fn(axisVars), matching TVM's tvm::compute(shape, func, name, tag).
func Compute(dims []int, dtype shapes.DType, name, tag string, fn IndexingFunc) *Tensor {
	axis := make([]*IterVar, len(dims))
	axisVars := make([]Expr, len(dims))
	for i, dim := range dims {
		iv := NewIterVar(Range{Min: 0, Extent: dim}, fmt.Sprintf("%s_ax%d", name, i), IterVarDataPar)
		axis[i] = iv
		axisVars[i] = iv.Var
	}
	body := fn(axisVars)
	op := &ComputeOp{Name: name, Tag: tag, Axis: axis, Body: []Expr{body}}
	return &Tensor{Op: op, ValueIndex: 0, Shape: shapes.Make(dtype, dims...)}
}

// ReduceAxis creates a fresh reduction IterVar over [0, extent), matching TVM's
// tvm::reduce_axis(Range(0, extent), name).
func ReduceAxis(extent int, name string) *IterVar {
	return NewIterVar(Range{Min: 0, Extent: extent}, name, IterVarCommReduce)
}

// NewReduce builds a Reduce node that folds source (len(source) == combiner.Arity())
// over axis using combiner, selecting output valueIndex, gated by condition (pass a bool
// UIntImm(1) literal, via MakeConst(shapes.Bool, 1), when there is no gating condition).
func NewReduce(combiner *Combiner, source []Expr, axis []*IterVar, condition Expr, valueIndex int) *Reduce {
	return &Reduce{Combiner: combiner, Source: source, Axis: axis, Condition: condition, ValueIndex: valueIndex}
}

// Sum builds the common single-output Reduce: sum(source) over axis, unconditionally.
// Matches TVM's tvm::sum(expr, axis) helper used by generalized_matmul (autodiff.cc:374).
// With an empty axis it returns source itself rather than a Reduce.
func Sum(source Expr, axis []*IterVar) Expr {
	if len(axis) == 0 {
		// Some passes reject reductions with an empty axis list, so none is built here;
		// generalized matmul's k==0 case relies on this.
		return source
	}
	typ := source.Type()
	lhs := NewVar("x", typ)
	rhs := NewVar("y", typ)
	combiner := &Combiner{
		Lhs:      []*Var{lhs},
		Rhs:      []*Var{rhs},
		Result:   []Expr{Add(lhs, rhs)},
		Identity: []Expr{MakeZero(typ)},
	}
	return NewReduce(combiner, []Expr{source}, axis, MakeConst(shapes.Bool, 1), 0)
}
