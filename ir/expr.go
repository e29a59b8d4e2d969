// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package ir defines the small, closed expression IR the autodiff engine differentiates:
// Var, the numeric immediates, Cast, Call (Halide tensor reads and pure intrinsics), the
// binary/unary/comparison/logical operators, Select, Reduce (with an arbitrary
// commutative-associative Combiner) and the tensor-shaped operators (ComputeOp, Tensor,
// IterVar) that wrap scalar bodies into tensors.
//
// Every node type is immutable once constructed and implements Expr; differentiation
// dispatches on the concrete Go type with a type switch rather than a visitor table.
package ir

import (
	"fmt"

	"github.com/gomlx/exceptions"
	"github.com/grwlf/tvm/types/shapes"
)

// Expr is the common interface implemented by every node of the scalar expression IR.
type Expr interface {
	fmt.Stringer

	// Type returns the numeric type this expression evaluates to.
	Type() shapes.DType
}

// Var is a free or bound scalar variable: a ComputeOp axis, a reduction combiner
// parameter, or a let-bound name. Variables are compared by pointer identity, never by
// name: two distinct *Var with the same Name are different variables, which is exactly
// what CloneReduction relies on to decouple a derivative expression from the expression
// it was derived from.
type Var struct {
	Name string
	Typ  shapes.DType
}

// NewVar creates a fresh variable. Every call returns a distinct *Var even if Name repeats.
func NewVar(name string, typ shapes.DType) *Var {
	return &Var{Name: name, Typ: typ}
}

func (v *Var) Type() shapes.DType { return v.Typ }
func (v *Var) String() string     { return v.Name }

// IntImm is a signed integer literal.
type IntImm struct {
	Typ   shapes.DType
	Value int64
}

func NewIntImm(typ shapes.DType, value int64) *IntImm { return &IntImm{Typ: typ, Value: value} }
func (n *IntImm) Type() shapes.DType                  { return n.Typ }
func (n *IntImm) String() string                      { return fmt.Sprintf("%d", n.Value) }

// UIntImm is an unsigned integer literal.
type UIntImm struct {
	Typ   shapes.DType
	Value uint64
}

func NewUIntImm(typ shapes.DType, value uint64) *UIntImm { return &UIntImm{Typ: typ, Value: value} }
func (n *UIntImm) Type() shapes.DType                    { return n.Typ }
func (n *UIntImm) String() string                        { return fmt.Sprintf("%du", n.Value) }

// FloatImm is a floating point literal.
type FloatImm struct {
	Typ   shapes.DType
	Value float64
}

func NewFloatImm(typ shapes.DType, value float64) *FloatImm {
	return &FloatImm{Typ: typ, Value: value}
}
func (n *FloatImm) Type() shapes.DType { return n.Typ }
func (n *FloatImm) String() string     { return fmt.Sprintf("%gf", n.Value) }

// StringImm is a string literal; it never participates in differentiation (UnsupportedNode).
type StringImm struct {
	Value string
}

func (n *StringImm) Type() shapes.DType { return shapes.InvalidDType }
func (n *StringImm) String() string     { return fmt.Sprintf("%q", n.Value) }

// MakeZero returns the canonical zero literal for dtype. Used pervasively as the
// derivative of any node kind whose rule is "exact zero of the declared type".
func MakeZero(typ shapes.DType) Expr {
	switch {
	case typ.IsFloat():
		return NewFloatImm(typ, 0)
	case typ.IsUnsigned():
		return NewUIntImm(typ, 0)
	case typ.IsInt():
		return NewIntImm(typ, 0)
	case typ.IsBool():
		return NewUIntImm(typ, 0)
	default:
		exceptions.Panicf("ir.MakeZero: unsupported dtype %s", typ)
		return nil
	}
}

// MakeConst returns a literal of dtype holding the given numeric value, matching TVM's
// make_const. value is truncated/converted as appropriate for integer dtypes.
func MakeConst(typ shapes.DType, value float64) Expr {
	switch {
	case typ.IsFloat():
		return NewFloatImm(typ, value)
	case typ.IsUnsigned():
		return NewUIntImm(typ, uint64(value))
	case typ.IsInt():
		return NewIntImm(typ, int64(value))
	case typ.IsBool():
		v := uint64(0)
		if value != 0 {
			v = 1
		}
		return NewUIntImm(typ, v)
	default:
		exceptions.Panicf("ir.MakeConst: unsupported dtype %s", typ)
		return nil
	}
}

// MakeOne returns the canonical "1" literal for dtype.
func MakeOne(typ shapes.DType) Expr {
	return MakeConst(typ, 1)
}

// Cast converts x to typ. Differentiating a Cast only makes sense when typ is a float
// type; casting to a non-float type derives to zero of typ.
type Cast struct {
	Typ shapes.DType
	X   Expr
}

func NewCast(typ shapes.DType, x Expr) *Cast { return &Cast{Typ: typ, X: x} }
func (n *Cast) Type() shapes.DType           { return n.Typ }
func (n *Cast) String() string               { return fmt.Sprintf("cast(%s, %s)", n.Typ, n.X) }

// Not is the boolean negation of a boolean-typed expression.
type Not struct {
	X Expr
}

func NewNot(x Expr) *Not       { return &Not{X: x} }
func (n *Not) Type() shapes.DType { return shapes.Bool }
func (n *Not) String() string  { return fmt.Sprintf("!(%s)", n.X) }

// Select is the ternary "cond ? t : f", the only control-flow node this engine
// differentiates.
type Select struct {
	Cond, T, F Expr
}

func NewSelect(cond, t, f Expr) *Select {
	return &Select{Cond: cond, T: t, F: f}
}
func (n *Select) Type() shapes.DType { return n.T.Type() }
func (n *Select) String() string     { return fmt.Sprintf("select(%s, %s, %s)", n.Cond, n.T, n.F) }

// Ramp, Broadcast, Load, Let and Shuffle round out the closed IR but carry no derivative
// rule: the engine rejects them with UnsupportedNode.

type Ramp struct {
	Base, Stride Expr
	Lanes        int
}

func (n *Ramp) Type() shapes.DType { return n.Base.Type() }
func (n *Ramp) String() string     { return fmt.Sprintf("ramp(%s, %s, %d)", n.Base, n.Stride, n.Lanes) }

type Broadcast struct {
	Value Expr
	Lanes int
}

func (n *Broadcast) Type() shapes.DType { return n.Value.Type() }
func (n *Broadcast) String() string     { return fmt.Sprintf("broadcast(%s, %d)", n.Value, n.Lanes) }

type Load struct {
	Typ             shapes.DType
	BufferVar       *Var
	Index, Predicate Expr
}

func (n *Load) Type() shapes.DType { return n.Typ }
func (n *Load) String() string     { return fmt.Sprintf("load(%s, %s)", n.BufferVar, n.Index) }

type Let struct {
	Var   *Var
	Value Expr
	Body  Expr
}

func (n *Let) Type() shapes.DType { return n.Body.Type() }
func (n *Let) String() string     { return fmt.Sprintf("let(%s = %s, %s)", n.Var, n.Value, n.Body) }

type Shuffle struct {
	Vectors []Expr
	Indices []int
}

func (n *Shuffle) Type() shapes.DType {
	if len(n.Vectors) == 0 {
		return shapes.InvalidDType
	}
	return n.Vectors[0].Type()
}
func (n *Shuffle) String() string { return fmt.Sprintf("shuffle(%v, %v)", n.Vectors, n.Indices) }
