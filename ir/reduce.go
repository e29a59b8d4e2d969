// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package ir

import (
	"fmt"
	"strings"

	"github.com/grwlf/tvm/types/shapes"
)

// Combiner describes an associative-commutative n-ary fold: Lhs and Rhs name the two
// operands of the fold step, Result computes the fold of one Lhs/Rhs pair per output
// slot, and Identity gives the fold's starting value per slot. len(Lhs) == len(Rhs) ==
// len(Result) == len(Identity) == the combiner's arity k.
type Combiner struct {
	Lhs, Rhs []*Var
	Result   []Expr
	Identity []Expr
}

// Arity returns k, the number of parallel values this combiner folds.
func (c *Combiner) Arity() int { return len(c.Result) }

func (c *Combiner) String() string {
	lhs := make([]string, len(c.Lhs))
	for i, v := range c.Lhs {
		lhs[i] = v.Name
	}
	rhs := make([]string, len(c.Rhs))
	for i, v := range c.Rhs {
		rhs[i] = v.Name
	}
	res := make([]string, len(c.Result))
	for i, e := range c.Result {
		res[i] = e.String()
	}
	return fmt.Sprintf("comm_reducer((%s, %s) -> (%s))", strings.Join(lhs, ","), strings.Join(rhs, ","), strings.Join(res, ","))
}

// Reduce folds Source (k parallel scalar expressions, k == Combiner.Arity()) over Axis
// using Combiner, gated by Condition, and yields the ValueIndex'th output of the k-tuple.
type Reduce struct {
	Combiner   *Combiner
	Source     []Expr
	Axis       []*IterVar
	Condition  Expr
	ValueIndex int
}

func (n *Reduce) Type() shapes.DType {
	if n.ValueIndex < len(n.Source) {
		return n.Source[n.ValueIndex].Type()
	}
	return shapes.InvalidDType
}

func (n *Reduce) String() string {
	axisNames := make([]string, len(n.Axis))
	for i, a := range n.Axis {
		axisNames[i] = a.Var.Name
	}
	srcs := make([]string, len(n.Source))
	for i, s := range n.Source {
		srcs[i] = s.String()
	}
	return fmt.Sprintf("reduce[%d](%s, src=(%s), axis=%s, cond=%s)",
		n.ValueIndex, n.Combiner, strings.Join(srcs, ","), strings.Join(axisNames, ","), n.Condition)
}
