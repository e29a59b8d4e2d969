// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package simplify

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/grwlf/tvm/ir"
)

// freshName appends a short uuid suffix to base so that cloned variables remain
// readable in printed expressions while never colliding, in name, with the originals.
func freshName(base string) string {
	return fmt.Sprintf("%s.%s", base, uuid.New().String()[:8])
}

// CloneReduction returns a Reduce structurally identical to r but with every bound
// identity it owns - its Axis IterVars and its Combiner's Lhs/Rhs parameters - replaced by
// fresh *ir.Var/*ir.IterVar instances. Building a derivative of a reduction requires
// nesting a second reduction over the same logical axis (the paired-combiner
// construction); without fresh identities the two reductions would alias each other's
// bound variables and the substitution in one would leak into the other.
func CloneReduction(r *ir.Reduce) *ir.Reduce {
	axisSubst := make(Subst, len(r.Axis))
	freshAxis := make([]*ir.IterVar, len(r.Axis))
	for i, a := range r.Axis {
		fresh := &ir.IterVar{Dom: a.Dom, Var: ir.NewVar(freshName(a.Var.Name), a.Var.Typ), Kind: a.Kind}
		freshAxis[i] = fresh
		axisSubst[a.Var] = fresh.Var
	}

	combinerSubst := make(Subst, 2*len(r.Combiner.Lhs))
	freshLhs := make([]*ir.Var, len(r.Combiner.Lhs))
	for i, v := range r.Combiner.Lhs {
		fresh := ir.NewVar(freshName(v.Name), v.Typ)
		freshLhs[i] = fresh
		combinerSubst[v] = fresh
	}
	freshRhs := make([]*ir.Var, len(r.Combiner.Rhs))
	for i, v := range r.Combiner.Rhs {
		fresh := ir.NewVar(freshName(v.Name), v.Typ)
		freshRhs[i] = fresh
		combinerSubst[v] = fresh
	}
	freshResult := make([]ir.Expr, len(r.Combiner.Result))
	for i, e := range r.Combiner.Result {
		freshResult[i] = Substitute(e, combinerSubst)
	}

	freshSource := make([]ir.Expr, len(r.Source))
	for i, s := range r.Source {
		freshSource[i] = Substitute(s, axisSubst)
	}

	return &ir.Reduce{
		Combiner: &ir.Combiner{
			Lhs:      freshLhs,
			Rhs:      freshRhs,
			Result:   freshResult,
			Identity: r.Combiner.Identity,
		},
		Source:     freshSource,
		Axis:       freshAxis,
		Condition:  Substitute(r.Condition, axisSubst),
		ValueIndex: r.ValueIndex,
	}
}

// SimplifyCombiner returns a Reduce equivalent to r but whose combiner only computes the
// output slots named by keep (each an original ValueIndex). r.ValueIndex is remapped into
// the shrunk combiner's index space. Use this after building a doubled-arity
// derivative+value combiner for a reduction whose value half turns out to be unused by
// any other expression, to avoid carrying dead fold state through every iteration.
func SimplifyCombiner(r *ir.Reduce, keep []int) *ir.Reduce {
	lhs := make([]*ir.Var, len(keep))
	rhs := make([]*ir.Var, len(keep))
	result := make([]ir.Expr, len(keep))
	identity := make([]ir.Expr, len(keep))
	source := make([]ir.Expr, len(keep))
	newIndexOf := make(map[int]int, len(keep))
	for newIdx, oldIdx := range keep {
		lhs[newIdx] = r.Combiner.Lhs[oldIdx]
		rhs[newIdx] = r.Combiner.Rhs[oldIdx]
		result[newIdx] = r.Combiner.Result[oldIdx]
		identity[newIdx] = r.Combiner.Identity[oldIdx]
		source[newIdx] = r.Source[oldIdx]
		newIndexOf[oldIdx] = newIdx
	}
	newValueIndex, ok := newIndexOf[r.ValueIndex]
	if !ok {
		newValueIndex = 0
	}
	return &ir.Reduce{
		Combiner:   &ir.Combiner{Lhs: lhs, Rhs: rhs, Result: result, Identity: identity},
		Source:     source,
		Axis:       r.Axis,
		Condition:  r.Condition,
		ValueIndex: newValueIndex,
	}
}
