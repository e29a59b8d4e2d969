// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package autodiff

import (
	"fmt"

	"github.com/grwlf/tvm/ir"
	"github.com/grwlf/tvm/simplify"
)

// target abstracts over what a differentiation pass is differentiating with respect to:
// a free scalar Var (the Derivative entry point) or one element of an input tensor,
// addressed by a fixed set of index expressions (the Jacobian entry point used by
// TensorJacobian). Every other node kind's rule is identical between the two; only the
// two leaf cases below differ.
type target interface {
	// atVar is the contribution when the walk reaches a bare Var leaf.
	atVar(v *ir.Var) ir.Expr
	// atHalideCall is the contribution when the walk reaches a Call(Halide, ...) leaf,
	// i.e. a read of some tensor's element.
	atHalideCall(c *ir.Call) ir.Expr
}

type varTarget struct{ v *ir.Var }

func (t varTarget) atVar(v *ir.Var) ir.Expr {
	if v == t.v {
		return ir.MakeOne(v.Typ)
	}
	return ir.MakeZero(v.Typ)
}

func (t varTarget) atHalideCall(c *ir.Call) ir.Expr {
	// A read of a tensor element does not depend on a bare scalar Var: tensor-to-tensor
	// dependencies are handled one level up, by TensorJacobian and by the reverse-mode
	// driver's adjoint accumulation, not by this rule.
	return ir.MakeZero(c.Typ)
}

// Derivative returns d(expr)/d(v), treating every *ir.Var other than v as a constant.
// This is the scalar core everything else in the package is built from.
func Derivative(expr ir.Expr, v *ir.Var) ir.Expr {
	return diff(expr, varTarget{v})
}

func diff(expr ir.Expr, tgt target) ir.Expr {
	switch n := expr.(type) {
	case *ir.Var:
		return tgt.atVar(n)
	case *ir.IntImm:
		return ir.MakeZero(n.Typ)
	case *ir.UIntImm:
		return ir.MakeZero(n.Typ)
	case *ir.FloatImm:
		return ir.MakeZero(n.Typ)
	case *ir.StringImm:
		UnsupportedNode("StringImm")
		return nil
	case *ir.Cast:
		if n.Typ.IsFloat() {
			return ir.NewCast(n.Typ, diff(n.X, tgt))
		}
		return ir.MakeZero(n.Typ)
	case *ir.Not:
		return ir.MakeZero(n.Type())
	case *ir.Select:
		return ir.NewSelect(n.Cond, diff(n.T, tgt), diff(n.F, tgt))
	case *ir.BinOp:
		return diffBinOp(n, tgt)
	case *ir.Call:
		return diffCall(n, tgt)
	case *ir.Reduce:
		return diffReduce(n, tgt)
	case *ir.Ramp:
		UnsupportedNode("Ramp")
	case *ir.Broadcast:
		UnsupportedNode("Broadcast")
	case *ir.Load:
		UnsupportedNode("Load")
	case *ir.Let:
		UnsupportedNode("Let")
	case *ir.Shuffle:
		UnsupportedNode("Shuffle")
	default:
		UnsupportedNode(fmt.Sprintf("%T", n))
	}
	return nil
}

func diffBinOp(n *ir.BinOp, tgt target) ir.Expr {
	da := diff(n.A, tgt)
	switch n.Kind {
	case ir.OpAdd:
		return ir.Add(da, diff(n.B, tgt))
	case ir.OpSub:
		return ir.Sub(da, diff(n.B, tgt))
	case ir.OpMul:
		return ir.Add(ir.Mul(da, n.B), ir.Mul(n.A, diff(n.B, tgt)))
	case ir.OpDiv:
		db := diff(n.B, tgt)
		num := ir.Sub(ir.Mul(da, n.B), ir.Mul(n.A, db))
		return ir.Div(num, ir.Mul(n.B, n.B))
	case ir.OpMod:
		// d/dv (a mod b) treats b as locally constant, matching TVM's autodiff.cc.
		return da
	case ir.OpMin:
		return ir.NewSelect(ir.LT(n.A, n.B), da, diff(n.B, tgt))
	case ir.OpMax:
		return ir.NewSelect(ir.GT(n.A, n.B), da, diff(n.B, tgt))
	case ir.OpEQ, ir.OpNE, ir.OpLT, ir.OpLE, ir.OpGT, ir.OpGE, ir.OpAnd, ir.OpOr:
		return ir.MakeZero(n.Type())
	default:
		UnsupportedNode("BinOp")
		return nil
	}
}

func diffCall(n *ir.Call, tgt target) ir.Expr {
	if n.CallType == ir.CallHalide {
		return tgt.atHalideCall(n)
	}
	if len(n.Args) != 1 {
		UnsupportedIntrinsic(n.Name)
		return nil
	}
	x := n.Args[0]
	dx := diff(x, tgt)
	switch n.Name {
	case ir.IntrinsicExp:
		return ir.Mul(n, dx)
	case ir.IntrinsicLog:
		return ir.Div(dx, x)
	case ir.IntrinsicSigmoid:
		return ir.Mul(ir.Mul(n, ir.Sub(ir.MakeOne(n.Typ), n)), dx)
	case ir.IntrinsicTanh:
		return ir.Mul(ir.Sub(ir.MakeOne(n.Typ), ir.Mul(n, n)), dx)
	case ir.IntrinsicFabs:
		return ir.NewSelect(ir.GE(x, ir.MakeZero(x.Type())), dx, ir.Sub(ir.MakeZero(n.Typ), dx))
	default:
		UnsupportedIntrinsic(n.Name)
		return nil
	}
}

// diffReduce implements the paired-combiner construction: it doubles the combiner's
// arity so that each original fold slot i gains a partner slot carrying the derivative of
// slot i, folds diff(Source[i], tgt) into the new slots, and differentiates the
// combiner's own Result expressions (which may be nonlinear, e.g. a max-combiner) with
// respect to each of its Lhs/Rhs parameters to build the new Result expressions - that
// inner differentiation is always with respect to a combiner parameter Var, regardless of
// what the outer walk's target is. The returned Reduce selects the derivative partner of
// n's own ValueIndex.
func diffReduce(n *ir.Reduce, tgt target) ir.Expr {
	// Clone n's axis and combiner parameters to fresh identities first: the paired
	// combiner built below nests a second reduction over the same logical axis, and
	// without fresh identities it would alias n's own bound variables.
	n = simplify.CloneReduction(n)
	k := n.Combiner.Arity()
	c := n.Combiner

	newLhs := make([]*ir.Var, 2*k)
	newRhs := make([]*ir.Var, 2*k)
	copy(newLhs, c.Lhs)
	copy(newRhs, c.Rhs)
	for i := 0; i < k; i++ {
		newLhs[k+i] = ir.NewVar(c.Lhs[i].Name+".d", c.Lhs[i].Typ)
		newRhs[k+i] = ir.NewVar(c.Rhs[i].Name+".d", c.Rhs[i].Typ)
	}

	newResult := make([]ir.Expr, 2*k)
	copy(newResult, c.Result)
	for i := 0; i < k; i++ {
		var acc ir.Expr
		for j := 0; j < k; j++ {
			termLhs := ir.Mul(Derivative(c.Result[i], c.Lhs[j]), newLhs[k+j])
			termRhs := ir.Mul(Derivative(c.Result[i], c.Rhs[j]), newRhs[k+j])
			if acc == nil {
				acc = ir.Add(termLhs, termRhs)
			} else {
				acc = ir.Add(acc, ir.Add(termLhs, termRhs))
			}
		}
		newResult[k+i] = acc
	}

	// The derivative partner's identity is the identity element's own derivative, not a
	// zero stub: most combiners (sum) have a constant identity that differentiates to
	// zero anyway, but a combiner whose identity is itself an expression (dependent on
	// the same target being differentiated) must carry that through correctly.
	newIdentity := make([]ir.Expr, 2*k)
	copy(newIdentity, c.Identity)
	for i := 0; i < k; i++ {
		newIdentity[k+i] = diff(c.Identity[i], tgt)
	}

	newSource := make([]ir.Expr, 2*k)
	copy(newSource, n.Source)
	for i := 0; i < k; i++ {
		newSource[k+i] = diff(n.Source[i], tgt)
	}

	pairedCombiner := &ir.Combiner{Lhs: newLhs, Rhs: newRhs, Result: newResult, Identity: newIdentity}
	paired := &ir.Reduce{
		Combiner:   pairedCombiner,
		Source:     newSource,
		Axis:       n.Axis,
		Condition:  n.Condition,
		ValueIndex: k + n.ValueIndex,
	}

	// Only the derivative partner of n's own ValueIndex is ever read; the original value
	// slots 0..k-1 must stay (the derivative formulas above reference their Lhs/Rhs
	// accumulator variables), but every other slot's derivative partner is dead fold state
	// and gets dropped here.
	keep := make([]int, 0, k+1)
	for i := 0; i < k; i++ {
		keep = append(keep, i)
	}
	keep = append(keep, k+n.ValueIndex)
	simplified := simplify.SimplifyCombiner(paired, keep)
	return simplify.Simplify(simplified)
}
