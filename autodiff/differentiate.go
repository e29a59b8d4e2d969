// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package autodiff

import (
	"fmt"

	"github.com/grwlf/tvm/ir"
	"github.com/grwlf/tvm/nonzero"
	"github.com/grwlf/tvm/types/shapes"
	"k8s.io/klog/v2"
)

// FDiffFunc computes producer's contribution to an adjoint given one of producer's
// consumers and that consumer's own adjoint. DiffBuildingBlock is the default; tests and
// advanced callers may substitute another rule (e.g. one that skips the nonzeroness
// lifting pass) without touching the reverse-mode driver itself.
type FDiffFunc func(consumer, producer, consumerAdjoint *ir.Tensor) *ir.Tensor

// DiffBuildingBlock is the C4 pipeline: Jacobian, contract against the consumer's
// adjoint via GeneralizedMatMul, then InlineNonReductions, OptimizeAndLiftNonzeronessConditions
// and InlineTailCall, in that fixed order. consumer reads producer somewhere in its body;
// head is consumer's own adjoint, of shape P++consumer.Shape for some leading prefix P
// (empty when head has exactly consumer's shape). The result has shape P++producer.Shape.
func DiffBuildingBlock(consumer, producer, head *ir.Tensor) *ir.Tensor {
	jac := TensorJacobian(consumer, producer, true)
	if op, ok := jac.Op.(*ir.ComputeOp); ok && len(op.Body) == 1 && isZeroLiteral(op.Body[0]) {
		klog.V(2).Infof("autodiff: jacobian of %q w.r.t. %q is identically zero", consumer.Name(), producer.Name())
	}
	name := fmt.Sprintf("%s.grad.%s", producer.Name(), consumer.Name())
	contracted := GeneralizedMatMul(head, jac, consumer.Rank(), name)
	inlined := nonzero.InlineNonReductions(contracted, []*ir.Tensor{jac})
	lifted := nonzero.OptimizeAndLiftNonzeronessConditions(inlined)
	return nonzero.InlineTailCall(lifted)
}

// DifferentiationResult is the immutable output of Differentiate: Result holds one
// adjoint tensor per requested input, in the order Inputs was given; Adjoints holds every
// tensor's adjoint the traversal actually computed, keyed by pointer identity; AdjointSummands
// records, for each tensor, the individual per-consumer contribution DiffBuildingBlock (or
// fdiff) produced before they were folded together, so a caller can inspect exactly how an
// adjoint was assembled instead of only seeing the final sum.
type DifferentiationResult struct {
	Result          []*ir.Tensor
	Adjoints        map[*ir.Tensor]*ir.Tensor
	AdjointSummands map[*ir.Tensor]map[*ir.Tensor]*ir.Tensor
}

// Differentiate runs the reverse-mode driver: starting from output's adjoint (head, or the
// identity tensor of shape output.Shape++output.Shape when head is nil), it walks the
// producer/consumer graph discovered by nonzero.Subtensors and accumulates each
// reachable tensor's adjoint as the fdiff-weighted sum of its direct consumers'
// adjoints, folded left-to-right in first-discovery order - floating point addition is
// not associative, so that order is part of this function's contract, not an
// implementation detail. fdiff defaults to DiffBuildingBlock when nil.
func Differentiate(output *ir.Tensor, inputs []*ir.Tensor, head *ir.Tensor, fdiff FDiffFunc) *DifferentiationResult {
	if fdiff == nil {
		fdiff = DiffBuildingBlock
	}
	if head == nil {
		head = identityTensor(output)
	}

	reverseDeps := make(map[*ir.Tensor][]*ir.Tensor)
	seenAsConsumerOf := make(map[*ir.Tensor]map[*ir.Tensor]bool)
	visited := map[*ir.Tensor]bool{output: true}
	stack := []*ir.Tensor{output}
	for len(stack) > 0 {
		t := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, producer := range nonzero.Subtensors(t) {
			if seenAsConsumerOf[producer] == nil {
				seenAsConsumerOf[producer] = make(map[*ir.Tensor]bool)
			}
			if !seenAsConsumerOf[producer][t] {
				seenAsConsumerOf[producer][t] = true
				reverseDeps[producer] = append(reverseDeps[producer], t)
			}
			if !visited[producer] {
				visited[producer] = true
				stack = append(stack, producer)
			}
		}
	}

	adjoints := map[*ir.Tensor]*ir.Tensor{output: head}
	summands := make(map[*ir.Tensor]map[*ir.Tensor]*ir.Tensor)

	var adjointOf func(*ir.Tensor) *ir.Tensor
	adjointOf = func(t *ir.Tensor) *ir.Tensor {
		if a, ok := adjoints[t]; ok {
			return a
		}
		consumers := reverseDeps[t]
		if len(consumers) == 0 {
			klog.Warningf("autodiff: tensor %q has no path to the differentiated output, adjoint is zero", t.Name())
			zero := zeroTensor(t, head, output)
			adjoints[t] = zero
			return zero
		}
		perConsumer := make(map[*ir.Tensor]*ir.Tensor, len(consumers))
		var sum *ir.Tensor
		for _, c := range consumers {
			consumerAdjoint := adjointOf(c)
			term := fdiff(c, t, consumerAdjoint)
			perConsumer[c] = term
			if sum == nil {
				sum = term
			} else {
				sum = tensorAdd(sum, term)
			}
		}
		summands[t] = perConsumer
		adjoints[t] = sum
		return sum
	}

	result := make([]*ir.Tensor, len(inputs))
	for i, in := range inputs {
		result[i] = adjointOf(in)
	}

	return &DifferentiationResult{Result: result, Adjoints: adjoints, AdjointSummands: summands}
}

// JacobianRecursive is a deprecated compatibility shim preserved from the original
// implementation, which renamed it to Differentiate: it logs a deprecation warning and
// returns only the .Result slice of a full Differentiate call. New code should call
// Differentiate directly.
func JacobianRecursive(output *ir.Tensor, inputs []*ir.Tensor, head *ir.Tensor) []*ir.Tensor {
	klog.Warning("autodiff: JacobianRecursive is deprecated, use autodiff.Differentiate")
	return Differentiate(output, inputs, head, nil).Result
}

func isZeroLiteral(e ir.Expr) bool {
	switch n := e.(type) {
	case *ir.IntImm:
		return n.Value == 0
	case *ir.UIntImm:
		return n.Value == 0
	case *ir.FloatImm:
		return n.Value == 0
	default:
		return false
	}
}

// identityTensor is the default head: the Kronecker-delta tensor of shape
// output.Shape++output.Shape, matching original_source/src/pass/autodiff.cc:412-425. Its
// element at (i..., j...) is 1 when i==j axis-by-axis and 0 otherwise, so contracting it
// against a Jacobian in DiffBuildingBlock reproduces that Jacobian unchanged - exactly what
// differentiating output with respect to itself as the implicit starting adjoint requires.
func identityTensor(output *ir.Tensor) *ir.Tensor {
	rank := output.Rank()
	dims := make([]int, 0, 2*rank)
	dims = append(dims, output.Shape.Dimensions...)
	dims = append(dims, output.Shape.Dimensions...)
	return ir.Compute(dims, output.DType(), output.Name()+".identity", "", func(axis []ir.Expr) ir.Expr {
		var cond ir.Expr = ir.MakeConst(shapes.Bool, 1)
		for i := 0; i < rank; i++ {
			cond = ir.And(cond, ir.EQ(axis[i], axis[rank+i]))
		}
		return ir.NewCast(output.DType(), cond)
	})
}

// zeroTensor is the adjoint of an unreachable tensor like: shaped head.Shape[:-rank(output)]
// ++ like.Shape (original_source/src/pass/autodiff.cc:463-471), i.e. the same leading batch
// dimensions as every other adjoint in this traversal, followed by like's own shape.
func zeroTensor(like, head, output *ir.Tensor) *ir.Tensor {
	prefix := head.Shape.Prefix(head.Rank() - output.Rank())
	dims := make([]int, 0, len(prefix)+len(like.Shape.Dimensions))
	dims = append(dims, prefix...)
	dims = append(dims, like.Shape.Dimensions...)
	return ir.Compute(dims, like.DType(), like.Name()+".zeros", "", func([]ir.Expr) ir.Expr {
		return ir.MakeZero(like.DType())
	})
}

// tensorAdd builds the elementwise sum of two equal-shaped tensors.
func tensorAdd(a, b *ir.Tensor) *ir.Tensor {
	dims := append([]int(nil), a.Shape.Dimensions...)
	return ir.Compute(dims, a.DType(), a.Name()+".plus."+b.Name(), "", func(axis []ir.Expr) ir.Expr {
		return ir.Add(ir.NewHalideCall(a, axis), ir.NewHalideCall(b, axis))
	})
}
