// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package autodiff implements symbolic reverse-mode differentiation over the ir package's
// expression tree: a scalar Derivative/Jacobian core, its tensor-shaped lift, a
// generalized tensor contraction used to combine Jacobians with adjoints, the fixed
// pipeline that turns a Jacobian into something a backend can actually compile, the
// reverse-mode driver that walks a computation graph accumulating adjoints, and the
// immutable result container it returns.
package autodiff

import "github.com/gomlx/exceptions"

// UnsupportedNode panics: kind has no derivative rule (Ramp, Broadcast, Load, Let,
// Shuffle, StringImm and the other control-flow/vector nodes this engine never
// materializes).
func UnsupportedNode(kind string) {
	exceptions.Panicf("autodiff: no derivative rule for node kind %q", kind)
}

// UnsupportedIntrinsic panics: name is a PureIntrinsic call this engine does not know the
// derivative of.
func UnsupportedIntrinsic(name string) {
	exceptions.Panicf("autodiff: no derivative rule for intrinsic %q", name)
}

// UnsupportedOp panics: a tensor-level operation was asked to differentiate a Tensor whose
// Op is not a *ir.ComputeOp.
func UnsupportedOp(opName string) {
	exceptions.Panicf("autodiff: cannot differentiate tensor produced by op %q: not a compute op", opName)
}

// RankMismatch panics: two tensors expected to share contraction rank/shape do not.
func RankMismatch(context string, want, got int) {
	exceptions.Panicf("autodiff: %s: rank mismatch, want %d got %d", context, want, got)
}
