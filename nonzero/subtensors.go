// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package nonzero

import "github.com/grwlf/tvm/ir"

// Subtensors returns every distinct tensor t's body reads from, via a CallHalide node, in
// first-encounter order. A PlaceholderOp tensor (no body) has no subtensors. This is the
// primitive the reverse-mode driver uses to build its consumer-to-producer dependency map
// (walk output's subtensors, then each of those tensors' subtensors, and so on).
func Subtensors(t *ir.Tensor) []*ir.Tensor {
	op, ok := t.Op.(*ir.ComputeOp)
	if !ok {
		return nil
	}
	var order []*ir.Tensor
	seen := make(map[*ir.Tensor]bool)
	visit := func(c *ir.Call) {
		if c.CallType != ir.CallHalide || c.FuncRef == nil {
			return
		}
		if !seen[c.FuncRef] {
			seen[c.FuncRef] = true
			order = append(order, c.FuncRef)
		}
	}
	for _, b := range op.Body {
		visitExpr(b, visit)
	}
	return order
}
