// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// autodiff_demo builds a small tensor expression by hand and prints the gradient the
// engine derives for it, exercising the process-wide registry the same way an external
// driver that only knows string entry-point names would.
package main

import (
	"flag"
	"fmt"

	"github.com/grwlf/tvm/autodiff"
	"github.com/grwlf/tvm/ir"
	"github.com/grwlf/tvm/registry"
	"github.com/grwlf/tvm/types/shapes"
	"github.com/janpfeifer/must"
	"k8s.io/klog/v2"
)

var flagSize = flag.Int("size", 4, "length of the input vector I in the O = sum(I*I) example")

func main() {
	klog.InitFlags(nil)
	flag.Parse()

	n := *flagSize
	input := ir.Placeholder("I", shapes.Make(shapes.Float32, n))
	output := ir.Compute(nil, shapes.Float32, "O", "", func([]ir.Expr) ir.Expr {
		k := ir.ReduceAxis(n, "k")
		elem := ir.NewHalideCall(input, []ir.Expr{k.Var})
		return ir.Sum(ir.Mul(elem, elem), []*ir.IterVar{k})
	})

	result := must.M1(registry.Call(autodiff.APIDifferentiate, output, []*ir.Tensor{input}, nil))
	diff := result.(*autodiff.DifferentiationResult)

	fmt.Printf("output:   %s\n", output)
	fmt.Printf("gradient: %s\n", diff.Result[0])
}
