// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package ir

import (
	"fmt"
	"strings"

	"github.com/grwlf/tvm/types/shapes"
)

// CallType distinguishes a read of another tensor's element (Halide) from a call to a
// named pure mathematical function (PureIntrinsic), matching TVM's Call::CallType.
type CallType int

const (
	// CallHalide reads FuncRef (a Tensor) at ValueIndex, indexed by Args.
	CallHalide CallType = iota
	// CallPureIntrinsic invokes a named, side-effect-free math function such as "exp".
	CallPureIntrinsic
)

// Supported PureIntrinsic names; any other name fails with UnsupportedIntrinsic.
const (
	IntrinsicExp     = "exp"
	IntrinsicLog     = "log"
	IntrinsicSigmoid = "sigmoid"
	IntrinsicTanh    = "tanh"
	IntrinsicFabs    = "fabs"
)

// Call is either a read of a producer tensor's element (CallHalide) or an invocation of a
// pure intrinsic function (CallPureIntrinsic).
type Call struct {
	Typ        shapes.DType
	CallType   CallType
	Name       string
	Args       []Expr
	FuncRef    *Tensor // non-nil only for CallHalide
	ValueIndex int
}

// NewHalideCall builds a read of producer at the given element indices.
func NewHalideCall(producer *Tensor, indices []Expr) *Call {
	return &Call{
		Typ:        producer.DType(),
		CallType:   CallHalide,
		Name:       producer.Name(),
		Args:       indices,
		FuncRef:    producer,
		ValueIndex: producer.ValueIndex,
	}
}

// NewIntrinsicCall builds a call to a named pure intrinsic.
func NewIntrinsicCall(typ shapes.DType, name string, args ...Expr) *Call {
	return &Call{Typ: typ, CallType: CallPureIntrinsic, Name: name, Args: args}
}

func (n *Call) Type() shapes.DType { return n.Typ }

func (n *Call) String() string {
	parts := make([]string, len(n.Args))
	for i, a := range n.Args {
		parts[i] = a.String()
	}
	if n.CallType == CallHalide {
		return fmt.Sprintf("%s[%s]", n.Name, strings.Join(parts, ", "))
	}
	return fmt.Sprintf("%s(%s)", n.Name, strings.Join(parts, ", "))
}
