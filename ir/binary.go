// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package ir

import (
	"fmt"

	"github.com/grwlf/tvm/types/shapes"
)

// BinOpKind enumerates the binary operators of the IR. Using a single tagged struct for
// all of them, rather than one Go type per operator, keeps the differentiator's type
// switch short: the switch is on Kind, not on a type assertion, for this one node family.
type BinOpKind int

const (
	OpAdd BinOpKind = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpMin
	OpMax
	OpEQ
	OpNE
	OpLT
	OpLE
	OpGT
	OpGE
	OpAnd
	OpOr
)

func (k BinOpKind) symbol() string {
	switch k {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpMod:
		return "%"
	case OpMin:
		return "min"
	case OpMax:
		return "max"
	case OpEQ:
		return "=="
	case OpNE:
		return "!="
	case OpLT:
		return "<"
	case OpLE:
		return "<="
	case OpGT:
		return ">"
	case OpGE:
		return ">="
	case OpAnd:
		return "&&"
	case OpOr:
		return "||"
	default:
		return "?"
	}
}

// isComparisonOrLogical reports whether k always yields a Bool result regardless of its
// operands' type; these operators are piecewise constant, and differentiating one yields
// the Bool zero literal.
func (k BinOpKind) isComparisonOrLogical() bool {
	switch k {
	case OpEQ, OpNE, OpLT, OpLE, OpGT, OpGE, OpAnd, OpOr:
		return true
	default:
		return false
	}
}

// BinOp is a binary operator node: Add, Sub, Mul, Div, Mod, Min, Max, the six comparisons
// and the two logical connectives.
type BinOp struct {
	Kind BinOpKind
	A, B Expr
}

func newBin(kind BinOpKind, a, b Expr) *BinOp { return &BinOp{Kind: kind, A: a, B: b} }

func Add(a, b Expr) *BinOp { return newBin(OpAdd, a, b) }
func Sub(a, b Expr) *BinOp { return newBin(OpSub, a, b) }
func Mul(a, b Expr) *BinOp { return newBin(OpMul, a, b) }
func Div(a, b Expr) *BinOp { return newBin(OpDiv, a, b) }
func Mod(a, b Expr) *BinOp { return newBin(OpMod, a, b) }
func Min(a, b Expr) *BinOp { return newBin(OpMin, a, b) }
func Max(a, b Expr) *BinOp { return newBin(OpMax, a, b) }
func EQ(a, b Expr) *BinOp  { return newBin(OpEQ, a, b) }
func NE(a, b Expr) *BinOp  { return newBin(OpNE, a, b) }
func LT(a, b Expr) *BinOp  { return newBin(OpLT, a, b) }
func LE(a, b Expr) *BinOp  { return newBin(OpLE, a, b) }
func GT(a, b Expr) *BinOp  { return newBin(OpGT, a, b) }
func GE(a, b Expr) *BinOp  { return newBin(OpGE, a, b) }
func And(a, b Expr) *BinOp { return newBin(OpAnd, a, b) }
func Or(a, b Expr) *BinOp  { return newBin(OpOr, a, b) }

func (n *BinOp) Type() shapes.DType {
	if n.Kind.isComparisonOrLogical() {
		return shapes.Bool
	}
	return n.A.Type()
}

func (n *BinOp) String() string {
	return fmt.Sprintf("(%s %s %s)", n.A, n.Kind.symbol(), n.B)
}
