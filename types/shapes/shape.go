// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package shapes defines Shape and DType, the static shape model used throughout the
// symbolic differentiation engine.
//
// A Shape here only ever describes a symbolic Tensor: a compile-time list of dimensions
// plus a DType, with no tuple shapes, no dynamic dimensions and no backing storage.
package shapes

import (
	"fmt"
	"slices"

	"github.com/gomlx/exceptions"
)

// Shape describes the rank, dimensions and DType of a symbolic Tensor.
type Shape struct {
	DType      DType
	Dimensions []int
}

// Make returns a Shape with the given dtype and dimensions. A Shape with no dimensions
// is a scalar.
func Make(dtype DType, dimensions ...int) Shape {
	s := Shape{DType: dtype, Dimensions: slices.Clone(dimensions)}
	for _, dim := range dimensions {
		if dim <= 0 {
			exceptions.Panicf("shapes.Make(%s): cannot create a shape with an axis with dimension <= 0", s)
		}
	}
	return s
}

// Scalar returns a rank-0 Shape of the given dtype.
func Scalar(dtype DType) Shape {
	return Shape{DType: dtype}
}

// Invalid returns a Shape that fails Ok().
func Invalid() Shape {
	return Shape{DType: InvalidDType}
}

// Ok returns whether s is a valid shape.
func (s Shape) Ok() bool { return s.DType != InvalidDType }

// Rank is the number of dimensions (axes) of s.
func (s Shape) Rank() int { return len(s.Dimensions) }

// IsScalar returns whether s has no dimensions.
func (s Shape) IsScalar() bool { return s.Ok() && s.Rank() == 0 }

// Dim returns the size of the given axis. Negative axis counts from the end, as in slicing.
func (s Shape) Dim(axis int) int {
	adjusted := axis
	if adjusted < 0 {
		adjusted += s.Rank()
	}
	if adjusted < 0 || adjusted >= s.Rank() {
		exceptions.Panicf("Shape.Dim(%d) out-of-bounds for rank %d (shape=%s)", axis, s.Rank(), s)
	}
	return s.Dimensions[adjusted]
}

// Shape implements the "HasShape" convention used across the corpus.
func (s Shape) Shape() Shape { return s }

// String implements fmt.Stringer.
func (s Shape) String() string {
	if s.Rank() == 0 {
		return fmt.Sprintf("(%s)", s.DType)
	}
	return fmt.Sprintf("(%s)%v", s.DType, s.Dimensions)
}

// Size is the number of scalar elements described by s, the product of its dimensions.
func (s Shape) Size() (size int) {
	size = 1
	for _, d := range s.Dimensions {
		size *= d
	}
	return
}

// Equal compares dtype and dimensions.
func (s Shape) Equal(other Shape) bool {
	if s.DType != other.DType {
		return false
	}
	return slices.Equal(s.Dimensions, other.Dimensions)
}

// EqualDimensions compares dimensions only, ignoring dtype.
func (s Shape) EqualDimensions(other Shape) bool {
	return slices.Equal(s.Dimensions, other.Dimensions)
}

// Clone returns a deep copy of s.
func (s Shape) Clone() Shape {
	return Shape{DType: s.DType, Dimensions: slices.Clone(s.Dimensions)}
}

// WithDType returns a copy of s with a different dtype.
func (s Shape) WithDType(dtype DType) Shape {
	s2 := s.Clone()
	s2.DType = dtype
	return s2
}

// Concat concatenates the dimensions of s1 and s2, in that order. The dtype of the result
// is taken from s1; used to build a Jacobian's shape as output.shape followed by
// input.shape.
func Concat(s1, s2 Shape) Shape {
	dims := make([]int, 0, s1.Rank()+s2.Rank())
	dims = append(dims, s1.Dimensions...)
	dims = append(dims, s2.Dimensions...)
	return Shape{DType: s1.DType, Dimensions: dims}
}

// Prefix returns the first n dimensions of s (its leading "batch"/head axes), as used when
// peeling the head-tensor prefix off an adjoint's shape.
func (s Shape) Prefix(n int) []int {
	if n < 0 {
		n = 0
	}
	if n > s.Rank() {
		n = s.Rank()
	}
	return slices.Clone(s.Dimensions[:n])
}

// Suffix returns the last n dimensions of s.
func (s Shape) Suffix(n int) []int {
	if n < 0 {
		n = 0
	}
	if n > s.Rank() {
		n = s.Rank()
	}
	return slices.Clone(s.Dimensions[s.Rank()-n:])
}
