// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package shapes

// DType indicates the type of the unit element of an Expr or Tensor in the symbolic IR.
//
// This engine never materializes concrete values, so there is no reflect-based conversion
// machinery here: DType exists purely to drive type preservation through differentiation
// and to pick the literal used for "zero of this type" and "one of this type".
type DType int32

const (
	InvalidDType DType = iota
	Bool
	Int32
	Int64
	UInt32
	UInt64
	Float32
	Float64
)

// PRED is an alias to Bool, matching the naming used across the corpus for boolean dtypes.
const PRED = Bool

func (dtype DType) String() string {
	switch dtype {
	case Bool:
		return "bool"
	case Int32:
		return "int32"
	case Int64:
		return "int64"
	case UInt32:
		return "uint32"
	case UInt64:
		return "uint64"
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	default:
		return "InvalidDType"
	}
}

// IsFloat returns whether dtype is one of the supported floating point types.
func (dtype DType) IsFloat() bool {
	return dtype == Float32 || dtype == Float64
}

// IsInt returns whether dtype is one of the supported signed or unsigned integer types.
func (dtype DType) IsInt() bool {
	return dtype == Int32 || dtype == Int64 || dtype == UInt32 || dtype == UInt64
}

// IsUnsigned returns whether dtype is one of the supported unsigned integer types.
func (dtype DType) IsUnsigned() bool {
	return dtype == UInt32 || dtype == UInt64
}

// IsBool returns whether dtype is the boolean type.
func (dtype DType) IsBool() bool {
	return dtype == Bool
}

// IsComplex always returns false: this engine never differentiates complex-valued
// expressions. Kept as a method, instead of dropped, so gradient entry points can guard
// on it uniformly alongside the other DType predicates.
func (dtype DType) IsComplex() bool {
	return false
}

// IsOrdered returns whether values of dtype admit a total order (so Min/Max/LT/LE/GT/GE
// make sense). All dtypes this engine supports are ordered; StringImm (not a DType here,
// since strings aren't a numeric lane) is handled separately in the ir package.
func (dtype DType) IsOrdered() bool {
	return dtype != InvalidDType
}
