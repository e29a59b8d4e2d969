// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package shapes

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMakeAndScalar(t *testing.T) {
	s := Make(Float32, 2, 3)
	require.True(t, s.Ok())
	require.Equal(t, 2, s.Rank())
	require.Equal(t, 2, s.Dim(0))
	require.Equal(t, 3, s.Dim(-1))
	require.Equal(t, 6, s.Size())
	require.False(t, s.IsScalar())

	scalar := Scalar(Float32)
	require.True(t, scalar.IsScalar())
	require.Equal(t, 1, scalar.Size())
}

func TestEqual(t *testing.T) {
	require.True(t, Make(Float32, 2, 3).Equal(Make(Float32, 2, 3)))
	require.False(t, Make(Float32, 2, 3).Equal(Make(Float64, 2, 3)))
	require.False(t, Make(Float32, 2, 3).Equal(Make(Float32, 3, 2)))
}

func TestConcat(t *testing.T) {
	output := Make(Float32, 2, 3)
	input := Make(Int64, 3, 4)
	got := Concat(output, input)
	require.True(t, got.Equal(Make(Float32, 2, 3, 3, 4)))
}

func TestPrefixSuffix(t *testing.T) {
	s := Make(Float32, 1, 2, 3, 4)
	require.Equal(t, []int{1, 2}, s.Prefix(2))
	require.Equal(t, []int{3, 4}, s.Suffix(2))
	require.Equal(t, []int{}, s.Prefix(0))
	require.Equal(t, []int{1, 2, 3, 4}, s.Suffix(10))
}

func TestMakeRejectsNonPositiveDims(t *testing.T) {
	require.Panics(t, func() { Make(Float32, 0) })
	require.Panics(t, func() { Make(Float32, -1) })
}
