// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package autodiff

import (
	"testing"

	"github.com/grwlf/tvm/ir"
	"github.com/grwlf/tvm/registry"
	"github.com/grwlf/tvm/types/shapes"
	"github.com/stretchr/testify/require"
)

func TestEntryPointsAreRegistered(t *testing.T) {
	for _, name := range []string{
		APIJacobian, APIDerivative, APIDiffBuildingBlock, APIDifferentiate,
		APIGeneralizedMatMul, APIJacobianRecursive,
	} {
		_, ok := registry.Get(name)
		require.True(t, ok, "expected %q to be registered", name)
	}
}

func TestRegistryDispatchesDerivative(t *testing.T) {
	x := ir.NewVar("x", shapes.Float32)
	got, err := registry.Call(APIDerivative, ir.Expr(x), x)
	require.NoError(t, err)
	lit, ok := got.(*ir.FloatImm)
	require.True(t, ok)
	require.Equal(t, float64(1), lit.Value)
}

func TestRegistryDispatchRejectsWrongArgType(t *testing.T) {
	_, err := registry.Call(APIDerivative, "not-an-expr", ir.NewVar("x", shapes.Float32))
	require.Error(t, err)
}
