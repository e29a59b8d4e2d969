// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package registry

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegisterAndCall(t *testing.T) {
	Register("test.echo", func(args ...interface{}) (interface{}, error) {
		return args[0], nil
	})
	got, err := Call("test.echo", 42)
	require.NoError(t, err)
	require.Equal(t, 42, got)
}

func TestCallUnknownNameErrors(t *testing.T) {
	_, err := Call("test.does-not-exist")
	require.Error(t, err)
}

func TestMustCallPanicsOnError(t *testing.T) {
	require.Panics(t, func() { MustCall("test.does-not-exist") })
}
