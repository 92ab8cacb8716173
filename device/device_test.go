// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package device_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/devarray/device"
)

func TestContextGenerations(t *testing.T) {
	ctx := device.NewContext(device.Host(device.DefaultHostConfig()))
	assert.Equal(t, device.NoEpoch, ctx.ActiveEpoch())

	first, err := ctx.Create()
	require.NoError(t, err)
	_, err = ctx.Create()
	require.ErrorIs(t, err, device.ErrContextActive)

	ctx.Destroy()
	second, err := ctx.Create()
	require.NoError(t, err)
	assert.Greater(t, second, first)
	assert.Equal(t, device.DefaultMaxPerBucket, ctx.Pool().MaxPerBucket())
	ctx.Destroy()
}

func TestHostCapacity(t *testing.T) {
	ctx := device.NewContext(device.Host(device.HostConfig{Capacity: 16, FP64: true}))
	t.Cleanup(ctx.Destroy)
	_, err := ctx.Create()
	require.NoError(t, err)

	_, err = ctx.Pool().Obtain(32)
	assert.ErrorIs(t, err, device.ErrOutOfDeviceMemory)
	assert.True(t, ctx.FP64())
}
