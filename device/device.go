// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package device

import (
	internaldevice "github.com/born-ml/devarray/internal/device"
	"github.com/born-ml/devarray/internal/device/host"
	"github.com/born-ml/devarray/internal/device/webgpu"
)

// Context owns one device connection at a time and stamps its generations.
type Context = internaldevice.Context

// Option configures a Context.
type Option = internaldevice.Option

// Epoch identifies one context generation. NoEpoch means inactive.
type Epoch = internaldevice.Epoch

// Stamp records the epoch an object was created under.
type Stamp = internaldevice.Stamp

// Driver is an open connection to one compute device.
type Driver = internaldevice.Driver

// Opener opens a driver when a context is created.
type Opener = internaldevice.Opener

// BufferID is an opaque handle to device memory.
type BufferID = internaldevice.BufferID

// BufferPool recycles device buffers by exact byte size.
type BufferPool = internaldevice.BufferPool

// PoolStats counts pool activity.
type PoolStats = internaldevice.PoolStats

// BucketInfo describes the retained buffers of one byte size.
type BucketInfo = internaldevice.BucketInfo

// DeviceError wraps a failure reported by a driver.
type DeviceError = internaldevice.DeviceError

// HostConfig controls the host driver.
type HostConfig = host.Config

// NoEpoch is the epoch of an inactive context.
const NoEpoch = internaldevice.NoEpoch

// DefaultMaxPerBucket is the default number of buffers retained per size.
const DefaultMaxPerBucket = internaldevice.DefaultMaxPerBucket

// Error kinds. Match them with errors.Is.
var (
	ErrInoperable            = internaldevice.ErrInoperable
	ErrShapeMismatch         = internaldevice.ErrShapeMismatch
	ErrNonContiguousIndex    = internaldevice.ErrNonContiguousIndex
	ErrUnsupportedConversion = internaldevice.ErrUnsupportedConversion
	ErrUnsupportedType       = internaldevice.ErrUnsupportedType
	ErrOutOfDeviceMemory     = internaldevice.ErrOutOfDeviceMemory
	ErrIndexOutOfRange       = internaldevice.ErrIndexOutOfRange
	ErrInvalidArgument       = internaldevice.ErrInvalidArgument
	ErrContextActive         = internaldevice.ErrContextActive
	ErrMixedContexts         = internaldevice.ErrMixedContexts
)

// NewContext returns an inactive context opening drivers with open.
//
// Example:
//
//	ctx := internaldevice.NewContext(device.Host(device.DefaultHostConfig()),
//	    device.WithMaxPerBucket(4))
//	epoch, err := ctx.Create()
func NewContext(open Opener, opts ...Option) *Context {
	return internaldevice.NewContext(open, opts...)
}

// WithLogger sets the logger of the context and its pool.
var WithLogger = internaldevice.WithLogger

// WithMaxPerBucket sets how many buffers the pool keeps per size.
var WithMaxPerBucket = internaldevice.WithMaxPerBucket

// DefaultHostConfig returns an unlimited, double precision host config.
func DefaultHostConfig() HostConfig {
	return host.DefaultConfig()
}

// Host returns an opener for the host memory driver.
func Host(cfg HostConfig) Opener {
	return host.Opener(cfg, nil)
}

// WebGPU returns an opener for the WebGPU driver. limit caps the bytes
// allocated at once; zero means no limit. On platforms without WebGPU
// support opening fails.
func WebGPU(limit int) Opener {
	return webgpu.Opener(limit)
}
