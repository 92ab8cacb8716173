// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package device manages the lifetime of a compute device connection and
// the memory allocated on it.
//
// # Contexts and epochs
//
// A Context opens a driver on demand. Every Create starts a new generation
// with a strictly greater Epoch, and objects allocated under it carry a
// Stamp of that epoch. Destroy closes the driver: all stamped objects of
// the old generation become inoperable at once, without being visited.
//
//	ctx := device.NewContext(device.Host(device.HostConfig{FP64: true}))
//	defer ctx.Destroy()
//
// # Buffer pool
//
// Each context owns a BufferPool recycling device buffers by exact byte
// size. At most MaxPerBucket released buffers are kept per size, the
// largest size is evicted when the device runs out of memory, and the
// whole pool is flushed when the last handed-out buffer is released.
//
// # Drivers
//
//   - Host: buffers in Go memory, optional capacity limit (always available)
//   - WebGPU: buffers in GPU memory via WebGPU (Windows)
package device
