// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides the pure Go kernel backend for device arrays.
//
// # Overview
//
// Kernels are compiled once per context generation and cached by name and
// element type. Each kernel runs:
//   - directly on driver memory when the driver exposes it (host driver)
//   - through host staging buffers otherwise (WebGPU driver)
//
// Large launches are split across worker goroutines.
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/devarray/array"
//	    "github.com/born-ml/devarray/backend/cpu"
//	    "github.com/born-ml/devarray/device"
//	)
//
//	func main() {
//	    ctx := device.NewContext(device.Host(device.DefaultHostConfig()))
//	    defer ctx.Destroy()
//	    rt := array.NewRuntime(ctx, cpu.New())
//	    x, _ := array.Ones(rt, array.Float32, 2, 3)
//	    defer x.Release()
//	}
package cpu
