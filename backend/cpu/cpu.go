// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package cpu

import (
	internalcpu "github.com/born-ml/devarray/internal/backend/cpu"
	"github.com/born-ml/devarray/internal/kernel"
	"github.com/born-ml/devarray/internal/parallel"
)

// Backend compiles array kernels to Go code.
type Backend = internalcpu.Backend

// Compile-time check that Backend can serve an array runtime.
var _ kernel.Compiler = (*Backend)(nil)

// New creates a CPU backend using every available CPU for large kernels.
//
// Example:
//
//	ctx := device.NewContext(device.Host(device.DefaultHostConfig()))
//	rt := array.NewRuntime(ctx, cpu.New())
func New() *Backend {
	return internalcpu.New(parallel.DefaultConfig())
}

// NewWithWorkers creates a CPU backend with at most n worker goroutines
// per kernel. n <= 1 runs every kernel on the calling goroutine.
func NewWithWorkers(n int) *Backend {
	if n <= 1 {
		return internalcpu.New(parallel.Sequential())
	}
	cfg := parallel.DefaultConfig()
	cfg.NumWorkers = n
	cfg.Enabled = true
	return internalcpu.New(cfg)
}
