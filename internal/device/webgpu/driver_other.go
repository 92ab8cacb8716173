//go:build !windows

// Package webgpu implements a device driver keeping buffers in GPU memory.
// The WebGPU bindings are only wired up on windows; elsewhere opening the
// driver fails.
package webgpu

import (
	"errors"

	"github.com/born-ml/devarray/internal/device"
)

// Name is the driver name reported to the context.
const Name = "webgpu"

// ErrUnavailable is returned by Open on platforms without WebGPU bindings.
var ErrUnavailable = errors.New("webgpu: not available on this platform")

// Opener returns a device.Opener that always fails with ErrUnavailable.
func Opener(int) device.Opener {
	return func() (device.Driver, error) {
		return nil, ErrUnavailable
	}
}
