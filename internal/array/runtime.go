// Package array implements reference-counted, copy-on-write arrays stored
// in device memory.
//
// An Array is a light handle: dimensions plus a window (offset, length)
// into a shared rep that owns one device buffer. Copies and slices share
// the rep; every mutating operation first makes the handle's storage
// unique. Reps are stamped with the device context generation that
// allocated them, so destroying the context invalidates all of them at
// once.
//
// Example:
//
//	ctx := device.NewContext(host.Opener(host.DefaultConfig(), nil))
//	rt := array.NewRuntime(ctx, cpu.New(parallel.DefaultConfig()))
//	a, _ := array.FromSlice(rt, []float32{1, 2, 3, 4}, 2, 2)
//	b := a.Clone()           // shares storage with a
//	_ = b.AssignScalar([]array.Idx{array.All(), array.At(0)}, 0) // first column
//	// b holds 0 0 3 4, a still holds 1 2 3 4
package array

import (
	"fmt"
	"log/slog"

	"github.com/born-ml/devarray/internal/device"
	"github.com/born-ml/devarray/internal/dtype"
	"github.com/born-ml/devarray/internal/kernel"
)

// Runtime binds arrays to a device context and the kernels compiled for it.
// Like the context it wraps, a Runtime is not safe for concurrent use.
type Runtime struct {
	ctx      *device.Context
	programs *kernel.Cache
	logger   *slog.Logger
}

// NewRuntime returns a runtime dispatching kernels built by compiler on
// the devices opened by ctx.
func NewRuntime(ctx *device.Context, compiler kernel.Compiler) *Runtime {
	return &Runtime{
		ctx:      ctx,
		programs: kernel.NewCache(ctx, compiler),
		logger:   ctx.Logger(),
	}
}

// Context returns the device context.
func (rt *Runtime) Context() *device.Context {
	return rt.ctx
}

// Programs returns the kernel program cache.
func (rt *Runtime) Programs() *kernel.Cache {
	return rt.programs
}

// Logger returns the runtime logger.
func (rt *Runtime) Logger() *slog.Logger {
	return rt.logger
}

// launch runs op for element type dt.
func (rt *Runtime) launch(dt dtype.DataType, op kernel.Op, work int, operands []kernel.Operand, scalars []any, params ...int) error {
	l := &kernel.Launch{
		Op:       op,
		Operands: operands,
		Scalars:  scalars,
		Params:   params,
		Work:     work,
	}
	if err := rt.programs.Run(dt, l); err != nil {
		return fmt.Errorf("array: %s: %w", op, err)
	}
	return nil
}

// scalarOf converts v to the Go type of dt for a kernel argument.
func scalarOf(dt dtype.DataType, v any) (any, error) {
	c, err := dtype.Cast(dt, v)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", device.ErrInvalidArgument, err)
	}
	return c, nil
}
