package kernel

import (
	"fmt"
	"log/slog"

	"github.com/born-ml/devarray/internal/device"
	"github.com/born-ml/devarray/internal/dtype"
)

// Func executes one validated launch to completion.
type Func func(l *Launch) error

// Compiler builds the kernels of one element type for a device.
type Compiler interface {
	// Compile returns the kernels available for dt. Ops missing from the
	// result are unsupported for that type.
	Compile(drv device.Driver, dt dtype.DataType) (map[Op]Func, error)
}

// Program holds the compiled kernels of one element type for one context
// generation.
type Program struct {
	dtype   dtype.DataType
	stamp   device.Stamp
	kernels [numOps]Func
}

// DType returns the element type the program was compiled for.
func (p *Program) DType() dtype.DataType {
	return p.dtype
}

// Kernel resolves op. The second result is false when op is not
// available for the program's element type.
func (p *Program) Kernel(op Op) (Func, bool) {
	if !op.Valid() || p.kernels[op] == nil {
		return nil, false
	}
	return p.kernels[op], true
}

// Cache compiles programs lazily, once per element type, and rebuilds
// them after the device context changed generation.
type Cache struct {
	ctx      *device.Context
	compiler Compiler
	programs map[dtype.DataType]*Program
	builds   int
}

// NewCache returns an empty program cache bound to ctx.
func NewCache(ctx *device.Context, compiler Compiler) *Cache {
	return &Cache{
		ctx:      ctx,
		compiler: compiler,
		programs: make(map[dtype.DataType]*Program),
	}
}

// Program returns the program for dt, compiling it if needed. Double
// precision types require a device with FP64 support.
func (c *Cache) Program(dt dtype.DataType) (*Program, error) {
	if p, ok := c.programs[dt]; ok && c.ctx.StillValid(p.stamp) {
		return p, nil
	}

	if _, err := c.ctx.EnsureActive(); err != nil {
		return nil, err
	}
	if dt.IsDouble() && !c.ctx.FP64() {
		return nil, fmt.Errorf("%w: %s needs a double precision device", device.ErrUnsupportedType, dt)
	}

	stamp, err := c.ctx.Stamp(true)
	if err != nil {
		return nil, err
	}
	kernels, err := c.compiler.Compile(c.ctx.Driver(), dt)
	if err != nil {
		return nil, fmt.Errorf("kernel: compile %s program: %w", dt, err)
	}

	p := &Program{dtype: dt, stamp: stamp}
	for op, fn := range kernels {
		if op.Valid() {
			p.kernels[op] = fn
		}
	}
	c.programs[dt] = p
	c.builds++
	c.ctx.Logger().Debug("kernel program compiled", "dtype", dt, "kernels", len(kernels), "epoch", stamp.Epoch())
	return p, nil
}

// Kernel resolves op for element type dt.
func (c *Cache) Kernel(dt dtype.DataType, op Op) (Func, error) {
	p, err := c.Program(dt)
	if err != nil {
		return nil, err
	}
	fn, ok := p.Kernel(op)
	if !ok {
		return nil, fmt.Errorf("%w: kernel %s not available for %s", device.ErrUnsupportedType, op, dt)
	}
	return fn, nil
}

// Run validates l and executes it with the kernel for dt.
func (c *Cache) Run(dt dtype.DataType, l *Launch) error {
	if err := l.Validate(); err != nil {
		return err
	}
	fn, err := c.Kernel(dt, l.Op)
	if err != nil {
		return err
	}
	if l.Work == 0 {
		return nil
	}
	if err := fn(l); err != nil {
		return device.Wrap("enqueue "+l.Op.String(), err)
	}
	return nil
}

// Builds returns how many programs were compiled so far.
func (c *Cache) Builds() int {
	return c.builds
}

// Logger returns the logger of the bound context.
func (c *Cache) Logger() *slog.Logger {
	return c.ctx.Logger()
}
