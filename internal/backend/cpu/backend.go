// Package cpu implements the device kernels in Go.
//
// Kernels run directly on the memory of drivers that expose it (the host
// driver). For any other driver the operands of each launch are staged
// through host memory: read before the kernel, written back after.
package cpu

import (
	"fmt"
	"unsafe"

	"github.com/born-ml/devarray/internal/device"
	"github.com/born-ml/devarray/internal/dtype"
	"github.com/born-ml/devarray/internal/kernel"
	"github.com/born-ml/devarray/internal/parallel"
)

// Memory resolves buffers to host-addressable bytes.
type Memory interface {
	Bytes(id device.BufferID) ([]byte, error)
}

// Backend compiles Go kernels for any element type.
type Backend struct {
	par parallel.Config
}

// New creates a CPU backend splitting large kernels according to par.
func New(par parallel.Config) *Backend {
	return &Backend{par: par}
}

// Name returns the backend name.
func (b *Backend) Name() string {
	return "CPU"
}

// Compile implements kernel.Compiler.
func (b *Backend) Compile(drv device.Driver, dt dtype.DataType) (map[kernel.Op]kernel.Func, error) {
	if drv == nil {
		return nil, fmt.Errorf("%w: no driver", device.ErrInoperable)
	}

	e := &env{par: b.par}
	mem, direct := drv.(Memory)
	var st *staging
	if direct {
		e.mem = mem
	} else {
		st = newStaging(drv)
		e.mem = st
	}

	kernels, err := kernelsFor(e, dt)
	if err != nil {
		return nil, err
	}
	if st != nil {
		for op, fn := range kernels {
			kernels[op] = st.wrap(fn)
		}
	}
	return kernels, nil
}

func kernelsFor(e *env, dt dtype.DataType) (map[kernel.Op]kernel.Func, error) {
	switch dt {
	case dtype.Int8:
		return signedKernels(e, signedTraits[int8](dt)), nil
	case dtype.Int16:
		return signedKernels(e, signedTraits[int16](dt)), nil
	case dtype.Int32:
		return signedKernels(e, signedTraits[int32](dt)), nil
	case dtype.Int64:
		return signedKernels(e, signedTraits[int64](dt)), nil
	case dtype.Uint8:
		return unsignedKernels(e, unsignedTraits[uint8](dt)), nil
	case dtype.Uint16:
		return unsignedKernels(e, unsignedTraits[uint16](dt)), nil
	case dtype.Uint32:
		return unsignedKernels(e, unsignedTraits[uint32](dt)), nil
	case dtype.Uint64:
		return unsignedKernels(e, unsignedTraits[uint64](dt)), nil
	case dtype.Float32:
		m := floatKernels(e, floatTraits[float32](dt))
		m[kernel.OpMTimes] = e.gemm32
		return m, nil
	case dtype.Float64:
		m := floatKernels(e, floatTraits[float64](dt))
		m[kernel.OpMTimes] = e.gemm64
		return m, nil
	case dtype.Complex64:
		m := complexKernels[complex64, float32](e, complexTraits[complex64](dt))
		m[kernel.OpMTimes] = e.gemmC64
		return m, nil
	case dtype.Complex128:
		m := complexKernels[complex128, float64](e, complexTraits[complex128](dt))
		m[kernel.OpMTimes] = e.gemmC128
		return m, nil
	default:
		return nil, fmt.Errorf("%w: %s", device.ErrUnsupportedType, dt)
	}
}

// env is what compiled kernels close over.
type env struct {
	mem Memory
	par parallel.Config
}

// each runs f for every work item.
func (e *env) each(n int, f func(i int)) {
	parallel.For(n, f, e.par)
}

// view maps an operand onto a typed slice of its window.
func view[T any](e *env, o kernel.Operand) ([]T, error) {
	if o.Count == 0 {
		return nil, nil
	}
	var zero T
	if int(unsafe.Sizeof(zero)) != o.DType.Size() {
		return nil, fmt.Errorf("cpu: operand of %s viewed as %T", o.DType, zero)
	}
	buf, err := e.mem.Bytes(o.Buffer)
	if err != nil {
		return nil, err
	}
	if o.ByteOffset < 0 || o.End() > len(buf) {
		return nil, fmt.Errorf("%w: %s window [%d, %d) of %d bytes",
			device.ErrInvalidBufferRange, o.Buffer, o.ByteOffset, o.End(), len(buf))
	}
	//nolint:gosec // unsafe.Slice for zero-copy typed access to device memory
	return unsafe.Slice((*T)(unsafe.Pointer(&buf[o.ByteOffset])), o.Count), nil
}

// views maps the first operands of l, requiring at least need elements in each.
func views[T any](e *env, l *kernel.Launch, need int, idx ...int) ([][]T, error) {
	out := make([][]T, len(idx))
	for k, i := range idx {
		v, err := view[T](e, l.Operands[i])
		if err != nil {
			return nil, err
		}
		if len(v) < need {
			return nil, fmt.Errorf("cpu: %s operand %d holds %d elements, need %d", l.Op, i, len(v), need)
		}
		out[k] = v
	}
	return out, nil
}

func scalar[T any](l *kernel.Launch, i int) (T, error) {
	v, ok := l.Scalars[i].(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("cpu: %s scalar %d is %T, want %T", l.Op, i, l.Scalars[i], zero)
	}
	return v, nil
}
