package array

import (
	"fmt"
	"io"
	"unsafe"

	"github.com/born-ml/devarray/internal/device"
	"github.com/born-ml/devarray/internal/dtype"
)

// FromSlice copies data to the device. Without dims the result is a
// column; otherwise the dimensions must hold len(data) elements.
func FromSlice[T dtype.Element](rt *Runtime, data []T, dims ...int) (*Array, error) {
	d := MakeDims(len(data), 1)
	if len(dims) > 0 {
		d = MakeDims(dims...)
		if err := d.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %w", device.ErrInvalidArgument, err)
		}
		if d.NumElements() != len(data) {
			return nil, fmt.Errorf("%w: dimensions %s require %d elements, but got %d",
				device.ErrShapeMismatch, d, d.NumElements(), len(data))
		}
	}

	dt := dtype.Of[T]()
	if len(data) == 0 {
		a := Empty(rt, dt)
		a.dims = d
		return a, nil
	}
	//nolint:gosec // unsafe.Slice for zero-copy byte view of the host data
	raw := unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(data))), len(data)*dt.Size())
	r, err := newRepFromHost(rt, dt, raw)
	if err != nil {
		return nil, err
	}
	return wrap(r, d), nil
}

// ToSlice copies the array to the host. T must match the element type.
func ToSlice[T dtype.Element](a *Array) ([]T, error) {
	if err := a.check(); err != nil {
		return nil, err
	}
	if dt := dtype.Of[T](); dt != a.rep.dt {
		return nil, fmt.Errorf("%w: read %s array as %s", device.ErrUnsupportedConversion, a.rep.dt, dt)
	}
	out := make([]T, a.n)
	if a.n == 0 {
		return out, nil
	}
	//nolint:gosec // unsafe.Slice for zero-copy byte view of the host buffer
	raw := unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(out))), a.n*a.rep.dt.Size())
	if err := a.rep.copyToHost(raw, a.off); err != nil {
		return nil, err
	}
	return out, nil
}

// Bytes copies the elements to the host in their native byte layout.
func (a *Array) Bytes() ([]byte, error) {
	if err := a.check(); err != nil {
		return nil, err
	}
	out := make([]byte, a.n*a.rep.dt.Size())
	if a.n == 0 {
		return out, nil
	}
	if err := a.rep.copyToHost(out, a.off); err != nil {
		return nil, err
	}
	return out, nil
}

// Save is the persistence hook for device arrays. Device-resident data is
// not persisted: nothing is written and a warning is logged.
func (a *Array) Save(_ io.Writer) error {
	if err := a.check(); err != nil {
		return err
	}
	a.rep.rt.logger.Warn("device arrays are not saved; writing nothing", "array", a.String())
	return nil
}

// Load is the counterpart of Save. It consumes nothing and returns an
// empty array of type dt, logging a warning.
func Load(rt *Runtime, _ io.Reader, dt dtype.DataType) (*Array, error) {
	rt.logger.Warn("device arrays are not loaded; returning an empty array", "dtype", dt)
	return Empty(rt, dt), nil
}
