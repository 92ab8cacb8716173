package array

import (
	"fmt"
	"sync/atomic"

	"github.com/born-ml/devarray/internal/device"
	"github.com/born-ml/devarray/internal/dtype"
	"github.com/born-ml/devarray/internal/logutil"
)

// rep is the shared body of arrays: one device buffer of n elements and a
// reference count. A rep with n == 0 holds no buffer and never needed a
// device context.
type rep struct {
	rt    *Runtime
	dt    dtype.DataType
	buf   device.BufferID
	n     int
	stamp device.Stamp
	refs  atomic.Int32
}

// newRep allocates storage for n elements with refs = 1. The device
// context is created on demand.
func newRep(rt *Runtime, dt dtype.DataType, n int) (*rep, error) {
	if !dt.Valid() {
		return nil, fmt.Errorf("%w: %s", device.ErrUnsupportedType, dt)
	}
	if n < 0 {
		return nil, fmt.Errorf("%w: negative length %d", device.ErrInvalidArgument, n)
	}

	r := &rep{rt: rt, dt: dt, n: n}
	r.refs.Store(1)
	if n == 0 {
		return r, nil
	}

	ctx := rt.ctx
	if _, err := ctx.EnsureActive(); err != nil {
		return nil, err
	}
	if dt.IsDouble() && !ctx.FP64() {
		return nil, fmt.Errorf("%w: %s arrays need a double precision device", device.ErrUnsupportedType, dt)
	}
	stamp, err := ctx.Stamp(true)
	if err != nil {
		return nil, err
	}
	buf, err := ctx.Pool().Obtain(n * dt.Size())
	if err != nil {
		return nil, err
	}
	r.buf, r.stamp = buf, stamp
	return r, nil
}

// newRepFromRep allocates n elements and copies them from src at off.
func newRepFromRep(src *rep, off, n int) (*rep, error) {
	if err := src.assureValid(); err != nil {
		return nil, err
	}
	if err := src.checkRange(off, n); err != nil {
		return nil, err
	}
	r, err := newRep(src.rt, src.dt, n)
	if err != nil {
		return nil, err
	}
	if err := r.copyFromDevice(src, off, 0, n); err != nil {
		r.release()
		return nil, err
	}
	return r, nil
}

// newRepFromHost allocates len(data)/size elements and uploads data.
func newRepFromHost(rt *Runtime, dt dtype.DataType, data []byte) (*rep, error) {
	n := len(data) / dt.Size()
	r, err := newRep(rt, dt, n)
	if err != nil {
		return nil, err
	}
	if err := r.copyFromHost(data, 0); err != nil {
		r.release()
		return nil, err
	}
	return r, nil
}

// valid reports whether the buffer belongs to the active context.
func (r *rep) valid() bool {
	return r.n > 0 && r.rt.ctx.StillValid(r.stamp)
}

// assureValid fails with device.ErrInoperable unless valid.
func (r *rep) assureValid() error {
	if r.n == 0 {
		return fmt.Errorf("%w: empty array", device.ErrInoperable)
	}
	if !r.rt.ctx.StillValid(r.stamp) {
		return fmt.Errorf("%w: array from %s, active epoch %s",
			device.ErrInoperable, r.stamp, r.rt.ctx.ActiveEpoch())
	}
	return nil
}

func (r *rep) checkRange(off, n int) error {
	if off < 0 || n < 0 || off+n > r.n {
		return fmt.Errorf("%w: elements [%d, %d) of %d", device.ErrIndexOutOfRange, off, off+n, r.n)
	}
	return nil
}

// copyToHost reads len(dst) bytes starting at element off.
func (r *rep) copyToHost(dst []byte, off int) error {
	if err := r.assureValid(); err != nil {
		return err
	}
	if err := r.checkRange(off, len(dst)/r.dt.Size()); err != nil {
		return err
	}
	return device.Wrap("read", r.rt.ctx.Driver().Read(r.buf, off*r.dt.Size(), dst))
}

// copyFromHost writes src starting at element off.
func (r *rep) copyFromHost(src []byte, off int) error {
	if err := r.assureValid(); err != nil {
		return err
	}
	if err := r.checkRange(off, len(src)/r.dt.Size()); err != nil {
		return err
	}
	return device.Wrap("write", r.rt.ctx.Driver().Write(r.buf, off*r.dt.Size(), src))
}

// copyFromDevice copies n elements of src at srcOff to dstOff.
func (r *rep) copyFromDevice(src *rep, srcOff, dstOff, n int) error {
	if n == 0 {
		return nil
	}
	if src.rt != r.rt {
		return device.ErrMixedContexts
	}
	if src.dt != r.dt {
		return fmt.Errorf("%w: copy %s into %s", device.ErrUnsupportedConversion, src.dt, r.dt)
	}
	if err := r.assureValid(); err != nil {
		return err
	}
	if err := src.assureValid(); err != nil {
		return err
	}
	if err := src.checkRange(srcOff, n); err != nil {
		return err
	}
	if err := r.checkRange(dstOff, n); err != nil {
		return err
	}
	size := r.dt.Size()
	return device.Wrap("copy", r.rt.ctx.Driver().Copy(r.buf, dstOff*size, src.buf, srcOff*size, n*size))
}

func (r *rep) retain() {
	r.refs.Add(1)
}

// release drops one reference. The last one hands the buffer back to the
// pool, unless its context is gone and the device already reclaimed it.
func (r *rep) release() {
	if r.refs.Add(-1) != 0 {
		return
	}
	if r.n == 0 {
		return
	}
	if !r.rt.ctx.StillValid(r.stamp) {
		logutil.Trace(r.rt.logger, "stale array dropped", "buffer", r.buf, "stamp", r.stamp)
		return
	}
	r.rt.ctx.Pool().Release(r.buf)
}

func (r *rep) shared() bool {
	return r.refs.Load() > 1
}
