package array

import (
	"fmt"

	"github.com/born-ml/devarray/internal/device"
	"github.com/born-ml/devarray/internal/dtype"
	"github.com/born-ml/devarray/internal/kernel"
)

// Array is a handle to a window of device storage shared copy-on-write
// with other handles.
//
// Handles are created by constructors, views and operations, and must be
// released with Release. A handle is not safe for concurrent use.
type Array struct {
	dims    Dims
	rep     *rep
	off     int  // first element of the window in rep
	n       int  // elements in the window
	logical bool // holds 0/1 truth values
}

func wrap(r *rep, dims Dims) *Array {
	return &Array{dims: dims, rep: r, n: r.n}
}

// view returns a new handle on a's rep without copying.
func (a *Array) view(dims Dims, off, n int) *Array {
	a.rep.retain()
	return &Array{dims: dims, rep: a.rep, off: a.off + off, n: n, logical: a.logical}
}

// Empty returns a 0x0 array. It never needs a device context.
func Empty(rt *Runtime, dt dtype.DataType) *Array {
	r := &rep{rt: rt, dt: dt}
	r.refs.Store(1)
	return wrap(r, Dims{0, 0})
}

// New returns an array with the given dimensions and unspecified contents.
func New(rt *Runtime, dt dtype.DataType, dims ...int) (*Array, error) {
	d := MakeDims(dims...)
	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", device.ErrInvalidArgument, err)
	}
	r, err := newRep(rt, dt, d.NumElements())
	if err != nil {
		return nil, err
	}
	return wrap(r, d), nil
}

// Full returns an array with every element set to value.
func Full(rt *Runtime, dt dtype.DataType, value any, dims ...int) (*Array, error) {
	a, err := New(rt, dt, dims...)
	if err != nil {
		return nil, err
	}
	if a.n == 0 {
		return a, nil
	}
	if err := a.fill(0, a.n, value); err != nil {
		a.Release()
		return nil, err
	}
	return a, nil
}

// Zeros returns an array of zeros.
func Zeros(rt *Runtime, dt dtype.DataType, dims ...int) (*Array, error) {
	return Full(rt, dt, 0, dims...)
}

// Ones returns an array of ones.
func Ones(rt *Runtime, dt dtype.DataType, dims ...int) (*Array, error) {
	return Full(rt, dt, 1, dims...)
}

// DType returns the element type.
func (a *Array) DType() dtype.DataType {
	return a.rep.dt
}

// Dims returns a copy of the dimensions.
func (a *Array) Dims() Dims {
	return a.dims.Clone()
}

// NumElements returns the number of elements.
func (a *Array) NumElements() int {
	return a.n
}

// NDims returns the number of dimensions, at least 2.
func (a *Array) NDims() int {
	return len(a.dims)
}

// Rows returns the first extent.
func (a *Array) Rows() int {
	return a.dims[0]
}

// Cols returns the second extent.
func (a *Array) Cols() int {
	return a.dims[1]
}

// IsEmpty reports whether the array has no elements.
func (a *Array) IsEmpty() bool {
	return a.n == 0
}

// IsLogical reports whether the array holds comparison or logic results.
func (a *Array) IsLogical() bool {
	return a.logical
}

// IsShared reports whether other handles use the same storage.
func (a *Array) IsShared() bool {
	return a.rep != nil && a.rep.shared()
}

// Valid reports whether the array can be operated on: it is not released,
// not empty and its context generation is still active.
func (a *Array) Valid() bool {
	return a.rep != nil && a.rep.valid()
}

// Stamp returns the context generation the storage was allocated in.
func (a *Array) Stamp() device.Stamp {
	return a.rep.stamp
}

// Runtime returns the runtime the array belongs to.
func (a *Array) Runtime() *Runtime {
	return a.rep.rt
}

// String describes the array without reading its contents.
func (a *Array) String() string {
	if a.rep == nil {
		return "Array(released)"
	}
	return fmt.Sprintf("Array(%s %s, %s)", a.dims, a.rep.dt, a.rep.stamp)
}

// check fails for released handles.
func (a *Array) check() error {
	if a == nil || a.rep == nil {
		return fmt.Errorf("%w: released array", device.ErrInoperable)
	}
	return nil
}

// assureValid fails unless the array can be operated on.
func (a *Array) assureValid() error {
	if err := a.check(); err != nil {
		return err
	}
	return a.rep.assureValid()
}

// assureCurrent fails for released handles and for storage allocated under
// a destroyed context. Unlike assureValid it accepts empty arrays.
func (a *Array) assureCurrent() error {
	if err := a.check(); err != nil {
		return err
	}
	if a.rep.n == 0 {
		return nil
	}
	return a.rep.assureValid()
}

func (a *Array) operand() kernel.Operand {
	return kernel.Operand{
		Buffer:     a.rep.buf,
		ByteOffset: a.off * a.rep.dt.Size(),
		Count:      a.n,
		DType:      a.rep.dt,
	}
}

// window returns the operand for elements [lo, lo+n) of the handle.
func (a *Array) window(lo, n int) kernel.Operand {
	o := a.operand()
	o.ByteOffset += lo * a.rep.dt.Size()
	o.Count = n
	return o
}

// Clone returns a shallow copy sharing storage with a.
func (a *Array) Clone() *Array {
	return a.view(a.dims.Clone(), 0, a.n)
}

// Release drops the handle's reference to its storage. The handle must not
// be used afterwards. Releasing twice is a no-op.
func (a *Array) Release() {
	if a == nil || a.rep == nil {
		return
	}
	a.rep.release()
	a.rep = nil
}

// replace makes a take over b's storage and dimensions, releasing its own.
func (a *Array) replace(b *Array) {
	a.rep.release()
	*a = *b
}

// overwrite is replace for results that stand in for a's own contents:
// the handle stays logical if it was.
func (a *Array) overwrite(b *Array) {
	logical := a.logical
	a.replace(b)
	a.logical = logical
}

// MakeUnique gives the handle private storage holding exactly its window,
// copying it if other handles share the rep. Every mutating operation
// calls it first.
func (a *Array) MakeUnique() error {
	if err := a.assureCurrent(); err != nil {
		return err
	}
	if !a.rep.shared() || a.n == 0 {
		return nil
	}
	r, err := newRepFromRep(a.rep, a.off, a.n)
	if err != nil {
		return err
	}
	a.rep.release()
	a.rep, a.off = r, 0
	return nil
}

// Economize compacts unshared storage that is larger than the window.
func (a *Array) Economize() error {
	if err := a.assureCurrent(); err != nil {
		return err
	}
	if a.rep.shared() || a.n == a.rep.n || a.n == 0 {
		return nil
	}
	r, err := newRepFromRep(a.rep, a.off, a.n)
	if err != nil {
		return err
	}
	a.rep.release()
	a.rep, a.off = r, 0
	return nil
}

// Reshape returns a view with new dimensions and the same element count.
func (a *Array) Reshape(dims ...int) (*Array, error) {
	if err := a.assureCurrent(); err != nil {
		return nil, err
	}
	d := MakeDims(dims...)
	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", device.ErrInvalidArgument, err)
	}
	if d.NumElements() != a.n {
		return nil, fmt.Errorf("%w: reshape %s to %s", device.ErrShapeMismatch, a.dims, d)
	}
	return a.view(d, 0, a.n), nil
}

// Column returns a view of column k of the leading two dimensions.
func (a *Array) Column(k int) (*Array, error) {
	if err := a.assureValid(); err != nil {
		return nil, err
	}
	r := a.dims[0]
	if k < 0 || k >= a.dims.numelFrom(1) {
		return nil, fmt.Errorf("%w: column %d of %s", device.ErrIndexOutOfRange, k, a.dims)
	}
	return a.view(Dims{r, 1}, k*r, r), nil
}

// Page returns a view of page k, an r x c matrix.
func (a *Array) Page(k int) (*Array, error) {
	if err := a.assureValid(); err != nil {
		return nil, err
	}
	r, c := a.dims[0], a.dims[1]
	if k < 0 || k >= a.dims.numelFrom(2) {
		return nil, fmt.Errorf("%w: page %d of %s", device.ErrIndexOutOfRange, k, a.dims)
	}
	p := r * c
	return a.view(Dims{r, c}, k*p, p), nil
}

// LinearSlice returns a column view of elements [lo, up). An upper bound
// below lo yields an empty view.
func (a *Array) LinearSlice(lo, up int) (*Array, error) {
	if err := a.assureValid(); err != nil {
		return nil, err
	}
	if lo < 0 || up > a.n {
		return nil, fmt.Errorf("%w: slice [%d, %d) of %d elements", device.ErrIndexOutOfRange, lo, up, a.n)
	}
	up = max(up, lo)
	return a.view(Dims{up - lo, 1}, lo, up-lo), nil
}

// AsColumn returns an n x 1 view.
func (a *Array) AsColumn() (*Array, error) {
	return a.Reshape(a.n, 1)
}

// AsRow returns a 1 x n view.
func (a *Array) AsRow() (*Array, error) {
	return a.Reshape(1, a.n)
}

// AsMatrix returns a view folding every dimension beyond the first into
// the second.
func (a *Array) AsMatrix() (*Array, error) {
	if err := a.assureCurrent(); err != nil {
		return nil, err
	}
	return a.view(a.dims.redim(2), 0, a.n), nil
}

// Squeeze returns a view without singleton dimensions. Two-dimensional
// arrays are returned as they are.
func (a *Array) Squeeze() (*Array, error) {
	if err := a.assureCurrent(); err != nil {
		return nil, err
	}
	if len(a.dims) <= 2 {
		return a.Clone(), nil
	}
	d := a.dims.chopAll()
	switch len(d) {
	case 0:
		d = Dims{1, 1}
	case 1:
		d = Dims{d[0], 1}
	}
	return a.view(d, 0, a.n), nil
}

// Fill sets every element to v.
func (a *Array) Fill(v any) error {
	if err := a.assureValid(); err != nil {
		return err
	}
	if a.rep.shared() {
		fresh, err := Full(a.rep.rt, a.rep.dt, v, a.dims...)
		if err != nil {
			return err
		}
		a.overwrite(fresh)
		return nil
	}
	return a.fill(0, a.n, v)
}

// fill writes v into elements [lo, lo+n) of the handle's own storage.
func (a *Array) fill(lo, n int, v any) error {
	c, err := scalarOf(a.rep.dt, v)
	if err != nil {
		return err
	}
	return a.rep.rt.launch(a.rep.dt, kernel.OpFill, n, []kernel.Operand{a.window(lo, n)}, []any{c})
}
