package array

import (
	"fmt"

	"github.com/born-ml/devarray/internal/device"
	"github.com/born-ml/devarray/internal/dtype"
	"github.com/born-ml/devarray/internal/kernel"
)

// Cat concatenates arrays along dimension dim. All other extents must
// agree; empty inputs are skipped. With a single non-empty input its
// shallow copy is returned.
func Cat(dim int, arrays ...*Array) (*Array, error) {
	if dim < 0 {
		return nil, fmt.Errorf("%w: cat along dimension %d", device.ErrInvalidArgument, dim)
	}
	if len(arrays) == 0 {
		return nil, fmt.Errorf("%w: cat of no arrays", device.ErrInvalidArgument)
	}
	first := arrays[0]
	for _, a := range arrays {
		if err := a.check(); err != nil {
			return nil, err
		}
		if err := first.compatible(a); err != nil {
			return nil, err
		}
		if a.n > 0 {
			if err := a.rep.assureValid(); err != nil {
				return nil, err
			}
		}
	}
	if len(arrays) == 1 {
		return first.Clone(), nil
	}

	var survivors []*Array
	for _, a := range arrays {
		if a.n > 0 {
			survivors = append(survivors, a)
		}
	}
	if len(survivors) == 1 {
		return survivors[0].Clone(), nil
	}
	// Only when every input is empty do their extents shape the result.
	inputs := arrays
	if len(survivors) > 0 {
		inputs = survivors
	}
	base := inputs[0]

	dv := base.dims.Clone()
	if dim >= len(dv) {
		dv = dv.redim(dim + 1)
	}
	ndim := len(dv)
	dvc := dv.Clone()
	dvc[dim] = 1

	for _, a := range inputs[1:] {
		dvi := a.dims.Clone()
		if ndim >= len(dvi) {
			dvi = dvi.redim(ndim)
		}
		dv[dim] += dvi.at(dim)
		if dim < len(dvi) {
			dvi[dim] = 1
		}
		if dvc.NumElements() == 0 {
			dvc = dvi
		}
		if !dvc.Equal(dvi) {
			return nil, fmt.Errorf("%w: cat %s with %s along dimension %d",
				device.ErrShapeMismatch, base.dims, a.dims, dim)
		}
	}

	rt, dt := base.rep.rt, base.rep.dt
	result, err := New(rt, dt, dv...)
	if err != nil {
		return nil, err
	}
	if result.n == 0 {
		return result, nil
	}

	spdim := 1
	for i := 0; i < dim; i++ {
		spdim *= dv[i]
	}
	offset := 0
	for _, a := range survivors {
		dvi := a.dims
		if ndim >= len(dvi) {
			dvi = dvi.redim(ndim)
		}
		fac1 := spdim * dvi[dim]
		fac2 := spdim * dv[dim]
		if err := rt.launch(dt, kernel.OpCat, a.n,
			[]kernel.Operand{result.operand(), a.operand()}, nil,
			fac1, fac2, offset*spdim); err != nil {
			result.Release()
			return nil, err
		}
		offset += dvi[dim]
	}
	return result, nil
}

// Eye returns the r x c identity matrix. A negative c means c = r.
func Eye(rt *Runtime, dt dtype.DataType, r, c int) (*Array, error) {
	if r < 0 {
		return nil, fmt.Errorf("%w: eye of %d rows", device.ErrInvalidArgument, r)
	}
	if c < 0 {
		c = r
	}
	out, err := New(rt, dt, r, c)
	if err != nil {
		return nil, err
	}
	if err := rt.launch(dt, kernel.OpEye, out.n, []kernel.Operand{out.operand()}, nil, r); err != nil {
		out.Release()
		return nil, err
	}
	return out, nil
}

// Linspace returns a row of n values evenly spaced from base to limit.
// For n < 2 the result is the 1 x 1 array holding limit.
func Linspace(rt *Runtime, dt dtype.DataType, base, limit any, n int) (*Array, error) {
	return spaced(rt, dt, kernel.OpLinspace, base, limit, n)
}

// Logspace returns a row of n values from 10^a to 10^b, evenly spaced on
// a log scale. Only real floating point types are supported.
func Logspace(rt *Runtime, dt dtype.DataType, a, b any, n int) (*Array, error) {
	if !dt.IsFloat() {
		return nil, fmt.Errorf("%w: logspace of %s", device.ErrUnsupportedType, dt)
	}
	return spaced(rt, dt, kernel.OpLogspace, a, b, n)
}

func spaced(rt *Runtime, dt dtype.DataType, op kernel.Op, base, limit any, n int) (*Array, error) {
	if n < 2 {
		return Full(rt, dt, limit, 1, 1)
	}
	lo, err := scalarOf(dt, base)
	if err != nil {
		return nil, err
	}
	hi, err := scalarOf(dt, limit)
	if err != nil {
		return nil, err
	}
	out, err := New(rt, dt, 1, n)
	if err != nil {
		return nil, err
	}
	if err := rt.launch(dt, op, n, []kernel.Operand{out.operand()}, []any{lo, hi}, n); err != nil {
		out.Release()
		return nil, err
	}
	return out, nil
}

// Ndgrid returns one array per input vector, each with dimensions
// (len(v0), len(v1), ...), where result i repeats vector i along
// dimension i. A single input is used for both of two dimensions.
func Ndgrid(vectors ...*Array) ([]*Array, error) {
	if len(vectors) == 0 {
		return nil, nil
	}
	args := vectors
	if len(args) == 1 {
		args = []*Array{args[0], args[0]}
	}

	first := args[0]
	dv := make([]int, len(args))
	for i, v := range args {
		if err := v.assureValid(); err != nil {
			return nil, err
		}
		if err := first.compatible(v); err != nil {
			return nil, err
		}
		if !v.dims.IsVector() {
			return nil, fmt.Errorf("%w: grid input %d is %s, not a vector", device.ErrShapeMismatch, i, v.dims)
		}
		dv[i] = v.n
	}

	rt, dt := first.rep.rt, first.rep.dt
	out := make([]*Array, 0, len(args))
	release := func() {
		for _, a := range out {
			a.Release()
		}
	}
	div1 := 1
	for _, v := range args {
		g, err := New(rt, dt, dv...)
		if err != nil {
			release()
			return nil, err
		}
		out = append(out, g)
		div2 := v.n
		if err := rt.launch(dt, kernel.OpNdgrid1, g.n,
			[]kernel.Operand{g.operand(), v.operand()}, nil, div1, div2); err != nil {
			release()
			return nil, err
		}
		div1 *= div2
	}
	return out, nil
}

// Meshgrid is Ndgrid with the roles of the first two inputs and outputs
// swapped, so results have len(v1) rows and len(v0) columns.
func Meshgrid(vectors ...*Array) ([]*Array, error) {
	args := append([]*Array(nil), vectors...)
	if len(args) >= 2 {
		args[0], args[1] = args[1], args[0]
	}
	out, err := Ndgrid(args...)
	if err != nil || len(out) < 2 {
		return out, err
	}
	out[0], out[1] = out[1], out[0]
	return out, nil
}

// Repmat tiles the array reps[i] times along dimension i. A non-positive
// factor yields an empty array.
func (a *Array) Repmat(reps ...int) (*Array, error) {
	if err := a.assureValid(); err != nil {
		return nil, err
	}
	for _, r := range reps {
		if r <= 0 {
			return Empty(a.rep.rt, a.rep.dt), nil
		}
	}
	result := a.Clone()
	for dim, r := range reps {
		if r == 1 {
			continue
		}
		next, err := result.repmat1(dim, r)
		result.Release()
		if err != nil {
			return nil, err
		}
		result = next
	}
	return result, nil
}

// repmat1 tiles the array n times along one dimension.
func (a *Array) repmat1(dim, n int) (*Array, error) {
	dv := a.dims.Clone()
	if dim >= len(dv) {
		dv = dv.redim(dim + 1)
	}
	fac1 := 1
	for i := 0; i < dim; i++ {
		fac1 *= dv[i]
	}
	fac2 := dv[dim]
	dv[dim] *= n
	fac3 := dv[dim]

	rt, dt := a.rep.rt, a.rep.dt
	out, err := New(rt, dt, dv...)
	if err != nil {
		return nil, err
	}
	if err := rt.launch(dt, kernel.OpRepmat1, out.n,
		[]kernel.Operand{out.operand(), a.operand()}, nil, fac1, fac2, fac3); err != nil {
		out.Release()
		return nil, err
	}
	return out, nil
}

// Transpose returns the transpose of a 2-D array. Vectors are transposed
// by reshaping.
func (a *Array) Transpose() (*Array, error) {
	return a.transpose(kernel.OpTranspose)
}

// Hermitian returns the conjugate transpose. For real types it equals
// Transpose.
func (a *Array) Hermitian() (*Array, error) {
	if err := a.check(); err != nil {
		return nil, err
	}
	if a.rep.dt.IsComplex() {
		return a.transpose(kernel.OpHermitian)
	}
	return a.transpose(kernel.OpTranspose)
}

func (a *Array) transpose(op kernel.Op) (*Array, error) {
	if err := a.assureValid(); err != nil {
		return nil, err
	}
	if len(a.dims) != 2 {
		return nil, fmt.Errorf("%w: transpose of %s", device.ErrShapeMismatch, a.dims)
	}
	r, c := a.dims[0], a.dims[1]
	if op == kernel.OpTranspose && (r == 1 || c == 1) {
		return a.view(Dims{c, r}, 0, a.n), nil
	}

	rt, dt := a.rep.rt, a.rep.dt
	out, err := New(rt, dt, c, r)
	if err != nil {
		return nil, err
	}
	if err := rt.launch(dt, op, a.n, []kernel.Operand{out.operand(), a.operand()}, nil, r, c); err != nil {
		out.Release()
		return nil, err
	}
	return out, nil
}
