package array

import (
	"fmt"

	"github.com/born-ml/devarray/internal/device"
	"github.com/born-ml/devarray/internal/dtype"
	"github.com/born-ml/devarray/internal/kernel"
)

// lines describes the 1-D lines along one dimension of an array.
type lines struct {
	length  int  // elements per line
	stride  int  // distance between consecutive line elements
	count   int  // number of lines
	reduced Dims // dimensions with the reduced extent set to 1
}

// linesAlong resolves dim; a negative dim picks the first non-singleton
// dimension.
func (a *Array) linesAlong(dim int) lines {
	if dim < 0 {
		dim = a.dims.firstNonSingleton()
	}
	dv := a.dims.Clone()
	if dim >= len(dv) {
		dv = dv.redim(dim + 1)
	}
	stride := 1
	for i := 0; i < dim; i++ {
		stride *= dv[i]
	}
	length := dv[dim]
	dv[dim] = 1
	return lines{length: length, stride: stride, count: dv.NumElements(), reduced: dv.chop()}
}

// reduce runs a line reduction writing one out element per line.
func (a *Array) reduce(op kernel.Op, dim int, out dtype.DataType, extra ...int) (*Array, error) {
	if err := a.assureValid(); err != nil {
		return nil, err
	}
	ln := a.linesAlong(dim)
	rt, dt := a.rep.rt, a.rep.dt
	res, err := New(rt, out, ln.reduced...)
	if err != nil {
		return nil, err
	}
	params := append([]int{ln.length, ln.stride}, extra...)
	if err := rt.launch(dt, op, ln.count, []kernel.Operand{res.operand(), a.operand()}, nil, params...); err != nil {
		res.Release()
		return nil, err
	}
	return res, nil
}

// scan runs a cumulative operation writing an array shaped like a.
func (a *Array) scan(op kernel.Op, dim int) (*Array, error) {
	if err := a.assureValid(); err != nil {
		return nil, err
	}
	ln := a.linesAlong(dim)
	rt, dt := a.rep.rt, a.rep.dt
	res, err := New(rt, dt, a.dims...)
	if err != nil {
		return nil, err
	}
	if err := rt.launch(dt, op, ln.count, []kernel.Operand{res.operand(), a.operand()}, nil,
		ln.length, ln.stride); err != nil {
		res.Release()
		return nil, err
	}
	return res, nil
}

// Sum adds the elements along dim.
func (a *Array) Sum(dim int) (*Array, error) {
	return a.reduce(kernel.OpSum, dim, a.rep.dt)
}

// SumSq adds the squared magnitudes along dim.
func (a *Array) SumSq(dim int) (*Array, error) {
	return a.reduce(kernel.OpSumSq, dim, a.rep.dt)
}

// Prod multiplies the elements along dim.
func (a *Array) Prod(dim int) (*Array, error) {
	return a.reduce(kernel.OpProd, dim, a.rep.dt)
}

// Mean averages the elements along dim.
func (a *Array) Mean(dim int) (*Array, error) {
	return a.reduce(kernel.OpMean, dim, a.rep.dt)
}

// MeanSq averages the squared magnitudes along dim.
func (a *Array) MeanSq(dim int) (*Array, error) {
	return a.reduce(kernel.OpMeanSq, dim, a.rep.dt)
}

// All reports per line whether every element is non-zero.
func (a *Array) All(dim int) (*Array, error) {
	res, err := a.reduce(kernel.OpAll, dim, a.rep.dt)
	if err == nil {
		res.logical = true
	}
	return res, err
}

// Any reports per line whether some element is non-zero.
func (a *Array) Any(dim int) (*Array, error) {
	res, err := a.reduce(kernel.OpAny, dim, a.rep.dt)
	if err == nil {
		res.logical = true
	}
	return res, err
}

// FindFirst returns per line the position of the first non-zero element,
// or -1, as Int64.
func (a *Array) FindFirst(dim int) (*Array, error) {
	return a.reduce(kernel.OpFindFirst, dim, dtype.Index)
}

// FindLast returns per line the position of the last non-zero element,
// or -1, as Int64.
func (a *Array) FindLast(dim int) (*Array, error) {
	return a.reduce(kernel.OpFindLast, dim, dtype.Index)
}

// Std returns the standard deviation along dim. opt 0 divides by len-1,
// opt 1 by len. Complex input yields the real component type.
func (a *Array) Std(opt, dim int) (*Array, error) {
	if err := a.check(); err != nil {
		return nil, err
	}
	if opt != 0 && opt != 1 {
		return nil, fmt.Errorf("%w: std option %d", device.ErrInvalidArgument, opt)
	}
	if a.rep.dt.IsInteger() {
		return nil, fmt.Errorf("%w: std of %s", device.ErrUnsupportedType, a.rep.dt)
	}
	return a.reduce(kernel.OpStd, dim, a.rep.dt.Real(), opt)
}

// CumSum returns the running sums along dim.
func (a *Array) CumSum(dim int) (*Array, error) {
	return a.scan(kernel.OpCumSum, dim)
}

// CumProd returns the running products along dim.
func (a *Array) CumProd(dim int) (*Array, error) {
	return a.scan(kernel.OpCumProd, dim)
}

// extremum runs max, min, cummax or cummin. The index array is only
// computed when withIndex is set.
func (a *Array) extremum(op kernel.Op, dim int, cumulative, withIndex bool) (*Array, *Array, error) {
	if err := a.assureValid(); err != nil {
		return nil, nil, err
	}
	ln := a.linesAlong(dim)
	shape := ln.reduced
	if cumulative {
		shape = a.dims
	}
	rt, dt := a.rep.rt, a.rep.dt
	vals, err := New(rt, dt, shape...)
	if err != nil {
		return nil, nil, err
	}
	var idx *Array
	var idxOperand kernel.Operand
	if withIndex {
		if idx, err = New(rt, dtype.Index, shape...); err != nil {
			vals.Release()
			return nil, nil, err
		}
		idxOperand = idx.operand()
	}
	if err := rt.launch(dt, op, ln.count,
		[]kernel.Operand{vals.operand(), idxOperand, a.operand()}, nil,
		ln.length, ln.stride); err != nil {
		vals.Release()
		idx.Release()
		return nil, nil, err
	}
	return vals, idx, nil
}

// Max returns the largest element along dim. Complex values compare by
// magnitude, then by angle.
func (a *Array) Max(dim int) (*Array, error) {
	v, _, err := a.extremum(kernel.OpMax, dim, false, false)
	return v, err
}

// Min returns the smallest element along dim.
func (a *Array) Min(dim int) (*Array, error) {
	v, _, err := a.extremum(kernel.OpMin, dim, false, false)
	return v, err
}

// MaxWithIndex also returns the Int64 position of the first maximum.
func (a *Array) MaxWithIndex(dim int) (*Array, *Array, error) {
	return a.extremum(kernel.OpMax, dim, false, true)
}

// MinWithIndex also returns the Int64 position of the first minimum.
func (a *Array) MinWithIndex(dim int) (*Array, *Array, error) {
	return a.extremum(kernel.OpMin, dim, false, true)
}

// CumMax returns the running maxima along dim.
func (a *Array) CumMax(dim int) (*Array, error) {
	v, _, err := a.extremum(kernel.OpCumMax, dim, true, false)
	return v, err
}

// CumMin returns the running minima along dim.
func (a *Array) CumMin(dim int) (*Array, error) {
	v, _, err := a.extremum(kernel.OpCumMin, dim, true, false)
	return v, err
}

// CumMaxWithIndex also returns the positions of the running maxima.
func (a *Array) CumMaxWithIndex(dim int) (*Array, *Array, error) {
	return a.extremum(kernel.OpCumMax, dim, true, true)
}

// CumMinWithIndex also returns the positions of the running minima.
func (a *Array) CumMinWithIndex(dim int) (*Array, *Array, error) {
	return a.extremum(kernel.OpCumMin, dim, true, true)
}
