package cpu

import (
	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas32"
	"gonum.org/v1/gonum/blas/blas64"
	"gonum.org/v1/gonum/blas/cblas128"
	"gonum.org/v1/gonum/blas/cblas64"

	"github.com/born-ml/devarray/internal/dtype"
	"github.com/born-ml/devarray/internal/kernel"
)

// Matrix products take operands (dst, a, b) in column-major order and
// params (rows of a, inner dimension). The column count follows from Work.

type gemmShape struct {
	m, k, n int
}

func mtimesShape(l *kernel.Launch) gemmShape {
	m, k := l.Params[0], l.Params[1]
	n := 0
	if m > 0 {
		n = l.Work / m
	}
	return gemmShape{m: m, k: k, n: n}
}

func gemmViews[T any](e *env, l *kernel.Launch) (c, a, b []T, s gemmShape, err error) {
	s = mtimesShape(l)
	dst, err := views[T](e, l, s.m*s.n, 0)
	if err != nil {
		return nil, nil, nil, s, err
	}
	lhs, err := views[T](e, l, s.m*s.k, 1)
	if err != nil {
		return nil, nil, nil, s, err
	}
	rhs, err := views[T](e, l, s.k*s.n, 2)
	if err != nil {
		return nil, nil, nil, s, err
	}
	return dst[0], lhs[0], rhs[0], s, nil
}

// mtimesKernel is the reference product for types without a BLAS routine:
// dst[i] = sum_k a[i%m + k*m] * b[k + (i/m)*len].
func mtimesKernel[T dtype.Element](e *env) kernel.Func {
	return func(l *kernel.Launch) error {
		c, a, b, s, err := gemmViews[T](e, l)
		if err != nil {
			return err
		}
		e.each(s.m*s.n, func(i int) {
			row, col := i%s.m, i/s.m
			var acc T
			for k := 0; k < s.k; k++ {
				acc += a[row+k*s.m] * b[k+col*s.k]
			}
			c[i] = acc
		})
		return nil
	}
}

// The BLAS kernels read the column-major buffers as their row-major
// transposes and compute C^T = B^T * A^T, which needs no copies.

func (e *env) gemm32(l *kernel.Launch) error {
	c, a, b, s, err := gemmViews[float32](e, l)
	if err != nil || s.m*s.n == 0 {
		return err
	}
	if s.k == 0 {
		clear(c[:s.m*s.n])
		return nil
	}
	blas32.Gemm(blas.NoTrans, blas.NoTrans, 1,
		blas32.General{Rows: s.n, Cols: s.k, Stride: s.k, Data: b},
		blas32.General{Rows: s.k, Cols: s.m, Stride: s.m, Data: a},
		0, blas32.General{Rows: s.n, Cols: s.m, Stride: s.m, Data: c})
	return nil
}

func (e *env) gemm64(l *kernel.Launch) error {
	c, a, b, s, err := gemmViews[float64](e, l)
	if err != nil || s.m*s.n == 0 {
		return err
	}
	if s.k == 0 {
		clear(c[:s.m*s.n])
		return nil
	}
	blas64.Gemm(blas.NoTrans, blas.NoTrans, 1,
		blas64.General{Rows: s.n, Cols: s.k, Stride: s.k, Data: b},
		blas64.General{Rows: s.k, Cols: s.m, Stride: s.m, Data: a},
		0, blas64.General{Rows: s.n, Cols: s.m, Stride: s.m, Data: c})
	return nil
}

func (e *env) gemmC64(l *kernel.Launch) error {
	c, a, b, s, err := gemmViews[complex64](e, l)
	if err != nil || s.m*s.n == 0 {
		return err
	}
	if s.k == 0 {
		clear(c[:s.m*s.n])
		return nil
	}
	cblas64.Gemm(blas.NoTrans, blas.NoTrans, 1,
		cblas64.General{Rows: s.n, Cols: s.k, Stride: s.k, Data: b},
		cblas64.General{Rows: s.k, Cols: s.m, Stride: s.m, Data: a},
		0, cblas64.General{Rows: s.n, Cols: s.m, Stride: s.m, Data: c})
	return nil
}

func (e *env) gemmC128(l *kernel.Launch) error {
	c, a, b, s, err := gemmViews[complex128](e, l)
	if err != nil || s.m*s.n == 0 {
		return err
	}
	if s.k == 0 {
		clear(c[:s.m*s.n])
		return nil
	}
	cblas128.Gemm(blas.NoTrans, blas.NoTrans, 1,
		cblas128.General{Rows: s.n, Cols: s.k, Stride: s.k, Data: b},
		cblas128.General{Rows: s.k, Cols: s.m, Stride: s.m, Data: a},
		0, cblas128.General{Rows: s.n, Cols: s.m, Stride: s.m, Data: c})
	return nil
}
