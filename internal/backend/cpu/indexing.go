package cpu

import (
	"math"

	"github.com/born-ml/devarray/internal/dtype"
	"github.com/born-ml/devarray/internal/kernel"
)

// asIndexKernel converts values to int64 positions, rounding fractions.
func asIndexKernel[T dtype.Real](e *env) kernel.Func {
	return func(l *kernel.Launch) error {
		dst, err := views[int64](e, l, l.Work, 0)
		if err != nil {
			return err
		}
		src, err := views[T](e, l, l.Work, 1)
		if err != nil {
			return err
		}
		out, in := dst[0], src[0]
		e.each(l.Work, func(i int) {
			x := in[i]
			if f := float64(x); f != math.Trunc(f) {
				out[i] = int64(math.Round(f))
				return
			}
			out[i] = int64(x)
		})
		return nil
	}
}

// indexKernel gathers dst[i] = src[ia[i]]. Positions outside src read as zero.
func indexKernel[T dtype.Element](e *env, tr traits[T]) kernel.Func {
	return func(l *kernel.Launch) error {
		dst, err := views[T](e, l, l.Work, 0)
		if err != nil {
			return err
		}
		src, err := views[T](e, l, 0, 1)
		if err != nil {
			return err
		}
		ia, err := views[int64](e, l, l.Work, 2)
		if err != nil {
			return err
		}
		out, in, pos := dst[0], src[0], ia[0]
		n := int64(len(in))
		e.each(l.Work, func(i int) {
			if k := pos[i]; k >= 0 && k < n {
				out[i] = in[k]
			} else {
				out[i] = tr.zero
			}
		})
		return nil
	}
}

// assignElKernel scatters dst[ia[i]] = c, skipping positions outside dst.
func assignElKernel[T dtype.Element](e *env) kernel.Func {
	return func(l *kernel.Launch) error {
		dst, err := views[T](e, l, 0, 0)
		if err != nil {
			return err
		}
		ia, err := views[int64](e, l, l.Work, 1)
		if err != nil {
			return err
		}
		c, err := scalar[T](l, 0)
		if err != nil {
			return err
		}
		out, pos := dst[0], ia[0]
		n := int64(len(out))
		for i := range l.Work {
			if k := pos[i]; k >= 0 && k < n {
				out[k] = c
			}
		}
		return nil
	}
}

// assignKernel scatters dst[ia[i]] = src[i], or src[0] when broadcast.
// Later positions win when ia repeats.
func assignKernel[T dtype.Element](e *env, broadcast bool) kernel.Func {
	return func(l *kernel.Launch) error {
		dst, err := views[T](e, l, 0, 0)
		if err != nil {
			return err
		}
		need := l.Work
		if broadcast {
			need = 1
		}
		src, err := views[T](e, l, need, 1)
		if err != nil {
			return err
		}
		ia, err := views[int64](e, l, l.Work, 2)
		if err != nil {
			return err
		}
		out, in, pos := dst[0], src[0], ia[0]
		n := int64(len(out))
		for i := range l.Work {
			k := pos[i]
			if k < 0 || k >= n {
				continue
			}
			if broadcast {
				out[k] = in[0]
			} else {
				out[k] = in[i]
			}
		}
		return nil
	}
}

// assignMaskKernel sets dst[i] = c wherever mask[i] is non-zero.
func assignMaskKernel[T dtype.Element](e *env, tr traits[T]) kernel.Func {
	return func(l *kernel.Launch) error {
		v, err := views[T](e, l, l.Work, 0, 1)
		if err != nil {
			return err
		}
		c, err := scalar[T](l, 0)
		if err != nil {
			return err
		}
		dst, mask := v[0], v[1]
		e.each(l.Work, func(i int) {
			if tr.nonzero(mask[i]) {
				dst[i] = c
			}
		})
		return nil
	}
}
