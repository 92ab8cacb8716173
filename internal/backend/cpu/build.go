package cpu

import (
	"math"

	"github.com/born-ml/devarray/internal/dtype"
	"github.com/born-ml/devarray/internal/kernel"
)

// fillKernel: dst[i] = c.
func fillKernel[T dtype.Element](e *env) kernel.Func {
	return func(l *kernel.Launch) error {
		v, err := views[T](e, l, l.Work, 0)
		if err != nil {
			return err
		}
		c, err := scalar[T](l, 0)
		if err != nil {
			return err
		}
		dst := v[0]
		e.each(l.Work, func(i int) { dst[i] = c })
		return nil
	}
}

// fill0Kernel: dst[i] = src[0].
func fill0Kernel[T dtype.Element](e *env) kernel.Func {
	return func(l *kernel.Launch) error {
		dst, err := views[T](e, l, l.Work, 0)
		if err != nil {
			return err
		}
		src, err := views[T](e, l, 1, 1)
		if err != nil {
			return err
		}
		c := src[0][0]
		out := dst[0]
		e.each(l.Work, func(i int) { out[i] = c })
		return nil
	}
}

// eyeKernel writes the identity pattern of an r-row matrix.
func eyeKernel[T dtype.Element](e *env, tr traits[T]) kernel.Func {
	return func(l *kernel.Launch) error {
		v, err := views[T](e, l, l.Work, 0)
		if err != nil {
			return err
		}
		dst, r := v[0], l.Params[0]
		e.each(l.Work, func(i int) {
			dst[i] = tr.truth(i%(r+1) == 0 && i < r*r)
		})
		return nil
	}
}

// linspaceKernel: dst[i] = base + ((limit-base)*i)/(n-1).
func linspaceKernel[T dtype.Element](e *env, tr traits[T]) kernel.Func {
	return func(l *kernel.Launch) error {
		v, err := views[T](e, l, l.Work, 0)
		if err != nil {
			return err
		}
		base, err := scalar[T](l, 0)
		if err != nil {
			return err
		}
		limit, err := scalar[T](l, 1)
		if err != nil {
			return err
		}
		dst := v[0]
		den := tr.fromInt(int64(l.Params[0] - 1))
		e.each(l.Work, func(i int) {
			dst[i] = base + tr.div((limit-base)*tr.fromInt(int64(i)), den)
		})
		return nil
	}
}

// logspaceKernel: dst[i] = 10^(base + ((limit-base)*i)/(n-1)).
func logspaceKernel[T dtype.Float](e *env) kernel.Func {
	return func(l *kernel.Launch) error {
		v, err := views[T](e, l, l.Work, 0)
		if err != nil {
			return err
		}
		base, err := scalar[T](l, 0)
		if err != nil {
			return err
		}
		limit, err := scalar[T](l, 1)
		if err != nil {
			return err
		}
		dst := v[0]
		den := T(l.Params[0] - 1)
		e.each(l.Work, func(i int) {
			dst[i] = T(math.Pow(10, float64(base+((limit-base)*T(i))/den)))
		})
		return nil
	}
}

// ndgridKernel: dst[i] = src[(i/div1) % div2].
func ndgridKernel[T dtype.Element](e *env) kernel.Func {
	return func(l *kernel.Launch) error {
		dst, err := views[T](e, l, l.Work, 0)
		if err != nil {
			return err
		}
		div1, div2 := l.Params[0], l.Params[1]
		src, err := views[T](e, l, div2, 1)
		if err != nil {
			return err
		}
		out, in := dst[0], src[0]
		e.each(l.Work, func(i int) { out[i] = in[(i/div1)%div2] })
		return nil
	}
}

// repmatKernel replicates dimension fac2 of src into fac3 entries of dst;
// fac1 is the product of the extents before that dimension.
func repmatKernel[T dtype.Element](e *env) kernel.Func {
	return func(l *kernel.Launch) error {
		dst, err := views[T](e, l, l.Work, 0)
		if err != nil {
			return err
		}
		src, err := views[T](e, l, 0, 1)
		if err != nil {
			return err
		}
		fac1, fac2, fac3 := l.Params[0], l.Params[1], l.Params[2]
		out, in := dst[0], src[0]
		e.each(l.Work, func(i int) {
			j := i%fac1 + ((i/fac1)%fac2)*fac1 + (i/fac1/fac3)*fac1*fac2
			out[i] = in[j]
		})
		return nil
	}
}

// catKernel scatters src into dst at the concatenation offset.
func catKernel[T dtype.Element](e *env) kernel.Func {
	return func(l *kernel.Launch) error {
		src, err := views[T](e, l, l.Work, 1)
		if err != nil {
			return err
		}
		dst, err := views[T](e, l, 0, 0)
		if err != nil {
			return err
		}
		fac1, fac2, offs := l.Params[0], l.Params[1], l.Params[2]
		out, in := dst[0], src[0]
		e.each(l.Work, func(i int) {
			out[offs+i%fac1+(i/fac1)*fac2] = in[i]
		})
		return nil
	}
}

// transposeKernel transposes an r x c column-major matrix, applying f to
// every element.
func transposeKernel[T dtype.Element](e *env, f func(T) T) kernel.Func {
	return func(l *kernel.Launch) error {
		v, err := views[T](e, l, l.Work, 0, 1)
		if err != nil {
			return err
		}
		out, in := v[0], v[1]
		r, c := l.Params[0], l.Params[1]
		e.each(l.Work, func(k int) {
			row, col := k%c, k/c
			out[k] = f(in[col+row*r])
		})
		return nil
	}
}
