package cpu

import (
	"fmt"

	"github.com/born-ml/devarray/internal/dtype"
	"github.com/born-ml/devarray/internal/kernel"
)

// unaryKernel: dst[i] = f(src[i]).
func unaryKernel[T dtype.Element](e *env, f func(T) T) kernel.Func {
	return convertKernel(e, f)
}

// convertKernel: dst[i] = f(src[i]) between element types.
func convertKernel[S, D dtype.Element](e *env, f func(S) D) kernel.Func {
	return func(l *kernel.Launch) error {
		dst, err := views[D](e, l, l.Work, 0)
		if err != nil {
			return err
		}
		src, err := views[S](e, l, l.Work, 1)
		if err != nil {
			return err
		}
		out, in := dst[0], src[0]
		e.each(l.Work, func(i int) { out[i] = f(in[i]) })
		return nil
	}
}

// binaryKernel: dst[i] = f(a[i], b[i]).
func binaryKernel[T dtype.Element](e *env, f func(a, b T) T) kernel.Func {
	return func(l *kernel.Launch) error {
		v, err := views[T](e, l, l.Work, 0, 1, 2)
		if err != nil {
			return err
		}
		out, a, b := v[0], v[1], v[2]
		e.each(l.Work, func(i int) { out[i] = f(a[i], b[i]) })
		return nil
	}
}

// scalarKernel: dst[i] = f(a[i], c).
func scalarKernel[T dtype.Element](e *env, f func(a, c T) T) kernel.Func {
	return func(l *kernel.Launch) error {
		v, err := views[T](e, l, l.Work, 0, 1)
		if err != nil {
			return err
		}
		c, err := scalar[T](l, 0)
		if err != nil {
			return err
		}
		out, a := v[0], v[1]
		e.each(l.Work, func(i int) { out[i] = f(a[i], c) })
		return nil
	}
}

// fmad1Kernel: dst[i] = a[i]*s1 + s2.
func fmad1Kernel[T dtype.Element](e *env) kernel.Func {
	return func(l *kernel.Launch) error {
		v, err := views[T](e, l, l.Work, 0, 1)
		if err != nil {
			return err
		}
		s1, err := scalar[T](l, 0)
		if err != nil {
			return err
		}
		s2, err := scalar[T](l, 1)
		if err != nil {
			return err
		}
		out, a := v[0], v[1]
		e.each(l.Work, func(i int) { out[i] = a[i]*s1 + s2 })
		return nil
	}
}

// fmad2Kernel: dst[i] = a[i]*s + b[i].
func fmad2Kernel[T dtype.Element](e *env) kernel.Func {
	return func(l *kernel.Launch) error {
		v, err := views[T](e, l, l.Work, 0, 1, 2)
		if err != nil {
			return err
		}
		s, err := scalar[T](l, 0)
		if err != nil {
			return err
		}
		out, a, b := v[0], v[1], v[2]
		e.each(l.Work, func(i int) { out[i] = a[i]*s + b[i] })
		return nil
	}
}

// operands2 resolves the left and right inputs of a compare or logic
// launch for the placement mode in params[1].
func operands2[T dtype.Element](e *env, l *kernel.Launch) (out, a, b []T, c T, mode int, err error) {
	mode = l.Params[1]
	v, err := views[T](e, l, l.Work, 0, 1)
	if err != nil {
		return nil, nil, nil, c, 0, err
	}
	out, a = v[0], v[1]
	switch mode {
	case kernel.ModeArrayArray:
		w, err := views[T](e, l, l.Work, 2)
		if err != nil {
			return nil, nil, nil, c, 0, err
		}
		b = w[0]
	case kernel.ModeArrayScalar, kernel.ModeScalarArray:
		if c, err = scalar[T](l, 0); err != nil {
			return nil, nil, nil, c, 0, err
		}
	default:
		return nil, nil, nil, c, 0, fmt.Errorf("cpu: %s: unknown operand mode %d", l.Op, mode)
	}
	return out, a, b, c, mode, nil
}

func apply2[T, R dtype.Element](e *env, work int, out []R, a, b []T, c T, mode int, f func(x, y T) R) {
	switch mode {
	case kernel.ModeArrayScalar:
		e.each(work, func(i int) { out[i] = f(a[i], c) })
	case kernel.ModeScalarArray:
		e.each(work, func(i int) { out[i] = f(c, a[i]) })
	default:
		e.each(work, func(i int) { out[i] = f(a[i], b[i]) })
	}
}

// compareKernel writes 1 where the comparison in params[0] holds, else 0.
func compareKernel[T dtype.Element](e *env, tr traits[T]) kernel.Func {
	return func(l *kernel.Launch) error {
		out, a, b, c, mode, err := operands2[T](e, l)
		if err != nil {
			return err
		}
		var f func(x, y T) bool
		switch l.Params[0] {
		case kernel.CmpLT:
			f = tr.less
		case kernel.CmpLE:
			f = func(x, y T) bool { return tr.less(x, y) || x == y }
		case kernel.CmpGT:
			f = tr.greater
		case kernel.CmpGE:
			f = func(x, y T) bool { return tr.less(y, x) || x == y }
		case kernel.CmpEQ:
			f = func(x, y T) bool { return x == y }
		case kernel.CmpNE:
			f = func(x, y T) bool { return x != y }
		default:
			return fmt.Errorf("cpu: compare: unknown comparison %d", l.Params[0])
		}
		apply2(e, l.Work, out, a, b, c, mode, func(x, y T) T { return tr.truth(f(x, y)) })
		return nil
	}
}

// logicKernel combines the truth values of its inputs.
func logicKernel[T dtype.Element](e *env, tr traits[T]) kernel.Func {
	return func(l *kernel.Launch) error {
		if l.Params[0] == kernel.LogicNot {
			v, err := views[T](e, l, l.Work, 0, 1)
			if err != nil {
				return err
			}
			out, a := v[0], v[1]
			e.each(l.Work, func(i int) { out[i] = tr.truth(!tr.nonzero(a[i])) })
			return nil
		}

		out, a, b, c, mode, err := operands2[T](e, l)
		if err != nil {
			return err
		}
		switch l.Params[0] {
		case kernel.LogicAnd:
			apply2(e, l.Work, out, a, b, c, mode, func(x, y T) T { return tr.truth(tr.nonzero(x) && tr.nonzero(y)) })
		case kernel.LogicOr:
			apply2(e, l.Work, out, a, b, c, mode, func(x, y T) T { return tr.truth(tr.nonzero(x) || tr.nonzero(y)) })
		default:
			return fmt.Errorf("cpu: logic: unknown operator %d", l.Params[0])
		}
		return nil
	}
}

// real2ComplexKernel: dst[i] = re[i] + im[i]i.
func real2ComplexKernel[C dtype.Complex, R dtype.Float](e *env) kernel.Func {
	return func(l *kernel.Launch) error {
		dst, err := views[C](e, l, l.Work, 0)
		if err != nil {
			return err
		}
		src, err := views[R](e, l, l.Work, 1, 2)
		if err != nil {
			return err
		}
		out, re, im := dst[0], src[0], src[1]
		e.each(l.Work, func(i int) {
			out[i] = C(complex(float64(re[i]), float64(im[i])))
		})
		return nil
	}
}
