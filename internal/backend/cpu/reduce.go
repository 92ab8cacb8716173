package cpu

import (
	"math"

	"github.com/born-ml/devarray/internal/dtype"
	"github.com/born-ml/devarray/internal/kernel"
)

// Dimension-wise kernels take params (len, fac): work item i covers the
// elements src[base + k*fac] for k in [0, len), base = i%fac + (i/fac)*fac*len.

func lineBase(i, fac, n int) int {
	return i%fac + (i/fac)*fac*n
}

// dimwise maps dst and src and checks they cover work*len elements of src.
func dimwise[D, S any](e *env, l *kernel.Launch, dstIdx, srcIdx int, cumulative bool) ([]D, []S, int, int, error) {
	n, fac := l.Params[0], l.Params[1]
	need := l.Work
	if cumulative {
		need = l.Work * n
	}
	dst, err := views[D](e, l, need, dstIdx)
	if err != nil {
		return nil, nil, 0, 0, err
	}
	src, err := views[S](e, l, l.Work*n, srcIdx)
	if err != nil {
		return nil, nil, 0, 0, err
	}
	return dst[0], src[0], n, fac, nil
}

// foldKernel reduces each line with step, starting at init. finish, when
// set, post-processes the accumulator given the line length.
func foldKernel[T dtype.Element](e *env, init T, step func(acc, x T) T, finish func(acc T, n int) T) kernel.Func {
	return func(l *kernel.Launch) error {
		dst, src, n, fac, err := dimwise[T, T](e, l, 0, 1, false)
		if err != nil {
			return err
		}
		e.each(l.Work, func(i int) {
			j := lineBase(i, fac, n)
			acc := init
			for k := 0; k < n; k++ {
				acc = step(acc, src[j+k*fac])
			}
			if finish != nil {
				acc = finish(acc, n)
			}
			dst[i] = acc
		})
		return nil
	}
}

// scanKernel writes the running accumulation of each line.
func scanKernel[T dtype.Element](e *env, step func(acc, x T) T) kernel.Func {
	return func(l *kernel.Launch) error {
		dst, src, n, fac, err := dimwise[T, T](e, l, 0, 1, true)
		if err != nil {
			return err
		}
		e.each(l.Work, func(i int) {
			j := lineBase(i, fac, n)
			if n == 0 {
				return
			}
			acc := src[j]
			dst[j] = acc
			for k := 1; k < n; k++ {
				acc = step(acc, src[j+k*fac])
				dst[j+k*fac] = acc
			}
		})
		return nil
	}
}

func allAnyKernel[T dtype.Element](e *env, tr traits[T], all bool) kernel.Func {
	return func(l *kernel.Launch) error {
		dst, src, n, fac, err := dimwise[T, T](e, l, 0, 1, false)
		if err != nil {
			return err
		}
		e.each(l.Work, func(i int) {
			j := lineBase(i, fac, n)
			result := all
			for k := 0; k < n; k++ {
				if tr.nonzero(src[j+k*fac]) != all {
					result = !all
					break
				}
			}
			dst[i] = tr.truth(result)
		})
		return nil
	}
}

// findKernel writes the position of the first (or last) non-zero element
// of each line, or -1.
func findKernel[T dtype.Element](e *env, tr traits[T], first bool) kernel.Func {
	return func(l *kernel.Launch) error {
		dst, src, n, fac, err := dimwise[int64, T](e, l, 0, 1, false)
		if err != nil {
			return err
		}
		e.each(l.Work, func(i int) {
			j := lineBase(i, fac, n)
			found := int64(-1)
			if first {
				for k := 0; k < n; k++ {
					if tr.nonzero(src[j+k*fac]) {
						found = int64(k)
						break
					}
				}
			} else {
				for k := n - 1; k >= 0; k-- {
					if tr.nonzero(src[j+k*fac]) {
						found = int64(k)
						break
					}
				}
			}
			dst[i] = found
		})
		return nil
	}
}

// extremumKernel finds the best element of each line according to better,
// keeping the first one on ties. Operand 1 optionally receives positions.
// With cumulative set the running extremum of each prefix is written.
func extremumKernel[T dtype.Element](e *env, better func(a, b T) bool, cumulative bool) kernel.Func {
	return func(l *kernel.Launch) error {
		dst, src, n, fac, err := dimwise[T, T](e, l, 0, 2, cumulative)
		if err != nil {
			return err
		}
		idx, err := view[int64](e, l.Operands[1])
		if err != nil {
			return err
		}
		e.each(l.Work, func(i int) {
			j := lineBase(i, fac, n)
			if n == 0 {
				return
			}
			best, km := src[j], 0
			if cumulative {
				dst[j] = best
				if idx != nil {
					idx[j] = 0
				}
			}
			for k := 1; k < n; k++ {
				p := j + k*fac
				if x := src[p]; better(x, best) {
					best, km = x, k
				}
				if cumulative {
					dst[p] = best
					if idx != nil {
						idx[p] = int64(km)
					}
				}
			}
			if !cumulative {
				dst[i] = best
				if idx != nil {
					idx[i] = int64(km)
				}
			}
		})
		return nil
	}
}

// stdKernel computes the standard deviation of each line into a real
// destination. Param opt selects the divisor: 0 for len-1, 1 for len.
func stdKernel[T dtype.Element, R dtype.Float](e *env, abs2 func(T) float64) kernel.Func {
	return func(l *kernel.Launch) error {
		dst, src, n, fac, err := dimwise[R, T](e, l, 0, 1, false)
		if err != nil {
			return err
		}
		div := float64(n - 1)
		if l.Params[2] == 1 {
			div = float64(n)
		}
		e.each(l.Work, func(i int) {
			j := lineBase(i, fac, n)
			var m1 T
			var m2 float64
			for k := 0; k < n; k++ {
				x := src[j+k*fac]
				m1 += x
				m2 += abs2(x)
			}
			if div <= 0 {
				dst[i] = 0
				return
			}
			v := (m2 - abs2(m1)/float64(n)) / div
			dst[i] = R(math.Sqrt(math.Max(v, 0)))
		})
		return nil
	}
}
