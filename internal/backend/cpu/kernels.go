package cpu

import (
	"math"

	"github.com/born-ml/devarray/internal/dtype"
	"github.com/born-ml/devarray/internal/kernel"
)

// commonKernels are available for every element type.
func commonKernels[T dtype.Element](e *env, tr traits[T]) map[kernel.Op]kernel.Func {
	m := map[kernel.Op]kernel.Func{
		kernel.OpFill:      fillKernel[T](e),
		kernel.OpFill0:     fill0Kernel[T](e),
		kernel.OpEye:       eyeKernel(e, tr),
		kernel.OpLinspace:  linspaceKernel(e, tr),
		kernel.OpNdgrid1:   ndgridKernel[T](e),
		kernel.OpRepmat1:   repmatKernel[T](e),
		kernel.OpCat:       catKernel[T](e),
		kernel.OpTranspose: transposeKernel(e, func(x T) T { return x }),
		kernel.OpHermitian: transposeKernel(e, func(x T) T { return x }),

		kernel.OpIndex:          indexKernel(e, tr),
		kernel.OpAssignEl:       assignElKernel[T](e),
		kernel.OpAssign:         assignKernel[T](e, false),
		kernel.OpAssign0:        assignKernel[T](e, true),
		kernel.OpAssignElLogind: assignMaskKernel(e, tr),

		kernel.OpFindFirst: findKernel(e, tr, true),
		kernel.OpFindLast:  findKernel(e, tr, false),
		kernel.OpAll:       allAnyKernel(e, tr, true),
		kernel.OpAny:       allAnyKernel(e, tr, false),
		kernel.OpSum:       foldKernel(e, tr.zero, func(acc, x T) T { return acc + x }, nil),
		kernel.OpSumSq:     foldKernel(e, tr.zero, func(acc, x T) T { return acc + tr.norm(x) }, nil),
		kernel.OpProd:      foldKernel(e, tr.one, func(acc, x T) T { return acc * x }, nil),
		kernel.OpMean:      foldKernel(e, tr.zero, func(acc, x T) T { return acc + x }, meanOf(tr)),
		kernel.OpMeanSq:    foldKernel(e, tr.zero, func(acc, x T) T { return acc + tr.norm(x) }, meanOf(tr)),
		kernel.OpCumSum:    scanKernel(e, func(acc, x T) T { return acc + x }),
		kernel.OpCumProd:   scanKernel(e, func(acc, x T) T { return acc * x }),
		kernel.OpMax:       extremumKernel(e, tr.greater, false),
		kernel.OpMin:       extremumKernel(e, tr.less, false),
		kernel.OpCumMax:    extremumKernel(e, tr.greater, true),
		kernel.OpCumMin:    extremumKernel(e, tr.less, true),

		kernel.OpMax2:    binaryKernel(e, func(a, b T) T { return pick(tr.greater, a, b) }),
		kernel.OpMin2:    binaryKernel(e, func(a, b T) T { return pick(tr.less, a, b) }),
		kernel.OpMax1:    scalarKernel(e, func(a, c T) T { return pick(tr.greater, a, c) }),
		kernel.OpMin1:    scalarKernel(e, func(a, c T) T { return pick(tr.less, a, c) }),
		kernel.OpCompare: compareKernel(e, tr),
		kernel.OpLogic:   logicKernel(e, tr),
		kernel.OpFmad1:   fmad1Kernel[T](e),
		kernel.OpFmad2:   fmad2Kernel[T](e),
		kernel.OpUminus:  unaryKernel(e, func(x T) T { return tr.zero - x }),
		kernel.OpAdd1:    scalarKernel(e, func(a, c T) T { return a + c }),
		kernel.OpAdd2:    binaryKernel(e, func(a, b T) T { return a + b }),
		kernel.OpSub1m:   scalarKernel(e, func(a, c T) T { return a - c }),
		kernel.OpSub1s:   scalarKernel(e, func(a, c T) T { return c - a }),
		kernel.OpSub2:    binaryKernel(e, func(a, b T) T { return a - b }),
		kernel.OpMul1:    scalarKernel(e, func(a, c T) T { return a * c }),
		kernel.OpMul2:    binaryKernel(e, func(a, b T) T { return a * b }),
		kernel.OpMTimes:  mtimesKernel[T](e),
		kernel.OpDiv1n:   scalarKernel(e, func(a, c T) T { return tr.div(a, c) }),
		kernel.OpDiv1d:   scalarKernel(e, func(a, c T) T { return tr.div(c, a) }),
		kernel.OpDiv2:    binaryKernel(e, tr.div),
		kernel.OpPower1e: scalarKernel(e, func(a, c T) T { return tr.pow(a, c) }),
		kernel.OpPower1b: scalarKernel(e, func(a, c T) T { return tr.pow(c, a) }),
		kernel.OpPower2:  binaryKernel(e, tr.pow),
	}
	return m
}

// realKernels adds what every totally ordered type supports.
func realKernels[T dtype.Real](e *env, tr traits[T]) map[kernel.Op]kernel.Func {
	m := commonKernels(e, tr)
	m[kernel.OpAsIndex] = asIndexKernel[T](e)
	return m
}

func signedKernels[T ~int8 | ~int16 | ~int32 | ~int64](e *env, tr traits[T]) map[kernel.Op]kernel.Func {
	m := realKernels(e, tr)
	m[kernel.OpAbs] = unaryKernel(e, func(x T) T {
		if x < 0 {
			return -x
		}
		return x
	})
	m[kernel.OpSign] = unaryKernel(e, func(x T) T {
		switch {
		case x > 0:
			return 1
		case x < 0:
			return -1
		default:
			return 0
		}
	})
	return m
}

func unsignedKernels[T ~uint8 | ~uint16 | ~uint32 | ~uint64](e *env, tr traits[T]) map[kernel.Op]kernel.Func {
	m := realKernels(e, tr)
	m[kernel.OpAbs] = unaryKernel(e, func(x T) T { return x })
	m[kernel.OpSign] = unaryKernel(e, func(x T) T { return tr.truth(x != 0) })
	return m
}

func floatKernels[T dtype.Float](e *env, tr traits[T]) map[kernel.Op]kernel.Func {
	m := realKernels(e, tr)
	m[kernel.OpLogspace] = logspaceKernel[T](e)
	m[kernel.OpStd] = stdKernel[T, T](e, func(x T) float64 { return float64(x) * float64(x) })
	m[kernel.OpAtan2] = binaryKernel(e, func(a, b T) T { return T(math.Atan2(float64(a), float64(b))) })
	for op, fn := range floatMaps[T]() {
		m[op] = unaryKernel(e, fn)
	}
	return m
}

func complexKernels[C dtype.Complex, R dtype.Float](e *env, tr traits[C]) map[kernel.Op]kernel.Func {
	m := commonKernels(e, tr)
	m[kernel.OpHermitian] = transposeKernel(e, func(x C) C { return conj(x) })
	m[kernel.OpConj] = unaryKernel(e, conj[C])
	m[kernel.OpStd] = stdKernel[C, R](e, func(x C) float64 {
		c := complex128(x)
		return real(c)*real(c) + imag(c)*imag(c)
	})
	for op, fn := range complexMaps[C]() {
		m[op] = unaryKernel(e, fn)
	}
	for op, fn := range complexToReal[C, R]() {
		m[op] = convertKernel(e, fn)
	}
	m[kernel.OpReal2ComplexR] = convertKernel(e, func(x R) C { return C(complex(float64(x), 0)) })
	m[kernel.OpReal2ComplexI] = convertKernel(e, func(x R) C { return C(complex(0, float64(x))) })
	m[kernel.OpReal2ComplexRI] = real2ComplexKernel[C, R](e)
	return m
}

func pick[T any](better func(a, b T) bool, a, b T) T {
	if better(b, a) {
		return b
	}
	return a
}

func meanOf[T dtype.Element](tr traits[T]) func(acc T, n int) T {
	return func(acc T, n int) T {
		return tr.div(acc, tr.fromInt(int64(n)))
	}
}
