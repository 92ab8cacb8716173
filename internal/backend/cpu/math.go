package cpu

import (
	"math"
	"math/cmplx"

	"github.com/born-ml/devarray/internal/dtype"
	"github.com/born-ml/devarray/internal/kernel"
)

func lift[T dtype.Float](f func(float64) float64) func(T) T {
	return func(x T) T { return T(f(float64(x))) }
}

func truthOf[T dtype.Float](f func(float64) bool) func(T) T {
	return func(x T) T {
		if f(float64(x)) {
			return 1
		}
		return 0
	}
}

func floatSign(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return x
	}
}

func lgamma(x float64) float64 {
	v, _ := math.Lgamma(x)
	return v
}

// floatMaps lists the element-wise math functions of real float types.
func floatMaps[T dtype.Float]() map[kernel.Op]func(T) T {
	return map[kernel.Op]func(T) T{
		kernel.OpAbs:      lift[T](math.Abs),
		kernel.OpFabs:     lift[T](math.Abs),
		kernel.OpAcos:     lift[T](math.Acos),
		kernel.OpAcosh:    lift[T](math.Acosh),
		kernel.OpAsin:     lift[T](math.Asin),
		kernel.OpAsinh:    lift[T](math.Asinh),
		kernel.OpAtan:     lift[T](math.Atan),
		kernel.OpAtanh:    lift[T](math.Atanh),
		kernel.OpCbrt:     lift[T](math.Cbrt),
		kernel.OpCeil:     lift[T](math.Ceil),
		kernel.OpCos:      lift[T](math.Cos),
		kernel.OpCosh:     lift[T](math.Cosh),
		kernel.OpErf:      lift[T](math.Erf),
		kernel.OpErfc:     lift[T](math.Erfc),
		kernel.OpExp:      lift[T](math.Exp),
		kernel.OpExpm1:    lift[T](math.Expm1),
		kernel.OpFix:      lift[T](math.Trunc),
		kernel.OpFloor:    lift[T](math.Floor),
		kernel.OpIsFinite: truthOf[T](func(x float64) bool { return !math.IsInf(x, 0) && !math.IsNaN(x) }),
		kernel.OpIsInf:    truthOf[T](func(x float64) bool { return math.IsInf(x, 0) }),
		kernel.OpIsNaN:    truthOf[T](math.IsNaN),
		kernel.OpLgamma:   lift[T](lgamma),
		kernel.OpLog:      lift[T](math.Log),
		kernel.OpLog2:     lift[T](math.Log2),
		kernel.OpLog10:    lift[T](math.Log10),
		kernel.OpLog1p:    lift[T](math.Log1p),
		kernel.OpRound:    lift[T](math.Round),
		kernel.OpSign:     lift[T](floatSign),
		kernel.OpSin:      lift[T](math.Sin),
		kernel.OpSinh:     lift[T](math.Sinh),
		kernel.OpSqrt:     lift[T](math.Sqrt),
		kernel.OpTan:      lift[T](math.Tan),
		kernel.OpTanh:     lift[T](math.Tanh),
		kernel.OpTgamma:   lift[T](math.Gamma),
	}
}

func liftC[C dtype.Complex](f func(complex128) complex128) func(C) C {
	return func(x C) C { return C(f(complex128(x))) }
}

func conj[C dtype.Complex](x C) C {
	return C(cmplx.Conj(complex128(x)))
}

// complexMaps lists the element-wise functions defined on complex values.
func complexMaps[C dtype.Complex]() map[kernel.Op]func(C) C {
	return map[kernel.Op]func(C) C{
		kernel.OpAcos:  liftC[C](cmplx.Acos),
		kernel.OpAcosh: liftC[C](cmplx.Acosh),
		kernel.OpAsin:  liftC[C](cmplx.Asin),
		kernel.OpAsinh: liftC[C](cmplx.Asinh),
		kernel.OpAtan:  liftC[C](cmplx.Atan),
		kernel.OpAtanh: liftC[C](cmplx.Atanh),
		kernel.OpCos:   liftC[C](cmplx.Cos),
		kernel.OpCosh:  liftC[C](cmplx.Cosh),
		kernel.OpExp:   liftC[C](cmplx.Exp),
		kernel.OpLog:   liftC[C](cmplx.Log),
		kernel.OpLog10: liftC[C](cmplx.Log10),
		kernel.OpSin:   liftC[C](cmplx.Sin),
		kernel.OpSinh:  liftC[C](cmplx.Sinh),
		kernel.OpSqrt:  liftC[C](cmplx.Sqrt),
		kernel.OpTan:   liftC[C](cmplx.Tan),
		kernel.OpTanh:  liftC[C](cmplx.Tanh),
	}
}

func realTruth[R dtype.Float](b bool) R {
	if b {
		return 1
	}
	return 0
}

// complexToReal lists the functions mapping complex elements to their
// real component type.
func complexToReal[C dtype.Complex, R dtype.Float]() map[kernel.Op]func(C) R {
	return map[kernel.Op]func(C) R{
		kernel.OpReal: func(x C) R { return R(real(complex128(x))) },
		kernel.OpImag: func(x C) R { return R(imag(complex128(x))) },
		kernel.OpFabs: func(x C) R { return R(cmplx.Abs(complex128(x))) },
		kernel.OpArg:  func(x C) R { return R(cmplx.Phase(complex128(x))) },
		kernel.OpIsFinite: func(x C) R {
			c := complex128(x)
			return realTruth[R](!cmplx.IsInf(c) && !cmplx.IsNaN(c))
		},
		kernel.OpIsInf: func(x C) R { return realTruth[R](cmplx.IsInf(complex128(x))) },
		kernel.OpIsNaN: func(x C) R { return realTruth[R](cmplx.IsNaN(complex128(x))) },
	}
}
