package cpu

import (
	"math"
	"math/cmplx"

	"github.com/born-ml/devarray/internal/dtype"
)

// traits holds the per-type arithmetic the generic kernels cannot express
// with operators alone.
type traits[T dtype.Element] struct {
	dt      dtype.DataType
	zero    T
	one     T
	fromInt func(int64) T
	nonzero func(T) bool
	// less orders elements; complex values compare by magnitude, then by angle.
	less func(a, b T) bool
	div  func(a, b T) T
	pow  func(a, b T) T
	// norm is |x|^2 in the element type.
	norm func(T) T
}

func (tr traits[T]) greater(a, b T) bool {
	return tr.less(b, a)
}

func (tr traits[T]) truth(b bool) T {
	if b {
		return tr.one
	}
	return tr.zero
}

func signedTraits[T ~int8 | ~int16 | ~int32 | ~int64](dt dtype.DataType) traits[T] {
	return traits[T]{
		dt:      dt,
		one:     1,
		fromInt: func(v int64) T { return T(v) },
		nonzero: func(x T) bool { return x != 0 },
		less:    func(a, b T) bool { return a < b },
		div:     intDiv[T],
		pow:     signedPow[T],
		norm:    func(x T) T { return x * x },
	}
}

func unsignedTraits[T ~uint8 | ~uint16 | ~uint32 | ~uint64](dt dtype.DataType) traits[T] {
	return traits[T]{
		dt:      dt,
		one:     1,
		fromInt: func(v int64) T { return T(v) },
		nonzero: func(x T) bool { return x != 0 },
		less:    func(a, b T) bool { return a < b },
		div:     intDiv[T],
		pow:     unsignedPow[T],
		norm:    func(x T) T { return x * x },
	}
}

func floatTraits[T dtype.Float](dt dtype.DataType) traits[T] {
	return traits[T]{
		dt:      dt,
		one:     1,
		fromInt: func(v int64) T { return T(v) },
		nonzero: func(x T) bool { return x != 0 },
		less:    func(a, b T) bool { return a < b },
		div:     func(a, b T) T { return a / b },
		pow:     func(a, b T) T { return T(math.Pow(float64(a), float64(b))) },
		norm:    func(x T) T { return x * x },
	}
}

func complexTraits[T dtype.Complex](dt dtype.DataType) traits[T] {
	return traits[T]{
		dt:      dt,
		one:     1,
		fromInt: func(v int64) T { return T(complex(float64(v), 0)) },
		nonzero: func(x T) bool { return x != 0 },
		less:    complexLess[T],
		div:     func(a, b T) T { return a / b },
		pow: func(a, b T) T {
			return T(cmplx.Pow(complex128(a), complex128(b)))
		},
		norm: func(x T) T {
			c := complex128(x)
			return T(complex(real(c)*real(c)+imag(c)*imag(c), 0))
		},
	}
}

func complexLess[T dtype.Complex](a, b T) bool {
	ca, cb := complex128(a), complex128(b)
	ma, mb := cmplx.Abs(ca), cmplx.Abs(cb)
	if ma != mb {
		return ma < mb
	}
	return cmplx.Phase(ca) < cmplx.Phase(cb)
}

// intDiv divides integers, yielding zero for a zero divisor.
func intDiv[T ~int8 | ~int16 | ~int32 | ~int64 | ~uint8 | ~uint16 | ~uint32 | ~uint64](a, b T) T {
	if b == 0 {
		return 0
	}
	return a / b
}

func unsignedPow[T ~uint8 | ~uint16 | ~uint32 | ~uint64](base, exp T) T {
	result := T(1)
	for exp > 0 {
		if exp&1 == 1 {
			result *= base
		}
		base *= base
		exp >>= 1
	}
	return result
}

func signedPow[T ~int8 | ~int16 | ~int32 | ~int64](base, exp T) T {
	if exp < 0 {
		switch base {
		case 1:
			return 1
		case -1:
			if exp%2 == 0 {
				return 1
			}
			return -1
		default:
			return 0
		}
	}
	result := T(1)
	for exp > 0 {
		if exp&1 == 1 {
			result *= base
		}
		base *= base
		exp >>= 1
	}
	return result
}
