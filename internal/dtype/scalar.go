package dtype

import (
	"errors"
	"fmt"
)

// ErrNotRepresentable is returned when a scalar cannot be stored in a type.
var ErrNotRepresentable = errors.New("dtype: scalar not representable")

type scalarKind int

const (
	kindSigned scalarKind = iota
	kindUnsigned
	kindFloat
	kindComplex
)

type scalar struct {
	kind scalarKind
	i    int64
	u    uint64
	c    complex128
}

func decompose(v any) (scalar, error) {
	switch x := v.(type) {
	case int:
		return scalar{kind: kindSigned, i: int64(x)}, nil
	case int8:
		return scalar{kind: kindSigned, i: int64(x)}, nil
	case int16:
		return scalar{kind: kindSigned, i: int64(x)}, nil
	case int32:
		return scalar{kind: kindSigned, i: int64(x)}, nil
	case int64:
		return scalar{kind: kindSigned, i: x}, nil
	case uint:
		return scalar{kind: kindUnsigned, u: uint64(x)}, nil
	case uint8:
		return scalar{kind: kindUnsigned, u: uint64(x)}, nil
	case uint16:
		return scalar{kind: kindUnsigned, u: uint64(x)}, nil
	case uint32:
		return scalar{kind: kindUnsigned, u: uint64(x)}, nil
	case uint64:
		return scalar{kind: kindUnsigned, u: x}, nil
	case float32:
		return scalar{kind: kindFloat, c: complex(float64(x), 0)}, nil
	case float64:
		return scalar{kind: kindFloat, c: complex(x, 0)}, nil
	case complex64:
		return scalar{kind: kindComplex, c: complex128(x)}, nil
	case complex128:
		return scalar{kind: kindComplex, c: x}, nil
	case bool:
		if x {
			return scalar{kind: kindSigned, i: 1}, nil
		}
		return scalar{kind: kindSigned}, nil
	default:
		return scalar{}, fmt.Errorf("%w: %T", ErrNotRepresentable, v)
	}
}

func (s scalar) asInt() int64 {
	switch s.kind {
	case kindSigned:
		return s.i
	case kindUnsigned:
		return int64(s.u)
	default:
		return int64(real(s.c))
	}
}

func (s scalar) asUint() uint64 {
	switch s.kind {
	case kindSigned:
		return uint64(s.i)
	case kindUnsigned:
		return s.u
	default:
		return uint64(real(s.c))
	}
}

func (s scalar) asComplex() complex128 {
	switch s.kind {
	case kindSigned:
		return complex(float64(s.i), 0)
	case kindUnsigned:
		return complex(float64(s.u), 0)
	default:
		return s.c
	}
}

// Cast converts a Go numeric value to the Go type backing dt.
// Complex values with a non-zero imaginary part only cast to complex types.
func Cast(dt DataType, v any) (any, error) {
	s, err := decompose(v)
	if err != nil {
		return nil, err
	}
	if s.kind == kindComplex && imag(s.c) != 0 && !dt.IsComplex() {
		return nil, fmt.Errorf("%w: %v as %s", ErrNotRepresentable, v, dt)
	}
	switch dt {
	case Int8:
		return int8(s.asInt()), nil
	case Int16:
		return int16(s.asInt()), nil
	case Int32:
		return int32(s.asInt()), nil
	case Int64:
		return s.asInt(), nil
	case Uint8:
		return uint8(s.asUint()), nil
	case Uint16:
		return uint16(s.asUint()), nil
	case Uint32:
		return uint32(s.asUint()), nil
	case Uint64:
		return s.asUint(), nil
	case Float32:
		return float32(real(s.asComplex())), nil
	case Float64:
		return real(s.asComplex()), nil
	case Complex64:
		return complex64(s.asComplex()), nil
	case Complex128:
		return s.asComplex(), nil
	default:
		return nil, fmt.Errorf("%w: unknown type %s", ErrNotRepresentable, dt)
	}
}

// MustCast is Cast for values known to be representable, such as constants.
func MustCast(dt DataType, v any) any {
	out, err := Cast(dt, v)
	if err != nil {
		panic(err)
	}
	return out
}

// ToComplex128 widens any supported scalar to complex128.
func ToComplex128(v any) complex128 {
	s, err := decompose(v)
	if err != nil {
		return 0
	}
	return s.asComplex()
}
