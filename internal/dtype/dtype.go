// Package dtype describes the element types a device array can hold.
package dtype

import "fmt"

// Element is a constraint for the Go types that map onto a DataType.
type Element interface {
	~int8 | ~int16 | ~int32 | ~int64 |
		~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64 |
		~complex64 | ~complex128
}

// Real is the subset of Element with a total order.
type Real interface {
	~int8 | ~int16 | ~int32 | ~int64 |
		~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// Float is the subset of Element backed by IEEE floating point.
type Float interface {
	~float32 | ~float64
}

// Complex is the subset of Element with a real and an imaginary part.
type Complex interface {
	~complex64 | ~complex128
}

// DataType represents runtime type information for arrays.
type DataType int

// Supported data types.
const (
	Int8 DataType = iota
	Int16
	Int32
	Int64
	Uint8
	Uint16
	Uint32
	Uint64
	Float32
	Float64
	Complex64
	Complex128
)

// Index is the element type of index arrays (0-based positions).
const Index = Int64

// All lists every supported data type in declaration order.
var All = []DataType{
	Int8, Int16, Int32, Int64,
	Uint8, Uint16, Uint32, Uint64,
	Float32, Float64, Complex64, Complex128,
}

// Size returns the byte size of the data type.
func (dt DataType) Size() int {
	switch dt {
	case Int8, Uint8:
		return 1
	case Int16, Uint16:
		return 2
	case Int32, Uint32, Float32:
		return 4
	case Int64, Uint64, Float64, Complex64:
		return 8
	case Complex128:
		return 16
	default:
		panic(fmt.Sprintf("dtype: unknown data type %d", int(dt)))
	}
}

// String returns a human-readable name for the data type.
func (dt DataType) String() string {
	switch dt {
	case Int8:
		return "int8"
	case Int16:
		return "int16"
	case Int32:
		return "int32"
	case Int64:
		return "int64"
	case Uint8:
		return "uint8"
	case Uint16:
		return "uint16"
	case Uint32:
		return "uint32"
	case Uint64:
		return "uint64"
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	case Complex64:
		return "complex64"
	case Complex128:
		return "complex128"
	default:
		return "unknown"
	}
}

// Parse returns the data type named name, as printed by String.
func Parse(name string) (DataType, error) {
	for _, dt := range All {
		if dt.String() == name {
			return dt, nil
		}
	}
	return 0, fmt.Errorf("unknown data type %q", name)
}

// Valid reports whether dt is one of the supported types.
func (dt DataType) Valid() bool {
	return dt >= Int8 && dt <= Complex128
}

// IsInteger reports whether dt is a signed or unsigned integer type.
func (dt DataType) IsInteger() bool {
	return dt >= Int8 && dt <= Uint64
}

// IsUnsigned reports whether dt is an unsigned integer type.
func (dt DataType) IsUnsigned() bool {
	return dt >= Uint8 && dt <= Uint64
}

// IsFloat reports whether dt is a real floating point type.
func (dt DataType) IsFloat() bool {
	return dt == Float32 || dt == Float64
}

// IsComplex reports whether dt is a complex type.
func (dt DataType) IsComplex() bool {
	return dt == Complex64 || dt == Complex128
}

// IsDouble reports whether dt needs double precision support on the device.
func (dt DataType) IsDouble() bool {
	return dt == Float64 || dt == Complex128
}

// Real returns the component type of a complex type, or dt itself.
func (dt DataType) Real() DataType {
	switch dt {
	case Complex64:
		return Float32
	case Complex128:
		return Float64
	default:
		return dt
	}
}

// Complex returns the complex type built from a real float type.
func (dt DataType) Complex() (DataType, bool) {
	switch dt {
	case Float32:
		return Complex64, true
	case Float64:
		return Complex128, true
	case Complex64, Complex128:
		return dt, true
	default:
		return dt, false
	}
}

// Of returns the DataType of the Go type T.
func Of[T Element]() DataType {
	var zero T
	switch any(zero).(type) {
	case int8:
		return Int8
	case int16:
		return Int16
	case int32:
		return Int32
	case int64:
		return Int64
	case uint8:
		return Uint8
	case uint16:
		return Uint16
	case uint32:
		return Uint32
	case uint64:
		return Uint64
	case float32:
		return Float32
	case float64:
		return Float64
	case complex64:
		return Complex64
	case complex128:
		return Complex128
	default:
		panic(fmt.Sprintf("dtype: unsupported Go type %T", zero))
	}
}
