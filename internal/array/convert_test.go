package array

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/devarray/internal/device"
	"github.com/born-ml/devarray/internal/device/host"
	"github.com/born-ml/devarray/internal/dtype"
)

func TestMap(t *testing.T) {
	rt := newRuntime(t, host.DefaultConfig())
	a := from(t, rt, []float64{1, 4, 9})

	root, err := a.Map(MathSqrt)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3}, values[float64](t, root))

	b := from(t, rt, []float64{-1.5, 2.5, math.Inf(1)})
	shared := b.Clone()
	require.NoError(t, b.MapInPlace(MathFloor))
	assert.Equal(t, []float64{-2, 2, math.Inf(1)}, values[float64](t, b))
	assert.Equal(t, []float64{-1.5, 2.5, math.Inf(1)}, values[float64](t, shared))

	inf, err := b.Map(MathIsInf)
	require.NoError(t, err)
	assert.True(t, inf.IsLogical())
	assert.Equal(t, []float64{0, 0, 1}, values[float64](t, inf))

	ints := from(t, rt, []int32{-3, 4})
	abs, err := ints.Abs()
	require.NoError(t, err)
	assert.Equal(t, []int32{3, 4}, values[int32](t, abs))

	_, err = ints.Map(MathSqrt)
	assert.ErrorIs(t, err, device.ErrUnsupportedType)

	_, err = a.Map(Math(-1))
	assert.ErrorIs(t, err, device.ErrInvalidArgument)
	assert.Equal(t, "sqrt", MathSqrt.String())
}

func TestComplexMagnitudes(t *testing.T) {
	rt := newRuntime(t, host.DefaultConfig())
	z := from(t, rt, []complex64{complex(3, 4), complex(0, -2)})

	abs, err := z.Abs()
	require.NoError(t, err)
	assert.Equal(t, dtype.Float32, abs.DType())
	assert.Equal(t, []float32{5, 2}, values[float32](t, abs))

	assert.ErrorIs(t, z.MapInPlace(MathAbs), device.ErrUnsupportedConversion)

	nan, err := z.Map(MathIsNaN)
	require.NoError(t, err)
	assert.Equal(t, dtype.Float32, nan.DType())
	assert.Equal(t, []float32{0, 0}, values[float32](t, nan))
}

func TestComplexParts(t *testing.T) {
	rt := newRuntime(t, host.DefaultConfig())
	re := from(t, rt, []float32{1, 2})
	im := from(t, rt, []float32{3, 4})

	z, err := ComplexFromParts(re, im)
	require.NoError(t, err)
	assert.Equal(t, dtype.Complex64, z.DType())
	assert.Equal(t, []complex64{complex(1, 3), complex(2, 4)}, values[complex64](t, z))

	r, err := z.Real()
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2}, values[float32](t, r))

	i, err := z.Imag()
	require.NoError(t, err)
	assert.Equal(t, []float32{3, 4}, values[float32](t, i))

	c, err := z.Conj()
	require.NoError(t, err)
	assert.Equal(t, []complex64{complex(1, -3), complex(2, -4)}, values[complex64](t, c))

	zi, err := re.Imag()
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 0}, values[float32](t, zi))

	rr, err := re.Real()
	require.NoError(t, err)
	assert.Same(t, re.rep, rr.rep)
}

func TestConvert(t *testing.T) {
	rt := newRuntime(t, host.DefaultConfig())
	x := from(t, rt, []float64{-1, 1})

	z, err := x.Convert(dtype.Complex128)
	require.NoError(t, err)
	assert.Equal(t, []complex128{-1, 1}, values[complex128](t, z))

	zi, err := x.ToImaginary()
	require.NoError(t, err)
	assert.Equal(t, []complex128{complex(0, -1), complex(0, 1)}, values[complex128](t, zi))

	_, err = z.ToImaginary()
	assert.ErrorIs(t, err, device.ErrUnsupportedConversion)

	same, err := x.Convert(dtype.Float64)
	require.NoError(t, err)
	assert.Same(t, x.rep, same.rep)

	_, err = x.Convert(dtype.Int32)
	assert.ErrorIs(t, err, device.ErrUnsupportedConversion)

	ints := from(t, rt, []int32{1})
	_, err = ints.ToComplex()
	assert.ErrorIs(t, err, device.ErrUnsupportedConversion)

	arg, err := x.Arg()
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{math.Pi, 0}, values[float64](t, arg), 1e-12)
}
