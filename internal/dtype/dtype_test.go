package dtype

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDataTypeSize(t *testing.T) {
	tests := []struct {
		dt   DataType
		size int
		name string
	}{
		{Int8, 1, "int8"},
		{Uint16, 2, "uint16"},
		{Float32, 4, "float32"},
		{Int64, 8, "int64"},
		{Complex64, 8, "complex64"},
		{Complex128, 16, "complex128"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.size, tt.dt.Size())
			assert.Equal(t, tt.name, tt.dt.String())
		})
	}
}

func TestDataTypeClasses(t *testing.T) {
	assert.True(t, Uint8.IsInteger())
	assert.True(t, Uint8.IsUnsigned())
	assert.False(t, Int8.IsUnsigned())
	assert.True(t, Float64.IsDouble())
	assert.True(t, Complex128.IsDouble())
	assert.False(t, Complex64.IsDouble())
	assert.Equal(t, Float32, Complex64.Real())

	c, ok := Float64.Complex()
	assert.True(t, ok)
	assert.Equal(t, Complex128, c)

	_, ok = Int32.Complex()
	assert.False(t, ok)
}

func TestOf(t *testing.T) {
	assert.Equal(t, Int16, Of[int16]())
	assert.Equal(t, Complex64, Of[complex64]())
	assert.Equal(t, Float64, Of[float64]())
}

func TestCast(t *testing.T) {
	v, err := Cast(Int32, 3.9)
	require.NoError(t, err)
	assert.Equal(t, int32(3), v)

	v, err = Cast(Complex64, 2)
	require.NoError(t, err)
	assert.Equal(t, complex64(2), v)

	v, err = Cast(Uint64, uint64(1<<63+5))
	require.NoError(t, err)
	assert.Equal(t, uint64(1<<63+5), v)

	v, err = Cast(Float64, complex(1.5, 0))
	require.NoError(t, err)
	assert.Equal(t, 1.5, v)

	_, err = Cast(Float64, complex(1, 1))
	assert.ErrorIs(t, err, ErrNotRepresentable)

	_, err = Cast(Int8, "x")
	assert.ErrorIs(t, err, ErrNotRepresentable)
}

func TestParse(t *testing.T) {
	for _, dt := range All {
		got, err := Parse(dt.String())
		require.NoError(t, err)
		assert.Equal(t, dt, got)
	}
	_, err := Parse("bfloat16")
	assert.Error(t, err)
}
