package array

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"

	"github.com/born-ml/devarray/internal/device"
	"github.com/born-ml/devarray/internal/device/host"
	"github.com/born-ml/devarray/internal/dtype"
)

func TestMaxWithIndexTieBreak(t *testing.T) {
	rt := newRuntime(t, host.DefaultConfig())
	a := from(t, rt, []float32{3, 5, 5, 2}, 1, 4)

	vals, idx, err := a.MaxWithIndex(-1)
	require.NoError(t, err)
	assert.Equal(t, Dims{1, 1}, vals.Dims())
	assert.Equal(t, []float32{5}, values[float32](t, vals))
	assert.Equal(t, []int64{1}, values[int64](t, idx))

	m, err := a.Min(-1)
	require.NoError(t, err)
	assert.Equal(t, []float32{2}, values[float32](t, m))
}

func TestSumAlongDimensions(t *testing.T) {
	rt := newRuntime(t, host.DefaultConfig())
	a := from(t, rt, []int32{1, 2, 3, 4, 5, 6}, 2, 3)

	tests := []struct {
		dim  int
		dims Dims
		want []int32
	}{
		{-1, Dims{1, 3}, []int32{3, 7, 11}},
		{0, Dims{1, 3}, []int32{3, 7, 11}},
		{1, Dims{2, 1}, []int32{9, 12}},
		{2, Dims{2, 3}, []int32{1, 2, 3, 4, 5, 6}},
	}
	for _, tt := range tests {
		s, err := a.Sum(tt.dim)
		require.NoError(t, err)
		assert.Equal(t, tt.dims, s.Dims(), "dim %d", tt.dim)
		assert.Equal(t, tt.want, values[int32](t, s), "dim %d", tt.dim)
	}

	p, err := a.Prod(1)
	require.NoError(t, err)
	assert.Equal(t, []int32{15, 48}, values[int32](t, p))
}

func TestMeanAndSumSq(t *testing.T) {
	rt := newRuntime(t, host.DefaultConfig())
	a := from(t, rt, []float32{1, 2, 3, 4})

	m, err := a.Mean(-1)
	require.NoError(t, err)
	assert.Equal(t, []float32{2.5}, values[float32](t, m))

	sq, err := a.SumSq(-1)
	require.NoError(t, err)
	assert.Equal(t, []float32{30}, values[float32](t, sq))

	msq, err := a.MeanSq(-1)
	require.NoError(t, err)
	assert.Equal(t, []float32{7.5}, values[float32](t, msq))
}

func TestStdMatchesGonum(t *testing.T) {
	rt := newRuntime(t, host.DefaultConfig())
	data := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	a := from(t, rt, data)

	sample, err := a.Std(0, -1)
	require.NoError(t, err)
	assert.InDelta(t, stat.StdDev(data, nil), values[float64](t, sample)[0], 1e-12)

	population, err := a.Std(1, -1)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, values[float64](t, population)[0], 1e-12)

	_, err = a.Std(2, -1)
	assert.ErrorIs(t, err, device.ErrInvalidArgument)

	ints := from(t, rt, []int32{1, 2})
	_, err = ints.Std(0, -1)
	assert.ErrorIs(t, err, device.ErrUnsupportedType)

	z := from(t, rt, []complex64{1, 1i, -1, -1i})
	zs, err := z.Std(1, -1)
	require.NoError(t, err)
	assert.Equal(t, dtype.Float32, zs.DType())
	assert.InDelta(t, 1.0, float64(values[float32](t, zs)[0]), 1e-6)
}

func TestCumulative(t *testing.T) {
	rt := newRuntime(t, host.DefaultConfig())
	a := from(t, rt, []float64{1, 2, 3, 4})

	s, err := a.CumSum(-1)
	require.NoError(t, err)
	assert.Equal(t, Dims{4, 1}, s.Dims())
	assert.Equal(t, []float64{1, 3, 6, 10}, values[float64](t, s))

	p, err := a.CumProd(-1)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 6, 24}, values[float64](t, p))

	b := from(t, rt, []float64{1, 3, 2, 5})
	vals, idx, err := b.CumMaxWithIndex(-1)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 3, 3, 5}, values[float64](t, vals))
	assert.Equal(t, []int64{0, 1, 1, 3}, values[int64](t, idx))

	mins, err := b.CumMin(-1)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 1, 1, 1}, values[float64](t, mins))
}

func TestMinWithIndexAlongRows(t *testing.T) {
	rt := newRuntime(t, host.DefaultConfig())
	a := from(t, rt, []int16{4, 1, 1, 9, 0, 0}, 2, 3)

	vals, idx, err := a.MinWithIndex(1)
	require.NoError(t, err)
	assert.Equal(t, Dims{2, 1}, vals.Dims())
	assert.Equal(t, []int16{0, 0}, values[int16](t, vals))
	assert.Equal(t, []int64{2, 2}, values[int64](t, idx))
}

func TestFindAllAny(t *testing.T) {
	rt := newRuntime(t, host.DefaultConfig())
	a := from(t, rt, []int32{0, 0, 3, 0, 5})

	first, err := a.FindFirst(-1)
	require.NoError(t, err)
	assert.Equal(t, dtype.Int64, first.DType())
	assert.Equal(t, []int64{2}, values[int64](t, first))

	last, err := a.FindLast(-1)
	require.NoError(t, err)
	assert.Equal(t, []int64{4}, values[int64](t, last))

	zeros, err := Zeros(rt, dtype.Int32, 3)
	require.NoError(t, err)
	none, err := zeros.FindFirst(-1)
	require.NoError(t, err)
	assert.Equal(t, []int64{-1}, values[int64](t, none))

	all, err := a.All(-1)
	require.NoError(t, err)
	assert.True(t, all.IsLogical())
	assert.Equal(t, []int32{0}, values[int32](t, all))

	anyNonZero, err := a.Any(-1)
	require.NoError(t, err)
	assert.Equal(t, []int32{1}, values[int32](t, anyNonZero))
}
