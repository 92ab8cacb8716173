package array

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/devarray/internal/device"
	"github.com/born-ml/devarray/internal/device/host"
	"github.com/born-ml/devarray/internal/dtype"
)

// grid returns a 3x4 float64 array with a(i,j) = i + 3j.
func grid(t *testing.T, rt *Runtime) *Array {
	t.Helper()
	data := make([]float64, 12)
	for i := range data {
		data[i] = float64(i)
	}
	return from(t, rt, data, 3, 4)
}

func TestIndexContiguousPatterns(t *testing.T) {
	rt := newRuntime(t, host.DefaultConfig())
	a := grid(t, rt)

	tests := []struct {
		name string
		idx  []Idx
		dims Dims
		want []float64
	}{
		{"column", []Idx{All(), At(2)}, Dims{3, 1}, []float64{6, 7, 8}},
		{"columns", []Idx{All(), Span(1, 3)}, Dims{3, 2}, []float64{3, 4, 5, 6, 7, 8}},
		{"element", []Idx{At(1), At(2)}, Dims{1, 1}, []float64{7}},
		{"full span acts as colon", []Idx{Span(0, 3), At(1)}, Dims{3, 1}, []float64{3, 4, 5}},
		{"range then scalar", []Idx{Span(0, 2), Span(1, 2)}, Dims{2, 1}, []float64{3, 4}},
		{"linear span of a matrix", []Idx{Span(2, 5)}, Dims{1, 3}, []float64{2, 3, 4}},
		{"linear colon", []Idx{All()}, Dims{12, 1}, nil},
		{"all colons", []Idx{All(), All()}, Dims{3, 4}, nil},
		{"empty span", []Idx{All(), Span(2, 2)}, Dims{3, 0}, []float64{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := a.Index(tt.idx...)
			require.NoError(t, err)
			defer v.Release()
			assert.Equal(t, tt.dims, v.Dims())
			assert.Same(t, a.rep, v.rep)
			if tt.want != nil {
				assert.Equal(t, tt.want, values[float64](t, v))
			}
		})
	}
}

func TestIndexRejectsScatteredPatterns(t *testing.T) {
	rt := newRuntime(t, host.DefaultConfig())
	a := grid(t, rt)

	_, err := a.Index(At(1), All())
	assert.ErrorIs(t, err, device.ErrNonContiguousIndex)

	_, err = a.Index(Range(0, 2, 3), All())
	assert.ErrorIs(t, err, device.ErrNonContiguousIndex)

	_, err = a.Index(Span(0, 2), Span(1, 3))
	assert.ErrorIs(t, err, device.ErrNonContiguousIndex)

	_, err = a.Index(List(4), All())
	assert.ErrorIs(t, err, device.ErrIndexOutOfRange)

	_, err = a.Index(Range(0, 0, 2))
	assert.ErrorIs(t, err, device.ErrInvalidArgument)

	e, err := a.Index()
	require.NoError(t, err)
	assert.True(t, e.IsEmpty())
}

func TestIndexColumnVector(t *testing.T) {
	rt := newRuntime(t, host.DefaultConfig())
	c := from(t, rt, []int32{5, 6, 7, 8})

	v, err := c.Index(Span(1, 3))
	require.NoError(t, err)
	assert.Equal(t, Dims{2, 1}, v.Dims())
	assert.Equal(t, []int32{6, 7}, values[int32](t, v))
}

func TestAssignRegion(t *testing.T) {
	rt := newRuntime(t, host.DefaultConfig())
	a := grid(t, rt)
	b := a.Clone()

	rhs := from(t, rt, []float64{100, 101, 102}, 3, 1)
	require.NoError(t, a.Assign([]Idx{All(), At(1)}, rhs))
	assert.Equal(t, []float64{0, 1, 2, 100, 101, 102, 6, 7, 8, 9, 10, 11}, values[float64](t, a))
	assert.Equal(t, float64(3), values[float64](t, b)[3])

	short := from(t, rt, []float64{1, 2}, 2, 1)
	assert.ErrorIs(t, a.Assign([]Idx{All(), At(1)}, short), device.ErrShapeMismatch)

	one := from(t, rt, []float64{-1})
	require.NoError(t, a.Assign([]Idx{At(0), At(0)}, one))
	assert.Equal(t, float64(-1), values[float64](t, a)[0])

	require.NoError(t, a.Assign([]Idx{All(), At(3)}, one))
	assert.Equal(t, []float64{-1, -1, -1}, values[float64](t, a)[9:])

	other := from(t, rt, []float32{1, 2, 3}, 3, 1)
	assert.ErrorIs(t, a.Assign([]Idx{All(), At(1)}, other), device.ErrUnsupportedConversion)
}

func TestAssignWholeArrayTakesRhsStorage(t *testing.T) {
	rt := newRuntime(t, host.DefaultConfig())
	a, err := Zeros(rt, dtype.Float64, 2, 3)
	require.NoError(t, err)
	rhs := from(t, rt, []float64{1, 2, 3, 4, 5, 6}, 2, 3)

	require.NoError(t, a.Assign([]Idx{All(), All()}, rhs))
	assert.Same(t, rhs.rep, a.rep)
	assert.Equal(t, Dims{2, 3}, a.Dims())
	assert.Equal(t, []float64{1, 2, 3, 4, 5, 6}, values[float64](t, a))
}

func TestAssignScalarOnSharedArray(t *testing.T) {
	rt := newRuntime(t, host.DefaultConfig())
	a, err := Full(rt, dtype.Int32, 1, 2, 2)
	require.NoError(t, err)
	b := a.Clone()

	require.NoError(t, b.AssignScalar([]Idx{All(), All()}, 5))
	assert.NotSame(t, a.rep, b.rep)
	assert.Equal(t, []int32{1, 1, 1, 1}, values[int32](t, a))
	assert.Equal(t, []int32{5, 5, 5, 5}, values[int32](t, b))

	require.NoError(t, b.AssignScalar([]Idx{All(), At(1)}, 2))
	assert.Equal(t, []int32{5, 5, 2, 2}, values[int32](t, b))

	_, err = b.Index(At(2), At(0))
	assert.ErrorIs(t, err, device.ErrIndexOutOfRange)
}

func TestIndexBy(t *testing.T) {
	rt := newRuntime(t, host.DefaultConfig())
	a := from(t, rt, []float32{10, 20, 30, 40})

	ia := from(t, rt, []int64{3, 0, 9})
	got, err := a.IndexBy(ia)
	require.NoError(t, err)
	assert.Equal(t, Dims{3, 1}, got.Dims())
	assert.Equal(t, []float32{40, 10, 0}, values[float32](t, got))

	fractional := from(t, rt, []float32{1.2, 2.6}, 1, 2)
	got, err = a.IndexBy(fractional)
	require.NoError(t, err)
	assert.Equal(t, Dims{1, 2}, got.Dims())
	assert.Equal(t, []float32{20, 40}, values[float32](t, got))

	z := from(t, rt, []complex64{1})
	_, err = a.IndexBy(z)
	assert.ErrorIs(t, err, device.ErrUnsupportedType)
}

func TestAssignBy(t *testing.T) {
	rt := newRuntime(t, host.DefaultConfig())
	a, err := Zeros(rt, dtype.Int32, 4)
	require.NoError(t, err)

	ia := from(t, rt, []int64{1, 3})
	require.NoError(t, a.AssignBy(ia, from(t, rt, []int32{7, 8})))
	assert.Equal(t, []int32{0, 7, 0, 8}, values[int32](t, a))

	require.NoError(t, a.AssignByScalar(from(t, rt, []int64{0, 10}), 5))
	assert.Equal(t, []int32{5, 7, 0, 8}, values[int32](t, a))

	require.NoError(t, a.AssignBy(from(t, rt, []int64{2, 3}), from(t, rt, []int32{-1})))
	assert.Equal(t, []int32{5, 7, -1, -1}, values[int32](t, a))

	err = a.AssignBy(ia, from(t, rt, []int32{1, 2, 3}))
	assert.ErrorIs(t, err, device.ErrShapeMismatch)
}

func TestAssignMask(t *testing.T) {
	rt := newRuntime(t, host.DefaultConfig())
	a := from(t, rt, []float32{1, 2, 3, 4})
	view := a.Clone()

	mask, err := a.CompareScalar(GT, 2)
	require.NoError(t, err)
	assert.True(t, mask.IsLogical())

	require.NoError(t, a.AssignMask(mask, 0))
	assert.Equal(t, []float32{1, 2, 0, 0}, values[float32](t, a))
	assert.Equal(t, []float32{1, 2, 3, 4}, values[float32](t, view))

	short := from(t, rt, []float32{1, 0})
	assert.ErrorIs(t, a.AssignMask(short, 0), device.ErrShapeMismatch)
}
