package array

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/devarray/internal/backend/cpu"
	"github.com/born-ml/devarray/internal/device"
	"github.com/born-ml/devarray/internal/device/host"
	"github.com/born-ml/devarray/internal/dtype"
	"github.com/born-ml/devarray/internal/logutil"
	"github.com/born-ml/devarray/internal/parallel"
)

func newRuntime(t *testing.T, cfg host.Config) *Runtime {
	t.Helper()
	ctx := device.NewContext(host.Opener(cfg, nil), device.WithLogger(logutil.Discard()))
	t.Cleanup(ctx.Destroy)
	return NewRuntime(ctx, cpu.New(parallel.Sequential()))
}

func hostDriver(t *testing.T, rt *Runtime) *host.Driver {
	t.Helper()
	drv, ok := rt.Context().Driver().(*host.Driver)
	require.True(t, ok, "no active host driver")
	return drv
}

func from[T dtype.Element](t *testing.T, rt *Runtime, data []T, dims ...int) *Array {
	t.Helper()
	a, err := FromSlice(rt, data, dims...)
	require.NoError(t, err)
	return a
}

func values[T dtype.Element](t *testing.T, a *Array) []T {
	t.Helper()
	out, err := ToSlice[T](a)
	require.NoError(t, err)
	return out
}

func TestCopyOnWrite(t *testing.T) {
	rt := newRuntime(t, host.DefaultConfig())
	a := from(t, rt, []float32{1, 2, 3, 4}, 2, 2)
	b := a.Clone()

	assert.Same(t, a.rep, b.rep)
	assert.Equal(t, int32(2), a.rep.refs.Load())
	assert.True(t, a.IsShared())

	// b(0,1) = 9
	require.NoError(t, b.AssignScalar([]Idx{At(0), At(1)}, 9))
	assert.Equal(t, []float32{1, 2, 9, 4}, values[float32](t, b))
	assert.Equal(t, []float32{1, 2, 3, 4}, values[float32](t, a))
	assert.NotSame(t, a.rep, b.rep)
	assert.False(t, a.IsShared())

	require.NoError(t, a.AssignScalar([]Idx{At(0)}, 7))
	assert.Equal(t, []float32{7, 2, 3, 4}, values[float32](t, a))
	assert.Equal(t, []float32{1, 2, 9, 4}, values[float32](t, b))
}

func TestReshape(t *testing.T) {
	rt := newRuntime(t, host.DefaultConfig())
	a := from(t, rt, []int32{0, 1, 2, 3, 4, 5}, 2, 3)

	r, err := a.Reshape(3, 2)
	require.NoError(t, err)
	assert.Equal(t, Dims{3, 2}, r.Dims())
	assert.Same(t, a.rep, r.rep)
	assert.Equal(t, values[int32](t, a), values[int32](t, r))

	r3, err := a.Reshape(1, 2, 3, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, Dims{1, 2, 3}, r3.Dims())

	_, err = a.Reshape(4, 2)
	assert.ErrorIs(t, err, device.ErrShapeMismatch)
}

func TestLinearSlice(t *testing.T) {
	rt := newRuntime(t, host.DefaultConfig())
	a := from(t, rt, []float64{1, 2, 3, 4, 5, 6})

	s, err := a.LinearSlice(1, 4)
	require.NoError(t, err)
	assert.Equal(t, 3, s.NumElements())
	assert.Equal(t, Dims{3, 1}, s.Dims())
	assert.Equal(t, []float64{2, 3, 4}, values[float64](t, s))

	require.NoError(t, s.Fill(0))
	assert.Equal(t, []float64{0, 0, 0}, values[float64](t, s))
	assert.Equal(t, []float64{1, 2, 3, 4, 5, 6}, values[float64](t, a))

	empty, err := a.LinearSlice(4, 2)
	require.NoError(t, err)
	assert.True(t, empty.IsEmpty())

	_, err = a.LinearSlice(-1, 2)
	assert.ErrorIs(t, err, device.ErrIndexOutOfRange)
	_, err = a.LinearSlice(0, 7)
	assert.ErrorIs(t, err, device.ErrIndexOutOfRange)
}

func TestColumnAndPage(t *testing.T) {
	rt := newRuntime(t, host.DefaultConfig())
	data := make([]int16, 12)
	for i := range data {
		data[i] = int16(i)
	}
	a := from(t, rt, data, 2, 3, 2)

	c, err := a.Column(1)
	require.NoError(t, err)
	assert.Equal(t, []int16{2, 3}, values[int16](t, c))

	c, err = a.Column(5)
	require.NoError(t, err)
	assert.Equal(t, []int16{10, 11}, values[int16](t, c))

	_, err = a.Column(6)
	assert.ErrorIs(t, err, device.ErrIndexOutOfRange)

	p, err := a.Page(1)
	require.NoError(t, err)
	assert.Equal(t, Dims{2, 3}, p.Dims())
	assert.Equal(t, []int16{6, 7, 8, 9, 10, 11}, values[int16](t, p))

	_, err = a.Page(2)
	assert.ErrorIs(t, err, device.ErrIndexOutOfRange)
}

func TestMakeUniqueCopiesWindow(t *testing.T) {
	rt := newRuntime(t, host.DefaultConfig())
	a := from(t, rt, []uint8{1, 2, 3, 4, 5, 6})
	s, err := a.LinearSlice(2, 5)
	require.NoError(t, err)

	require.NoError(t, s.MakeUnique())
	assert.Equal(t, 0, s.off)
	assert.Equal(t, 3, s.rep.n)
	assert.Equal(t, []uint8{3, 4, 5}, values[uint8](t, s))
	assert.False(t, a.IsShared())

	// Unique storage is left alone.
	r := s.rep
	require.NoError(t, s.MakeUnique())
	assert.Same(t, r, s.rep)
}

func TestEconomize(t *testing.T) {
	rt := newRuntime(t, host.DefaultConfig())
	a := from(t, rt, []float32{1, 2, 3, 4, 5, 6})
	s, err := a.LinearSlice(1, 3)
	require.NoError(t, err)
	a.Release()

	assert.False(t, s.IsShared())
	assert.Equal(t, 6, s.rep.n)
	require.NoError(t, s.Economize())
	assert.Equal(t, 2, s.rep.n)
	assert.Equal(t, []float32{2, 3}, values[float32](t, s))
}

func TestEpochInvalidation(t *testing.T) {
	rt := newRuntime(t, host.DefaultConfig())
	ctx := rt.Context()

	a, err := Full(rt, dtype.Float32, 1, 2, 2)
	require.NoError(t, err)
	first := ctx.ActiveEpoch()
	assert.True(t, a.Valid())

	ctx.Destroy()
	assert.False(t, a.Valid())
	_, err = ToSlice[float32](a)
	assert.ErrorIs(t, err, device.ErrInoperable)
	_, err = a.AddScalar(1)
	assert.ErrorIs(t, err, device.ErrInoperable)
	assert.ErrorIs(t, a.AssignScalar([]Idx{All()}, 2), device.ErrInoperable)
	assert.ErrorIs(t, a.Clone().MakeUnique(), device.ErrInoperable)
	assert.ErrorIs(t, a.Economize(), device.ErrInoperable)

	views := map[string]func() (*Array, error){
		"reshape":   func() (*Array, error) { return a.Reshape(4) },
		"as column": a.AsColumn,
		"as matrix": a.AsMatrix,
		"squeeze":   a.Squeeze,
		"mtimes":    func() (*Array, error) { return a.MTimes(a) },
		"mtimes with empty": func() (*Array, error) {
			return Empty(rt, dtype.Float32).MTimes(a)
		},
	}
	for name, op := range views {
		_, err := op()
		assert.ErrorIs(t, err, device.ErrInoperable, name)
	}

	b, err := Full(rt, dtype.Float32, 3, 2, 2)
	require.NoError(t, err)
	assert.Greater(t, ctx.ActiveEpoch(), first)
	assert.True(t, b.Valid())
	assert.False(t, a.Valid())
	assert.Equal(t, []float32{3, 3, 3, 3}, values[float32](t, b))
	assert.Equal(t, 2, rt.Programs().Builds())

	// The stale rep is dropped without touching the new pool.
	pool := ctx.Pool()
	a.Release()
	assert.Equal(t, 1, pool.Assigned())
	assert.Equal(t, 0, pool.Retained())
}

func TestDoublePrecisionGating(t *testing.T) {
	rt := newRuntime(t, host.Config{FP64: false})

	_, err := New(rt, dtype.Float64, 2)
	assert.ErrorIs(t, err, device.ErrUnsupportedType)
	_, err = New(rt, dtype.Complex128, 2)
	assert.ErrorIs(t, err, device.ErrUnsupportedType)

	a, err := Ones(rt, dtype.Float32, 2)
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 1}, values[float32](t, a))

	e := Empty(rt, dtype.Float64)
	assert.True(t, e.IsEmpty())
}

func TestEmptyArray(t *testing.T) {
	rt := newRuntime(t, host.DefaultConfig())
	e := Empty(rt, dtype.Float32)

	assert.Equal(t, device.NoEpoch, rt.Context().ActiveEpoch())
	assert.Equal(t, Dims{0, 0}, e.Dims())
	assert.False(t, e.Valid())

	r, err := e.Reshape(0, 5)
	require.NoError(t, err)
	assert.Equal(t, Dims{0, 5}, r.Dims())

	_, err = e.Sum(-1)
	assert.ErrorIs(t, err, device.ErrInoperable)

	out, err := ToSlice[float32](e)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestReleasedHandle(t *testing.T) {
	rt := newRuntime(t, host.DefaultConfig())
	a := from(t, rt, []int64{1, 2})
	a.Release()
	a.Release()

	_, err := a.Reshape(2, 1)
	assert.ErrorIs(t, err, device.ErrInoperable)
	assert.Equal(t, "Array(released)", a.String())
}

func TestPoolReuseThroughArrays(t *testing.T) {
	rt := newRuntime(t, host.DefaultConfig())
	keep, err := New(rt, dtype.Float32, 1)
	require.NoError(t, err)
	drv := hostDriver(t, rt)

	for range 2 * device.DefaultMaxPerBucket {
		x, err := New(rt, dtype.Float32, 4)
		require.NoError(t, err)
		x.Release()
	}
	allocs, frees := drv.Counts()
	assert.Equal(t, uint64(2), allocs)
	assert.Equal(t, uint64(0), frees)

	// Releasing the last live buffer drains the pool.
	keep.Release()
	allocs, frees = drv.Counts()
	assert.Equal(t, uint64(2), allocs)
	assert.Equal(t, uint64(2), frees)
	assert.Equal(t, 0, rt.Context().Pool().Retained())
}

func TestOutOfDeviceMemory(t *testing.T) {
	rt := newRuntime(t, host.Config{Capacity: 64, FP64: true})
	a, err := New(rt, dtype.Float32, 16)
	require.NoError(t, err)
	defer a.Release()

	_, err = New(rt, dtype.Float32, 1)
	assert.ErrorIs(t, err, device.ErrOutOfDeviceMemory)
}

func TestSqueezeAndMatrixViews(t *testing.T) {
	rt := newRuntime(t, host.DefaultConfig())
	a, err := Zeros(rt, dtype.Int8, 1, 3, 1, 2)
	require.NoError(t, err)

	s, err := a.Squeeze()
	require.NoError(t, err)
	assert.Equal(t, Dims{3, 2}, s.Dims())

	m, err := a.AsMatrix()
	require.NoError(t, err)
	assert.Equal(t, Dims{1, 6}, m.Dims())

	row, err := a.AsRow()
	require.NoError(t, err)
	assert.Equal(t, Dims{1, 6}, row.Dims())

	col, err := a.AsColumn()
	require.NoError(t, err)
	assert.Equal(t, Dims{6, 1}, col.Dims())
}

func TestOverwriteKeepsLogical(t *testing.T) {
	rt := newRuntime(t, host.DefaultConfig())
	x := from(t, rt, []float32{1, 2, 3, 4})
	mask, err := x.CompareScalar(GE, 3)
	require.NoError(t, err)
	require.True(t, mask.IsLogical())

	shared := mask.Clone()
	require.NoError(t, mask.Fill(1))
	assert.True(t, mask.IsLogical())
	assert.Equal(t, []float32{1, 1, 1, 1}, values[float32](t, mask))

	shared2 := mask.Clone()
	require.NoError(t, mask.AssignScalar([]Idx{All()}, 0))
	assert.True(t, mask.IsLogical())

	shared3 := mask.Clone()
	require.NoError(t, mask.AddScalarInPlace(1))
	assert.True(t, mask.IsLogical())
	assert.Equal(t, []float32{1, 1, 1, 1}, values[float32](t, mask))

	assert.True(t, shared.IsLogical())
	assert.Equal(t, []float32{0, 0, 1, 1}, values[float32](t, shared))
	assert.Equal(t, []float32{1, 1, 1, 1}, values[float32](t, shared2))
	assert.Equal(t, []float32{0, 0, 0, 0}, values[float32](t, shared3))
}
