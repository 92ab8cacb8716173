package array

import (
	"bytes"
	"encoding/binary"
	"log/slog"
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

func TestHostRoundTrip(t *testing.T) {
	rt := newRuntime(t, host.DefaultConfig())

	a := from(t, rt, []uint32{1, 2, 3, 4, 5, 6}, 3, 2)
	assert.Equal(t, dtype.Uint32, a.DType())
	assert.Equal(t, 3, a.Rows())
	assert.Equal(t, 2, a.Cols())
	assert.Equal(t, []uint32{1, 2, 3, 4, 5, 6}, values[uint32](t, a))

	raw, err := a.Bytes()
	require.NoError(t, err)
	require.Len(t, raw, 24)
	assert.Equal(t, uint32(6), binary.LittleEndian.Uint32(raw[20:]))

	_, err = ToSlice[int32](a)
	assert.ErrorIs(t, err, device.ErrUnsupportedConversion)

	_, err = FromSlice(rt, []uint32{1, 2, 3}, 2, 2)
	assert.ErrorIs(t, err, device.ErrShapeMismatch)

	_, err = FromSlice(rt, []uint32{1}, -1)
	assert.ErrorIs(t, err, device.ErrInvalidArgument)

	e, err := FromSlice(rt, []float32{}, 0, 4)
	require.NoError(t, err)
	assert.Equal(t, Dims{0, 4}, e.Dims())
	assert.True(t, e.IsEmpty())
}

func TestSaveAndLoadWarn(t *testing.T) {
	var logs bytes.Buffer
	ctx := device.NewContext(host.Opener(host.DefaultConfig(), nil),
		device.WithLogger(logutil.NewLogger(&logs, slog.LevelDebug)))
	t.Cleanup(ctx.Destroy)
	rt := NewRuntime(ctx, cpu.New(parallel.Sequential()))

	a := from(t, rt, []float64{1, 2})
	var out bytes.Buffer
	require.NoError(t, a.Save(&out))
	assert.Zero(t, out.Len())
	assert.Contains(t, logs.String(), "not saved")

	b, err := Load(rt, bytes.NewReader([]byte{1, 2, 3}), dtype.Float64)
	require.NoError(t, err)
	assert.True(t, b.IsEmpty())
	assert.Equal(t, dtype.Float64, b.DType())
	assert.Contains(t, logs.String(), "not loaded")

	a.Release()
	assert.ErrorIs(t, a.Save(&out), device.ErrInoperable)
}
