package host

import (
	"errors"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/devarray/internal/device"
)

func TestAllocReadWrite(t *testing.T) {
	d := New(DefaultConfig())

	id, err := d.Alloc(8)
	require.NoError(t, err)
	require.NoError(t, d.Write(id, 2, []byte{1, 2, 3}))

	got := make([]byte, 8)
	require.NoError(t, d.Read(id, 0, got))
	assert.Equal(t, []byte{0, 0, 1, 2, 3, 0, 0, 0}, got)

	err = d.Read(id, 6, make([]byte, 4))
	assert.ErrorIs(t, err, device.ErrInvalidBufferRange)
}

func TestCopyBetweenBuffers(t *testing.T) {
	d := New(DefaultConfig())
	a, err := d.Alloc(4)
	require.NoError(t, err)
	b, err := d.Alloc(4)
	require.NoError(t, err)

	require.NoError(t, d.Write(a, 0, []byte{9, 8, 7, 6}))
	require.NoError(t, d.Copy(b, 1, a, 0, 3))

	got, err := d.Bytes(b)
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 9, 8, 7}, got)
}

func TestCapacity(t *testing.T) {
	d := New(Config{Capacity: 16})

	a, err := d.Alloc(12)
	require.NoError(t, err)

	_, err = d.Alloc(8)
	assert.True(t, IsOutOfMemory(err))

	d.Free(a)
	_, err = d.Alloc(8)
	require.NoError(t, err)
	assert.Equal(t, 8, d.InUse())
	assert.Equal(t, 1, d.Live())

	allocs, frees := d.Counts()
	assert.Equal(t, uint64(2), allocs)
	assert.Equal(t, uint64(1), frees)
}

func TestFailNextAlloc(t *testing.T) {
	d := New(DefaultConfig())
	boom := errors.New("boom")
	d.FailNextAlloc(boom)

	_, err := d.Alloc(4)
	assert.ErrorIs(t, err, boom)

	_, err = d.Alloc(4)
	assert.NoError(t, err)
}

func TestClose(t *testing.T) {
	d := New(DefaultConfig())
	id, err := d.Alloc(4)
	require.NoError(t, err)
	require.NoError(t, d.Close())

	_, err = d.Bytes(id)
	assert.ErrorIs(t, err, device.ErrDriverClosed)
	_, err = d.Alloc(4)
	assert.ErrorIs(t, err, device.ErrDriverClosed)
	assert.ErrorIs(t, d.Close(), device.ErrDriverClosed)
}

func TestBuffersAreAligned(t *testing.T) {
	d := New(DefaultConfig())
	for _, size := range []int{1, 3, 8, 17, 64} {
		id, err := d.Alloc(size)
		require.NoError(t, err)
		buf, err := d.Bytes(id)
		require.NoError(t, err)
		assert.Len(t, buf, size)
		assert.Zero(t, uintptr(unsafe.Pointer(&buf[0]))%8)
	}
}
