package device

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingAllocator hands out sequential ids within a byte budget.
type countingAllocator struct {
	next     BufferID
	live     map[BufferID]int
	capacity int
	inUse    int
	freed    []BufferID
	failWith error
}

func newCountingAllocator(capacity int) *countingAllocator {
	return &countingAllocator{next: 1, live: map[BufferID]int{}, capacity: capacity}
}

func (a *countingAllocator) Alloc(size int) (BufferID, error) {
	if a.failWith != nil {
		return 0, a.failWith
	}
	if a.capacity > 0 && a.inUse+size > a.capacity {
		return 0, fmt.Errorf("budget exhausted: %w", ErrOutOfDeviceMemory)
	}
	id := a.next
	a.next++
	a.live[id] = size
	a.inUse += size
	return id, nil
}

func (a *countingAllocator) Free(id BufferID) {
	a.freed = append(a.freed, id)
	if size, ok := a.live[id]; ok {
		a.inUse -= size
		delete(a.live, id)
	}
}

func TestPoolObtainRejectsEmpty(t *testing.T) {
	p := NewBufferPool(newCountingAllocator(0), nil)

	_, err := p.Obtain(0)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = p.Obtain(-4)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestPoolReusesReleasedBuffer(t *testing.T) {
	alloc := newCountingAllocator(0)
	p := NewBufferPool(alloc, nil)

	keep, err := p.Obtain(32)
	require.NoError(t, err)
	id, err := p.Obtain(64)
	require.NoError(t, err)

	p.Release(id)
	assert.Equal(t, []BucketInfo{{Size: 64, Count: 1}}, p.Buckets())

	again, err := p.Obtain(64)
	require.NoError(t, err)
	assert.Equal(t, id, again)
	assert.Empty(t, p.Buckets())

	other, err := p.Obtain(48)
	require.NoError(t, err)
	assert.NotEqual(t, id, other)

	s := p.Stats()
	assert.Equal(t, uint64(1), s.Hits)
	assert.Equal(t, uint64(3), s.Misses)
	assert.Equal(t, 3, s.Assigned)
	_ = keep
}

func TestPoolBucketsAreLIFO(t *testing.T) {
	p := NewBufferPool(newCountingAllocator(0), nil)

	keep, err := p.Obtain(8)
	require.NoError(t, err)
	a, err := p.Obtain(16)
	require.NoError(t, err)
	b, err := p.Obtain(16)
	require.NoError(t, err)

	p.Release(a)
	p.Release(b)

	got, err := p.Obtain(16)
	require.NoError(t, err)
	assert.Equal(t, b, got)
	_ = keep
}

func TestPoolLastReleaseFlushes(t *testing.T) {
	alloc := newCountingAllocator(0)
	p := NewBufferPool(alloc, nil)

	a, err := p.Obtain(16)
	require.NoError(t, err)
	b, err := p.Obtain(32)
	require.NoError(t, err)

	p.Release(a)
	assert.Equal(t, 1, p.Retained())

	p.Release(b)
	assert.Zero(t, p.Retained())
	assert.Zero(t, p.Assigned())
	assert.ElementsMatch(t, []BufferID{a, b}, alloc.freed)
	assert.Empty(t, alloc.live)
	assert.Equal(t, uint64(1), p.Stats().Flushes)
}

func TestPoolBucketLimit(t *testing.T) {
	alloc := newCountingAllocator(0)
	p := NewBufferPool(alloc, nil)
	require.NoError(t, p.SetMaxPerBucket(2))
	assert.Equal(t, 2, p.MaxPerBucket())

	keep, err := p.Obtain(4)
	require.NoError(t, err)

	ids := make([]BufferID, 3)
	for i := range ids {
		ids[i], err = p.Obtain(16)
		require.NoError(t, err)
	}
	for _, id := range ids {
		p.Release(id)
	}

	assert.Equal(t, []BucketInfo{{Size: 16, Count: 2}}, p.Buckets())
	assert.Equal(t, []BufferID{ids[2]}, alloc.freed)
	_ = keep

	assert.ErrorIs(t, p.SetMaxPerBucket(-1), ErrInvalidArgument)
}

func TestPoolReleaseUnknownFrees(t *testing.T) {
	alloc := newCountingAllocator(0)
	p := NewBufferPool(alloc, nil)

	p.Release(BufferID(99))
	assert.Equal(t, []BufferID{99}, alloc.freed)
	assert.Zero(t, p.Retained())
}

func TestPoolEvictsLargestOnExhaustion(t *testing.T) {
	alloc := newCountingAllocator(100)
	p := NewBufferPool(alloc, nil)

	keep, err := p.Obtain(10)
	require.NoError(t, err)
	small, err := p.Obtain(20)
	require.NoError(t, err)
	large, err := p.Obtain(40)
	require.NoError(t, err)
	p.Release(small)
	p.Release(large)
	require.Equal(t, 70, alloc.inUse)

	// 30 bytes free: a 50 byte request needs the 40 byte bucket gone.
	id, err := p.Obtain(50)
	require.NoError(t, err)
	assert.NotZero(t, id)
	assert.Equal(t, []BufferID{large}, alloc.freed)
	assert.Equal(t, []BucketInfo{{Size: 20, Count: 1}}, p.Buckets())
	assert.Equal(t, uint64(1), p.Stats().Evictions)
	_ = keep
}

func TestPoolEvictsOneBufferPerRetry(t *testing.T) {
	alloc := newCountingAllocator(400)
	p := NewBufferPool(alloc, nil)

	ids := make([]BufferID, 4)
	for i := range ids {
		id, err := p.Obtain(100)
		require.NoError(t, err)
		ids[i] = id
	}
	for _, id := range ids[1:] {
		p.Release(id)
	}
	require.Equal(t, 3, p.Retained())

	_, err := p.Obtain(50)
	require.NoError(t, err)
	assert.Equal(t, []BufferID{ids[3]}, alloc.freed)
	assert.Equal(t, 2, p.Retained())
	assert.Equal(t, []BucketInfo{{Size: 100, Count: 2}}, p.Buckets())
	assert.Equal(t, uint64(1), p.Stats().Evictions)
}

func TestPoolOutOfMemoryAfterDraining(t *testing.T) {
	alloc := newCountingAllocator(64)
	p := NewBufferPool(alloc, nil)

	keep, err := p.Obtain(32)
	require.NoError(t, err)
	a, err := p.Obtain(16)
	require.NoError(t, err)
	b, err := p.Obtain(8)
	require.NoError(t, err)
	p.Release(a)
	p.Release(b)

	_, err = p.Obtain(48)
	assert.ErrorIs(t, err, ErrOutOfDeviceMemory)
	assert.Empty(t, p.Buckets())
	assert.Equal(t, 1, p.Assigned())
	_ = keep
}

func TestPoolDeviceErrorFailsFast(t *testing.T) {
	alloc := newCountingAllocator(0)
	p := NewBufferPool(alloc, nil)

	keep, err := p.Obtain(8)
	require.NoError(t, err)
	id, err := p.Obtain(16)
	require.NoError(t, err)
	p.Release(id)

	boom := errors.New("device lost")
	alloc.failWith = boom

	_, err = p.Obtain(32)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrOutOfDeviceMemory)

	var de *DeviceError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "alloc", de.Op)

	assert.Equal(t, 1, p.Retained(), "no eviction on device errors")
	_ = keep
}

func TestPoolResetForgetsWithoutFreeing(t *testing.T) {
	alloc := newCountingAllocator(0)
	p := NewBufferPool(alloc, nil)

	a, err := p.Obtain(8)
	require.NoError(t, err)
	b, err := p.Obtain(8)
	require.NoError(t, err)
	p.Release(a)

	p.Reset()
	assert.Zero(t, p.Retained())
	assert.Zero(t, p.Assigned())
	assert.Empty(t, alloc.freed)

	// b is unknown now and goes straight back to the allocator.
	p.Release(b)
	assert.Equal(t, []BufferID{b}, alloc.freed)
}

func TestPoolWithoutAllocator(t *testing.T) {
	p := NewBufferPool(nil, nil)
	_, err := p.Obtain(8)
	assert.ErrorIs(t, err, ErrInoperable)
}
