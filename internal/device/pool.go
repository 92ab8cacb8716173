package device

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/emirpasic/gods/v2/maps/treemap"

	"github.com/born-ml/devarray/internal/logutil"
)

// DefaultMaxPerBucket is the number of released buffers kept per byte size.
const DefaultMaxPerBucket = 3

// BucketInfo describes the retained buffers of one exact byte size.
type BucketInfo struct {
	Size  int
	Count int
}

// PoolStats counts pool activity since creation or the last Reset.
type PoolStats struct {
	Allocations uint64 // buffers obtained from the allocator
	Frees       uint64 // buffers handed back to the allocator
	Hits        uint64 // Obtain served from a bucket
	Misses      uint64 // Obtain that had to allocate
	Evictions   uint64 // buffers freed to make room for an allocation
	Flushes     uint64 // whole-pool flushes after the last assigned release
	Retained    int    // buffers currently kept in buckets
	Assigned    int    // buffers currently handed out
}

// BufferPool recycles device buffers by exact byte size.
//
// Released buffers are kept in per-size LIFO buckets of at most
// MaxPerBucket entries. When allocation fails for lack of memory the
// largest bucket is evicted and the allocation retried. Releasing the last
// handed-out buffer frees everything the pool retains.
type BufferPool struct {
	alloc    Allocator
	buckets  *treemap.Map[int, []BufferID]
	assigned map[BufferID]int
	maxPer   int
	stats    PoolStats
	logger   *slog.Logger

	mu sync.Mutex
}

// NewBufferPool creates an empty pool drawing buffers from alloc.
func NewBufferPool(alloc Allocator, logger *slog.Logger) *BufferPool {
	if logger == nil {
		logger = slog.Default()
	}
	return &BufferPool{
		alloc:    alloc,
		buckets:  treemap.New[int, []BufferID](),
		assigned: make(map[BufferID]int),
		maxPer:   DefaultMaxPerBucket,
		logger:   logger,
	}
}

// attach switches the allocator used for future allocations.
func (p *BufferPool) attach(alloc Allocator) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.alloc = alloc
}

// Obtain returns a buffer of exactly size bytes, reusing a retained one
// when possible.
func (p *BufferPool) Obtain(size int) (BufferID, error) {
	if size <= 0 {
		return 0, fmt.Errorf("%w: buffer size %d", ErrInvalidArgument, size)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.alloc == nil {
		return 0, fmt.Errorf("%w: pool has no allocator", ErrInoperable)
	}

	if ids, ok := p.buckets.Get(size); ok && len(ids) > 0 {
		id := ids[len(ids)-1]
		p.putBucket(size, ids[:len(ids)-1])
		p.assigned[id] = size
		p.stats.Hits++
		logutil.Trace(p.logger, "pool hit", "size", size, "buffer", id)
		return id, nil
	}

	p.stats.Misses++
	id, err := p.allocate(size)
	if err != nil {
		return 0, err
	}
	p.assigned[id] = size
	return id, nil
}

// allocate asks the allocator for a buffer, evicting one buffer of the
// largest retained size after each out-of-memory failure. At most one
// retry per buffer retained on entry is attempted.
func (p *BufferPool) allocate(size int) (BufferID, error) {
	rounds := p.retained()
	for {
		id, err := p.alloc.Alloc(size)
		if err == nil {
			p.stats.Allocations++
			return id, nil
		}
		if !errors.Is(err, ErrOutOfDeviceMemory) {
			return 0, Wrap("alloc", err)
		}
		if rounds == 0 || p.buckets.Empty() {
			return 0, fmt.Errorf("%w: %d bytes", ErrOutOfDeviceMemory, size)
		}
		rounds--
		p.evictLargest()
	}
}

// evictLargest frees the most recently retained buffer of the largest size.
func (p *BufferPool) evictLargest() {
	size, ids, ok := p.buckets.Max()
	if !ok || len(ids) == 0 {
		return
	}
	id := ids[len(ids)-1]
	p.putBucket(size, ids[:len(ids)-1])
	p.free(id)
	p.stats.Evictions++
	p.logger.Debug("pool evicted buffer", "size", size, "buffer", id)
}

// Release hands a buffer back. Unknown buffers are freed right away.
func (p *BufferPool) Release(id BufferID) {
	p.mu.Lock()
	defer p.mu.Unlock()

	size, ok := p.assigned[id]
	if !ok {
		p.free(id)
		return
	}
	delete(p.assigned, id)

	if len(p.assigned) == 0 {
		p.free(id)
		p.flush()
		return
	}

	ids, _ := p.buckets.Get(size)
	if len(ids) >= p.maxPer {
		p.free(id)
		return
	}
	p.putBucket(size, append(ids, id))
}

// flush frees every retained buffer.
func (p *BufferPool) flush() {
	n := 0
	for _, size := range p.buckets.Keys() {
		ids, _ := p.buckets.Get(size)
		for _, id := range ids {
			p.free(id)
		}
		n += len(ids)
	}
	p.buckets.Clear()
	p.stats.Flushes++
	if n > 0 {
		p.logger.Debug("pool flushed", "buffers", n)
	}
}

// Reset forgets all bookkeeping without freeing anything. It is used when
// the device context is destroyed and the buffers died with it.
func (p *BufferPool) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.buckets.Clear()
	p.assigned = make(map[BufferID]int)
	p.stats = PoolStats{}
}

// SetMaxPerBucket changes how many buffers are kept per size. Buckets
// already larger than n shrink on their next release.
func (p *BufferPool) SetMaxPerBucket(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: max buffers per bucket %d", ErrInvalidArgument, n)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.maxPer = n
	return nil
}

// MaxPerBucket returns the per-size retention limit.
func (p *BufferPool) MaxPerBucket() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.maxPer
}

// Buckets lists retained buffer counts by size, smallest size first.
func (p *BufferPool) Buckets() []BucketInfo {
	p.mu.Lock()
	defer p.mu.Unlock()

	keys := p.buckets.Keys()
	out := make([]BucketInfo, 0, len(keys))
	for _, size := range keys {
		ids, _ := p.buckets.Get(size)
		out = append(out, BucketInfo{Size: size, Count: len(ids)})
	}
	return out
}

// Retained returns the number of buffers held in buckets.
func (p *BufferPool) Retained() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.retained()
}

// Assigned returns the number of buffers currently handed out.
func (p *BufferPool) Assigned() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.assigned)
}

// Stats returns a snapshot of the pool counters.
func (p *BufferPool) Stats() PoolStats {
	p.mu.Lock()
	defer p.mu.Unlock()

	s := p.stats
	s.Retained = p.retained()
	s.Assigned = len(p.assigned)
	return s
}

func (p *BufferPool) retained() int {
	n := 0
	for _, ids := range p.buckets.Values() {
		n += len(ids)
	}
	return n
}

func (p *BufferPool) putBucket(size int, ids []BufferID) {
	if len(ids) == 0 {
		p.buckets.Remove(size)
		return
	}
	p.buckets.Put(size, ids)
}

func (p *BufferPool) free(id BufferID) {
	if p.alloc != nil {
		p.alloc.Free(id)
	}
	p.stats.Frees++
}
