// Package host implements a device driver backed by host memory.
//
// It behaves like a discrete accelerator as far as the rest of the module
// can tell: buffers are addressed by id, transfers are explicit and a
// capacity limit produces out-of-memory failures. Kernels of the CPU
// backend read and write its buffers directly through Bytes.
package host

import (
	"errors"
	"fmt"
	"sync"
	"unsafe"

	"github.com/born-ml/devarray/internal/device"
)

// Name is the driver name reported to the context.
const Name = "host"

// Config controls a host driver.
type Config struct {
	// Capacity limits the total bytes allocated at once. Zero means unlimited.
	Capacity int
	// FP64 reports double precision support. Disable it to exercise the
	// single-precision code paths.
	FP64 bool
}

// DefaultConfig returns an unlimited, double-precision capable driver config.
func DefaultConfig() Config {
	return Config{FP64: true}
}

// Driver is a device.Driver keeping buffers in Go memory.
type Driver struct {
	cfg     Config
	buffers map[device.BufferID][]byte
	nextID  device.BufferID
	inUse   int
	closed  bool

	allocs uint64
	frees  uint64

	// failNext makes the next allocations fail with the given error.
	failNext []error

	mu sync.Mutex
}

// New returns an open host driver.
func New(cfg Config) *Driver {
	return &Driver{
		cfg:     cfg,
		buffers: make(map[device.BufferID][]byte),
		nextID:  1,
	}
}

// Opener returns a device.Opener creating a fresh driver per context.
// The most recently opened driver is reported through last when non-nil.
func Opener(cfg Config, last **Driver) device.Opener {
	return func() (device.Driver, error) {
		d := New(cfg)
		if last != nil {
			*last = d
		}
		return d, nil
	}
}

// Name implements device.Driver.
func (d *Driver) Name() string { return Name }

// FP64 implements device.Driver.
func (d *Driver) FP64() bool { return d.cfg.FP64 }

// Alloc implements device.Driver.
func (d *Driver) Alloc(size int) (device.BufferID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return 0, device.ErrDriverClosed
	}
	if len(d.failNext) > 0 {
		err := d.failNext[0]
		d.failNext = d.failNext[1:]
		return 0, err
	}
	if size <= 0 {
		return 0, fmt.Errorf("%w: size %d", device.ErrInvalidArgument, size)
	}
	if d.cfg.Capacity > 0 && d.inUse+size > d.cfg.Capacity {
		return 0, fmt.Errorf("%w: %d bytes requested, %d of %d in use",
			device.ErrOutOfDeviceMemory, size, d.inUse, d.cfg.Capacity)
	}

	id := d.nextID
	d.nextID++
	d.buffers[id] = alignedBytes(size)
	d.inUse += size
	d.allocs++
	return id, nil
}

// Free implements device.Driver. Unknown ids are ignored.
func (d *Driver) Free(id device.BufferID) {
	d.mu.Lock()
	defer d.mu.Unlock()

	buf, ok := d.buffers[id]
	if !ok {
		return
	}
	delete(d.buffers, id)
	d.inUse -= len(buf)
	d.frees++
}

// Write implements device.Driver.
func (d *Driver) Write(id device.BufferID, off int, src []byte) error {
	buf, err := d.region(id, off, len(src))
	if err != nil {
		return err
	}
	copy(buf, src)
	return nil
}

// Read implements device.Driver.
func (d *Driver) Read(id device.BufferID, off int, dst []byte) error {
	buf, err := d.region(id, off, len(dst))
	if err != nil {
		return err
	}
	copy(dst, buf)
	return nil
}

// Copy implements device.Driver. Overlapping ranges are handled like memmove.
func (d *Driver) Copy(dst device.BufferID, dstOff int, src device.BufferID, srcOff int, n int) error {
	to, err := d.region(dst, dstOff, n)
	if err != nil {
		return err
	}
	from, err := d.region(src, srcOff, n)
	if err != nil {
		return err
	}
	copy(to, from)
	return nil
}

// Close implements device.Driver.
func (d *Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return device.ErrDriverClosed
	}
	d.closed = true
	d.buffers = nil
	d.inUse = 0
	return nil
}

// Bytes returns the storage of a buffer for direct kernel access.
func (d *Driver) Bytes(id device.BufferID) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil, device.ErrDriverClosed
	}
	buf, ok := d.buffers[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", device.ErrUnknownBuffer, id)
	}
	return buf, nil
}

// InUse returns the number of bytes currently allocated.
func (d *Driver) InUse() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.inUse
}

// Live returns the number of buffers currently allocated.
func (d *Driver) Live() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.buffers)
}

// Counts returns the total number of allocations and frees.
func (d *Driver) Counts() (allocs, frees uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.allocs, d.frees
}

// FailNextAlloc makes the next allocation fail with err, once per call.
func (d *Driver) FailNextAlloc(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.failNext = append(d.failNext, err)
}

func (d *Driver) region(id device.BufferID, off, n int) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil, device.ErrDriverClosed
	}
	buf, ok := d.buffers[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", device.ErrUnknownBuffer, id)
	}
	if off < 0 || n < 0 || off+n > len(buf) {
		return nil, fmt.Errorf("%w: [%d, %d) of %d bytes",
			device.ErrInvalidBufferRange, off, off+n, len(buf))
	}
	return buf[off : off+n], nil
}

// alignedBytes allocates size bytes aligned for any element type.
func alignedBytes(size int) []byte {
	words := make([]complex128, (size+15)/16)
	//nolint:gosec // unsafe.Slice for zero-copy view of the word backing store
	return unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(words))), len(words)*16)[:size:size]
}

// IsOutOfMemory reports whether err is an out-of-memory condition.
func IsOutOfMemory(err error) bool {
	return errors.Is(err, device.ErrOutOfDeviceMemory)
}
