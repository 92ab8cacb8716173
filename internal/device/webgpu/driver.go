//go:build windows

// Package webgpu implements a device driver keeping buffers in GPU memory.
// Uses go-webgpu (github.com/go-webgpu/webgpu) for zero-CGO WebGPU bindings.
package webgpu

import (
	"fmt"
	"sync"
	"unsafe"

	"github.com/go-webgpu/webgpu/wgpu"

	"github.com/born-ml/devarray/internal/device"
)

// Name is the driver name reported to the context.
const Name = "webgpu"

// WebGPU copies work on 4-byte granules.
const copyAlign = 4

type gpuBuffer struct {
	buf  *wgpu.Buffer
	size int // requested size; the allocation is rounded up to copyAlign
}

// Driver is a device.Driver on a WebGPU adapter.
type Driver struct {
	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue

	buffers map[device.BufferID]*gpuBuffer
	nextID  device.BufferID
	limit   int
	inUse   int

	mu sync.Mutex
}

// Open requests a high-performance adapter and its default queue.
// limit caps the bytes allocated at once; zero means no cap.
func Open(limit int) (d *Driver, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("webgpu: native library not available: %v", r)
		}
	}()

	instance := wgpu.CreateInstance(nil)
	adapter, adapterErr := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		PowerPreference: wgpu.PowerPreferenceHighPerformance,
	})
	if adapterErr != nil {
		instance.Release()
		return nil, fmt.Errorf("webgpu: failed to request adapter: %w", adapterErr)
	}

	dev, deviceErr := adapter.RequestDevice(nil)
	if deviceErr != nil {
		adapter.Release()
		instance.Release()
		return nil, fmt.Errorf("webgpu: failed to request device: %w", deviceErr)
	}

	queue := dev.GetQueue()
	if queue == nil {
		dev.Release()
		adapter.Release()
		instance.Release()
		return nil, fmt.Errorf("webgpu: failed to get queue")
	}

	return &Driver{
		instance: instance,
		adapter:  adapter,
		device:   dev,
		queue:    queue,
		buffers:  make(map[device.BufferID]*gpuBuffer),
		nextID:   1,
		limit:    limit,
	}, nil
}

// Opener returns a device.Opener for the default adapter.
func Opener(limit int) device.Opener {
	return func() (device.Driver, error) {
		return Open(limit)
	}
}

// Name implements device.Driver.
func (d *Driver) Name() string { return Name }

// FP64 implements device.Driver. WGSL has no double precision type.
func (d *Driver) FP64() bool { return false }

func alignUp(n int) int {
	return (n + copyAlign - 1) &^ (copyAlign - 1)
}

// Alloc implements device.Driver.
func (d *Driver) Alloc(size int) (device.BufferID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.device == nil {
		return 0, device.ErrDriverClosed
	}
	alloc := alignUp(size)
	if d.limit > 0 && d.inUse+alloc > d.limit {
		return 0, fmt.Errorf("%w: %d bytes requested, %d of %d in use",
			device.ErrOutOfDeviceMemory, alloc, d.inUse, d.limit)
	}

	buf := d.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage: wgpu.BufferUsageStorage | wgpu.BufferUsageCopySrc | wgpu.BufferUsageCopyDst,
		Size:  uint64(alloc),
	})
	if buf == nil {
		return 0, fmt.Errorf("%w: device refused %d bytes", device.ErrOutOfDeviceMemory, alloc)
	}

	id := d.nextID
	d.nextID++
	d.buffers[id] = &gpuBuffer{buf: buf, size: size}
	d.inUse += alloc
	return id, nil
}

// Free implements device.Driver.
func (d *Driver) Free(id device.BufferID) {
	d.mu.Lock()
	defer d.mu.Unlock()

	b, ok := d.buffers[id]
	if !ok {
		return
	}
	delete(d.buffers, id)
	d.inUse -= alignUp(b.size)
	b.buf.Release()
}

func (d *Driver) lookup(id device.BufferID, off, n int) (*gpuBuffer, error) {
	if d.device == nil {
		return nil, device.ErrDriverClosed
	}
	b, ok := d.buffers[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", device.ErrUnknownBuffer, id)
	}
	if off < 0 || n < 0 || off+n > b.size {
		return nil, fmt.Errorf("%w: [%d, %d) of %d bytes", device.ErrInvalidBufferRange, off, off+n, b.size)
	}
	return b, nil
}

// Read implements device.Driver through a mapped staging buffer.
func (d *Driver) Read(id device.BufferID, off int, dst []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	b, err := d.lookup(id, off, len(dst))
	if err != nil || len(dst) == 0 {
		return err
	}
	lo, hi := off&^(copyAlign-1), alignUp(off+len(dst))
	data, err := d.readRange(b.buf, lo, hi-lo)
	if err != nil {
		return err
	}
	copy(dst, data[off-lo:])
	return nil
}

// Write implements device.Driver. Unaligned edges are merged with the
// current buffer contents.
func (d *Driver) Write(id device.BufferID, off int, src []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	b, err := d.lookup(id, off, len(src))
	if err != nil || len(src) == 0 {
		return err
	}
	lo, hi := off&^(copyAlign-1), alignUp(off+len(src))
	data := src
	if lo != off || hi != off+len(src) {
		data, err = d.readRange(b.buf, lo, hi-lo)
		if err != nil {
			return err
		}
		copy(data[off-lo:], src)
	}
	d.writeRange(b.buf, lo, data)
	return nil
}

// Copy implements device.Driver.
func (d *Driver) Copy(dst device.BufferID, dstOff int, src device.BufferID, srcOff int, n int) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	to, err := d.lookup(dst, dstOff, n)
	if err != nil {
		return err
	}
	from, err := d.lookup(src, srcOff, n)
	if err != nil || n == 0 {
		return err
	}
	if dstOff%copyAlign == 0 && srcOff%copyAlign == 0 && n%copyAlign == 0 && dst != src {
		encoder := d.device.CreateCommandEncoder(nil)
		encoder.CopyBufferToBuffer(from.buf, uint64(srcOff), to.buf, uint64(dstOff), uint64(n))
		cmd := encoder.Finish(nil)
		d.queue.Submit(cmd)
		return nil
	}

	// Unaligned or overlapping: bounce through host memory.
	lo, hi := srcOff&^(copyAlign-1), alignUp(srcOff+n)
	data, err := d.readRange(from.buf, lo, hi-lo)
	if err != nil {
		return err
	}
	chunk := data[srcOff-lo : srcOff-lo+n]
	wlo, whi := dstOff&^(copyAlign-1), alignUp(dstOff+n)
	merged, err := d.readRange(to.buf, wlo, whi-wlo)
	if err != nil {
		return err
	}
	copy(merged[dstOff-wlo:], chunk)
	d.writeRange(to.buf, wlo, merged)
	return nil
}

// Close implements device.Driver.
func (d *Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.device == nil {
		return device.ErrDriverClosed
	}
	for id, b := range d.buffers {
		b.buf.Release()
		delete(d.buffers, id)
	}
	d.inUse = 0
	d.queue.Release()
	d.device.Release()
	d.adapter.Release()
	d.instance.Release()
	d.queue, d.device, d.adapter, d.instance = nil, nil, nil, nil
	return nil
}

// readRange copies [off, off+size) of buf to the host. off and size are aligned.
func (d *Driver) readRange(buf *wgpu.Buffer, off, size int) ([]byte, error) {
	staging := d.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage: wgpu.BufferUsageMapRead | wgpu.BufferUsageCopyDst,
		Size:  uint64(size),
	})
	defer staging.Release()

	encoder := d.device.CreateCommandEncoder(nil)
	encoder.CopyBufferToBuffer(buf, uint64(off), staging, 0, uint64(size))
	cmd := encoder.Finish(nil)
	d.queue.Submit(cmd)

	if err := staging.MapAsync(d.device, wgpu.MapModeRead, 0, uint64(size)); err != nil {
		return nil, &device.DeviceError{Op: "map", Err: err}
	}
	mapped := staging.GetMappedRange(0, uint64(size))
	//nolint:gosec // unsafe.Slice for zero-copy conversion from unsafe.Pointer
	out := make([]byte, size)
	copy(out, unsafe.Slice((*byte)(mapped), size))
	staging.Unmap()
	return out, nil
}

// writeRange uploads data at off through a buffer mapped at creation.
func (d *Driver) writeRange(buf *wgpu.Buffer, off int, data []byte) {
	size := uint64(len(data))
	upload := d.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage:            wgpu.BufferUsageCopySrc,
		Size:             size,
		MappedAtCreation: wgpu.True,
	})
	defer upload.Release()

	mapped := upload.GetMappedRange(0, size)
	//nolint:gosec // unsafe.Slice for zero-copy conversion from unsafe.Pointer
	copy(unsafe.Slice((*byte)(mapped), size), data)
	upload.Unmap()

	encoder := d.device.CreateCommandEncoder(nil)
	encoder.CopyBufferToBuffer(upload, 0, buf, uint64(off), size)
	cmd := encoder.Finish(nil)
	d.queue.Submit(cmd)
}
