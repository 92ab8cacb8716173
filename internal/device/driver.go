package device

import "fmt"

// BufferID is an opaque handle to a block of device memory issued by a Driver.
// Zero is never a valid buffer.
type BufferID uint64

func (id BufferID) String() string {
	return fmt.Sprintf("buf#%d", uint64(id))
}

// Allocator is the part of a Driver the buffer pool needs.
type Allocator interface {
	// Alloc returns a new buffer of exactly size bytes. Running out of
	// device memory must be reported with an error matching
	// ErrOutOfDeviceMemory; any other error is treated as a device failure.
	Alloc(size int) (BufferID, error)
	// Free returns the buffer to the device.
	Free(id BufferID)
}

// Driver is an open connection to one compute device: its memory and its
// in-order command queue. Transfers block until complete.
type Driver interface {
	Allocator

	// Name identifies the device for logs and diagnostics.
	Name() string
	// FP64 reports whether the device supports double precision.
	FP64() bool

	// Write copies src into the buffer starting at byte offset off.
	Write(id BufferID, off int, src []byte) error
	// Read copies len(dst) bytes starting at byte offset off into dst.
	Read(id BufferID, off int, dst []byte) error
	// Copy copies n bytes between two device buffers.
	Copy(dst BufferID, dstOff int, src BufferID, srcOff int, n int) error

	// Close releases the command queue and device context. Buffers still
	// allocated become invalid.
	Close() error
}

// Opener opens a driver when a context is created.
type Opener func() (Driver, error)
