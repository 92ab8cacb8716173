package device

import (
	"errors"
	"fmt"
)

// Error kinds reported by device arrays. Match them with errors.Is.
var (
	// ErrInoperable is returned for objects whose context was destroyed,
	// that never had one, or that are permanently empty.
	ErrInoperable = errors.New("device: object is inoperable")

	ErrShapeMismatch         = errors.New("device: shape mismatch")
	ErrNonContiguousIndex    = errors.New("device: index pattern is not contiguous")
	ErrUnsupportedConversion = errors.New("device: unsupported conversion")
	ErrUnsupportedType       = errors.New("device: unsupported element type")
	ErrOutOfDeviceMemory     = errors.New("device: out of device memory")
	ErrIndexOutOfRange       = errors.New("device: index out of range")
	ErrInvalidArgument       = errors.New("device: invalid argument")
	ErrContextActive         = errors.New("device: a context is already active")
	ErrMixedContexts         = errors.New("device: operands belong to different contexts")
)

// Conditions drivers report for bad handles or ranges.
var (
	ErrUnknownBuffer      = errors.New("device: unknown buffer")
	ErrDriverClosed       = errors.New("device: driver closed")
	ErrInvalidBufferRange = errors.New("device: buffer range out of bounds")
)

// DeviceError wraps a failure reported by the device or its driver.
type DeviceError struct {
	Op   string // driver call that failed, e.g. "alloc" or "copy"
	Code int    // driver specific status, 0 when not applicable
	Err  error
}

func (e *DeviceError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("device: %s failed (code %d): %v", e.Op, e.Code, e.Err)
	}
	return fmt.Sprintf("device: %s failed: %v", e.Op, e.Err)
}

func (e *DeviceError) Unwrap() error {
	return e.Err
}

// Wrap tags err with the driver call that produced it. Errors that already
// carry a DeviceError are returned unchanged.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	var de *DeviceError
	if errors.As(err, &de) {
		return err
	}
	return &DeviceError{Op: op, Err: err}
}
