package cpu

import (
	"fmt"
	"unsafe"

	"github.com/born-ml/devarray/internal/device"
	"github.com/born-ml/devarray/internal/kernel"
)

// staging runs kernels for drivers whose memory is not host addressable.
// Before a launch every operand window is read into host scratch memory;
// afterwards the windows are written back.
type staging struct {
	drv     device.Driver
	scratch map[device.BufferID][]byte
}

func newStaging(drv device.Driver) *staging {
	return &staging{drv: drv, scratch: make(map[device.BufferID][]byte)}
}

// Bytes implements Memory for the buffers staged by the running launch.
func (s *staging) Bytes(id device.BufferID) ([]byte, error) {
	buf, ok := s.scratch[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s not staged", device.ErrUnknownBuffer, id)
	}
	return buf, nil
}

type span struct {
	lo, hi int
}

func (s *staging) spans(l *kernel.Launch) map[device.BufferID]span {
	out := make(map[device.BufferID]span)
	for _, o := range l.Operands {
		if !o.Present() {
			continue
		}
		sp, ok := out[o.Buffer]
		if !ok {
			out[o.Buffer] = span{lo: o.ByteOffset, hi: o.End()}
			continue
		}
		out[o.Buffer] = span{lo: min(sp.lo, o.ByteOffset), hi: max(sp.hi, o.End())}
	}
	return out
}

func (s *staging) wrap(fn kernel.Func) kernel.Func {
	return func(l *kernel.Launch) error {
		spans := s.spans(l)
		defer clear(s.scratch)

		for id, sp := range spans {
			buf := alignedScratch(sp.hi)
			if err := s.drv.Read(id, sp.lo, buf[sp.lo:sp.hi]); err != nil {
				return device.Wrap("read", err)
			}
			s.scratch[id] = buf
		}

		if err := fn(l); err != nil {
			return err
		}

		for id, sp := range spans {
			if err := s.drv.Write(id, sp.lo, s.scratch[id][sp.lo:sp.hi]); err != nil {
				return device.Wrap("write", err)
			}
		}
		return nil
	}
}

func alignedScratch(size int) []byte {
	words := make([]complex128, (size+15)/16)
	//nolint:gosec // unsafe.Slice for zero-copy view of the word backing store
	return unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(words))), len(words)*16)[:size:size]
}
