package kernel

import (
	"fmt"

	"github.com/born-ml/devarray/internal/device"
	"github.com/born-ml/devarray/internal/dtype"
)

// Operand is one buffer argument of a launch: a window of Count elements of
// type DType starting ByteOffset bytes into Buffer. A Count of zero marks
// an optional operand that is absent.
type Operand struct {
	Buffer     device.BufferID
	ByteOffset int
	Count      int
	DType      dtype.DataType
}

// Bytes returns the size of the window in bytes.
func (o Operand) Bytes() int {
	return o.Count * o.DType.Size()
}

// End returns the byte offset just past the window.
func (o Operand) End() int {
	return o.ByteOffset + o.Bytes()
}

// Present reports whether the operand carries a buffer.
func (o Operand) Present() bool {
	return o.Count > 0
}

// Launch is one kernel invocation. Operands, Scalars and Params must match
// Op.Arity(); Work is the number of logical work items.
type Launch struct {
	Op       Op
	Operands []Operand
	Scalars  []any
	Params   []int
	Work     int
}

// Validate checks the launch against the op table.
func (l *Launch) Validate() error {
	if !l.Op.Valid() {
		return fmt.Errorf("kernel: unknown op %d", int(l.Op))
	}
	ar := l.Op.Arity()
	if len(l.Operands) != ar.Buffers || len(l.Scalars) != ar.Scalars || len(l.Params) != ar.Params {
		return fmt.Errorf("kernel: %s expects %d buffers, %d scalars, %d params; got %d, %d, %d",
			l.Op, ar.Buffers, ar.Scalars, ar.Params,
			len(l.Operands), len(l.Scalars), len(l.Params))
	}
	if l.Work < 0 {
		return fmt.Errorf("kernel: %s: negative work size %d", l.Op, l.Work)
	}
	return nil
}
