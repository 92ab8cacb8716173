// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package array

import (
	"io"

	"github.com/born-ml/devarray/device"
	internal "github.com/born-ml/devarray/internal/array"
	"github.com/born-ml/devarray/internal/dtype"
	"github.com/born-ml/devarray/internal/kernel"
)

// Array is a copy-on-write handle to device storage.
type Array = internal.Array

// Runtime binds arrays to a device context and its compiled kernels.
type Runtime = internal.Runtime

// Dims lists array extents, column-major.
type Dims = internal.Dims

// Idx selects positions along one dimension.
type Idx = internal.Idx

// Cmp selects a comparison.
type Cmp = internal.Cmp

// Math selects an elementwise function.
type Math = internal.Math

// DataType is the element type of an array.
type DataType = dtype.DataType

// Element constrains the Go types arrays can hold.
type Element = dtype.Element

// Element types.
const (
	Int8       = dtype.Int8
	Int16      = dtype.Int16
	Int32      = dtype.Int32
	Int64      = dtype.Int64
	Uint8      = dtype.Uint8
	Uint16     = dtype.Uint16
	Uint32     = dtype.Uint32
	Uint64     = dtype.Uint64
	Float32    = dtype.Float32
	Float64    = dtype.Float64
	Complex64  = dtype.Complex64
	Complex128 = dtype.Complex128
)

// Comparisons.
const (
	LT = internal.LT
	LE = internal.LE
	GT = internal.GT
	GE = internal.GE
	EQ = internal.EQ
	NE = internal.NE
)

// Elementwise functions.
const (
	MathAbs      = internal.MathAbs
	MathAcos     = internal.MathAcos
	MathAcosh    = internal.MathAcosh
	MathAsin     = internal.MathAsin
	MathAsinh    = internal.MathAsinh
	MathAtan     = internal.MathAtan
	MathAtanh    = internal.MathAtanh
	MathCbrt     = internal.MathCbrt
	MathCeil     = internal.MathCeil
	MathCos      = internal.MathCos
	MathCosh     = internal.MathCosh
	MathErf      = internal.MathErf
	MathErfc     = internal.MathErfc
	MathExp      = internal.MathExp
	MathExpm1    = internal.MathExpm1
	MathFix      = internal.MathFix
	MathFloor    = internal.MathFloor
	MathIsFinite = internal.MathIsFinite
	MathIsInf    = internal.MathIsInf
	MathIsNaN    = internal.MathIsNaN
	MathLgamma   = internal.MathLgamma
	MathLog      = internal.MathLog
	MathLog2     = internal.MathLog2
	MathLog10    = internal.MathLog10
	MathLog1p    = internal.MathLog1p
	MathRound    = internal.MathRound
	MathSign     = internal.MathSign
	MathSin      = internal.MathSin
	MathSinh     = internal.MathSinh
	MathSqrt     = internal.MathSqrt
	MathTan      = internal.MathTan
	MathTanh     = internal.MathTanh
	MathTgamma   = internal.MathTgamma
)

// NewRuntime returns a runtime running kernels built by compiler (usually
// cpu.New()) on the devices opened by ctx.
func NewRuntime(ctx *device.Context, compiler kernel.Compiler) *Runtime {
	return internal.NewRuntime(ctx, compiler)
}

// MakeDims normalizes extents: at least two entries, trailing ones dropped.
func MakeDims(extents ...int) Dims {
	return internal.MakeDims(extents...)
}

// Empty returns a 0x0 array of type dt.
func Empty(rt *Runtime, dt DataType) *Array {
	return internal.Empty(rt, dt)
}

// New allocates an uninitialized array.
func New(rt *Runtime, dt DataType, dims ...int) (*Array, error) {
	return internal.New(rt, dt, dims...)
}

// Full allocates an array with every element set to value.
func Full(rt *Runtime, dt DataType, value any, dims ...int) (*Array, error) {
	return internal.Full(rt, dt, value, dims...)
}

// Zeros allocates a zero-filled array.
func Zeros(rt *Runtime, dt DataType, dims ...int) (*Array, error) {
	return internal.Zeros(rt, dt, dims...)
}

// Ones allocates an array filled with ones.
func Ones(rt *Runtime, dt DataType, dims ...int) (*Array, error) {
	return internal.Ones(rt, dt, dims...)
}

// FromSlice uploads column-major host data. Without dims the result is a
// column vector.
func FromSlice[T Element](rt *Runtime, data []T, dims ...int) (*Array, error) {
	return internal.FromSlice(rt, data, dims...)
}

// ToSlice downloads the elements of a in column-major order.
func ToSlice[T Element](a *Array) ([]T, error) {
	return internal.ToSlice[T](a)
}

// Load reads a saved array. Persisting device arrays is not supported; the
// result is always empty.
func Load(rt *Runtime, r io.Reader, dt DataType) (*Array, error) {
	return internal.Load(rt, r, dt)
}

// Cat concatenates arrays along dim. Empty arrays are skipped.
func Cat(dim int, arrays ...*Array) (*Array, error) {
	return internal.Cat(dim, arrays...)
}

// Eye returns an r x c identity matrix.
func Eye(rt *Runtime, dt DataType, r, c int) (*Array, error) {
	return internal.Eye(rt, dt, r, c)
}

// Linspace returns n evenly spaced values from base to limit as a row.
func Linspace(rt *Runtime, dt DataType, base, limit any, n int) (*Array, error) {
	return internal.Linspace(rt, dt, base, limit, n)
}

// Logspace returns n values from 10^a to 10^b, evenly spaced in exponent.
func Logspace(rt *Runtime, dt DataType, a, b any, n int) (*Array, error) {
	return internal.Logspace(rt, dt, a, b, n)
}

// Ndgrid replicates each vector along its own dimension of a grid.
func Ndgrid(vectors ...*Array) ([]*Array, error) {
	return internal.Ndgrid(vectors...)
}

// Meshgrid is Ndgrid with the first two dimensions swapped.
func Meshgrid(vectors ...*Array) ([]*Array, error) {
	return internal.Meshgrid(vectors...)
}

// ComplexFromParts combines real and imaginary parts.
func ComplexFromParts(re, im *Array) (*Array, error) {
	return internal.ComplexFromParts(re, im)
}

// All selects a whole dimension.
func All() Idx { return internal.All() }

// At selects one position.
func At(k int) Idx { return internal.At(k) }

// Span selects positions [lo, hi).
func Span(lo, hi int) Idx { return internal.Span(lo, hi) }

// Range selects lo, lo+step, ... up to but excluding stop.
func Range(lo, step, stop int) Idx { return internal.Range(lo, step, stop) }

// List selects the given positions.
func List(k ...int) Idx { return internal.List(k...) }
