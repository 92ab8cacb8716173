package array

import (
	"fmt"

	"github.com/born-ml/devarray/internal/device"
	"github.com/born-ml/devarray/internal/dtype"
	"github.com/born-ml/devarray/internal/kernel"
)

// Math names an elementwise function.
type Math int

// Elementwise functions. Not every function exists for every element
// type: integers only support MathAbs and MathSign, complex types lack
// the rounding and special functions.
const (
	MathAbs Math = iota
	MathAcos
	MathAcosh
	MathAsin
	MathAsinh
	MathAtan
	MathAtanh
	MathCbrt
	MathCeil
	MathCos
	MathCosh
	MathErf
	MathErfc
	MathExp
	MathExpm1
	MathFix
	MathFloor
	MathIsFinite
	MathIsInf
	MathIsNaN
	MathLgamma
	MathLog
	MathLog2
	MathLog10
	MathLog1p
	MathRound
	MathSign
	MathSin
	MathSinh
	MathSqrt
	MathTan
	MathTanh
	MathTgamma
	numMath
)

var mathOps = [numMath]kernel.Op{
	MathAbs:      kernel.OpAbs,
	MathAcos:     kernel.OpAcos,
	MathAcosh:    kernel.OpAcosh,
	MathAsin:     kernel.OpAsin,
	MathAsinh:    kernel.OpAsinh,
	MathAtan:     kernel.OpAtan,
	MathAtanh:    kernel.OpAtanh,
	MathCbrt:     kernel.OpCbrt,
	MathCeil:     kernel.OpCeil,
	MathCos:      kernel.OpCos,
	MathCosh:     kernel.OpCosh,
	MathErf:      kernel.OpErf,
	MathErfc:     kernel.OpErfc,
	MathExp:      kernel.OpExp,
	MathExpm1:    kernel.OpExpm1,
	MathFix:      kernel.OpFix,
	MathFloor:    kernel.OpFloor,
	MathIsFinite: kernel.OpIsFinite,
	MathIsInf:    kernel.OpIsInf,
	MathIsNaN:    kernel.OpIsNaN,
	MathLgamma:   kernel.OpLgamma,
	MathLog:      kernel.OpLog,
	MathLog2:     kernel.OpLog2,
	MathLog10:    kernel.OpLog10,
	MathLog1p:    kernel.OpLog1p,
	MathRound:    kernel.OpRound,
	MathSign:     kernel.OpSign,
	MathSin:      kernel.OpSin,
	MathSinh:     kernel.OpSinh,
	MathSqrt:     kernel.OpSqrt,
	MathTan:      kernel.OpTan,
	MathTanh:     kernel.OpTanh,
	MathTgamma:   kernel.OpTgamma,
}

// String returns the function name.
func (m Math) String() string {
	if m < 0 || m >= numMath {
		return fmt.Sprintf("math(%d)", int(m))
	}
	return mathOps[m].String()
}

// mapping resolves fn for dt: the kernel, its result type and whether the
// result holds truth values.
func mapping(fn Math, dt dtype.DataType) (kernel.Op, dtype.DataType, bool, error) {
	if fn < 0 || fn >= numMath {
		return 0, dt, false, fmt.Errorf("%w: %s", device.ErrInvalidArgument, fn)
	}
	op := mathOps[fn]
	truth := fn == MathIsFinite || fn == MathIsInf || fn == MathIsNaN
	if !dt.IsComplex() {
		return op, dt, truth, nil
	}
	switch fn {
	case MathAbs:
		return kernel.OpFabs, dt.Real(), false, nil
	case MathIsFinite, MathIsInf, MathIsNaN:
		return op, dt.Real(), true, nil
	default:
		return op, dt, false, nil
	}
}

// Map returns fn applied to every element. Absolute value and the
// classification functions of complex arrays return the real component
// type.
func (a *Array) Map(fn Math) (*Array, error) {
	if err := a.assureValid(); err != nil {
		return nil, err
	}
	op, out, truth, err := mapping(fn, a.rep.dt)
	if err != nil {
		return nil, err
	}
	res, err := a.produce(op, out, nil, nil)
	if err != nil {
		return nil, err
	}
	res.logical = truth
	return res, nil
}

// MapInPlace applies fn to every element of a. fn must preserve the
// element type.
func (a *Array) MapInPlace(fn Math) error {
	if err := a.assureValid(); err != nil {
		return err
	}
	op, out, truth, err := mapping(fn, a.rep.dt)
	if err != nil {
		return err
	}
	if out != a.rep.dt {
		return fmt.Errorf("%w: %s of %s in place", device.ErrUnsupportedConversion, fn, a.rep.dt)
	}
	if err := a.MakeUnique(); err != nil {
		return err
	}
	if err := a.rep.rt.launch(a.rep.dt, op, a.n, []kernel.Operand{a.operand(), a.operand()}, nil); err != nil {
		return err
	}
	a.logical = truth
	return nil
}

// Abs returns the absolute values; complex input yields magnitudes.
func (a *Array) Abs() (*Array, error) {
	return a.Map(MathAbs)
}

// ToComplex promotes a real floating point array to the matching complex
// type. Complex arrays are returned as shallow copies.
func (a *Array) ToComplex() (*Array, error) {
	return a.promote(kernel.OpReal2ComplexR)
}

// ToImaginary returns the complex array with a as imaginary part.
func (a *Array) ToImaginary() (*Array, error) {
	if err := a.check(); err != nil {
		return nil, err
	}
	if a.rep.dt.IsComplex() {
		return nil, fmt.Errorf("%w: %s is already complex", device.ErrUnsupportedConversion, a.rep.dt)
	}
	return a.promote(kernel.OpReal2ComplexI)
}

func (a *Array) promote(op kernel.Op) (*Array, error) {
	if err := a.assureValid(); err != nil {
		return nil, err
	}
	ct, ok := a.rep.dt.Complex()
	if !ok {
		return nil, fmt.Errorf("%w: %s to complex", device.ErrUnsupportedConversion, a.rep.dt)
	}
	if ct == a.rep.dt {
		return a.Clone(), nil
	}
	rt := a.rep.rt
	res, err := New(rt, ct, a.dims...)
	if err != nil {
		return nil, err
	}
	if err := rt.launch(ct, op, a.n, []kernel.Operand{res.operand(), a.operand()}, nil); err != nil {
		res.Release()
		return nil, err
	}
	return res, nil
}

// ComplexFromParts combines real and imaginary parts of identical
// dimensions and real floating point type into a complex array.
func ComplexFromParts(re, im *Array) (*Array, error) {
	if err := re.conform(im); err != nil {
		return nil, err
	}
	ct, ok := re.rep.dt.Complex()
	if !ok || ct == re.rep.dt {
		return nil, fmt.Errorf("%w: complex from %s parts", device.ErrUnsupportedConversion, re.rep.dt)
	}
	rt := re.rep.rt
	res, err := New(rt, ct, re.dims...)
	if err != nil {
		return nil, err
	}
	if err := rt.launch(ct, kernel.OpReal2ComplexRI, re.n,
		[]kernel.Operand{res.operand(), re.operand(), im.operand()}, nil); err != nil {
		res.Release()
		return nil, err
	}
	return res, nil
}

// Convert returns a with element type dt. Only the identity and the
// promotion of real floating point types to complex are supported.
func (a *Array) Convert(dt dtype.DataType) (*Array, error) {
	if err := a.check(); err != nil {
		return nil, err
	}
	if dt == a.rep.dt {
		return a.Clone(), nil
	}
	if ct, ok := a.rep.dt.Complex(); ok && ct == dt {
		return a.ToComplex()
	}
	return nil, fmt.Errorf("%w: %s to %s", device.ErrUnsupportedConversion, a.rep.dt, dt)
}

// complexPart runs a complex-to-real kernel.
func (a *Array) complexPart(op kernel.Op) (*Array, error) {
	return a.produce(op, a.rep.dt.Real(), nil, nil)
}

// Real returns the real part. Real arrays are returned as shallow copies.
func (a *Array) Real() (*Array, error) {
	if err := a.assureValid(); err != nil {
		return nil, err
	}
	if !a.rep.dt.IsComplex() {
		return a.Clone(), nil
	}
	return a.complexPart(kernel.OpReal)
}

// Imag returns the imaginary part, zeros for real arrays.
func (a *Array) Imag() (*Array, error) {
	if err := a.assureValid(); err != nil {
		return nil, err
	}
	if !a.rep.dt.IsComplex() {
		return Zeros(a.rep.rt, a.rep.dt, a.dims...)
	}
	return a.complexPart(kernel.OpImag)
}

// Arg returns the phase angle. Real floating point arrays are promoted to
// complex first.
func (a *Array) Arg() (*Array, error) {
	if err := a.assureValid(); err != nil {
		return nil, err
	}
	if a.rep.dt.IsComplex() {
		return a.complexPart(kernel.OpArg)
	}
	c, err := a.ToComplex()
	if err != nil {
		return nil, err
	}
	defer c.Release()
	return c.complexPart(kernel.OpArg)
}

// Conj returns the complex conjugate, a shallow copy for real arrays.
func (a *Array) Conj() (*Array, error) {
	if err := a.assureValid(); err != nil {
		return nil, err
	}
	if !a.rep.dt.IsComplex() {
		return a.Clone(), nil
	}
	return a.produce(kernel.OpConj, a.rep.dt, nil, nil)
}
