package array

import (
	"fmt"

	"github.com/born-ml/devarray/internal/device"
	"github.com/born-ml/devarray/internal/dtype"
	"github.com/born-ml/devarray/internal/kernel"
)

// Cmp selects a comparison.
type Cmp int

// Comparisons.
const (
	LT Cmp = kernel.CmpLT
	LE Cmp = kernel.CmpLE
	GT Cmp = kernel.CmpGT
	GE Cmp = kernel.CmpGE
	EQ Cmp = kernel.CmpEQ
	NE Cmp = kernel.CmpNE
)

func (c Cmp) String() string {
	switch c {
	case LT:
		return "<"
	case LE:
		return "<="
	case GT:
		return ">"
	case GE:
		return ">="
	case EQ:
		return "=="
	case NE:
		return "!="
	default:
		return fmt.Sprintf("cmp(%d)", int(c))
	}
}

// conform checks that b can be combined elementwise with a.
func (a *Array) conform(b *Array) error {
	if err := a.assureValid(); err != nil {
		return err
	}
	if err := b.assureValid(); err != nil {
		return err
	}
	if err := a.compatible(b); err != nil {
		return err
	}
	if !a.dims.Equal(b.dims) {
		return fmt.Errorf("%w: %s and %s", device.ErrShapeMismatch, a.dims, b.dims)
	}
	return nil
}

// binary computes op(a, b) into a new array.
func (a *Array) binary(op kernel.Op, b *Array) (*Array, error) {
	if err := a.conform(b); err != nil {
		return nil, err
	}
	return a.produce(op, a.rep.dt, []kernel.Operand{b.operand()}, nil)
}

// withScalar computes op(a, c) into a new array.
func (a *Array) withScalar(op kernel.Op, c any) (*Array, error) {
	if err := a.assureValid(); err != nil {
		return nil, err
	}
	s, err := scalarOf(a.rep.dt, c)
	if err != nil {
		return nil, err
	}
	return a.produce(op, a.rep.dt, nil, []any{s})
}

// produce allocates an array of type out shaped like a and runs op with
// operands (result, a, extra...).
func (a *Array) produce(op kernel.Op, out dtype.DataType, extra []kernel.Operand, scalars []any, params ...int) (*Array, error) {
	rt := a.rep.rt
	res, err := New(rt, out, a.dims...)
	if err != nil {
		return nil, err
	}
	operands := append([]kernel.Operand{res.operand(), a.operand()}, extra...)
	if err := rt.launch(a.rep.dt, op, a.n, operands, scalars, params...); err != nil {
		res.Release()
		return nil, err
	}
	return res, nil
}

// Add returns a + b.
func (a *Array) Add(b *Array) (*Array, error) { return a.binary(kernel.OpAdd2, b) }

// Sub returns a - b.
func (a *Array) Sub(b *Array) (*Array, error) { return a.binary(kernel.OpSub2, b) }

// Mul returns the elementwise product.
func (a *Array) Mul(b *Array) (*Array, error) { return a.binary(kernel.OpMul2, b) }

// Div returns the elementwise quotient. Integer division by zero yields 0.
func (a *Array) Div(b *Array) (*Array, error) { return a.binary(kernel.OpDiv2, b) }

// Pow returns a raised elementwise to b.
func (a *Array) Pow(b *Array) (*Array, error) { return a.binary(kernel.OpPower2, b) }

// Atan2 returns the elementwise four-quadrant arctangent of a/b.
func (a *Array) Atan2(b *Array) (*Array, error) { return a.binary(kernel.OpAtan2, b) }

// Max2 returns the elementwise maximum.
func (a *Array) Max2(b *Array) (*Array, error) { return a.binary(kernel.OpMax2, b) }

// Min2 returns the elementwise minimum.
func (a *Array) Min2(b *Array) (*Array, error) { return a.binary(kernel.OpMin2, b) }

// AddScalar returns a + c.
func (a *Array) AddScalar(c any) (*Array, error) { return a.withScalar(kernel.OpAdd1, c) }

// SubScalar returns a - c.
func (a *Array) SubScalar(c any) (*Array, error) { return a.withScalar(kernel.OpSub1m, c) }

// ScalarSub returns c - a.
func (a *Array) ScalarSub(c any) (*Array, error) { return a.withScalar(kernel.OpSub1s, c) }

// MulScalar returns a * c.
func (a *Array) MulScalar(c any) (*Array, error) { return a.withScalar(kernel.OpMul1, c) }

// DivScalar returns a / c.
func (a *Array) DivScalar(c any) (*Array, error) { return a.withScalar(kernel.OpDiv1n, c) }

// ScalarDiv returns c / a.
func (a *Array) ScalarDiv(c any) (*Array, error) { return a.withScalar(kernel.OpDiv1d, c) }

// PowScalar returns a^c.
func (a *Array) PowScalar(c any) (*Array, error) { return a.withScalar(kernel.OpPower1e, c) }

// ScalarPow returns c^a.
func (a *Array) ScalarPow(c any) (*Array, error) { return a.withScalar(kernel.OpPower1b, c) }

// MaxScalar returns max(a, c) elementwise.
func (a *Array) MaxScalar(c any) (*Array, error) { return a.withScalar(kernel.OpMax1, c) }

// MinScalar returns min(a, c) elementwise.
func (a *Array) MinScalar(c any) (*Array, error) { return a.withScalar(kernel.OpMin1, c) }

// Neg returns -a.
func (a *Array) Neg() (*Array, error) {
	if err := a.assureValid(); err != nil {
		return nil, err
	}
	return a.produce(kernel.OpUminus, a.rep.dt, nil, nil)
}

// ScaleAdd returns a*s + t.
func (a *Array) ScaleAdd(s, t any) (*Array, error) {
	if err := a.assureValid(); err != nil {
		return nil, err
	}
	cs, err := scalarOf(a.rep.dt, s)
	if err != nil {
		return nil, err
	}
	ct, err := scalarOf(a.rep.dt, t)
	if err != nil {
		return nil, err
	}
	return a.produce(kernel.OpFmad1, a.rep.dt, nil, []any{cs, ct})
}

// MulAdd returns a*s + b.
func (a *Array) MulAdd(s any, b *Array) (*Array, error) {
	if err := a.conform(b); err != nil {
		return nil, err
	}
	cs, err := scalarOf(a.rep.dt, s)
	if err != nil {
		return nil, err
	}
	return a.produce(kernel.OpFmad2, a.rep.dt, []kernel.Operand{b.operand()}, []any{cs})
}

func (a *Array) zero() any {
	return dtype.MustCast(a.rep.dt, 0)
}

// Compare returns the logical array of a[i] cmp b[i].
func (a *Array) Compare(cmp Cmp, b *Array) (*Array, error) {
	if err := a.conform(b); err != nil {
		return nil, err
	}
	return a.logicalOf(kernel.OpCompare, b.operand(), a.zero(), int(cmp), kernel.ModeArrayArray)
}

// CompareScalar returns the logical array of a[i] cmp c.
func (a *Array) CompareScalar(cmp Cmp, c any) (*Array, error) {
	return a.compareWith(cmp, c, kernel.ModeArrayScalar)
}

// ScalarCompare returns the logical array of c cmp a[i].
func (a *Array) ScalarCompare(c any, cmp Cmp) (*Array, error) {
	return a.compareWith(cmp, c, kernel.ModeScalarArray)
}

func (a *Array) compareWith(cmp Cmp, c any, mode int) (*Array, error) {
	if err := a.assureValid(); err != nil {
		return nil, err
	}
	s, err := scalarOf(a.rep.dt, c)
	if err != nil {
		return nil, err
	}
	return a.logicalOf(kernel.OpCompare, kernel.Operand{}, s, int(cmp), mode)
}

func (a *Array) logicalOf(op kernel.Op, b kernel.Operand, c any, sel, mode int) (*Array, error) {
	res, err := a.produce(op, a.rep.dt, []kernel.Operand{b}, []any{c}, sel, mode)
	if err != nil {
		return nil, err
	}
	res.logical = true
	return res, nil
}

// And returns the logical conjunction of a and b.
func (a *Array) And(b *Array) (*Array, error) {
	if err := a.conform(b); err != nil {
		return nil, err
	}
	return a.logicalOf(kernel.OpLogic, b.operand(), a.zero(), kernel.LogicAnd, kernel.ModeArrayArray)
}

// Or returns the logical disjunction of a and b.
func (a *Array) Or(b *Array) (*Array, error) {
	if err := a.conform(b); err != nil {
		return nil, err
	}
	return a.logicalOf(kernel.OpLogic, b.operand(), a.zero(), kernel.LogicOr, kernel.ModeArrayArray)
}

// AndScalar returns the logical conjunction of a and c.
func (a *Array) AndScalar(c any) (*Array, error) {
	return a.logicWith(kernel.LogicAnd, c)
}

// OrScalar returns the logical disjunction of a and c.
func (a *Array) OrScalar(c any) (*Array, error) {
	return a.logicWith(kernel.LogicOr, c)
}

func (a *Array) logicWith(sel int, c any) (*Array, error) {
	if err := a.assureValid(); err != nil {
		return nil, err
	}
	s, err := scalarOf(a.rep.dt, c)
	if err != nil {
		return nil, err
	}
	return a.logicalOf(kernel.OpLogic, kernel.Operand{}, s, sel, kernel.ModeArrayScalar)
}

// Not returns the logical negation of a.
func (a *Array) Not() (*Array, error) {
	if err := a.assureValid(); err != nil {
		return nil, err
	}
	return a.logicalOf(kernel.OpLogic, kernel.Operand{}, a.zero(), kernel.LogicNot, kernel.ModeArrayScalar)
}

// inPlace applies op with a as the first input and writes the result back
// into a. The handle's own buffer is written only when it is unshared and
// spans the whole rep; otherwise a gets a fresh result.
func (a *Array) inPlace(op kernel.Op, extra []kernel.Operand, scalars []any) error {
	rt, dt := a.rep.rt, a.rep.dt
	if !a.rep.shared() && a.off == 0 && a.n == a.rep.n {
		operands := append([]kernel.Operand{a.operand(), a.operand()}, extra...)
		return rt.launch(dt, op, a.n, operands, scalars)
	}
	res, err := a.produce(op, dt, extra, scalars)
	if err != nil {
		return err
	}
	a.overwrite(res)
	return nil
}

func (a *Array) inPlaceBinary(op kernel.Op, b *Array) error {
	if err := a.conform(b); err != nil {
		return err
	}
	return a.inPlace(op, []kernel.Operand{b.operand()}, nil)
}

func (a *Array) inPlaceScalar(op kernel.Op, c any) error {
	if err := a.assureValid(); err != nil {
		return err
	}
	s, err := scalarOf(a.rep.dt, c)
	if err != nil {
		return err
	}
	return a.inPlace(op, nil, []any{s})
}

// AddInPlace sets a = a + b.
func (a *Array) AddInPlace(b *Array) error { return a.inPlaceBinary(kernel.OpAdd2, b) }

// SubInPlace sets a = a - b.
func (a *Array) SubInPlace(b *Array) error { return a.inPlaceBinary(kernel.OpSub2, b) }

// MulInPlace sets a = a .* b.
func (a *Array) MulInPlace(b *Array) error { return a.inPlaceBinary(kernel.OpMul2, b) }

// DivInPlace sets a = a ./ b.
func (a *Array) DivInPlace(b *Array) error { return a.inPlaceBinary(kernel.OpDiv2, b) }

// AddScalarInPlace sets a = a + c.
func (a *Array) AddScalarInPlace(c any) error { return a.inPlaceScalar(kernel.OpAdd1, c) }

// SubScalarInPlace sets a = a - c.
func (a *Array) SubScalarInPlace(c any) error { return a.inPlaceScalar(kernel.OpSub1m, c) }

// MulScalarInPlace sets a = a * c.
func (a *Array) MulScalarInPlace(c any) error { return a.inPlaceScalar(kernel.OpMul1, c) }

// DivScalarInPlace sets a = a / c.
func (a *Array) DivScalarInPlace(c any) error { return a.inPlaceScalar(kernel.OpDiv1n, c) }

// MTimes returns the matrix product of two 2-D arrays.
func (a *Array) MTimes(b *Array) (*Array, error) {
	if err := a.assureCurrent(); err != nil {
		return nil, err
	}
	if err := b.assureCurrent(); err != nil {
		return nil, err
	}
	if err := a.compatible(b); err != nil {
		return nil, err
	}
	if len(a.dims) != 2 || len(b.dims) != 2 {
		return nil, fmt.Errorf("%w: matrix product needs 2-D operands, got %s and %s",
			device.ErrShapeMismatch, a.dims, b.dims)
	}
	m, k, n := a.dims[0], a.dims[1], b.dims[1]
	if b.dims[0] != k {
		return nil, fmt.Errorf("%w: matrix product of %s and %s", device.ErrShapeMismatch, a.dims, b.dims)
	}

	rt, dt := a.rep.rt, a.rep.dt
	if m*n == 0 || k == 0 {
		return Zeros(rt, dt, m, n)
	}
	if err := a.assureValid(); err != nil {
		return nil, err
	}
	if err := b.assureValid(); err != nil {
		return nil, err
	}
	res, err := New(rt, dt, m, n)
	if err != nil {
		return nil, err
	}
	if err := rt.launch(dt, kernel.OpMTimes, m*n,
		[]kernel.Operand{res.operand(), a.operand(), b.operand()}, nil, m, k); err != nil {
		res.Release()
		return nil, err
	}
	return res, nil
}
