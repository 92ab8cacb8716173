// Package kernel describes the device kernels array operations dispatch to.
//
// Every kernel is named by an Op. The op table records the kernel name and
// how many buffer operands, scalar arguments and integer parameters a
// launch must carry. Backends compile one Program per element type; the
// Cache builds it on first use and resolves kernels by Op afterwards.
package kernel

import "fmt"

// Op identifies a kernel.
type Op int

// Kernels, grouped by purpose.
const (
	OpFill Op = iota
	OpFill0
	OpEye
	OpLinspace
	OpLogspace
	OpNdgrid1
	OpRepmat1
	OpCat
	OpTranspose
	OpHermitian
	OpAsIndex
	OpIndex
	OpAssignEl
	OpAssign
	OpAssign0
	OpAssignElLogind

	OpFindFirst
	OpFindLast
	OpAll
	OpAny
	OpSum
	OpSumSq
	OpProd
	OpCumSum
	OpCumProd
	OpMean
	OpMeanSq
	OpStd
	OpMax
	OpMin
	OpCumMax
	OpCumMin

	OpMax2
	OpMax1
	OpMin2
	OpMin1
	OpCompare
	OpLogic
	OpFmad1
	OpFmad2
	OpUminus
	OpAdd1
	OpAdd2
	OpSub1m
	OpSub1s
	OpSub2
	OpMul1
	OpMul2
	OpMTimes
	OpDiv1n
	OpDiv1d
	OpDiv2
	OpPower1e
	OpPower1b
	OpPower2
	OpAtan2

	OpAbs
	OpFabs
	OpAcos
	OpAcosh
	OpAsin
	OpAsinh
	OpAtan
	OpAtanh
	OpCbrt
	OpCeil
	OpCos
	OpCosh
	OpErf
	OpErfc
	OpExp
	OpExpm1
	OpFix
	OpFloor
	OpIsFinite
	OpIsInf
	OpIsNaN
	OpLgamma
	OpLog
	OpLog2
	OpLog10
	OpLog1p
	OpRound
	OpSign
	OpSin
	OpSinh
	OpSqrt
	OpTan
	OpTanh
	OpTgamma

	OpReal2ComplexR
	OpReal2ComplexI
	OpReal2ComplexRI
	OpReal
	OpImag
	OpArg
	OpConj

	numOps
)

// Arity is the argument shape of a kernel launch.
type Arity struct {
	Buffers int // buffer operands, destination first
	Scalars int // element-typed scalar arguments
	Params  int // integer parameters
}

type opInfo struct {
	name  string
	arity Arity
}

func a(buffers, scalars, params int) Arity {
	return Arity{Buffers: buffers, Scalars: scalars, Params: params}
}

var (
	unary    = a(2, 0, 0)
	binary   = a(3, 0, 0)
	withScal = a(2, 1, 0)
	dimwise  = a(2, 0, 2) // len, fac
	extremum = a(3, 0, 2) // dst, index (may be empty), src; len, fac
)

var opTable = [numOps]opInfo{
	OpFill:           {"fill", a(1, 1, 0)},
	OpFill0:          {"fill0", a(2, 0, 0)},
	OpEye:            {"eye", a(1, 0, 1)},
	OpLinspace:       {"linspace", a(1, 2, 1)},
	OpLogspace:       {"logspace", a(1, 2, 1)},
	OpNdgrid1:        {"ndgrid1", a(2, 0, 2)},
	OpRepmat1:        {"repmat1", a(2, 0, 3)},
	OpCat:            {"cat", a(2, 0, 3)},
	OpTranspose:      {"transpose", a(2, 0, 2)},
	OpHermitian:      {"hermitian", a(2, 0, 2)},
	OpAsIndex:        {"as_index", unary},
	OpIndex:          {"index", binary},
	OpAssignEl:       {"assign_el", a(2, 1, 0)},
	OpAssign:         {"assign", binary},
	OpAssign0:        {"assign0", binary},
	OpAssignElLogind: {"assign_el_logind", a(2, 1, 0)},

	OpFindFirst: {"findfirst", dimwise},
	OpFindLast:  {"findlast", dimwise},
	OpAll:       {"all", dimwise},
	OpAny:       {"any", dimwise},
	OpSum:       {"sum", dimwise},
	OpSumSq:     {"sumsq", dimwise},
	OpProd:      {"prod", dimwise},
	OpCumSum:    {"cumsum", dimwise},
	OpCumProd:   {"cumprod", dimwise},
	OpMean:      {"mean", dimwise},
	OpMeanSq:    {"meansq", dimwise},
	OpStd:       {"std", a(2, 0, 3)},
	OpMax:       {"max", extremum},
	OpMin:       {"min", extremum},
	OpCumMax:    {"cummax", extremum},
	OpCumMin:    {"cummin", extremum},

	OpMax2:    {"max2", binary},
	OpMax1:    {"max1", withScal},
	OpMin2:    {"min2", binary},
	OpMin1:    {"min1", withScal},
	OpCompare: {"compare", a(3, 1, 2)},
	OpLogic:   {"logic", a(3, 1, 2)},
	OpFmad1:   {"fmad1", a(2, 2, 0)},
	OpFmad2:   {"fmad2", a(3, 1, 0)},
	OpUminus:  {"uminus", unary},
	OpAdd1:    {"add1", withScal},
	OpAdd2:    {"add2", binary},
	OpSub1m:   {"sub1m", withScal},
	OpSub1s:   {"sub1s", withScal},
	OpSub2:    {"sub2", binary},
	OpMul1:    {"mul1", withScal},
	OpMul2:    {"mul2", binary},
	OpMTimes:  {"mtimes", a(3, 0, 2)},
	OpDiv1n:   {"div1n", withScal},
	OpDiv1d:   {"div1d", withScal},
	OpDiv2:    {"div2", binary},
	OpPower1e: {"power1e", withScal},
	OpPower1b: {"power1b", withScal},
	OpPower2:  {"power2", binary},
	OpAtan2:   {"atan2", binary},

	OpAbs:      {"abs", unary},
	OpFabs:     {"fabs", unary},
	OpAcos:     {"acos", unary},
	OpAcosh:    {"acosh", unary},
	OpAsin:     {"asin", unary},
	OpAsinh:    {"asinh", unary},
	OpAtan:     {"atan", unary},
	OpAtanh:    {"atanh", unary},
	OpCbrt:     {"cbrt", unary},
	OpCeil:     {"ceil", unary},
	OpCos:      {"cos", unary},
	OpCosh:     {"cosh", unary},
	OpErf:      {"erf", unary},
	OpErfc:     {"erfc", unary},
	OpExp:      {"exp", unary},
	OpExpm1:    {"expm1", unary},
	OpFix:      {"fix", unary},
	OpFloor:    {"floor", unary},
	OpIsFinite: {"isfinite", unary},
	OpIsInf:    {"isinf", unary},
	OpIsNaN:    {"isnan", unary},
	OpLgamma:   {"lgamma", unary},
	OpLog:      {"log", unary},
	OpLog2:     {"log2", unary},
	OpLog10:    {"log10", unary},
	OpLog1p:    {"log1p", unary},
	OpRound:    {"round", unary},
	OpSign:     {"sign", unary},
	OpSin:      {"sin", unary},
	OpSinh:     {"sinh", unary},
	OpSqrt:     {"sqrt", unary},
	OpTan:      {"tan", unary},
	OpTanh:     {"tanh", unary},
	OpTgamma:   {"tgamma", unary},

	OpReal2ComplexR:  {"real2complex_r", unary},
	OpReal2ComplexI:  {"real2complex_i", unary},
	OpReal2ComplexRI: {"real2complex_ri", binary},
	OpReal:           {"real", unary},
	OpImag:           {"imag", unary},
	OpArg:            {"arg", unary},
	OpConj:           {"conj", unary},
}

// NumOps is the number of kernels in the table.
const NumOps = int(numOps)

// Valid reports whether op names a kernel.
func (op Op) Valid() bool {
	return op >= 0 && op < numOps
}

// String returns the kernel name.
func (op Op) String() string {
	if !op.Valid() {
		return fmt.Sprintf("op(%d)", int(op))
	}
	return opTable[op].name
}

// Arity returns the argument shape a launch of op must have.
func (op Op) Arity() Arity {
	if !op.Valid() {
		return Arity{}
	}
	return opTable[op].arity
}

// Comparison selectors for OpCompare.
const (
	CmpLT = iota
	CmpLE
	CmpGT
	CmpGE
	CmpEQ
	CmpNE
)

// Logic selectors for OpLogic.
const (
	LogicAnd = iota
	LogicOr
	LogicNot
)

// Operand placement selectors for OpCompare and OpLogic.
const (
	ModeArrayScalar = iota // f(a[i], c)
	ModeScalarArray        // f(c, a[i])
	ModeArrayArray         // f(a[i], b[i])
)
