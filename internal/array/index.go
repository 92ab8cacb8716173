package array

import (
	"fmt"

	"github.com/born-ml/devarray/internal/device"
	"github.com/born-ml/devarray/internal/dtype"
	"github.com/born-ml/devarray/internal/kernel"
)

type idxKind int

const (
	idxColon idxKind = iota
	idxScalar
	idxRange
	idxList
)

// Idx selects positions along one dimension. Positions are 0-based.
type Idx struct {
	kind           idxKind
	lo, step, stop int
	list           []int
}

// All selects the whole dimension.
func All() Idx {
	return Idx{kind: idxColon}
}

// At selects position k.
func At(k int) Idx {
	return Idx{kind: idxScalar, lo: k}
}

// Span selects positions [lo, hi).
func Span(lo, hi int) Idx {
	return Idx{kind: idxRange, lo: lo, step: 1, stop: hi}
}

// Range selects lo, lo+step, ... up to but excluding stop.
func Range(lo, step, stop int) Idx {
	return Idx{kind: idxRange, lo: lo, step: step, stop: stop}
}

// List selects the given positions in order.
func List(k ...int) Idx {
	return Idx{kind: idxList, list: append([]int(nil), k...)}
}

// selector is an Idx resolved against an extent: either a colon, a single
// position, a unit-step run of positions, or none of those.
type selector struct {
	class  idxKind // idxColon, idxScalar, idxRange, or idxList for anything else
	start  int
	length int
}

func (x Idx) positions() []int {
	switch x.kind {
	case idxScalar:
		return []int{x.lo}
	case idxList:
		return x.list
	}
	var out []int
	switch {
	case x.step > 0:
		for k := x.lo; k < x.stop; k += x.step {
			out = append(out, k)
		}
	case x.step < 0:
		for k := x.lo; k > x.stop; k += x.step {
			out = append(out, k)
		}
	}
	return out
}

// resolve classifies x for a dimension of the given extent.
func (x Idx) resolve(extent int) (selector, error) {
	if x.kind == idxColon {
		return selector{class: idxColon, length: extent}, nil
	}
	if x.kind == idxRange && x.step == 0 {
		return selector{}, fmt.Errorf("%w: range with zero step", device.ErrInvalidArgument)
	}

	pos := x.positions()
	for _, k := range pos {
		if k < 0 || k >= extent {
			return selector{}, fmt.Errorf("%w: index %d, extent %d", device.ErrIndexOutOfRange, k, extent)
		}
	}

	switch {
	case len(pos) == 0:
		return selector{class: idxRange}, nil
	case len(pos) == extent && unitStep(pos) && pos[0] == 0:
		return selector{class: idxColon, length: extent}, nil
	case len(pos) == 1:
		return selector{class: idxScalar, start: pos[0], length: 1}, nil
	case unitStep(pos):
		return selector{class: idxRange, start: pos[0], length: len(pos)}, nil
	default:
		return selector{class: idxList, length: len(pos)}, nil
	}
}

func unitStep(pos []int) bool {
	for i := 1; i < len(pos); i++ {
		if pos[i] != pos[i-1]+1 {
			return false
		}
	}
	return true
}

// region is the contiguous window an index pattern selects.
type region struct {
	lo, hi    int  // element range within the handle
	whole     Dims // the handle's dimensions folded to the pattern length
	result    Dims // dimensions of the selection
	allColons bool
}

// locate reduces an index pattern to one contiguous range. Allowed
// patterns are colons, then at most one unit-step range, then scalars.
func (a *Array) locate(idx []Idx) (region, error) {
	n := len(idx)
	dv := a.dims.redim(n)
	if n == 1 {
		dv = dv.redim(2)
	}
	rdv := make(Dims, n)
	if n == 1 {
		rdv = Dims{1, 1}
	}

	reg := region{whole: dv, allColons: true, hi: 1}
	firstRange, firstScalar := -1, -1
	s := 1
	for i, x := range idx {
		sel, err := x.resolve(dv[i])
		if err != nil {
			return region{}, fmt.Errorf("dimension %d: %w", i, err)
		}
		rdv[i] = sel.length

		switch sel.class {
		case idxColon:
			if firstRange >= 0 {
				return region{}, fmt.Errorf("%w: colon after position %d", device.ErrNonContiguousIndex, firstRange)
			}
			reg.hi = s * dv[i]
		case idxRange:
			if firstRange >= 0 || firstScalar >= 0 {
				return region{}, fmt.Errorf("%w: range in dimension %d", device.ErrNonContiguousIndex, i)
			}
			firstRange = i
			reg.allColons = false
			reg.lo = s * sel.start
			reg.hi = s * (sel.start + sel.length)
		case idxScalar:
			if firstScalar < 0 {
				firstScalar = i
			}
			if firstRange < 0 {
				firstRange = i
			}
			reg.allColons = false
			reg.lo += s * sel.start
			reg.hi += s * sel.start
		default:
			return region{}, fmt.Errorf("%w: dimension %d selects scattered positions", device.ErrNonContiguousIndex, i)
		}
		s *= dv[i]
	}

	if n == 1 && (len(a.dims) != 2 || a.dims[1] != 1) {
		rdv = Dims{1, rdv[0]}
	}
	reg.result = rdv.chop()
	if reg.hi < reg.lo {
		reg.hi = reg.lo
	}
	return reg, nil
}

// Index returns a view of the selected elements. Only patterns selecting
// one contiguous range are supported; others fail with
// device.ErrNonContiguousIndex.
func (a *Array) Index(idx ...Idx) (*Array, error) {
	if err := a.assureValid(); err != nil {
		return nil, err
	}
	if len(idx) == 0 {
		return Empty(a.rep.rt, a.rep.dt), nil
	}
	reg, err := a.locate(idx)
	if err != nil {
		return nil, err
	}
	if reg.allColons {
		return a.view(reg.whole.chop(), 0, a.n), nil
	}
	return a.view(reg.result, reg.lo, reg.hi-reg.lo), nil
}

// AssignScalar sets the selected elements to v.
func (a *Array) AssignScalar(idx []Idx, v any) error {
	if err := a.assureValid(); err != nil {
		return err
	}
	if len(idx) == 0 {
		return nil
	}
	reg, err := a.locate(idx)
	if err != nil {
		return err
	}
	if reg.allColons && a.rep.shared() {
		fresh, err := Full(a.rep.rt, a.rep.dt, v, a.dims...)
		if err != nil {
			return err
		}
		a.overwrite(fresh)
		return nil
	}
	if err := a.MakeUnique(); err != nil {
		return err
	}
	return a.fill(reg.lo, reg.hi-reg.lo, v)
}

// Assign copies rhs into the selected elements. rhs must match the
// selection up to singleton dimensions, or hold a single element.
func (a *Array) Assign(idx []Idx, rhs *Array) error {
	if err := a.assureValid(); err != nil {
		return err
	}
	if err := rhs.assureValid(); err != nil {
		return err
	}
	if err := a.compatible(rhs); err != nil {
		return err
	}
	if len(idx) == 0 {
		return nil
	}
	reg, err := a.locate(idx)
	if err != nil {
		return err
	}

	lhsDims, rhsDims := reg.result.chopAll(), rhs.dims.chopAll()
	isFill := rhs.n == 1
	match := rhsDims.Equal(lhsDims)
	if len(idx) == 1 {
		match = rhsDims.NumElements() == lhsDims.NumElements()
	}
	if !match && !isFill {
		return fmt.Errorf("%w: assign %s to %s", device.ErrShapeMismatch, rhs.dims, reg.result)
	}

	switch {
	case isFill:
		if reg.allColons && a.rep.shared() {
			fresh, err := New(a.rep.rt, a.rep.dt, a.dims...)
			if err != nil {
				return err
			}
			a.overwrite(fresh)
		} else if err := a.MakeUnique(); err != nil {
			return err
		}
		n := reg.hi - reg.lo
		return a.rep.rt.launch(a.rep.dt, kernel.OpFill0, n,
			[]kernel.Operand{a.window(reg.lo, n), rhs.operand()}, nil)
	case reg.allColons:
		// The whole array becomes a reshaped view of rhs.
		whole := rhs.view(a.dims.Clone(), 0, rhs.n)
		a.replace(whole)
		return nil
	default:
		if err := a.MakeUnique(); err != nil {
			return err
		}
		return a.rep.copyFromDevice(rhs.rep, rhs.off, a.off+reg.lo, reg.hi-reg.lo)
	}
}

// compatible checks that b can be combined with a.
func (a *Array) compatible(b *Array) error {
	if a.rep.rt != b.rep.rt {
		return device.ErrMixedContexts
	}
	if a.rep.dt != b.rep.dt {
		return fmt.Errorf("%w: %s and %s", device.ErrUnsupportedConversion, a.rep.dt, b.rep.dt)
	}
	return nil
}

// AsIndex converts the elements to Int64 positions, rounding fractions.
func (a *Array) AsIndex() (*Array, error) {
	if err := a.assureValid(); err != nil {
		return nil, err
	}
	if a.rep.dt == dtype.Index {
		return a.Clone(), nil
	}
	if a.rep.dt.IsComplex() {
		return nil, fmt.Errorf("%w: complex values as positions", device.ErrUnsupportedType)
	}
	out, err := New(a.rep.rt, dtype.Index, a.dims...)
	if err != nil {
		return nil, err
	}
	if err := a.rep.rt.launch(a.rep.dt, kernel.OpAsIndex, a.n,
		[]kernel.Operand{out.operand(), a.operand()}, nil); err != nil {
		out.Release()
		return nil, err
	}
	return out, nil
}

// positions returns ia as an Int64 array, converting when needed.
func positions(ia *Array) (*Array, error) {
	if err := ia.assureValid(); err != nil {
		return nil, err
	}
	if ia.rep.dt == dtype.Index {
		return ia.Clone(), nil
	}
	return ia.AsIndex()
}

// IndexBy gathers the elements at the linear positions in ia. The result
// has ia's dimensions; positions outside the array read as zero.
func (a *Array) IndexBy(ia *Array) (*Array, error) {
	if err := a.assureValid(); err != nil {
		return nil, err
	}
	pos, err := positions(ia)
	if err != nil {
		return nil, err
	}
	defer pos.Release()
	if pos.rep.rt != a.rep.rt {
		return nil, device.ErrMixedContexts
	}

	out, err := New(a.rep.rt, a.rep.dt, pos.dims...)
	if err != nil {
		return nil, err
	}
	if err := a.rep.rt.launch(a.rep.dt, kernel.OpIndex, pos.n,
		[]kernel.Operand{out.operand(), a.operand(), pos.operand()}, nil); err != nil {
		out.Release()
		return nil, err
	}
	return out, nil
}

// AssignBy scatters rhs to the linear positions in ia. rhs must hold one
// element per position, or a single element. Positions outside the array
// are skipped; on repeated positions the last write wins.
func (a *Array) AssignBy(ia, rhs *Array) error {
	if err := a.assureValid(); err != nil {
		return err
	}
	if err := rhs.assureValid(); err != nil {
		return err
	}
	if err := a.compatible(rhs); err != nil {
		return err
	}
	pos, err := positions(ia)
	if err != nil {
		return err
	}
	defer pos.Release()

	op := kernel.OpAssign
	switch rhs.n {
	case pos.n:
	case 1:
		op = kernel.OpAssign0
	default:
		return fmt.Errorf("%w: %d positions, %d values", device.ErrShapeMismatch, pos.n, rhs.n)
	}
	if err := a.MakeUnique(); err != nil {
		return err
	}
	return a.rep.rt.launch(a.rep.dt, op, pos.n,
		[]kernel.Operand{a.operand(), rhs.operand(), pos.operand()}, nil)
}

// AssignByScalar sets the elements at the linear positions in ia to v.
func (a *Array) AssignByScalar(ia *Array, v any) error {
	if err := a.assureValid(); err != nil {
		return err
	}
	c, err := scalarOf(a.rep.dt, v)
	if err != nil {
		return err
	}
	pos, err := positions(ia)
	if err != nil {
		return err
	}
	defer pos.Release()

	if err := a.MakeUnique(); err != nil {
		return err
	}
	return a.rep.rt.launch(a.rep.dt, kernel.OpAssignEl, pos.n,
		[]kernel.Operand{a.operand(), pos.operand()}, []any{c})
}

// AssignMask sets the elements where mask is non-zero to v. The mask must
// have the same element type and count as the array.
func (a *Array) AssignMask(mask *Array, v any) error {
	if err := a.assureValid(); err != nil {
		return err
	}
	if err := mask.assureValid(); err != nil {
		return err
	}
	if mask.n != a.n {
		return fmt.Errorf("%w: mask of %d elements for %d", device.ErrShapeMismatch, mask.n, a.n)
	}
	if err := a.compatible(mask); err != nil {
		return err
	}
	c, err := scalarOf(a.rep.dt, v)
	if err != nil {
		return err
	}
	if err := a.MakeUnique(); err != nil {
		return err
	}
	return a.rep.rt.launch(a.rep.dt, kernel.OpAssignElLogind, a.n,
		[]kernel.Operand{a.operand(), mask.operand()}, []any{c})
}
