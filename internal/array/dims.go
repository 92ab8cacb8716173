package array

import (
	"fmt"
	"strconv"
	"strings"
)

// Dims holds the extents of a column-major array. A valid Dims has at
// least two entries and no trailing singletons beyond the second.
type Dims []int

// MakeDims builds normalized dimensions: fewer than two extents are padded
// with ones and trailing singletons are dropped.
func MakeDims(extents ...int) Dims {
	d := make(Dims, max(len(extents), 2))
	for i := range d {
		d[i] = 1
	}
	copy(d, extents)
	return d.chop()
}

// chop drops trailing singleton dimensions beyond the second.
func (d Dims) chop() Dims {
	n := len(d)
	for n > 2 && d[n-1] == 1 {
		n--
	}
	return d[:n]
}

// chopAll drops every singleton dimension.
func (d Dims) chopAll() Dims {
	out := make(Dims, 0, len(d))
	for _, v := range d {
		if v != 1 {
			out = append(out, v)
		}
	}
	return out
}

// Validate checks that no extent is negative.
func (d Dims) Validate() error {
	for i, v := range d {
		if v < 0 {
			return fmt.Errorf("invalid dimension at index %d: %d (must be >= 0)", i, v)
		}
	}
	return nil
}

// NumElements returns the product of the extents.
func (d Dims) NumElements() int {
	n := 1
	for _, v := range d {
		n *= v
	}
	return n
}

// numelFrom is the product of the extents from dimension k on.
func (d Dims) numelFrom(k int) int {
	n := 1
	for i := k; i < len(d); i++ {
		n *= d[i]
	}
	return n
}

// Equal reports whether both have the same extents.
func (d Dims) Equal(other Dims) bool {
	if len(d) != len(other) {
		return false
	}
	for i := range d {
		if d[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy of d.
func (d Dims) Clone() Dims {
	out := make(Dims, len(d))
	copy(out, d)
	return out
}

// redim returns d with exactly n entries. Missing extents are ones;
// surplus trailing extents fold into the last kept one.
func (d Dims) redim(n int) Dims {
	out := make(Dims, n)
	for i := range out {
		switch {
		case i >= len(d):
			out[i] = 1
		case i == n-1:
			out[i] = d.numelFrom(i)
		default:
			out[i] = d[i]
		}
	}
	return out
}

// at returns extent k, treating missing dimensions as singletons.
func (d Dims) at(k int) int {
	if k < len(d) {
		return d[k]
	}
	return 1
}

// firstNonSingleton returns the first dimension with an extent other
// than one, or 0.
func (d Dims) firstNonSingleton() int {
	for i, v := range d {
		if v != 1 {
			return i
		}
	}
	return 0
}

// IsVector reports whether d is 1 x n or n x 1.
func (d Dims) IsVector() bool {
	return len(d) == 2 && (d[0] == 1 || d[1] == 1)
}

// String formats d as "2x3x4".
func (d Dims) String() string {
	parts := make([]string, len(d))
	for i, v := range d {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, "x")
}
