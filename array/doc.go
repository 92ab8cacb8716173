// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package array provides reference-counted, copy-on-write arrays stored in
// device memory.
//
// # Storage model
//
// An Array is a handle: dimensions plus a window into shared storage.
// Clone, Reshape, LinearSlice, Column and Page share the storage of their
// source; the first write through any handle copies the storage if other
// handles still use it. Handles must be released with Release.
//
// Arrays are column-major. Dimensions always have at least two entries and
// trailing singleton dimensions are dropped: a 3-vector is 3x1.
//
// # Basic Usage
//
//	ctx := device.NewContext(device.Host(device.DefaultHostConfig()))
//	defer ctx.Destroy()
//	rt := array.NewRuntime(ctx, cpu.New())
//
//	a, _ := array.FromSlice(rt, []float64{1, 2, 3, 4}, 2, 2)
//	b, _ := a.MTimes(a)
//	s, _ := b.Sum(0)
//	host, _ := array.ToSlice[float64](s)
//
// # Indexing
//
// Index and Assign take one Idx per dimension. Index only accepts patterns
// selecting a contiguous block (it never gathers); IndexBy gathers through
// an index array.
//
//	col, _ := a.Index(array.All(), array.At(1))
//
// # Context lifetime
//
// Destroying the device context invalidates every array allocated under it.
// Operations on such arrays return ErrInoperable; releasing them is a no-op
// on the device.
package array
