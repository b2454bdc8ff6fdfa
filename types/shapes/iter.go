// Copyright 2023-2026 The tvmffi-fixtures Authors. SPDX-License-Identifier: Apache-2.0

package shapes

import "iter"

// Iter iterates over all possible indices of the given shape, in column-major order:
// the first axis changes fastest.
//
// To avoid allocating the slice of indices, the yielded indices is owned by the Iter() method:
// don't change it inside the loop.
//
// A scalar yields exactly one empty index, and a shape with a 0 dimension yields nothing.
func (s Shape) Iter() iter.Seq[[]int] {
	return func(yield func([]int) bool) {
		if !s.Ok() {
			return
		}
		size := s.Size()
		if size <= 0 {
			return
		}
		indices := make([]int, s.Rank())
		for range size {
			if !yield(indices) {
				return
			}
			s.NextIndex(indices)
		}
	}
}

// NextIndex advances indices to the next position in column-major order, like an odometer:
// axis 0 is incremented and, when it reaches its dimension, it is reset to 0 and the carry
// moves on to the next axis.
//
// It returns false if all axes overflowed, that is, indices wrapped back to all zeros.
func (s Shape) NextIndex(indices []int) bool {
	for axis, dim := range s.Dimensions {
		indices[axis]++
		if indices[axis] < dim {
			// No carry-over.
			return true
		}
		indices[axis] = 0
	}
	return false
}
