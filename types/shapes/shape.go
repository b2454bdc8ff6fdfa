// Copyright 2023-2026 The tvmffi-fixtures Authors. SPDX-License-Identifier: Apache-2.0

// Package shapes defines Shape and associated tools.
//
// Shape represents the dtype and dimensions of a tensor view. DType indicates the type
// of the unit element, and is enumerated in github.com/gomlx/gopjrt/dtypes.
//
// ## Glossary
//
//   - Rank: number of axes (dimensions) of a tensor.
//   - Axis: the index of a dimension on a multidimensional tensor.
//   - Dimension: the size of a multi-dimensional tensor in one of its axes.
//   - Stride: how many elements (not bytes) one has to step in memory to move
//     by one along an axis. Strides can be zero or negative for views.
//   - Scalar: a shape with no axes, it holds exactly one value.
//
// Unlike shapes used for computation graphs, a dimension of 0 is valid here: it
// describes an empty tensor, whose Size is 0.
package shapes

import (
	"fmt"
	"math"
	"math/bits"
	"slices"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/pkg/errors"
)

// Shape represents the shape of a tensor view.
//
// Use Make to create a new shape.
type Shape struct {
	DType      dtypes.DType
	Dimensions []int
}

// Make returns a Shape structure filled with the values given.
//
// It panics if any dimension is negative.
func Make(dtype dtypes.DType, dimensions ...int) Shape {
	s := Shape{Dimensions: slices.Clone(dimensions), DType: dtype}
	for _, dim := range dimensions {
		if dim < 0 {
			exceptions.Panicf("shapes.Make(%s): cannot create a shape with an axis with dimension < 0", s)
		}
	}
	return s
}

// HasShape is implemented by objects that have an associated Shape, like tensorview.View
// and Shape itself.
type HasShape interface {
	Shape() Shape
}

// Ok returns whether this is a valid Shape. A "zero" shape, that is just instantiating it with Shape{} will be invalid.
func (s Shape) Ok() bool { return s.DType != dtypes.InvalidDType }

// Rank of the shape, that is, the number of dimensions.
func (s Shape) Rank() int { return len(s.Dimensions) }

// IsEmpty returns whether the shape holds no elements, that is, one of its dimensions is 0.
func (s Shape) IsEmpty() bool { return s.Size() == 0 }

// Dim returns the dimension of the given axis. axis can take negative numbers, in which
// case it counts as starting from the end -- so axis=-1 refers to the last axis.
// Like with a slice indexing, it panics for an out-of-bound axis.
func (s Shape) Dim(axis int) int {
	adjustedAxis := axis
	if adjustedAxis < 0 {
		adjustedAxis += s.Rank()
	}
	if adjustedAxis < 0 || adjustedAxis >= s.Rank() {
		exceptions.Panicf("Shape.Dim(%d) out-of-bounds for rank %d (shape=%s)", axis, s.Rank(), s)
	}
	return s.Dimensions[adjustedAxis]
}

// Shape returns a shallow copy of itself. It implements the HasShape interface.
func (s Shape) Shape() Shape { return s }

// String implements stringer, pretty-prints the shape.
func (s Shape) String() string {
	if s.Rank() == 0 {
		return fmt.Sprintf("(%s)", s.DType)
	}
	return fmt.Sprintf("(%s)%v", s.DType, s.Dimensions)
}

// Size returns the number of elements of DType needed for this shape. It's the product of all dimensions:
// 1 for a scalar, and 0 if any of the dimensions is 0. See CheckedSize for shapes that come from
// outside Go.
func (s Shape) Size() (size int) {
	size = 1
	for _, d := range s.Dimensions {
		size *= d
	}
	return
}

// CheckedSize is like Size, but it returns ok=false if the product of the dimensions overflows an int.
// Dimensions must not be negative.
func (s Shape) CheckedSize() (size int, ok bool) {
	if slices.Contains(s.Dimensions, 0) {
		return 0, true
	}
	size = 1
	for _, d := range s.Dimensions {
		hi, lo := bits.Mul64(uint64(size), uint64(d))
		if hi != 0 || lo > math.MaxInt {
			return 0, false
		}
		size = int(lo)
	}
	return size, true
}

// Memory returns the memory used to store a contiguous array of the given shape, in bytes.
func (s Shape) Memory() uintptr {
	return s.DType.Memory() * uintptr(s.Size())
}

// CheckDims returns an error if the shape doesn't have exactly the given dimensions.
func (s Shape) CheckDims(dimensions ...int) error {
	if s.Rank() != len(dimensions) {
		return errors.Errorf("shape %s has rank %d, wanted %d", s, s.Rank(), len(dimensions))
	}
	for axis, dim := range dimensions {
		if s.Dimensions[axis] != dim {
			return errors.Errorf("shape %s axis %d has dimension %d, wanted %d", s, axis, s.Dimensions[axis], dim)
		}
	}
	return nil
}

// Clone returns a new deep copy of the shape.
func (s Shape) Clone() (s2 Shape) {
	s2.DType = s.DType
	s2.Dimensions = slices.Clone(s.Dimensions)
	return
}

// RowMajorStrides returns the strides, in elements, of a contiguous row-major (C order) layout
// of the shape: the last axis has stride 1.
func (s Shape) RowMajorStrides() []int {
	rank := s.Rank()
	strides := make([]int, rank)
	step := 1
	for axis := rank - 1; axis >= 0; axis-- {
		strides[axis] = step
		step *= max(s.Dimensions[axis], 1)
	}
	return strides
}

// ColMajorStrides returns the strides, in elements, of a contiguous column-major (Fortran/Julia order)
// layout of the shape: the first axis has stride 1.
func (s Shape) ColMajorStrides() []int {
	strides := make([]int, s.Rank())
	step := 1
	for axis, dim := range s.Dimensions {
		strides[axis] = step
		step *= max(dim, 1)
	}
	return strides
}
