// Copyright 2023-2026 The tvmffi-fixtures Authors. SPDX-License-Identifier: Apache-2.0

// Package tensorview defines TensorView, a non-owning handle to an N-dimensional array in memory,
// and View, its concrete implementation.
//
// A view is described by a data pointer, a DType, a shape (size per axis) and strides (step, in
// elements, per axis). Strides can have any sign or magnitude, including 0, so the same memory can be
// seen as a full array, a slice, a reversed array or a transposed array without copying.
//
// Views never own the memory they point to: the caller must keep it alive (and, for Go memory,
// reachable) for as long as the view is used.
package tensorview

import (
	"unsafe"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/lucifer1004/tvmffi-fixtures/types/shapes"
)

// TensorView is the interface to an externally owned N-dimensional array.
//
// Size and Stride are indexed by axis, from 0 to NDim()-1.
// Strides are given in elements, not bytes.
type TensorView interface {
	NDim() int
	Size(axis int) int
	Stride(axis int) int
	DataPtr() unsafe.Pointer
	DType() dtypes.DType
}

// ShapeOf returns the shapes.Shape (dtype and dimensions) of any TensorView.
func ShapeOf(v TensorView) shapes.Shape {
	if s, ok := v.(shapes.HasShape); ok {
		return s.Shape()
	}
	dims := make([]int, v.NDim())
	for axis := range dims {
		dims[axis] = v.Size(axis)
	}
	return shapes.Shape{DType: v.DType(), Dimensions: dims}
}

// StridesOf returns the strides of any TensorView, one per axis.
func StridesOf(v TensorView) []int {
	strides := make([]int, v.NDim())
	for axis := range strides {
		strides[axis] = v.Stride(axis)
	}
	return strides
}

// NumElements returns the number of elements addressed by the view: 1 for a scalar and 0 if any axis
// has size 0.
func NumElements(v TensorView) int {
	n := 1
	for axis := range v.NDim() {
		n *= v.Size(axis)
	}
	return n
}
