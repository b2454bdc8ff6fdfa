// Copyright 2023-2026 The tvmffi-fixtures Authors. SPDX-License-Identifier: Apache-2.0

package tensorview

import (
	"fmt"
	"slices"
	"unsafe"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/lucifer1004/tvmffi-fixtures/types/shapes"
	"github.com/pkg/errors"
)

var (
	// ErrOutOfBounds is returned when a view would address memory outside its backing buffer.
	ErrOutOfBounds = errors.New("tensor view out of bounds")

	// ErrInvalidSlice is returned for malformed slicing arguments.
	ErrInvalidSlice = errors.New("invalid tensor view slice")
)

// View is the concrete TensorView: a data pointer, an element DType, dimensions and strides.
//
// It doesn't own the memory pointed by data. Views derived from it (see Slice, Reverse and Transpose)
// share the same memory.
type View struct {
	data    unsafe.Pointer
	shape   shapes.Shape
	strides []int
}

// Assert View implements TensorView and shapes.HasShape.
var (
	_ TensorView      = (*View)(nil)
	_ shapes.HasShape = (*View)(nil)
)

// New creates a View over the memory pointed by data.
//
// If strides is nil, the view is contiguous in row-major order, as in DLPack.
// Otherwise len(strides) must match len(dimensions), or it panics.
// It also panics if any dimension is negative.
func New(data unsafe.Pointer, dtype dtypes.DType, dimensions, strides []int) *View {
	shape := shapes.Make(dtype, dimensions...)
	if strides == nil {
		strides = shape.RowMajorStrides()
	} else if len(strides) != len(dimensions) {
		exceptions.Panicf("tensorview.New: got %d strides for %d dimensions (shape %s)", len(strides), len(dimensions), shape)
	} else {
		strides = slices.Clone(strides)
	}
	return &View{data: data, shape: shape, strides: strides}
}

// FromFlat creates a row-major contiguous View over the Go slice flat.
//
// With no dimensions, the view is a scalar pointing to flat[0].
// It returns ErrOutOfBounds if flat is smaller than the shape.
func FromFlat[T dtypes.Supported](flat []T, dimensions ...int) (*View, error) {
	return FromFlatStrided(flat, 0, dimensions, nil)
}

// FromFlatStrided creates a View over the Go slice flat, whose element at logical index 0 is flat[offset],
// with the given dimensions and strides (in elements). If strides is nil, row-major contiguous strides are used.
//
// It validates that every element addressed by the view lies within flat, and returns ErrOutOfBounds otherwise.
func FromFlatStrided[T dtypes.Supported](flat []T, offset int, dimensions, strides []int) (*View, error) {
	dtype := dtypes.FromGenericsType[T]()
	for axis, dim := range dimensions {
		if dim < 0 {
			return nil, errors.Wrapf(ErrInvalidSlice, "axis %d has negative dimension %d", axis, dim)
		}
	}
	if strides != nil && len(strides) != len(dimensions) {
		return nil, errors.Wrapf(ErrInvalidSlice, "got %d strides for %d dimensions", len(strides), len(dimensions))
	}
	v := New(nil, dtype, dimensions, strides)
	if v.NumElements() == 0 {
		v.data = unsafe.Pointer(unsafe.SliceData(flat))
		return v, nil
	}
	lo, hi := v.offsetRange()
	if offset+lo < 0 || offset+hi >= len(flat) {
		return nil, errors.Wrapf(ErrOutOfBounds, "view %s with offset %d and strides %v addresses elements [%d, %d], buffer has %d elements",
			v.shape, offset, v.strides, offset+lo, offset+hi, len(flat))
	}
	v.data = unsafe.Pointer(&flat[offset])
	return v, nil
}

// offsetRange returns the minimum and maximum element offsets addressed by the view, relative to data.
// Only valid if the view is not empty.
func (v *View) offsetRange() (lo, hi int) {
	for axis, dim := range v.shape.Dimensions {
		reach := (dim - 1) * v.strides[axis]
		if reach < 0 {
			lo += reach
		} else {
			hi += reach
		}
	}
	return
}

// NDim returns the number of axes (rank).
func (v *View) NDim() int { return v.shape.Rank() }

// Size returns the dimension of the given axis.
func (v *View) Size(axis int) int { return v.shape.Dim(axis) }

// Stride returns the stride, in elements, of the given axis.
func (v *View) Stride(axis int) int {
	if axis < 0 || axis >= len(v.strides) {
		exceptions.Panicf("View.Stride(%d) out-of-bounds for rank %d", axis, len(v.strides))
	}
	return v.strides[axis]
}

// Strides returns a copy of the view's strides.
func (v *View) Strides() []int { return slices.Clone(v.strides) }

// DataPtr returns the pointer to the element at logical index 0.
func (v *View) DataPtr() unsafe.Pointer { return v.data }

// DType returns the element type.
func (v *View) DType() dtypes.DType { return v.shape.DType }

// Shape returns the view's shape. It implements shapes.HasShape.
func (v *View) Shape() shapes.Shape { return v.shape.Clone() }

// NumElements returns the number of logical elements of the view.
func (v *View) NumElements() int { return v.shape.Size() }

// Offset returns the element offset, relative to DataPtr, of the element at the given
// multi-dimensional index: the dot product of index and strides.
func (v *View) Offset(index []int) int {
	if len(index) != len(v.strides) {
		exceptions.Panicf("View.Offset(%v): index has rank %d, view has rank %d", index, len(index), len(v.strides))
	}
	offset := 0
	for axis, idx := range index {
		offset += idx * v.strides[axis]
	}
	return offset
}

// IsContiguous returns whether the view is laid out in row-major order with no gaps.
// Axes of dimension 1 are ignored since their stride is irrelevant.
func (v *View) IsContiguous() bool {
	want := v.shape.RowMajorStrides()
	for axis, dim := range v.shape.Dimensions {
		if dim != 1 && v.strides[axis] != want[axis] {
			return false
		}
	}
	return true
}

// String implements fmt.Stringer.
func (v *View) String() string {
	return fmt.Sprintf("View%s{strides=%v}", v.shape, v.strides)
}

func (v *View) elementPtr(offset int) unsafe.Pointer {
	return unsafe.Add(v.data, offset*int(v.shape.DType.Memory()))
}

// Slice returns a new View selecting the elements start, start+step, start+2*step, ... along the
// given axis, up to but excluding stop. The returned view shares memory with v.
//
// A negative step walks the axis backwards, in which case start must be greater than stop,
// and stop may be -1 to include element 0. step cannot be 0.
func (v *View) Slice(axis, start, stop, step int) (*View, error) {
	if axis < 0 || axis >= v.NDim() {
		return nil, errors.Wrapf(ErrInvalidSlice, "axis %d out of range for view of rank %d", axis, v.NDim())
	}
	dim := v.shape.Dimensions[axis]
	var count int
	switch {
	case step > 0:
		if start < 0 || stop < start || stop > dim {
			return nil, errors.Wrapf(ErrInvalidSlice, "range [%d:%d:%d] invalid for axis %d of dimension %d", start, stop, step, axis, dim)
		}
		count = (stop - start + step - 1) / step
	case step < 0:
		if stop < -1 || start < stop || (start >= dim && start != stop) {
			return nil, errors.Wrapf(ErrInvalidSlice, "range [%d:%d:%d] invalid for axis %d of dimension %d", start, stop, step, axis, dim)
		}
		count = (start - stop - step - 1) / -step
	default:
		return nil, errors.Wrapf(ErrInvalidSlice, "step cannot be 0")
	}

	sliced := &View{
		data:    v.data,
		shape:   v.shape.Clone(),
		strides: slices.Clone(v.strides),
	}
	sliced.shape.Dimensions[axis] = count
	sliced.strides[axis] = v.strides[axis] * step
	if count > 0 {
		sliced.data = v.elementPtr(start * v.strides[axis])
	}
	return sliced, nil
}

// Reverse returns a new View with the given axis traversed backwards. It shares memory with v.
func (v *View) Reverse(axis int) (*View, error) {
	if axis < 0 || axis >= v.NDim() {
		return nil, errors.Wrapf(ErrInvalidSlice, "axis %d out of range for view of rank %d", axis, v.NDim())
	}
	dim := v.shape.Dimensions[axis]
	return v.Slice(axis, dim-1, -1, -1)
}

// Transpose returns a new View with the order of the axes reversed. It shares memory with v.
//
// The transpose of a row-major view is the column-major (Fortran/Julia order) view of the same
// memory with the dimensions reversed.
func (v *View) Transpose() *View {
	t := &View{
		data:    v.data,
		shape:   v.shape.Clone(),
		strides: slices.Clone(v.strides),
	}
	slices.Reverse(t.shape.Dimensions)
	slices.Reverse(t.strides)
	return t
}
