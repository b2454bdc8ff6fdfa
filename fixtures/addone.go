// Copyright 2023-2026 The tvmffi-fixtures Authors. SPDX-License-Identifier: Apache-2.0

package fixtures

import (
	"unsafe"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/lucifer1004/tvmffi-fixtures/ffi"
	"github.com/lucifer1004/tvmffi-fixtures/types/shapes"
	"github.com/lucifer1004/tvmffi-fixtures/types/tensorview"
	"github.com/pkg/errors"
)

// AddOneName is the name under which AddOne is registered and exported.
const AddOneName = "add_one_cpu"

var (
	// ErrShapeMismatch is returned when input and output don't have the same dimensions.
	ErrShapeMismatch = errors.New("shape mismatch")

	// ErrUnsupportedDType is returned when a tensor is not float32.
	ErrUnsupportedDType = errors.New("unsupported dtype")

	// ErrNullBuffer is returned when a non-empty tensor has no data.
	ErrNullBuffer = errors.New("null buffer")
)

func init() {
	ffi.Register(AddOneName, ffi.Func2(AddOne))
}

// AddOne writes output[idx] = input[idx] + 1 for every multi-dimensional index idx of the input.
//
// Both views must be float32 and have the same dimensions, but each is addressed with its own strides,
// so any combination of contiguous, sliced, reversed or transposed views works. Elements are visited
// in column-major order (axis 0 fastest). input and output may point to the same memory.
//
// It returns ErrUnsupportedDType, ErrShapeMismatch or ErrNullBuffer (possibly wrapped) without
// writing anything if the views are not valid.
func AddOne(input, output tensorview.TensorView) error {
	shape, err := validateUnary(input, output)
	if err != nil {
		return errors.WithMessage(err, AddOneName)
	}
	addOneStrided(shape, input, output)
	return nil
}

// validateUnary checks that input and output can be used by an element-wise float32 function and
// returns their common shape.
func validateUnary(input, output tensorview.TensorView) (shape shapes.Shape, err error) {
	if input == nil || output == nil {
		err = errors.Wrapf(ErrNullBuffer, "nil tensor view (input=%v, output=%v)", input != nil, output != nil)
		return
	}
	shape = tensorview.ShapeOf(input)
	outShape := tensorview.ShapeOf(output)
	for _, named := range []struct {
		name string
		s    shapes.Shape
	}{{"input", shape}, {"output", outShape}} {
		name, s := named.name, named.s
		if s.DType != dtypes.Float32 {
			err = errors.Wrapf(ErrUnsupportedDType, "%s has dtype %s, only %s is supported", name, s.DType, dtypes.Float32)
			return
		}
		for axis, dim := range s.Dimensions {
			if dim < 0 {
				err = errors.Wrapf(ErrShapeMismatch, "%s axis %d has negative dimension %d", name, axis, dim)
				return
			}
		}
	}
	if err = outShape.CheckDims(shape.Dimensions...); err != nil {
		err = errors.Wrapf(ErrShapeMismatch, "input %s vs output %s: %v", shape, outShape, err)
		return
	}
	if !shape.IsEmpty() {
		if input.DataPtr() == nil {
			err = errors.Wrapf(ErrNullBuffer, "input %s has no data", shape)
		} else if output.DataPtr() == nil {
			err = errors.Wrapf(ErrNullBuffer, "output %s has no data", outShape)
		}
	}
	return
}

// addOneStrided is the unchecked kernel: shape must be the common shape of input and output.
func addOneStrided(shape shapes.Shape, input, output tensorview.TensorView) {
	if shape.IsEmpty() {
		return
	}
	numel := shape.Size()
	inData, outData := input.DataPtr(), output.DataPtr()
	inStrides, outStrides := tensorview.StridesOf(input), tensorview.StridesOf(output)
	indices := make([]int, shape.Rank())
	for range numel {
		var inOffset, outOffset int
		for axis, idx := range indices {
			inOffset += idx * inStrides[axis]
			outOffset += idx * outStrides[axis]
		}
		*float32At(outData, outOffset) = *float32At(inData, inOffset) + 1
		shape.NextIndex(indices)
	}
}

// float32At returns a pointer to the element at the given offset (in elements) from data.
func float32At(data unsafe.Pointer, offset int) *float32 {
	return (*float32)(unsafe.Add(data, offset*4))
}
