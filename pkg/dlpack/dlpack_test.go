// Copyright 2023-2026 The tvmffi-fixtures Authors. SPDX-License-Identifier: Apache-2.0

package dlpack

import (
	"testing"
	"unsafe"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/janpfeifer/must"
	"github.com/lucifer1004/tvmffi-fixtures/fixtures"
	"github.com/lucifer1004/tvmffi-fixtures/types/tensorview"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayout(t *testing.T) {
	if unsafe.Sizeof(uintptr(0)) != 8 {
		t.Skip("DLTensor layout only checked on 64-bit platforms")
	}
	// Offsets of the C struct DLTensor on 64-bit platforms.
	var tensor Tensor
	assert.Equal(t, uintptr(48), unsafe.Sizeof(tensor))
	assert.Equal(t, uintptr(0), unsafe.Offsetof(tensor.Data))
	assert.Equal(t, uintptr(8), unsafe.Offsetof(tensor.Device))
	assert.Equal(t, uintptr(16), unsafe.Offsetof(tensor.NDim))
	assert.Equal(t, uintptr(20), unsafe.Offsetof(tensor.DType))
	assert.Equal(t, uintptr(24), unsafe.Offsetof(tensor.Shape))
	assert.Equal(t, uintptr(32), unsafe.Offsetof(tensor.Strides))
	assert.Equal(t, uintptr(40), unsafe.Offsetof(tensor.ByteOffset))
	assert.Equal(t, uintptr(4), unsafe.Sizeof(DataType{}))
	assert.Equal(t, uintptr(8), unsafe.Sizeof(Device{}))
}

func TestDataType(t *testing.T) {
	f32 := DataType{Code: Float, Bits: 32, Lanes: 1}
	require.Equal(t, dtypes.Float32, must.M1(f32.DType()))
	require.Equal(t, f32, must.M1(FromDType(dtypes.Float32)))
	require.Equal(t, DataType{Code: Bfloat, Bits: 16, Lanes: 1}, must.M1(FromDType(dtypes.BFloat16)))

	_, err := DataType{Code: Float, Bits: 32, Lanes: 4}.DType()
	require.ErrorIs(t, err, ErrUnsupportedDataType)
	_, err = DataType{Code: OpaqueHandle, Bits: 64, Lanes: 1}.DType()
	require.ErrorIs(t, err, ErrUnsupportedDataType)
	_, err = FromDType(dtypes.InvalidDType)
	require.ErrorIs(t, err, ErrUnsupportedDataType)
}

func float32Tensor(data []float32, shape, strides []int64) *Tensor {
	t := &Tensor{
		Data:   unsafe.Pointer(&data[0]),
		Device: Device{DeviceType: CPU},
		NDim:   int32(len(shape)),
		DType:  DataType{Code: Float, Bits: 32, Lanes: 1},
	}
	if len(shape) > 0 {
		t.Shape = &shape[0]
	}
	if strides != nil {
		t.Strides = &strides[0]
	}
	return t
}

func TestToView(t *testing.T) {
	data := []float32{0, 1, 2, 3, 4, 5, 6, 7}

	// Compact row-major, with nil strides.
	v := must.M1(ToView(float32Tensor(data, []int64{2, 4}, nil)))
	require.Equal(t, []int{2, 4}, v.Shape().Dimensions)
	require.Equal(t, []int{4, 1}, v.Strides())
	require.Equal(t, dtypes.Float32, v.DType())
	require.Equal(t, unsafe.Pointer(&data[0]), v.DataPtr())

	// Explicit strides and byte offset.
	tensor := float32Tensor(data, []int64{2, 2}, []int64{1, 4})
	tensor.ByteOffset = 4
	v = must.M1(ToView(tensor))
	require.Equal(t, []int{1, 4}, v.Strides())
	require.Equal(t, unsafe.Pointer(&data[1]), v.DataPtr())

	// Scalar.
	v = must.M1(ToView(float32Tensor(data, nil, nil)))
	require.Equal(t, 0, v.NDim())
	require.Equal(t, 1, v.NumElements())
}

func TestToViewErrors(t *testing.T) {
	data := []float32{0, 1}

	_, err := ToView(nil)
	require.ErrorIs(t, err, ErrNilTensor)

	tensor := float32Tensor(data, []int64{2}, nil)
	tensor.Device = Device{DeviceType: CUDA, DeviceID: 1}
	_, err = ToView(tensor)
	require.ErrorIs(t, err, ErrUnsupportedDevice)

	tensor = float32Tensor(data, []int64{2}, nil)
	tensor.DType.Lanes = 2
	_, err = ToView(tensor)
	require.ErrorIs(t, err, ErrUnsupportedDataType)

	tensor = float32Tensor(data, []int64{2}, nil)
	tensor.NDim = -1
	_, err = ToView(tensor)
	require.ErrorIs(t, err, ErrInvalidTensor)

	tensor = float32Tensor(data, []int64{2}, nil)
	tensor.Shape = nil
	_, err = ToView(tensor)
	require.ErrorIs(t, err, ErrInvalidTensor)

	_, err = ToView(float32Tensor(data, []int64{-2}, nil))
	require.ErrorIs(t, err, ErrInvalidTensor)

	// 2^64 elements: the element count overflows.
	_, err = ToView(float32Tensor(data, []int64{1 << 32, 1 << 32}, []int64{0, 0}))
	require.ErrorIs(t, err, ErrInvalidTensor)

	// Empty, no matter how large the other dimensions are.
	v, err := ToView(float32Tensor(data, []int64{1 << 32, 0, 1 << 32}, []int64{0, 0, 0}))
	require.NoError(t, err)
	require.Equal(t, 0, v.NumElements())
}

func TestFromView(t *testing.T) {
	data := []float32{0, 1, 2, 3, 4, 5}
	view := must.M1(tensorview.FromFlat(data, 2, 3)).Transpose()
	tensor := must.M1(FromView(view))
	require.Equal(t, int32(2), tensor.NDim)
	require.Equal(t, []int64{3, 2}, unsafe.Slice(tensor.Shape, 2))
	require.Equal(t, []int64{1, 3}, unsafe.Slice(tensor.Strides, 2))

	back := must.M1(ToView(tensor))
	require.Equal(t, view.Shape(), back.Shape())
	require.Equal(t, view.Strides(), back.Strides())
	require.Equal(t, view.DataPtr(), back.DataPtr())

	scalar := must.M1(FromView(must.M1(tensorview.FromFlat(data))))
	require.Equal(t, int32(0), scalar.NDim)
	require.Nil(t, scalar.Shape)
}

func TestCallAddOne(t *testing.T) {
	// Julia-style column-major [2 3] array and a column-stride-2 output.
	x := []float32{1, 4, 2, 5, 3, 6}
	y := make([]float32, 12)
	xt := float32Tensor(x, []int64{2, 3}, []int64{1, 2})
	yt := float32Tensor(y, []int64{2, 3}, []int64{1, 4})
	require.NoError(t, Call(fixtures.AddOneName, xt, yt))
	require.Equal(t, []float32{2, 5, 0, 0, 3, 6, 0, 0, 4, 7, 0, 0}, y)

	// Float64 is converted, but rejected by add_one_cpu.
	x64 := []float64{1, 2}
	shape := []int64{2}
	t64 := &Tensor{
		Data:   unsafe.Pointer(&x64[0]),
		Device: Device{DeviceType: CPU},
		NDim:   1,
		DType:  DataType{Code: Float, Bits: 64, Lanes: 1},
		Shape:  &shape[0],
	}
	err := Call(fixtures.AddOneName, t64, t64)
	require.ErrorIs(t, err, fixtures.ErrUnsupportedDType)

	err = Call(fixtures.AddOneName, xt, nil)
	require.ErrorIs(t, err, ErrNilTensor)
	require.ErrorContains(t, err, "argument #1")

	// An element count that overflows is rejected, instead of being taken as an empty tensor.
	in, out := []float32{1}, []float32{0}
	huge := []int64{1 << 32, 1 << 32}
	err = Call(fixtures.AddOneName,
		float32Tensor(in, huge, []int64{0, 0}), float32Tensor(out, huge, []int64{0, 0}))
	require.ErrorIs(t, err, ErrInvalidTensor)
	require.Equal(t, []float32{0}, out)
}
