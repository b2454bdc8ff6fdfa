// Copyright 2023-2026 The tvmffi-fixtures Authors. SPDX-License-Identifier: Apache-2.0

// Package dlpack mirrors the DLPack C structures used to pass tensors across language boundaries,
// and converts them to tensorview.View.
//
// Tensor has the exact memory layout of the C struct DLTensor, so a `DLTensor*` received from C can
// be converted with `(*dlpack.Tensor)(unsafe.Pointer(ptr))`.
//
// See https://dmlc.github.io/dlpack/latest/ for the standard.
package dlpack

import (
	"unsafe"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/lucifer1004/tvmffi-fixtures/ffi"
	"github.com/lucifer1004/tvmffi-fixtures/types/shapes"
	"github.com/lucifer1004/tvmffi-fixtures/types/tensorview"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// DeviceType is DLPack's DLDeviceType.
type DeviceType int32

// Device types defined by DLPack.
const (
	CPU         DeviceType = 1
	CUDA        DeviceType = 2
	CUDAHost    DeviceType = 3
	OpenCL      DeviceType = 4
	Vulkan      DeviceType = 7
	Metal       DeviceType = 8
	VPI         DeviceType = 9
	ROCM        DeviceType = 10
	ROCMHost    DeviceType = 11
	ExtDev      DeviceType = 12
	CUDAManaged DeviceType = 13
	OneAPI      DeviceType = 14
	WebGPU      DeviceType = 15
	Hexagon     DeviceType = 16
)

// Device is DLPack's DLDevice.
type Device struct {
	DeviceType DeviceType
	DeviceID   int32
}

// TypeCode is DLPack's DLDataTypeCode.
type TypeCode uint8

// Type codes defined by DLPack.
const (
	Int          TypeCode = 0
	UInt         TypeCode = 1
	Float        TypeCode = 2
	OpaqueHandle TypeCode = 3
	Bfloat       TypeCode = 4
	Complex      TypeCode = 5
	Bool         TypeCode = 6
)

// DataType is DLPack's DLDataType.
type DataType struct {
	Code  TypeCode
	Bits  uint8
	Lanes uint16
}

// Tensor is DLPack's DLTensor, a non-owning description of an N-dimensional array.
type Tensor struct {
	Data       unsafe.Pointer
	Device     Device
	NDim       int32
	DType      DataType
	Shape      *int64
	Strides    *int64 // nil means compact row-major.
	ByteOffset uint64
}

var (
	// ErrNilTensor is returned when a nil *Tensor is given.
	ErrNilTensor = errors.New("nil DLTensor")

	// ErrInvalidTensor is returned for a DLTensor with inconsistent fields.
	ErrInvalidTensor = errors.New("invalid DLTensor")

	// ErrUnsupportedDevice is returned for tensors not on the CPU.
	ErrUnsupportedDevice = errors.New("unsupported DLPack device")

	// ErrUnsupportedDataType is returned for DLPack data types with no equivalent dtypes.DType.
	ErrUnsupportedDataType = errors.New("unsupported DLPack data type")
)

var dataTypeToDType = map[DataType]dtypes.DType{
	{Bool, 8, 1}:      dtypes.Bool,
	{Int, 8, 1}:       dtypes.Int8,
	{Int, 16, 1}:      dtypes.Int16,
	{Int, 32, 1}:      dtypes.Int32,
	{Int, 64, 1}:      dtypes.Int64,
	{UInt, 8, 1}:      dtypes.Uint8,
	{UInt, 16, 1}:     dtypes.Uint16,
	{UInt, 32, 1}:     dtypes.Uint32,
	{UInt, 64, 1}:     dtypes.Uint64,
	{Float, 16, 1}:    dtypes.Float16,
	{Float, 32, 1}:    dtypes.Float32,
	{Float, 64, 1}:    dtypes.Float64,
	{Bfloat, 16, 1}:   dtypes.BFloat16,
	{Complex, 64, 1}:  dtypes.Complex64,
	{Complex, 128, 1}: dtypes.Complex128,
}

// DType converts the DLPack data type to a dtypes.DType.
func (dt DataType) DType() (dtypes.DType, error) {
	dtype, found := dataTypeToDType[dt]
	if !found {
		return dtypes.InvalidDType, errors.Wrapf(ErrUnsupportedDataType, "code=%d, bits=%d, lanes=%d", dt.Code, dt.Bits, dt.Lanes)
	}
	return dtype, nil
}

// FromDType converts a dtypes.DType to the DLPack data type.
func FromDType(dtype dtypes.DType) (DataType, error) {
	for dt, d := range dataTypeToDType {
		if d == dtype {
			return dt, nil
		}
	}
	return DataType{}, errors.Wrapf(ErrUnsupportedDataType, "dtype %s", dtype)
}

// ToView returns a tensorview.View of the memory described by t.
//
// Only CPU tensors are supported. The ByteOffset is applied to the data pointer, and nil Strides
// means a compact row-major layout.
func ToView(t *Tensor) (*tensorview.View, error) {
	if t == nil {
		return nil, ErrNilTensor
	}
	if t.Device.DeviceType != CPU {
		return nil, errors.Wrapf(ErrUnsupportedDevice, "device type %d (id %d), only CPU (%d) is supported",
			t.Device.DeviceType, t.Device.DeviceID, CPU)
	}
	dtype, err := t.DType.DType()
	if err != nil {
		return nil, err
	}
	if t.NDim < 0 {
		return nil, errors.Wrapf(ErrInvalidTensor, "ndim=%d", t.NDim)
	}
	ndim := int(t.NDim)
	if ndim > 0 && t.Shape == nil {
		return nil, errors.Wrapf(ErrInvalidTensor, "ndim=%d with nil shape", ndim)
	}
	dims := make([]int, ndim)
	var strides []int
	if ndim > 0 {
		for axis, dim := range unsafe.Slice(t.Shape, ndim) {
			if dim < 0 {
				return nil, errors.Wrapf(ErrInvalidTensor, "axis %d has negative dimension %d", axis, dim)
			}
			dims[axis] = int(dim)
		}
		if _, ok := shapes.Make(dtype, dims...).CheckedSize(); !ok {
			return nil, errors.Wrapf(ErrInvalidTensor, "shape %v has too many elements", dims)
		}
		if t.Strides != nil {
			strides = make([]int, ndim)
			for axis, stride := range unsafe.Slice(t.Strides, ndim) {
				strides[axis] = int(stride)
			}
		}
	}
	data := t.Data
	if data != nil && t.ByteOffset != 0 {
		data = unsafe.Add(data, t.ByteOffset)
	}
	return tensorview.New(data, dtype, dims, strides), nil
}

// FromView returns a Tensor describing the same memory as the view v.
//
// The returned Tensor points to Go memory (shape and strides, and possibly data), so it must not be
// handed over to C code that keeps it.
func FromView(v tensorview.TensorView) (*Tensor, error) {
	dt, err := FromDType(v.DType())
	if err != nil {
		return nil, err
	}
	ndim := v.NDim()
	t := &Tensor{
		Data:   v.DataPtr(),
		Device: Device{DeviceType: CPU},
		NDim:   int32(ndim),
		DType:  dt,
	}
	if ndim > 0 {
		shape := make([]int64, ndim)
		strides := make([]int64, ndim)
		for axis := range ndim {
			shape[axis] = int64(v.Size(axis))
			strides[axis] = int64(v.Stride(axis))
		}
		t.Shape, t.Strides = &shape[0], &strides[0]
	}
	return t, nil
}

// Call converts each tensor to a view and calls the ffi function registered under name with them,
// in order.
func Call(name string, tensors ...*Tensor) error {
	args := make([]any, len(tensors))
	for ii, t := range tensors {
		view, err := ToView(t)
		if err != nil {
			return errors.WithMessagef(err, "%s: argument #%d", name, ii)
		}
		args[ii] = view
	}
	klog.V(2).Infof("dlpack: calling %q with %d tensors", name, len(tensors))
	_, err := ffi.Call(name, args...)
	return err
}
