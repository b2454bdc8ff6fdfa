// Copyright 2023-2026 The tvmffi-fixtures Authors. SPDX-License-Identifier: Apache-2.0

package shapes

import (
	"testing"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/stretchr/testify/require"
)

func TestShape(t *testing.T) {
	require.False(t, Shape{}.Ok())

	shape0 := Make(dtypes.Float64)
	require.True(t, shape0.Ok())
	require.False(t, shape0.IsEmpty())
	require.Equal(t, 0, shape0.Rank())
	require.Len(t, shape0.Dimensions, 0)
	require.Equal(t, 1, shape0.Size())
	require.Equal(t, 8, int(shape0.Memory()))

	shape1 := Make(dtypes.Float32, 4, 3, 2)
	require.True(t, shape1.Ok())
	require.Equal(t, 3, shape1.Rank())
	require.Equal(t, 4*3*2, shape1.Size())
	require.Equal(t, 4*4*3*2, int(shape1.Memory()))
	require.Equal(t, "(Float32)[4 3 2]", shape1.String())

	empty := Make(dtypes.Float32, 3, 0, 2)
	require.True(t, empty.IsEmpty())
	require.Equal(t, 0, empty.Size())

	require.Panics(t, func() { _ = Make(dtypes.Float32, 2, -1) })
}

func TestDim(t *testing.T) {
	shape := Make(dtypes.Float32, 4, 3, 2)
	require.Equal(t, 4, shape.Dim(0))
	require.Equal(t, 3, shape.Dim(1))
	require.Equal(t, 2, shape.Dim(2))
	require.Equal(t, 4, shape.Dim(-3))
	require.Equal(t, 2, shape.Dim(-1))
	require.Panics(t, func() { _ = shape.Dim(3) })
	require.Panics(t, func() { _ = shape.Dim(-4) })
}

func TestClone(t *testing.T) {
	a := Make(dtypes.Float32, 2, 3)
	b := a.Clone()
	b.Dimensions[0] = 5
	require.Equal(t, []int{2, 3}, a.Dimensions)
	require.Equal(t, dtypes.Float32, b.DType)
}

func TestCheckedSize(t *testing.T) {
	size, ok := Make(dtypes.Float32, 4, 3, 2).CheckedSize()
	require.True(t, ok)
	require.Equal(t, 24, size)

	size, ok = Make(dtypes.Float32).CheckedSize()
	require.True(t, ok)
	require.Equal(t, 1, size)

	_, ok = Make(dtypes.Float32, 1<<32, 1<<32).CheckedSize()
	require.False(t, ok, "2^64 elements must overflow")
	_, ok = Make(dtypes.Float32, 1<<31, 1<<31, 2).CheckedSize()
	require.False(t, ok, "2^63 elements must overflow")

	// A zero dimension anywhere makes the shape empty, even if the other dimensions are huge.
	size, ok = Make(dtypes.Float32, 1<<32, 1<<32, 0).CheckedSize()
	require.True(t, ok)
	require.Equal(t, 0, size)
}

func TestStrides(t *testing.T) {
	shape := Make(dtypes.Float32, 2, 3, 4)
	require.Equal(t, []int{12, 4, 1}, shape.RowMajorStrides())
	require.Equal(t, []int{1, 2, 6}, shape.ColMajorStrides())
	require.Empty(t, Make(dtypes.Float32).RowMajorStrides())
	require.Equal(t, []int{5, 1}, Make(dtypes.Float32, 0, 5).RowMajorStrides())
	require.Equal(t, []int{1, 1}, Make(dtypes.Float32, 0, 5).ColMajorStrides())
}

func TestCheckDims(t *testing.T) {
	shape := Make(dtypes.Float32, 2, 3)
	require.NoError(t, shape.CheckDims(2, 3))
	require.Error(t, shape.CheckDims(2))
	require.Error(t, shape.CheckDims(2, 4))
	require.Error(t, shape.CheckDims(3, 2))
	require.NoError(t, Make(dtypes.Float32).CheckDims())
}
