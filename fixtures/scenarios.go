// Copyright 2023-2026 The tvmffi-fixtures Authors. SPDX-License-Identifier: Apache-2.0

package fixtures

import (
	"slices"

	"github.com/lucifer1004/tvmffi-fixtures/ffi"
	"github.com/lucifer1004/tvmffi-fixtures/types/tensorview"
	"github.com/pkg/errors"
)

// Scenario is a self-contained check of a registered function, called through the ffi registry.
type Scenario struct {
	// Name is a short identifier, usable as a test name.
	Name string

	// Description of what is being checked.
	Description string

	// Elements is the number of logical elements the function is expected to visit.
	Elements int

	// Run executes the scenario and returns an error describing the first discrepancy found.
	Run func() error
}

// Scenarios returns the built-in checks of add_one_cpu.
func Scenarios() []Scenario {
	return []Scenario{
		{
			Name:        "1d_contiguous",
			Description: "shape [3], stride [1]: [1 2 3] -> [2 3 4]",
			Elements:    3,
			Run: func() error {
				in := []float32{1, 2, 3}
				out := make([]float32, 3)
				if err := callOnFlat(in, out, []int{3}); err != nil {
					return err
				}
				return expectFlat(out, []float32{2, 3, 4})
			},
		},
		{
			Name:        "2d_row_major",
			Description: "shape [2 3] row-major: [[1 2 3] [4 5 6]] -> [[2 3 4] [5 6 7]]",
			Elements:    6,
			Run: func() error {
				in := []float32{1, 2, 3, 4, 5, 6}
				out := make([]float32, 6)
				if err := callOnFlat(in, out, []int{2, 3}); err != nil {
					return err
				}
				return expectFlat(out, []float32{2, 3, 4, 5, 6, 7})
			},
		},
		{
			Name:        "2d_column_stride_2",
			Description: "columns 0, 2, 4 of a [2 6] buffer, in place: only the 6 selected elements change",
			Elements:    6,
			Run: func() error {
				buf := []float32{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11}
				full, err := tensorview.FromFlat(buf, 2, 6)
				if err != nil {
					return err
				}
				view, err := full.Slice(1, 0, 6, 2)
				if err != nil {
					return err
				}
				if _, err = ffi.Call(AddOneName, view, view); err != nil {
					return err
				}
				return expectFlat(buf, []float32{1, 1, 3, 3, 5, 5, 7, 7, 9, 9, 11, 11})
			},
		},
		{
			Name:        "rank_0",
			Description: "scalar: 41 -> 42",
			Elements:    1,
			Run: func() error {
				in := []float32{41}
				out := []float32{0}
				if err := callOnFlat(in, out, nil); err != nil {
					return err
				}
				return expectFlat(out, []float32{42})
			},
		},
		{
			Name:        "zero_size",
			Description: "shape [3 0 2]: nothing is written",
			Elements:    0,
			Run: func() error {
				in := []float32{}
				out := []float32{-1}
				inView, err := tensorview.FromFlat(in, 3, 0, 2)
				if err != nil {
					return err
				}
				outView, err := tensorview.FromFlatStrided(out, 0, []int{3, 0, 2}, []int{0, 0, 0})
				if err != nil {
					return err
				}
				if _, err = ffi.Call(AddOneName, inView, outView); err != nil {
					return err
				}
				return expectFlat(out, []float32{-1})
			},
		},
		{
			Name:        "reversed_strides",
			Description: "input with negative strides on both axes, contiguous output",
			Elements:    6,
			Run: func() error {
				buf := []float32{1, 2, 3, 4, 5, 6}
				// Logical [[6 5 4] [3 2 1]].
				in, err := tensorview.FromFlatStrided(buf, 5, []int{2, 3}, []int{-3, -1})
				if err != nil {
					return err
				}
				out := make([]float32, 6)
				outView, err := tensorview.FromFlat(out, 2, 3)
				if err != nil {
					return err
				}
				if _, err = ffi.Call(AddOneName, in, outView); err != nil {
					return err
				}
				return expectFlat(out, []float32{7, 6, 5, 4, 3, 2})
			},
		},
		{
			Name:        "column_major",
			Description: "column-major [2 3] input and output, as allocated by Julia or Fortran",
			Elements:    6,
			Run: func() error {
				// Column-major storage of [[1 2 3] [4 5 6]].
				in := []float32{1, 4, 2, 5, 3, 6}
				out := make([]float32, 6)
				inView, err := tensorview.FromFlatStrided(in, 0, []int{2, 3}, []int{1, 2})
				if err != nil {
					return err
				}
				outView, err := tensorview.FromFlatStrided(out, 0, []int{2, 3}, []int{1, 2})
				if err != nil {
					return err
				}
				if _, err = ffi.Call(AddOneName, inView, outView); err != nil {
					return err
				}
				return expectFlat(out, []float32{2, 5, 3, 6, 4, 7})
			},
		},
		{
			Name:        "mixed_strides",
			Description: "rank-3 input with stride-2 and negative axes into a transposed output",
			Elements:    12,
			Run: func() error {
				// Underlying [2 3 4] buffer, viewed as in[::1, ::-1, ::2] -> shape [2 3 2].
				buf := make([]float32, 24)
				for ii := range buf {
					buf[ii] = float32(ii)
				}
				full, err := tensorview.FromFlat(buf, 2, 3, 4)
				if err != nil {
					return err
				}
				in, err := full.Reverse(1)
				if err == nil {
					in, err = in.Slice(2, 0, 4, 2)
				}
				if err != nil {
					return err
				}
				// Output stored as a row-major [2 3 2] transposed into [2 3 2] logical order.
				out := make([]float32, 12)
				outT, err := tensorview.FromFlat(out, 2, 3, 2)
				if err != nil {
					return err
				}
				outView := outT.Transpose()
				if _, err = ffi.Call(AddOneName, in, outView); err != nil {
					return err
				}
				want := make([]float32, 12)
				for i := range 2 {
					for j := range 3 {
						for k := range 2 {
							// out[i,j,k] lives at outView offset k*6 + j*2 + i.
							want[k*6+j*2+i] = buf[i*12+(2-j)*4+k*2] + 1
						}
					}
				}
				return expectFlat(out, want)
			},
		},
		{
			Name:        "rank_4",
			Description: "shape [2 1 3 2] row-major",
			Elements:    12,
			Run: func() error {
				in := make([]float32, 12)
				want := make([]float32, 12)
				for ii := range in {
					in[ii] = float32(ii) * 0.5
					want[ii] = in[ii] + 1
				}
				out := make([]float32, 12)
				if err := callOnFlat(in, out, []int{2, 1, 3, 2}); err != nil {
					return err
				}
				return expectFlat(out, want)
			},
		},
		{
			Name:        "not_idempotent",
			Description: "applying add_one_cpu twice adds 2, not 1",
			Elements:    4,
			Run: func() error {
				buf := []float32{0, 1, 2, 3}
				view, err := tensorview.FromFlat(buf, 4)
				if err != nil {
					return err
				}
				for range 2 {
					if _, err = ffi.Call(AddOneName, view, view); err != nil {
						return err
					}
				}
				return expectFlat(buf, []float32{2, 3, 4, 5})
			},
		},
	}
}

// callOnFlat calls add_one_cpu with row-major views of in and out with the given dimensions.
func callOnFlat(in, out []float32, dims []int) error {
	inView, err := tensorview.FromFlat(in, dims...)
	if err != nil {
		return err
	}
	outView, err := tensorview.FromFlat(out, dims...)
	if err != nil {
		return err
	}
	_, err = ffi.Call(AddOneName, inView, outView)
	return err
}

func expectFlat(got, want []float32) error {
	if !slices.Equal(got, want) {
		return errors.Errorf("got %v, wanted %v", got, want)
	}
	return nil
}
