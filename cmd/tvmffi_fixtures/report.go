// Copyright 2023-2026 The tvmffi-fixtures Authors. SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"regexp"
	"time"

	"github.com/charmbracelet/lipgloss"
	lgtable "github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/lucifer1004/tvmffi-fixtures/ffi"
	"github.com/lucifer1004/tvmffi-fixtures/fixtures"
	"github.com/lucifer1004/tvmffi-fixtures/types/shapes"
	"github.com/lucifer1004/tvmffi-fixtures/types/tensorview"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

var (
	headerRowStyle = lipgloss.NewStyle().Reverse(true).
			Padding(0, 2, 0, 2).Align(lipgloss.Center)

	oddRowStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFF")).
			PaddingLeft(1).PaddingRight(1)
	evenRowStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#999")).
			PaddingLeft(1).PaddingRight(1)

	passStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	failStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)

	titleStyle = lipgloss.NewStyle().Bold(true).Padding(1, 4, 1, 4)
)

func newPlainTable(headers ...string) *lgtable.Table {
	return lgtable.New().
		Headers(headers...).
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("99"))).
		StyleFunc(func(row, col int) (s lipgloss.Style) {
			if row == lgtable.HeaderRow {
				return headerRowStyle
			}
			if row%2 == 0 {
				s = oddRowStyle
			} else {
				s = evenRowStyle
			}
			return s.Align(lipgloss.Left)
		})
}

func listFunctions() {
	fmt.Println(titleStyle.Render("Registered functions"))
	table := newPlainTable("Name")
	for _, name := range ffi.List() {
		table.Row(name)
	}
	fmt.Println(table.Render())
}

// checkScenarios runs the scenarios whose names match filter (all if filter is nil), prints a report
// and returns whether all of them passed.
func checkScenarios(filter *regexp.Regexp) bool {
	fmt.Println(titleStyle.Render("Scenarios"))
	table := newPlainTable("Scenario", "Elements", "Result", "Description")
	allPassed := true
	var count int
	for _, scenario := range fixtures.Scenarios() {
		if filter != nil && !filter.MatchString(scenario.Name) {
			continue
		}
		count++
		result := passStyle.Render("PASS")
		if err := scenario.Run(); err != nil {
			allPassed = false
			result = failStyle.Render("FAIL")
			klog.Errorf("Scenario %q failed: %+v", scenario.Name, err)
		}
		table.Row(scenario.Name, humanize.Comma(int64(scenario.Elements)), result, scenario.Description)
	}
	fmt.Println(table.Render())
	fmt.Printf("%d scenarios run.\n", count)
	return allPassed
}

// stress runs add_one_cpu in place over every other element of a buffer with 2*numElements
// float32 values, viewed as a column-major matrix, and reports the time taken.
func stress(numElements int) error {
	cols := 1024
	rows := (numElements + cols - 1) / cols
	shape := shapes.Make(dtypes.Float32, rows, cols)
	buf := make([]float32, 2*shape.Size())
	strides := shape.ColMajorStrides()
	for axis := range strides {
		strides[axis] *= 2
	}
	view, err := tensorview.FromFlatStrided(buf, 0, shape.Dimensions, strides)
	if err != nil {
		return err
	}
	start := time.Now()
	if _, err = ffi.Call(fixtures.AddOneName, view, view); err != nil {
		return err
	}
	elapsed := time.Since(start)
	for ii, v := range buf {
		want := float32(1 - ii%2)
		if v != want {
			return errors.Errorf("stress: element %d is %g, wanted %g", ii, v, want)
		}
	}

	fmt.Println(titleStyle.Render("Stress"))
	table := newPlainTable()
	table.Row("shape", shape.String())
	table.Row("strides", fmt.Sprintf("%v", strides))
	table.Row("# elements", humanize.Comma(int64(shape.Size())))
	table.Row("# bytes touched", humanize.Bytes(uint64(shape.Memory())))
	table.Row("time", elapsed.String())
	if seconds := elapsed.Seconds(); seconds > 0 {
		table.Row("throughput", humanize.Bytes(uint64(float64(shape.Memory())/seconds))+"/s")
	}
	fmt.Println(table.Render())
	return nil
}
