// Copyright 2023-2026 The tvmffi-fixtures Authors. SPDX-License-Identifier: Apache-2.0

// Package fixtures implements functions used to test foreign-function bindings of tensor libraries.
//
// Importing the package registers its functions in the ffi registry:
//
//   - "add_one_cpu": AddOne, computes output = input + 1 for float32 tensor views of any rank and
//     any strides.
//
// Scenarios returns a list of self-checks of the registered functions, used by the tests
// and by the tvmffi_fixtures command line tool.
package fixtures
