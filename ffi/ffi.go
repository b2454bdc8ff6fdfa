// Copyright 2023-2026 The tvmffi-fixtures Authors. SPDX-License-Identifier: Apache-2.0

// Package ffi is a registry of named functions that can be discovered and called by a foreign-function
// dispatch mechanism: the C ABI of a shared library, a binding test suite, or the command line.
//
// Functions register themselves during package initialization:
//
//	func init() {
//		ffi.Register("add_one_cpu", ffi.Func2(AddOne))
//	}
//
// And callers dispatch by name:
//
//	_, err := ffi.Call("add_one_cpu", input, output)
//
// Functions may either return an error or panic with an error (see package github.com/gomlx/exceptions):
// Call converts the latter into a returned error.
package ffi

import (
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/gomlx/exceptions"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Function is the uniform signature of registered functions: positional arguments in, an optional
// result out.
type Function func(args ...any) (any, error)

var (
	// ErrNotFound is returned by Call when no function was registered with the given name.
	ErrNotFound = errors.New("ffi function not found")

	// ErrArity is returned when a function is called with the wrong number of arguments.
	ErrArity = errors.New("wrong number of arguments")

	// ErrArgumentType is returned when an argument doesn't have the type the function expects.
	ErrArgumentType = errors.New("wrong argument type")
)

var (
	muRegistry sync.RWMutex
	registry   = make(map[string]Function)
)

// Register fn under the given name.
//
// To be safe, call Register during initialization of a package.
// It panics if name is empty, fn is nil or the name is already taken.
func Register(name string, fn Function) {
	if name == "" {
		exceptions.Panicf("ffi.Register: empty function name")
	}
	if fn == nil {
		exceptions.Panicf("ffi.Register(%q): nil function", name)
	}
	muRegistry.Lock()
	defer muRegistry.Unlock()
	if _, found := registry[name]; found {
		exceptions.Panicf("ffi.Register(%q): function already registered", name)
	}
	registry[name] = fn
	klog.V(1).Infof("ffi: registered %q", name)
}

// Get returns the function registered under name, and whether it was found.
func Get(name string) (Function, bool) {
	muRegistry.RLock()
	defer muRegistry.RUnlock()
	fn, found := registry[name]
	return fn, found
}

// List returns the sorted names of all registered functions.
func List() []string {
	muRegistry.RLock()
	defer muRegistry.RUnlock()
	return slices.Sorted(maps.Keys(registry))
}

// Call the function registered under name with the given arguments.
//
// It returns ErrNotFound if there is no such function. A panic raised by the function with an error
// (as with exceptions.Panicf) is returned as the error; other panics are converted into an error as well.
func Call(name string, args ...any) (result any, err error) {
	fn, found := Get(name)
	if !found {
		return nil, errors.Wrapf(ErrNotFound, "ffi.Call(%q)", name)
	}
	klog.V(2).Infof("ffi: calling %q with %d arguments", name, len(args))
	exception := exceptions.Try(func() {
		result, err = fn(args...)
	})
	if exception != nil {
		if e, ok := exception.(error); ok {
			err = errors.WithMessagef(e, "ffi.Call(%q) panicked", name)
		} else {
			err = errors.Errorf("ffi.Call(%q) panicked: %v", name, exception)
		}
		result = nil
	}
	if err != nil {
		klog.V(1).Infof("ffi: %q failed: %v", name, err)
	}
	return
}

// argAs converts args[idx] to type T, or returns ErrArgumentType.
func argAs[T any](args []any, idx int) (T, error) {
	value, ok := args[idx].(T)
	if !ok {
		var zero T
		return zero, errors.Wrapf(ErrArgumentType, "argument #%d is %T, expected %s", idx, args[idx], typeName[T]())
	}
	return value, nil
}

func typeName[T any]() string {
	return fmt.Sprintf("%T", (*T)(nil))[1:]
}

// checkArity returns ErrArity if len(args) != want.
func checkArity(args []any, want int) error {
	if len(args) != want {
		return errors.Wrapf(ErrArity, "got %d arguments, expected %d", len(args), want)
	}
	return nil
}

// Func2 adapts a typed function of two arguments, with no result, to a Function.
//
// This is the calling convention of element-wise kernels taking (input, output).
func Func2[A, B any](fn func(A, B) error) Function {
	return func(args ...any) (any, error) {
		if err := checkArity(args, 2); err != nil {
			return nil, err
		}
		a, err := argAs[A](args, 0)
		if err != nil {
			return nil, err
		}
		b, err := argAs[B](args, 1)
		if err != nil {
			return nil, err
		}
		return nil, fn(a, b)
	}
}
