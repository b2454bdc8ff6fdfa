// Copyright 2023-2026 The tvmffi-fixtures Authors. SPDX-License-Identifier: Apache-2.0

package main

import (
	"flag"
	"os"
	"sync"
	"unsafe"

	"github.com/gomlx/exceptions"
	"github.com/lucifer1004/tvmffi-fixtures/pkg/dlpack"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// VerbosityEnv is the environment variable with the klog verbosity level of the library.
const VerbosityEnv = "TVMFFI_FIXTURES_VERBOSITY"

func init() {
	configureLogging(os.LookupEnv(VerbosityEnv))
}

// configureLogging sets klog's verbosity, if one was given.
func configureLogging(verbosity string, found bool) {
	if !found || verbosity == "" {
		return
	}
	flags := flag.NewFlagSet("klog", flag.ContinueOnError)
	klog.InitFlags(flags)
	if err := flags.Set("v", verbosity); err != nil {
		klog.Errorf("invalid %s=%q: %v", VerbosityEnv, verbosity, err)
	}
}

var (
	muLastError  sync.Mutex
	lastError    error
	lastErrorSeq int // Incremented at every failure.
)

// setLastError records err as the error of the last failed call.
// Successful calls don't clear it.
func setLastError(err error) {
	muLastError.Lock()
	defer muLastError.Unlock()
	lastError = err
	lastErrorSeq++
}

// lastErrorState returns the sequence number of the last failure and its error, if any.
// Callers must hold muLastError.
func lastErrorState() (int, error) {
	return lastErrorSeq, lastError
}

// callExported implements the exported C functions: tensors are pointers to DLTensor structs.
// It returns 0 on success and -1 on failure, in which case the error is kept as the last error.
func callExported(name string, tensors ...unsafe.Pointer) int32 {
	args := make([]*dlpack.Tensor, len(tensors))
	for ii, ptr := range tensors {
		args[ii] = (*dlpack.Tensor)(ptr)
	}
	var err error
	exception := exceptions.Try(func() {
		err = dlpack.Call(name, args...)
	})
	if exception != nil {
		err = errors.Errorf("%s panicked: %v", name, exception)
	}
	if err != nil {
		klog.Errorf("%+v", err)
		setLastError(err)
		return -1
	}
	return 0
}
