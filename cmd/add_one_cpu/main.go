// Copyright 2023-2026 The tvmffi-fixtures Authors. SPDX-License-Identifier: Apache-2.0

// add_one_cpu builds a C shared library exporting the fixtures registered in package fixtures,
// callable with DLPack tensors:
//
//	go build -buildmode=c-shared -o libtvmffi_fixtures.so ./cmd/add_one_cpu
//
// Exported C functions:
//
//	int32_t add_one_cpu(DLTensor* x, DLTensor* y);   // y = x + 1, returns 0 on success, -1 on error.
//	const char* add_one_cpu_last_error(void);        // Message of the last error, or NULL.
//
// The string returned by add_one_cpu_last_error is owned by the library: it stays valid until
// add_one_cpu_last_error is called again after a new failure.
//
// The verbosity of the logs (to stderr) is read from the environment variable TVMFFI_FIXTURES_VERBOSITY.
package main

/*
#include <stdint.h>
#include <stdlib.h>

typedef struct {
  int32_t device_type;
  int32_t device_id;
} DLDevice;

typedef struct {
  uint8_t code;
  uint8_t bits;
  uint16_t lanes;
} DLDataType;

typedef struct {
  void* data;
  DLDevice device;
  int32_t ndim;
  DLDataType dtype;
  int64_t* shape;
  int64_t* strides;
  uint64_t byte_offset;
} DLTensor;
*/
import "C"
import (
	"unsafe"

	"github.com/lucifer1004/tvmffi-fixtures/fixtures"
)

//export add_one_cpu
func add_one_cpu(x, y *C.DLTensor) C.int32_t {
	return C.int32_t(callExported(fixtures.AddOneName, unsafe.Pointer(x), unsafe.Pointer(y)))
}

//export add_one_cpu_last_error
func add_one_cpu_last_error() *C.char {
	return (*C.char)(lastErrorMessage())
}

var (
	lastErrorC    *C.char // C copy of the last error message, owned by the library.
	lastErrorCSeq int
)

// lastErrorMessage returns the C string with the message of the last failure, or nil if no call failed.
//
// The C copy is made once per failure: repeated calls return the same pointer until a new failure
// happens, at which point the previous copy is freed.
func lastErrorMessage() unsafe.Pointer {
	muLastError.Lock()
	defer muLastError.Unlock()
	seq, err := lastErrorState()
	if err == nil {
		return nil
	}
	if lastErrorC == nil || lastErrorCSeq != seq {
		if lastErrorC != nil {
			C.free(unsafe.Pointer(lastErrorC))
		}
		lastErrorC = C.CString(err.Error())
		lastErrorCSeq = seq
	}
	return unsafe.Pointer(lastErrorC)
}

// main is required by -buildmode=c-shared, but never called.
func main() {}
