// Copyright 2023-2026 The tvmffi-fixtures Authors. SPDX-License-Identifier: Apache-2.0

// tvmffi_fixtures lists the registered test fixtures and runs their built-in scenarios.
//
// Usage:
//
//	tvmffi_fixtures -list
//	tvmffi_fixtures -check -run 'stride|major'
//	tvmffi_fixtures -stress 10000000
package main

import (
	"flag"
	"fmt"
	"os"
	"regexp"

	"github.com/janpfeifer/must"
	"k8s.io/klog/v2"
)

var (
	flagList   = flag.Bool("list", false, "List the registered functions.")
	flagCheck  = flag.Bool("check", false, "Run the built-in scenarios of the registered functions.")
	flagRun    = flag.String("run", "", "Regular expression selecting the scenarios to run with -check.")
	flagStress = flag.Int("stress", 0, "If > 0, runs add_one_cpu in place over a strided view of this many elements and reports the time.")
)

func main() {
	klog.InitFlags(nil)
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Lists and checks the functions exported by the test fixtures library.\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	if len(flag.Args()) > 0 {
		klog.Errorf("Unexpected arguments %q. See 'tvmffi_fixtures -help'.", flag.Args())
		os.Exit(1)
	}
	if !*flagList && !*flagCheck && *flagStress <= 0 {
		*flagList, *flagCheck = true, true
	}

	if *flagList {
		listFunctions()
	}
	ok := true
	if *flagCheck {
		var filter *regexp.Regexp
		if *flagRun != "" {
			filter = must.M1(regexp.Compile(*flagRun))
		}
		ok = checkScenarios(filter)
	}
	if *flagStress > 0 {
		must.M(stress(*flagStress))
	}
	if !ok {
		os.Exit(1)
	}
}
