// Copyright (C) 2023-2025 the SMX authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"
	"runtime/pprof"

	"github.com/rv-smx/utils/cmd"
)

func main() {
	// profile only if the environment variable is set
	if os.Getenv("SMXA_PROFILE") != "" {
		cpuFile, err := os.Create("cpu.prof")
		if err != nil {
			panic(err)
		}
		defer cpuFile.Close()
		if err := pprof.StartCPUProfile(cpuFile); err != nil {
			panic(err)
		}
		defer pprof.StopCPUProfile()
		defer fmt.Println("Profiling data written to cpu.prof")
	}
	cmd.Execute()
}
