/*
Package common holds definitions shared by the application's commands.
*/
package common

// Copyright (C) 2023-2025 the SMX authors
// SPDX-License-Identifier: Apache-2.0

import (
	"os"
	"path/filepath"
)

// AppName is the name of the application
var AppName = filepath.Base(os.Args[0])

// Flag represents a command line flag for usage rendering.
type Flag struct {
	Name string
	Help string
}

// FlagGroup represents a group of flags shown together in usage output.
type FlagGroup struct {
	GroupName string
	Flags     []Flag
}

// flag names shared across commands
const (
	FlagFormatName  = "format"
	FlagOutputName  = "output"
	FlagJobsName    = "jobs"
	FlagWorkersName = "workers"
)
