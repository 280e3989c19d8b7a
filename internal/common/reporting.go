package common

// Copyright (C) 2023-2025 the SMX authors
// SPDX-License-Identifier: Apache-2.0

// reporting.go implements the input gathering and report writing shared by
// the classify and summary commands.

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/rv-smx/utils/internal/report"
	"github.com/rv-smx/utils/internal/smx"
)

// ValidateReportFlags checks the format/output flag combination and the
// input selection. It expands the "all" format in place.
func ValidateReportFlags(formats *[]string, outputDir string, args []string, jobsPath string) error {
	if len(args) == 0 && jobsPath == "" {
		return fmt.Errorf("no input given, provide result paths or --%s", FlagJobsName)
	}
	if len(args) > 0 && jobsPath != "" {
		return fmt.Errorf("provide either result paths or --%s, not both", FlagJobsName)
	}
	if slices.Contains(*formats, report.FormatAll) {
		*formats = slices.Clone(report.FormatOptions)
	}
	for _, format := range *formats {
		if !slices.Contains(report.FormatOptions, format) {
			return fmt.Errorf("format options are: %s", strings.Join(append([]string{report.FormatAll}, report.FormatOptions...), ", "))
		}
	}
	if outputDir == "" {
		if len(*formats) > 1 {
			return fmt.Errorf("--%s is required when more than one format is requested", FlagOutputName)
		}
		if slices.Contains(*formats, report.FormatXlsx) {
			return fmt.Errorf("--%s is required for the %s format", FlagOutputName, report.FormatXlsx)
		}
		return nil
	}
	info, err := os.Stat(outputDir)
	if err != nil {
		return fmt.Errorf("failed to stat output directory %s: %v", outputDir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("output path %s is not a directory", outputDir)
	}
	return nil
}

// GatherJobs resolves the input selection into jobs, from either the
// command line paths or a jobs file.
func GatherJobs(args []string, jobsPath string) ([]smx.Job, error) {
	if jobsPath != "" {
		return smx.JobsFromFile(jobsPath)
	}
	return smx.JobsFromPaths(args)
}

// RenderReports renders the tables in every requested format, writing to
// stdout when no output directory is set and to report files otherwise.
func RenderReports(formats []string, outputDir string, baseName string, tables []report.TableValues) error {
	for _, format := range formats {
		out, err := report.Create(format, tables)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return err
		}
		if outputDir == "" {
			fmt.Print(string(out))
			continue
		}
		path, err := report.WriteReport(out, outputDir, baseName, format)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return err
		}
		fmt.Printf("%s report written to %s\n", format, path)
	}
	return nil
}
