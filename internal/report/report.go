package report

// Copyright (C) 2023-2025 the SMX authors
// SPDX-License-Identifier: Apache-2.0

// report.go dispatches report creation to the format-specific renderers.

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	FormatTxt  = "txt"
	FormatJson = "json"
	FormatCsv  = "csv"
	FormatXlsx = "xlsx"
	FormatAll  = "all"
)

var FormatOptions = []string{FormatTxt, FormatJson, FormatCsv, FormatXlsx}

// Create generates a report in the specified format from the given tables.
// All fields of a table must have the same number of values.
func Create(format string, allTableValues []TableValues) (out []byte, err error) {
	for _, tableValues := range allTableValues {
		numRows := -1
		for _, field := range tableValues.Fields {
			if numRows == -1 {
				numRows = len(field.Values)
				continue
			}
			if len(field.Values) != numRows {
				return nil, fmt.Errorf("expected %d value(s) for field %s, found %d", numRows, field.Name, len(field.Values))
			}
		}
	}
	switch format {
	case FormatTxt:
		return createTextReport(allTableValues)
	case FormatJson:
		return createJsonReport(allTableValues)
	case FormatCsv:
		return createCsvReport(allTableValues)
	case FormatXlsx:
		return createXlsxReport(allTableValues)
	}
	panic(fmt.Sprintf("expected one of %s, got %s", strings.Join(FormatOptions, ", "), format))
}

// WriteReport writes a report to dir with the given base name and the
// format's extension, returning the path written.
func WriteReport(out []byte, dir string, baseName string, format string) (path string, err error) {
	path = filepath.Join(dir, fmt.Sprintf("%s.%s", baseName, format))
	if err = os.WriteFile(path, out, 0644); err != nil { // #nosec G306
		err = fmt.Errorf("failed to write report file %s: %v", path, err)
	}
	return
}
