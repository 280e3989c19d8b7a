package report

// Copyright (C) 2023-2025 the SMX authors
// SPDX-License-Identifier: Apache-2.0

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// createCsvReport renders each table as a CSV block, blocks separated by a
// blank line. Row tables get a header row; field-per-row tables get
// name,value records.
func createCsvReport(allTableValues []TableValues) (out []byte, err error) {
	var buf bytes.Buffer
	for tableIdx, tableValues := range allTableValues {
		if tableIdx > 0 {
			buf.WriteString("\n")
		}
		w := csv.NewWriter(&buf)
		if tableValues.HasRows {
			header := make([]string, 0, len(tableValues.Fields))
			for _, field := range tableValues.Fields {
				header = append(header, field.Name)
			}
			if err = w.Write(header); err != nil {
				err = fmt.Errorf("failed to write csv header: %v", err)
				return
			}
			numRows := 0
			if len(tableValues.Fields) > 0 {
				numRows = len(tableValues.Fields[0].Values)
			}
			for row := range numRows {
				record := make([]string, 0, len(tableValues.Fields))
				for _, field := range tableValues.Fields {
					record = append(record, field.Values[row])
				}
				if err = w.Write(record); err != nil {
					err = fmt.Errorf("failed to write csv record: %v", err)
					return
				}
			}
		} else {
			for _, field := range tableValues.Fields {
				var value string
				if len(field.Values) > 0 {
					value = field.Values[0]
				}
				if err = w.Write([]string{field.Name, value}); err != nil {
					err = fmt.Errorf("failed to write csv record: %v", err)
					return
				}
			}
		}
		w.Flush()
		if err = w.Error(); err != nil {
			err = fmt.Errorf("failed to flush csv writer: %v", err)
			return
		}
	}
	out = buf.Bytes()
	return
}
