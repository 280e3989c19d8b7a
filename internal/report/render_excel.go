package report

// Copyright (C) 2023-2025 the SMX authors
// SPDX-License-Identifier: Apache-2.0

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"
)

const xlsxSheetName = "Report"

func cellName(col int, row int) (name string) {
	columnName, err := excelize.ColumnNumberToName(col)
	if err != nil {
		return
	}
	name, err = excelize.JoinCellName(columnName, row)
	if err != nil {
		return
	}
	return
}

// getValueForCell converts numeric strings to numbers so spreadsheet
// formulas work on them; everything else stays a string.
func getValueForCell(value string) any {
	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}
	if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
		return floatValue
	}
	return value
}

func createXlsxReport(allTableValues []TableValues) (out []byte, err error) {
	f := excelize.NewFile()
	_ = f.SetSheetName("Sheet1", xlsxSheetName)
	_ = f.SetColWidth(xlsxSheetName, "A", "A", 40)
	_ = f.SetColWidth(xlsxSheetName, "B", "P", 25)
	row := 1
	for _, tableValues := range allTableValues {
		renderXlsxTable(tableValues, f, &row)
	}
	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)
	if _, err = f.WriteTo(w); err != nil {
		err = fmt.Errorf("failed to write xlsx report to buffer: %v", err)
		return
	}
	out = buf.Bytes()
	return
}

func renderXlsxTable(tableValues TableValues, f *excelize.File, row *int) {
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold: true,
		},
	})
	alignLeft, _ := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{
			Horizontal: "left",
		},
	})
	// table name
	_ = f.SetCellValue(xlsxSheetName, cellName(1, *row), tableValues.Name)
	_ = f.SetCellStyle(xlsxSheetName, cellName(1, *row), cellName(1, *row), headerStyle)
	*row++
	if len(tableValues.Fields) == 0 || len(tableValues.Fields[0].Values) == 0 {
		msg := NoDataFound
		if tableValues.NoDataFound != "" {
			msg = tableValues.NoDataFound
		}
		_ = f.SetCellValue(xlsxSheetName, cellName(1, *row), msg)
		*row += 2
		return
	}
	if tableValues.HasRows {
		// field names as column headings across the top of the table
		col := 2
		for _, field := range tableValues.Fields {
			_ = f.SetCellValue(xlsxSheetName, cellName(col, *row), field.Name)
			_ = f.SetCellStyle(xlsxSheetName, cellName(col, *row), cellName(col, *row), headerStyle)
			col++
		}
		*row++
		numRows := len(tableValues.Fields[0].Values)
		for tableRow := range numRows {
			col = 2
			for _, field := range tableValues.Fields {
				value := getValueForCell(field.Values[tableRow])
				_ = f.SetCellValue(xlsxSheetName, cellName(col, *row), value)
				_ = f.SetCellStyle(xlsxSheetName, cellName(col, *row), cellName(col, *row), alignLeft)
				col++
			}
			*row++
		}
	} else {
		// field name followed by its value
		for _, field := range tableValues.Fields {
			var fieldValue string
			if len(field.Values) > 0 {
				fieldValue = field.Values[0]
			}
			_ = f.SetCellValue(xlsxSheetName, cellName(1, *row), field.Name)
			value := getValueForCell(fieldValue)
			_ = f.SetCellValue(xlsxSheetName, cellName(2, *row), value)
			_ = f.SetCellStyle(xlsxSheetName, cellName(2, *row), cellName(2, *row), alignLeft)
			*row++
		}
	}
	*row++
}
