package report

// Copyright (C) 2023-2025 the SMX authors
// SPDX-License-Identifier: Apache-2.0

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rv-smx/utils/internal/smx"
)

func TestFormatCountPct(t *testing.T) {
	assert.Equal(t, "0", formatCountPct(0, 0))
	assert.Equal(t, "3", formatCountPct(3, 0)) // no percentage without a denominator
	assert.Equal(t, "1 (50.00%)", formatCountPct(1, 2))
	assert.Equal(t, "3 (75.00%)", formatCountPct(3, 4))
	assert.Equal(t, "1,234,567", formatCount(1234567))
}

func TestFormatValueFreq(t *testing.T) {
	assert.Equal(t, "", formatValueFreq(smx.ValueFreq{}))
	assert.Equal(t, "3 (freq. 2)", formatValueFreq(smx.ValueFreq{Value: 3, Freq: 2}))
}

func TestSummaryTable(t *testing.T) {
	s := smx.Summary{
		NumLoops:                 4,
		NumPartiallyStreamizable: 1,
		NumFullyStreamizable:     1,
		MostFreqSupportedMSs:     smx.ValueFreq{Value: 2, Freq: 3},
		NumLoads:                 10,
		NumStreamLoads:           5,
	}
	table := SummaryTable(s)
	assert.Equal(t, SummaryTableName, table.Name)
	assert.False(t, table.HasRows)
	require.Len(t, table.Fields, 19)
	byName := make(map[string]string)
	for _, field := range table.Fields {
		require.Len(t, field.Values, 1)
		byName[field.Name] = field.Values[0]
	}
	assert.Equal(t, "4", byName["Loops"])
	assert.Equal(t, "1 (25.00%)", byName["Partially Streamizable Loops"])
	assert.Equal(t, "2 (50.00%)", byName["Streamizable Loops"])
	assert.Equal(t, "2 (freq. 3)", byName["Most Freq. Memory Streams"])
	assert.Equal(t, "5 (50.00%)", byName["Stream Loads"])
	// zero denominators fall back to the plain count
	assert.Equal(t, "0", byName["Indirect Memory Streams"])
	assert.Equal(t, "0", byName["Stream Stores"])
}

func classifyOneLoop(t *testing.T) *smx.Classification {
	t.Helper()
	doc := &smx.LoopAnalysis{
		MemStreams: []smx.MemoryStream{
			{
				Name:  "a",
				Read:  true,
				Width: 8,
				Factors: []smx.AddressFactor{
					{DepStreamKind: smx.DepNotAStream, Invariant: true},
				},
			},
		},
		InductionVariableStreams: []smx.InductionVariableStream{},
		MemOps:                   []smx.MemoryOp{{MemOpcode: smx.OpLoad, MemStream: "a"}},
	}
	c, err := smx.Classify(doc)
	require.NoError(t, err)
	return c
}

func TestLoopsTable(t *testing.T) {
	c := classifyOneLoop(t)
	table := LoopsTable([]string{"kernel.c:42"}, []*smx.Classification{c})
	assert.Equal(t, LoopsTableName, table.Name)
	assert.True(t, table.HasRows)
	require.Len(t, table.Fields, 14)
	assert.Equal(t, "Loop", table.Fields[0].Name)
	assert.Equal(t, []string{"kernel.c:42"}, table.Fields[0].Values)
	byName := make(map[string]string)
	for _, field := range table.Fields {
		require.Len(t, field.Values, 1)
		byName[field.Name] = field.Values[0]
	}
	assert.Equal(t, "1", byName["Memory Streams"])
	assert.Equal(t, "1", byName["Supported Memory Streams"])
	assert.Equal(t, "0", byName["Indirect Memory Streams"])
	assert.Equal(t, "8", byName["Max Access Width"])
	assert.Equal(t, "1", byName["Stream Loads"])

	assert.Panics(t, func() { LoopsTable([]string{"one", "two"}, []*smx.Classification{c}) })
}

func TestCreateTextReport(t *testing.T) {
	tables := []TableValues{
		{
			TableDefinition: TableDefinition{Name: "Overview"},
			Fields: []Field{
				{Name: "Loops", Values: []string{"4"}},
				{Name: "Max Access Width", Values: []string{"8"}},
			},
		},
		{
			TableDefinition: TableDefinition{Name: "Rows", HasRows: true},
			Fields: []Field{
				{Name: "Loop", Values: []string{"a", "b"}},
				{Name: "Loads", Values: []string{"1", "12"}},
			},
		},
	}
	out, err := Create(FormatTxt, tables)
	require.NoError(t, err)
	text := string(out)
	assert.Contains(t, text, "Overview\n========\n")
	assert.Contains(t, text, "Loops:            4\n")
	assert.Contains(t, text, "Max Access Width: 8\n")
	assert.Contains(t, text, "Loop   Loads\n")
	assert.Contains(t, text, "a      1")
}

func TestCreateTextReportNoData(t *testing.T) {
	table := LoopsTable(nil, nil)
	out, err := Create(FormatTxt, []TableValues{table})
	require.NoError(t, err)
	assert.Contains(t, string(out), "No loops classified.")
}

func TestCreateJsonReport(t *testing.T) {
	c := classifyOneLoop(t)
	tables := []TableValues{LoopsTable([]string{"loop0"}, []*smx.Classification{c})}
	out, err := Create(FormatJson, tables)
	require.NoError(t, err)
	var parsed map[string][]map[string]string
	require.NoError(t, json.Unmarshal(out, &parsed))
	require.Contains(t, parsed, LoopsTableName)
	require.Len(t, parsed[LoopsTableName], 1)
	record := parsed[LoopsTableName][0]
	assert.Equal(t, "loop0", record["Loop"])
	assert.Equal(t, "1", record["Supported Memory Streams"])
}

func TestCreateCsvReport(t *testing.T) {
	tables := []TableValues{
		{
			TableDefinition: TableDefinition{Name: "Overview"},
			Fields:          []Field{{Name: "Loops", Values: []string{"4"}}},
		},
		{
			TableDefinition: TableDefinition{Name: "Rows", HasRows: true},
			Fields: []Field{
				{Name: "Loop", Values: []string{"a"}},
				{Name: "Loads", Values: []string{"1"}},
			},
		},
	}
	out, err := Create(FormatCsv, tables)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(out), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Loops,4", lines[0])
	assert.Equal(t, "", lines[1])
	assert.Equal(t, "Loop,Loads", lines[2])
	assert.Equal(t, "a,1", lines[3])
}

func TestCreateXlsxReport(t *testing.T) {
	c := classifyOneLoop(t)
	tables := []TableValues{
		SummaryTable(smx.Summary{NumLoops: 1}),
		LoopsTable([]string{"loop0"}, []*smx.Classification{c}),
	}
	out, err := Create(FormatXlsx, tables)
	require.NoError(t, err)
	assert.NotEmpty(t, out)
	// xlsx files are zip archives
	assert.Equal(t, "PK", string(out[:2]))
}

func TestCreateMismatchedFieldValues(t *testing.T) {
	tables := []TableValues{
		{
			TableDefinition: TableDefinition{Name: "Broken", HasRows: true},
			Fields: []Field{
				{Name: "A", Values: []string{"1", "2"}},
				{Name: "B", Values: []string{"1"}},
			},
		},
	}
	_, err := Create(FormatTxt, tables)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected 2 value(s) for field B")
}

func TestWriteReport(t *testing.T) {
	dir := t.TempDir()
	path, err := WriteReport([]byte("hello\n"), dir, "summary", FormatTxt)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "summary.txt"), path)
	content, err := os.ReadFile(path) // #nosec G304
	require.NoError(t, err)
	assert.Equal(t, "hello\n", string(content))
}
