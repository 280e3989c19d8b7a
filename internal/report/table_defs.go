/*
Package report renders classification results and population summaries as
tables in txt, json, csv, and xlsx formats.
*/
package report

// Copyright (C) 2023-2025 the SMX authors
// SPDX-License-Identifier: Apache-2.0

// table_defs.go defines the tables built from classification results.

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/rv-smx/utils/internal/smx"
)

// Field represents the values for a field in a table.
type Field struct {
	Name   string
	Values []string
}

// TableDefinition defines the structure of a table in the report.
type TableDefinition struct {
	Name        string
	HasRows     bool   // table is meant to be displayed in row form, i.e., a field may have multiple values
	NoDataFound string // message to display when no data is found
}

// TableValues combines the table definition with the resulting fields and
// their values.
type TableValues struct {
	TableDefinition
	Fields []Field
}

const (
	SummaryTableName = "Streamization Summary"
	LoopsTableName   = "Loops"
)

const NoDataFound = "No data found."

// prtr inserts separators at thousands, e.g., 1,234,567
var prtr = message.NewPrinter(language.English)

func formatCount(n int) string {
	return prtr.Sprintf("%d", n)
}

// formatCountPct renders a count with its share of a total, omitting the
// percentage when the denominator is zero.
func formatCountPct(n int, total int) string {
	if total == 0 {
		return formatCount(n)
	}
	return prtr.Sprintf("%d (%.2f%%)", n, float64(n)/float64(total)*100)
}

// formatValueFreq renders a (value, frequency) pair from a distribution, or
// an empty string when the distribution had no nonzero bucket.
func formatValueFreq(vf smx.ValueFreq) string {
	if vf.Freq == 0 {
		return ""
	}
	return prtr.Sprintf("%d (freq. %d)", vf.Value, vf.Freq)
}

// SummaryTable builds the population summary table from a Summary record.
func SummaryTable(s smx.Summary) TableValues {
	fields := []Field{
		{Name: "Loops", Values: []string{formatCount(s.NumLoops)}},
		{Name: "Partially Streamizable Loops", Values: []string{formatCountPct(s.NumPartiallyStreamizable, s.NumLoops)}},
		{Name: "Fully Streamizable Loops", Values: []string{formatCountPct(s.NumFullyStreamizable, s.NumLoops)}},
		{Name: "Streamizable Loops", Values: []string{formatCountPct(s.NumStreamizable(), s.NumLoops)}},
		{Name: "Max Induction Variable Streams", Values: []string{formatCount(s.MaxSupportedIVs)}},
		{Name: "Most Freq. Induction Variable Streams", Values: []string{formatValueFreq(s.MostFreqSupportedIVs)}},
		{Name: "Max Induction Variable Chain Length", Values: []string{formatCount(s.MaxIVChainLen)}},
		{Name: "Most Freq. Induction Variable Chain Length", Values: []string{formatValueFreq(s.MostFreqIVChainLen)}},
		{Name: "Max Memory Streams", Values: []string{formatCount(s.MaxSupportedMSs)}},
		{Name: "Most Freq. Memory Streams", Values: []string{formatValueFreq(s.MostFreqSupportedMSs)}},
		{Name: "Max Access Width", Values: []string{formatCount(s.MaxAccessWidth)}},
		{Name: "Supported Memory Streams", Values: []string{formatCount(s.NumSupportedMSs)}},
		{Name: "Indirect Memory Streams", Values: []string{formatCountPct(s.NumIndirectMSs, s.NumSupportedMSs)}},
		{Name: "Total Loads", Values: []string{formatCount(s.NumLoads)}},
		{Name: "Stream Loads", Values: []string{formatCountPct(s.NumStreamLoads, s.NumLoads)}},
		{Name: "Indirect Stream Loads", Values: []string{formatCountPct(s.NumIndirectStreamLoads, s.NumStreamLoads)}},
		{Name: "Total Stores", Values: []string{formatCount(s.NumStores)}},
		{Name: "Stream Stores", Values: []string{formatCountPct(s.NumStreamStores, s.NumStores)}},
		{Name: "Indirect Stream Stores", Values: []string{formatCountPct(s.NumIndirectStreamStores, s.NumStreamStores)}},
	}
	return TableValues{
		TableDefinition: TableDefinition{Name: SummaryTableName},
		Fields:          fields,
	}
}

// LoopsTable builds the per-loop metrics table. Labels and classifications
// are parallel slices, one entry per classified loop.
func LoopsTable(labels []string, classifications []*smx.Classification) TableValues {
	if len(labels) != len(classifications) {
		panic(fmt.Sprintf("expected %d labels, got %d", len(classifications), len(labels)))
	}
	fields := []Field{
		{Name: "Loop"},
		{Name: "IV Streams"},
		{Name: "Supported IV Streams"},
		{Name: "Max IV Chain Length"},
		{Name: "Memory Streams"},
		{Name: "Supported Memory Streams"},
		{Name: "Indirect Memory Streams"},
		{Name: "Max Access Width"},
		{Name: "Loads"},
		{Name: "Stream Loads"},
		{Name: "Indirect Stream Loads"},
		{Name: "Stores"},
		{Name: "Stream Stores"},
		{Name: "Indirect Stream Stores"},
	}
	for i, c := range classifications {
		values := []string{
			labels[i],
			formatCount(c.NumIVStreams),
			formatCount(c.NumSupportedIVStreams()),
			formatCount(c.MaxIVChainLen),
			formatCount(c.NumMemStreams),
			formatCount(c.NumSupportedMemStreams()),
			formatCount(c.NumIndirectMemStreams()),
			formatCount(c.MaxAccessWidth),
			formatCount(c.NumLoads),
			formatCount(c.NumStreamLoads),
			formatCount(c.NumIndirectStreamLoads),
			formatCount(c.NumStores),
			formatCount(c.NumStreamStores),
			formatCount(c.NumIndirectStreamStores),
		}
		for fieldIdx := range fields {
			fields[fieldIdx].Values = append(fields[fieldIdx].Values, values[fieldIdx])
		}
	}
	return TableValues{
		TableDefinition: TableDefinition{
			Name:        LoopsTableName,
			HasRows:     true,
			NoDataFound: "No loops classified.",
		},
		Fields: fields,
	}
}
