package summary

// Copyright (C) 2023-2025 the SMX authors
// SPDX-License-Identifier: Apache-2.0

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rv-smx/utils/internal/smx"
)

func classifyTestLoop(t *testing.T) *smx.Classification {
	t.Helper()
	doc := &smx.LoopAnalysis{
		MemStreams: []smx.MemoryStream{
			{
				Name:  "a",
				Read:  true,
				Width: 8,
				Factors: []smx.AddressFactor{
					{DepStreamKind: smx.DepInductionVariable, DepStream: "i"},
				},
			},
			{
				Name:    "b",
				Read:    true,
				Width:   4,
				Factors: []smx.AddressFactor{{DepStreamKind: smx.DepMemory, DepStream: "a"}},
			},
		},
		InductionVariableStreams: []smx.InductionVariableStream{
			{Name: "i", FinalVal: &smx.FinalValue{Invariant: true}, Increasing: true},
		},
		MemOps: []smx.MemoryOp{
			{MemOpcode: smx.OpLoad, MemStream: "a"},
			{MemOpcode: smx.OpLoad, MemStream: "b"},
		},
	}
	c, err := smx.Classify(doc)
	require.NoError(t, err)
	return c
}

func TestNewFilterParseError(t *testing.T) {
	_, err := newFilter("supported_mss >")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse filter expression")
}

func TestFilterMatches(t *testing.T) {
	c := classifyTestLoop(t)
	tests := []struct {
		expression string
		want       bool
	}{
		{"supported_mss > 0", true},
		{"supported_mss == 2", true},
		{"indirect_mss >= 1 && supported_ivs == 1", true},
		{"num_mss > 2", false},
		{"stream_loads == loads", true},
		{"stores > 0", false},
		{"max_width == 8", true},
		{"iv_chain_len >= 2", false},
	}
	for _, tt := range tests {
		t.Run(tt.expression, func(t *testing.T) {
			f, err := newFilter(tt.expression)
			require.NoError(t, err)
			matched, err := f.matches(c)
			require.NoError(t, err)
			assert.Equal(t, tt.want, matched)
		})
	}
}

func TestFilterNotACondition(t *testing.T) {
	f, err := newFilter("supported_mss + 1")
	require.NoError(t, err)
	_, err = f.matches(classifyTestLoop(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is not a condition")
}

func TestFilterUnknownVariable(t *testing.T) {
	f, err := newFilter("no_such_metric > 0")
	require.NoError(t, err)
	_, err = f.matches(classifyTestLoop(t))
	require.Error(t, err)
}
