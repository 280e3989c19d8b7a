package smx

// Copyright (C) 2023-2025 the SMX authors
// SPDX-License-Identifier: Apache-2.0

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// populationLoop classifies a synthetic loop with the given number of
// supported and rejected memory streams, one load per supported stream.
func populationLoop(t *testing.T, numSupported, numRejected int) *Classification {
	t.Helper()
	doc := emptyDoc()
	for i := range numSupported {
		name := fmt.Sprintf("s%d", i)
		doc.MemStreams = append(doc.MemStreams, invariantStream(name, 4))
		doc.MemOps = append(doc.MemOps, MemoryOp{MemOpcode: OpLoad, MemStream: name})
	}
	for i := range numRejected {
		doc.MemStreams = append(doc.MemStreams, variantStream(fmt.Sprintf("r%d", i)))
	}
	c, err := Classify(doc)
	require.NoError(t, err)
	return c
}

func TestAggregatorEmpty(t *testing.T) {
	s := NewAggregator().Summarize()
	assert.Equal(t, 0, s.NumLoops)
	assert.Equal(t, 0, s.NumStreamizable())
	assert.Equal(t, 0, s.MaxSupportedMSs)
	assert.Equal(t, ValueFreq{}, s.MostFreqSupportedMSs)
}

func TestAggregatorPopulation(t *testing.T) {
	// four loops: one fully streamizable, one partially, two not at all
	agg := NewAggregator()
	agg.Add(populationLoop(t, 2, 0))
	agg.Add(populationLoop(t, 1, 1))
	agg.Add(populationLoop(t, 0, 1))
	agg.Add(populationLoop(t, 0, 2))
	assert.Equal(t, 4, agg.NumLoops())

	s := agg.Summarize()
	assert.Equal(t, 4, s.NumLoops)
	assert.Equal(t, 1, s.NumFullyStreamizable)
	assert.Equal(t, 1, s.NumPartiallyStreamizable)
	assert.Equal(t, 2, s.NumStreamizable())
	assert.Equal(t, 2, s.MaxSupportedMSs)
	assert.Equal(t, 3, s.NumSupportedMSs)
	assert.Equal(t, 3, s.NumLoads)
	assert.Equal(t, 3, s.NumStreamLoads)
	assert.Equal(t, 0, s.NumStores)
}

func TestAggregatorMostFrequent(t *testing.T) {
	t.Run("zero bucket excluded", func(t *testing.T) {
		agg := NewAggregator()
		agg.Add(populationLoop(t, 0, 1))
		agg.Add(populationLoop(t, 0, 1))
		agg.Add(populationLoop(t, 0, 1))
		agg.Add(populationLoop(t, 2, 0))
		s := agg.Summarize()
		// the zero bucket dominates but must not win
		assert.Equal(t, ValueFreq{Value: 2, Freq: 1}, s.MostFreqSupportedMSs)
		// the maximum does include the zero bucket when nothing else exists
		assert.Equal(t, 2, s.MaxSupportedMSs)
	})
	t.Run("all zero", func(t *testing.T) {
		agg := NewAggregator()
		agg.Add(populationLoop(t, 0, 1))
		s := agg.Summarize()
		assert.Equal(t, ValueFreq{}, s.MostFreqSupportedMSs)
		assert.Equal(t, 0, s.MaxSupportedMSs)
	})
	t.Run("tie breaks toward the smallest value", func(t *testing.T) {
		agg := NewAggregator()
		agg.Add(populationLoop(t, 1, 0))
		agg.Add(populationLoop(t, 3, 0))
		agg.Add(populationLoop(t, 3, 0))
		agg.Add(populationLoop(t, 1, 0))
		s := agg.Summarize()
		assert.Equal(t, ValueFreq{Value: 1, Freq: 2}, s.MostFreqSupportedMSs)
	})
}

func TestAggregatorMerge(t *testing.T) {
	loops := []*Classification{
		populationLoop(t, 2, 0),
		populationLoop(t, 1, 1),
		populationLoop(t, 0, 2),
		populationLoop(t, 3, 0),
		populationLoop(t, 3, 1),
	}
	whole := NewAggregator()
	for _, c := range loops {
		whole.Add(c)
	}
	// shard the loops across two aggregators and merge in reverse order
	left := NewAggregator()
	right := NewAggregator()
	for i, c := range loops {
		if i%2 == 0 {
			left.Add(c)
		} else {
			right.Add(c)
		}
	}
	right.Merge(left)
	assert.Equal(t, whole.Summarize(), right.Summarize())
}
