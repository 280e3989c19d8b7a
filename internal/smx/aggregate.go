package smx

// Copyright (C) 2023-2025 the SMX authors
// SPDX-License-Identifier: Apache-2.0

// aggregate.go reduces a population of per-loop classifications into one
// descriptive-statistics record for reporting.

import "sort"

// ValueFreq is a (value, occurrence count) pair from a frequency
// distribution. The zero value means the distribution had no nonzero bucket.
type ValueFreq struct {
	Value int
	Freq  int
}

// Summary is the population-level statistics record produced by an
// Aggregator.
type Summary struct {
	NumLoops int
	// a loop counts as fully streamizable when every one of its memory
	// streams is supported, partially when at least one but not all are; a
	// loop with no supported streams is neither
	NumPartiallyStreamizable int
	NumFullyStreamizable     int
	// maximum per-loop values; the most-frequent pairs consider nonzero
	// values only
	MaxSupportedIVs      int
	MostFreqSupportedIVs ValueFreq
	MaxIVChainLen        int
	MostFreqIVChainLen   ValueFreq
	MaxSupportedMSs      int
	MostFreqSupportedMSs ValueFreq
	MaxAccessWidth       int
	// sums across the population
	NumSupportedMSs         int
	NumIndirectMSs          int
	NumLoads                int
	NumStreamLoads          int
	NumIndirectStreamLoads  int
	NumStores               int
	NumStreamStores         int
	NumIndirectStreamStores int
}

// NumStreamizable returns the combined count of fully and partially
// streamizable loops.
func (s *Summary) NumStreamizable() int {
	return s.NumFullyStreamizable + s.NumPartiallyStreamizable
}

// Aggregator accumulates per-loop classifications. All of its accumulations
// are sums, maximums, and frequency-table merges, so classifications may be
// added in any order and partial aggregators may be merged in any order with
// the same outcome.
type Aggregator struct {
	numLoops     int
	numPartially int
	numFully     int
	ivDist       map[int]int
	chainDist    map[int]int
	msDist       map[int]int
	maxWidth     int
	sums         opSums
}

type opSums struct {
	supportedMSs         int
	indirectMSs          int
	loads                int
	streamLoads          int
	indirectStreamLoads  int
	stores               int
	streamStores         int
	indirectStreamStores int
}

// NewAggregator returns an empty Aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{
		ivDist:    make(map[int]int),
		chainDist: make(map[int]int),
		msDist:    make(map[int]int),
	}
}

// Add accumulates one loop's classification.
func (a *Aggregator) Add(c *Classification) {
	a.numLoops++
	numSupported := c.NumSupportedMemStreams()
	if numSupported > 0 {
		if numSupported == c.NumMemStreams {
			a.numFully++
		} else {
			a.numPartially++
		}
	}
	a.ivDist[c.NumSupportedIVStreams()]++
	a.chainDist[c.MaxIVChainLen]++
	a.msDist[numSupported]++
	a.maxWidth = max(a.maxWidth, c.MaxAccessWidth)
	a.sums.supportedMSs += numSupported
	a.sums.indirectMSs += c.NumIndirectMemStreams()
	a.sums.loads += c.NumLoads
	a.sums.streamLoads += c.NumStreamLoads
	a.sums.indirectStreamLoads += c.NumIndirectStreamLoads
	a.sums.stores += c.NumStores
	a.sums.streamStores += c.NumStreamStores
	a.sums.indirectStreamStores += c.NumIndirectStreamStores
}

// Merge folds another aggregator into this one. Merging is associative and
// commutative, so per-worker aggregators may be combined in any order.
func (a *Aggregator) Merge(b *Aggregator) {
	a.numLoops += b.numLoops
	a.numPartially += b.numPartially
	a.numFully += b.numFully
	for v, freq := range b.ivDist {
		a.ivDist[v] += freq
	}
	for v, freq := range b.chainDist {
		a.chainDist[v] += freq
	}
	for v, freq := range b.msDist {
		a.msDist[v] += freq
	}
	a.maxWidth = max(a.maxWidth, b.maxWidth)
	a.sums.supportedMSs += b.sums.supportedMSs
	a.sums.indirectMSs += b.sums.indirectMSs
	a.sums.loads += b.sums.loads
	a.sums.streamLoads += b.sums.streamLoads
	a.sums.indirectStreamLoads += b.sums.indirectStreamLoads
	a.sums.stores += b.sums.stores
	a.sums.streamStores += b.sums.streamStores
	a.sums.indirectStreamStores += b.sums.indirectStreamStores
}

// NumLoops returns the number of classifications added so far.
func (a *Aggregator) NumLoops() int {
	return a.numLoops
}

// Summarize reduces the accumulated classifications into a Summary.
func (a *Aggregator) Summarize() Summary {
	return Summary{
		NumLoops:                 a.numLoops,
		NumPartiallyStreamizable: a.numPartially,
		NumFullyStreamizable:     a.numFully,
		MaxSupportedIVs:          maxValue(a.ivDist),
		MostFreqSupportedIVs:     mostFreqNonzero(a.ivDist),
		MaxIVChainLen:            maxValue(a.chainDist),
		MostFreqIVChainLen:       mostFreqNonzero(a.chainDist),
		MaxSupportedMSs:          maxValue(a.msDist),
		MostFreqSupportedMSs:     mostFreqNonzero(a.msDist),
		MaxAccessWidth:           a.maxWidth,
		NumSupportedMSs:          a.sums.supportedMSs,
		NumIndirectMSs:           a.sums.indirectMSs,
		NumLoads:                 a.sums.loads,
		NumStreamLoads:           a.sums.streamLoads,
		NumIndirectStreamLoads:   a.sums.indirectStreamLoads,
		NumStores:                a.sums.stores,
		NumStreamStores:          a.sums.streamStores,
		NumIndirectStreamStores:  a.sums.indirectStreamStores,
	}
}

// maxValue returns the largest value observed in the distribution, the zero
// bucket included.
func maxValue(dist map[int]int) int {
	maxV := 0
	for v := range dist {
		maxV = max(maxV, v)
	}
	return maxV
}

// mostFreqNonzero returns the nonzero value with the highest occurrence
// count. Ties break toward the smallest value so the result does not depend
// on map iteration order.
func mostFreqNonzero(dist map[int]int) ValueFreq {
	values := make([]int, 0, len(dist))
	for v := range dist {
		if v != 0 {
			values = append(values, v)
		}
	}
	sort.Ints(values)
	var best ValueFreq
	for _, v := range values {
		if dist[v] > best.Freq {
			best = ValueFreq{Value: v, Freq: dist[v]}
		}
	}
	return best
}
