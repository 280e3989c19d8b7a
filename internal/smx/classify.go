package smx

// Copyright (C) 2023-2025 the SMX authors
// SPDX-License-Identifier: Apache-2.0

// classify.go decides which memory accesses of a loop the SMX stream unit
// can execute on its own. A memory stream is supported when its whole
// address computation rests on loop invariants, monotonically increasing
// induction variables, and other supported streams; anything else would put
// the host back on the address critical path.

import (
	"log/slog"

	mapset "github.com/deckarep/golang-set/v2"
)

// Classification is the per-loop classification result. It is computed once
// by Classify and not modified afterwards.
type Classification struct {
	// counts over the whole document, including streams and induction
	// variables the analysis rejected
	NumMemStreams int
	NumIVStreams  int
	// maximums over the accepted memory streams
	MaxIVFactors   int
	MaxMemFactors  int
	MaxAccessWidth int
	// maximum supported-ancestor chain length over the supported induction
	// variables
	MaxIVChainLen int
	// memory operation totals, split by how their stream classified
	NumLoads                int
	NumStreamLoads          int
	NumIndirectStreamLoads  int
	NumStores               int
	NumStreamStores         int
	NumIndirectStreamStores int

	supportedMSs mapset.Set[string]
	indirectMSs  mapset.Set[string]
	supportedIVs mapset.Set[string]
}

// NumSupportedMemStreams returns the number of supported memory streams.
func (c *Classification) NumSupportedMemStreams() int {
	return c.supportedMSs.Cardinality()
}

// NumIndirectMemStreams returns the number of supported memory streams whose
// address depends on another memory stream.
func (c *Classification) NumIndirectMemStreams() int {
	return c.indirectMSs.Cardinality()
}

// NumSupportedIVStreams returns the number of supported induction variable
// streams.
func (c *Classification) NumSupportedIVStreams() int {
	return c.supportedIVs.Cardinality()
}

// IsSupportedIV reports whether the named induction variable stream is
// supported.
func (c *Classification) IsSupportedIV(name string) bool {
	return c.supportedIVs.Contains(name)
}

// IsIndirectSupportedMS reports whether the named memory stream is supported
// and indirect.
func (c *Classification) IsIndirectSupportedMS(name string) bool {
	return c.indirectMSs.Contains(name)
}

// SupportedMemStreams returns the names of the supported memory streams.
func (c *Classification) SupportedMemStreams() []string {
	return c.supportedMSs.ToSlice()
}

// resolution states of a memory stream in the working pool
type msState uint8

const (
	msUnresolved msState = iota
	msInProgress
	msAccepted
	msRejected
)

// resolver carries the working state of memory stream resolution. The pool
// is index-addressed; rejected streams are dropped from the name index so
// nothing resolved later can depend on them.
type resolver struct {
	pool         []*MemoryStream
	index        map[string]int
	states       []msState
	candidateIVs mapset.Set[string]

	supportedMSs mapset.Set[string]
	indirectMSs  mapset.Set[string]
	// induction variables referenced by at least one accepted factor
	referencedIVs mapset.Set[string]
}

// Classify classifies the memory accesses of one loop. It returns an error
// only for a malformed document; dangling references, rejected streams, and
// empty collections are normal outcomes reflected in the result.
func Classify(doc *LoopAnalysis) (*Classification, error) {
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	r := &resolver{
		index:         make(map[string]int),
		candidateIVs:  mapset.NewThreadUnsafeSet[string](),
		supportedMSs:  mapset.NewThreadUnsafeSet[string](),
		indirectMSs:   mapset.NewThreadUnsafeSet[string](),
		referencedIVs: mapset.NewThreadUnsafeSet[string](),
	}
	// candidate induction variables: only a loop-invariant trip bound can be
	// prefetched ahead of the host
	for _, iv := range doc.InductionVariableStreams {
		if iv.FinalVal != nil && iv.FinalVal.Invariant {
			r.candidateIVs.Add(iv.Name)
		}
	}
	// the working pool holds the streams that are actually accessed
	for i := range doc.MemStreams {
		ms := &doc.MemStreams[i]
		if !ms.Read && !ms.Written {
			continue
		}
		r.index[ms.Name] = len(r.pool)
		r.pool = append(r.pool, ms)
	}
	r.states = make([]msState, len(r.pool))
	for i := range r.pool {
		r.resolve(i)
	}
	c := &Classification{
		NumMemStreams: len(doc.MemStreams),
		NumIVStreams:  len(doc.InductionVariableStreams),
		supportedMSs:  r.supportedMSs,
		indirectMSs:   r.indirectMSs,
	}
	c.supportedIVs = supportedIVs(doc, r.referencedIVs)
	c.MaxIVChainLen = maxIVChainLen(doc, c.supportedIVs)
	c.collectStreamMetrics(r)
	c.collectMemOps(doc)
	slog.Debug("classified loop",
		slog.String("loop", doc.Name("?")),
		slog.Int("memStreams", c.NumMemStreams),
		slog.Int("supported", c.NumSupportedMemStreams()),
		slog.Int("indirect", c.NumIndirectMemStreams()))
	return c, nil
}

// resolve drives the memory stream at pool index root to a final accepted or
// rejected state. Resolution is iterative with an explicit stack so that
// pathological dependency chains cannot exhaust the call stack, and the
// in-progress marker makes cyclic dependencies fail instead of looping. The
// final states do not depend on the order roots are resolved in: acceptance
// of a stream is a function of its dependencies' final states only.
func (r *resolver) resolve(root int) {
	if r.states[root] != msUnresolved {
		return
	}
	stack := []int{root}
	for len(stack) > 0 {
		idx := stack[len(stack)-1]
		switch r.states[idx] {
		case msAccepted, msRejected:
			// duplicate stack entry, already final
			stack = stack[:len(stack)-1]
		case msUnresolved:
			r.states[idx] = msInProgress
			pushed := false
			for _, factor := range r.pool[idx].Factors {
				if factor.DepStreamKind != DepMemory {
					continue
				}
				if dep, ok := r.index[factor.DepStream]; ok && r.states[dep] == msUnresolved {
					stack = append(stack, dep)
					pushed = true
				}
			}
			if pushed {
				continue
			}
			stack = stack[:len(stack)-1]
			r.finish(idx)
		case msInProgress:
			// dependencies are final now
			stack = stack[:len(stack)-1]
			r.finish(idx)
		}
	}
}

// finish evaluates the factors of a stream whose memory dependencies have
// reached a final state and records the outcome.
func (r *resolver) finish(idx int) {
	ms := r.pool[idx]
	indirect := false
	for _, factor := range ms.Factors {
		if !r.acceptFactor(factor) {
			r.states[idx] = msRejected
			// drop from the pool so nothing may depend on a rejected stream
			delete(r.index, ms.Name)
			return
		}
		if factor.DepStreamKind == DepMemory {
			indirect = true
		}
	}
	r.states[idx] = msAccepted
	r.supportedMSs.Add(ms.Name)
	if indirect {
		r.indirectMSs.Add(ms.Name)
	}
	for _, factor := range ms.Factors {
		if factor.DepStreamKind == DepInductionVariable {
			r.referencedIVs.Add(factor.DepStream)
		}
	}
}

// acceptFactor checks whether a single address factor is computable by the
// stream unit.
func (r *resolver) acceptFactor(factor AddressFactor) bool {
	for _, stride := range factor.Strides {
		// a loop-variant stride breaks address predictability
		if !stride.Invariant {
			return false
		}
		// division of a stream-derived quantity can lose accuracy; division
		// by an invariant constant is safe
		if stride.Op.IsDivision() && factor.DepStreamKind != DepNotAStream {
			return false
		}
	}
	switch factor.DepStreamKind {
	case DepNotAStream:
		return factor.Invariant
	case DepInductionVariable:
		return r.candidateIVs.Contains(factor.DepStream)
	case DepMemory:
		dep, ok := r.index[factor.DepStream]
		return ok && r.states[dep] == msAccepted
	}
	return false
}

// supportedIVs finalizes induction variable support: a variable must have
// been referenced by an accepted factor and must be monotonically
// increasing, otherwise its future values cannot be extrapolated.
func supportedIVs(doc *LoopAnalysis, referenced mapset.Set[string]) mapset.Set[string] {
	supported := mapset.NewThreadUnsafeSet[string]()
	for _, iv := range doc.InductionVariableStreams {
		if iv.Increasing && referenced.Contains(iv.Name) {
			supported.Add(iv.Name)
		}
	}
	return supported
}

// ivArena holds the induction variable parent forest as parallel arrays
// indexed by declaration order.
type ivArena struct {
	names     []string
	parent    []int // index of parent, -1 for roots and dangling parents
	supported []bool
	chain     []int // memoized chain lengths, 0 when not yet computed
}

// maxIVChainLen computes the chain length of every supported induction
// variable and returns the maximum. Chain length counts the variable itself
// plus its supported ancestors; unsupported ancestors are skipped over.
func maxIVChainLen(doc *LoopAnalysis, supported mapset.Set[string]) int {
	ivs := doc.InductionVariableStreams
	arena := &ivArena{
		names:     make([]string, len(ivs)),
		parent:    make([]int, len(ivs)),
		supported: make([]bool, len(ivs)),
		chain:     make([]int, len(ivs)),
	}
	indexOf := make(map[string]int, len(ivs))
	for i, iv := range ivs {
		arena.names[i] = iv.Name
		arena.supported[i] = supported.Contains(iv.Name)
		indexOf[iv.Name] = i
	}
	for i, iv := range ivs {
		arena.parent[i] = -1
		if iv.Parent != "" {
			if p, ok := indexOf[iv.Parent]; ok {
				arena.parent[i] = p
			}
		}
	}
	maxLen := 0
	for i := range ivs {
		if !arena.supported[i] {
			continue
		}
		maxLen = max(maxLen, arena.chainLen(i))
	}
	return maxLen
}

// nearestSupported returns the index of the nearest supported ancestor of i,
// or -1, compressing the parent link along the way. The climb is bounded so
// a malformed cyclic parent chain terminates.
func (a *ivArena) nearestSupported(i int) int {
	p := a.parent[i]
	for steps := 0; p != -1 && !a.supported[p]; steps++ {
		if steps >= len(a.names) {
			p = -1
			break
		}
		p = a.parent[p]
	}
	a.parent[i] = p
	return p
}

// chainLen returns the supported-ancestor chain length of the supported
// induction variable at index i, memoizing every index on the walked path.
func (a *ivArena) chainLen(i int) int {
	var path []int
	for i != -1 && a.chain[i] == 0 {
		if len(path) > len(a.names) {
			// cyclic parent chain, cut it off
			i = -1
			break
		}
		path = append(path, i)
		i = a.nearestSupported(i)
	}
	length := 0
	if i != -1 {
		length = a.chain[i]
	}
	for k := len(path) - 1; k >= 0; k-- {
		length++
		a.chain[path[k]] = length
	}
	return length
}

// collectStreamMetrics derives the per-loop maximums over the accepted
// memory streams.
func (c *Classification) collectStreamMetrics(r *resolver) {
	for i, ms := range r.pool {
		if r.states[i] != msAccepted {
			continue
		}
		numIVFactors := 0
		numMemFactors := 0
		for _, factor := range ms.Factors {
			switch factor.DepStreamKind {
			case DepInductionVariable:
				numIVFactors++
			case DepMemory:
				numMemFactors++
			case DepNotAStream:
			}
		}
		c.MaxIVFactors = max(c.MaxIVFactors, numIVFactors)
		c.MaxMemFactors = max(c.MaxMemFactors, numMemFactors)
		c.MaxAccessWidth = max(c.MaxAccessWidth, ms.Width)
	}
}

// collectMemOps classifies every memory operation by its referenced stream.
func (c *Classification) collectMemOps(doc *LoopAnalysis) {
	for _, op := range doc.MemOps {
		supported := c.supportedMSs.Contains(op.MemStream)
		indirect := c.indirectMSs.Contains(op.MemStream)
		switch op.MemOpcode {
		case OpLoad:
			c.NumLoads++
			if supported {
				c.NumStreamLoads++
			}
			if indirect {
				c.NumIndirectStreamLoads++
			}
		case OpStore:
			c.NumStores++
			if supported {
				c.NumStreamStores++
			}
			if indirect {
				c.NumIndirectStreamStores++
			}
		}
	}
}
