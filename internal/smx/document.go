/*
Package smx implements the streamization analysis core: the loop analysis
document schema, the per-loop stream classifier, and the population
aggregator.
*/
package smx

// Copyright (C) 2023-2025 the SMX authors
// SPDX-License-Identifier: Apache-2.0

// document.go defines the loop analysis document consumed by the classifier.
// The document is produced by the stream-memory printer pass of the SMX
// compiler plugin; the schema here must stay in sync with its JSON output.

import (
	"encoding/json"
	"fmt"
)

// DepStreamKind identifies what an address factor depends on. It is a closed
// set; switches over it are expected to be exhaustive.
type DepStreamKind int

const (
	// DepNotAStream marks a factor whose operand is not a stream, e.g., a
	// loop-invariant scalar or a loop-variant temporary.
	DepNotAStream DepStreamKind = iota
	// DepInductionVariable marks a factor that reads an induction variable
	// stream.
	DepInductionVariable
	// DepMemory marks a factor that reads another memory stream's value,
	// i.e., a pointer-chasing access.
	DepMemory
)

const (
	depNotAStreamStr        = "notAStream"
	depInductionVariableStr = "inductionVariable"
	depMemoryStr            = "memory"
)

func (k DepStreamKind) String() string {
	switch k {
	case DepNotAStream:
		return depNotAStreamStr
	case DepInductionVariable:
		return depInductionVariableStr
	case DepMemory:
		return depMemoryStr
	}
	return fmt.Sprintf("DepStreamKind(%d)", int(k))
}

func parseDepStreamKind(s string) (DepStreamKind, error) {
	switch s {
	case depNotAStreamStr:
		return DepNotAStream, nil
	case depInductionVariableStr:
		return DepInductionVariable, nil
	case depMemoryStr:
		return DepMemory, nil
	}
	return 0, fmt.Errorf("unknown dependent stream kind: %q", s)
}

func (k DepStreamKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

func (k *DepStreamKind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	kind, err := parseDepStreamKind(s)
	if err != nil {
		return err
	}
	*k = kind
	return nil
}

func (k DepStreamKind) MarshalYAML() (any, error) {
	return k.String(), nil
}

func (k *DepStreamKind) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	kind, err := parseDepStreamKind(s)
	if err != nil {
		return err
	}
	*k = kind
	return nil
}

// StrideOp is the arithmetic operator a stride applies per iteration.
type StrideOp int

const (
	OpAdd StrideOp = iota
	OpSub
	OpMul
	OpShl
	OpUDiv
	OpSDiv
)

var strideOpStrs = map[StrideOp]string{
	OpAdd:  "add",
	OpSub:  "sub",
	OpMul:  "mul",
	OpShl:  "shl",
	OpUDiv: "udiv",
	OpSDiv: "sdiv",
}

func (o StrideOp) String() string {
	if s, ok := strideOpStrs[o]; ok {
		return s
	}
	return fmt.Sprintf("StrideOp(%d)", int(o))
}

// IsDivision reports whether the operator is an integer division. Division
// applied to a non-constant quantity can lose precision, so the classifier
// treats it specially.
func (o StrideOp) IsDivision() bool {
	return o == OpUDiv || o == OpSDiv
}

func parseStrideOp(s string) (StrideOp, error) {
	for op, str := range strideOpStrs {
		if s == str {
			return op, nil
		}
	}
	return 0, fmt.Errorf("unknown stride operator: %q", s)
}

func (o StrideOp) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.String())
}

func (o *StrideOp) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	op, err := parseStrideOp(s)
	if err != nil {
		return err
	}
	*o = op
	return nil
}

func (o StrideOp) MarshalYAML() (any, error) {
	return o.String(), nil
}

func (o *StrideOp) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	op, err := parseStrideOp(s)
	if err != nil {
		return err
	}
	*o = op
	return nil
}

// MemOpcode is the opcode of a memory operation.
type MemOpcode int

const (
	OpLoad MemOpcode = iota
	OpStore
)

const (
	opLoadStr  = "load"
	opStoreStr = "store"
)

func (o MemOpcode) String() string {
	switch o {
	case OpLoad:
		return opLoadStr
	case OpStore:
		return opStoreStr
	}
	return fmt.Sprintf("MemOpcode(%d)", int(o))
}

func parseMemOpcode(s string) (MemOpcode, error) {
	switch s {
	case opLoadStr:
		return OpLoad, nil
	case opStoreStr:
		return OpStore, nil
	}
	return 0, fmt.Errorf("unknown memory opcode: %q", s)
}

func (o MemOpcode) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.String())
}

func (o *MemOpcode) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	op, err := parseMemOpcode(s)
	if err != nil {
		return err
	}
	*o = op
	return nil
}

func (o MemOpcode) MarshalYAML() (any, error) {
	return o.String(), nil
}

func (o *MemOpcode) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	op, err := parseMemOpcode(s)
	if err != nil {
		return err
	}
	*o = op
	return nil
}

// Stride is the per-iteration delta operation applied to an address factor.
type Stride struct {
	Op        StrideOp `json:"op" yaml:"op"`
	Invariant bool     `json:"invariant" yaml:"invariant"`
}

// AddressFactor is one term of a memory stream's address computation.
// DepStream names the referenced stream; it is empty when DepStreamKind is
// DepNotAStream and the factor is a bare invariant.
type AddressFactor struct {
	DepStreamKind DepStreamKind `json:"depStreamKind" yaml:"depStreamKind"`
	DepStream     string        `json:"depStream,omitempty" yaml:"depStream,omitempty"`
	Invariant     bool          `json:"invariant" yaml:"invariant"`
	Strides       []Stride      `json:"strides" yaml:"strides"`
}

// MemoryStream describes the memory accesses of one address pattern across
// loop iterations. Width is the access size in bytes.
type MemoryStream struct {
	Name    string          `json:"name" yaml:"name"`
	Read    bool            `json:"read" yaml:"read"`
	Written bool            `json:"written" yaml:"written"`
	Width   int             `json:"width" yaml:"width"`
	Factors []AddressFactor `json:"factors" yaml:"factors"`
}

// FinalValue describes a loop's trip bound as seen by an induction variable
// stream.
type FinalValue struct {
	Invariant bool `json:"invariant" yaml:"invariant"`
}

// InductionVariableStream is a loop variable whose value evolves predictably
// per iteration. Parent names the enclosing induction variable and is empty
// for roots; the parents form a forest. FinalVal is nil when the loop's trip
// bound is unknown to the analysis.
type InductionVariableStream struct {
	Name       string      `json:"name" yaml:"name"`
	Parent     string      `json:"parent,omitempty" yaml:"parent,omitempty"`
	FinalVal   *FinalValue `json:"finalVal,omitempty" yaml:"finalVal,omitempty"`
	Increasing bool        `json:"increasing" yaml:"increasing"`
}

// MemoryOp is a single memory access instruction in the loop body. MemStream
// may name a stream that the analysis rejected and therefore is absent from
// the classified set.
type MemoryOp struct {
	MemOpcode MemOpcode `json:"memOpcode" yaml:"memOpcode"`
	MemStream string    `json:"memStream" yaml:"memStream"`
}

// LoopInfo identifies the analyzed loop in the source program.
type LoopInfo struct {
	StartLoc   string `json:"startLoc,omitempty" yaml:"startLoc,omitempty"`
	ParentFunc string `json:"parentFunc,omitempty" yaml:"parentFunc,omitempty"`
}

// LoopAnalysis is the analysis document of a single loop. All three
// collections are required; Loop is optional metadata.
type LoopAnalysis struct {
	Loop                     *LoopInfo                 `json:"loop,omitempty" yaml:"loop,omitempty"`
	MemStreams               []MemoryStream            `json:"memStreams" yaml:"memStreams"`
	InductionVariableStreams []InductionVariableStream `json:"inductionVariableStreams" yaml:"inductionVariableStreams"`
	MemOps                   []MemoryOp                `json:"memOps" yaml:"memOps"`
}

// Validate checks the document against the structural schema. It reports the
// first missing collection or field found. Dangling name references are not
// validation errors; the classifier resolves them to "not supported".
func (d *LoopAnalysis) Validate() error {
	if d.MemStreams == nil {
		return fmt.Errorf("loop analysis document: missing memStreams")
	}
	if d.InductionVariableStreams == nil {
		return fmt.Errorf("loop analysis document: missing inductionVariableStreams")
	}
	if d.MemOps == nil {
		return fmt.Errorf("loop analysis document: missing memOps")
	}
	for i, ms := range d.MemStreams {
		if ms.Name == "" {
			return fmt.Errorf("memStreams[%d]: missing name", i)
		}
		for j, factor := range ms.Factors {
			if factor.DepStreamKind != DepNotAStream && factor.DepStream == "" {
				return fmt.Errorf("memStreams[%d].factors[%d]: missing depStream for kind %s", i, j, factor.DepStreamKind)
			}
		}
	}
	for i, iv := range d.InductionVariableStreams {
		if iv.Name == "" {
			return fmt.Errorf("inductionVariableStreams[%d]: missing name", i)
		}
	}
	for i, op := range d.MemOps {
		if op.MemStream == "" {
			return fmt.Errorf("memOps[%d]: missing memStream", i)
		}
	}
	return nil
}

// Name returns a human-readable identifier for the loop, falling back to the
// given default when the document carries no loop metadata.
func (d *LoopAnalysis) Name(fallback string) string {
	if d.Loop != nil && d.Loop.StartLoc != "" {
		return d.Loop.StartLoc
	}
	return fallback
}
