package summary

// Copyright (C) 2023-2025 the SMX authors
// SPDX-License-Identifier: Apache-2.0

// filter.go evaluates the user's --filter expression against per-loop
// classification metrics.

import (
	"fmt"

	"github.com/casbin/govaluate"

	"github.com/rv-smx/utils/internal/smx"
)

// filter is a compiled population filter expression.
type filter struct {
	expression string
	evaluable  *govaluate.EvaluableExpression // parse expression once, evaluate per loop
}

func newFilter(expression string) (*filter, error) {
	evaluable, err := govaluate.NewEvaluableExpression(expression)
	if err != nil {
		return nil, fmt.Errorf("failed to parse filter expression %q: %v", expression, err)
	}
	return &filter{expression: expression, evaluable: evaluable}, nil
}

// filterVariables exposes a loop's classification metrics to the filter
// expression. Values are float64 because that is what the evaluator's
// arithmetic operates on.
func filterVariables(c *smx.Classification) map[string]any {
	return map[string]any{
		"num_ivs":                float64(c.NumIVStreams),
		"supported_ivs":          float64(c.NumSupportedIVStreams()),
		"iv_chain_len":           float64(c.MaxIVChainLen),
		"num_mss":                float64(c.NumMemStreams),
		"supported_mss":          float64(c.NumSupportedMemStreams()),
		"indirect_mss":           float64(c.NumIndirectMemStreams()),
		"max_iv_factors":         float64(c.MaxIVFactors),
		"max_mem_factors":        float64(c.MaxMemFactors),
		"max_width":              float64(c.MaxAccessWidth),
		"loads":                  float64(c.NumLoads),
		"stream_loads":           float64(c.NumStreamLoads),
		"indirect_stream_loads":  float64(c.NumIndirectStreamLoads),
		"stores":                 float64(c.NumStores),
		"stream_stores":          float64(c.NumStreamStores),
		"indirect_stream_stores": float64(c.NumIndirectStreamStores),
	}
}

// matches reports whether the loop passes the filter.
func (f *filter) matches(c *smx.Classification) (matched bool, err error) {
	defer func() {
		if errx := recover(); errx != nil {
			err = fmt.Errorf("failed to evaluate filter expression %q: %v", f.expression, errx)
		}
	}()
	result, err := f.evaluable.Evaluate(filterVariables(c))
	if err != nil {
		err = fmt.Errorf("failed to evaluate filter expression %q: %v", f.expression, err)
		return
	}
	matched, ok := result.(bool)
	if !ok {
		err = fmt.Errorf("filter expression %q is not a condition", f.expression)
	}
	return
}
