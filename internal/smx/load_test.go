package smx

// Copyright (C) 2023-2025 the SMX authors
// SPDX-License-Identifier: Apache-2.0

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const resultFileJSON = `[
	{
		"memStreams": [
			{
				"name": "a",
				"read": true,
				"width": 4,
				"factors": [
					{"depStreamKind": "notAStream", "invariant": true, "strides": []}
				]
			}
		],
		"inductionVariableStreams": [],
		"memOps": [{"memOpcode": "load", "memStream": "a"}]
	},
	{
		"memStreams": [],
		"inductionVariableStreams": [],
		"memOps": []
	}
]`

const resultFileYAML = `
- memStreams:
    - name: b
      read: true
      width: 8
      factors:
        - depStreamKind: notAStream
          invariant: true
          strides: []
  inductionVariableStreams: []
  memOps: []
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDocuments(t *testing.T) {
	dir := t.TempDir()
	t.Run("json", func(t *testing.T) {
		path := writeFile(t, dir, "kernels.json", resultFileJSON)
		docs, err := LoadDocuments(path)
		require.NoError(t, err)
		require.Len(t, docs, 2)
		assert.Equal(t, "a", docs[0].MemStreams[0].Name)
	})
	t.Run("yaml", func(t *testing.T) {
		path := writeFile(t, dir, "kernels.yaml", resultFileYAML)
		docs, err := LoadDocuments(path)
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, "b", docs[0].MemStreams[0].Name)
	})
	t.Run("missing file", func(t *testing.T) {
		_, err := LoadDocuments(filepath.Join(dir, "nope.json"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read analysis result file")
	})
	t.Run("malformed content", func(t *testing.T) {
		path := writeFile(t, dir, "broken.json", "{not json")
		_, err := LoadDocuments(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse analysis result file")
	})
}

func TestJobsFromPaths(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "beta.json", resultFileJSON)
	writeFile(t, dir, "alpha.yaml", resultFileYAML)
	writeFile(t, dir, "notes.txt", "ignored")
	single := writeFile(t, dir, "single.json", resultFileJSON)

	jobs, err := JobsFromPaths([]string{single, dir})
	require.NoError(t, err)
	require.Len(t, jobs, 4)
	assert.Equal(t, Job{Label: "single", Path: single}, jobs[0])
	// directory entries come in name order
	assert.Equal(t, "alpha", jobs[1].Label)
	assert.Equal(t, "beta", jobs[2].Label)
	assert.Equal(t, "single", jobs[3].Label)

	_, err = JobsFromPaths([]string{filepath.Join(dir, "missing")})
	require.Error(t, err)
}

func TestJobsFromFile(t *testing.T) {
	dir := t.TempDir()
	t.Run("labels and defaults", func(t *testing.T) {
		path := writeFile(t, dir, "jobs.yaml", `
jobs:
  - label: baseline
    path: results/baseline.json
  - path: results/tuned.json
`)
		jobs, err := JobsFromFile(path)
		require.NoError(t, err)
		require.Len(t, jobs, 2)
		assert.Equal(t, Job{Label: "baseline", Path: "results/baseline.json"}, jobs[0])
		assert.Equal(t, Job{Label: "tuned", Path: "results/tuned.json"}, jobs[1])
	})
	t.Run("duplicate label", func(t *testing.T) {
		path := writeFile(t, dir, "dup.yaml", `
jobs:
  - label: same
    path: one.json
  - label: same
    path: two.json
`)
		_, err := JobsFromFile(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "duplicate job label")
	})
	t.Run("missing path", func(t *testing.T) {
		path := writeFile(t, dir, "nopath.yaml", `
jobs:
  - label: orphan
`)
		_, err := JobsFromFile(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "has no path")
	})
}

func TestClassifyAll(t *testing.T) {
	docs := []LoopAnalysis{
		*emptyDoc(),
		{}, // malformed, missing all collections
		*emptyDoc(),
	}
	docs[2].MemStreams = []MemoryStream{invariantStream("a", 4)}

	results, errs := ClassifyAll(docs, 4)
	require.Len(t, results, 3)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "loop #1")
	require.NotNil(t, results[0])
	assert.Nil(t, results[1])
	require.NotNil(t, results[2])
	assert.Equal(t, 1, results[2].NumSupportedMemStreams())
}

func TestClassifyAllNoDocuments(t *testing.T) {
	results, errs := ClassifyAll(nil, 0)
	assert.Empty(t, results)
	assert.Empty(t, errs)
}
