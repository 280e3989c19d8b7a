package smx

// Copyright (C) 2023-2025 the SMX authors
// SPDX-License-Identifier: Apache-2.0

// load.go reads analysis result files produced by the compiler plugin. Each
// file holds a list of loop analysis documents, encoded as JSON (the
// plugin's native output) or YAML.

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// Job names one analysis result file to include in a population.
type Job struct {
	Label string `yaml:"label"`
	Path  string `yaml:"path"`
}

type jobsFile struct {
	Jobs []Job `yaml:"jobs"`
}

// documentExtensions are the file extensions recognized as analysis result
// files when scanning a directory.
var documentExtensions = []string{".json", ".yaml", ".yml"}

func hasDocumentExtension(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range documentExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

func defaultLabel(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// JobsFromPaths expands the given paths into jobs, one per result file.
// Directories contribute their result files in name order; labels default to
// the file name without extension.
func JobsFromPaths(paths []string) (jobs []Job, err error) {
	for _, path := range paths {
		var info os.FileInfo
		info, err = os.Stat(path)
		if err != nil {
			err = errors.Wrapf(err, "failed to stat input path %s", path)
			return
		}
		if !info.IsDir() {
			jobs = append(jobs, Job{Label: defaultLabel(path), Path: path})
			continue
		}
		var entries []os.DirEntry
		entries, err = os.ReadDir(path)
		if err != nil {
			err = errors.Wrapf(err, "failed to read input directory %s", path)
			return
		}
		var names []string
		for _, entry := range entries {
			if !entry.IsDir() && hasDocumentExtension(entry.Name()) {
				names = append(names, entry.Name())
			}
		}
		sort.Strings(names)
		for _, name := range names {
			filePath := filepath.Join(path, name)
			jobs = append(jobs, Job{Label: defaultLabel(filePath), Path: filePath})
		}
	}
	return
}

// JobsFromFile reads a YAML jobs file listing result files and their labels.
func JobsFromFile(path string) (jobs []Job, err error) {
	content, err := os.ReadFile(path) // #nosec G304
	if err != nil {
		err = errors.Wrapf(err, "failed to read jobs file %s", path)
		return
	}
	var file jobsFile
	if err = yaml.Unmarshal(content, &file); err != nil {
		err = errors.Wrapf(err, "failed to parse jobs file %s", path)
		return
	}
	labelUsed := make(map[string]bool)
	for i, job := range file.Jobs {
		if job.Path == "" {
			err = fmt.Errorf("jobs file %s: job %d has no path", path, i)
			return
		}
		if job.Label == "" {
			job.Label = defaultLabel(job.Path)
		}
		if labelUsed[job.Label] {
			err = fmt.Errorf("jobs file %s: duplicate job label %s", path, job.Label)
			return
		}
		labelUsed[job.Label] = true
		jobs = append(jobs, job)
	}
	return
}

// LoadDocuments reads all loop analysis documents from one result file. The
// format is chosen by file extension.
func LoadDocuments(path string) (docs []LoopAnalysis, err error) {
	content, err := os.ReadFile(path) // #nosec G304
	if err != nil {
		err = errors.Wrapf(err, "failed to read analysis result file %s", path)
		return
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(content, &docs)
	default:
		err = json.Unmarshal(content, &docs)
	}
	if err != nil {
		err = errors.Wrapf(err, "failed to parse analysis result file %s", path)
	}
	return
}

// ClassifyAll classifies the given documents, sharding them across a bounded
// number of workers. Classification has no cross-loop side effects, so the
// sharding does not affect results. Malformed documents do not abort the
// rest of the population: results keeps document order with a nil entry per
// failed document, and errs collects the corresponding errors.
func ClassifyAll(docs []LoopAnalysis, workers int) (results []*Classification, errs []error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(docs) {
		workers = len(docs)
	}
	results = make([]*Classification, len(docs))
	resultErrs := make([]error, len(docs))
	indices := make(chan int)
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indices {
				c, err := Classify(&docs[i])
				if err != nil {
					resultErrs[i] = errors.Wrapf(err, "loop %s", docs[i].Name(fmt.Sprintf("#%d", i)))
					continue
				}
				results[i] = c
			}
		}()
	}
	for i := range docs {
		indices <- i
	}
	close(indices)
	wg.Wait()
	for i := range docs {
		if resultErrs[i] != nil {
			errs = append(errs, resultErrs[i])
		}
	}
	return
}
