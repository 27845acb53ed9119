// Copyright 2016 Google Inc. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package submissions walks a directory of student submissions into
// the (path, content, metadata) triples the core engine consumes
// (spec.md §1), shared by the cmd/plagindex and cmd/plagserve
// binaries so neither duplicates the other's file-walking logic.
package submissions

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/sourcegraph/plagdetect/internal/lang"
	"github.com/sourcegraph/plagdetect/token"
)

// Walk collects every file under root whose extension maps to a
// supported tokenizer variant, tagging each with a studentId metadata
// entry derived from its top-level subdirectory — the common "one
// directory per submission" layout the core's (path, content,
// metadata) contract expects.
func Walk(root string) ([]*token.File, error) {
	var files []*token.File
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if _, ok := lang.Detect(path); !ok {
			return nil
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			rel = path
		}
		files = append(files, token.NewFile(path, content, map[string]string{
			"studentId": firstPathComponent(rel),
		}))
		return nil
	})
	return files, err
}

// firstPathComponent returns rel up to (excluding) its first path
// separator, or rel itself if it has none.
func firstPathComponent(rel string) string {
	for i := 0; i < len(rel); i++ {
		if os.IsPathSeparator(rel[i]) {
			return rel[:i]
		}
	}
	return rel
}

// DetectLanguage reports the majority tokenizer variant among files,
// for display purposes only (§4.6 Summary.language).
func DetectLanguage(files []*token.File) string {
	counts := map[lang.Variant]int{}
	for _, f := range files {
		if v, ok := lang.Detect(f.Path); ok {
			counts[v]++
		}
	}
	best := lang.Unknown
	bestCount := 0
	for v, n := range counts {
		if n > bestCount {
			best, bestCount = v, n
		}
	}
	return best.String()
}
