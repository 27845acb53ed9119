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

// Package report implements the thin summary/filter view of §4.6: a
// Report wraps a built FingerprintIndex and exposes the sorted/
// filtered pair views and the aggregate Summary a caller displays.
package report

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/sourcegraph/plagdetect/index"
	"github.com/sourcegraph/plagdetect/pair"
)

// Summary is the aggregate view of §4.6: totalFiles, totalPairs,
// suspiciousPairs, average/max similarity, language, warnings.
type Summary struct {
	TotalFiles        int
	TotalPairs        int
	SuspiciousPairs   int
	AverageSimilarity float64
	MaxSimilarity     float64
	Language          string
	Warnings          []error
}

// Report is {options, files, index, name?, warnings[]} per §3. Name
// defaults to a generated id (google/uuid, wired per SPEC_FULL) when
// the caller doesn't supply one, mirroring the teacher's use of uuid
// for generated identifiers elsewhere in the stack.
type Report struct {
	Language           string
	Index              *index.FingerprintIndex
	Name               string
	Warnings           []error
	SuspicionThreshold float64
	MinFragmentLength  int
	SortBy             pair.SortKey
}

// New returns a Report over idx. If name == "", a uuid is generated so
// every Report has a stable, non-empty identifier. sortBy's zero value
// is pair.BySimilarity, so callers that don't care about ordering can
// pass the zero value.
func New(language string, idx *index.FingerprintIndex, name string, warnings []error, suspicionThreshold float64, minFragmentLength int, sortBy pair.SortKey) *Report {
	if name == "" {
		name = uuid.NewString()
	}
	if suspicionThreshold == 0 {
		suspicionThreshold = 0.5
	}
	if minFragmentLength == 0 {
		minFragmentLength = 1
	}
	return &Report{
		Language:           language,
		Index:              idx,
		Name:               name,
		Warnings:           warnings,
		SuspicionThreshold: suspicionThreshold,
		MinFragmentLength:  minFragmentLength,
		SortBy:             sortBy,
	}
}

// GetSummary computes the aggregate view over every non-ignored pair
// with a non-empty fingerprint intersection (§4.6).
func (r *Report) GetSummary(ctx context.Context) (Summary, error) {
	pairs, err := r.Index.AllPairs(ctx, r.SortBy)
	if err != nil {
		return Summary{}, err
	}

	s := Summary{
		TotalFiles: len(r.Index.Files()),
		TotalPairs: len(pairs),
		Language:   r.Language,
		Warnings:   r.Warnings,
	}

	var sum float64
	for _, p := range pairs {
		sim := p.Similarity()
		sum += sim
		if sim > s.MaxSimilarity {
			s.MaxSimilarity = sim
		}
		if sim >= r.SuspicionThreshold {
			s.SuspiciousPairs++
		}
	}
	if len(pairs) > 0 {
		s.AverageSimilarity = sum / float64(len(pairs))
	}
	return s, nil
}

// GetTopPairs returns the first n pairs in r.SortBy order (the n
// highest-similarity pairs under the default key), per §4.6
// "getTopPairs(n)". A negative n is treated as zero rather than
// panicking on the slice bound.
func (r *Report) GetTopPairs(ctx context.Context, n int) ([]*pair.Pair, error) {
	pairs, err := r.Index.AllPairs(ctx, r.SortBy)
	if err != nil {
		return nil, err
	}
	if n < 0 {
		n = 0
	}
	if n < len(pairs) {
		pairs = pairs[:n]
	}
	return pairs, nil
}

// CheckSufficientFiles reports the §7 InsufficientFiles condition
// (fewer than two non-ignored files with at least one fingerprint) for
// callers that build a Report directly rather than going through
// cmd/plagindex, which already guards this before constructing one.
func (r *Report) CheckSufficientFiles() error {
	return r.Index.CheckSufficientFiles()
}

// GetSuspiciousPairs returns every pair whose similarity is at or
// above threshold, preserving the r.SortBy order of allPairs (§4.6
// "getSuspiciousPairs(threshold)").
func (r *Report) GetSuspiciousPairs(ctx context.Context, threshold float64) ([]*pair.Pair, error) {
	pairs, err := r.Index.AllPairs(ctx, r.SortBy)
	if err != nil {
		return nil, err
	}
	out := pairs[:0:0]
	for _, p := range pairs {
		if p.Similarity() >= threshold {
			out = append(out, p)
		}
	}
	return out, nil
}

// GetFragments returns p's fragments at or above r's configured
// minimum fragment length, sorted by left k-gram start for stable
// display (§4.5 "Minimum fragment length").
func (r *Report) GetFragments(p *pair.Pair) []pair.Fragment {
	frags := p.BuildFragments(r.MinFragmentLength)
	sort.SliceStable(frags, func(i, j int) bool {
		return frags[i].LeftKgrams.From < frags[j].LeftKgrams.From
	})
	return frags
}
