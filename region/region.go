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

// Package region implements the source-position and k-gram-index
// primitives shared by every layer of the plagiarism engine: a Region
// locates a span of source text, a Range locates a span of k-gram
// indices.
package region

import "fmt"

// Region is a half-open rectangle over source positions, 0-indexed:
// [startRow, startCol) through [endRow, endCol). The invariant is
//
//	startRow < endRow || (startRow == endRow && startCol <= endCol)
type Region struct {
	StartRow, StartCol int
	EndRow, EndCol     int
}

// New constructs a Region, panicking if the ordering invariant is
// violated. Callers that can't guarantee the invariant holds should
// use Valid first; a violated Region invariant is an InvalidRegion
// bug per the engine's error taxonomy, not a recoverable condition.
func New(startRow, startCol, endRow, endCol int) Region {
	r := Region{StartRow: startRow, StartCol: startCol, EndRow: endRow, EndCol: endCol}
	if !r.Valid() {
		panic(fmt.Sprintf("region: invalid region %v", r))
	}
	return r
}

// Valid reports whether r satisfies the ordering invariant.
func (r Region) Valid() bool {
	if r.StartRow < r.EndRow {
		return true
	}
	return r.StartRow == r.EndRow && r.StartCol <= r.EndCol
}

// compare orders two (row, col) positions.
func compare(row1, col1, row2, col2 int) int {
	if row1 != row2 {
		if row1 < row2 {
			return -1
		}
		return 1
	}
	switch {
	case col1 < col2:
		return -1
	case col1 > col2:
		return 1
	default:
		return 0
	}
}

// Before reports whether r starts strictly before the start of o.
func (r Region) Before(o Region) bool {
	return compare(r.StartRow, r.StartCol, o.StartRow, o.StartCol) < 0
}

// Merge returns the smallest Region covering both r and o.
func (r Region) Merge(o Region) Region {
	start := r
	if compare(o.StartRow, o.StartCol, r.StartRow, r.StartCol) < 0 {
		start = o
	}
	end := r
	if compare(o.EndRow, o.EndCol, r.EndRow, r.EndCol) > 0 {
		end = o
	}
	return Region{
		StartRow: start.StartRow,
		StartCol: start.StartCol,
		EndRow:   end.EndRow,
		EndCol:   end.EndCol,
	}
}

// MergeAll folds Merge over a non-empty slice of Regions.
func MergeAll(rs []Region) Region {
	out := rs[0]
	for _, r := range rs[1:] {
		out = out.Merge(r)
	}
	return out
}

// Overlaps reports whether r and o share any source position, using
// the linear (start, end) ordering used throughout this package.
func (r Region) Overlaps(o Region) bool {
	startsBeforeOtherEnds := compare(r.StartRow, r.StartCol, o.EndRow, o.EndCol) < 0
	otherStartsBeforeEnds := compare(o.StartRow, o.StartCol, r.EndRow, r.EndCol) < 0
	return startsBeforeOtherEnds && otherStartsBeforeEnds
}

// WithEnd returns a copy of r whose end is set to (row, col). Used by
// the tokenizer to tighten an opening-token's Region to the start of
// its first child (§4.1).
func (r Region) WithEnd(row, col int) Region {
	r.EndRow, r.EndCol = row, col
	return r
}

// Range is an integer half-open interval [From, To) over k-gram
// indices, describing a contiguous run of k-grams inside one file.
type Range struct {
	From, To int
}

// Len is the number of k-gram positions the Range spans.
func (r Range) Len() int { return r.To - r.From }

// Abuts reports whether r ends exactly where o begins. Fragment
// assembly does not use it: pair.Fragment extends by selection-rank
// adjacency instead.
func (r Range) Abuts(o Range) bool { return r.To == o.From }

// Extend grows r.To to o.To, requiring r.Abuts(o).
func (r Range) Extend(o Range) Range {
	if !r.Abuts(o) {
		panic(fmt.Sprintf("region: %v does not abut %v", r, o))
	}
	return Range{From: r.From, To: o.To}
}
