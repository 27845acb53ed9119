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

// Package entry holds the FileEntry type (§3): the per-file state a
// FingerprintIndex maintains while building and comparing files. It is
// its own package, independent of both index and pair, so that index
// can own FileEntry values and pair can read them without the two
// packages importing each other (§9 "Cyclic references avoided").
package entry

import (
	"fmt"
	"sort"

	"github.com/sourcegraph/plagdetect/fingerprint"
	"github.com/sourcegraph/plagdetect/region"
	"github.com/sourcegraph/plagdetect/token"
)

// FileEntry is the index's per-file bookkeeping: the tokenized file,
// its k-gram source ranges, and the partition of every fingerprint it
// contains into "shared" (counts toward similarity) and "ignored"
// (boilerplate or banned) sets.
type FileEntry struct {
	ID          fingerprint.FileID
	TF          *token.TokenizedFile
	KgramRanges []region.Region
	Shared      map[uint64]*fingerprint.SharedFingerprint
	Ignored     map[uint64]*fingerprint.SharedFingerprint
	IsIgnored   bool

	// SelectedKgrams is the ascending list of every k-gram index Winnow
	// selected for this file, regardless of a fingerprint's later
	// shared/ignored status — the file's own selection sequence (§4.2).
	// Fragment assembly keys extension off a k-gram's *rank* in this
	// sequence (see RankOf), not its raw index, since Winnow selects
	// only a sparse subset of k-grams: two fingerprints that are
	// consecutive in selection order are almost never at adjacent
	// absolute k-gram indices.
	SelectedKgrams []int
}

// NewFileEntry returns a FileEntry with initialized Shared/Ignored
// sets, ready for the index to populate.
func NewFileEntry(id fingerprint.FileID, tf *token.TokenizedFile, kgramRanges []region.Region, isIgnored bool) *FileEntry {
	return &FileEntry{
		ID:          id,
		TF:          tf,
		KgramRanges: kgramRanges,
		Shared:      make(map[uint64]*fingerprint.SharedFingerprint),
		Ignored:     make(map[uint64]*fingerprint.SharedFingerprint),
		IsIgnored:   isIgnored,
	}
}

// Path is a convenience accessor for the underlying file's path.
func (e *FileEntry) Path() string { return e.TF.File.Path }

// NumKgrams returns the total number of k-gram positions in the file
// (tokens − k + 1, or 0), used for the Pair.leftTotal/rightTotal
// metrics of §4.4.
func (e *FileEntry) NumKgrams() int { return len(e.KgramRanges) }

// NonIgnoredCount returns the number of distinct non-ignored shared
// fingerprints the file contains — the denominator basis for
// Pair.similarity (§4.4).
func (e *FileEntry) NonIgnoredCount() int { return len(e.Shared) }

// RankOf returns kgramIndex's position among every k-gram Winnow
// selected for this file. Every Occurrence the index records comes
// from a selected fingerprint, so kgramIndex is always present in
// SelectedKgrams; a miss means a caller passed an index that was never
// selected, which is a bug in the caller, not a recoverable condition.
func (e *FileEntry) RankOf(kgramIndex int) int {
	i := sort.SearchInts(e.SelectedKgrams, kgramIndex)
	if i >= len(e.SelectedKgrams) || e.SelectedKgrams[i] != kgramIndex {
		panic(fmt.Sprintf("entry: k-gram index %d was never selected by Winnow for %q", kgramIndex, e.Path()))
	}
	return i
}
