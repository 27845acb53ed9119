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

// Package fingerprint defines the SharedFingerprint and Occurrence
// types of §3: the inverted-index value owning every occurrence of one
// hash across every file in a FingerprintIndex.
package fingerprint

import (
	"sort"

	"github.com/sourcegraph/plagdetect/region"
)

// FileID is a stable, non-negative integer handle for a File, scoped
// to one FingerprintIndex (or analysis run) rather than the process
// (§9 "Identifiable ids"). SharedFingerprint stores files by FileID,
// not by reference, breaking the FingerprintIndex↔Pair↔FileEntry↔
// SharedFingerprint↔File cycle the source has (§9 "Cyclic references
// avoided").
type FileID uint64

// Occurrence is one appearance of a shared fingerprint inside one
// file: its k-gram index and source Region, and optionally the token
// substring it covers (only retained when the index was built with
// kgramData).
type Occurrence struct {
	FileID     FileID
	KgramIndex int
	Location   region.Region
	Data       []string
}

// KgramRange returns the Occurrence's single-k-gram index span.
func (o Occurrence) KgramRange() region.Range {
	return region.Range{From: o.KgramIndex, To: o.KgramIndex + 1}
}

// SharedFingerprint owns every occurrence of one hash across every
// file a FingerprintIndex has seen (§3). It is never a member of more
// than one FingerprintIndex, and PartMap's keys are always a subset of
// that index's files — the index is the only thing that constructs
// and mutates a SharedFingerprint.
type SharedFingerprint struct {
	Hash    uint64
	Kgram   []string // present only when the index retains kgramData
	Ignored bool

	// PartMap is append-only during build (§5 "Shared resources").
	PartMap map[FileID][]Occurrence
}

// New constructs an empty SharedFingerprint for hash.
func New(hash uint64, kgram []string) *SharedFingerprint {
	return &SharedFingerprint{
		Hash:    hash,
		Kgram:   kgram,
		PartMap: make(map[FileID][]Occurrence),
	}
}

// Add appends occ to the part list for fileID, inserting the file's
// entry on first sight — the usual entry-or-insert idiom, which is
// the resolution of the open question in §9 about "ensure the file's
// entry is present before first append": there is no reachable state
// where PartMap[fileID] exists but needs re-initializing.
func (sf *SharedFingerprint) Add(fileID FileID, occ Occurrence) {
	sf.PartMap[fileID] = append(sf.PartMap[fileID], occ)
}

// FileCount returns the number of distinct files that contain an
// occurrence of this fingerprint, used by the maxFingerprintFileCount
// boilerplate heuristic (§4.3).
func (sf *SharedFingerprint) FileCount() int { return len(sf.PartMap) }

// Files returns the fingerprint's file ids in ascending order, for
// deterministic iteration (§5 "Ordering guarantees").
func (sf *SharedFingerprint) Files() []FileID {
	out := make([]FileID, 0, len(sf.PartMap))
	for id := range sf.PartMap {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
