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

package pair

import (
	"testing"

	"github.com/sourcegraph/plagdetect/entry"
	"github.com/sourcegraph/plagdetect/fingerprint"
	"github.com/sourcegraph/plagdetect/region"
	"github.com/sourcegraph/plagdetect/token"
)

// newTestEntry builds a FileEntry with numKgrams synthetic, non-overlapping
// single-line k-gram regions, enough for the Pair metrics under test.
// SelectedKgrams is modeled as Winnow having densely selected every
// k-gram (0..numKgrams-1), matching these fixtures' raw-index adjacency
// expectations; the real sparse-selection case is exercised in
// integration/engine_test.go against the actual Winnow filter.
func newTestEntry(id fingerprint.FileID, path string, numKgrams int) *entry.FileEntry {
	tf := &token.TokenizedFile{
		File: token.NewFile(path, []byte(path), nil),
	}
	ranges := make([]region.Region, numKgrams)
	selected := make([]int, numKgrams)
	for i := range ranges {
		ranges[i] = region.New(i, 0, i, 1)
		selected[i] = i
	}
	fe := entry.NewFileEntry(id, tf, ranges, false)
	fe.SelectedKgrams = selected
	return fe
}

// share links a hash across two entries with one occurrence each, both
// referencing the same SharedFingerprint, the way a FingerprintIndex does.
func share(hash uint64, left *entry.FileEntry, leftIdx int, right *entry.FileEntry, rightIdx int) {
	sf := fingerprint.New(hash, nil)
	sf.Add(left.ID, fingerprint.Occurrence{FileID: left.ID, KgramIndex: leftIdx, Location: region.New(leftIdx, 0, leftIdx, 1)})
	sf.Add(right.ID, fingerprint.Occurrence{FileID: right.ID, KgramIndex: rightIdx, Location: region.New(rightIdx, 0, rightIdx, 1)})
	left.Shared[hash] = sf
	right.Shared[hash] = sf
}

// TestPair_IdenticalFiles covers S1: two files tokenize identically, every
// k-gram position shared, so similarity is 1 and the whole file is one
// fragment.
func TestPair_IdenticalFiles(t *testing.T) {
	left := newTestEntry(1, "a.py", 5)
	right := newTestEntry(2, "b.py", 5)
	for i := 0; i < 5; i++ {
		share(uint64(100+i), left, i, right, i)
	}

	p := New(left, right, false)
	if got := p.Similarity(); got != 1.0 {
		t.Fatalf("Similarity() = %v, want 1.0", got)
	}
	if got := p.Overlap(); got != 5 {
		t.Fatalf("Overlap() = %d, want 5", got)
	}
	if got := p.Longest(); got != 5 {
		t.Fatalf("Longest() = %d, want 5", got)
	}
	if got := p.LeftCovered(); got != 5 {
		t.Fatalf("LeftCovered() = %d, want 5", got)
	}
	if got := p.RightCovered(); got != 5 {
		t.Fatalf("RightCovered() = %d, want 5", got)
	}
}

// TestPair_DisjointFiles covers S2: no shared hashes at all.
func TestPair_DisjointFiles(t *testing.T) {
	left := newTestEntry(1, "a.py", 5)
	right := newTestEntry(2, "b.py", 5)

	p := New(left, right, false)
	if got := p.Similarity(); got != 0 {
		t.Fatalf("Similarity() = %v, want 0", got)
	}
	if got := p.Overlap(); got != 0 {
		t.Fatalf("Overlap() = %d, want 0", got)
	}
	if got := p.Longest(); got != 0 {
		t.Fatalf("Longest() = %d, want 0", got)
	}
	if frags := p.BuildFragments(1); len(frags) != 0 {
		t.Fatalf("BuildFragments() = %d fragments, want 0", len(frags))
	}
}

// TestPair_CartesianFragments covers S6: the same shared k-gram occurs
// twice in the left file, once in the right file, so the cartesian product
// over occurrences must assemble two distinct single-k-gram fragments
// rather than collapsing them into one.
func TestPair_CartesianFragments(t *testing.T) {
	left := newTestEntry(1, "a.py", 10)
	right := newTestEntry(2, "b.py", 10)

	sf := fingerprint.New(42, nil)
	sf.Add(left.ID, fingerprint.Occurrence{FileID: left.ID, KgramIndex: 1, Location: region.New(1, 0, 1, 1)})
	sf.Add(left.ID, fingerprint.Occurrence{FileID: left.ID, KgramIndex: 7, Location: region.New(7, 0, 7, 1)})
	sf.Add(right.ID, fingerprint.Occurrence{FileID: right.ID, KgramIndex: 3, Location: region.New(3, 0, 3, 1)})
	left.Shared[42] = sf
	right.Shared[42] = sf

	p := New(left, right, false)
	frags := p.BuildFragments(1)
	if len(frags) != 2 {
		t.Fatalf("BuildFragments() = %d fragments, want 2", len(frags))
	}
	if p.Overlap() != 1 {
		t.Fatalf("Overlap() = %d, want 1 (one shared fingerprint)", p.Overlap())
	}
}

// TestPair_Symmetry covers S7: swapping Left and Right must not change
// Similarity, Overlap, or Longest.
func TestPair_Symmetry(t *testing.T) {
	left := newTestEntry(1, "a.py", 6)
	right := newTestEntry(2, "b.py", 8)
	share(10, left, 0, right, 0)
	share(11, left, 1, right, 1)
	share(12, left, 2, right, 2)

	p1 := New(left, right, false)
	p2 := New(right, left, false)

	if p1.Overlap() != p2.Overlap() {
		t.Fatalf("Overlap() asymmetric: %d vs %d", p1.Overlap(), p2.Overlap())
	}
	if p1.Longest() != p2.Longest() {
		t.Fatalf("Longest() asymmetric: %d vs %d", p1.Longest(), p2.Longest())
	}
	// Similarity divides by the smaller of the two NonIgnoredCounts,
	// which does not depend on which file is Left, so the scores must
	// match too.
	if p1.Similarity() != p2.Similarity() {
		t.Fatalf("Similarity() asymmetric: %v vs %v", p1.Similarity(), p2.Similarity())
	}
}

// TestPair_Deterministic covers S8: repeated BuildFragments calls on the
// same Pair return identical fragment ranges and counts.
func TestPair_Deterministic(t *testing.T) {
	left := newTestEntry(1, "a.py", 6)
	right := newTestEntry(2, "b.py", 6)
	share(20, left, 0, right, 0)
	share(21, left, 1, right, 1)
	share(22, left, 4, right, 4)

	p := New(left, right, false)
	first := p.BuildFragments(1)
	second := p.BuildFragments(1)

	if len(first) != len(second) {
		t.Fatalf("fragment count differs across calls: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].LeftKgrams != second[i].LeftKgrams || first[i].RightKgrams != second[i].RightKgrams {
			t.Fatalf("fragment %d differs across calls: %+v vs %+v", i, first[i], second[i])
		}
	}
}

// TestPair_MinFragmentLength checks that BuildFragments filters out
// fragments shorter than the requested minimum.
func TestPair_MinFragmentLength(t *testing.T) {
	left := newTestEntry(1, "a.py", 6)
	right := newTestEntry(2, "b.py", 6)
	share(30, left, 0, right, 0)
	share(31, left, 1, right, 1)
	share(32, left, 4, right, 4) // isolated, length 1

	p := New(left, right, false)
	all := p.BuildFragments(1)
	if len(all) != 2 {
		t.Fatalf("BuildFragments(1) = %d fragments, want 2", len(all))
	}
	long := p.BuildFragments(2)
	if len(long) != 1 {
		t.Fatalf("BuildFragments(2) = %d fragments, want 1", len(long))
	}
	if long[0].LeftKgrams.Len() != 2 {
		t.Fatalf("surviving fragment length = %d, want 2", long[0].LeftKgrams.Len())
	}
}
