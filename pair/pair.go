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
	"sort"

	"github.com/RoaringBitmap/roaring"

	"github.com/sourcegraph/plagdetect/entry"
)

// SortKey enumerates the allPairs ordering keys of §4.3/§6.
type SortKey int

const (
	BySimilarity SortKey = iota
	ByOverlap
	ByLongest
)

// Pair is the comparison surface between two FileEntries (§4.4).
// Metrics are computed lazily and cached on first access; a Pair never
// outlives the FingerprintIndex that produced its FileEntries.
type Pair struct {
	Left, Right *entry.FileEntry

	kgramData bool

	sharedHashes []uint64 // sorted ascending; computed once
	allFragments []Fragment
	coveredOnce  bool
	leftCovered  int
	rightCovered int
}

// New constructs a Pair. kgramData controls whether assembled
// fragments retain MergedData (only meaningful if the index itself
// was built with kgramData, since Occurrence.Data is empty otherwise).
func New(left, right *entry.FileEntry, kgramData bool) *Pair {
	return &Pair{Left: left, Right: right, kgramData: kgramData}
}

// sharedNonIgnored returns the sorted hashes present in both
// FileEntries' Shared sets — already non-ignored by construction,
// since the index moves ignored fingerprints out of Shared (§4.4).
func (p *Pair) sharedNonIgnored() []uint64 {
	if p.sharedHashes != nil {
		return p.sharedHashes
	}
	var hashes []uint64
	small, big := p.Left.Shared, p.Right.Shared
	if len(big) < len(small) {
		small, big = big, small
	}
	for h := range small {
		if _, ok := big[h]; ok {
			hashes = append(hashes, h)
		}
	}
	sort.Slice(hashes, func(i, j int) bool { return hashes[i] < hashes[j] })
	p.sharedHashes = hashes
	if p.sharedHashes == nil {
		p.sharedHashes = []uint64{}
	}
	return p.sharedHashes
}

// Overlap is the number of shared non-ignored fingerprints (§4.4).
func (p *Pair) Overlap() int { return len(p.sharedNonIgnored()) }

// Similarity is the Jaccard-like score of §4.4: |shared| / min of the
// two files' non-ignored fingerprint counts, using the smaller file so
// a large file cannot dilute a small one.
func (p *Pair) Similarity() float64 {
	denom := p.Left.NonIgnoredCount()
	if r := p.Right.NonIgnoredCount(); r < denom {
		denom = r
	}
	if denom == 0 {
		return 0
	}
	return float64(p.Overlap()) / float64(denom)
}

// pairedOccurrenceStream builds the full cartesian-product stream of
// §4.5, sorted by (leftKgramIdx, rightKgramIdx) ascending.
func (p *Pair) pairedOccurrenceStream() []PairedOccurrence {
	hashes := p.sharedNonIgnored()
	var stream []PairedOccurrence
	for _, h := range hashes {
		sf := p.Left.Shared[h]
		leftOccs := sf.PartMap[p.Left.ID]
		rightOccs := sf.PartMap[p.Right.ID]
		for _, lo := range leftOccs {
			for _, ro := range rightOccs {
				stream = append(stream, PairedOccurrence{
					Left:        astRegion(p.Left.TF.File, lo),
					Right:       astRegion(p.Right.TF.File, ro),
					Fingerprint: sf,
					leftRank:    p.Left.RankOf(lo.KgramIndex),
					rightRank:   p.Right.RankOf(ro.KgramIndex),
				})
			}
		}
	}
	sort.Slice(stream, func(i, j int) bool {
		if stream[i].leftKgramStart() != stream[j].leftKgramStart() {
			return stream[i].leftKgramStart() < stream[j].leftKgramStart()
		}
		return stream[i].rightKgramStart() < stream[j].rightKgramStart()
	})
	return stream
}

// rawFragments assembles every fragment (minFragmentLength == 1),
// caching the result: BuildFragments filters from this, and
// Longest/leftCovered/rightCovered are intrinsic metrics computed from
// the unfiltered set.
func (p *Pair) rawFragments() []Fragment {
	if p.allFragments != nil {
		return p.allFragments
	}
	p.allFragments = assembleFragments(p.pairedOccurrenceStream(), p.kgramData)
	if p.allFragments == nil {
		p.allFragments = []Fragment{}
	}
	return p.allFragments
}

// BuildFragments returns the fragments of §4.5, dropping any whose
// k-gram length is below minFragmentLength (default 1, §4.5 "Minimum
// fragment length"). Re-invoking BuildFragments on the same Pair
// returns fragments with identical ranges and pair counts.
func (p *Pair) BuildFragments(minFragmentLength int) []Fragment {
	if minFragmentLength < 1 {
		minFragmentLength = 1
	}
	raw := p.rawFragments()
	out := make([]Fragment, 0, len(raw))
	for _, f := range raw {
		if f.LeftKgrams.Len() >= minFragmentLength {
			out = append(out, f)
		}
	}
	return out
}

// Longest is the length, in k-grams, of the longest assembled
// fragment (§4.4).
func (p *Pair) Longest() int {
	longest := 0
	for _, f := range p.rawFragments() {
		if n := f.LeftKgrams.Len(); n > longest {
			longest = n
		}
	}
	return longest
}

func (p *Pair) computeCoverage() {
	if p.coveredOnce {
		return
	}
	p.coveredOnce = true
	leftBm := roaring.New()
	rightBm := roaring.New()
	for _, f := range p.rawFragments() {
		leftBm.AddRange(uint64(f.LeftKgrams.From), uint64(f.LeftKgrams.To))
		rightBm.AddRange(uint64(f.RightKgrams.From), uint64(f.RightKgrams.To))
	}
	p.leftCovered = int(leftBm.GetCardinality())
	p.rightCovered = int(rightBm.GetCardinality())
}

// LeftCovered is the count of distinct k-gram positions in Left that
// appear in any fragment (§4.4).
func (p *Pair) LeftCovered() int {
	p.computeCoverage()
	return p.leftCovered
}

// RightCovered is the count of distinct k-gram positions in Right
// that appear in any fragment (§4.4).
func (p *Pair) RightCovered() int {
	p.computeCoverage()
	return p.rightCovered
}

// LeftTotal is the total k-gram position count of Left (§4.4).
func (p *Pair) LeftTotal() int { return p.Left.NumKgrams() }

// RightTotal is the total k-gram position count of Right (§4.4).
func (p *Pair) RightTotal() int { return p.Right.NumKgrams() }

// FingerprintHash re-exposes the hash of a PairedOccurrence's backing
// SharedFingerprint, useful for callers that display provenance.
func FingerprintHash(po PairedOccurrence) uint64 {
	if po.Fingerprint == nil {
		return 0
	}
	return po.Fingerprint.Hash
}
