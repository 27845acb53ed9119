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

	"github.com/sourcegraph/plagdetect/region"
)

// Fragment is one contiguous matching run between two files (§3).
// "Contiguous" is measured along each side's Winnow-selection sequence
// (see entry.FileEntry.RankOf), not along raw k-gram index: Winnow
// selects a sparse subset of k-grams (density ~2/(w+1)), so two
// fingerprints that are consecutive in selection order are almost
// never at adjacent absolute k-gram indices. LeftKgrams/RightKgrams
// still record the real k-gram index span the fragment covers — the
// first selected index through the last — since that span, not the
// count of intervening selections, is what a caller displays.
type Fragment struct {
	Pairs          []PairedOccurrence
	LeftKgrams     region.Range
	RightKgrams    region.Range
	LeftSelection  region.Region
	RightSelection region.Region
	MergedData     []string

	firstLeftRank, firstRightRank int
	lastLeftRank, lastRightRank   int
}

func newFragment(po PairedOccurrence, kgramData bool) Fragment {
	f := Fragment{
		Pairs:          []PairedOccurrence{po},
		LeftKgrams:     kgramRangeSpan(po.Left),
		RightKgrams:    kgramRangeSpan(po.Right),
		LeftSelection:  po.Left.Location,
		RightSelection: po.Right.Location,
		firstLeftRank:  po.leftRank,
		firstRightRank: po.rightRank,
		lastLeftRank:   po.leftRank,
		lastRightRank:  po.rightRank,
	}
	if kgramData && len(po.Left.Data) > 0 {
		f.MergedData = append([]string(nil), po.Left.Data...)
	}
	return f
}

// canExtend reports whether po is the immediate diagonal successor of
// f in selection order: po's rank on each side is exactly one past f's
// last rank on that side (§4.5 "Extension").
func (f *Fragment) canExtend(po PairedOccurrence) bool {
	return po.leftRank == f.lastLeftRank+1 && po.rightRank == f.lastRightRank+1
}

// extend appends po to f, assuming canExtend(po) holds.
func (f *Fragment) extend(po PairedOccurrence) {
	prevLeftEnd := f.LeftKgrams.To
	f.Pairs = append(f.Pairs, po)
	f.LeftKgrams.To = po.Left.EndKgramIndex
	f.RightKgrams.To = po.Right.EndKgramIndex
	f.LeftSelection = f.LeftSelection.Merge(po.Left.Location)
	f.RightSelection = f.RightSelection.Merge(po.Right.Location)
	f.lastLeftRank = po.leftRank
	f.lastRightRank = po.rightRank
	if len(po.Left.Data) > 0 {
		if po.Left.StartKgramIndex == prevLeftEnd {
			// Adjacent k-grams overlap by k-1 tokens; only the new
			// trailing token is unseen.
			f.MergedData = append(f.MergedData, po.Left.Data[len(po.Left.Data)-1])
		} else {
			// Winnow skipped the k-grams between the two selections,
			// so none of their tokens were ever observed; splice in
			// the whole new k-gram instead of just its tail.
			f.MergedData = append(f.MergedData, po.Left.Data...)
		}
	}
}

// abuts reports whether f's last selection and g's first selection are
// adjacent in selection-rank order on both sides — the
// Fragment-to-Fragment merge rule of §4.5.
func (f Fragment) abuts(g Fragment) bool {
	return f.lastLeftRank+1 == g.firstLeftRank && f.lastRightRank+1 == g.firstRightRank
}

// mergeFragments combines two abutting fragments into one, in the
// order (first, second).
func mergeFragments(first, second Fragment) Fragment {
	merged := Fragment{
		Pairs:          append(append([]PairedOccurrence(nil), first.Pairs...), second.Pairs...),
		LeftKgrams:     region.Range{From: first.LeftKgrams.From, To: second.LeftKgrams.To},
		RightKgrams:    region.Range{From: first.RightKgrams.From, To: second.RightKgrams.To},
		LeftSelection:  first.LeftSelection.Merge(second.LeftSelection),
		RightSelection: first.RightSelection.Merge(second.RightSelection),
		firstLeftRank:  first.firstLeftRank,
		firstRightRank: first.firstRightRank,
		lastLeftRank:   second.lastLeftRank,
		lastRightRank:  second.lastRightRank,
	}
	if first.MergedData != nil || second.MergedData != nil {
		merged.MergedData = append(append([]string(nil), first.MergedData...), second.MergedData...)
	}
	return merged
}

// assembleFragments runs the greedy linear pass plus the abutting
// merge pass of §4.5 over a PairedOccurrence stream already sorted by
// (leftKgramIdx, rightKgramIdx).
func assembleFragments(sorted []PairedOccurrence, kgramData bool) []Fragment {
	if len(sorted) == 0 {
		return nil
	}

	var frags []Fragment
	cur := newFragment(sorted[0], kgramData)
	for _, po := range sorted[1:] {
		if cur.canExtend(po) {
			cur.extend(po)
			continue
		}
		frags = append(frags, cur)
		cur = newFragment(po, kgramData)
	}
	frags = append(frags, cur)

	frags = mergeAbuttingFragments(frags)

	sort.Slice(frags, func(i, j int) bool {
		if frags[i].LeftKgrams.From != frags[j].LeftKgrams.From {
			return frags[i].LeftKgrams.From < frags[j].LeftKgrams.From
		}
		return frags[i].RightKgrams.From < frags[j].RightKgrams.From
	})
	return frags
}

// mergeAbuttingFragments repeatedly merges any two fragments whose
// (left end, right end) abut the other's (left start, right start),
// reconnecting diagonals that the linear pass split because of
// interleaved equal-hash occurrences (§4.5 "second pass").
func mergeAbuttingFragments(frags []Fragment) []Fragment {
	for {
		merged := false
		for i := 0; i < len(frags) && !merged; i++ {
			for j := 0; j < len(frags); j++ {
				if i == j {
					continue
				}
				if frags[i].abuts(frags[j]) {
					combined := mergeFragments(frags[i], frags[j])
					next := make([]Fragment, 0, len(frags)-1)
					for k, f := range frags {
						if k == i {
							next = append(next, combined)
						} else if k != j {
							next = append(next, f)
						}
					}
					frags = next
					merged = true
					break
				}
			}
		}
		if !merged {
			return frags
		}
	}
}
