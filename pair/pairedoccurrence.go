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

// Package pair implements the two-file comparison surface of §4.4 and
// the fragment assembly of §4.5: Pair, PairedOccurrence, and Fragment.
// A Pair is a non-owning view constructed on demand from two
// entry.FileEntry values (§9 "Cyclic references avoided") — nothing
// here is persisted by the index; every value is freely recomputable.
package pair

import (
	"github.com/sourcegraph/plagdetect/fingerprint"
	"github.com/sourcegraph/plagdetect/region"
	"github.com/sourcegraph/plagdetect/token"
)

// PairedOccurrence is one shared-k-gram record between two files: one
// occurrence on the left, one on the right, both backed by the same
// SharedFingerprint (§3).
//
// leftRank/rightRank are each side's rank in its own FileEntry's
// Winnow-selection sequence (entry.FileEntry.RankOf), not the raw
// k-gram index — Fragment assembly extends along rank adjacency so
// that sparse Winnow selections on an identical diagonal still chain
// into one fragment (§4.5).
type PairedOccurrence struct {
	Left        token.ASTRegion
	Right       token.ASTRegion
	Fingerprint *fingerprint.SharedFingerprint

	leftRank, rightRank int
}

func astRegion(file *token.File, occ fingerprint.Occurrence) token.ASTRegion {
	return token.ASTRegion{
		File:            file,
		StartKgramIndex: occ.KgramIndex,
		EndKgramIndex:   occ.KgramIndex + 1,
		Location:        occ.Location,
		Data:            occ.Data,
	}
}

// leftKgramStart/rightKgramStart are the sort keys used to order the
// PairedOccurrence stream ascending (§4.5 "Paired occurrence stream").
func (po PairedOccurrence) leftKgramStart() int  { return po.Left.StartKgramIndex }
func (po PairedOccurrence) rightKgramStart() int { return po.Right.StartKgramIndex }

// kgramRangeSpan is a convenience used when initializing a Fragment
// from a single PairedOccurrence.
func kgramRangeSpan(a token.ASTRegion) region.Range {
	return region.Range{From: a.StartKgramIndex, To: a.EndKgramIndex}
}
