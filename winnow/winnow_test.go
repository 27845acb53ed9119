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

package winnow

import (
	"fmt"
	"testing"
)

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func tokensN(n int) []string {
	toks := make([]string, n)
	for i := range toks {
		toks[i] = fmt.Sprintf("t%d", i)
	}
	return toks
}

func TestFilter_TooFewTokens(t *testing.T) {
	if got := Filter(tokensN(3), 5, 4, false); got != nil {
		t.Errorf("Filter() = %v, want nil", got)
	}
}

func TestFilter_PartialWindowStillSelects(t *testing.T) {
	// k=3, w=10, but only 4 tokens -> 2 kgrams, far fewer than w.
	got := Filter(tokensN(4), 3, 10, false)
	if len(got) != 1 {
		t.Fatalf("Filter() selected %d fingerprints, want 1", len(got))
	}
}

func TestFilter_Deterministic(t *testing.T) {
	toks := tokensN(50)
	a := Filter(toks, 5, 4, false)
	b := Filter(toks, 5, 4, false)
	if len(a) != len(b) {
		t.Fatalf("non-deterministic selection count: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].Hash != b[i].Hash || a[i].KgramIndex != b[i].KgramIndex || !equalStrings(a[i].Tokens, b[i].Tokens) {
			t.Fatalf("non-deterministic selection at %d: %v vs %v", i, a[i], b[i])
		}
	}
}

// TestFilter_Density checks the core Winnowing guarantee (§4.2,
// invariant 4 of §8): in any window of w+k-1 tokens, at least one
// k-gram is selected.
func TestFilter_Density(t *testing.T) {
	k, w := 5, 4
	toks := tokensN(200)
	got := Filter(toks, k, w, false)

	selected := make(map[int]bool, len(got))
	for _, fp := range got {
		selected[fp.KgramIndex] = true
	}

	windowTokens := w + k - 1
	numKgrams := len(toks) - k + 1
	for start := 0; start+windowTokens <= len(toks); start++ {
		// kgram indices whose k-gram lies fully within [start, start+windowTokens)
		lo, hi := start, start+w-1 // w consecutive kgram start indices
		found := false
		for i := lo; i <= hi && i < numKgrams; i++ {
			if selected[i] {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("no fingerprint selected in window starting at token %d", start)
		}
	}
}

func TestFilter_TieBreaksRightmost(t *testing.T) {
	// Force two identical kgrams (same tokens => same hash) within one
	// window; the rightmost must be the one selected.
	toks := []string{"a", "a", "a", "a", "b", "b"}
	// k=1 so each token is its own kgram; tokens "a","a","a","a" all
	// hash identically.
	got := Filter(toks, 1, 4, false)
	if len(got) == 0 {
		t.Fatal("Filter() selected nothing")
	}
	if got[0].KgramIndex != 3 {
		t.Errorf("first selection index = %d, want 3 (rightmost tie)", got[0].KgramIndex)
	}
}

func TestFilter_KgramData(t *testing.T) {
	toks := tokensN(10)
	got := Filter(toks, 3, 2, true)
	for _, fp := range got {
		if len(fp.Tokens) != 3 {
			t.Errorf("fp.Tokens len = %d, want 3", len(fp.Tokens))
		}
	}
}
