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

// Package winnow implements the rolling polynomial hash and Winnow
// fingerprint-selection filter of §4.2: given a token stream and
// parameters (k, w), it produces the subset of k-gram positions that
// the standard Winnowing algorithm guarantees to select, expected
// selection density near 2/(w+1), at least one selected k-gram in
// every window of w consecutive k-grams.
//
// Like the teacher's trigram packing in shard_builder.go, the hash
// here is a cheap filter, not an identity: collisions are tolerated,
// never a correctness failure.
package winnow

import "github.com/cespare/xxhash/v2"

// base is the polynomial rolling-hash multiplier. Any large odd
// constant works; wraparound uint64 arithmetic, not modular
// arithmetic, keeps this allocation-free and branch-free per token.
const base uint64 = 1000000007

// Fingerprint is one selected (hash, position) pair (§4.2 "Output").
// Tokens is populated only when Filter is called with kgramData=true.
type Fingerprint struct {
	Hash       uint64
	KgramIndex int
	Tokens     []string
}

// tokenHash maps a token string to its integer value via xxhash,
// cheap and collision-resistant enough that the filter's correctness
// doesn't depend on token-hash uniqueness (§4.2 "Rolling hash").
func tokenHash(tok string) uint64 {
	return xxhash.Sum64String(tok)
}

// kgramHashes computes the rolling hash of every k-gram in tokens,
// hashes[i] corresponding to tokens[i:i+k]. Returns nil if
// len(tokens) < k.
func kgramHashes(tokens []string, k int) []uint64 {
	n := len(tokens)
	if n < k || k <= 0 {
		return nil
	}
	m := n - k + 1
	hashes := make([]uint64, m)

	var basePowK1 uint64 = 1
	for i := 0; i < k-1; i++ {
		basePowK1 *= base
	}

	var h uint64
	for i := 0; i < k; i++ {
		h = h*base + tokenHash(tokens[i])
	}
	hashes[0] = h

	for i := 1; i < m; i++ {
		h = (h-tokenHash(tokens[i-1])*basePowK1)*base + tokenHash(tokens[i+k-1])
		hashes[i] = h
	}
	return hashes
}

type deque struct {
	hash []uint64
	idx  []int
}

func (d *deque) pushBack(hash uint64, idx int) {
	d.hash = append(d.hash, hash)
	d.idx = append(d.idx, idx)
}

func (d *deque) popBack() {
	d.hash = d.hash[:len(d.hash)-1]
	d.idx = d.idx[:len(d.idx)-1]
}

func (d *deque) popFront() {
	d.hash = d.hash[1:]
	d.idx = d.idx[1:]
}

func (d *deque) back() uint64  { return d.hash[len(d.hash)-1] }
func (d *deque) frontIdx() int { return d.idx[0] }
func (d *deque) frontHash() uint64 {
	return d.hash[0]
}
func (d *deque) empty() bool { return len(d.idx) == 0 }

// Filter runs the Winnow selection rule over tokens for parameters
// (k, w) and returns the selected fingerprints in increasing
// KgramIndex order. When kgramData is true, each Fingerprint also
// carries the token substring it covers.
//
// Edge cases (§4.2): len(tokens) < k yields an empty slice. 0 < M < w
// (M = len(tokens)-k+1) still yields fingerprints — one selection for
// the sole, never-full window — satisfying the "may still yield
// fingerprints" note even though the window never reaches full size.
func Filter(tokens []string, k, w int, kgramData bool) []Fingerprint {
	hashes := kgramHashes(tokens, k)
	m := len(hashes)
	if m == 0 {
		return nil
	}
	if w < 1 {
		w = 1
	}

	var out []Fingerprint
	var win deque
	lastSelectedIdx := -1

	selectFront := func() {
		idx := win.frontIdx()
		if idx == lastSelectedIdx {
			return
		}
		lastSelectedIdx = idx
		fp := Fingerprint{Hash: win.frontHash(), KgramIndex: idx}
		if kgramData {
			fp.Tokens = append([]string(nil), tokens[idx:idx+k]...)
		}
		out = append(out, fp)
	}

	for i := 0; i < m; i++ {
		h := hashes[i]
		// Ties break rightmost: pop anything >= the incoming hash so
		// the deque always keeps the rightmost occurrence of the
		// current minimum.
		for !win.empty() && win.back() >= h {
			win.popBack()
		}
		win.pushBack(h, i)

		for win.frontIdx() <= i-w {
			win.popFront()
		}

		if i >= w-1 {
			selectFront()
		}
	}

	// m < w: the window never reached full size; still select the
	// overall minimum for the one partial window that exists.
	if lastSelectedIdx == -1 && !win.empty() {
		selectFront()
	}

	return out
}
