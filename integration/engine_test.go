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

// Package integration runs the literal end-to-end scenarios of §8
// ("End-to-end scenarios") against the real pipeline: tree-sitter
// tokenization, Winnow selection, FingerprintIndex, and Report, not
// the synthetic token streams index_test.go and pair_test.go use to
// isolate each layer. Fixture-heavy, testify-based, in the style of
// the teacher's build/e2e_test.go.
package integration

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sourcegraph/plagdetect/index"
	"github.com/sourcegraph/plagdetect/pair"
	"github.com/sourcegraph/plagdetect/report"
	"github.com/sourcegraph/plagdetect/token"
)

func newIndex(t *testing.T, opts index.Options) *index.FingerprintIndex {
	t.Helper()
	if opts.KgramLength == 0 {
		opts.KgramLength = 3
	}
	if opts.KgramsInWindow == 0 {
		opts.KgramsInWindow = 2
	}
	return index.New(opts)
}

// S1: identical single-file clones.
func TestS1_IdenticalSingleFileClones(t *testing.T) {
	idx := newIndex(t, index.Options{})
	src := []byte("int a=1; int b=2;")
	files := []*token.File{
		token.NewFile("a.c", src, nil),
		token.NewFile("b.c", src, nil),
	}
	warnings, err := idx.AddFiles(context.Background(), files)
	require.NoError(t, err)
	require.Empty(t, warnings)

	rep := report.New("c", idx, "", nil, 0, 0, pair.BySimilarity)
	top, err := rep.GetTopPairs(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, top, 1)

	require.Equal(t, 1.0, top[0].Similarity())
	require.GreaterOrEqual(t, top[0].Overlap(), 1)

	// Winnow selects only a sparse subset of k-grams (density
	// ~2/(w+1)), so identical files don't select every k-gram index —
	// but since both sides select the exact same indices, every
	// mutually selected fingerprint is adjacent in *selection rank* to
	// the next, and fragment assembly chains them into a single
	// fragment (§4.5) even though the underlying k-gram indices have
	// gaps.
	frags := rep.GetFragments(top[0])
	require.Len(t, frags, 1, "every mutually selected fingerprint chains into one fragment via rank adjacency")
	require.Equal(t, frags[0].LeftKgrams, frags[0].RightKgrams, "identical content selects fingerprints at identical positions on both sides")
	require.Equal(t, top[0].LeftCovered(), top[0].RightCovered())
	require.Greater(t, frags[0].LeftKgrams.Len(), 0)
}

// S2: structurally disjoint files. The tokenizer emits AST node-type
// names, not literal text (§4.1 "the fingerprint is structural"), so
// two files differing only in a string literal's content — the
// distilled spec's original S2 fixtures — tokenize identically and
// are NOT disjoint at all (similarity 1.0). The fixtures below instead
// differ in actual AST shape: a bare assignment/binary-op expression
// against an unrelated class/loop/conditional/call structure, so
// there's no shared node-type run once k is long enough to span more
// than a single leaf node's open/type/close wrapper.
func TestS2_DisjointFiles(t *testing.T) {
	idx := newIndex(t, index.Options{KgramLength: 6, KgramsInWindow: 3})
	files := []*token.File{
		token.NewFile("a.py", []byte("x = a + b\n"), nil),
		token.NewFile("b.py", []byte(`class Counter:
    def tick(self):
        for i in range(10):
            if i % 2 == 0:
                print(i)
`), nil),
	}
	_, err := idx.AddFiles(context.Background(), files)
	require.NoError(t, err)

	rep := report.New("python", idx, "", nil, 0.5, 0, pair.BySimilarity)
	pairs, err := rep.GetSuspiciousPairs(context.Background(), 0.5)
	require.NoError(t, err)
	require.Empty(t, pairs, "no suspicious pairs at the default 0.5 threshold")

	p, err := idx.GetPair(0, 1)
	require.NoError(t, err)
	require.Less(t, p.Similarity(), 0.3)
	require.LessOrEqual(t, len(p.BuildFragments(1)), 1)
}

// S3: boilerplate suppression via maxFingerprintFileCount.
func TestS3_BoilerplateSuppression(t *testing.T) {
	max := 2
	idx := newIndex(t, index.Options{MaxFingerprintFileCount: &max})

	header := `
class Submission {
  private int id;
  private String name;
  private java.util.List<Integer> scores;
  public Submission(int id, String name) {
    this.id = id;
    this.name = name;
  }
  public int getId() { return id; }
}
`
	bodies := []string{
		"public int uniqueOne() { return 1; }",
		"public int uniqueTwo() { return 2; }",
		"public int uniqueThree() { return 3; }",
	}
	var files []*token.File
	for i, body := range bodies {
		files = append(files, token.NewFile(
			string(rune('a'+i))+".java",
			[]byte(header+body+"\n}"),
			nil,
		))
	}
	_, err := idx.AddFiles(context.Background(), files)
	require.NoError(t, err)

	require.NoError(t, idx.CheckInvariants())

	pairs, err := idx.AllPairs(context.Background(), pair.BySimilarity)
	require.NoError(t, err)
	for _, p := range pairs {
		// Each pair's unique body differs entirely; once the shared
		// header's fingerprints are ignored (seen in all 3 > max=2
		// files), nothing but noise remains.
		require.Less(t, p.Similarity(), 0.3, "header-only overlap must drop once ignored")
	}
}

// S4: an explicitly ignored template file excludes its fingerprints
// from every subsequent pair.
func TestS4_IgnoredFileExcludesTemplateFingerprints(t *testing.T) {
	idx := newIndex(t, index.Options{})

	template := `
def helper():
    return 42
`
	require.NoError(t, idx.AddIgnoredFile(context.Background(), token.NewFile("template.py", []byte(template), nil)))

	students := []string{
		"def solve_a():\n    return 1\n",
		"def solve_b():\n    return 2\n",
		"def solve_c():\n    return 3\n",
	}
	var files []*token.File
	for i, s := range students {
		files = append(files, token.NewFile(string(rune('a'+i))+".py", []byte(template+s), nil))
	}
	_, err := idx.AddFiles(context.Background(), files)
	require.NoError(t, err)
	require.NoError(t, idx.CheckInvariants())

	pairs, err := idx.AllPairs(context.Background(), pair.BySimilarity)
	require.NoError(t, err)
	for _, p := range pairs {
		for _, frag := range p.BuildFragments(1) {
			for _, po := range frag.Pairs {
				require.NotNil(t, po.Fingerprint)
				require.False(t, po.Fingerprint.Ignored, "template fingerprints must not surface in reported fragments")
			}
		}
	}
}

// S5: ordering invariance — adding files [A,B,C] vs [C,A,B] produces
// identical summaries AND identical pair orderings, keyed by path
// rather than file id (ids may differ across the two builds, and
// AllPairs always puts the smaller id on the Left, so which path is
// "left" for a given pair can flip between the two builds too — the
// path-pair identity itself, normalized to a sorted tuple, is what
// must stay in the same relative order).
func TestS5_OrderingInvariance(t *testing.T) {
	contents := map[string][]byte{
		"A.c": []byte("int a=1; int b=2;"),
		"B.c": []byte("int a=1; int b=2;"),
		"C.c": []byte("int x=9;"),
	}

	build := func(order []string) (report.Summary, [][2]string, error) {
		idx := newIndex(t, index.Options{})
		var files []*token.File
		for _, name := range order {
			files = append(files, token.NewFile(name, contents[name], nil))
		}
		if _, err := idx.AddFiles(context.Background(), files); err != nil {
			return report.Summary{}, nil, err
		}
		rep := report.New("c", idx, "", nil, 0, 0, pair.BySimilarity)
		summary, err := rep.GetSummary(context.Background())
		if err != nil {
			return report.Summary{}, nil, err
		}
		pairs, err := idx.AllPairs(context.Background(), pair.BySimilarity)
		if err != nil {
			return report.Summary{}, nil, err
		}
		keys := make([][2]string, len(pairs))
		for i, p := range pairs {
			lp, rp := p.Left.Path(), p.Right.Path()
			if lp > rp {
				lp, rp = rp, lp
			}
			keys[i] = [2]string{lp, rp}
		}
		return summary, keys, nil
	}

	s1, keys1, err := build([]string{"A.c", "B.c", "C.c"})
	require.NoError(t, err)
	s2, keys2, err := build([]string{"C.c", "A.c", "B.c"})
	require.NoError(t, err)

	require.Equal(t, s1.TotalFiles, s2.TotalFiles)
	require.Equal(t, s1.TotalPairs, s2.TotalPairs)
	require.Equal(t, s1.MaxSimilarity, s2.MaxSimilarity)
	require.Equal(t, s1.AverageSimilarity, s2.AverageSimilarity)
	require.Equal(t, keys1, keys2, "pair ordering must be identical once keyed by path rather than file id")
}

// S6: a repeated 30-token-equivalent block appearing twice in one
// file against once in another must assemble two fragments.
func TestS6_CartesianFragmentsFromRepeatedBlock(t *testing.T) {
	idx := newIndex(t, index.Options{KgramLength: 3, KgramsInWindow: 2})

	block := "int compute(int n) { int r = n * n; return r; }\n"
	files := []*token.File{
		token.NewFile("twice.c", []byte(block+block), nil),
		token.NewFile("once.c", []byte(block), nil),
	}
	_, err := idx.AddFiles(context.Background(), files)
	require.NoError(t, err)

	p, err := idx.GetPair(0, 1)
	require.NoError(t, err)
	frags := p.BuildFragments(1)
	require.GreaterOrEqual(t, len(frags), 2, "the repeated block must produce at least two fragments")
}
