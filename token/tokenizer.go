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

package token

import (
	"fmt"

	"github.com/sourcegraph/plagdetect/region"
)

// Options configures tokenization (§6 options surface).
type Options struct {
	// IncludeComments keeps nodes whose type name contains "comment".
	// Default false: comment nodes are skipped entirely.
	IncludeComments bool

	// TraverseSkippedNodes controls whether a skipped (comment) node's
	// children are still walked, emitting their own tokens without the
	// skipped node's own "(" <type> ")" wrapper. This is the explicit
	// resolution of the open question in §9: default false.
	TraverseSkippedNodes bool
}

// Tokenizer is the contract every language binding implements (§4.1):
// a single entry point from File to TokenizedFile.
type Tokenizer interface {
	TokenizeFile(file *File, opts Options) (*TokenizedFile, error)
}

// Error is the TokenizerError kind of §7: a parser failure on one
// file. Callers record it in Report.Warnings and exclude the file;
// the build does not abort.
type Error struct {
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("token: tokenizing %q: %v", e.Path, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// KgramRanges computes, for a tokenized file and k-gram length k, the
// source Region spanned by each k-gram tokens[i:i+k] (§4.3 step 1).
// len(result) == max(0, len(tf.Tokens)-k+1), satisfying invariant 3 of
// §8.
func KgramRanges(tf *TokenizedFile, k int) []region.Region {
	n := len(tf.Tokens)
	if n < k || k <= 0 {
		return nil
	}
	out := make([]region.Region, n-k+1)
	for i := range out {
		out[i] = region.MergeAll(tf.Mapping[i : i+k])
	}
	return out
}
