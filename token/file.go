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

// Package token holds the data model shared by the tokenizer and every
// downstream stage of the plagiarism engine: File, TokenizedFile, and
// ASTRegion (§3), plus the Tokenizer contract (§4.1).
package token

import (
	"strings"

	"github.com/sourcegraph/plagdetect/region"
)

// Region is an alias of region.Region so callers of this package don't
// need a second import for the common case of reading a token's
// source span.
type Region = region.Region

// File is an immutable source file handed to the engine by the
// caller. It lives for the duration of one analysis and may be shared
// read-only across many pairs; nothing in this package or its
// downstream packages mutates a File after construction.
type File struct {
	Path     string
	Content  []byte
	Lines    []string
	Metadata map[string]string
}

// NewFile splits content on '\n' to build the Lines array used for
// display/debug purposes; it does not otherwise interpret content.
func NewFile(path string, content []byte, metadata map[string]string) *File {
	return &File{
		Path:     path,
		Content:  content,
		Lines:    strings.Split(string(content), "\n"),
		Metadata: metadata,
	}
}

// TokenizedFile is a File plus an ordered token stream and a parallel
// mapping of each token to its source Region (§3). The invariant
// len(Tokens) == len(Mapping) must hold for every TokenizedFile the
// tokenizer produces.
type TokenizedFile struct {
	File    *File
	Tokens  []string
	Mapping []Region
}

// NumTokens returns len(Tokens).
func (tf *TokenizedFile) NumTokens() int { return len(tf.Tokens) }
