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

package lang

import (
	"fmt"
	"sync"

	"github.com/sourcegraph/plagdetect/token"
)

// Registry caches one Tokenizer per Variant, since constructing a
// tree-sitter Parser per call would be wasteful across a whole
// submission set.
type Registry struct {
	mu         sync.Mutex
	tokenizers map[Variant]*Tokenizer
}

// NewRegistry returns an empty, ready-to-use Registry.
func NewRegistry() *Registry {
	return &Registry{tokenizers: map[Variant]*Tokenizer{}}
}

// ErrUnsupportedLanguage is the UnsupportedLanguage error kind of §7:
// no tokenizer exists for the requested language.
type ErrUnsupportedLanguage struct {
	Path string
}

func (e *ErrUnsupportedLanguage) Error() string {
	return fmt.Sprintf("lang: no tokenizer for %q", e.Path)
}

// TokenizerFor resolves path to a Variant and returns its (cached)
// Tokenizer, or ErrUnsupportedLanguage.
func (r *Registry) TokenizerFor(path string, content []byte) (token.Tokenizer, error) {
	v, ok := DetectWithContent(path, content)
	if !ok {
		return nil, &ErrUnsupportedLanguage{Path: path}
	}
	return r.tokenizerForVariant(v)
}

func (r *Registry) tokenizerForVariant(v Variant) (*Tokenizer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.tokenizers[v]; ok {
		return t, nil
	}
	t, err := NewTokenizer(v)
	if err != nil {
		return nil, err
	}
	r.tokenizers[v] = t
	return t, nil
}
