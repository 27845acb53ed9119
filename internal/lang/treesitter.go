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
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/c"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/python"

	"github.com/sourcegraph/plagdetect/region"
	"github.com/sourcegraph/plagdetect/token"
)

// Tokenizer implements token.Tokenizer for one Variant by walking a
// tree-sitter parse tree in pre-order (§4.1).
type Tokenizer struct {
	variant  Variant
	language *sitter.Language
}

// NewTokenizer builds the tree-sitter binding for v, or an error if v
// isn't one of the three supported languages.
func NewTokenizer(v Variant) (*Tokenizer, error) {
	var sl *sitter.Language
	switch v {
	case Java:
		sl = java.GetLanguage()
	case Python:
		sl = python.GetLanguage()
	case C:
		sl = c.GetLanguage()
	default:
		return nil, fmt.Errorf("lang: unsupported variant %v", v)
	}
	return &Tokenizer{variant: v, language: sl}, nil
}

// TokenizeFile parses file.Content with the bound grammar and
// linearises the resulting AST per §4.1's pre-order walk with
// explicit scope delimiters.
func (t *Tokenizer) TokenizeFile(file *token.File, opts token.Options) (*token.TokenizedFile, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(t.language)

	tree, err := parser.ParseCtx(context.Background(), nil, file.Content)
	if err != nil {
		return nil, &token.Error{Path: file.Path, Err: err}
	}
	if tree == nil || tree.RootNode() == nil {
		return nil, &token.Error{Path: file.Path, Err: fmt.Errorf("empty parse tree")}
	}

	w := &walker{src: file.Content, opts: opts}
	w.walk(tree.RootNode())

	return &token.TokenizedFile{
		File:    file,
		Tokens:  w.tokens,
		Mapping: w.mapping,
	}, nil
}

// walker accumulates the token stream and per-token Region mapping
// during a single pre-order AST walk.
type walker struct {
	src     []byte
	opts    token.Options
	tokens  []string
	mapping []region.Region
}

func nodeRegion(n *sitter.Node) region.Region {
	sp, ep := n.StartPoint(), n.EndPoint()
	return region.Region{
		StartRow: int(sp.Row), StartCol: int(sp.Column),
		EndRow: int(ep.Row), EndCol: int(ep.Column),
	}
}

func isCommentNode(n *sitter.Node) bool {
	return strings.Contains(n.Type(), "comment")
}

// walk implements the per-node algorithm of §4.1:
//  1. emit "("
//  2. emit the node type
//  3. recurse over named children in source order
//  4. emit ")"
//
// The opening "(" and type tokens' Region is tightened to end at the
// first named child's start (or the node's own end, if the node has
// no named children), keeping selection merges tight per §4.1.
func (w *walker) walk(n *sitter.Node) {
	if n == nil {
		return
	}

	if isCommentNode(n) && !w.opts.IncludeComments {
		if w.opts.TraverseSkippedNodes {
			for i := 0; i < int(n.NamedChildCount()); i++ {
				w.walk(n.NamedChild(i))
			}
		}
		return
	}

	full := nodeRegion(n)
	childCount := int(n.NamedChildCount())

	open := full
	if childCount > 0 {
		firstChild := nodeRegion(n.NamedChild(0))
		open = full.WithEnd(firstChild.StartRow, firstChild.StartCol)
	}

	w.emit("(", open)
	w.emit(n.Type(), open)

	for i := 0; i < childCount; i++ {
		w.walk(n.NamedChild(i))
	}

	w.emit(")", full)
}

func (w *walker) emit(tok string, r region.Region) {
	w.tokens = append(w.tokens, tok)
	w.mapping = append(w.mapping, r)
}
