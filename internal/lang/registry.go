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

// Package lang adapts the teacher's go-enry-based language detection
// (originally github.com/sourcegraph/zoekt/languages) to the closed
// variant set of §9: Java, Python, and C, each bound to its own
// tree-sitter grammar and wrapped behind the single
// token.Tokenizer.TokenizeFile entry point (§4.1 "Pluggability").
package lang

import (
	"path/filepath"
	"strings"

	"github.com/go-enry/go-enry/v2"
)

// Variant is the closed tagged-enum of supported languages (§9
// "Dynamic dispatch of tokenizers").
type Variant int

const (
	Unknown Variant = iota
	Java
	Python
	C
)

func (v Variant) String() string {
	switch v {
	case Java:
		return "java"
	case Python:
		return "python"
	case C:
		return "c"
	default:
		return "unknown"
	}
}

// extensionRegistry maps a lowercase file extension directly to a
// Variant. This is a deliberately narrower replacement for the
// teacher's enry.GetLanguagesByFilename ambiguity handling: the spec
// supports exactly three languages, so an unambiguous extension table
// is the whole registry and the multi-candidate disambiguation the
// teacher needs for its much larger language universe does not apply.
var extensionRegistry = map[string]Variant{
	".java": Java,
	".py":   Python,
	".c":    C,
	".h":    C,
}

// Detect maps a file path to a supported Variant using its extension,
// normalizing the way the teacher's NormalizeLanguage does (lowercase
// comparison). Detect reports ok=false for any extension outside the
// three supported languages — callers surface UnsupportedLanguage.
func Detect(path string) (v Variant, ok bool) {
	ext := strings.ToLower(filepath.Ext(path))
	v, ok = extensionRegistry[ext]
	return v, ok
}

// guessByContent falls back to go-enry content classification for
// extension-less paths (e.g. scripts named without a suffix), mirroring
// the teacher's content-based strategies in GetLanguages but narrowed
// to the three languages this registry recognizes.
func guessByContent(content []byte) (Variant, bool) {
	if enry.IsBinary(content) {
		return Unknown, false
	}
	langs := enry.GetLanguagesByClassifier("", content, []string{"Java", "Python", "C"})
	for _, l := range langs {
		switch strings.ToLower(l) {
		case "java":
			return Java, true
		case "python":
			return Python, true
		case "c":
			return C, true
		}
	}
	return Unknown, false
}

// DetectWithContent is Detect, falling back to content classification
// when the extension is unrecognized or absent.
func DetectWithContent(path string, content []byte) (Variant, bool) {
	if v, ok := Detect(path); ok {
		return v, ok
	}
	return guessByContent(content)
}
