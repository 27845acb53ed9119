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

// Package plagerr defines the error kinds of §7: sentinel-wrapped
// typed errors distinguishing recoverable per-file failures from fatal
// engine-invariant violations, in the style of the teacher's own
// wrapped stdlib errors (e.g. zoekt's use of fmt.Errorf("%w", ...)
// around os/io failures rather than bespoke error trees).
package plagerr

import (
	"errors"
	"fmt"
)

// Sentinel errors for errors.Is matching against a Kind, independent
// of the dynamic message each wrapped instance carries.
var (
	ErrTokenizer         = errors.New("plagerr: tokenizer error")
	ErrInsufficientFiles = errors.New("plagerr: insufficient files")
	ErrUnsupportedLang   = errors.New("plagerr: unsupported language")
	ErrInvalidRegion     = errors.New("plagerr: invalid region")
	ErrEngineInvariant   = errors.New("plagerr: engine invariant violated")
)

// Kind identifies which row of §7's error table an Error instance
// belongs to.
type Kind int

const (
	Tokenizer Kind = iota
	InsufficientFiles
	UnsupportedLanguage
	InvalidRegion
	EngineInvariant
)

func (k Kind) sentinel() error {
	switch k {
	case Tokenizer:
		return ErrTokenizer
	case InsufficientFiles:
		return ErrInsufficientFiles
	case UnsupportedLanguage:
		return ErrUnsupportedLang
	case InvalidRegion:
		return ErrInvalidRegion
	case EngineInvariant:
		return ErrEngineInvariant
	default:
		return ErrEngineInvariant
	}
}

func (k Kind) String() string {
	switch k {
	case Tokenizer:
		return "TokenizerError"
	case InsufficientFiles:
		return "InsufficientFiles"
	case UnsupportedLanguage:
		return "UnsupportedLanguage"
	case InvalidRegion:
		return "InvalidRegion"
	case EngineInvariant:
		return "EngineInvariant"
	default:
		return "Unknown"
	}
}

// Fatal reports whether errors of this Kind are fatal per §7's
// handling column (InvalidRegion and EngineInvariant abort the
// operation; Tokenizer and InsufficientFiles/UnsupportedLanguage are
// recoverable or surfaced to the caller without panicking).
func (k Kind) Fatal() bool {
	return k == InvalidRegion || k == EngineInvariant
}

// Error is the concrete error type every plagerr constructor returns.
// Is matches the Kind's sentinel; Unwrap returns the underlying cause
// when set, and the sentinel otherwise.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	if e.Cause != nil {
		return e.Cause
	}
	return e.Kind.sentinel()
}

// Is makes errors.Is(err, plagerr.ErrTokenizer) (etc.) work regardless
// of whether Cause is set, by also comparing against the Kind's own
// sentinel directly.
func (e *Error) Is(target error) bool {
	return target == e.Kind.sentinel()
}

func newErr(k Kind, msg string, cause error) *Error {
	return &Error{Kind: k, Message: msg, Cause: cause}
}

// TokenizerErr wraps a per-file parse failure (§7 TokenizerError).
func TokenizerErr(path string, cause error) *Error {
	return newErr(Tokenizer, fmt.Sprintf("tokenizing %q", path), cause)
}

// InsufficientFilesErr reports fewer than two comparable files (§7
// InsufficientFiles).
func InsufficientFilesErr(nonIgnoredCount int) *Error {
	return newErr(InsufficientFiles, fmt.Sprintf("need at least 2 non-ignored files with >=1 fingerprint, have %d", nonIgnoredCount), nil)
}

// UnsupportedLanguageErr reports a path with no matching tokenizer
// (§7 UnsupportedLanguage).
func UnsupportedLanguageErr(path string) *Error {
	return newErr(UnsupportedLanguage, fmt.Sprintf("no tokenizer for %q", path), nil)
}

// InvalidRegionErr reports a Region constructor invariant violation
// (§7 InvalidRegion). Fatal: callers should let this propagate, not
// recover from it.
func InvalidRegionErr(detail string) *Error {
	return newErr(InvalidRegion, detail, nil)
}

// EngineInvariantErr reports an internal inconsistency (§7
// EngineInvariant), e.g. a partMap key that must be present but isn't.
// Fatal: indicates a bug in this engine, not bad input.
func EngineInvariantErr(detail string) *Error {
	return newErr(EngineInvariant, detail, nil)
}
