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

// Package plagconf defines the options surface of §6: every tunable
// the core accepts, with defaults and a Flags/Args pair that mirrors
// the teacher's build.Options (build/builder.go) exactly — Flags binds
// a flag.FlagSet to the struct's fields for CLI use, and Args is its
// inverse, producing the command-line arguments that would reproduce
// the current values.
package plagconf

import (
	"flag"
	"strconv"

	"github.com/sourcegraph/plagdetect/index"
	"github.com/sourcegraph/plagdetect/pair"
)

// Options is the options surface of §6, plus the ambient knobs a CLI
// needs (input directory, report name).
type Options struct {
	KgramLength             int
	KgramsInWindow          int
	KgramData               bool
	MaxFingerprintFileCount int // 0 means unset; IndexOptions() maps this to nil
	IncludeComments         bool
	MinFragmentLength       int
	SuspicionThreshold      float64
	SortBy                  string // "similarity" | "overlap" | "longest"

	InputDir   string
	ReportName string
}

// SetDefaults fills any zero-valued field with the spec's defaults
// (§6 "Options surface"), the same role the teacher's
// build.Options.SetDefaults plays. Flags uses it to compute each
// flag's default value.
func (o *Options) SetDefaults() {
	if o.KgramLength == 0 {
		o.KgramLength = 23
	}
	if o.KgramsInWindow == 0 {
		o.KgramsInWindow = 15
	}
	if o.MinFragmentLength == 0 {
		o.MinFragmentLength = 1
	}
	if o.SuspicionThreshold == 0 {
		o.SuspicionThreshold = 0.5
	}
	if o.SortBy == "" {
		o.SortBy = "similarity"
	}
}

// Flags adds flags for every option in o to fs. It is the "inverse" of
// Args, following the teacher's own comment on build.Options.Flags.
func (o *Options) Flags(fs *flag.FlagSet) {
	x := *o
	x.SetDefaults()
	fs.IntVar(&o.KgramLength, "kgram_length", x.KgramLength, "number of tokens per k-gram")
	fs.IntVar(&o.KgramsInWindow, "kgrams_in_window", x.KgramsInWindow, "Winnow window size, in k-grams")
	fs.BoolVar(&o.KgramData, "kgram_data", x.KgramData, "retain token substrings on fingerprints")
	fs.IntVar(&o.MaxFingerprintFileCount, "max_fingerprint_file_count", x.MaxFingerprintFileCount, "fingerprints seen in more files than this are treated as boilerplate (0 disables the cutoff)")
	fs.BoolVar(&o.IncludeComments, "include_comments", x.IncludeComments, "keep comment nodes in the token stream")
	fs.IntVar(&o.MinFragmentLength, "min_fragment_length", x.MinFragmentLength, "minimum k-gram length for a reported fragment")
	fs.Float64Var(&o.SuspicionThreshold, "suspicion_threshold", x.SuspicionThreshold, "similarity at or above which a pair is reported as suspicious")
	fs.StringVar(&o.SortBy, "sort_by", x.SortBy, "sort key for allPairs: similarity, overlap, or longest")
	fs.StringVar(&o.InputDir, "dir", x.InputDir, "directory of submissions to compare")
	fs.StringVar(&o.ReportName, "name", x.ReportName, "optional report name")
}

// Args generates command line arguments for o. It is the "inverse" of
// Flags.
func (o *Options) Args() []string {
	var args []string
	if o.KgramLength != 0 {
		args = append(args, "-kgram_length", strconv.Itoa(o.KgramLength))
	}
	if o.KgramsInWindow != 0 {
		args = append(args, "-kgrams_in_window", strconv.Itoa(o.KgramsInWindow))
	}
	if o.KgramData {
		args = append(args, "-kgram_data")
	}
	if o.MaxFingerprintFileCount != 0 {
		args = append(args, "-max_fingerprint_file_count", strconv.Itoa(o.MaxFingerprintFileCount))
	}
	if o.IncludeComments {
		args = append(args, "-include_comments")
	}
	if o.MinFragmentLength != 0 {
		args = append(args, "-min_fragment_length", strconv.Itoa(o.MinFragmentLength))
	}
	if o.SuspicionThreshold != 0 {
		args = append(args, "-suspicion_threshold", strconv.FormatFloat(o.SuspicionThreshold, 'g', -1, 64))
	}
	if o.SortBy != "" {
		args = append(args, "-sort_by", o.SortBy)
	}
	if o.InputDir != "" {
		args = append(args, "-dir", o.InputDir)
	}
	if o.ReportName != "" {
		args = append(args, "-name", o.ReportName)
	}
	return args
}

// IndexOptions projects the subset of o relevant to FingerprintIndex
// construction (§4.3 "Construction parameters").
func (o Options) IndexOptions() index.Options {
	var max *int
	if o.MaxFingerprintFileCount != 0 {
		v := o.MaxFingerprintFileCount
		max = &v
	}
	return index.Options{
		KgramLength:             o.KgramLength,
		KgramsInWindow:          o.KgramsInWindow,
		KgramData:               o.KgramData,
		MaxFingerprintFileCount: max,
		IncludeComments:         o.IncludeComments,
	}
}

// SortKey maps the string SortBy option to pair.SortKey, defaulting to
// similarity for an unrecognized value.
func (o Options) SortKey() pair.SortKey {
	switch o.SortBy {
	case "overlap":
		return pair.ByOverlap
	case "longest":
		return pair.ByLongest
	default:
		return pair.BySimilarity
	}
}
