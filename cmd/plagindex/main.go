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

// Command plagindex tokenizes a directory of submissions, builds a
// FingerprintIndex, and prints a plagiarism report to stdout. It is
// the minimal CLI the spec describes as a library's "external
// interfaces", following the teacher's own convention of shipping at
// least one cmd/ binary per capability (SPEC_FULL's SUPPLEMENTED
// FEATURES note 4).
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/peterbourgon/ff/v3"
	sglog "github.com/sourcegraph/log"

	"github.com/sourcegraph/plagdetect/index"
	"github.com/sourcegraph/plagdetect/internal/submissions"
	"github.com/sourcegraph/plagdetect/pair"
	"github.com/sourcegraph/plagdetect/plagconf"
	"github.com/sourcegraph/plagdetect/plaglog"
	"github.com/sourcegraph/plagdetect/report"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "plagindex:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	var opts plagconf.Options
	fset := flag.NewFlagSet("plagindex", flag.ContinueOnError)
	opts.Flags(fset)
	if err := ff.Parse(fset, args, ff.WithEnvVarPrefix("PLAGINDEX")); err != nil {
		return err
	}
	opts.SetDefaults()

	if opts.InputDir == "" {
		return fmt.Errorf("missing -dir: a directory of student submissions is required")
	}

	logger := plaglog.Scoped("plagindex")

	submissionFiles, err := submissions.Walk(opts.InputDir)
	if err != nil {
		return fmt.Errorf("collecting submissions under %q: %w", opts.InputDir, err)
	}
	logger.Info("collected submissions",
		sglog.String("dir", opts.InputDir),
		sglog.Int("file_count", len(submissionFiles)))

	idxOpts := opts.IndexOptions()
	idxOpts.Logger = logger
	idx := index.New(idxOpts)

	ctx := context.Background()
	warnings, err := idx.AddFiles(ctx, submissionFiles)
	if err != nil {
		return fmt.Errorf("building index: %w", err)
	}
	for _, w := range warnings {
		fmt.Fprintln(os.Stderr, "warning:", w)
	}

	if err := idx.CheckSufficientFiles(); err != nil {
		return err
	}

	language := submissions.DetectLanguage(submissionFiles)
	rep := report.New(language, idx, opts.ReportName, warnings, opts.SuspicionThreshold, opts.MinFragmentLength, opts.SortKey())

	summary, err := rep.GetSummary(ctx)
	if err != nil {
		return fmt.Errorf("computing summary: %w", err)
	}
	printSummary(rep, summary)

	top, err := rep.GetTopPairs(ctx, 10)
	if err != nil {
		return fmt.Errorf("ranking pairs: %w", err)
	}
	printTopPairs(rep, top)

	return nil
}

func printSummary(rep *report.Report, s report.Summary) {
	fmt.Printf("report %q (%s)\n", rep.Name, s.Language)
	fmt.Printf("  files:             %s\n", humanize.Comma(int64(s.TotalFiles)))
	fmt.Printf("  pairs:             %s\n", humanize.Comma(int64(s.TotalPairs)))
	fmt.Printf("  suspicious pairs:  %s (threshold %.2f)\n", humanize.Comma(int64(s.SuspiciousPairs)), rep.SuspicionThreshold)
	fmt.Printf("  avg similarity:    %.3f\n", s.AverageSimilarity)
	fmt.Printf("  max similarity:    %.3f\n", s.MaxSimilarity)
	if len(s.Warnings) > 0 {
		fmt.Printf("  warnings:          %d\n", len(s.Warnings))
	}
}

func printTopPairs(rep *report.Report, pairs []*pair.Pair) {
	if len(pairs) == 0 {
		fmt.Println("no suspicious pairs")
		return
	}
	fmt.Println("top pairs:")
	for _, p := range pairs {
		frags := rep.GetFragments(p)
		fmt.Printf("  %s <-> %s  similarity=%.3f overlap=%d longest=%d fragments=%d\n",
			p.Left.Path(), p.Right.Path(), p.Similarity(), p.Overlap(), p.Longest(), len(frags))
	}
}
