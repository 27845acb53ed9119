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

// Command plagserve runs a single build+compare pass over a directory
// of submissions, then serves the resulting metrics and a debug index
// page over HTTP until terminated. It deliberately does not route the
// report itself over HTTP: §1 places "HTTP/web routing" of analysis
// results out of core scope, so the only HTTP surface here is
// operational (metrics, health), mirroring the teacher's own
// debugserver-style "/metrics" exposure in cmd/zoekt-webserver and
// cmd/zoekt-sourcegraph-indexserver.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/peterbourgon/ff/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	sglog "github.com/sourcegraph/log"

	"github.com/sourcegraph/plagdetect/index"
	"github.com/sourcegraph/plagdetect/internal/submissions"
	"github.com/sourcegraph/plagdetect/plagconf"
	"github.com/sourcegraph/plagdetect/plaglog"
	"github.com/sourcegraph/plagdetect/report"
)

// metrics mirrors the shape of the teacher's RedFMetrics in
// cmd/zoekt-sourcegraph-indexserver/metrics.go: plain
// prometheus.New*Vec constructors registered once at startup, rather
// than the package-level promauto globals cmd/zoekt-sourcegraph-
// indexserver/main.go uses for its resolve/index metrics — this
// binary builds exactly one report per process lifetime, so there is
// no per-repository label dimension to vary.
type metrics struct {
	buildDuration prometheus.Histogram
	totalFiles    prometheus.Gauge
	totalPairs    prometheus.Gauge
	suspicious    prometheus.Gauge
	avgSimilarity prometheus.Gauge
	maxSimilarity prometheus.Gauge
}

func newMetrics(reg *prometheus.Registry) *metrics {
	m := &metrics{
		buildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "plagdetect_build_duration_seconds",
			Help:    "Time spent tokenizing, winnowing, and comparing the submission set.",
			Buckets: prometheus.DefBuckets,
		}),
		totalFiles: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "plagdetect_total_files",
			Help: "Number of non-ignored files in the last build.",
		}),
		totalPairs: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "plagdetect_total_pairs",
			Help: "Number of file pairs with at least one shared fingerprint in the last build.",
		}),
		suspicious: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "plagdetect_suspicious_pairs",
			Help: "Number of pairs at or above the suspicion threshold in the last build.",
		}),
		avgSimilarity: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "plagdetect_average_similarity",
			Help: "Average pairwise similarity in the last build.",
		}),
		maxSimilarity: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "plagdetect_max_similarity",
			Help: "Maximum pairwise similarity in the last build.",
		}),
	}
	reg.MustRegister(m.buildDuration, m.totalFiles, m.totalPairs, m.suspicious, m.avgSimilarity, m.maxSimilarity)
	return m
}

func (m *metrics) record(elapsed time.Duration, s report.Summary) {
	m.buildDuration.Observe(elapsed.Seconds())
	m.totalFiles.Set(float64(s.TotalFiles))
	m.totalPairs.Set(float64(s.TotalPairs))
	m.suspicious.Set(float64(s.SuspiciousPairs))
	m.avgSimilarity.Set(s.AverageSimilarity)
	m.maxSimilarity.Set(s.MaxSimilarity)
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "plagserve:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	var opts plagconf.Options
	var listen string
	fset := flag.NewFlagSet("plagserve", flag.ContinueOnError)
	opts.Flags(fset)
	fset.StringVar(&listen, "listen", ":6070", "address to serve /metrics and /debug on")
	if err := ff.Parse(fset, args, ff.WithEnvVarPrefix("PLAGSERVE")); err != nil {
		return err
	}
	opts.SetDefaults()
	if opts.InputDir == "" {
		return fmt.Errorf("missing -dir: a directory of student submissions is required")
	}

	logger := plaglog.Scoped("plagserve")
	reg := prometheus.NewRegistry()
	m := newMetrics(reg)

	idxOpts := opts.IndexOptions()
	idxOpts.Logger = logger
	idx := index.New(idxOpts)

	start := time.Now()
	files, err := submissions.Walk(opts.InputDir)
	if err != nil {
		return fmt.Errorf("collecting submissions under %q: %w", opts.InputDir, err)
	}
	ctx := context.Background()
	if _, err := idx.AddFiles(ctx, files); err != nil {
		return fmt.Errorf("building index: %w", err)
	}

	language := submissions.DetectLanguage(files)
	rep := report.New(language, idx, opts.ReportName, nil, opts.SuspicionThreshold, opts.MinFragmentLength, opts.SortKey())
	summary, err := rep.GetSummary(ctx)
	if err != nil {
		return fmt.Errorf("computing summary: %w", err)
	}
	m.record(time.Since(start), summary)
	logger.Info("build complete",
		sglog.Int("total_files", summary.TotalFiles),
		sglog.Int("total_pairs", summary.TotalPairs),
		sglog.Int("suspicious_pairs", summary.SuspiciousPairs))

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	mux.HandleFunc("/debug", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "report %q: %d files, %d pairs, %d suspicious (avg=%.3f max=%.3f)\n",
			rep.Name, summary.TotalFiles, summary.TotalPairs, summary.SuspiciousPairs,
			summary.AverageSimilarity, summary.MaxSimilarity)
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	logger.Info("serving", sglog.String("addr", listen))
	return http.ListenAndServe(listen, mux)
}
