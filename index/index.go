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

// Package index implements the FingerprintIndex of §4.3: the shared,
// writer-contended inverted map from fingerprint hash to
// SharedFingerprint, the ignore model, and the file bookkeeping that
// backs pairwise comparison.
package index

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/RoaringBitmap/roaring"
	sglog "github.com/sourcegraph/log"
	"golang.org/x/sync/errgroup"

	"github.com/sourcegraph/plagdetect/entry"
	"github.com/sourcegraph/plagdetect/fingerprint"
	"github.com/sourcegraph/plagdetect/internal/lang"
	"github.com/sourcegraph/plagdetect/internal/plagerr"
	"github.com/sourcegraph/plagdetect/pair"
	"github.com/sourcegraph/plagdetect/plaglog"
	"github.com/sourcegraph/plagdetect/token"
	"github.com/sourcegraph/plagdetect/winnow"
)

// Options configures a FingerprintIndex (§4.3 "Construction
// parameters", §6 "Options surface").
type Options struct {
	KgramLength             int
	KgramsInWindow          int
	KgramData               bool
	MaxFingerprintFileCount *int
	IncludeComments         bool

	// Logger receives structured completion fields from AddFiles and
	// AllPairs (§5's "long-running operation" note in SPEC_FULL's
	// ambient stack). nil disables logging; callers that have run
	// plaglog/sourcegraph-log's process-wide Init should pass
	// plaglog.Scoped("index").
	Logger sglog.Logger
}

// SetDefaults fills any zero-valued field with the spec's defaults,
// mirroring the teacher's build.Options.SetDefaults (k=23, w=15; a nil
// MaxFingerprintFileCount means no boilerplate cutoff).
func (o *Options) SetDefaults() {
	if o.KgramLength == 0 {
		o.KgramLength = 23
	}
	if o.KgramsInWindow == 0 {
		o.KgramsInWindow = 15
	}
}

// FingerprintIndex owns every FileEntry and SharedFingerprint it has
// built, plus the ignore model that decides which fingerprints count
// toward similarity. It is safe for concurrent AddFiles/AllPairs calls
// only in the sense described by §5: build holds one critical section
// per batch; after that, reads (GetPair, AllPairs) are safe to run
// concurrently with each other, never with a concurrent AddFiles.
type FingerprintIndex struct {
	opts Options

	mu             sync.Mutex
	files          map[fingerprint.FileID]*entry.FileEntry
	ignoredFiles   map[fingerprint.FileID]*entry.FileEntry
	ignoredFileIDs *roaring.Bitmap // mirrors ignoredFiles' keys, for fast membership checks during ignore re-evaluation
	hashes         map[uint64]*fingerprint.SharedFingerprint
	ignoredHashes  map[uint64]struct{}
	nextID         fingerprint.FileID

	registry *lang.Registry
}

// New returns an empty FingerprintIndex ready to accept files.
func New(opts Options) *FingerprintIndex {
	opts.SetDefaults()
	return &FingerprintIndex{
		opts:           opts,
		files:          make(map[fingerprint.FileID]*entry.FileEntry),
		ignoredFiles:   make(map[fingerprint.FileID]*entry.FileEntry),
		ignoredFileIDs: roaring.New(),
		hashes:         make(map[uint64]*fingerprint.SharedFingerprint),
		ignoredHashes:  make(map[uint64]struct{}),
		registry:       lang.NewRegistry(),
	}
}

// buildResult is what each parallel tokenize+winnow worker produces,
// folded into the index inside the single critical section.
//
// warning and fatal are kept distinct per §7's handling column:
// warning (TokenizerError) is recoverable — the file is skipped and
// AddFiles keeps going — while fatal (UnsupportedLanguage) must be
// surfaced to the caller rather than silently collected as a warning.
type buildResult struct {
	tf           *token.TokenizedFile
	kgramRanges  []token.Region
	fingerprints []winnow.Fingerprint
	warning      error
	fatal        error
}

func (x *FingerprintIndex) tokenizeAndWinnow(ctx context.Context, file *token.File) buildResult {
	tokenizer, err := x.registry.TokenizerFor(file.Path, file.Content)
	if err != nil {
		var unsupported *lang.ErrUnsupportedLanguage
		if errors.As(err, &unsupported) {
			return buildResult{fatal: plagerr.UnsupportedLanguageErr(file.Path)}
		}
		return buildResult{warning: plagerr.TokenizerErr(file.Path, err)}
	}
	tf, err := tokenizer.TokenizeFile(file, token.Options{IncludeComments: x.opts.IncludeComments})
	if err != nil {
		return buildResult{warning: plagerr.TokenizerErr(file.Path, err)}
	}
	ranges := token.KgramRanges(tf, x.opts.KgramLength)
	fps := winnow.Filter(tf.Tokens, x.opts.KgramLength, x.opts.KgramsInWindow, x.opts.KgramData)
	return buildResult{tf: tf, kgramRanges: ranges, fingerprints: fps}
}

// AddFiles tokenizes and winnows every file in parallel, then folds
// the results into the index inside one critical section, and finally
// re-evaluates ignore status across the whole index (§4.3 "addFiles").
// Returns one warning per file that failed to tokenize (TokenizerError);
// those files are excluded from the index. A file with no matching
// tokenizer (UnsupportedLanguage) is not folded into warnings — it
// aborts the call and is returned as the error instead, per §7.
func (x *FingerprintIndex) AddFiles(ctx context.Context, files []*token.File) ([]error, error) {
	start := time.Now()
	results := make([]buildResult, len(files))

	g, gctx := errgroup.WithContext(ctx)
	for i, f := range files {
		i, f := i, f
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			results[i] = x.tokenizeAndWinnow(gctx, f)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	x.mu.Lock()
	var warnings []error
	for _, r := range results {
		if r.fatal != nil {
			x.mu.Unlock()
			return warnings, r.fatal
		}
		if r.warning != nil {
			warnings = append(warnings, r.warning)
			continue
		}
		if ctx.Err() != nil {
			x.mu.Unlock()
			return warnings, ctx.Err()
		}
		x.foldLocked(r.tf, r.kgramRanges, r.fingerprints, false)
	}
	x.reevaluateIgnoresLocked()
	x.mu.Unlock()

	if x.opts.Logger != nil {
		x.opts.Logger.Info("build complete", plaglog.BuildFields(len(files), len(warnings), time.Since(start))...)
	}

	return warnings, nil
}

// foldLocked inserts one tokenized file's fingerprints into the
// shared index. Must be called with x.mu held.
func (x *FingerprintIndex) foldLocked(tf *token.TokenizedFile, kgramRanges []token.Region, fps []winnow.Fingerprint, isIgnoredFile bool) *entry.FileEntry {
	id := x.nextID
	x.nextID++

	fe := entry.NewFileEntry(id, tf, kgramRanges, isIgnoredFile)

	selected := make([]int, len(fps))
	for i, fp := range fps {
		selected[i] = fp.KgramIndex
	}
	fe.SelectedKgrams = selected

	for _, fp := range fps {
		sf, ok := x.hashes[fp.Hash]
		if !ok {
			sf = fingerprint.New(fp.Hash, fp.Tokens)
			x.hashes[fp.Hash] = sf
		}
		loc := kgramRanges[fp.KgramIndex]
		sf.Add(id, fingerprint.Occurrence{
			FileID:     id,
			KgramIndex: fp.KgramIndex,
			Location:   loc,
			Data:       fp.Tokens,
		})
		if isIgnoredFile {
			fe.Ignored[fp.Hash] = sf
		} else {
			fe.Shared[fp.Hash] = sf
		}
	}

	if isIgnoredFile {
		x.ignoredFiles[id] = fe
		x.ignoredFileIDs.Add(uint32(id))
	} else {
		x.files[id] = fe
	}
	return fe
}

// AddIgnoredFile tokenizes and winnows file, but routes every
// fingerprint it contains to the ignored bucket, permanently marking
// each SharedFingerprint ignored (§4.3 "addIgnoredFile").
func (x *FingerprintIndex) AddIgnoredFile(ctx context.Context, file *token.File) error {
	r := x.tokenizeAndWinnow(ctx, file)
	if r.fatal != nil {
		return r.fatal
	}
	if r.warning != nil {
		return r.warning
	}
	x.mu.Lock()
	x.foldLocked(r.tf, r.kgramRanges, r.fingerprints, true)
	x.reevaluateIgnoresLocked()
	x.mu.Unlock()
	return nil
}

// AddIgnoredHashes unions hashes into the manual ban set and
// re-evaluates ignore status across the index (§4.3 "addIgnoredHashes").
// One-way: hashes are never removed from the ban set.
func (x *FingerprintIndex) AddIgnoredHashes(hashes []uint64) {
	x.mu.Lock()
	for _, h := range hashes {
		x.ignoredHashes[h] = struct{}{}
	}
	x.reevaluateIgnoresLocked()
	x.mu.Unlock()
}

// UpdateMaxFingerprintFileCount changes the boilerplate cutoff
// (nil disables it) and re-evaluates every fingerprint's ignore status,
// since the threshold can move in either direction (§4.3 "Ignore
// re-evaluation").
func (x *FingerprintIndex) UpdateMaxFingerprintFileCount(max *int) {
	x.mu.Lock()
	x.opts.MaxFingerprintFileCount = max
	x.reevaluateIgnoresLocked()
	x.mu.Unlock()
}

// isIgnoredLocked reports whether sf should currently be considered
// ignored, per the three-way rule of §4.3. Must be called with x.mu held.
func (x *FingerprintIndex) isIgnoredLocked(sf *fingerprint.SharedFingerprint) bool {
	if _, banned := x.ignoredHashes[sf.Hash]; banned {
		return true
	}
	for fid := range sf.PartMap {
		if x.ignoredFileIDs.Contains(uint32(fid)) {
			return true
		}
	}
	if x.opts.MaxFingerprintFileCount != nil && sf.FileCount() > *x.opts.MaxFingerprintFileCount {
		return true
	}
	return false
}

// reevaluateIgnoresLocked recomputes every SharedFingerprint's Ignored
// flag and syncs it into every affected FileEntry's Shared/Ignored maps
// (§4.3 "Ignore re-evaluation"). The sync is membership-based, not
// gated on sf.Ignored flipping: a FileEntry folded in after sf was
// already ignored (e.g. a batch of AddFiles following an AddIgnoredFile
// call) still needs to be moved into fe.Ignored even though sf.Ignored
// itself doesn't change on this call. Must be called with x.mu held.
func (x *FingerprintIndex) reevaluateIgnoresLocked() {
	for hash, sf := range x.hashes {
		sf.Ignored = x.isIgnoredLocked(sf)
		for fid := range sf.PartMap {
			fe, ok := x.files[fid]
			if !ok {
				continue
			}
			if sf.Ignored {
				delete(fe.Shared, hash)
				fe.Ignored[hash] = sf
			} else {
				delete(fe.Ignored, hash)
				fe.Shared[hash] = sf
			}
		}
	}
}

// GetPair returns a Pair over the two files' current FileEntry state
// (§4.3 "getPair"). The returned Pair references the live FileEntry
// values rather than copying them, and caches its overlap and
// fragments on first access, so index changes made after that access
// are not reflected in those cached results.
func (x *FingerprintIndex) GetPair(left, right fingerprint.FileID) (*pair.Pair, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	l, ok := x.files[left]
	if !ok {
		return nil, plagerr.EngineInvariantErr("GetPair: unknown left file id")
	}
	r, ok := x.files[right]
	if !ok {
		return nil, plagerr.EngineInvariantErr("GetPair: unknown right file id")
	}
	return pair.New(l, r, x.opts.KgramData), nil
}

// AllPairs enumerates every unordered pair of non-ignored files whose
// Shared sets intersect, sorted by sortBy descending and tie-broken by
// (leftFileId, rightFileId) ascending (§4.3 "allPairs", §5 "Ordering
// guarantees").
func (x *FingerprintIndex) AllPairs(ctx context.Context, sortBy pair.SortKey) ([]*pair.Pair, error) {
	start := time.Now()
	x.mu.Lock()
	ids := make([]fingerprint.FileID, 0, len(x.files))
	for id := range x.files {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	type candidate struct{ i, j int }
	var candidates []candidate
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			if x.sharesAnyLocked(ids[i], ids[j]) {
				candidates = append(candidates, candidate{i, j})
			}
		}
	}
	files := x.files
	kgramData := x.opts.KgramData
	x.mu.Unlock()

	pairs := make([]*pair.Pair, len(candidates))
	g, gctx := errgroup.WithContext(ctx)
	for idx, c := range candidates {
		idx, c := idx, c
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			pairs[idx] = pair.New(files[ids[c.i]], files[ids[c.j]], kgramData)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.SliceStable(pairs, func(i, j int) bool {
		a, b := pairs[i], pairs[j]
		var av, bv float64
		switch sortBy {
		case pair.ByOverlap:
			av, bv = float64(a.Overlap()), float64(b.Overlap())
		case pair.ByLongest:
			av, bv = float64(a.Longest()), float64(b.Longest())
		default:
			av, bv = a.Similarity(), b.Similarity()
		}
		if av != bv {
			return av > bv
		}
		if a.Left.ID != b.Left.ID {
			return a.Left.ID < b.Left.ID
		}
		return a.Right.ID < b.Right.ID
	})

	if x.opts.Logger != nil {
		x.opts.Logger.Info("pair enumeration complete", plaglog.PairEnumerationFields(len(ids), len(pairs), time.Since(start))...)
	}

	return pairs, nil
}

// sharesAnyLocked reports whether the files named by left/right have
// any non-ignored Shared hash in common. Must be called with x.mu
// held.
func (x *FingerprintIndex) sharesAnyLocked(left, right fingerprint.FileID) bool {
	l, r := x.files[left], x.files[right]
	small, big := l.Shared, r.Shared
	if len(big) < len(small) {
		small, big = big, small
	}
	for h := range small {
		if _, ok := big[h]; ok {
			return true
		}
	}
	return false
}

// Files returns every non-ignored file id currently in the index, in
// ascending order.
func (x *FingerprintIndex) Files() []fingerprint.FileID {
	x.mu.Lock()
	defer x.mu.Unlock()
	ids := make([]fingerprint.FileID, 0, len(x.files))
	for id := range x.files {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// FileEntry exposes the raw bookkeeping record for id, for callers
// (e.g. Report) that need direct access beyond Pair's metrics surface.
func (x *FingerprintIndex) FileEntry(id fingerprint.FileID) (*entry.FileEntry, bool) {
	x.mu.Lock()
	defer x.mu.Unlock()
	fe, ok := x.files[id]
	return fe, ok
}

// NonIgnoredFileCount returns the number of files with at least one
// non-ignored fingerprint — the quantity InsufficientFiles checks
// against (§7).
func (x *FingerprintIndex) NonIgnoredFileCount() int {
	x.mu.Lock()
	defer x.mu.Unlock()
	n := 0
	for _, fe := range x.files {
		if len(fe.Shared) > 0 {
			n++
		}
	}
	return n
}

// CheckSufficientFiles returns an InsufficientFiles error (§7) when
// fewer than two non-ignored files have at least one fingerprint,
// letting callers other than cmd/plagindex surface the condition
// without reaching into NonIgnoredFileCount themselves.
func (x *FingerprintIndex) CheckSufficientFiles() error {
	if n := x.NonIgnoredFileCount(); n < 2 {
		return plagerr.InsufficientFilesErr(n)
	}
	return nil
}

// CheckInvariants re-verifies the structural invariants §8 requires of
// a built index, returning an EngineInvariant error describing the
// first violation found. It is a debug helper, not part of the normal
// build path — callers with a correctness concern about a specific
// build can call it after AddFiles.
func (x *FingerprintIndex) CheckInvariants() error {
	x.mu.Lock()
	defer x.mu.Unlock()

	for hash, sf := range x.hashes {
		if sf.Hash != hash {
			return plagerr.EngineInvariantErr("hash map key does not match SharedFingerprint.Hash")
		}
		for fid := range sf.PartMap {
			if _, okFile := x.files[fid]; okFile {
				continue
			}
			if _, okIgnored := x.ignoredFiles[fid]; okIgnored {
				continue
			}
			return plagerr.EngineInvariantErr("SharedFingerprint.PartMap references unknown file id")
		}
	}
	for id, fe := range x.files {
		for _, sf := range fe.Shared {
			if sf.Ignored {
				return plagerr.EngineInvariantErr("FileEntry.Shared contains an ignored fingerprint")
			}
			if _, ok := sf.PartMap[id]; !ok {
				return plagerr.EngineInvariantErr("FileEntry.Shared references a fingerprint with no occurrence for this file")
			}
		}
		for _, sf := range fe.Ignored {
			if !sf.Ignored {
				return plagerr.EngineInvariantErr("FileEntry.Ignored contains a non-ignored fingerprint")
			}
		}
	}
	return nil
}
