// Package incremental implements the incremental analyzer: it tracks every
// TypeScript/TSX file under a project root, fingerprints each with a
// mtime/size/content-hash/semantic-hash quadruple, classifies changes
// between two scans as cosmetic or semantic, and drives the reanalysis
// pipeline that invalidates and recomputes only what a change actually
// touches. Grounded on the teacher's afs.Service-backed file access
// (analyzer/analyzer.go's fs field) for the mtime probe, and on
// parser.Parser's fingerprint() for the content-hash, generalized with a
// second, comment-stripped hash so a cosmetic edit doesn't trigger a
// reanalysis.
package incremental

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/minio/highwayhash"
	"github.com/viant/afs/storage"

	"github.com/aroton/tsanalysis/internal/parser"
)

var hashKey [32]byte // zero key: identity hashing, not a security boundary

var sourceExt = map[string]bool{".ts": true, ".tsx": true}

// statService is the narrow slice of afs.Service the tracker needs for
// mtime probes, declared locally (as cachemgr's afsService is) so tests can
// substitute a fake without a live afs backend.
type statService interface {
	Stat(ctx context.Context, URL string, options ...storage.Option) (os.FileInfo, error)
}

// osStat adapts the local filesystem to statService for callers that don't
// hand in a real afs.Service (e.g. afs.New()).
type osStat struct{}

func (osStat) Stat(_ context.Context, URL string, _ ...storage.Option) (os.FileInfo, error) {
	return os.Stat(URL)
}

// Strategy selects how DetectChanges decides a tracked file changed.
type Strategy int

const (
	// StrategyTimestamp trusts mtime alone: any mtime difference is a change.
	StrategyTimestamp Strategy = iota
	// StrategyContentHash ignores mtime and compares the raw content hash.
	StrategyContentHash
	// StrategySemantic compares only the comment/whitespace-stripped hash.
	StrategySemantic
	// StrategyHybrid checks mtime first, then content hash, then semantic
	// hash, short-circuiting as soon as one stage proves "unchanged".
	StrategyHybrid
)

// Kind classifies one detected change.
type Kind int

const (
	KindUnchanged Kind = iota
	KindCosmetic       // content changed, semantic hash did not
	KindSemantic       // semantic hash changed: forces reanalysis
	KindNew
	KindDeleted
)

func (k Kind) String() string {
	switch k {
	case KindCosmetic:
		return "cosmetic"
	case KindSemantic:
		return "semantic"
	case KindNew:
		return "new"
	case KindDeleted:
		return "deleted"
	default:
		return "unchanged"
	}
}

// FileState is the fingerprint recorded for one tracked file.
type FileState struct {
	Path         string
	ModTime      time.Time
	Size         int64
	ContentHash  string
	SemanticHash string
	AccessCount  int64 // bumped by Tracker.RecordAccess, used to find hot files
}

// Change is one file's classification between two scans.
type Change struct {
	Path string
	Kind Kind
}

// Tracker holds the last-known fingerprint of every file under a root and
// classifies changes against it on each incremental pass.
type Tracker struct {
	Root     string
	Strategy Strategy
	fs       statService

	mu     sync.Mutex
	states map[string]FileState
}

// Option configures a Tracker at construction.
type Option func(*Tracker)

// WithStatService overrides the mtime probe with a real afs.Service
// (afs.New()), so incremental scans share the same FS abstraction as the
// cold cache tier instead of going straight to os.Stat.
func WithStatService(fs statService) Option {
	return func(t *Tracker) { t.fs = fs }
}

// New creates a Tracker rooted at root using strategy for change detection.
func New(root string, strategy Strategy, opts ...Option) *Tracker {
	t := &Tracker{Root: root, Strategy: strategy, fs: osStat{}, states: make(map[string]FileState)}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Scan walks root, skipping the same excluded directories as the parser,
// and returns every .ts/.tsx file found. Order is lexical, for determinism.
func Scan(root string) ([]string, error) {
	var files []string
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if parser.IsExcludedPath(path) && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		if !sourceExt[filepath.Ext(path)] {
			return nil
		}
		if parser.IsExcludedPath(path) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	sort.Strings(files)
	return files, err
}

// Baseline records the initial fingerprint for every file in files, reading
// their contents via readSource. Call once after a full analysis pass.
func (t *Tracker) Baseline(ctx context.Context, files []string, readSource func(string) ([]byte, error)) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, f := range files {
		src, err := readSource(f)
		if err != nil {
			return err
		}
		info, err := t.fs.Stat(ctx, f)
		if err != nil {
			return err
		}
		t.states[f] = newFileState(f, src, info)
	}
	return nil
}

func newFileState(path string, src []byte, info os.FileInfo) FileState {
	return FileState{
		Path:         path,
		ModTime:      info.ModTime(),
		Size:         info.Size(),
		ContentHash:  contentHash(src),
		SemanticHash: semanticHash(src),
	}
}

// DetectChanges compares the current file set (discovered via Scan, or
// supplied directly) against the last baseline, classifying each path and
// updating the baseline for everything that wasn't deleted.
func (t *Tracker) DetectChanges(ctx context.Context, files []string, readSource func(string) ([]byte, error)) ([]Change, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	seen := make(map[string]bool, len(files))
	var changes []Change

	for _, f := range files {
		seen[f] = true
		prior, known := t.states[f]
		if !known {
			src, err := readSource(f)
			if err != nil {
				return nil, err
			}
			info, err := t.fs.Stat(ctx, f)
			if err != nil {
				return nil, err
			}
			t.states[f] = newFileState(f, src, info)
			changes = append(changes, Change{Path: f, Kind: KindNew})
			continue
		}

		kind, next, err := t.classify(ctx, prior, f, readSource)
		if err != nil {
			return nil, err
		}
		if kind != KindUnchanged {
			t.states[f] = next
			changes = append(changes, Change{Path: f, Kind: kind})
		}
	}

	for path := range t.states {
		if !seen[path] {
			delete(t.states, path)
			changes = append(changes, Change{Path: path, Kind: KindDeleted})
		}
	}

	sort.Slice(changes, func(i, j int) bool { return changes[i].Path < changes[j].Path })
	return changes, nil
}

// classify applies t.Strategy to decide whether f changed since prior,
// short-circuiting to KindUnchanged as soon as the strategy's first
// applicable stage proves nothing changed.
func (t *Tracker) classify(ctx context.Context, prior FileState, f string, readSource func(string) ([]byte, error)) (Kind, FileState, error) {
	info, err := t.fs.Stat(ctx, f)
	if err != nil {
		return KindUnchanged, prior, err
	}

	if t.Strategy == StrategyTimestamp {
		if info.ModTime().Equal(prior.ModTime) && info.Size() == prior.Size {
			return KindUnchanged, prior, nil
		}
		src, err := readSource(f)
		if err != nil {
			return KindUnchanged, prior, err
		}
		return KindSemantic, newFileState(f, src, info), nil
	}

	if t.Strategy == StrategyHybrid && info.ModTime().Equal(prior.ModTime) && info.Size() == prior.Size {
		return KindUnchanged, prior, nil
	}

	src, err := readSource(f)
	if err != nil {
		return KindUnchanged, prior, err
	}
	next := newFileState(f, src, info)

	if t.Strategy == StrategyContentHash {
		if next.ContentHash == prior.ContentHash {
			return KindUnchanged, prior, nil
		}
		return KindSemantic, next, nil
	}

	// StrategySemantic and StrategyHybrid both fall through to the
	// semantic hash once a timestamp/content difference is observed.
	if next.ContentHash == prior.ContentHash {
		return KindUnchanged, prior, nil
	}
	if next.SemanticHash == prior.SemanticHash {
		return KindCosmetic, next, nil
	}
	return KindSemantic, next, nil
}

// RecordAccess bumps f's access counter, used by HotFiles to pick warming
// candidates.
func (t *Tracker) RecordAccess(f string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s := t.states[f]
	s.AccessCount++
	t.states[f] = s
}

// HotFiles returns every tracked file whose access count is >= threshold,
// for optional cache warming after a reanalysis pass.
func (t *Tracker) HotFiles(threshold int64) []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	var out []string
	for path, s := range t.states {
		if s.AccessCount >= threshold {
			out = append(out, path)
		}
	}
	sort.Strings(out)
	return out
}

// State returns the last-known fingerprint for f, if tracked.
func (t *Tracker) State(f string) (FileState, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.states[f]
	return s, ok
}

func contentHash(src []byte) string {
	h, _ := highwayhash.New(hashKey[:])
	h.Write(src)
	return string(h.Sum(nil))
}

var (
	blockCommentRe = regexp.MustCompile(`(?s)/\*.*?\*/`)
	lineCommentRe  = regexp.MustCompile(`//[^\n]*`)
	whitespaceRe   = regexp.MustCompile(`\s+`)
)

// semanticHash hashes src with comments and redundant whitespace stripped,
// so edits that only affect comments or formatting hash identically.
func semanticHash(src []byte) string {
	stripped := blockCommentRe.ReplaceAll(src, nil)
	stripped = lineCommentRe.ReplaceAll(stripped, nil)
	stripped = whitespaceRe.ReplaceAll(stripped, []byte(" "))
	stripped = bytes.TrimSpace(stripped)
	return contentHash([]byte(strings.TrimSpace(string(stripped))))
}
