// Package parser produces and caches concrete syntax trees for .ts/.tsx
// files using the tree-sitter TypeScript grammars, grounded on the teacher's
// query-cursor extraction style in inspector/golang/inspector_tree_sitter.go
// and inspector/jsx/inspector.go's per-extension grammar choice.
package parser

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/klauspost/compress/flate"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/aroton/tsanalysis/internal/workspace"
	"github.com/minio/highwayhash"

	"github.com/aroton/tsanalysis/internal/lru"
)

var excludedDirNames = map[string]bool{
	".git":         true,
	"node_modules": true,
	"dist":         true,
	"build":        true,
	".next":        true,
	".nuxt":        true,
}

var hashKey = func() [32]byte {
	var k [32]byte // zero key is fine: this hash is for cache identity, not security
	return k
}()

// ParseResult is the outcome of parsing one file or source buffer.
type ParseResult struct {
	Success    bool
	Tree       *sitter.Tree
	Source     []byte
	Errors     []Error
	ParseTime  time.Duration
	Fingerprint string
}

type cacheEntry struct {
	tree        *sitter.Tree
	compressed  []byte // set when the resident tree has been deflated away
	source      []byte // retained resident alongside tree; discarded when compressed
	fingerprint string
	modTime     time.Time
	parseTime   time.Duration
}

// Parser parses and caches TypeScript/TSX syntax trees.
type Parser struct {
	mu            sync.Mutex
	cache         *lru.List
	maxFileBytes  int64
	compress      bool
	stats         Stats
}

// Option configures a Parser at construction.
type Option func(*Parser)

// WithMaxCacheBytes bounds the tree cache's total size in bytes.
func WithMaxCacheBytes(n int64) Option {
	return func(p *Parser) { p.cache = lru.New(n, nil) }
}

// WithMaxFileBytes rejects files larger than n with FILE_TOO_LARGE.
func WithMaxFileBytes(n int64) Option {
	return func(p *Parser) { p.maxFileBytes = n }
}

// WithCompression enables Compress, which deflates a cached entry's source
// and drops its resident tree; no entry is compressed automatically.
func WithCompression(enabled bool) Option {
	return func(p *Parser) { p.compress = enabled }
}

const defaultMaxFileBytes = 2 * 1024 * 1024 // 2MiB
const defaultMaxCacheBytes = 64 * 1024 * 1024

// New creates a Parser with the given options applied over sane defaults.
func New(opts ...Option) *Parser {
	p := &Parser{
		maxFileBytes: defaultMaxFileBytes,
	}
	p.cache = lru.New(defaultMaxCacheBytes, nil)
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// pressureRegistrar is the subset of memmgr.Manager's API the parser needs;
// kept local to avoid an import cycle between parser and memmgr.
type pressureRegistrar interface {
	RegisterPressureCallback(func())
	RegisterEmergencyCallback(func())
}

// AttachMemoryManager registers the parser's high/emergency pressure
// callbacks: high pressure evicts 10% of cached trees, emergency pressure
// retains only 5%.
func (p *Parser) AttachMemoryManager(mm pressureRegistrar) {
	mm.RegisterPressureCallback(func() {
		p.mu.Lock()
		p.cache.EvictFraction(0.10)
		p.mu.Unlock()
	})
	mm.RegisterEmergencyCallback(func() {
		p.mu.Lock()
		p.cache.RetainFraction(0.05)
		p.mu.Unlock()
	})
}

// languageFor selects the TypeScript or TSX grammar by file extension.
func languageFor(path string) (*sitter.Language, workspace.FileKind, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tsx":
		return tsx.GetLanguage(), workspace.FileTSX, true
	case ".ts":
		return typescript.GetLanguage(), workspace.FileTS, true
	default:
		return nil, "", false
	}
}

func isExcludedPath(path string) bool {
	return IsExcludedPath(path)
}

// IsExcludedPath reports whether path falls under a directory the parser
// (and, per §4.10, the incremental file tracker) never scans.
func IsExcludedPath(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if excludedDirNames[part] {
			return true
		}
	}
	return false
}

func fingerprint(src []byte) string {
	h, _ := highwayhash.New(hashKey[:])
	h.Write(src)
	sum := h.Sum(nil)
	return string(sum)
}

// Parse reads, caches, and parses a file from disk.
func (p *Parser) Parse(path string) ParseResult {
	if isExcludedPath(path) {
		return ParseResult{Errors: []Error{{Code: ErrExcludedPath, Message: "path under an excluded directory", File: path}}}
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return ParseResult{Errors: []Error{{Code: ErrNotFound, Message: err.Error(), File: path}}}
		}
		if os.IsPermission(err) {
			return ParseResult{Errors: []Error{{Code: ErrPermissionDenied, Message: err.Error(), File: path}}}
		}
		return ParseResult{Errors: []Error{{Code: ErrNotFound, Message: err.Error(), File: path}}}
	}
	if p.maxFileBytes > 0 && info.Size() > p.maxFileBytes {
		return ParseResult{Errors: []Error{{Code: ErrFileTooLarge, Message: "file exceeds configured size limit", File: path}}}
	}

	// Check cache before touching disk contents.
	if cached, ok := p.getCached(path, info.ModTime()); ok {
		p.stats.recordHit()
		tree, src := p.residentTree(path, cached)
		return ParseResult{Success: true, Tree: tree, Source: src, Fingerprint: cached.fingerprint}
	}

	src, err := os.ReadFile(path)
	if err != nil {
		if os.IsPermission(err) {
			return ParseResult{Errors: []Error{{Code: ErrPermissionDenied, Message: err.Error(), File: path}}}
		}
		return ParseResult{Errors: []Error{{Code: ErrNotFound, Message: err.Error(), File: path}}}
	}

	return p.parseAndCache(path, src, info.ModTime())
}

// ParseSource parses an in-memory buffer without touching the disk cache
// keyed by path; used for one-off analysis of unsaved buffers.
func (p *Parser) ParseSource(path string, src []byte) ParseResult {
	lang, _, ok := languageFor(path)
	if !ok {
		return ParseResult{Errors: []Error{{Code: ErrParseError, Message: "unrecognized extension", File: path}}}
	}
	start := time.Now()
	tree, err := parseWith(lang, src)
	elapsed := time.Since(start)
	if err != nil {
		return ParseResult{Errors: []Error{{Code: ErrParseError, Message: err.Error(), File: path}}, ParseTime: elapsed}
	}
	return ParseResult{Success: true, Tree: tree, Source: src, ParseTime: elapsed, Fingerprint: fingerprint(src)}
}

func (p *Parser) parseAndCache(path string, src []byte, modTime time.Time) ParseResult {
	lang, _, ok := languageFor(path)
	if !ok {
		return ParseResult{Errors: []Error{{Code: ErrParseError, Message: "unrecognized extension", File: path}}}
	}

	start := time.Now()
	tree, err := parseWith(lang, src)
	elapsed := time.Since(start)
	if err != nil {
		return ParseResult{Errors: []Error{{Code: ErrParseError, Message: err.Error(), File: path}}, ParseTime: elapsed}
	}

	fp := fingerprint(src)
	entry := &cacheEntry{tree: tree, source: src, fingerprint: fp, modTime: modTime, parseTime: elapsed}

	p.mu.Lock()
	p.cache.Set(path, entry, int64(len(src)))
	p.mu.Unlock()

	p.stats.recordParse(float64(elapsed.Microseconds()) / 1000.0)
	return ParseResult{Success: true, Tree: tree, Source: src, ParseTime: elapsed, Fingerprint: fp}
}

func parseWith(lang *sitter.Language, src []byte) (*sitter.Tree, error) {
	sp := sitter.NewParser()
	sp.SetLanguage(lang)
	return sp.ParseCtx(nil, nil, src)
}

// getCached returns a non-stale cache entry for path, invalidating it first
// if the filesystem mtime has moved on, per the data-model cache invariant.
func (p *Parser) getCached(path string, modTime time.Time) (*cacheEntry, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	v, ok := p.cache.Get(path)
	if !ok {
		return nil, false
	}
	entry := v.(*cacheEntry)
	if !entry.modTime.Equal(modTime) {
		p.cache.Remove(path)
		return nil, false
	}
	return entry, true
}

// residentTree returns a usable tree and source for entry, decompressing
// (by re-parsing the deflated source) on first access if it had been
// compressed. The upstream tree-sitter binding has no native serialization
// format for a Tree, so "decompression" here restores the source bytes and
// re-parses them; callers observe ordinary tree semantics either way.
func (p *Parser) residentTree(path string, entry *cacheEntry) (*sitter.Tree, []byte) {
	if entry.tree != nil {
		return entry.tree, entry.source
	}
	src, err := inflate(entry.compressed)
	if err != nil {
		return nil, nil
	}
	lang, _, ok := languageFor(path)
	if !ok {
		return nil, nil
	}
	tree, err := parseWith(lang, src)
	if err != nil {
		return nil, nil
	}
	p.mu.Lock()
	entry.tree = tree
	entry.source = src
	p.mu.Unlock()
	return tree, src
}

// Compress deflates the source behind path's cache entry and drops the
// resident tree, freeing its memory until the next access.
func (p *Parser) Compress(path string) bool {
	if !p.compress {
		return false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	v, ok := p.cache.Peek(path)
	if !ok {
		return false
	}
	entry := v.(*cacheEntry)
	if entry.tree == nil {
		return false
	}
	deflated, err := deflate(entry.source)
	if err != nil {
		return false
	}
	entry.compressed = deflated
	entry.tree = nil
	entry.source = nil
	return true
}

// Invalidate drops path's cached tree unconditionally.
func (p *Parser) Invalidate(path string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cache.Remove(path)
}

// GetCachedTree returns the resident tree for path without touching disk,
// or nil if absent or stale.
func (p *Parser) GetCachedTree(path string) *sitter.Tree {
	info, err := os.Stat(path)
	if err != nil {
		return nil
	}
	entry, ok := p.getCached(path, info.ModTime())
	if !ok {
		return nil
	}
	tree, _ := p.residentTree(path, entry)
	return tree
}

// GetStats returns a point-in-time statistics snapshot.
func (p *Parser) GetStats() Snapshot {
	return p.stats.Snapshot()
}

// QueryNodes runs a tree-sitter query for the given S-expression pattern and
// returns every captured node, mirroring the teacher's repeated
// NewQuery/NewQueryCursor/NextMatch idiom so callers don't re-implement it.
func QueryNodes(lang *sitter.Language, root *sitter.Node, pattern string) []*sitter.Node {
	q, err := sitter.NewQuery([]byte(pattern), lang)
	if err != nil {
		return nil
	}
	cursor := sitter.NewQueryCursor()
	cursor.Exec(q, root)
	var out []*sitter.Node
	for {
		match, ok := cursor.NextMatch()
		if !ok {
			break
		}
		for _, capture := range match.Captures {
			out = append(out, capture.Node)
		}
	}
	return out
}

func deflate(src []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.DefaultCompression)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(src); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func inflate(compressed []byte) ([]byte, error) {
	r := flate.NewReader(bytes.NewReader(compressed))
	defer r.Close()
	return io.ReadAll(r)
}
