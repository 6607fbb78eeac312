// Package symbols implements the three-pass symbol resolver: a syntactic
// pass that walks each file's AST for declarations/definitions/usages, a
// semantic pass that augments those with cross-file import/export identity,
// and a dynamic pass that folds in inheritance-derived overrides. Grounded
// on analyzer/node.go's AST-dispatch switch (walk over node kinds invoking
// per-kind handlers), generalized from Go declarations to TS/TSX symbol
// kinds, and on inspector/jsx/inspector.go's processJSXComponents /
// processJSXVariables / processJSXFunctions split, which mirrors the
// syntactic pass's per-kind extraction structure.
package symbols

import (
	"encoding/binary"
	"sort"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/minio/highwayhash"

	"github.com/aroton/tsanalysis/internal/importtrack"
	"github.com/aroton/tsanalysis/internal/inheritance"
	"github.com/aroton/tsanalysis/internal/parser"
	"github.com/aroton/tsanalysis/internal/workspace"
)

// Pass identifies which resolution stage produced or refined a result.
type Pass string

const (
	PassSyntactic Pass = "syntactic"
	PassSemantic  Pass = "semantic"
	PassDynamic   Pass = "dynamic"
)

// testFrameworkCalls names the call identifiers treated as discoverable
// test-framework symbols when encountered as a call expression's callee.
var testFrameworkCalls = map[string]bool{
	"describe": true, "test": true, "it": true,
	"beforeAll": true, "beforeEach": true, "afterAll": true, "afterEach": true,
}

// Filters narrows resolution to a subset of symbols/references.
type Filters struct {
	IncludeTestFiles bool
	SymbolKinds      []workspace.SymbolKind
	TargetSymbol     string // optional "Name" or "ClassName#methodName"
}

func (f Filters) targetClassMethod() (class, method string, ok bool) {
	for i := 0; i < len(f.TargetSymbol); i++ {
		if f.TargetSymbol[i] == '#' {
			return f.TargetSymbol[:i], f.TargetSymbol[i+1:], true
		}
	}
	return "", "", false
}

// Result is one page of resolved symbols/references for a set of files.
type Result struct {
	Symbols    []*workspace.Symbol
	References []*workspace.Reference
	Pass       Pass
	NextCursor string
	HasMore    bool
}

// Options configures a single Resolve call.
type Options struct {
	Pass              Pass
	Filters           Filters
	InheritanceDepth  int // used by PassDynamic, 0 means unlimited
	AnalyzeConfidence bool
	PageSize          int
	Cursor            string
}

const defaultPageSize = 100

type cacheEntry struct {
	result Result
}

// Resolver runs the multi-pass symbol resolution pipeline over a project,
// reusing an import Tracker for cross-file linkage and an inheritance
// Resolver for override/inherited-definition discovery.
type Resolver struct {
	Parser      *parser.Parser
	Tracker     *importtrack.Tracker
	Inheritance *inheritance.Resolver

	mu          sync.Mutex
	perFile     map[string][]*workspace.Symbol
	resultCache map[string]cacheEntry
}

// New creates a Resolver wired to the given parser/tracker pair. An
// inheritance.Resolver is created internally and fed from IndexFile as files
// are analyzed.
func New(p *parser.Parser, tracker *importtrack.Tracker) *Resolver {
	return &Resolver{
		Parser:      p,
		Tracker:     tracker,
		Inheritance: inheritance.New(),
		perFile:     make(map[string][]*workspace.Symbol),
		resultCache: make(map[string]cacheEntry),
	}
}

// Resolve runs the requested pass (and every pass before it) over files,
// returning one page of results.
func (r *Resolver) Resolve(files []string, opts Options) (Result, []parser.Error) {
	if opts.PageSize <= 0 {
		opts.PageSize = defaultPageSize
	}

	key, ok := r.cacheKey(files, opts)
	if ok {
		r.mu.Lock()
		if entry, hit := r.resultCache[key]; hit {
			r.mu.Unlock()
			return entry.result, nil
		}
		r.mu.Unlock()
	}

	var allSymbols []*workspace.Symbol
	var allRefs []*workspace.Reference
	var errs []parser.Error
	seenRefs := make(map[string]bool)

	for _, file := range files {
		if !opts.Filters.IncludeTestFiles && workspace.IsTestFile(file) {
			continue
		}
		syms, refs, fileErrs := r.syntacticPass(file)
		if len(fileErrs) > 0 {
			errs = append(errs, fileErrs...)
			continue
		}
		allSymbols = append(allSymbols, syms...)
		for _, ref := range refs {
			if !seenRefs[ref.Key()] {
				seenRefs[ref.Key()] = true
				allRefs = append(allRefs, ref)
			}
		}
	}

	if opts.Pass == PassSemantic || opts.Pass == PassDynamic {
		extra := r.semanticPass(files, allSymbols)
		for _, ref := range extra {
			if !seenRefs[ref.Key()] {
				seenRefs[ref.Key()] = true
				allRefs = append(allRefs, ref)
			}
		}
	}

	if opts.Pass == PassDynamic {
		extra := r.dynamicPass(allSymbols, opts.InheritanceDepth)
		for _, ref := range extra {
			if !seenRefs[ref.Key()] {
				seenRefs[ref.Key()] = true
				allRefs = append(allRefs, ref)
			}
		}
	}

	allSymbols = filterSymbols(allSymbols, opts.Filters)
	allRefs = filterReferences(allRefs, opts.Filters)

	if opts.AnalyzeConfidence {
		analyzeConfidence(allSymbols, allRefs)
	}

	result := paginate(allSymbols, allRefs, opts)
	result.Pass = opts.Pass

	if ok {
		r.mu.Lock()
		r.resultCache[key] = cacheEntry{result: result}
		r.mu.Unlock()
	}

	return result, errs
}

// FileSymbols returns the cached per-file symbol list produced by the most
// recent syntactic pass over file, parsing it first if necessary.
func (r *Resolver) FileSymbols(file string) []*workspace.Symbol {
	r.mu.Lock()
	if syms, ok := r.perFile[file]; ok {
		r.mu.Unlock()
		return syms
	}
	r.mu.Unlock()
	syms, _, _ := r.syntacticPass(file)
	return syms
}

func filterSymbols(in []*workspace.Symbol, f Filters) []*workspace.Symbol {
	if len(f.SymbolKinds) == 0 && f.TargetSymbol == "" {
		return in
	}
	kindSet := make(map[workspace.SymbolKind]bool, len(f.SymbolKinds))
	for _, k := range f.SymbolKinds {
		kindSet[k] = true
	}
	class, method, hasTarget := f.targetClassMethod()

	out := in[:0:0]
	for _, s := range in {
		if len(kindSet) > 0 && !kindSet[s.Kind] {
			continue
		}
		if f.TargetSymbol != "" {
			if hasTarget {
				if s.EnclosingClass != class || s.Name != method {
					continue
				}
			} else if s.Name != f.TargetSymbol {
				continue
			}
		}
		out = append(out, s)
	}
	return out
}

func filterReferences(in []*workspace.Reference, f Filters) []*workspace.Reference {
	if len(f.SymbolKinds) == 0 && f.TargetSymbol == "" {
		return in
	}
	kindSet := make(map[workspace.SymbolKind]bool, len(f.SymbolKinds))
	for _, k := range f.SymbolKinds {
		kindSet[k] = true
	}
	class, method, hasTarget := f.targetClassMethod()

	out := in[:0:0]
	for _, ref := range in {
		if len(kindSet) > 0 && !kindSet[ref.SymbolKind] {
			continue
		}
		if f.TargetSymbol != "" {
			if hasTarget {
				if ref.ClassName != class || ref.MethodName != method {
					continue
				}
			} else if ref.SymbolName != f.TargetSymbol {
				continue
			}
		}
		out = append(out, ref)
	}
	return out
}

// analyzeConfidence applies the optional post-hoc confidence adjustments:
// +0.1 for an exported symbol, +0.1 for an isX-shaped type-guard function,
// +0.1 for a reference that is itself a declaration, clamped to [0, 1].
func analyzeConfidence(syms []*workspace.Symbol, refs []*workspace.Reference) {
	for _, s := range syms {
		if s.Exported {
			s.Confidence += 0.1
		}
		if s.IsTypeGuard {
			s.Confidence += 0.1
		}
		s.Confidence = clamp01(s.Confidence)
	}
	for _, ref := range refs {
		if ref.Kind == workspace.RefDeclaration {
			ref.Confidence += 0.1
		}
		ref.Confidence = clamp01(ref.Confidence)
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// paginate pages References, not Symbols: References is the list the
// find_references tool boundary actually exposes to callers (Symbols is
// only ever reported as a count via AnalysisStats), so it's the list the
// caller's page_size/max_tokens budget has to bound. Symbols is returned in
// full on every page.
func paginate(syms []*workspace.Symbol, refs []*workspace.Reference, opts Options) Result {
	start := 0
	if opts.Cursor != "" {
		if n, ok := decodeCursor(opts.Cursor); ok {
			start = n
		}
	}
	total := len(refs)
	end := start + opts.PageSize
	hasMore := end < total
	if end > total {
		end = total
	}
	if start > total {
		start = total
	}

	result := Result{
		Symbols:    syms,
		References: refs[start:end],
		HasMore:    hasMore,
	}
	if hasMore {
		result.NextCursor = encodeCursor(end)
	}
	return result
}

func encodeCursor(n int) string {
	return "page_" + itoa(n)
}

func decodeCursor(cursor string) (int, bool) {
	const prefix = "page_"
	if len(cursor) <= len(prefix) || cursor[:len(prefix)] != prefix {
		return 0, false
	}
	n, ok := atoi(cursor[len(prefix):])
	return n, ok
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	neg := n < 0
	if neg {
		n = -n
	}
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

func atoi(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	n := 0
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	return n, true
}

var hashKey [32]byte

// cacheKey hashes the sorted file set (path+mtime), pass, and filter/flag
// state so an unchanged analysis request always hits the same cache slot,
// mirroring _generate_cache_key's construction.
func (r *Resolver) cacheKey(files []string, opts Options) (string, bool) {
	sorted := append([]string(nil), files...)
	sort.Strings(sorted)

	h, err := highwayhash.New64(hashKey[:])
	if err != nil {
		return "", false
	}
	for _, f := range sorted {
		info, statErr := statFile(f)
		if statErr != nil {
			return "", false
		}
		h.Write([]byte(f))
		var buf [8]byte
		binary.LittleEndian.PutUint64(buf[:], uint64(info))
		h.Write(buf[:])
	}
	h.Write([]byte(opts.Pass))
	h.Write([]byte(opts.Filters.TargetSymbol))
	for _, k := range opts.Filters.SymbolKinds {
		h.Write([]byte(k))
	}
	if opts.Filters.IncludeTestFiles {
		h.Write([]byte{1})
	}
	if opts.AnalyzeConfidence {
		h.Write([]byte{1})
	}
	var depthBuf [8]byte
	binary.LittleEndian.PutUint64(depthBuf[:], uint64(opts.InheritanceDepth))
	h.Write(depthBuf[:])
	h.Write([]byte(opts.Cursor))

	sum := h.Sum64()
	var out [8]byte
	binary.LittleEndian.PutUint64(out[:], sum)
	return string(out[:]), true
}

// walkNodes invokes fn on every descendant of n, including n itself.
func walkNodes(n *sitter.Node, fn func(*sitter.Node)) {
	if n == nil {
		return
	}
	fn(n)
	for i := 0; i < int(n.NamedChildCount()); i++ {
		walkNodes(n.NamedChild(i), fn)
	}
}
