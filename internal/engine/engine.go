// Package engine is the explicit context object threading the parser,
// cache manager, memory manager, import tracker, symbol resolver,
// inheritance resolver, type resolver, and incremental tracker together.
// There is no package-level singleton: engine.New constructs a fresh
// Engine, mirroring the teacher's analyzer.NewAnalyzer(options...)
// construction style (analyzer/analyzer.go) generalized from a single
// Analyzer struct to one that owns the whole per-project analysis
// substrate. cmd/tsanalysis and internal/mcpserver are the only callers
// that construct one at process start.
package engine

import (
	"github.com/aroton/tsanalysis/internal/cachemgr"
	"github.com/aroton/tsanalysis/internal/importtrack"
	"github.com/aroton/tsanalysis/internal/incremental"
	"github.com/aroton/tsanalysis/internal/inheritance"
	"github.com/aroton/tsanalysis/internal/memmgr"
	"github.com/aroton/tsanalysis/internal/parser"
	"github.com/aroton/tsanalysis/internal/symbols"
	"github.com/aroton/tsanalysis/internal/types"
)

const (
	defaultEvictFraction  = 0.10
	defaultRetainFraction = 0.05
)

// Engine composes one instance of every analysis component for a single
// project root.
type Engine struct {
	Root string

	Parser      *parser.Parser
	Cache       *cachemgr.Manager
	Memory      *memmgr.Manager
	Imports     *importtrack.Tracker
	Symbols     *symbols.Resolver
	Inheritance *inheritance.Resolver
	Types       *types.Resolver
	Incremental *incremental.Tracker
}

// Option configures an Engine at construction, following the same
// functional-options shape as parser.Option/cachemgr.Option/memmgr.Option.
type Option func(*options)

type options struct {
	parserOpts      []parser.Option
	cacheOpts       []cachemgr.Option
	memoryOpts      []memmgr.Option
	incrementalOpts []incremental.Option
	strategy        incremental.Strategy
}

// WithParserOptions passes through construction options to the embedded
// parser.Parser.
func WithParserOptions(opts ...parser.Option) Option {
	return func(o *options) { o.parserOpts = append(o.parserOpts, opts...) }
}

// WithCacheOptions passes through construction options to the embedded
// cachemgr.Manager.
func WithCacheOptions(opts ...cachemgr.Option) Option {
	return func(o *options) { o.cacheOpts = append(o.cacheOpts, opts...) }
}

// WithMemoryOptions passes through construction options to the embedded
// memmgr.Manager.
func WithMemoryOptions(opts ...memmgr.Option) Option {
	return func(o *options) { o.memoryOpts = append(o.memoryOpts, opts...) }
}

// WithIncrementalStrategy selects the change-detection strategy used by the
// embedded incremental.Tracker (default incremental.StrategyHybrid).
func WithIncrementalStrategy(strategy incremental.Strategy) Option {
	return func(o *options) { o.strategy = strategy }
}

// WithIncrementalOptions passes through construction options to the
// embedded incremental.Tracker.
func WithIncrementalOptions(opts ...incremental.Option) Option {
	return func(o *options) { o.incrementalOpts = append(o.incrementalOpts, opts...) }
}

// New constructs a fresh Engine rooted at root. The memory manager's
// pressure and emergency callbacks are wired to evict and then retain-only
// the cache manager's hot tier, exactly the escalation spec.md §4.3/§9
// describes: a high-pressure round sheds 10% of the hot tier, an emergency
// round collapses it down to its hottest 5%.
func New(root string, opts ...Option) *Engine {
	cfg := &options{strategy: incremental.StrategyHybrid}
	for _, opt := range opts {
		opt(cfg)
	}

	mm := memmgr.New(cfg.memoryOpts...)
	p := parser.New(cfg.parserOpts...)
	p.AttachMemoryManager(mm)

	cache := cachemgr.New(cfg.cacheOpts...)
	mm.RegisterPressureCallback(func() { cache.EvictHotFraction(defaultEvictFraction) })
	mm.RegisterEmergencyCallback(func() { cache.RetainHotFraction(defaultRetainFraction) })

	tracker := importtrack.New(p, root)
	resolver := symbols.New(p, tracker)

	return &Engine{
		Root:        root,
		Parser:      p,
		Cache:       cache,
		Memory:      mm,
		Imports:     tracker,
		Symbols:     resolver,
		Inheritance: resolver.Inheritance,
		Types:       types.New(),
		Incremental: incremental.New(root, cfg.strategy, cfg.incrementalOpts...),
	}
}
