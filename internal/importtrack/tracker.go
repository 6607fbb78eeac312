package importtrack

import (
	"sync"

	"github.com/aroton/tsanalysis/internal/parser"
	"github.com/aroton/tsanalysis/internal/workspace"
)

// Tracker analyzes import/export relationships across a project, caching
// per-file results so repeated analysis of an unchanged file is free. It
// plays the role of ImportTracker in the reference implementation, but
// extracts real syntax rather than falling back to regex/mock data.
type Tracker struct {
	Parser   *parser.Parser
	Resolver *Resolver

	mu          sync.Mutex
	importCache map[string][]workspace.Import
	exportCache map[string][]workspace.Export
	filesProcessed int64
}

// New creates a Tracker backed by p, resolving project-relative imports
// against root.
func New(p *parser.Parser, root string) *Tracker {
	return &Tracker{
		Parser:      p,
		Resolver:    NewResolver(root),
		importCache: make(map[string][]workspace.Import),
		exportCache: make(map[string][]workspace.Export),
	}
}

// FileImports returns file's imports, parsing and extracting only on a
// cache miss.
func (t *Tracker) FileImports(file string) ([]workspace.Import, []parser.Error) {
	t.mu.Lock()
	if cached, ok := t.importCache[file]; ok {
		t.mu.Unlock()
		return cached, nil
	}
	t.mu.Unlock()

	res := t.Parser.Parse(file)
	if !res.Success {
		return nil, res.Errors
	}

	imports := ExtractImports(res.Tree.RootNode(), res.Source, file)
	for i := range imports {
		if imports[i].External {
			continue
		}
		if resolved, ok := t.Resolver.Resolve(imports[i].Specifier, file); ok {
			imports[i].Specifier = resolved
		}
	}

	t.mu.Lock()
	t.importCache[file] = imports
	t.filesProcessed++
	t.mu.Unlock()

	return imports, nil
}

// FileExports returns file's exports, parsing and extracting only on a
// cache miss.
func (t *Tracker) FileExports(file string) ([]workspace.Export, []parser.Error) {
	t.mu.Lock()
	if cached, ok := t.exportCache[file]; ok {
		t.mu.Unlock()
		return cached, nil
	}
	t.mu.Unlock()

	res := t.Parser.Parse(file)
	if !res.Success {
		return nil, res.Errors
	}

	exports := ExtractExports(res.Tree.RootNode(), res.Source, file)

	t.mu.Lock()
	t.exportCache[file] = exports
	t.mu.Unlock()

	return exports, nil
}

// Invalidate drops any cached import/export results for file, e.g. after an
// edit; the parser's own cache is invalidated separately by the caller.
func (t *Tracker) Invalidate(file string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.importCache, file)
	delete(t.exportCache, file)
}

// BuildDependencyGraph analyzes every file and records resolved import
// edges into g, returning the files whose imports could not be extracted.
func (t *Tracker) BuildDependencyGraph(g *workspace.DependencyGraph, files []string, includeExternal bool) []parser.Error {
	var errs []parser.Error
	for _, file := range files {
		imports, fileErrs := t.FileImports(file)
		if len(fileErrs) > 0 {
			errs = append(errs, fileErrs...)
			continue
		}
		BuildGraph(g, file, imports, t.Resolver, includeExternal)
	}
	return errs
}

// CacheStats reports how many files have had their imports extracted and how
// many import/export results are cached, mirroring get_cache_stats()'s shape.
type CacheStats struct {
	FilesProcessed int64
	ImportEntries  int
	ExportEntries  int
}

func (t *Tracker) CacheStats() CacheStats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return CacheStats{
		FilesProcessed: t.filesProcessed,
		ImportEntries:  len(t.importCache),
		ExportEntries:  len(t.exportCache),
	}
}
