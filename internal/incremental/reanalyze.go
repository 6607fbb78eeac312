package incremental

import (
	"context"
	"sort"

	"github.com/aroton/tsanalysis/internal/cachemgr"
	"github.com/aroton/tsanalysis/internal/workspace"
)

// cacheKeyPrefixes are the four cache families that must be invalidated
// together for a given file: either all valid or all invalidated.
var cacheKeyPrefixes = []string{"ast:", "symbols:", "imports:", "exports:"}

// Plan is the outcome of running the reanalysis pipeline: which files need
// recomputation and which cache keys were dropped along the way.
type Plan struct {
	ToReanalyze      []string // union of directly changed files and their transitive dependents
	InvalidatedKeys  []string
	RemovedFromGraph []string
}

// Reanalyze implements the §4.10 pipeline: invalidate a modified file's
// cache families and every transitive dependent's, drop deleted files from
// the dependency graph and cache entirely, and return the union of directly
// changed files and their transitive dependents as the set to recompute.
// The dependent closure is computed against graph's state before any edges
// are rewritten for the reanalyzed files, per the incremental-invariant
// that dependents are resolved pre-mutation.
func Reanalyze(ctx context.Context, cache *cachemgr.Manager, graph *workspace.DependencyGraph, changes []Change) Plan {
	reverse := reverseEdges(graph)

	toReanalyze := make(map[string]bool)
	var invalidated []string
	var removed []string

	for _, c := range changes {
		switch c.Kind {
		case KindDeleted:
			for _, prefix := range cacheKeyPrefixes {
				cache.Invalidate(ctx, prefix+c.Path)
			}
			graph.RemoveNode(c.Path)
			removed = append(removed, c.Path)

		case KindSemantic, KindNew:
			toReanalyze[c.Path] = true
			for _, prefix := range cacheKeyPrefixes {
				key := prefix + c.Path
				affected := cache.InvalidateTransitive(ctx, key)
				invalidated = append(invalidated, key)
				invalidated = append(invalidated, affected...)
			}
			for _, dependent := range transitiveDependents(reverse, c.Path) {
				toReanalyze[dependent] = true
				for _, prefix := range cacheKeyPrefixes {
					key := prefix + dependent
					cache.Invalidate(ctx, key)
					invalidated = append(invalidated, key)
				}
			}

		case KindCosmetic:
			// Cosmetic changes never force reanalysis or invalidation.
		}
	}

	out := make([]string, 0, len(toReanalyze))
	for f := range toReanalyze {
		out = append(out, f)
	}
	sort.Strings(out)
	sort.Strings(invalidated)
	sort.Strings(removed)

	return Plan{ToReanalyze: out, InvalidatedKeys: invalidated, RemovedFromGraph: removed}
}

// reverseEdges builds file -> importers (the reverse of the dependency
// graph's import-direction edges) from graph's current node/edge state.
func reverseEdges(graph *workspace.DependencyGraph) map[string][]string {
	rev := make(map[string][]string)
	for _, from := range graph.Nodes() {
		for _, edge := range graph.Out(from) {
			to := graph.NodeID(edge.To)
			rev[to] = append(rev[to], from)
		}
	}
	return rev
}

// transitiveDependents walks rev breadth-first from start, returning every
// file reachable by following "is imported by" edges, not including start.
func transitiveDependents(rev map[string][]string, start string) []string {
	visited := map[string]bool{start: true}
	queue := []string{start}
	var out []string
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, dependent := range rev[cur] {
			if visited[dependent] {
				continue
			}
			visited[dependent] = true
			out = append(out, dependent)
			queue = append(queue, dependent)
		}
	}
	return out
}
