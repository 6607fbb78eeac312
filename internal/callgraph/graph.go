package callgraph

const defaultMaxOutEdges = 50

// Graph is the union call graph discovered from an entry point: every node
// visited within max_depth, and every edge from a node to a callee it
// directly invokes.
type Graph struct {
	Nodes       map[string]FuncID
	Edges       map[string][]string
	brokenEdges map[string][]string // original edge targets replaced by a placeholder, for restoration
}

// Stats summarizes one call-graph build for the boundary response's
// call_graph_stats field.
type Stats struct {
	TotalFunctions  int
	TotalEdges      int
	MaxDepthReached int
	CyclesDetected  int
}

// Build runs a depth-first traversal from entryKey (a key returned by
// Index.Resolve) up to maxDepth nodes (depth counts nodes, not edges),
// capping each node's out-edges at maxOutEdges and recursing into callees
// with a copy of the current visited set so distinct paths are preserved.
// Self-recursion is recorded as an edge but not re-entered.
func Build(idx *Index, entryKey string, maxDepth, maxOutEdges int) (*Graph, Stats) {
	if maxOutEdges <= 0 {
		maxOutEdges = defaultMaxOutEdges
	}
	g := &Graph{Nodes: make(map[string]FuncID), Edges: make(map[string][]string), brokenEdges: make(map[string][]string)}
	stats := Stats{}

	if maxDepth <= 0 {
		return g, stats
	}

	var walk func(key string, depth int, visited map[string]bool)
	walk = func(key string, depth int, visited map[string]bool) {
		if depth > stats.MaxDepthReached {
			stats.MaxDepthReached = depth
		}
		if _, ok := g.Nodes[key]; !ok {
			g.Nodes[key] = idx.defs[key]
		}
		if depth >= maxDepth {
			return
		}

		callees := idx.Callees(key)
		count := 0
		for _, callee := range callees {
			if count >= maxOutEdges {
				break
			}
			count++
			g.Edges[key] = append(g.Edges[key], callee)
			if callee == key {
				continue // self-recursion: edge recorded, not re-entered
			}
			if visited[callee] {
				continue
			}
			nextVisited := make(map[string]bool, len(visited)+1)
			for k := range visited {
				nextVisited[k] = true
			}
			nextVisited[callee] = true
			walk(callee, depth+1, nextVisited)
		}
	}

	walk(entryKey, 1, map[string]bool{entryKey: true})

	stats.TotalFunctions = len(g.Nodes)
	for _, edges := range g.Edges {
		stats.TotalEdges += len(edges)
	}
	return g, stats
}

// Path is one root-to-leaf traversal of the call graph.
type Path struct {
	Nodes      []string
	Truncated  bool // true when the path stopped because max_depth was reached, not because it hit a leaf
	ClosedCycle bool // true when the path was closed by a repeated node
}

// ExecutionPaths enumerates every root-to-leaf path from entryKey, emitting
// a partial path when max_depth is reached mid-traversal and closing a path
// (with the repeated node appended) when a call targets a function already
// on the current path.
func ExecutionPaths(idx *Index, entryKey string, maxDepth int) []Path {
	if maxDepth <= 0 {
		return nil
	}
	var paths []Path
	var walk func(key string, depth int, stack []string, onStack map[string]bool)
	walk = func(key string, depth int, stack []string, onStack map[string]bool) {
		stack = append(stack, key)
		callees := idx.Callees(key)
		if depth >= maxDepth {
			paths = append(paths, Path{Nodes: append([]string(nil), stack...), Truncated: len(callees) > 0})
			return
		}

		if len(callees) == 0 {
			paths = append(paths, Path{Nodes: append([]string(nil), stack...)})
			return
		}

		emitted := false
		for _, callee := range callees {
			if onStack[callee] {
				closed := append(append([]string(nil), stack...), callee)
				paths = append(paths, Path{Nodes: closed, ClosedCycle: true})
				emitted = true
				continue
			}
			nextOnStack := make(map[string]bool, len(onStack)+1)
			for k := range onStack {
				nextOnStack[k] = true
			}
			nextOnStack[callee] = true
			walk(callee, depth+1, stack, nextOnStack)
			emitted = true
		}
		if !emitted {
			paths = append(paths, Path{Nodes: append([]string(nil), stack...)})
		}
	}
	walk(entryKey, 1, nil, map[string]bool{entryKey: true})
	return paths
}
