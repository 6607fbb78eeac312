package callgraph

import (
	"fmt"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// Cycle is one detected cycle in the call graph.
type Cycle struct {
	Members []string
	SelfLoop bool
}

// DetectCycles runs Tarjan's SCC (gonum/graph/topo) over g, reporting every
// component of size >= 2 as a cycle, plus self-loops detected separately.
func DetectCycles(g *Graph) []Cycle {
	keys := make([]string, 0, len(g.Nodes))
	index := make(map[string]int, len(g.Nodes))
	for key := range g.Nodes {
		index[key] = len(keys)
		keys = append(keys, key)
	}

	dg := simple.NewDirectedGraph()
	for i := range keys {
		dg.AddNode(simple.Node(i))
	}
	var selfLoops []Cycle
	for from, tos := range g.Edges {
		fromIdx, ok := index[from]
		if !ok {
			continue
		}
		for _, to := range tos {
			toIdx, ok := index[to]
			if !ok {
				continue
			}
			if fromIdx == toIdx {
				selfLoops = append(selfLoops, Cycle{Members: []string{from}, SelfLoop: true})
				continue
			}
			if dg.HasEdgeFromTo(int64(fromIdx), int64(toIdx)) {
				continue
			}
			dg.SetEdge(dg.NewEdge(simple.Node(fromIdx), simple.Node(toIdx)))
		}
	}

	var cycles []Cycle
	for _, component := range topo.TarjanSCC(dg) {
		if len(component) < 2 {
			continue
		}
		members := make([]string, 0, len(component))
		for _, n := range component {
			members = append(members, keys[n.ID()])
		}
		cycles = append(cycles, Cycle{Members: members})
	}
	return append(cycles, selfLoops...)
}

// PlaceholderName renders the synthetic node name used when breaking a
// back-edge: "[CYCLE: X]" for a multi-node cycle member, "[RECURSION: X]"
// for a self-loop.
func PlaceholderName(target string, selfLoop bool) string {
	if selfLoop {
		return fmt.Sprintf("[RECURSION: %s]", target)
	}
	return fmt.Sprintf("[CYCLE: %s]", target)
}

// BreakCycles replaces every edge whose source and target are both members
// of detected cycles (so every edge inside a cycle, not only one back-edge
// per cycle) with an edge to a synthetic placeholder node, remembering the
// original target so RestoreBrokenEdges can reconstruct the graph exactly.
func BreakCycles(g *Graph, cycles []Cycle) {
	memberSet := make(map[string]bool)
	for _, c := range cycles {
		for _, m := range c.Members {
			memberSet[m] = true
		}
	}

	for from, tos := range g.Edges {
		if !memberSet[from] {
			continue
		}
		newTos := make([]string, 0, len(tos))
		for _, to := range tos {
			if memberSet[to] {
				placeholder := PlaceholderName(to, to == from)
				g.brokenEdges[from] = append(g.brokenEdges[from], to)
				newTos = append(newTos, placeholder)
				continue
			}
			newTos = append(newTos, to)
		}
		g.Edges[from] = newTos
	}
}

// RestoreBrokenEdges reverses every BreakCycles substitution, returning the
// graph to its original (possibly cyclic) edge set.
func RestoreBrokenEdges(g *Graph) {
	for from, originals := range g.brokenEdges {
		i := 0
		tos := g.Edges[from]
		for j, to := range tos {
			if len(to) > 0 && to[0] == '[' && i < len(originals) {
				tos[j] = originals[i]
				i++
			}
		}
		g.Edges[from] = tos
	}
	g.brokenEdges = make(map[string][]string)
}
