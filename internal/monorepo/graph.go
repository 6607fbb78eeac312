package monorepo

import (
	"path/filepath"
	"sort"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// ProjectDependencyGraph is the dependency graph between workspace projects:
// an edge from A to B means B depends on A (A must build first), mirroring
// the Python's nx.DiGraph edge direction (dependency -> dependent).
type ProjectDependencyGraph struct {
	Projects map[string]*WorkspaceProject

	index map[string]int
	names []string
	out   map[int][]int // dependency index -> dependent indices
	in    map[int][]int // dependent index -> dependency indices
}

// NewProjectDependencyGraph builds the graph from projects, adding an edge
// for every project reference and every workspace dependency.
func NewProjectDependencyGraph(projects []*WorkspaceProject) *ProjectDependencyGraph {
	g := &ProjectDependencyGraph{
		Projects: make(map[string]*WorkspaceProject, len(projects)),
		index:    make(map[string]int),
		out:      make(map[int][]int),
		in:       make(map[int][]int),
	}
	for _, p := range projects {
		g.Projects[p.Name] = p
		g.nodeIndex(p.Name)
	}

	byRoot := make(map[string]string, len(projects))
	for _, p := range projects {
		byRoot[filepath.Clean(p.Root)] = p.Name
	}

	for _, p := range projects {
		for _, ref := range p.References {
			if depName, ok := resolveProjectReference(ref, p.Root, byRoot); ok {
				g.addEdge(depName, p.Name)
			}
		}
		for _, depName := range p.WorkspaceDependencies {
			if _, ok := g.Projects[depName]; ok {
				g.addEdge(depName, p.Name)
			}
		}
	}
	return g
}

func (g *ProjectDependencyGraph) nodeIndex(name string) int {
	if idx, ok := g.index[name]; ok {
		return idx
	}
	idx := len(g.names)
	g.names = append(g.names, name)
	g.index[name] = idx
	return idx
}

func (g *ProjectDependencyGraph) addEdge(from, to string) {
	fromIdx := g.nodeIndex(from)
	toIdx := g.nodeIndex(to)
	g.out[fromIdx] = appendUnique(g.out[fromIdx], toIdx)
	g.in[toIdx] = appendUnique(g.in[toIdx], fromIdx)
}

func appendUnique(s []int, v int) []int {
	for _, x := range s {
		if x == v {
			return s
		}
	}
	return append(s, v)
}

// GetDependencies returns the direct dependencies of project (the projects
// it depends on), matching the Python's get_dependencies/predecessors.
func (g *ProjectDependencyGraph) GetDependencies(project string) []string {
	idx, ok := g.index[project]
	if !ok {
		return nil
	}
	return g.namesOf(g.in[idx])
}

// GetDependents returns the direct dependents of project (the projects that
// depend on it), matching the Python's get_dependents/successors.
func (g *ProjectDependencyGraph) GetDependents(project string) []string {
	idx, ok := g.index[project]
	if !ok {
		return nil
	}
	return g.namesOf(g.out[idx])
}

func (g *ProjectDependencyGraph) namesOf(idxs []int) []string {
	names := make([]string, 0, len(idxs))
	for _, idx := range idxs {
		names = append(names, g.names[idx])
	}
	sort.Strings(names)
	return names
}

// BuildOrder returns a topological build order (dependencies before
// dependents). If the graph has a cycle, topological sort is impossible, so
// BuildOrder degrades to the node list in insertion order, matching the
// Python's NetworkXError fallback to list(self.graph.nodes()).
func (g *ProjectDependencyGraph) BuildOrder() []string {
	dg, toName := g.directedGraph()
	order, err := topo.Sort(dg)
	if err != nil {
		return append([]string(nil), g.names...)
	}
	out := make([]string, len(order))
	for i, n := range order {
		out[i] = toName[n.ID()]
	}
	return out
}

// HasCircularDependencies reports whether any project participates in a
// dependency cycle.
func (g *ProjectDependencyGraph) HasCircularDependencies() bool {
	return len(g.CircularDependencies()) > 0
}

// CircularDependencies returns every dependency cycle (as project-name
// lists) via Tarjan's SCC, matching the Python's nx.simple_cycles fallback
// shape (each cycle reported once, as its member list).
func (g *ProjectDependencyGraph) CircularDependencies() [][]string {
	dg, toName := g.directedGraph()
	var cycles [][]string
	for _, component := range topo.TarjanSCC(dg) {
		if len(component) < 2 {
			continue
		}
		names := make([]string, 0, len(component))
		for _, n := range component {
			names = append(names, toName[n.ID()])
		}
		sort.Strings(names)
		cycles = append(cycles, names)
	}
	return cycles
}

func (g *ProjectDependencyGraph) directedGraph() (*simple.DirectedGraph, map[int64]string) {
	dg := simple.NewDirectedGraph()
	toName := make(map[int64]string, len(g.names))
	for i, name := range g.names {
		dg.AddNode(simple.Node(i))
		toName[int64(i)] = name
	}
	for from, tos := range g.out {
		for _, to := range tos {
			if from == to {
				continue
			}
			if dg.HasEdgeFromTo(int64(from), int64(to)) {
				continue
			}
			dg.SetEdge(dg.NewEdge(simple.Node(from), simple.Node(to)))
		}
	}
	return dg, toName
}

func resolveProjectReference(ref, projectRoot string, byRoot map[string]string) (string, bool) {
	abs := ref
	if !filepath.IsAbs(ref) {
		abs = filepath.Join(projectRoot, ref)
	}
	abs = filepath.Clean(abs)
	if name, ok := byRoot[abs]; ok {
		return name, true
	}
	return "", false
}
