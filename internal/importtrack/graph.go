package importtrack

import (
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/aroton/tsanalysis/internal/workspace"
)

// Cycle is one strongly connected component of size >= 2 in the module
// dependency graph, mirroring CircularDependency's cycle_path/cycle_length,
// with severity following the same warning/error split by cycle length.
type Cycle struct {
	Files    []string
	Length   int
	Severity string
}

// DetectCycles runs Tarjan's SCC algorithm (via gonum/graph/topo) over g and
// reports every component with more than one member as a circular
// dependency; a file importing itself is not reported.
func DetectCycles(g *workspace.DependencyGraph) []Cycle {
	nodes := g.Nodes()
	dg := simple.NewDirectedGraph()
	for i := range nodes {
		dg.AddNode(simple.Node(i))
	}
	for i, id := range nodes {
		for _, edge := range g.Out(id) {
			if edge.To == i {
				continue
			}
			if dg.HasEdgeFromTo(int64(i), int64(edge.To)) {
				continue
			}
			dg.SetEdge(dg.NewEdge(simple.Node(i), simple.Node(edge.To)))
		}
	}

	var cycles []Cycle
	for _, component := range topo.TarjanSCC(dg) {
		if len(component) < 2 {
			continue
		}
		files := make([]string, 0, len(component))
		for _, n := range component {
			files = append(files, nodes[n.ID()])
		}
		severity := "error"
		if len(component) == 2 {
			severity = "warning"
		}
		cycles = append(cycles, Cycle{Files: files, Length: len(component), Severity: severity})
	}
	return cycles
}

// BuildGraph adds every resolved import edge from files into g. Imports that
// cannot be resolved to a project file become "external:<specifier>"
// pseudo-nodes unless includeExternal is false, in which case they're
// skipped entirely.
func BuildGraph(g *workspace.DependencyGraph, file string, imports []workspace.Import, resolver *Resolver, includeExternal bool) {
	for _, imp := range imports {
		resolved, ok := resolver.Resolve(imp.Specifier, file)
		if !ok {
			if includeExternal {
				g.AddEdge(file, workspace.ExternalModulePrefix+imp.Specifier, imp.Form, imp.Line)
			}
			continue
		}
		g.AddEdge(file, resolved, imp.Form, imp.Line)
	}
}
