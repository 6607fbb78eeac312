package monorepo

import (
	"sort"

	"github.com/aroton/tsanalysis/internal/importtrack"
	"github.com/aroton/tsanalysis/internal/parser"
	"github.com/aroton/tsanalysis/internal/symbols"
	"github.com/aroton/tsanalysis/internal/workspace"
)

// projectResolver is one project's analysis substrate: a parser, import
// tracker, and symbol resolver scoped to that project's files only.
type projectResolver struct {
	project  *WorkspaceProject
	resolver *symbols.Resolver
}

// WorkspaceContext composes one symbol resolver per discovered project and
// answers cross-project queries: FindReferences/FindTypeReferences resolve
// a project's workspace_dependencies first, its own files second, matching
// the Python's search order.
type WorkspaceContext struct {
	Root     string
	Graph    *ProjectDependencyGraph
	projects map[string]*projectResolver
}

// NewWorkspaceContext discovers every project under root, builds the
// dependency graph between them, and constructs one isolated resolver per
// project.
func NewWorkspaceContext(root string) (*WorkspaceContext, error) {
	projects, err := DiscoverProjects(root)
	if err != nil {
		return nil, err
	}

	ctx := &WorkspaceContext{
		Root:     root,
		Graph:    NewProjectDependencyGraph(projects),
		projects: make(map[string]*projectResolver, len(projects)),
	}
	for _, p := range projects {
		parserInst := parser.New()
		tracker := importtrack.New(parserInst, p.Root)
		ctx.projects[p.Name] = &projectResolver{
			project:  p,
			resolver: symbols.New(parserInst, tracker),
		}
	}
	return ctx, nil
}

// searchOrder returns the project names FindReferences should search for a
// query scoped to project: project's workspace dependencies first, then
// project itself. An empty project name searches every discovered project.
func (c *WorkspaceContext) searchOrder(project string) []string {
	if project == "" {
		names := make([]string, 0, len(c.projects))
		for name := range c.projects {
			names = append(names, name)
		}
		sort.Strings(names)
		return names
	}

	pr, ok := c.projects[project]
	if !ok {
		return nil
	}
	order := append([]string(nil), pr.project.WorkspaceDependencies...)
	order = append(order, project)
	return order
}

// FindReferences resolves symbol across project's workspace dependencies
// and the project itself (or every project, if project is ""), returning
// the combined, file-order-stable reference list.
func (c *WorkspaceContext) FindReferences(symbol, project string) []*workspace.Reference {
	var out []*workspace.Reference
	for _, name := range c.searchOrder(project) {
		pr, ok := c.projects[name]
		if !ok {
			continue
		}
		result, _ := pr.resolver.Resolve(pr.project.SourceFiles, symbols.Options{
			Pass:    symbols.PassSemantic,
			Filters: symbols.Filters{TargetSymbol: symbol, IncludeTestFiles: true},
		})
		out = append(out, result.References...)
	}
	return out
}

// FindTypeReferences resolves typeName across every discovered project,
// matching the Python's find_type_references (no project scoping).
func (c *WorkspaceContext) FindTypeReferences(typeName string) []*workspace.Reference {
	return c.FindReferences(typeName, "")
}

// Project returns the discovered project by name.
func (c *WorkspaceContext) Project(name string) (*WorkspaceProject, bool) {
	pr, ok := c.projects[name]
	if !ok {
		return nil, false
	}
	return pr.project, true
}
