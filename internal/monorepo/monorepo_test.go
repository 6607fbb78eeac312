package monorepo

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func setupWorkspace(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	writeFile(t, filepath.Join(root, "packages/foo/tsconfig.json"), `{"include": ["src/**/*"]}`)
	writeFile(t, filepath.Join(root, "packages/foo/package.json"), `{"name": "foo"}`)
	writeFile(t, filepath.Join(root, "packages/foo/src/index.ts"), `
export class Widget {
	render(): string {
		return "widget";
	}
}
`)

	writeFile(t, filepath.Join(root, "packages/bar/tsconfig.json"), `{
		"references": [{"path": "../foo"}],
		"include": ["src/**/*"]
	}`)
	writeFile(t, filepath.Join(root, "packages/bar/package.json"), `{
		"name": "bar",
		"dependencies": {"foo": "workspace:*"}
	}`)
	writeFile(t, filepath.Join(root, "packages/bar/src/index.ts"), `
import { Widget } from "foo";

const w = new Widget();
`)

	return root
}

func TestDiscoverProjectsFindsBothPackages(t *testing.T) {
	root := setupWorkspace(t)
	projects, err := DiscoverProjects(root)
	require.NoError(t, err)
	require.Len(t, projects, 2)

	byName := map[string]*WorkspaceProject{}
	for _, p := range projects {
		byName[p.Name] = p
	}
	require.Contains(t, byName, "foo")
	require.Contains(t, byName, "bar")
	assert.Contains(t, byName["bar"].WorkspaceDependencies, "foo")
	assert.Len(t, byName["foo"].SourceFiles, 1)
}

func TestDiscoverProjectsNamesFromSiblingGoModWhenNoPackageJSON(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "services/api/tsconfig.json"), `{"include": ["src/**/*"]}`)
	writeFile(t, filepath.Join(root, "services/api/go.mod"), "module github.com/example/api\n\ngo 1.23\n")
	writeFile(t, filepath.Join(root, "services/api/src/index.ts"), `export const x = 1;`)

	projects, err := DiscoverProjects(root)
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, "github.com/example/api", projects[0].Name)
	assert.Empty(t, projects[0].PackageJSONPath)
}

func TestProjectDependencyGraphBuildOrder(t *testing.T) {
	root := setupWorkspace(t)
	projects, err := DiscoverProjects(root)
	require.NoError(t, err)

	g := NewProjectDependencyGraph(projects)
	order := g.BuildOrder()
	require.Len(t, order, 2)

	fooIdx, barIdx := -1, -1
	for i, name := range order {
		switch name {
		case "foo":
			fooIdx = i
		case "bar":
			barIdx = i
		}
	}
	require.NotEqual(t, -1, fooIdx)
	require.NotEqual(t, -1, barIdx)
	assert.Less(t, fooIdx, barIdx)

	assert.False(t, g.HasCircularDependencies())
	assert.Equal(t, []string{"foo"}, g.GetDependencies("bar"))
	assert.Equal(t, []string{"bar"}, g.GetDependents("foo"))
}

func TestProjectDependencyGraphDetectsCycle(t *testing.T) {
	a := &WorkspaceProject{Name: "a", Root: "/ws/a", WorkspaceDependencies: []string{"b"}}
	b := &WorkspaceProject{Name: "b", Root: "/ws/b", WorkspaceDependencies: []string{"a"}}

	g := NewProjectDependencyGraph([]*WorkspaceProject{a, b})
	assert.True(t, g.HasCircularDependencies())
	cycles := g.CircularDependencies()
	require.Len(t, cycles, 1)
	assert.ElementsMatch(t, []string{"a", "b"}, cycles[0])

	// Build order degrades to the node list instead of failing outright.
	order := g.BuildOrder()
	assert.Len(t, order, 2)
}

func TestWorkspaceContextFindReferencesSearchesDependencyFirst(t *testing.T) {
	root := setupWorkspace(t)
	ctx, err := NewWorkspaceContext(root)
	require.NoError(t, err)

	refs := ctx.FindReferences("Widget", "bar")
	require.NotEmpty(t, refs)

	var sawFoo, sawBar bool
	for _, r := range refs {
		if filepath.Base(filepath.Dir(r.File)) == "src" {
			grand := filepath.Base(filepath.Dir(filepath.Dir(r.File)))
			if grand == "foo" {
				sawFoo = true
			}
			if grand == "bar" {
				sawBar = true
			}
		}
	}
	assert.True(t, sawFoo, "expected a reference from foo (bar's workspace dependency)")
	assert.True(t, sawBar, "expected a reference from bar itself")
}

func TestWorkspaceContextUnknownProjectReturnsNil(t *testing.T) {
	root := setupWorkspace(t)
	ctx, err := NewWorkspaceContext(root)
	require.NoError(t, err)

	refs := ctx.FindReferences("Widget", "missing-project")
	assert.Empty(t, refs)
}
