package importtrack

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aroton/tsanalysis/internal/parser"
	"github.com/aroton/tsanalysis/internal/workspace"
)

func writeTS(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFileImportsExtractsNamedAndDefault(t *testing.T) {
	dir := t.TempDir()
	writeTS(t, dir, "types.ts", "export interface User {}")
	writeTS(t, dir, "react.ts", "export default function React() {}")
	service := writeTS(t, dir, "service.ts", `import { User } from './types';
import React from './react';
import './side-effect';
`)
	writeTS(t, dir, "side-effect.ts", "console.log('hi')")

	p := parser.New()
	tr := New(p, dir)

	imports, errs := tr.FileImports(service)
	require.Empty(t, errs)
	require.Len(t, imports, 3)

	assert.Equal(t, workspace.ImportNamed, imports[0].Form)
	assert.Equal(t, filepath.Join(dir, "types.ts"), imports[0].Specifier)
	assert.Equal(t, "User", imports[0].NamedImports[0].Name)

	assert.Equal(t, workspace.ImportDefault, imports[1].Form)
	assert.Equal(t, "React", imports[1].DefaultBinding)

	assert.Equal(t, workspace.ImportSideEffect, imports[2].Form)
}

func TestFileImportsCaches(t *testing.T) {
	dir := t.TempDir()
	writeTS(t, dir, "types.ts", "export interface User {}")
	service := writeTS(t, dir, "service.ts", "import { User } from './types';")

	p := parser.New()
	tr := New(p, dir)

	first, _ := tr.FileImports(service)
	stats1 := tr.CacheStats()
	second, _ := tr.FileImports(service)
	stats2 := tr.CacheStats()

	assert.Equal(t, first, second)
	assert.Equal(t, stats1.FilesProcessed, stats2.FilesProcessed)
}

func TestFileExportsExtractsNamedAndDefault(t *testing.T) {
	dir := t.TempDir()
	file := writeTS(t, dir, "a.ts", `export interface User {}
export default User;
`)
	p := parser.New()
	tr := New(p, dir)

	exports, errs := tr.FileExports(file)
	require.Empty(t, errs)
	require.Len(t, exports, 2)
	assert.Equal(t, workspace.ExportNamed, exports[0].Form)
	assert.Equal(t, workspace.ExportDefault, exports[1].Form)
}

func TestBuildDependencyGraphDetectsCycle(t *testing.T) {
	dir := t.TempDir()
	a := writeTS(t, dir, "a.ts", "import { b } from './b';")
	b := writeTS(t, dir, "b.ts", "import { a } from './a';")

	p := parser.New()
	tr := New(p, dir)

	g := workspace.NewDependencyGraph()
	errs := tr.BuildDependencyGraph(g, []string{a, b}, false)
	require.Empty(t, errs)

	cycles := DetectCycles(g)
	require.Len(t, cycles, 1)
	assert.Equal(t, 2, cycles[0].Length)
	assert.Equal(t, "warning", cycles[0].Severity)
}

func TestInvalidateClearsCache(t *testing.T) {
	dir := t.TempDir()
	service := writeTS(t, dir, "service.ts", "import './x';")
	writeTS(t, dir, "x.ts", "console.log(1)")

	p := parser.New()
	tr := New(p, dir)
	tr.FileImports(service)
	tr.Invalidate(service)

	stats := tr.CacheStats()
	assert.Equal(t, 0, stats.ImportEntries)
}
