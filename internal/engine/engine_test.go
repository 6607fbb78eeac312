package engine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aroton/tsanalysis/internal/functions"
	"github.com/aroton/tsanalysis/internal/symbols"
	"github.com/aroton/tsanalysis/internal/types"
)

func writeTS(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestNewWiresComponents(t *testing.T) {
	dir := t.TempDir()
	e := New(dir)

	assert.NotNil(t, e.Parser)
	assert.NotNil(t, e.Cache)
	assert.NotNil(t, e.Memory)
	assert.NotNil(t, e.Imports)
	assert.NotNil(t, e.Symbols)
	assert.Same(t, e.Symbols.Inheritance, e.Inheritance)
	assert.NotNil(t, e.Types)
	assert.NotNil(t, e.Incremental)
}

func TestMemoryPressureHandlingDoesNotPanic(t *testing.T) {
	dir := t.TempDir()
	e := New(dir)

	e.Cache.Set(nil, "k1", "v1")
	e.Memory.HandlePressure()
	// HandlePressure with a "normal" reading runs no callbacks; this test
	// only confirms the wiring doesn't panic when invoked directly.
	_, _, _ = e.Cache.Get(nil, "k1")
}

func TestFindReferencesResolvesSymbol(t *testing.T) {
	dir := t.TempDir()
	file := writeTS(t, dir, "shapes.ts", `
export class Circle {
	radius: number;
	area(): number {
		return this.radius * this.radius;
	}
}

const c = new Circle();
`)

	e := New(dir)
	result, errs := e.FindReferences([]string{file}, symbols.Options{
		Pass:    symbols.PassSemantic,
		Filters: symbols.Filters{TargetSymbol: "Circle"},
	})
	assert.Empty(t, errs)
	assert.NotEmpty(t, result.Symbols)
}

func TestGetFunctionDetailsLocatesFunction(t *testing.T) {
	dir := t.TempDir()
	file := writeTS(t, dir, "math.ts", `
export function square(x: number): number {
	return x * x;
}
`)

	e := New(dir)
	res, errs := e.GetFunctionDetails(file, "square", functions.Options{}, types.TierBasic)
	require.Empty(t, errs)
	require.True(t, res.Found)
	assert.Equal(t, "square", res.Detail.Name)
	assert.Equal(t, file, res.Detail.File)
}

func TestGetFunctionDetailsMissingFunctionReturnsNotFound(t *testing.T) {
	dir := t.TempDir()
	file := writeTS(t, dir, "math.ts", `export function square(x: number): number { return x * x; }`)

	e := New(dir)
	res, errs := e.GetFunctionDetails(file, "missing", functions.Options{}, "")
	assert.Empty(t, errs)
	assert.False(t, res.Found)
}

func TestAnalyzeCallGraphBuildsFromEntryPoint(t *testing.T) {
	dir := t.TempDir()
	file := writeTS(t, dir, "app.ts", `
function main() {
	helper();
}

function helper() {
	return 1;
}
`)

	e := New(dir)
	res, errs := e.AnalyzeCallGraph([]string{file}, "main", CallGraphOptions{MaxDepth: 5, IncludeExecutionPaths: true})
	require.Empty(t, errs)
	assert.Equal(t, 2, res.Stats.TotalFunctions)
	assert.NotEmpty(t, res.ExecutionPaths)
}

func TestAnalyzeCallGraphUnknownEntryPointReturnsError(t *testing.T) {
	dir := t.TempDir()
	file := writeTS(t, dir, "app.ts", `function main() {}`)

	e := New(dir)
	_, errs := e.AnalyzeCallGraph([]string{file}, "doesNotExist", CallGraphOptions{})
	require.Len(t, errs, 1)
	assert.Equal(t, ErrInvalidEntryPoint, errs[0].Code)
}
