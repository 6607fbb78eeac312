package symbols

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aroton/tsanalysis/internal/importtrack"
	"github.com/aroton/tsanalysis/internal/parser"
	"github.com/aroton/tsanalysis/internal/workspace"
)

func writeTS(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newResolver(dir string) *Resolver {
	p := parser.New()
	tr := importtrack.New(p, dir)
	return New(p, tr)
}

func TestSyntacticPassFindsDeclarations(t *testing.T) {
	dir := t.TempDir()
	file := writeTS(t, dir, "shapes.ts", `
export interface Shape {
	area(): number;
}

export class Circle implements Shape {
	radius: number;

	area(): number {
		return Math.PI * this.radius * this.radius;
	}
}

export function isShape(x: unknown): x is Shape {
	return true;
}
`)
	r := newResolver(dir)
	result, errs := r.Resolve([]string{file}, Options{Pass: PassSyntactic})
	require.Empty(t, errs)

	names := map[string]workspace.SymbolKind{}
	for _, s := range result.Symbols {
		names[s.Name] = s.Kind
	}
	assert.Equal(t, workspace.KindInterface, names["Shape"])
	assert.Equal(t, workspace.KindClass, names["Circle"])
	assert.Equal(t, workspace.KindMethod, names["area"])
	assert.Equal(t, workspace.KindFunction, names["isShape"])
}

func TestSyntacticPassMarksTypeGuard(t *testing.T) {
	dir := t.TempDir()
	file := writeTS(t, dir, "guard.ts", `
export function isString(x: unknown): x is string {
	return typeof x === 'string';
}
`)
	r := newResolver(dir)
	result, _ := r.Resolve([]string{file}, Options{Pass: PassSyntactic})
	require.Len(t, result.Symbols, 1)
	assert.True(t, result.Symbols[0].IsTypeGuard)
}

func TestSemanticPassLinksImportToExport(t *testing.T) {
	dir := t.TempDir()
	writeTS(t, dir, "math.ts", "export function add(a: number, b: number) { return a + b; }")
	service := writeTS(t, dir, "service.ts", "import { add } from './math';\nadd(1, 2);")

	r := newResolver(dir)
	result, errs := r.Resolve([]string{service, filepath.Join(dir, "math.ts")}, Options{Pass: PassSemantic})
	require.Empty(t, errs)

	var found bool
	for _, ref := range result.References {
		if ref.Kind == workspace.RefUsage && ref.SymbolName == "add" && ref.ImportPath == filepath.Join(dir, "math.ts") {
			found = true
		}
	}
	assert.True(t, found)
}

func TestDynamicPassLinksOverrideToParent(t *testing.T) {
	dir := t.TempDir()
	file := writeTS(t, dir, "animals.ts", `
class Animal {
	speak() {
		return 'noise';
	}
}

class Dog extends Animal {
	speak() {
		return 'woof';
	}
}
`)
	r := newResolver(dir)
	result, errs := r.Resolve([]string{file}, Options{Pass: PassDynamic})
	require.Empty(t, errs)

	var found bool
	for _, ref := range result.References {
		if ref.Kind == workspace.RefUsage && ref.MethodName == "speak" && ref.ClassName == "Animal" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestFilterByTargetClassMethod(t *testing.T) {
	dir := t.TempDir()
	file := writeTS(t, dir, "widgets.ts", `
class Widget {
	render() { return 1; }
}
class Gadget {
	render() { return 2; }
}
`)
	r := newResolver(dir)
	result, _ := r.Resolve([]string{file}, Options{
		Pass:    PassSyntactic,
		Filters: Filters{TargetSymbol: "Widget#render"},
	})
	require.Len(t, result.Symbols, 1)
	assert.Equal(t, "Widget", result.Symbols[0].EnclosingClass)
}

func TestResolveExcludesTestFilesByDefault(t *testing.T) {
	dir := t.TempDir()
	file := writeTS(t, dir, "widget.test.ts", "export function helper() { return 1; }")
	r := newResolver(dir)
	result, _ := r.Resolve([]string{file}, Options{Pass: PassSyntactic})
	assert.Empty(t, result.Symbols)
}

func TestAnalyzeConfidenceBoostsExportedSymbol(t *testing.T) {
	dir := t.TempDir()
	file := writeTS(t, dir, "a.ts", "export function run() { return 1; }")
	r := newResolver(dir)
	result, _ := r.Resolve([]string{file}, Options{Pass: PassSyntactic, AnalyzeConfidence: true})
	require.Len(t, result.Symbols, 1)
	assert.InDelta(t, 1.0, result.Symbols[0].Confidence, 0.0001)
}

func TestResolvePaginatesReferences(t *testing.T) {
	dir := t.TempDir()
	var src string
	for i := 0; i < 5; i++ {
		src += "function fn" + string(rune('a'+i)) + "() { return 1; }\n"
	}
	for i := 0; i < 5; i++ {
		src += "fn" + string(rune('a'+i)) + "();\n"
	}
	file := writeTS(t, dir, "many.ts", src)
	r := newResolver(dir)

	// find_references only ever exposes References to a tool caller
	// (Symbols is reported as a count), so pagination bounds References, not
	// Symbols — Symbols comes back in full on every page.
	first, _ := r.Resolve([]string{file}, Options{Pass: PassSyntactic, PageSize: 2})
	require.Len(t, first.References, 2)
	require.Len(t, first.Symbols, 5)
	require.True(t, first.HasMore)
	require.NotEmpty(t, first.NextCursor)

	second, _ := r.Resolve([]string{file}, Options{Pass: PassSyntactic, PageSize: 2, Cursor: first.NextCursor})
	require.Len(t, second.References, 2)
}

func TestResolveResultIsCached(t *testing.T) {
	dir := t.TempDir()
	file := writeTS(t, dir, "cached.ts", "export function run() { return 1; }")
	r := newResolver(dir)

	first, _ := r.Resolve([]string{file}, Options{Pass: PassSyntactic})
	second, _ := r.Resolve([]string{file}, Options{Pass: PassSyntactic})
	assert.Equal(t, first, second)
}

func TestFileSymbolsReturnsPerFileCache(t *testing.T) {
	dir := t.TempDir()
	file := writeTS(t, dir, "x.ts", "export class X {}")
	r := newResolver(dir)
	r.Resolve([]string{file}, Options{Pass: PassSyntactic})

	syms := r.FileSymbols(file)
	require.Len(t, syms, 1)
	assert.Equal(t, "X", syms[0].Name)
}
