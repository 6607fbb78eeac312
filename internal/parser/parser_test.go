package parser

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, dir, name, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestParseTSFile(t *testing.T) {
	dir := t.TempDir()
	path := writeTemp(t, dir, "a.ts", "export function add(a: number, b: number): number { return a + b }")

	p := New()
	res := p.Parse(path)
	require.True(t, res.Success)
	assert.Empty(t, res.Errors)
	assert.NotNil(t, res.Tree)
	assert.NotEmpty(t, res.Fingerprint)
}

func TestParseTSXFile(t *testing.T) {
	dir := t.TempDir()
	path := writeTemp(t, dir, "a.tsx", "export const X = () => <div>hi</div>")

	p := New()
	res := p.Parse(path)
	require.True(t, res.Success)
	assert.NotNil(t, res.Tree)
}

func TestParseCachesOnSecondCall(t *testing.T) {
	dir := t.TempDir()
	path := writeTemp(t, dir, "a.ts", "const x: number = 1")

	p := New()
	first := p.Parse(path)
	require.True(t, first.Success)
	assert.Equal(t, int64(0), p.GetStats().Hits)

	second := p.Parse(path)
	require.True(t, second.Success)
	assert.Equal(t, int64(1), p.GetStats().Hits)
	assert.Equal(t, first.Fingerprint, second.Fingerprint)
}

func TestParseInvalidatesOnMtimeChange(t *testing.T) {
	dir := t.TempDir()
	path := writeTemp(t, dir, "a.ts", "const x = 1")

	p := New()
	first := p.Parse(path)
	require.True(t, first.Success)

	// Force a distinguishable mtime before rewriting content.
	future := time.Now().Add(2 * time.Second)
	require.NoError(t, os.Chtimes(path, future, future))
	require.NoError(t, os.WriteFile(path, []byte("const x = 2"), 0o644))
	require.NoError(t, os.Chtimes(path, future, future))

	second := p.Parse(path)
	require.True(t, second.Success)
	assert.NotEqual(t, first.Fingerprint, second.Fingerprint)
}

func TestParseRejectsExcludedPath(t *testing.T) {
	dir := t.TempDir()
	nm := filepath.Join(dir, "node_modules")
	require.NoError(t, os.Mkdir(nm, 0o755))
	path := writeTemp(t, nm, "a.ts", "const x = 1")

	p := New()
	res := p.Parse(path)
	require.False(t, res.Success)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, ErrExcludedPath, res.Errors[0].Code)
}

func TestParseRejectsOversizedFile(t *testing.T) {
	dir := t.TempDir()
	path := writeTemp(t, dir, "a.ts", "const x = 1")

	p := New(WithMaxFileBytes(4))
	res := p.Parse(path)
	require.False(t, res.Success)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, ErrFileTooLarge, res.Errors[0].Code)
}

func TestParseReportsNotFound(t *testing.T) {
	p := New()
	res := p.Parse(filepath.Join(t.TempDir(), "missing.ts"))
	require.False(t, res.Success)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, ErrNotFound, res.Errors[0].Code)
}

func TestParseRejectsUnrecognizedExtension(t *testing.T) {
	dir := t.TempDir()
	path := writeTemp(t, dir, "a.txt", "hello")

	p := New()
	res := p.Parse(path)
	require.False(t, res.Success)
	assert.Equal(t, ErrParseError, res.Errors[0].Code)
}

func TestInvalidateForcesReparse(t *testing.T) {
	dir := t.TempDir()
	path := writeTemp(t, dir, "a.ts", "const x = 1")

	p := New()
	require.True(t, p.Parse(path).Success)
	assert.NotNil(t, p.GetCachedTree(path))

	p.Invalidate(path)
	require.True(t, p.Parse(path).Success)
	assert.Equal(t, int64(0), p.GetStats().Hits)
}

func TestCompressThenResidentRoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := writeTemp(t, dir, "a.ts", "export interface Foo { bar: string }")

	p := New(WithCompression(true))
	require.True(t, p.Parse(path).Success)
	require.True(t, p.Compress(path))

	tree := p.GetCachedTree(path)
	require.NotNil(t, tree)
	assert.Equal(t, "program", tree.RootNode().Type())
}

type fakeMemoryManager struct {
	pressure  func()
	emergency func()
}

func (f *fakeMemoryManager) RegisterPressureCallback(cb func())  { f.pressure = cb }
func (f *fakeMemoryManager) RegisterEmergencyCallback(cb func()) { f.emergency = cb }

func TestAttachMemoryManagerEvictsOnPressure(t *testing.T) {
	dir := t.TempDir()
	p := New()
	for i := 0; i < 10; i++ {
		path := writeTemp(t, dir, filepathName(i), "const x = 1")
		require.True(t, p.Parse(path).Success)
	}

	mm := &fakeMemoryManager{}
	p.AttachMemoryManager(mm)
	require.NotNil(t, mm.pressure)
	require.NotNil(t, mm.emergency)

	before := p.cache.Len()
	mm.pressure()
	assert.Less(t, p.cache.Len(), before)

	mm.emergency()
	assert.LessOrEqual(t, p.cache.Len(), 1)
}

func filepathName(i int) string {
	return "f" + string(rune('a'+i)) + ".ts"
}
