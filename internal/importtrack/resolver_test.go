package importtrack

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveRelativeImport(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "types.ts"), []byte("export interface User {}"), 0o644))
	from := filepath.Join(dir, "service.ts")

	r := NewResolver(dir)
	resolved, ok := r.Resolve("./types", from)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "types.ts"), resolved)
}

func TestResolveIndexFile(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "utils")
	require.NoError(t, os.Mkdir(sub, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(sub, "index.ts"), []byte("export const x = 1"), 0o644))
	from := filepath.Join(dir, "service.ts")

	r := NewResolver(dir)
	resolved, ok := r.Resolve("./utils", from)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(sub, "index.ts"), resolved)
}

func TestResolveProjectRootRelative(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.ts"), []byte("export const x = 1"), 0o644))
	from := filepath.Join(dir, "nested", "service.ts")

	r := NewResolver(dir)
	resolved, ok := r.Resolve("config", from)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "config.ts"), resolved)
}

func TestResolveReturnsFalseForExternal(t *testing.T) {
	r := NewResolver(t.TempDir())
	assert.True(t, IsExternal("react"))
	_, ok := r.Resolve("react", filepath.Join(t.TempDir(), "a.ts"))
	assert.False(t, ok)
}

func TestResolveReturnsFalseWhenMissing(t *testing.T) {
	dir := t.TempDir()
	from := filepath.Join(dir, "service.ts")
	r := NewResolver(dir)
	_, ok := r.Resolve("./missing", from)
	assert.False(t, ok)
}
