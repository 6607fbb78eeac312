package mcpserver

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aroton/tsanalysis/internal/engine"
	"github.com/aroton/tsanalysis/internal/logging"
)

func TestNewRegistersServerWithoutPanicking(t *testing.T) {
	dir := t.TempDir()
	eng := engine.New(dir)
	log := logging.New(os.Stdout)

	s := New(eng, log)
	assert.NotNil(t, s.mcp)
}

func TestResolveFilesWalksProjectWhenNoneRequested(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "node_modules", "dep"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "node_modules", "dep", "skip.ts"), []byte("export {}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.ts"), []byte("export const x = 1;"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "view.tsx"), []byte("export const y = 1;"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("ignored"), 0o644))

	eng := engine.New(dir)
	files := resolveFiles(eng, nil)

	assert.Len(t, files, 2)
	for _, f := range files {
		assert.NotContains(t, f, "node_modules")
	}
}

func TestResolveFilesReturnsRequestedWhenProvided(t *testing.T) {
	dir := t.TempDir()
	eng := engine.New(dir)
	files := resolveFiles(eng, []string{"one.ts", "two.ts"})
	assert.Equal(t, []string{"one.ts", "two.ts"}, files)
}
