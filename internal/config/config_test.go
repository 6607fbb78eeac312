package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aroton/tsanalysis/internal/incremental"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, incremental.StrategyHybrid, cfg.Strategy())
}

func TestLoadReadsYAMLFile(t *testing.T) {
	dir := t.TempDir()
	content := `
max_file_bytes: 2097152
hot_cache_bytes: 1048576
incremental_strategy: content_hash
memory_max_mb: 600
memory_gc_mb: 500
memory_emergency_mb: 550
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tsanalysis.yaml"), []byte(content), 0o644))

	cfg, err := Load(dir, "")
	require.NoError(t, err)
	assert.EqualValues(t, 2097152, cfg.MaxFileBytes)
	assert.EqualValues(t, 1048576, cfg.HotCacheBytes)
	assert.Equal(t, incremental.StrategyContentHash, cfg.Strategy())
	assert.Equal(t, 600.0, cfg.MemoryMaxMB)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir, "")
	require.NoError(t, err)
	assert.Equal(t, dir, cfg.ProjectRoot)
	assert.Equal(t, "hybrid", cfg.IncrementalStrategy)
}

func TestLoadOverlaysMCPFileRoot(t *testing.T) {
	dir := t.TempDir()
	overrideRoot := t.TempDir()
	t.Setenv("MCP_FILE_ROOT", overrideRoot)

	cfg, err := Load(dir, "")
	require.NoError(t, err)
	assert.Equal(t, overrideRoot, cfg.ProjectRoot)
}

func TestValidateRejectsInvertedThresholds(t *testing.T) {
	cfg := Default()
	cfg.MemoryGCMB = cfg.MemoryMaxMB + 1
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsUnknownStrategy(t *testing.T) {
	cfg := Default()
	cfg.IncrementalStrategy = "nonsense"
	assert.Error(t, cfg.Validate())
}

func TestBindFlagsOverridesProjectRoot(t *testing.T) {
	cfg := Default()
	cmd := &cobra.Command{Use: "test"}
	BindFlags(cmd, cfg)

	require.NoError(t, cmd.PersistentFlags().Set("project-root", "/tmp/example"))
	assert.Equal(t, "/tmp/example", cfg.ProjectRoot)
}

func TestEngineOptionsProducesNonEmptyList(t *testing.T) {
	cfg := Default()
	cfg.MaxFileBytes = 1024
	opts := cfg.EngineOptions()
	assert.Len(t, opts, 4)
}
