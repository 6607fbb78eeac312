package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestResolveConfigDefaultsToCurrentProjectRoot(t *testing.T) {
	dir := t.TempDir()
	flagOverrides.ProjectRoot = dir
	defer func() { flagOverrides.ProjectRoot, _ = os.Getwd() }()

	cfg, err := resolveConfig()
	if err != nil {
		t.Fatalf("resolveConfig: %v", err)
	}
	if cfg.ProjectRoot != dir {
		t.Errorf("expected project root %q, got %q", dir, cfg.ProjectRoot)
	}
}

func TestResolveConfigHonorsChangedFlag(t *testing.T) {
	dir := t.TempDir()
	if err := rootCmd.PersistentFlags().Set("max-file-bytes", "4096"); err != nil {
		t.Fatal(err)
	}
	defer rootCmd.PersistentFlags().Set("max-file-bytes", "0")

	flagOverrides.ProjectRoot = dir
	defer func() { flagOverrides.ProjectRoot, _ = os.Getwd() }()

	cfg, err := resolveConfig()
	if err != nil {
		t.Fatalf("resolveConfig: %v", err)
	}
	if cfg.MaxFileBytes != 4096 {
		t.Errorf("expected max_file_bytes override to apply, got %d", cfg.MaxFileBytes)
	}
}

func TestResolveConfigReadsProjectYAML(t *testing.T) {
	dir := t.TempDir()
	content := "incremental_strategy: content_hash\n"
	if err := os.WriteFile(filepath.Join(dir, "tsanalysis.yaml"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	flagOverrides.ProjectRoot = dir
	defer func() { flagOverrides.ProjectRoot, _ = os.Getwd() }()

	cfg, err := resolveConfig()
	if err != nil {
		t.Fatalf("resolveConfig: %v", err)
	}
	if cfg.IncrementalStrategy != "content_hash" {
		t.Errorf("expected incremental_strategy from tsanalysis.yaml, got %q", cfg.IncrementalStrategy)
	}
}
