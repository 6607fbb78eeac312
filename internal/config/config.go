// Package config loads tsanalysis.yaml project configuration, overlays the
// MCP_FILE_ROOT environment variable and CLI flags on top of it, and
// translates the result into the engine.Option set that constructs an
// engine.Engine. Grounded on the teacher's internal/config/config.go
// (.arsrc.yml load-or-default, strict yaml.Unmarshal, Validate) and
// cmd/root.go + cmd/scan.go's cobra flag style, generalized from a
// single-command CLI to tsanalysis's serve/scan subcommands.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/aroton/tsanalysis/internal/cachemgr"
	"github.com/aroton/tsanalysis/internal/engine"
	"github.com/aroton/tsanalysis/internal/incremental"
	"github.com/aroton/tsanalysis/internal/memmgr"
	"github.com/aroton/tsanalysis/internal/parser"
)

// Config is tsanalysis's full runtime configuration: the union of
// tsanalysis.yaml, MCP_FILE_ROOT, and CLI flag overrides.
type Config struct {
	ProjectRoot string `yaml:"project_root"`

	MaxFileBytes  int64 `yaml:"max_file_bytes"`
	MaxCacheBytes int64 `yaml:"max_cache_bytes"`

	HotCacheBytes  int64  `yaml:"hot_cache_bytes"`
	WarmCacheBytes int64  `yaml:"warm_cache_bytes"`
	ColdCacheDir   string `yaml:"cold_cache_dir"`
	CompressCold   bool   `yaml:"compress_cold"`

	MemoryMaxMB       float64 `yaml:"memory_max_mb"`
	MemoryGCMB        float64 `yaml:"memory_gc_mb"`
	MemoryEmergencyMB float64 `yaml:"memory_emergency_mb"`

	IncrementalStrategy string `yaml:"incremental_strategy"`
}

const (
	defaultMemoryMaxMB       = 500
	defaultMemoryGCMB        = 400
	defaultMemoryEmergencyMB = 450
)

// Default returns the zero-config baseline: the current working directory
// as project root, no file-size limit, no cold cache tier, hybrid
// incremental strategy, and the memory thresholds spec.md §4.3 names.
func Default() *Config {
	cwd, _ := os.Getwd()
	return &Config{
		ProjectRoot:         cwd,
		IncrementalStrategy: "hybrid",
		MemoryMaxMB:         defaultMemoryMaxMB,
		MemoryGCMB:          defaultMemoryGCMB,
		MemoryEmergencyMB:   defaultMemoryEmergencyMB,
	}
}

// Load builds a Config by starting from Default(), overlaying
// tsanalysis.yaml/tsanalysis.yml found under dir (or at explicitPath, if
// given), and finally overlaying the MCP_FILE_ROOT environment variable
// onto ProjectRoot. A missing config file is not an error — it just means
// the defaults stand, matching the teacher's LoadProjectConfig.
func Load(dir, explicitPath string) (*Config, error) {
	cfg := Default()
	if dir != "" {
		cfg.ProjectRoot = dir
	}

	configPath := explicitPath
	if configPath == "" {
		for _, name := range []string{"tsanalysis.yaml", "tsanalysis.yml"} {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				configPath = candidate
				break
			}
		}
	}

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", configPath, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", configPath, err)
		}
	}

	if root := os.Getenv("MCP_FILE_ROOT"); root != "" {
		cfg.ProjectRoot = root
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Validate rejects configuration values that would misconfigure the
// memory/cache subsystems rather than letting them surface later as
// confusing runtime behavior.
func (c *Config) Validate() error {
	if c.ProjectRoot == "" {
		return fmt.Errorf("project_root must not be empty")
	}
	if c.MemoryGCMB > c.MemoryMaxMB {
		return fmt.Errorf("memory_gc_mb (%v) must not exceed memory_max_mb (%v)", c.MemoryGCMB, c.MemoryMaxMB)
	}
	if c.MemoryEmergencyMB > c.MemoryMaxMB {
		return fmt.Errorf("memory_emergency_mb (%v) must not exceed memory_max_mb (%v)", c.MemoryEmergencyMB, c.MemoryMaxMB)
	}
	switch c.IncrementalStrategy {
	case "", "timestamp", "content_hash", "semantic", "hybrid":
	default:
		return fmt.Errorf("unrecognized incremental_strategy %q", c.IncrementalStrategy)
	}
	return nil
}

// Strategy translates IncrementalStrategy into incremental.Strategy,
// defaulting to the hybrid strategy when unset.
func (c *Config) Strategy() incremental.Strategy {
	switch c.IncrementalStrategy {
	case "timestamp":
		return incremental.StrategyTimestamp
	case "content_hash":
		return incremental.StrategyContentHash
	case "semantic":
		return incremental.StrategySemantic
	default:
		return incremental.StrategyHybrid
	}
}

// EngineOptions translates Config into the engine.Option set engine.New
// expects, so cmd/tsanalysis and internal/mcpserver never construct parser/
// cache/memory options by hand.
func (c *Config) EngineOptions() []engine.Option {
	var parserOpts []parser.Option
	if c.MaxFileBytes > 0 {
		parserOpts = append(parserOpts, parser.WithMaxFileBytes(c.MaxFileBytes))
	}
	if c.MaxCacheBytes > 0 {
		parserOpts = append(parserOpts, parser.WithMaxCacheBytes(c.MaxCacheBytes))
	}

	var cacheOpts []cachemgr.Option
	if c.HotCacheBytes > 0 {
		cacheOpts = append(cacheOpts, cachemgr.WithHotBytes(c.HotCacheBytes))
	}
	if c.WarmCacheBytes > 0 {
		cacheOpts = append(cacheOpts, cachemgr.WithWarmBytes(c.WarmCacheBytes))
	}

	memOpts := []memmgr.Option{
		memmgr.WithThresholds(c.MemoryMaxMB, c.MemoryGCMB, c.MemoryEmergencyMB),
	}

	return []engine.Option{
		engine.WithParserOptions(parserOpts...),
		engine.WithCacheOptions(cacheOpts...),
		engine.WithMemoryOptions(memOpts...),
		engine.WithIncrementalStrategy(c.Strategy()),
	}
}

// BindFlags registers the CLI flags that can override a loaded Config,
// following cmd/scan.go's package-level-var-bound-to-StringVar pattern.
func BindFlags(cmd *cobra.Command, cfg *Config) {
	cmd.PersistentFlags().StringVar(&cfg.ProjectRoot, "project-root", cfg.ProjectRoot, "project root directory to analyze")
	cmd.PersistentFlags().Int64Var(&cfg.MaxFileBytes, "max-file-bytes", cfg.MaxFileBytes, "skip files larger than this many bytes (0 = unlimited)")
	cmd.PersistentFlags().StringVar(&cfg.ColdCacheDir, "cold-cache-dir", cfg.ColdCacheDir, "directory for the on-disk cache tier (empty disables it)")
	cmd.PersistentFlags().StringVar(&cfg.IncrementalStrategy, "incremental-strategy", cfg.IncrementalStrategy, "timestamp|content_hash|semantic|hybrid")
}
