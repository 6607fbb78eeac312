package main

import (
	"github.com/spf13/cobra"

	"github.com/aroton/tsanalysis/internal/config"
)

// flagOverrides holds the CLI flag values; BindFlags gives each one the
// same default as config.Default() so an unset flag never looks "changed".
var flagOverrides = config.Default()
var configFile string

var rootCmd = &cobra.Command{
	Use:   "tsanalysis",
	Short: "Static analysis engine for TypeScript/TSX projects",
	Long: "tsanalysis indexes a TypeScript/TSX project's symbols, types, and call\n" +
		"graph and exposes them as MCP tools (find_references, get_function_details,\n" +
		"analyze_call_graph), or as a one-shot scan from the command line.",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "path to tsanalysis.yaml (default: <project-root>/tsanalysis.yaml)")
	config.BindFlags(rootCmd, flagOverrides)
	rootCmd.SilenceUsage = true
	rootCmd.AddCommand(serveCmd, scanCmd)
}

// Execute runs the root command, returning any error instead of calling
// os.Exit so main can control the process exit path.
func Execute() error {
	return rootCmd.Execute()
}

// resolveConfig loads tsanalysis.yaml + MCP_FILE_ROOT via config.Load, then
// layers in only the flags the invocation actually set, so an unset flag
// never clobbers a value the config file or environment provided. The flags
// all live on rootCmd.PersistentFlags() (config.BindFlags registers them
// there), so Changed is checked against that FlagSet directly rather than a
// subcommand's own — which only sees them after cobra's flag-merge step.
func resolveConfig() (*config.Config, error) {
	cfg, err := config.Load(flagOverrides.ProjectRoot, configFile)
	if err != nil {
		return nil, err
	}

	flags := rootCmd.PersistentFlags()
	if flags.Changed("project-root") {
		cfg.ProjectRoot = flagOverrides.ProjectRoot
	}
	if flags.Changed("max-file-bytes") {
		cfg.MaxFileBytes = flagOverrides.MaxFileBytes
	}
	if flags.Changed("cold-cache-dir") {
		cfg.ColdCacheDir = flagOverrides.ColdCacheDir
	}
	if flags.Changed("incremental-strategy") {
		cfg.IncrementalStrategy = flagOverrides.IncrementalStrategy
	}
	return cfg, cfg.Validate()
}
