package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"github.com/viant/afs"

	"github.com/aroton/tsanalysis/internal/cachemgr"
	"github.com/aroton/tsanalysis/internal/engine"
	"github.com/aroton/tsanalysis/internal/logging"
	"github.com/aroton/tsanalysis/internal/mcpserver"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the MCP tool server over stdio",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := resolveConfig()
		if err != nil {
			return err
		}

		log := logging.New(os.Stdout)
		opts := cfg.EngineOptions()
		if cfg.ColdCacheDir != "" {
			opts = append(opts, engine.WithCacheOptions(cachemgr.WithColdTier(afs.New(), cfg.ColdCacheDir, cfg.CompressCold)))
		}

		eng := engine.New(cfg.ProjectRoot, opts...)
		log.Status(logging.StatusOK, "tsanalysis serving "+cfg.ProjectRoot)

		srv := mcpserver.New(eng, log)
		return srv.ServeStdio(context.Background())
	},
}
