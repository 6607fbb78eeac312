package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aroton/tsanalysis/internal/engine"
	"github.com/aroton/tsanalysis/internal/logging"
	"github.com/aroton/tsanalysis/pkg/analysisapi"
)

var scanSymbol string

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Resolve a symbol's references across the project root and print the result as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := resolveConfig()
		if err != nil {
			return err
		}
		if scanSymbol == "" {
			return fmt.Errorf("--symbol is required")
		}

		log := logging.New(os.Stdout)
		eng := engine.New(cfg.ProjectRoot, cfg.EngineOptions()...)
		files := eng.DiscoverFiles()

		req := analysisapi.FindReferencesRequest{
			Symbol:          scanSymbol,
			IncludeDecls:    true,
			IncludeUsage:    true,
			ResolutionDepth: analysisapi.ResolutionSemantic,
		}
		result, errs := eng.FindReferences(files, req.ToOptions())
		resp := analysisapi.NewFindReferencesResponse(result, errs, len(files), req, eng.Inheritance)
		log.Status(logging.StatusOK, fmt.Sprintf("scanned %d files, found %d references", len(files), resp.TotalReferences))

		encoded, err := json.MarshalIndent(resp, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(encoded))
		return nil
	},
}

func init() {
	scanCmd.Flags().StringVar(&scanSymbol, "symbol", "", "symbol name to search for, e.g. ClassName or ClassName#methodName")
}
