// Command tsanalysis exposes the engine as an MCP tool server (serve) or a
// one-shot project scan (scan), both built from the same
// internal/config/internal/engine wiring. Grounded on
// ingo-eichhorst-agent-readyness/cmd/root.go's rootCmd/Execute split.
package main

import "os"

func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
