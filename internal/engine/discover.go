package engine

import (
	"os"
	"path/filepath"
	"strings"
)

// DiscoverFiles walks the engine's project root and returns every .ts/.tsx
// file, skipping node_modules and .git — the "file_paths omitted" default
// every tool-facing caller (internal/mcpserver, cmd/tsanalysis) falls back
// to instead of each re-implementing its own project walk.
func (e *Engine) DiscoverFiles() []string {
	var files []string
	_ = filepath.Walk(e.Root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			if info.Name() == "node_modules" || info.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(path, ".ts") || strings.HasSuffix(path, ".tsx") {
			files = append(files, path)
		}
		return nil
	})
	return files
}
