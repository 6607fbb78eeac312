// Package importtrack extracts import/export statements from parsed
// TypeScript/TSX files and assembles the project module dependency graph,
// grounded on import_tracker.py's ModuleResolver/ImportTracker split and
// generalized to real tree-sitter queries instead of the original's
// regex/mock fallback.
package importtrack

import (
	"os"
	"path/filepath"
	"strings"
)

// resolutionExtensions is the trial order applied to an extensionless
// import specifier, matching ModuleResolver.resolve_path.
var resolutionExtensions = []string{".ts", ".tsx", ".js", ".jsx"}

// Resolver turns an import specifier plus the file that contains it into an
// absolute path within the project, or reports the specifier as external.
type Resolver struct {
	ProjectRoot string
}

// NewResolver creates a Resolver rooted at projectRoot.
func NewResolver(projectRoot string) *Resolver {
	return &Resolver{ProjectRoot: projectRoot}
}

// Resolve attempts to locate the file behind importPath as seen from
// fromFile. It returns ("", false) for specifiers it cannot resolve on
// disk (including, by design, bare package-manager specifiers).
func (r *Resolver) Resolve(importPath, fromFile string) (string, bool) {
	if strings.HasPrefix(importPath, ".") {
		return r.tryBase(filepath.Join(filepath.Dir(fromFile), importPath))
	}
	if !strings.HasPrefix(importPath, "/") && !strings.Contains(importPath, ":") {
		return r.tryBase(filepath.Join(r.ProjectRoot, importPath))
	}
	return "", false
}

func (r *Resolver) tryBase(base string) (string, bool) {
	for _, ext := range resolutionExtensions {
		candidate := base + ext
		if fileExists(candidate) {
			return filepath.Clean(candidate), true
		}
		indexCandidate := filepath.Join(base, "index"+ext)
		if fileExists(indexCandidate) {
			return filepath.Clean(indexCandidate), true
		}
	}
	return "", false
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// IsExternal reports whether a specifier refers to a package-manager module
// rather than a project-relative path.
func IsExternal(importPath string) bool {
	return !strings.HasPrefix(importPath, ".") && !strings.HasPrefix(importPath, "/")
}
