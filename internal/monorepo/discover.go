// Package monorepo discovers multiple TypeScript projects under one
// workspace root, builds a dependency graph between them, and answers
// cross-project reference queries by composing one symbol resolver per
// project and searching workspace dependencies first, the local project
// second. Grounded on original_source/.../monorepo_analyzer.py's
// MonorepoAnalyzer/WorkspaceContext, doing cycle detection and topological
// ordering directly with gonum's graph/topo (the library internal/importtrack
// also uses) instead of the Python's networkx.
package monorepo

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/mod/modfile"
)

var excludedProjectDirs = map[string]bool{
	"node_modules": true, ".git": true, "dist": true, "build": true,
	"coverage": true, ".next": true,
}

// WorkspaceProject is one discovered TypeScript project: its tsconfig.json
// root, declared npm/workspace dependencies, project references, and
// source file list.
type WorkspaceProject struct {
	Name                  string
	Root                  string
	TSConfigPath          string
	PackageJSONPath       string // empty if no package.json was found
	References            []string
	SourceFiles           []string
	Dependencies          []string // npm dependencies (non-workspace)
	WorkspaceDependencies []string // deps whose version starts with workspace: or file:
}

type tsconfigRef struct {
	Path string `json:"path"`
}

type tsconfigFile struct {
	References []tsconfigRef `json:"references"`
	Include    []string      `json:"include"`
	Exclude    []string      `json:"exclude"`
}

type packageJSON struct {
	Name            string            `json:"name"`
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
}

// DiscoverProjects walks root looking for every tsconfig.json, building one
// WorkspaceProject per root found. A tsconfig.json at the workspace root that
// declares any project references is treated as a workspace orchestrator
// config and skipped, whatever else it declares.
func DiscoverProjects(root string) ([]*WorkspaceProject, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	var tsconfigPaths []string
	err = filepath.Walk(absRoot, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if excludedProjectDirs[info.Name()] && path != absRoot {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Base(path) == "tsconfig.json" {
			tsconfigPaths = append(tsconfigPaths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(tsconfigPaths)

	var projects []*WorkspaceProject
	for _, tsPath := range tsconfigPaths {
		p, ok := analyzeProjectConfig(tsPath, absRoot)
		if ok {
			projects = append(projects, p)
		}
	}
	return projects, nil
}

func analyzeProjectConfig(tsconfigPath, workspaceRoot string) (*WorkspaceProject, bool) {
	projectRoot := filepath.Dir(tsconfigPath)

	raw, err := os.ReadFile(tsconfigPath)
	if err != nil {
		return nil, false
	}
	var tsconfig tsconfigFile
	// tsconfig.json commonly carries // comments; a strict decode failure
	// here means a malformed config, which the Python treats the same way
	// (returns None for the project).
	if err := json.Unmarshal(raw, &tsconfig); err != nil {
		return nil, false
	}

	var references []string
	for _, ref := range tsconfig.References {
		if ref.Path != "" {
			references = append(references, ref.Path)
		}
	}

	if projectRoot == workspaceRoot && len(references) > 0 {
		return nil, false
	}

	packageJSONPath := filepath.Join(projectRoot, "package.json")
	name := ""
	var workspaceDeps []string
	var deps []string
	if pkgRaw, err := os.ReadFile(packageJSONPath); err == nil {
		var pkg packageJSON
		if json.Unmarshal(pkgRaw, &pkg) == nil {
			name = pkg.Name
			merged := make(map[string]string, len(pkg.Dependencies)+len(pkg.DevDependencies))
			for k, v := range pkg.Dependencies {
				merged[k] = v
			}
			for k, v := range pkg.DevDependencies {
				merged[k] = v
			}
			for depName, version := range merged {
				if hasWorkspacePrefix(version) {
					workspaceDeps = append(workspaceDeps, depName)
				} else {
					deps = append(deps, depName)
				}
			}
			sort.Strings(workspaceDeps)
			sort.Strings(deps)
		}
	} else {
		packageJSONPath = ""
	}

	if name == "" {
		if modName, ok := goModuleName(projectRoot); ok {
			name = modName
		}
	}

	if name == "" {
		if projectRoot == workspaceRoot {
			name = "root"
		} else {
			name = filepath.Base(projectRoot)
		}
	}

	return &WorkspaceProject{
		Name:                  name,
		Root:                  projectRoot,
		TSConfigPath:          tsconfigPath,
		PackageJSONPath:       packageJSONPath,
		References:            references,
		SourceFiles:           findSourceFiles(projectRoot, tsconfig),
		Dependencies:          deps,
		WorkspaceDependencies: workspaceDeps,
	}, true
}

// goModuleName names a TS project by its sibling go.mod's declared module
// path when it has no package.json of its own, the polyglot-workspace case
// (a Go backend service living next to .ts/.tsx sources, e.g. build scripts
// or a generated client). Grounded on the teacher's extractGoModuleName in
// inspector/repository/detector.go, which parses go.mod with modfile.Parse
// the same way.
func goModuleName(projectRoot string) (string, bool) {
	data, err := os.ReadFile(filepath.Join(projectRoot, "go.mod"))
	if err != nil {
		return "", false
	}
	mod, err := modfile.Parse("go.mod", data, nil)
	if err != nil || mod.Module == nil {
		return "", false
	}
	return mod.Module.Mod.Path, true
}

func hasWorkspacePrefix(version string) bool {
	return strings.HasPrefix(version, "workspace:") || strings.HasPrefix(version, "file:")
}

func findSourceFiles(projectRoot string, tsconfig tsconfigFile) []string {
	include := tsconfig.Include
	if len(include) == 0 {
		include = []string{"src/**/*"}
	}
	exclude := tsconfig.Exclude
	if len(exclude) == 0 {
		exclude = []string{"node_modules", "dist"}
	}

	var files []string
	_ = filepath.Walk(projectRoot, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			if matchesAny(info.Name(), exclude) && path != projectRoot {
				return filepath.SkipDir
			}
			return nil
		}
		ext := filepath.Ext(path)
		if ext != ".ts" && ext != ".tsx" {
			return nil
		}
		rel, err := filepath.Rel(projectRoot, path)
		if err != nil {
			return nil
		}
		if matchesAny(rel, exclude) {
			return nil
		}
		if includesPath(rel, include) {
			files = append(files, path)
		}
		return nil
	})
	sort.Strings(files)
	return files
}

func includesPath(rel string, include []string) bool {
	for _, pattern := range include {
		if pattern == "**/*" {
			return true
		}
		if strings.Contains(pattern, "src") && strings.Contains(rel, "src") {
			return true
		}
		if matched, _ := filepath.Match(pattern, rel); matched {
			return true
		}
	}
	return false
}

func matchesAny(s string, patterns []string) bool {
	for _, p := range patterns {
		if matched, _ := filepath.Match(p, s); matched {
			return true
		}
		if s == p {
			return true
		}
	}
	return false
}
