package symbols

import "github.com/aroton/tsanalysis/internal/workspace"

// semanticPass augments the syntactic results with cross-file linkage: it
// resolves each file's import specifiers to the files importtrack already
// knows about, and for every default binding or named import whose imported
// name matches a symbol declared in the resolved target, emits a usage reference tying the
// import site to its originating declaration. Re-exports (`export { X }
// from './y'`) are walked transitively so the identity survives a chain of
// barrel files.
func (r *Resolver) semanticPass(files []string, syms []*workspace.Symbol) []*workspace.Reference {
	bySymbolName := make(map[string][]*workspace.Symbol)
	for _, s := range syms {
		bySymbolName[s.Name] = append(bySymbolName[s.Name], s)
	}

	var out []*workspace.Reference
	for _, file := range files {
		imports, errs := r.Tracker.FileImports(file)
		if len(errs) > 0 {
			continue
		}
		for _, imp := range imports {
			if imp.External {
				continue
			}
			target := r.resolveReExportChain(imp.Specifier, 8)
			names := importedNames(imp)
			for _, name := range names {
				for _, candidate := range bySymbolName[name] {
					if candidate.File != target {
						continue
					}
					out = append(out, &workspace.Reference{
						File: file, Line: imp.Line, Column: imp.Column,
						Kind: workspace.RefUsage, Confidence: 0.8,
						SymbolName: name, SymbolKind: candidate.Kind,
						ImportPath: target, ImportForm: imp.Form,
					})
				}
			}
		}
	}
	return out
}

// resolveReExportChain follows `export { X } from './y'` re-exports starting
// at file, taking the first re-export that resolves in each file, and returns
// the first file reached that has none (or the file reached after maxHops).
func (r *Resolver) resolveReExportChain(file string, maxHops int) string {
	current := file
	for i := 0; i < maxHops; i++ {
		exports, errs := r.Tracker.FileExports(current)
		if len(errs) > 0 {
			return current
		}
		next := ""
		for _, exp := range exports {
			if exp.Form == workspace.ExportReExport && exp.ReExportFrom != "" {
				if resolved, ok := r.Tracker.Resolver.Resolve(exp.ReExportFrom, current); ok {
					next = resolved
					break
				}
			}
		}
		if next == "" {
			return current
		}
		current = next
	}
	return current
}

func importedNames(imp workspace.Import) []string {
	var names []string
	if imp.DefaultBinding != "" {
		names = append(names, imp.DefaultBinding)
	}
	for _, n := range imp.NamedImports {
		names = append(names, n.Name)
	}
	return names
}
