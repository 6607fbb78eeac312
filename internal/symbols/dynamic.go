package symbols

import "github.com/aroton/tsanalysis/internal/workspace"

// dynamicPass uses the inheritance index built up during the syntactic pass
// to emit additional usage references for methods that are overridden or
// inherited: for each class method symbol, every ancestor definition of the
// same name (up to maxDepth hops, 0 meaning unlimited) becomes a reference
// from the overriding definition back to its parent implementation.
func (r *Resolver) dynamicPass(syms []*workspace.Symbol, maxDepth int) []*workspace.Reference {
	var out []*workspace.Reference
	for _, s := range syms {
		if s.Kind != workspace.KindMethod || s.EnclosingClass == "" {
			continue
		}
		info, ok := r.Inheritance.Class(s.EnclosingClass)
		if !ok || info.BaseClass == "" {
			continue
		}
		chain := r.Inheritance.ResolveMethodReference(info.BaseClass, s.Name)
		for depth, def := range chain {
			if maxDepth > 0 && depth >= maxDepth {
				break
			}
			out = append(out, &workspace.Reference{
				File: s.File, Line: s.Line, Column: s.Column,
				Kind: workspace.RefUsage, Confidence: 0.7,
				SymbolName: s.Name, SymbolKind: workspace.KindMethod,
				ClassName: def.ClassName, MethodName: def.Name,
			})
		}
	}
	return out
}
