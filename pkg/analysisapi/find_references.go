package analysisapi

import (
	"github.com/aroton/tsanalysis/internal/engine"
	"github.com/aroton/tsanalysis/internal/inheritance"
	"github.com/aroton/tsanalysis/internal/symbols"
	"github.com/aroton/tsanalysis/internal/workspace"
)

// FindReferencesRequest is the find_references tool's input, per spec.md
// §6: symbol supports "ClassName#methodName"; file_paths is a JSON list of
// paths, or omitted to mean "every file the engine knows about". A bare
// string is not accepted for file_paths.
type FindReferencesRequest struct {
	Symbol       string   `json:"symbol"`
	FilePaths    []string `json:"file_paths"`
	IncludeDecls bool     `json:"include_declarations"`
	IncludeUsage bool     `json:"include_usages"`
	IncludeTests bool     `json:"include_tests"`

	ResolutionDepth     ResolutionDepth `json:"resolution_depth"`
	ResolveInheritance  bool            `json:"resolve_inheritance"`
	MethodResolution    bool            `json:"method_resolution"`
	IncludeConfidence   bool            `json:"include_confidence_scores"`
	ResolveImports      bool            `json:"resolve_imports"`
	InheritanceMaxDepth int             `json:"inheritance_max_depth"`

	Page    string `json:"page"`
	MaxPage int    `json:"max_tokens"`
}

// Reference is one located occurrence of the searched symbol, the tool
// boundary's flattening of workspace.Reference.
type Reference struct {
	File        string  `json:"file"`
	Line        int     `json:"line"`
	Column      int     `json:"column"`
	LineContext string  `json:"line_context,omitempty"`
	Kind        string  `json:"kind"`
	Confidence  float64 `json:"confidence,omitempty"`
	SymbolName  string  `json:"symbol_name,omitempty"`
	ClassName   string  `json:"class_name,omitempty"`
	MethodName  string  `json:"method_name,omitempty"`
	Signature   string  `json:"signature,omitempty"`
	ImportPath  string  `json:"import_path,omitempty"`
}

// AnalysisStats reports how much work a find_references call did, included
// on every response regardless of errors.
type AnalysisStats struct {
	FilesAnalyzed   int `json:"files_analyzed"`
	SymbolsIndexed  int `json:"symbols_indexed"`
	ReferencesFound int `json:"references_found"`
}

// FindReferencesResponse is the find_references tool's output.
type FindReferencesResponse struct {
	Pagination
	References      []Reference      `json:"references"`
	TotalReferences int              `json:"total_references"`
	SearchedFiles   int              `json:"searched_files"`
	Errors          []ToolError      `json:"errors"`
	InheritanceInfo *InheritanceInfo `json:"inheritance_info,omitempty"`
	AnalysisStats   AnalysisStats    `json:"analysis_stats"`
}

// InheritanceInfo is attached to the response only when resolve_inheritance
// is set: the class hierarchy context the dynamic pass used to widen the
// search.
type InheritanceInfo struct {
	BaseClasses    []string `json:"base_classes,omitempty"`
	DerivedClasses []string `json:"derived_classes,omitempty"`
}

// symbolsPass chooses the three-pass resolver's Pass value for a request's
// ResolutionDepth, defaulting to the syntactic pass.
func (req FindReferencesRequest) symbolsPass() symbols.Pass {
	switch req.ResolutionDepth {
	case ResolutionSemantic:
		return symbols.PassSemantic
	case ResolutionFullType:
		return symbols.PassDynamic
	default:
		return symbols.PassSyntactic
	}
}

// tokensPerReference is the coarse per-item cost spec.md §4.5/§6's pagination
// contract budgets against: "estimated at ~100 tokens per item as a coarse
// rule".
const tokensPerReference = 100

// pageSize converts the request's max_tokens budget into a page_size item
// count. Zero means the caller didn't set a budget, in which case
// symbols.Resolve falls back to its own default page size.
func (req FindReferencesRequest) pageSize() int {
	if req.MaxPage <= 0 {
		return 0
	}
	size := req.MaxPage / tokensPerReference
	if size < 1 {
		size = 1
	}
	return size
}

// ToOptions translates the tool request into the options Engine.FindReferences
// expects.
func (req FindReferencesRequest) ToOptions() symbols.Options {
	return symbols.Options{
		Pass: req.symbolsPass(),
		Filters: symbols.Filters{
			IncludeTestFiles: req.IncludeTests,
			TargetSymbol:     req.Symbol,
		},
		InheritanceDepth:  req.InheritanceMaxDepth,
		AnalyzeConfidence: req.IncludeConfidence,
		PageSize:          req.pageSize(),
		Cursor:            req.Page,
	}
}

// NewFindReferencesResponse builds the tool response from an engine result,
// applying the include_declarations/include_usages filters the resolver
// itself doesn't know about (it resolves every reference kind; the tool
// boundary narrows to what the caller asked for). inh is the engine's
// shared inheritance resolver, consulted only when resolve_inheritance was
// requested.
func NewFindReferencesResponse(result symbols.Result, errs []engine.Error, searchedFiles int, req FindReferencesRequest, inh *inheritance.Resolver) FindReferencesResponse {
	refs := make([]Reference, 0, len(result.References))
	for _, r := range result.References {
		if !req.IncludeDecls && (r.Kind == workspace.RefDeclaration || r.Kind == workspace.RefDefinition) {
			continue
		}
		if !req.IncludeUsage && r.Kind == workspace.RefUsage {
			continue
		}
		refs = append(refs, Reference{
			File:        r.File,
			Line:        r.Line,
			Column:      r.Column,
			LineContext: r.LineContext,
			Kind:        string(r.Kind),
			Confidence:  r.Confidence,
			SymbolName:  r.SymbolName,
			ClassName:   r.ClassName,
			MethodName:  r.MethodName,
			Signature:   r.Signature,
			ImportPath:  r.ImportPath,
		})
	}

	resp := FindReferencesResponse{
		Pagination: Pagination{
			Total:      len(result.References),
			NextCursor: result.NextCursor,
			HasMore:    result.HasMore,
		},
		References:      refs,
		TotalReferences: len(refs),
		SearchedFiles:   searchedFiles,
		Errors:          FromEngineErrors(errs),
		AnalysisStats: AnalysisStats{
			FilesAnalyzed:   searchedFiles,
			SymbolsIndexed:  len(result.Symbols),
			ReferencesFound: len(refs),
		},
	}

	if req.ResolveInheritance && inh != nil {
		resp.InheritanceInfo = inheritanceInfoFor(inh, req.Symbol, req.InheritanceMaxDepth)
	}
	return resp
}

func inheritanceInfoFor(inh *inheritance.Resolver, target string, maxDepth int) *InheritanceInfo {
	class, ok := inh.Class(target)
	if !ok {
		return nil
	}
	info := &InheritanceInfo{}
	if class.BaseClass != "" {
		info.BaseClasses = append(info.BaseClasses, class.BaseClass)
	}
	info.BaseClasses = append(info.BaseClasses, class.Interfaces...)

	for _, chain := range inh.BuildClassHierarchy(maxDepth) {
		if chain.BaseClass == target {
			info.DerivedClasses = chain.DerivedClasses
			break
		}
	}
	if len(info.BaseClasses) == 0 && len(info.DerivedClasses) == 0 {
		return nil
	}
	return info
}
