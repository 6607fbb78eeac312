// Package analysisapi defines the tagged request/response envelopes for the
// three analysis tools (find_references, get_function_details,
// analyze_call_graph): one Go struct per tool response with the shared
// pagination envelope embedded and an Errors slice, instead of a single
// dataclass with every tool's optional fields piled into it. Grounded on
// spec.md §9's Design Note ("tagged sum types instead of
// dataclass-with-optional-fields") and spec.md §6's exact input/output
// shapes; translates internal/engine's result types into values an
// internal/mcpserver tool handler marshals straight to JSON.
package analysisapi

import (
	"github.com/aroton/tsanalysis/internal/engine"
	"github.com/aroton/tsanalysis/internal/types"
)

// ResolutionDepth mirrors the three-pass symbol resolver's Pass values at
// the tool boundary, spelled out the way the original tool arguments spell
// them rather than the internal package's short enum names.
type ResolutionDepth string

const (
	ResolutionSyntactic ResolutionDepth = "syntactic"
	ResolutionSemantic  ResolutionDepth = "semantic"
	ResolutionFullType  ResolutionDepth = "full_type"
)

// Pagination is the envelope every tool response embeds.
type Pagination struct {
	Total      int    `json:"total"`
	PageSize   int    `json:"page_size"`
	NextCursor string `json:"next_cursor,omitempty"`
	HasMore    bool   `json:"has_more"`
}

// ToolError is the boundary error shape shared by all three tools; Code
// values are engine.ErrorCode's sixteen codes, carried here as plain
// strings so this package has no hard dependency on engine's error type
// beyond the translation in FromEngineErrors.
type ToolError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	File    string `json:"file,omitempty"`
	Line    int    `json:"line,omitempty"`
}

// FromEngineErrors translates engine.Error values into ToolError values for
// embedding in a tool response.
func FromEngineErrors(errs []engine.Error) []ToolError {
	if len(errs) == 0 {
		return nil
	}
	out := make([]ToolError, len(errs))
	for i, e := range errs {
		out[i] = ToolError{Code: string(e.Code), Message: e.Message, File: e.File, Line: e.Line}
	}
	return out
}

// TypeTierFromFlags maps the get_function_details tool's resolution_depth
// and include_types arguments onto types.Tier, defaulting to no type
// resolution at all when include_types is false.
func TypeTierFromFlags(depth ResolutionDepth, includeTypes bool) types.Tier {
	if !includeTypes {
		return ""
	}
	switch depth {
	case ResolutionSemantic:
		return types.TierGenerics
	case ResolutionFullType:
		return types.TierFull
	default:
		return types.TierBasic
	}
}
