package analysisapi

import (
	"github.com/aroton/tsanalysis/internal/engine"
	"github.com/aroton/tsanalysis/internal/functions"
	"github.com/aroton/tsanalysis/internal/types"
)

// GetFunctionDetailsRequest is the get_function_details tool's input, per
// spec.md §6. Functions is a JSON list of one or more names (a bare string is
// not accepted); each may be "ClassName.methodName".
type GetFunctionDetailsRequest struct {
	Functions []string `json:"functions"`
	FilePaths []string `json:"file_paths"`

	IncludeCode  bool `json:"include_code"`
	IncludeTypes bool `json:"include_types"`
	IncludeCalls bool `json:"include_calls"`

	IncludeNested      bool `json:"include_nested_functions"`
	IncludeOverloads   bool `json:"include_overloads"`
	IncludeControlFlow bool `json:"include_control_flow"`
	IncludeVariables   bool `json:"include_variables"`
	IncludeDynamic     bool `json:"include_dynamic_calls"`
	IncludeAsync       bool `json:"include_async_patterns"`

	ResolutionDepth ResolutionDepth `json:"resolution_depth"`

	MaxConstraintDepth      int  `json:"max_constraint_depth"`
	TrackInstantiations     bool `json:"track_instantiations"`
	ResolveConditionalTypes bool `json:"resolve_conditional_types"`
	HandleRecursiveTypes    bool `json:"handle_recursive_types"`
	FallbackOnComplexity    bool `json:"fallback_on_complexity"`
}

// FunctionOptions translates the tool request's detail flags into
// functions.Options.
func (req GetFunctionDetailsRequest) FunctionOptions() functions.Options {
	return functions.Options{
		IncludeNested:      req.IncludeNested,
		IncludeOverloads:   req.IncludeOverloads,
		IncludeControlFlow: req.IncludeControlFlow,
		IncludeVariables:   req.IncludeVariables,
		IncludeDynamic:     req.IncludeDynamic,
		IncludeAsync:       req.IncludeAsync,
	}
}

// TypeTier translates the request's include_types/resolution_depth flags
// into the tier GetFunctionDetails should resolve types at.
func (req GetFunctionDetailsRequest) TypeTier() types.Tier {
	return TypeTierFromFlags(req.ResolutionDepth, req.IncludeTypes)
}

// FunctionDetail is one tool-facing function analysis record.
type FunctionDetail struct {
	Name            string              `json:"name"`
	ClassName       string              `json:"class_name,omitempty"`
	File            string              `json:"file"`
	Line            int                 `json:"line"`
	IsOverload      bool                `json:"is_overload,omitempty"`
	GenericParams   string              `json:"generic_params,omitempty"`
	Parameters      []FunctionParameter `json:"parameters"`
	ReturnType      string              `json:"return_type,omitempty"`
	Signature       string              `json:"signature"`
	Code            string              `json:"code,omitempty"`
	Calls           []string            `json:"calls,omitempty"`
	NestedFunctions []string            `json:"nested_functions,omitempty"`
	ResolvedTypes   *FunctionTypes      `json:"resolved_types,omitempty"`
}

// FunctionParameter mirrors functions.Parameter at the tool boundary.
type FunctionParameter struct {
	Name     string `json:"name"`
	Type     string `json:"type,omitempty"`
	Optional bool   `json:"optional,omitempty"`
	Default  string `json:"default,omitempty"`
	Rest     bool   `json:"rest,omitempty"`
}

// FunctionTypes mirrors functions.TypesInfo at the tool boundary.
type FunctionTypes struct {
	ParameterTypes []types.Resolved `json:"parameter_types,omitempty"`
	ReturnType     *types.Resolved  `json:"return_type,omitempty"`
	Constraints    []types.Resolved `json:"constraints,omitempty"`
}

// GetFunctionDetailsResponse maps each requested function name to the list
// of matching detail records found across file_paths (a name can match
// more than once across files or via overloads), per spec.md §6.
type GetFunctionDetailsResponse struct {
	Functions          map[string][]FunctionDetail `json:"functions"`
	ResolutionMetadata map[string]string           `json:"resolution_metadata,omitempty"`
	Errors             []ToolError                 `json:"errors"`
}

// AddResult folds one engine.GetFunctionDetails call's outcome for a single
// (file, name) pair into the response, under the requested function name's
// bucket.
func (resp *GetFunctionDetailsResponse) AddResult(name string, res engine.FunctionDetailsResult, req GetFunctionDetailsRequest) {
	if resp.Functions == nil {
		resp.Functions = make(map[string][]FunctionDetail)
	}
	if !res.Found {
		return
	}

	detail := res.Detail
	params := make([]FunctionParameter, len(detail.Parameters))
	for i, p := range detail.Parameters {
		params[i] = FunctionParameter{Name: p.Name, Type: p.Type, Optional: p.Optional, Default: p.Default, Rest: p.Rest}
	}

	out := FunctionDetail{
		Name:            detail.Name,
		ClassName:       detail.ClassName,
		File:            detail.File,
		Line:            detail.Line,
		IsOverload:      detail.IsOverload,
		GenericParams:   detail.GenericParams,
		Parameters:      params,
		ReturnType:      detail.ReturnType,
		Signature:       detail.Signature,
		Calls:           detail.Calls,
		NestedFunctions: detail.NestedFunctions,
	}
	if req.IncludeCode {
		out.Code = detail.Body
	}
	if req.IncludeTypes {
		out.ResolvedTypes = &FunctionTypes{
			ParameterTypes: res.Types.ParameterTypes,
			ReturnType:     res.Types.ReturnType,
			Constraints:    res.Types.Constraints,
		}
	}

	resp.Functions[name] = append(resp.Functions[name], out)
}

// AddErrors appends boundary errors observed while resolving name.
func (resp *GetFunctionDetailsResponse) AddErrors(errs []engine.Error) {
	resp.Errors = append(resp.Errors, FromEngineErrors(errs)...)
}
