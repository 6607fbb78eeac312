package analysisapi

import (
	"github.com/aroton/tsanalysis/internal/engine"
)

// AnalyzeCallGraphRequest is the analyze_call_graph tool's input, per
// spec.md §6. FilePaths is required — the call graph is built only from
// functions defined among these files.
type AnalyzeCallGraphRequest struct {
	EntryPoint           string   `json:"entry_point"`
	FilePaths            []string `json:"file_paths"`
	MaxDepth             int      `json:"max_depth"`
	IncludeExternalCalls bool     `json:"include_external_calls"`
	AnalyzeConditions    bool     `json:"analyze_conditions"`
	ResolutionDepth      ResolutionDepth `json:"resolution_depth"`

	Page string `json:"page"`
}

// ToOptions translates the tool request into engine.CallGraphOptions.
func (req AnalyzeCallGraphRequest) ToOptions() engine.CallGraphOptions {
	return engine.CallGraphOptions{
		MaxDepth:              req.MaxDepth,
		IncludeExecutionPaths: true,
	}
}

// ExecutionPath is one root-to-leaf traversal of the call graph.
type ExecutionPath struct {
	Nodes       []string `json:"nodes"`
	Truncated   bool     `json:"truncated,omitempty"`
	ClosedCycle bool     `json:"closed_cycle,omitempty"`
}

// CallGraphStats mirrors callgraph.Stats at the tool boundary.
type CallGraphStats struct {
	TotalFunctions  int `json:"total_functions"`
	TotalEdges      int `json:"total_edges"`
	MaxDepthReached int `json:"max_depth_reached"`
	CyclesDetected  int `json:"cycles_detected"`
}

// AnalyzeCallGraphResponse is the analyze_call_graph tool's output.
type AnalyzeCallGraphResponse struct {
	EntryPoint     string          `json:"entry_point"`
	ExecutionPaths []ExecutionPath `json:"execution_paths"`
	CallGraphStats CallGraphStats  `json:"call_graph_stats"`
	Errors         []ToolError     `json:"errors"`
}

// NewAnalyzeCallGraphResponse builds the tool response from an
// engine.AnalyzeCallGraph result.
func NewAnalyzeCallGraphResponse(entryPoint string, res engine.CallGraphResult, errs []engine.Error) AnalyzeCallGraphResponse {
	paths := make([]ExecutionPath, len(res.ExecutionPaths))
	for i, p := range res.ExecutionPaths {
		paths[i] = ExecutionPath{Nodes: p.Nodes, Truncated: p.Truncated, ClosedCycle: p.ClosedCycle}
	}

	return AnalyzeCallGraphResponse{
		EntryPoint:     entryPoint,
		ExecutionPaths: paths,
		CallGraphStats: CallGraphStats{
			TotalFunctions:  res.Stats.TotalFunctions,
			TotalEdges:      res.Stats.TotalEdges,
			MaxDepthReached: res.Stats.MaxDepthReached,
			CyclesDetected:  res.Stats.CyclesDetected,
		},
		Errors: FromEngineErrors(errs),
	}
}
