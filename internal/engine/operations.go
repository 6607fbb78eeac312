package engine

import (
	"github.com/aroton/tsanalysis/internal/callgraph"
	"github.com/aroton/tsanalysis/internal/functions"
	"github.com/aroton/tsanalysis/internal/parser"
	"github.com/aroton/tsanalysis/internal/symbols"
	"github.com/aroton/tsanalysis/internal/types"
)

// FindReferences runs the symbol resolver's requested pass over files and
// returns one page of symbols/references, converting each file's
// parser.Error into an Error of the matching code.
func (e *Engine) FindReferences(files []string, opts symbols.Options) (symbols.Result, []Error) {
	result, parseErrs := e.Symbols.Resolve(files, opts)
	return result, convertParseErrors(parseErrs)
}

// Detail re-exports functions.Detail so callers never need to import
// internal/functions directly.
type Detail = functions.Detail

// FunctionDetailsResult is the get_function_details operation's result: the
// extracted Detail plus, when requested, its resolved parameter/return
// types.
type FunctionDetailsResult struct {
	Detail Detail
	Types  functions.TypesInfo
	Found  bool
}

// GetFunctionDetails reads file, locates name (a bare function name or
// "ClassName.methodName"), and extracts its full signature/body/call-site
// detail. A panic during extraction (a pathological source file) is
// recovered and reported as FUNCTION_ANALYSIS_ERROR rather than aborting
// the caller's batch.
func (e *Engine) GetFunctionDetails(file, name string, opts functions.Options, typeTier types.Tier) (res FunctionDetailsResult, errs []Error) {
	defer recoverPanic(ErrFunctionAnalysis, file, &errs)

	parsed := e.Parser.Parse(file)
	if !parsed.Success {
		errs = append(errs, convertParseErrors(parsed.Errors)...)
		return res, errs
	}

	detail, ok := functions.Analyze(string(parsed.Source), name, opts)
	if !ok {
		return FunctionDetailsResult{Found: false}, nil
	}
	detail.File = file

	var typesInfo functions.TypesInfo
	if typeTier != "" {
		typesInfo = functions.ExtractTypes(detail, typeTier)
	}
	return FunctionDetailsResult{Detail: detail, Types: typesInfo, Found: true}, nil
}

// CallGraphOptions configures AnalyzeCallGraph.
type CallGraphOptions struct {
	MaxDepth              int
	MaxOutEdges           int
	IncludeExecutionPaths bool
}

// CallGraphResult is the analyze_call_graph operation's result.
type CallGraphResult struct {
	Graph          *callgraph.Graph
	Stats          callgraph.Stats
	Cycles         []callgraph.Cycle
	ExecutionPaths []callgraph.Path
}

// AnalyzeCallGraph builds the union call graph from entryPoint over files,
// detects and breaks cycles so downstream consumers see a DAG-shaped view,
// and optionally enumerates root-to-leaf execution paths. A panic while
// indexing or walking a pathological file is recovered and reported as
// CALL_TRACE_ERROR.
func (e *Engine) AnalyzeCallGraph(files []string, entryPoint string, opts CallGraphOptions) (res CallGraphResult, errs []Error) {
	defer recoverPanic(ErrCallTrace, "", &errs)

	sources := make(map[string]string, len(files))
	for _, file := range files {
		parsed := e.Parser.Parse(file)
		if !parsed.Success {
			errs = append(errs, convertParseErrors(parsed.Errors)...)
			continue
		}
		sources[file] = string(parsed.Source)
	}

	idx := callgraph.NewIndex(sources)
	entryKey, ok := idx.Resolve(entryPoint)
	if !ok {
		errs = append(errs, Error{Code: ErrInvalidEntryPoint, Message: "entry point not found among analyzed files: " + entryPoint})
		return res, errs
	}

	maxDepth := opts.MaxDepth
	if maxDepth <= 0 {
		maxDepth = 10
	}

	graph, stats := callgraph.Build(idx, entryKey, maxDepth, opts.MaxOutEdges)
	cycles := callgraph.DetectCycles(graph)
	stats.CyclesDetected = len(cycles)
	callgraph.BreakCycles(graph, cycles)

	res = CallGraphResult{Graph: graph, Stats: stats, Cycles: cycles}
	if opts.IncludeExecutionPaths {
		res.ExecutionPaths = callgraph.ExecutionPaths(idx, entryKey, maxDepth)
	}
	return res, errs
}

var parseToEngineCode = map[parser.ErrorCode]ErrorCode{
	parser.ErrFileTooLarge:     ErrFileTooLarge,
	parser.ErrExcludedPath:     ErrExcludedPath,
	parser.ErrNotFound:         ErrNotFound,
	parser.ErrPermissionDenied: ErrPermissionDenied,
	parser.ErrParseError:       ErrParseError,
}

// convertParseErrors maps the parser's own boundary errors onto the
// engine's wider error taxonomy, preserving file/line.
func convertParseErrors(in []parser.Error) []Error {
	if len(in) == 0 {
		return nil
	}
	out := make([]Error, len(in))
	for i, e := range in {
		code, ok := parseToEngineCode[e.Code]
		if !ok {
			code = ErrParseError
		}
		out[i] = Error{Code: code, Message: e.Message, File: e.File, Line: e.Line}
	}
	return out
}
