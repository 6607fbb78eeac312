// Package mcpserver registers find_references, get_function_details, and
// analyze_call_graph as tools on a github.com/mark3labs/mcp-go server,
// unmarshalling each tool call's JSON arguments into a pkg/analysisapi
// request struct and marshalling the tagged response back out. This
// package holds no analysis logic of its own — internal/engine is runnable
// and fully testable without it; it exists purely as the dispatch shim
// spec.md §1 carves out as an external collaborator.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/aroton/tsanalysis/internal/engine"
	"github.com/aroton/tsanalysis/internal/logging"
	"github.com/aroton/tsanalysis/pkg/analysisapi"
)

// Server wraps an engine.Engine with the three registered tools.
type Server struct {
	engine *engine.Engine
	log    *logging.Logger
	mcp    *server.MCPServer
}

// New builds a Server bound to eng, registering all three tools on a fresh
// mcp-go server instance named "tsanalysis".
func New(eng *engine.Engine, log *logging.Logger) *Server {
	s := &Server{
		engine: eng,
		log:    log.Component("mcpserver"),
		mcp:    server.NewMCPServer("tsanalysis", "1.0.0"),
	}
	s.registerFindReferences()
	s.registerGetFunctionDetails()
	s.registerAnalyzeCallGraph()
	return s
}

// ServeStdio runs the server over stdio with mcp-go's standard transport and
// returns when that transport returns; ctx is not consulted.
func (s *Server) ServeStdio(ctx context.Context) error {
	return server.ServeStdio(s.mcp)
}

func (s *Server) registerFindReferences() {
	tool := mcp.NewTool("find_references",
		mcp.WithDescription("Find declarations and usages of a TypeScript/TSX symbol across a project."),
		mcp.WithString("symbol", mcp.Required(), mcp.Description("Symbol name, or ClassName#methodName")),
	)

	s.mcp.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var in analysisapi.FindReferencesRequest
		if err := decodeArguments(req, &in); err != nil {
			return nil, err
		}

		done := s.log.Operation("find_references", "")
		files := resolveFiles(s.engine, in.FilePaths)
		result, errs := s.engine.FindReferences(files, in.ToOptions())
		resp := analysisapi.NewFindReferencesResponse(result, errs, len(files), in, s.engine.Inheritance)
		done(nil)

		return jsonResult(resp)
	})
}

func (s *Server) registerGetFunctionDetails() {
	tool := mcp.NewTool("get_function_details",
		mcp.WithDescription("Extract signature, body, calls, and resolved types for one or more functions."),
		mcp.WithArray("functions", mcp.Required(), mcp.Description("Function names, optionally ClassName.methodName")),
	)

	s.mcp.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var in analysisapi.GetFunctionDetailsRequest
		if err := decodeArguments(req, &in); err != nil {
			return nil, err
		}

		done := s.log.Operation("get_function_details", "")
		resp := analysisapi.GetFunctionDetailsResponse{}
		files := resolveFiles(s.engine, in.FilePaths)
		opts := in.FunctionOptions()
		tier := in.TypeTier()

		for _, name := range in.Functions {
			for _, file := range files {
				res, errs := s.engine.GetFunctionDetails(file, name, opts, tier)
				resp.AddErrors(errs)
				resp.AddResult(name, res, in)
			}
		}
		done(nil)

		return jsonResult(resp)
	})
}

func (s *Server) registerAnalyzeCallGraph() {
	tool := mcp.NewTool("analyze_call_graph",
		mcp.WithDescription("Build the call graph reachable from an entry-point function and enumerate execution paths."),
		mcp.WithString("entry_point", mcp.Required()),
		mcp.WithArray("file_paths", mcp.Required(), mcp.Description("Files to analyze; the entry point must be defined among these")),
	)

	s.mcp.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var in analysisapi.AnalyzeCallGraphRequest
		if err := decodeArguments(req, &in); err != nil {
			return nil, err
		}

		done := s.log.Operation("analyze_call_graph", "")
		res, errs := s.engine.AnalyzeCallGraph(in.FilePaths, in.EntryPoint, in.ToOptions())
		resp := analysisapi.NewAnalyzeCallGraphResponse(in.EntryPoint, res, errs)
		done(nil)

		return jsonResult(resp)
	})
}

// resolveFiles returns requested when non-empty, otherwise every file
// engine.DiscoverFiles finds under the project root — the tool-call
// convenience for callers that omit file_paths to mean "the whole project".
func resolveFiles(eng *engine.Engine, requested []string) []string {
	if len(requested) > 0 {
		return requested
	}
	return eng.DiscoverFiles()
}

func decodeArguments(req mcp.CallToolRequest, out interface{}) error {
	raw, err := json.Marshal(req.Params.Arguments)
	if err != nil {
		return fmt.Errorf("marshal tool arguments: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode tool arguments: %w", err)
	}
	return nil
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal tool response: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
