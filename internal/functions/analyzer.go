// Package functions implements the function analyzer: given a function (or
// `ClassName.methodName`) name and a file, it locates the declaration among
// five syntactic patterns, extracts its signature/parameters/body/call
// sites, and optionally layers on nested-function, overload, control-flow,
// variable-tracking, dynamic-call, and async-pattern detail. Grounded on
// analyzer/function.go's signature-then-body extraction pipeline,
// generalized from Go function literals to TypeScript's five declaration
// shapes, with the brace/bracket balancing style carried over verbatim.
package functions

import "strings"

var keywordCalls = map[string]bool{
	"if": true, "for": true, "while": true, "switch": true, "try": true,
	"catch": true, "return": true, "new": true, "typeof": true,
	"instanceof": true, "function": true, "async": true, "await": true,
}

// Parameter is one parameter in an extracted signature.
type Parameter struct {
	Name     string
	Type     string
	Optional bool
	Default  string
	Rest     bool
}

// Detail is the full analysis record for one function/method.
type Detail struct {
	Name            string
	ClassName       string // optional, set for ClassName.methodName lookups
	File            string
	Line            int
	IsOverload      bool // true when this match ends in ';' rather than '{'
	GenericParams   string
	Parameters      []Parameter
	ReturnType      string
	Signature       string
	Body            string
	Calls           []string
	NestedFunctions []string
	Overloads       []Detail
	ControlFlow     *ControlFlowSummary
	Variables       []Variable
	DynamicCalls    []string
	Async           AsyncPatterns
}

// ControlFlowSummary is the optional per-function control-flow digest.
type ControlFlowSummary struct {
	HasConditional   bool
	HasLoop          bool
	HasSwitch        bool
	HasTryCatch      bool
	HasAsyncAwait    bool
	MultipleReturns  bool
	HasBreakContinue bool
}

// Variable is one tracked local declaration.
type Variable struct {
	Name        string
	DeclKind    string // const | let | var
	Type        string
	Initializer string
}

// AsyncPatterns is the optional async-usage digest.
type AsyncPatterns struct {
	UsesAwait       bool
	ReturnsPromise  bool
	UsesCombinators []string // Promise.all, Promise.race, Promise.allSettled, Promise.any
}

// Options controls which optional features Locate/Analyze computes.
type Options struct {
	IncludeNested      bool
	IncludeOverloads   bool
	IncludeControlFlow bool
	IncludeVariables   bool
	IncludeDynamic     bool
	IncludeAsync       bool
}

// Locate finds every occurrence of name (or ClassName.methodName) in src
// and returns them in pattern-priority order, with every implementation
// placed before every overload regardless of which pattern matched it.
func Locate(src, name string) []Match {
	class, method := splitClassMethod(name)
	if class != "" {
		if body, ok := classBody(src, class); ok {
			matches := locateIn(body.text, method)
			for i := range matches {
				matches[i].Offset += body.offset
				matches[i].ClassName = class
			}
			return matches
		}
		return nil
	}
	return locateIn(src, method)
}

// Match is one candidate location for a function/method declaration.
type Match struct {
	Offset       int
	HeaderEnd    int // index just past the matched header, at '{' or ';'
	IsOverload   bool
	ClassName    string
	GenericSpan  string
	ParamSpan    string
	ReturnSpan   string
}

type span struct {
	text   string
	offset int
}

func classBody(src, className string) (span, bool) {
	idx := strings.Index(src, "class "+className)
	if idx < 0 {
		return span{}, false
	}
	brace := strings.IndexByte(src[idx:], '{')
	if brace < 0 {
		return span{}, false
	}
	start := idx + brace + 1
	end := matchBrace(src, idx+brace)
	if end < 0 {
		end = len(src)
	}
	return span{text: src[start:end], offset: start}, true
}

// locateIn tries the five declaration patterns against body in priority
// order, preferring an implementation (ending in '{') to an overload
// (ending in ';') when both exist for name.
func locateIn(body, name string) []Match {
	var matches []Match
	for _, pattern := range []func(string, string) []Match{
		functionDeclPattern,
		constLetArrowPattern,
		methodPositionPattern,
		modifiedMethodPattern,
		accessorPattern,
	} {
		matches = append(matches, pattern(body, name)...)
	}
	sortImplementationFirst(matches)
	return matches
}

// sortImplementationFirst stably partitions matches so every implementation
// ('{'-terminated) precedes every overload (';'-terminated).
func sortImplementationFirst(matches []Match) {
	var impls, overloads []Match
	for _, m := range matches {
		if m.IsOverload {
			overloads = append(overloads, m)
		} else {
			impls = append(impls, m)
		}
	}
	copy(matches, append(impls, overloads...))
}

func splitClassMethod(name string) (class, method string) {
	if idx := strings.IndexByte(name, '.'); idx >= 0 {
		return name[:idx], name[idx+1:]
	}
	return "", name
}
