package functions

import (
	"regexp"
	"strings"
)

var (
	nestedFunctionRe = regexp.MustCompile(`\bfunction\s+(\w+)\s*\(|\b(?:const|let)\s+(\w+)\s*=\s*(?:async\s*)?\([^)]*\)\s*(?::[^=]+)?=>`)
	variableRe        = regexp.MustCompile(`(?m)\b(const|let|var)\s+(\{[^}]*\}|\[[^\]]*\]|\w+)\s*(?::\s*([^=;]+))?(?:=\s*([^;\n]+))?`)
	dynamicCallRe     = regexp.MustCompile(`(\w+)\[[^\]]+\]\(|\.call\(|\.apply\(`)
	combinatorRe      = regexp.MustCompile(`Promise\.(all|race|allSettled|any)\(`)
)

// extractNestedFunctions returns every inner function/arrow binding found
// anywhere in body's text, at any nesting depth, each name reported once.
func extractNestedFunctions(body string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, m := range nestedFunctionRe.FindAllStringSubmatch(body, -1) {
		name := firstNonEmpty(m[1:])
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}

// summarizeControlFlow produces boolean flags for the control-flow shapes
// present in body.
func summarizeControlFlow(body string) *ControlFlowSummary {
	returnCount := strings.Count(body, "return ") + strings.Count(body, "return;") + strings.Count(body, "return\n")
	return &ControlFlowSummary{
		HasConditional:   strings.Contains(body, "if ") || strings.Contains(body, "if("),
		HasLoop:          strings.Contains(body, "for ") || strings.Contains(body, "for(") || strings.Contains(body, "while"),
		HasSwitch:        strings.Contains(body, "switch"),
		HasTryCatch:      strings.Contains(body, "try") && strings.Contains(body, "catch"),
		HasAsyncAwait:    strings.Contains(body, "await "),
		MultipleReturns:  returnCount > 1,
		HasBreakContinue: strings.Contains(body, "break") || strings.Contains(body, "continue"),
	}
}

// extractVariables finds const/let/var declarations (including destructured
// bindings) with an optional type annotation and initializer.
func extractVariables(body string) []Variable {
	var out []Variable
	for _, m := range variableRe.FindAllStringSubmatch(body, -1) {
		out = append(out, Variable{
			DeclKind:    m[1],
			Name:        strings.TrimSpace(m[2]),
			Type:        strings.TrimSpace(m[3]),
			Initializer: strings.TrimSpace(m[4]),
		})
	}
	return out
}

// extractDynamicCalls finds `obj[expr](...)`, `.call(...)`, and
// `.apply(...)` call sites.
func extractDynamicCalls(body string) []string {
	var out []string
	for _, m := range dynamicCallRe.FindAllString(body, -1) {
		out = append(out, strings.TrimRight(m, "("))
	}
	return out
}

// extractAsyncPatterns reports whether body uses await, appears to return a
// promise, and which Promise combinators it calls.
func extractAsyncPatterns(body string) AsyncPatterns {
	var combinators []string
	seen := make(map[string]bool)
	for _, m := range combinatorRe.FindAllStringSubmatch(body, -1) {
		name := "Promise." + m[1]
		if !seen[name] {
			seen[name] = true
			combinators = append(combinators, name)
		}
	}
	return AsyncPatterns{
		UsesAwait:       strings.Contains(body, "await "),
		ReturnsPromise:  strings.Contains(body, "return new Promise") || strings.Contains(body, "Promise.resolve") || len(combinators) > 0,
		UsesCombinators: combinators,
	}
}
