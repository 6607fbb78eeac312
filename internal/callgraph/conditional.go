package callgraph

import (
	"regexp"
	"strings"
)

// Branch is one conditional branch extracted from a function body, with
// the calls made inside it and an estimated reach probability.
type Branch struct {
	Guard       string
	Probability float64
	Calls       []string
}

var (
	ifRe     = regexp.MustCompile(`\bif\s*\(([^)]*)\)\s*\{`)
	elseIfRe = regexp.MustCompile(`\}\s*else\s+if\s*\(([^)]*)\)\s*\{`)
	elseRe   = regexp.MustCompile(`\}\s*else\s*\{`)
	switchRe = regexp.MustCompile(`\bswitch\s*\(([^)]*)\)\s*\{`)
	caseRe   = regexp.MustCompile(`\bcase\s+([^:]+):`)
	tryRe    = regexp.MustCompile(`\btry\s*\{`)
	catchRe  = regexp.MustCompile(`\bcatch\s*(?:\(([^)]*)\))?\s*\{`)
)

// AnalyzeConditionals extracts every if/else, switch/case, and try/catch
// construct from body via brace-balanced scanning, labeling the calls
// inside each branch with a guard string and an estimated probability:
// 0.5 per if-branch, 1/N per switch case, 0.8/0.2 for try/catch.
func AnalyzeConditionals(body string) []Branch {
	var branches []Branch
	branches = append(branches, ifBranches(body)...)
	branches = append(branches, switchBranches(body)...)
	branches = append(branches, tryCatchBranches(body)...)
	return branches
}

func ifBranches(body string) []Branch {
	var out []Branch
	for _, loc := range ifRe.FindAllStringSubmatchIndex(body, -1) {
		guard := body[loc[2]:loc[3]]
		braceStart := loc[1] - 1
		blockEnd := matchBraceAt(body, braceStart)
		block := safeSlice(body, braceStart+1, blockEnd)
		var elseCalls []string
		if m := elseRe.FindStringIndex(body[blockEnd:]); m != nil && m[0] == 0 {
			elseStart := blockEnd + m[1] - 1
			elseCalls = callsIn(safeSlice(body, elseStart+1, matchBraceAt(body, elseStart)))
		}
		out = append(out, Branch{Guard: strings.TrimSpace(guard), Probability: 0.5, Calls: callsIn(block)})
		out = append(out, Branch{Guard: "!(" + strings.TrimSpace(guard) + ")", Probability: 0.5, Calls: elseCalls})
	}
	return out
}

func switchBranches(body string) []Branch {
	var out []Branch
	for _, sloc := range switchRe.FindAllStringSubmatchIndex(body, -1) {
		braceStart := sloc[1] - 1
		blockEnd := matchBraceAt(body, braceStart)
		block := safeSlice(body, braceStart+1, blockEnd)

		cases := caseRe.FindAllStringSubmatchIndex(block, -1)
		n := len(cases)
		if n == 0 {
			continue
		}
		prob := 1.0 / float64(n)
		for i, c := range cases {
			start := c[1]
			end := len(block)
			if i+1 < len(cases) {
				end = cases[i+1][0]
			}
			guard := strings.TrimSpace(block[c[2]:c[3]])
			out = append(out, Branch{Guard: "case " + guard, Probability: prob, Calls: callsIn(block[start:end])})
		}
	}
	return out
}

func tryCatchBranches(body string) []Branch {
	var out []Branch
	for _, tloc := range tryRe.FindAllStringIndex(body, -1) {
		braceStart := tloc[1] - 1
		tryEnd := matchBraceAt(body, braceStart)
		tryBlock := safeSlice(body, braceStart+1, tryEnd)
		out = append(out, Branch{Guard: "try", Probability: 0.8, Calls: callsIn(tryBlock)})

		rest := body[tryEnd:]
		if cm := catchRe.FindStringSubmatchIndex(rest); cm != nil {
			cBraceStart := cm[1] - 1
			cEnd := matchBraceAt(rest, cBraceStart)
			catchBlock := safeSlice(rest, cBraceStart+1, cEnd)
			out = append(out, Branch{Guard: "catch", Probability: 0.2, Calls: callsIn(catchBlock)})
		}
	}
	return out
}

func callsIn(block string) []string {
	return rawCalls(block)
}

func matchBraceAt(text string, openIdx int) int {
	if openIdx < 0 || openIdx >= len(text) || text[openIdx] != '{' {
		return len(text)
	}
	depth := 0
	for i := openIdx; i < len(text); i++ {
		switch text[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return len(text)
}

func safeSlice(s string, start, end int) string {
	if start < 0 {
		start = 0
	}
	if end > len(s) {
		end = len(s)
	}
	if start > end {
		return ""
	}
	return s[start:end]
}
