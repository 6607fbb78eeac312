package functions

import (
	"regexp"
	"strings"
)

var callRe = regexp.MustCompile(`(?:\bthis\.(\w+)\(|\.(\w+)\(|\bawait\s+[\w.]*?(\w+)\(|\bnew\s+(\w+)\(|(?:^|[^.\w])(\w+)\()`)

// Analyze runs Locate against src for name and builds the full Detail
// record for the first (implementation-preferred) match, applying any
// optional features requested in opts.
func Analyze(src, name string, opts Options) (Detail, bool) {
	matches := Locate(src, name)
	if len(matches) == 0 {
		return Detail{}, false
	}
	best := matches[0]

	class, method := splitClassMethod(name)
	_ = class
	detail := buildDetail(src, best, method, opts)
	detail.ClassName = best.ClassName

	if opts.IncludeOverloads {
		for _, m := range matches[1:] {
			if m.IsOverload {
				detail.Overloads = append(detail.Overloads, buildDetail(src, m, method, Options{}))
			}
		}
	}
	return detail, true
}

func buildDetail(src string, m Match, name string, opts Options) Detail {
	header := extractSignature(src, m)
	body, bodyEnd := extractBody(src, header.afterReturnType)

	detail := Detail{
		Name:          name,
		Line:          lineAt(src, m.Offset),
		IsOverload:    m.IsOverload,
		GenericParams: header.generics,
		Parameters:    parseParams(header.params),
		ReturnType:    header.returnType,
		Signature:     strings.TrimSpace(src[m.Offset:header.afterReturnType]),
		Body:          body,
		Calls:         extractCalls(body),
	}

	if opts.IncludeNested {
		detail.NestedFunctions = extractNestedFunctions(body)
	}
	if opts.IncludeControlFlow {
		detail.ControlFlow = summarizeControlFlow(body)
	}
	if opts.IncludeVariables {
		detail.Variables = extractVariables(body)
	}
	if opts.IncludeDynamic {
		detail.DynamicCalls = extractDynamicCalls(body)
	}
	if opts.IncludeAsync {
		detail.Async = extractAsyncPatterns(body)
	}
	_ = bodyEnd
	return detail
}

type signatureParts struct {
	generics        string
	params          string
	returnType      string
	afterReturnType int
}

// extractSignature parses optional generic parameters, the parameter list,
// and the return type starting at m.Offset, tracking bracket depth and
// specially excluding `=>` from being mistaken for the close of a generic
// parameter list.
func extractSignature(src string, m Match) signatureParts {
	i := m.Offset
	for i < len(src) && src[i] != '(' && src[i] != '<' {
		i++
	}
	var generics string
	if i < len(src) && src[i] == '<' {
		end := scanAngleBracket(src, i)
		generics = src[i+1 : end]
		i = end + 1
		for i < len(src) && src[i] != '(' {
			i++
		}
	}

	paramsStart := i + 1
	paramsEnd := matchParen(src, i)
	if paramsEnd < 0 {
		paramsEnd = len(src)
	}
	params := ""
	if paramsEnd > paramsStart {
		params = src[paramsStart:paramsEnd]
	}

	rest := paramsEnd + 1
	returnType, afterReturn := parseReturnType(src, rest)

	return signatureParts{generics: generics, params: params, returnType: returnType, afterReturnType: afterReturn}
}

// scanAngleBracket finds the index of the '>' that closes the '<' at open,
// treating an immediately following `=>` as not a close (arrow return type).
func scanAngleBracket(src string, open int) int {
	depth := 0
	for i := open; i < len(src); i++ {
		switch src[i] {
		case '<':
			depth++
		case '>':
			if i > 0 && src[i-1] == '=' {
				continue
			}
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return len(src) - 1
}

func matchParen(src string, open int) int {
	depth := 0
	for i := open; i < len(src); i++ {
		switch src[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// parseReturnType scans forward from after the parameter list's ')' to find
// the end of the return-type annotation: a top-level '{' that opens a
// function body, a top-level ';', or end of string.
func parseReturnType(src string, from int) (string, int) {
	i := from
	for i < len(src) && (src[i] == ' ' || src[i] == '\t') {
		i++
	}
	if i >= len(src) || src[i] != ':' {
		return "", from
	}
	i++
	start := i
	depth := 0
	for ; i < len(src); i++ {
		switch src[i] {
		case '(', '[', '<':
			depth++
		case ')', ']', '>':
			if depth > 0 {
				depth--
			}
		case '{':
			if depth == 0 {
				return strings.TrimSpace(src[start:i]), i
			}
		case ';':
			if depth == 0 {
				return strings.TrimSpace(src[start:i]), i
			}
		case '=':
			if depth == 0 && i+1 < len(src) && src[i+1] == '>' {
				return strings.TrimSpace(src[start:i]), i
			}
		}
	}
	return strings.TrimSpace(src[start:]), len(src)
}

// extractBody finds the body starting at/after pos: a brace-delimited block,
// or for an arrow function with a single-expression body, the span up to
// the terminating ';' or newline.
func extractBody(src string, pos int) (string, int) {
	i := pos
	for i < len(src) && src[i] != '{' && src[i] != '=' && src[i] != ';' {
		i++
	}
	if i < len(src) && src[i] == '=' && i+1 < len(src) && src[i+1] == '>' {
		i += 2
		for i < len(src) && (src[i] == ' ' || src[i] == '\t' || src[i] == '\n') {
			i++
		}
	}
	if i >= len(src) {
		return "", len(src)
	}
	if src[i] == '{' {
		end := matchBrace(src, i)
		if end < 0 {
			end = len(src)
		}
		return src[i+1 : end], end
	}
	end := strings.IndexByte(src[i:], ';')
	if end < 0 {
		end = strings.IndexByte(src[i:], '\n')
	}
	if end < 0 {
		return strings.TrimSpace(src[i:]), len(src)
	}
	return strings.TrimSpace(src[i : i+end]), i + end
}

func parseParams(paramList string) []Parameter {
	parts := splitTopLevelCommas(paramList)
	var out []Parameter
	for _, part := range parts {
		p := strings.TrimSpace(part)
		if p == "" {
			continue
		}
		param := Parameter{}
		if strings.HasPrefix(p, "...") {
			param.Rest = true
			p = strings.TrimPrefix(p, "...")
		}

		eq := topLevelLastEquals(p)
		if eq >= 0 {
			param.Default = strings.TrimSpace(p[eq+1:])
			param.Optional = true
			p = p[:eq]
		}

		if strings.Contains(p, "?") {
			param.Optional = true
			p = strings.Replace(p, "?", "", 1)
		}

		if colon := strings.IndexByte(p, ':'); colon >= 0 {
			param.Name = strings.TrimSpace(p[:colon])
			param.Type = strings.TrimSpace(p[colon+1:])
		} else {
			param.Name = strings.TrimSpace(p)
		}
		out = append(out, param)
	}
	return out
}

// topLevelLastEquals finds the last '=' not nested and not part of '=>',
// used to locate a parameter's default-value assignment.
func topLevelLastEquals(s string) int {
	depth := 0
	last := -1
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(', '[', '{', '<':
			depth++
		case ')', ']', '}', '>':
			depth--
		case '=':
			if depth == 0 && !(i+1 < len(s) && s[i+1] == '>') {
				last = i
			}
		}
	}
	return last
}

// ExtractCalls exposes the call-site extraction used internally by
// Analyze, for callers (e.g. the call-graph builder) that already have a
// function body and don't need the rest of Detail.
func ExtractCalls(body string) []string {
	return extractCalls(body)
}

// extractCalls scans body for call sites in priority order (this.method,
// object.method, direct name, await expr(), new Ctor()), excluding keywords
// and de-duplicating while preserving first-occurrence order.
func extractCalls(body string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, m := range callRe.FindAllStringSubmatch(body, -1) {
		name := firstNonEmpty(m[1:])
		if name == "" || isKeyword(name) || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}

func firstNonEmpty(groups []string) string {
	for _, g := range groups {
		if g != "" {
			return g
		}
	}
	return ""
}

func lineAt(src string, offset int) int {
	if offset > len(src) {
		offset = len(src)
	}
	return strings.Count(src[:offset], "\n") + 1
}
