// Package inheritance builds class/interface hierarchies by scanning
// declaration headers for extends/implements clauses, and answers
// method-reference lookups by walking the resulting parent chain. Grounded
// on inspector/jsx/inspector.go's processClassComponent (class-body member
// walk) generalized from JSX component classes to arbitrary TS classes and
// interfaces, using the same regex-guided scanning style the reference
// implementation and the type resolver both lean on for header parsing.
package inheritance

import (
	"regexp"
	"strings"
)

// MethodDef is one method or abstract signature belonging to a class,
// preserved with its override/abstract markers and raw parameter/return
// text so callers can re-render a signature without re-parsing.
type MethodDef struct {
	ClassName  string
	Name       string
	Signature  string
	IsAbstract bool
	IsOverride bool
	ReturnType string
	File       string
	Line       int
}

// ClassInfo is one class or interface declaration found in the project.
type ClassInfo struct {
	Name       string
	File       string
	Line       int
	IsAbstract bool
	IsInterface bool
	BaseClass  string   // single extends target for a class; empty if none
	Bases      []string // multiple extends targets, used by interfaces
	Interfaces []string // implements targets
	Methods    []MethodDef
}

// InheritanceChain describes one base class and every class that directly
// or transitively derives from it, up to maxDepth.
type InheritanceChain struct {
	BaseClass      string
	DerivedClasses []string
	Depth          int
}

var (
	classHeaderRe = regexp.MustCompile(`(?m)^\s*(export\s+)?(default\s+)?(abstract\s+)?class\s+(\w+)(?:<[^>]*>)?(?:\s+extends\s+(\w+)(?:<[^>]*>)?)?(?:\s+implements\s+([\w,\s<>.]+?))?\s*\{`)
	interfaceHeaderRe = regexp.MustCompile(`(?m)^\s*(export\s+)?interface\s+(\w+)(?:<[^>]*>)?(?:\s+extends\s+([\w,\s<>.]+?))?\s*\{`)
	methodRe = regexp.MustCompile(`(?m)^\s*(abstract\s+)?(static\s+)?(public\s+|private\s+|protected\s+)?(async\s+)?(override\s+)?(\w+)\s*\(([^)]*)\)\s*(?::\s*([^{;]+))?\s*[{;]`)
)

// Resolver indexes classes and interfaces across a set of analyzed files.
type Resolver struct {
	classes map[string]*ClassInfo
}

// New creates an empty Resolver.
func New() *Resolver {
	return &Resolver{classes: make(map[string]*ClassInfo)}
}

// IndexFile scans source for class/interface declarations and their method
// members, adding them to the resolver's index.
func (r *Resolver) IndexFile(file string, src []byte) {
	text := string(src)
	lines := lineOffsets(text)

	for _, m := range classHeaderRe.FindAllStringSubmatchIndex(text, -1) {
		info := &ClassInfo{
			File:       file,
			Name:       sub(text, m, 4),
			IsAbstract: sub(text, m, 3) != "",
			Line:       lineForOffset(lines, m[0]),
		}
		info.BaseClass = sub(text, m, 5)
		if implementsList := sub(text, m, 6); implementsList != "" {
			info.Interfaces = splitNames(implementsList)
		}
		info.Methods = r.extractMethods(text, m[1], file, info.Name, lines)
		r.classes[info.Name] = info
	}

	for _, m := range interfaceHeaderRe.FindAllStringSubmatchIndex(text, -1) {
		info := &ClassInfo{
			File:        file,
			Name:        sub(text, m, 2),
			IsInterface: true,
			Line:        lineForOffset(lines, m[0]),
		}
		if bases := sub(text, m, 3); bases != "" {
			info.Bases = splitNames(bases)
		}
		r.classes[info.Name] = info
	}
}

// extractMethods scans the class body starting at bodyStart (the byte just
// after the opening brace) for method-like member declarations, stopping at
// the matching close brace.
func (r *Resolver) extractMethods(text string, bodyStart int, file, className string, lines []int) []MethodDef {
	end := matchBrace(text, bodyStart-1)
	if end < 0 || end > len(text) {
		end = len(text)
	}
	body := text[bodyStart:end]

	var out []MethodDef
	for _, m := range methodRe.FindAllStringSubmatchIndex(body, -1) {
		name := sub(body, m, 6)
		if isKeyword(name) {
			continue
		}
		out = append(out, MethodDef{
			ClassName:  className,
			Name:       name,
			IsAbstract: sub(body, m, 1) != "",
			IsOverride: sub(body, m, 5) != "",
			ReturnType: strings.TrimSpace(sub(body, m, 8)),
			Signature:  strings.TrimSpace(body[m[0]:m[1]]),
			File:       file,
			Line:       lineForOffset(lines, bodyStart+m[0]),
		})
	}
	return out
}

var reservedWords = map[string]bool{
	"if": true, "for": true, "while": true, "switch": true, "catch": true,
	"function": true, "return": true, "constructor": false,
}

func isKeyword(name string) bool {
	return reservedWords[name]
}

// BuildClassHierarchy returns one InheritanceChain per base class that has
// at least one derived class, honoring maxDepth for transitive descendants.
func (r *Resolver) BuildClassHierarchy(maxDepth int) []InheritanceChain {
	derivedOf := make(map[string][]string)
	for name, info := range r.classes {
		if info.BaseClass != "" {
			derivedOf[info.BaseClass] = append(derivedOf[info.BaseClass], name)
		}
	}

	var chains []InheritanceChain
	for base, directDerived := range derivedOf {
		all := r.transitiveDerived(base, derivedOf, maxDepth)
		chains = append(chains, InheritanceChain{
			BaseClass:      base,
			DerivedClasses: all,
			Depth:          len(directDerived),
		})
	}
	return chains
}

func (r *Resolver) transitiveDerived(base string, derivedOf map[string][]string, maxDepth int) []string {
	seen := make(map[string]bool)
	var out []string
	var walk func(name string, depth int)
	walk = func(name string, depth int) {
		if maxDepth > 0 && depth > maxDepth {
			return
		}
		for _, child := range derivedOf[name] {
			if seen[child] {
				continue
			}
			seen[child] = true
			out = append(out, child)
			walk(child, depth+1)
		}
	}
	walk(base, 1)
	return out
}

// ResolveMethodReference walks className's parent chain looking for method,
// returning every candidate definition in inheritance order (most-derived
// first), stopping when the chain ends or a class can't be found.
func (r *Resolver) ResolveMethodReference(className, method string) []MethodDef {
	var out []MethodDef
	visited := make(map[string]bool)
	current := className
	for current != "" && !visited[current] {
		visited[current] = true
		info, ok := r.classes[current]
		if !ok {
			break
		}
		for _, m := range info.Methods {
			if m.Name == method {
				out = append(out, m)
			}
		}
		current = info.BaseClass
	}
	return out
}

// Class returns the indexed info for name, if present.
func (r *Resolver) Class(name string) (*ClassInfo, bool) {
	info, ok := r.classes[name]
	return info, ok
}

func sub(text string, m []int, group int) string {
	lo, hi := m[2*group], m[2*group+1]
	if lo < 0 || hi < 0 {
		return ""
	}
	return text[lo:hi]
}

func splitNames(list string) []string {
	parts := strings.Split(list, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		name := strings.TrimSpace(p)
		if idx := strings.IndexAny(name, "<."); idx >= 0 {
			name = name[:idx]
		}
		if name != "" {
			out = append(out, name)
		}
	}
	return out
}

func matchBrace(text string, openIdx int) int {
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
	return -1
}

func lineOffsets(text string) []int {
	offsets := []int{0}
	for i, c := range text {
		if c == '\n' {
			offsets = append(offsets, i+1)
		}
	}
	return offsets
}

func lineForOffset(offsets []int, pos int) int {
	lo, hi := 0, len(offsets)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if offsets[mid] <= pos {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo + 1
}
