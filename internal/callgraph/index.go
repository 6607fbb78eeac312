// Package callgraph builds a call graph from an entry-point function name
// and a set of analyzed files, enumerates root-to-leaf execution paths,
// detects and breaks cycles, and enriches paths with conditional-branch
// guard/probability information. Grounded on analyzer/callgraph.go's
// DFS-with-visited-set traversal, generalized from Go call expressions to
// TypeScript's call-site shapes via the function analyzer's call
// extraction, and on inheritance.Resolver's class/method index for
// resolving `this.method()` call sites to their enclosing class.
package callgraph

import (
	"regexp"

	"github.com/aroton/tsanalysis/internal/functions"
	"github.com/aroton/tsanalysis/internal/inheritance"
)

var (
	funcDeclRe  = regexp.MustCompile(`\bfunction\s+(\w+)\s*\(`)
	arrowDeclRe = regexp.MustCompile(`\b(?:export\s+)?(?:const|let)\s+(\w+)\s*(?::[^=]+)?=\s*(?:async\s*)?\([^)]*\)\s*(?::[^=]+)?=>`)
)

// FuncID uniquely identifies a function or method across the indexed file
// set.
type FuncID struct {
	Name      string
	ClassName string // empty for free functions
	File      string
}

// String renders the qualified identifier used as a graph node id.
func (f FuncID) String() string {
	if f.ClassName != "" {
		return f.ClassName + "." + f.Name + "@" + f.File
	}
	return f.Name + "@" + f.File
}

// Index is the whole-project function/call-site index the call graph
// builder walks.
type Index struct {
	defs       map[string]FuncID
	bodies     map[string]string // FuncID.String() -> extracted body text
	byName     map[string][]string // bare name -> []FuncID.String(), for unqualified call resolution
	byClassMet map[string]string   // "Class.method" -> FuncID.String()
}

// NewIndex builds an Index from a file->source map.
func NewIndex(sources map[string]string) *Index {
	idx := &Index{
		defs:       make(map[string]FuncID),
		bodies:     make(map[string]string),
		byName:     make(map[string][]string),
		byClassMet: make(map[string]string),
	}
	for file, src := range sources {
		idx.indexFile(file, src)
	}
	return idx
}

func (idx *Index) indexFile(file, src string) {
	inh := inheritance.New()
	inh.IndexFile(file, []byte(src))

	for _, m := range funcDeclRe.FindAllStringSubmatch(src, -1) {
		idx.addDef(FuncID{Name: m[1], File: file}, src)
	}
	for _, m := range arrowDeclRe.FindAllStringSubmatch(src, -1) {
		idx.addDef(FuncID{Name: m[1], File: file}, src)
	}

	for _, className := range classNames(src) {
		info, ok := inh.Class(className)
		if !ok {
			continue
		}
		for _, method := range info.Methods {
			idx.addDef(FuncID{Name: method.Name, ClassName: className, File: file}, src)
		}
	}
}

func (idx *Index) addDef(id FuncID, src string) {
	key := id.String()
	if _, exists := idx.defs[key]; exists {
		return
	}
	idx.defs[key] = id
	idx.byName[id.Name] = append(idx.byName[id.Name], key)
	if id.ClassName != "" {
		idx.byClassMet[id.ClassName+"."+id.Name] = key
	}

	qualified := id.Name
	if id.ClassName != "" {
		qualified = id.ClassName + "." + id.Name
	}
	if detail, ok := functions.Analyze(src, qualified, functions.Options{}); ok {
		idx.bodies[key] = detail.Body
	}
}

func classNames(src string) []string {
	re := regexp.MustCompile(`\bclass\s+(\w+)`)
	var names []string
	seen := make(map[string]bool)
	for _, m := range re.FindAllStringSubmatch(src, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	return names
}

// Resolve finds the FuncID key for entryPoint, which may be a bare name or
// a `ClassName.methodName` qualifier.
func (idx *Index) Resolve(name string) (string, bool) {
	if key, ok := idx.byClassMet[name]; ok {
		return key, true
	}
	if keys, ok := idx.byName[name]; ok && len(keys) > 0 {
		return keys[0], true
	}
	return "", false
}

// Callees returns the raw callee names extracted from fn's body, preferring
// a same-class match for an unqualified name when fn belongs to a class.
func (idx *Index) Callees(fnKey string) []string {
	body, ok := idx.bodies[fnKey]
	if !ok {
		return nil
	}
	fn := idx.defs[fnKey]
	var out []string
	for _, call := range rawCalls(body) {
		if fn.ClassName != "" {
			if key, ok := idx.byClassMet[fn.ClassName+"."+call]; ok {
				out = append(out, key)
				continue
			}
		}
		if keys, ok := idx.byName[call]; ok && len(keys) > 0 {
			out = append(out, keys[0])
		}
	}
	return out
}

func rawCalls(body string) []string {
	return functions.ExtractCalls(body)
}
