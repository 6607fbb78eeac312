package workspace

import "strconv"

// Symbol is a named program entity together with its defining location.
type Symbol struct {
	Name            string
	Kind            SymbolKind
	File            string
	Line            int // 1-based
	Column          int // 0-based
	Exported        bool
	EnclosingClass  string // optional
	Parameters      []Parameter
	ReturnType      string // optional
	Confidence      float64
	IsTypeGuard     bool
}

// Parameter is a function/method parameter, reused across Symbol and the
// function analyzer's richer Detail type.
type Parameter struct {
	Name     string
	Type     string
	Optional bool
	Default  string
	Rest     bool
}

// Reference is a textual occurrence of a symbol.
type Reference struct {
	File          string
	Line          int // 1-based
	Column        int // 0-based
	LineContext   string
	Kind          ReferenceKind
	Confidence    float64
	SymbolName    string // optional
	SymbolKind    SymbolKind
	ClassName     string // optional
	MethodName    string // optional
	Signature     string // optional
	ImportPath    string // optional
	ImportForm    ImportForm
}

// Key returns the (file, line, column) identity that uniquely identifies a
// reference, per the data-model invariant that duplicates within a single
// pass are deduplicated on this triple (plus kind/symbol to avoid collapsing
// genuinely distinct references that share a position, e.g. an import and a
// usage on the same line).
func (r Reference) Key() string {
	return r.File + "\x00" + strconv.Itoa(r.Line) + "\x00" + strconv.Itoa(r.Column) + "\x00" + string(r.Kind) + "\x00" + r.SymbolName
}
