package importtrack

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/aroton/tsanalysis/internal/workspace"
)

// ExtractImports walks the top-level statements of a parsed file and
// returns every import it recognizes, generalizing the teacher's
// NamedChild/ChildByFieldName traversal (inspector/golang/inspector_tree_sitter.go)
// from Go import declarations to TypeScript's much richer import grammar.
func ExtractImports(root *sitter.Node, src []byte, file string) []workspace.Import {
	var out []workspace.Import
	walkTopLevel(root, "import_statement", func(n *sitter.Node) {
		if imp, ok := importFromNode(n, src, file); ok {
			out = append(out, imp)
		}
	})
	walkTopLevel(root, "call_expression", func(n *sitter.Node) {
		if imp, ok := dynamicImportFromNode(n, src, file); ok {
			out = append(out, imp)
		}
	})
	return out
}

// ExtractExports walks the top-level statements for export declarations.
func ExtractExports(root *sitter.Node, src []byte, file string) []workspace.Export {
	var out []workspace.Export
	walkTopLevel(root, "export_statement", func(n *sitter.Node) {
		out = append(out, exportsFromNode(n, src, file)...)
	})
	return out
}

// walkTopLevel invokes fn for every descendant node of the given type,
// bounded at statement level so nested function bodies don't get re-scanned
// as if they were additional top-level imports.
func walkTopLevel(root *sitter.Node, nodeType string, fn func(*sitter.Node)) {
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil {
			return
		}
		if n.Type() == nodeType {
			fn(n)
		}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			walk(n.NamedChild(i))
		}
	}
	walk(root)
}

func nodeText(n *sitter.Node, src []byte) string {
	if n == nil {
		return ""
	}
	return n.Content(src)
}

func stringLiteralValue(n *sitter.Node, src []byte) string {
	text := nodeText(n, src)
	return strings.Trim(text, `'"` + "`")
}

func importFromNode(n *sitter.Node, src []byte, file string) (workspace.Import, bool) {
	source := n.ChildByFieldName("source")
	if source == nil {
		// Side-effect import: import './module';
		for i := 0; i < int(n.NamedChildCount()); i++ {
			child := n.NamedChild(i)
			if child.Type() == "string" {
				source = child
				break
			}
		}
	}
	if source == nil {
		return workspace.Import{}, false
	}

	imp := workspace.Import{
		File:       file,
		Specifier:  stringLiteralValue(source, src),
		Form:       workspace.ImportSideEffect,
		External:   IsExternal(stringLiteralValue(source, src)),
		Line:       int(n.StartPoint().Row) + 1,
		Column:     int(n.StartPoint().Column),
	}

	clause := n.ChildByFieldName("import_clause")
	if clause == nil {
		for i := 0; i < int(n.NamedChildCount()); i++ {
			child := n.NamedChild(i)
			if child.Type() == "import_clause" {
				clause = child
				break
			}
		}
	}
	if clause == nil {
		return imp, true
	}

	if isTypeOnlyImport(n, src) {
		imp.TypeOnly = true
	}

	for i := 0; i < int(clause.NamedChildCount()); i++ {
		child := clause.NamedChild(i)
		switch child.Type() {
		case "identifier":
			imp.DefaultBinding = nodeText(child, src)
			imp.Form = workspace.ImportDefault
		case "namespace_import":
			for j := 0; j < int(child.NamedChildCount()); j++ {
				if child.NamedChild(j).Type() == "identifier" {
					imp.NamespaceAlias = nodeText(child.NamedChild(j), src)
				}
			}
			imp.Form = workspace.ImportNamespace
		case "named_imports":
			imp.Form = workspace.ImportNamed
			for j := 0; j < int(child.NamedChildCount()); j++ {
				spec := child.NamedChild(j)
				if spec.Type() != "import_specifier" {
					continue
				}
				imp.NamedImports = append(imp.NamedImports, namedImportFromSpecifier(spec, src))
			}
		}
	}

	return imp, true
}

func namedImportFromSpecifier(spec *sitter.Node, src []byte) workspace.NamedImport {
	var names []string
	for j := 0; j < int(spec.NamedChildCount()); j++ {
		if spec.NamedChild(j).Type() == "identifier" {
			names = append(names, nodeText(spec.NamedChild(j), src))
		}
	}
	if len(names) == 0 {
		return workspace.NamedImport{}
	}
	if len(names) == 1 {
		return workspace.NamedImport{Name: names[0]}
	}
	return workspace.NamedImport{Name: names[0], Alias: names[1]}
}

// isTypeOnlyImport looks for the "type" keyword immediately inside an
// import_statement, which the tree-sitter-typescript grammar represents as
// a plain token rather than a distinct node type.
func isTypeOnlyImport(n *sitter.Node, src []byte) bool {
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child.Type() == "type" || (child.IsNamed() == false && nodeText(child, src) == "type") {
			return true
		}
	}
	return false
}

func dynamicImportFromNode(n *sitter.Node, src []byte, file string) (workspace.Import, bool) {
	fn := n.ChildByFieldName("function")
	if fn == nil || nodeText(fn, src) != "import" {
		return workspace.Import{}, false
	}
	args := n.ChildByFieldName("arguments")
	if args == nil || args.NamedChildCount() == 0 {
		return workspace.Import{}, false
	}
	arg := args.NamedChild(0)
	if arg.Type() != "string" {
		return workspace.Import{}, false
	}
	specifier := stringLiteralValue(arg, src)
	return workspace.Import{
		File:      file,
		Specifier: specifier,
		Form:      workspace.ImportDynamic,
		External:  IsExternal(specifier),
		Async:     hasAwaitAncestor(n),
		Line:      int(n.StartPoint().Row) + 1,
		Column:    int(n.StartPoint().Column),
	}, true
}

func hasAwaitAncestor(n *sitter.Node) bool {
	parent := n.Parent()
	return parent != nil && parent.Type() == "await_expression"
}

func exportsFromNode(n *sitter.Node, src []byte, file string) []workspace.Export {
	line := int(n.StartPoint().Row) + 1
	col := int(n.StartPoint().Column)

	// export * from './module'
	if hasToken(n, src, "*") {
		source := n.ChildByFieldName("source")
		return []workspace.Export{{
			File: file, Form: workspace.ExportReExport,
			ReExportFrom: stringLiteralValue(source, src),
			Line:         line, Column: col,
		}}
	}

	// export default ...
	if hasToken(n, src, "default") {
		return []workspace.Export{{File: file, Form: workspace.ExportDefault, DefaultName: defaultExportName(n, src), Line: line, Column: col}}
	}

	source := n.ChildByFieldName("source")
	clause := findChildOfType(n, "export_clause")

	var names []workspace.ExportedName
	if clause != nil {
		for i := 0; i < int(clause.NamedChildCount()); i++ {
			spec := clause.NamedChild(i)
			if spec.Type() != "export_specifier" {
				continue
			}
			names = append(names, exportedNameFromSpecifier(spec, src))
		}
	}

	form := workspace.ExportNamed
	var reExportFrom string
	if source != nil {
		form = workspace.ExportReExport
		reExportFrom = stringLiteralValue(source, src)
	}

	if clause == nil && source == nil {
		// Declaration export: export interface/class/const/function Name ...
		if name := declaredExportName(n, src); name != "" {
			names = append(names, workspace.ExportedName{Name: name})
		}
	}

	if len(names) == 0 && reExportFrom == "" {
		return nil
	}

	return []workspace.Export{{
		File: file, Names: names, Form: form, ReExportFrom: reExportFrom, Line: line, Column: col,
	}}
}

func exportedNameFromSpecifier(spec *sitter.Node, src []byte) workspace.ExportedName {
	var idents []string
	for i := 0; i < int(spec.NamedChildCount()); i++ {
		if spec.NamedChild(i).Type() == "identifier" {
			idents = append(idents, nodeText(spec.NamedChild(i), src))
		}
	}
	if len(idents) == 1 {
		return workspace.ExportedName{Name: idents[0]}
	}
	if len(idents) >= 2 {
		return workspace.ExportedName{Name: idents[0], Alias: idents[1]}
	}
	return workspace.ExportedName{}
}

func defaultExportName(n *sitter.Node, src []byte) string {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		switch child.Type() {
		case "identifier":
			return nodeText(child, src)
		case "class_declaration", "function_declaration":
			if name := child.ChildByFieldName("name"); name != nil {
				return nodeText(name, src)
			}
		}
	}
	return ""
}

func declaredExportName(n *sitter.Node, src []byte) string {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if name := child.ChildByFieldName("name"); name != nil {
			return nodeText(name, src)
		}
	}
	return ""
}

func findChildOfType(n *sitter.Node, t string) *sitter.Node {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if n.NamedChild(i).Type() == t {
			return n.NamedChild(i)
		}
	}
	return nil
}

func hasToken(n *sitter.Node, src []byte, token string) bool {
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if !child.IsNamed() && nodeText(child, src) == token {
			return true
		}
	}
	return false
}
