package symbols

import (
	"os"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/aroton/tsanalysis/internal/importtrack"
	"github.com/aroton/tsanalysis/internal/parser"
	"github.com/aroton/tsanalysis/internal/workspace"
)

func statFile(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return info.ModTime().UnixNano(), nil
}

// syntacticPass parses file and walks its AST once, producing declaration
// symbols (classes, interfaces, enums, type aliases, functions, methods,
// properties, test-framework calls) and reference occurrences (a declaration
// reference for each symbol, imports, calls, implements-clause usages), with
// the base confidences the pass assigns by node kind.
func (r *Resolver) syntacticPass(file string) ([]*workspace.Symbol, []*workspace.Reference, []parser.Error) {
	res := r.Parser.Parse(file)
	if !res.Success {
		return nil, nil, res.Errors
	}

	root := res.Tree.RootNode()
	src := res.Source

	var syms []*workspace.Symbol
	var refs []*workspace.Reference

	walkNodes(root, func(n *sitter.Node) {
		switch n.Type() {
		case "class_declaration", "abstract_class_declaration":
			if s := classSymbol(n, src, file); s != nil {
				syms = append(syms, s)
				refs = append(refs, implementsReferences(n, src, file, s.Name)...)
			}
		case "interface_declaration":
			if s := namedDeclSymbol(n, src, file, workspace.KindInterface, 0.9); s != nil {
				syms = append(syms, s)
			}
		case "enum_declaration":
			if s := namedDeclSymbol(n, src, file, workspace.KindEnum, 0.9); s != nil {
				syms = append(syms, s)
			}
		case "type_alias_declaration":
			if s := namedDeclSymbol(n, src, file, workspace.KindTypeAlias, 0.9); s != nil {
				syms = append(syms, s)
			}
		case "function_declaration":
			if s := functionSymbol(n, src, file, ""); s != nil {
				syms = append(syms, s)
			}
		case "method_definition", "abstract_method_signature":
			if s := methodSymbol(n, src, file); s != nil {
				syms = append(syms, s)
			}
		case "public_field_definition":
			if s := fieldSymbol(n, src, file); s != nil {
				syms = append(syms, s)
			}
		case "variable_declarator":
			if s := arrowBindingSymbol(n, src, file); s != nil {
				syms = append(syms, s)
			}
		case "call_expression":
			refs = append(refs, callReference(n, src, file))
			if s := testFrameworkSymbol(n, src, file); s != nil {
				syms = append(syms, s)
			}
		}
	})

	for _, s := range syms {
		ref := &workspace.Reference{
			File: s.File, Line: s.Line, Column: s.Column,
			Kind: workspace.RefDeclaration, Confidence: s.Confidence,
			SymbolName: s.Name, SymbolKind: s.Kind, ClassName: s.EnclosingClass,
		}
		if s.EnclosingClass != "" {
			ref.MethodName = s.Name
		}
		refs = append(refs, ref)
	}

	imports := importtrack.ExtractImports(root, src, file)
	for _, imp := range imports {
		refs = append(refs, importReference(imp))
	}

	dedupRefs := make([]*workspace.Reference, 0, len(refs))
	seen := make(map[string]bool)
	for _, ref := range refs {
		if ref == nil {
			continue
		}
		k := ref.Key()
		if seen[k] {
			continue
		}
		seen[k] = true
		dedupRefs = append(dedupRefs, ref)
	}

	r.mu.Lock()
	r.perFile[file] = syms
	r.mu.Unlock()
	r.Inheritance.IndexFile(file, src)

	return syms, dedupRefs, nil
}

func location(n *sitter.Node) (line, col int) {
	p := n.StartPoint()
	return int(p.Row) + 1, int(p.Column)
}

func isExported(n *sitter.Node) bool {
	parent := n.Parent()
	return parent != nil && parent.Type() == "export_statement"
}

func namedDeclSymbol(n *sitter.Node, src []byte, file string, kind workspace.SymbolKind, confidence float64) *workspace.Symbol {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	line, col := location(n)
	return &workspace.Symbol{
		Name:       nameNode.Content(src),
		Kind:       kind,
		File:       file,
		Line:       line,
		Column:     col,
		Exported:   isExported(n),
		Confidence: confidence,
	}
}

func classSymbol(n *sitter.Node, src []byte, file string) *workspace.Symbol {
	return namedDeclSymbol(n, src, file, workspace.KindClass, 0.9)
}

func implementsReferences(classNode *sitter.Node, src []byte, file, className string) []*workspace.Reference {
	heritage := findChild(classNode, "class_heritage")
	if heritage == nil {
		return nil
	}
	var out []*workspace.Reference
	walkNodes(heritage, func(n *sitter.Node) {
		if n.Type() != "type_identifier" && n.Type() != "identifier" {
			return
		}
		if !hasAncestorOfType(n, "implements_clause", 2) {
			return
		}
		line, col := location(n)
		out = append(out, &workspace.Reference{
			File: file, Line: line, Column: col,
			Kind: workspace.RefUsage, Confidence: 0.7,
			SymbolName: n.Content(src), ClassName: className,
		})
	})
	return out
}

func functionSymbol(n *sitter.Node, src []byte, file, enclosingClass string) *workspace.Symbol {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	line, col := location(n)
	return &workspace.Symbol{
		Name:           nameNode.Content(src),
		Kind:           workspace.KindFunction,
		File:           file,
		Line:           line,
		Column:         col,
		Exported:       isExported(n),
		EnclosingClass: enclosingClass,
		Parameters:     extractParams(n, src),
		ReturnType:     returnTypeText(n, src),
		Confidence:     0.9,
		IsTypeGuard:    isTypeGuardName(nameNode.Content(src)),
	}
}

func methodSymbol(n *sitter.Node, src []byte, file string) *workspace.Symbol {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	className := ""
	if cls := enclosingClassName(n, src); cls != "" {
		className = cls
	}
	line, col := location(n)
	return &workspace.Symbol{
		Name:           nameNode.Content(src),
		Kind:           workspace.KindMethod,
		File:           file,
		Line:           line,
		Column:         col,
		EnclosingClass: className,
		Parameters:     extractParams(n, src),
		ReturnType:     returnTypeText(n, src),
		Confidence:     0.8,
		IsTypeGuard:    isTypeGuardName(nameNode.Content(src)),
	}
}

func fieldSymbol(n *sitter.Node, src []byte, file string) *workspace.Symbol {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	line, col := location(n)
	return &workspace.Symbol{
		Name:           nameNode.Content(src),
		Kind:           workspace.KindProperty,
		File:           file,
		Line:           line,
		Column:         col,
		EnclosingClass: enclosingClassName(n, src),
		Confidence:     0.7,
	}
}

func arrowBindingSymbol(n *sitter.Node, src []byte, file string) *workspace.Symbol {
	nameNode := n.ChildByFieldName("name")
	valueNode := n.ChildByFieldName("value")
	if nameNode == nil || valueNode == nil {
		return nil
	}
	if valueNode.Type() != "arrow_function" && valueNode.Type() != "function_expression" {
		return nil
	}
	decl := n.Parent()
	exported := false
	if decl != nil && decl.Parent() != nil {
		exported = isExported(decl.Parent())
	}
	line, col := location(n)
	name := nameNode.Content(src)
	return &workspace.Symbol{
		Name:        name,
		Kind:        workspace.KindFunction,
		File:        file,
		Line:        line,
		Column:      col,
		Exported:    exported,
		Parameters:  extractParams(valueNode, src),
		ReturnType:  returnTypeText(valueNode, src),
		Confidence:  0.8,
		IsTypeGuard: isTypeGuardName(name),
	}
}

func testFrameworkSymbol(n *sitter.Node, src []byte, file string) *workspace.Symbol {
	fn := n.ChildByFieldName("function")
	if fn == nil || !testFrameworkCalls[fn.Content(src)] {
		return nil
	}
	args := n.ChildByFieldName("arguments")
	if args == nil || args.NamedChildCount() == 0 {
		return nil
	}
	first := args.NamedChild(0)
	if first.Type() != "string" {
		return nil
	}
	line, col := location(n)
	return &workspace.Symbol{
		Name:       stringContent(first, src),
		Kind:       workspace.KindFunction,
		File:       file,
		Line:       line,
		Column:     col,
		Confidence: 0.6,
	}
}

func callReference(n *sitter.Node, src []byte, file string) *workspace.Reference {
	fn := n.ChildByFieldName("function")
	if fn == nil {
		return nil
	}
	var callee string
	var className string
	switch fn.Type() {
	case "identifier":
		callee = fn.Content(src)
	case "member_expression":
		prop := fn.ChildByFieldName("property")
		obj := fn.ChildByFieldName("object")
		if prop == nil {
			return nil
		}
		callee = prop.Content(src)
		if obj != nil && (obj.Type() == "this" || obj.Type() == "identifier") {
			className = obj.Content(src)
		}
	default:
		return nil
	}
	if callee == "" {
		return nil
	}
	line, col := location(n)
	return &workspace.Reference{
		File: file, Line: line, Column: col,
		Kind: workspace.RefCall, Confidence: 0.7,
		SymbolName: callee, MethodName: callee, ClassName: className,
	}
}

func importReference(imp workspace.Import) *workspace.Reference {
	name := imp.DefaultBinding
	if name == "" && len(imp.NamedImports) > 0 {
		name = imp.NamedImports[0].LocalName()
	}
	if name == "" {
		name = imp.NamespaceAlias
	}
	return &workspace.Reference{
		File: imp.File, Line: imp.Line, Column: imp.Column,
		Kind: workspace.RefImport, Confidence: 0.9,
		SymbolName: name, ImportPath: imp.Specifier, ImportForm: imp.Form,
	}
}

func enclosingClassName(n *sitter.Node, src []byte) string {
	for p := n.Parent(); p != nil; p = p.Parent() {
		if p.Type() == "class_declaration" || p.Type() == "abstract_class_declaration" {
			if nameNode := p.ChildByFieldName("name"); nameNode != nil {
				return nameNode.Content(src)
			}
		}
	}
	return ""
}

func extractParams(n *sitter.Node, src []byte) []workspace.Parameter {
	paramsNode := n.ChildByFieldName("parameters")
	if paramsNode == nil {
		return nil
	}
	var out []workspace.Parameter
	for i := 0; i < int(paramsNode.NamedChildCount()); i++ {
		p := paramsNode.NamedChild(i)
		param := workspace.Parameter{Rest: p.Type() == "rest_pattern"}
		target := p
		if target.Type() == "rest_pattern" && target.NamedChildCount() > 0 {
			target = target.NamedChild(0)
		}
		nameNode := target.ChildByFieldName("pattern")
		if nameNode == nil {
			nameNode = target
		}
		param.Name = strings.TrimPrefix(nameNode.Content(src), "...")
		if typeNode := target.ChildByFieldName("type"); typeNode != nil {
			param.Type = typeNode.Content(src)
		}
		if valueNode := target.ChildByFieldName("value"); valueNode != nil {
			param.Default = valueNode.Content(src)
			param.Optional = true
		}
		if target.Type() == "optional_parameter" {
			param.Optional = true
		}
		out = append(out, param)
	}
	return out
}

func returnTypeText(n *sitter.Node, src []byte) string {
	if t := n.ChildByFieldName("return_type"); t != nil {
		return strings.TrimPrefix(strings.TrimSpace(t.Content(src)), ":")
	}
	return ""
}

func isTypeGuardName(name string) bool {
	return strings.HasPrefix(name, "is") && len(name) > 2 && name[2] >= 'A' && name[2] <= 'Z'
}

func stringContent(n *sitter.Node, src []byte) string {
	text := n.Content(src)
	return strings.Trim(text, "'\"`")
}

func hasAncestorOfType(n *sitter.Node, nodeType string, maxHops int) bool {
	p := n.Parent()
	for i := 0; p != nil && i < maxHops; i++ {
		if p.Type() == nodeType {
			return true
		}
		p = p.Parent()
	}
	return false
}

func findChild(n *sitter.Node, nodeType string) *sitter.Node {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		if c.Type() == nodeType {
			return c
		}
	}
	return nil
}
