// Package workspace holds the parsed-source data model shared by every
// analysis pass: files, symbols, references, imports/exports and the
// module dependency graph. It is the substrate the parser produces and the
// cache stores; every other internal package reads and writes these types
// rather than re-deriving them from raw syntax trees.
package workspace

// Location captures a byte-range and its 1-based line / 0-based column
// within a source file, plus the raw text it spans.
type Location struct {
	StartByte int
	EndByte   int
	Line      int // 1-based
	Column    int // 0-based
	Raw       string
}

// SymbolKind enumerates the kinds of named program entities the resolver
// can produce.
type SymbolKind string

const (
	KindFunction  SymbolKind = "function"
	KindClass     SymbolKind = "class"
	KindInterface SymbolKind = "interface"
	KindTypeAlias SymbolKind = "type_alias"
	KindEnum      SymbolKind = "enum"
	KindVariable  SymbolKind = "variable"
	KindMethod    SymbolKind = "method"
	KindProperty  SymbolKind = "property"
)

// ReferenceKind enumerates the kinds of textual occurrences a reference may
// represent.
type ReferenceKind string

const (
	RefDeclaration ReferenceKind = "declaration"
	RefDefinition  ReferenceKind = "definition"
	RefUsage       ReferenceKind = "usage"
	RefCall        ReferenceKind = "call"
	RefImport      ReferenceKind = "import"
	RefExport      ReferenceKind = "export"
)

// ImportForm enumerates the supported ES import shapes.
type ImportForm string

const (
	ImportNamed      ImportForm = "named"
	ImportDefault    ImportForm = "default"
	ImportNamespace  ImportForm = "namespace"
	ImportSideEffect ImportForm = "side_effect"
	ImportDynamic    ImportForm = "dynamic"
)

// ExportForm enumerates the supported export shapes.
type ExportForm string

const (
	ExportNamed    ExportForm = "named"
	ExportDefault  ExportForm = "default"
	ExportNamespce ExportForm = "namespace"
	ExportReExport ExportForm = "re_export"
)

// TypeKind enumerates the categories a resolved type definition can fall
// into, from plain primitives through the progressively richer tiers the
// type resolver supports.
type TypeKind string

const (
	TypePrimitive   TypeKind = "primitive"
	TypeInterface   TypeKind = "interface"
	TypeClass       TypeKind = "class"
	TypeAliasKind   TypeKind = "type_alias"
	TypeEnum        TypeKind = "enum"
	TypeUnion       TypeKind = "union"
	TypeArray       TypeKind = "array"
	TypeObject      TypeKind = "object_literal"
	TypeIntersect   TypeKind = "intersection"
	TypeFunction    TypeKind = "function_type"
	TypeGeneric     TypeKind = "generic_instantiation"
	TypeUtility     TypeKind = "utility_type"
	TypeConditional TypeKind = "conditional"
	TypeMapped      TypeKind = "mapped"
	TypeKeyof       TypeKind = "keyof"
	TypeTypeof      TypeKind = "typeof"
	TypeTemplate    TypeKind = "template_literal"
	TypeRecursive   TypeKind = "recursive"
	TypeError       TypeKind = "error"
	TypeUnknown     TypeKind = "unknown"
)
