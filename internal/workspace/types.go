package workspace

// TypeDef is a resolved type definition. Kind selects which of the optional
// structured fields (e.g. ConditionalBranches) are populated.
type TypeDef struct {
	Kind       TypeKind
	Text       string // textual definition, always populated
	File       string
	Line       int
	Column     int
	Confidence float64

	// Structured detail, populated depending on Kind.
	UnionMembers     []string
	ArrayElement     string
	IntersectMembers []string
	ObjectFields     map[string]string
	FunctionParams   []string
	FunctionReturn   string
	GenericBase      string
	GenericArgs      []*TypeDef
	Conditional      *ConditionalType
	MappedKeySource  string // the `keyof T` part of `{ [K in keyof T]: ... }`
	MappedValue      string
	KeyofTarget      string
	TypeofExpr       string
	Recursive        *TypeDef // the definition the recursive marker short-circuits to

	// Generic constraints, populated when this TypeDef models a type
	// parameter (`T extends U`).
	ConstraintExpr  string
	ConstraintDepth int
}

// ConditionalType models `T extends U ? X : Y`.
type ConditionalType struct {
	Check   string
	Extends string
	True    string
	False   string
}
