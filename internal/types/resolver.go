// Package types implements the progressive type-annotation resolver: a
// basic tier (primitives, unions, arrays, object literals, intersections,
// function types), a generics tier (balanced `Name<Args>` parsing, built-in
// utility-type recognition, constraint-depth and circular-reference
// checks), and a full tier (conditional types, mapped types, keyof/typeof,
// template-literal types, recursive-type short-circuiting). Grounded on
// analyzer/resolve.go's progressive type-resolution switch, generalized
// from Go's type system to TypeScript's annotation grammar.
package types

import "strings"

// Tier selects how deep the resolver is allowed to go.
type Tier string

const (
	TierBasic    Tier = "basic"
	TierGenerics Tier = "generics"
	TierFull     Tier = "full"
)

// ErrorCode enumerates the boundary codes the resolver can report.
type ErrorCode string

const (
	ErrTypeResolution     ErrorCode = "TYPE_RESOLUTION_ERROR"
	ErrUnknownType        ErrorCode = "UNKNOWN_TYPE"
	ErrCircularReference  ErrorCode = "CIRCULAR_REFERENCE_DETECTED"
	ErrConstraintExceeded ErrorCode = "CONSTRAINT_DEPTH_EXCEEDED"
)

// ResolveError is a single type-resolution failure.
type ResolveError struct {
	Code    ErrorCode
	Message string
}

func (e ResolveError) Error() string { return string(e.Code) + ": " + e.Message }

// Kind classifies a resolved type.
type Kind string

const (
	KindPrimitive    Kind = "primitive"
	KindUnion        Kind = "union"
	KindIntersection Kind = "intersection"
	KindArray        Kind = "array"
	KindObject       Kind = "object_literal"
	KindFunction     Kind = "function_type"
	KindGeneric      Kind = "generic_instantiation"
	KindUtility      Kind = "utility_type"
	KindConditional  Kind = "conditional"
	KindMapped       Kind = "mapped"
	KindKeyof        Kind = "keyof"
	KindTypeof       Kind = "typeof"
	KindTemplate     Kind = "template_literal"
	KindRecursive    Kind = "recursive"
	KindUnknown      Kind = "unknown"
)

// utilityTypes names the built-in generic helpers the generics tier
// recognizes without needing their declaration.
var utilityTypes = map[string]bool{
	"Array": true, "Promise": true, "Map": true, "Set": true, "Record": true,
	"Partial": true, "Required": true, "Pick": true, "Omit": true,
	"Exclude": true, "Extract": true, "ReadonlyArray": true, "Readonly": true,
}

var primitiveTypes = map[string]bool{
	"string": true, "number": true, "boolean": true, "void": true,
	"undefined": true, "null": true, "any": true, "unknown": true,
	"never": true, "object": true, "symbol": true, "bigint": true,
}

// Resolved is one resolved type annotation.
type Resolved struct {
	Raw             string
	Kind            Kind
	Name            string   // primitive/generic base name, when applicable
	TypeArguments   []string // raw text of each `<...>` argument
	UnionMembers    []string
	ConstraintDepth int
	Recursive       bool
}

// Resolver progressively resolves TypeScript type annotations. It holds no
// project-wide index: constraint/circularity detection walks the
// annotation text itself rather than a symbol table.
type Resolver struct {
	MaxConstraintDepth int // 0 means unlimited
}

// New creates a Resolver with no constraint-depth ceiling.
func New() *Resolver {
	return &Resolver{}
}

// Resolve resolves a single annotation at the given tier.
func (r *Resolver) Resolve(annotation string, tier Tier) (Resolved, *ResolveError) {
	annotation = strings.TrimSpace(annotation)
	if annotation == "" {
		return Resolved{}, &ResolveError{Code: ErrTypeResolution, Message: "empty type annotation"}
	}

	if tier == TierFull {
		if resolved, err := r.resolveFull(annotation); err != nil || resolved.Kind != "" {
			return resolved, err
		}
	}
	if tier == TierGenerics || tier == TierFull {
		if resolved, err := r.resolveGenerics(annotation); err != nil || resolved.Kind != "" {
			return resolved, err
		}
	}
	return r.resolveBasic(annotation)
}

func (r *Resolver) resolveBasic(annotation string) (Resolved, *ResolveError) {
	if primitiveTypes[annotation] {
		return Resolved{Raw: annotation, Kind: KindPrimitive, Name: annotation}, nil
	}
	if strings.HasSuffix(annotation, "[]") {
		return Resolved{Raw: annotation, Kind: KindArray, Name: strings.TrimSuffix(annotation, "[]")}, nil
	}
	if strings.HasPrefix(annotation, "{") && strings.HasSuffix(annotation, "}") {
		return Resolved{Raw: annotation, Kind: KindObject}, nil
	}
	if members := splitTopLevel(annotation, '|'); len(members) > 1 {
		return Resolved{Raw: annotation, Kind: KindUnion, UnionMembers: trimAll(members)}, nil
	}
	if members := splitTopLevel(annotation, '&'); len(members) > 1 {
		return Resolved{Raw: annotation, Kind: KindIntersection, UnionMembers: trimAll(members)}, nil
	}
	if isFunctionType(annotation) {
		return Resolved{Raw: annotation, Kind: KindFunction}, nil
	}
	if isIdentifier(annotation) {
		return Resolved{Raw: annotation, Kind: KindUnknown, Name: annotation}, &ResolveError{
			Code: ErrUnknownType, Message: "unresolved type identifier: " + annotation,
		}
	}
	return Resolved{Raw: annotation, Kind: KindUnknown}, nil
}

// resolveGenerics parses a `Name<Args>` instantiation with balanced-bracket
// scanning, computes constraint depth for `T extends U` style annotations,
// and flags direct/reciprocal circular references.
func (r *Resolver) resolveGenerics(annotation string) (Resolved, *ResolveError) {
	open := strings.IndexByte(annotation, '<')
	if open < 0 || !strings.HasSuffix(annotation, ">") {
		if depth, circular, name := extendsInfo(annotation); depth > 0 || circular {
			if circular {
				return Resolved{}, &ResolveError{Code: ErrCircularReference, Message: "circular type reference: " + annotation}
			}
			if r.MaxConstraintDepth > 0 && depth > r.MaxConstraintDepth {
				return Resolved{}, &ResolveError{Code: ErrConstraintExceeded, Message: "constraint depth exceeded for " + name}
			}
			return Resolved{Raw: annotation, Kind: KindGeneric, Name: name, ConstraintDepth: depth}, nil
		}
		return Resolved{}, nil
	}

	name := annotation[:open]
	args := annotation[open+1 : len(annotation)-1]
	typeArgs := trimAll(splitTopLevel(args, ','))

	kind := KindGeneric
	if utilityTypes[name] {
		kind = KindUtility
	}
	return Resolved{Raw: annotation, Kind: kind, Name: name, TypeArguments: typeArgs}, nil
}

// extendsInfo walks a `T extends U extends V ...` chain, returning its
// depth (number of extends hops) and whether it is circular: T extends T,
// or a reciprocal pair A extends B / B extends A.
func extendsInfo(annotation string) (depth int, circular bool, name string) {
	parts := strings.Split(annotation, " extends ")
	if len(parts) < 2 {
		return 0, false, ""
	}
	name = strings.TrimSpace(parts[0])
	seen := map[string]bool{name: true}
	for _, p := range parts[1:] {
		target := strings.TrimSpace(p)
		if idx := strings.IndexAny(target, "<({"); idx >= 0 {
			target = strings.TrimSpace(target[:idx])
		}
		depth++
		if target == name || seen[target] {
			return depth, true, name
		}
		seen[target] = true
	}
	return depth, false, name
}

// resolveFull handles conditional types (`check extends constraint ? t : f`),
// mapped types (`{ [K in Keys]: V }`), keyof/typeof, and template-literal
// types, plus recursive short-circuiting for a type referencing itself
// inside its own definition.
func (r *Resolver) resolveFull(annotation string) (Resolved, *ResolveError) {
	switch {
	case strings.HasPrefix(annotation, "keyof "):
		return Resolved{Raw: annotation, Kind: KindKeyof, Name: strings.TrimSpace(annotation[len("keyof "):])}, nil
	case strings.HasPrefix(annotation, "typeof "):
		return Resolved{Raw: annotation, Kind: KindTypeof, Name: strings.TrimSpace(annotation[len("typeof "):])}, nil
	case strings.HasPrefix(annotation, "`") && strings.HasSuffix(annotation, "`"):
		return Resolved{Raw: annotation, Kind: KindTemplate}, nil
	case strings.HasPrefix(annotation, "{") && strings.Contains(annotation, " in "):
		return Resolved{Raw: annotation, Kind: KindMapped}, nil
	case strings.Contains(annotation, " extends ") && strings.Contains(annotation, " ? ") && strings.Contains(annotation, " : "):
		return Resolved{Raw: annotation, Kind: KindConditional}, nil
	}
	if isSelfReferential(annotation) {
		return Resolved{Raw: annotation, Kind: KindRecursive, Recursive: true}, nil
	}
	return Resolved{}, nil
}

func isSelfReferential(annotation string) bool {
	name, rest, ok := strings.Cut(annotation, "=")
	if !ok {
		return false
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}
	return strings.Contains(rest, name)
}

func isFunctionType(s string) bool {
	return strings.Contains(s, "=>") && strings.HasPrefix(s, "(")
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, c := range s {
		if c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (i > 0 && c >= '0' && c <= '9') {
			continue
		}
		return false
	}
	return true
}

// splitTopLevel splits s on sep, ignoring occurrences nested inside
// (), [], {}, or <>.
func splitTopLevel(s string, sep byte) []string {
	var out []string
	depth := 0
	last := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(', '[', '{', '<':
			depth++
		case ')', ']', '}', '>':
			depth--
		default:
			if s[i] == sep && depth == 0 {
				out = append(out, s[last:i])
				last = i + 1
			}
		}
	}
	out = append(out, s[last:])
	return out
}

func trimAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.TrimSpace(s)
	}
	return out
}
