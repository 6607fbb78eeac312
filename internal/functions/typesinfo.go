package functions

import "github.com/aroton/tsanalysis/internal/types"

// TypesInfo is the types-extraction result for one analyzed function,
// collected at the generics/full resolution tiers.
type TypesInfo struct {
	ParameterTypes []types.Resolved
	ReturnType     *types.Resolved
	Constraints    []types.Resolved
}

const maxNestedTypeIterations = 25

// ExtractTypes resolves every parameter type and the return type of detail
// at the given tier, following up to maxNestedTypeIterations generic
// instantiations to bound pathological nesting.
func ExtractTypes(detail Detail, tier types.Tier) TypesInfo {
	r := types.New()
	info := TypesInfo{}
	budget := maxNestedTypeIterations

	for _, p := range detail.Parameters {
		if p.Type == "" {
			continue
		}
		if resolved, err := r.Resolve(p.Type, tier); err == nil {
			info.ParameterTypes = append(info.ParameterTypes, resolved)
			info.Constraints = append(info.Constraints, collectNestedGenerics(r, resolved, tier, &budget)...)
		}
	}

	if detail.ReturnType != "" {
		if resolved, err := r.Resolve(detail.ReturnType, tier); err == nil {
			info.ReturnType = &resolved
		}
	}

	return info
}

// collectNestedGenerics walks a resolved type's type arguments, resolving
// each transitively up to budget resolutions to avoid unbounded recursion
// on pathological nested generics. The budget is shared by every recursive
// call, so it bounds the total number of resolutions.
func collectNestedGenerics(r *types.Resolver, resolved types.Resolved, tier types.Tier, budget *int) []types.Resolved {
	var out []types.Resolved
	for _, arg := range resolved.TypeArguments {
		if *budget <= 0 {
			break
		}
		*budget--
		nested, err := r.Resolve(arg, tier)
		if err != nil {
			continue
		}
		out = append(out, nested)
		out = append(out, collectNestedGenerics(r, nested, tier, budget)...)
	}
	return out
}
