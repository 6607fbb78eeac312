package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveBasicPrimitive(t *testing.T) {
	r := New()
	resolved, err := r.Resolve("string", TierBasic)
	require.Nil(t, err)
	assert.Equal(t, KindPrimitive, resolved.Kind)
}

func TestResolveBasicUnion(t *testing.T) {
	r := New()
	resolved, err := r.Resolve("string | number", TierBasic)
	require.Nil(t, err)
	assert.Equal(t, KindUnion, resolved.Kind)
	assert.ElementsMatch(t, []string{"string", "number"}, resolved.UnionMembers)
}

func TestResolveBasicArray(t *testing.T) {
	r := New()
	resolved, err := r.Resolve("string[]", TierBasic)
	require.Nil(t, err)
	assert.Equal(t, KindArray, resolved.Kind)
	assert.Equal(t, "string", resolved.Name)
}

func TestResolveGenericsUtilityType(t *testing.T) {
	r := New()
	resolved, err := r.Resolve("Partial<User>", TierGenerics)
	require.Nil(t, err)
	assert.Equal(t, KindUtility, resolved.Kind)
	assert.Equal(t, []string{"User"}, resolved.TypeArguments)
}

func TestResolveGenericsNestedTypeArguments(t *testing.T) {
	r := New()
	resolved, err := r.Resolve("Map<string, Array<number>>", TierGenerics)
	require.Nil(t, err)
	assert.Equal(t, KindUtility, resolved.Kind)
	require.Len(t, resolved.TypeArguments, 2)
	assert.Equal(t, "Array<number>", resolved.TypeArguments[1])
}

func TestResolveGenericsCircularReferenceSelf(t *testing.T) {
	r := New()
	_, err := r.Resolve("T extends T", TierGenerics)
	require.NotNil(t, err)
	assert.Equal(t, ErrCircularReference, err.Code)
}

func TestResolveGenericsReciprocalCircular(t *testing.T) {
	r := New()
	_, err := r.Resolve("A extends B extends A", TierGenerics)
	require.NotNil(t, err)
	assert.Equal(t, ErrCircularReference, err.Code)
}

func TestResolveGenericsConstraintDepthExceeded(t *testing.T) {
	r := &Resolver{MaxConstraintDepth: 1}
	_, err := r.Resolve("T extends U extends V", TierGenerics)
	require.NotNil(t, err)
	assert.Equal(t, ErrConstraintExceeded, err.Code)
}

func TestResolveGenericsConstraintDepthWithinLimit(t *testing.T) {
	r := &Resolver{MaxConstraintDepth: 1}
	resolved, err := r.Resolve("T extends U", TierGenerics)
	require.Nil(t, err)
	assert.Equal(t, 1, resolved.ConstraintDepth)
}

func TestResolveFullConditionalType(t *testing.T) {
	r := New()
	resolved, err := r.Resolve("T extends string ? true : false", TierFull)
	require.Nil(t, err)
	assert.Equal(t, KindConditional, resolved.Kind)
}

func TestResolveFullKeyof(t *testing.T) {
	r := New()
	resolved, err := r.Resolve("keyof User", TierFull)
	require.Nil(t, err)
	assert.Equal(t, KindKeyof, resolved.Kind)
	assert.Equal(t, "User", resolved.Name)
}

func TestResolveUnknownTypeIdentifier(t *testing.T) {
	r := New()
	_, err := r.Resolve("FrobnicatedWidget", TierBasic)
	require.NotNil(t, err)
	assert.Equal(t, ErrUnknownType, err.Code)
}

func TestResolveBatchBucketsOutcomes(t *testing.T) {
	r := New()
	result := r.ResolveBatch([]string{"string", "Partial<User>", "MysteryType"}, TierGenerics)
	assert.Len(t, result.Basic, 1)
	assert.Len(t, result.Generic, 1)
	assert.Len(t, result.Inferred, 1)
	assert.InDelta(t, 0.3, result.Inferred[0].Confidence, 0.0001)
}
