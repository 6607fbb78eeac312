package callgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSimpleChain(t *testing.T) {
	src := `
function a() {
	b();
}
function b() {
	c();
}
function c() {
	return 1;
}
`
	idx := NewIndex(map[string]string{"chain.ts": src})
	entry, ok := idx.Resolve("a")
	require.True(t, ok)

	_, stats := Build(idx, entry, 5, 50)
	assert.Equal(t, 3, stats.TotalFunctions)
	assert.GreaterOrEqual(t, stats.MaxDepthReached, 3)
}

func TestBuildRespectsMaxDepth(t *testing.T) {
	src := `
function a() { b(); }
function b() { c(); }
function c() { return 1; }
`
	idx := NewIndex(map[string]string{"chain.ts": src})
	entry, _ := idx.Resolve("a")

	g, stats := Build(idx, entry, 1, 50)
	assert.Equal(t, 1, len(g.Nodes))
	assert.Equal(t, 1, stats.MaxDepthReached)
}

func TestBuildZeroDepthIsEmpty(t *testing.T) {
	src := `function a() { b(); }`
	idx := NewIndex(map[string]string{"a.ts": src})
	entry, _ := idx.Resolve("a")

	g, stats := Build(idx, entry, 0, 50)
	assert.Empty(t, g.Nodes)
	assert.Equal(t, 0, stats.MaxDepthReached)
}

func TestBuildRecordsSelfRecursionWithoutReentering(t *testing.T) {
	src := `
function factorial(n) {
	if (n <= 1) {
		return 1;
	}
	return n * factorial(n - 1);
}
`
	idx := NewIndex(map[string]string{"f.ts": src})
	entry, ok := idx.Resolve("factorial")
	require.True(t, ok)

	g, stats := Build(idx, entry, 10, 50)
	assert.Equal(t, 1, stats.TotalFunctions)
	assert.Contains(t, g.Edges[entry], entry)
}

func TestResolveUnknownEntryPoint(t *testing.T) {
	idx := NewIndex(map[string]string{"a.ts": "function a() {}"})
	_, ok := idx.Resolve("missing")
	assert.False(t, ok)
}

func TestDetectCyclesFindsMutualRecursion(t *testing.T) {
	src := `
function ping() { pong(); }
function pong() { ping(); }
`
	idx := NewIndex(map[string]string{"p.ts": src})
	entry, _ := idx.Resolve("ping")
	g, _ := Build(idx, entry, 5, 50)

	cycles := DetectCycles(g)
	require.NotEmpty(t, cycles)
}

func TestBreakAndRestoreCycles(t *testing.T) {
	src := `
function ping() { pong(); }
function pong() { ping(); }
`
	idx := NewIndex(map[string]string{"p.ts": src})
	entry, _ := idx.Resolve("ping")
	g, _ := Build(idx, entry, 5, 50)

	cycles := DetectCycles(g)
	require.NotEmpty(t, cycles)

	before := map[string][]string{}
	for k, v := range g.Edges {
		before[k] = append([]string(nil), v...)
	}

	BreakCycles(g, cycles)
	RestoreBrokenEdges(g)

	assert.Equal(t, before, g.Edges)
}

func TestExecutionPathsEmitsPartialAtMaxDepth(t *testing.T) {
	src := `
function a() { b(); }
function b() { c(); }
function c() { return 1; }
`
	idx := NewIndex(map[string]string{"chain.ts": src})
	entry, _ := idx.Resolve("a")

	paths := ExecutionPaths(idx, entry, 2)
	require.NotEmpty(t, paths)
	assert.True(t, paths[0].Truncated)
}

func TestAnalyzeConditionalsComputesIfProbability(t *testing.T) {
	body := `
if (ready) {
	start();
} else {
	wait();
}
`
	branches := ifBranches(body)
	require.Len(t, branches, 2)
	for _, b := range branches {
		assert.InDelta(t, 0.5, b.Probability, 0.0001)
	}
}

func TestAnalyzeConditionalsSwitchProbability(t *testing.T) {
	body := `
switch (mode) {
	case 'a':
		runA();
		break;
	case 'b':
		runB();
		break;
}
`
	branches := switchBranches(body)
	require.Len(t, branches, 2)
	for _, b := range branches {
		assert.InDelta(t, 0.5, b.Probability, 0.0001)
	}
}
