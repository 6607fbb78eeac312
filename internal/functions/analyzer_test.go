package functions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeFunctionDeclaration(t *testing.T) {
	src := `
function add(a: number, b: number): number {
	return a + b;
}
`
	detail, ok := Analyze(src, "add", Options{})
	require.True(t, ok)
	require.Len(t, detail.Parameters, 2)
	assert.Equal(t, "a", detail.Parameters[0].Name)
	assert.Equal(t, "number", detail.Parameters[0].Type)
	assert.Equal(t, "number", detail.ReturnType)
	assert.Contains(t, detail.Body, "return a + b")
}

func TestAnalyzeArrowBinding(t *testing.T) {
	src := `const multiply = (a: number, b: number): number => a * b;`
	detail, ok := Analyze(src, "multiply", Options{})
	require.True(t, ok)
	assert.Equal(t, "number", detail.ReturnType)
	assert.Contains(t, detail.Body, "a * b")
}

func TestAnalyzeClassMethod(t *testing.T) {
	src := `
class Calculator {
	total: number = 0;

	add(value: number): void {
		this.total += value;
		this.log(value);
	}

	log(value: number): void {
		console.log(value);
	}
}
`
	detail, ok := Analyze(src, "Calculator.add", Options{})
	require.True(t, ok)
	assert.Equal(t, "Calculator", detail.ClassName)
	assert.Contains(t, detail.Calls, "log")
}

func TestAnalyzeRestAndDefaultParameters(t *testing.T) {
	src := `function build(name: string, count: number = 1, ...rest: string[]): void {}`
	detail, ok := Analyze(src, "build", Options{})
	require.True(t, ok)
	require.Len(t, detail.Parameters, 3)
	assert.Equal(t, "1", detail.Parameters[1].Default)
	assert.True(t, detail.Parameters[1].Optional)
	assert.True(t, detail.Parameters[2].Rest)
}

func TestAnalyzePrefersImplementationOverOverload(t *testing.T) {
	src := `
function identify(x: string): string;
function identify(x: number): number;
function identify(x: any): any {
	return x;
}
`
	detail, ok := Analyze(src, "identify", Options{IncludeOverloads: true})
	require.True(t, ok)
	assert.Contains(t, detail.Body, "return x")
	assert.Len(t, detail.Overloads, 2)
}

func TestAnalyzeExtractsCallsExcludingKeywords(t *testing.T) {
	src := `
function run() {
	if (true) {
		doWork();
	}
	this.finish();
}
`
	detail, ok := Analyze(src, "run", Options{})
	require.True(t, ok)
	assert.Contains(t, detail.Calls, "doWork")
	assert.Contains(t, detail.Calls, "finish")
	assert.NotContains(t, detail.Calls, "if")
}

func TestAnalyzeControlFlowSummary(t *testing.T) {
	src := `
function process(items: number[]): number {
	let total = 0;
	for (const item of items) {
		if (item > 0) {
			total += item;
		}
	}
	return total;
}
`
	detail, ok := Analyze(src, "process", Options{IncludeControlFlow: true})
	require.True(t, ok)
	require.NotNil(t, detail.ControlFlow)
	assert.True(t, detail.ControlFlow.HasConditional)
	assert.True(t, detail.ControlFlow.HasLoop)
}

func TestAnalyzeAsyncPatterns(t *testing.T) {
	src := `
async function fetchAll(urls: string[]): Promise<void> {
	await Promise.all(urls.map(u => fetch(u)));
}
`
	detail, ok := Analyze(src, "fetchAll", Options{IncludeAsync: true})
	require.True(t, ok)
	assert.True(t, detail.Async.UsesAwait)
	assert.Contains(t, detail.Async.UsesCombinators, "Promise.all")
}

func TestAnalyzeMissingFunctionReturnsFalse(t *testing.T) {
	_, ok := Analyze("const x = 1;", "missing", Options{})
	assert.False(t, ok)
}

func TestExtractTypesCollectsParameterAndReturnTypes(t *testing.T) {
	src := `function wrap(value: Partial<User>): Promise<User> { return Promise.resolve(value); }`
	detail, ok := Analyze(src, "wrap", Options{})
	require.True(t, ok)

	info := ExtractTypes(detail, "generics")
	require.Len(t, info.ParameterTypes, 1)
	require.NotNil(t, info.ReturnType)
	assert.Equal(t, "Promise", info.ReturnType.Name)
}
