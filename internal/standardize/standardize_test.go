package standardize_test

import (
	"testing"

	"github.com/cwbudde/go-rpal/internal/ast"
	"github.com/cwbudde/go-rpal/internal/lexer"
	"github.com/cwbudde/go-rpal/internal/parser"
	"github.com/cwbudde/go-rpal/internal/standardize"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, src string) *ast.Node {
	t.Helper()
	p := parser.New(lexer.New(src))
	root := p.ParseProgram()
	require.Empty(t, p.Errors())
	return root
}

// assertCanonical walks a standardized tree and fails if any internal node
// uses a label outside the closed canonical vocabulary (spec §3.1).
func assertCanonical(t *testing.T, n *ast.Node) {
	t.Helper()
	if n == nil {
		return
	}
	if !n.IsLeaf() {
		require.True(t, standardize.IsCanonicalLabel(n.Label), "non-canonical label %q", n.Label)
	}
	for _, c := range n.Children {
		assertCanonical(t, c)
	}
}

func TestLetRewritesToGammaOfLambda(t *testing.T) {
	std, err := standardize.Standardize(parse(t, `let x = 5 in x`))
	require.NoError(t, err)
	require.Equal(t, "gamma", std.Label)
	require.Len(t, std.Children, 2)
	require.Equal(t, "lambda", std.Children[0].Label)
	assertCanonical(t, std)
}

func TestWhereRewritesToGammaOfLambda(t *testing.T) {
	std, err := standardize.Standardize(parse(t, `x where x = 5`))
	require.NoError(t, err)
	require.Equal(t, "gamma", std.Label)
	assertCanonical(t, std)
}

func TestFcnFormCurriesMultipleParameters(t *testing.T) {
	std, err := standardize.Standardize(parse(t, `let add x y = x + y in add 1 2`))
	require.NoError(t, err)
	// The let's bound declaration is add's curried definition: = add (lambda x (lambda y ...))
	assertCanonical(t, std)
	require.Equal(t, "gamma", std.Label)
	bound := std.Children[1]
	require.Equal(t, "lambda", bound.Label)
	require.Equal(t, "lambda", bound.Children[1].Label, "second parameter curries into a nested lambda")
}

func TestRecInjectsYStarApplication(t *testing.T) {
	std, err := standardize.Standardize(parse(t, `let rec F N = N eq 1 -> 1 | N * F(N-1) in F 5`))
	require.NoError(t, err)
	assertCanonical(t, std)

	bound := std.Children[1] // the rec declaration's bound side, after let -> gamma(lambda, bound)
	require.Equal(t, "gamma", bound.Label)
	require.Equal(t, "identifier", bound.Children[0].Label)
	require.Equal(t, "Y*", bound.Children[0].Value)
}

func TestAndCombinesSimultaneousDeclarationsIntoTau(t *testing.T) {
	std, err := standardize.Standardize(parse(t, `let rec Even N = N eq 0 -> true | Odd(N-1) and Odd N = N eq 0 -> false | Even(N-1) in Even 4`))
	require.NoError(t, err)
	assertCanonical(t, std)
}

func TestWithinChainsTwoDeclarations(t *testing.T) {
	std, err := standardize.Standardize(parse(t, `let a = 1 within b = a + 1 in b`))
	require.NoError(t, err)
	assertCanonical(t, std)
}

func TestAtInfixProducesNestedGammas(t *testing.T) {
	std, err := standardize.Standardize(parse(t, `1 @ f 2`))
	require.NoError(t, err)
	require.Equal(t, "gamma", std.Label)
	assertCanonical(t, std)
}

func TestTauAndOperatorsPassThroughCanonical(t *testing.T) {
	std, err := standardize.Standardize(parse(t, `1, 2, 3`))
	require.NoError(t, err)
	require.Equal(t, "tau", std.Label)
	assertCanonical(t, std)
}

func TestConditionalStaysCanonical(t *testing.T) {
	std, err := standardize.Standardize(parse(t, `x gr 1 -> 1 | 2`))
	require.NoError(t, err)
	require.Equal(t, "->", std.Label)
	assertCanonical(t, std)
}

func TestSplitEqualsRejectsMalformedDeclaration(t *testing.T) {
	// A hand-built tree feeding `let` a non-"=" declaration exercises the
	// structural-error path that a well-formed parse can never reach.
	pos := lexer.Position{}
	bogusDecl := ast.Leaf("identifier", "x", pos)
	body := ast.Leaf("identifier", "x", pos)
	letNode := ast.Internal("let", pos, bogusDecl, body)

	_, err := standardize.Standardize(letNode)
	require.Error(t, err)
}
