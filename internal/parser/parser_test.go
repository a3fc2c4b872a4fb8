package parser_test

import (
	"testing"

	"github.com/cwbudde/go-rpal/internal/lexer"
	"github.com/cwbudde/go-rpal/internal/parser"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, src string) *parseResult {
	t.Helper()
	l := lexer.New(src)
	p := parser.New(l)
	root := p.ParseProgram()
	require.Empty(t, p.Errors(), "unexpected parse errors: %v", p.Errors())
	return &parseResult{root}
}

type parseResult struct {
	root interface {
		String() string
	}
}

func TestParseLet(t *testing.T) {
	r := parse(t, `let x = 5 in Print x`)
	require.Contains(t, r.root.String(), "let:")
}

func TestParseMultiParamLambda(t *testing.T) {
	r := parse(t, `fn x y . x + y`)
	require.Contains(t, r.root.String(), "lambda:")
}

func TestParseConditional(t *testing.T) {
	r := parse(t, `x gr 1 -> 1 | 2`)
	require.Contains(t, r.root.String(), "->:")
}

func TestParseTauTuple(t *testing.T) {
	r := parse(t, `1, 2, 3`)
	require.Contains(t, r.root.String(), "tau:")
}

func TestParseFcnForm(t *testing.T) {
	r := parse(t, `let P x y = x + y in P 3 4`)
	require.Contains(t, r.root.String(), "fcn_form:")
}

func TestParseRecDeclaration(t *testing.T) {
	r := parse(t, `let rec F N = N eq 1 -> 1 | N * F(N-1) in F 5`)
	require.Contains(t, r.root.String(), "rec:")
}

func TestParseWithin(t *testing.T) {
	r := parse(t, `let x = 1 within y = 2 in y`)
	require.Contains(t, r.root.String(), "within:")
}

func TestParseAndDeclaration(t *testing.T) {
	r := parse(t, `let x = 1 and y = 2 in x + y`)
	require.Contains(t, r.root.String(), "and:")
}

func TestParseCommaParamLambda(t *testing.T) {
	r := parse(t, `let P (x,y) = x+y in P(3,4)`)
	require.Contains(t, r.root.String(), "fcn_form:")
}

func TestParseErrorReported(t *testing.T) {
	l := lexer.New(`let x 5 in x`)
	p := parser.New(l)
	p.ParseProgram()
	require.NotEmpty(t, p.Errors())
}
