package lexer_test

import (
	"testing"

	"github.com/cwbudde/go-rpal/internal/lexer"
	"github.com/stretchr/testify/require"
)

func tokens(src string) []lexer.Token {
	l := lexer.New(src)
	var out []lexer.Token
	for {
		tok := l.NextToken()
		out = append(out, tok)
		if tok.Type == lexer.EOF {
			return out
		}
	}
}

func TestLexerBasic(t *testing.T) {
	toks := tokens(`let x = 5 in Print x`)
	want := []struct {
		typ lexer.TokenType
		lit string
	}{
		{lexer.KEYWORD, "let"},
		{lexer.IDENT, "x"},
		{lexer.OPERATOR, "="},
		{lexer.INTEGER, "5"},
		{lexer.KEYWORD, "in"},
		{lexer.IDENT, "Print"},
		{lexer.IDENT, "x"},
		{lexer.EOF, ""},
	}
	require.Len(t, toks, len(want))
	for i, w := range want {
		require.Equalf(t, w.typ, toks[i].Type, "token %d literal %q", i, toks[i].Literal)
		require.Equal(t, w.lit, toks[i].Literal)
	}
}

func TestLexerBooleanFolding(t *testing.T) {
	toks := tokens(`true false`)
	require.Equal(t, lexer.INTEGER, toks[0].Type)
	require.Equal(t, "1", toks[0].Literal)
	require.Equal(t, lexer.INTEGER, toks[1].Type)
	require.Equal(t, "0", toks[1].Literal)
}

func TestLexerWordOperators(t *testing.T) {
	toks := tokens(`a gr b and not c`)
	require.Equal(t, lexer.OPERATOR, toks[1].Type)
	require.Equal(t, "gr", toks[1].Literal)
	require.Equal(t, lexer.OPERATOR, toks[3].Type)
	require.Equal(t, "and", toks[3].Literal)
}

func TestLexerCommaNeverMerges(t *testing.T) {
	toks := tokens(`a,b`)
	require.Equal(t, lexer.IDENT, toks[0].Type)
	require.Equal(t, lexer.OPERATOR, toks[1].Type)
	require.Equal(t, ",", toks[1].Literal)
	require.Equal(t, lexer.IDENT, toks[2].Type)
}

func TestLexerMultiCharOperator(t *testing.T) {
	toks := tokens(`x ->y`)
	require.Equal(t, "->", toks[1].Literal)
}

func TestLexerStringEscapes(t *testing.T) {
	toks := tokens(`'a\tb\nc\\d\'e'`)
	require.Equal(t, lexer.STRING, toks[0].Type)
	require.Equal(t, "a\tb\nc\\d'e", toks[0].Literal)
}

func TestLexerLineComment(t *testing.T) {
	toks := tokens("let x = 1 // a comment\nin x")
	require.Equal(t, lexer.KEYWORD, toks[0].Type)
	found := false
	for _, tok := range toks {
		if tok.Type == lexer.KEYWORD && tok.Literal == "in" {
			found = true
		}
	}
	require.True(t, found)
}

func TestLexerPositions(t *testing.T) {
	toks := tokens("ab\ncd")
	require.Equal(t, 1, toks[0].Pos.Line)
	require.Equal(t, 2, toks[1].Pos.Line)
}
