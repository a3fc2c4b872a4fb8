// Package parser implements a recursive-descent parser for RPAL source,
// producing the parse tree described by the data model (spec §3.1).
//
// The grammar (E, Ew, T, Ta, Tc, B, Bt, Bs, Bp, A, At, Af, Ap, R, Rn, D, Da,
// Dr, Db, Vb, Vl) is grounded in the reference implementation's recursive
// descent parser (original_source/Parser.h), one Go method per production.
// Unlike the reference, each method directly builds and returns the node it
// produces instead of threading a side global stack through free functions -
// idiomatic Go favors return values over hidden mutable state, and the
// standardizer only cares about the resulting node shapes, which are
// unchanged from the original grammar.
package parser

import (
	"fmt"

	"github.com/cwbudde/go-rpal/internal/ast"
	"github.com/cwbudde/go-rpal/internal/lexer"
)

// Parser turns a token stream into a parse tree.
type Parser struct {
	lex    *lexer.Lexer
	cur    lexer.Token
	peek   lexer.Token
	errors []string
}

// New creates a Parser reading tokens from l.
func New(l *lexer.Lexer) *Parser {
	p := &Parser{lex: l}
	p.advance()
	p.advance()
	return p
}

// Errors returns the syntax errors accumulated while parsing.
func (p *Parser) Errors() []string { return p.errors }

func (p *Parser) advance() {
	p.cur = p.peek
	p.peek = p.lex.NextToken()
}

func (p *Parser) errorf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	p.errors = append(p.errors, fmt.Sprintf("%s at %s", msg, p.cur.Pos))
}

func (p *Parser) curIs(lit string) bool { return p.cur.Literal == lit }

func (p *Parser) expectLiteral(lit string) bool {
	if !p.curIs(lit) {
		p.errorf("Syntax Error: %q expected, got %q", lit, p.cur.Literal)
		return false
	}
	p.advance()
	return true
}

// ParseProgram parses a complete program: a single expression followed by
// end of file.
func (p *Parser) ParseProgram() *ast.Node {
	if p.cur.Type == lexer.EOF {
		return nil
	}
	root := p.parseE()
	if p.cur.Type != lexer.EOF {
		p.errorf("Syntax Error: end of file expected, got %q", p.cur.Literal)
	}
	return root
}

// startsRn reports whether the current token can begin an Rn production -
// used by R() to decide whether another gamma application follows.
func (p *Parser) startsRn() bool {
	switch p.cur.Type {
	case lexer.IDENT, lexer.INTEGER, lexer.STRING:
		return true
	case lexer.DELIMITER:
		return p.cur.Literal == "("
	}
	return false
}

// parseE parses `let X = E in P`, `fn V1 ... Vn . E`, or falls through to Ew.
func (p *Parser) parseE() *ast.Node {
	pos := p.cur.Pos
	switch {
	case p.cur.Type == lexer.KEYWORD && p.curIs("let"):
		p.advance()
		d := p.parseD()
		if !p.expectLiteral("in") {
			return d
		}
		body := p.parseE()
		return ast.Internal("let", pos, d, body)

	case p.cur.Type == lexer.KEYWORD && p.curIs("fn"):
		p.advance()
		var vars []*ast.Node
		for p.cur.Type == lexer.IDENT {
			vars = append(vars, p.parseVb())
		}
		if len(vars) == 0 {
			p.errorf("Syntax Error: at least one identifier expected")
		}
		if !p.expectLiteral(".") {
			return ast.Internal("lambda", pos, vars...)
		}
		body := p.parseE()
		return ast.Internal("lambda", pos, append(vars, body)...)

	default:
		return p.parseEw()
	}
}

// parseEw parses `T where Dr`.
func (p *Parser) parseEw() *ast.Node {
	pos := p.cur.Pos
	t := p.parseT()
	if p.curIs("where") {
		p.advance()
		d := p.parseDr()
		return ast.Internal("where", pos, t, d)
	}
	return t
}

// parseT parses comma-separated Ta forming a tau-tuple.
func (p *Parser) parseT() *ast.Node {
	pos := p.cur.Pos
	first := p.parseTa()
	if !p.curIs(",") {
		return first
	}
	parts := []*ast.Node{first}
	for p.curIs(",") {
		p.advance()
		parts = append(parts, p.parseTa())
	}
	return ast.Internal("tau", pos, parts...)
}

// parseTa parses a chain of `aug`-joined Tc.
func (p *Parser) parseTa() *ast.Node {
	pos := p.cur.Pos
	left := p.parseTc()
	for p.curIs("aug") {
		p.advance()
		right := p.parseTc()
		left = ast.Internal("aug", pos, left, right)
	}
	return left
}

// parseTc parses `B -> Tc | Tc`.
func (p *Parser) parseTc() *ast.Node {
	pos := p.cur.Pos
	b := p.parseB()
	if !p.curIs("->") {
		return b
	}
	p.advance()
	thenArm := p.parseTc()
	if !p.expectLiteral("|") {
		return ast.Internal("->", pos, b, thenArm, thenArm)
	}
	elseArm := p.parseTc()
	return ast.Internal("->", pos, b, thenArm, elseArm)
}

// parseB parses a chain of `or`-joined Bt.
func (p *Parser) parseB() *ast.Node {
	pos := p.cur.Pos
	left := p.parseBt()
	for p.curIs("or") {
		p.advance()
		right := p.parseBt()
		left = ast.Internal("or", pos, left, right)
	}
	return left
}

// parseBt parses a chain of `&`-joined Bs.
func (p *Parser) parseBt() *ast.Node {
	pos := p.cur.Pos
	left := p.parseBs()
	for p.curIs("&") {
		p.advance()
		right := p.parseBs()
		left = ast.Internal("&", pos, left, right)
	}
	return left
}

// parseBs parses `not Bp` or `Bp`.
func (p *Parser) parseBs() *ast.Node {
	pos := p.cur.Pos
	if p.curIs("not") {
		p.advance()
		operand := p.parseBp()
		return ast.Internal("not", pos, operand)
	}
	return p.parseBp()
}

var comparisonLabels = map[string]string{
	"gr": "gr", ">": "gr",
	"ge": "ge", ">=": "ge",
	"ls": "ls", "<": "ls",
	"le": "le", "<=": "le",
	"eq": "eq", "=": "eq",
	"ne": "ne", "!=": "ne",
}

// parseBp parses `A [ comparator A ]`.
func (p *Parser) parseBp() *ast.Node {
	pos := p.cur.Pos
	left := p.parseA()
	if label, ok := comparisonLabels[p.cur.Literal]; ok {
		p.advance()
		right := p.parseA()
		return ast.Internal(label, pos, left, right)
	}
	return left
}

// parseA parses a leading unary +/- followed by a chain of +/- At.
func (p *Parser) parseA() *ast.Node {
	pos := p.cur.Pos
	var left *ast.Node
	switch {
	case p.curIs("+"):
		p.advance()
		left = p.parseAt()
	case p.curIs("-"):
		p.advance()
		operand := p.parseAt()
		left = ast.Internal("neg", pos, operand)
	default:
		left = p.parseAt()
	}
	for p.curIs("+") || p.curIs("-") {
		op := p.cur.Literal
		opPos := p.cur.Pos
		p.advance()
		right := p.parseAt()
		left = ast.Internal(op, opPos, left, right)
	}
	return left
}

// parseAt parses a chain of `*`/`/`-joined Af.
func (p *Parser) parseAt() *ast.Node {
	left := p.parseAf()
	for p.curIs("*") || p.curIs("/") {
		op := p.cur.Literal
		opPos := p.cur.Pos
		p.advance()
		right := p.parseAf()
		left = ast.Internal(op, opPos, left, right)
	}
	return left
}

// parseAf parses a chain of `**`-joined Ap.
func (p *Parser) parseAf() *ast.Node {
	pos := p.cur.Pos
	left := p.parseAp()
	for p.curIs("**") {
		p.advance()
		right := p.parseAp()
		left = ast.Internal("**", pos, left, right)
	}
	return left
}

// parseAp parses `R (@ IDENT R)*`, the infix application form.
func (p *Parser) parseAp() *ast.Node {
	pos := p.cur.Pos
	left := p.parseR()
	for p.curIs("@") {
		p.advance()
		if p.cur.Type != lexer.IDENT {
			p.errorf("Syntax Error: identifier expected after '@'")
			break
		}
		name := ast.Leaf("identifier", p.cur.Literal, p.cur.Pos)
		p.advance()
		right := p.parseR()
		left = ast.Internal("@", pos, left, name, right)
	}
	return left
}

// parseR parses a chain of Rn forming gamma applications: `R1 R2 R3` means
// `gamma(gamma(R1, R2), R3)`.
func (p *Parser) parseR() *ast.Node {
	pos := p.cur.Pos
	left := p.parseRn()
	for p.startsRn() {
		right := p.parseRn()
		left = ast.Internal("gamma", pos, left, right)
	}
	return left
}

// parseRn parses a basic factor: identifier, integer, string, dummy,
// parenthesized expression.
func (p *Parser) parseRn() *ast.Node {
	tok := p.cur
	switch {
	case tok.Type == lexer.INTEGER:
		p.advance()
		return ast.Leaf("integer", tok.Literal, tok.Pos)
	case tok.Type == lexer.STRING:
		p.advance()
		return ast.Leaf("string", tok.Literal, tok.Pos)
	case tok.Type == lexer.IDENT && tok.Literal == "dummy":
		p.advance()
		return ast.Leaf("dummy", "", tok.Pos)
	case tok.Type == lexer.IDENT:
		p.advance()
		return ast.Leaf("identifier", tok.Literal, tok.Pos)
	case tok.Type == lexer.DELIMITER && tok.Literal == "(":
		p.advance()
		inner := p.parseE()
		p.expectLiteral(")")
		return inner
	default:
		p.errorf("Syntax Error: identifier, integer, string, '(' or dummy expected, got %q", tok.Literal)
		p.advance()
		return ast.Leaf("identifier", tok.Literal, tok.Pos)
	}
}

// parseD parses `Da ('within' D)?` (right-associative).
func (p *Parser) parseD() *ast.Node {
	pos := p.cur.Pos
	da := p.parseDa()
	if !p.curIs("within") {
		return da
	}
	p.advance()
	rest := p.parseD()
	return ast.Internal("within", pos, da, rest)
}

// parseDa parses a chain of `and`-joined Dr.
func (p *Parser) parseDa() *ast.Node {
	pos := p.cur.Pos
	first := p.parseDr()
	parts := []*ast.Node{first}
	for p.curIs("and") {
		p.advance()
		parts = append(parts, p.parseDr())
	}
	if len(parts) == 1 {
		return first
	}
	return ast.Internal("and", pos, parts...)
}

// parseDr parses `rec Db` or `Db`.
func (p *Parser) parseDr() *ast.Node {
	pos := p.cur.Pos
	if p.curIs("rec") {
		p.advance()
		db := p.parseDb()
		return ast.Internal("rec", pos, db)
	}
	return p.parseDb()
}

// parseDb parses a basic declaration: a parenthesized declaration, a
// comma-list simultaneous binding, a simple binding, or a function form.
func (p *Parser) parseDb() *ast.Node {
	pos := p.cur.Pos

	if p.cur.Type == lexer.DELIMITER && p.curIs("(") {
		p.advance()
		d := p.parseD()
		p.expectLiteral(")")
		return d
	}

	if p.cur.Type != lexer.IDENT {
		p.errorf("Syntax Error: '(' or identifier expected, got %q", p.cur.Literal)
		p.advance()
		return ast.Leaf("identifier", "", pos)
	}

	name := ast.Leaf("identifier", p.cur.Literal, p.cur.Pos)
	p.advance()

	if p.curIs(",") {
		p.advance()
		rest := p.parseVl()
		vars := append([]*ast.Node{name}, rest...)
		varsNode := ast.Internal(",", pos, vars...)
		p.expectLiteral("=")
		e := p.parseE()
		return ast.Internal("=", pos, varsNode, e)
	}

	var params []*ast.Node
	for p.cur.Type == lexer.IDENT {
		params = append(params, p.parseVb())
	}
	if p.cur.Type == lexer.DELIMITER && p.curIs("(") {
		params = append(params, p.parseVb())
	}

	p.expectLiteral("=")
	e := p.parseE()

	if len(params) == 0 {
		return ast.Internal("=", pos, name, e)
	}
	children := append([]*ast.Node{name}, params...)
	children = append(children, e)
	return ast.Internal("fcn_form", pos, children...)
}

// parseVb parses a bound-variable specification: identifier, `()`, or a
// parenthesized comma list of identifiers.
func (p *Parser) parseVb() *ast.Node {
	pos := p.cur.Pos

	if p.cur.Type == lexer.IDENT {
		name := p.cur.Literal
		p.advance()
		return ast.Leaf("identifier", name, pos)
	}

	if p.cur.Type != lexer.DELIMITER || !p.curIs("(") {
		p.errorf("Syntax Error: identifier or '(' expected, got %q", p.cur.Literal)
		p.advance()
		return ast.Leaf("identifier", "", pos)
	}
	p.advance()

	if p.cur.Type == lexer.DELIMITER && p.curIs(")") {
		p.advance()
		return ast.Leaf("()", "", pos)
	}

	if p.cur.Type != lexer.IDENT {
		p.errorf("Syntax Error: identifier or ')' expected, got %q", p.cur.Literal)
		return ast.Leaf("identifier", "", pos)
	}
	first := ast.Leaf("identifier", p.cur.Literal, p.cur.Pos)
	p.advance()

	if p.curIs(",") {
		p.advance()
		rest := p.parseVl()
		p.expectLiteral(")")
		all := append([]*ast.Node{first}, rest...)
		return ast.Internal(",", pos, all...)
	}

	p.expectLiteral(")")
	return first
}

// parseVl parses a comma-separated identifier list, the caller having
// already consumed the first comma.
func (p *Parser) parseVl() []*ast.Node {
	var out []*ast.Node
	if p.cur.Type != lexer.IDENT {
		p.errorf("Syntax Error: identifier expected, got %q", p.cur.Literal)
		return out
	}
	out = append(out, ast.Leaf("identifier", p.cur.Literal, p.cur.Pos))
	p.advance()
	for p.curIs(",") {
		p.advance()
		if p.cur.Type != lexer.IDENT {
			p.errorf("Syntax Error: identifier expected, got %q", p.cur.Literal)
			break
		}
		out = append(out, ast.Leaf("identifier", p.cur.Literal, p.cur.Pos))
		p.advance()
	}
	return out
}
