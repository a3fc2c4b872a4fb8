// Package standardize rewrites a parse tree into the canonical form consumed
// by the flattener and CSE machine (spec §4.1): a bottom-up tree rewrite
// that reduces the parser's node vocabulary down to
// {gamma, lambda, =, ->, tau, operators, leaves}.
//
// The rewrite table is grounded in the reference implementation's
// Tree::generate (original_source/tree.cpp), adapted to the node shapes this
// module's parser actually produces.
package standardize

import (
	"github.com/cwbudde/go-rpal/internal/ast"
	"github.com/cwbudde/go-rpal/internal/errors"
	"github.com/cwbudde/go-rpal/internal/lexer"
)

// canonicalLabels is the closed set of internal-node labels a standardized
// tree may use (spec §3.1 invariant), including the "," comma-list binder
// that a lambda or "=" may carry as its bound-variable specification.
var canonicalLabels = map[string]bool{
	"gamma": true, "lambda": true, "=": true, "->": true, "tau": true, ",": true,
	"+": true, "-": true, "*": true, "/": true, "**": true,
	"neg": true, "not": true, "or": true, "&": true,
	"eq": true, "ne": true, "gr": true, "ge": true, "ls": true, "le": true,
	"aug": true,
}

// identLeaf builds an identifier leaf, used for the synthetic Y* reference
// introduced by the `rec` rewrite.
func identLeaf(pos lexer.Position, name string) *ast.Node {
	return ast.Leaf("identifier", name, pos)
}

// Standardize returns the canonical form of root. Children are standardized
// before their parent (post-order), so every rewrite rule below can assume
// its operands are already canonical.
func Standardize(root *ast.Node) (*ast.Node, error) {
	if root == nil {
		return nil, nil
	}
	children := make([]*ast.Node, len(root.Children))
	for i, c := range root.Children {
		sc, err := Standardize(c)
		if err != nil {
			return nil, err
		}
		children[i] = sc
	}

	switch root.Label {
	case "let":
		if len(children) != 2 {
			return nil, structErr(root, "let requires 2 children")
		}
		decl, body := children[0], children[1]
		name, bound, err := splitEquals(root, decl)
		if err != nil {
			return nil, err
		}
		lambda := ast.Internal("lambda", root.Pos, name, body)
		return ast.Internal("gamma", root.Pos, lambda, bound), nil

	case "where":
		if len(children) != 2 {
			return nil, structErr(root, "where requires 2 children")
		}
		body, decl := children[0], children[1]
		name, bound, err := splitEquals(root, decl)
		if err != nil {
			return nil, err
		}
		lambda := ast.Internal("lambda", root.Pos, name, body)
		return ast.Internal("gamma", root.Pos, lambda, bound), nil

	case "fcn_form":
		if len(children) < 3 {
			return nil, structErr(root, "fcn_form requires a name, at least one parameter, and a body")
		}
		name := children[0]
		params := children[1 : len(children)-1]
		body := children[len(children)-1]
		curried := curryLambda(root.Pos, params, body)
		return ast.Internal("=", root.Pos, name, curried), nil

	case "lambda":
		if len(children) < 2 {
			return nil, structErr(root, "lambda requires at least a binder and a body")
		}
		if len(children) == 2 {
			return ast.Internal("lambda", root.Pos, children[0], children[1]), nil
		}
		params := children[:len(children)-1]
		body := children[len(children)-1]
		return curryLambda(root.Pos, params, body), nil

	case "within":
		if len(children) != 2 {
			return nil, structErr(root, "within requires 2 children")
		}
		x1, e1, err := splitEquals(root, children[0])
		if err != nil {
			return nil, err
		}
		x2, e2, err := splitEquals(root, children[1])
		if err != nil {
			return nil, err
		}
		inner := ast.Internal("gamma", root.Pos, ast.Internal("lambda", root.Pos, x1, e2), e1)
		return ast.Internal("=", root.Pos, x2, inner), nil

	case "@":
		if len(children) != 3 {
			return nil, structErr(root, "@ requires 3 children")
		}
		e1, n, e2 := children[0], children[1], children[2]
		inner := ast.Internal("gamma", root.Pos, n, e1)
		return ast.Internal("gamma", root.Pos, inner, e2), nil

	case "and":
		if len(children) < 2 {
			return nil, structErr(root, "and requires at least 2 declarations")
		}
		names := make([]*ast.Node, len(children))
		bounds := make([]*ast.Node, len(children))
		for i, decl := range children {
			n, e, err := splitEquals(root, decl)
			if err != nil {
				return nil, err
			}
			names[i] = n
			bounds[i] = e
		}
		commaNode := ast.Internal(",", root.Pos, names...)
		tauNode := ast.Internal("tau", root.Pos, bounds...)
		return ast.Internal("=", root.Pos, commaNode, tauNode), nil

	case "rec":
		if len(children) != 1 {
			return nil, structErr(root, "rec requires 1 declaration")
		}
		name, bound, err := splitEquals(root, children[0])
		if err != nil {
			return nil, err
		}
		yStar := identLeaf(root.Pos, "Y*")
		lambda := ast.Internal("lambda", root.Pos, name, bound)
		applied := ast.Internal("gamma", root.Pos, yStar, lambda)
		return ast.Internal("=", root.Pos, name, applied), nil

	default:
		if root.IsLeaf() {
			return root, nil
		}
		if len(children) > 0 {
			return ast.Internal(root.Label, root.Pos, children...), nil
		}
		return root, nil
	}
}

// curryLambda builds lambda(p0, lambda(p1, ... lambda(pn, body)...)) from an
// ordered parameter list, right-associating one parameter per level.
func curryLambda(pos lexer.Position, params []*ast.Node, body *ast.Node) *ast.Node {
	result := body
	for i := len(params) - 1; i >= 0; i-- {
		lvlPos := params[i].Pos
		result = ast.Internal("lambda", lvlPos, params[i], result)
	}
	if len(params) == 0 {
		return ast.Internal("lambda", pos, body)
	}
	return result
}

// splitEquals requires decl to already be a canonical `=` node (name spec,
// bound expression) and returns its two children. `=` nodes are already in
// the canonical vocabulary, so every declaration form (simple binding,
// comma-list simultaneous binding, rec, within's operands) must reduce to
// this shape by the time it reaches a rule that consumes it.
func splitEquals(at *ast.Node, decl *ast.Node) (*ast.Node, *ast.Node, error) {
	if decl == nil || decl.Label != "=" || len(decl.Children) != 2 {
		return nil, nil, structErr(at, "expected a '=' declaration, got "+describe(decl))
	}
	return decl.Children[0], decl.Children[1], nil
}

func describe(n *ast.Node) string {
	if n == nil {
		return "<nil>"
	}
	return n.Describe()
}

func structErr(at *ast.Node, detail string) error {
	label := "<nil>"
	if at != nil {
		label = at.Label
	}
	return errors.New(errors.CategoryStandardization, label, detail)
}

// IsCanonicalLabel reports whether label belongs to the standardized
// vocabulary; exposed for tests that assert the invariant in spec §3.1.
func IsCanonicalLabel(label string) bool {
	return canonicalLabels[label]
}
