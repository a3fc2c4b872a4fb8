// Package ast defines the tree node shared by the parse tree and the
// standardized tree (spec data model §3.1).
//
// A faithful port would use one tagged-union variant per label, as the
// design notes suggest; this module instead keeps the original's single
// flexible record (label + optional value + children), because the parser,
// standardizer, and flattener all walk the tree generically by label and
// gain nothing from per-label Go types that the original representation
// doesn't already give them. The tagged union re-appears where it matters:
// internal/flatten's Node interface, one variant per §3.3 machine-node kind.
package ast

import (
	"fmt"
	"strings"

	"github.com/cwbudde/go-rpal/internal/lexer"
)

// Leaf labels carry a Value; internal labels never do. This mirrors the
// input contract's leaf vocabulary (§6) plus the standardized form's leaves.
var leafLabels = map[string]bool{
	"identifier": true,
	"integer":    true,
	"string":     true,
	"true":       true,
	"false":      true,
	"nil":        true,
	"dummy":      true,
	"()":         true,
}

// Node is a single node of the parse tree or the standardized tree. It owns
// its children: deleting a subtree is just dropping the reference, Go's
// garbage collector reclaims the rest.
type Node struct {
	Label    string
	Value    string
	Children []*Node
	Pos      lexer.Position
}

// IsLeaf reports whether label belongs to the leaf vocabulary.
func (n *Node) IsLeaf() bool {
	return leafLabels[n.Label]
}

// Leaf builds a leaf node carrying Value.
func Leaf(label, value string, pos lexer.Position) *Node {
	return &Node{Label: label, Value: value, Pos: pos}
}

// Internal builds an internal node from its label, the given source position,
// and its ordered children. Callers pass the position where the construct's
// first token starts.
func Internal(label string, pos lexer.Position, children ...*Node) *Node {
	return &Node{Label: label, Children: children, Pos: pos}
}

// String renders the node and its subtree as one "label: value" line per
// node, indented four spaces per depth - the textual AST dump format used
// by the reference implementation's printAST and by this module's
// --dump-tree / --dump-standardized CLI flags.
func (n *Node) String() string {
	var sb strings.Builder
	n.writeIndented(&sb, 0)
	return sb.String()
}

func (n *Node) writeIndented(sb *strings.Builder, depth int) {
	sb.WriteString(strings.Repeat("    ", depth))
	sb.WriteString(n.Label)
	sb.WriteString(": ")
	sb.WriteString(n.Value)
	sb.WriteString("\n")
	for _, c := range n.Children {
		c.writeIndented(sb, depth+1)
	}
}

// Clone deep-copies the subtree rooted at n.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	cp := &Node{Label: n.Label, Value: n.Value, Pos: n.Pos}
	if len(n.Children) > 0 {
		cp.Children = make([]*Node, len(n.Children))
		for i, c := range n.Children {
			cp.Children[i] = c.Clone()
		}
	}
	return cp
}

// Arity returns the number of children.
func (n *Node) Arity() int { return len(n.Children) }

// Describe returns a short "label(arity)" tag used in structural error
// messages (§7 StandardizationError names the offending node label).
func (n *Node) Describe() string {
	return fmt.Sprintf("%s(%d)", n.Label, n.Arity())
}
