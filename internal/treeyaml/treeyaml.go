// Package treeyaml provides a YAML-serializable mirror of the parse/
// standardized tree, used by `rpal ast --format=yaml` (SPEC_FULL.md §E.4).
// ast.Node is kept free of struct tags so the core data model stays exactly
// the shape spec §3.1 describes; this package supplies the marshaling
// boundary instead, the way the teacher isolates its own serialization
// concerns (internal/bytecode/serializer.go) from its core AST types.
package treeyaml

import (
	"github.com/cwbudde/go-rpal/internal/ast"
	"gopkg.in/yaml.v3"
)

// Tree is the YAML-serializable mirror of an ast.Node subtree.
type Tree struct {
	Label    string  `yaml:"label"`
	Value    string  `yaml:"value,omitempty"`
	Children []*Tree `yaml:"children,omitempty"`
}

// FromNode converts an ast.Node subtree into its YAML mirror.
func FromNode(n *ast.Node) *Tree {
	if n == nil {
		return nil
	}
	t := &Tree{Label: n.Label, Value: n.Value}
	if len(n.Children) > 0 {
		t.Children = make([]*Tree, len(n.Children))
		for i, c := range n.Children {
			t.Children[i] = FromNode(c)
		}
	}
	return t
}

// Marshal renders root as a YAML document.
func Marshal(root *ast.Node) ([]byte, error) {
	return yaml.Marshal(FromNode(root))
}
