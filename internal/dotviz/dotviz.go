// Package dotviz renders a parse/standardized tree as a Graphviz DOT digraph
// (spec SPEC_FULL.md §E.3 item 1), grounded directly in the reference
// implementation's generateDotFile/generateDotFileHelper
// (original_source/main.cpp). Go's ecosystem has no dominant DOT-emission
// library in this corpus, so like the teacher's own internal/pkg/printer
// pretty-printer, this is hand-emitted with fmt/strings.Builder — see
// DESIGN.md for why no third-party dep fits this small, fixed textual
// format.
package dotviz

import (
	"fmt"
	"strings"

	"github.com/cwbudde/go-rpal/internal/ast"
)

// Render writes root as a "digraph Tree {...}" document, one styled node per
// tree node plus parent->child edges, matching the original's two-tone
// label/value coloring and light-gray/silver fill distinction for
// value-less internal nodes.
func Render(root *ast.Node) string {
	var sb strings.Builder
	sb.WriteString("digraph Tree {\n")
	next := 0
	writeNode(&sb, root, -1, &next)
	sb.WriteString("}\n")
	return sb.String()
}

func writeNode(sb *strings.Builder, n *ast.Node, parent int, next *int) int {
	current := *next
	*next++

	fill := "#EEEEEE"
	if n.Value == "" {
		fill = "#DDDDDD"
	}
	label := escapeLabel(n.Label)
	value := n.Value
	if label == "" {
		label = "&nbsp;"
	}
	if value == "" {
		value = "&nbsp;"
	}
	value = strings.ReplaceAll(value, "\n", "\\n")

	fmt.Fprintf(sb, "    node%d [label=<<font color=\"darkorange\">%s</font><br/><font color=\"darkred\">%s</font>>, style=filled, fillcolor=\"%s\"];\n",
		current, label, value, fill)
	if current != 0 && parent != -1 {
		fmt.Fprintf(sb, "    node%d -> node%d;\n", parent, current)
	}

	for _, c := range n.Children {
		*next = writeNode(sb, c, current, next)
	}
	return *next
}

func escapeLabel(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}
