// Flatten implements the control structure flattener (spec §4.2): a
// depth-first walk of a standardized tree that allocates a fresh, numbered
// control structure for every lambda body and every conditional arm,
// mirroring the reference CSEMachine's createCS routine
// (original_source/CSEMachine.h) and the teacher's own two-pass
// tree-to-chunks compiler (internal/bytecode/compiler_core.go: "Compiler
// converts AST nodes into bytecode chunks").
package flatten

import (
	"github.com/cwbudde/go-rpal/internal/ast"
	rpalErrors "github.com/cwbudde/go-rpal/internal/errors"
)

// operatorLabels is the set of standardized operator labels the flattener
// emits as OPERATOR nodes; every other internal label must have been
// eliminated by standardization before reaching this package.
var operatorLabels = map[string]bool{
	"+": true, "-": true, "*": true, "/": true, "**": true,
	"neg": true, "not": true, "or": true, "&": true,
	"eq": true, "ne": true, "gr": true, "ge": true, "ls": true, "le": true,
	"aug": true,
}

// Program maps a control structure index to its ordered node sequence.
// CS0 holds the top-level expression.
type Program map[int][]Node

type flattener struct {
	program Program
	nextCS  int
}

// Flatten converts a standardized tree into an indexed Program rooted at
// CS0.
func Flatten(root *ast.Node) (Program, error) {
	f := &flattener{program: Program{0: {}}, nextCS: 1}
	if err := f.into(0, root); err != nil {
		return nil, err
	}
	return f.program, nil
}

func (f *flattener) emit(cs int, n Node) {
	f.program[cs] = append(f.program[cs], n)
}

func (f *flattener) alloc() int {
	cs := f.nextCS
	f.nextCS++
	f.program[cs] = []Node{}
	return cs
}

func (f *flattener) into(cs int, n *ast.Node) error {
	switch n.Label {
	case "identifier":
		f.emit(cs, Identifier{Name: n.Value})
		return nil

	case "integer":
		f.emit(cs, Integer{Text: n.Value})
		return nil

	case "string":
		f.emit(cs, String{Text: n.Value})
		return nil

	case "true", "false":
		f.emit(cs, Boolean{Value: n.Label == "true"})
		return nil

	case "nil":
		// No dedicated NIL machine node; the runtime IDENTIFIER lookup
		// fallback (spec §4.3.2) maps an unbound "nil" to LIST([]).
		f.emit(cs, Identifier{Name: "nil"})
		return nil

	case "dummy":
		// §3.3 has no DUMMY kind; the Print builtin table describes a
		// dummy value printing as the bare word "dummy", so it is carried
		// as a STRING leaf with that text.
		f.emit(cs, String{Text: "dummy"})
		return nil

	case "lambda":
		if len(n.Children) != 2 {
			return structErr(n, "lambda must have exactly 2 children after standardization")
		}
		vars, multi, err := bindVars(n.Children[0])
		if err != nil {
			return err
		}
		k := f.alloc()
		f.emit(cs, Lambda{Vars: vars, CS: k, Multi: multi})
		return f.into(k, n.Children[1])

	case "->":
		if len(n.Children) != 3 {
			return structErr(n, "-> must have exactly 3 children")
		}
		t := f.alloc()
		e := f.alloc()
		f.emit(cs, Delta{CS: t})
		f.emit(cs, Delta{CS: e})
		f.emit(cs, Beta{})
		if err := f.into(t, n.Children[1]); err != nil {
			return err
		}
		if err := f.into(e, n.Children[2]); err != nil {
			return err
		}
		// Condition is flattened last into cs, so it pops first at runtime.
		return f.into(cs, n.Children[0])

	case "tau":
		f.emit(cs, Tau{N: len(n.Children)})
		for _, c := range n.Children {
			if err := f.into(cs, c); err != nil {
				return err
			}
		}
		return nil

	case "gamma":
		if len(n.Children) != 2 {
			return structErr(n, "gamma must have exactly 2 children")
		}
		f.emit(cs, Gamma{})
		for _, c := range n.Children {
			if err := f.into(cs, c); err != nil {
				return err
			}
		}
		return nil

	default:
		if !operatorLabels[n.Label] {
			return structErr(n, "unexpected node after standardization: "+n.Label)
		}
		f.emit(cs, Operator{Symbol: n.Label})
		for _, c := range n.Children {
			if err := f.into(cs, c); err != nil {
				return err
			}
		}
		return nil
	}
}

// bindVars reads a lambda's bound-variable specification: a single
// identifier, the nullary "()" marker, or a comma-list of identifiers for
// destructuring binds.
func bindVars(spec *ast.Node) (vars []string, multi bool, err error) {
	switch spec.Label {
	case "identifier":
		return []string{spec.Value}, false, nil
	case "()":
		return []string{"()"}, false, nil
	case ",":
		names := make([]string, len(spec.Children))
		for i, c := range spec.Children {
			if c.Label != "identifier" {
				return nil, false, structErr(spec, "comma-list binder must be all identifiers")
			}
			names[i] = c.Value
		}
		return names, true, nil
	default:
		return nil, false, structErr(spec, "invalid lambda binder: "+spec.Label)
	}
}

func structErr(n *ast.Node, detail string) error {
	label := "<nil>"
	if n != nil {
		label = n.Label
	}
	return rpalErrors.New(rpalErrors.CategoryInvalidControl, label, detail)
}
