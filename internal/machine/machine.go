// Package machine implements the CSE (Control-Stack-Environment) abstract
// machine (spec §4.3): a stepwise reducer over a single control register
// and value stack, with an environment tree rooted at E0. The step rules,
// GAMMA application dispatch, and the EETA/Y* fixpoint dance are grounded
// directly in the reference implementation's main evaluation loop
// (original_source/CSEMachine.h, CSEMachine::evaluate), adapted to Go's
// explicit-error idiom in place of C++ exceptions, and to the teacher's own
// register-machine shape (internal/bytecode: a flat instruction stream plus
// an explicit value stack).
package machine

import (
	"fmt"
	"io"
	"strings"

	"github.com/cwbudde/go-rpal/internal/errors"
	"github.com/cwbudde/go-rpal/internal/flatten"
)

var builtinNames = map[string]bool{
	"Print": true, "print": true,
	"Isinteger": true, "Isstring": true, "Istuple": true, "Isempty": true,
	"Order": true, "Conc": true, "Stem": true, "Stern": true,
	"Y*": true, "ItoS": true,
}

// Machine holds the registers described in spec §3.6.
type Machine struct {
	program  flatten.Program
	control  []flatten.Node
	stack    []flatten.Node
	envs     []*Environment
	envStack []int
	out      io.Writer
	trace    io.Writer
}

// Option configures a Machine before Run starts evaluation.
type Option func(*Machine)

// WithTrace makes Run report every (control-node, env-index) step to w, the
// "evaluation trace" the spec OVERVIEW names as the stage between the
// flattened control structures and Print's side-effecting output.
func WithTrace(w io.Writer) Option {
	return func(m *Machine) { m.trace = w }
}

// Run evaluates program starting from CS0, writing Print/print output to
// out, and returns the final stack value (mainly useful to tests; the
// language itself has no implicit "return value" output — see spec §6).
func Run(program flatten.Program, out io.Writer, opts ...Option) (flatten.Node, error) {
	m := &Machine{
		program:  program,
		envs:     []*Environment{newEnvironment(0, nil)},
		envStack: []int{0},
		out:      out,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.control = append(m.control, flatten.Env{Index: 0})
	m.control = append(m.control, program[0]...)
	m.stack = append(m.stack, flatten.Env{Index: 0})

	for len(m.control) > 0 {
		t := m.popControl()
		if env, ok := t.(flatten.Env); ok && env.Index == 0 {
			break
		}
		if m.trace != nil {
			fmt.Fprintf(m.trace, "env=%d step=%s\n", m.currentEnv(), t)
		}
		if err := m.step(t); err != nil {
			return nil, err
		}
	}
	if len(m.stack) == 0 {
		return nil, nil
	}
	return m.stack[len(m.stack)-1], nil
}

func (m *Machine) step(t flatten.Node) error {
	switch n := t.(type) {
	case flatten.Integer, flatten.String, flatten.Boolean:
		m.push(n)
		return nil
	case flatten.Identifier:
		return m.identifierStep(n)
	case flatten.Lambda:
		m.push(n.WithEnv(m.currentEnv()))
		return nil
	case flatten.Gamma:
		return m.gammaStep()
	case flatten.Operator:
		return m.operatorStep(n)
	case flatten.Tau:
		return m.tauStep(n)
	case flatten.Beta:
		return m.betaStep()
	case flatten.Delta:
		return invalidControl("DELTA popped outside a BETA dispatch")
	case flatten.Env:
		return m.envExitStep()
	default:
		return invalidControl(fmt.Sprintf("unrecognized control node %v", t))
	}
}

func (m *Machine) currentEnv() int {
	return m.envStack[len(m.envStack)-1]
}

func (m *Machine) popControl() flatten.Node {
	last := len(m.control) - 1
	v := m.control[last]
	m.control = m.control[:last]
	return v
}

func (m *Machine) push(v flatten.Node) {
	m.stack = append(m.stack, v)
}

func (m *Machine) pop() (flatten.Node, error) {
	if len(m.stack) == 0 {
		return nil, invalidControl("stack underflow")
	}
	last := len(m.stack) - 1
	v := m.stack[last]
	m.stack = m.stack[:last]
	return v, nil
}

// identifierStep implements the IDENTIFIER row of the step table (§4.3.2):
// env lookup, then built-in name, then the "nil" fallback.
func (m *Machine) identifierStep(id flatten.Identifier) error {
	env := m.envs[m.currentEnv()]
	if v, ok := env.lookup(id.Name); ok {
		m.push(v)
		return nil
	}
	if builtinNames[id.Name] {
		m.push(id)
		return nil
	}
	if id.Name == "nil" {
		m.push(flatten.List{})
		return nil
	}
	return errors.New(errors.CategoryUnboundIdentifier, id.Name, "not bound, not a built-in, not nil")
}

// gammaStep implements §4.3.3: pop the rator and dispatch on its kind.
func (m *Machine) gammaStep() error {
	rator, err := m.pop()
	if err != nil {
		return err
	}
	switch r := rator.(type) {
	case flatten.Lambda:
		rand, err := m.pop()
		if err != nil {
			return err
		}
		return m.applyLambda(r, rand)
	case flatten.Eeta:
		return m.applyEeta(r)
	case flatten.List:
		return m.applyIndex(r)
	case flatten.Identifier:
		return m.applyBuiltin(r.Name)
	default:
		return errors.New(errors.CategoryInvalidApplication, describeNode(rator),
			"gamma rator is not a LAMBDA, EETA, built-in IDENTIFIER, or LIST")
	}
}

// applyLambda creates a new environment frame as the lambda's child, binds
// its parameters, and schedules the body for evaluation followed by an
// environment-exit marker (§4.3.3 item 1).
func (m *Machine) applyLambda(l flatten.Lambda, rand flatten.Node) error {
	parent := m.envs[l.Env]
	newIndex := len(m.envs)
	newEnv := newEnvironment(newIndex, parent)
	if err := bindParams(newEnv, l.Vars, l.Multi, rand); err != nil {
		return err
	}
	m.envs = append(m.envs, newEnv)
	m.envStack = append(m.envStack, newIndex)

	m.control = append(m.control, flatten.Env{Index: newIndex})
	m.push(flatten.Env{Index: newIndex})

	body, ok := m.program[l.CS]
	if !ok {
		return invalidControl(fmt.Sprintf("lambda references unknown control structure %d", l.CS))
	}
	m.control = append(m.control, body...)
	return nil
}

// applyEeta implements the Y* fixpoint re-entry (§4.3.3 item 2): push the
// EETA back (the real argument stays untouched beneath it on the stack),
// push an equivalent LAMBDA, and schedule two GAMMAs. The first GAMMA
// applies the lambda to the EETA itself (binding the recursive name to its
// own fixpoint); the second applies the resulting closure to the real
// argument still sitting on the stack.
func (m *Machine) applyEeta(e flatten.Eeta) error {
	m.push(e)
	m.push(flatten.Lambda{Vars: e.Vars, CS: e.CS, Env: e.Env, Multi: e.Multi, HasEnv: true})
	m.control = append(m.control, flatten.Gamma{}, flatten.Gamma{})
	return nil
}

// applyIndex implements LIST-as-function indexing (§4.3.3 item 3).
func (m *Machine) applyIndex(list flatten.List) error {
	rand, err := m.pop()
	if err != nil {
		return err
	}
	idxNode, ok := rand.(flatten.Integer)
	if !ok {
		return errors.New(errors.CategoryType, "gamma", "list index must be an integer")
	}
	index, convErr := idxNode.Int()
	if convErr != nil {
		return errors.New(errors.CategoryType, "gamma", "malformed integer index")
	}

	pos := 0
	current := int64(0)
	for pos < len(list.Elements) {
		current++
		if n, isMarker := flatten.AsMarker(list.Elements[pos]); isMarker {
			if current == index {
				nested := list.Elements[pos+1 : pos+1+n]
				m.push(flatten.List{Elements: nested})
				return nil
			}
			pos += 1 + n
			continue
		}
		if current == index {
			m.push(list.Elements[pos])
			return nil
		}
		pos++
	}
	return errors.New(errors.CategoryIndex, "gamma", fmt.Sprintf("index %d out of range", index))
}

// bindParams implements the binding rules of §4.3.3 item 1.
func bindParams(env *Environment, vars []string, multi bool, rand flatten.Node) error {
	if len(vars) == 1 && vars[0] == "()" {
		return nil
	}
	switch v := rand.(type) {
	case flatten.Integer, flatten.String, flatten.Boolean, flatten.Lambda, flatten.Eeta:
		env.bind(vars[0], rand)
		return nil
	case flatten.List:
		if !multi {
			env.bind(vars[0], rand)
			return nil
		}
		return destructure(env, vars, v)
	default:
		return errors.New(errors.CategoryInvalidApplication, "lambda", "unsupported argument kind")
	}
}

// destructure binds a comma-list of parameters against a tuple argument,
// walking the inline marker encoding (§3.5) one top-level slot at a time.
func destructure(env *Environment, vars []string, list flatten.List) error {
	pos := 0
	for _, name := range vars {
		if pos >= len(list.Elements) {
			return errors.New(errors.CategoryArityMismatch, "lambda", "too few tuple elements for parameter list")
		}
		if n, ok := flatten.AsMarker(list.Elements[pos]); ok {
			nested := list.Elements[pos+1 : pos+1+n]
			env.bind(name, flatten.List{Elements: nested})
			pos += 1 + n
			continue
		}
		env.bind(name, list.Elements[pos])
		pos++
	}
	if pos != len(list.Elements) {
		return errors.New(errors.CategoryArityMismatch, "lambda", "too many tuple elements for parameter list")
	}
	return nil
}

// tauStep implements TAU(n) (§4.3.2): pop n values and splice any popped
// LIST inline behind a length marker, per the §3.5 encoding.
func (m *Machine) tauStep(t flatten.Tau) error {
	vals := make([]flatten.Node, t.N)
	for i := 0; i < t.N; i++ {
		v, err := m.pop()
		if err != nil {
			return err
		}
		vals[i] = v
	}
	var elems []flatten.Node
	for _, v := range vals {
		elems = appendTupleSlot(elems, v)
	}
	m.push(flatten.List{Elements: elems})
	return nil
}

func appendTupleSlot(dst []flatten.Node, v flatten.Node) []flatten.Node {
	if lst, ok := v.(flatten.List); ok {
		dst = append(dst, flatten.Marker(len(lst.Elements)))
		return append(dst, lst.Elements...)
	}
	return append(dst, v)
}

// betaStep implements the BETA row of §4.3.2. Emission order places
// DELTA(e) nearer BETA than DELTA(t) (spec §4.2): true selects the farther,
// originally-then-flattened structure; false selects the nearer one. This
// resolves the prose's "most recently appended" phrasing by following the
// reference implementation's CSEMachine::evaluate BETA branch, which pops
// the near DELTA first and runs CSₜ on true, CSₑ on false (see DESIGN.md).
// Both arms must pop and discard the leftover DELTA *before* appending the
// selected branch's control structure — appending first would splice the
// branch's own body onto the tail of m.control and the following pop would
// consume the branch's last node instead of the leftover DELTA marker.
func (m *Machine) betaStep() error {
	test, err := m.pop()
	if err != nil {
		return err
	}
	truth, err := truthValue(test)
	if err != nil {
		return err
	}

	near, ok := m.popControlChecked()
	if !ok {
		return invalidControl("BETA missing its DELTA operands")
	}
	nearDelta, ok := near.(flatten.Delta)
	if !ok {
		return invalidControl("BETA operand is not DELTA")
	}

	if truth {
		far, ok := m.popControlChecked()
		if !ok {
			return invalidControl("BETA missing its DELTA operands")
		}
		farDelta, ok := far.(flatten.Delta)
		if !ok {
			return invalidControl("BETA operand is not DELTA")
		}
		return m.appendCS(farDelta.CS)
	}

	far, ok := m.popControlChecked()
	if !ok {
		return invalidControl("BETA missing its DELTA operands")
	}
	if _, ok := far.(flatten.Delta); !ok {
		return invalidControl("BETA operand is not DELTA")
	}
	return m.appendCS(nearDelta.CS)
}

func (m *Machine) popControlChecked() (flatten.Node, bool) {
	if len(m.control) == 0 {
		return nil, false
	}
	return m.popControl(), true
}

func (m *Machine) appendCS(cs int) error {
	body, ok := m.program[cs]
	if !ok {
		return invalidControl(fmt.Sprintf("BETA references unknown control structure %d", cs))
	}
	m.control = append(m.control, body...)
	return nil
}

func truthValue(v flatten.Node) (bool, error) {
	switch n := v.(type) {
	case flatten.Boolean:
		return n.Value, nil
	case flatten.Integer:
		i, err := n.Int()
		if err != nil {
			return false, errors.New(errors.CategoryType, "beta", "malformed integer test")
		}
		return i != 0, nil
	default:
		return false, errors.New(errors.CategoryType, "beta", "test value is not BOOLEAN or INTEGER")
	}
}

// envExitStep implements ENV(j), j>0 (§4.3.2): unwind the stack down to the
// matching ENV marker, discard it, and restore the original ordering.
func (m *Machine) envExitStep() error {
	var collected []flatten.Node
	for {
		v, err := m.pop()
		if err != nil {
			return invalidControl("ENV exit without a matching stack marker")
		}
		if _, ok := v.(flatten.Env); ok {
			break
		}
		collected = append(collected, v)
	}
	for i := len(collected) - 1; i >= 0; i-- {
		m.push(collected[i])
	}
	if len(m.envStack) == 0 {
		return invalidControl("env stack underflow on ENV exit")
	}
	m.envStack = m.envStack[:len(m.envStack)-1]
	return nil
}

func invalidControl(detail string) error {
	return errors.New(errors.CategoryInvalidControl, "control", detail)
}

func describeNode(n flatten.Node) string {
	if n == nil {
		return "<nil>"
	}
	return n.Kind().String()
}

// writeValue renders a value to the machine's output the way Print/print
// does (§4.3.3): tuples print bracketed, a literal "dummy" or a stray ENV
// marker prints as dummy, lambdas print as a closure tag, everything else
// as its textual value.
func (m *Machine) writeValue(v flatten.Node) {
	switch val := v.(type) {
	case flatten.List:
		fmt.Fprint(m.out, flatten.RenderTuple(val.Elements))
	case flatten.Env:
		fmt.Fprint(m.out, "dummy")
	case flatten.Lambda:
		fmt.Fprintf(m.out, "[lambda closure: %s: %d]", strings.Join(val.Vars, ","), val.CS)
	case flatten.String:
		if val.Text == "dummy" {
			fmt.Fprint(m.out, "dummy")
		} else {
			fmt.Fprint(m.out, val.Text)
		}
	default:
		fmt.Fprint(m.out, val.String())
	}
}
