// Built-in operators and built-in functions (spec §4.3.2 OPERATOR row and
// §4.3.3 item 4). The Conc extra-control-pop quirk and the uniform
// pop-two-push-back-one shape of the unary operators are grounded literally
// in the reference implementation (original_source/CSEMachine.h builtin
// dispatch, original_source/BOP/binaryOP.cpp for operand ordering) per the
// spec's own instruction to preserve this documented behavior.
package machine

import (
	"github.com/cwbudde/go-rpal/internal/errors"
	"github.com/cwbudde/go-rpal/internal/flatten"
)

// operatorStep implements the OPERATOR row: every operator pops exactly two
// stack values (val1 = top/left, val2 = next/right, per BOP/binaryOP.cpp's
// op(type, val_1, val_2) computing val_1 OP val_2). Unary operators (neg,
// not) use only val1 and push val2 back unchanged, matching the reference
// machine's uniform arity-two pop convention.
func (m *Machine) operatorStep(op flatten.Operator) error {
	val1, err := m.pop()
	if err != nil {
		return err
	}
	val2, err := m.pop()
	if err != nil {
		return err
	}

	switch op.Symbol {
	case "neg":
		m.push(val2)
		a, err := intOf(val1)
		if err != nil {
			return err
		}
		m.push(flatten.MakeInteger(-a))
		return nil

	case "not":
		m.push(val2)
		a, err := boolOf(val1)
		if err != nil {
			return err
		}
		m.push(flatten.Boolean{Value: !a})
		return nil

	case "+", "-", "*", "/", "**":
		a, err := intOf(val1)
		if err != nil {
			return err
		}
		b, err := intOf(val2)
		if err != nil {
			return err
		}
		result, err := arith(op.Symbol, a, b)
		if err != nil {
			return err
		}
		m.push(flatten.MakeInteger(result))
		return nil

	case "or", "&":
		a, err := boolOf(val1)
		if err != nil {
			return err
		}
		b, err := boolOf(val2)
		if err != nil {
			return err
		}
		if op.Symbol == "or" {
			m.push(flatten.Boolean{Value: a || b})
		} else {
			m.push(flatten.Boolean{Value: a && b})
		}
		return nil

	case "eq", "ne", "gr", "ge", "ls", "le":
		a, err := intOf(val1)
		if err != nil {
			return err
		}
		b, err := intOf(val2)
		if err != nil {
			return err
		}
		m.push(flatten.Boolean{Value: compare(op.Symbol, a, b)})
		return nil

	case "aug":
		list, ok := val1.(flatten.List)
		if !ok {
			return errors.New(errors.CategoryType, "aug", "left operand must be a tuple")
		}
		elems := append(append([]flatten.Node{}, list.Elements...), appendTupleSlot(nil, val2)...)
		m.push(flatten.List{Elements: elems})
		return nil

	default:
		return invalidControl("unrecognized operator " + op.Symbol)
	}
}

func intOf(n flatten.Node) (int64, error) {
	i, ok := n.(flatten.Integer)
	if !ok {
		return 0, errors.New(errors.CategoryType, "operator", "expected an integer operand")
	}
	v, err := i.Int()
	if err != nil {
		return 0, errors.New(errors.CategoryType, "operator", "malformed integer literal")
	}
	return v, nil
}

func boolOf(n flatten.Node) (bool, error) {
	b, ok := n.(flatten.Boolean)
	if !ok {
		return false, errors.New(errors.CategoryType, "operator", "expected a boolean operand")
	}
	return b.Value, nil
}

func arith(symbol string, a, b int64) (int64, error) {
	switch symbol {
	case "+":
		return a + b, nil
	case "-":
		return a - b, nil
	case "*":
		return a * b, nil
	case "/":
		if b == 0 {
			return 0, errors.New(errors.CategoryDivByZero, "/", "division by zero")
		}
		return a / b, nil
	case "**":
		return intPow(a, b), nil
	default:
		return 0, invalidControl("unrecognized arithmetic operator " + symbol)
	}
}

func intPow(base, exp int64) int64 {
	if exp < 0 {
		return 0
	}
	result := int64(1)
	for ; exp > 0; exp-- {
		result *= base
	}
	return result
}

func compare(symbol string, a, b int64) bool {
	switch symbol {
	case "eq":
		return a == b
	case "ne":
		return a != b
	case "gr":
		return a > b
	case "ge":
		return a >= b
	case "ls":
		return a < b
	case "le":
		return a <= b
	default:
		return false
	}
}

// applyBuiltin implements §4.3.3 item 4: the fixed built-in function table.
func (m *Machine) applyBuiltin(name string) error {
	switch name {
	case "Print", "print":
		v, err := m.pop()
		if err != nil {
			return err
		}
		m.writeValue(v)
		return nil

	case "Isinteger":
		v, err := m.pop()
		if err != nil {
			return err
		}
		_, ok := v.(flatten.Integer)
		m.push(flatten.Boolean{Value: ok})
		return nil

	case "Isstring":
		v, err := m.pop()
		if err != nil {
			return err
		}
		_, ok := v.(flatten.String)
		m.push(flatten.Boolean{Value: ok})
		return nil

	case "Istuple":
		v, err := m.pop()
		if err != nil {
			return err
		}
		_, ok := v.(flatten.List)
		m.push(flatten.Boolean{Value: ok})
		return nil

	case "Isempty":
		v, err := m.pop()
		if err != nil {
			return err
		}
		lst, ok := v.(flatten.List)
		if !ok {
			return errors.New(errors.CategoryType, "Isempty", "argument must be a tuple")
		}
		m.push(flatten.Boolean{Value: len(lst.Elements) == 0})
		return nil

	case "Order":
		v, err := m.pop()
		if err != nil {
			return err
		}
		lst, ok := v.(flatten.List)
		if !ok {
			return errors.New(errors.CategoryType, "Order", "argument must be a tuple")
		}
		m.push(flatten.MakeInteger(int64(logicalLen(lst.Elements))))
		return nil

	case "Conc":
		first, err := m.pop()
		if err != nil {
			return err
		}
		second, err := m.pop()
		if err != nil {
			return err
		}
		// Historical quirk documented in spec §4.3.3/§9: Conc also discards
		// the next CONTROL-register item (the trailing partial-application
		// GAMMA left over from curried application).
		if len(m.control) > 0 {
			m.control = m.control[:len(m.control)-1]
		}
		fs, ok := first.(flatten.String)
		if !ok {
			return errors.New(errors.CategoryType, "Conc", "first argument must be a string")
		}
		var tail string
		switch s := second.(type) {
		case flatten.String:
			tail = s.Text
		case flatten.Integer:
			tail = s.Text
		default:
			return errors.New(errors.CategoryType, "Conc", "second argument must be a string or integer")
		}
		m.push(flatten.String{Text: fs.Text + tail})
		return nil

	case "Stem":
		v, err := m.pop()
		if err != nil {
			return err
		}
		s, ok := v.(flatten.String)
		if !ok {
			return errors.New(errors.CategoryType, "Stem", "argument must be a string")
		}
		if len(s.Text) == 0 {
			m.push(flatten.String{Text: ""})
		} else {
			m.push(flatten.String{Text: s.Text[:1]})
		}
		return nil

	case "Stern":
		v, err := m.pop()
		if err != nil {
			return err
		}
		s, ok := v.(flatten.String)
		if !ok {
			return errors.New(errors.CategoryType, "Stern", "argument must be a string")
		}
		if len(s.Text) <= 1 {
			m.push(flatten.String{Text: ""})
		} else {
			m.push(flatten.String{Text: s.Text[1:]})
		}
		return nil

	case "Y*":
		v, err := m.pop()
		if err != nil {
			return err
		}
		l, ok := v.(flatten.Lambda)
		if !ok {
			return errors.New(errors.CategoryType, "Y*", "argument must be a lambda")
		}
		m.push(flatten.Eeta{Vars: l.Vars, CS: l.CS, Env: l.Env, Multi: l.Multi})
		return nil

	case "ItoS":
		v, err := m.pop()
		if err != nil {
			return err
		}
		n, ok := v.(flatten.Integer)
		if !ok {
			return errors.New(errors.CategoryType, "ItoS", "argument must be an integer")
		}
		m.push(flatten.String{Text: n.Text})
		return nil

	default:
		return errors.New(errors.CategoryInvalidApplication, name, "not a recognized built-in")
	}
}

// logicalLen counts top-level tuple slots, collapsing each nested-tuple
// marker run into a single slot (spec §3.5 encoding).
func logicalLen(elements []flatten.Node) int {
	count := 0
	pos := 0
	for pos < len(elements) {
		count++
		if n, ok := flatten.AsMarker(elements[pos]); ok {
			pos += 1 + n
			continue
		}
		pos++
	}
	return count
}
