package machine_test

import (
	"bytes"
	"testing"

	"github.com/cwbudde/go-rpal/internal/flatten"
	"github.com/cwbudde/go-rpal/internal/lexer"
	"github.com/cwbudde/go-rpal/internal/machine"
	"github.com/cwbudde/go-rpal/internal/parser"
	"github.com/cwbudde/go-rpal/internal/standardize"
	"github.com/stretchr/testify/require"
)

func runSource(t *testing.T, src string) string {
	t.Helper()
	p := parser.New(lexer.New(src))
	root := p.ParseProgram()
	require.Empty(t, p.Errors())
	std, err := standardize.Standardize(root)
	require.NoError(t, err)
	prog, err := flatten.Flatten(std)
	require.NoError(t, err)

	var out bytes.Buffer
	_, runErr := machine.Run(prog, &out)
	require.NoError(t, runErr)
	return out.String()
}

// The eight scenarios from the specification's worked-example table; every
// one is expected to reproduce stdout byte-for-byte.
func TestWorkedScenarios(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want string
	}{
		{"let_binding", `let x = 5 in Print x`, "5"},
		{"recursive_factorial", `let rec F N = N eq 1 -> 1 | N * F(N-1) in Print(F 5)`, "120"},
		{"tuple_destructure_param", `let P (x,y) = x+y in Print(P(3,4))`, "7"},
		{"order_of_nested_tuple", `Print(Order(1,(2,3),4,5))`, "4"},
		{"conc_strings", `Print(Conc "ab" "cd")`, "abcd"},
		{"comma_binds_tuple", `let T = 1,2,3 in Print T`, "(1, 2, 3)"},
		{"nested_tuple_literal", `Print( (1,(2,3),4) )`, "(1, (2, 3), 4)"},
		{"simple_function", `let f x = x*x in Print(f 9)`, "81"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			require.Equal(t, c.want, runSource(t, c.src))
		})
	}
}

func TestPrintDummyRendersBareWord(t *testing.T) {
	require.Equal(t, "dummy", runSource(t, `Print dummy`))
}

func TestPrintLambdaRendersClosureTag(t *testing.T) {
	out := runSource(t, `Print(fn x . x)`)
	require.Contains(t, out, "[lambda closure:")
}

// `rec` covers a single declaration, so the two functions are bound together
// as one recursive tuple. true/false lex as the integers 1/0, so Even 10
// prints 1.
func TestYStarEnablesMutualFixpointRecursion(t *testing.T) {
	src := `let rec EO = (fn N. N eq 0 -> true | (EO 2)(N-1)),
	                 (fn N. N eq 0 -> false | (EO 1)(N-1))
	         in Print((EO 1) 10)`
	require.Equal(t, "1", runSource(t, src))
}

func TestLogicalOperatorsCombineBooleans(t *testing.T) {
	require.Equal(t, "true", runSource(t, `Print((1 eq 1) or (1 eq 2))`))
	require.Equal(t, "false", runSource(t, `Print((1 eq 1) & (1 eq 2))`))
}

func TestDivisionByZeroIsARuntimeError(t *testing.T) {
	p := parser.New(lexer.New(`Print(1/0)`))
	root := p.ParseProgram()
	require.Empty(t, p.Errors())
	std, err := standardize.Standardize(root)
	require.NoError(t, err)
	prog, err := flatten.Flatten(std)
	require.NoError(t, err)

	var out bytes.Buffer
	_, runErr := machine.Run(prog, &out)
	require.Error(t, runErr)
}

func TestIndexingATupleByGammaApplication(t *testing.T) {
	require.Equal(t, "2", runSource(t, `let T = 1,2,3 in Print(T 2)`))
}

func TestStemAndSternSplitAString(t *testing.T) {
	require.Equal(t, "h", runSource(t, `Print(Stem "hello")`))
	require.Equal(t, "ello", runSource(t, `Print(Stern "hello")`))
}

func TestIsIntegerIsStringIsTuplePredicates(t *testing.T) {
	require.Equal(t, "true", runSource(t, `Print(Isinteger 5)`))
	require.Equal(t, "true", runSource(t, `Print(Isstring "x")`))
	require.Equal(t, "true", runSource(t, `Print(Istuple(1,2))`))
	require.Equal(t, "false", runSource(t, `Print(Isinteger "x")`))
}

func TestIsemptyOnNilAndNonEmptyTuple(t *testing.T) {
	require.Equal(t, "true", runSource(t, `Print(Isempty nil)`))
	require.Equal(t, "false", runSource(t, `Print(Isempty(1,2))`))
}

func TestItoSConvertsIntegerToString(t *testing.T) {
	require.Equal(t, "42", runSource(t, `Print(ItoS 42)`))
}
