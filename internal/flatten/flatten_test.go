package flatten_test

import (
	"testing"

	"github.com/cwbudde/go-rpal/internal/flatten"
	"github.com/cwbudde/go-rpal/internal/lexer"
	"github.com/cwbudde/go-rpal/internal/parser"
	"github.com/cwbudde/go-rpal/internal/standardize"
	"github.com/stretchr/testify/require"
)

func program(t *testing.T, src string) flatten.Program {
	t.Helper()
	p := parser.New(lexer.New(src))
	root := p.ParseProgram()
	require.Empty(t, p.Errors())
	std, err := standardize.Standardize(root)
	require.NoError(t, err)
	prog, err := flatten.Flatten(std)
	require.NoError(t, err)
	return prog
}

func TestFlattenSimpleLetAllocatesOneNestedCS(t *testing.T) {
	prog := program(t, `let x = 5 in x`)
	require.Len(t, prog, 2, "CS0 plus one lambda body")
	require.Contains(t, prog[0], flatten.Gamma{})
}

func TestFlattenLambdaEmitsLambdaWithFreshIndex(t *testing.T) {
	prog := program(t, `fn x . x + 1`)
	found := false
	for _, n := range prog[0] {
		if lam, ok := n.(flatten.Lambda); ok {
			found = true
			require.Equal(t, []string{"x"}, lam.Vars)
			require.Contains(t, prog, lam.CS)
		}
	}
	require.True(t, found, "expected a LAMBDA node in CS0")
}

func TestFlattenConditionalAllocatesTwoDeltasAndBeta(t *testing.T) {
	prog := program(t, `x gr 1 -> 1 | 2`)
	cs0 := prog[0]
	var deltas []flatten.Delta
	betaIdx := -1
	for i, n := range cs0 {
		switch v := n.(type) {
		case flatten.Delta:
			deltas = append(deltas, v)
		case flatten.Beta:
			betaIdx = i
		}
	}
	require.Len(t, deltas, 2)
	require.NotEqual(t, -1, betaIdx)
	// Condition must be flattened after BETA so it pops first.
	require.Greater(t, len(cs0), betaIdx+1)
	require.IsType(t, flatten.Operator{}, cs0[betaIdx+1])
}

func TestFlattenTauEmitsArityMarker(t *testing.T) {
	prog := program(t, `1, 2, 3`)
	require.IsType(t, flatten.Tau{N: 3}, prog[0][0])
}

func TestFlattenCommaLambdaIsMulti(t *testing.T) {
	prog := program(t, `let P (x,y) = x+y in P(3,4)`)
	var lam flatten.Lambda
	for _, n := range prog[0] {
		if l, ok := n.(flatten.Lambda); ok {
			lam = l
		}
	}
	require.True(t, lam.Multi)
	require.Equal(t, []string{"x", "y"}, lam.Vars)
}

func TestFlattenRecUsesYStarIdentifier(t *testing.T) {
	prog := program(t, `let rec F N = N eq 1 -> 1 | N * F(N-1) in F 5`)
	yStarSeen := false
	for _, cs := range prog {
		for _, n := range cs {
			if id, ok := n.(flatten.Identifier); ok && id.Name == "Y*" {
				yStarSeen = true
			}
		}
	}
	require.True(t, yStarSeen)
}

func TestRenderTupleHandlesNesting(t *testing.T) {
	elems := []flatten.Node{
		flatten.MakeInteger(1),
		flatten.Marker(2),
		flatten.MakeInteger(2),
		flatten.MakeInteger(3),
		flatten.MakeInteger(4),
	}
	require.Equal(t, "(1, (2, 3), 4)", flatten.RenderTuple(elems))
}
