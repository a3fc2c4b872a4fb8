package cmd

import (
	"fmt"
	"os"

	rpalerrors "github.com/cwbudde/go-rpal/internal/errors"
	"github.com/cwbudde/go-rpal/internal/flatten"
	"github.com/cwbudde/go-rpal/internal/lexer"
	"github.com/cwbudde/go-rpal/internal/machine"
	"github.com/cwbudde/go-rpal/internal/parser"
	"github.com/cwbudde/go-rpal/internal/standardize"
	"github.com/spf13/cobra"
)

var (
	evalExpr         string
	dumpTree         bool
	dumpStandardized bool
	traceEval        bool
)

var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Run an RPAL program",
	Long: `Execute an RPAL program from a file or inline expression.

Examples:
  rpal run factorial.rpal
  rpal run -e "let x = 5 in Print x"
  rpal run --dump-tree --dump-standardized factorial.rpal`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScript,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&evalExpr, "eval", "e", "", "evaluate inline code instead of reading from file")
	runCmd.Flags().BoolVar(&dumpTree, "dump-tree", false, "dump the raw parse tree before standardization")
	runCmd.Flags().BoolVar(&dumpStandardized, "dump-standardized", false, "dump the standardized tree before flattening")
	runCmd.Flags().BoolVar(&traceEval, "trace", false, "trace every CSE machine step to stderr")
}

func runScript(_ *cobra.Command, args []string) error {
	input, filename, err := readSource(args)
	if err != nil {
		return err
	}

	p := parser.New(lexer.New(input))
	root := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		compilerErrs := rpalerrors.FromStringErrors(errs, input, filename)
		fmt.Fprintln(os.Stderr, rpalerrors.FormatErrors(compilerErrs, false))
		return fmt.Errorf("parsing %s failed with %d error(s)", filename, len(errs))
	}

	if dumpTree {
		fmt.Println("Parse tree:")
		fmt.Println(root.String())
	}

	std, err := standardize.Standardize(root)
	if err != nil {
		return fmt.Errorf("standardization failed: %w", err)
	}

	if dumpStandardized {
		fmt.Println("Standardized tree:")
		fmt.Println(std.String())
	}

	prog, err := flatten.Flatten(std)
	if err != nil {
		return fmt.Errorf("flattening failed: %w", err)
	}

	var opts []machine.Option
	if traceEval {
		opts = append(opts, machine.WithTrace(os.Stderr))
	}
	if _, err := machine.Run(prog, os.Stdout, opts...); err != nil {
		return fmt.Errorf("evaluation failed: %w", err)
	}
	return nil
}

func readSource(args []string) (input, filename string, err error) {
	if evalExpr != "" {
		return evalExpr, "<eval>", nil
	}
	if len(args) != 1 {
		return "", "", fmt.Errorf("either provide a file path or use -e flag for inline code")
	}
	filename = args[0]
	content, err := os.ReadFile(filename)
	if err != nil {
		return "", "", fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	return string(content), filename, nil
}
