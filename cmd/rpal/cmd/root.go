// Package cmd implements the rpal CLI (SPEC_FULL.md §E.4), built with
// github.com/spf13/cobra the way the teacher's cmd/dwscript/cmd does: a
// single rootCmd, subcommands registered from their own init().
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version information (set by build flags).
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "rpal",
	Short: "RPAL interpreter",
	Long: `rpal is a Go implementation of the RPAL language: a standardizer,
control-structure flattener, and CSE (Control-Stack-Environment) abstract
machine, ported from the reference C++ interpreter's evaluation rules.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

func exitWithError(msg string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+msg+"\n", args...)
	os.Exit(1)
}
