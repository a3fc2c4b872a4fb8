// Command rpal is the RPAL interpreter's CLI entry point.
package main

import (
	"os"

	"github.com/cwbudde/go-rpal/cmd/rpal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
