// Command sscript is the command-line driver for the stack language: it
// wires the lexer/compiler/vm packages to a small cobra CLI offering
// run, repl, and version subcommands (spec.md §6 "External interface").
package main

import (
	"fmt"
	"os"

	"sscript/cmd/sscript/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
