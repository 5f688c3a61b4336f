package cmd

import (
	"bufio"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	serrors "sscript/internal/errors"
	"sscript/internal/vm"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Start an interactive read-eval-print loop",
	Args:  cobra.NoArgs,
	Run:   runRepl,
}

func init() {
	rootCmd.AddCommand(replCmd)
}

// runRepl reads one line at a time from stdin and runs it against a
// single persistent interpreter, so the stack and dictionary survive
// across lines (SPEC_FULL.md §6). The prompt and startup banner are
// suppressed when stdin isn't a terminal, so `sscript repl < file` acts
// as a quiet batch runner.
func runRepl(_ *cobra.Command, _ []string) {
	session := uuid.New()
	interactive := isatty.IsTerminal(os.Stdin.Fd())

	if interactive {
		fmt.Printf("sscript repl [session %s] | type 'exit' to quit\n", session.String()[:8])
	}

	machine := vm.New()
	scanner := bufio.NewScanner(os.Stdin)
	for {
		if interactive {
			fmt.Print("> ")
		}
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		if line == "exit" {
			break
		}
		if err := machine.Run(line); err != nil {
			if err.Kind == serrors.ProgramExit {
				break
			}
			fmt.Fprintf(os.Stderr, "[session %s] %s\n", session.String()[:8], err.Error())
		}
	}
}
