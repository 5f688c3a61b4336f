package cmd

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	pkgerrors "github.com/pkg/errors"
	"github.com/spf13/cobra"

	serrors "sscript/internal/errors"
	"sscript/internal/vm"
)

var runCmd = &cobra.Command{
	Use:   "run <file>",
	Short: "Compile and execute a program file",
	Args:  cobra.ExactArgs(1),
	RunE:  runFile,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runFile(_ *cobra.Command, args []string) error {
	path := args[0]
	source, rerr := os.ReadFile(path)
	if rerr != nil {
		wrapped := pkgerrors.Wrapf(rerr, "read %s", path)
		if verbose {
			fmt.Fprintf(os.Stderr, "could not read %s: %+v\n", path, wrapped)
		}
		return fmt.Errorf("could not read %s: %w", path, rerr)
	}

	machine := vm.New()
	if err := machine.Run(string(source)); err != nil && err.Kind != serrors.ProgramExit {
		if verbose && err.Cause != nil {
			fmt.Fprintf(os.Stderr, "cause: %+v\n", pkgerrors.Cause(err.Cause))
		}
		return fmt.Errorf("%s", err.Error())
	}

	if verbose && machine.LastSaveBytes > 0 {
		fmt.Fprintf(os.Stderr, "wrote %s during execution\n", humanize.Bytes(uint64(machine.LastSaveBytes)))
	}
	return nil
}
