// Package cmd holds the sscript CLI's cobra command tree.
package cmd

import (
	"github.com/spf13/cobra"
)

// Version is set at build time via -ldflags; defaults to a dev marker.
var Version = "0.1.0-dev"

var rootCmd = &cobra.Command{
	Use:   "sscript",
	Short: "sscript is a concatenative, stack-based language interpreter",
	Long: `sscript runs programs written in a small concatenative, stack-based
language: literals push, words pop and push, quoted code and sub-stacks
are first-class values.`,
	Version: Version,
}

var verbose bool

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print a cause chain for file-boundary errors")
}
