package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"mercator-hq/strcalc/pkg/cli"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "strcalc",
	Short: "strcalc - delimiter-separated integer-list calculator",
	Long: `strcalc evaluates expressions such as "1,2\n3" or "//;\n1;2" and returns
their sum, or a report of everything wrong with them.

It runs as a one-shot command line tool or as an HTTP service that records
each evaluation to a journal.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits with the command's exit code.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if !cli.IsSilent(err) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(cli.ExitCode(err))
	}
}

func init() {
	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (defaults apply when empty)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
