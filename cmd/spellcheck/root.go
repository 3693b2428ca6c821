package main

import (
	"github.com/spf13/cobra"
)

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "spellcheck",
		Short: "Find misspelled words across a list of web pages.",
		Long: `spellcheck fetches every page listed in a CSV file, extracts the visible
text, and reports each misspelled word together with the pages it appears on
and a short context for every occurrence.`,
		SilenceUsage: true,
	}

	cmd.AddCommand(newRunCmd())
	cmd.AddCommand(newVersionCmd())
	return cmd
}
