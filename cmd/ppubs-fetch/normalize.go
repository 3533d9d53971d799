package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/ppubs-fetch/internal/docid"
)

var normalizeCmd = &cobra.Command{
	Use:   "normalize <document-ids...>",
	Short: "Print the bare form of document identifiers",
	Long: `Normalize strips the country prefix, kind code, commas, and whitespace
from each identifier and prints the bare form the PDF endpoint accepts.`,
	Example: `  ppubs-fetch normalize "US 11,223,344 B2" USD1108091S`,
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, a := range args {
			fmt.Fprintln(cmd.OutOrStdout(), docid.Bare(a))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(normalizeCmd)
}
