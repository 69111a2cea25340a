package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"bugprint/internal/core/fingerprint"
)

var normalizeFlags struct {
	text bool
}

var normalizeCmd = &cobra.Command{
	Use:   "normalize <value>...",
	Short: "Print the normalized form of URLs, or of free text with --text",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runNormalize,
}

func init() {
	normalizeCmd.Flags().BoolVar(&normalizeFlags.text, "text", false, "Treat arguments as titles or messages instead of URLs")
}

func runNormalize(cmd *cobra.Command, args []string) error {
	norm := fingerprint.NormalizeURL
	if normalizeFlags.text {
		norm = fingerprint.NormalizeText
	}
	out := cmd.OutOrStdout()
	for _, a := range args {
		fmt.Fprintln(out, norm(a))
	}
	return nil
}
