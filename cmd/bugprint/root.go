package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"bugprint/internal/core/version"
)

var rootCmd = &cobra.Command{
	Use:   "bugprint",
	Short: "Fingerprint bug reports and manage the duplicate registry",
	Long: "bugprint computes the stable fingerprint of a bug report and inspects\n" +
		"or sweeps the reservation registry configured through CORE_REGISTRY_*.",
	SilenceUsage: true,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
}

func init() {
	rootCmd.AddCommand(hashCmd)
	rootCmd.AddCommand(normalizeCmd)
	rootCmd.AddCommand(sweepCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.Version = version.Info().Version
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
