package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Remove expired registry entries once and print the count",
	Args:  cobra.NoArgs,
	RunE:  runSweep,
}

func runSweep(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	reg, closeFn, err := openRegistry(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	n, err := reg.CleanupExpired(ctx)
	if err != nil {
		return fmt.Errorf("sweep: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "removed %d expired entries\n", n)
	return nil
}
