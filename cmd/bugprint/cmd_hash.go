package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"bugprint/internal/services/registry/domain"
	"bugprint/internal/services/registry/service"
)

var hashFlags struct {
	asJSON     bool
	components bool
}

var hashCmd = &cobra.Command{
	Use:   "hash [report.json]",
	Short: "Print the fingerprint of a bug report read from a file or stdin",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runHash,
}

func init() {
	f := hashCmd.Flags()
	f.BoolVar(&hashFlags.asJSON, "json", false, "Print the full result as JSON")
	f.BoolVarP(&hashFlags.components, "components", "c", false, "Also print the normalized components")
}

func runHash(cmd *cobra.Command, args []string) error {
	in := cmd.InOrStdin()
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open report: %w", err)
		}
		defer func() { _ = f.Close() }()
		in = f
	}

	report, err := decodeReport(in)
	if err != nil {
		return err
	}
	res := service.Engine{}.Fingerprint(report)

	out := cmd.OutOrStdout()
	if hashFlags.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	fmt.Fprintln(out, res.Fingerprint)
	if hashFlags.components {
		for _, c := range res.Components {
			fmt.Fprintf(out, "  %s\n", c)
		}
	}
	return nil
}

func decodeReport(r io.Reader) (domain.BugReport, error) {
	var report domain.BugReport
	dec := json.NewDecoder(r)
	if err := dec.Decode(&report); err != nil {
		return report, fmt.Errorf("decode report: %w", err)
	}
	if report.URL == "" {
		return report, fmt.Errorf("decode report: url is required")
	}
	return report, nil
}
