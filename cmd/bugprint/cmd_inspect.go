package main

import (
	"encoding/json"
	"fmt"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"bugprint/internal/services/registry/domain"
)

var inspectFlags struct {
	status string
	asJSON bool
}

var inspectCmd = &cobra.Command{
	Use:   "inspect [fingerprint]",
	Short: "List registry entries, or show one live entry",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runInspect,
}

func init() {
	f := inspectCmd.Flags()
	f.StringVar(&inspectFlags.status, "status", "", "Only list entries with this status (pending|confirmed)")
	f.BoolVar(&inspectFlags.asJSON, "json", false, "Print entries as JSON")
}

func runInspect(cmd *cobra.Command, args []string) error {
	if s := domain.Status(inspectFlags.status); s != "" && !s.Valid() {
		return fmt.Errorf("unknown status %q", inspectFlags.status)
	}

	ctx := cmd.Context()
	reg, closeFn, err := openRegistry(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	var views []domain.EntryView
	if len(args) == 1 {
		fp := domain.Fingerprint(args[0])
		e, found, err := reg.CheckLocalDuplicate(ctx, fp)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("no live entry for %s", fp)
		}
		views = append(views, domain.View(fp, e))
	} else {
		err := reg.Range(ctx, func(fp domain.Fingerprint, e domain.Entry) bool {
			if inspectFlags.status == "" || e.Status == domain.Status(inspectFlags.status) {
				views = append(views, domain.View(fp, e))
			}
			return true
		})
		if err != nil {
			return err
		}
		sort.Slice(views, func(i, j int) bool { return views[i].SavedAt > views[j].SavedAt })
	}

	out := cmd.OutOrStdout()
	if inspectFlags.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(views)
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FINGERPRINT\tSTATUS\tSAVED\tTICKET")
	for _, v := range views {
		ticket, _ := v.Meta["ticketKey"].(string)
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", v.Fingerprint, v.Status, time.UnixMilli(v.SavedAt).UTC().Format(time.RFC3339), ticket)
	}
	return tw.Flush()
}
