package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"bizverify/internal/platform/config"
	"bizverify/internal/report"
)

func checkCmd() *cobra.Command {
	var (
		src     sourceFlags
		filters filterFlags
		policy  policyFlags
		asJSON  bool
	)
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Load the export once and print the deduplication summary",
		Long: `Load the export once, run both deduplication modes and print totals,
per-county counts and data quality figures.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			policy.apply(cmd, &cfg.Policy)
			f, err := filters.filter()
			if err != nil {
				return err
			}
			source, err := src.source(cfg.Source)
			if err != nil {
				return err
			}
			svc, err := oneShotService(cmd, cfg, source)
			if err != nil {
				return err
			}

			summary, err := svc.Summary(commandContext(cmd), f)
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(summary)
			}
			printSummary(cmd, source.Name(), summary)
			return nil
		},
	}
	src.bind(cmd)
	filters.bind(cmd)
	policy.bind(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the summary as JSON")
	return cmd
}

func printSummary(cmd *cobra.Command, source string, s *report.Summary) {
	out := cmd.OutOrStdout()
	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintf(w, "Source\t%s\n", source)
	fmt.Fprintf(w, "Run\t%s\n", s.RunID)
	fmt.Fprintf(w, "Total submissions\t%d\n", s.Totals.Submissions)
	fmt.Fprintf(w, "Manual dedup (exact values)\t%d\n", s.Totals.ManualUnique)
	fmt.Fprintf(w, "Strict dedup (normalized)\t%d\n", s.Totals.StrictUnique)
	fmt.Fprintf(w, "Duplicates removed\t%d\n", s.Totals.DuplicatesRemoved)
	fmt.Fprintf(w, "Unparsable timestamps\t%d\n", s.Unparsable)
	fmt.Fprintf(w, "Malformed phones\t%d\n", s.Phones.Malformed)
	fmt.Fprintf(w, "Map points\t%d (%d invalid)\n", s.Map.Points, s.Map.Invalid)
	w.Flush()

	fmt.Fprintln(out)
	w = tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "CODE\tCOUNTY\tSUBMISSIONS\tUNIQUE")
	fmt.Fprintln(w, "----\t------\t-----------\t------")
	for _, c := range s.Counties {
		if c.Submissions == 0 {
			continue
		}
		fmt.Fprintf(w, "%d\t%s\t%d\t%d\n", c.Code, c.Name, c.Submissions, c.Unique)
	}
	w.Flush()

	if len(s.ZeroCounties) > 0 {
		fmt.Fprintf(out, "\nCounties with no submissions (%d): %s\n", len(s.ZeroCounties), strings.Join(s.ZeroCounties, ", "))
	}
	if len(s.NonCanonical) > 0 {
		labels := make([]string, 0, len(s.NonCanonical))
		for _, nc := range s.NonCanonical {
			labels = append(labels, fmt.Sprintf("%s (%d)", nc.Label, nc.Count))
		}
		fmt.Fprintf(out, "Unrecognized county values: %s\n", strings.Join(labels, ", "))
	}
}
