package main

import (
	"github.com/spf13/cobra"
)

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bizverify",
		Short: "Normalize and deduplicate business verification submissions",
		Long: `bizverify loads the business verification export, normalizes phone
numbers, national IDs, counties, timestamps and coordinates, and compares
a manual (exact value) deduplication with a strict (normalized) one.

Quick start:
  bizverify serve                                  # HTTP API on :8080
  bizverify check --file export.csv                # one-off summary
  bizverify export --file export.csv --view kept   # deduplicated CSV`,
		SilenceUsage: true,
	}

	cmd.AddCommand(serveCmd())
	cmd.AddCommand(checkCmd())
	cmd.AddCommand(exportCmd())

	return cmd
}
