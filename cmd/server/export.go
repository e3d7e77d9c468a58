package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"bizverify/internal/platform/config"
	"bizverify/internal/report"
)

func exportCmd() *cobra.Command {
	var (
		src     sourceFlags
		filters filterFlags
		policy  policyFlags
		view    string
		out     string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the annotated submissions as CSV",
		Long: `Write the submissions with normalized values and both duplicate flags.
--view kept (or strict) writes the strict-deduplicated list, --view duplicates
only the removed rows.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := report.ParseView(view)
			if err != nil {
				return err
			}
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

			// Load before touching the output so a failed load leaves no file.
			set, err := svc.Records(commandContext(cmd), f, v)
			if err != nil {
				return err
			}

			if out == "" || out == "-" {
				return report.WriteCSV(cmd.OutOrStdout(), set.Submissions)
			}
			file, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("create %s: %w", out, err)
			}
			if err := report.WriteCSV(file, set.Submissions); err != nil {
				_ = file.Close()
				return err
			}
			if err := file.Close(); err != nil {
				return fmt.Errorf("close %s: %w", out, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d submissions to %s\n", len(set.Submissions), out)
			return nil
		},
	}
	src.bind(cmd)
	filters.bind(cmd)
	policy.bind(cmd)
	cmd.Flags().StringVar(&view, "view", "kept", "all, kept (strict) or duplicates")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (defaults to stdout)")
	return cmd
}
