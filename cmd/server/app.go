package main

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"

	"bizverify/internal/dataset"
	"bizverify/internal/normalize"
	"bizverify/internal/platform/config"
	"bizverify/internal/platform/logger"
	"bizverify/internal/report"
)

// sourceFlags selects the export for the one-shot commands.
type sourceFlags struct {
	url     string
	file    string
	timeout time.Duration
}

func (f *sourceFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.url, "source", "", "export URL (defaults to BIZVERIFY_SOURCE_URL)")
	cmd.Flags().StringVar(&f.file, "file", "", "read the export from a local CSV file instead of a URL")
	cmd.Flags().DurationVar(&f.timeout, "timeout", 0, "source request timeout (defaults to BIZVERIFY_SOURCE_TIMEOUT)")
	cmd.MarkFlagsMutuallyExclusive("source", "file")
}

// policyFlags override the dedup policy from the environment.
type policyFlags struct {
	requireIdentity bool
	timezone        string
}

func (f *policyFlags) bind(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.requireIdentity, "require-identity", false, "never match submissions that have neither an ID nor a phone")
	cmd.Flags().StringVar(&f.timezone, "timezone", "", "zone for timestamps without an offset (defaults to BIZVERIFY_TIMEZONE)")
}

func (f *policyFlags) apply(cmd *cobra.Command, cfg *config.PolicyConfig) {
	if cmd.Flags().Changed("require-identity") {
		cfg.RequireIdentity = f.requireIdentity
	}
	if f.timezone != "" {
		cfg.Timezone = f.timezone
	}
}

func (f *sourceFlags) source(cfg config.SourceConfig) (dataset.Source, error) {
	if f.file != "" {
		return dataset.FileSource{Path: f.file}, nil
	}
	url := f.url
	if url == "" {
		url = cfg.URL
	}
	if url == "" {
		return nil, errors.New("no export configured: pass --source or --file, or set BIZVERIFY_SOURCE_URL")
	}
	timeout := cfg.Timeout
	if f.timeout > 0 {
		timeout = f.timeout
	}
	return dataset.NewHTTPSource(url, timeout), nil
}

// filterFlags are the report filters shared by check and export.
type filterFlags struct {
	from     string
	to       string
	counties []string
}

func (f *filterFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.from, "from", "", "first submission day, YYYY-MM-DD")
	cmd.Flags().StringVar(&f.to, "to", "", "last submission day, YYYY-MM-DD")
	cmd.Flags().StringSliceVar(&f.counties, "county", nil, "limit to these counties (repeatable or comma separated)")
}

func (f *filterFlags) filter() (report.Filter, error) {
	return report.ParseFilter(f.from, f.to, f.counties)
}

// newNormalizer builds the normalizer for the configured time zone.
func newNormalizer(cfg config.PolicyConfig) (*normalize.Normalizer, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	return normalize.New(normalize.WithLocation(loc)), nil
}

// oneShotService builds an uncached service without run history, for the
// CLI commands that process the export once and exit.
func oneShotService(cmd *cobra.Command, cfg config.Config, src dataset.Source) (*report.Service, error) {
	log := logger.NewWithWriter(cmd.ErrOrStderr(), config.LogConfig{Level: "warn", Format: "text"})
	n, err := newNormalizer(cfg.Policy)
	if err != nil {
		return nil, err
	}
	loader := dataset.NewLoader(src, nil, dataset.WithLoaderLogger(log), dataset.WithFetchTimeout(cfg.Source.Timeout))
	svc := report.New(loader,
		report.WithLogger(log),
		report.WithNormalizer(n),
		report.WithRequireIdentity(cfg.Policy.RequireIdentity),
	)
	return svc, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
