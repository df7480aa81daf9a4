package cli

import (
	"github.com/spf13/cobra"

	"github.com/k12ops/rosterreport/internal/config"
	"github.com/k12ops/rosterreport/internal/run"
	"github.com/k12ops/rosterreport/report"
)

// NewRunCommand creates the command that executes one full report run.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	var overrideYear int
	var dryRun bool
	var formatFlag string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Fetch the roster for the current school year and email the report",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(rootOpts.ConfigPath)
			if err != nil {
				return err
			}

			logger, closeLogger, logErr := newLogger(cfg.Logging, rootOpts.Verbose)
			if logErr != nil {
				return logErr
			}
			defer closeLogger()

			format := cfg.Report.Format
			if formatFlag != "" {
				format = formatFlag
			}
			parsedFormat, formatErr := report.ParseFormat(format)
			if formatErr != nil {
				return formatErr
			}

			binder, binderErr := newBinder(cfg.Query)
			if binderErr != nil {
				return binderErr
			}

			fetcher, closeFetcher, fetcherErr := newFetcher(cmd.Context(), cfg.Database, logger)
			if fetcherErr != nil {
				return fetcherErr
			}
			defer closeFetcher()

			mailer, mailerErr := newMailer(cfg.Email)
			if mailerErr != nil {
				return mailerErr
			}

			orchestrator := run.New(binder, fetcher, mailer, logger)

			return orchestrator.Run(cmd.Context(), run.Options{
				OverrideYear: overrideYear,
				DryRun:       dryRun,
				Format:       parsedFormat,
			})
		},
	}

	cmd.Flags().IntVar(&overrideYear, "school-year", 0, "override the school year (default: resolved from the calendar)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "fetch and export but skip email delivery")
	cmd.Flags().StringVar(&formatFlag, "format", "", "report format: csv, xlsx or json (default: from config)")

	return cmd
}
