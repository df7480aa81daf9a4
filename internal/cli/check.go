package cli

import (
	"github.com/spf13/cobra"

	"github.com/k12ops/rosterreport/internal/config"
	"github.com/k12ops/rosterreport/internal/run"
)

// NewCheckCommand creates the command that probes connectivity to the
// database and/or the SMTP relay without running a report.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	var checkDB bool
	var checkSMTP bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Test connectivity to the database and the SMTP relay",
		Long:  "Probes the configured collaborators and reports PASSED/FAILED per target. With no flags, both targets are probed.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			// no flag means: check everything
			if !checkDB && !checkSMTP {
				checkDB = true
				checkSMTP = true
			}

			cfg, err := config.Load(rootOpts.ConfigPath)
			if err != nil {
				return err
			}

			logger, closeLogger, logErr := newLogger(cfg.Logging, rootOpts.Verbose)
			if logErr != nil {
				return logErr
			}
			defer closeLogger()

			// wire only what the selected targets need: a smtp-only check
			// never opens a database pool
			var fetcher run.Fetcher
			cleanup := func() {}

			if checkDB {
				engineFetcher, closeFetcher, fetcherErr := newFetcher(cmd.Context(), cfg.Database, logger)
				if fetcherErr != nil {
					return fetcherErr
				}

				fetcher = engineFetcher
				cleanup = closeFetcher
			}
			defer cleanup()

			var notifier run.Notifier
			if checkSMTP {
				mailer, mailerErr := newMailer(cfg.Email)
				if mailerErr != nil {
					return mailerErr
				}

				notifier = mailer
			}

			orchestrator := run.New(nil, fetcher, notifier, logger)

			return orchestrator.Check(cmd.Context(), run.CheckTargets{
				Database: checkDB,
				SMTP:     checkSMTP,
			})
		},
	}

	cmd.Flags().BoolVar(&checkDB, "db", false, "check database connectivity")
	cmd.Flags().BoolVar(&checkSMTP, "smtp", false, "check smtp connectivity")

	return cmd
}
