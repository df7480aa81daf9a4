package run

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/k12ops/rosterreport/report"
	"github.com/k12ops/rosterreport/roster"
	"github.com/k12ops/rosterreport/rosterquery"
	"github.com/k12ops/rosterreport/schoolyear"
)

const (
	logMsgRunStarted       = "roster report run started"
	logMsgYearResolved     = "school year resolved"
	logMsgOverrideUsed     = "school year override supplied, skipping calendar resolution"
	logMsgEmptyRoster      = "query returned zero roster rows"
	logMsgArtifactExported = "report artifact exported"
	logMsgDryRun           = "dry run: skipping notification"
	logMsgReportDelivered  = "report delivered"
	logMsgRunCompleted     = "roster report run completed"
	logAttrRunID           = "run_id"
	logAttrSchoolYear      = "school_year"
	logAttrRowCount        = "row_count"
	logAttrArtifact        = "artifact"
	logAttrFormat          = "format"
)

// Logger is the minimal structured logging seam; *slog.Logger satisfies it.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Fetcher is the data-store collaborator.
type Fetcher interface {
	Fetch(ctx context.Context, query rosterquery.BoundQuery) (roster.Roster, error)
	Ping(ctx context.Context) error
}

// Notifier is the delivery collaborator.
type Notifier interface {
	Send(artifact report.Artifact, year schoolyear.Year, rowCount int, generatedAt time.Time) error
	CheckConnection() error
}

// Options are the per-invocation knobs from the CLI.
type Options struct {
	OverrideYear int // 0 means resolve from the calendar
	DryRun       bool
	Format       report.Format
}

// Orchestrator sequences one report run: resolve year, bind query, fetch,
// export, notify. It owns the single wall-clock read of a run; everything
// downstream receives the instant as a value.
type Orchestrator struct {
	binder   rosterquery.Binder
	fetcher  Fetcher
	notifier Notifier
	logger   Logger
	now      func() time.Time
}

// New wires an Orchestrator from its collaborators.
func New(binder rosterquery.Binder, fetcher Fetcher, notifier Notifier, logger Logger) *Orchestrator {
	return &Orchestrator{
		binder:   binder,
		fetcher:  fetcher,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// WithClock replaces the wall-clock read, for tests and backfill tooling.
func (o *Orchestrator) WithClock(now func() time.Time) *Orchestrator {
	o.now = now
	return o
}

// Run executes one complete report run. Any failure before the fetch step
// guarantees the database is never queried with an unbound or wrongly-bound
// statement; any failure at all aborts the run without delivery.
func (o *Orchestrator) Run(ctx context.Context, opts Options) error {
	runID := uuid.NewString()
	logger := withRunID(o.logger, runID)

	// the only wall-clock read of the run
	ref := o.now()

	logger.Info(logMsgRunStarted, logAttrFormat, string(opts.Format))

	year, yearErr := o.resolveYear(ref, opts, logger)
	if yearErr != nil {
		return yearErr
	}

	bound, bindErr := o.binder.Bind(year)
	if bindErr != nil {
		logger.Error("binding the roster query failed", "error", bindErr.Error())
		return bindErr
	}

	fetched, fetchErr := o.fetcher.Fetch(ctx, bound)
	if fetchErr != nil {
		logger.Error("fetching the roster failed", "error", fetchErr.Error())
		return fetchErr
	}

	if fetched.Empty() {
		// legitimate early in a school year, but worth surfacing
		logger.Warn(logMsgEmptyRoster, logAttrSchoolYear, year.Int())
	}

	artifact, exportErr := report.Export(fetched, year, opts.Format, ref)
	if exportErr != nil {
		logger.Error("exporting the report failed", "error", exportErr.Error())
		return exportErr
	}

	logger.Info(logMsgArtifactExported,
		logAttrArtifact, artifact.Filename,
		logAttrRowCount, fetched.Len())

	if opts.DryRun {
		logger.Info(logMsgDryRun,
			logAttrArtifact, artifact.Filename,
			logAttrRowCount, fetched.Len())
		return nil
	}

	if sendErr := o.notifier.Send(artifact, year, fetched.Len(), ref); sendErr != nil {
		logger.Error("delivering the report failed", "error", sendErr.Error())
		return sendErr
	}

	logger.Info(logMsgReportDelivered, logAttrArtifact, artifact.Filename)
	logger.Info(logMsgRunCompleted, logAttrSchoolYear, year.Int())

	return nil
}

func (o *Orchestrator) resolveYear(ref time.Time, opts Options, logger Logger) (schoolyear.Year, error) {
	if opts.OverrideYear != 0 {
		year, err := schoolyear.ParseOverride(opts.OverrideYear, ref)
		if err != nil {
			logger.Error("school year override rejected", "error", err.Error())
			return 0, err
		}

		logger.Info(logMsgOverrideUsed, logAttrSchoolYear, year.Int())

		return year, nil
	}

	year := schoolyear.Resolve(ref)
	logger.Info(logMsgYearResolved, logAttrSchoolYear, year.Int())

	return year, nil
}

// runIDLogger prefixes every record with the run ID without depending on a
// concrete logger implementation.
type runIDLogger struct {
	inner Logger
	runID string
}

func withRunID(inner Logger, runID string) Logger {
	return runIDLogger{inner: inner, runID: runID}
}

func (l runIDLogger) Debug(msg string, args ...any) {
	l.inner.Debug(msg, append([]any{logAttrRunID, l.runID}, args...)...)
}

func (l runIDLogger) Info(msg string, args ...any) {
	l.inner.Info(msg, append([]any{logAttrRunID, l.runID}, args...)...)
}

func (l runIDLogger) Warn(msg string, args ...any) {
	l.inner.Warn(msg, append([]any{logAttrRunID, l.runID}, args...)...)
}

func (l runIDLogger) Error(msg string, args ...any) {
	l.inner.Error(msg, append([]any{logAttrRunID, l.runID}, args...)...)
}

var ErrCheckFailed = errors.New("connectivity check failed")

// CheckTargets selects which collaborators a Check run probes.
type CheckTargets struct {
	Database bool
	SMTP     bool
}

// Check probes connectivity to the selected collaborators without fetching,
// exporting or notifying. All selected targets are probed even if an earlier
// one fails, so one run reports every broken dependency.
func (o *Orchestrator) Check(ctx context.Context, targets CheckTargets) error {
	logger := withRunID(o.logger, uuid.NewString())
	var failures []error

	if targets.Database {
		if err := o.fetcher.Ping(ctx); err != nil {
			logger.Error("database connectivity check: FAILED", "error", err.Error())
			failures = append(failures, err)
		} else {
			logger.Info("database connectivity check: PASSED")
		}
	}

	if targets.SMTP {
		if err := o.notifier.CheckConnection(); err != nil {
			logger.Error("smtp connectivity check: FAILED", "error", err.Error())
			failures = append(failures, err)
		} else {
			logger.Info("smtp connectivity check: PASSED")
		}
	}

	if len(failures) > 0 {
		return errors.Join(append([]error{ErrCheckFailed}, failures...)...)
	}

	return nil
}
