package run_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/k12ops/rosterreport/internal/run"
	"github.com/k12ops/rosterreport/report"
	"github.com/k12ops/rosterreport/roster"
	"github.com/k12ops/rosterreport/rosterquery"
	"github.com/k12ops/rosterreport/schoolyear"
)

// a fixed instant shortly after the cutover: resolves to school year 2025
var refInstant = time.Date(2025, 9, 15, 6, 0, 0, 0, time.UTC)

type fakeBinder struct {
	bindErr   error
	boundYear schoolyear.Year
	called    bool
}

func (b *fakeBinder) Bind(year schoolyear.Year) (rosterquery.BoundQuery, error) {
	b.called = true
	b.boundYear = year

	if b.bindErr != nil {
		return rosterquery.BoundQuery{}, b.bindErr
	}

	tpl, err := rosterquery.Parse("SELECT last_name FROM student_roster WHERE school_year = :school_year")
	if err != nil {
		return rosterquery.BoundQuery{}, err
	}

	return tpl.Bind(year)
}

type fakeFetcher struct {
	result   roster.Roster
	fetchErr error
	pingErr  error
	called   bool
	gotYear  schoolyear.Year
}

func (f *fakeFetcher) Fetch(_ context.Context, query rosterquery.BoundQuery) (roster.Roster, error) {
	f.called = true
	f.gotYear = query.Year()

	if f.fetchErr != nil {
		return roster.Roster{}, f.fetchErr
	}

	return f.result, nil
}

func (f *fakeFetcher) Ping(_ context.Context) error {
	return f.pingErr
}

type fakeNotifier struct {
	sendErr     error
	checkErr    error
	sendCalled  bool
	gotRowCount int
	gotYear     schoolyear.Year
	gotArtifact report.Artifact
}

func (n *fakeNotifier) Send(artifact report.Artifact, year schoolyear.Year, rowCount int, _ time.Time) error {
	n.sendCalled = true
	n.gotArtifact = artifact
	n.gotYear = year
	n.gotRowCount = rowCount

	return n.sendErr
}

func (n *fakeNotifier) CheckConnection() error {
	return n.checkErr
}

// recordingLogger captures log records so tests can assert on warnings.
type recordingLogger struct {
	warnings []string
	errors   []string
}

func (l *recordingLogger) Debug(string, ...any) {}
func (l *recordingLogger) Info(string, ...any)  {}

func (l *recordingLogger) Warn(msg string, _ ...any) {
	l.warnings = append(l.warnings, msg)
}

func (l *recordingLogger) Error(msg string, _ ...any) {
	l.errors = append(l.errors, msg)
}

func rosterResult() roster.Roster {
	return roster.Roster{
		Columns: []string{"last_name"},
		Rows:    [][]string{{"Adams"}, {"Baker"}},
	}
}

func newOrchestrator(binder *fakeBinder, fetcher *fakeFetcher, notifier *fakeNotifier, logger run.Logger) *run.Orchestrator {
	return run.New(binder, fetcher, notifier, logger).WithClock(func() time.Time { return refInstant })
}

func Test_Run_HappyPath(t *testing.T) {
	// arrange
	binder := &fakeBinder{}
	fetcher := &fakeFetcher{result: rosterResult()}
	notifier := &fakeNotifier{}
	logger := &recordingLogger{}

	// act
	err := newOrchestrator(binder, fetcher, notifier, logger).
		Run(context.Background(), run.Options{Format: report.FormatCSV})

	// assert
	assert.NoError(t, err)
	assert.Equal(t, schoolyear.Year(2025), binder.boundYear)
	assert.Equal(t, schoolyear.Year(2025), fetcher.gotYear)
	assert.True(t, notifier.sendCalled)
	assert.Equal(t, 2, notifier.gotRowCount)
	assert.Equal(t, "Student_Roster_2025-2026_20250915.csv", notifier.gotArtifact.Filename)
	assert.Empty(t, logger.warnings)
}

func Test_Run_When_AnOverrideYearIsSupplied(t *testing.T) {
	binder := &fakeBinder{}
	fetcher := &fakeFetcher{result: rosterResult()}
	notifier := &fakeNotifier{}

	err := newOrchestrator(binder, fetcher, notifier, &recordingLogger{}).
		Run(context.Background(), run.Options{OverrideYear: 2023, Format: report.FormatCSV})

	assert.NoError(t, err)
	assert.Equal(t, schoolyear.Year(2023), binder.boundYear)
	assert.Equal(t, schoolyear.Year(2023), notifier.gotYear)
}

func Test_Run_When_TheOverrideIsImplausible(t *testing.T) {
	binder := &fakeBinder{}
	fetcher := &fakeFetcher{result: rosterResult()}
	notifier := &fakeNotifier{}

	err := newOrchestrator(binder, fetcher, notifier, &recordingLogger{}).
		Run(context.Background(), run.Options{OverrideYear: 1980, Format: report.FormatCSV})

	// a rejected override must stop the run before anything touches the database
	assert.ErrorIs(t, err, schoolyear.ErrImplausibleYear)
	assert.False(t, binder.called)
	assert.False(t, fetcher.called)
	assert.False(t, notifier.sendCalled)
}

func Test_Run_When_BindingFails(t *testing.T) {
	binder := &fakeBinder{bindErr: rosterquery.ErrMissingPlaceholder}
	fetcher := &fakeFetcher{result: rosterResult()}
	notifier := &fakeNotifier{}

	err := newOrchestrator(binder, fetcher, notifier, &recordingLogger{}).
		Run(context.Background(), run.Options{Format: report.FormatCSV})

	// never fetch with an unbound query
	assert.ErrorIs(t, err, rosterquery.ErrMissingPlaceholder)
	assert.False(t, fetcher.called)
	assert.False(t, notifier.sendCalled)
}

func Test_Run_When_TheFetchFails(t *testing.T) {
	binder := &fakeBinder{}
	fetcher := &fakeFetcher{fetchErr: roster.ErrQueryFailed}
	notifier := &fakeNotifier{}
	logger := &recordingLogger{}

	err := newOrchestrator(binder, fetcher, notifier, logger).
		Run(context.Background(), run.Options{Format: report.FormatCSV})

	// the failure surfaces in the log as well as the returned error
	assert.ErrorIs(t, err, roster.ErrQueryFailed)
	assert.False(t, notifier.sendCalled)
	assert.Len(t, logger.errors, 1)
}

func Test_Run_When_TheRosterIsEmpty(t *testing.T) {
	binder := &fakeBinder{}
	fetcher := &fakeFetcher{result: roster.Roster{Columns: []string{"last_name"}}}
	notifier := &fakeNotifier{}
	logger := &recordingLogger{}

	err := newOrchestrator(binder, fetcher, notifier, logger).
		Run(context.Background(), run.Options{Format: report.FormatCSV})

	// zero rows: warn, but still export and deliver
	assert.NoError(t, err)
	assert.Len(t, logger.warnings, 1)
	assert.True(t, notifier.sendCalled)
	assert.Equal(t, 0, notifier.gotRowCount)
}

func Test_Run_When_DryRunIsRequested(t *testing.T) {
	binder := &fakeBinder{}
	fetcher := &fakeFetcher{result: rosterResult()}
	notifier := &fakeNotifier{}

	err := newOrchestrator(binder, fetcher, notifier, &recordingLogger{}).
		Run(context.Background(), run.Options{DryRun: true, Format: report.FormatCSV})

	// fetch and export happen, delivery does not
	assert.NoError(t, err)
	assert.True(t, fetcher.called)
	assert.False(t, notifier.sendCalled)
}

func Test_Run_When_DeliveryFails(t *testing.T) {
	binder := &fakeBinder{}
	fetcher := &fakeFetcher{result: rosterResult()}
	notifier := &fakeNotifier{sendErr: errors.New("relay rejected the message")}

	err := newOrchestrator(binder, fetcher, notifier, &recordingLogger{}).
		Run(context.Background(), run.Options{Format: report.FormatCSV})

	assert.Error(t, err)
}

func Test_Check_When_EverythingIsReachable(t *testing.T) {
	orchestrator := newOrchestrator(&fakeBinder{}, &fakeFetcher{}, &fakeNotifier{}, &recordingLogger{})

	err := orchestrator.Check(context.Background(), run.CheckTargets{Database: true, SMTP: true})

	assert.NoError(t, err)
}

func Test_Check_When_TheDatabaseIsDown(t *testing.T) {
	fetcher := &fakeFetcher{pingErr: roster.ErrConnectionFailed}
	orchestrator := newOrchestrator(&fakeBinder{}, fetcher, &fakeNotifier{}, &recordingLogger{})

	err := orchestrator.Check(context.Background(), run.CheckTargets{Database: true, SMTP: true})

	assert.ErrorIs(t, err, run.ErrCheckFailed)
	assert.ErrorIs(t, err, roster.ErrConnectionFailed)
}

func Test_Check_ProbesAllTargetsEvenAfterAFailure(t *testing.T) {
	fetcher := &fakeFetcher{pingErr: roster.ErrConnectionFailed}
	notifier := &fakeNotifier{checkErr: errors.New("smtp unreachable")}
	logger := &recordingLogger{}
	orchestrator := newOrchestrator(&fakeBinder{}, fetcher, notifier, logger)

	err := orchestrator.Check(context.Background(), run.CheckTargets{Database: true, SMTP: true})

	assert.ErrorIs(t, err, run.ErrCheckFailed)
	assert.Len(t, logger.errors, 2)
}
