package postgresengine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"

	"github.com/k12ops/rosterreport/roster"
	"github.com/k12ops/rosterreport/roster/postgresengine/internal/adapters"
	"github.com/k12ops/rosterreport/rosterquery"
)

const (
	defaultQueryTimeout = 30 * time.Second

	logMsgDBQueryFailed   = "roster query execution failed"
	logMsgReadColumnsFail = "failed to read roster result columns"
	logMsgScanRowFailed   = "failed to scan roster row"
	logMsgRowIterFailed   = "roster row iteration failed"
	logMsgCloseRowsFailed = "failed to close database rows"
	logMsgFetchCompleted  = "roster fetch completed"
	logMsgSQLExecuted     = "executed roster sql"
	logMsgPingFailed      = "database connectivity check failed"
	logAttrError          = "error"
	logAttrQuery          = "query"
	logAttrSchoolYear     = "school_year"
	logAttrRowCount       = "row_count"
	logAttrDurationMS     = "duration_ms"
)

// Logger interface for SQL query logging, warnings, and error reporting.
// *slog.Logger satisfies it directly.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Fetcher executes bound roster queries against a Postgres database and
// materializes the result as a roster.Roster. It works with any supported
// database library through an internal adapter.
type Fetcher struct {
	db           adapters.DBAdapter
	logger       Logger
	queryTimeout time.Duration
}

// Option defines a functional option for configuring a Fetcher.
type Option func(*Fetcher) error

// WithLogger sets the logger for the Fetcher.
//
// Debug level: SQL text with execution timing (development use)
// Info level: row counts and durations (production-safe)
// Warn level: non-critical issues like cleanup failures
// Error level: failures that cause the fetch to fail.
func WithLogger(logger Logger) Option {
	return func(f *Fetcher) error {
		f.logger = logger
		return nil
	}
}

// WithQueryTimeout caps the execution time of a single fetch. Zero disables
// the cap and defers to the caller's context.
func WithQueryTimeout(timeout time.Duration) Option {
	return func(f *Fetcher) error {
		if timeout < 0 {
			return fmt.Errorf("negative query timeout: %s", timeout)
		}

		f.queryTimeout = timeout

		return nil
	}
}

// NewFetcherFromPGXPool creates a Fetcher backed by a pgxpool.Pool.
func NewFetcherFromPGXPool(pool *pgxpool.Pool, options ...Option) (Fetcher, error) {
	return newFetcher(adapters.NewPGXAdapter(pool), options...)
}

// NewFetcherFromSQLDB creates a Fetcher backed by a standard library sql.DB.
func NewFetcherFromSQLDB(db *sql.DB, options ...Option) (Fetcher, error) {
	return newFetcher(adapters.NewSQLAdapter(db), options...)
}

// NewFetcherFromSQLX creates a Fetcher backed by a sqlx.DB.
func NewFetcherFromSQLX(db *sqlx.DB, options ...Option) (Fetcher, error) {
	return newFetcher(adapters.NewSQLXAdapter(db), options...)
}

func newFetcher(db adapters.DBAdapter, options ...Option) (Fetcher, error) {
	f := Fetcher{
		db:           db,
		queryTimeout: defaultQueryTimeout,
	}

	for _, option := range options {
		if err := option(&f); err != nil {
			return Fetcher{}, err
		}
	}

	return f, nil
}

// Fetch executes the bound query and materializes every matching row. All
// values are rendered as strings (SQL NULL becomes ""); column order follows
// the query. An empty result is returned as-is, never treated as an error.
func (f Fetcher) Fetch(ctx context.Context, query rosterquery.BoundQuery) (roster.Roster, error) {
	var empty roster.Roster

	if f.queryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.queryTimeout)
		defer cancel()
	}

	rows, duration, queryErr := f.executeQuery(ctx, query)
	if queryErr != nil {
		return empty, queryErr
	}
	defer f.closeRows(rows)

	result, scanErr := f.materializeRows(rows)
	if scanErr != nil {
		return empty, scanErr
	}

	f.logInfo(logMsgFetchCompleted,
		logAttrSchoolYear, query.Year().Int(),
		logAttrRowCount, result.Len(),
		logAttrDurationMS, durationToMilliseconds(duration))

	return result, nil
}

// Ping verifies connectivity to the database without touching roster data.
func (f Fetcher) Ping(ctx context.Context) error {
	if pingErr := f.db.Ping(ctx); pingErr != nil {
		f.logError(logMsgPingFailed, logAttrError, pingErr.Error())
		return errors.Join(roster.ErrConnectionFailed, pingErr)
	}

	return nil
}

func (f Fetcher) executeQuery(ctx context.Context, query rosterquery.BoundQuery) (
	adapters.DBRows,
	time.Duration,
	error,
) {

	start := time.Now()
	rows, queryErr := f.db.Query(ctx, query.SQL(), query.Args()...)
	duration := time.Since(start)

	f.logDebug(logMsgSQLExecuted,
		logAttrQuery, query.SQL(),
		logAttrDurationMS, durationToMilliseconds(duration))

	if queryErr != nil {
		f.logError(logMsgDBQueryFailed, logAttrError, queryErr.Error(), logAttrQuery, query.SQL())
		return nil, duration, errors.Join(roster.ErrQueryFailed, queryErr)
	}

	return rows, duration, nil
}

func (f Fetcher) materializeRows(rows adapters.DBRows) (roster.Roster, error) {
	var empty roster.Roster

	columns, columnsErr := rows.Columns()
	if columnsErr != nil {
		f.logError(logMsgReadColumnsFail, logAttrError, columnsErr.Error())
		return empty, errors.Join(roster.ErrScanFailed, columnsErr)
	}

	result := roster.Roster{
		Columns: columns,
		Rows:    make([][]string, 0),
	}

	values := make([]any, len(columns))
	dest := make([]any, len(columns))
	for i := range values {
		dest[i] = &values[i]
	}

	for rows.Next() {
		if scanErr := rows.Scan(dest...); scanErr != nil {
			f.logError(logMsgScanRowFailed, logAttrError, scanErr.Error())
			return empty, errors.Join(roster.ErrScanFailed, scanErr)
		}

		row := make([]string, len(columns))
		for i, value := range values {
			row[i] = renderValue(value)
		}

		result.Rows = append(result.Rows, row)
	}

	if iterErr := rows.Err(); iterErr != nil {
		f.logError(logMsgRowIterFailed, logAttrError, iterErr.Error())
		return empty, errors.Join(roster.ErrQueryFailed, iterErr)
	}

	return result, nil
}

// renderValue converts a scanned database value to its exported string form.
// Dates are rendered date-only; timestamps keep their time component.
func renderValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case time.Time:
		if v.Hour() == 0 && v.Minute() == 0 && v.Second() == 0 && v.Nanosecond() == 0 {
			return v.Format("2006-01-02")
		}
		return v.Format("2006-01-02 15:04:05")
	default:
		return fmt.Sprint(v)
	}
}

func (f Fetcher) closeRows(rows adapters.DBRows) {
	if closeErr := rows.Close(); closeErr != nil {
		f.logWarn(logMsgCloseRowsFailed, logAttrError, closeErr.Error())
	}
}

func (f Fetcher) logDebug(msg string, args ...any) {
	if f.logger != nil {
		f.logger.Debug(msg, args...)
	}
}

func (f Fetcher) logInfo(msg string, args ...any) {
	if f.logger != nil {
		f.logger.Info(msg, args...)
	}
}

func (f Fetcher) logWarn(msg string, args ...any) {
	if f.logger != nil {
		f.logger.Warn(msg, args...)
	}
}

func (f Fetcher) logError(msg string, args ...any) {
	if f.logger != nil {
		f.logger.Error(msg, args...)
	}
}

func durationToMilliseconds(duration time.Duration) float64 {
	return float64(duration.Nanoseconds()) / 1e6
}
