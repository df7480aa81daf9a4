package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/k12ops/rosterreport/internal/config"
	"github.com/k12ops/rosterreport/notify"
	"github.com/k12ops/rosterreport/roster/postgresengine"
	"github.com/k12ops/rosterreport/rosterquery"
)

// newLogger builds the process logger from config, optionally teeing into a
// log file next to stderr. The returned closer releases the file, if any.
func newLogger(cfg config.LoggingConfig, verbose bool) (*slog.Logger, func(), error) {
	level := parseLevel(cfg.Level)
	if verbose {
		level = slog.LevelDebug
	}

	var out io.Writer = os.Stderr
	closer := func() {}

	if cfg.File != "" {
		file, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("opening log file %s: %w", cfg.File, err)
		}

		out = io.MultiWriter(os.Stderr, file)
		closer = func() { _ = file.Close() }
	}

	handler := slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})

	return slog.New(handler), closer, nil
}

func parseLevel(raw string) slog.Level {
	switch raw {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// newBinder selects the file template or the built-in statement.
func newBinder(cfg config.QueryConfig) (rosterquery.Binder, error) {
	if cfg.TemplatePath == "" {
		return rosterquery.Builtin(), nil
	}

	return rosterquery.Load(cfg.TemplatePath)
}

// newFetcher opens the configured database engine and wraps it in a fetcher.
// The returned closer releases the underlying pool on every exit path.
func newFetcher(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (postgresengine.Fetcher, func(), error) {
	options := []postgresengine.Option{
		postgresengine.WithLogger(logger),
		postgresengine.WithQueryTimeout(cfg.QueryTimeout.Std()),
	}

	switch cfg.Engine {
	case config.EnginePGXPool:
		pool, err := cfg.OpenPGXPool(ctx)
		if err != nil {
			return postgresengine.Fetcher{}, nil, err
		}

		fetcher, newErr := postgresengine.NewFetcherFromPGXPool(pool, options...)
		if newErr != nil {
			pool.Close()
			return postgresengine.Fetcher{}, nil, newErr
		}

		return fetcher, pool.Close, nil

	case config.EngineSQLDB:
		db, err := cfg.OpenSQLDB()
		if err != nil {
			return postgresengine.Fetcher{}, nil, err
		}

		fetcher, newErr := postgresengine.NewFetcherFromSQLDB(db, options...)
		if newErr != nil {
			_ = db.Close()
			return postgresengine.Fetcher{}, nil, newErr
		}

		return fetcher, func() { _ = db.Close() }, nil

	case config.EngineSQLX:
		db, err := cfg.OpenSQLX()
		if err != nil {
			return postgresengine.Fetcher{}, nil, err
		}

		fetcher, newErr := postgresengine.NewFetcherFromSQLX(db, options...)
		if newErr != nil {
			_ = db.Close()
			return postgresengine.Fetcher{}, nil, newErr
		}

		return fetcher, func() { _ = db.Close() }, nil

	default:
		return postgresengine.Fetcher{}, nil, fmt.Errorf("%w, got %q", config.ErrUnknownEngine, cfg.Engine)
	}
}

// newMailer builds the SMTP notifier from config.
func newMailer(cfg config.EmailConfig) (notify.Mailer, error) {
	return notify.NewMailer(notify.Config{
		Host:       cfg.Host,
		Port:       cfg.Port,
		UseTLS:     cfg.UseTLS,
		UseAuth:    cfg.UseAuth,
		Username:   cfg.Username,
		Password:   cfg.Password,
		From:       cfg.From,
		Recipients: cfg.Recipients,
	})
}
