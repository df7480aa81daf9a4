package config

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // postgres driver for the sqldb engine
)

const pqDriverName = "postgres"

// OpenPGXPool builds a pgxpool.Pool from the database settings.
func (c DatabaseConfig) OpenPGXPool(ctx context.Context) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(c.URL)
	if err != nil {
		return nil, fmt.Errorf("parsing database url: %w", err)
	}

	poolConfig.MaxConns = c.MaxConns
	poolConfig.MaxConnLifetime = c.MaxConnLifetime.Std()
	poolConfig.MaxConnIdleTime = c.MaxConnIdleTime.Std()
	poolConfig.HealthCheckPeriod = c.HealthCheckPeriod.Std()
	poolConfig.ConnConfig.ConnectTimeout = c.ConnectTimeout.Std()

	pool, newErr := pgxpool.NewWithConfig(ctx, poolConfig)
	if newErr != nil {
		return nil, fmt.Errorf("creating connection pool: %w", newErr)
	}

	return pool, nil
}

// OpenSQLDB builds a database/sql connection via lib/pq.
func (c DatabaseConfig) OpenSQLDB() (*sql.DB, error) {
	db, err := sql.Open(pqDriverName, c.URL)
	if err != nil {
		return nil, fmt.Errorf("opening database connection: %w", err)
	}

	c.tunePool(db)

	return db, nil
}

// OpenSQLX builds a sqlx connection via lib/pq.
func (c DatabaseConfig) OpenSQLX() (*sqlx.DB, error) {
	db, err := sqlx.Open(pqDriverName, c.URL)
	if err != nil {
		return nil, fmt.Errorf("opening database connection: %w", err)
	}

	c.tunePool(db.DB)

	return db, nil
}

func (c DatabaseConfig) tunePool(db *sql.DB) {
	db.SetMaxOpenConns(int(c.MaxConns))
	db.SetMaxIdleConns(c.MaxIdleConns)
	db.SetConnMaxLifetime(c.MaxConnLifetime.Std())
	db.SetConnMaxIdleTime(c.MaxConnIdleTime.Std())
}
