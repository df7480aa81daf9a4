// Package postgresengine implements the roster fetcher for PostgreSQL.
//
// A Fetcher can be constructed from a pgxpool.Pool, a sql.DB or a sqlx.DB;
// all three run through the same internal adapter interface:
//
//	fetcher, err := postgresengine.NewFetcherFromPGXPool(pool,
//		postgresengine.WithLogger(logger))
//
//	result, err := fetcher.Fetch(ctx, boundQuery)
//
// Fetch only accepts a rosterquery.BoundQuery, so an unbound or
// string-interpolated statement cannot reach the database by construction.
package postgresengine
