// Package adapters provides database adapter implementations for the
// PostgreSQL roster fetcher.
//
// This package implements the adapter pattern to support multiple PostgreSQL
// database libraries: pgxpool.Pool, sql.DB, and sqlx.DB. All adapters provide
// equivalent functionality through a common DBAdapter interface, allowing the
// fetcher to work seamlessly with any supported connection type.
//
// Unlike a plain query runner, the adapter signatures carry bind arguments
// separately from the query text, so a roster query reaches the driver fully
// parameterized.
package adapters
