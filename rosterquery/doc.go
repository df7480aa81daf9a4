// Package rosterquery turns an opaque SQL template into an executable,
// parameterized roster query.
//
// A template declares exactly one named slot, :school_year. Binding replaces
// the slot with a driver-level positional parameter and carries the year as
// an integer bind value - the year never appears inside the query text, which
// rules the original string-interpolation hazard out structurally:
//
//	tpl, err := rosterquery.Load("roster_query.sql")
//	bound, err := tpl.Bind(year)
//	bound.SQL()  // "... WHERE school_year = $1 ..."
//	bound.Args() // []any{2025}
//
// Templates that lack the slot, duplicate it, or declare a slot the binder
// cannot satisfy are rejected at load time; no partially-bound query ever
// reaches the database. Deployments without a SQL file use the built-in
// statement, rendered with goqu in prepared mode.
package rosterquery
