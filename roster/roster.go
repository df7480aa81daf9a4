package roster

import (
	"errors"
)

var ErrQueryFailed = errors.New("executing the roster query failed")
var ErrScanFailed = errors.New("scanning a roster row failed")
var ErrConnectionFailed = errors.New("database connection check failed")

// Roster is the tabular result of a roster query: an ordered header plus the
// matching rows, every value already rendered as a string (SQL NULL becomes
// the empty string). Column order is the query's column order and is
// preserved through export.
type Roster struct {
	Columns []string
	Rows    [][]string
}

// Len returns the number of data rows, excluding the header.
func (r Roster) Len() int {
	return len(r.Rows)
}

// Empty reports whether the roster holds no data rows. An empty roster is a
// legitimate result (e.g. early in a new school year), not an error.
func (r Roster) Empty() bool {
	return len(r.Rows) == 0
}
