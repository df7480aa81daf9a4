package rosterquery

import (
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration

	"github.com/k12ops/rosterreport/schoolyear"
)

const (
	dialectPostgres = "postgres"
	rosterTable     = "student_roster"
	colStudentID    = "student_id"
	colSSID         = "ssid"
	colLastName     = "last_name"
	colFirstName    = "first_name"
	colBirthDate    = "birth_date"
	colGradeLevel   = "grade_level"
	colSchoolName   = "school_name"
	colSchoolYear   = "school_year"
	colStatus       = "enrollment_status"
	colProgramCode  = "program_code"

	statusActive = "active"

	// Students enrolled in program 696 are tracked elsewhere and excluded
	// from the report, as are students without a state student identifier.
	excludedProgramCode = "696"
)

// BuiltinStatement is the fallback roster query for deployments that ship no
// SQL file. It selects the active-student roster for one school year with the
// same exclusions the canonical template applies.
type BuiltinStatement struct{}

// Builtin returns the built-in roster statement.
func Builtin() BuiltinStatement {
	return BuiltinStatement{}
}

// Bind renders the built-in statement as a prepared query with the school
// year as its only bind parameter.
func (BuiltinStatement) Bind(year schoolyear.Year) (BoundQuery, error) {
	if !year.Valid() {
		return BoundQuery{}, fmt.Errorf("%w: %d", ErrInvalidYear, int(year))
	}

	stmt := goqu.Dialect(dialectPostgres).
		From(rosterTable).
		Select(colStudentID, colSSID, colLastName, colFirstName, colBirthDate, colGradeLevel, colSchoolName).
		Where(
			goqu.C(colSchoolYear).Eq(year.Int()),
			goqu.C(colStatus).Eq(statusActive),
			goqu.C(colSSID).IsNotNull(),
			goqu.C(colSSID).Neq(""),
			goqu.C(colProgramCode).Neq(excludedProgramCode),
		).
		Order(goqu.I(colLastName).Asc(), goqu.I(colFirstName).Asc()).
		Prepared(true)

	sql, args, err := stmt.ToSQL()
	if err != nil {
		return BoundQuery{}, fmt.Errorf("building the built-in roster statement: %w", err)
	}

	return BoundQuery{sql: sql, args: args, year: year}, nil
}
