package rosterquery

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/k12ops/rosterreport/schoolyear"
)

// Placeholder is the single named parameter slot every roster template must
// declare. The school year is only ever supplied through it - never as an
// interpolated literal inside the query text.
const Placeholder = "school_year"

var ErrEmptyTemplate = errors.New("query template is empty")
var ErrMissingPlaceholder = errors.New("query template is missing the :school_year placeholder")
var ErrUnknownPlaceholder = errors.New("query template contains a placeholder the binder cannot satisfy")
var ErrDuplicatePlaceholder = errors.New("query template declares the :school_year placeholder more than once")
var ErrInvalidYear = errors.New("school year to bind is not a plausible four-digit year")

// namedParamPattern matches :name tokens while skipping Postgres ::type casts.
var namedParamPattern = regexp.MustCompile(`(^|[^:\w]):([A-Za-z_][A-Za-z0-9_]*)`)

// Binder produces a bound roster query for a school year. Both file-based
// Templates and the built-in statement implement it.
type Binder interface {
	Bind(year schoolyear.Year) (BoundQuery, error)
}

// Template wraps opaque SQL text whose only degree of freedom is the
// :school_year slot. A Template is always fully validated: the constructors
// never return one with a missing, duplicated or unrecognized placeholder.
type Template struct {
	text     string // raw text, as loaded
	scrubbed string // comments removed; what validation and binding see
}

// Load reads a template from a SQL file and validates it.
func Load(path string) (Template, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Template{}, fmt.Errorf("reading query template %s: %w", path, err)
	}

	tpl, parseErr := Parse(string(raw))
	if parseErr != nil {
		return Template{}, fmt.Errorf("query template %s: %w", path, parseErr)
	}

	return tpl, nil
}

// Parse validates raw SQL text as a roster query template. Placeholder
// recognition works on the comment-stripped text, so a -- or /* */ comment
// may mention :school_year without counting as a slot.
func Parse(text string) (Template, error) {
	if strings.TrimSpace(text) == "" {
		return Template{}, ErrEmptyTemplate
	}

	scrubbed := stripComments(text)

	found := 0
	for _, match := range namedParamPattern.FindAllStringSubmatch(scrubbed, -1) {
		name := match[2]
		if name != Placeholder {
			return Template{}, fmt.Errorf("%w: :%s", ErrUnknownPlaceholder, name)
		}
		found++
	}

	switch {
	case found == 0:
		return Template{}, ErrMissingPlaceholder
	case found > 1:
		return Template{}, ErrDuplicatePlaceholder
	}

	return Template{text: text, scrubbed: scrubbed}, nil
}

// stripComments removes -- line comments and /* */ block comments while
// leaving quoted string literals untouched, so a '--' inside a value
// survives. Line comments keep their trailing newline to preserve the
// template's line structure.
func stripComments(sql string) string {
	var b strings.Builder
	inString := false

	for i := 0; i < len(sql); i++ {
		c := sql[i]

		switch {
		case inString:
			b.WriteByte(c)
			if c == '\'' {
				inString = false
			}
		case c == '\'':
			inString = true
			b.WriteByte(c)
		case c == '-' && i+1 < len(sql) && sql[i+1] == '-':
			for i < len(sql) && sql[i] != '\n' {
				i++
			}
			if i < len(sql) {
				b.WriteByte('\n')
			}
		case c == '/' && i+1 < len(sql) && sql[i+1] == '*':
			i += 2
			for i+1 < len(sql) && !(sql[i] == '*' && sql[i+1] == '/') {
				i++
			}
			i++
		default:
			b.WriteByte(c)
		}
	}

	return b.String()
}

// Text returns the raw template text with the placeholder still unbound.
func (t Template) Text() string {
	return t.text
}

// Bind produces the executable form of the template: the :school_year slot
// becomes a driver-level bind parameter carrying the year as an integer. The
// query text never contains the year itself.
func (t Template) Bind(year schoolyear.Year) (BoundQuery, error) {
	if !year.Valid() {
		return BoundQuery{}, fmt.Errorf("%w: %d", ErrInvalidYear, int(year))
	}

	// bind against the scrubbed text: sqlx would otherwise substitute
	// placeholder mentions inside comments as well
	named, args, err := sqlx.Named(t.scrubbed, map[string]any{Placeholder: year.Int()})
	if err != nil {
		return BoundQuery{}, fmt.Errorf("binding school year into template: %w", err)
	}

	return BoundQuery{
		sql:  sqlx.Rebind(sqlx.DOLLAR, named),
		args: args,
		year: year,
	}, nil
}

// BoundQuery is a fully parameterized roster query ready for execution. The
// school-year filter is an exact equality match on the bound value - no
// range, no fallback to a latest-known year.
type BoundQuery struct {
	sql  string
	args []any
	year schoolyear.Year
}

// SQL returns the query text with positional bind placeholders ($1).
func (q BoundQuery) SQL() string {
	return q.sql
}

// Args returns the bind values, in placeholder order.
func (q BoundQuery) Args() []any {
	return q.args
}

// Year returns the school year the query was bound with.
func (q BoundQuery) Year() schoolyear.Year {
	return q.year
}
