package schoolyear

import (
	"errors"
	"fmt"
	"time"
)

// Cutover rule: the school year increments on September 1st, 00:00:00.
// Not configurable today; named so the rule lives in exactly one place.
const (
	CutoverMonth = time.September
	CutoverDay   = 1
)

// Plausibility window for explicit overrides, anchored to the reference
// instant's calendar year.
const (
	overrideYearsBack    = 10
	overrideYearsForward = 5
)

var ErrImplausibleYear = errors.New("school year outside the plausible range")

// Year identifies an academic year by its starting calendar year;
// 2025 means the 2025-2026 school year.
type Year int

// Resolve maps a reference instant to the school year it falls in.
//
// The cutover is September 1st 00:00:00 of ref's calendar year, compared in
// ref's own location. Any instant strictly before the cutover still belongs
// to the previous school year; the cutover instant itself already belongs to
// the new one.
//
// Time-zone policy: callers choose the zone by choosing ref. The orchestrator
// reads time.Now() exactly once per run, in the process-local zone, and
// passes it down - a school year is a local-calendar concept, so the
// deployment's wall clock governs. Resolve itself never touches a clock.
func Resolve(ref time.Time) Year {
	cutover := time.Date(ref.Year(), CutoverMonth, CutoverDay, 0, 0, 0, 0, ref.Location())

	if ref.Before(cutover) {
		return Year(ref.Year() - 1)
	}

	return Year(ref.Year())
}

// ParseOverride validates an explicit school year supplied by the caller,
// bypassing calendar resolution entirely. The override wins even when it
// contradicts what Resolve would return for ref; ref only anchors the
// plausibility window that guards against transcription errors.
func ParseOverride(raw int, ref time.Time) (Year, error) {
	lo := ref.Year() - overrideYearsBack
	hi := ref.Year() + overrideYearsForward

	if raw < lo || raw > hi {
		return 0, fmt.Errorf("override %d: %w (allowed %d..%d)", raw, ErrImplausibleYear, lo, hi)
	}

	return Year(raw), nil
}

// Valid reports whether y is a plausible four-digit school year.
func (y Year) Valid() bool {
	return y >= 1000 && y <= 9999
}

// String renders the conventional two-year form, e.g. "2025-2026".
func (y Year) String() string {
	return fmt.Sprintf("%d-%d", int(y), int(y)+1)
}

// Next returns the school year that follows y.
func (y Year) Next() Year {
	return y + 1
}

// Int returns the starting calendar year as a plain int, the form in which
// the year is bound into queries.
func (y Year) Int() int {
	return int(y)
}
