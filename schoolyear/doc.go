// Package schoolyear resolves a point in time to the academic year it falls
// in. The school year spans September 1st through the following August 31st
// and is identified by its starting calendar year.
//
// Resolution is a pure function of the supplied reference instant - the
// package never reads a clock, which keeps the cutover boundary trivially
// testable:
//
//	year := schoolyear.Resolve(time.Now()) // e.g. 2025 for the 2025-2026 year
//
// An explicit override for backfills and manual testing bypasses the calendar
// entirely and is only checked for plausibility:
//
//	year, err := schoolyear.ParseOverride(2023, time.Now())
package schoolyear
