// Package timezone provides timezone and calendar-date utilities for the application.
//
// Wall-clock helpers follow the configured APP_TIMEZONE:
//
//	now := timezone.Now()
//	formatted := timezone.Format(time.Now(), time.RFC3339)
//
// Calendar helpers work on stay and sync dates. A calendar date is always a
// time.Time at midnight UTC, so day arithmetic never crosses a DST boundary:
//
//	start, err := timezone.ParseDate("2030-05-01")
//	nights := timezone.DaysBetween(start, end)
//	if start.Before(timezone.Today()) { ... }
//
// Today() resolves "today" in the application timezone before truncating it
// to a calendar date.
package timezone
