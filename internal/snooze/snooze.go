// Package snooze decides whether a snoozed decision table should be
// skipped for the current run.
package snooze

import "time"

// ShouldSnooze reports whether a table whose directive carries a
// `-- snooze until DATE` modifier should still be skipped, given the
// current instant. Comparison is UTC, date-only inclusive: a table
// snoozed until today is still snoozed through the end of today.
func ShouldSnooze(until *time.Time, now time.Time) bool {
	if until == nil {
		return false
	}
	today := now.UTC().Truncate(24 * time.Hour)
	return !today.After(*until)
}
