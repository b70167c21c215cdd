package service

import "time"

// A billing period is one calendar month anchored at its start instant.
// time.AddDate normalizes month-end overflow (Jan 31 + 1 month lands in early
// March), so NewPeriodStartingAt anchors first periods at month boundaries,
// which keeps the anchor stable across rollovers.

// PeriodEndFor returns the end of the period beginning at start.
func PeriodEndFor(start time.Time) time.Time {
	return start.AddDate(0, 1, 0)
}

// AdvancePeriod walks a period forward until it covers now.
// Each step sets start to the previous end. Already-current periods are
// returned unchanged, which makes rollover idempotent.
func AdvancePeriod(start, end time.Time, now time.Time) (time.Time, time.Time) {
	for !now.Before(end) {
		start = end
		end = PeriodEndFor(start)
	}
	return start, end
}

// NewPeriodStartingAt anchors a fresh subscriber's first period at the start
// of the current month in UTC.
func NewPeriodStartingAt(now time.Time) (time.Time, time.Time) {
	t := now.UTC()
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	return start, PeriodEndFor(start)
}
