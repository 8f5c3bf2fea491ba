package tracker

import "time"

// EffectiveSolutionThreshold is the effectiveness rating (0-5 scale) at
// which a solution auto-resolves its parent issue.
const EffectiveSolutionThreshold = 4.0

// DefaultColor is the gray fallback for categories created without a color.
const DefaultColor = "#6b7280"

// ShouldRecordAccident reports whether creating an issue with the given
// severity and category must append an accident record.
func ShouldRecordAccident(severity Severity, categoryID *uint64) bool {
	return severity == SeverityCritical && categoryID != nil
}

// ShouldStampResolved reports whether an issue status transition must set
// the resolved-at timestamp. The stamp is one-way: moving away from
// resolved later never clears it.
func ShouldStampResolved(previous, next Status) bool {
	return next == StatusResolved && previous != StatusResolved
}

// ShouldAutoResolve reports whether a solution rating warrants resolving
// the parent issue. The decision must be made against the issue's live
// status so a concurrently resolved or archived issue is left alone.
func ShouldAutoResolve(rating float64, issueStatus Status) bool {
	return rating >= EffectiveSolutionThreshold && issueStatus != StatusResolved
}

// DaysBetween returns the number of whole days between two instants,
// using the absolute millisecond difference floored into 24h buckets.
// A gap under 24 hours is day zero.
func DaysBetween(occurredAt, now time.Time) int {
	diff := now.Sub(occurredAt)
	if diff < 0 {
		diff = -diff
	}
	return int(diff.Milliseconds() / (24 * time.Hour).Milliseconds())
}
