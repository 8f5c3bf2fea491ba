package tracker

import (
	"testing"
	"time"
)

func TestShouldRecordAccident(t *testing.T) {
	catID := uint64(3)

	if !ShouldRecordAccident(SeverityCritical, &catID) {
		t.Fatalf("ShouldRecordAccident(critical, category) = false")
	}
	if ShouldRecordAccident(SeverityCritical, nil) {
		t.Fatalf("ShouldRecordAccident(critical, no category) = true")
	}
	if ShouldRecordAccident(SeverityHigh, &catID) {
		t.Fatalf("ShouldRecordAccident(high, category) = true")
	}
}

func TestShouldStampResolved(t *testing.T) {
	cases := []struct {
		previous Status
		next     Status
		want     bool
	}{
		{StatusOpen, StatusResolved, true},
		{StatusInProgress, StatusResolved, true},
		{StatusResolved, StatusResolved, false},
		{StatusResolved, StatusOpen, false},
		{StatusOpen, StatusArchived, false},
	}
	for _, tc := range cases {
		if got := ShouldStampResolved(tc.previous, tc.next); got != tc.want {
			t.Fatalf("ShouldStampResolved(%s, %s) = %v, want %v", tc.previous, tc.next, got, tc.want)
		}
	}
}

func TestShouldAutoResolve(t *testing.T) {
	if !ShouldAutoResolve(4, StatusOpen) {
		t.Fatalf("rating 4 against open issue should resolve")
	}
	if !ShouldAutoResolve(5, StatusInProgress) {
		t.Fatalf("rating 5 against in_progress issue should resolve")
	}
	if ShouldAutoResolve(3.5, StatusOpen) {
		t.Fatalf("rating below threshold should not resolve")
	}
	// Idempotence guard: an already resolved issue is left alone.
	if ShouldAutoResolve(5, StatusResolved) {
		t.Fatalf("resolved issue should not be resolved again")
	}
}

func TestDaysBetween(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

	if got := DaysBetween(now.Add(-2*time.Hour), now); got != 0 {
		t.Fatalf("accident 2h ago: days = %d, want 0", got)
	}
	if got := DaysBetween(now.Add(-25*time.Hour), now); got != 1 {
		t.Fatalf("accident 25h ago: days = %d, want 1", got)
	}
	if got := DaysBetween(now.AddDate(0, 0, -10), now); got != 10 {
		t.Fatalf("accident 10d ago: days = %d, want 10", got)
	}
	// Clock skew: a future occurred-at still yields a non-negative count.
	if got := DaysBetween(now.Add(30*time.Hour), now); got != 1 {
		t.Fatalf("accident 30h in the future: days = %d, want 1", got)
	}
}

func TestEnumMembership(t *testing.T) {
	if !ValidSeverity(SeverityCritical) || ValidSeverity("urgent") {
		t.Fatalf("severity membership broken")
	}
	if !ValidStatus(StatusInProgress) || ValidStatus("closed") {
		t.Fatalf("status membership broken")
	}
	if !ValidRole(RoleAdmin) || ValidRole("root") {
		t.Fatalf("role membership broken")
	}
}
