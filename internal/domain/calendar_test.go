package domain

import (
	"testing"
	"time"
)

func TestDefaultWorkingDays_MondayToFriday(t *testing.T) {
	wd := DefaultWorkingDays(1, 1)

	monday := time.Date(2021, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		day := monday.AddDate(0, 0, i)
		if !wd.IsWorkingDay(day) {
			t.Fatalf("%s should be a working day by default", day.Weekday())
		}
	}
	saturday := monday.AddDate(0, 0, 5)
	sunday := monday.AddDate(0, 0, 6)
	if wd.IsWorkingDay(saturday) || wd.IsWorkingDay(sunday) {
		t.Fatalf("weekend should not be working by default")
	}
}

func TestIsWorkingDay_ExceptionOverridesWorkingWeekday(t *testing.T) {
	wd := DefaultWorkingDays(1, 1)
	wd.NonWorkingDays = []NonWorkingDay{
		{Date: time.Date(2021, 3, 3, 0, 0, 0, 0, time.UTC)},
	}

	holiday := time.Date(2021, 3, 3, 15, 30, 0, 0, time.UTC)
	if wd.IsWorkingDay(holiday) {
		t.Fatalf("exception date should not be working regardless of time of day")
	}
	dayAfter := time.Date(2021, 3, 4, 9, 0, 0, 0, time.UTC)
	if !wd.IsWorkingDay(dayAfter) {
		t.Fatalf("the day after the exception should stay working")
	}
}

func TestIsWorkingDay_ExceptionCannotEnableDisabledWeekday(t *testing.T) {
	// Exceptions only override in the non-working direction: listing
	// a Saturday changes nothing when Saturday is already off.
	wd := DefaultWorkingDays(1, 1)
	saturday := time.Date(2021, 3, 6, 9, 0, 0, 0, time.UTC)
	wd.NonWorkingDays = []NonWorkingDay{{Date: saturday}}

	if wd.IsWorkingDay(saturday) {
		t.Fatalf("saturday should stay non-working")
	}
}

func TestIsWorkingDay_WeekdayFlags(t *testing.T) {
	wd := DefaultWorkingDays(1, 1)
	wd.Monday = false
	wd.Saturday = true

	monday := time.Date(2021, 3, 1, 9, 0, 0, 0, time.UTC)
	saturday := time.Date(2021, 3, 6, 9, 0, 0, 0, time.UTC)
	if wd.IsWorkingDay(monday) {
		t.Fatalf("disabled monday should not be working")
	}
	if !wd.IsWorkingDay(saturday) {
		t.Fatalf("enabled saturday should be working")
	}
}

func TestSprintDays(t *testing.T) {
	start := time.Date(2021, 3, 1, 9, 0, 0, 0, time.UTC)
	finish := time.Date(2021, 3, 5, 9, 0, 0, 0, time.UTC)
	s := Sprint{StartedAt: &start, FinishedAt: &finish}
	if s.Days() != 4 {
		t.Fatalf("expected 4 days, got %d", s.Days())
	}

	var draft Sprint
	if draft.Days() != 0 {
		t.Fatalf("draft sprint should report 0 days, got %d", draft.Days())
	}
}

func TestEffortSnapshotEstimatedValue(t *testing.T) {
	e := EffortSnapshot{TotalValue: 40, DoneValue: 15}
	if e.EstimatedValue() != 25 {
		t.Fatalf("expected estimated 25, got %d", e.EstimatedValue())
	}
}
