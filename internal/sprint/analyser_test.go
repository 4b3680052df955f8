package sprint

import (
	"testing"
	"time"

	"github.com/cybersturmer/pmdragon-core-api/internal/domain"
)

func sprintBetween(start, finish time.Time) domain.Sprint {
	return domain.Sprint{
		ID:         1,
		IsStarted:  true,
		StartedAt:  &start,
		FinishedAt: &finish,
	}
}

func points(guideline []DayPoint) []int {
	out := make([]int, len(guideline))
	for i, p := range guideline {
		out[i] = p.StoryPoints
	}
	return out
}

func TestGuideline_FullWorkingWeek(t *testing.T) {
	// Monday 09:00 through Friday 09:00, all weekdays working.
	start := time.Date(2021, 3, 1, 9, 0, 0, 0, time.UTC)
	finish := time.Date(2021, 3, 5, 9, 0, 0, 0, time.UTC)
	a := NewAnalyser(sprintBetween(start, finish), domain.DefaultWorkingDays(1, 1))

	got := points(a.Guideline(40))
	want := []int{40, 30, 20, 10, 0}
	if len(got) != len(want) {
		t.Fatalf("expected %d points, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("day %d: expected %d story points, got %d (%v)", i, want[i], got[i], got)
		}
	}
}

func TestGuideline_MidweekNonWorkingDay(t *testing.T) {
	start := time.Date(2021, 3, 1, 9, 0, 0, 0, time.UTC)
	finish := time.Date(2021, 3, 5, 9, 0, 0, 0, time.UTC)
	wd := domain.DefaultWorkingDays(1, 1)
	wd.NonWorkingDays = []domain.NonWorkingDay{
		{Date: time.Date(2021, 3, 3, 0, 0, 0, 0, time.UTC)}, // Wednesday
	}
	a := NewAnalyser(sprintBetween(start, finish), wd)

	got := points(a.Guideline(40))
	// 4 working days, share 40/3. Thursday holds flat because the
	// previous day was non-working.
	want := []int{40, 27, 13, 13, 0}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("day %d: expected %d story points, got %d (%v)", i, want[i], got[i], got)
		}
	}
}

func TestDaySeries_LengthAndEndpoints(t *testing.T) {
	start := time.Date(2021, 3, 1, 9, 0, 0, 0, time.UTC)
	finish := time.Date(2021, 3, 5, 9, 0, 0, 0, time.UTC)
	sp := sprintBetween(start, finish)
	a := NewAnalyser(sp, domain.DefaultWorkingDays(1, 1))

	series := a.DaySeries()
	if len(series) != sp.Days()+1 {
		t.Fatalf("expected %d elements, got %d", sp.Days()+1, len(series))
	}
	if !series[0].Equal(start) {
		t.Fatalf("first element should be started_at, got %v", series[0])
	}
	if !series[len(series)-1].Equal(finish) {
		t.Fatalf("last element should be finished_at, got %v", series[len(series)-1])
	}
}

func TestDaySeries_NeverStepsPastFinish(t *testing.T) {
	// A sprint ending mid-day: whole-day steps stay inside the window.
	start := time.Date(2021, 3, 1, 9, 0, 0, 0, time.UTC)
	finish := time.Date(2021, 3, 4, 5, 30, 0, 0, time.UTC)
	a := NewAnalyser(sprintBetween(start, finish), domain.DefaultWorkingDays(1, 1))

	series := a.DaySeries()
	if len(series) != 3 {
		t.Fatalf("expected 3 elements for a 2-day window, got %d", len(series))
	}
	for i, day := range series {
		if day.After(finish) {
			t.Fatalf("element %d is past finished_at: %v", i, day)
		}
	}
}

func TestGuideline_FirstDayAlwaysBaseline(t *testing.T) {
	start := time.Date(2021, 3, 1, 9, 0, 0, 0, time.UTC)
	finish := time.Date(2021, 3, 12, 9, 0, 0, 0, time.UTC)
	a := NewAnalyser(sprintBetween(start, finish), domain.DefaultWorkingDays(1, 1))

	for _, baseline := range []int{0, 7, 40, 123} {
		got := a.Guideline(baseline)
		if got[0].StoryPoints != baseline {
			t.Fatalf("baseline %d: first point should hold the baseline, got %d", baseline, got[0].StoryPoints)
		}
	}
}

func TestGuideline_WeekendHoldsFlat(t *testing.T) {
	// Monday to Monday: Saturday and Sunday keep the Friday value,
	// Monday after the weekend still holds before dropping.
	start := time.Date(2021, 3, 1, 9, 0, 0, 0, time.UTC)
	finish := time.Date(2021, 3, 8, 9, 0, 0, 0, time.UTC)
	a := NewAnalyser(sprintBetween(start, finish), domain.DefaultWorkingDays(1, 1))

	got := a.Guideline(30)
	// Working: Mon..Fri + final Mon = 6, share = 30/5 = 6.
	want := []int{30, 24, 18, 12, 6, 0, 0, 0}
	for i := range want {
		if got[i].StoryPoints != want[i] {
			t.Fatalf("day %d: expected %d, got %d", i, want[i], got[i].StoryPoints)
		}
	}
	if got[5].IsWorking || got[6].IsWorking {
		t.Fatalf("weekend marked working: %v", got)
	}
}

func TestGuideline_FullyNonWorkingSprint(t *testing.T) {
	// Saturday to Sunday, default calendar: no working days at all.
	start := time.Date(2021, 3, 6, 9, 0, 0, 0, time.UTC)
	finish := time.Date(2021, 3, 7, 9, 0, 0, 0, time.UTC)
	a := NewAnalyser(sprintBetween(start, finish), domain.DefaultWorkingDays(1, 1))

	got := a.Guideline(40)
	for i, p := range got {
		if p.StoryPoints != 40 {
			t.Fatalf("day %d: nothing should burn down without working days, got %d", i, p.StoryPoints)
		}
	}
}

func TestGuideline_SingleWorkingDay(t *testing.T) {
	// One working day means the whole total drops in a single step.
	start := time.Date(2021, 3, 5, 9, 0, 0, 0, time.UTC) // Friday
	finish := time.Date(2021, 3, 6, 9, 0, 0, 0, time.UTC)
	a := NewAnalyser(sprintBetween(start, finish), domain.DefaultWorkingDays(1, 1))

	got := a.Guideline(40)
	if got[0].StoryPoints != 40 {
		t.Fatalf("first day should hold the baseline, got %d", got[0].StoryPoints)
	}
	if got[1].StoryPoints != 0 {
		t.Fatalf("second day should drop to zero, got %d", got[1].StoryPoints)
	}
}

func TestGuideline_RoundingPerDayIndependent(t *testing.T) {
	// 10 points over 4 working Mon..Thu window (3 decrement shares of
	// 10/3): remaining walks 10, 6.67, 3.33, 0 and every day rounds
	// the remaining budget, not the step.
	start := time.Date(2021, 3, 1, 9, 0, 0, 0, time.UTC)
	finish := time.Date(2021, 3, 4, 9, 0, 0, 0, time.UTC)
	a := NewAnalyser(sprintBetween(start, finish), domain.DefaultWorkingDays(1, 1))

	got := points(a.Guideline(10))
	want := []int{10, 7, 3, 0}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("day %d: expected %d, got %d (%v)", i, want[i], got[i], got)
		}
	}
}
