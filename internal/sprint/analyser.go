// Package sprint holds the burn-down estimation engine: pure
// calculations over a sprint window, a project working-days calendar
// and the sprint efforts history. Nothing here touches storage.
package sprint

import (
	"math"
	"time"

	"github.com/cybersturmer/pmdragon-core-api/internal/domain"
)

// DayPoint is one element of the projected burn-down guideline.
type DayPoint struct {
	Time        time.Time `json:"time"`
	IsWorking   bool      `json:"is_working"`
	StoryPoints int       `json:"story_points"`
}

// Analyser computes the estimated-efforts distribution for the sprint
// burn-down chart. To build it we need the sprint window (start, end),
// the standard and exceptional non-working days of the project, and
// the total story points the sprint started with.
type Analyser struct {
	sprint      domain.Sprint
	workingDays domain.WorkingDays
}

func NewAnalyser(s domain.Sprint, wd domain.WorkingDays) *Analyser {
	return &Analyser{sprint: s, workingDays: wd}
}

// DaySeries walks the sprint window one calendar day at a time,
// starting exactly at StartedAt. Elements that would step past
// FinishedAt are clamped to it, so the series always has Days()+1
// elements and never leaves the window.
func (a *Analyser) DaySeries() []time.Time {
	series := make([]time.Time, 0, a.sprint.Days()+1)

	for day := 0; day <= a.sprint.Days(); day++ {
		oneDayLater := a.sprint.StartedAt.AddDate(0, 0, day)
		if !oneDayLater.Before(*a.sprint.FinishedAt) {
			oneDayLater = *a.sprint.FinishedAt
		}
		series = append(series, oneDayLater)
	}

	return series
}

// MarkedSeries is the day series with every element marked working or
// not per the project calendar. Story points stay zero here.
func (a *Analyser) MarkedSeries() []DayPoint {
	days := a.DaySeries()
	marked := make([]DayPoint, 0, len(days))

	for _, day := range days {
		marked = append(marked, DayPoint{
			Time:      day,
			IsWorking: a.workingDays.IsWorkingDay(day),
		})
	}

	return marked
}

// Guideline distributes baselineTotal story points linearly over the
// working days of the sprint window. The first day stays flat at the
// baseline; every later day steps down by one share iff the previous
// day was a working day. Shares are rounded per day independently, so
// the sequence may not step by exactly one share and may dip slightly
// below zero on uneven divisions; no clamping.
//
// baselineTotal should be the total of the chronologically-first
// efforts-history row, not the live total: sprint scope can change
// after start and the guideline intentionally ignores that.
func (a *Analyser) Guideline(baselineTotal int) []DayPoint {
	marked := a.MarkedSeries()

	workingLen := 0
	for _, element := range marked {
		if element.IsWorking {
			workingLen++
		}
	}

	// The first working day consumes none of the budget, hence the
	// workingLen-1 denominator. A one-day or fully non-working sprint
	// degenerates to the whole total as a single share.
	share := float64(baselineTotal)
	if workingLen > 1 {
		share = float64(baselineTotal) / float64(workingLen-1)
	}

	remaining := float64(baselineTotal)
	for i := range marked {
		if i > 0 && marked[i-1].IsWorking {
			remaining -= share
		}
		marked[i].StoryPoints = int(math.Round(remaining))
	}

	return marked
}
