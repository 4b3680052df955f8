package domain

import "time"

// WorkingDays keeps the per-project weekly schedule used to spread the
// sprint burn-down guideline over working days only. Timezone is
// informational: day lookups compare naive UTC calendar dates.
type WorkingDays struct {
	ID          int64  `json:"id"`
	WorkspaceID int64  `json:"workspace"`
	ProjectID   int64  `json:"project"`
	Timezone    string `json:"timezone"`

	Monday    bool `json:"monday"`
	Tuesday   bool `json:"tuesday"`
	Wednesday bool `json:"wednesday"`
	Thursday  bool `json:"thursday"`
	Friday    bool `json:"friday"`
	Saturday  bool `json:"saturday"`
	Sunday    bool `json:"sunday"`

	// NonWorkingDays are explicit exception dates. They only override
	// in the non-working direction: a weekday switched off above can
	// not be switched back on by an exception.
	NonWorkingDays []NonWorkingDay `json:"non_working_days,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`
}

// NonWorkingDay is a single exception date for a project.
type NonWorkingDay struct {
	ID          int64     `json:"id"`
	WorkspaceID int64     `json:"workspace"`
	ProjectID   int64     `json:"project"`
	Date        time.Time `json:"date"`
}

// DefaultWorkingDays is the schedule every project starts with.
func DefaultWorkingDays(workspaceID, projectID int64) WorkingDays {
	return WorkingDays{
		WorkspaceID: workspaceID,
		ProjectID:   projectID,
		Timezone:    "UTC",
		Monday:      true,
		Tuesday:     true,
		Wednesday:   true,
		Thursday:    true,
		Friday:      true,
	}
}

func (w WorkingDays) weekdayFlag(d time.Weekday) bool {
	switch d {
	case time.Monday:
		return w.Monday
	case time.Tuesday:
		return w.Tuesday
	case time.Wednesday:
		return w.Wednesday
	case time.Thursday:
		return w.Thursday
	case time.Friday:
		return w.Friday
	case time.Saturday:
		return w.Saturday
	default:
		return w.Sunday
	}
}

// IsWorkingDay reports whether the given day is a working day for the
// project: the weekday flag must be on and the date must not be listed
// as an exception. Total over any date.
func (w WorkingDays) IsWorkingDay(day time.Time) bool {
	if !w.weekdayFlag(day.Weekday()) {
		return false
	}
	y, m, d := day.Date()
	for _, nwd := range w.NonWorkingDays {
		ny, nm, nd := nwd.Date.Date()
		if ny == y && nm == m && nd == d {
			return false
		}
	}
	return true
}
