package core

import "time"

// StatementWindow selects the time range of a statement.
type StatementWindow int

const (
	Today StatementWindow = iota
	Last7Days
	CurrentMonth
)

func (w StatementWindow) String() string {
	switch w {
	case Today:
		return "today"
	case Last7Days:
		return "last_7_days"
	case CurrentMonth:
		return "current_month"
	default:
		return "unknown"
	}
}

// Start returns the first instant covered by the window, evaluated at now in loc.
func (w StatementWindow) Start(now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	now = now.In(loc)
	switch w {
	case Last7Days:
		return now.Add(-7 * 24 * time.Hour)
	case CurrentMonth:
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
	default:
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	}
}
