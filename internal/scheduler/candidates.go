package scheduler

import "time"

// CandidateDates lists the dates of a subject window [start, end] in ascending
// order. An empty result means the subject cannot receive any assignment.
func CandidateDates(start, end time.Time) []time.Time {
	cal := Calendar(start, end)
	dates := make([]time.Time, 0, cal.Len())
	cal.Each(func(day CalendarDay) bool {
		dates = append(dates, day.Date)
		return true
	})
	return dates
}
