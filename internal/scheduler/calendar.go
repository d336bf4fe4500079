package scheduler

import (
	"fmt"
	"time"
)

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// Weekday is the three letter lowercase code used by study budgets.
type Weekday string

const (
	Mon Weekday = "mon"
	Tue Weekday = "tue"
	Wed Weekday = "wed"
	Thu Weekday = "thu"
	Fri Weekday = "fri"
	Sat Weekday = "sat"
	Sun Weekday = "sun"
)

// Weekdays lists the codes Monday first.
var Weekdays = []Weekday{Mon, Tue, Wed, Thu, Fri, Sat, Sun}

var weekdayCodes = [...]Weekday{
	time.Sunday:    Sun,
	time.Monday:    Mon,
	time.Tuesday:   Tue,
	time.Wednesday: Wed,
	time.Thursday:  Thu,
	time.Friday:    Fri,
	time.Saturday:  Sat,
}

// WeekdayOf returns the weekday code of the calendar date of t.
func WeekdayOf(t time.Time) Weekday {
	return weekdayCodes[DateOf(t).Weekday()]
}

// DateOf drops the clock and location of t, keeping its calendar date at UTC midnight.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD value.
func ParseDate(raw string) (time.Time, error) {
	t, err := time.Parse(DateLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", raw, err)
	}
	return t, nil
}

// FormatDate renders the calendar date of t as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return DateOf(t).Format(DateLayout)
}

// CalendarDay pairs a date with its weekday code.
type CalendarDay struct {
	Date    time.Time
	Weekday Weekday
}

// Range is an inclusive, lazily walked run of calendar days. The zero value and
// any range whose start falls after its end are empty. A Range can be walked any
// number of times.
type Range struct {
	start time.Time
	end   time.Time
	set   bool
}

// Calendar returns the days from start to end inclusive.
func Calendar(start, end time.Time) Range {
	return Range{start: DateOf(start), end: DateOf(end), set: true}
}

// Len reports the number of days in the range.
func (r Range) Len() int {
	if !r.set || r.end.Before(r.start) {
		return 0
	}
	return int(civilDay(r.end)-civilDay(r.start)) + 1
}

// civilDay counts days since 1970-01-01 in the proleptic Gregorian calendar.
func civilDay(t time.Time) int64 {
	y, m, d := t.Date()
	year := int64(y)
	if m <= time.February {
		year--
	}
	era := year / 400
	if year < 0 && year%400 != 0 {
		era--
	}
	yoe := year - era*400
	mp := (int64(m) + 9) % 12
	doy := (153*mp+2)/5 + int64(d) - 1
	doe := yoe*365 + yoe/4 - yoe/100 + doy
	return era*146097 + doe - 719468
}

// Each calls fn for every day in ascending order until fn returns false.
func (r Range) Each(fn func(CalendarDay) bool) {
	if r.Len() == 0 {
		return
	}
	for d := r.start; !d.After(r.end); d = d.AddDate(0, 0, 1) {
		if !fn(CalendarDay{Date: d, Weekday: weekdayCodes[d.Weekday()]}) {
			return
		}
	}
}

// Days materialises the range.
func (r Range) Days() []CalendarDay {
	days := make([]CalendarDay, 0, r.Len())
	r.Each(func(day CalendarDay) bool {
		days = append(days, day)
		return true
	})
	return days
}
