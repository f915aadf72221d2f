// Package calendar provides the US Federal Reserve holiday calendar and
// business-day arithmetic used by projection and pacing calculations.
package calendar

import (
	"sync"
	"time"
)

var (
	holidayMu    sync.Mutex
	holidayCache = make(map[int]map[string]bool)
)

// BankHolidays returns the observed Federal Reserve holiday dates for a year.
// Holidays falling on Saturday are observed the preceding Friday; Sunday
// holidays are observed the following Monday.
func BankHolidays(year int) []time.Time {
	fixed := []time.Time{
		date(year, time.January, 1),   // New Year's Day
		date(year, time.June, 19),     // Juneteenth
		date(year, time.July, 4),      // Independence Day
		date(year, time.November, 11), // Veterans Day
		date(year, time.December, 25), // Christmas Day
	}

	floating := []time.Time{
		nthWeekday(year, time.January, time.Monday, 3),    // MLK Day
		nthWeekday(year, time.February, time.Monday, 3),   // Presidents' Day
		lastWeekday(year, time.May, time.Monday),          // Memorial Day
		nthWeekday(year, time.September, time.Monday, 1),  // Labor Day
		nthWeekday(year, time.October, time.Monday, 2),    // Columbus Day
		nthWeekday(year, time.November, time.Thursday, 4), // Thanksgiving
	}

	holidays := make([]time.Time, 0, len(fixed)+len(floating))
	for _, h := range fixed {
		holidays = append(holidays, observed(h))
	}
	// Floating holidays always land on a weekday; no observation shift.
	holidays = append(holidays, floating...)

	return holidays
}

// IsBusinessDay reports whether t is a weekday that is not an observed bank
// holiday. Observed holidays can cross year boundaries (a Jan 1 Saturday is
// observed Dec 31), so both the date's own year and its neighbors are checked.
func IsBusinessDay(t time.Time) bool {
	switch t.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}

	key := t.Format("2006-01-02")
	for _, year := range []int{t.Year() - 1, t.Year(), t.Year() + 1} {
		if holidaySet(year)[key] {
			return false
		}
	}

	return true
}

// BusinessDaysBetween counts business days in [start, end], inclusive on both
// ends. Returns 0 when end precedes start.
func BusinessDaysBetween(start, end time.Time) int {
	start = truncate(start)
	end = truncate(end)
	if end.Before(start) {
		return 0
	}

	count := 0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if IsBusinessDay(d) {
			count++
		}
	}
	return count
}

// BusinessDaysInMonth counts the business days in a calendar month
func BusinessDaysInMonth(year int, month time.Month) int {
	first := date(year, month, 1)
	last := first.AddDate(0, 1, -1)
	return BusinessDaysBetween(first, last)
}

// ElapsedBusinessDays counts business days from the start of now's month
// through now itself, inclusive
func ElapsedBusinessDays(now time.Time) int {
	first := date(now.Year(), now.Month(), 1)
	return BusinessDaysBetween(first, now)
}

// RemainingBusinessDays counts business days after now through month end
func RemainingBusinessDays(now time.Time) int {
	last := date(now.Year(), now.Month(), 1).AddDate(0, 1, -1)
	next := truncate(now).AddDate(0, 0, 1)
	if next.After(last) {
		return 0
	}
	return BusinessDaysBetween(next, last)
}

func holidaySet(year int) map[string]bool {
	holidayMu.Lock()
	defer holidayMu.Unlock()

	if set, ok := holidayCache[year]; ok {
		return set
	}

	set := make(map[string]bool)
	for _, h := range BankHolidays(year) {
		set[h.Format("2006-01-02")] = true
	}
	holidayCache[year] = set
	return set
}

// observed shifts weekend holidays to the nearest weekday
func observed(h time.Time) time.Time {
	switch h.Weekday() {
	case time.Saturday:
		return h.AddDate(0, 0, -1)
	case time.Sunday:
		return h.AddDate(0, 0, 1)
	default:
		return h
	}
}

// nthWeekday returns the nth occurrence of a weekday in a month
func nthWeekday(year int, month time.Month, weekday time.Weekday, n int) time.Time {
	first := date(year, month, 1)
	offset := (int(weekday) - int(first.Weekday()) + 7) % 7
	return first.AddDate(0, 0, offset+(n-1)*7)
}

// lastWeekday returns the final occurrence of a weekday in a month
func lastWeekday(year int, month time.Month, weekday time.Weekday) time.Time {
	last := date(year, month, 1).AddDate(0, 1, -1)
	offset := (int(last.Weekday()) - int(weekday) + 7) % 7
	return last.AddDate(0, 0, -offset)
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func truncate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
