package view

import (
	"time"
)

const daysPerWeek = 7

// StartOfDay returns midnight of t's calendar date in t's location.
func StartOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

// DaysInMonth returns midnight of every day of t's month.
func DaysInMonth(t time.Time) []time.Time {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	count := first.AddDate(0, 1, -1).Day()
	days := make([]time.Time, 0, count)
	for i := 0; i < count; i++ {
		days = append(days, first.AddDate(0, 0, i))
	}
	return days
}

// StartOfWeek returns midnight of the first day of the week containing t.
func StartOfWeek(t time.Time, weekStartsOn time.Weekday) time.Time {
	delta := (int(t.Weekday()) - int(weekStartsOn) + daysPerWeek) % daysPerWeek
	return StartOfDay(t).AddDate(0, 0, -delta)
}

func DaysInWeek(t time.Time, weekStartsOn time.Weekday) []time.Time {
	start := StartOfWeek(t, weekStartsOn)
	days := make([]time.Time, 0, daysPerWeek)
	for i := 0; i < daysPerWeek; i++ {
		days = append(days, start.AddDate(0, 0, i))
	}
	return days
}

// LeadingDays returns the days of the previous month shown before the first of t's month
// in a grid whose rows start on weekStartsOn.
func LeadingDays(t time.Time, weekStartsOn time.Weekday) []time.Time {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	offset := (int(first.Weekday()) - int(weekStartsOn) + daysPerWeek) % daysPerWeek
	days := make([]time.Time, 0, offset)
	for i := offset; i > 0; i-- {
		days = append(days, first.AddDate(0, 0, -i))
	}
	return days
}

// WeekNumber returns the ISO 8601 week of the year.
func WeekNumber(t time.Time) int {
	_, week := t.ISOWeek()
	return week
}

func DayName(t time.Time) string {
	return t.Weekday().String()
}

// WeekdayHeaders returns abbreviated weekday names in display order.
func WeekdayHeaders(weekStartsOn time.Weekday) []string {
	headers := make([]string, 0, daysPerWeek)
	for i := 0; i < daysPerWeek; i++ {
		headers = append(headers, time.Weekday((int(weekStartsOn) + i) % daysPerWeek).String()[:3])
	}
	return headers
}
