package view

import (
	"time"

	"github.com/habitflow/scheduler/pkg/event"
	"github.com/habitflow/scheduler/pkg/layout"
)

type DayView struct {
	Date       time.Time
	Title      string
	Placements []layout.Placement
	// NowOffset is set when Date is today.
	NowOffset *float64
}

type WeekDay struct {
	Date       time.Time
	Placements []layout.Placement
	// MoreCount is the number of events of the day without a box.
	MoreCount int
}

type WeekView struct {
	Start      time.Time
	WeekNumber int
	Headers    []string
	Days       []WeekDay
}

type MonthDay struct {
	Date time.Time
	// InMonth is false for the placeholder days of the previous month.
	InMonth   bool
	Events    []event.Event
	MoreCount int
}

type MonthView struct {
	Year    int
	Month   time.Month
	Title   string
	Headers []string
	Days    []MonthDay
}

func dayTitle(date time.Time) string {
	return date.Format("Monday, January 2, 2006")
}

// buildWeekDay keeps boxes for the first maxEvents-1 events when the day has more than
// maxEvents of them. Groups are always computed from the full list.
func buildWeekDay(date time.Time, placements []layout.Placement, maxEvents int) WeekDay {
	day := WeekDay{Date: date, Placements: placements}
	if maxEvents > 0 && len(placements) > maxEvents {
		day.Placements = placements[:maxEvents-1]
		day.MoreCount = len(placements) - (maxEvents - 1)
	}
	return day
}

func buildMonth(month time.Time, weekStartsOn time.Weekday, events []event.Event, maxEvents int) MonthView {
	view := MonthView{
		Year:    month.Year(),
		Month:   month.Month(),
		Title:   month.Format("January 2006"),
		Headers: WeekdayHeaders(weekStartsOn),
		Days:    make([]MonthDay, 0, 42),
	}
	for _, date := range LeadingDays(month, weekStartsOn) {
		view.Days = append(view.Days, MonthDay{Date: date, Events: []event.Event{}})
	}
	for _, date := range DaysInMonth(month) {
		dayEvents := event.ForDay(events, date)
		day := MonthDay{Date: date, InMonth: true, Events: dayEvents}
		if maxEvents > 0 && len(dayEvents) > maxEvents {
			day.Events = dayEvents[:maxEvents]
			day.MoreCount = len(dayEvents) - maxEvents
		}
		view.Days = append(view.Days, day)
	}
	return view
}

// inLocation returns copies of events with their times expressed in loc.
func inLocation(events []event.Event, loc *time.Location) []event.Event {
	result := make([]event.Event, 0, len(events))
	for _, e := range events {
		if !e.StartDate.IsZero() {
			e.StartDate = e.StartDate.In(loc)
		}
		if !e.EndDate.IsZero() {
			e.EndDate = e.EndDate.In(loc)
		}
		result = append(result, e)
	}
	return result
}
