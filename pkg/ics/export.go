package ics

import (
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/habitflow/scheduler/pkg/event"
)

const productId = "-//habitflow//scheduler//EN"

// Export renders events as an iCalendar document. The variant of an event is kept in CATEGORIES.
func Export(events []event.Event, now time.Time) string {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productId)

	for _, e := range events {
		if !e.HasValidTimes() {
			continue
		}
		ve := cal.AddEvent(e.ID)
		ve.SetDtStampTime(now)
		ve.SetStartAt(e.StartDate)
		ve.SetEndAt(e.EndDate)
		if e.Title != "" {
			ve.SetSummary(e.Title)
		}
		if e.Description != "" {
			ve.SetDescription(e.Description)
		}
		if e.Variant != "" {
			ve.SetProperty(ical.ComponentPropertyCategories, string(e.Variant))
		}
	}
	return cal.Serialize()
}
