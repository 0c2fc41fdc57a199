package event

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrEventNotFound = errors.New("event not found")
	ErrInvalidEvent  = errors.New("invalid event")
)

// Variant is a color tag of an event. It carries no scheduling meaning.
type Variant string

const (
	VariantSuccess Variant = "success"
	VariantPrimary Variant = "primary"
	VariantDefault Variant = "default"
	VariantWarning Variant = "warning"
	VariantDanger  Variant = "danger"
)

var Variants = []Variant{VariantSuccess, VariantPrimary, VariantDefault, VariantWarning, VariantDanger}

func ParseVariant(s string) (Variant, error) {
	for _, v := range Variants {
		if string(v) == s {
			return v, nil
		}
	}
	return "", fmt.Errorf("%w: unknown variant %q", ErrInvalidEvent, s)
}

type Event struct {
	ID          string
	Title       string
	Description string
	Variant     Variant
	StartDate   time.Time
	EndDate     time.Time
}

// HasValidTimes reports whether both start and end are set.
func (e Event) HasValidTimes() bool {
	return !e.StartDate.IsZero() && !e.EndDate.IsZero()
}

// Duration returns the length of the event; zero for events without valid times.
func (e Event) Duration() time.Duration {
	if !e.HasValidTimes() {
		return 0
	}
	return e.EndDate.Sub(e.StartDate)
}

// Normalize moves the end of an event that ends before it starts to start + correction.
func (e Event) Normalize(correction time.Duration) Event {
	if e.HasValidTimes() && e.EndDate.Before(e.StartDate) {
		e.EndDate = e.StartDate.Add(correction)
	}
	return e
}

// ForDay returns the events which start on the calendar date of day, or span into it.
// The day boundaries are taken in day's location.
func ForDay(events []Event, day time.Time) []Event {
	loc := day.Location()
	year, month, date := day.Date()
	startOfDay := time.Date(year, month, date, 0, 0, 0, 0, loc)
	endOfDay := startOfDay.AddDate(0, 0, 1)

	result := make([]Event, 0)
	for _, e := range events {
		start := e.StartDate.In(loc)
		sy, sm, sd := start.Date()
		isSameDay := !e.StartDate.IsZero() && sy == year && sm == month && sd == date
		isSpanningDay := e.HasValidTimes() && e.StartDate.Before(endOfDay) && e.EndDate.After(startOfDay)
		if isSameDay || isSpanningDay {
			result = append(result, e)
		}
	}
	return result
}
