package draft

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/habitflow/scheduler/pkg/event"
)

var (
	ErrDraftNotFound = errors.New("draft not found")
	ErrDraftLocked   = errors.New("draft cannot be closed")
	ErrInvalidSlot   = errors.New("invalid time slot")
)

const slotDuration = time.Hour

// Draft is an event being composed before it is added to the schedule.
type Draft struct {
	ID       string
	Event    event.Event
	CanClose bool
	OpenedAt time.Time
}

// ParseSlot converts a 12-hour label such as "9:30 PM" into hour and minute of the day.
func ParseSlot(label string) (hour, minute int, err error) {
	timePart, ampm, found := strings.Cut(strings.TrimSpace(label), " ")
	if !found {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidSlot, label)
	}
	hourStr, minuteStr, found := strings.Cut(timePart, ":")
	if !found {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidSlot, label)
	}
	hour, err = strconv.Atoi(hourStr)
	if err != nil || hour < 1 || hour > 12 {
		return 0, 0, fmt.Errorf("%w: hour of %q", ErrInvalidSlot, label)
	}
	minute, err = strconv.Atoi(minuteStr)
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("%w: minute of %q", ErrInvalidSlot, label)
	}

	switch strings.ToUpper(strings.TrimSpace(ampm)) {
	case "AM":
		if hour == 12 {
			hour = 0
		}
	case "PM":
		if hour < 12 {
			hour += 12
		}
	default:
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidSlot, label)
	}
	return hour, minute, nil
}

// SlotEvent returns a one hour event starting at the slot of day.
func SlotEvent(day time.Time, label string) (event.Event, error) {
	hour, minute, err := ParseSlot(label)
	if err != nil {
		return event.Event{}, err
	}
	start := time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, day.Location())
	return event.Event{
		StartDate: start,
		EndDate:   start.Add(slotDuration),
		Variant:   event.VariantPrimary,
	}, nil
}

// WholeDayEvent returns an event covering day from 00:00:00 to 23:59:59.
func WholeDayEvent(day time.Time) event.Event {
	y, m, d := day.Date()
	return event.Event{
		StartDate: time.Date(y, m, d, 0, 0, 0, 0, day.Location()),
		EndDate:   time.Date(y, m, d, 23, 59, 59, 0, day.Location()),
		Variant:   event.VariantPrimary,
	}
}
