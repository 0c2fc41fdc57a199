package ics

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/habitflow/scheduler/pkg/event"
	log "github.com/sirupsen/logrus"
	"github.com/teambition/rrule-go"
)

const (
	DefaultMaxOccurrences = 500
	defaultDuration       = time.Hour
)

var ErrInvalidCalendar = errors.New("invalid calendar")

// Window bounds the expansion of recurring events, both ends inclusive.
type Window struct {
	From time.Time
	To   time.Time
}

type ParseOptions struct {
	Window Window
	// MaxOccurrences caps the number of instances of one recurring event.
	MaxOccurrences int
}

type ParseResult struct {
	Events []event.Event
	// Truncated lists the UIDs of recurring events which hit MaxOccurrences.
	Truncated []string
	Skipped   int
}

// component is a VEVENT reduced to the fields used by the schedule.
type component struct {
	uid         string
	summary     string
	description string
	variant     event.Variant
	start       time.Time
	end         time.Time
	allDay      bool
	rrule       string
	exDates     []time.Time
}

// Parse reads an iCalendar document. Single events are returned as they are, recurring
// events are expanded to their occurrences inside the window.
func Parse(r io.Reader, opts ParseOptions) (ParseResult, error) {
	if opts.Window.To.Before(opts.Window.From) {
		return ParseResult{}, fmt.Errorf("%w: window ends before it starts", ErrInvalidCalendar)
	}
	if opts.MaxOccurrences <= 0 {
		opts.MaxOccurrences = DefaultMaxOccurrences
	}

	cal, err := ical.ParseCalendar(r)
	if err != nil {
		return ParseResult{}, fmt.Errorf("%w: %v", ErrInvalidCalendar, err)
	}

	result := ParseResult{Events: make([]event.Event, 0)}
	for _, ve := range cal.Events() {
		c, err := parseComponent(ve)
		if err != nil {
			log.Warnf("skipping calendar event: %v", err)
			result.Skipped++
			continue
		}
		if c.rrule == "" {
			result.Events = append(result.Events, c.toEvent(c.uid, c.start, c.end))
			continue
		}
		occurrences, truncated, err := expand(c, opts)
		if err != nil {
			log.Warnf("skipping recurring event %s: %v", c.uid, err)
			result.Skipped++
			continue
		}
		if truncated {
			log.Warnf("recurring event %s has more than %d occurrences in the window", c.uid, opts.MaxOccurrences)
			result.Truncated = append(result.Truncated, c.uid)
		}
		result.Events = append(result.Events, occurrences...)
	}
	return result, nil
}

func parseComponent(ve *ical.VEvent) (component, error) {
	var c component
	uid := ve.GetProperty(ical.ComponentPropertyUniqueId)
	if uid == nil || uid.Value == "" {
		return c, errors.New("missing UID")
	}
	c.uid = uid.Value

	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		c.summary = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyDescription); p != nil {
		c.description = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyCategories); p != nil {
		for _, category := range strings.Split(p.Value, ",") {
			if v, err := event.ParseVariant(strings.ToLower(strings.TrimSpace(category))); err == nil {
				c.variant = v
				break
			}
		}
	}

	dtStart := ve.GetProperty(ical.ComponentPropertyDtStart)
	if dtStart == nil {
		return c, fmt.Errorf("event %s has no DTSTART", c.uid)
	}
	c.allDay = isDateValue(dtStart)

	start, err := ve.GetStartAt()
	if err != nil {
		return c, fmt.Errorf("event %s: %w", c.uid, err)
	}
	c.start = start

	end, err := ve.GetEndAt()
	switch {
	case err == nil && end.After(start):
		c.end = end
	case c.allDay:
		c.end = start.AddDate(0, 0, 1)
	default:
		c.end = start.Add(defaultDuration)
	}

	if p := ve.GetProperty(ical.ComponentPropertyRrule); p != nil {
		c.rrule = p.Value
	}
	for _, p := range ve.GetProperties(ical.ComponentPropertyExdate) {
		for _, part := range strings.Split(p.Value, ",") {
			if t, err := parseTime(strings.TrimSpace(part), start.Location()); err == nil {
				c.exDates = append(c.exDates, t)
			}
		}
	}
	return c, nil
}

func expand(c component, opts ParseOptions) ([]event.Event, bool, error) {
	rule, err := rrule.StrToRRule(c.rrule)
	if err != nil {
		return nil, false, fmt.Errorf("invalid RRULE %q: %w", c.rrule, err)
	}
	rule.DTStart(c.start)

	var set rrule.Set
	set.RRule(rule)
	for _, ex := range c.exDates {
		set.ExDate(ex)
	}

	loc := c.start.Location()
	starts := set.Between(opts.Window.From.In(loc), opts.Window.To.In(loc), true)
	truncated := false
	if len(starts) > opts.MaxOccurrences {
		starts = starts[:opts.MaxOccurrences]
		truncated = true
	}

	duration := c.end.Sub(c.start)
	events := make([]event.Event, 0, len(starts))
	for _, start := range starts {
		id := c.uid + "-" + start.UTC().Format("20060102T150405Z")
		events = append(events, c.toEvent(id, start, start.Add(duration)))
	}
	return events, truncated, nil
}

func (c component) toEvent(id string, start, end time.Time) event.Event {
	return event.Event{
		ID:          id,
		Title:       c.summary,
		Description: c.description,
		Variant:     c.variant,
		StartDate:   start,
		EndDate:     end,
	}
}

func isDateValue(p *ical.IANAProperty) bool {
	if values, ok := p.ICalParameters["VALUE"]; ok && len(values) > 0 && strings.EqualFold(values[0], "DATE") {
		return true
	}
	return !strings.Contains(p.Value, "T")
}

// parseTime reads the DATE and DATE-TIME forms used by EXDATE.
func parseTime(value string, loc *time.Location) (time.Time, error) {
	switch {
	case value == "":
		return time.Time{}, errors.New("empty time value")
	case strings.HasSuffix(value, "Z"):
		return time.Parse("20060102T150405Z", value)
	case strings.Contains(value, "T"):
		return time.ParseInLocation("20060102T150405", value, loc)
	default:
		return time.ParseInLocation("20060102", value, loc)
	}
}
