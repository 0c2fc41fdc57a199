// Package layout computes where the events of a single day are drawn in a time grid.
//
// Vertical geometry is expressed in pixels derived from Config.HourHeight, horizontal
// geometry in percent of the day column. Events which overlap, directly or through a chain
// of other events, share the column side by side.
package layout

import (
	"math"
	"slices"

	"github.com/habitflow/scheduler/pkg/event"
	log "github.com/sirupsen/logrus"
)

const hoursPerDay = 24

type Config struct {
	HourHeight float64
	MinHeight  float64
	MaxWidth   float64
	Gap        float64
}

func DefaultConfig() Config {
	return Config{
		HourHeight: 64,
		MinHeight:  20,
		MaxWidth:   95,
		Gap:        1,
	}
}

// Box is the rectangle of one event. Top and Height are pixels, Left and Width percent.
type Box struct {
	Top    float64
	Height float64
	Left   float64
	Width  float64
	ZIndex int
}

// Position is the slot of an event within its overlap group.
type Position struct {
	Index int
	Size  int
}

// Placement pairs an event with its computed box.
type Placement struct {
	Event event.Event
	Box   Box
}

type Engine struct {
	cfg Config
}

// NewEngine returns an engine for cfg. Non-positive values are replaced by the defaults.
func NewEngine(cfg Config) *Engine {
	defaults := DefaultConfig()
	if cfg.HourHeight <= 0 {
		cfg.HourHeight = defaults.HourHeight
	}
	if cfg.MinHeight <= 0 {
		cfg.MinHeight = defaults.MinHeight
	}
	if cfg.MaxWidth <= 0 || cfg.MaxWidth > 100 {
		cfg.MaxWidth = defaults.MaxWidth
	}
	if cfg.Gap < 0 {
		cfg.Gap = defaults.Gap
	}
	return &Engine{cfg: cfg}
}

func (e *Engine) Config() Config {
	return e.cfg
}

// Layout computes the box of ev. When position is nil the slot is derived from the events
// of dayEvents that directly overlap ev.
func (e *Engine) Layout(ev event.Event, dayEvents []event.Event, position *Position) Box {
	var pos Position
	if position != nil {
		pos = *position
	} else {
		pos = directPosition(ev, dayEvents)
	}
	if pos.Size <= 0 || pos.Index < 0 {
		pos = Position{Index: 0, Size: 1}
	}

	box := e.horizontal(pos)
	if !ev.HasValidTimes() {
		log.Warnf("event %q has no valid start or end, placing it at the top of the day", ev.ID)
		return box
	}
	box.Top, box.Height = e.vertical(ev)
	return box
}

// LayoutDay groups dayEvents and lays out every event within its group.
// The result has the same order as dayEvents.
func (e *Engine) LayoutDay(dayEvents []event.Event) []Placement {
	placements := make([]Placement, len(dayEvents))
	for _, group := range groupIndices(dayEvents) {
		for index, i := range group {
			pos := Position{Index: index, Size: len(group)}
			placements[i] = Placement{
				Event: dayEvents[i],
				Box:   e.Layout(dayEvents[i], dayEvents, &pos),
			}
		}
	}
	return placements
}

func (e *Engine) vertical(ev event.Event) (top, height float64) {
	start := ev.StartDate
	startHour := float64(start.Hour()) + float64(start.Minute())/60
	top = startHour * e.cfg.HourHeight

	minutes := math.Trunc(ev.Duration().Minutes())
	height = minutes / 60 * e.cfg.HourHeight
	height = math.Min(height, (hoursPerDay-startHour)*e.cfg.HourHeight)
	height = math.Max(height, e.cfg.MinHeight)
	return top, height
}

func (e *Engine) horizontal(pos Position) Box {
	width := math.Min(e.cfg.MaxWidth/float64(max(pos.Size, 1)), e.cfg.MaxWidth)
	left := math.Min(float64(pos.Index)*(width+e.cfg.Gap), 100-width)
	return Box{
		Left:   left,
		Width:  width,
		ZIndex: pos.Index + 1,
	}
}

// directPosition ranks ev among the events that overlap it directly, ordered by start.
// ev keeps its place in dayEvents so equal starts are ranked by input order.
func directPosition(ev event.Event, dayEvents []event.Event) Position {
	period := make([]event.Event, 0, len(dayEvents)+1)
	found := false
	for _, other := range dayEvents {
		switch {
		case other.ID == ev.ID && !found:
			period = append(period, ev)
			found = true
		case other.ID != ev.ID && Overlaps(ev, other):
			period = append(period, other)
		}
	}
	if !found {
		period = append(period, ev)
	}
	slices.SortStableFunc(period, func(a, b event.Event) int {
		return a.StartDate.Compare(b.StartDate)
	})
	index := slices.IndexFunc(period, func(other event.Event) bool {
		return other.ID == ev.ID
	})
	return Position{Index: index, Size: len(period)}
}
