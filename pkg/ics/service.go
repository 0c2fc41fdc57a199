package ics

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/habitflow/scheduler/internal/utils"
	"github.com/habitflow/scheduler/pkg/event"
	log "github.com/sirupsen/logrus"
)

type ImportResult struct {
	Added     int
	Updated   int
	Skipped   int
	Truncated []string
}

type Service interface {
	// Export renders the events overlapping the window. A zero window uses the default one.
	Export(ctx context.Context, window Window) (string, error)
	// Import adds or updates the events of an iCalendar document. With replace set the
	// imported events become the whole schedule.
	Import(ctx context.Context, r io.Reader, window Window, replace bool) (ImportResult, error)
}

type Options struct {
	MaxOccurrences int
	// Past and Future bound the default window around the current time.
	Past   time.Duration
	Future time.Duration
}

type ServiceImpl struct {
	events event.Service
	clock  utils.Clock
	opts   Options
}

func NewService(events event.Service, clock utils.Clock, opts Options) *ServiceImpl {
	if opts.MaxOccurrences <= 0 {
		opts.MaxOccurrences = DefaultMaxOccurrences
	}
	if opts.Past <= 0 {
		opts.Past = 31 * 24 * time.Hour
	}
	if opts.Future <= 0 {
		opts.Future = 365 * 24 * time.Hour
	}
	return &ServiceImpl{events: events, clock: clock, opts: opts}
}

func (s *ServiceImpl) Export(ctx context.Context, window Window) (string, error) {
	window = s.resolveWindow(window)
	events, err := s.events.GetEvents(ctx, window.From, window.To)
	if err != nil {
		return "", fmt.Errorf("failed to get events: %w", err)
	}
	return Export(events, s.clock.Now()), nil
}

func (s *ServiceImpl) Import(ctx context.Context, r io.Reader, window Window, replace bool) (ImportResult, error) {
	parsed, err := Parse(r, ParseOptions{
		Window:         s.resolveWindow(window),
		MaxOccurrences: s.opts.MaxOccurrences,
	})
	if err != nil {
		return ImportResult{}, err
	}
	result := ImportResult{Skipped: parsed.Skipped, Truncated: parsed.Truncated}

	if replace {
		stored, err := s.events.SetEvents(ctx, parsed.Events)
		if err != nil {
			return ImportResult{}, fmt.Errorf("failed to replace events: %w", err)
		}
		result.Added = len(stored)
		return result, nil
	}

	for _, e := range parsed.Events {
		_, err := s.events.GetEvent(ctx, e.ID)
		switch {
		case err == nil:
			if _, err := s.events.UpdateEvent(ctx, e); err != nil {
				return result, fmt.Errorf("failed to update event %s: %w", e.ID, err)
			}
			result.Updated++
		case errors.Is(err, event.ErrEventNotFound):
			if _, err := s.events.AddEvent(ctx, e); err != nil {
				return result, fmt.Errorf("failed to add event %s: %w", e.ID, err)
			}
			result.Added++
		default:
			return result, err
		}
	}
	log.Debugf("calendar import: %d added, %d updated, %d skipped", result.Added, result.Updated, result.Skipped)
	return result, nil
}

func (s *ServiceImpl) resolveWindow(window Window) Window {
	now := s.clock.Now()
	if window.From.IsZero() {
		window.From = now.Add(-s.opts.Past)
	}
	if window.To.IsZero() {
		window.To = now.Add(s.opts.Future)
	}
	return window
}
