package app

import (
	"fmt"

	"github.com/habitflow/scheduler/internal/config"
	"github.com/habitflow/scheduler/internal/event_bus"
	"github.com/habitflow/scheduler/internal/utils"
	"github.com/habitflow/scheduler/pkg/draft"
	"github.com/habitflow/scheduler/pkg/event"
	"github.com/habitflow/scheduler/pkg/ics"
	"github.com/habitflow/scheduler/pkg/layout"
	"github.com/habitflow/scheduler/pkg/user"
	"github.com/habitflow/scheduler/pkg/view"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	EventBus *event_bus.EventBus
	Clock    utils.Clock

	UserRepo    user.Repo
	UserService user.Service
	UserHandler *user.Handler

	EventRepo    event.Repository
	EventService event.Service
	EventHandler *event.Handler

	LayoutEngine *layout.Engine
	ViewService  view.Service
	ViewHandler  *view.Handler

	DraftRegistry *draft.Registry
	DraftService  draft.Service
	DraftHandler  *draft.Handler

	IcsService ics.Service
	IcsHandler *ics.Handler
}

// BuildDependencies initializes and wires all application services and handlers.
func BuildDependencies(db *pgxpool.Pool, cfg config.Application) (*Dependencies, error) {
	return newDependencies(user.NewUserRepo(db), event.NewRepository(db), utils.SystemClock{}, cfg)
}

func newDependencies(userRepo user.Repo, eventRepo event.Repository, clock utils.Clock, cfg config.Application) (*Dependencies, error) {
	deps := &Dependencies{}

	deps.EventBus = event_bus.NewEventBus()
	deps.Clock = clock

	defaultWeekStart, err := user.ParseWeekday(cfg.View.WeekStartsOn)
	if err != nil {
		return nil, fmt.Errorf("invalid view.weekstartson: %w", err)
	}
	deps.UserRepo = userRepo
	deps.UserService = user.NewUserService(deps.UserRepo, deps.EventBus)
	deps.UserHandler = user.NewHandler(deps.UserService, defaultWeekStart)

	defaultVariant, err := event.ParseVariant(cfg.Event.DefaultVariant)
	if err != nil {
		return nil, fmt.Errorf("invalid event.defaultvariant: %w", err)
	}
	deps.EventRepo = eventRepo
	deps.EventService = event.NewService(deps.EventRepo, deps.EventBus, event.Options{
		EndCorrection:  cfg.Event.EndCorrection,
		DefaultVariant: defaultVariant,
	})
	deps.EventHandler = event.NewHandler(deps.EventService)

	deps.LayoutEngine = layout.NewEngine(layout.Config{
		HourHeight: cfg.Layout.HourHeight,
		MinHeight:  cfg.Layout.MinHeight,
		MaxWidth:   cfg.Layout.MaxWidth,
		Gap:        cfg.Layout.Gap,
	})
	deps.ViewService = view.NewService(deps.EventService, deps.LayoutEngine, deps.EventBus, deps.Clock, view.Options{
		WeekMaxEvents:  cfg.View.WeekMaxEvents,
		MonthMaxEvents: cfg.View.MonthMaxEvents,
		CacheDays:      cfg.View.CacheDays,
	})
	deps.ViewHandler = view.NewHandler(deps.ViewService)

	deps.DraftRegistry = draft.NewRegistry(deps.Clock)
	deps.DraftService = draft.NewService(deps.DraftRegistry, deps.EventService)
	deps.DraftHandler = draft.NewHandler(deps.DraftService)

	deps.IcsService = ics.NewService(deps.EventService, deps.Clock, ics.Options{})
	deps.IcsHandler = ics.NewHandler(deps.IcsService)

	return deps, nil
}
