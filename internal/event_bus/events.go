package event_bus

import "time"

const (
	ScheduleEventAdded     EventType = "schedule.event.added"
	ScheduleEventUpdated   EventType = "schedule.event.updated"
	ScheduleEventRemoved   EventType = "schedule.event.removed"
	ScheduleEventsReplaced EventType = "schedule.events.replaced"
	UserSettingsUpdated    EventType = "user.settings.updated"
)

// ScheduleEventChanged is published after an event was added, updated or removed.
type ScheduleEventChanged struct {
	UserId    int
	EventId   string
	StartTime time.Time
	EndTime   time.Time
}

// ScheduleEventsReplacedData is published after the whole event list of a user was replaced.
type ScheduleEventsReplacedData struct {
	UserId int
	Count  int
}

type UserSettingsChanged struct {
	UserId       int
	WeekStartsOn time.Weekday
	Timezone     string
}
