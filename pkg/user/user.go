package user

import (
	"fmt"
	"strings"
	"time"
)

type User struct {
	Id          int
	Uid         string
	Username    string
	DisplayName string
	Settings    Settings
}

type Settings struct {
	Timezone     string
	WeekStartsOn time.Weekday
}

// Location returns the time zone of the user, falling back to UTC when unknown.
func (s Settings) Location() *time.Location {
	if s.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// ParseWeekday accepts "sunday" / "monday" style names, case-insensitive.
func ParseWeekday(name string) (time.Weekday, error) {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.EqualFold(d.String(), strings.TrimSpace(name)) {
			return d, nil
		}
	}
	return time.Sunday, fmt.Errorf("unknown weekday: %q", name)
}
