package view

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/habitflow/scheduler/internal/rest"
	"github.com/habitflow/scheduler/pkg/event"
	"github.com/habitflow/scheduler/pkg/layout"
	"github.com/habitflow/scheduler/pkg/user"
	log "github.com/sirupsen/logrus"
)

const dateLayout = "2006-01-02"

type BoxDTO struct {
	Top      float64 `json:"top"`
	Height   float64 `json:"height"`
	Left     float64 `json:"left"`
	Width    float64 `json:"width"`
	MinWidth float64 `json:"minWidth"`
	MaxWidth float64 `json:"maxWidth"`
	ZIndex   int     `json:"zIndex"`
}

type PlacementDTO struct {
	Event event.EventDTO `json:"event"`
	Box   BoxDTO         `json:"box"`
}

type DayViewDTO struct {
	Date      string         `json:"date"`
	Title     string         `json:"title"`
	Events    []PlacementDTO `json:"events"`
	NowOffset *float64       `json:"nowOffset,omitempty"`
}

type WeekDayDTO struct {
	Date      string         `json:"date"`
	DayName   string         `json:"dayName"`
	Events    []PlacementDTO `json:"events"`
	MoreCount int            `json:"moreCount"`
}

type WeekViewDTO struct {
	Start      string       `json:"start"`
	WeekNumber int          `json:"weekNumber"`
	Headers    []string     `json:"headers"`
	Days       []WeekDayDTO `json:"days"`
}

type MonthDayDTO struct {
	Date      string           `json:"date"`
	Day       int              `json:"day"`
	InMonth   bool             `json:"inMonth"`
	Events    []event.EventDTO `json:"events"`
	MoreCount int              `json:"moreCount"`
}

type MonthViewDTO struct {
	Year    int           `json:"year"`
	Month   int           `json:"month"`
	Title   string        `json:"title"`
	Headers []string      `json:"headers"`
	Days    []MonthDayDTO `json:"days"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Day godoc
// @Summary Get the laid out events of a day
// @Tags View
// @Produce json
// @Param date query string false "Date in YYYY-MM-DD format, today when omitted"
// @Success 200 {object} DayViewDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid date format"
// @Router /api/view/day [get]
// @Security XUserId
func (h *Handler) Day(w http.ResponseWriter, r *http.Request) {
	date, ok := parseDate(w, r)
	if !ok {
		return
	}
	view, err := h.service.Day(r.Context(), date)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, DayViewDTO{
		Date:      view.Date.Format(dateLayout),
		Title:     view.Title,
		Events:    placementsToDTO(view.Placements),
		NowOffset: view.NowOffset,
	})
}

// Week godoc
// @Summary Get the laid out events of the week containing a date
// @Tags View
// @Produce json
// @Param date query string false "Date in YYYY-MM-DD format, today when omitted"
// @Success 200 {object} WeekViewDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid date format"
// @Router /api/view/week [get]
// @Security XUserId
func (h *Handler) Week(w http.ResponseWriter, r *http.Request) {
	date, ok := parseDate(w, r)
	if !ok {
		return
	}
	view, err := h.service.Week(r.Context(), date)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	days := make([]WeekDayDTO, 0, len(view.Days))
	for _, day := range view.Days {
		days = append(days, WeekDayDTO{
			Date:      day.Date.Format(dateLayout),
			DayName:   DayName(day.Date),
			Events:    placementsToDTO(day.Placements),
			MoreCount: day.MoreCount,
		})
	}
	writeJSON(w, WeekViewDTO{
		Start:      view.Start.Format(dateLayout),
		WeekNumber: view.WeekNumber,
		Headers:    view.Headers,
		Days:       days,
	})
}

// Month godoc
// @Summary Get the events of the month containing a date
// @Tags View
// @Produce json
// @Param date query string false "Date in YYYY-MM-DD format, today when omitted"
// @Success 200 {object} MonthViewDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid date format"
// @Router /api/view/month [get]
// @Security XUserId
func (h *Handler) Month(w http.ResponseWriter, r *http.Request) {
	date, ok := parseDate(w, r)
	if !ok {
		return
	}
	view, err := h.service.Month(r.Context(), date)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	days := make([]MonthDayDTO, 0, len(view.Days))
	for _, day := range view.Days {
		days = append(days, MonthDayDTO{
			Date:      day.Date.Format(dateLayout),
			Day:       day.Date.Day(),
			InMonth:   day.InMonth,
			Events:    event.EventsToDTO(day.Events),
			MoreCount: day.MoreCount,
		})
	}
	writeJSON(w, MonthViewDTO{
		Year:    view.Year,
		Month:   int(view.Month),
		Title:   view.Title,
		Headers: view.Headers,
		Days:    days,
	})
}

// parseDate reads the optional date query parameter. The zero time stands for today.
func parseDate(w http.ResponseWriter, r *http.Request) (time.Time, bool) {
	value := strings.TrimSpace(r.URL.Query().Get("date"))
	if value == "" {
		return time.Time{}, true
	}
	date, err := time.Parse(dateLayout, value)
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid date format", "'date' must be in YYYY-MM-DD format")
		return time.Time{}, false
	}
	return date, true
}

func placementsToDTO(placements []layout.Placement) []PlacementDTO {
	dtos := make([]PlacementDTO, 0, len(placements))
	for _, p := range placements {
		dtos = append(dtos, PlacementDTO{
			Event: event.EventToDTO(p.Event),
			Box: BoxDTO{
				Top:      p.Box.Top,
				Height:   p.Box.Height,
				Left:     p.Box.Left,
				Width:    p.Box.Width,
				MinWidth: p.Box.Width,
				MaxWidth: p.Box.Width,
				ZIndex:   p.Box.ZIndex,
			},
		})
	}
	return dtos
}

func writeServiceError(w http.ResponseWriter, err error) {
	if errors.Is(err, user.ErrNoUser) {
		http.Error(w, err.Error(), http.StatusForbidden)
		return
	}
	log.Errorf("failed to build view: %v", err)
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, body any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(body); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
