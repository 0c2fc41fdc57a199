package ics

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/habitflow/scheduler/internal/rest"
	"github.com/habitflow/scheduler/pkg/event"
	"github.com/habitflow/scheduler/pkg/user"
	log "github.com/sirupsen/logrus"
)

const maxCalendarSize = 10 << 20

type ImportResultDTO struct {
	Added     int      `json:"added"`
	Updated   int      `json:"updated"`
	Skipped   int      `json:"skipped"`
	Truncated []string `json:"truncated,omitempty"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// ExportICS godoc
// @Summary Download events as an iCalendar file
// @Tags Import/Export
// @Produce text/calendar
// @Param from query string false "Start of the period in RFC3339 format"
// @Param to query string false "End of the period in RFC3339 format"
// @Success 200 {string} string "iCalendar document"
// @Failure 400 {object} rest.ErrorResponse "Invalid date format"
// @Router /api/export/ics [get]
// @Security XUserId
func (h *Handler) ExportICS(w http.ResponseWriter, r *http.Request) {
	window, ok := parseWindow(w, r)
	if !ok {
		return
	}
	body, err := h.service.Export(r.Context(), window)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="schedule.ics"`)
	if _, err := io.WriteString(w, body); err != nil {
		log.Errorf("failed to write calendar: %v", err)
	}
}

// ImportICS godoc
// @Summary Import events from an iCalendar file
// @Tags Import/Export
// @Accept text/calendar
// @Produce json
// @Param from query string false "Start of the recurrence window in RFC3339 format"
// @Param to query string false "End of the recurrence window in RFC3339 format"
// @Param replace query bool false "Replace all events with the imported ones"
// @Success 200 {object} ImportResultDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid calendar"
// @Router /api/import/ics [post]
// @Security XUserId
func (h *Handler) ImportICS(w http.ResponseWriter, r *http.Request) {
	window, ok := parseWindow(w, r)
	if !ok {
		return
	}
	replace := false
	if value := r.URL.Query().Get("replace"); value != "" {
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			rest.WriteError(w, http.StatusBadRequest, "Invalid replace flag", err.Error())
			return
		}
		replace = parsed
	}

	result, err := h.service.Import(r.Context(), http.MaxBytesReader(w, r.Body, maxCalendarSize), window, replace)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(ImportResultDTO(result)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func parseWindow(w http.ResponseWriter, r *http.Request) (Window, bool) {
	var window Window
	for name, target := range map[string]*time.Time{"from": &window.From, "to": &window.To} {
		value := r.URL.Query().Get(name)
		if value == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, value)
		if err != nil {
			rest.WriteError(w, http.StatusBadRequest, "Invalid "+name+" (date) format", "'"+name+"' must be in RFC3339 format")
			return Window{}, false
		}
		*target = t
	}
	return window, true
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, user.ErrNoUser):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, ErrInvalidCalendar), errors.Is(err, event.ErrInvalidEvent):
		rest.WriteError(w, http.StatusBadRequest, "Invalid calendar", err.Error())
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
