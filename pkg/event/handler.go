package event

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/habitflow/scheduler/internal/rest"
	"github.com/habitflow/scheduler/pkg/user"
	log "github.com/sirupsen/logrus"
)

type EventDTO struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Variant     string    `json:"variant,omitempty"`
	StartDate   time.Time `json:"startDate"`
	EndDate     time.Time `json:"endDate"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// GetEvents godoc
// @Summary List events overlapping a period
// @Tags Event
// @Produce json
// @Param from query string true "Start of the period in RFC3339 format"
// @Param to query string true "End of the period in RFC3339 format"
// @Success 200 {array} EventDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid date format"
// @Router /api/event [get]
// @Security XUserId
func (h *Handler) GetEvents(w http.ResponseWriter, r *http.Request) {
	from, err := time.Parse(time.RFC3339, r.URL.Query().Get("from"))
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid from (date) format", "'from' must be in RFC3339 format")
		return
	}
	to, err := time.Parse(time.RFC3339, r.URL.Query().Get("to"))
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid to (date) format", "'to' must be in RFC3339 format")
		return
	}

	events, err := h.service.GetEvents(r.Context(), from, to)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, EventsToDTO(events))
}

// GetEvent godoc
// @Summary Get a single event
// @Tags Event
// @Produce json
// @Param eventId path string true "Event ID"
// @Success 200 {object} EventDTO
// @Failure 404 {string} string "Event not found"
// @Router /api/event/{eventId} [get]
// @Security XUserId
func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	e, err := h.service.GetEvent(r.Context(), mux.Vars(r)["eventId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, EventToDTO(e))
}

// CreateEvent godoc
// @Summary Add an event
// @Tags Event
// @Accept json
// @Produce json
// @Param event body EventDTO true "Event"
// @Success 201 {object} EventDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid event"
// @Router /api/event [post]
// @Security XUserId
func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var dto EventDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return
	}

	created, err := h.service.AddEvent(r.Context(), DTOToEvent(dto))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	log.Tracef("Event created: %s", created.ID)
	writeJSON(w, http.StatusCreated, EventToDTO(created))
}

// UpdateEvent godoc
// @Summary Update an event
// @Tags Event
// @Accept json
// @Produce json
// @Param eventId path string true "Event ID"
// @Param event body EventDTO true "Event"
// @Success 200 {object} EventDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid event"
// @Failure 404 {string} string "Event not found"
// @Router /api/event/{eventId} [put]
// @Security XUserId
func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	var dto EventDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return
	}
	dto.ID = mux.Vars(r)["eventId"]

	updated, err := h.service.UpdateEvent(r.Context(), DTOToEvent(dto))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, EventToDTO(updated))
}

// DeleteEvent godoc
// @Summary Remove an event
// @Tags Event
// @Param eventId path string true "Event ID"
// @Success 204
// @Failure 404 {string} string "Event not found"
// @Router /api/event/{eventId} [delete]
// @Security XUserId
func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteEvent(r.Context(), mux.Vars(r)["eventId"]); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ReplaceEvents godoc
// @Summary Replace all events of the current user
// @Tags Event
// @Accept json
// @Produce json
// @Param events body []EventDTO true "Events"
// @Success 200 {array} EventDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid event"
// @Router /api/event [put]
// @Security XUserId
func (h *Handler) ReplaceEvents(w http.ResponseWriter, r *http.Request) {
	var dtos []EventDTO
	if err := json.NewDecoder(r.Body).Decode(&dtos); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return
	}
	events := make([]Event, 0, len(dtos))
	for _, dto := range dtos {
		events = append(events, DTOToEvent(dto))
	}

	stored, err := h.service.SetEvents(r.Context(), events)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, EventsToDTO(stored))
}

// ExportJSON godoc
// @Summary Download all events as a JSON file
// @Tags Event
// @Produce json
// @Success 200 {array} EventDTO
// @Router /api/export/json [get]
// @Security XUserId
func (h *Handler) ExportJSON(w http.ResponseWriter, r *http.Request) {
	events, err := h.service.GetAllEvents(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="events.json"`)
	writeJSON(w, http.StatusOK, EventsToDTO(events))
}

// ExportCSV godoc
// @Summary Download all events as a CSV file
// @Tags Event
// @Produce text/csv
// @Success 200 {string} string "CSV file"
// @Router /api/export/csv [get]
// @Security XUserId
func (h *Handler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	events, err := h.service.GetAllEvents(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	body, err := RenderCSV(events)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="events.csv"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(body)); err != nil {
		log.Errorf("failed to write csv export: %v", err)
	}
}

func EventToDTO(e Event) EventDTO {
	return EventDTO{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		Variant:     string(e.Variant),
		StartDate:   e.StartDate,
		EndDate:     e.EndDate,
	}
}

func EventsToDTO(events []Event) []EventDTO {
	dtos := make([]EventDTO, 0, len(events))
	for _, e := range events {
		dtos = append(dtos, EventToDTO(e))
	}
	return dtos
}

func DTOToEvent(dto EventDTO) Event {
	return Event{
		ID:          dto.ID,
		Title:       dto.Title,
		Description: dto.Description,
		Variant:     Variant(dto.Variant),
		StartDate:   dto.StartDate,
		EndDate:     dto.EndDate,
	}
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, user.ErrNoUser):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, ErrEventNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrInvalidEvent):
		rest.WriteError(w, http.StatusBadRequest, "Invalid event", err.Error())
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
