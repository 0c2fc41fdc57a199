package draft

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/habitflow/scheduler/internal/rest"
	"github.com/habitflow/scheduler/pkg/event"
	"github.com/habitflow/scheduler/pkg/user"
	log "github.com/sirupsen/logrus"
)

type OpenDraftDTO struct {
	Date        string `json:"date"`
	Slot        string `json:"slot,omitempty"`
	WholeDay    bool   `json:"wholeDay"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Variant     string `json:"variant,omitempty"`
}

type DraftDTO struct {
	ID       string         `json:"id"`
	CanClose bool           `json:"canClose"`
	OpenedAt time.Time      `json:"openedAt"`
	Event    event.EventDTO `json:"event"`
}

type LockDTO struct {
	CanClose bool `json:"canClose"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Open godoc
// @Summary Open a draft of a new event
// @Tags Draft
// @Accept json
// @Produce json
// @Param draft body OpenDraftDTO true "Slot or whole day to draft"
// @Success 201 {object} DraftDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid slot or date"
// @Router /api/draft [post]
// @Security XUserId
func (h *Handler) Open(w http.ResponseWriter, r *http.Request) {
	var dto OpenDraftDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return
	}
	date, err := time.Parse("2006-01-02", dto.Date)
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid date format", "'date' must be in YYYY-MM-DD format")
		return
	}

	d, err := h.service.Open(r.Context(), OpenRequest{
		Date:        date,
		Slot:        dto.Slot,
		WholeDay:    dto.WholeDay,
		Title:       dto.Title,
		Description: dto.Description,
		Variant:     event.Variant(dto.Variant),
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, draftToDTO(d))
}

// List godoc
// @Summary List open drafts
// @Tags Draft
// @Produce json
// @Success 200 {array} DraftDTO
// @Router /api/draft [get]
// @Security XUserId
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	drafts, err := h.service.List(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	dtos := make([]DraftDTO, 0, len(drafts))
	for _, d := range drafts {
		dtos = append(dtos, draftToDTO(d))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// Get godoc
// @Summary Get a draft
// @Tags Draft
// @Produce json
// @Param draftId path string true "Draft ID"
// @Success 200 {object} DraftDTO
// @Failure 404 {string} string "Draft not found"
// @Router /api/draft/{draftId} [get]
// @Security XUserId
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	d, err := h.service.Get(r.Context(), mux.Vars(r)["draftId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, draftToDTO(d))
}

// Update godoc
// @Summary Change the drafted event
// @Tags Draft
// @Accept json
// @Produce json
// @Param draftId path string true "Draft ID"
// @Param event body event.EventDTO true "Drafted event"
// @Success 200 {object} DraftDTO
// @Failure 404 {string} string "Draft not found"
// @Router /api/draft/{draftId} [put]
// @Security XUserId
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var dto event.EventDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return
	}
	d, err := h.service.Update(r.Context(), mux.Vars(r)["draftId"], event.DTOToEvent(dto))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, draftToDTO(d))
}

// Lock godoc
// @Summary Allow or forbid discarding a draft
// @Tags Draft
// @Accept json
// @Produce json
// @Param draftId path string true "Draft ID"
// @Param lock body LockDTO true "Whether the draft can be closed"
// @Success 200 {object} DraftDTO
// @Failure 404 {string} string "Draft not found"
// @Router /api/draft/{draftId}/lock [put]
// @Security XUserId
func (h *Handler) Lock(w http.ResponseWriter, r *http.Request) {
	var dto LockDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return
	}
	d, err := h.service.SetCanClose(r.Context(), mux.Vars(r)["draftId"], dto.CanClose)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, draftToDTO(d))
}

// Commit godoc
// @Summary Add the drafted event to the schedule
// @Tags Draft
// @Produce json
// @Param draftId path string true "Draft ID"
// @Success 201 {object} event.EventDTO
// @Failure 404 {string} string "Draft not found"
// @Router /api/draft/{draftId}/commit [post]
// @Security XUserId
func (h *Handler) Commit(w http.ResponseWriter, r *http.Request) {
	created, err := h.service.Commit(r.Context(), mux.Vars(r)["draftId"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	log.Tracef("Draft committed as event %s", created.ID)
	writeJSON(w, http.StatusCreated, event.EventToDTO(created))
}

// Close godoc
// @Summary Discard a draft
// @Tags Draft
// @Param draftId path string true "Draft ID"
// @Success 204
// @Failure 404 {string} string "Draft not found"
// @Failure 409 {string} string "Draft is locked"
// @Router /api/draft/{draftId} [delete]
// @Security XUserId
func (h *Handler) Close(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Close(r.Context(), mux.Vars(r)["draftId"]); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func draftToDTO(d Draft) DraftDTO {
	return DraftDTO{
		ID:       d.ID,
		CanClose: d.CanClose,
		OpenedAt: d.OpenedAt,
		Event:    event.EventToDTO(d.Event),
	}
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, user.ErrNoUser):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, ErrDraftNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrDraftLocked):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, ErrInvalidSlot), errors.Is(err, event.ErrInvalidEvent):
		rest.WriteError(w, http.StatusBadRequest, "Invalid draft", err.Error())
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
