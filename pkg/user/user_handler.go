package user

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/habitflow/scheduler/internal/rest"
	log "github.com/sirupsen/logrus"
)

type UserDTO struct {
	Uid         string      `json:"uid"`
	Username    string      `json:"username"`
	DisplayName string      `json:"displayName"`
	Settings    SettingsDTO `json:"settings"`
}

type SettingsDTO struct {
	Timezone     string `json:"timezone"`
	WeekStartsOn string `json:"weekStartsOn"`
}

type Handler struct {
	userService      Service
	defaultWeekStart time.Weekday
}

// NewHandler returns a user handler. defaultWeekStart is used when a request does not name the first day of the week.
func NewHandler(userService Service, defaultWeekStart time.Weekday) *Handler {
	return &Handler{
		userService:      userService,
		defaultWeekStart: defaultWeekStart,
	}
}

// CreateUser godoc
// @Summary Create a new user
// @Tags User
// @Accept json
// @Produce json
// @Param user body UserDTO true "User"
// @Success 201 {object} UserDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid request"
// @Router /api/user [post]
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	log.Debug("Creating user")

	var userDTO UserDTO
	if err := json.NewDecoder(r.Body).Decode(&userDTO); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return
	}
	if len(strings.TrimSpace(userDTO.Username)) == 0 {
		rest.WriteError(w, http.StatusBadRequest, "Username is required", "")
		return
	}
	settings, err := h.dtoToSettings(userDTO.Settings)
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid settings", err.Error())
		return
	}

	created, err := h.userService.CreateUser(r.Context(), User{
		Uid:         userDTO.Uid,
		Username:    userDTO.Username,
		DisplayName: userDTO.DisplayName,
		Settings:    settings,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(userToDTO(created)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

// CurrentUser godoc
// @Summary Get the current user
// @Tags User
// @Produce json
// @Success 200 {object} UserDTO
// @Failure 403 {string} string "User not found"
// @Router /api/user/current [get]
// @Security XUserId
func (h *Handler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	currentUser, err := h.userService.GetCurrentUser(r.Context())
	if err != nil {
		if errors.Is(err, ErrNoUser) || errors.Is(err, ErrUserNotFound) {
			http.Error(w, err.Error(), http.StatusForbidden)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(userToDTO(currentUser)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

// UpdateSettings godoc
// @Summary Update settings of the current user
// @Tags User
// @Accept json
// @Produce json
// @Param settings body SettingsDTO true "Settings"
// @Success 200 {object} UserDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid request"
// @Failure 403 {string} string "User not found"
// @Router /api/user/current/settings [put]
// @Security XUserId
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var settingsDTO SettingsDTO
	if err := json.NewDecoder(r.Body).Decode(&settingsDTO); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return
	}
	settings, err := h.dtoToSettings(settingsDTO)
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid settings", err.Error())
		return
	}

	updated, err := h.userService.UpdateSettings(r.Context(), settings)
	if err != nil {
		if errors.Is(err, ErrNoUser) || errors.Is(err, ErrUserNotFound) {
			http.Error(w, err.Error(), http.StatusForbidden)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(userToDTO(updated)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *Handler) dtoToSettings(dto SettingsDTO) (Settings, error) {
	settings := Settings{Timezone: dto.Timezone, WeekStartsOn: h.defaultWeekStart}
	if dto.WeekStartsOn != "" {
		weekday, err := ParseWeekday(dto.WeekStartsOn)
		if err != nil {
			return Settings{}, err
		}
		settings.WeekStartsOn = weekday
	}
	if dto.Timezone != "" {
		if _, err := time.LoadLocation(dto.Timezone); err != nil {
			return Settings{}, err
		}
	}
	return settings, nil
}

func userToDTO(u User) UserDTO {
	return UserDTO{
		Uid:         u.Uid,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		Settings: SettingsDTO{
			Timezone:     u.Settings.Timezone,
			WeekStartsOn: strings.ToLower(u.Settings.WeekStartsOn.String()),
		},
	}
}
