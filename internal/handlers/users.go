package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/Kenkanekiqwe/yotaapp/internal/db"
	"github.com/Kenkanekiqwe/yotaapp/internal/models"
)

// UserHandler handles the member directory, public profiles and
// profile editing.
type UserHandler struct {
	repo *db.Repository
	log  *log.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(repo *db.Repository, log *log.Logger) *UserHandler {
	return &UserHandler{repo: repo, log: log}
}

// List returns the member directory, optionally filtered by search.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.repo.ListUsers(r.URL.Query().Get("search"))
	if err != nil {
		h.log.Printf("Ошибка загрузки пользователей: %v", err)
		writeError(w, http.StatusInternalServerError, "Ошибка загрузки пользователей")
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// Profile returns the public profile with stats and recent activity.
func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.repo.Profile(r.PathValue("username"))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(w, http.StatusNotFound, "User not found")
			return
		}
		h.log.Printf("Ошибка загрузки профиля: %v", err)
		writeError(w, http.StatusInternalServerError, "Ошибка загрузки профиля")
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

type updateProfileRequest struct {
	UserID    any     `json:"userId"`
	Bio       *string `json:"bio"`
	Location  *string `json:"location"`
	Website   *string `json:"website"`
	Avatar    *string `json:"avatar"`
	Signature *string `json:"signature"`
	BannerURL *string `json:"banner_url"`
}

// Update saves profile fields. Only the owner may edit.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Некорректный запрос")
		return
	}

	user, err := h.repo.GetUserByUsername(r.PathValue("username"))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Пользователь не найден")
			return
		}
		h.log.Printf("Ошибка при обновлении профиля: %v", err)
		writeError(w, http.StatusInternalServerError, "Ошибка при обновлении профиля")
		return
	}
	actorID, ok := toInt(req.UserID)
	if !ok || int64(actorID) != user.ID {
		writeError(w, http.StatusForbidden, "Нет прав на редактирование")
		return
	}

	if err := h.repo.UpdateProfile(user.ID, req.Bio, req.Location, req.Website, req.Avatar, req.Signature, req.BannerURL); err != nil {
		h.log.Printf("Ошибка при обновлении профиля: %v", err)
		writeError(w, http.StatusInternalServerError, "Ошибка при обновлении профиля")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Settings returns profile visibility toggles. Everything defaults to
// visible when nothing is stored.
func (h *UserHandler) Settings(w http.ResponseWriter, r *http.Request) {
	user, err := h.repo.GetUserByUsername(r.PathValue("username"))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Not found")
			return
		}
		writeJSON(w, http.StatusOK, models.ProfileSettings{ShowStats: 1, ShowActivity: 1, ShowOnline: 1})
		return
	}
	writeJSON(w, http.StatusOK, h.repo.GetProfileSettings(user.ID))
}

type saveSettingsRequest struct {
	UserID       any  `json:"userId"`
	ShowStats    *any `json:"show_stats"`
	ShowActivity *any `json:"show_activity"`
	ShowOnline   *any `json:"show_online"`
}

// SaveSettings stores profile visibility toggles for the owner.
func (h *UserHandler) SaveSettings(w http.ResponseWriter, r *http.Request) {
	var req saveSettingsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Некорректный запрос")
		return
	}

	user, err := h.repo.GetUserByUsername(r.PathValue("username"))
	if err != nil {
		writeError(w, http.StatusForbidden, "Forbidden")
		return
	}
	actorID, ok := toInt(req.UserID)
	if !ok || int64(actorID) != user.ID {
		writeError(w, http.StatusForbidden, "Forbidden")
		return
	}

	// Отсутствующий флаг считается включённым.
	ps := models.ProfileSettings{
		ShowStats:    flagOn(req.ShowStats),
		ShowActivity: flagOn(req.ShowActivity),
		ShowOnline:   flagOn(req.ShowOnline),
	}
	if err := h.repo.SaveProfileSettings(user.ID, ps); err != nil {
		h.log.Printf("Ошибка сохранения настроек профиля: %v", err)
		writeError(w, http.StatusInternalServerError, "Ошибка")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func flagOn(v *any) int {
	if v == nil || truthy(*v) {
		return 1
	}
	return 0
}
