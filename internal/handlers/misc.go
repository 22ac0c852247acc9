package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/Kenkanekiqwe/yotaapp/internal/db"
	"github.com/Kenkanekiqwe/yotaapp/internal/models"
)

// MiscHandler covers the small public surface: health, site stats,
// public settings, categories, banners, notices and report submission.
type MiscHandler struct {
	repo *db.Repository
	log  *log.Logger
}

// NewMiscHandler creates a new MiscHandler.
func NewMiscHandler(repo *db.Repository, log *log.Logger) *MiscHandler {
	return &MiscHandler{repo: repo, log: log}
}

// Health is the liveness probe. It answers even while the store is
// still warming up.
func (h *MiscHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "timestamp": time.Now()})
}

// Stats returns live site totals.
func (h *MiscHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.repo.SiteStats()
	if err != nil {
		h.log.Printf("Ошибка загрузки статистики: %v", err)
		writeError(w, http.StatusInternalServerError, "Ошибка загрузки статистики")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// PublicSettings exposes the toggles anonymous clients need.
func (h *MiscHandler) PublicSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{
		"enableCaptcha":       h.repo.GetSetting("enableCaptcha", "1") == "1",
		"registrationEnabled": h.repo.GetSetting("registrationEnabled", "1") == "1",
	})
}

// Categories returns all categories with thread and post totals.
func (h *MiscHandler) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.repo.ListCategories()
	if err != nil {
		h.log.Printf("Ошибка загрузки категорий: %v", err)
		writeError(w, http.StatusInternalServerError, "Ошибка загрузки категорий")
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

// Banners returns the active banners, optionally filtered by position.
// Сбой не должен ронять страницу, поэтому отдаётся пустой список.
func (h *MiscHandler) Banners(w http.ResponseWriter, r *http.Request) {
	banners, err := h.repo.ListBanners(r.URL.Query().Get("position"), true)
	if err != nil {
		h.log.Printf("Ошибка загрузки баннеров: %v", err)
		writeJSON(w, http.StatusOK, []*models.Banner{})
		return
	}
	writeJSON(w, http.StatusOK, banners)
}

// Notices returns the active notices.
func (h *MiscHandler) Notices(w http.ResponseWriter, r *http.Request) {
	notices, err := h.repo.ListNotices(true)
	if err != nil {
		h.log.Printf("Ошибка загрузки уведомлений: %v", err)
		writeJSON(w, http.StatusOK, []*models.Notice{})
		return
	}
	writeJSON(w, http.StatusOK, notices)
}

type createReportRequest struct {
	Type           string `json:"type"`
	ContentID      string `json:"content_id"`
	ReportedID     *int64 `json:"reported_id"`
	ContentSummary string `json:"content_summary"`
	UserID         int64  `json:"userId"`
}

// CreateReport files a complaint against a post or a user.
func (h *MiscHandler) CreateReport(w http.ResponseWriter, r *http.Request) {
	var req createReportRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Некорректный запрос")
		return
	}
	if req.UserID == 0 {
		writeError(w, http.StatusUnauthorized, "Необходима авторизация")
		return
	}

	reportType := req.Type
	if reportType == "" {
		reportType = "post"
	}
	report := &models.Report{
		Type:           reportType,
		ContentID:      req.ContentID,
		ReporterID:     req.UserID,
		ReportedID:     req.ReportedID,
		ContentSummary: req.ContentSummary,
	}
	if err := h.repo.CreateReport(report); err != nil {
		h.log.Printf("Ошибка при отправке отчета: %v", err)
		writeError(w, http.StatusInternalServerError, "Ошибка при отправке отчета")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
