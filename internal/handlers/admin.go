package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/Kenkanekiqwe/yotaapp/internal/db"
	"github.com/Kenkanekiqwe/yotaapp/internal/models"
)

// seededAdminID is the account created on first run; moderation records
// fall back to it when no concrete moderator is supplied.
const seededAdminID = 1

// settingsWhitelist lists the keys saveSettings accepts.
var settingsWhitelist = []string{
	"siteName", "siteDescription", "siteUrl", "contactEmail",
	"registrationEnabled", "maintenanceMode", "postsPerPage",
	"threadsPerPage", "allowGuestViewing", "enableCaptcha",
}

// AdminHandler covers the moderation panel API.
type AdminHandler struct {
	repo *db.Repository
	log  *log.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(repo *db.Repository, log *log.Logger) *AdminHandler {
	return &AdminHandler{repo: repo, log: log}
}

// itemRequest is the common body of the panel's mutating actions.
type itemRequest struct {
	ItemID any    `json:"itemId"`
	Reason string `json:"reason"`
}

func (h *AdminHandler) itemID(r *http.Request) (int64, error) {
	var req itemRequest
	if err := decodeJSON(r, &req); err != nil {
		return 0, err
	}
	id, ok := toInt(req.ItemID)
	if !ok {
		return 0, errors.New("itemId required")
	}
	return int64(id), nil
}

func (h *AdminHandler) finish(w http.ResponseWriter, op string, err error) {
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Не найдено")
			return
		}
		h.log.Printf("%s: %v", op, err)
		writeError(w, http.StatusInternalServerError, op)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Threads returns every thread, hidden ones included.
func (h *AdminHandler) Threads(w http.ResponseWriter, r *http.Request) {
	threads, err := h.repo.AdminThreads()
	if err != nil {
		h.log.Printf("Ошибка загрузки тем: %v", err)
		writeError(w, http.StatusInternalServerError, "Ошибка загрузки тем")
		return
	}
	writeJSON(w, http.StatusOK, threads)
}

// Users returns every account for the panel.
func (h *AdminHandler) Users(w http.ResponseWriter, r *http.Request) {
	users, err := h.repo.AdminUsers()
	if err != nil {
		h.log.Printf("Ошибка загрузки пользователей: %v", err)
		writeError(w, http.StatusInternalServerError, "Ошибка загрузки пользователей")
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// Plugins returns the full catalog for the panel.
func (h *AdminHandler) Plugins(w http.ResponseWriter, r *http.Request) {
	plugins, err := h.repo.ListPlugins("")
	if err != nil {
		h.log.Printf("Ошибка загрузки плагинов: %v", err)
		writeError(w, http.StatusInternalServerError, "Ошибка загрузки плагинов")
		return
	}
	writeJSON(w, http.StatusOK, plugins)
}

// Banners returns every banner, inactive ones included.
func (h *AdminHandler) Banners(w http.ResponseWriter, r *http.Request) {
	banners, err := h.repo.ListBanners("", false)
	if err != nil {
		h.log.Printf("Ошибка загрузки баннеров: %v", err)
		writeJSON(w, http.StatusOK, []*models.Banner{})
		return
	}
	writeJSON(w, http.StatusOK, banners)
}

// Notices returns every notice, newest first.
func (h *AdminHandler) Notices(w http.ResponseWriter, r *http.Request) {
	notices, err := h.repo.ListNotices(false)
	if err != nil {
		h.log.Printf("Ошибка загрузки уведомлений: %v", err)
		writeJSON(w, http.StatusOK, []*models.Notice{})
		return
	}
	writeJSON(w, http.StatusOK, notices)
}

// Settings returns the raw settings map.
func (h *AdminHandler) Settings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.repo.AllSettings()
	if err != nil {
		h.log.Printf("Ошибка загрузки настроек: %v", err)
		writeJSON(w, http.StatusOK, map[string]string{})
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

// Reports returns all reports joined with usernames.
func (h *AdminHandler) Reports(w http.ResponseWriter, r *http.Request) {
	reports, err := h.repo.ListReports()
	if err != nil {
		h.log.Printf("Ошибка загрузки отчетов: %v", err)
		writeJSON(w, http.StatusOK, []*models.ReportView{})
		return
	}
	writeJSON(w, http.StatusOK, reports)
}

// Warnings is kept for panel compatibility and always returns an
// empty list.
func (h *AdminHandler) Warnings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, []any{})
}

// DeleteThread removes a thread with its posts, tags, views and
// per-post ledgers.
func (h *AdminHandler) DeleteThread(w http.ResponseWriter, r *http.Request) {
	id, err := h.itemID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Некорректный запрос")
		return
	}
	h.finish(w, "Ошибка при удалении темы", h.repo.DeleteThread(id))
}

// PinThread flips the pinned flag.
func (h *AdminHandler) PinThread(w http.ResponseWriter, r *http.Request) {
	id, err := h.itemID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Некорректный запрос")
		return
	}
	h.finish(w, "Ошибка при закреплении темы", h.repo.TogglePinned(id))
}

// LockThread flips the locked flag.
func (h *AdminHandler) LockThread(w http.ResponseWriter, r *http.Request) {
	id, err := h.itemID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Некорректный запрос")
		return
	}
	h.finish(w, "Ошибка при закрытии темы", h.repo.ToggleLocked(id))
}

// HideThread flips the hidden flag.
func (h *AdminHandler) HideThread(w http.ResponseWriter, r *http.Request) {
	id, err := h.itemID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Некорректный запрос")
		return
	}
	h.finish(w, "Ошибка при скрытии темы", h.repo.ToggleHidden(id))
}

type editThreadRequest struct {
	ItemID any      `json:"itemId"`
	Title  string   `json:"title"`
	Tags   []string `json:"tags"`
}

// EditThread updates the title and, when tags are present, replaces the
// tag set.
func (h *AdminHandler) EditThread(w http.ResponseWriter, r *http.Request) {
	var req editThreadRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Некорректный запрос")
		return
	}
	id, ok := toInt(req.ItemID)
	if !ok {
		writeError(w, http.StatusBadRequest, "Некорректный запрос")
		return
	}
	h.finish(w, "Ошибка при редактировании темы", h.repo.UpdateThread(int64(id), req.Title, req.Tags))
}

type editUserRequest struct {
	ItemID        any            `json:"itemId"`
	Badges        []models.Badge `json:"badges"`
	Role          string         `json:"role"`
	Shimmer       any            `json:"username_shimmer"`
	ShimmerColor1 string         `json:"username_shimmer_color1"`
	ShimmerColor2 string         `json:"username_shimmer_color2"`
	Verified      any            `json:"username_verified"`
}

// EditUser updates decorations: badges, role, shimmer and verification.
func (h *AdminHandler) EditUser(w http.ResponseWriter, r *http.Request) {
	var req editUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Некорректный запрос")
		return
	}
	id, ok := toInt(req.ItemID)
	if !ok {
		writeError(w, http.StatusBadRequest, "Некорректный запрос")
		return
	}

	shimmer, verified := 0, 0
	if truthy(req.Shimmer) {
		shimmer = 1
	}
	if truthy(req.Verified) {
		verified = 1
	}
	err := h.repo.UpdateUserDecorations(int64(id), req.Badges, req.Role, shimmer, req.ShimmerColor1, req.ShimmerColor2, verified)
	h.finish(w, "Ошибка при редактировании пользователя", err)
}

// BanUser flips the ban flag; on banning the reason is recorded.
func (h *AdminHandler) BanUser(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Некорректный запрос")
		return
	}
	id, ok := toInt(req.ItemID)
	if !ok {
		writeError(w, http.StatusBadRequest, "Некорректный запрос")
		return
	}
	h.finish(w, "Ошибка при блокировке пользователя", h.repo.ToggleBan(int64(id), req.Reason, seededAdminID))
}

// DeletePlugin removes a plugin from the catalog.
func (h *AdminHandler) DeletePlugin(w http.ResponseWriter, r *http.Request) {
	id, err := h.itemID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Некорректный запрос")
		return
	}
	h.finish(w, "Ошибка при удалении плагина", h.repo.DeletePlugin(id))
}

type adminPluginRequest struct {
	ItemID          any     `json:"itemId"`
	Name            string  `json:"name"`
	Slug            string  `json:"slug"`
	Description     string  `json:"description"`
	FullDescription string  `json:"full_description"`
	AuthorID        int64   `json:"author_id"`
	Version         string  `json:"version"`
	Price           float64 `json:"price"`
	FileURL         string  `json:"file_url"`
	ImageURL        string  `json:"image_url"`
}

// AddPlugin publishes a plugin on behalf of any author.
func (h *AdminHandler) AddPlugin(w http.ResponseWriter, r *http.Request) {
	var req adminPluginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Некорректный запрос")
		return
	}
	slug := req.Slug
	if slug == "" {
		slug = slugify(req.Name)
	}
	version := req.Version
	if version == "" {
		version = "1.0"
	}
	plugin := &models.Plugin{
		Name:            req.Name,
		Slug:            slug,
		Description:     req.Description,
		FullDescription: req.FullDescription,
		AuthorID:        req.AuthorID,
		Version:         version,
		Price:           req.Price,
		FileURL:         req.FileURL,
		ImageURL:        req.ImageURL,
	}
	h.finish(w, "Ошибка при добавлении плагина", h.repo.CreatePlugin(plugin))
}

// EditPlugin updates all editable plugin fields.
func (h *AdminHandler) EditPlugin(w http.ResponseWriter, r *http.Request) {
	var req adminPluginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Некорректный запрос")
		return
	}
	id, ok := toInt(req.ItemID)
	if !ok {
		writeError(w, http.StatusBadRequest, "Некорректный запрос")
		return
	}
	err := h.repo.UpdatePlugin(int64(id), req.Name, req.Slug, req.Description, req.FullDescription, req.Version, req.Price, req.FileURL, req.ImageURL)
	h.finish(w, "Ошибка при редактировании плагина", err)
}

type bannerRequest struct {
	ItemID   any    `json:"itemId"`
	Title    string `json:"title"`
	ImageURL string `json:"image_url"`
	URL      string `json:"url"`
	Position string `json:"position"`
	Active   *any   `json:"active"`
}

// AddBanner creates a banner; it is active unless explicitly disabled.
func (h *AdminHandler) AddBanner(w http.ResponseWriter, r *http.Request) {
	var req bannerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Некорректный запрос")
		return
	}
	position := req.Position
	if position == "" {
		position = "top"
	}
	banner := &models.Banner{
		Title:    req.Title,
		ImageURL: req.ImageURL,
		URL:      req.URL,
		Position: position,
		Active:   flagOn(req.Active),
	}
	h.finish(w, "Ошибка при добавлении баннера", h.repo.CreateBanner(banner))
}

// EditBanner updates a banner.
func (h *AdminHandler) EditBanner(w http.ResponseWriter, r *http.Request) {
	var req bannerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Некорректный запрос")
		return
	}
	id, ok := toInt(req.ItemID)
	if !ok {
		writeError(w, http.StatusBadRequest, "Некорректный запрос")
		return
	}
	active := 0
	if req.Active != nil && truthy(*req.Active) {
		active = 1
	}
	banner := &models.Banner{
		ID:       int64(id),
		Title:    req.Title,
		ImageURL: req.ImageURL,
		URL:      req.URL,
		Position: req.Position,
		Active:   active,
	}
	h.finish(w, "Ошибка при редактировании баннера", h.repo.UpdateBanner(banner))
}

// DeleteBanner removes a banner.
func (h *AdminHandler) DeleteBanner(w http.ResponseWriter, r *http.Request) {
	id, err := h.itemID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Некорректный запрос")
		return
	}
	h.finish(w, "Ошибка при удалении баннера", h.repo.DeleteBanner(id))
}

type categoryRequest struct {
	ItemID      any     `json:"itemId"`
	Name        string  `json:"name"`
	Slug        string  `json:"slug"`
	Description string  `json:"description"`
	Icon        *string `json:"icon"`
}

// AddCategory creates a category.
func (h *AdminHandler) AddCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Некорректный запрос")
		return
	}
	h.finish(w, "Ошибка при создании категории", h.repo.CreateCategory(req.Name, req.Slug, req.Description, req.Icon))
}

// EditCategory updates a category.
func (h *AdminHandler) EditCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Некорректный запрос")
		return
	}
	id, ok := toInt(req.ItemID)
	if !ok {
		writeError(w, http.StatusBadRequest, "Некорректный запрос")
		return
	}
	h.finish(w, "Ошибка при редактировании категории", h.repo.UpdateCategory(int64(id), req.Name, req.Slug, req.Description, req.Icon))
}

// DeleteCategory removes a category.
func (h *AdminHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := h.itemID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Некорректный запрос")
		return
	}
	h.finish(w, "Ошибка при удалении категории", h.repo.DeleteCategory(id))
}

type noticeRequest struct {
	ItemID      any    `json:"itemId"`
	Title       string `json:"title"`
	Message     string `json:"message"`
	Type        string `json:"type"`
	Position    string `json:"position"`
	Dismissible *any   `json:"dismissible"`
	Active      *any   `json:"active"`
}

// AddNotice creates an active notice.
func (h *AdminHandler) AddNotice(w http.ResponseWriter, r *http.Request) {
	var req noticeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Некорректный запрос")
		return
	}
	noticeType := req.Type
	if noticeType == "" {
		noticeType = "info"
	}
	position := req.Position
	if position == "" {
		position = "top"
	}
	notice := &models.Notice{
		Title:       req.Title,
		Message:     req.Message,
		Type:        noticeType,
		Position:    position,
		Dismissible: flagOn(req.Dismissible),
		Active:      1,
	}
	h.finish(w, "Ошибка при добавлении уведомления", h.repo.CreateNotice(notice))
}

// EditNotice updates a notice.
func (h *AdminHandler) EditNotice(w http.ResponseWriter, r *http.Request) {
	var req noticeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Некорректный запрос")
		return
	}
	id, ok := toInt(req.ItemID)
	if !ok {
		writeError(w, http.StatusBadRequest, "Некорректный запрос")
		return
	}
	notice := &models.Notice{
		ID:          int64(id),
		Title:       req.Title,
		Message:     req.Message,
		Type:        req.Type,
		Position:    req.Position,
		Dismissible: flagOn(req.Dismissible),
		Active:      flagOn(req.Active),
	}
	h.finish(w, "Ошибка при редактировании уведомления", h.repo.UpdateNotice(notice))
}

// DeleteNotice removes a notice.
func (h *AdminHandler) DeleteNotice(w http.ResponseWriter, r *http.Request) {
	id, err := h.itemID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Некорректный запрос")
		return
	}
	h.finish(w, "Ошибка при удалении уведомления", h.repo.DeleteNotice(id))
}

// ToggleNotice flips a notice's active flag.
func (h *AdminHandler) ToggleNotice(w http.ResponseWriter, r *http.Request) {
	id, err := h.itemID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Некорректный запрос")
		return
	}
	h.finish(w, "Ошибка при переключении уведомления", h.repo.ToggleNotice(id))
}

// SaveSettings stores the whitelisted settings keys.
func (h *AdminHandler) SaveSettings(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "Некорректный запрос")
		return
	}

	settings := map[string]string{}
	for _, key := range settingsWhitelist {
		if v, ok := body[key]; ok {
			settings[key] = asString(v)
		}
	}
	h.finish(w, "Ошибка при сохранении настроек", h.repo.SaveSettings(settings))
}

// ResolveReport marks a report resolved.
func (h *AdminHandler) ResolveReport(w http.ResponseWriter, r *http.Request) {
	id, err := h.itemID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Некорректный запрос")
		return
	}
	h.finish(w, "Ошибка при обработке отчета", h.repo.SetReportStatus(id, "resolved"))
}

// RejectReport marks a report rejected.
func (h *AdminHandler) RejectReport(w http.ResponseWriter, r *http.Request) {
	id, err := h.itemID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Некорректный запрос")
		return
	}
	h.finish(w, "Ошибка при обработке отчета", h.repo.SetReportStatus(id, "rejected"))
}

// DeleteReport removes a report.
func (h *AdminHandler) DeleteReport(w http.ResponseWriter, r *http.Request) {
	id, err := h.itemID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Некорректный запрос")
		return
	}
	h.finish(w, "Ошибка при удалении отчета", h.repo.DeleteReport(id))
}
