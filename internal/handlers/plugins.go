package handlers

import (
	"errors"
	"log"
	"net/http"
	"regexp"
	"strings"

	"github.com/Kenkanekiqwe/yotaapp/internal/db"
	"github.com/Kenkanekiqwe/yotaapp/internal/models"
	"github.com/Kenkanekiqwe/yotaapp/internal/moderation"
)

var slugStrip = regexp.MustCompile(`[^a-z0-9-]`)

// PluginHandler handles the plugin marketplace catalog.
type PluginHandler struct {
	repo *db.Repository
	gate *moderation.Gate
	log  *log.Logger
}

// NewPluginHandler creates a new PluginHandler.
func NewPluginHandler(repo *db.Repository, gate *moderation.Gate, log *log.Logger) *PluginHandler {
	return &PluginHandler{repo: repo, gate: gate, log: log}
}

// List returns the catalog, optionally filtered by search over name and
// description.
func (h *PluginHandler) List(w http.ResponseWriter, r *http.Request) {
	plugins, err := h.repo.ListPlugins(r.URL.Query().Get("search"))
	if err != nil {
		h.log.Printf("Ошибка загрузки плагинов: %v", err)
		writeError(w, http.StatusInternalServerError, "Ошибка загрузки плагинов")
		return
	}
	writeJSON(w, http.StatusOK, plugins)
}

// Get returns one plugin by slug.
func (h *PluginHandler) Get(w http.ResponseWriter, r *http.Request) {
	plugin, err := h.repo.GetPluginBySlug(r.PathValue("slug"))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Plugin not found")
			return
		}
		h.log.Printf("Ошибка загрузки плагина: %v", err)
		writeError(w, http.StatusInternalServerError, "Ошибка загрузки плагина")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id":               plugin.ID,
		"name":             plugin.Name,
		"slug":             plugin.Slug,
		"description":      plugin.Description,
		"full_description": plugin.FullDescription,
		"author_id":        plugin.AuthorID,
		"author_name":      plugin.AuthorName,
		"version":          plugin.Version,
		"price":            plugin.Price,
		"file_url":         plugin.FileURL,
		"image_url":        plugin.ImageURL,
		"created_at":       plugin.CreatedAt,
		"reviews":          []any{},
	})
}

type createPluginRequest struct {
	Name            string  `json:"name"`
	Slug            string  `json:"slug"`
	Description     string  `json:"description"`
	FullDescription string  `json:"full_description"`
	Version         string  `json:"version"`
	Price           float64 `json:"price"`
	FileURL         string  `json:"file_url"`
	ImageURL        string  `json:"image_url"`
	UserID          int64   `json:"userId"`
}

// Create publishes a plugin. The slug is derived from the name when
// not supplied.
func (h *PluginHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createPluginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Некорректный запрос")
		return
	}
	if req.UserID == 0 || req.Name == "" {
		writeError(w, http.StatusBadRequest, "Требуется авторизация и название плагина")
		return
	}
	if err := h.gate.CanWrite(req.UserID); err != nil {
		writeGateError(w, h.log, err, "Ошибка при создании плагина")
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
		AuthorID:        req.UserID,
		Version:         version,
		Price:           req.Price,
		FileURL:         req.FileURL,
		ImageURL:        req.ImageURL,
	}
	if err := h.repo.CreatePlugin(plugin); err != nil {
		if errors.Is(err, db.ErrConflict) {
			writeError(w, http.StatusBadRequest, "Плагин с таким slug уже существует")
			return
		}
		h.log.Printf("Ошибка при создании плагина: %v", err)
		writeError(w, http.StatusInternalServerError, "Ошибка при создании плагина")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "id": plugin.ID, "slug": plugin.Slug})
}

func slugify(name string) string {
	s := strings.ToLower(name)
	s = strings.Join(strings.Fields(s), "-")
	s = slugStrip.ReplaceAllString(s, "")
	if s == "" {
		return "plugin"
	}
	return s
}
