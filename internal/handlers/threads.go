package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/Kenkanekiqwe/yotaapp/internal/db"
	"github.com/Kenkanekiqwe/yotaapp/internal/moderation"
)

// ThreadHandler handles thread listing, detail and creation.
type ThreadHandler struct {
	repo *db.Repository
	gate *moderation.Gate
	log  *log.Logger
}

// NewThreadHandler creates a new ThreadHandler.
func NewThreadHandler(repo *db.Repository, gate *moderation.Gate, log *log.Logger) *ThreadHandler {
	return &ThreadHandler{repo: repo, gate: gate, log: log}
}

// List returns the thread-list projection, optionally category-filtered.
func (h *ThreadHandler) List(w http.ResponseWriter, r *http.Request) {
	threads, err := h.repo.ThreadList(r.URL.Query().Get("category"))
	if err != nil {
		h.log.Printf("Ошибка загрузки списка тем: %v", err)
		writeError(w, http.StatusInternalServerError, "Ошибка загрузки тем")
		return
	}
	writeJSON(w, http.StatusOK, threads)
}

// Detail returns the thread-detail projection and records a view for the
// requesting viewer key.
func (h *ThreadHandler) Detail(w http.ResponseWriter, r *http.Request) {
	threadID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusNotFound, "Thread not found")
		return
	}
	key := viewerKey(r)

	// Сбой учёта просмотра не должен ломать чтение темы.
	if err := h.repo.RecordView(threadID, key); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Thread not found")
			return
		}
		h.log.Printf("Ошибка учёта просмотра темы %d: %v", threadID, err)
	}

	detail, err := h.repo.ThreadDetail(threadID, r.URL.Query().Get("viewerKey"))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Thread not found")
			return
		}
		h.log.Printf("Ошибка загрузки темы %d: %v", threadID, err)
		writeError(w, http.StatusInternalServerError, "Ошибка загрузки темы")
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

type createThreadRequest struct {
	Title      string   `json:"title"`
	Content    string   `json:"content"`
	CategoryID int64    `json:"category_id"`
	AuthorID   int64    `json:"author_id"`
	Tags       []string `json:"tags"`
}

// Create creates a thread with its first post and tags.
func (h *ThreadHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createThreadRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Некорректный запрос")
		return
	}
	if req.Title == "" || req.Content == "" || req.CategoryID == 0 {
		writeError(w, http.StatusBadRequest, "Требуются заголовок, содержимое и категория")
		return
	}
	if err := h.gate.CanWrite(req.AuthorID); err != nil {
		writeGateError(w, h.log, err, "Ошибка при создании темы")
		return
	}

	threadID, err := h.repo.CreateThread(req.Title, req.CategoryID, req.AuthorID, req.Content, req.Tags)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Категория не найдена")
			return
		}
		h.log.Printf("Ошибка при создании темы: %v", err)
		writeError(w, http.StatusInternalServerError, "Ошибка при создании темы")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"id": threadID})
}
