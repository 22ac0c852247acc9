package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/Kenkanekiqwe/yotaapp/internal/db"
	"github.com/Kenkanekiqwe/yotaapp/internal/moderation"
)

// PostHandler handles replies and post interactions: likes, emoji
// reactions and +REP grants.
type PostHandler struct {
	repo *db.Repository
	gate *moderation.Gate
	log  *log.Logger
}

// NewPostHandler creates a new PostHandler.
func NewPostHandler(repo *db.Repository, gate *moderation.Gate, log *log.Logger) *PostHandler {
	return &PostHandler{repo: repo, gate: gate, log: log}
}

type replyRequest struct {
	Content string `json:"content"`
	UserID  int64  `json:"userId"`
}

// Reply appends a post to a thread.
func (h *PostHandler) Reply(w http.ResponseWriter, r *http.Request) {
	threadID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusNotFound, "Тема не найдена")
		return
	}
	var req replyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Некорректный запрос")
		return
	}
	if req.Content == "" {
		writeError(w, http.StatusBadRequest, "Требуется содержимое ответа")
		return
	}
	if err := h.gate.CanWrite(req.UserID); err != nil {
		writeGateError(w, h.log, err, "Ошибка при добавлении ответа")
		return
	}

	postID, err := h.repo.AddReply(threadID, req.UserID, req.Content)
	if err != nil {
		switch {
		case errors.Is(err, db.ErrNotFound):
			writeError(w, http.StatusNotFound, "Тема не найдена")
		case errors.Is(err, db.ErrLocked):
			writeError(w, http.StatusForbidden, "Тема закрыта для ответов")
		default:
			h.log.Printf("Ошибка при добавлении ответа: %v", err)
			writeError(w, http.StatusInternalServerError, "Ошибка при добавлении ответа")
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"id": postID})
}

type likeRequest struct {
	UserID int64 `json:"userId"`
}

// Like toggles the viewer's like on a post.
func (h *PostHandler) Like(w http.ResponseWriter, r *http.Request) {
	postID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusNotFound, "Пост не найден")
		return
	}
	var req likeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Некорректный запрос")
		return
	}
	if err := h.gate.CanWrite(req.UserID); err != nil {
		writeGateError(w, h.log, err, "Ошибка при обработке лайка")
		return
	}

	likes, liked, err := h.repo.ToggleLike(postID, req.UserID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Пост не найден")
			return
		}
		h.log.Printf("Ошибка при обработке лайка: %v", err)
		writeError(w, http.StatusInternalServerError, "Ошибка при обработке лайка")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "likes": likes, "liked": liked})
}

type reactRequest struct {
	UserID   int64  `json:"userId"`
	Reaction string `json:"reaction"`
}

// React toggles an emoji reaction and returns the post's live tally.
func (h *PostHandler) React(w http.ResponseWriter, r *http.Request) {
	postID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusNotFound, "Пост не найден")
		return
	}
	var req reactRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Некорректный запрос")
		return
	}
	if req.UserID == 0 || req.Reaction == "" {
		writeError(w, http.StatusBadRequest, "userId и reaction обязательны")
		return
	}
	if err := h.gate.CanWrite(req.UserID); err != nil {
		writeGateError(w, h.log, err, "Ошибка при обработке реакции")
		return
	}

	summary, err := h.repo.ToggleReaction(postID, req.UserID, req.Reaction)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Пост не найден")
			return
		}
		h.log.Printf("Ошибка при обработке реакции: %v", err)
		writeError(w, http.StatusInternalServerError, "Ошибка при обработке реакции")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "reactions": summary})
}

// Reactions returns reaction tallies for a comma-separated list of post ids.
func (h *PostHandler) Reactions(w http.ResponseWriter, r *http.Request) {
	var ids []int64
	for _, raw := range strings.Split(r.URL.Query().Get("ids"), ",") {
		id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}

	result, err := h.repo.ReactionsForPosts(ids)
	if err != nil {
		h.log.Printf("Ошибка загрузки реакций: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{})
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type repRequest struct {
	UserID int64 `json:"userId"`
}

// Rep grants one reputation point to the post's author. One-shot: repeat
// grants and self-grants are rejected.
func (h *PostHandler) Rep(w http.ResponseWriter, r *http.Request) {
	postID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusNotFound, "Пост не найден")
		return
	}
	var req repRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Некорректный запрос")
		return
	}
	if req.UserID == 0 {
		writeError(w, http.StatusUnauthorized, "Нужна авторизация")
		return
	}
	if err := h.gate.CanWrite(req.UserID); err != nil {
		writeGateError(w, h.log, err, "Ошибка при выдаче REP")
		return
	}

	reputation, err := h.repo.GrantRep(postID, req.UserID)
	if err != nil {
		switch {
		case errors.Is(err, db.ErrNotFound):
			writeError(w, http.StatusNotFound, "Пост не найден")
		case errors.Is(err, db.ErrSelfGrant):
			writeError(w, http.StatusBadRequest, "Нельзя дать REP своему посту")
		case errors.Is(err, db.ErrAlreadyGranted):
			writeError(w, http.StatusBadRequest, "Вы уже дали REP этому посту")
		default:
			h.log.Printf("Ошибка при выдаче REP: %v", err)
			writeError(w, http.StatusInternalServerError, "Ошибка при выдаче REP")
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "reputation": reputation})
}
