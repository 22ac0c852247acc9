package handlers

import (
	"errors"
	"log"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/Kenkanekiqwe/yotaapp/internal/captcha"
	"github.com/Kenkanekiqwe/yotaapp/internal/db"
	"github.com/Kenkanekiqwe/yotaapp/internal/models"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// AuthHandler handles registration, login and session verification.
// Клиент различает ошибки по телу ответа, поэтому они уходят со статусом 200.
type AuthHandler struct {
	repo    *db.Repository
	captcha *captcha.Store
	log     *log.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(repo *db.Repository, store *captcha.Store, log *log.Logger) *AuthHandler {
	return &AuthHandler{repo: repo, captcha: store, log: log}
}

type registerRequest struct {
	Username      string `json:"username"`
	Email         string `json:"email"`
	Password      string `json:"password"`
	CaptchaID     string `json:"captchaId"`
	CaptchaAnswer any    `json:"captchaAnswer"`
}

// checkCaptcha enforces the challenge when enableCaptcha is on. It returns
// the message to hand back to the client, or "" when the answer passes.
func (h *AuthHandler) checkCaptcha(captchaID string, captchaAnswer any) string {
	if h.repo.GetSetting("enableCaptcha", "0") != "1" {
		return ""
	}
	answer, ok := toInt(captchaAnswer)
	if captchaID == "" || !ok {
		return "Введите ответ капчи"
	}
	switch err := h.captcha.Verify(captchaID, answer); {
	case errors.Is(err, captcha.ErrExpired):
		return "Капча истекла. Обновите и попробуйте снова"
	case errors.Is(err, captcha.ErrIncorrect):
		return "Неверный ответ капчи"
	}
	return ""
}

// Register creates a new account.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusOK, map[string]string{"error": "Некорректный запрос"})
		return
	}
	if msg := h.checkCaptcha(req.CaptchaID, req.CaptchaAnswer); msg != "" {
		writeJSON(w, http.StatusOK, map[string]string{"error": msg})
		return
	}
	if h.repo.GetSetting("registrationEnabled", "1") != "1" {
		writeJSON(w, http.StatusOK, map[string]string{"error": "Регистрация временно отключена"})
		return
	}

	email := strings.TrimSpace(strings.ToLower(req.Email))
	username := strings.ReplaceAll(strings.TrimSpace(strings.ToLower(req.Username)), " ", "")
	password := strings.TrimSpace(req.Password)

	if email == "" || username == "" {
		writeJSON(w, http.StatusOK, map[string]string{"error": "Email и username не могут быть пустыми"})
		return
	}
	if runeLen := utf8.RuneCountInString(username); runeLen < 3 || runeLen > 30 {
		writeJSON(w, http.StatusOK, map[string]string{"error": "Имя пользователя должно быть от 3 до 30 символов"})
		return
	}
	if runeLen := utf8.RuneCountInString(password); runeLen < 6 || runeLen > 50 {
		writeJSON(w, http.StatusOK, map[string]string{"error": "Пароль должен быть от 6 до 50 символов"})
		return
	}
	if !emailRegex.MatchString(email) {
		writeJSON(w, http.StatusOK, map[string]string{"error": "Некорректный формат email"})
		return
	}

	user := &models.User{Username: username, Email: email}
	if err := h.repo.CreateUser(user, password); err != nil {
		if errors.Is(err, db.ErrConflict) {
			writeJSON(w, http.StatusOK, map[string]string{"error": "Пользователь с таким именем или email уже существует"})
			return
		}
		h.log.Printf("Ошибка при регистрации: %v", err)
		writeJSON(w, http.StatusOK, map[string]string{"error": "Ошибка при регистрации"})
		return
	}

	created, err := h.repo.GetUserByID(user.ID)
	if err != nil {
		h.log.Printf("Ошибка при регистрации: %v", err)
		writeJSON(w, http.StatusOK, map[string]string{"error": "Ошибка при регистрации"})
		return
	}
	h.log.Printf("Пользователь зарегистрирован: %s", username)
	writeJSON(w, http.StatusOK, map[string]any{"user": created})
}

type loginRequest struct {
	Username      string `json:"username"`
	Password      string `json:"password"`
	CaptchaID     string `json:"captchaId"`
	CaptchaAnswer any    `json:"captchaAnswer"`
}

// Login checks the credentials and returns the account. Banned accounts
// get the latest ban details instead.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusOK, map[string]string{"error": "Некорректный запрос"})
		return
	}
	if msg := h.checkCaptcha(req.CaptchaID, req.CaptchaAnswer); msg != "" {
		writeJSON(w, http.StatusOK, map[string]string{"error": msg})
		return
	}

	user, err := h.repo.GetUserByUsername(req.Username)
	if err != nil {
		if !errors.Is(err, db.ErrNotFound) {
			h.log.Printf("Ошибка входа: %v", err)
		}
		writeJSON(w, http.StatusOK, map[string]string{"error": "Неверное имя пользователя или пароль"})
		return
	}
	if !h.repo.CheckPassword(user, req.Password) {
		h.log.Printf("Ошибка входа: неверный пароль для пользователя %s", req.Username)
		writeJSON(w, http.StatusOK, map[string]string{"error": "Неверное имя пользователя или пароль"})
		return
	}
	if user.Banned == 1 {
		writeJSON(w, http.StatusOK, map[string]any{
			"banned":  true,
			"error":   "Ваш аккаунт заблокирован",
			"banInfo": h.repo.LatestBan(user.ID),
		})
		return
	}

	if err := h.repo.TouchLastSeen(user.ID); err != nil {
		h.log.Printf("Ошибка обновления last_seen для %s: %v", user.Username, err)
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": user})
}

type verifyRequest struct {
	UserID any `json:"userId"`
}

// Verify confirms a stored session is still usable. The POST variant also
// returns ban details for banned accounts.
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var userID int64
	if r.Method == http.MethodGet {
		userID, _ = strconv.ParseInt(r.URL.Query().Get("userId"), 10, 64)
	} else {
		var req verifyRequest
		if err := decodeJSON(r, &req); err == nil {
			if id, ok := toInt(req.UserID); ok {
				userID = int64(id)
			}
		}
	}
	if userID == 0 {
		writeJSON(w, http.StatusOK, map[string]bool{"valid": false})
		return
	}

	user, err := h.repo.GetUserByID(userID)
	if err != nil {
		writeJSON(w, http.StatusOK, map[string]bool{"valid": false})
		return
	}
	if user.Banned == 1 {
		if r.Method == http.MethodGet {
			writeJSON(w, http.StatusOK, map[string]bool{"banned": true})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"banned": true, "banInfo": h.repo.LatestBan(user.ID)})
		return
	}
	if err := h.repo.TouchLastSeen(user.ID); err != nil {
		h.log.Printf("Ошибка обновления last_seen для %s: %v", user.Username, err)
	}
	writeJSON(w, http.StatusOK, map[string]bool{"valid": true})
}
