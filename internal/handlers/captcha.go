package handlers

import (
	"net/http"

	"github.com/Kenkanekiqwe/yotaapp/internal/captcha"
)

// CaptchaHandler issues arithmetic challenges for registration and login.
type CaptchaHandler struct {
	store *captcha.Store
}

// NewCaptchaHandler creates a new CaptchaHandler.
func NewCaptchaHandler(store *captcha.Store) *CaptchaHandler {
	return &CaptchaHandler{store: store}
}

// Issue returns a fresh challenge: {id, a, b}.
func (h *CaptchaHandler) Issue(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.Issue())
}
