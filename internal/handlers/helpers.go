package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net"
	"net/http"
	"strconv"

	"github.com/Kenkanekiqwe/yotaapp/internal/db"
	"github.com/Kenkanekiqwe/yotaapp/internal/moderation"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func decodeJSON(r *http.Request, dst any) error {
	return json.NewDecoder(r.Body).Decode(dst)
}

// pathID parses a numeric path segment.
func pathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(r.PathValue(name), 10, 64)
}

// writeGateError maps moderation/store errors of a mutating request to the
// taxonomy responses. fallback covers unexpected store failures.
func writeGateError(w http.ResponseWriter, logger *log.Logger, err error, fallback string) {
	switch {
	case errors.Is(err, moderation.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "Необходима авторизация")
	case errors.Is(err, db.ErrBanned):
		writeError(w, http.StatusForbidden, "Аккаунт заблокирован")
	case errors.Is(err, db.ErrNotFound):
		writeError(w, http.StatusNotFound, "Пользователь не найден")
	default:
		logger.Printf("%s: %v", fallback, err)
		writeError(w, http.StatusInternalServerError, fallback)
	}
}

// viewerKey returns the explicit viewer key or a soft anonymous fingerprint
// built from the network address and a truncated user agent.
func viewerKey(r *http.Request) string {
	if key := r.URL.Query().Get("viewerKey"); key != "" {
		return key
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	ua := r.Header.Get("User-Agent")
	if len(ua) > 80 {
		ua = ua[:80]
	}
	return "anon:" + host + ":" + ua
}

// toInt coerces a decoded JSON value (number or numeric string) to int.
func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		return int(n), true
	case string:
		if n == "" {
			return 0, false
		}
		i, err := strconv.Atoi(n)
		return i, err == nil
	default:
		return 0, false
	}
}

// truthy mirrors loose-JSON boolean coercion for 0/1 flag fields.
func truthy(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case float64:
		return b != 0
	case string:
		return b != "" && b != "0" && b != "false"
	default:
		return false
	}
}

// asString renders a decoded JSON scalar as the string stored in settings.
func asString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case bool:
		if s {
			return "true"
		}
		return "false"
	case nil:
		return ""
	default:
		b, _ := json.Marshal(v)
		return string(b)
	}
}
